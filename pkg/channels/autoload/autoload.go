// Package autoload registers every built-in channel factory.
package autoload

import (
	_ "github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/channels/cli"
	_ "github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/channels/telegram"
	_ "github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/channels/web"
)
