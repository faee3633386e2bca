package gateway

import (
	"fmt"

	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/monitor"
)

// GatewayBuilder assembles a GatewayManager from pre-built parts and
// starts it.
type GatewayBuilder struct {
	gw             *GatewayManager
	monitor        monitor.Monitor
	handlerBuilder func(MessageResponder) MessageProcessor
	channels       []Channel
}

func NewGatewayBuilder() *GatewayBuilder {
	return &GatewayBuilder{
		gw: NewGatewayManager(),
	}
}

// WithMonitor sets a monitor that is started during Build.
func (b *GatewayBuilder) WithMonitor(m monitor.Monitor) *GatewayBuilder {
	b.monitor = m
	return b
}

func (b *GatewayBuilder) WithChannel(channels ...Channel) *GatewayBuilder {
	b.channels = append(b.channels, channels...)
	return b
}

// WithHandler sets the message processor. A ResponderAware processor gets
// the gateway injected as its responder.
func (b *GatewayBuilder) WithHandler(h MessageProcessor) *GatewayBuilder {
	b.handlerBuilder = func(responder MessageResponder) MessageProcessor {
		if setter, ok := h.(ResponderAware); ok {
			setter.SetResponder(responder)
		}
		return h
	}
	return b
}

// Manager exposes the manager under construction, for loaders that
// register channels directly.
func (b *GatewayBuilder) Manager() *GatewayManager {
	return b.gw
}

// Build wires monitor, channels and handler, then starts every channel.
func (b *GatewayBuilder) Build() (*GatewayManager, error) {
	if b.monitor != nil {
		b.gw.SetMonitor(b.monitor)
		if err := b.monitor.Start(); err != nil {
			return nil, fmt.Errorf("failed to start monitor: %w", err)
		}
	}

	for _, c := range b.channels {
		b.gw.Register(c)
	}

	if b.handlerBuilder != nil {
		if handler := b.handlerBuilder(b.gw); handler != nil {
			b.gw.SetMessageHandler(handler.OnMessage)
		}
	}

	if err := b.gw.StartAll(); err != nil {
		return nil, fmt.Errorf("failed to start channels: %w", err)
	}
	return b.gw, nil
}
