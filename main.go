package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/agent"
	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/channels"
	_ "github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/channels/autoload" // registers channels
	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/config"
	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/gateway"
	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/handler"
	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/llm"
	_ "github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/llm/autoload" // registers LLM providers
	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/monitor"
	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/storage/postgres"
	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/tools/travel"

	"github.com/joho/godotenv"
)

var scenarios = []string{
	"What do you do?",
	"Where should I travel this summer?",
	"What's the weather in Tokyo?",
	"How much does a flight from NYC to Paris cost on June 15?",
	"If I have 1000 USD, how much is that in EUR?",
	"I want to go from London to Tokyo next month. What's the weather like and how much will a flight cost?",
	"Plan a trip from NYC to Paris - tell me the weather, flight cost for July 1st, and convert $500 to EUR.",
}

func main() {
	configPath := flag.String("config", "config.json", "application config")
	systemPath := flag.String("system", "system.json", "system config")
	mode := flag.String("mode", "demo", "demo, serve or once")
	question := flag.String("q", "", "question for -mode once")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("⚠️ Warning: failed to load .env: %v", err)
	}

	cfg, sys, err := config.Load(*configPath, *systemPath)
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	monitor.SetupSlog(sys.LogLevel)

	creds := config.CredentialsFromEnv()
	a, err := buildAgent(cfg, sys, creds)
	if err != nil {
		log.Fatalf("❌ Failed to create agent: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch *mode {
	case "demo":
		runDemo(ctx, a)
	case "once":
		if strings.TrimSpace(*question) == "" {
			log.Fatalf("❌ -mode once requires -q")
		}
		answer, err := a.Ask(ctx, llm.NewChatHistory(), *question)
		if err != nil {
			log.Fatalf("❌ %v", err)
		}
		fmt.Println(answer)
	case "serve":
		if err := serve(ctx, a, creds, *configPath, *systemPath, cfg, sys); err != nil {
			log.Fatalf("❌ %v", err)
		}
	default:
		log.Fatalf("❌ Unknown mode %q", *mode)
	}
}

// buildAgent resolves the enabled tools and constructs the agent.
func buildAgent(cfg *config.Config, sys *config.SystemConfig, creds config.Credentials) (*agent.Agent, error) {
	opts := agent.OptionsFromConfig(cfg, sys)
	opts.Credentials = creds
	if sys.EnableTools {
		enabled, err := travel.New(nil).Select(cfg.Agent.Tools)
		if err != nil {
			return nil, err
		}
		opts.Tools = enabled
	}
	return agent.New(opts)
}

func runDemo(ctx context.Context, a *agent.Agent) {
	monitor.PrintBanner(a.Name(), a.Model())
	rule := strings.Repeat("─", 70)

	for i, q := range scenarios {
		if ctx.Err() != nil {
			return
		}
		fmt.Printf("\n%s\nSCENARIO %d\n%s\nUser: %s\n\n", rule, i+1, rule, q)

		// Every scenario starts from a fresh history.
		answer, err := a.Ask(ctx, llm.NewChatHistory(), q)
		if err != nil {
			fmt.Printf("Error: %v\n\n", err)
			continue
		}
		fmt.Printf("Agent: %s\n\n", answer)
	}
	fmt.Println(strings.Repeat("=", 70))
	fmt.Println("DEMO COMPLETE")
	fmt.Println(strings.Repeat("=", 70))
}

func openStore(ctx context.Context, sc config.StorageConfig) (llm.HistoryStore, func(), error) {
	switch sc.Type {
	case "", "file":
		dir := sc.Dir
		if dir == "" {
			dir = "data/sessions"
		}
		s, err := llm.NewFileStore(dir)
		return s, func() {}, err
	case "postgres":
		s, err := postgres.NewStore(ctx, sc.DSN)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case "memory":
		return nil, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage type %q", sc.Type)
	}
}

func serve(ctx context.Context, a *agent.Agent, creds config.Credentials, configPath, systemPath string, cfg *config.Config, sys *config.SystemConfig) error {
	store, closeStore, err := openStore(ctx, sys.Storage)
	if err != nil {
		return fmt.Errorf("failed to open session storage: %w", err)
	}
	defer closeStore()

	h := handler.NewChatHandler(a, llm.NewSessionManager(store), sys)

	builder := gateway.NewGatewayBuilder().
		WithMonitor(monitor.NewCLIMonitor()).
		WithHandler(h)
	if n := channels.LoadFromConfig(builder.Manager(), cfg.Channels, sys); n == 0 {
		return fmt.Errorf("no channels enabled in %s", configPath)
	}

	gw, err := builder.Build()
	if err != nil {
		return fmt.Errorf("failed to build gateway: %w", err)
	}
	monitor.PrintBanner(a.Name(), a.Model())

	// The CLI channel ends the process when its input closes.
	var cliDone <-chan struct{}
	if c, ok := gw.GetChannel("cli"); ok {
		if d, ok := c.(interface{ Done() <-chan struct{} }); ok {
			cliDone = d.Done()
		}
	}

	reload := config.WatchConfig(ctx, config.DefaultDebounce, configPath, systemPath)

loop:
	for {
		select {
		case <-ctx.Done():
			slog.Info("Received shutdown signal")
			break loop
		case <-cliDone:
			break loop
		case _, ok := <-reload:
			if !ok {
				reload = nil
				continue
			}
			newCfg, newSys, err := config.Load(configPath, systemPath)
			if err != nil {
				slog.Error("Config reload failed, keeping current agent", "error", err)
				continue
			}
			newAgent, err := buildAgent(newCfg, newSys, creds)
			if err != nil {
				slog.Error("Agent rebuild failed, keeping current agent", "error", err)
				continue
			}
			monitor.SetupSlog(newSys.LogLevel)
			h.SetSystemConfig(newSys)
			h.SetAgent(newAgent)
			slog.Info("Agent reloaded", "model", newAgent.Model(), "tools", newAgent.Tools().Names())
		}
	}

	gw.StopAll()
	slog.Info("Bye!")
	return nil
}
