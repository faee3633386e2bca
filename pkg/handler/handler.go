package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/agent"
	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/config"
	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/gateway"
	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/llm"
	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/utils"
)

// ChatHandler connects the gateway to an agent. Each session has its own
// history, and messages of one session are handled one at a time since a
// history must never be run concurrently.
type ChatHandler struct {
	agent     atomic.Pointer[agent.Agent]
	sysCfg    atomic.Pointer[config.SystemConfig]
	sessions  *llm.SessionManager
	responder gateway.MessageResponder

	locksMu sync.Mutex
	locks   map[string]*sessionLock

	// sleep is replaced in tests.
	sleep func(time.Duration)
}

func NewChatHandler(a *agent.Agent, sessions *llm.SessionManager, sysCfg *config.SystemConfig) *ChatHandler {
	if sessions == nil {
		sessions = llm.NewSessionManager(nil)
	}
	if sysCfg == nil {
		sysCfg = config.DefaultSystemConfig()
	}
	h := &ChatHandler{
		sessions: sessions,
		locks:    make(map[string]*sessionLock),
		sleep:    time.Sleep,
	}
	h.agent.Store(a)
	h.sysCfg.Store(sysCfg)
	return h
}

// SetResponder implements gateway.ResponderAware.
func (h *ChatHandler) SetResponder(responder gateway.MessageResponder) {
	h.responder = responder
}

// SetAgent swaps the agent used for subsequent messages. Runs already in
// progress finish with the agent they started with.
func (h *ChatHandler) SetAgent(a *agent.Agent) {
	h.agent.Store(a)
}

// SetSystemConfig swaps the retry and timeout settings.
func (h *ChatHandler) SetSystemConfig(cfg *config.SystemConfig) {
	h.sysCfg.Store(cfg)
}

func (h *ChatHandler) Agent() *agent.Agent {
	return h.agent.Load()
}

// sessionLock is held while a message of its session is handled. refs
// counts holders and waiters; the entry is dropped when it reaches zero.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func (h *ChatHandler) lockSession(key string) {
	h.locksMu.Lock()
	l, ok := h.locks[key]
	if !ok {
		l = &sessionLock{}
		h.locks[key] = l
	}
	l.refs++
	h.locksMu.Unlock()

	l.mu.Lock()
}

func (h *ChatHandler) unlockSession(key string) {
	h.locksMu.Lock()
	defer h.locksMu.Unlock()
	l := h.locks[key]
	l.mu.Unlock()
	if l.refs--; l.refs == 0 {
		delete(h.locks, key)
	}
}

// OnMessage implements gateway.MessageProcessor.
func (h *ChatHandler) OnMessage(msg *gateway.UnifiedMessage) {
	key := msg.Session.Key()
	if msg.DebugID == "" {
		msg.DebugID = utils.DebugID(key)
	}
	ctx := llm.WithDebugID(context.Background(), msg.DebugID)

	h.lockSession(key)
	defer h.unlockSession(key)

	if strings.HasPrefix(msg.Content, "/") {
		h.handleSlashCommand(ctx, msg)
		return
	}

	start := time.Now()
	answer, err := h.process(ctx, msg)
	if err != nil {
		slog.ErrorContext(ctx, "Agent run failed", "session", key, "error", err)
		h.reply(ctx, msg.Session, fmt.Sprintf("❌ %v", err))
		return
	}
	h.reply(ctx, msg.Session, answer)
	slog.InfoContext(ctx, "Agent loop finished", "session", key, "duration", time.Since(start).String())
}

// process appends the user message and runs the agent, retrying transient
// backend failures. The session is saved whatever the outcome.
func (h *ChatHandler) process(ctx context.Context, msg *gateway.UnifiedMessage) (string, error) {
	key := msg.Session.Key()
	a := h.agent.Load()
	sys := h.sysCfg.Load()

	history, err := h.sessions.GetHistory(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to load session: %w", err)
	}
	history.Add(llm.NewUserMessage(msg.Content))
	defer func() {
		if err := h.sessions.SaveSession(ctx, key); err != nil {
			slog.ErrorContext(ctx, "Failed to save session", "session", key, "error", err)
		}
	}()

	h.signal(ctx, msg.Session, gateway.SignalThinking)

	for attempt := 0; ; attempt++ {
		answer, err := h.runOnce(ctx, a, history, sys)
		if err == nil {
			return answer, nil
		}
		if !a.Client().IsTransientError(err) {
			return "", err
		}
		if attempt >= sys.MaxRetries {
			slog.ErrorContext(ctx, "Max retries reached", "max", sys.MaxRetries, "error", err)
			return "", fmt.Errorf("backend still failing after %d retries: %w", sys.MaxRetries, err)
		}

		slog.WarnContext(ctx, "Transient backend error, retrying",
			"error", err,
			"retry", fmt.Sprintf("%d/%d", attempt+1, sys.MaxRetries),
		)
		h.reply(ctx, msg.Session, fmt.Sprintf("⚠️ Connection error (%v), attempting automatic recovery (%d/%d)...", err, attempt+1, sys.MaxRetries))
		h.sleep(time.Duration(sys.RetryDelayMs) * time.Millisecond)
	}
}

func (h *ChatHandler) runOnce(ctx context.Context, a *agent.Agent, history *llm.ChatHistory, sys *config.SystemConfig) (string, error) {
	if sys.LLMTimeoutMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(sys.LLMTimeoutMs)*time.Millisecond)
		defer cancel()
	}
	return a.Run(ctx, history)
}

// handleSlashCommand serves the commands that act on the session instead
// of going to the model.
func (h *ChatHandler) handleSlashCommand(ctx context.Context, msg *gateway.UnifiedMessage) {
	cmd, _, _ := strings.Cut(strings.TrimPrefix(strings.TrimSpace(msg.Content), "/"), " ")
	key := msg.Session.Key()

	switch strings.ToLower(cmd) {
	case "reset", "new":
		if err := h.sessions.ResetSession(ctx, key); err != nil {
			h.reply(ctx, msg.Session, fmt.Sprintf("❌ Failed to reset conversation: %v", err))
			return
		}
		h.reply(ctx, msg.Session, "🧹 Conversation cleared.")
	case "tools":
		h.reply(ctx, msg.Session, h.describeTools())
	case "help", "start":
		a := h.agent.Load()
		h.reply(ctx, msg.Session, fmt.Sprintf("%s: %s\n\nCommands:\n/reset - start a new conversation\n/tools - list available tools\n/help - show this message", a.Name(), a.Description()))
	default:
		h.reply(ctx, msg.Session, fmt.Sprintf("❌ Unknown command: /%s. Try /help", cmd))
	}
}

func (h *ChatHandler) describeTools() string {
	reg := h.agent.Load().Tools()
	if reg.Len() == 0 {
		return "No tools are enabled."
	}
	var sb strings.Builder
	sb.WriteString("🛠️ Available tools:")
	for _, t := range reg.All() {
		fmt.Fprintf(&sb, "\n- %s: %s", t.Name, t.Description)
	}
	return sb.String()
}

func (h *ChatHandler) reply(ctx context.Context, session gateway.SessionContext, content string) {
	if h.responder == nil {
		slog.WarnContext(ctx, "No responder set, dropping reply", "session", session.Key())
		return
	}
	if err := h.responder.SendReply(session, content); err != nil {
		slog.ErrorContext(ctx, "Failed to send reply", "session", session.Key(), "error", err)
	}
}

func (h *ChatHandler) signal(ctx context.Context, session gateway.SessionContext, signal string) {
	if h.responder == nil {
		return
	}
	if err := h.responder.SendSignal(session, signal); err != nil {
		slog.DebugContext(ctx, "Failed to send signal", "signal", signal, "error", err)
	}
}
