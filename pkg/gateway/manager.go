package gateway

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/monitor"
)

// GatewayManager owns the registered channels and routes messages between
// them and the message handler.
type GatewayManager struct {
	channels   map[string]Channel
	msgHandler MessageHandler
	monitor    monitor.Monitor
	inflight   sync.WaitGroup
	mu         sync.RWMutex
}

func NewGatewayManager() *GatewayManager {
	return &GatewayManager{
		channels: make(map[string]Channel),
	}
}

// SetMessageHandler sets the processor every incoming message is routed to.
func (g *GatewayManager) SetMessageHandler(handler MessageHandler) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.msgHandler = handler
}

func (g *GatewayManager) SetMonitor(m monitor.Monitor) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.monitor = m
}

// Register adds a channel, replacing any channel with the same id.
func (g *GatewayManager) Register(c Channel) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.channels[c.ID()] = c
}

func (g *GatewayManager) GetChannel(id string) (Channel, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	c, ok := g.channels[id]
	return c, ok
}

// ChannelIDs returns the registered channel ids, sorted.
func (g *GatewayManager) ChannelIDs() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	ids := make([]string, 0, len(g.channels))
	for id := range g.channels {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// StartAll starts every registered channel with the gateway as its context.
func (g *GatewayManager) StartAll() error {
	for _, id := range g.ChannelIDs() {
		c, _ := g.GetChannel(id)
		slog.Info("Starting channel", "channel", id)
		if err := c.Start(g); err != nil {
			return fmt.Errorf("failed to start channel %s: %w", id, err)
		}
	}
	return nil
}

// StopAll stops every channel, then waits for in-flight messages.
func (g *GatewayManager) StopAll() {
	for _, id := range g.ChannelIDs() {
		c, _ := g.GetChannel(id)
		slog.Info("Stopping channel", "channel", id)
		if err := c.Stop(); err != nil {
			slog.Error("Error stopping channel", "channel", id, "error", err)
		}
	}
	g.inflight.Wait()
}

// Wait blocks until every dispatched message has been handled.
func (g *GatewayManager) Wait() {
	g.inflight.Wait()
}

// SendReply routes a reply to the session's channel and mirrors it to the monitor.
func (g *GatewayManager) SendReply(session SessionContext, content string) error {
	slog.Debug("Reply", "channel", session.ChannelID, "user", session.Username, "content", content)
	g.observe(monitor.TypeAssistant, session, content)

	c, ok := g.GetChannel(session.ChannelID)
	if !ok {
		return fmt.Errorf("channel %s not found", session.ChannelID)
	}
	return c.Send(session, content)
}

// SendSignal forwards a control signal. Channels without signal support
// ignore it silently.
func (g *GatewayManager) SendSignal(session SessionContext, signal string) error {
	c, ok := g.GetChannel(session.ChannelID)
	if !ok {
		return fmt.Errorf("channel %s not found", session.ChannelID)
	}
	if sc, ok := c.(SignalingChannel); ok {
		return sc.SendSignal(session, signal)
	}
	return nil
}

// OnMessage implements ChannelContext. Messages are handled on their own
// goroutine so a slow agent run never stalls a channel's receive loop.
func (g *GatewayManager) OnMessage(channelID string, msg *UnifiedMessage) {
	slog.Info("Message received", "channel", channelID, "user", msg.Session.Username, "user_id", msg.Session.UserID, "content", msg.Content)
	g.observe(monitor.TypeUser, msg.Session, msg.Content)

	g.mu.RLock()
	handler := g.msgHandler
	g.mu.RUnlock()

	if handler == nil {
		slog.Warn("No message handler set", "channel", channelID)
		return
	}

	g.inflight.Add(1)
	go func() {
		defer g.inflight.Done()
		handler(msg)
	}()
}

func (g *GatewayManager) observe(kind string, session SessionContext, content string) {
	g.mu.RLock()
	m := g.monitor
	g.mu.RUnlock()
	if m == nil {
		return
	}
	m.OnMessage(monitor.MonitorMessage{
		Timestamp:   time.Now(),
		MessageType: kind,
		ChannelID:   session.ChannelID,
		Username:    session.Username,
		Content:     content,
	})
}
