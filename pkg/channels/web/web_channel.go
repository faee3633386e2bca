package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/gateway"
	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/utils"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for decoupled UI
	},
}

type WebConfig struct {
	Port int `json:"port"` // Default: 8080
}

// IncomingMessage is what a browser sends. Plain-text frames are accepted too.
type IncomingMessage struct {
	Text string `json:"text"`
}

// OutgoingMessage is every frame the server writes.
type OutgoingMessage struct {
	Type    string `json:"type"` // "session", "message" or "signal"
	Text    string `json:"text,omitempty"`
	Value   string `json:"value,omitempty"`
	Session string `json:"session,omitempty"`
}

type SafeConn struct {
	*websocket.Conn
	mu sync.Mutex
}

func (sc *SafeConn) WriteJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal frame: %w", err)
	}
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.Conn.WriteMessage(websocket.TextMessage, data)
}

// WebChannel serves a websocket at /ws. Each connection is its own
// conversation unless the client resumes one with ?session=<id>.
type WebChannel struct {
	config      WebConfig
	server      *http.Server
	connections map[string]*SafeConn // chat id -> connection
	mu          sync.RWMutex
}

func NewWebChannel(cfg WebConfig) *WebChannel {
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	return &WebChannel{
		config:      cfg,
		connections: make(map[string]*SafeConn),
	}
}

func (c *WebChannel) ID() string {
	return "web"
}

// Handler returns the HTTP handler serving the websocket endpoint.
func (c *WebChannel) Handler(ctx gateway.ChannelContext) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		c.handleWebSocket(w, r, ctx)
	})
	return mux
}

func (c *WebChannel) Start(ctx gateway.ChannelContext) error {
	c.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", c.config.Port),
		Handler: c.Handler(ctx),
	}

	slog.Info("Web API listening", "port", c.config.Port)

	go func() {
		if err := c.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Web API server error", "error", err)
		}
	}()
	return nil
}

func (c *WebChannel) Stop() error {
	if c.server != nil {
		return c.server.Close()
	}
	return nil
}

func (c *WebChannel) conn(session gateway.SessionContext) (*SafeConn, error) {
	c.mu.RLock()
	conn, ok := c.connections[session.ChatID]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("web session %s not connected", session.ChatID)
	}
	return conn, nil
}

func (c *WebChannel) Send(session gateway.SessionContext, message string) error {
	conn, err := c.conn(session)
	if err != nil {
		return err
	}
	return conn.WriteJSON(OutgoingMessage{Type: "message", Text: message})
}

// SendSignal implements gateway.SignalingChannel.
func (c *WebChannel) SendSignal(session gateway.SessionContext, signal string) error {
	conn, err := c.conn(session)
	if err != nil {
		return err
	}
	return conn.WriteJSON(OutgoingMessage{Type: "signal", Value: signal})
}

func (c *WebChannel) handleWebSocket(w http.ResponseWriter, r *http.Request, ctx gateway.ChannelContext) {
	rawConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("WS Upgrade failed", "error", err)
		return
	}
	conn := &SafeConn{Conn: rawConn}

	chatID := r.URL.Query().Get("session")
	if chatID == "" {
		chatID = utils.GenerateID()
	}

	c.mu.Lock()
	if old, ok := c.connections[chatID]; ok {
		old.Close()
	}
	c.connections[chatID] = conn
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		if c.connections[chatID] == conn {
			delete(c.connections, chatID)
		}
		c.mu.Unlock()
		conn.Close()
	}()

	if err := conn.WriteJSON(OutgoingMessage{Type: "session", Session: chatID}); err != nil {
		slog.Error("Failed to announce web session", "error", err)
		return
	}

	session := gateway.SessionContext{
		ChannelID: c.ID(),
		UserID:    r.RemoteAddr,
		ChatID:    chatID,
		Username:  "WebUser",
	}

	for {
		_, msgBytes, err := conn.ReadMessage()
		if err != nil {
			break
		}

		content := string(msgBytes)
		var incoming IncomingMessage
		if err := json.Unmarshal(msgBytes, &incoming); err == nil {
			content = incoming.Text
		}
		if content == "" {
			continue
		}

		ctx.OnMessage(c.ID(), &gateway.UnifiedMessage{
			Session: session,
			Content: content,
		})
	}
}
