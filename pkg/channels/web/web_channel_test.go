package web

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/gateway"

	"github.com/gorilla/websocket"
)

type channelContext struct {
	msgs chan *gateway.UnifiedMessage
}

func (c *channelContext) OnMessage(_ string, msg *gateway.UnifiedMessage) { c.msgs <- msg }

func (c *channelContext) SendReply(gateway.SessionContext, string) error  { return nil }
func (c *channelContext) SendSignal(gateway.SessionContext, string) error { return nil }

func (c *channelContext) next(t *testing.T) *gateway.UnifiedMessage {
	t.Helper()
	select {
	case m := <-c.msgs:
		return m
	case <-time.After(5 * time.Second):
		t.Fatal("no message received")
		return nil
	}
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) OutgoingMessage {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
		t.Fatal(err)
	}
	var frame OutgoingMessage
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return frame
}

func TestWebChannelRoundTrip(t *testing.T) {
	ch := NewWebChannel(WebConfig{})
	ctx := &channelContext{msgs: make(chan *gateway.UnifiedMessage, 4)}
	srv := httptest.NewServer(ch.Handler(ctx))
	defer srv.Close()

	conn := dial(t, srv, "?session=trip-42")
	if hello := readFrame(t, conn); hello.Type != "session" || hello.Session != "trip-42" {
		t.Fatalf("first frame = %+v", hello)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"text":"Weather in Tokyo?"}`)); err != nil {
		t.Fatal(err)
	}
	msg := ctx.next(t)
	if msg.Content != "Weather in Tokyo?" {
		t.Fatalf("content = %q", msg.Content)
	}
	if msg.Session.ChannelID != "web" || msg.Session.ChatID != "trip-42" || msg.Session.Key() != "web_trip-42" {
		t.Fatalf("session = %+v", msg.Session)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("plain text")); err != nil {
		t.Fatal(err)
	}
	if msg := ctx.next(t); msg.Content != "plain text" {
		t.Fatalf("plain frame content = %q", msg.Content)
	}

	if err := ch.SendSignal(msg.Session, gateway.SignalThinking); err != nil {
		t.Fatalf("SendSignal: %v", err)
	}
	if f := readFrame(t, conn); f.Type != "signal" || f.Value != gateway.SignalThinking {
		t.Fatalf("signal frame = %+v", f)
	}

	if err := ch.Send(msg.Session, "Sunny."); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if f := readFrame(t, conn); f.Type != "message" || f.Text != "Sunny." {
		t.Fatalf("message frame = %+v", f)
	}
}

func TestWebChannelGeneratesSessionIDs(t *testing.T) {
	ch := NewWebChannel(WebConfig{})
	ctx := &channelContext{msgs: make(chan *gateway.UnifiedMessage, 1)}
	srv := httptest.NewServer(ch.Handler(ctx))
	defer srv.Close()

	a := readFrame(t, dial(t, srv, ""))
	b := readFrame(t, dial(t, srv, ""))
	if a.Session == "" || a.Session == b.Session {
		t.Fatalf("session ids %q and %q", a.Session, b.Session)
	}
}

func TestWebChannelSendUnknownSession(t *testing.T) {
	ch := NewWebChannel(WebConfig{})
	if err := ch.Send(gateway.SessionContext{ChannelID: "web", ChatID: "gone"}, "x"); err == nil {
		t.Fatal("expected an error for a disconnected session")
	}
}

func TestWebFactory(t *testing.T) {
	c, err := (&WebFactory{}).Create([]byte(`{"port": 9123}`), nil)
	if err != nil {
		t.Fatal(err)
	}
	if c.(*WebChannel).config.Port != 9123 {
		t.Fatalf("port = %d", c.(*WebChannel).config.Port)
	}
	if NewWebChannel(WebConfig{}).config.Port != 8080 {
		t.Fatal("default port not applied")
	}
}
