package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/gateway"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramConfig holds the bot token issued by @BotFather.
type TelegramConfig struct {
	Token string `json:"token"`
}

// TelegramChannel long-polls the Bot API and answers in the originating chat.
// Replies longer than the message limit are split into several messages.
type TelegramChannel struct {
	config       TelegramConfig
	bot          *tgbotapi.BotAPI
	messageLimit int
	stopCtx      context.Context // aborts the in-flight long poll on Stop
	stopCancel   context.CancelFunc
}

func NewTelegramChannel(cfg TelegramConfig, msgLimit int) (*TelegramChannel, error) {
	ctx, cancel := context.WithCancel(context.Background())

	// Tie every dial to stopCtx so Stop kills the active long poll instead of
	// leaving it open, which would make the next bot instance hit 409 Conflict.
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	botHTTPClient := &http.Client{
		Timeout: 90 * time.Second,
		Transport: &http.Transport{
			DialContext: func(dialCtx context.Context, network, addr string) (net.Conn, error) {
				mergedCtx, mergedCancel := context.WithCancel(dialCtx)
				go func() {
					select {
					case <-ctx.Done():
						mergedCancel()
					case <-mergedCtx.Done():
					}
				}()
				return dialer.DialContext(mergedCtx, network, addr)
			},
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}

	bot, err := tgbotapi.NewBotAPIWithClient(cfg.Token, tgbotapi.APIEndpoint, botHTTPClient)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	slog.Info("Telegram bot authorized", "username", bot.Self.UserName)

	if msgLimit <= 0 {
		msgLimit = 4000
	}
	return &TelegramChannel{
		config:       cfg,
		bot:          bot,
		messageLimit: msgLimit,
		stopCtx:      ctx,
		stopCancel:   cancel,
	}, nil
}

func (t *TelegramChannel) ID() string {
	return "telegram"
}

// Start runs the update loop in the background. GetUpdates is driven by
// hand so the offset survives restarts of the loop and Stop can end it.
func (t *TelegramChannel) Start(ctx gateway.ChannelContext) error {
	go func() {
		offset := 0
		for {
			select {
			case <-t.stopCtx.Done():
				return
			default:
			}

			reqConfig := tgbotapi.NewUpdate(offset)
			reqConfig.Timeout = 60

			updates, err := t.bot.GetUpdates(reqConfig)
			if err != nil {
				select {
				case <-t.stopCtx.Done():
					return
				case <-time.After(3 * time.Second):
					slog.Debug("Failed to get telegram updates", "error", err)
					continue
				}
			}

			for _, update := range updates {
				if update.UpdateID < offset {
					continue
				}
				offset = update.UpdateID + 1

				msg := toUnifiedMessage(update)
				if msg == nil {
					continue
				}
				ctx.OnMessage(t.ID(), msg)
			}
		}
	}()
	return nil
}

// toUnifiedMessage keeps text messages only; media without a caption is dropped.
func toUnifiedMessage(update tgbotapi.Update) *gateway.UnifiedMessage {
	m := update.Message
	if m == nil || m.Chat == nil {
		return nil
	}
	content := m.Text
	if content == "" {
		content = m.Caption
	}
	if content == "" {
		return nil
	}

	session := gateway.SessionContext{
		ChannelID: "telegram",
		ChatID:    strconv.FormatInt(m.Chat.ID, 10),
	}
	if m.From != nil {
		session.UserID = strconv.FormatInt(m.From.ID, 10)
		session.Username = m.From.UserName
	}
	return &gateway.UnifiedMessage{Session: session, Content: content, Raw: update}
}

// SendSignal implements gateway.SignalingChannel with the typing indicator.
func (t *TelegramChannel) SendSignal(session gateway.SessionContext, signal string) error {
	if signal != gateway.SignalThinking {
		return nil
	}
	chatID, err := strconv.ParseInt(session.ChatID, 10, 64)
	if err != nil {
		return err
	}
	_, err = t.bot.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping))
	return err
}

func (t *TelegramChannel) Stop() error {
	t.stopCancel()

	if httpClient, ok := t.bot.Client.(*http.Client); ok && httpClient != nil {
		if transport, ok := httpClient.Transport.(*http.Transport); ok {
			transport.CloseIdleConnections()
		}
	}
	return nil
}

func (t *TelegramChannel) Send(session gateway.SessionContext, message string) error {
	chatID, err := strconv.ParseInt(session.ChatID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat id for telegram: %s", session.ChatID)
	}

	for i, chunk := range splitMessage(message, t.messageLimit) {
		if _, err := t.bot.Send(tgbotapi.NewMessage(chatID, chunk)); err != nil {
			return fmt.Errorf("telegram send chunk %d failed: %w", i, err)
		}
	}
	return nil
}

// splitMessage cuts message into pieces of at most limit runes.
func splitMessage(message string, limit int) []string {
	runes := []rune(message)
	if limit <= 0 || len(runes) <= limit {
		return []string{message}
	}

	chunks := make([]string, 0, len(runes)/limit+1)
	for i := 0; i < len(runes); i += limit {
		end := min(i+limit, len(runes))
		chunks = append(chunks, string(runes[i:end]))
	}
	return chunks
}
