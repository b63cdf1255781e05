package channels

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"ampersand-agent/internal/pkg/logger"
	"ampersand-agent/internal/service"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"
)

// EventHandler consumes platform events.
type EventHandler interface {
	HandleEvent(ctx context.Context, event service.InboundEvent, replier service.Replier) error
}

type sender interface {
	SendMessage(ctx context.Context, params *telego.SendMessageParams) (*telego.Message, error)
}

type identifier interface {
	GetMe(ctx context.Context) (*telego.User, error)
}

// TelegramChannel feeds Telegram messages received by long polling into an
// EventHandler.
type TelegramChannel struct {
	bot     *telego.Bot
	me      identifier
	handler EventHandler
	logger  logger.ILogger
	self    *telego.User
}

// NewTelegramChannel creates a new Telegram channel
func NewTelegramChannel(token string, log logger.ILogger) (*TelegramChannel, error) {
	bot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return &TelegramChannel{bot: bot, me: bot, logger: log}, nil
}

// Identify asks Telegram who the bot is and returns its username, the name
// users mention it by.
func (c *TelegramChannel) Identify(ctx context.Context) (string, error) {
	if c.self != nil {
		return c.self.Username, nil
	}
	self, err := c.me.GetMe(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to identify telegram bot: %w", err)
	}
	c.self = self
	return self.Username, nil
}

// MentionName picks the username the parser should match: the one Telegram
// reports, or configured when Telegram reported none.
func MentionName(configured, actual string, log logger.ILogger) string {
	configured = strings.TrimPrefix(strings.TrimSpace(configured), "@")
	if actual == "" {
		return configured
	}
	if configured != "" && !strings.EqualFold(configured, actual) {
		log.Warn("TELEGRAM", "BOT_USERNAME differs from the bot's username, using the bot's", map[string]interface{}{
			"configured": configured,
			"actual":     actual,
		})
	}
	return actual
}

// Run polls for updates until ctx is done, passing messages to handler.
func (c *TelegramChannel) Run(ctx context.Context, handler EventHandler) error {
	if _, err := c.Identify(ctx); err != nil {
		return err
	}
	c.handler = handler
	self := c.self

	updates, err := c.bot.UpdatesViaLongPolling(ctx, &telego.GetUpdatesParams{Timeout: 30})
	if err != nil {
		return fmt.Errorf("failed to start long polling: %w", err)
	}

	bh, err := th.NewBotHandler(c.bot, updates)
	if err != nil {
		return fmt.Errorf("failed to create bot handler: %w", err)
	}

	bh.HandleMessage(func(hctx *th.Context, message telego.Message) error {
		c.handle(hctx, message)
		return nil
	}, th.AnyMessage())

	c.logger.Info("TELEGRAM", "Telegram bot connected", map[string]interface{}{
		"username": self.Username,
	})

	go bh.Start()
	<-ctx.Done()
	bh.Stop()
	return nil
}

func (c *TelegramChannel) handle(ctx context.Context, message telego.Message) {
	event, ok := ToInboundEvent(message, c.self.ID)
	if !ok {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("TELEGRAM", "Recovered from panic while handling message", map[string]interface{}{
				"chat_id": message.Chat.ID,
				"panic":   fmt.Sprint(r),
			})
		}
	}()

	replier := &chatReplier{sender: c.bot, chatID: message.Chat.ID, messageID: message.MessageID}
	if err := c.handler.HandleEvent(ctx, event, replier); err != nil {
		c.logger.Warn("TELEGRAM", "Failed to handle message", map[string]interface{}{
			"chat_id": message.Chat.ID,
			"error":   err.Error(),
		})
	}
}

// ToInboundEvent converts a Telegram message. ok is false for messages
// without text.
func ToInboundEvent(message telego.Message, selfID int64) (service.InboundEvent, bool) {
	content := messageText(message)
	if content == "" {
		return service.InboundEvent{}, false
	}

	event := service.InboundEvent{
		ChannelID:   strconv.FormatInt(message.Chat.ID, 10),
		AuthorIsBot: message.From != nil && message.From.IsBot,
		Content:     content,
	}
	if ref := message.ReplyToMessage; ref != nil {
		event.Reference = &service.ReferencedMessage{
			Content:      messageText(*ref),
			AuthorIsSelf: ref.From != nil && ref.From.ID == selfID,
		}
	}
	return event, true
}

func messageText(message telego.Message) string {
	if message.Text != "" {
		return message.Text
	}
	return message.Caption
}

// chatReplier answers one message in its chat.
type chatReplier struct {
	sender    sender
	chatID    int64
	messageID int
}

func (r *chatReplier) Reply(ctx context.Context, text string) error {
	params := tu.Message(tu.ID(r.chatID), text).
		WithReplyParameters(&telego.ReplyParameters{MessageID: r.messageID, AllowSendingWithoutReply: true})
	_, err := r.sender.SendMessage(ctx, params)
	return err
}

func (r *chatReplier) Send(ctx context.Context, text string) error {
	_, err := r.sender.SendMessage(ctx, tu.Message(tu.ID(r.chatID), text))
	return err
}
