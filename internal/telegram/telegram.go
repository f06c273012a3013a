// Package telegram adapts the Telegram Bot API to the transport-agnostic
// event and send interfaces of the conversation service.
package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"konntek-go/internal/bot"
)

// Client wraps a Telegram bot connection. It implements bot.Transport for
// the outbound side and Run drives the inbound update loop.
type Client struct {
	api    *tgbotapi.BotAPI
	logger bot.Logger

	// http client used to download uploaded documents.
	http *http.Client
}

func NewClient(token string, logger bot.Logger) (*Client, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connecting to telegram: %w", err)
	}
	if logger == nil {
		logger = &bot.NopLogger{}
	}
	return &Client{
		api:    api,
		logger: logger,
		http:   &http.Client{Timeout: 2 * time.Minute},
	}, nil
}

// Username returns the bot account name reported by the API.
func (c *Client) Username() string {
	return c.api.Self.UserName
}

// Run polls for updates and hands each one to the service until the context
// is cancelled.
func (c *Client) Run(ctx context.Context, svc *bot.Service) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30

	updates := c.api.GetUpdatesChan(cfg)
	defer c.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			ev, ok := c.translate(update)
			if !ok {
				continue
			}
			svc.HandleEvent(ev)
		}
	}
}

// translate converts one Telegram update into a service event. Updates
// without a usable message (edits, channel posts, stickers) are skipped.
func (c *Client) translate(update tgbotapi.Update) (bot.Event, bool) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return bot.Event{}, false
	}

	ev := bot.Event{
		ChatID:  msg.Chat.ID,
		ActorID: msg.From.ID,
	}

	switch {
	case msg.IsCommand():
		ev.Kind = bot.EventCommand
		ev.Text = msg.Command()
		if args := strings.Fields(msg.CommandArguments()); len(args) > 0 {
			ev.Args = args
		}
	case msg.Document != nil:
		data, err := c.download(msg.Document.FileID)
		if err != nil {
			c.logger.Warn("document download failed", "chat", msg.Chat.ID, "file", msg.Document.FileName, "error", err)
			return bot.Event{}, false
		}
		ev.Kind = bot.EventDocument
		ev.Doc = &bot.Document{Name: msg.Document.FileName, Data: data}
	case msg.Text != "":
		ev.Kind = bot.EventText
		ev.Text = msg.Text
	default:
		return bot.Event{}, false
	}
	return ev, true
}

func (c *Client) download(fileID string) ([]byte, error) {
	url, err := c.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("resolving file url: %w", err)
	}

	resp, err := c.http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("downloading file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading file: unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// SendMessage sends text, attaching a one-tap reply keyboard when rows are
// given and removing any previous keyboard when they are not.
func (c *Client) SendMessage(chatID int64, text string, keyboard [][]string) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	if len(keyboard) > 0 {
		msg.ReplyMarkup = replyKeyboard(keyboard)
	} else {
		msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(false)
	}

	sent, err := c.api.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("sending message: %w", err)
	}
	return sent.MessageID, nil
}

func (c *Client) SendDocument(chatID int64, name string, data []byte) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	if _, err := c.api.Send(doc); err != nil {
		return fmt.Errorf("sending document: %w", err)
	}
	return nil
}

func (c *Client) DeleteMessage(chatID int64, messageID int) error {
	if _, err := c.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		return fmt.Errorf("deleting message: %w", err)
	}
	return nil
}

func replyKeyboard(rows [][]string) tgbotapi.ReplyKeyboardMarkup {
	buttonRows := make([][]tgbotapi.KeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, tgbotapi.NewKeyboardButton(label))
		}
		buttonRows = append(buttonRows, buttons)
	}
	markup := tgbotapi.NewReplyKeyboard(buttonRows...)
	markup.ResizeKeyboard = true
	return markup
}

var _ bot.Transport = (*Client)(nil)
