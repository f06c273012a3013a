package telegram

import (
	"reflect"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"konntek-go/internal/bot"
)

func message(text string) *tgbotapi.Message {
	msg := &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: 42},
		From: &tgbotapi.User{ID: 7},
		Text: text,
	}
	if len(text) > 0 && text[0] == '/' {
		end := len(text)
		for i, r := range text {
			if r == ' ' {
				end = i
				break
			}
		}
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: end}}
	}
	return msg
}

func TestTranslate(t *testing.T) {
	c := &Client{logger: &bot.NopLogger{}}

	t.Run("plain text", func(t *testing.T) {
		ev, ok := c.translate(tgbotapi.Update{Message: message("bonjour")})
		if !ok {
			t.Fatal("expected event")
		}
		if ev.Kind != bot.EventText || ev.Text != "bonjour" {
			t.Errorf("unexpected event: %+v", ev)
		}
		if ev.ChatID != 42 || ev.ActorID != 7 {
			t.Errorf("unexpected ids: chat=%d actor=%d", ev.ChatID, ev.ActorID)
		}
	})

	t.Run("command with arguments", func(t *testing.T) {
		ev, ok := c.translate(tgbotapi.Update{Message: message("/export 123456789012345 pdf")})
		if !ok {
			t.Fatal("expected event")
		}
		if ev.Kind != bot.EventCommand || ev.Text != "export" {
			t.Errorf("unexpected event: %+v", ev)
		}
		if !reflect.DeepEqual(ev.Args, []string{"123456789012345", "pdf"}) {
			t.Errorf("unexpected args: %v", ev.Args)
		}
	})

	t.Run("command without arguments", func(t *testing.T) {
		ev, ok := c.translate(tgbotapi.Update{Message: message("/start")})
		if !ok {
			t.Fatal("expected event")
		}
		if ev.Kind != bot.EventCommand || ev.Text != "start" || ev.Args != nil {
			t.Errorf("unexpected event: %+v", ev)
		}
	})

	t.Run("skips updates without a message", func(t *testing.T) {
		if _, ok := c.translate(tgbotapi.Update{}); ok {
			t.Error("expected update to be skipped")
		}
	})

	t.Run("skips messages without text or document", func(t *testing.T) {
		msg := message("")
		if _, ok := c.translate(tgbotapi.Update{Message: msg}); ok {
			t.Error("expected update to be skipped")
		}
	})
}

func TestReplyKeyboard(t *testing.T) {
	markup := replyKeyboard([][]string{{"a", "b"}, {"c"}})
	if !markup.ResizeKeyboard {
		t.Error("expected resize keyboard")
	}
	if len(markup.Keyboard) != 2 || len(markup.Keyboard[0]) != 2 || len(markup.Keyboard[1]) != 1 {
		t.Errorf("unexpected keyboard shape: %v", markup.Keyboard)
	}
	if markup.Keyboard[0][0].Text != "a" || markup.Keyboard[1][0].Text != "c" {
		t.Errorf("unexpected button labels: %v", markup.Keyboard)
	}
}
