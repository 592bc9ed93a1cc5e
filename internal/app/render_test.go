package app

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func TestRender_CallbackEditAndFollowUp(t *testing.T) {
	ev := Event{Private: true, ChatID: 5, CallbackID: "cb1", MessageID: 42}
	out := Render(ev, []Reply{
		{Text: MsgBooked, Edit: true, Notice: MsgStale},
		{Text: MsgMenu, Buttons: []Button{{LabelCheckIn, ActCheckIn}, {LabelDetails, ActDetails}}},
	})
	if len(out) != 3 {
		t.Fatalf("got %d requests", len(out))
	}

	cb, ok := out[0].(tgbotapi.CallbackConfig)
	if !ok || cb.CallbackQueryID != "cb1" || cb.Text != MsgStale {
		t.Fatalf("first request = %#v", out[0])
	}
	edit, ok := out[1].(tgbotapi.EditMessageTextConfig)
	if !ok || edit.MessageID != 42 || edit.Text != MsgBooked || edit.ReplyMarkup != nil {
		t.Fatalf("second request = %#v", out[1])
	}
	msg, ok := out[2].(tgbotapi.MessageConfig)
	if !ok || msg.ChatID != 5 {
		t.Fatalf("third request = %#v", out[2])
	}
	kb, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	if !ok || len(kb.InlineKeyboard) != 2 || *kb.InlineKeyboard[0][0].CallbackData != ActCheckIn {
		t.Fatalf("keyboard = %#v", msg.ReplyMarkup)
	}
}

func TestRender_EditWithoutMessageFallsBackToSend(t *testing.T) {
	out := Render(Event{ChatID: 5}, []Reply{{Text: MsgMenu, Edit: true}})
	if _, ok := out[0].(tgbotapi.MessageConfig); !ok || len(out) != 1 {
		t.Fatalf("got %#v", out)
	}
}

func TestRender_DocumentAndEmpty(t *testing.T) {
	out := Render(Event{ChatID: 5, CallbackID: "x"}, []Reply{
		{},
		{Text: "roster", Document: &Document{Name: "r.xlsx", Data: []byte("data")}},
	})
	if len(out) != 2 {
		t.Fatalf("got %d requests", len(out))
	}
	doc, ok := out[1].(tgbotapi.DocumentConfig)
	if !ok || doc.Caption != "roster" {
		t.Fatalf("document = %#v", out[1])
	}
	if fb, ok := doc.File.(tgbotapi.FileBytes); !ok || fb.Name != "r.xlsx" {
		t.Fatalf("file = %#v", doc.File)
	}
}
