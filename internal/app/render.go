package app

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func keyboard(buttons []Button) *tgbotapi.InlineKeyboardMarkup {
	if len(buttons) == 0 {
		return nil
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(buttons))
	for _, b := range buttons {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Action)))
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &kb
}

// Render turns replies into Telegram requests, in order. A pressed button is always
// answered exactly once so the client stops its spinner.
func Render(ev Event, replies []Reply) []tgbotapi.Chattable {
	var out []tgbotapi.Chattable
	notice := ""
	for _, r := range replies {
		if notice == "" && r.Notice != "" {
			notice = r.Notice
		}
		kb := keyboard(r.Buttons)
		switch {
		case r.Document != nil:
			doc := tgbotapi.NewDocument(ev.ChatID, tgbotapi.FileBytes{Name: r.Document.Name, Bytes: r.Document.Data})
			doc.Caption = r.Text
			out = append(out, doc)
		case r.Text == "":
		case r.Edit && ev.MessageID != 0:
			if kb != nil {
				out = append(out, tgbotapi.NewEditMessageTextAndMarkup(ev.ChatID, ev.MessageID, r.Text, *kb))
			} else {
				out = append(out, tgbotapi.NewEditMessageText(ev.ChatID, ev.MessageID, r.Text))
			}
		default:
			msg := tgbotapi.NewMessage(ev.ChatID, r.Text)
			if kb != nil {
				msg.ReplyMarkup = *kb
			}
			out = append(out, msg)
		}
	}
	if ev.CallbackID != "" {
		out = append([]tgbotapi.Chattable{tgbotapi.NewCallback(ev.CallbackID, notice)}, out...)
	}
	return out
}
