package tg

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dis-cadets/srt-bot/internal/metrics"
	"github.com/dis-cadets/srt-bot/internal/observability"
)

// Sender is the part of *tgbotapi.BotAPI the bot needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// 5xx, 429 and timeouts are systemic; validation errors from Telegram are not reported.
func isSystemErr(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	for _, benign := range []string{"Bad Request", "message is not modified", "chat not found", "can't parse entities"} {
		if strings.Contains(s, benign) {
			return false
		}
	}
	for _, sys := range []string{"429", "500", "502", "503", "504", "timeout"} {
		if strings.Contains(s, sys) {
			return true
		}
	}
	return false
}

func report(err error) {
	if err == nil {
		return
	}
	metrics.HandlerErrors.Inc()
	if isSystemErr(err) {
		observability.CaptureErr(err)
	}
}

func Send(bot Sender, msg tgbotapi.Chattable) (tgbotapi.Message, error) {
	m, err := bot.Send(msg)
	report(err)
	return m, err
}

func Request(bot Sender, req tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	r, err := bot.Request(req)
	report(err)
	return r, err
}
