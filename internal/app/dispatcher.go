package app

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/dis-cadets/srt-bot/internal/ctxutil"
	"github.com/dis-cadets/srt-bot/internal/logging"
	"github.com/dis-cadets/srt-bot/internal/metrics"
	"github.com/dis-cadets/srt-bot/internal/tg"
)

// EventFromUpdate keeps messages and button presses with a known sender; everything else is dropped.
func EventFromUpdate(u tgbotapi.Update) (Event, bool) {
	switch {
	case u.CallbackQuery != nil:
		cb := u.CallbackQuery
		if cb.Message == nil || cb.Message.Chat == nil || cb.From == nil {
			return Event{}, false
		}
		return Event{
			Private:    cb.Message.Chat.IsPrivate(),
			ChatID:     cb.Message.Chat.ID,
			ChatTitle:  cb.Message.Chat.Title,
			UserID:     cb.From.ID,
			Username:   cb.From.UserName,
			Action:     cb.Data,
			CallbackID: cb.ID,
			MessageID:  cb.Message.MessageID,
		}, true
	case u.Message != nil:
		m := u.Message
		if m.From == nil || m.Chat == nil || m.Text == "" {
			return Event{}, false
		}
		return Event{
			Private:   m.Chat.IsPrivate(),
			ChatID:    m.Chat.ID,
			ChatTitle: m.Chat.Title,
			UserID:    m.From.ID,
			Username:  m.From.UserName,
			Text:      m.Text,
		}, true
	}
	return Event{}, false
}

type Dispatcher struct {
	bot     tg.Sender
	conv    *Conversation
	limiter *ChatLimiter
	log     *zap.Logger
	wg      sync.WaitGroup
}

func NewDispatcher(bot tg.Sender, conv *Conversation, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{bot: bot, conv: conv, limiter: NewChatLimiter(), log: log.Named("dispatcher")}
}

// Run handles each update in its own goroutine until updates closes or ctx is done,
// then waits for in-flight handlers.
func (d *Dispatcher) Run(ctx context.Context, updates <-chan tgbotapi.Update) {
	defer d.wg.Wait()
	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			d.wg.Add(1)
			go func() {
				defer d.wg.Done()
				d.Dispatch(ctx, u)
			}()
		}
	}
}

// Dispatch processes one update synchronously, serialized per sender.
func (d *Dispatcher) Dispatch(ctx context.Context, u tgbotapi.Update) {
	ev, ok := EventFromUpdate(u)
	if !ok {
		return
	}
	metrics.BotUpdates.Inc()

	unlock := d.limiter.Lock(ev.UserID)
	defer unlock()

	ctx, _ = ctxutil.WithRequestID(ctx)
	ctx = ctxutil.WithChatID(ctx, ev.ChatID)
	log := logging.With(d.log, ctx)
	log.Debug("update", zap.Int64("user_id", ev.UserID), zap.String("action", ev.Action), zap.Bool("private", ev.Private))

	for _, c := range Render(ev, d.conv.Handle(ctx, ev)) {
		var err error
		if _, isCallback := c.(tgbotapi.CallbackConfig); isCallback {
			_, err = tg.Request(d.bot, c)
		} else {
			_, err = tg.Send(d.bot, c)
		}
		if err != nil {
			log.Warn("telegram send failed", zap.Error(err))
		}
	}
}
