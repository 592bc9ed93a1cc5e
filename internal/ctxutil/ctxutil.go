package ctxutil

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// private keys so values cannot collide with other packages
type key int

const (
	keyChatID key = iota
	keyCadetID
	keyOpName
	keyRequestID
)

func WithChatID(ctx context.Context, chatID int64) context.Context {
	return context.WithValue(ctx, keyChatID, chatID)
}

func ChatID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(keyChatID).(int64)
	return id, ok
}

// WithCadetID stores the internal cadet id once the sender is resolved.
func WithCadetID(ctx context.Context, cadetID int64) context.Context {
	return context.WithValue(ctx, keyCadetID, cadetID)
}

func CadetID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(keyCadetID).(int64)
	return id, ok
}

// WithOp names the operation for logs.
func WithOp(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, keyOpName, name)
}

func Op(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(keyOpName).(string)
	return s, ok
}

// WithRequestID tags ctx with a fresh id for one handled update.
func WithRequestID(ctx context.Context) (context.Context, string) {
	id := uuid.NewString()
	return context.WithValue(ctx, keyRequestID, id), id
}

func RequestID(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(keyRequestID).(string)
	return s, ok
}

// DefaultDBTimeout is overridden from DB_TIMEOUT at startup.
var DefaultDBTimeout = 5 * time.Second

func SetDBTimeout(d time.Duration) {
	if d > 0 {
		DefaultDBTimeout = d
	}
}

func WithTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, d)
}

// WithDBTimeout keeps the parent's deadline when it is sooner than DefaultDBTimeout.
func WithDBTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	if dl, ok := parent.Deadline(); ok {
		remain := time.Until(dl)
		if remain < DefaultDBTimeout {
			return context.WithTimeout(parent, remain)
		}
	}
	return context.WithTimeout(parent, DefaultDBTimeout)
}
