package logging

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dis-cadets/srt-bot/internal/ctxutil"
)

func TestInit_FallsBackToInfo(t *testing.T) {
	l, err := Init("nonsense", "dev")
	if err != nil {
		t.Fatal(err)
	}
	defer l.Closer()
	if l.Level.Level() != zap.InfoLevel {
		t.Fatalf("level = %s", l.Level.Level())
	}
}

func TestWith_AddsContextFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	ctx := ctxutil.WithChatID(context.Background(), 42)
	ctx = ctxutil.WithCadetID(ctx, 7)
	ctx, rid := ctxutil.WithRequestID(ctx)

	With(zap.New(core), ctx).Info("handled")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("entries = %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["request_id"] != rid || fields["chat_id"] != int64(42) || fields["cadet_id"] != int64(7) {
		t.Fatalf("fields = %#v", fields)
	}
	if _, ok := fields["op"]; ok {
		t.Fatal("op was never set")
	}
}
