package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/dis-cadets/srt-bot/internal/metrics"
)

// Pinger is satisfied by *sql.DB and by the Postgres store.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HTTPServer struct {
	srv *http.Server
}

func healthMux(db Pinger) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if db == nil {
			_, _ = w.Write([]byte("ok (memory)"))
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 800*time.Millisecond)
		defer cancel()
		t0 := time.Now()
		if err := db.PingContext(ctx); err != nil {
			http.Error(w, "db not ok: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
		metrics.ObserveDBPing(time.Since(t0))
		_, _ = w.Write([]byte("ok"))
	})

	mux.Handle("/metrics", metrics.Handler())
	return mux
}

// StartHTTP serves /healthz and /metrics until ctx is cancelled. db may be nil.
func StartHTTP(ctx context.Context, addr string, db Pinger, log *zap.Logger) *HTTPServer {
	srv := &http.Server{Addr: addr, Handler: healthMux(db), ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server stopped", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
	}()

	return &HTTPServer{srv: srv}
}
