package web

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"nmeacli/internal/nav"
)

// StatusReport is the polled JSON view: the navigation snapshot, ingestion
// health, and the recent raw lines.
type StatusReport struct {
	Service  string       `json:"service"`
	NowUTC   string       `json:"now_utc"`
	Snapshot nav.Snapshot `json:"snapshot"`
	Health   nav.Health   `json:"health"`
	Recent   []string     `json:"recent_lines,omitempty"`
}

// Handler serves GET /api/status from the store.
func Handler(store *nav.Store) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		report := StatusReport{
			Service:  "nmeacli",
			NowUTC:   time.Now().UTC().Format(time.RFC3339Nano),
			Snapshot: store.Current(),
			Health:   store.Health(),
			Recent:   store.RecentLines(),
		}
		b, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			http.Error(w, "marshal failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(b)
		_, _ = w.Write([]byte("\n"))
	})
	return mux
}

// Serve runs the status server until ctx is canceled.
func Serve(ctx context.Context, addr string, store *nav.Store, log zerolog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           Handler(store),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutCtx)
	}()

	log.Info().Str("addr", addr).Msg("status server listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
