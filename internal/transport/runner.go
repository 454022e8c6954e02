package transport

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"
)

// Source is an ordered byte stream the ingestion core can consume. The core
// imposes nothing on it beyond Read/Close semantics.
type Source interface {
	Label() string
	Open(ctx context.Context) (io.ReadCloser, error)
}

// RunWithReconnect opens src and hands the connection to run, reconnecting
// with capped exponential backoff whenever run returns. Reconnect policy
// belongs here, not in the parsing core: the core is simply restarted from
// scratch on each new connection.
func RunWithReconnect(ctx context.Context, log zerolog.Logger, src Source,
	run func(context.Context, io.ReadCloser) error) {

	backoff := 250 * time.Millisecond
	const maxBackoff = 10 * time.Second

	for {
		if ctx.Err() != nil {
			return
		}

		conn, err := src.Open(ctx)
		if err != nil {
			log.Warn().Err(err).Str("source", src.Label()).Msg("open failed")
			if !sleepCtx(ctx, backoff) {
				return
			}
			if backoff < maxBackoff {
				backoff *= 2
			}
			continue
		}

		log.Info().Str("source", src.Label()).Msg("connected")
		backoff = 250 * time.Millisecond

		if err := run(ctx, conn); err != nil && ctx.Err() == nil {
			log.Warn().Err(err).Str("source", src.Label()).Msg("stream ended")
		}
		_ = conn.Close()

		if !sleepCtx(ctx, backoff) {
			return
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
