package servers

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Start runs server in its own goroutine. A failing Run is reported on
// errChan without blocking; the returned StopFn shuts the server down.
func Start(ctx context.Context, name string, server Server, errChan chan<- error) StopFn {
	go func() {
		err := server.Run(ctx)
		if err == nil {
			return
		}

		select {
		case errChan <- err:
		default:
			log.Ctx(ctx).Error().Str("component", name).Err(err).Msg("error channel full, dropping server error")
		}
	}()

	return func(ctx context.Context, timeout time.Duration) {
		stopCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		err := server.Stop(stopCtx)
		if err != nil {
			log.Ctx(ctx).Error().Str("stage", "shut down").Str("component", name).Err(err).Msg("unable to stop")
		}
	}
}
