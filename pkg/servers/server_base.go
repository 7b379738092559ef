package servers

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"schedule-planner/pkg/resources"
)

// baseServer holds no listener. It blocks until stopped and then closes the
// resources handed to it, in order.
type baseServer struct {
	name      string
	closeOnce sync.Once
	closed    chan struct{}
	closables []resources.Closable
}

func BuildBaseServer(closables ...resources.Closable) (string, Server) {
	return "base-server", NewBaseServer(closables...)
}

func NewBaseServer(closables ...resources.Closable) Server {
	return &baseServer{
		name:      "base-server",
		closed:    make(chan struct{}),
		closables: closables,
	}
}

func (server *baseServer) Run(ctx context.Context) error {
	log.Ctx(ctx).Info().Str("stage", "startup").Str("component", server.name).Msg("starting up")

	<-server.closed

	return nil
}

func (server *baseServer) Stop(ctx context.Context) error {
	server.closeOnce.Do(func() {
		log.Ctx(ctx).Info().Str("stage", "shut down").Str("component", server.name).Msg("stopping")
		defer log.Ctx(ctx).Info().Str("stage", "shut down").Str("component", server.name).Msg("stopped")

		for _, closable := range server.closables {
			closable.Close()
		}

		close(server.closed)
	})

	return nil
}
