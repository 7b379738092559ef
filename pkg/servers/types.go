package servers

import (
	"context"
	"net/http"
	"time"

	"github.com/qmdx00/lifecycle"
)

var (
	_ Server = (*httpServer)(nil)
	_ Server = (*baseServer)(nil)
)

type Server interface {
	lifecycle.Server
}

// StopFn stops a started server, giving it at most timeout to finish.
type StopFn func(ctx context.Context, timeout time.Duration)

var (
	_ BuildHttpServerFn = BuildHttpServer
)

type BuildHttpServerFn func(name string, addr string, handler http.Handler) (string, Server)
