package servers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schedule-planner/pkg/resources"
)

type stubServer struct {
	runErr  error
	stopErr error
	stopped chan struct{}
}

func (s *stubServer) Run(_ context.Context) error {
	return s.runErr
}

func (s *stubServer) Stop(ctx context.Context) error {
	_, hasDeadline := ctx.Deadline()
	if hasDeadline {
		close(s.stopped)
	}
	return s.stopErr
}

func TestStart_ReportsRunError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	errChan := make(chan error, 1)

	Start(context.Background(), "stub", &stubServer{runErr: boom, stopped: make(chan struct{})}, errChan)

	select {
	case err := <-errChan:
		assert.ErrorIs(t, err, boom)
	case <-time.After(time.Second):
		t.Fatal("run error was not reported")
	}
}

func TestStart_StopUsesTimeout(t *testing.T) {
	t.Parallel()

	server := &stubServer{stopErr: errors.New("ignored"), stopped: make(chan struct{})}
	stopFn := Start(context.Background(), "stub", server, make(chan error, 1))

	stopFn(context.Background(), time.Second)

	select {
	case <-server.stopped:
	default:
		t.Fatal("stop did not receive a deadline")
	}
}

func TestBaseServer_ClosesOnStop(t *testing.T) {
	t.Parallel()

	closed := 0
	_, server := BuildBaseServer(resources.ClosableFunc(func() { closed++ }), resources.ClosableFunc(func() { closed++ }))

	done := make(chan error, 1)
	go func() { done <- server.Run(context.Background()) }()

	require.NoError(t, server.Stop(context.Background()))
	require.NoError(t, server.Stop(context.Background()))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("base server did not return after stop")
	}

	assert.Equal(t, 2, closed)
}

func TestHttpServer_StopBeforeRun(t *testing.T) {
	t.Parallel()

	name, server := BuildHttpServer("rest-server", "127.0.0.1:0", http.NotFoundHandler())
	assert.Equal(t, "rest-server", name)

	require.NoError(t, server.Stop(context.Background()))
	assert.NoError(t, server.Run(context.Background()))
}

func TestHttpServer_RunFailsOnBusyAddress(t *testing.T) {
	t.Parallel()

	busy := httptest.NewServer(http.NotFoundHandler())
	defer busy.Close()

	_, server := BuildHttpServer("rest-server", busy.Listener.Addr().String(), http.NotFoundHandler())

	err := server.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStart)
}

func TestLifecycleError(t *testing.T) {
	t.Parallel()

	cause := errors.New("address in use")

	err := ErrServerFailedToStart("debug-server", cause)
	assert.EqualError(t, err, "server debug-server failed to start: address in use")
	assert.ErrorIs(t, err, ErrStart)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrStop)

	var lifecycleErr *LifecycleError
	require.ErrorAs(t, ErrServerFailedToStop("rest-server", cause), &lifecycleErr)
	assert.Equal(t, "rest-server", lifecycleErr.Server)
}
