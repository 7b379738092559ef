package servers

import (
	"errors"
	"fmt"
)

var (
	ErrStart = errors.New("failed to start")
	ErrStop  = errors.New("failed to stop")
)

// LifecycleError tags a server failure with the server name and the phase it
// happened in. It matches ErrStart or ErrStop through errors.Is.
type LifecycleError struct {
	Server string
	Phase  error
	Err    error
}

func (e *LifecycleError) Error() string {
	return fmt.Sprintf("server %s %v: %v", e.Server, e.Phase, e.Err)
}

func (e *LifecycleError) Unwrap() []error {
	return []error{e.Phase, e.Err}
}

func ErrServerFailedToStart(name string, err error) error {
	return &LifecycleError{Server: name, Phase: ErrStart, Err: err}
}

func ErrServerFailedToStop(name string, err error) error {
	return &LifecycleError{Server: name, Phase: ErrStop, Err: err}
}
