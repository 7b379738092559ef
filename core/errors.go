package core

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrProposalNotFound     = errors.New("proposal not found")
	ErrEmptyMessage         = errors.New("message is empty")
	ErrSubmissionInFlight   = errors.New("a submission is already in flight")
	ErrResponderUnreachable = errors.New("responder unreachable")
	ErrMalformedReply       = errors.New("malformed responder reply")
	ErrInvalidSchedule      = errors.New("invalid schedule update")
)

// ResponderStatusError reports a responder reply with a non-2xx status.
type ResponderStatusError struct {
	StatusCode int
}

func (e *ResponderStatusError) Error() string {
	return fmt.Sprintf("responder returned status %d", e.StatusCode)
}

// Error is the JSON body written on failed HTTP requests.
type Error struct {
	Message string   `json:"message,omitempty"`
	Err     []string `json:"err,omitempty"`
}

func NewError(message string, errs ...error) *Error {
	msgs := make([]string, 0, len(errs))

	for _, err := range errs {
		if err != nil {
			msgs = append(msgs, err.Error())
		}
	}

	if len(msgs) == 0 {
		msgs = nil
	}

	return &Error{Message: message, Err: msgs}
}

func (e *Error) Error() string {
	//nolint:errchkjson
	data, _ := json.Marshal(e)
	return string(data)
}

func (e *Error) Unwrap() error {
	if e == nil || len(e.Err) == 0 {
		return nil
	}

	errs := make([]error, len(e.Err))
	for i, err := range e.Err {
		errs[i] = errors.New(err)
	}

	return errors.Join(errs...)
}

func (e *Error) Messages() []string {
	return e.Err
}
