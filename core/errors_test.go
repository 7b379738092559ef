package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError(t *testing.T) {
	t.Parallel()

	t.Run("NewError", func(t *testing.T) {
		t.Parallel()

		e := NewError("base message", errors.New("error 1"), nil, errors.New("error 2"))

		assert.Equal(t, "base message", e.Message)
		assert.Equal(t, []string{"error 1", "error 2"}, e.Messages())
	})

	t.Run("Error method", func(t *testing.T) {
		t.Parallel()

		got := NewError("test", errors.New("internal")).Error()
		assert.JSONEq(t, `{"message":"test","err":["internal"]}`, got)
	})

	t.Run("Unwrap", func(t *testing.T) {
		t.Parallel()

		unwrapped := NewError("base", errors.New("error 1"), errors.New("error 2")).Unwrap()
		require.Error(t, unwrapped)
		assert.Contains(t, unwrapped.Error(), "error 1")
		assert.Contains(t, unwrapped.Error(), "error 2")
	})

	t.Run("Unwrap nil or empty", func(t *testing.T) {
		t.Parallel()

		var e *Error
		require.NoError(t, e.Unwrap())
		require.NoError(t, NewError("no errors").Unwrap())
	})
}

func TestResponderStatusError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("chat: %w", &ResponderStatusError{StatusCode: 503})

	var statusErr *ResponderStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 503, statusErr.StatusCode)
	assert.Equal(t, "chat: responder returned status 503", err.Error())
}
