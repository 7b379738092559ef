package core

import (
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// IdGenerator hands out event ids for newly added events.
type IdGenerator func() EventId

// ClockIdGenerator derives ids from a nanosecond clock reading. Two events
// added within the same clock tick would collide; nothing guards against it.
func ClockIdGenerator(now func() time.Time) IdGenerator {
	if now == nil {
		now = time.Now
	}

	return func() EventId {
		return EventId(strconv.FormatInt(now().UnixNano(), 10))
	}
}

// SequenceIdGenerator yields prefix1, prefix2, ... and is meant for tests and
// deterministic runs.
func SequenceIdGenerator(prefix string) IdGenerator {
	var n atomic.Int64

	return func() EventId {
		return EventId(prefix + strconv.FormatInt(n.Add(1), 10))
	}
}

func newMessageId() string {
	return uuid.NewString()
}

func newProposalId() string {
	return uuid.NewString()
}
