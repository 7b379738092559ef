package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// EventId is opaque to the store. The widget and the responder may send it
// either as a JSON string or as a JSON number.
type EventId string

func (id *EventId) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string

		err := json.Unmarshal(data, &s)
		if err != nil {
			return fmt.Errorf("invalid event id: %w", err)
		}

		*id = EventId(s)

		return nil
	}

	var n json.Number

	err := json.Unmarshal(data, &n)
	if err != nil {
		return fmt.Errorf("invalid event id: %w", err)
	}

	*id = EventId(n.String())

	return nil
}

type Event struct {
	Id              EventId   `json:"id" yaml:"id"`
	Title           string    `json:"title" yaml:"title"`
	Start           time.Time `json:"start" yaml:"start"`
	End             time.Time `json:"end" yaml:"end"`
	AllDay          bool      `json:"allDay,omitempty" yaml:"all_day,omitempty"`
	BackgroundColor string    `json:"backgroundColor,omitempty" yaml:"background_color,omitempty"`
	BorderColor     string    `json:"borderColor,omitempty" yaml:"border_color,omitempty"`
	TextColor       string    `json:"textColor,omitempty" yaml:"text_color,omitempty"`
}

// EventChanges carries the fields a move or resize touches. Nil fields are kept.
type EventChanges struct {
	Title *string    `json:"title,omitempty"`
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Id        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Proposal is a range selected on the calendar that still waits for a title.
type Proposal struct {
	Id     string    `json:"id"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	AllDay bool      `json:"allDay,omitempty"`
}

type ChatRequest struct {
	Message         string  `json:"message"`
	CurrentSchedule []Event `json:"currentSchedule"`
}

// ChatReply mirrors the responder body. ScheduleUpdates is nil when the field
// is absent or null, and non-nil (possibly empty) when the responder sent a list.
type ChatReply struct {
	Response        string  `json:"response"`
	ScheduleUpdates []Event `json:"scheduleUpdates"`
}

// DefaultSeedEvents returns the two events the planner starts with.
func DefaultSeedEvents() []Event {
	return []Event{
		{
			Id:    "1",
			Title: "Korean Study",
			Start: time.Date(2025, time.June, 16, 6, 30, 0, 0, time.UTC),
			End:   time.Date(2025, time.June, 16, 7, 30, 0, 0, time.UTC),
		},
		{
			Id:    "2",
			Title: "Workout",
			Start: time.Date(2025, time.June, 16, 17, 30, 0, 0, time.UTC),
			End:   time.Date(2025, time.June, 16, 18, 30, 0, 0, time.UTC),
		},
	}
}
