package core

import (
	"errors"
	"fmt"
	"strings"
)

func ValidateEvent(event Event) error {
	if len(strings.TrimSpace(string(event.Id))) == 0 {
		return errors.New("id is required")
	}

	title := strings.TrimSpace(event.Title)
	if len(title) == 0 {
		return errors.New("title is required")
	}

	if event.Start.IsZero() || event.End.IsZero() {
		return errors.New("start and end are required")
	}

	if !event.Start.Before(event.End) {
		return errors.New("start must be before end")
	}

	return nil
}

// ValidateSchedule checks a full replacement coming from the responder before
// it reaches the store. All problems are reported, wrapped in ErrInvalidSchedule.
func ValidateSchedule(events []Event) error {
	var errs []error

	seen := make(map[EventId]int, len(events))

	for i, event := range events {
		err := ValidateEvent(event)
		if err != nil {
			errs = append(errs, fmt.Errorf("event %d: %w", i, err))
		}

		if event.Id == "" {
			continue
		}

		if first, ok := seen[event.Id]; ok {
			errs = append(errs, fmt.Errorf("event %d: id %q already used by event %d", i, event.Id, first))
			continue
		}

		seen[event.Id] = i
	}

	if len(errs) == 0 {
		return nil
	}

	return fmt.Errorf("%w: %w", ErrInvalidSchedule, errors.Join(errs...))
}
