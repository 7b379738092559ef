package core

import (
	"io"
	"time"

	ics "github.com/arran4/golang-ical"
)

const icsProductId = "-//schedule-planner//EN"

// ExportICS writes the events as a single VCALENDAR. stamp becomes DTSTAMP on
// every VEVENT.
func ExportICS(w io.Writer, events []Event, stamp time.Time) error {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(icsProductId)
	cal.SetXWRCalName("My Schedule Planner")

	for _, event := range events {
		vevent := cal.AddEvent(string(event.Id) + "@schedule-planner")
		vevent.SetDtStampTime(stamp.UTC())
		vevent.SetSummary(event.Title)

		switch {
		case event.AllDay:
			vevent.SetAllDayStartAt(event.Start)
			vevent.SetAllDayEndAt(event.End)
		default:
			if !event.Start.IsZero() {
				vevent.SetStartAt(event.Start)
			}

			if !event.End.IsZero() {
				vevent.SetEndAt(event.End)
			}
		}

		if event.BackgroundColor != "" {
			vevent.SetColor(event.BackgroundColor)
		}
	}

	return cal.SerializeTo(w)
}
