package activity

import (
	"fmt"
	"io"
	"strconv"

	ics "github.com/arran4/golang-ical"

	"ukonnect/internal/domain"
)

const calendarProductID = "-//UKOnnect//Aktivitas//ID"

// ExportICS writes the locally known activities as an iCalendar feed.
// Missed activities are exported as cancelled events.
func (s *Scheduler) ExportICS(w io.Writer) error {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)

	stamp := s.now()
	for _, a := range s.Activities() {
		ev := cal.AddEvent("aktivitas-" + strconv.FormatInt(a.ID, 10) + "@ukonnect")
		ev.SetDtStampTime(stamp)
		ev.SetStartAt(a.Start)
		ev.SetEndAt(a.End)
		ev.SetSummary(a.Title)
		switch a.Status {
		case domain.ActivityMissed:
			ev.SetStatus(ics.ObjectStatusCancelled)
		default:
			ev.SetStatus(ics.ObjectStatusConfirmed)
		}
	}

	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return fmt.Errorf("write calendar: %w", err)
	}
	return nil
}
