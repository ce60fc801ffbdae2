package activity

import (
	"fmt"
	"time"
)

// BuildWindow places two "HH:MM" clock readings on the calendar day of day,
// in day's location. An end earlier than the start rolls over to the next
// day, so 22:00-01:00 spans midnight.
func BuildWindow(day time.Time, start, end string) (time.Time, time.Time, error) {
	sh, sm, err := parseClock(start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	eh, em, err := parseClock(end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	y, m, d := day.Date()
	loc := day.Location()
	from := time.Date(y, m, d, sh, sm, 0, 0, loc)
	to := time.Date(y, m, d, eh, em, 0, 0, loc)
	if to.Before(from) {
		to = to.AddDate(0, 0, 1)
	}
	return from, to, nil
}

func parseClock(s string) (int, int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return t.Hour(), t.Minute(), nil
}
