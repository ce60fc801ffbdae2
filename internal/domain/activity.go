package domain

import (
	"strings"
	"time"
)

type ActivityStatus string

const (
	ActivityUpcoming  ActivityStatus = "UPCOMING"
	ActivityCompleted ActivityStatus = "COMPLETED"
	ActivityMissed    ActivityStatus = "MISSED"
)

// ParseActivityStatus maps a wire value to a status. Blank or unknown values
// are treated as UPCOMING.
func ParseActivityStatus(s string) ActivityStatus {
	switch ActivityStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case ActivityCompleted:
		return ActivityCompleted
	case ActivityMissed:
		return ActivityMissed
	default:
		return ActivityUpcoming
	}
}

type Activity struct {
	ID     int64          `json:"id"`
	Title  string         `json:"title"`
	Start  time.Time      `json:"start"`
	End    time.Time      `json:"end"`
	Status ActivityStatus `json:"status"`
}

// Overdue reports whether an upcoming activity has already ended at now.
func (a Activity) Overdue(now time.Time) bool {
	return a.Status == ActivityUpcoming && now.After(a.End)
}
