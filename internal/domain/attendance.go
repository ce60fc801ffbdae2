package domain

import (
	"strings"
	"time"
)

type AttendanceType string

const (
	AttendanceCheckIn  AttendanceType = "Masuk"
	AttendanceCheckOut AttendanceType = "Pulang"
)

// ClassifyAttendance infers the record type from the scanned payload.
// Anything that is not clearly a check-out counts as a check-in.
func ClassifyAttendance(payload string) AttendanceType {
	p := strings.ToUpper(payload)
	switch {
	case strings.Contains(p, "MASUK"):
		return AttendanceCheckIn
	case strings.Contains(p, "PULANG"):
		return AttendanceCheckOut
	default:
		return AttendanceCheckIn
	}
}

type AttendanceRecord struct {
	ID        string         `json:"id"`
	Date      string         `json:"date"`
	Time      string         `json:"time"`
	Type      AttendanceType `json:"type"`
	Payload   string         `json:"payload"`
	Status    string         `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
}
