package attendance

import "errors"

var (
	ErrEmptyPayload = errors.New("scanned payload is empty")
	ErrNotFound     = errors.New("attendance record not found")
)
