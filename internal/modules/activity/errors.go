package activity

import "errors"

var (
	ErrEmptyTitle     = errors.New("title is required")
	ErrEndBeforeStart = errors.New("end must be after start")
	ErrStartInPast    = errors.New("start must be after now")
	ErrInvalidClock   = errors.New("invalid clock reading")
	ErrNotFound       = errors.New("activity not found")
)

// userMessage is the text shown for a local validation failure.
func userMessage(err error) string {
	switch {
	case errors.Is(err, ErrEmptyTitle):
		return "Judul aktivitas tidak boleh kosong"
	case errors.Is(err, ErrEndBeforeStart):
		return "Waktu selesai harus setelah waktu mulai"
	case errors.Is(err, ErrStartInPast):
		return "Waktu mulai harus setelah waktu sekarang"
	default:
		return err.Error()
	}
}
