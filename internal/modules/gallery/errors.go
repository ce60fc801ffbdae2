package gallery

import (
	"context"
	"errors"
	"fmt"
	"net"

	"ukonnect/internal/api"
)

var (
	ErrEmptyContent = errors.New("image content is empty")
	ErrOldPhotoKept = errors.New("new photo saved but the old one could not be deleted")
)

type Category string

const (
	CategoryTimeout      Category = "timeout"
	CategoryConnectivity Category = "connectivity"
	CategoryServer       Category = "server"
	CategoryOther        Category = "other"
)

// UploadError is returned once every attempt has failed. Err is the error of
// the last attempt.
type UploadError struct {
	Category Category
	Attempts int
	Err      error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload failed after %d attempts (%s): %v", e.Attempts, e.Category, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// Message is the text shown to the user.
func (e *UploadError) Message() string {
	switch e.Category {
	case CategoryTimeout:
		return "Koneksi timeout. Coba lagi."
	case CategoryConnectivity:
		return "Tidak ada koneksi internet."
	case CategoryServer:
		return "Server error. Coba beberapa saat lagi."
	default:
		return "Upload gagal: " + api.UserMessage(e.Err, "unknown error")
	}
}

// Classify sorts a failed upload into one of the reported categories.
func Classify(err error) Category {
	var netErr net.Error
	switch {
	case err == nil:
		return CategoryOther
	case errors.Is(err, context.DeadlineExceeded):
		return CategoryTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		return CategoryTimeout
	case api.IsServerError(err):
		return CategoryServer
	case isConnectivity(err):
		return CategoryConnectivity
	default:
		return CategoryOther
	}
}

func isConnectivity(err error) bool {
	var (
		opErr  *net.OpError
		dnsErr *net.DNSError
	)
	return errors.As(err, &opErr) || errors.As(err, &dnsErr)
}
