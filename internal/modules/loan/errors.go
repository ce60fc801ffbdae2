package loan

import "errors"

var (
	ErrValidation        = errors.New("validation error")
	ErrUnknownEquipment  = errors.New("equipment not found")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidPeriod     = errors.New("invalid loan period")
)

const (
	msgLoadFailed   = "Terjadi kesalahan saat memuat data"
	msgBorrowFailed = "Terjadi kesalahan saat meminjam"
	msgReturnFailed = "Terjadi kesalahan saat mengembalikan"
	msgDeleteFailed = "Terjadi kesalahan saat menghapus"
)

// userMessage maps local validation failures to the text shown in the UI.
func userMessage(err error) string {
	switch {
	case errors.Is(err, ErrUnknownEquipment):
		return "Alat tidak ditemukan"
	case errors.Is(err, ErrInvalidQuantity):
		return "Jumlah tidak valid"
	case errors.Is(err, ErrInsufficientStock):
		return "Stok tidak mencukupi"
	case errors.Is(err, ErrInvalidPeriod):
		return "Tanggal selesai tidak boleh sebelum tanggal mulai"
	case errors.Is(err, ErrValidation):
		return "Data peminjaman tidak lengkap"
	default:
		return err.Error()
	}
}
