package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicate         = errors.New("duplicate record")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrLoanNotActive     = errors.New("loan is not active")
	ErrReturnExceeds     = errors.New("return quantity exceeds borrowed quantity")
	ErrForbidden         = errors.New("record belongs to another user")
)

// Migrate creates or updates every devserver table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&userModel{},
		&equipmentModel{},
		&loanModel{},
		&activityModel{},
		&photoModel{},
		&attendanceModel{},
		&pushTokenModel{},
	)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// isUniqueViolation recognises duplicate keys on postgres (23505) and on
// both sqlite drivers.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
