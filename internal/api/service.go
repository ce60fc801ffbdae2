package api

import (
	"context"
	"time"

	"ukonnect/internal/domain"
)

// Service is the remote contract every manager talks to. Implementations
// must be safe for concurrent use.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error)
	UpdatePushToken(ctx context.Context, token string) error

	ListActivities(ctx context.Context) ([]domain.Activity, error)
	CreateActivity(ctx context.Context, req ActivityUpsertRequest) (*domain.Activity, error)
	UpdateActivity(ctx context.Context, id int64, req ActivityUpsertRequest) (*domain.Activity, error)
	DeleteActivity(ctx context.Context, id int64) error

	ListEquipment(ctx context.Context) ([]domain.Equipment, error)

	ListLoans(ctx context.Context) ([]domain.Loan, error)
	CreateLoan(ctx context.Context, req LoanCreateRequest) (*domain.Loan, error)
	ReturnLoan(ctx context.Context, id string, qty int) (*LoanReturnResponse, error)
	DeleteLoan(ctx context.Context, id string) error

	ListPhotos(ctx context.Context) ([]domain.Photo, error)
	UploadPhoto(ctx context.Context, upload PhotoUpload) (*domain.Photo, error)
	DeletePhoto(ctx context.Context, id int64) error

	ListAttendance(ctx context.Context) ([]domain.AttendanceRecord, error)
	UpsertAttendance(ctx context.Context, req AttendanceUpsertRequest) error
	DeleteAttendance(ctx context.Context, id string) error
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

// Millis converts a timestamp to the wire representation.
func Millis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func (d ActivityDTO) toDomain() domain.Activity {
	return domain.Activity{
		ID:     d.ID,
		Title:  d.Title,
		Start:  fromMillis(d.StartTimeMillis),
		End:    fromMillis(d.EndTimeMillis),
		Status: domain.ParseActivityStatus(d.Status),
	}
}

func (d EquipmentDTO) toDomain() domain.Equipment {
	var key string
	if d.IconKey != nil {
		key = *d.IconKey
	}
	return domain.Equipment{
		ID:        d.ID,
		Name:      d.Name,
		Available: d.Available,
		Total:     d.Total,
		Icon:      domain.IconFor(key, d.Name),
	}
}

func (d LoanDTO) toDomain() domain.Loan {
	return domain.Loan{
		ID:            d.ID,
		EquipmentID:   d.EquipmentID,
		EquipmentName: d.EquipmentName,
		CreatedAt:     fromMillis(d.BorrowedAt),
		StartAt:       fromMillis(d.StartAt),
		EndAt:         fromMillis(d.EndAt),
		Quantity:      d.Quantity,
		Status:        domain.LoanStatus(d.Status),
	}
}

func (d PhotoDTO) toDomain() domain.Photo {
	return domain.Photo{
		ID:         d.ID,
		ImageURL:   d.ImageURL,
		Caption:    d.Caption,
		Date:       d.Date,
		Weekday:    d.Weekday,
		UploaderID: d.UploaderID,
		CreatedAt:  fromMillis(d.CreatedAtMillis),
	}
}

func (d AttendanceDTO) toDomain() domain.AttendanceRecord {
	return domain.AttendanceRecord{
		ID:        d.ID,
		Date:      d.Date,
		Time:      d.Time,
		Type:      domain.AttendanceType(d.Type),
		Payload:   d.Payload,
		Status:    d.Status,
		CreatedAt: fromMillis(d.CreatedAtMillis),
	}
}

// NewAttendanceUpsert builds the wire request for a locally created record.
func NewAttendanceUpsert(r domain.AttendanceRecord) AttendanceUpsertRequest {
	return AttendanceUpsertRequest{
		ID:      r.ID,
		Date:    r.Date,
		Time:    r.Time,
		Type:    string(r.Type),
		Payload: r.Payload,
		Status:  r.Status,
	}
}
