package attendance

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"ukonnect/internal/domain"
)

type outboxState string

const (
	statePending   outboxState = "pending"
	stateDelivered outboxState = "delivered"
)

type outboxEntry struct {
	ID          string      `gorm:"primaryKey;size:36"`
	Date        string      `gorm:"size:10;not null"`
	Time        string      `gorm:"size:5;not null"`
	Type        string      `gorm:"size:16;not null"`
	Payload     string      `gorm:"type:text;not null"`
	Status      string      `gorm:"size:64"`
	State       outboxState `gorm:"size:16;index;not null"`
	Attempts    int         `gorm:"not null;default:0"`
	LastError   string      `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeliveredAt *time.Time
}

func (outboxEntry) TableName() string { return "attendance_outbox" }

func (e outboxEntry) record() domain.AttendanceRecord {
	return domain.AttendanceRecord{
		ID:        e.ID,
		Date:      e.Date,
		Time:      e.Time,
		Type:      domain.AttendanceType(e.Type),
		Payload:   e.Payload,
		Status:    e.Status,
		CreatedAt: e.CreatedAt,
	}
}

// Outbox keeps scanned records until the server acknowledges them.
type Outbox struct {
	db *gorm.DB
}

func NewOutbox(db *gorm.DB) (*Outbox, error) {
	if err := db.AutoMigrate(&outboxEntry{}); err != nil {
		return nil, err
	}
	return &Outbox{db: db}, nil
}

func (o *Outbox) Enqueue(ctx context.Context, r domain.AttendanceRecord) error {
	return o.db.WithContext(ctx).Create(&outboxEntry{
		ID:        r.ID,
		Date:      r.Date,
		Time:      r.Time,
		Type:      string(r.Type),
		Payload:   r.Payload,
		Status:    r.Status,
		State:     statePending,
		CreatedAt: r.CreatedAt,
	}).Error
}

// Pending lists undelivered records, oldest first.
func (o *Outbox) Pending(ctx context.Context, limit int) ([]domain.AttendanceRecord, error) {
	var rows []outboxEntry
	q := o.db.WithContext(ctx).
		Where("state = ?", statePending).
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.AttendanceRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.record())
	}
	return out, nil
}

func (o *Outbox) PendingCount(ctx context.Context) (int64, error) {
	var n int64
	err := o.db.WithContext(ctx).Model(&outboxEntry{}).Where("state = ?", statePending).Count(&n).Error
	return n, err
}

func (o *Outbox) MarkDelivered(ctx context.Context, id string) error {
	now := time.Now()
	res := o.db.WithContext(ctx).Model(&outboxEntry{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"state":        stateDelivered,
			"attempts":     gorm.Expr("attempts + 1"),
			"last_error":   "",
			"delivered_at": &now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (o *Outbox) MarkFailed(ctx context.Context, id string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return o.db.WithContext(ctx).Model(&outboxEntry{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": msg,
		}).Error
}

// Attempts reports how many deliveries were tried for id.
func (o *Outbox) Attempts(ctx context.Context, id string) (int, error) {
	var e outboxEntry
	err := o.db.WithContext(ctx).Select("attempts").Where("id = ?", id).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrNotFound
	}
	return e.Attempts, err
}

// PruneDelivered removes acknowledged rows delivered before cutoff.
func (o *Outbox) PruneDelivered(ctx context.Context, cutoff time.Time) (int64, error) {
	res := o.db.WithContext(ctx).
		Where("state = ? AND delivered_at < ?", stateDelivered, cutoff).
		Delete(&outboxEntry{})
	return res.RowsAffected, res.Error
}
