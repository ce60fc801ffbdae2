package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ukonnect/internal/domain"
)

type AttendanceRepository struct {
	db *gorm.DB
}

func NewAttendanceRepository(db *gorm.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

type attendanceModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	UserID    int64     `gorm:"column:user_id;index;not null"`
	Date      string    `gorm:"column:tanggal"`
	Time      string    `gorm:"column:jam"`
	Type      string    `gorm:"column:tipe"`
	Payload   string    `gorm:"column:qr_value"`
	Status    string    `gorm:"column:status"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (attendanceModel) TableName() string { return "absensi" }

func toDomainAttendance(m attendanceModel) domain.AttendanceRecord {
	return domain.AttendanceRecord{
		ID:        m.ID,
		Date:      m.Date,
		Time:      m.Time,
		Type:      domain.AttendanceType(m.Type),
		Payload:   m.Payload,
		Status:    m.Status,
		CreatedAt: m.CreatedAt,
	}
}

// Upsert is keyed by the client-generated id, so a record delivered twice
// by the outbox is stored once.
func (r *AttendanceRepository) Upsert(ctx context.Context, userID int64, rec domain.AttendanceRecord) error {
	m := attendanceModel{
		ID:      rec.ID,
		UserID:  userID,
		Date:    rec.Date,
		Time:    rec.Time,
		Type:    string(rec.Type),
		Payload: rec.Payload,
		Status:  rec.Status,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"tanggal", "jam", "tipe", "qr_value", "status"}),
	}).Create(&m).Error
}

func (r *AttendanceRepository) ListByUser(ctx context.Context, userID int64) ([]domain.AttendanceRecord, error) {
	var rows []attendanceModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.AttendanceRecord, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomainAttendance(m))
	}
	return out, nil
}

func (r *AttendanceRepository) Delete(ctx context.Context, userID int64, id string) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&attendanceModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
