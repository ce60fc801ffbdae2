package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"ukonnect/internal/domain"
)

type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

type activityModel struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	UserID    int64     `gorm:"column:user_id;index;not null"`
	Title     string    `gorm:"column:title;not null"`
	Start     time.Time `gorm:"column:start_time"`
	End       time.Time `gorm:"column:end_time"`
	Status    string    `gorm:"column:status;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (activityModel) TableName() string { return "aktivitas" }

func toDomainActivity(m activityModel) domain.Activity {
	return domain.Activity{
		ID:     m.ID,
		Title:  m.Title,
		Start:  m.Start,
		End:    m.End,
		Status: domain.ParseActivityStatus(m.Status),
	}
}

func (r *ActivityRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Activity, error) {
	var rows []activityModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("start_time ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Activity, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomainActivity(m))
	}
	return out, nil
}

func (r *ActivityRepository) Create(ctx context.Context, userID int64, a domain.Activity) (*domain.Activity, error) {
	m := activityModel{
		UserID: userID,
		Title:  a.Title,
		Start:  a.Start,
		End:    a.End,
		Status: string(domain.ParseActivityStatus(string(a.Status))),
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, err
	}
	out := toDomainActivity(m)
	return &out, nil
}

func (r *ActivityRepository) Update(ctx context.Context, userID int64, a domain.Activity) (*domain.Activity, error) {
	var m activityModel
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", a.ID, userID).First(&m).Error; err != nil {
		return nil, notFound(err)
	}
	m.Title = a.Title
	m.Start = a.Start
	m.End = a.End
	m.Status = string(domain.ParseActivityStatus(string(a.Status)))
	if err := r.db.WithContext(ctx).Save(&m).Error; err != nil {
		return nil, err
	}
	out := toDomainActivity(m)
	return &out, nil
}

func (r *ActivityRepository) Delete(ctx context.Context, userID, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&activityModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
