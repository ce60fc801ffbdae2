package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PushTokenRepository struct {
	db *gorm.DB
}

func NewPushTokenRepository(db *gorm.DB) *PushTokenRepository {
	return &PushTokenRepository{db: db}
}

type pushTokenModel struct {
	Token     string    `gorm:"column:token;primaryKey"`
	UserID    *int64    `gorm:"column:user_id;index"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (pushTokenModel) TableName() string { return "push_tokens" }

// Save registers a device token. Anonymous tokens are kept with no user and
// get claimed when the same token is later sent with a login.
func (r *PushTokenRepository) Save(ctx context.Context, token string, userID *int64) error {
	m := pushTokenModel{Token: token, UserID: userID}
	cols := []string{"updated_at"}
	if userID != nil {
		cols = append(cols, "user_id")
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoUpdates: clause.AssignmentColumns(cols),
	}).Create(&m).Error
}

func (r *PushTokenRepository) CountForUser(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&pushTokenModel{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}
