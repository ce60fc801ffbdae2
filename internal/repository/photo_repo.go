package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"ukonnect/internal/domain"
)

type PhotoRepository struct {
	db *gorm.DB
}

func NewPhotoRepository(db *gorm.DB) *PhotoRepository {
	return &PhotoRepository{db: db}
}

type photoModel struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	UserID    int64     `gorm:"column:uploaded_by_user_id;index"`
	Path      string    `gorm:"column:path;not null"`
	Caption   string    `gorm:"column:keterangan"`
	Date      string    `gorm:"column:tanggal"`
	Weekday   string    `gorm:"column:hari"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (photoModel) TableName() string { return "galeri" }

// ImageURL is relative to the server root; clients resolve it.
func toDomainPhoto(m photoModel) domain.Photo {
	return domain.Photo{
		ID:         m.ID,
		ImageURL:   "/" + m.Path,
		Caption:    m.Caption,
		Date:       m.Date,
		Weekday:    m.Weekday,
		UploaderID: m.UserID,
		CreatedAt:  m.CreatedAt,
	}
}

type CreatePhotoParams struct {
	UserID  int64
	Path    string
	Caption string
	Date    string
	Weekday string
}

func (r *PhotoRepository) Create(ctx context.Context, p CreatePhotoParams) (*domain.Photo, error) {
	m := photoModel{
		UserID:  p.UserID,
		Path:    p.Path,
		Caption: p.Caption,
		Date:    p.Date,
		Weekday: p.Weekday,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, err
	}
	out := toDomainPhoto(m)
	return &out, nil
}

// List returns the shared gallery, newest first.
func (r *PhotoRepository) List(ctx context.Context) ([]domain.Photo, error) {
	var rows []photoModel
	if err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Photo, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomainPhoto(m))
	}
	return out, nil
}

// Delete removes a photo owned by userID and returns its stored path so the
// caller can drop the file.
func (r *PhotoRepository) Delete(ctx context.Context, userID, id int64) (string, error) {
	var m photoModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return "", notFound(err)
	}
	if m.UserID != userID {
		return "", ErrForbidden
	}
	if err := r.db.WithContext(ctx).Delete(&photoModel{}, m.ID).Error; err != nil {
		return "", err
	}
	return m.Path, nil
}
