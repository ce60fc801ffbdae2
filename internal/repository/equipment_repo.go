package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"ukonnect/internal/domain"
)

type EquipmentRepository struct {
	db *gorm.DB
}

func NewEquipmentRepository(db *gorm.DB) *EquipmentRepository {
	return &EquipmentRepository{db: db}
}

type equipmentModel struct {
	ID        string  `gorm:"column:id;primaryKey"`
	Name      string  `gorm:"column:nama;not null"`
	Available int     `gorm:"column:stok_tersedia;not null"`
	Total     int     `gorm:"column:stok_total;not null"`
	IconKey   *string `gorm:"column:icon_key"`
}

func (equipmentModel) TableName() string { return "alat" }

// EquipmentRow is the stored shape; the icon key stays raw so the client
// can apply its own fallback.
type EquipmentRow struct {
	ID        string
	Name      string
	Available int
	Total     int
	IconKey   *string
}

func toEquipmentRow(m equipmentModel) EquipmentRow {
	return EquipmentRow{ID: m.ID, Name: m.Name, Available: m.Available, Total: m.Total, IconKey: m.IconKey}
}

func (r *EquipmentRepository) List(ctx context.Context) ([]EquipmentRow, error) {
	var rows []equipmentModel
	if err := r.db.WithContext(ctx).Order("nama ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]EquipmentRow, 0, len(rows))
	for _, m := range rows {
		out = append(out, toEquipmentRow(m))
	}
	return out, nil
}

func (r *EquipmentRepository) GetByID(ctx context.Context, id string) (*EquipmentRow, error) {
	var m equipmentModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	row := toEquipmentRow(m)
	return &row, nil
}

// Upsert inserts the item by name or resets its stock when it already
// exists. Used by the seeder.
func (r *EquipmentRepository) Upsert(ctx context.Context, name string, total int, icon domain.IconKind) (*EquipmentRow, error) {
	var m equipmentModel
	err := r.db.WithContext(ctx).Where("nama = ?", name).First(&m).Error
	switch {
	case err == nil:
		m.Available = total
		m.Total = total
		if err := r.db.WithContext(ctx).Save(&m).Error; err != nil {
			return nil, err
		}
	case notFound(err) == ErrNotFound:
		key := string(icon)
		m = equipmentModel{ID: uuid.NewString(), Name: name, Available: total, Total: total, IconKey: &key}
		if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
			return nil, err
		}
	default:
		return nil, err
	}
	row := toEquipmentRow(m)
	return &row, nil
}
