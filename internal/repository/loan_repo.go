package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"ukonnect/internal/domain"
)

type LoanRepository struct {
	db *gorm.DB
}

func NewLoanRepository(db *gorm.DB) *LoanRepository {
	return &LoanRepository{db: db}
}

type loanModel struct {
	ID            string    `gorm:"column:id;primaryKey"`
	UserID        int64     `gorm:"column:user_id;index;not null"`
	EquipmentID   string    `gorm:"column:alat_id;index;not null"`
	EquipmentName string    `gorm:"column:nama_equipment"`
	BorrowedAt    time.Time `gorm:"column:waktu_pinjam"`
	StartAt       time.Time `gorm:"column:tanggal_mulai"`
	EndAt         time.Time `gorm:"column:tanggal_selesai"`
	Quantity      int       `gorm:"column:jumlah;not null"`
	Status        string    `gorm:"column:status;not null"`
}

func (loanModel) TableName() string { return "peminjaman" }

func toDomainLoan(m loanModel) domain.Loan {
	return domain.Loan{
		ID:            m.ID,
		EquipmentID:   m.EquipmentID,
		EquipmentName: m.EquipmentName,
		CreatedAt:     m.BorrowedAt,
		StartAt:       m.StartAt,
		EndAt:         m.EndAt,
		Quantity:      m.Quantity,
		Status:        domain.LoanStatus(m.Status),
	}
}

type CreateLoanParams struct {
	UserID      int64
	EquipmentID string
	Quantity    int
	StartAt     time.Time
	EndAt       time.Time
	Now         time.Time
}

// Create takes qty units out of stock and records the loan in one
// transaction. The decrement is conditional so two concurrent borrowers can
// never push stock below zero.
func (r *LoanRepository) Create(ctx context.Context, p CreateLoanParams) (*domain.Loan, error) {
	var out loanModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var eq equipmentModel
		if err := tx.First(&eq, "id = ?", p.EquipmentID).Error; err != nil {
			return notFound(err)
		}

		res := tx.Model(&equipmentModel{}).
			Where("id = ? AND stok_tersedia >= ?", p.EquipmentID, p.Quantity).
			UpdateColumn("stok_tersedia", gorm.Expr("stok_tersedia - ?", p.Quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientStock
		}

		out = loanModel{
			ID:            uuid.NewString(),
			UserID:        p.UserID,
			EquipmentID:   eq.ID,
			EquipmentName: eq.Name,
			BorrowedAt:    p.Now,
			StartAt:       p.StartAt,
			EndAt:         p.EndAt,
			Quantity:      p.Quantity,
			Status:        string(domain.LoanActive),
		}
		return tx.Create(&out).Error
	})
	if err != nil {
		return nil, err
	}
	loan := toDomainLoan(out)
	return &loan, nil
}

func (r *LoanRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Loan, error) {
	var rows []loanModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("waktu_pinjam DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Loan, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomainLoan(m))
	}
	return out, nil
}

// Return gives qty units back. The loan is closed when nothing remains.
// Asking for more than is still borrowed is rejected rather than clamped.
func (r *LoanRepository) Return(ctx context.Context, userID int64, id string, qty int) (*domain.Loan, error) {
	var out loanModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&out).Error; err != nil {
			return notFound(err)
		}
		if out.Status != string(domain.LoanActive) || out.Quantity <= 0 {
			return ErrLoanNotActive
		}
		if qty > out.Quantity {
			return ErrReturnExceeds
		}

		remaining := out.Quantity - qty
		status := out.Status
		if remaining == 0 {
			status = string(domain.LoanReturned)
		}
		// jumlah must still be what we read, so a racing return cannot push it below zero.
		res := tx.Model(&loanModel{}).
			Where("id = ? AND jumlah = ? AND status = ?", out.ID, out.Quantity, string(domain.LoanActive)).
			Updates(map[string]any{"jumlah": remaining, "status": status})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrReturnExceeds
		}
		out.Quantity, out.Status = remaining, status
		return restock(tx, out.EquipmentID, qty)
	})
	if err != nil {
		return nil, err
	}
	loan := toDomainLoan(out)
	return &loan, nil
}

// Delete removes the loan. Units still borrowed go back to stock.
func (r *LoanRepository) Delete(ctx context.Context, userID int64, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m loanModel
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&m).Error; err != nil {
			return notFound(err)
		}
		if m.Status == string(domain.LoanActive) && m.Quantity > 0 {
			if err := restock(tx, m.EquipmentID, m.Quantity); err != nil {
				return err
			}
		}
		return tx.Delete(&loanModel{}, "id = ?", m.ID).Error
	})
}

func restock(tx *gorm.DB, equipmentID string, qty int) error {
	return tx.Model(&equipmentModel{}).
		Where("id = ?", equipmentID).
		UpdateColumn("stok_tersedia", gorm.Expr("stok_tersedia + ?", qty)).Error
}
