package domain

import "time"

type LoanStatus string

const (
	LoanActive   LoanStatus = "Dipinjam"
	LoanReturned LoanStatus = "Dikembalikan"
)

type Loan struct {
	ID            string     `json:"id"`
	EquipmentID   string     `json:"equipment_id"`
	EquipmentName string     `json:"equipment_name"`
	CreatedAt     time.Time  `json:"created_at"`
	StartAt       time.Time  `json:"start_at"`
	EndAt         time.Time  `json:"end_at"`
	Quantity      int        `json:"quantity"`
	Status        LoanStatus `json:"status"`
}

// IsActive reports whether some quantity is still borrowed.
func (l Loan) IsActive() bool {
	return l.Status == LoanActive && l.Quantity > 0
}

// IsTerminal reports whether the loan was fully returned. Either a returned
// status or a zero quantity is enough.
func (l Loan) IsTerminal() bool {
	return l.Status == LoanReturned || l.Quantity == 0
}
