package loan

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ukonnect/internal/api"
	"ukonnect/internal/domain"
	"ukonnect/internal/pkg/metrics"
	"ukonnect/internal/pkg/validator"
)

type CreateLoanInput struct {
	EquipmentID string `validate:"required"`
	Quantity    int    `validate:"gte=1"`
	StartAt     time.Time
	EndAt       time.Time
}

// Ledger mirrors the server's equipment stock and loan history. The server
// stays authoritative: every successful mutation is followed by a full
// refresh, and the local lists are only ever replaced wholesale.
//
// Mutating calls are not serialized against each other.
type Ledger struct {
	svc api.Service
	log *zap.Logger

	mu        sync.RWMutex
	equipment []domain.Equipment
	history   []domain.Loan
	lastErr   string
}

func NewLedger(svc api.Service, log *zap.Logger) *Ledger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ledger{svc: svc, log: log.Named("loan")}
}

// RefreshAll fetches equipment and loans concurrently. Local state changes
// only when both fetches succeed.
func (l *Ledger) RefreshAll(ctx context.Context) error {
	var (
		equipment []domain.Equipment
		loans     []domain.Loan
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		equipment, err = l.svc.ListEquipment(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		loans, err = l.svc.ListLoans(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		l.fail("refresh", api.UserMessage(err, msgLoadFailed), err)
		return fmt.Errorf("refresh ledger: %w", err)
	}

	l.mu.Lock()
	l.equipment = equipment
	l.history = loans
	l.lastErr = ""
	l.mu.Unlock()
	return nil
}

// CreateLoan validates the request against the last known stock, then asks
// the server to create the loan. The returned loan is the server's record.
func (l *Ledger) CreateLoan(ctx context.Context, in CreateLoanInput) (*domain.Loan, error) {
	if err := l.validateCreate(in); err != nil {
		l.fail("create", userMessage(err), err)
		return nil, err
	}

	created, err := l.svc.CreateLoan(ctx, api.LoanCreateRequest{
		EquipmentID: in.EquipmentID,
		Quantity:    in.Quantity,
		StartAt:     api.Millis(in.StartAt),
		EndAt:       api.Millis(in.EndAt),
	})
	if err != nil {
		l.fail("create", api.UserMessage(err, msgBorrowFailed), err)
		return nil, fmt.Errorf("create loan: %w", err)
	}
	metrics.LoansCreated.Inc()

	l.mu.Lock()
	l.history = append([]domain.Loan{*created}, l.history...)
	l.mu.Unlock()

	// The loan exists on the server even if this refresh fails; the error
	// slot carries the refresh failure.
	_ = l.RefreshAll(ctx)
	return created, nil
}

func (l *Ledger) validateCreate(in CreateLoanInput) error {
	if err := validator.Struct(in); err != nil {
		if in.Quantity < 1 {
			return ErrInvalidQuantity
		}
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if in.StartAt.IsZero() || in.EndAt.IsZero() || in.StartAt.After(in.EndAt) {
		return ErrInvalidPeriod
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, e := range l.equipment {
		if e.ID != in.EquipmentID {
			continue
		}
		if in.Quantity > e.Available {
			return ErrInsufficientStock
		}
		return nil
	}
	return ErrUnknownEquipment
}

// ReturnLoan gives back qty units of an active loan. Loans that are not
// active, by status or by a zero quantity, are ignored.
func (l *Ledger) ReturnLoan(ctx context.Context, loan domain.Loan, qty int) error {
	if !loan.IsActive() {
		return nil
	}
	if qty < 1 || qty > loan.Quantity {
		l.fail("return", userMessage(ErrInvalidQuantity), ErrInvalidQuantity)
		return ErrInvalidQuantity
	}

	resp, err := l.svc.ReturnLoan(ctx, loan.ID, qty)
	if err != nil {
		l.fail("return", api.UserMessage(err, msgReturnFailed), err)
		return fmt.Errorf("return loan %s: %w", loan.ID, err)
	}
	l.log.Debug("loan returned",
		zap.String("loan_id", loan.ID),
		zap.Int("qty", qty),
		zap.Int("remaining", resp.Remaining),
		zap.String("status", resp.Status),
	)

	_ = l.RefreshAll(ctx)
	return nil
}

// CancelLoan returns the whole remaining quantity.
func (l *Ledger) CancelLoan(ctx context.Context, loan domain.Loan) error {
	return l.ReturnLoan(ctx, loan, loan.Quantity)
}

// DeleteLoan removes the record whatever its status.
func (l *Ledger) DeleteLoan(ctx context.Context, loan domain.Loan) error {
	if err := l.svc.DeleteLoan(ctx, loan.ID); err != nil {
		l.fail("delete", api.UserMessage(err, msgDeleteFailed), err)
		return fmt.Errorf("delete loan %s: %w", loan.ID, err)
	}
	_ = l.RefreshAll(ctx)
	return nil
}

func (l *Ledger) Equipment() []domain.Equipment {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]domain.Equipment(nil), l.equipment...)
}

func (l *Ledger) History() []domain.Loan {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]domain.Loan(nil), l.history...)
}

func (l *Ledger) ActiveLoans() []domain.Loan {
	return l.filter(domain.Loan.IsActive)
}

func (l *Ledger) CompletedLoans() []domain.Loan {
	return l.filter(domain.Loan.IsTerminal)
}

func (l *Ledger) filter(keep func(domain.Loan) bool) []domain.Loan {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.Loan, 0, len(l.history))
	for _, loan := range l.history {
		if keep(loan) {
			out = append(out, loan)
		}
	}
	return out
}

// Err returns the last user-facing error message, or "" after a successful
// refresh.
func (l *Ledger) Err() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lastErr
}

func (l *Ledger) fail(op, msg string, err error) {
	l.mu.Lock()
	l.lastErr = msg
	l.mu.Unlock()
	l.log.Warn("ledger operation failed", zap.String("op", op), zap.Error(err))
}
