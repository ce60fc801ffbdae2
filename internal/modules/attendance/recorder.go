package attendance

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ukonnect/internal/api"
	"ukonnect/internal/domain"
	"ukonnect/internal/notify"
	"ukonnect/internal/pkg/metrics"
)

const (
	StatusTaken          = "Absen berhasil diambil!"
	DefaultFlushInterval = 30 * time.Second

	dateLayout = "2006-01-02"
	timeLayout = "15:04"
	flushBatch = 50
)

// Classify infers check-in or check-out from a scanned payload.
func Classify(payload string) domain.AttendanceType {
	return domain.ClassifyAttendance(payload)
}

type Option func(*Recorder)

func WithClock(now func() time.Time) Option {
	return func(r *Recorder) { r.now = now }
}

// Recorder turns scans into attendance records. Records go to the outbox
// first and are delivered from there, so a failed POST is retried later
// instead of being lost.
type Recorder struct {
	svc    api.Service
	outbox *Outbox
	sink   notify.Sink
	log    *zap.Logger
	now    func() time.Time

	mu      sync.RWMutex
	history []domain.AttendanceRecord

	flushMu sync.Mutex
}

func NewRecorder(svc api.Service, outbox *Outbox, sink notify.Sink, log *zap.Logger, opts ...Option) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Recorder{
		svc:    svc,
		outbox: outbox,
		sink:   sink,
		log:    log.Named("attendance"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Scan records the payload, confirms it to the user and makes one delivery
// attempt. A failed attempt is not an error: the record stays queued.
func (r *Recorder) Scan(ctx context.Context, payload string) (domain.AttendanceRecord, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return domain.AttendanceRecord{}, ErrEmptyPayload
	}

	now := r.now()
	rec := domain.AttendanceRecord{
		ID:        uuid.NewString(),
		Date:      now.Format(dateLayout),
		Time:      now.Format(timeLayout),
		Type:      Classify(payload),
		Payload:   payload,
		Status:    StatusTaken,
		CreatedAt: now,
	}
	if err := r.outbox.Enqueue(ctx, rec); err != nil {
		return domain.AttendanceRecord{}, fmt.Errorf("enqueue attendance: %w", err)
	}
	r.sink.Toast(StatusTaken)

	r.flushMu.Lock()
	r.deliver(ctx, rec)
	r.flushMu.Unlock()
	r.updateGauge(ctx)
	return rec, nil
}

// Flush tries every pending record once and returns how many were
// acknowledged.
func (r *Recorder) Flush(ctx context.Context) (int, error) {
	r.flushMu.Lock()
	defer r.flushMu.Unlock()

	pending, err := r.outbox.Pending(ctx, flushBatch)
	if err != nil {
		return 0, fmt.Errorf("load outbox: %w", err)
	}

	delivered := 0
	for _, rec := range pending {
		if ctx.Err() != nil {
			break
		}
		if r.deliver(ctx, rec) {
			delivered++
		}
	}
	r.updateGauge(ctx)
	return delivered, ctx.Err()
}

// Run flushes the outbox every interval until ctx is done.
func (r *Recorder) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultFlushInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := r.Flush(ctx)
			if err != nil && ctx.Err() == nil {
				r.log.Warn("outbox flush", zap.Error(err))
			}
			if n > 0 {
				r.log.Info("outbox flushed", zap.Int("delivered", n))
			}
		}
	}
}

func (r *Recorder) deliver(ctx context.Context, rec domain.AttendanceRecord) bool {
	if err := r.svc.UpsertAttendance(ctx, api.NewAttendanceUpsert(rec)); err != nil {
		r.log.Warn("attendance delivery failed", zap.String("id", rec.ID), zap.Error(err))
		if merr := r.outbox.MarkFailed(ctx, rec.ID, err); merr != nil {
			r.log.Error("outbox update", zap.String("id", rec.ID), zap.Error(merr))
		}
		return false
	}
	if err := r.outbox.MarkDelivered(ctx, rec.ID); err != nil {
		r.log.Error("outbox update", zap.String("id", rec.ID), zap.Error(err))
	}
	return true
}

func (r *Recorder) updateGauge(ctx context.Context) {
	if n, err := r.outbox.PendingCount(ctx); err == nil {
		metrics.OutboxPending.Set(float64(n))
	}
}

func (r *Recorder) Refresh(ctx context.Context) error {
	records, err := r.svc.ListAttendance(ctx)
	if err != nil {
		r.sink.Toast("Gagal memuat riwayat absensi: " + api.UserMessage(err, "unknown error"))
		return fmt.Errorf("list attendance: %w", err)
	}
	r.mu.Lock()
	r.history = records
	r.mu.Unlock()
	return nil
}

func (r *Recorder) History() []domain.AttendanceRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.AttendanceRecord(nil), r.history...)
}

func (r *Recorder) Delete(ctx context.Context, id string) error {
	if err := r.svc.DeleteAttendance(ctx, id); err != nil {
		r.sink.Toast("Gagal menghapus absensi: " + api.UserMessage(err, "unknown error"))
		return fmt.Errorf("delete attendance %s: %w", id, err)
	}
	_ = r.Refresh(ctx)
	return nil
}

// Summary counts the mirrored history. Present counts records whose status
// is "hadir".
type Summary struct {
	Total   int
	Present int
	Percent int
}

func (r *Recorder) Summary() Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s := Summary{Total: len(r.history)}
	for _, rec := range r.history {
		if strings.EqualFold(rec.Status, "hadir") {
			s.Present++
		}
	}
	if s.Total > 0 {
		s.Percent = min(max(s.Present*100/s.Total, 0), 100)
	}
	return s
}
