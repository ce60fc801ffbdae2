package activity

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"ukonnect/internal/api"
	"ukonnect/internal/domain"
	"ukonnect/internal/notify"
)

const DefaultPollInterval = 10 * time.Second

// Input is what the user edits. Completed marks the activity as done
// explicitly; otherwise the status is derived from the clock.
type Input struct {
	Title     string
	Start     time.Time
	End       time.Time
	Completed bool
}

type Option func(*Scheduler)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithRefreshInterval makes Run reload the list from the server every d, so
// activities created elsewhere are checked too. Zero disables reloading.
func WithRefreshInterval(d time.Duration) Option {
	return func(s *Scheduler) { s.refreshEvery = d }
}

type Scheduler struct {
	svc          api.Service
	sink         notify.Sink
	log          *zap.Logger
	now          func() time.Time
	refreshEvery time.Duration

	mu       sync.RWMutex
	items    []domain.Activity
	notified map[int64]struct{}
}

func NewScheduler(svc api.Service, sink notify.Sink, log *zap.Logger, opts ...Option) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Scheduler{
		svc:      svc,
		sink:     sink,
		log:      log.Named("activity"),
		now:      time.Now,
		notified: make(map[int64]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scheduler) Activities() []domain.Activity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Activity(nil), s.items...)
}

func (s *Scheduler) Refresh(ctx context.Context) error {
	items, err := s.svc.ListActivities(ctx)
	if err != nil {
		s.toastErr("Gagal memuat aktivitas", err)
		return fmt.Errorf("list activities: %w", err)
	}
	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	return nil
}

func (s *Scheduler) Create(ctx context.Context, in Input) (*domain.Activity, error) {
	req, err := s.prepare(in)
	if err != nil {
		s.sink.Toast(userMessage(err))
		return nil, err
	}
	created, err := s.svc.CreateActivity(ctx, req)
	if err != nil {
		s.toastErr("Gagal simpan aktivitas", err)
		return nil, fmt.Errorf("create activity: %w", err)
	}
	s.afterSave(ctx, in)
	return created, nil
}

func (s *Scheduler) Update(ctx context.Context, id int64, in Input) (*domain.Activity, error) {
	req, err := s.prepare(in)
	if err != nil {
		s.sink.Toast(userMessage(err))
		return nil, err
	}
	updated, err := s.svc.UpdateActivity(ctx, id, req)
	if err != nil {
		s.toastErr("Gagal simpan aktivitas", err)
		return nil, fmt.Errorf("update activity %d: %w", id, err)
	}
	s.afterSave(ctx, in)
	return updated, nil
}

func (s *Scheduler) Delete(ctx context.Context, id int64) error {
	if err := s.svc.DeleteActivity(ctx, id); err != nil {
		s.toastErr("Gagal hapus aktivitas", err)
		return fmt.Errorf("delete activity %d: %w", id, err)
	}
	_ = s.Refresh(ctx)
	return nil
}

// Complete marks a known activity as done. Timestamps are resent unchanged.
func (s *Scheduler) Complete(ctx context.Context, id int64) error {
	a, ok := s.find(id)
	if !ok {
		return ErrNotFound
	}
	if err := s.pushStatus(ctx, a, domain.ActivityCompleted); err != nil {
		s.toastErr("Gagal update status", err)
		return fmt.Errorf("complete activity %d: %w", id, err)
	}
	_ = s.Refresh(ctx)
	return nil
}

// prepare validates in against the current time and builds the request.
func (s *Scheduler) prepare(in Input) (api.ActivityUpsertRequest, error) {
	now := s.now()
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return api.ActivityUpsertRequest{}, ErrEmptyTitle
	}
	if !in.End.After(in.Start) {
		return api.ActivityUpsertRequest{}, ErrEndBeforeStart
	}
	if sameDay(in.Start, now) && !in.Start.After(now) {
		return api.ActivityUpsertRequest{}, ErrStartInPast
	}

	status := domain.ActivityUpcoming
	switch {
	case in.Completed:
		status = domain.ActivityCompleted
	case now.After(in.End):
		status = domain.ActivityMissed
	}

	return api.ActivityUpsertRequest{
		Title:           title,
		StartTimeMillis: api.Millis(in.Start),
		EndTimeMillis:   api.Millis(in.End),
		Status:          string(status),
	}, nil
}

func (s *Scheduler) afterSave(ctx context.Context, in Input) {
	if !in.Completed && sameDay(in.Start, s.now()) {
		s.sink.Notify(ctx, notify.Notification{
			Title: "Aktivitas mulai hari ini",
			Body:  strings.TrimSpace(in.Title) + " akan dimulai hari ini. Ayo lakukan aktivitas Anda.",
		})
	}
	_ = s.Refresh(ctx)
}

// CheckLiveness flips every local UPCOMING activity that ended before now to
// MISSED, pushes the change without retrying and notifies once per activity
// for the lifetime of the scheduler. It returns the activities it flipped.
func (s *Scheduler) CheckLiveness(ctx context.Context, now time.Time) []domain.Activity {
	var (
		flipped  []domain.Activity
		announce []domain.Activity
	)

	s.mu.Lock()
	for i := range s.items {
		if !s.items[i].Overdue(now) {
			continue
		}
		s.items[i].Status = domain.ActivityMissed
		flipped = append(flipped, s.items[i])
		if _, done := s.notified[s.items[i].ID]; !done {
			s.notified[s.items[i].ID] = struct{}{}
			announce = append(announce, s.items[i])
		}
	}
	s.mu.Unlock()

	for _, a := range flipped {
		if err := s.pushStatus(ctx, a, domain.ActivityMissed); err != nil {
			s.log.Warn("push missed status", zap.Int64("activity_id", a.ID), zap.Error(err))
		}
	}
	for _, a := range announce {
		s.sink.Notify(ctx, notify.Notification{
			Title: "Aktivitas terlewat",
			Body:  a.Title + " terlewatkan. Jangan lupa atur ulang jadwalmu.",
		})
	}
	return flipped
}

// Run checks liveness every interval until ctx is done.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var reload <-chan time.Time
	if s.refreshEvery > 0 {
		rt := time.NewTicker(s.refreshEvery)
		defer rt.Stop()
		reload = rt.C
	}

	s.log.Info("liveness loop started",
		zap.Duration("interval", interval),
		zap.Duration("refresh", s.refreshEvery),
	)
	for {
		select {
		case <-ctx.Done():
			s.log.Info("liveness loop stopped")
			return
		case <-reload:
			s.reload(ctx)
		case <-ticker.C:
			s.CheckLiveness(ctx, s.now())
		}
	}
}

// reload is the background variant of Refresh: failures are only logged.
func (s *Scheduler) reload(ctx context.Context) {
	items, err := s.svc.ListActivities(ctx)
	if err != nil {
		s.log.Warn("background refresh failed", zap.Error(err))
		return
	}
	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
}

func (s *Scheduler) pushStatus(ctx context.Context, a domain.Activity, status domain.ActivityStatus) error {
	_, err := s.svc.UpdateActivity(ctx, a.ID, api.ActivityUpsertRequest{
		Title:           a.Title,
		StartTimeMillis: api.Millis(a.Start),
		EndTimeMillis:   api.Millis(a.End),
		Status:          string(status),
	})
	return err
}

func (s *Scheduler) find(id int64) (domain.Activity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.items {
		if a.ID == id {
			return a, true
		}
	}
	return domain.Activity{}, false
}

func (s *Scheduler) toastErr(prefix string, err error) {
	s.log.Warn(prefix, zap.Error(err))
	s.sink.Toast(prefix + ": " + api.UserMessage(err, "unknown error"))
}

func sameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
