package gallery

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
	"ukonnect/internal/pkg/metrics"
)

const (
	DefaultMaxAttempts = 3
	DefaultBackoffUnit = time.Second
)

type Upload struct {
	Content  []byte
	FileName string
	Caption  string
	Date     string
	Weekday  string
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

type Option func(*Manager)

func WithBackoffUnit(d time.Duration) Option {
	return func(m *Manager) { m.unit = d }
}

// WithMaxAttempts lowers the attempt budget. Values outside
// 1..DefaultMaxAttempts are ignored.
func WithMaxAttempts(n int) Option {
	return func(m *Manager) {
		if n > 0 && n <= DefaultMaxAttempts {
			m.maxAttempts = n
		}
	}
}

func WithSleeper(s Sleeper) Option {
	return func(m *Manager) { m.sleep = s }
}

// Manager mirrors the gallery and uploads photos with a linear backoff:
// after failed attempt i the next one starts i*unit later.
type Manager struct {
	svc     api.Service
	sink    notify.Sink
	log     *zap.Logger
	baseURL string

	unit        time.Duration
	maxAttempts int
	sleep       Sleeper
	now         func() time.Time

	mu     sync.RWMutex
	photos []domain.Photo
}

func NewManager(svc api.Service, baseURL string, sink notify.Sink, log *zap.Logger, opts ...Option) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	m := &Manager{
		svc:         svc,
		sink:        sink,
		log:         log.Named("gallery"),
		baseURL:     strings.TrimRight(baseURL, "/"),
		unit:        DefaultBackoffUnit,
		maxAttempts: DefaultMaxAttempts,
		sleep:       sleepCtx,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Photos returns the mirror with absolute image URLs.
func (m *Manager) Photos() []domain.Photo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Photo, len(m.photos))
	for i, p := range m.photos {
		p.ImageURL = m.absolute(p.ImageURL)
		out[i] = p
	}
	return out
}

func (m *Manager) Refresh(ctx context.Context) error {
	photos, err := m.svc.ListPhotos(ctx)
	if err != nil {
		m.log.Warn("list photos", zap.Error(err))
		m.sink.Toast("Gagal memuat galeri: " + api.UserMessage(err, "unknown error"))
		return fmt.Errorf("list photos: %w", err)
	}
	m.mu.Lock()
	m.photos = photos
	m.mu.Unlock()
	return nil
}

func (m *Manager) AddPhoto(ctx context.Context, up Upload) error {
	if _, err := m.upload(ctx, up); err != nil {
		return err
	}
	m.sink.Toast("Foto berhasil diunggah")
	_ = m.Refresh(ctx)
	return nil
}

func (m *Manager) DeletePhoto(ctx context.Context, id int64) error {
	if err := m.svc.DeletePhoto(ctx, id); err != nil {
		m.log.Warn("delete photo", zap.Int64("photo_id", id), zap.Error(err))
		m.sink.Toast("Gagal menghapus foto: " + api.UserMessage(err, "unknown error"))
		return fmt.Errorf("delete photo %d: %w", id, err)
	}
	_ = m.Refresh(ctx)
	return nil
}

// EditPhoto replaces old with a new upload. The old photo is deleted only
// after the new one is confirmed, so a failure never loses both.
func (m *Manager) EditPhoto(ctx context.Context, old domain.Photo, up Upload) error {
	created, err := m.upload(ctx, up)
	if err != nil {
		return err
	}

	if err := m.svc.DeletePhoto(ctx, old.ID); err != nil {
		m.log.Warn("delete replaced photo",
			zap.Int64("old_id", old.ID),
			zap.Int64("new_id", created.ID),
			zap.Error(err),
		)
		m.sink.Toast("Foto baru tersimpan, tetapi foto lama gagal dihapus")
		_ = m.Refresh(ctx)
		return fmt.Errorf("%w: %v", ErrOldPhotoKept, err)
	}

	m.sink.Toast("Foto berhasil diperbarui")
	_ = m.Refresh(ctx)
	return nil
}

// upload runs the retry loop. On exhaustion it toasts the category message
// and returns an *UploadError.
func (m *Manager) upload(ctx context.Context, up Upload) (*domain.Photo, error) {
	if len(up.Content) == 0 {
		m.sink.Toast("File gambar kosong")
		return nil, ErrEmptyContent
	}
	if up.FileName == "" {
		up.FileName = fmt.Sprintf("photo_%d.jpg", m.now().UnixMilli())
	}
	req := api.PhotoUpload{
		Content:  up.Content,
		FileName: up.FileName,
		Caption:  up.Caption,
		Date:     up.Date,
		Weekday:  up.Weekday,
	}

	var lastErr error
	for attempt := 1; attempt <= m.maxAttempts; attempt++ {
		photo, err := m.svc.UploadPhoto(ctx, req)
		metrics.UploadAttempts.WithLabelValues(metrics.Outcome(err)).Inc()
		if err == nil {
			return photo, nil
		}
		lastErr = err
		m.log.Warn("upload attempt failed", zap.Int("attempt", attempt), zap.Error(err))

		if attempt == m.maxAttempts {
			break
		}
		if err := m.sleep(ctx, time.Duration(attempt)*m.unit); err != nil {
			return nil, fmt.Errorf("upload photo: %w", err)
		}
	}

	uerr := &UploadError{Category: Classify(lastErr), Attempts: m.maxAttempts, Err: lastErr}
	m.sink.Toast(uerr.Message())
	return nil, uerr
}

func (m *Manager) absolute(path string) string {
	if path == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return m.baseURL + "/" + strings.TrimLeft(path, "/")
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
