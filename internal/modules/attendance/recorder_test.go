package attendance

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ukonnect/internal/api"
	"ukonnect/internal/api/apitest"
	"ukonnect/internal/domain"
	"ukonnect/internal/notify"
)

var scanTime = time.Date(2026, 10, 15, 7, 45, 0, 0, time.Local)

func setupOutbox(t *testing.T) *Outbox {
	t.Helper()
	dsn := fmt.Sprintf("file:outbox_test_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	ob, err := NewOutbox(db)
	require.NoError(t, err)
	return ob
}

func newRecorder(t *testing.T) (*Recorder, *apitest.MockService, *Outbox, *notify.Recorder) {
	t.Helper()
	svc := new(apitest.MockService)
	ob := setupOutbox(t)
	sink := &notify.Recorder{}
	r := NewRecorder(svc, ob, sink, nil, WithClock(func() time.Time { return scanTime }))
	return r, svc, ob, sink
}

func TestClassify(t *testing.T) {
	tests := map[string]domain.AttendanceType{
		"UKM-ABSEN-MASUK-2026":  domain.AttendanceCheckIn,
		"ukm-absen-pulang":      domain.AttendanceCheckOut,
		"masuk pulang":          domain.AttendanceCheckIn,
		"random-qr-payload-123": domain.AttendanceCheckIn,
		"":                      domain.AttendanceCheckIn,
	}
	for payload, want := range tests {
		assert.Equal(t, want, Classify(payload), payload)
	}
}

func TestScan_DeliversAndMarksOutbox(t *testing.T) {
	r, svc, ob, sink := newRecorder(t)

	svc.On("UpsertAttendance", mock.Anything, mock.MatchedBy(func(req api.AttendanceUpsertRequest) bool {
		return req.Date == "2026-10-15" && req.Time == "07:45" && req.Type == "Pulang" &&
			req.Payload == "ABSEN-PULANG" && req.Status == StatusTaken
	})).Return(nil).Once()

	rec, err := r.Scan(context.Background(), "  ABSEN-PULANG ")
	require.NoError(t, err)

	_, err = uuid.Parse(rec.ID)
	assert.NoError(t, err)
	assert.Equal(t, domain.AttendanceCheckOut, rec.Type)
	assert.Equal(t, []string{StatusTaken}, sink.Toasts())

	n, err := ob.PendingCount(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	svc.AssertExpectations(t)
}

func TestScan_FailureStaysQueuedUntilFlush(t *testing.T) {
	r, svc, ob, sink := newRecorder(t)
	ctx := context.Background()

	svc.On("UpsertAttendance", mock.Anything, mock.Anything).Return(errors.New("offline")).Once()

	rec, err := r.Scan(ctx, "ABSEN-MASUK")
	require.NoError(t, err)
	assert.Equal(t, []string{StatusTaken}, sink.Toasts())

	pending, err := ob.Pending(ctx, 0)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, rec.ID, pending[0].ID)

	svc.On("UpsertAttendance", mock.Anything, mock.MatchedBy(func(req api.AttendanceUpsertRequest) bool {
		return req.ID == rec.ID
	})).Return(nil).Once()

	delivered, err := r.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, delivered)

	attempts, err := ob.Attempts(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)

	delivered, err = r.Flush(ctx)
	require.NoError(t, err)
	assert.Zero(t, delivered)
	svc.AssertNumberOfCalls(t, "UpsertAttendance", 2)
}

func TestScan_EmptyPayload(t *testing.T) {
	r, svc, _, sink := newRecorder(t)

	_, err := r.Scan(context.Background(), "   ")

	assert.ErrorIs(t, err, ErrEmptyPayload)
	assert.Empty(t, sink.Toasts())
	svc.AssertNotCalled(t, "UpsertAttendance", mock.Anything, mock.Anything)
}

func TestRun_FlushesPending(t *testing.T) {
	r, svc, ob, _ := newRecorder(t)
	ctx := context.Background()

	svc.On("UpsertAttendance", mock.Anything, mock.Anything).Return(errors.New("offline")).Once()
	_, err := r.Scan(ctx, "ABSEN-MASUK")
	require.NoError(t, err)

	svc.On("UpsertAttendance", mock.Anything, mock.Anything).Return(nil)

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		r.Run(runCtx, 5*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		n, err := ob.PendingCount(ctx)
		return err == nil && n == 0
	}, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func TestOutbox_PruneDelivered(t *testing.T) {
	ob := setupOutbox(t)
	ctx := context.Background()

	rec := domain.AttendanceRecord{ID: uuid.NewString(), Date: "2026-10-15", Time: "07:45", Type: domain.AttendanceCheckIn, Payload: "x", CreatedAt: scanTime}
	require.NoError(t, ob.Enqueue(ctx, rec))

	n, err := ob.PruneDelivered(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n, "pending rows are never pruned")

	require.NoError(t, ob.MarkDelivered(ctx, rec.ID))
	n, err = ob.PruneDelivered(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	assert.ErrorIs(t, ob.MarkDelivered(ctx, "missing"), ErrNotFound)
}

func TestRefreshDeleteAndSummary(t *testing.T) {
	r, svc, _, _ := newRecorder(t)
	ctx := context.Background()

	records := []domain.AttendanceRecord{
		{ID: "a", Status: "Hadir"},
		{ID: "b", Status: "hadir"},
		{ID: "c", Status: StatusTaken},
	}
	svc.On("ListAttendance", mock.Anything).Return(records, nil).Once()
	require.NoError(t, r.Refresh(ctx))
	assert.Equal(t, Summary{Total: 3, Present: 2, Percent: 66}, r.Summary())

	svc.On("DeleteAttendance", mock.Anything, "c").Return(nil).Once()
	svc.On("ListAttendance", mock.Anything).Return(records[:2], nil).Once()
	require.NoError(t, r.Delete(ctx, "c"))
	assert.Len(t, r.History(), 2)
	assert.Equal(t, 100, r.Summary().Percent)
}
