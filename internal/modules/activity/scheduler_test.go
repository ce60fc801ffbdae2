package activity

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ukonnect/internal/api"
	"ukonnect/internal/api/apitest"
	"ukonnect/internal/domain"
	"ukonnect/internal/notify"
)

var now = time.Date(2026, 10, 15, 12, 0, 0, 0, time.Local)

func newScheduler(t *testing.T) (*Scheduler, *apitest.MockService, *notify.Recorder) {
	t.Helper()
	svc := new(apitest.MockService)
	sink := &notify.Recorder{}
	return NewScheduler(svc, sink, nil, WithClock(func() time.Time { return now })), svc, sink
}

func TestCreate_RejectedLocally(t *testing.T) {
	tests := []struct {
		name    string
		in      Input
		wantErr error
		toast   string
	}{
		{"blank title", Input{Title: "  ", Start: now.Add(time.Hour), End: now.Add(2 * time.Hour)}, ErrEmptyTitle, "Judul aktivitas tidak boleh kosong"},
		{"end equals start", Input{Title: "Rapat", Start: now.Add(time.Hour), End: now.Add(time.Hour)}, ErrEndBeforeStart, "Waktu selesai harus setelah waktu mulai"},
		{"today in the past", Input{Title: "Rapat", Start: now.Add(-time.Hour), End: now.Add(time.Hour)}, ErrStartInPast, "Waktu mulai harus setelah waktu sekarang"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, svc, sink := newScheduler(t)

			_, err := s.Create(context.Background(), tt.in)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, []string{tt.toast}, sink.Toasts())
			svc.AssertNotCalled(t, "CreateActivity", mock.Anything, mock.Anything)
		})
	}
}

func TestCreate_DerivesStatus(t *testing.T) {
	yesterday := now.AddDate(0, 0, -1)
	tomorrow := now.AddDate(0, 0, 1)

	tests := []struct {
		name string
		in   Input
		want domain.ActivityStatus
	}{
		{"future", Input{Title: "Latihan", Start: tomorrow, End: tomorrow.Add(time.Hour)}, domain.ActivityUpcoming},
		{"already over", Input{Title: "Latihan", Start: yesterday, End: yesterday.Add(time.Hour)}, domain.ActivityMissed},
		{"explicitly completed", Input{Title: "Latihan", Start: yesterday, End: yesterday.Add(time.Hour), Completed: true}, domain.ActivityCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, svc, sink := newScheduler(t)

			svc.On("CreateActivity", mock.Anything, api.ActivityUpsertRequest{
				Title:           "Latihan",
				StartTimeMillis: tt.in.Start.UnixMilli(),
				EndTimeMillis:   tt.in.End.UnixMilli(),
				Status:          string(tt.want),
			}).Return(&domain.Activity{ID: 1, Title: "Latihan", Status: tt.want}, nil).Once()
			svc.On("ListActivities", mock.Anything).Return([]domain.Activity{{ID: 1, Title: "Latihan", Status: tt.want}}, nil).Once()

			_, err := s.Create(context.Background(), tt.in)
			require.NoError(t, err)

			svc.AssertExpectations(t)
			assert.Len(t, s.Activities(), 1)
			assert.Empty(t, sink.Notifications())
		})
	}
}

func TestCreate_StartsTodayNotifies(t *testing.T) {
	s, svc, sink := newScheduler(t)

	svc.On("CreateActivity", mock.Anything, mock.Anything).Return(&domain.Activity{ID: 4}, nil).Once()
	svc.On("ListActivities", mock.Anything).Return([]domain.Activity{}, nil).Once()

	_, err := s.Create(context.Background(), Input{Title: "Sparing", Start: now.Add(time.Hour), End: now.Add(3 * time.Hour)})
	require.NoError(t, err)

	require.Len(t, sink.Notifications(), 1)
	assert.Equal(t, "Aktivitas mulai hari ini", sink.Notifications()[0].Title)
	assert.Equal(t, "Sparing akan dimulai hari ini. Ayo lakukan aktivitas Anda.", sink.Notifications()[0].Body)
}

func TestCreate_RemoteFailure(t *testing.T) {
	s, svc, sink := newScheduler(t)
	tomorrow := now.AddDate(0, 0, 1)

	svc.On("CreateActivity", mock.Anything, mock.Anything).Return(nil, errors.New("dial tcp: refused")).Once()

	_, err := s.Create(context.Background(), Input{Title: "Rapat", Start: tomorrow, End: tomorrow.Add(time.Hour)})
	require.Error(t, err)

	assert.Equal(t, []string{"Gagal simpan aktivitas: dial tcp: refused"}, sink.Toasts())
	svc.AssertNotCalled(t, "ListActivities", mock.Anything)
}

func TestDelete_FailureToast(t *testing.T) {
	s, svc, sink := newScheduler(t)
	svc.On("DeleteActivity", mock.Anything, int64(3)).Return(&api.APIError{StatusCode: 500, Message: "db down"}).Once()

	require.Error(t, s.Delete(context.Background(), 3))
	assert.Equal(t, []string{"Gagal hapus aktivitas: db down"}, sink.Toasts())
}

func TestComplete(t *testing.T) {
	s, svc, _ := newScheduler(t)
	a := domain.Activity{ID: 9, Title: "Rapat", Start: now.Add(time.Hour), End: now.Add(2 * time.Hour), Status: domain.ActivityUpcoming}
	svc.On("ListActivities", mock.Anything).Return([]domain.Activity{a}, nil).Once()
	require.NoError(t, s.Refresh(context.Background()))

	assert.ErrorIs(t, s.Complete(context.Background(), 42), ErrNotFound)

	done := a
	done.Status = domain.ActivityCompleted
	svc.On("UpdateActivity", mock.Anything, int64(9), api.ActivityUpsertRequest{
		Title:           "Rapat",
		StartTimeMillis: a.Start.UnixMilli(),
		EndTimeMillis:   a.End.UnixMilli(),
		Status:          "COMPLETED",
	}).Return(&done, nil).Once()
	svc.On("ListActivities", mock.Anything).Return([]domain.Activity{done}, nil).Once()

	require.NoError(t, s.Complete(context.Background(), 9))
	assert.Equal(t, domain.ActivityCompleted, s.Activities()[0].Status)
}

func TestCheckLiveness_NotifiesOncePerActivity(t *testing.T) {
	s, svc, sink := newScheduler(t)

	overdue := domain.Activity{ID: 1, Title: "Rapat", Start: now.Add(-3 * time.Hour), End: now.Add(-2 * time.Hour), Status: domain.ActivityUpcoming}
	pending := domain.Activity{ID: 2, Title: "Latihan", Start: now.Add(time.Hour), End: now.Add(2 * time.Hour), Status: domain.ActivityUpcoming}
	svc.On("ListActivities", mock.Anything).Return([]domain.Activity{overdue, pending}, nil)
	require.NoError(t, s.Refresh(context.Background()))

	// The push fails, so the server still reports UPCOMING after a refresh.
	svc.On("UpdateActivity", mock.Anything, int64(1), mock.Anything).Return(nil, errors.New("offline"))

	flipped := s.CheckLiveness(context.Background(), now)
	require.Len(t, flipped, 1)
	assert.Equal(t, domain.ActivityMissed, s.Activities()[0].Status)
	assert.Equal(t, domain.ActivityUpcoming, s.Activities()[1].Status)

	require.NoError(t, s.Refresh(context.Background()))
	s.CheckLiveness(context.Background(), now.Add(10*time.Second))

	svc.AssertNumberOfCalls(t, "UpdateActivity", 2)
	require.Len(t, sink.Notifications(), 1)
	assert.Equal(t, notify.Notification{
		Title: "Aktivitas terlewat",
		Body:  "Rapat terlewatkan. Jangan lupa atur ulang jadwalmu.",
	}, sink.Notifications()[0])
}

func TestCheckLiveness_IgnoresCompleted(t *testing.T) {
	s, svc, sink := newScheduler(t)
	done := domain.Activity{ID: 1, Title: "Rapat", End: now.Add(-time.Hour), Status: domain.ActivityCompleted}
	svc.On("ListActivities", mock.Anything).Return([]domain.Activity{done}, nil).Once()
	require.NoError(t, s.Refresh(context.Background()))

	assert.Empty(t, s.CheckLiveness(context.Background(), now))
	assert.Empty(t, sink.Notifications())
	svc.AssertNotCalled(t, "UpdateActivity", mock.Anything, mock.Anything, mock.Anything)
}

func TestRun_StopsOnCancel(t *testing.T) {
	s, svc, sink := newScheduler(t)
	overdue := domain.Activity{ID: 1, Title: "Rapat", End: now.Add(-time.Hour), Status: domain.ActivityUpcoming}
	svc.On("ListActivities", mock.Anything).Return([]domain.Activity{overdue}, nil).Once()
	svc.On("UpdateActivity", mock.Anything, int64(1), mock.Anything).Return(&overdue, nil)
	require.NoError(t, s.Refresh(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return len(sink.Notifications()) == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_PicksUpActivitiesCreatedElsewhere(t *testing.T) {
	svc := new(apitest.MockService)
	sink := &notify.Recorder{}
	s := NewScheduler(svc, sink, nil,
		WithClock(func() time.Time { return now }),
		WithRefreshInterval(5*time.Millisecond),
	)

	overdue := domain.Activity{ID: 9, Title: "Latihan", End: now.Add(-time.Hour), Status: domain.ActivityUpcoming}
	svc.On("ListActivities", mock.Anything).Return([]domain.Activity{}, nil).Once()
	svc.On("ListActivities", mock.Anything).Return([]domain.Activity{overdue}, nil)
	svc.On("UpdateActivity", mock.Anything, int64(9), mock.Anything).Return(&overdue, nil)
	require.NoError(t, s.Refresh(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return len(sink.Notifications()) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	cancel()
	<-done

	assert.Len(t, sink.Notifications(), 1)
}

func TestBuildWindow(t *testing.T) {
	day := time.Date(2026, 10, 15, 0, 0, 0, 0, time.Local)

	start, end, err := BuildWindow(day, "08:30", "10:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 15, 8, 30, 0, 0, time.Local), start)
	assert.Equal(t, time.Date(2026, 10, 15, 10, 0, 0, 0, time.Local), end)

	start, end, err = BuildWindow(day, "22:00", "01:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 15, 22, 0, 0, 0, time.Local), start)
	assert.Equal(t, time.Date(2026, 10, 16, 1, 0, 0, 0, time.Local), end)

	_, _, err = BuildWindow(day, "25:00", "01:00")
	assert.ErrorIs(t, err, ErrInvalidClock)
}

func TestExportICS(t *testing.T) {
	s, svc, _ := newScheduler(t)
	svc.On("ListActivities", mock.Anything).Return([]domain.Activity{
		{ID: 1, Title: "Rapat Pengurus", Start: now.Add(time.Hour), End: now.Add(2 * time.Hour), Status: domain.ActivityUpcoming},
		{ID: 2, Title: "Latihan", Start: now.Add(-2 * time.Hour), End: now.Add(-time.Hour), Status: domain.ActivityMissed},
	}, nil).Once()
	require.NoError(t, s.Refresh(context.Background()))

	var buf bytes.Buffer
	require.NoError(t, s.ExportICS(&buf))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR"))
	assert.Equal(t, 2, strings.Count(out, "BEGIN:VEVENT"))
	assert.Contains(t, out, "SUMMARY:Rapat Pengurus")
	assert.Contains(t, out, "UID:aktivitas-2@ukonnect")
	assert.Contains(t, out, "STATUS:CANCELLED")
}
