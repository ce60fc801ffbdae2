package e2e

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"ukonnect/internal/api"
	"ukonnect/internal/database"
	"ukonnect/internal/devserver"
	"ukonnect/internal/domain"
	"ukonnect/internal/modules/activity"
	"ukonnect/internal/modules/attendance"
	"ukonnect/internal/modules/auth"
	"ukonnect/internal/modules/gallery"
	"ukonnect/internal/modules/loan"
	"ukonnect/internal/modules/push"
	"ukonnect/internal/notify"
	jwtsvc "ukonnect/internal/pkg/jwt"
	"ukonnect/internal/pkg/scope"
	"ukonnect/internal/session"
	"ukonnect/internal/store"
)

const (
	testUser     = "anggota"
	testPassword = "Password123!"
)

// countingTransport counts requests that actually leave the client.
type countingTransport struct {
	calls atomic.Int64
}

func (t *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.calls.Add(1)
	return http.DefaultTransport.RoundTrip(req)
}

type E2ETestSuite struct {
	server    *httptest.Server
	devserver *devserver.Server
	items     map[string]string

	transport *countingTransport
	kv        store.KV
	sessions  *session.Manager
	client    *api.Client
	clientDB  *gorm.DB
	sink      *notify.Recorder

	auth *auth.Service

	testCleanup func()
}

func openDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := database.Connect(dsn, nil)
	require.NoError(t, err, "Failed to connect to %s database", name)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	return db
}

func setupTestSuite(t *testing.T) *E2ETestSuite {
	serverDB := openDB(t, "server")
	clientDB := openDB(t, "client")

	srv, err := devserver.New(devserver.Options{
		DB:        serverDB,
		JWT:       jwtsvc.New("test_secret_key_32_characters_min", 24*time.Hour),
		UploadDir: t.TempDir(),
	})
	require.NoError(t, err)

	ctx := context.Background()
	rows, err := srv.SeedEquipmentItems(ctx, devserver.DefaultEquipment)
	require.NoError(t, err)
	items := make(map[string]string, len(rows))
	for _, r := range rows {
		items[r.Name] = r.ID
	}
	_, err = srv.EnsureUser(ctx, testUser, testPassword)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Router())

	kv, err := store.NewGormKV(clientDB)
	require.NoError(t, err)
	sessions := session.NewManager(kv, nil)
	require.NoError(t, sessions.Init(ctx))

	transport := &countingTransport{}
	client, err := api.NewClient(ts.URL,
		api.WithHTTPClient(&http.Client{Transport: transport, Timeout: 10 * time.Second}),
		api.WithTokenSource(sessions),
		api.WithUnauthorizedHook(sessions.Invalidate),
	)
	require.NoError(t, err)

	s := &E2ETestSuite{
		server:    ts,
		devserver: srv,
		items:     items,
		transport: transport,
		kv:        kv,
		sessions:  sessions,
		client:    client,
		clientDB:  clientDB,
		sink:      &notify.Recorder{},
		auth:      auth.NewService(client, sessions, nil),
	}
	s.testCleanup = func() {
		ts.Close()
		srv.Close()
		_ = sessions.Close()
	}
	return s
}

func (s *E2ETestSuite) login(t *testing.T) session.AuthContext {
	t.Helper()
	a, err := s.auth.Login(context.Background(), testUser, testPassword)
	require.NoError(t, err, "Login failed")
	return a
}

func availableOf(l *loan.Ledger, id string) int {
	for _, e := range l.Equipment() {
		if e.ID == id {
			return e.Available
		}
	}
	return -1
}

func TestFlow1_RegistrationAndSession(t *testing.T) {
	suite := setupTestSuite(t)
	defer suite.testCleanup()
	ctx := context.Background()

	t.Run("register then login", func(t *testing.T) {
		id, err := suite.auth.Register(ctx, "baru", "rahasia")
		require.NoError(t, err)
		assert.Positive(t, id)

		_, err = suite.auth.Register(ctx, "baru", "rahasia")
		var apiErr *api.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusConflict, apiErr.StatusCode)

		a, err := suite.auth.Login(ctx, "baru", "rahasia")
		require.NoError(t, err)
		assert.Equal(t, id, a.UserID)
	})

	t.Run("wrong password keeps no session", func(t *testing.T) {
		require.NoError(t, suite.auth.Logout(ctx))
		_, err := suite.auth.Login(ctx, testUser, "salah")
		require.Error(t, err)
		assert.Equal(t, "Username atau password salah", api.UserMessage(err, ""))
		assert.True(t, suite.sessions.Current().IsZero())
	})

	t.Run("session survives restart", func(t *testing.T) {
		a := suite.login(t)

		restarted := session.NewManager(suite.kv, nil)
		require.NoError(t, restarted.Init(ctx))
		assert.Equal(t, a, restarted.Current())
	})

	t.Run("401 clears the session", func(t *testing.T) {
		suite.login(t)
		require.NoError(t, suite.sessions.Set(ctx, session.AuthContext{Token: "forged", UserID: 1}))

		_, err := suite.client.ListLoans(ctx)
		assert.ErrorIs(t, err, api.ErrUnauthorized)
		assert.True(t, suite.sessions.Current().IsZero())
	})
}

func TestFlow2_BorrowAndReturn(t *testing.T) {
	suite := setupTestSuite(t)
	defer suite.testCleanup()
	suite.login(t)
	ctx := context.Background()

	ledger := loan.NewLedger(suite.client, nil)
	ball := suite.items["Bola Futsal Specs"]
	require.NoError(t, ledger.RefreshAll(ctx))
	require.Equal(t, 10, availableOf(ledger, ball))

	var created *domain.Loan
	t.Run("create decreases stock by qty", func(t *testing.T) {
		var err error
		created, err = ledger.CreateLoan(ctx, loan.CreateLoanInput{
			EquipmentID: ball,
			Quantity:    3,
			StartAt:     time.Now(),
			EndAt:       time.Now().Add(48 * time.Hour),
		})
		require.NoError(t, err)
		assert.Equal(t, domain.LoanActive, created.Status)
		assert.Equal(t, 7, availableOf(ledger, ball))
		require.Len(t, ledger.ActiveLoans(), 1)
		assert.Empty(t, ledger.Err())
	})

	t.Run("partial return", func(t *testing.T) {
		require.NoError(t, ledger.ReturnLoan(ctx, ledger.ActiveLoans()[0], 1))
		assert.Equal(t, 8, availableOf(ledger, ball))
		active := ledger.ActiveLoans()
		require.Len(t, active, 1)
		assert.Equal(t, 2, active[0].Quantity)
	})

	t.Run("cancel returns the rest", func(t *testing.T) {
		require.NoError(t, ledger.CancelLoan(ctx, ledger.ActiveLoans()[0]))
		assert.Equal(t, 10, availableOf(ledger, ball))
		assert.Empty(t, ledger.ActiveLoans())
		completed := ledger.CompletedLoans()
		require.Len(t, completed, 1)
		assert.Equal(t, created.ID, completed[0].ID)
		assert.True(t, completed[0].IsTerminal())
	})

	t.Run("returning a closed loan is a no-op", func(t *testing.T) {
		before := suite.transport.calls.Load()
		require.NoError(t, ledger.ReturnLoan(ctx, ledger.CompletedLoans()[0], 1))
		assert.Equal(t, before, suite.transport.calls.Load())
	})

	t.Run("delete removes the record", func(t *testing.T) {
		require.NoError(t, ledger.DeleteLoan(ctx, ledger.History()[0]))
		assert.Empty(t, ledger.History())
	})
}

func TestFlow3_LocalRejections(t *testing.T) {
	suite := setupTestSuite(t)
	defer suite.testCleanup()
	suite.login(t)
	ctx := context.Background()

	ledger := loan.NewLedger(suite.client, nil)
	require.NoError(t, ledger.RefreshAll(ctx))
	basket := suite.items["Bola Basket Molten GG7X"]
	before := suite.transport.calls.Load()

	cases := []struct {
		name string
		in   loan.CreateLoanInput
		want error
	}{
		{"over stock", loan.CreateLoanInput{EquipmentID: basket, Quantity: 7, StartAt: time.Now(), EndAt: time.Now()}, loan.ErrInsufficientStock},
		{"zero quantity", loan.CreateLoanInput{EquipmentID: basket, Quantity: 0, StartAt: time.Now(), EndAt: time.Now()}, loan.ErrInvalidQuantity},
		{"end before start", loan.CreateLoanInput{EquipmentID: basket, Quantity: 1, StartAt: time.Now(), EndAt: time.Now().Add(-time.Hour)}, loan.ErrInvalidPeriod},
		{"unknown equipment", loan.CreateLoanInput{EquipmentID: "nope", Quantity: 1, StartAt: time.Now(), EndAt: time.Now()}, loan.ErrUnknownEquipment},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ledger.CreateLoan(ctx, tc.in)
			assert.ErrorIs(t, err, tc.want)
			assert.NotEmpty(t, ledger.Err())
		})
	}

	assert.Equal(t, before, suite.transport.calls.Load(), "rejected loans must not reach the server")
	assert.Equal(t, 6, availableOf(ledger, basket))
}

func TestFlow4_RefreshIsIdempotent(t *testing.T) {
	suite := setupTestSuite(t)
	defer suite.testCleanup()
	suite.login(t)
	ctx := context.Background()

	ledger := loan.NewLedger(suite.client, nil)
	require.NoError(t, ledger.RefreshAll(ctx))
	_, err := ledger.CreateLoan(ctx, loan.CreateLoanInput{
		EquipmentID: suite.items["Raket Badminton Yonex"],
		Quantity:    2,
		StartAt:     time.Now(),
		EndAt:       time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	require.NoError(t, ledger.RefreshAll(ctx))
	equipment, history := ledger.Equipment(), ledger.History()
	require.NoError(t, ledger.RefreshAll(ctx))
	assert.Equal(t, equipment, ledger.Equipment())
	assert.Equal(t, history, ledger.History())
}

func TestFlow5_Attendance(t *testing.T) {
	suite := setupTestSuite(t)
	defer suite.testCleanup()
	suite.login(t)
	ctx := context.Background()

	outbox, err := attendance.NewOutbox(suite.clientDB)
	require.NoError(t, err)
	rec := attendance.NewRecorder(suite.client, outbox, suite.sink, nil)

	t.Run("scan is delivered immediately", func(t *testing.T) {
		got, err := rec.Scan(ctx, "UKM-PULANG-2024")
		require.NoError(t, err)
		assert.Equal(t, domain.AttendanceCheckOut, got.Type)

		pending, err := outbox.PendingCount(ctx)
		require.NoError(t, err)
		assert.Zero(t, pending)

		require.NoError(t, rec.Refresh(ctx))
		history := rec.History()
		require.Len(t, history, 1)
		assert.Equal(t, got.ID, history[0].ID)
		assert.Contains(t, suite.sink.Toasts(), attendance.StatusTaken)
	})

	t.Run("redelivery does not duplicate", func(t *testing.T) {
		history := rec.History()
		require.NoError(t, suite.client.UpsertAttendance(ctx, api.NewAttendanceUpsert(history[0])))
		require.NoError(t, rec.Refresh(ctx))
		assert.Len(t, rec.History(), 1)
	})

	t.Run("offline scan waits in the outbox", func(t *testing.T) {
		require.NoError(t, suite.sessions.Set(ctx, session.AuthContext{}))
		_, err := rec.Scan(ctx, "UKM-MASUK")
		require.NoError(t, err)
		pending, err := outbox.PendingCount(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 1, pending)

		suite.login(t)
		n, err := rec.Flush(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		require.NoError(t, rec.Refresh(ctx))
		assert.Len(t, rec.History(), 2)
	})
}

func TestFlow6_GalleryUpload(t *testing.T) {
	suite := setupTestSuite(t)
	defer suite.testCleanup()
	suite.login(t)
	ctx := context.Background()

	mgr := gallery.NewManager(suite.client, suite.client.BaseURL(), suite.sink, nil,
		gallery.WithSleeper(func(context.Context, time.Duration) error { return nil }),
	)
	png := []byte("\x89PNG\r\n\x1a\n0000")

	require.NoError(t, mgr.AddPhoto(ctx, gallery.Upload{Content: png, Caption: "Rapat", Date: "2024-05-01", Weekday: "Rabu"}))
	photos := mgr.Photos()
	require.Len(t, photos, 1)
	assert.True(t, strings.HasPrefix(photos[0].ImageURL, suite.server.URL+"/uploads/"), photos[0].ImageURL)

	resp, err := http.Get(photos[0].ImageURL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, mgr.EditPhoto(ctx, photos[0], gallery.Upload{Content: png, Caption: "Rapat (revisi)"}))
	photos = mgr.Photos()
	require.Len(t, photos, 1)
	assert.Equal(t, "Rapat (revisi)", photos[0].Caption)

	err = mgr.AddPhoto(ctx, gallery.Upload{})
	assert.ErrorIs(t, err, gallery.ErrEmptyContent)
}

func TestFlow7_ActivityLiveness(t *testing.T) {
	suite := setupTestSuite(t)
	defer suite.testCleanup()
	suite.login(t)
	ctx := context.Background()

	now := time.Now()
	sched := activity.NewScheduler(suite.client, suite.sink, nil, activity.WithClock(func() time.Time { return now }))

	created, err := sched.Create(ctx, activity.Input{Title: "Rapat", Start: now.Add(time.Hour), End: now.Add(2 * time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, domain.ActivityUpcoming, created.Status)

	later := now.Add(3 * time.Hour)
	flipped := sched.CheckLiveness(ctx, later)
	require.Len(t, flipped, 1)
	sched.CheckLiveness(ctx, later)

	missed := 0
	for _, n := range suite.sink.Notifications() {
		if n.Title == "Aktivitas terlewat" {
			missed++
		}
	}
	assert.Equal(t, 1, missed)

	remote, err := suite.client.ListActivities(ctx)
	require.NoError(t, err)
	require.Len(t, remote, 1)
	assert.Equal(t, domain.ActivityMissed, remote[0].Status)
}

func TestFlow8_PushChannel(t *testing.T) {
	suite := setupTestSuite(t)
	defer suite.testCleanup()
	suite.login(t)
	ctx := context.Background()

	tokens := push.NewTokenManager(suite.client, suite.kv, nil)
	require.NoError(t, tokens.OnNewToken(ctx, "device-token"))
	stored, err := tokens.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "device-token", stored)

	url := "ws" + strings.TrimPrefix(suite.server.URL, "http") + "/ws/push"
	listener := push.NewListener(url, suite.sessions, tokens, suite.sink, nil, 50*time.Millisecond)

	sc := scope.New(ctx)
	defer sc.Close()
	sc.Go(listener.Run)

	require.Eventually(t, func() bool { return suite.devserver.Hub().OnlineCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	ledger := loan.NewLedger(suite.client, nil)
	require.NoError(t, ledger.RefreshAll(ctx))
	_, err = ledger.CreateLoan(ctx, loan.CreateLoanInput{
		EquipmentID: suite.items["Bola Futsal Specs"],
		Quantity:    1,
		StartAt:     time.Now(),
		EndAt:       time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		for _, n := range suite.sink.Notifications() {
			if n.Title == "Peminjaman berhasil" {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
}

func TestFlow9_NotFoundMapsToSentinel(t *testing.T) {
	suite := setupTestSuite(t)
	defer suite.testCleanup()
	suite.login(t)

	err := suite.client.DeleteLoan(context.Background(), "does-not-exist")
	assert.True(t, errors.Is(err, api.ErrNotFound))
}

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}
