package push

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ukonnect/internal/api"
	"ukonnect/internal/api/apitest"
	"ukonnect/internal/notify"
	"ukonnect/internal/store"
)

func setupKV(t *testing.T) store.KV {
	t.Helper()
	dsn := fmt.Sprintf("file:push_test_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	kv, err := store.NewGormKV(db)
	require.NoError(t, err)
	return kv
}

type staticToken string

func (s staticToken) Token() string { return string(s) }

func TestOnNewToken_PersistsOnlyOnSuccess(t *testing.T) {
	svc := new(apitest.MockService)
	m := NewTokenManager(svc, setupKV(t), nil)
	ctx := context.Background()

	svc.On("UpdatePushToken", mock.Anything, "tok-1").Return(nil).Once()
	require.NoError(t, m.OnNewToken(ctx, "tok-1"))

	svc.On("UpdatePushToken", mock.Anything, "tok-2").Return(errors.New("offline")).Once()
	require.Error(t, m.OnNewToken(ctx, "tok-2"))

	got, err := m.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", got)

	assert.ErrorIs(t, m.OnNewToken(ctx, " "), ErrEmptyToken)
}

func TestToken_EmptyWhenNeverSet(t *testing.T) {
	m := NewTokenManager(new(apitest.MockService), setupKV(t), nil)
	got, err := m.Token(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestListener_DispatchesEventsAndReconnects(t *testing.T) {
	var (
		connections atomic.Int32
		authHeader  atomic.Value
	)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader.Store(r.Header.Get("Authorization"))
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		if connections.Add(1) == 1 {
			_ = conn.WriteJSON(api.PushEvent{Type: api.PushEventNotification, Title: "Rapat", Body: "Mulai 10 menit lagi"})
			_ = conn.WriteJSON(api.PushEvent{Type: api.PushEventToken, Token: "rotated"})
			return
		}
		_ = conn.WriteJSON(api.PushEvent{Type: api.PushEventNotification})
		time.Sleep(time.Second)
	}))
	defer srv.Close()

	svc := new(apitest.MockService)
	svc.On("UpdatePushToken", mock.Anything, "rotated").Return(nil).Once()
	kv := setupKV(t)
	mgr := NewTokenManager(svc, kv, nil)
	sink := &notify.Recorder{}

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	l := NewListener(wsURL, staticToken("jwt"), mgr, sink, nil, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		l.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return len(sink.Notifications()) == 2 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("listener did not stop")
	}

	got := sink.Notifications()
	assert.Equal(t, notify.Notification{Title: "Rapat", Body: "Mulai 10 menit lagi"}, got[0])
	assert.Equal(t, notify.Notification{Title: notify.DefaultTitle, Body: notify.DefaultBody}, got[1])
	assert.Equal(t, "Bearer jwt", authHeader.Load())

	tok, err := mgr.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "rotated", tok)
}
