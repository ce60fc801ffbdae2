package push

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"ukonnect/internal/api"
	"ukonnect/internal/notify"
)

const (
	DefaultReconnectDelay = 5 * time.Second

	pongWait   = 60 * time.Second
	maxMsgSize = 64 * 1024
)

// Listener keeps a websocket open to the push endpoint and dispatches the
// events it receives.
type Listener struct {
	url    string
	tokens api.TokenSource
	mgr    *TokenManager
	sink   notify.Sink
	log    *zap.Logger
	dialer *websocket.Dialer
	delay  time.Duration
}

func NewListener(url string, tokens api.TokenSource, mgr *TokenManager, sink notify.Sink, log *zap.Logger, reconnectDelay time.Duration) *Listener {
	if log == nil {
		log = zap.NewNop()
	}
	if reconnectDelay <= 0 {
		reconnectDelay = DefaultReconnectDelay
	}
	return &Listener{
		url:    url,
		tokens: tokens,
		mgr:    mgr,
		sink:   sink,
		log:    log.Named("push"),
		dialer: websocket.DefaultDialer,
		delay:  reconnectDelay,
	}
}

// Run connects, reads until the connection drops, then waits the reconnect
// delay and tries again. It returns when ctx is done.
func (l *Listener) Run(ctx context.Context) {
	for {
		if err := l.session(ctx); err != nil && ctx.Err() == nil {
			l.log.Warn("push channel closed", zap.Error(err))
		}

		t := time.NewTimer(l.delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
	}
}

func (l *Listener) session(ctx context.Context) error {
	header := http.Header{}
	if l.tokens != nil {
		if token := l.tokens.Token(); token != "" {
			header.Set("Authorization", "Bearer "+token)
		}
	}

	conn, resp, err := l.dialer.DialContext(ctx, l.url, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return err
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPingHandler(func(data string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
	})

	l.log.Info("push channel connected")
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		var ev api.PushEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			l.log.Debug("ignoring malformed push event", zap.Error(err))
			continue
		}
		l.dispatch(ctx, ev)
	}
}

func (l *Listener) dispatch(ctx context.Context, ev api.PushEvent) {
	switch ev.Type {
	case api.PushEventToken:
		if l.mgr == nil {
			return
		}
		if err := l.mgr.OnNewToken(ctx, ev.Token); err != nil {
			l.log.Warn("push token rotation failed", zap.Error(err))
		}
	case api.PushEventNotification:
		n := notify.Notification{Title: ev.Title, Body: ev.Body}
		if n.Title == "" {
			n.Title = notify.DefaultTitle
		}
		if n.Body == "" {
			n.Body = notify.DefaultBody
		}
		l.sink.Notify(ctx, n)
	default:
		l.log.Debug("unknown push event", zap.String("type", ev.Type))
	}
}
