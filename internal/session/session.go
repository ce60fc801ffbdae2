package session

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"ukonnect/internal/pkg/jwt"
	"ukonnect/internal/store"
)

const (
	keyToken  = "token"
	keyUserID = "user_id"
)

var ErrNotLoaded = errors.New("session: manager not initialised")

// AuthContext is the authenticated identity. The zero value means logged out.
type AuthContext struct {
	Token  string
	UserID int64
}

func (a AuthContext) IsZero() bool {
	return a.Token == "" || a.UserID <= 0
}

// ExpiresAt reads the exp claim of the token, if it has one.
func (a AuthContext) ExpiresAt() (time.Time, bool) {
	if a.Token == "" {
		return time.Time{}, false
	}
	claims, err := jwt.Inspect(a.Token)
	if err != nil || claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// Expired reports whether the token carries an exp claim in the past. Opaque
// tokens never expire locally; the server answers 401 instead.
func (a AuthContext) Expired(now time.Time) bool {
	exp, ok := a.ExpiresAt()
	return ok && !now.Before(exp)
}

// Manager owns the in-memory session cell and its persisted copy.
type Manager struct {
	kv  store.KV
	log *zap.Logger
	now func() time.Time

	mu     sync.RWMutex
	cur    AuthContext
	loaded bool
}

func NewManager(kv store.KV, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{kv: kv, log: log, now: time.Now}
}

// Init loads the persisted session. An expired token is discarded.
func (m *Manager) Init(ctx context.Context) error {
	token, err := m.kv.Get(ctx, store.NamespaceSession, keyToken)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	rawID, err := m.kv.Get(ctx, store.NamespaceSession, keyUserID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	userID, _ := strconv.ParseInt(rawID, 10, 64)

	auth := AuthContext{Token: token, UserID: userID}
	if !auth.IsZero() && auth.Expired(m.now()) {
		m.log.Info("stored session expired, clearing")
		if err := m.kv.Clear(ctx, store.NamespaceSession); err != nil {
			return err
		}
		auth = AuthContext{}
	}

	m.mu.Lock()
	m.cur = auth
	m.loaded = true
	m.mu.Unlock()
	return nil
}

// Close drops the in-memory copy. The persisted session is kept.
func (m *Manager) Close() error {
	m.mu.Lock()
	m.cur = AuthContext{}
	m.loaded = false
	m.mu.Unlock()
	return nil
}

func (m *Manager) Current() AuthContext {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cur
}

// Token satisfies api.TokenSource.
func (m *Manager) Token() string {
	return m.Current().Token
}

func (m *Manager) Set(ctx context.Context, auth AuthContext) error {
	m.mu.RLock()
	loaded := m.loaded
	m.mu.RUnlock()
	if !loaded {
		return ErrNotLoaded
	}
	if err := m.kv.SetMany(ctx, store.NamespaceSession, map[string]string{
		keyToken:  auth.Token,
		keyUserID: strconv.FormatInt(auth.UserID, 10),
	}); err != nil {
		return err
	}

	m.mu.Lock()
	m.cur = auth
	m.mu.Unlock()
	return nil
}

// Clear wipes the whole session namespace.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.cur = AuthContext{}
	m.mu.Unlock()
	return m.kv.Clear(ctx, store.NamespaceSession)
}

// Invalidate is the hook for a 401 from the server.
func (m *Manager) Invalidate() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.Clear(ctx); err != nil {
		m.log.Warn("failed to clear session after 401", zap.Error(err))
	}
}
