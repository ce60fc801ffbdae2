package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ukonnect/internal/pkg/jwt"
	"ukonnect/internal/store"
)

func setupKV(t *testing.T) store.KV {
	t.Helper()
	dsn := fmt.Sprintf("file:session_test_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	kv, err := store.NewGormKV(db)
	require.NoError(t, err)
	return kv
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.Claims{
		UserID: 7,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ExpiresAt: jwtlib.NewNumericDate(exp),
		},
	}
	tok, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	return tok
}

func TestManager_SetPersistsAcrossInit(t *testing.T) {
	kv := setupKV(t)
	ctx := context.Background()

	m := NewManager(kv, nil)
	require.NoError(t, m.Init(ctx))
	assert.True(t, m.Current().IsZero())

	require.NoError(t, m.Set(ctx, AuthContext{Token: "opaque", UserID: 7}))
	assert.Equal(t, "opaque", m.Token())
	require.NoError(t, m.Close())
	assert.True(t, m.Current().IsZero())

	other := NewManager(kv, nil)
	require.NoError(t, other.Init(ctx))
	assert.Equal(t, AuthContext{Token: "opaque", UserID: 7}, other.Current())
}

type failingWrites struct {
	store.KV
}

func (failingWrites) SetMany(context.Context, string, map[string]string) error {
	return errors.New("disk full")
}

func TestManager_FailedSetKeepsPreviousLogin(t *testing.T) {
	kv := setupKV(t)
	ctx := context.Background()

	m := NewManager(kv, nil)
	require.NoError(t, m.Init(ctx))
	require.NoError(t, m.Set(ctx, AuthContext{Token: "first", UserID: 1}))

	broken := NewManager(failingWrites{kv}, nil)
	require.NoError(t, broken.Init(ctx))
	require.Error(t, broken.Set(ctx, AuthContext{Token: "second", UserID: 2}))
	assert.Equal(t, AuthContext{Token: "first", UserID: 1}, broken.Current())

	reloaded := NewManager(kv, nil)
	require.NoError(t, reloaded.Init(ctx))
	assert.Equal(t, AuthContext{Token: "first", UserID: 1}, reloaded.Current())
}

func TestManager_SetBeforeInit(t *testing.T) {
	m := NewManager(setupKV(t), nil)
	err := m.Set(context.Background(), AuthContext{Token: "t", UserID: 1})
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestManager_InitDropsExpiredToken(t *testing.T) {
	kv := setupKV(t)
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, store.NamespaceSession, keyToken, signedToken(t, time.Now().Add(-time.Hour))))
	require.NoError(t, kv.Set(ctx, store.NamespaceSession, keyUserID, "7"))

	m := NewManager(kv, nil)
	require.NoError(t, m.Init(ctx))
	assert.True(t, m.Current().IsZero())

	_, err := kv.Get(ctx, store.NamespaceSession, keyToken)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestManager_InvalidateClearsNamespace(t *testing.T) {
	kv := setupKV(t)
	ctx := context.Background()

	m := NewManager(kv, nil)
	require.NoError(t, m.Init(ctx))
	require.NoError(t, m.Set(ctx, AuthContext{Token: signedToken(t, time.Now().Add(time.Hour)), UserID: 7}))

	m.Invalidate()

	assert.Empty(t, m.Token())
	_, err := kv.Get(ctx, store.NamespaceSession, keyUserID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAuthContext_Expired(t *testing.T) {
	now := time.Now()
	assert.False(t, AuthContext{Token: "not-a-jwt", UserID: 1}.Expired(now))
	assert.True(t, AuthContext{Token: signedToken(t, now.Add(-time.Minute)), UserID: 1}.Expired(now))
	assert.False(t, AuthContext{Token: signedToken(t, now.Add(time.Minute)), UserID: 1}.Expired(now))
}
