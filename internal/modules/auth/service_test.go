package auth

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ukonnect/internal/api"
	"ukonnect/internal/api/apitest"
	"ukonnect/internal/session"
	"ukonnect/internal/store"
)

func setup(t *testing.T) (*Service, *apitest.MockService, *session.Manager, store.KV) {
	t.Helper()
	dsn := fmt.Sprintf("file:auth_test_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	kv, err := store.NewGormKV(db)
	require.NoError(t, err)

	sessions := session.NewManager(kv, nil)
	require.NoError(t, sessions.Init(context.Background()))

	svc := new(apitest.MockService)
	return NewService(svc, sessions, nil), svc, sessions, kv
}

func ptr[T any](v T) *T { return &v }

func TestLogin_Success(t *testing.T) {
	s, svc, sessions, _ := setup(t)

	svc.On("Login", mock.Anything, api.LoginRequest{Username: "andi", Password: "rahasia"}).
		Return(&api.LoginResponse{Message: "Login BERHASIL", User: ptr("andi"), UserID: ptr(int64(7)), Token: ptr("tok")}, nil).Once()

	auth, err := s.Login(context.Background(), " andi ", "rahasia")
	require.NoError(t, err)

	assert.Equal(t, session.AuthContext{Token: "tok", UserID: 7}, auth)
	assert.Equal(t, auth, sessions.Current())
}

func TestLogin_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		resp    *api.LoginResponse
		wantErr error
	}{
		{"message without success", &api.LoginResponse{Message: "Password salah", Token: ptr("tok"), UserID: ptr(int64(7))}, ErrLoginRejected},
		{"missing token", &api.LoginResponse{Message: "Login berhasil", UserID: ptr(int64(7))}, ErrMissingToken},
		{"missing user id", &api.LoginResponse{Message: "Login berhasil", Token: ptr("tok")}, ErrMissingToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, svc, sessions, _ := setup(t)
			svc.On("Login", mock.Anything, mock.Anything).Return(tt.resp, nil).Once()

			_, err := s.Login(context.Background(), "andi", "rahasia")

			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, sessions.Current().IsZero())
		})
	}
}

func TestLogin_BlankCredentials(t *testing.T) {
	s, svc, _, _ := setup(t)

	_, err := s.Login(context.Background(), "  ", "x")
	assert.ErrorIs(t, err, ErrBlankCredentials)
	_, err = s.Login(context.Background(), "andi", "")
	assert.ErrorIs(t, err, ErrBlankCredentials)

	svc.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)
}

func TestRegister(t *testing.T) {
	s, svc, _, _ := setup(t)

	svc.On("Register", mock.Anything, api.RegisterRequest{Username: "budi", Password: "pw"}).
		Return(&api.RegisterResponse{Message: "Registrasi berhasil", UserID: ptr(int64(11))}, nil).Once()

	id, err := s.Register(context.Background(), "budi", "pw")
	require.NoError(t, err)
	assert.Equal(t, int64(11), id)
}

func TestLogout_ClearsSessionNamespace(t *testing.T) {
	s, svc, sessions, kv := setup(t)
	ctx := context.Background()

	svc.On("Login", mock.Anything, mock.Anything).
		Return(&api.LoginResponse{Message: "Login berhasil", UserID: ptr(int64(7)), Token: ptr("tok")}, nil).Once()
	_, err := s.Login(ctx, "andi", "rahasia")
	require.NoError(t, err)
	require.NoError(t, kv.Set(ctx, store.NamespacePush, "token", "keep"))

	require.NoError(t, s.Logout(ctx))

	assert.True(t, sessions.Current().IsZero())
	_, err = kv.Get(ctx, store.NamespaceSession, "token")
	assert.ErrorIs(t, err, store.ErrNotFound)
	v, err := kv.Get(ctx, store.NamespacePush, "token")
	require.NoError(t, err)
	assert.Equal(t, "keep", v)
}
