package push

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"ukonnect/internal/api"
	"ukonnect/internal/store"
)

const keyToken = "token"

var ErrEmptyToken = errors.New("push token is empty")

// TokenManager forwards rotated push tokens to the server. The local copy
// only changes once the server has accepted the new token.
type TokenManager struct {
	svc api.Service
	kv  store.KV
	log *zap.Logger
}

func NewTokenManager(svc api.Service, kv store.KV, log *zap.Logger) *TokenManager {
	if log == nil {
		log = zap.NewNop()
	}
	return &TokenManager{svc: svc, kv: kv, log: log.Named("push")}
}

func (m *TokenManager) OnNewToken(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrEmptyToken
	}
	if err := m.svc.UpdatePushToken(ctx, token); err != nil {
		m.log.Warn("push token not accepted, keeping previous", zap.Error(err))
		return fmt.Errorf("send push token: %w", err)
	}
	if err := m.kv.Set(ctx, store.NamespacePush, keyToken, token); err != nil {
		return fmt.Errorf("save push token: %w", err)
	}
	m.log.Info("push token updated")
	return nil
}

// Token returns the cached token, or "" when none was ever accepted.
func (m *TokenManager) Token(ctx context.Context) (string, error) {
	t, err := m.kv.Get(ctx, store.NamespacePush, keyToken)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil
	}
	return t, err
}
