package auth

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"ukonnect/internal/api"
	"ukonnect/internal/session"
)

// Service runs the login and registration flows and owns the transition
// between logged-in and logged-out sessions.
type Service struct {
	svc      api.Service
	sessions *session.Manager
	log      *zap.Logger
}

func NewService(svc api.Service, sessions *session.Manager, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{svc: svc, sessions: sessions, log: log.Named("auth")}
}

// Login accepts the answer only when the server says "berhasil" and hands
// back both a token and a user id.
func (s *Service) Login(ctx context.Context, username, password string) (session.AuthContext, error) {
	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(password) == "" {
		return session.AuthContext{}, ErrBlankCredentials
	}

	resp, err := s.svc.Login(ctx, api.LoginRequest{Username: username, Password: password})
	if err != nil {
		return session.AuthContext{}, fmt.Errorf("login: %w", err)
	}
	if !strings.Contains(strings.ToLower(resp.Message), "berhasil") {
		return session.AuthContext{}, fmt.Errorf("%w: %s", ErrLoginRejected, resp.Message)
	}
	if resp.Token == nil || *resp.Token == "" || resp.UserID == nil || *resp.UserID <= 0 {
		return session.AuthContext{}, ErrMissingToken
	}

	auth := session.AuthContext{Token: *resp.Token, UserID: *resp.UserID}
	if err := s.sessions.Set(ctx, auth); err != nil {
		return session.AuthContext{}, fmt.Errorf("save session: %w", err)
	}
	s.log.Info("logged in", zap.Int64("user_id", auth.UserID))
	return auth, nil
}

// Register creates the account. It does not log in.
func (s *Service) Register(ctx context.Context, username, password string) (int64, error) {
	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(password) == "" {
		return 0, ErrBlankCredentials
	}
	resp, err := s.svc.Register(ctx, api.RegisterRequest{Username: username, Password: password})
	if err != nil {
		return 0, fmt.Errorf("register: %w", err)
	}
	if resp.UserID == nil || *resp.UserID <= 0 {
		return 0, ErrInvalidUserID
	}
	return *resp.UserID, nil
}

// Logout forgets the session on this device.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.sessions.Clear(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.log.Info("logged out")
	return nil
}
