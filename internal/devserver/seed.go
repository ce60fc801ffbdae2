package devserver

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"ukonnect/internal/domain"
	"ukonnect/internal/repository"
)

type SeedEquipment struct {
	Name  string
	Total int
	Icon  domain.IconKind
}

// DefaultEquipment is the catalogue a fresh server starts with.
var DefaultEquipment = []SeedEquipment{
	{Name: "Bola Futsal Specs", Total: 10, Icon: domain.IconBall},
	{Name: "Raket Badminton Yonex", Total: 8, Icon: domain.IconRacket},
	{Name: "Bola Basket Molten GG7X", Total: 6, Icon: domain.IconBasket},
}

// SeedEquipmentItems upserts items by name and resets their stock.
func (s *Server) SeedEquipmentItems(ctx context.Context, items []SeedEquipment) ([]repository.EquipmentRow, error) {
	out := make([]repository.EquipmentRow, 0, len(items))
	for _, it := range items {
		row, err := s.equipment.Upsert(ctx, it.Name, it.Total, it.Icon)
		if err != nil {
			return nil, fmt.Errorf("seed %q: %w", it.Name, err)
		}
		out = append(out, *row)
	}
	s.log.Info("equipment seeded", zap.Int("count", len(out)))
	return out, nil
}

// EnsureUser creates the account unless the username is already taken.
func (s *Server) EnsureUser(ctx context.Context, username, password string) (*domain.User, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u = &domain.User{Username: username, PasswordHash: string(hash)}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	s.log.Info("user seeded", zap.String("username", username), zap.Int64("user_id", u.ID))
	return u, nil
}
