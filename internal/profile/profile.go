// Package profile обновляет контактные данные пользователя. Воркфлоу
// оформления заказа синхронизирует имя и адрес с последней доставкой
// независимо от исхода самого заказа.
package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

var ErrNotFound = errors.New("profile not found")

type Service interface {
	Update(ctx context.Context, userID uuid.UUID, name, address string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Update(ctx context.Context, userID uuid.UUID, name, address string) error {
	err := s.repo.UpdateContact(ctx, userID, name, address)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}

		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to update profile")
		return fmt.Errorf("service: failed to update profile: %w", err)
	}

	return nil
}

type Repository interface {
	UpdateContact(ctx context.Context, userID uuid.UUID, name, address string) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) UpdateContact(ctx context.Context, userID uuid.UUID, name, address string) error {
	query := `
		UPDATE users
		SET name = $1, address = $2, updated_at = $3
		WHERE id = $4
	`

	cmdTag, err := r.db.Exec(ctx, query, name, address, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("repository: failed to update contact for user %s: %w", userID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
