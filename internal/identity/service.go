package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/vasiliy-maslov/storefront/internal/apperror"
)

// Service — провайдер сессий: регистрация, вход, выход и поиск
// пользователя по токену. Токены живут в памяти процесса.
type Service interface {
	Register(ctx context.Context, phone, nickname, password string) (*User, string, error)
	Login(ctx context.Context, phone, password string) (*User, string, error)
	Logout(token string)
	UserByToken(token string) (*User, error)
}

type service struct {
	repo Repository

	mu       sync.RWMutex
	sessions map[string]*User
}

func NewService(repo Repository) Service {
	return &service{
		repo:     repo,
		sessions: make(map[string]*User),
	}
}

func (s *service) Register(ctx context.Context, phone, nickname, password string) (*User, string, error) {
	if phone == "" || password == "" {
		return nil, "", fmt.Errorf("%w: phone and password are required", apperror.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to hash password")
		return nil, "", fmt.Errorf("service: failed to hash password: %w", err)
	}

	user := &User{
		Phone:        phone,
		Nickname:     nickname,
		PasswordHash: string(hash),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, ErrPhoneExists) {
			// Повторная регистрация того же телефона — конфликт, не сбой.
			return nil, "", fmt.Errorf("%w: %v", apperror.ErrConflict, err)
		}

		log.Error().Err(err).Msg("service: failed to create user")
		return nil, "", fmt.Errorf("service: failed to create user: %w", err)
	}

	token, err := s.startSession(user)
	if err != nil {
		return nil, "", err
	}

	log.Info().Stringer("user_id", user.ID).Msg("service: user registered")

	return user, token, nil
}

func (s *service) Login(ctx context.Context, phone, password string) (*User, string, error) {
	user, err := s.repo.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, "", apperror.ErrUnauthorized
		}

		log.Error().Err(err).Msg("service: failed to fetch user by phone")
		return nil, "", fmt.Errorf("service: failed to fetch user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", apperror.ErrUnauthorized
	}

	token, err := s.startSession(user)
	if err != nil {
		return nil, "", err
	}

	log.Info().Stringer("user_id", user.ID).Msg("service: user logged in")

	return user, token, nil
}

func (s *service) Logout(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, token)
}

// UserByToken возвращает пользователя сессии. Неизвестный токен — это
// apperror.ErrUnauthorized: сессия истекла или была сброшена.
func (s *service) UserByToken(token string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.sessions[token]
	if !ok {
		return nil, apperror.ErrUnauthorized
	}

	return user, nil
}

func (s *service) startSession(user *User) (string, error) {
	tokenID, err := uuid.NewV4()
	if err != nil {
		return "", fmt.Errorf("service: failed to generate session token: %w", err)
	}
	token := tokenID.String()

	s.mu.Lock()
	s.sessions[token] = user
	s.mu.Unlock()

	return token, nil
}
