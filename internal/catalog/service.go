package catalog

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/vasiliy-maslov/storefront/internal/apperror"
)

// Service держит текущий снапшот каталога и обновляет его целиком по
// явному запросу. Частичной синхронизации нет: либо старый снапшот,
// либо полностью новый.
type Service struct {
	repo    Repository
	timeout time.Duration

	sfg  singleflight.Group // Схлопывает параллельные Refresh в один запрос
	snap atomic.Pointer[Snapshot]
}

func NewService(repo Repository, timeout time.Duration) *Service {
	s := &Service{
		repo:    repo,
		timeout: timeout,
	}
	s.snap.Store(NewSnapshot(nil, nil))

	return s
}

// Snapshot возвращает последний загруженный снапшот. До первого Refresh
// это пустой каталог, а не nil.
func (s *Service) Snapshot() *Snapshot {
	return s.snap.Load()
}

// Refresh перечитывает товары и категории и заменяет снапшот. Ошибка
// оставляет предыдущий снапшот на месте.
func (s *Service) Refresh(ctx context.Context) (*Snapshot, error) {
	v, err, _ := s.sfg.Do("refresh", func() (interface{}, error) {
		reqCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		products, err := s.repo.ListProducts(reqCtx)
		if err != nil {
			return nil, fmt.Errorf("service: failed to list products: %w", apperror.WrapTimeout(err))
		}

		categories, err := s.repo.ListCategories(reqCtx)
		if err != nil {
			return nil, fmt.Errorf("service: failed to list categories: %w", apperror.WrapTimeout(err))
		}

		snap := NewSnapshot(products, categories)
		s.snap.Store(snap)

		log.Debug().Int("products", len(products)).Int("categories", len(categories)).Msg("service: catalog snapshot refreshed")

		return snap, nil
	})
	if err != nil {
		log.Error().Err(err).Msg("service: failed to refresh catalog")
		return nil, err
	}

	return v.(*Snapshot), nil
}
