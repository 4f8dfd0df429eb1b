package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/storefront/internal/kv"
)

// Store — единственный владелец активной корзины. Каждая мутация сначала
// меняет память, затем целиком сохраняет корзину под текущим ключом.
// Ошибки хранилища не маскируются и уходят вызывающему коду.
//
// Мьютекс внутри стора сериализует мутации по одной корзине, поэтому
// вызывающему коду не нужна собственная дисциплина in-flight флагов
// на SetQty/IncQty.
type Store struct {
	kv kv.Store

	mu   sync.Mutex
	key  string
	rows map[int64]int
}

func NewStore(storage kv.Store) *Store {
	return &Store{
		kv:   storage,
		key:  GuestKey,
		rows: make(map[int64]int),
	}
}

// Key возвращает текущий ключ корзины.
func (s *Store) Key() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.key
}

// Rows возвращает копию строк корзины, отсортированную по productId.
func (s *Store) Rows() []Row {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.rowsLocked()
}

// Qty возвращает количество по товару, 0 если строки нет.
func (s *Store) Qty(productID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.rows[productID]
}

// Load заменяет активную корзину корзиной, сохранённой под key. Если под
// key ничего нет, но существует легаси-блоб старого формата, он мигрирует:
// сворачивается в строки с qty, сохраняется под новым ключом, легаси-ключ
// удаляется. Если нет и легаси-блоба — корзина пустая, запись не делается.
func (s *Store) Load(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.kv.Get(ctx, key)
	if err != nil && !errors.Is(err, kv.ErrNotFound) {
		return fmt.Errorf("cart: failed to read cart %q: %w", key, err)
	}

	if err == nil {
		rows, _ := decodeRows(data)
		s.replaceLocked(key, rows)
		return nil
	}

	// Под новым ключом пусто — проверяем легаси-блоб.
	legacyData, legacyErr := s.kv.Get(ctx, legacyKey)
	if legacyErr != nil {
		if errors.Is(legacyErr, kv.ErrNotFound) {
			s.replaceLocked(key, nil)
			return nil
		}

		return fmt.Errorf("cart: failed to read legacy cart: %w", legacyErr)
	}

	rows, migrated := decodeRows(legacyData)
	if len(rows) == 0 {
		// Битый или пустой легаси-блоб — корзины нет, ничего не пишем.
		s.replaceLocked(key, nil)
		return nil
	}

	s.replaceLocked(key, rows)

	if err := s.persistLocked(ctx); err != nil {
		return err
	}
	if err := s.kv.Delete(ctx, legacyKey); err != nil {
		return fmt.Errorf("cart: failed to delete legacy cart: %w", err)
	}

	if migrated {
		log.Info().Str("key", key).Int("rows", len(rows)).Msg("cart: migrated legacy cart")
	}

	return nil
}

// SetQty ставит количество по товару. Отрицательное qty приводится к 0,
// ноль удаляет строку. Корзина сохраняется целиком.
func (s *Store) SetQty(ctx context.Context, productID int64, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if qty < 0 {
		qty = 0
	}

	if qty == 0 {
		delete(s.rows, productID)
	} else {
		s.rows[productID] = qty
	}

	return s.persistLocked(ctx)
}

// IncQty сдвигает количество по товару на delta (через ту же семантику,
// что и SetQty: результат меньше нуля убирает строку).
func (s *Store) IncQty(ctx context.Context, productID int64, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	qty := s.rows[productID] + delta
	if qty < 0 {
		qty = 0
	}

	if qty == 0 {
		delete(s.rows, productID)
	} else {
		s.rows[productID] = qty
	}

	return s.persistLocked(ctx)
}

// Clear сохраняет пустую корзину под текущим ключом.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows = make(map[int64]int)

	return s.persistLocked(ctx)
}

func (s *Store) replaceLocked(key string, rows []Row) {
	s.key = key
	s.rows = make(map[int64]int, len(rows))
	for _, row := range rows {
		if row.Qty <= 0 {
			continue
		}
		s.rows[row.ProductID] = row.Qty
	}
}

func (s *Store) rowsLocked() []Row {
	rows := make([]Row, 0, len(s.rows))
	for id, qty := range s.rows {
		rows = append(rows, Row{ProductID: id, Qty: qty})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ProductID < rows[j].ProductID })

	return rows
}

func (s *Store) persistLocked(ctx context.Context) error {
	data, err := json.Marshal(s.rowsLocked())
	if err != nil {
		return fmt.Errorf("cart: failed to marshal cart: %w", err)
	}

	if err := s.kv.Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("cart: failed to persist cart %q: %w", s.key, err)
	}

	return nil
}
