package identity

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/storefront/internal/cart"
)

// Manager отслеживает смену идентичности (вход, выход, регистрация) и
// перегружает корзину под новый ключ. Корзины не сливаются: активная
// корзина всегда заменяется той, что сохранена под ключом новой
// идентичности, и у гостя свой независимый неймспейс.
type Manager struct {
	cart *cart.Store

	mu        sync.Mutex
	current   *User
	listeners []func(*User)
}

func NewManager(cartStore *cart.Store) *Manager {
	return &Manager{cart: cartStore}
}

// Current возвращает активного пользователя, nil для гостя.
func (m *Manager) Current() *User {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.current
}

// OnChange регистрирует слушателя завершённых переходов. Слушатели
// вызываются уже после загрузки корзины новой идентичности.
func (m *Manager) OnChange(fn func(*User)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.listeners = append(m.listeners, fn)
}

// Transition переключает активную идентичность. Корзина нового ключа
// загружается до того, как переход считается завершённым, чтобы ни один
// наблюдатель не увидел чужую корзину под новой идентичностью. При смене
// ключа выполняется ровно один Load.
func (m *Manager) Transition(ctx context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := cart.GuestKey
	if user != nil {
		key = cart.Key(user.Phone)
	}

	if key != m.cart.Key() {
		if err := m.cart.Load(ctx, key); err != nil {
			return fmt.Errorf("identity: failed to load cart for %q: %w", key, err)
		}
	}

	m.current = user

	for _, fn := range m.listeners {
		fn(user)
	}

	if user != nil {
		log.Info().Stringer("user_id", user.ID).Msg("identity: switched to authenticated cart")
	} else {
		log.Info().Msg("identity: switched to guest cart")
	}

	return nil
}
