// Package checkout — воркфлоу оформления заказа: снимок корзины против
// актуального каталога, неизменяемая запись заказа, очистка корзины
// только после подтверждённого успеха.
package checkout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/storefront/internal/apperror"
	"github.com/vasiliy-maslov/storefront/internal/cart"
	"github.com/vasiliy-maslov/storefront/internal/catalog"
	"github.com/vasiliy-maslov/storefront/internal/identity"
	"github.com/vasiliy-maslov/storefront/internal/money"
	"github.com/vasiliy-maslov/storefront/internal/notify"
	"github.com/vasiliy-maslov/storefront/internal/order"
	"github.com/vasiliy-maslov/storefront/internal/profile"
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSubmitting
	PhaseConfirmed
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSubmitting:
		return "submitting"
	case PhaseConfirmed:
		return "confirmed"
	case PhaseFailed:
		return "failed"
	}

	return "unknown"
}

// State — помеченное состояние попытки оформления. Err заполнен только
// в PhaseFailed.
type State struct {
	Phase Phase
	Err   error
}

// CatalogSource отдаёт текущий снапшот каталога.
type CatalogSource interface {
	Snapshot() *catalog.Snapshot
}

// RefreshFunc вызывается после подтверждённого заказа, чтобы перечитать
// список заказов пользователя (и административный — для админа).
type RefreshFunc func(ctx context.Context, user *identity.User)

// Workflow — машина состояний Idle -> Submitting -> {Confirmed, Failed}.
// Одновременно идёт не больше одной отправки: повторный Submit, пока
// предыдущий в полёте, — no-op.
type Workflow struct {
	cartStore *cart.Store
	catalog   CatalogSource
	orders    order.Service
	profiles  profile.Service
	notifier  notify.Notifier
	validate  *validator.Validate
	timeout   time.Duration
	refresh   RefreshFunc

	mu    sync.Mutex
	state State
	form  order.OrderInfo
}

func NewWorkflow(
	cartStore *cart.Store,
	catalogSource CatalogSource,
	orders order.Service,
	profiles profile.Service,
	notifier notify.Notifier,
	timeout time.Duration,
) *Workflow {
	return &Workflow{
		cartStore: cartStore,
		catalog:   catalogSource,
		orders:    orders,
		profiles:  profiles,
		notifier:  notifier,
		validate:  validator.New(),
		timeout:   timeout,
		state:     State{Phase: PhaseIdle},
	}
}

// OnRefresh задаёт обновление списков заказов после успеха.
func (w *Workflow) OnRefresh(fn RefreshFunc) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.refresh = fn
}

// State возвращает состояние последней попытки.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.state
}

// Form возвращает форму заказа. После успешной отправки в ней сброшен
// только комментарий: имя, телефон и адрес остаются для следующего заказа.
func (w *Workflow) Form() order.OrderInfo {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.form
}

// Submit выполняет одну попытку оформления. При ошибке корзина остаётся
// нетронутой и возможен повтор; при успехе корзина очищается.
func (w *Workflow) Submit(ctx context.Context, user *identity.User, info order.OrderInfo) (*order.Order, error) {
	w.mu.Lock()
	if w.state.Phase == PhaseSubmitting {
		w.mu.Unlock()
		log.Debug().Msg("checkout: submission already in flight, ignoring")
		return nil, nil
	}
	w.state = State{Phase: PhaseSubmitting}
	w.form = info
	w.mu.Unlock()

	created, err := w.submit(ctx, user, info)

	w.mu.Lock()
	defer w.mu.Unlock()

	if err != nil {
		w.state = State{Phase: PhaseFailed, Err: err}
		w.notifier.Error("failed to place order")
		return nil, err
	}

	w.state = State{Phase: PhaseConfirmed}
	w.form.Comment = ""
	w.notifier.Success("order placed")

	return created, nil
}

func (w *Workflow) submit(ctx context.Context, user *identity.User, info order.OrderInfo) (*order.Order, error) {
	// Только присутствие обязательных полей. Формат телефона и адреса
	// не проверяем: строгая валидация — зона ответственности сервера.
	if err := w.validate.Struct(info); err != nil {
		return nil, fmt.Errorf("%w: name, phone and address are required", apperror.ErrValidation)
	}

	// Контакты профиля обновляются как побочный эффект, независимо от
	// судьбы заказа. Ошибка здесь заказ не отменяет.
	if user != nil {
		profileCtx, cancel := context.WithTimeout(ctx, w.timeout)
		err := w.profiles.Update(profileCtx, user.ID, info.Name, info.Address)
		cancel()
		if err != nil {
			log.Warn().Err(err).Stringer("user_id", user.ID).Msg("checkout: failed to sync profile contact fields")
		}
	}

	o := w.buildOrder(user, info)

	createCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	created, err := w.orders.Create(createCtx, o)
	if err != nil {
		return nil, apperror.WrapTimeout(err)
	}

	// Заказ подтверждён — только теперь очищаем корзину. Если очистка
	// не удалась, заказ уже существует: логируем и не считаем это
	// провалом отправки.
	if err := w.cartStore.Clear(ctx); err != nil {
		log.Error().Err(err).Msg("checkout: failed to clear cart after confirmed order")
	}

	w.mu.Lock()
	refresh := w.refresh
	w.mu.Unlock()
	if refresh != nil {
		refresh(ctx, user)
	}

	return created, nil
}

// buildOrder строит неизменяемый снимок: для каждой строки корзины,
// чей товар ещё есть в каталоге, копируются поля товара плюс qty.
// Неразрешимые строки молча выпадают — это не ошибка. Итог считается по
// снимку, а не по живым ценам. Пустой снимок допустим: заказ с нулём
// позиций и тотал 0 отправляется как есть.
func (w *Workflow) buildOrder(user *identity.User, info order.OrderInfo) *order.Order {
	snap := w.catalog.Snapshot()

	rows := w.cartStore.Rows()
	items := make([]order.LineSnapshot, 0, len(rows))
	total := 0.0

	for _, row := range rows {
		product, ok := snap.Product(row.ProductID)
		if !ok {
			log.Debug().Int64("product_id", row.ProductID).Msg("checkout: dropping stale cart row")
			continue
		}

		items = append(items, order.LineSnapshot{
			ProductID:  product.ID,
			Name:       product.Name,
			Price:      product.Price,
			OldPrice:   product.OldPrice,
			Images:     product.Images,
			Categories: product.Categories,
			Qty:        row.Qty,
		})
		total += money.ParsePrice(product.Price) * float64(row.Qty)
	}

	o := &order.Order{
		Status: order.StatusNew,
		Items:  items,
		Info:   info,
		Total:  money.Round2(total),
	}
	if user != nil {
		o.UserID = user.ID
		o.Info.Nickname = user.Nickname
	}

	return o
}
