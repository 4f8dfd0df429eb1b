package order

import (
	"context"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/storefront/internal/apperror"
	"github.com/vasiliy-maslov/storefront/internal/notify"
)

// StatusFlow — административный воркфлоу смены статуса. По каждому заказу
// одновременно может идти только один переход: повторный вызов по тому же
// orderID, пока первый не завершился, — no-op без второго обращения к
// сервису. Переходы по разным заказам друг друга не блокируют.
//
// Граф переходов здесь не проверяется: сервис — источник истины, клиент
// принимает любой его вердикт.
type StatusFlow struct {
	svc      Service
	timeout  time.Duration
	notifier notify.Notifier

	mu       sync.Mutex
	inFlight map[uuid.UUID]bool
	onReload func([]Order)
}

func NewStatusFlow(svc Service, timeout time.Duration, notifier notify.Notifier) *StatusFlow {
	return &StatusFlow{
		svc:      svc,
		timeout:  timeout,
		notifier: notifier,
		inFlight: make(map[uuid.UUID]bool),
	}
}

// OnReload регистрирует получателя полного административного списка,
// перечитанного после успешного перехода.
func (f *StatusFlow) OnReload(fn func([]Order)) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.onReload = fn
}

// SetStatus переводит заказ в новый статус и после успеха перечитывает
// административный список целиком: админ видит авторитетное состояние
// сервера, а не локальную догадку. Флаг in-flight снимается при любом
// исходе.
func (f *StatusFlow) SetStatus(ctx context.Context, orderID uuid.UUID, newStatus Status) error {
	f.mu.Lock()
	if f.inFlight[orderID] {
		f.mu.Unlock()
		log.Debug().Stringer("order_id", orderID).Msg("statusflow: status change already in flight, ignoring")
		return nil
	}
	f.inFlight[orderID] = true
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		delete(f.inFlight, orderID)
		f.mu.Unlock()
	}()

	reqCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	if err := f.svc.SetStatus(reqCtx, orderID, newStatus); err != nil {
		err = apperror.WrapTimeout(err)
		f.notifier.Error("failed to update order status")
		return err
	}

	listCtx, cancelList := context.WithTimeout(ctx, f.timeout)
	defer cancelList()

	all, err := f.svc.ListAll(listCtx)
	if err != nil {
		// Статус уже изменён, но список перечитать не вышло. Сообщаем об
		// ошибке, следующее обновление покажет актуальное состояние.
		err = apperror.WrapTimeout(err)
		f.notifier.Error("status updated, but order list refresh failed")
		return err
	}

	f.mu.Lock()
	reload := f.onReload
	f.mu.Unlock()
	if reload != nil {
		reload(all)
	}

	f.notifier.Success("order status updated")

	return nil
}
