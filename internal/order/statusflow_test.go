package order

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockService struct {
	setStatusFunc func(ctx context.Context, orderID uuid.UUID, newStatus Status) error
	listAllFunc   func(ctx context.Context) ([]Order, error)
}

func (m *mockService) Create(ctx context.Context, o *Order) (*Order, error) { return o, nil }

func (m *mockService) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	return nil, ErrOrderNotFound
}

func (m *mockService) ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	return []Order{}, nil
}

func (m *mockService) ListAll(ctx context.Context) ([]Order, error) {
	if m.listAllFunc == nil {
		return []Order{}, nil
	}
	return m.listAllFunc(ctx)
}

func (m *mockService) SetStatus(ctx context.Context, orderID uuid.UUID, newStatus Status) error {
	return m.setStatusFunc(ctx, orderID, newStatus)
}

type countingNotifier struct {
	mu        sync.Mutex
	successes int
	errors    int
}

func (n *countingNotifier) Success(string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes++
}

func (n *countingNotifier) Error(string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors++
}

func TestStatusFlow_SetStatus_ReloadsListOnSuccess(t *testing.T) {
	orderID := uuid.Must(uuid.NewV4())
	reloaded := []Order{{ID: orderID, Status: StatusInWork}}

	svc := &mockService{
		setStatusFunc: func(ctx context.Context, id uuid.UUID, newStatus Status) error {
			assert.Equal(t, orderID, id)
			assert.Equal(t, StatusInWork, newStatus)
			return nil
		},
		listAllFunc: func(ctx context.Context) ([]Order, error) {
			return reloaded, nil
		},
	}

	notifier := &countingNotifier{}
	flow := NewStatusFlow(svc, time.Second, notifier)

	var got []Order
	flow.OnReload(func(orders []Order) { got = orders })

	err := flow.SetStatus(context.Background(), orderID, StatusInWork)

	require.NoError(t, err)
	assert.Equal(t, reloaded, got)
	assert.Equal(t, 1, notifier.successes)
	assert.Zero(t, notifier.errors)
}

func TestStatusFlow_SetStatus_ConcurrentSameOrderIsNoOp(t *testing.T) {
	orderID := uuid.Must(uuid.NewV4())

	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32

	svc := &mockService{
		setStatusFunc: func(ctx context.Context, id uuid.UUID, newStatus Status) error {
			calls.Add(1)
			close(started)
			<-release
			return nil
		},
	}

	flow := NewStatusFlow(svc, time.Second, &countingNotifier{})

	done := make(chan error, 1)
	go func() {
		done <- flow.SetStatus(context.Background(), orderID, StatusInWork)
	}()

	<-started

	// Повторный вызов по тому же заказу, пока первый в полёте.
	err := flow.SetStatus(context.Background(), orderID, StatusCanceled)
	assert.NoError(t, err)

	close(release)
	assert.NoError(t, <-done)

	assert.Equal(t, int32(1), calls.Load())
}

func TestStatusFlow_SetStatus_DifferentOrdersDoNotBlock(t *testing.T) {
	firstID := uuid.Must(uuid.NewV4())
	secondID := uuid.Must(uuid.NewV4())

	firstStarted := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32

	svc := &mockService{
		setStatusFunc: func(ctx context.Context, id uuid.UUID, newStatus Status) error {
			calls.Add(1)
			if id == firstID {
				close(firstStarted)
				<-release
			}
			return nil
		},
	}

	flow := NewStatusFlow(svc, time.Second, &countingNotifier{})

	done := make(chan error, 1)
	go func() {
		done <- flow.SetStatus(context.Background(), firstID, StatusInWork)
	}()

	<-firstStarted

	// Другой заказ обрабатывается, пока первый ещё в полёте.
	assert.NoError(t, flow.SetStatus(context.Background(), secondID, StatusInWork))

	close(release)
	assert.NoError(t, <-done)

	assert.Equal(t, int32(2), calls.Load())
}

func TestStatusFlow_SetStatus_GuardClearedAfterFailure(t *testing.T) {
	orderID := uuid.Must(uuid.NewV4())

	var calls int
	svc := &mockService{
		setStatusFunc: func(ctx context.Context, id uuid.UUID, newStatus Status) error {
			calls++
			if calls == 1 {
				return errors.New("db down")
			}
			return nil
		},
	}

	notifier := &countingNotifier{}
	flow := NewStatusFlow(svc, time.Second, notifier)

	require.Error(t, flow.SetStatus(context.Background(), orderID, StatusInWork))
	assert.Equal(t, 1, notifier.errors)

	// Флаг снят: повтор после ошибки доходит до сервиса.
	require.NoError(t, flow.SetStatus(context.Background(), orderID, StatusInWork))
	assert.Equal(t, 2, calls)
}

func TestStatusFlow_SetStatus_ListRefreshFailure(t *testing.T) {
	orderID := uuid.Must(uuid.NewV4())

	svc := &mockService{
		setStatusFunc: func(ctx context.Context, id uuid.UUID, newStatus Status) error {
			return nil
		},
		listAllFunc: func(ctx context.Context) ([]Order, error) {
			return nil, errors.New("db down")
		},
	}

	notifier := &countingNotifier{}
	flow := NewStatusFlow(svc, time.Second, notifier)

	var reloadCalled bool
	flow.OnReload(func([]Order) { reloadCalled = true })

	err := flow.SetStatus(context.Background(), orderID, StatusInWork)

	// Статус изменён, но список не перечитан: это ошибка для админа,
	// получатель списка не дёргается с устаревшими данными.
	assert.Error(t, err)
	assert.False(t, reloadCalled)
	assert.Equal(t, 1, notifier.errors)
	assert.Zero(t, notifier.successes)
}
