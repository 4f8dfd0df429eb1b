package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	listProductsFunc   func(ctx context.Context) ([]Product, error)
	listCategoriesFunc func(ctx context.Context) ([]string, error)
}

func (m *mockRepository) ListProducts(ctx context.Context) ([]Product, error) {
	return m.listProductsFunc(ctx)
}

func (m *mockRepository) ListCategories(ctx context.Context) ([]string, error) {
	if m.listCategoriesFunc == nil {
		return []string{}, nil
	}
	return m.listCategoriesFunc(ctx)
}

func TestService_Snapshot_EmptyBeforeFirstRefresh(t *testing.T) {
	svc := NewService(&mockRepository{}, time.Second)

	snap := svc.Snapshot()

	require.NotNil(t, snap)
	assert.Empty(t, snap.Products)

	_, ok := snap.Product(1)
	assert.False(t, ok)
}

func TestService_Refresh_ReplacesSnapshot(t *testing.T) {
	products := []Product{
		{ID: 1, Name: "Tea", Price: "9.90"},
		{ID: 2, Name: "Coffee", Price: "15.00"},
	}
	repo := &mockRepository{
		listProductsFunc: func(ctx context.Context) ([]Product, error) {
			return products, nil
		},
		listCategoriesFunc: func(ctx context.Context) ([]string, error) {
			return []string{"drinks"}, nil
		},
	}

	svc := NewService(repo, time.Second)

	snap, err := svc.Refresh(context.Background())

	require.NoError(t, err)
	assert.Equal(t, products, snap.Products)
	assert.Equal(t, []string{"drinks"}, snap.Categories)
	assert.Same(t, snap, svc.Snapshot())

	got, ok := snap.Product(2)
	require.True(t, ok)
	assert.Equal(t, "Coffee", got.Name)
}

func TestService_Refresh_ErrorKeepsPreviousSnapshot(t *testing.T) {
	var fail bool
	repo := &mockRepository{
		listProductsFunc: func(ctx context.Context) ([]Product, error) {
			if fail {
				return nil, errors.New("db down")
			}
			return []Product{{ID: 1, Name: "Tea", Price: "9.90"}}, nil
		},
	}

	svc := NewService(repo, time.Second)

	first, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	fail = true
	_, err = svc.Refresh(context.Background())

	// Частичной синхронизации нет: после ошибки виден прежний снапшот.
	assert.Error(t, err)
	assert.Same(t, first, svc.Snapshot())
}
