package money_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vasiliy-maslov/storefront/internal/cart"
	"github.com/vasiliy-maslov/storefront/internal/catalog"
	"github.com/vasiliy-maslov/storefront/internal/money"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected float64
	}{
		{name: "dot_separator", raw: "10.50", expected: 10.5},
		{name: "comma_separator", raw: "10,50", expected: 10.5},
		{name: "integer", raw: "99", expected: 99},
		{name: "surrounding_spaces", raw: " 15.00 ", expected: 15},
		{name: "empty", raw: "", expected: 0},
		{name: "garbage", raw: "free", expected: 0},
		{name: "two_separators", raw: "1,2,3", expected: 0},
		{name: "negative", raw: "-5,25", expected: -5.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, money.ParsePrice(tt.raw))
		})
	}
}

func TestRowSubtotal(t *testing.T) {
	snap := catalog.NewSnapshot([]catalog.Product{
		{ID: 1, Name: "Tea", Price: "10,50"},
	}, nil)

	assert.Equal(t, 21.0, money.RowSubtotal(cart.Row{ProductID: 1, Qty: 2}, snap))

	// Товара больше нет в каталоге — строка стоит 0, а не ошибка.
	assert.Equal(t, 0.0, money.RowSubtotal(cart.Row{ProductID: 404, Qty: 2}, snap))

	// До первой загрузки каталога снапшота может не быть вовсе.
	assert.Equal(t, 0.0, money.RowSubtotal(cart.Row{ProductID: 1, Qty: 2}, nil))
}

func TestCartTotal(t *testing.T) {
	snap := catalog.NewSnapshot([]catalog.Product{
		{ID: 1, Name: "Tea", Price: "10,50"},
		{ID: 5, Name: "Coffee", Price: "15.00"},
	}, nil)

	tests := []struct {
		name     string
		rows     []cart.Row
		expected string
	}{
		{
			name:     "comma_price",
			rows:     []cart.Row{{ProductID: 1, Qty: 2}},
			expected: "21.00",
		},
		{
			name:     "single_product",
			rows:     []cart.Row{{ProductID: 5, Qty: 3}},
			expected: "45.00",
		},
		{
			name:     "stale_row_contributes_zero",
			rows:     []cart.Row{{ProductID: 5, Qty: 3}, {ProductID: 404, Qty: 10}},
			expected: "45.00",
		},
		{
			name:     "empty_cart",
			rows:     nil,
			expected: "0.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, money.CartTotal(tt.rows, snap))
		})
	}
}

func TestCartCount(t *testing.T) {
	assert.Equal(t, 0, money.CartCount(nil))
	assert.Equal(t, 3, money.CartCount([]cart.Row{{ProductID: 5, Qty: 3}}))
	assert.Equal(t, 7, money.CartCount([]cart.Row{{ProductID: 1, Qty: 2}, {ProductID: 2, Qty: 5}}))
}
