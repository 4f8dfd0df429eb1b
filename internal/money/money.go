// Package money — чистые функции подсчёта цен и количеств. Все функции
// тотальные: корзина и каталог приходят из независимых источников и могут
// быть рассинхронизированы, поэтому отображение никогда не должно падать
// из-за битой цены или отсутствующего товара.
package money

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/vasiliy-maslov/storefront/internal/cart"
	"github.com/vasiliy-maslov/storefront/internal/catalog"
)

// ParsePrice разбирает цену из строки, допуская и ',' и '.' как
// десятичный разделитель. Нечитаемая цена — это 0, а не ошибка.
func ParsePrice(raw string) float64 {
	normalized := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")

	value, err := strconv.ParseFloat(normalized, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}

	return value
}

// RowSubtotal — стоимость одной строки корзины. Товар, которого больше
// нет в каталоге, стоит 0: устаревшая строка бесполезна, но не ошибка.
func RowSubtotal(row cart.Row, snap *catalog.Snapshot) float64 {
	product, ok := snap.Product(row.ProductID)
	if !ok {
		return 0
	}

	return ParsePrice(product.Price) * float64(row.Qty)
}

// CartTotal — сумма корзины, отформатированная ровно с двумя знаками
// после запятой.
func CartTotal(rows []cart.Row, snap *catalog.Snapshot) string {
	total := 0.0
	for _, row := range rows {
		total += RowSubtotal(row, snap)
	}

	return fmt.Sprintf("%.2f", total)
}

// CartCount — суммарное количество единиц товара в корзине.
func CartCount(rows []cart.Row) int {
	count := 0
	for _, row := range rows {
		count += row.Qty
	}

	return count
}

// Round2 округляет сумму заказа до копеек.
func Round2(value float64) float64 {
	return math.Round(value*100) / 100
}
