package order

import (
	"time"

	"github.com/gofrs/uuid"
)

type Status string

const (
	StatusNew      Status = "new"
	StatusInWork   Status = "in_work"
	StatusDone     Status = "done"
	StatusCanceled Status = "canceled"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusInWork, StatusDone, StatusCanceled:
		return true
	}

	return false
}

// LineSnapshot — копия полей товара на момент оформления заказа плюс
// количество. Никогда не ссылка на живой товар: правки и удаления в
// каталоге не должны менять исторические заказы.
type LineSnapshot struct {
	ProductID  int64    `json:"productId" db:"product_id"`
	Name       string   `json:"name" db:"name"`
	Price      string   `json:"price" db:"price"`
	OldPrice   string   `json:"oldPrice,omitempty" db:"old_price"`
	Images     []string `json:"images" db:"images"`
	Categories []string `json:"categories" db:"categories"`
	Qty        int      `json:"qty" db:"qty"`
}

// OrderInfo — контактные данные заказа. Строгого формата нет: проверяется
// только присутствие обязательных полей, остальное — забота сервера.
type OrderInfo struct {
	Name     string `json:"name" validate:"required"`
	Phone    string `json:"phone" validate:"required"`
	Address  string `json:"address" validate:"required"`
	Comment  string `json:"comment"`
	Nickname string `json:"nickname"`
}

// Order создаётся один раз и после создания неизменяем, кроме статуса.
type Order struct {
	ID        uuid.UUID      `json:"id" db:"id"`
	UserID    uuid.UUID      `json:"user_id" db:"user_id"`
	Status    Status         `json:"status" db:"status"`
	Items     []LineSnapshot `json:"items" db:"-"`
	Info      OrderInfo      `json:"order_info"`
	Total     float64        `json:"total" db:"total"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
}
