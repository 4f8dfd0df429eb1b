package identity

import (
	"time"

	"github.com/gofrs/uuid"
)

// User — текущий пользователь сессии. Телефон — идентичность для ключа
// корзины, nickname показывается в заказах.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Phone        string    `json:"phone" db:"phone"`
	Nickname     string    `json:"nickname" db:"nickname"`
	Name         string    `json:"name" db:"name"`
	Address      string    `json:"address" db:"address"`
	PasswordHash string    `json:"-" db:"password_hash"`
	IsAdmin      bool      `json:"is_admin" db:"is_admin"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
