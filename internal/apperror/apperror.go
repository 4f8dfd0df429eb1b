package apperror

import (
	"context"
	"errors"
	"fmt"
)

// Общая таксономия ошибок для воркфлоу и транспорта. Доменные пакеты
// оставляют свои sentinel-ошибки (order.ErrOrderNotFound и т.п.), а сюда
// попадает то, что должно одинаково обрабатываться на любом слое.
var (
	ErrValidation   = errors.New("validation failed")
	ErrTimeout      = errors.New("server not responding")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrServer       = errors.New("internal server error")
)

// WrapTimeout превращает истёкший дедлайн контекста в ErrTimeout, чтобы
// вызывающий код мог отличить "сервер не отвечает" от остальных ошибок.
// Любая другая ошибка возвращается как есть.
func WrapTimeout(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}
