package notify

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// DismissAfter — время жизни уведомления. Уведомления информационные и
// исчезают сами, ничего не блокируя.
const DismissAfter = 2500 * time.Millisecond

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

type Notice struct {
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Notifier получает ровно одно уведомление на исход каждого действия.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// Hub — накопитель активных уведомлений с автоочисткой по DismissAfter.
type Hub struct {
	mu      sync.Mutex
	notices []Notice
	now     func() time.Time
}

func NewHub() *Hub {
	return &Hub{now: time.Now}
}

func (h *Hub) Success(message string) {
	log.Info().Str("notice", message).Msg("notify: success")
	h.add(Notice{Level: LevelSuccess, Message: message})
}

func (h *Hub) Error(message string) {
	log.Warn().Str("notice", message).Msg("notify: error")
	h.add(Notice{Level: LevelError, Message: message})
}

// Active возвращает не истёкшие уведомления, попутно выбрасывая старые.
func (h *Hub) Active() []Notice {
	h.mu.Lock()
	defer h.mu.Unlock()

	cutoff := h.now().Add(-DismissAfter)
	alive := h.notices[:0]
	for _, n := range h.notices {
		if n.At.After(cutoff) {
			alive = append(alive, n)
		}
	}
	h.notices = alive

	out := make([]Notice, len(alive))
	copy(out, alive)

	return out
}

func (h *Hub) add(n Notice) {
	h.mu.Lock()
	defer h.mu.Unlock()

	n.At = h.now()
	h.notices = append(h.notices, n)
}
