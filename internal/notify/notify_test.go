package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub(start time.Time) (*Hub, *time.Time) {
	current := start
	h := NewHub()
	h.now = func() time.Time { return current }

	return h, &current
}

func TestHub_Active_DismissesAfterTimeout(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	h, clock := newTestHub(start)

	h.Success("order placed")

	active := h.Active()
	require.Len(t, active, 1)
	assert.Equal(t, LevelSuccess, active[0].Level)
	assert.Equal(t, "order placed", active[0].Message)

	// За миг до таймаута уведомление ещё живо.
	*clock = start.Add(DismissAfter - time.Millisecond)
	assert.Len(t, h.Active(), 1)

	*clock = start.Add(DismissAfter + time.Millisecond)
	assert.Empty(t, h.Active())
}

func TestHub_Active_KeepsYoungerNotices(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	h, clock := newTestHub(start)

	h.Error("failed to place order")

	*clock = start.Add(2 * time.Second)
	h.Success("order placed")

	*clock = start.Add(DismissAfter + time.Millisecond)

	active := h.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "order placed", active[0].Message)
	assert.Equal(t, LevelSuccess, active[0].Level)
}

func TestHub_EachOutcomeIsOneNotice(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	h, _ := newTestHub(start)

	h.Success("order placed")
	h.Error("failed to update order status")

	active := h.Active()
	require.Len(t, active, 2)
	assert.Equal(t, LevelSuccess, active[0].Level)
	assert.Equal(t, LevelError, active[1].Level)
}
