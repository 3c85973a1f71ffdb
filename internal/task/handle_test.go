package task

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestState_String(t *testing.T) {
	assert.Equal(t, "pending", StatePending.String())
	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "completed", StateCompleted.String())
	assert.Equal(t, "failed", StateFailed.String())
	assert.Equal(t, "cancelled", StateCancelled.String())
	assert.Equal(t, "unknown", State(42).String())
}

func TestState_Terminal(t *testing.T) {
	assert.False(t, StatePending.Terminal())
	assert.False(t, StateRunning.Terminal())
	assert.True(t, StateCompleted.Terminal())
	assert.True(t, StateFailed.Terminal())
	assert.True(t, StateCancelled.Terminal())
}

func TestHandle_Lifecycle(t *testing.T) {
	h := newHandle("task-1", time.Minute, nil, nil)

	assert.Equal(t, "task-1", h.ID())
	assert.Equal(t, time.Minute, h.Timeout())
	assert.Equal(t, StatePending, h.State())
	assert.False(t, h.CancelRequested())

	assert.True(t, h.tryStart())
	assert.Equal(t, StateRunning, h.State())
	// A Running task cannot start again.
	assert.False(t, h.tryStart())

	assert.True(t, h.finish(StateCompleted, "result", nil))
	assert.Equal(t, StateCompleted, h.State())

	result, err := h.Result()
	assert.Equal(t, "result", result)
	assert.NoError(t, err)

	select {
	case <-h.Done():
	default:
		t.Fatal("Done channel must be closed after a terminal transition")
	}
}

func TestHandle_TerminalStatesAreWriteOnce(t *testing.T) {
	boom := errors.New("boom")

	h := newHandle("task-1", 0, nil, nil)
	h.tryStart()
	assert.True(t, h.finish(StateFailed, nil, boom))

	// No resurrection: later transitions are rejected and the stored
	// result/error are untouched.
	assert.False(t, h.finish(StateCompleted, "late", nil))
	assert.Equal(t, StateFailed, h.State())
	result, err := h.Result()
	assert.Nil(t, result)
	assert.ErrorIs(t, err, boom)
}

func TestHandle_CancelIfPending(t *testing.T) {
	h := newHandle("task-1", 0, nil, nil)

	assert.True(t, h.cancelIfPending())
	assert.Equal(t, StateCancelled, h.State())
	_, err := h.Result()
	assert.ErrorIs(t, err, ErrTaskCancelled)

	// A Running task cannot be short-circuit cancelled.
	h2 := newHandle("task-2", 0, nil, nil)
	h2.tryStart()
	assert.False(t, h2.cancelIfPending())
	assert.Equal(t, StateRunning, h2.State())
}

func TestHandle_CallbacksFireExactlyOnce(t *testing.T) {
	var completedCalls, failedCalls int
	h := newHandle("task-1", 0,
		func(any) { completedCalls++ },
		func(error) { failedCalls++ },
	)
	h.tryStart()

	assert.True(t, h.finish(StateCompleted, nil, nil))
	assert.False(t, h.finish(StateCompleted, nil, nil))
	assert.False(t, h.finish(StateFailed, nil, errors.New("late")))

	assert.Equal(t, 1, completedCalls)
	assert.Equal(t, 0, failedCalls)
}

func TestHandle_CancelledFiresFailureCallback(t *testing.T) {
	var got error
	h := newHandle("task-1", 0, nil, func(err error) { got = err })

	assert.True(t, h.cancelIfPending())
	assert.ErrorIs(t, got, ErrTaskCancelled)
}

func TestHandle_CancelFlagIsOneWay(t *testing.T) {
	h := newHandle("task-1", 0, nil, nil)

	h.requestCancel()
	assert.True(t, h.CancelRequested())
	h.requestCancel()
	assert.True(t, h.CancelRequested())
}
