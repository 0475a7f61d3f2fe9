package history

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counter is a command that adds delta to a shared total.
type counter struct {
	total  *int
	delta  int
	failDo bool
	failUn bool
}

func (c *counter) Execute() error {
	if c.failDo {
		return errors.New("execute failed")
	}
	*c.total += c.delta
	return nil
}

func (c *counter) Undo() error {
	if c.failUn {
		return errors.New("undo failed")
	}
	*c.total -= c.delta
	return nil
}

func (c *counter) Description() string { return "add" }

func TestExecuteUndoRedo(t *testing.T) {
	var h History[string]
	total := 0

	require.NoError(t, h.Execute(&counter{total: &total, delta: 2}, "a"))
	h.SetAfter("b")
	require.NoError(t, h.Execute(&counter{total: &total, delta: 3}, "b"))
	h.SetAfter("c")
	assert.Equal(t, 5, total)

	before, ok, err := h.Undo("c")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "b", before)
	assert.Equal(t, 2, total)

	after, ok, err := h.Redo()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "c", after)
	assert.Equal(t, 5, total)

	undo, redo := h.Len()
	assert.Equal(t, 2, undo)
	assert.Equal(t, 0, redo)
}

func TestUndoRecordsCurrentSnapshot(t *testing.T) {
	var h History[int]
	total := 0
	require.NoError(t, h.Execute(&counter{total: &total, delta: 1}, 10))
	h.SetAfter(20)

	// The cursor moved after the command; redo returns where undo began.
	_, _, err := h.Undo(25)
	require.NoError(t, err)
	after, ok, err := h.Redo()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 25, after)
}

func TestEmptyStacksAreNoOps(t *testing.T) {
	var h History[int]

	_, ok, err := h.Undo(0)
	assert.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = h.Redo()
	assert.NoError(t, err)
	assert.False(t, ok)

	assert.False(t, h.CanUndo())
	assert.False(t, h.CanRedo())
}

func TestFailedExecuteNotRecorded(t *testing.T) {
	var h History[int]
	total := 0

	err := h.Execute(&counter{total: &total, delta: 1, failDo: true}, 0)
	assert.Error(t, err)
	assert.False(t, h.CanUndo())
	assert.Equal(t, 0, total)
}

func TestFailedUndoLeavesStacks(t *testing.T) {
	var h History[int]
	total := 0
	require.NoError(t, h.Execute(&counter{total: &total, delta: 1, failUn: true}, 0))

	_, ok, err := h.Undo(1)
	assert.Error(t, err)
	assert.False(t, ok)
	assert.True(t, h.CanUndo())
	assert.False(t, h.CanRedo())
	assert.Equal(t, 1, total)
}

func TestNewCommandClearsRedo(t *testing.T) {
	var h History[int]
	total := 0
	require.NoError(t, h.Execute(&counter{total: &total, delta: 1}, 0))
	_, _, err := h.Undo(1)
	require.NoError(t, err)
	require.True(t, h.CanRedo())

	require.NoError(t, h.Execute(&counter{total: &total, delta: 4}, 0))
	assert.False(t, h.CanRedo())

	undo, redo := h.Len()
	assert.Equal(t, 1, undo)
	assert.Equal(t, 0, redo)

	h.Clear()
	assert.False(t, h.CanUndo())
}
