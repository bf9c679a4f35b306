package display

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestWaitForKey_ReturnsOnQuitKey(t *testing.T) {
	keys := []int{-1, 'a', -1, 'x', QuitKey, 'z'}
	polls := 0
	err := WaitForKey(context.Background(), QuitKey, func() int {
		k := keys[polls]
		polls++
		return k
	})
	require.NoError(t, err)
	assert.Equal(t, 5, polls)
}

func TestWaitForKey_MasksModifierBits(t *testing.T) {
	err := WaitForKey(context.Background(), QuitKey, func() int { return 0x100000 | QuitKey })
	assert.NoError(t, err)
}

func TestWaitForKey_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	polls := 0
	err := WaitForKey(ctx, QuitKey, func() int {
		polls++
		if polls == 3 {
			cancel()
		}
		return -1
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, polls)
}

func TestHeadless(t *testing.T) {
	h := NewHeadless()
	img := gocv.NewMatWithSize(3, 5, gocv.MatTypeCV8UC3)
	defer img.Close()

	require.NoError(t, h.Show("frame", img))
	require.NoError(t, h.Wait(context.Background()))
	require.NoError(t, h.Close())

	assert.Equal(t, []Shown{{Title: "frame", Rows: 3, Cols: 5, Channels: 3}}, h.Shown())
	assert.Equal(t, 1, h.Waits())
	assert.Equal(t, 1, h.Closes())

	var _ Viewer = h
	var _ Viewer = NewWindows(nil)
}
