package util_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/kvc/internal/fs"
	"github.com/keshon/kvc/internal/util"
)

func TestWriteReadJSON(t *testing.T) {
	m := fs.NewMemoryFS()
	type doc struct {
		Loaded []string `json:"loaded"`
	}

	require.NoError(t, util.WriteJSON(m, ".kvc/index.json", doc{Loaded: []string{"a.md"}}))

	var got doc
	require.NoError(t, util.ReadJSON(m, ".kvc/index.json", &got))
	assert.Equal(t, []string{"a.md"}, got.Loaded)
}

func TestSortedSet(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, util.SortedSet([]string{"c", "a", "", "b", "a"}))
	assert.Empty(t, util.SortedSet(nil))
}

func TestParallel(t *testing.T) {
	var n atomic.Int64
	err := util.Parallel(context.Background(), []int{1, 2, 3, 4}, 2, func(_ context.Context, v int) error {
		n.Add(int64(v))
		return nil
	})
	require.NoError(t, err)
	assert.EqualValues(t, 10, n.Load())

	boom := errors.New("boom")
	err = util.Parallel(context.Background(), []int{1, 2, 3}, 1, func(_ context.Context, v int) error {
		if v == 2 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
}
