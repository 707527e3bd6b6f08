package paginator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"vkarchive/pkg/logger"
	"vkarchive/pkg/vk"
)

type call struct {
	count  int
	offset int
}

// fakeLister serves a wall of total posts and records every call
type fakeLister struct {
	total  int
	calls  []call
	failAt int
}

func (f *fakeLister) WallGet(ctx context.Context, domain string, count, offset int) (*vk.WallPage, error) {
	f.calls = append(f.calls, call{count: count, offset: offset})
	if f.failAt > 0 && len(f.calls) == f.failAt {
		return nil, errors.New("connection reset")
	}

	items := make([]vk.Post, 0, count)
	for i := 0; i < count && offset+i < f.total; i++ {
		items = append(items, vk.Post{ID: int64(f.total - offset - i)})
	}
	return &vk.WallPage{Count: f.total, Items: items}, nil
}

func collect(t *testing.T, p *Paginator, requested int) ([][]vk.Post, error) {
	t.Helper()
	var batches [][]vk.Post
	for batch, err := range p.Batches(context.Background(), "apiclub", requested) {
		if err != nil {
			return batches, err
		}
		batches = append(batches, batch)
	}
	return batches, nil
}

func TestBatchesSizesAndOffsets(t *testing.T) {
	lister := &fakeLister{total: 1000}
	p := New(lister, logger.NewTestLogger())

	batches, err := collect(t, p, 250)
	require.NoError(t, err)

	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 100)
	assert.Len(t, batches[1], 100)
	assert.Len(t, batches[2], 50)

	assert.Equal(t, []call{
		{count: 1, offset: 0},
		{count: 100, offset: 0},
		{count: 100, offset: 100},
		{count: 50, offset: 200},
	}, lister.calls)
}

func TestBatchesTarget(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		requested int
		wantSizes []int
	}{
		{"all posts", 230, All, []int{100, 100, 30}},
		{"requested above total", 40, 500, []int{40}},
		{"exact page", 100, 100, []int{100}},
		{"empty wall", 0, All, nil},
		{"zero requested", 50, 0, nil},
		{"below sentinel means all", 120, -7, []int{100, 20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(&fakeLister{total: tt.total}, logger.NewNopLogger())

			batches, err := collect(t, p, tt.requested)
			require.NoError(t, err)

			var sizes []int
			for _, b := range batches {
				sizes = append(sizes, len(b))
			}
			assert.Equal(t, tt.wantSizes, sizes)
		})
	}
}

func TestBatchesPropagatesErrors(t *testing.T) {
	t.Run("total probe", func(t *testing.T) {
		p := New(&fakeLister{total: 10, failAt: 1}, logger.NewNopLogger())
		batches, err := collect(t, p, All)
		assert.Error(t, err)
		assert.Empty(t, batches)
	})

	t.Run("second batch", func(t *testing.T) {
		lister := &fakeLister{total: 300, failAt: 3}
		p := New(lister, logger.NewNopLogger())

		batches, err := collect(t, p, All)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection reset")
		assert.Len(t, batches, 1)
		assert.Len(t, lister.calls, 3)
	})
}

func TestBatchesStopEarlyAndRestart(t *testing.T) {
	lister := &fakeLister{total: 500}
	p := New(lister, logger.NewNopLogger())
	seq := p.Batches(context.Background(), "apiclub", All)

	for range seq {
		break
	}
	assert.Len(t, lister.calls, 2)

	lister.calls = nil
	for range seq {
		break
	}
	assert.Equal(t, []call{{count: 1, offset: 0}, {count: 100, offset: 0}}, lister.calls)
}

func TestTarget(t *testing.T) {
	assert.Equal(t, 10, Target(All, 10))
	assert.Equal(t, 5, Target(5, 10))
	assert.Equal(t, 10, Target(15, 10))
	assert.Equal(t, 0, Target(0, 10))
}

func TestOnTarget(t *testing.T) {
	p := New(&fakeLister{total: 40}, logger.NewNopLogger())

	var gotTotal, gotTarget int
	p.OnTarget(func(total, target int) {
		gotTotal, gotTarget = total, target
	})

	_, err := collect(t, p, 25)
	require.NoError(t, err)
	assert.Equal(t, 40, gotTotal)
	assert.Equal(t, 25, gotTarget)
}
