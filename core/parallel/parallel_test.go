package parallel

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/cartboost/pkg/errors"
)

func TestParallelizeCoversEveryItemOnce(t *testing.T) {
	for _, items := range []int{0, 1, 7, 1000} {
		hits := make([]int32, items)
		Parallelize(items, func(start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&hits[i], 1)
			}
		})
		for i, h := range hits {
			require.Equal(t, int32(1), h, "items=%d index=%d", items, i)
		}
	}
}

func TestParallelizeNWorkers(t *testing.T) {
	var calls int32
	ParallelizeN(10, 3, func(start, end int) {
		atomic.AddInt32(&calls, 1)
	})
	assert.Equal(t, int32(3), calls)

	calls = 0
	ParallelizeN(5, 0, func(start, end int) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, 0, start)
		assert.Equal(t, 5, end)
	})
	assert.Equal(t, int32(1), calls)
}

func TestParallelizeWithThresholdSequential(t *testing.T) {
	var ranges [][2]int
	ParallelizeWithThreshold(50, 100, func(start, end int) {
		ranges = append(ranges, [2]int{start, end})
	})
	assert.Equal(t, [][2]int{{0, 50}}, ranges)
}

func TestParallelizeErr(t *testing.T) {
	err := ParallelizeErr(100, 0, func(start, end int) error {
		if start <= 42 && 42 < end {
			return errors.New("bad item")
		}
		return nil
	})
	assert.EqualError(t, err, "bad item")

	err = ParallelizeErr(10, 100, func(start, end int) error {
		panic("boom")
	})
	var pe *errors.PanicError
	assert.True(t, errors.As(err, &pe))

	assert.NoError(t, ParallelizeErr(10, 0, func(int, int) error { return nil }))
}
