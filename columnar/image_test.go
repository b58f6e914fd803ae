package columnar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/cartboost/pkg/errors"
)

type cell struct {
	row     int32
	feature int
	value   float32
}

func fill(t *testing.T, im *Image, cells []cell) {
	t.Helper()
	for _, c := range cells {
		require.NoError(t, im.AddBudget(c.feature))
	}
	require.NoError(t, im.BuildStorage())
	for _, c := range cells {
		require.NoError(t, im.AddElement(c.row, c.feature, c.value))
	}
	require.NoError(t, im.Complete())
}

func assertInconsistent(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var dataErr *errors.DataInconsistencyError
	assert.True(t, errors.As(err, &dataErr), "expected DataInconsistencyError, got %v", err)
}

func TestImageFillAndRead(t *testing.T) {
	im := NewImage(4)
	fill(t, im, []cell{
		{0, 2, 1.5}, {0, 0, 3},
		{1, 2, -1}, {2, 0, 7}, {2, 3, 0.25},
	})

	assert.Equal(t, []int{0, 2, 3}, im.ActiveFeatures())
	assert.Equal(t, 5, im.NumEntries())
	assert.Equal(t, []Entry{{0, 3}, {2, 7}}, im.Feature(0))
	assert.Empty(t, im.Feature(1))
	assert.Equal(t, []Entry{{0, 1.5}, {1, -1}}, im.Feature(2))
	assert.Equal(t, []Entry{{2, 0.25}}, im.Feature(3))
	assert.Nil(t, im.Feature(4))
}

func TestImageFeatureSliceCannotGrowIntoNeighbour(t *testing.T) {
	im := NewImage(2)
	fill(t, im, []cell{{0, 0, 1}, {0, 1, 2}})

	col := im.Feature(0)
	col = append(col, Entry{Row: 9, Value: 9})
	assert.Len(t, col, 2)
	assert.Equal(t, []Entry{{0, 2}}, im.Feature(1))
}

func TestImageResetClearsPreviousFill(t *testing.T) {
	im := NewImage(3)
	fill(t, im, []cell{{0, 0, 1}, {1, 0, 2}, {1, 2, 5}})

	im.Reset()
	assert.Empty(t, im.ActiveFeatures())
	assert.Equal(t, 0, im.NumEntries())

	fill(t, im, []cell{{4, 1, 8}})
	assert.Equal(t, []int{1}, im.ActiveFeatures())
	assert.Empty(t, im.Feature(0))
	assert.Equal(t, []Entry{{4, 8}}, im.Feature(1))
	assert.Empty(t, im.Feature(2))
}

func TestImageProtocolViolations(t *testing.T) {
	t.Run("feature out of range", func(t *testing.T) {
		im := NewImage(2)
		assertInconsistent(t, im.AddBudget(2))
		assertInconsistent(t, im.AddBudget(-1))
	})

	t.Run("element before storage", func(t *testing.T) {
		im := NewImage(2)
		require.NoError(t, im.AddBudget(0))
		assertInconsistent(t, im.AddElement(0, 0, 1))
	})

	t.Run("double build", func(t *testing.T) {
		im := NewImage(2)
		require.NoError(t, im.AddBudget(0))
		require.NoError(t, im.BuildStorage())
		assertInconsistent(t, im.BuildStorage())
	})

	t.Run("budget after build", func(t *testing.T) {
		im := NewImage(2)
		require.NoError(t, im.BuildStorage())
		assertInconsistent(t, im.AddBudget(0))
	})

	t.Run("unbudgeted feature", func(t *testing.T) {
		im := NewImage(3)
		require.NoError(t, im.AddBudget(0))
		require.NoError(t, im.AddBudget(2))
		require.NoError(t, im.BuildStorage())
		assertInconsistent(t, im.AddElement(0, 1, 4))
		require.NoError(t, im.AddElement(0, 0, 1))
		require.NoError(t, im.AddElement(0, 2, 3))
		assert.Equal(t, []Entry{{0, 1}}, im.Feature(0))
		assert.Equal(t, []Entry{{0, 3}}, im.Feature(2))
	})

	t.Run("overfill keeps neighbour intact", func(t *testing.T) {
		im := NewImage(2)
		require.NoError(t, im.AddBudget(0))
		require.NoError(t, im.AddBudget(1))
		require.NoError(t, im.BuildStorage())
		require.NoError(t, im.AddElement(0, 0, 1))
		require.NoError(t, im.AddElement(0, 1, 2))
		assertInconsistent(t, im.AddElement(1, 0, 99))
		assert.Equal(t, []Entry{{0, 2}}, im.Feature(1))
	})

	t.Run("incomplete fill", func(t *testing.T) {
		im := NewImage(2)
		require.NoError(t, im.AddBudget(1))
		require.NoError(t, im.AddBudget(1))
		require.NoError(t, im.BuildStorage())
		require.NoError(t, im.AddElement(0, 1, 2))
		err := im.Complete()
		assertInconsistent(t, err)
		assert.Contains(t, err.Error(), "feature 1")
	})

	t.Run("complete before build", func(t *testing.T) {
		assertInconsistent(t, NewImage(1).Complete())
	})
}
