package regularizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/cartboost/pkg/errors"
)

func TestRegularizerFormulas(t *testing.T) {
	tests := []struct {
		name       string
		reg        Regularizer
		g, h       float64
		wantCost   float64
		wantWeight float64
	}{
		{"l2", L2{Strength: 1}, 4, 3, 4, -1},
		{"l2 zero lambda", L2{}, -2, 2, 2, 1},
		{"threshold l1 inside band", ThresholdL1{Strength: 3}, 2, 5, 0, 0},
		{"threshold l1 positive", ThresholdL1{Strength: 1}, 5, 2, 8, -2},
		{"threshold l1 negative", ThresholdL1{Strength: 1}, -5, 2, 8, 2},
		{"elastic net", ElasticNet{Strength: 2}, 5, 1, 8, -2},
		{"none", None{}, 6, 3, 12, -2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.wantCost, tt.reg.Cost(tt.g, tt.h), 1e-12)
			assert.InDelta(t, tt.wantWeight, tt.reg.Weight(tt.g, tt.h), 1e-12)
		})
	}
}

func TestZeroDenominatorYieldsZero(t *testing.T) {
	for _, r := range []Regularizer{L2{}, ThresholdL1{}, None{}} {
		assert.Equal(t, 0.0, r.Cost(3, 0), r.Name())
		assert.Equal(t, 0.0, r.Weight(3, 0), r.Name())
	}
}

func TestByName(t *testing.T) {
	r, err := ByName("L2", 1)
	require.NoError(t, err)
	assert.Equal(t, L2{Strength: 1}, r)

	r, err = ByName("elastic_net", 0.5)
	require.NoError(t, err)
	assert.Equal(t, "elastic_net(0.5)", Describe(r))

	r, err = ByName("none", 3)
	require.NoError(t, err)
	assert.Equal(t, 0.0, r.Lambda())

	_, err = ByName("smooth_l1", 1)
	assert.True(t, errors.Is(err, errors.ErrUnknownName))

	_, err = ByName("l2", -1)
	var cfgErr *errors.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))

	assert.Equal(t, "<nil>", Describe(nil))
}
