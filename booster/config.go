package booster

import (
	"math"

	"github.com/YuminosukeSato/cartboost/pkg/errors"
	"github.com/YuminosukeSato/cartboost/regularizer"
)

// Default values for Config.
const (
	DefaultMaxDepth       = 6
	DefaultMinChildWeight = 2.0
	DefaultMinSplitLoss   = 1e-5
	DefaultEpsilon        = 1e-5
	DefaultLearningRate   = 0.1
	DefaultLambda         = 1.0
)

// Config holds the tree construction parameters.
type Config struct {
	// MaxDepth bounds the depth of every leaf; the root has depth 0.
	MaxDepth int
	// MinChildWeight is the minimum hessian sum of each side of a split.
	MinChildWeight float64
	// MinSplitLoss is the gain at or below which a split whose children are
	// both leaves is pruned back.
	MinSplitLoss float64
	// Epsilon separates distinct feature values and is the minimum gain of a split.
	Epsilon float64
	// LearningRate scales every leaf value.
	LearningRate float64
	// NumFeature is the number of feature slots; row features must be below it.
	NumFeature int
	// Regularizer computes costs and weights.
	Regularizer regularizer.Regularizer
}

// DefaultConfig returns the default parameters for numFeature features.
func DefaultConfig(numFeature int) Config {
	return Config{
		MaxDepth:       DefaultMaxDepth,
		MinChildWeight: DefaultMinChildWeight,
		MinSplitLoss:   DefaultMinSplitLoss,
		Epsilon:        DefaultEpsilon,
		LearningRate:   DefaultLearningRate,
		NumFeature:     numFeature,
		Regularizer:    regularizer.L2{Strength: DefaultLambda},
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Validate reports the first invalid parameter as a ConfigurationError.
func (c Config) Validate() error {
	switch {
	case c.MaxDepth < 0:
		return errors.NewConfigurationError("MaxDepth", "must be non-negative", c.MaxDepth)
	case !finite(c.MinChildWeight) || c.MinChildWeight < 0:
		return errors.NewConfigurationError("MinChildWeight", "must be a finite non-negative number", c.MinChildWeight)
	case math.IsNaN(c.MinSplitLoss):
		return errors.NewConfigurationError("MinSplitLoss", "must be a number", c.MinSplitLoss)
	case !finite(c.Epsilon) || c.Epsilon < 0:
		return errors.NewConfigurationError("Epsilon", "must be a finite non-negative number", c.Epsilon)
	case !finite(c.LearningRate) || c.LearningRate <= 0:
		return errors.NewConfigurationError("LearningRate", "must be a finite positive number", c.LearningRate)
	case c.NumFeature <= 0:
		return errors.NewConfigurationError("NumFeature", "must be positive", c.NumFeature)
	case c.Regularizer == nil:
		return errors.NewConfigurationError("Regularizer", "must be set", nil)
	}
	return nil
}
