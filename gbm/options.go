package gbm

import (
	"github.com/YuminosukeSato/cartboost/booster"
	"github.com/YuminosukeSato/cartboost/pkg/log"
)

// Option is a function that configures a GBM
type Option func(*GBM)

// WithMaxIter sets the maximum number of boosting rounds
func WithMaxIter(n int) Option {
	return func(g *GBM) {
		g.MaxIter = n
	}
}

// WithTolerance sets the minimum training RMSE improvement that keeps boosting going
func WithTolerance(tol float64) Option {
	return func(g *GBM) {
		g.Tolerance = tol
	}
}

// WithLearningRate sets the shrinkage applied to every leaf
func WithLearningRate(lr float64) Option {
	return func(g *GBM) {
		g.LearningRate = lr
	}
}

// WithMaxDepth sets the maximum leaf depth of each tree
func WithMaxDepth(d int) Option {
	return func(g *GBM) {
		g.MaxDepth = d
	}
}

// WithMinChildWeight sets the minimum hessian sum of each side of a split
func WithMinChildWeight(w float64) Option {
	return func(g *GBM) {
		g.MinChildWeight = w
	}
}

// WithMinSplitLoss sets the gain at or below which leaf pairs are pruned
func WithMinSplitLoss(loss float64) Option {
	return func(g *GBM) {
		g.MinSplitLoss = loss
	}
}

// WithEpsilon sets the split tolerance
func WithEpsilon(eps float64) Option {
	return func(g *GBM) {
		g.Epsilon = eps
	}
}

// WithRegularizer selects the regularizer by name, e.g. "l2" or "elastic_net"
func WithRegularizer(name string, lambda float64) Option {
	return func(g *GBM) {
		g.Regularizer = name
		g.Lambda = lambda
	}
}

// WithObjective selects the objective by name, e.g. "squared" or "logistic"
func WithObjective(name string) Option {
	return func(g *GBM) {
		g.Objective = name
	}
}

// WithClamp bounds every prediction to [minValue, maxValue]
func WithClamp(minValue, maxValue float64) Option {
	return func(g *GBM) {
		g.Clamp = true
		g.MinValue = minValue
		g.MaxValue = maxValue
	}
}

// WithValidEvery sets how many rounds pass between validation evaluations
func WithValidEvery(rounds int) Option {
	return func(g *GBM) {
		g.ValidEvery = rounds
	}
}

// WithTraversal sets the task order used when growing trees
func WithTraversal(t booster.Traversal) Option {
	return func(g *GBM) {
		g.Traversal = t
	}
}

// WithLogger sets the logger for round summaries and tree builds
func WithLogger(logger log.Logger) Option {
	return func(g *GBM) {
		g.logger = logger
	}
}
