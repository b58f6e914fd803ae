// Package regularizer provides the penalties that turn gradient and hessian sums
// into split costs and leaf weights.
//
// Every kind computes
//
//	cost   = G'^2 / (H + λ')
//	weight = -G' / (H + λ')
//
// where G' is the gradient sum, soft-thresholded for the L1 kinds, and λ' is the
// denominator penalty of the kind. A zero denominator yields 0.
package regularizer

import (
	"fmt"
	"strings"

	"github.com/YuminosukeSato/cartboost/pkg/errors"
)

// Regularizer computes split costs and leaf weights from gradient statistics.
type Regularizer interface {
	// Name returns the registered name of the regularizer.
	Name() string
	// Lambda returns the configured strength.
	Lambda() float64
	// Cost returns the structure score of a node with the given sums.
	Cost(sumGrad, sumHess float64) float64
	// Weight returns the optimal unshrunk leaf weight for the given sums.
	Weight(sumGrad, sumHess float64) float64
}

// Names accepted by ByName.
const (
	NameL2          = "l2"
	NameThresholdL1 = "threshold_l1"
	NameElasticNet  = "elastic_net"
	NameNone        = "none"
)

// softThreshold shrinks g towards zero by lambda.
func softThreshold(g, lambda float64) float64 {
	switch {
	case g > lambda:
		return g - lambda
	case g < -lambda:
		return g + lambda
	default:
		return 0
	}
}

func cost(g, denom float64) float64 {
	return errors.SafeDivide(g*g, denom)
}

func weight(g, denom float64) float64 {
	return errors.SafeDivide(-g, denom)
}

// L2 penalizes the squared leaf weight: cost = G²/(H+λ).
type L2 struct{ Strength float64 }

func (r L2) Name() string    { return NameL2 }
func (r L2) Lambda() float64 { return r.Strength }
func (r L2) Cost(g, h float64) float64 {
	return cost(g, h+r.Strength)
}
func (r L2) Weight(g, h float64) float64 {
	return weight(g, h+r.Strength)
}

// ThresholdL1 soft-thresholds the gradient sum by λ: cost = st(G,λ)²/H.
type ThresholdL1 struct{ Strength float64 }

func (r ThresholdL1) Name() string    { return NameThresholdL1 }
func (r ThresholdL1) Lambda() float64 { return r.Strength }
func (r ThresholdL1) Cost(g, h float64) float64 {
	return cost(softThreshold(g, r.Strength), h)
}
func (r ThresholdL1) Weight(g, h float64) float64 {
	return weight(softThreshold(g, r.Strength), h)
}

// ElasticNet splits λ evenly between the threshold and the denominator.
type ElasticNet struct{ Strength float64 }

func (r ElasticNet) Name() string    { return NameElasticNet }
func (r ElasticNet) Lambda() float64 { return r.Strength }
func (r ElasticNet) Cost(g, h float64) float64 {
	half := 0.5 * r.Strength
	return cost(softThreshold(g, half), h+half)
}
func (r ElasticNet) Weight(g, h float64) float64 {
	half := 0.5 * r.Strength
	return weight(softThreshold(g, half), h+half)
}

// None applies no penalty: cost = G²/H.
type None struct{}

func (None) Name() string                { return NameNone }
func (None) Lambda() float64             { return 0 }
func (None) Cost(g, h float64) float64   { return cost(g, h) }
func (None) Weight(g, h float64) float64 { return weight(g, h) }

// ByName returns the regularizer registered under name with strength lambda.
func ByName(name string, lambda float64) (Regularizer, error) {
	if lambda < 0 {
		return nil, errors.NewConfigurationError("regularizer.lambda", "must be non-negative", lambda)
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case NameL2, "":
		return L2{Strength: lambda}, nil
	case NameThresholdL1, "l1":
		return ThresholdL1{Strength: lambda}, nil
	case NameElasticNet, "elasticnet":
		return ElasticNet{Strength: lambda}, nil
	case NameNone:
		return None{}, nil
	default:
		return nil, errors.Wrapf(errors.ErrUnknownName, "regularizer %q", name)
	}
}

// Describe formats r for logs, e.g. "l2(1)".
func Describe(r Regularizer) string {
	if r == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s(%g)", r.Name(), r.Lambda())
}
