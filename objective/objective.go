// Package objective provides the loss functions the boosting loop differentiates.
//
// Labels of the classification losses are -1 or +1.
package objective

import (
	"math"
	"strings"

	"github.com/elliotchance/pie/v2"

	"github.com/YuminosukeSato/cartboost/pkg/errors"
)

// ObjectiveFunction defines the interface for the boosting losses.
type ObjectiveFunction interface {
	// CalculateGradient calculates the first derivative with respect to the prediction
	CalculateGradient(prediction, target float64) float64

	// CalculateHessian calculates the second derivative with respect to the prediction
	CalculateHessian(prediction, target float64) float64

	// CalculateLoss calculates the loss for a single sample
	CalculateLoss(prediction, target float64) float64

	// GetInitScore returns the constant prediction that minimizes the loss
	GetInitScore(targets []float64) float64

	// ValidateTargets reports labels the loss is not defined for
	ValidateTargets(targets []float64) error

	// Name returns the name of the objective
	Name() string
}

// Objective names accepted by CreateObjectiveFunction.
const (
	NameSquared     = "squared"
	NameLogistic    = "logistic"
	NameExponential = "exponential"
	NameHinge       = "hinge"
)

// probability clamp for the log-odds of degenerate label sets
const probEps = 1e-6

func sigmoid(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}

// positiveRate returns the clamped share of +1 labels.
func positiveRate(targets []float64) float64 {
	if len(targets) == 0 {
		return 0.5
	}
	pos := len(pie.Filter(targets, func(y float64) bool { return y > 0 }))
	p := float64(pos) / float64(len(targets))
	return math.Min(math.Max(p, probEps), 1-probEps)
}

func validateSigned(name string, targets []float64) error {
	for i, y := range targets {
		if y != 1 && y != -1 {
			return errors.NewDataInconsistencyError("objective."+name, i, -1, "label must be -1 or +1")
		}
	}
	return nil
}

// SquaredObjective implements squared error: loss (y-f)², gradient f-y, hessian 1.
type SquaredObjective struct{}

func NewSquaredObjective() *SquaredObjective {
	return &SquaredObjective{}
}

func (o *SquaredObjective) CalculateGradient(prediction, target float64) float64 {
	return prediction - target
}

func (o *SquaredObjective) CalculateHessian(prediction, target float64) float64 {
	return 1.0
}

func (o *SquaredObjective) CalculateLoss(prediction, target float64) float64 {
	diff := prediction - target
	return diff * diff
}

func (o *SquaredObjective) GetInitScore(targets []float64) float64 {
	if len(targets) == 0 {
		return 0.0
	}
	return pie.Average(targets)
}

func (o *SquaredObjective) ValidateTargets(targets []float64) error {
	for i, y := range targets {
		if math.IsNaN(y) || math.IsInf(y, 0) {
			return errors.NewDataInconsistencyError("objective.squared", i, -1, "label must be finite")
		}
	}
	return nil
}

func (o *SquaredObjective) Name() string {
	return NameSquared
}

// LogisticObjective implements log(1+exp(-yf)).
type LogisticObjective struct{}

func NewLogisticObjective() *LogisticObjective {
	return &LogisticObjective{}
}

func (o *LogisticObjective) CalculateGradient(prediction, target float64) float64 {
	return -target * sigmoid(-target*prediction)
}

func (o *LogisticObjective) CalculateHessian(prediction, target float64) float64 {
	s := sigmoid(target * prediction)
	return s * (1 - s)
}

func (o *LogisticObjective) CalculateLoss(prediction, target float64) float64 {
	m := -target * prediction
	// log(1+e^m) without overflow
	if m > 0 {
		return m + math.Log1p(math.Exp(-m))
	}
	return math.Log1p(math.Exp(m))
}

func (o *LogisticObjective) GetInitScore(targets []float64) float64 {
	p := positiveRate(targets)
	return math.Log(p / (1 - p))
}

func (o *LogisticObjective) ValidateTargets(targets []float64) error {
	return validateSigned(NameLogistic, targets)
}

func (o *LogisticObjective) Name() string {
	return NameLogistic
}

// ExponentialObjective implements exp(-yf).
type ExponentialObjective struct{}

func NewExponentialObjective() *ExponentialObjective {
	return &ExponentialObjective{}
}

func (o *ExponentialObjective) CalculateGradient(prediction, target float64) float64 {
	return -target * errors.StabilizeExp(-target*prediction)
}

func (o *ExponentialObjective) CalculateHessian(prediction, target float64) float64 {
	return errors.StabilizeExp(-target * prediction)
}

func (o *ExponentialObjective) CalculateLoss(prediction, target float64) float64 {
	return errors.StabilizeExp(-target * prediction)
}

func (o *ExponentialObjective) GetInitScore(targets []float64) float64 {
	p := positiveRate(targets)
	return 0.5 * math.Log(p/(1-p))
}

func (o *ExponentialObjective) ValidateTargets(targets []float64) error {
	return validateSigned(NameExponential, targets)
}

func (o *ExponentialObjective) Name() string {
	return NameExponential
}

// HingeObjective implements max(0, 1-yf) with a unit hessian.
type HingeObjective struct{}

func NewHingeObjective() *HingeObjective {
	return &HingeObjective{}
}

func (o *HingeObjective) CalculateGradient(prediction, target float64) float64 {
	if target*prediction < 1 {
		return -target
	}
	return 0.0
}

func (o *HingeObjective) CalculateHessian(prediction, target float64) float64 {
	return 1.0
}

func (o *HingeObjective) CalculateLoss(prediction, target float64) float64 {
	if m := target * prediction; m < 1 {
		return 1 - m
	}
	return 0.0
}

func (o *HingeObjective) GetInitScore(targets []float64) float64 {
	return 0.0
}

func (o *HingeObjective) ValidateTargets(targets []float64) error {
	return validateSigned(NameHinge, targets)
}

func (o *HingeObjective) Name() string {
	return NameHinge
}

// CreateObjectiveFunction returns the objective registered under name.
func CreateObjectiveFunction(name string) (ObjectiveFunction, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case NameSquared, "rmse", "regression", "l2", "":
		return NewSquaredObjective(), nil
	case NameLogistic, "log", "binary":
		return NewLogisticObjective(), nil
	case NameExponential, "exp":
		return NewExponentialObjective(), nil
	case NameHinge:
		return NewHingeObjective(), nil
	default:
		return nil, errors.Wrapf(errors.ErrUnknownName, "objective %q", name)
	}
}

// ComputeGradients fills grad and hess for every (prediction, target) pair.
func ComputeGradients(obj ObjectiveFunction, predictions, targets []float64, grad, hess []float32) error {
	n := len(targets)
	if len(predictions) != n {
		return errors.NewDimensionError("objective.ComputeGradients", n, len(predictions), 0)
	}
	if len(grad) != n || len(hess) != n {
		return errors.NewDimensionError("objective.ComputeGradients", n, min(len(grad), len(hess)), 0)
	}
	for i, y := range targets {
		grad[i] = float32(obj.CalculateGradient(predictions[i], y))
		hess[i] = float32(obj.CalculateHessian(predictions[i], y))
	}
	return nil
}
