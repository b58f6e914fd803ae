// Package gbm implements gradient boosting over the trees grown by package booster.
//
// Each round computes per-row gradients and hessians of the objective at the
// current predictions, grows one tree with a fresh CARTBooster and adds its
// (already shrunk) leaf values to the cached predictions. Training stops when
// the training RMSE improves by no more than Tolerance or after MaxIter rounds.
package gbm

import (
	"context"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/cartboost/booster"
	"github.com/YuminosukeSato/cartboost/core"
	"github.com/YuminosukeSato/cartboost/core/model"
	"github.com/YuminosukeSato/cartboost/core/parallel"
	"github.com/YuminosukeSato/cartboost/metrics"
	"github.com/YuminosukeSato/cartboost/objective"
	"github.com/YuminosukeSato/cartboost/pkg/errors"
	"github.com/YuminosukeSato/cartboost/pkg/log"
	"github.com/YuminosukeSato/cartboost/regularizer"
	"github.com/YuminosukeSato/cartboost/sparse"
	"github.com/YuminosukeSato/cartboost/tree"
)

// ModelKind is the kind recorded in saved model files.
const ModelKind = "GBM"

// Defaults of the boosting loop.
const (
	DefaultMaxIter    = 100
	DefaultTolerance  = 1e-4
	DefaultValidEvery = 5
)

// rows below this count are predicted on the calling goroutine
const parallelThreshold = 512

var (
	_ core.Regressor   = (*GBM)(nil)
	_ core.Persistable = (*GBM)(nil)
)

// featureCounter is implemented by row sources that know their feature count,
// such as *sparse.Matrix.
type featureCounter interface {
	NumFeature() int
}

// GBM is a gradient boosted ensemble of regression trees.
//
// Exported fields are the persisted state. Hyperparameters are normally set
// through Options.
type GBM struct {
	model.BaseEstimator

	MaxIter        int
	Tolerance      float64
	LearningRate   float64
	MaxDepth       int
	MinChildWeight float64
	MinSplitLoss   float64
	Epsilon        float64
	Regularizer    string
	Lambda         float64
	Objective      string
	Traversal      booster.Traversal
	ValidEvery     int

	Clamp    bool
	MinValue float64
	MaxValue float64

	NumFeature   int
	BaseScore    float64
	Trees        []*tree.Tree
	TrainHistory []float64
	ValidHistory []float64

	logger log.Logger
}

// New returns an unfitted GBM with default hyperparameters.
func New(opts ...Option) *GBM {
	g := &GBM{
		MaxIter:        DefaultMaxIter,
		Tolerance:      DefaultTolerance,
		LearningRate:   booster.DefaultLearningRate,
		MaxDepth:       booster.DefaultMaxDepth,
		MinChildWeight: booster.DefaultMinChildWeight,
		MinSplitLoss:   booster.DefaultMinSplitLoss,
		Epsilon:        booster.DefaultEpsilon,
		Regularizer:    regularizer.NameL2,
		Lambda:         booster.DefaultLambda,
		Objective:      objective.NameSquared,
		Traversal:      booster.BreadthFirst,
		ValidEvery:     DefaultValidEvery,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = log.GetLoggerWithName("gbm")
	}
	return g
}

// BoosterConfig returns the tree parameters used for numFeature features.
func (g *GBM) BoosterConfig(numFeature int) (booster.Config, error) {
	reg, err := regularizer.ByName(g.Regularizer, g.Lambda)
	if err != nil {
		return booster.Config{}, err
	}
	cfg := booster.Config{
		MaxDepth:       g.MaxDepth,
		MinChildWeight: g.MinChildWeight,
		MinSplitLoss:   g.MinSplitLoss,
		Epsilon:        g.Epsilon,
		LearningRate:   g.LearningRate,
		NumFeature:     numFeature,
		Regularizer:    reg,
	}
	return cfg, cfg.Validate()
}

func (g *GBM) validate() error {
	switch {
	case g.MaxIter <= 0:
		return errors.NewConfigurationError("MaxIter", "must be positive", g.MaxIter)
	case math.IsNaN(g.Tolerance) || g.Tolerance < 0:
		return errors.NewConfigurationError("Tolerance", "must be non-negative", g.Tolerance)
	case g.ValidEvery <= 0:
		return errors.NewConfigurationError("ValidEvery", "must be positive", g.ValidEvery)
	case g.Clamp && !(g.MinValue <= g.MaxValue):
		return errors.NewConfigurationError("MinValue", "must not exceed MaxValue", g.MinValue)
	}
	return nil
}

// Fit trains on a dense feature matrix. Zero entries are treated as absent.
func (g *GBM) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "GBM.Fit")

	rows, _ := X.Dims()
	yRows, yCols := y.Dims()
	if rows != yRows {
		return errors.NewDimensionError("GBM.Fit", rows, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewDimensionError("GBM.Fit", 1, yCols, 1)
	}
	data, err := sparse.FromDense(X)
	if err != nil {
		return errors.Wrap(err, "GBM.Fit")
	}
	return g.fit(data, mat.Col(nil, 0, y), nil, nil)
}

// FitRows trains on an arbitrary row source, such as a *sparse.Matrix read
// from LIBSVM text.
func (g *GBM) FitRows(rows booster.RowProvider, y []float64) (err error) {
	defer errors.Recover(&err, "GBM.FitRows")
	return g.fit(rows, y, nil, nil)
}

// FitWithValidation trains on rows and evaluates the validation rows every
// ValidEvery rounds, recording the RMSE in ValidHistory.
func (g *GBM) FitWithValidation(rows booster.RowProvider, y []float64, valid booster.RowProvider, validY []float64) (err error) {
	defer errors.Recover(&err, "GBM.FitWithValidation")
	if valid == nil {
		return errors.NewValueError("GBM.FitWithValidation", "validation rows must not be nil")
	}
	if valid.NumRows() != len(validY) {
		return errors.NewDimensionError("GBM.FitWithValidation", valid.NumRows(), len(validY), 0)
	}
	return g.fit(rows, y, valid, validY)
}

func (g *GBM) fit(rows booster.RowProvider, y []float64, valid booster.RowProvider, validY []float64) error {
	start := time.Now()
	if err := g.validate(); err != nil {
		return err
	}
	n := rows.NumRows()
	if n == 0 {
		return errors.Wrap(errors.ErrEmptyData, "GBM.Fit")
	}
	if len(y) != n {
		return errors.NewDimensionError("GBM.Fit", n, len(y), 0)
	}
	if err := errors.CheckNumericalStability("labels", y, 0); err != nil {
		return err
	}
	obj, err := objective.CreateObjectiveFunction(g.Objective)
	if err != nil {
		return err
	}
	if err := obj.ValidateTargets(y); err != nil {
		return err
	}
	numFeature := countFeatures(rows)
	if valid != nil {
		numFeature = max(numFeature, countFeatures(valid))
	}
	cfg, err := g.BoosterConfig(numFeature)
	if err != nil {
		return err
	}

	g.Reset()
	g.NumFeature = numFeature
	g.BaseScore = obj.GetInitScore(y)
	g.Trees = nil
	g.TrainHistory = nil
	g.ValidHistory = nil

	logger := g.logger.With(log.ModelNameKey, ModelKind)
	logger.Info("Training started",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, n,
		log.FeaturesKey, numFeature,
		log.LearningRateKey, g.LearningRate,
		log.MaxDepthKey, g.MaxDepth,
		log.RegularizationKey, regularizer.Describe(cfg.Regularizer),
	)

	margin := make([]float64, n)
	for i := range margin {
		margin[i] = g.BaseScore
	}
	preds := make([]float64, n)
	grad := make([]float32, n)
	hess := make([]float32, n)
	var validMargin, validPreds []float64
	if valid != nil {
		validMargin = make([]float64, valid.NumRows())
		for i := range validMargin {
			validMargin[i] = g.BaseScore
		}
		validPreds = make([]float64, len(validMargin))
	}

	g.output(margin, preds)
	prevErr := math.Inf(1)
	currErr, err := metrics.RMSESlice(y, preds)
	if err != nil {
		return err
	}
	if err := errors.CheckScalar("training loss", currErr, 0); err != nil {
		return err
	}

	round := 0
	for prevErr-currErr > g.Tolerance && round < g.MaxIter {
		if err := objective.ComputeGradients(obj, preds, y, grad, hess); err != nil {
			return err
		}
		b, err := booster.New(cfg,
			booster.WithLogger(logger),
			booster.WithTraversal(g.Traversal))
		if err != nil {
			return err
		}
		t, err := b.Build(rows, grad, hess)
		if err != nil {
			return errors.Wrapf(err, "round %d", round+1)
		}
		g.Trees = append(g.Trees, t)
		if err := addTree(t, rows, margin); err != nil {
			return err
		}
		round++

		g.output(margin, preds)
		prevErr = currErr
		if currErr, err = metrics.RMSESlice(y, preds); err != nil {
			return err
		}
		if err := errors.CheckScalar("training loss", currErr, round); err != nil {
			return err
		}
		g.TrainHistory = append(g.TrainHistory, currErr)

		if valid == nil {
			logger.Info("Boosting round", log.IterationKey, round, log.LossKey, currErr)
			continue
		}
		// validation margins are kept current every round; RMSE is only
		// computed on the configured cadence
		if err := addTree(t, valid, validMargin); err != nil {
			return err
		}
		if round%g.ValidEvery != 0 {
			logger.Info("Boosting round", log.IterationKey, round, log.LossKey, currErr)
			continue
		}
		g.output(validMargin, validPreds)
		validErr, err := metrics.RMSESlice(validY, validPreds)
		if err != nil {
			return err
		}
		g.ValidHistory = append(g.ValidHistory, validErr)
		logger.Info("Boosting round",
			log.IterationKey, round,
			log.LossKey, currErr,
			log.ValidLossKey, validErr)
	}

	if round == g.MaxIter && prevErr-currErr > g.Tolerance {
		errors.Warn(errors.NewConvergenceWarning(ModelKind, round,
			"training RMSE was still improving; consider increasing MaxIter"))
	}

	g.SetFitted()
	if logger.Enabled(context.Background(), log.LevelInfo) {
		logger.Info("Training finished",
			log.OperationKey, log.OperationFit,
			log.IterationKey, round,
			log.LossKey, currErr,
			log.DurationMsKey, time.Since(start).Milliseconds())
	}
	return nil
}

// addTree adds the predictions of t to margin for every row.
func addTree(t *tree.Tree, rows booster.RowProvider, margin []float64) error {
	return parallel.ParallelizeErr(len(margin), parallelThreshold, func(start, end int) error {
		for i := start; i < end; i++ {
			margin[i] += t.Predict(rows.Row(i))
		}
		return nil
	})
}

// output turns raw ensemble sums into predictions, applying the clamp.
func (g *GBM) output(margin, dst []float64) {
	for i, m := range margin {
		dst[i] = g.clamp(m)
	}
}

func (g *GBM) clamp(v float64) float64 {
	if !g.Clamp {
		return v
	}
	return math.Max(g.MinValue, math.Min(v, g.MaxValue))
}

func (g *GBM) raw(fv tree.FeatureVector) float64 {
	sum := g.BaseScore
	for _, t := range g.Trees {
		sum += t.Predict(fv)
	}
	return sum
}

// PredictRow returns the prediction for one row.
func (g *GBM) PredictRow(fv tree.FeatureVector) (float64, error) {
	if err := g.CheckFitted(ModelKind, "PredictRow"); err != nil {
		return 0, err
	}
	return g.clamp(g.raw(fv)), nil
}

// PredictBatch predicts every row of rows, in parallel for large inputs.
func (g *GBM) PredictBatch(rows booster.RowProvider) (out []float64, err error) {
	defer errors.Recover(&err, "GBM.PredictBatch")
	if err := g.CheckFitted(ModelKind, "PredictBatch"); err != nil {
		return nil, err
	}
	out = make([]float64, rows.NumRows())
	err = parallel.ParallelizeErr(len(out), parallelThreshold, func(start, end int) error {
		for i := start; i < end; i++ {
			out[i] = g.clamp(g.raw(rows.Row(i)))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Predict predicts every row of the dense matrix X. The result is a column vector.
func (g *GBM) Predict(X mat.Matrix) (mat.Matrix, error) {
	return g.PredictMatrix(X)
}

// PredictMatrix is Predict with a concrete result type.
func (g *GBM) PredictMatrix(X mat.Matrix) (*mat.VecDense, error) {
	if err := g.CheckFitted(ModelKind, "Predict"); err != nil {
		return nil, err
	}
	rows, cols := X.Dims()
	if cols != g.NumFeature {
		return nil, errors.NewDimensionError("GBM.Predict", g.NumFeature, cols, 1)
	}
	out := make([]float64, rows)
	err := parallel.ParallelizeErr(rows, parallelThreshold, func(start, end int) error {
		buf := make(tree.DenseVector, cols)
		for i := start; i < end; i++ {
			for j := range buf {
				buf[j] = float32(X.At(i, j))
			}
			out[i] = g.clamp(g.raw(buf))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return mat.NewVecDense(rows, out), nil
}

// Score returns the coefficient of determination R² of the predictions on X.
func (g *GBM) Score(X, y mat.Matrix) (float64, error) {
	pred, err := g.PredictMatrix(X)
	if err != nil {
		return 0, err
	}
	rows, _ := y.Dims()
	return metrics.R2Score(mat.NewVecDense(rows, mat.Col(nil, 0, y)), pred)
}

// NumTrees returns the number of trees in the ensemble.
func (g *GBM) NumTrees() int {
	return len(g.Trees)
}

// History returns the training RMSE after each round.
func (g *GBM) History() []float64 {
	return append([]float64(nil), g.TrainHistory...)
}

// ValidationHistory returns the validation RMSE at each evaluated round.
func (g *GBM) ValidationHistory() []float64 {
	return append([]float64(nil), g.ValidHistory...)
}

// Save writes the fitted ensemble to filename.
func (g *GBM) Save(filename string) error {
	if err := g.CheckFitted(ModelKind, "Save"); err != nil {
		return err
	}
	return model.SaveModel(ModelKind, g, filename)
}

// Load replaces g with the ensemble stored in filename. The logger is kept.
func (g *GBM) Load(filename string) error {
	var loaded GBM
	if err := model.LoadModel(ModelKind, &loaded, filename); err != nil {
		return err
	}
	loaded.logger = g.logger
	if loaded.logger == nil {
		loaded.logger = log.GetLoggerWithName("gbm")
	}
	*g = loaded
	return nil
}

func countFeatures(rows booster.RowProvider) int {
	if fc, ok := rows.(featureCounter); ok {
		return max(fc.NumFeature(), 1)
	}
	n := 0
	for i := 0; i < rows.NumRows(); i++ {
		for _, f := range rows.Row(i).Features {
			n = max(n, int(f)+1)
		}
	}
	return max(n, 1)
}
