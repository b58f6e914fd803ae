// Package cartboost grows gradient boosted regression trees over sparse data.
//
// The library is built around a single-tree engine, the CARTBooster, which
// takes per-row gradient and hessian statistics and grows one regression tree
// by exact greedy search over sorted feature columns. The gbm package drives
// it round by round to form an additive ensemble.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/cartboost/gbm"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    X := mat.NewDense(6, 1, []float64{0.1, 0.2, 0.3, 0.7, 0.8, 0.9})
//	    y := mat.NewVecDense(6, []float64{0, 0, 0, 1, 1, 1})
//
//	    model := gbm.New(gbm.WithMaxIter(50), gbm.WithMinChildWeight(0))
//	    if err := model.Fit(X, y); err != nil {
//	        log.Fatal(err)
//	    }
//	    pred, err := model.PredictMatrix(X)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(mat.Formatted(pred))
//	}
//
// Growing a single tree directly:
//
//	cfg := booster.DefaultConfig(rows.NumFeature())
//	t, err := booster.BuildTree(rows, grad, hess, cfg)
//
// # Packages
//
//   - tree: node arena with free-list reuse, prediction, gob encoding
//   - columnar: per-feature column image rebuilt for every task
//   - split: split candidates, exact greedy enumeration and selection
//   - booster: task scheduler, in-place row partition, bottom-up pruning
//   - regularizer: L2, thresholded L1, elastic net and unregularized costs
//   - objective: squared, logistic, exponential and hinge losses
//   - sparse: CSR rows, dense conversion, LIBSVM reader
//   - gbm: boosting loop, ensemble prediction and persistence
//   - metrics: MSE, RMSE, MAE, R²
//   - config: TOML configuration
//   - core/model: estimator state and model files
//   - core/parallel: range-parallel helpers
//   - pkg/errors, pkg/log: structured errors and zerolog-backed logging
//
// # Tree Semantics
//
// A row goes to the left child when its value of the split feature is greater
// than the split condition; features a row does not store read as 0. Leaf
// values already include the learning rate, so an ensemble prediction is the
// base score plus the sum of leaf values.
//
// # Command Line
//
//	cartboost train --config train.toml --data train.libsvm --model model.gob
//	cartboost predict --model model.gob --data test.libsvm
package cartboost
