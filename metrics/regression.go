// Package metrics は学習ループとCLIで使う評価指標を提供します。
package metrics

import (
	"math"

	"github.com/elliotchance/pie/v2"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/cartboost/pkg/errors"
)

func checkPair(op string, yTrue, yPred *mat.VecDense) (int, error) {
	if yTrue == nil || yPred == nil || yTrue.IsEmpty() {
		return 0, errors.NewValueError(op, "empty vector")
	}
	n := yTrue.Len()
	if yPred.IsEmpty() || yPred.Len() != n {
		got := 0
		if !yPred.IsEmpty() {
			got = yPred.Len()
		}
		return 0, errors.NewDimensionError(op, n, got, 0)
	}
	return n, nil
}

// MSE は平均二乗誤差を計算する
func MSE(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("MSE", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	var diff mat.VecDense
	diff.SubVec(yTrue, yPred)
	return mat.Dot(&diff, &diff) / float64(n), nil
}

// RMSE は平方根平均二乗誤差を計算する。ブースティングの収束判定に使われる。
func RMSE(yTrue, yPred *mat.VecDense) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE は平均絶対誤差を計算する
func MAE(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("MAE", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += math.Abs(yTrue.AtVec(i) - yPred.AtVec(i))
	}
	return sum / float64(n), nil
}

// R2Score は決定係数（R²）を計算する
func R2Score(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("R2Score", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	yMean := mat.Sum(yTrue) / float64(n)
	var tss, rss float64
	for i := 0; i < n; i++ {
		y := yTrue.AtVec(i)
		tss += (y - yMean) * (y - yMean)
		rss += (y - yPred.AtVec(i)) * (y - yPred.AtVec(i))
	}

	// すべてのyTrueが同じ値
	if tss == 0 {
		return 0, errors.Newf("R2Score: total sum of squares is zero (no variance in yTrue)")
	}
	return 1 - rss/tss, nil
}

// SignAccuracy は±1ラベルに対する符号一致率を計算する。予測値0は+1側として扱う。
func SignAccuracy(yTrue, yPred []float64) (float64, error) {
	if len(yTrue) == 0 {
		return 0, errors.NewValueError("SignAccuracy", "empty vector")
	}
	if len(yPred) != len(yTrue) {
		return 0, errors.NewDimensionError("SignAccuracy", len(yTrue), len(yPred), 0)
	}
	hits := make([]float64, len(yTrue))
	for i, y := range yTrue {
		if (yPred[i] >= 0) == (y > 0) {
			hits[i] = 1
		}
	}
	return pie.Sum(hits) / float64(len(hits)), nil
}

// RMSESlice はスライス入力に対するRMSEの簡易版。
func RMSESlice(yTrue, yPred []float64) (float64, error) {
	if len(yTrue) == 0 {
		return 0, errors.NewValueError("RMSE", "empty vector")
	}
	if len(yPred) != len(yTrue) {
		return 0, errors.NewDimensionError("RMSE", len(yTrue), len(yPred), 0)
	}
	return RMSE(mat.NewVecDense(len(yTrue), yTrue), mat.NewVecDense(len(yPred), yPred))
}
