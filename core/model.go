// Package core はアンサンブルモデルが満たす共通インターフェースを定義する
package core

import "gonum.org/v1/gonum/mat"

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はモデルを訓練データで学習させる。yは1列の行列。
	Fit(X, y mat.Matrix) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は入力データに対する予測を行う
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Scorer は決定係数などのスコアを計算できるモデル
type Scorer interface {
	Score(X, y mat.Matrix) (float64, error)
}

// Model は教師あり学習モデルの基本インターフェース
type Model interface {
	Fitter
	Predictor
}

// Regressor は回帰モデル
type Regressor interface {
	Model
	Scorer
}

// Persistable はファイルへ保存・復元できるモデル
type Persistable interface {
	Save(filename string) error
	Load(filename string) error
}
