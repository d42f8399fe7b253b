// Package model defines the estimator contracts shared by the models in this module.
package model

import "gonum.org/v1/gonum/mat"

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はモデルを訓練データで学習させる
	Fit(X, y mat.Matrix) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は入力データに対する予測を行う
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Scorer is implemented by models that report the coefficient of determination R².
type Scorer interface {
	Score(X, y mat.Matrix) (float64, error)
}

// Regressor combines the interfaces every regression model implements.
type Regressor interface {
	Fitter
	Predictor
	Scorer
	IsFitted() bool
}

// ParameterGetter exposes hyperparameters using scikit-learn style keys.
type ParameterGetter interface {
	GetParams() map[string]interface{}
}

// ParameterSetter updates hyperparameters from scikit-learn style keys.
type ParameterSetter interface {
	SetParams(params map[string]interface{}) error
}
