package errors

import (
	"math"
)

// CheckNumericalStability は値にNaN・Infが含まれていないか検査します。
// 不安定な値が見つかった場合、最大10個までを含むNumericalInstabilityErrorを返します。
func CheckNumericalStability(operation string, values []float64, iteration int) error {
	var unstable []float64
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			unstable = append(unstable, v)
			if len(unstable) >= 10 {
				break
			}
		}
	}
	if len(unstable) > 0 {
		return NewNumericalInstabilityError(operation, unstable, iteration)
	}
	return nil
}

// CheckFloat32 はfloat32で保持された勾配・ヘッセ値を検査します。
func CheckFloat32(operation string, values []float32, iteration int) error {
	var unstable []float64
	for _, v := range values {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			unstable = append(unstable, f)
			if len(unstable) >= 10 {
				break
			}
		}
	}
	if len(unstable) > 0 {
		return NewNumericalInstabilityError(operation, unstable, iteration)
	}
	return nil
}

// CheckScalar は単一のスカラー値を検査します。
func CheckScalar(operation string, value float64, iteration int) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return NewNumericalInstabilityError(operation, []float64{value}, iteration)
	}
	return nil
}

// SafeDivide はゼロ除算を避けて除算します。分母が0の場合は0を返します。
func SafeDivide(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

// StabilizeExp はオーバーフローを避けるために入力をクリップしてexpを計算します。
func StabilizeExp(value float64) float64 {
	const maxExp = 700.0
	if value > maxExp {
		return math.Exp(maxExp)
	}
	if value < -maxExp {
		return 0
	}
	return math.Exp(value)
}
