package errors

import (
	"fmt"
	"runtime/debug"

	"github.com/rs/zerolog"
)

// PanicError はrecoverで捕捉したパニックを表すエラーです。
// 木構築中のインデックス範囲外アクセスなどを呼び出し側へエラーとして返すために使います。
type PanicError struct {
	// PanicValue はpanic()に渡された元の値
	PanicValue interface{}

	// StackTrace はパニック発生時のスタックトレース
	StackTrace string

	// Operation はパニックを捕捉した操作名
	Operation string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic in %s: %v", e.Operation, e.PanicValue)
}

// String はスタックトレースを含む詳細情報を返します。
func (e *PanicError) String() string {
	return fmt.Sprintf("panic in %s: %v\nStack trace:\n%s",
		e.Operation, e.PanicValue, e.StackTrace)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *PanicError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Operation).
		Interface("panic_value", e.PanicValue).
		Str("type", "PanicError")
}

// NewPanicError は操作名とパニック値から新しいPanicErrorを作成します。
func NewPanicError(operation string, panicValue interface{}) *PanicError {
	return &PanicError{
		PanicValue: panicValue,
		StackTrace: string(debug.Stack()),
		Operation:  operation,
	}
}

// Recover はdeferと組み合わせてパニックをエラーに変換します。
//
// 使用例:
//
//	func (b *CARTBooster) Build(...) (t *tree.Tree, err error) {
//	    defer errors.Recover(&err, "CARTBooster.Build")
//	    ...
//	}
//
// 既にエラーが設定されている場合は、元のエラーを%wで保持したままパニック情報を付与します。
func Recover(err *error, operation string) {
	if r := recover(); r != nil {
		if *err != nil {
			*err = fmt.Errorf("panic in %s: %v (original error: %w)", operation, r, *err)
			return
		}
		*err = NewPanicError(operation, r)
	}
}

// SafeExecute は関数を実行し、パニックが起きた場合はPanicErrorとして返します。
func SafeExecute(operation string, fn func() error) (err error) {
	defer Recover(&err, operation)
	return fn()
}
