package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestRecover_WithPanic(t *testing.T) {
	build := func() (err error) {
		defer Recover(&err, "CARTBooster.Build")
		var nodes []int
		_ = nodes[3] // index out of range
		return nil
	}

	err := build()
	if err == nil {
		t.Fatal("Expected error from recovered panic, got nil")
	}

	var panicErr *PanicError
	if !errors.As(err, &panicErr) {
		t.Fatalf("Expected PanicError, got %T", err)
	}
	if panicErr.Operation != "CARTBooster.Build" {
		t.Errorf("Expected operation 'CARTBooster.Build', got '%s'", panicErr.Operation)
	}
	if panicErr.StackTrace == "" {
		t.Error("Expected non-empty stack trace")
	}
	if !strings.HasPrefix(panicErr.Error(), "panic in CARTBooster.Build: ") {
		t.Errorf("unexpected message %q", panicErr.Error())
	}
}

func TestRecover_WithoutPanic(t *testing.T) {
	fn := func() (err error) {
		defer Recover(&err, "noop")
		return nil
	}
	if err := fn(); err != nil {
		t.Fatalf("Expected no error when no panic occurs, got: %v", err)
	}
}

func TestRecover_WithExistingError(t *testing.T) {
	originalErr := fmt.Errorf("original error")

	fn := func() (err error) {
		defer Recover(&err, "TestOperation")
		err = originalErr
		panic("panic after error")
	}

	err := fn()
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !strings.Contains(err.Error(), "panic in TestOperation") {
		t.Errorf("Error message should contain panic info: %s", err.Error())
	}
	if !errors.Is(err, originalErr) {
		t.Error("Should be able to identify original error with errors.Is")
	}
}

func TestSafeExecute(t *testing.T) {
	if err := SafeExecute("ok", func() error { return nil }); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	want := fmt.Errorf("function error")
	if err := SafeExecute("fails", func() error { return want }); err != want {
		t.Fatalf("Expected original error, got: %v", err)
	}

	err := SafeExecute("panics", func() error { panic(42) })
	var panicErr *PanicError
	if !errors.As(err, &panicErr) {
		t.Fatalf("Expected PanicError, got %T", err)
	}
	if panicErr.PanicValue != 42 {
		t.Errorf("Expected panic value 42, got %v", panicErr.PanicValue)
	}
}

func BenchmarkRecover_NoPanic(b *testing.B) {
	for i := 0; i < b.N; i++ {
		func() (err error) {
			defer Recover(&err, "BenchmarkOp")
			return nil
		}()
	}
}
