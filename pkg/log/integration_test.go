package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	cberrors "github.com/YuminosukeSato/cartboost/pkg/errors"
)

// TestLoggerInterface tests the TestLogger implementation of Logger
func TestLoggerInterface(t *testing.T) {
	testLogger, buffer := NewTestLogger(LevelDebug)

	testLogger.Debug("debug message", "key1", "value1", "number", 42)
	testLogger.Info("info message", OperationKey, OperationBuild)
	testLogger.Warn("warning message", "warning_code", "TEST_WARNING")
	testLogger.Error("error message", fmt.Errorf("test error"), "error_code", "TEST_ERROR")

	if buffer.String() == "" {
		t.Fatal("Expected log output, got empty string")
	}
	for _, msg := range []string{"debug message", "info message", "warning message", "error message"} {
		if !testLogger.ContainsMessage(msg) {
			t.Errorf("%q not found in output", msg)
		}
	}
	if !testLogger.ContainsField("key1", "value1") {
		t.Error("Expected field key1=value1 not found")
	}
	if !testLogger.ContainsField("number", 42.0) { // JSON numbers decode to float64
		t.Error("Expected field number=42 not found")
	}
	if !testLogger.ContainsField(ErrAttrKey, "test error") {
		t.Error("Leading error was not stored under the error key")
	}
	if !testLogger.ContainsField("error_code", "TEST_ERROR") {
		t.Error("Fields following a leading error were lost")
	}
}

func TestLoggerWith(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelDebug)

	contextLogger := testLogger.With(
		ModelNameKey, "GBM",
		ComponentKey, "booster",
	)
	contextLogger.Info("contextual message", OperationKey, OperationFit)

	if !testLogger.ContainsField(ModelNameKey, "GBM") {
		t.Error("Model name context not found")
	}
	if !testLogger.ContainsField(ComponentKey, "booster") {
		t.Error("Component context not found")
	}
	if !testLogger.ContainsField(OperationKey, OperationFit) {
		t.Error("Operation field not found")
	}
}

func TestLogLevels(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelWarn)

	testLogger.Debug("debug")
	testLogger.Info("info")
	testLogger.Warn("warn")
	testLogger.Error("error")

	entries, err := testLogger.GetLogEntries()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries at warn level, got %d", len(entries))
	}
	if testLogger.Enabled(context.Background(), LevelInfo) {
		t.Error("Info should be disabled at warn level")
	}
	if !testLogger.Enabled(context.Background(), LevelError) {
		t.Error("Error should be enabled at warn level")
	}

	testLogger.Clear()
	if entries, _ := testLogger.GetLogEntries(); len(entries) != 0 {
		t.Errorf("Expected no entries after Clear, got %d", len(entries))
	}
}

func TestLevelString(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestToLogLevel(t *testing.T) {
	for name, want := range map[string]Level{
		"debug": LevelDebug,
		"INFO":  LevelInfo,
		"warn":  LevelWarn,
		"error": LevelError,
	} {
		got, err := ToLogLevel(name)
		if err != nil {
			t.Fatalf("ToLogLevel(%q) error: %v", name, err)
		}
		if got != want {
			t.Errorf("ToLogLevel(%q) = %v, want %v", name, got, want)
		}
	}
	if _, err := ToLogLevel("verbose"); err == nil {
		t.Error("Expected error for unknown level")
	}
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]interface{}
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid JSON line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestZerologProvider(t *testing.T) {
	var buf bytes.Buffer
	p := NewZerologProvider(&buf, LevelInfo)

	logger := p.GetLoggerWithName("booster").With(ModelNameKey, "GBM")
	logger.Debug("dropped")
	logger.Info("Tree built", NodesKey, 7, LeavesKey, 4)
	logger.Error("Build failed", cberrors.NewValueError("test", "boom"), TasksKey, 3)

	lines := decodeLines(t, &buf)
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d: %s", len(lines), buf.String())
	}
	first := lines[0]
	if first["message"] != "Tree built" || first["level"] != "info" {
		t.Errorf("unexpected first line: %v", first)
	}
	if first[ComponentAttrKey] != "booster" || first[ModelNameKey] != "GBM" {
		t.Errorf("context fields missing: %v", first)
	}
	if first[NodesKey] != 7.0 || first[LeavesKey] != 4.0 {
		t.Errorf("fields missing: %v", first)
	}
	second := lines[1]
	if !strings.Contains(fmt.Sprint(second[ErrAttrKey]), "boom") {
		t.Errorf("error not logged: %v", second)
	}
	if second[TasksKey] != 3.0 {
		t.Errorf("fields after error missing: %v", second)
	}

	if logger.Enabled(context.Background(), LevelDebug) {
		t.Error("Debug should be disabled at info level")
	}
	p.SetLevel(LevelDebug)
	if !p.GetLogger().Enabled(context.Background(), LevelDebug) {
		t.Error("Debug should be enabled after SetLevel")
	}
}

func TestSetupLoggerRoutesWarnings(t *testing.T) {
	var buf bytes.Buffer
	if err := SetupLogger("info", &buf); err != nil {
		t.Fatal(err)
	}
	defer func() {
		_ = SetupLogger("info", &bytes.Buffer{})
	}()

	cberrors.Warn(cberrors.NewConvergenceWarning("GBM", 100, ""))

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("Expected 1 warning line, got %d", len(lines))
	}
	if lines[0]["level"] != "warn" || lines[0][ComponentAttrKey] != "warnings" {
		t.Errorf("unexpected warning line: %v", lines[0])
	}
	if !strings.Contains(fmt.Sprint(lines[0]["message"]), "failed to converge") {
		t.Errorf("warning message missing: %v", lines[0])
	}

	if err := SetupLogger("loud", &buf); err == nil {
		t.Error("Expected error for invalid level")
	}
}

func TestTestLoggerProvider(t *testing.T) {
	p, _ := NewTestLoggerProvider(LevelInfo)
	p.GetLoggerWithName("gbm").Info("round", IterationKey, 1)
	logger := p.GetLogger().(*TestLogger)
	if !logger.ContainsField(ComponentAttrKey, "gbm") {
		t.Error("component name not attached")
	}
	p.SetLevel(LevelError)
	p.GetLogger().Info("hidden")
	if logger.ContainsMessage("hidden") {
		t.Error("info should be dropped after SetLevel(LevelError)")
	}
}
