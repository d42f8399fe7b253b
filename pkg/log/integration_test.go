package log

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"

	"github.com/YuminosukeSato/regtree/pkg/errors"
)

// TestLoggerInterface tests the TestLogger implementation
func TestLoggerInterface(t *testing.T) {
	testLogger, buffer := NewTestLogger(LevelDebug)

	testLogger.Debug("debug message", "key1", "value1", "number", 42)
	testLogger.Info("info message", OperationKey, OperationFit)
	testLogger.Warn("warning message", "warning_code", "TEST_WARNING")
	testLogger.Error("error message", fmt.Errorf("test error"), ErrorCodeKey, ErrorSingularMatrix)

	if buffer.Len() == 0 {
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
	if !testLogger.ContainsField("number", 42.0) { // JSON unmarshaling converts numbers to float64
		t.Error("Expected field number=42 not found")
	}
	if !testLogger.ContainsField(ErrAttrKey, "test error") {
		t.Error("Expected error field not found")
	}
}

// TestLoggerWith tests the With method for context-aware logging
func TestLoggerWith(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelDebug)

	contextLogger := testLogger.With(
		ModelNameKey, "DecisionTreeRegressor",
		ComponentKey, "tree",
	)
	contextLogger.Info("contextual message", DepthKey, 3)

	if !testLogger.ContainsField(ModelNameKey, "DecisionTreeRegressor") {
		t.Error("Model name context not found")
	}
	if !testLogger.ContainsField(ComponentKey, "tree") {
		t.Error("Component context not found")
	}
	if !testLogger.ContainsField(DepthKey, 3.0) {
		t.Error("Depth field not found")
	}
}

func TestLoggerEnabled(t *testing.T) {
	testLogger, buffer := NewTestLogger(LevelWarn)
	ctx := context.Background()

	if testLogger.Enabled(ctx, LevelDebug) {
		t.Error("Debug should be disabled at WARN level")
	}
	if !testLogger.Enabled(ctx, LevelError) {
		t.Error("Error should be enabled at WARN level")
	}

	testLogger.Info("dropped")
	if buffer.Len() != 0 {
		t.Errorf("Expected no output below level, got %q", buffer.String())
	}
}

func TestTestLoggerProvider(t *testing.T) {
	provider, _ := NewTestLoggerProvider(LevelInfo)
	prev := SetProvider(provider)
	defer SetProvider(prev)

	GetLoggerWithName("tree").Debug("hidden")
	SetLevel(LevelDebug)
	GetLoggerWithName("tree").Debug("visible")

	logger := provider.Logger()
	if logger.ContainsMessage("hidden") {
		t.Error("debug message logged before level change")
	}
	if !logger.ContainsMessage("visible") {
		t.Error("debug message missing after level change")
	}
	if !logger.ContainsField(ComponentKey, "tree") {
		t.Error("component field missing")
	}
}

func TestZerologLogger(t *testing.T) {
	var buf bytes.Buffer
	provider := NewZerologProvider(&buf, LevelInfo)
	logger := provider.GetLoggerWithName("tree").With(ModelNameKey, "DecisionTreeRegressor")

	logger.Debug("not emitted")
	logger.Info("Training completed", DepthKey, 2, LeavesKey, 3)
	logger.Error("Tree build failed", errors.NewValueError("Build", "boom"), OperationKey, OperationFit)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %s", len(lines), buf.String())
	}

	var info map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &info); err != nil {
		t.Fatal(err)
	}
	if info["message"] != "Training completed" || info["level"] != "info" {
		t.Errorf("unexpected entry: %v", info)
	}
	if info[ComponentKey] != "tree" || info[ModelNameKey] != "DecisionTreeRegressor" {
		t.Errorf("context fields missing: %v", info)
	}
	if info[DepthKey] != 2.0 {
		t.Errorf("depth = %v, want 2", info[DepthKey])
	}

	var errEntry map[string]interface{}
	if err := json.Unmarshal([]byte(lines[1]), &errEntry); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(fmt.Sprint(errEntry["error"]), "boom") {
		t.Errorf("error field missing: %v", errEntry)
	}

	// 後から取得済みのロガーにもレベル変更が反映される
	provider.SetLevel(LevelDebug)
	buf.Reset()
	logger.Debug("now emitted")
	if !strings.Contains(buf.String(), "now emitted") {
		t.Error("SetLevel should affect existing loggers")
	}
}

func TestInstallWarningHandler(t *testing.T) {
	provider, _ := NewTestLoggerProvider(LevelDebug)
	prev := SetProvider(provider)
	defer SetProvider(prev)

	InstallWarningHandler()
	defer errors.SetZerologWarnFunc(nil)

	errors.Warn(errors.NewSingularSplitWarning("tree.Build", 2))

	if !provider.Logger().ContainsField("level", "WARN") {
		t.Error("warning was not logged at WARN level")
	}
	if !provider.Logger().ContainsMessage("skipped 2 split candidates") {
		t.Error("warning message missing")
	}
}

func TestErrorDetailHandler(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		extra    []any
		wantCode string
		wantType string
	}{
		{
			name:     "singular leaf",
			err:      errors.NewModelError("tree.Build", "singular matrix", errors.ErrSingularMatrix),
			wantCode: ErrorSingularMatrix,
			wantType: "ModelError",
		},
		{
			name:     "forecast row too short",
			err:      errors.NewDimensionError("Tree.Forecast", 2, 1, 1),
			wantCode: ErrorDimensionMismatch,
			wantType: "DimensionError",
		},
		{
			name:     "predict before fit",
			err:      errors.NewNotFittedError("DecisionTreeRegressor", "Predict"),
			wantCode: ErrorNotFitted,
			wantType: "NotFittedError",
		},
		{
			name:     "caller supplied code wins",
			err:      errors.NewValidationError("min_split_size", "must be >= 1", 0),
			extra:    []any{ErrorCodeKey, "CUSTOM"},
			wantCode: "CUSTOM",
			wantType: "ValidationError",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(WithErrorDetails(slog.NewJSONHandler(&buf, nil)))
			logger.Error("fit failed", append([]any{ErrAttr(tt.err)}, tt.extra...)...)

			var entry map[string]interface{}
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatal(err)
			}
			if _, ok := entry[StacktraceAttrKey]; !ok {
				t.Errorf("expected %q attribute, got %v", StacktraceAttrKey, entry)
			}
			if entry[ErrorCodeKey] != tt.wantCode {
				t.Errorf("%s = %v, want %s", ErrorCodeKey, entry[ErrorCodeKey], tt.wantCode)
			}
			if entry[ErrorTypeKey] != tt.wantType {
				t.Errorf("%s = %v, want %s", ErrorTypeKey, entry[ErrorTypeKey], tt.wantType)
			}
		})
	}
}

func TestErrorDetailHandler_NoError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(WithErrorDetails(slog.NewJSONHandler(&buf, nil))).With(LeafStrategyKey, "model")
	logger.Info("Fit completed", DepthKey, 2)

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{StacktraceAttrKey, ErrorCodeKey, ErrorTypeKey} {
		if _, ok := entry[key]; ok {
			t.Errorf("unexpected %q attribute on a record without an error", key)
		}
	}
	if entry[LeafStrategyKey] != "model" {
		t.Errorf("expected attrs from With to survive, got %v", entry)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{"debug": LevelDebug, "info": LevelInfo, "warn": LevelWarn, "error": LevelError}
	for in, want := range tests {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestConcurrentLogging(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelInfo)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			testLogger.With("worker", id).Info("forecast chunk done", PredsKey, 10)
		}(i)
	}
	wg.Wait()

	entries, err := testLogger.GetLogEntries()
	if err != nil {
		t.Fatalf("log output is not valid JSON lines: %v", err)
	}
	if len(entries) != 8 {
		t.Errorf("expected 8 entries, got %d", len(entries))
	}
}
