package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/scigolabs/nbtext/pkg/errors"
)

func TestErrFmtHandlerAddsStacktrace(t *testing.T) {
	buf := &bytes.Buffer{}
	handler := WrapByErrFmtHandler(slog.NewJSONHandler(buf, nil))
	logger := slog.New(handler)

	err := errors.NewNotFittedError("MultinomialNB", "Predict")
	logger.LogAttrs(context.Background(), slog.LevelError, "predict failed", ErrAttr(err))

	var record map[string]any
	if jerr := json.Unmarshal(buf.Bytes(), &record); jerr != nil {
		t.Fatalf("Log output is not JSON: %v", jerr)
	}
	if _, ok := record[StacktraceAttrKey]; !ok {
		t.Error("Expected stacktrace attribute on error record")
	}
}

func TestToLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		if got := ToLogLevel(tt.in); got != tt.want {
			t.Errorf("ToLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInstallWarnSink(t *testing.T) {
	buf := &bytes.Buffer{}
	InstallWarnSink(buf)
	defer errors.SetZerologWarnFunc(nil)

	errors.Warn(errors.NewUndefinedMetricWarning("AUC", "only one class present", 0.5))

	var record map[string]any
	if jerr := json.Unmarshal(buf.Bytes(), &record); jerr != nil {
		t.Fatalf("Warn output is not JSON: %v", jerr)
	}
	if record["metric"] != "AUC" {
		t.Errorf("Expected structured metric field, got %v", record)
	}
	if record["type"] != "UndefinedMetricWarning" {
		t.Errorf("Expected warning type field, got %v", record)
	}
}
