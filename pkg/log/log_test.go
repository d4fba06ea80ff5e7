package log_test

import (
	"strings"
	"testing"

	"github.com/ezoic/probreg/pkg/log"
)

func TestTestLogger_CapturesMessages(t *testing.T) {
	logger, _ := log.NewTestLogger(log.LevelDebug)

	logger.Info("model fitted", log.ModelNameKey, "GaussianProcess", log.SamplesKey, 42)

	if !logger.ContainsMessage("model fitted") {
		t.Error("expected message to be captured")
	}
	if !logger.ContainsField(log.ModelNameKey, "GaussianProcess") {
		t.Error("expected model name field")
	}
}

func TestTestLogger_LevelFiltering(t *testing.T) {
	logger, buf := log.NewTestLogger(log.LevelWarn)

	logger.Debug("noise")
	logger.Info("more noise")
	logger.Warn("fallback derivation")

	if logger.ContainsMessage("noise") {
		t.Error("debug message should be filtered at warn level")
	}
	if !logger.ContainsMessage("fallback derivation") {
		t.Error("warn message should pass")
	}
	if strings.Count(buf.String(), "\n") != 1 {
		t.Errorf("expected exactly one log line, got %q", buf.String())
	}
}

func TestTestLogger_With(t *testing.T) {
	logger, _ := log.NewTestLogger(log.LevelDebug)

	child := logger.With(log.ComponentKey, "crossval")
	child.Info("folds built", log.FoldCountKey, 5)

	if !logger.ContainsField(log.ComponentKey, "crossval") {
		t.Error("expected inherited field on child logger output")
	}
}

func TestToLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  log.Level
	}{
		{"debug", log.LevelDebug},
		{"info", log.LevelInfo},
		{"warn", log.LevelWarn},
		{"error", log.LevelError},
	}
	for _, tt := range tests {
		if got := log.ToLogLevel(tt.input); got != tt.want {
			t.Errorf("ToLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestToLogLevel_PanicsOnUnknown(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for unknown level name")
		}
	}()
	log.ToLogLevel("verbose")
}

func TestZerologProvider_SetLevel(t *testing.T) {
	provider := log.NewZerologProvider(log.LevelInfo)
	logger := provider.GetLoggerWithName("test")
	if logger == nil {
		t.Fatal("expected a logger")
	}
	provider.SetLevel(log.LevelError)
}
