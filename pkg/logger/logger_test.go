package logger_test

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/DanteBelNan/sockets-server/pkg/logger"
)

func captureStdOut(t *testing.T, fn func()) string {
	t.Helper()

	orig := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = orig

	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return string(out)
}

func TestInitStdBackendTextOutput(t *testing.T) {
	out := captureStdOut(t, func() {
		logger.Init(logger.Config{
			Service: "demo",
			Version: "v0.0.1",
			Env:     logger.EnvDev,
			Backend: logger.BackendStd,
			Level:   slog.LevelDebug,
		})
		slog.Info("hello world")
	})

	if strings.Contains(out, "{") {
		t.Fatalf("expected text output for std backend, got JSON: %s", out)
	}
	if !strings.Contains(out, "hello world") {
		t.Fatalf("message missing: %s", out)
	}
	if !strings.Contains(out, "service=demo") || !strings.Contains(out, "env=dev") {
		t.Fatalf("common attrs missing: %s", out)
	}
}

func TestInitZapBackendJSONOutput(t *testing.T) {
	out := captureStdOut(t, func() {
		logger.Init(logger.Config{
			Service: "demo",
			Env:     logger.EnvProd,
			Backend: logger.BackendZap,
		})
		slog.Info("hello json")
	})

	if !strings.Contains(out, `"hello json"`) {
		t.Fatalf("message missing from JSON output: %s", out)
	}
	if !strings.Contains(out, `"service"`) {
		t.Fatalf("service attr missing: %s", out)
	}
}

func TestDetectEnv(t *testing.T) {
	cases := map[string]logger.Env{
		"prod":    logger.EnvProd,
		"staging": logger.EnvStage,
		"dev":     logger.EnvDev,
		"":        logger.EnvDev,
		"weird":   logger.EnvDev,
	}
	for raw, want := range cases {
		t.Setenv("APP_ENV", raw)
		if got := logger.DetectEnv(); got != want {
			t.Fatalf("APP_ENV=%q: expected %s, got %s", raw, want, got)
		}
	}
}

func TestLInitializesDefaults(t *testing.T) {
	if logger.L() == nil {
		t.Fatalf("L() must never return nil")
	}
}
