package logging_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"usher/internal/config"
	"usher/internal/logging"
)

func TestNewConsoleWritesComponentPrefix(t *testing.T) {
	tempDir := t.TempDir()
	logPath := filepath.Join(tempDir, "console.log")

	logger, err := logging.New(logging.Options{
		Format: "console",
		Level:  "info",
		Paths:  []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	scoped := logging.WithComponent(logger, "assistant")
	scoped.Info("routed turn", logging.String("agent", "torrent"), logging.Int("step", 2))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	if !strings.Contains(line, "INFO assistant: routed turn") {
		t.Fatalf("expected component prefix in line, got %q", line)
	}
	if !strings.Contains(line, "agent=torrent") || !strings.Contains(line, "step=2") {
		t.Fatalf("expected key=value attrs, got %q", line)
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component attr should be folded into prefix, got %q", line)
	}
}

func TestNewConsoleQuotesValuesWithSpaces(t *testing.T) {
	tempDir := t.TempDir()
	logPath := filepath.Join(tempDir, "quotes.log")

	logger, err := logging.New(logging.Options{Format: "console", Paths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("lookup", logging.String("query", "matrix reloaded"))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), `query="matrix reloaded"`) {
		t.Fatalf("expected quoted value, got %q", content)
	}
}

func TestNewConsoleRespectsLevel(t *testing.T) {
	tempDir := t.TempDir()
	logPath := filepath.Join(tempDir, "level.log")

	logger, err := logging.New(logging.Options{
		Format: "console",
		Level:  "warn",
		Paths:  []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("suppressed")
	logger.Warn("kept")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Contains(string(content), "suppressed") {
		t.Fatalf("info line should be filtered, got %q", content)
	}
	if !strings.Contains(string(content), "kept") {
		t.Fatalf("warn line missing, got %q", content)
	}
}

func TestNewConsoleIncludesCallerForDebugLevel(t *testing.T) {
	tempDir := t.TempDir()
	logPath := filepath.Join(tempDir, "caller.log")

	logger, err := logging.New(logging.Options{
		Format: "console",
		Level:  "debug",
		Paths:  []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("message with caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), ".go:") {
		t.Fatalf("expected caller information at debug level, got %q", content)
	}
}

func TestNewJSONMapsKeys(t *testing.T) {
	tempDir := t.TempDir()
	logPath := filepath.Join(tempDir, "json.log")

	logger, err := logging.New(logging.Options{
		Format: "json",
		Level:  "info",
		Paths:  []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("hello", logging.String("component", "api"))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	for _, want := range []string{`"ts":`, `"level":"info"`, `"msg":"hello"`, `"component":"api"`} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %s in json line, got %q", want, line)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "logfmt"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestNewFromConfigCreatesLogDir(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")
	cfg.Logging.Format = "console"
	cfg.Logging.Level = "info"

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("boot")

	if _, err := os.Stat(filepath.Join(cfg.Paths.LogDir, "usher.log")); err != nil {
		t.Fatalf("expected usher.log to exist: %v", err)
	}
}

func TestNewNopDiscards(t *testing.T) {
	logger := logging.NewNop()
	logger.Error("dropped", logging.Error(os.ErrNotExist))
	scoped := logging.WithComponent(nil, "anything")
	scoped.Info("also dropped")
}
