package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"usher/internal/config"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
	libraryDir string
}

// setupCLITestEnv writes a config file at the default location under a temp
// HOME and clears every credential fallback so no command can pick up real
// keys from the host environment.
func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENSUBTITLES_API_KEY", "")
	t.Setenv("QBITTORRENT_PASSWORD", "")

	libraryDir := filepath.Join(base, "library")
	if err := os.MkdirAll(libraryDir, 0o755); err != nil {
		t.Fatalf("mkdir library: %v", err)
	}

	configPath := filepath.Join(homeDir, ".config", "usher", "config.toml")
	writeTestConfig(t, configPath, base, libraryDir)

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("load test config: %v", err)
	}

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		baseDir:    base,
		libraryDir: libraryDir,
	}
}

// writeTestConfig points every path at the test's temp tree, switches the
// qBittorrent integration off, and aims the LLM endpoint at a closed local
// port so nothing in a test can call out.
func writeTestConfig(t *testing.T, path, base, libraryDir string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	content := fmt.Sprintf(`[paths]
state_dir = %q
log_dir = %q
subtitle_dir = %q
api_bind = "127.0.0.1:0"

[library]
roots = [%q]
search_limit = 10

[llm]
api_key = "test"
base_url = "http://127.0.0.1:1"

[torrent]
url = ""

[logging]
format = "console"
level = "error"
`,
		filepath.Join(base, "state"),
		filepath.Join(base, "logs"),
		filepath.Join(base, "subtitles"),
		libraryDir,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()

	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
