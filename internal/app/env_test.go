package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// unset clears key for the duration of the test.
func unset(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("unsetenv %s: %v", key, err)
	}
}

func TestLoadEnvFiles_LoadsKeyValues(t *testing.T) {
	unset(t, "DM_FOO")
	unset(t, "DM_BAR")
	unset(t, "DM_BAZ")

	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env.test")
	content := "\n# sample dotenv file\nDM_FOO=alpha\nexport DM_BAR=\"beta gamma\"\nDM_BAZ=delta # trailing\n"
	if err := os.WriteFile(envPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}
	if err := LoadEnvFiles(envPath, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadEnvFiles error: %v", err)
	}
	if got := os.Getenv("DM_FOO"); got != "alpha" {
		t.Fatalf("DM_FOO=%q, want alpha", got)
	}
	if got := os.Getenv("DM_BAR"); got != "beta gamma" {
		t.Fatalf("DM_BAR=%q, want %q", got, "beta gamma")
	}
	if got := os.Getenv("DM_BAZ"); got != "delta" {
		t.Fatalf("DM_BAZ=%q, want delta", got)
	}
}

// Later files override earlier ones; the real environment wins over both.
func TestLoadEnvFiles_OverrideOrder(t *testing.T) {
	unset(t, "DM_K")
	t.Setenv("DM_PRESET", "shell")
	dir := t.TempDir()
	a := filepath.Join(dir, ".env.a")
	b := filepath.Join(dir, ".env.b")
	if err := os.WriteFile(a, []byte("DM_K=first\nDM_PRESET=file\n"), 0o600); err != nil {
		t.Fatalf("write a: %v", err)
	}
	if err := os.WriteFile(b, []byte("DM_K=second\n"), 0o600); err != nil {
		t.Fatalf("write b: %v", err)
	}
	if err := LoadEnvFiles(a, b); err != nil {
		t.Fatalf("LoadEnvFiles error: %v", err)
	}
	if got := os.Getenv("DM_K"); got != "second" {
		t.Fatalf("override order failed: got %q, want second", got)
	}
	if got := os.Getenv("DM_PRESET"); got != "shell" {
		t.Fatalf("preset variable overwritten: %q", got)
	}
}

func TestApplyEnvToConfig_FillsUnset(t *testing.T) {
	t.Setenv("DATAMINER_MAX_PAGES", "4")
	t.Setenv("DATAMINER_DELAY", "250ms")
	t.Setenv("DATAMINER_NITTER_MIRRORS", "https://a.example/, https://b.example/")
	t.Setenv("DATAMINER_FORMAT", "csv")
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	unset(t, "LLM_API_KEY")

	cfg := Config{Format: "json"}
	ApplyEnvToConfig(&cfg)
	if cfg.MaxPages != 4 {
		t.Fatalf("MaxPages=%d, want 4", cfg.MaxPages)
	}
	if cfg.Delay != 250*time.Millisecond {
		t.Fatalf("Delay=%v", cfg.Delay)
	}
	if len(cfg.NitterMirrors) != 2 || cfg.NitterMirrors[1] != "https://b.example/" {
		t.Fatalf("NitterMirrors=%v", cfg.NitterMirrors)
	}
	if cfg.Format != "json" {
		t.Fatalf("explicit Format overwritten: %q", cfg.Format)
	}
	if cfg.LLMAPIKey != "sk-openai" {
		t.Fatalf("LLMAPIKey=%q, want OPENAI_API_KEY fallback", cfg.LLMAPIKey)
	}
}

func TestApplyEnvOverrides_Forces(t *testing.T) {
	t.Setenv("DATAMINER_FORMAT", "csv")
	t.Setenv("DATAMINER_NO_REPLIES", "false")
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("LLM_API_KEY", "sk-llm")
	t.Setenv("DATAMINER_LIMIT", "not-a-number")

	cfg := Config{Format: "json", NoReplies: true, Limit: 7}
	ApplyEnvOverrides(&cfg)
	if cfg.Format != "csv" {
		t.Fatalf("Format=%q, want csv", cfg.Format)
	}
	if cfg.NoReplies {
		t.Fatalf("NoReplies should be cleared by DATAMINER_NO_REPLIES=false")
	}
	if cfg.LLMAPIKey != "sk-llm" {
		t.Fatalf("LLM_API_KEY should win over OPENAI_API_KEY, got %q", cfg.LLMAPIKey)
	}
	if cfg.Limit != 7 {
		t.Fatalf("malformed number must be ignored, got %d", cfg.Limit)
	}
}
