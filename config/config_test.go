package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	// Clean up environment before tests
	cleanupEnv := func() {
		os.Unsetenv("DPPLINK_DEBUG")
		os.Unsetenv("DPPLINK_CENTRIC_BASE_URL")
		os.Unsetenv("DPPLINK_CENTRIC_USERNAME")
		os.Unsetenv("DPPLINK_CENTRIC_PASSWORD")
		os.Unsetenv("DPPLINK_CENTRIC_TOKEN")
		os.Unsetenv("DPPLINK_CENTRIC_DEFAULT_ENDPOINT")
		os.Unsetenv("DPPLINK_CENTRIC_TOKEN_FILE")
		os.Unsetenv("DPPLINK_CENTRIC_LOG_FILE")
		os.Unsetenv("DPPLINK_CENTRIC_ALIASES_FILE")
		os.Unsetenv("DPPLINK_CENTRIC_TIMEOUT")
		os.Unsetenv("DPPLINK_CENTRIC_REQUESTS_PER_SECOND")
		os.Unsetenv("DPPLINK_FLATTEN_SEPARATOR")
	}

	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		cleanupEnv()
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		// Check defaults
		if cfg.Centric.TokenFile != ".token" {
			t.Errorf("Centric.TokenFile = %s, want .token", cfg.Centric.TokenFile)
		}
		if cfg.Centric.LogFile != "centric_api.log" {
			t.Errorf("Centric.LogFile = %s, want centric_api.log", cfg.Centric.LogFile)
		}
		if cfg.Centric.AliasesFile != "aliases.toml" {
			t.Errorf("Centric.AliasesFile = %s, want aliases.toml", cfg.Centric.AliasesFile)
		}
		if cfg.Centric.Timeout != 30*time.Second {
			t.Errorf("Centric.Timeout = %s, want 30s", cfg.Centric.Timeout)
		}
		if cfg.Flatten.Separator != "." {
			t.Errorf("Flatten.Separator = %s, want .", cfg.Flatten.Separator)
		}
		if cfg.Debug {
			t.Errorf("Debug = true, want false")
		}
	})

	t.Run("credentials are optional at load time", func(t *testing.T) {
		cleanupEnv()
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Centric.Username != "" || cfg.Centric.Password != "" {
			t.Errorf("credentials = (%q, %q), want empty", cfg.Centric.Username, cfg.Centric.Password)
		}
	})

	t.Run("environment variables override defaults", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("DPPLINK_CENTRIC_BASE_URL", "https://plm.example.com")
		os.Setenv("DPPLINK_CENTRIC_USERNAME", "alice")
		os.Setenv("DPPLINK_CENTRIC_TIMEOUT", "10s")
		os.Setenv("DPPLINK_FLATTEN_SEPARATOR", "_")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Centric.BaseURL != "https://plm.example.com" {
			t.Errorf("Centric.BaseURL = %s, want https://plm.example.com", cfg.Centric.BaseURL)
		}
		if cfg.Centric.Username != "alice" {
			t.Errorf("Centric.Username = %s, want alice", cfg.Centric.Username)
		}
		if cfg.Centric.Timeout != 10*time.Second {
			t.Errorf("Centric.Timeout = %s, want 10s", cfg.Centric.Timeout)
		}
		if cfg.Flatten.Separator != "_" {
			t.Errorf("Flatten.Separator = %s, want _", cfg.Flatten.Separator)
		}
	})

	t.Run("rejects a non-positive timeout", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("DPPLINK_CENTRIC_TIMEOUT", "0s")
		defer cleanupEnv()

		if _, err := Load(); err == nil {
			t.Errorf("Load() error = nil, want validation failure")
		}
	})

	t.Run("rejects a non-positive request rate", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("DPPLINK_CENTRIC_REQUESTS_PER_SECOND", "-1")
		defer cleanupEnv()

		if _, err := Load(); err == nil {
			t.Errorf("Load() error = nil, want validation failure")
		}
	})
}

func TestLoadAliases(t *testing.T) {
	t.Run("reads the aliases table", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "aliases.toml")
		content := `[aliases]
materials = "https://plm.example.com/csi-requesthandler/api/v2/materials"
styles = "https://plm.example.com/csi-requesthandler/api/v2/styles"
broken = "not-a-url"
`
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write aliases file: %v", err)
		}

		aliases, err := LoadAliases(path)
		if err != nil {
			t.Fatalf("LoadAliases() error = %v, want nil", err)
		}

		if len(aliases) != 2 {
			t.Errorf("aliases = %v, want 2 entries", aliases)
		}
		if aliases["materials"] != "https://plm.example.com/csi-requesthandler/api/v2/materials" {
			t.Errorf("materials = %s", aliases["materials"])
		}
		if _, ok := aliases["broken"]; ok {
			t.Errorf("non-http alias should be dropped")
		}
	})

	t.Run("missing file yields an empty table", func(t *testing.T) {
		aliases, err := LoadAliases(filepath.Join(t.TempDir(), "missing.toml"))
		if err != nil {
			t.Fatalf("LoadAliases() error = %v, want nil", err)
		}
		if len(aliases) != 0 {
			t.Errorf("aliases = %v, want empty", aliases)
		}
	})

	t.Run("empty path yields an empty table", func(t *testing.T) {
		aliases, err := LoadAliases("")
		if err != nil {
			t.Fatalf("LoadAliases() error = %v, want nil", err)
		}
		if len(aliases) != 0 {
			t.Errorf("aliases = %v, want empty", aliases)
		}
	})

	t.Run("malformed TOML is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "aliases.toml")
		if err := os.WriteFile(path, []byte(`[aliases`), 0o644); err != nil {
			t.Fatalf("failed to write aliases file: %v", err)
		}

		if _, err := LoadAliases(path); err == nil {
			t.Errorf("LoadAliases() error = nil, want parse failure")
		}
	})
}
