package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadTNS_FromEnvironment(t *testing.T) {
	t.Setenv("TNS_API_KEY", "key123")
	t.Setenv("TNS_ID", "42")
	t.Setenv("TNS_USERNAME", "observer")

	cfg, err := LoadTNS()
	if err != nil {
		t.Fatalf("LoadTNS returned error: %v", err)
	}
	if cfg.APIKey != "key123" || cfg.TNSID != "42" || cfg.Username != "observer" {
		t.Errorf("unexpected credentials: %+v", cfg)
	}
	if !cfg.HasCredentials() {
		t.Error("HasCredentials should be true")
	}
}

func TestLoadTNS_KeyFileFallback(t *testing.T) {
	t.Setenv("TNS_API_KEY", "")
	t.Setenv("TNS_ID", "")
	t.Setenv("TNS_USERNAME", "")

	home := t.TempDir()
	t.Setenv("HOME", home)
	content := "filekey\n99\nfileuser\n"
	if err := os.WriteFile(filepath.Join(home, "tns_key.txt"), []byte(content), 0600); err != nil {
		t.Fatalf("failed to write key file: %v", err)
	}

	cfg, err := LoadTNS()
	if err != nil {
		t.Fatalf("LoadTNS returned error: %v", err)
	}
	if cfg.APIKey != "filekey" || cfg.TNSID != "99" || cfg.Username != "fileuser" {
		t.Errorf("unexpected credentials from key file: %+v", cfg)
	}
}

func TestLoadTNS_IncompleteKeyFile(t *testing.T) {
	t.Setenv("TNS_API_KEY", "")
	t.Setenv("TNS_ID", "")
	t.Setenv("TNS_USERNAME", "")

	home := t.TempDir()
	t.Setenv("HOME", home)
	if err := os.WriteFile(filepath.Join(home, "tns_key.txt"), []byte("only-key\n"), 0600); err != nil {
		t.Fatalf("failed to write key file: %v", err)
	}

	if _, err := LoadTNS(); err == nil {
		t.Error("expected error for incomplete key file")
	}
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	if _, err := Load(); err == nil {
		t.Error("expected error when DATABASE_URL is missing")
	}
}
