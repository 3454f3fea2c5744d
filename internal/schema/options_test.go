package schema

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadOptions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jsonschema.yaml")
	content := `draft: "7"
id: https://example.com/s
title: false
denyAdditionalProperties: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	opts, err := LoadOptions(path)
	if err != nil {
		t.Fatalf("LoadOptions failed: %v", err)
	}
	if opts.Draft != "7" {
		t.Errorf("Draft = %q, want 7", opts.Draft)
	}
	if opts.ID != "https://example.com/s" {
		t.Errorf("ID = %q", opts.ID)
	}
	if opts.Title {
		t.Errorf("Title should be overridden to false")
	}
	if !opts.DenyAdditionalProperties {
		t.Errorf("DenyAdditionalProperties should be true")
	}
	// Unset keys keep their defaults.
	if !opts.Descriptions || !opts.NullableOptions {
		t.Errorf("defaults lost: %+v", opts)
	}
}

func TestLoadOptionsErrors(t *testing.T) {
	if _, err := LoadOptions(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("LoadOptions on a missing file should fail")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("draft: [broken"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadOptions(path); err == nil {
		t.Errorf("LoadOptions on invalid yaml should fail")
	}
}
