package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[log]
verbosity = 1
file = "run.log"

[specialization]
enabled = false

[profiler]
hot-threshold = 10

[array]
dense-prealloc = 64

[store]
path = "profiles.db"
`)

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := &Config{
		Log:            Log{Verbosity: 1, File: "run.log"},
		Specialization: Specialization{Enabled: false},
		Profiler:       Profiler{HotThreshold: 10},
		Array:          Array{DensePrealloc: 64},
		Store:          Store{Path: "profiles.db"},
	}
	if diff := cmp.Diff(want, c, cmpopts.IgnoreFields(Config{}, "Dir")); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}

	abs, _ := filepath.Abs(dir)
	if c.StorePath() != filepath.Join(abs, "profiles.db") {
		t.Errorf("store path = %q", c.StorePath())
	}

	opts := c.RuntimeOptions()
	if !opts.DisableSpecialization || opts.HotThreshold != 10 {
		t.Errorf("unexpected runtime options %+v", opts)
	}
	if opts.Context.DensePrealloc() != 64 {
		t.Errorf("dense prealloc = %d, want 64", opts.Context.DensePrealloc())
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "[log]\nverbosity = -1\n")

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !c.Specialization.Enabled {
		t.Error("specialization should default to enabled")
	}
	if c.Profiler.HotThreshold != 100 {
		t.Errorf("hot-threshold = %d, want 100", c.Profiler.HotThreshold)
	}
	if c.Array.DensePrealloc != 1024 {
		t.Errorf("dense-prealloc = %d, want 1024", c.Array.DensePrealloc)
	}
	if c.StorePath() != "" {
		t.Errorf("store should be disabled, got %q", c.StorePath())
	}
}

func TestParseRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errPart string
	}{
		{"zero threshold", "[profiler]\nhot-threshold = 0\n", "invalid config"},
		{"negative prealloc", "[array]\ndense-prealloc = -5\n", "invalid config"},
		{"verbosity too high", "[log]\nverbosity = 9\n", "invalid config"},
		{"unknown key", "[array]\nthreshold = 10\n", "unknown key"},
		{"bad toml", "[array\n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.errPart) {
				t.Errorf("error %q does not mention %q", err, tt.errPart)
			}
		})
	}
}

func TestValidateDefault(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestFindAndLoad(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "[profiler]\nhot-threshold = 7\n")

	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	c, err := FindAndLoad(nested)
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if c.Profiler.HotThreshold != 7 {
		t.Errorf("hot-threshold = %d, want 7", c.Profiler.HotThreshold)
	}
}

func TestFindAndLoadNoFile(t *testing.T) {
	c, err := FindAndLoad(t.TempDir())
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if diff := cmp.Diff(Default(), c, cmpopts.IgnoreFields(Config{}, "Dir")); diff != "" {
		t.Errorf("expected defaults (-want +got):\n%s", diff)
	}
}
