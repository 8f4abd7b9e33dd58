package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/chazu/facet/pkg/engine"
	"github.com/chazu/facet/pkg/kernel/poly"
)

// isolate runs the test in an empty directory with an empty home so no
// stray facet.yaml is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", t.TempDir())
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"Kernel.Tolerance", cfg.Kernel.Tolerance, poly.DefaultTolerance},
		{"Kernel.FilletSegments", cfg.Kernel.FilletSegments, poly.DefaultFilletSegments},
		{"Engine.Timeout", cfg.Engine.Timeout, engine.EvalTimeout},
		{"Engine.CacheSize", cfg.Engine.CacheSize, engine.DefaultCacheSize},
		{"Export.Dir", cfg.Export.Dir, "out"},
		{"Export.PerSolid", cfg.Export.PerSolid, false},
		{"Log.Level", cfg.Log.Level, "info"},
		{"Log.Development", cfg.Log.Development, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestLoad_FileInWorkingDir(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "facet.yaml"), `
kernel:
  fillet_segments: 3
engine:
  timeout: 250ms
export:
  dir: meshes
  per_solid: true
`)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.Kernel.FilletSegments != 3 {
		t.Errorf("FilletSegments = %d, want 3", cfg.Kernel.FilletSegments)
	}
	if cfg.Engine.Timeout != 250*time.Millisecond {
		t.Errorf("Timeout = %s, want 250ms", cfg.Engine.Timeout)
	}
	if cfg.Export.Dir != "meshes" || !cfg.Export.PerSolid {
		t.Errorf("Export = %+v, want {meshes true}", cfg.Export)
	}
	// Unset keys keep their defaults.
	if cfg.Kernel.Tolerance != poly.DefaultTolerance {
		t.Errorf("Tolerance = %g, want default", cfg.Kernel.Tolerance)
	}
}

func TestLoad_FileInHomeConfig(t *testing.T) {
	isolate(t)
	home := os.Getenv("HOME")
	writeFile(t, filepath.Join(home, ".config", "facet", "facet.yaml"), "log:\n  level: debug\n")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	tests := []struct {
		name   string
		envKey string
		envVal string
		field  func(Config) any
		want   any
	}{
		{
			name:   "kernel.tolerance",
			envKey: "FACET_KERNEL_TOLERANCE",
			envVal: "0.001",
			field:  func(c Config) any { return c.Kernel.Tolerance },
			want:   0.001,
		},
		{
			name:   "engine.cache_size",
			envKey: "FACET_ENGINE_CACHE_SIZE",
			envVal: "0",
			field:  func(c Config) any { return c.Engine.CacheSize },
			want:   0,
		},
		{
			name:   "engine.timeout",
			envKey: "FACET_ENGINE_TIMEOUT",
			envVal: "2s",
			field:  func(c Config) any { return c.Engine.Timeout },
			want:   2 * time.Second,
		},
		{
			name:   "export.per_solid",
			envKey: "FACET_EXPORT_PER_SOLID",
			envVal: "true",
			field:  func(c Config) any { return c.Export.PerSolid },
			want:   true,
		},
		{
			name:   "log.development",
			envKey: "FACET_LOG_DEVELOPMENT",
			envVal: "true",
			field:  func(c Config) any { return c.Log.Development },
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			t.Setenv(tt.envKey, tt.envVal)

			cfg, err := Load("")
			if err != nil {
				t.Fatalf("Load() returned unexpected error: %v", err)
			}
			if got := tt.field(cfg); got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "facet.yaml"), "export:\n  dir: from-file\n")
	t.Setenv("FACET_EXPORT_DIR", "from-env")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.Export.Dir != "from-env" {
		t.Errorf("Export.Dir = %q, want from-env", cfg.Export.Dir)
	}
}

func TestLoad_ExplicitPath(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	writeFile(t, path, "kernel:\n  fillet_segments: 12\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.Kernel.FilletSegments != 12 {
		t.Errorf("FilletSegments = %d, want 12", cfg.Kernel.FilletSegments)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Load() of a missing explicit file should fail")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"tolerance", "kernel:\n  tolerance: 0\n", "kernel.tolerance"},
		{"segments", "kernel:\n  fillet_segments: 0\n", "kernel.fillet_segments"},
		{"timeout", "engine:\n  timeout: -1s\n", "engine.timeout"},
		{"level", "log:\n  level: loud\n", "log.level"},
		{"syntax", "kernel: [\n", "config: read"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			writeFile(t, filepath.Join(dir, "facet.yaml"), tt.yaml)

			_, err := Load("")
			if err == nil {
				t.Fatal("Load() should fail")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestNewEngineUsesSettings(t *testing.T) {
	isolate(t)
	t.Setenv("FACET_ENGINE_CACHE_SIZE", "0")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	log, err := cfg.Log.NewLogger()
	if err != nil {
		t.Fatalf("NewLogger() returned unexpected error: %v", err)
	}
	eng := cfg.NewEngine(log)

	k, ok := eng.Kernel().(*poly.Kernel)
	if !ok {
		t.Fatalf("kernel is %T, want *poly.Kernel", eng.Kernel())
	}
	if k.Tolerance() != cfg.Kernel.Tolerance {
		t.Errorf("Tolerance() = %g, want %g", k.Tolerance(), cfg.Kernel.Tolerance)
	}
	for i := 0; i < 2; i++ {
		res, err := eng.Evaluate(`(box 1 1 1)`)
		if err != nil {
			t.Fatalf("Evaluate() returned unexpected error: %v", err)
		}
		if res.Cached {
			t.Error("cache_size 0 should disable the cache")
		}
	}
}
