package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "miner.yaml")
	contents := `
plot_dirs:
  - /mnt/plots1
  - /mnt/plots2
  - /mnt/plots1
cpu_worker_thread_count: 4
url: http://pool.example.com:8124
account_id: 123456789
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.CPUWorkerThreadCount != 4 {
		t.Errorf("CPUWorkerThreadCount = %d, want 4 (overridden)", cfg.CPUWorkerThreadCount)
	}
	if cfg.CPUNoncesPerCache != 64 {
		t.Errorf("CPUNoncesPerCache = %d, want 64 (default preserved)", cfg.CPUNoncesPerCache)
	}
	if len(cfg.PlotDirs) != 2 {
		t.Fatalf("PlotDirs = %v, want 2 deduped entries", cfg.PlotDirs)
	}
	if cfg.URL != "http://pool.example.com:8124" {
		t.Errorf("URL = %q", cfg.URL)
	}
}

func TestValidateRejectsMissingPlotDirs(t *testing.T) {
	cfg := Default()
	cfg.URL = "http://pool.example.com"
	cfg.CPUWorkerThreadCount = 1

	if err := cfg.Validate(); err == nil {
		t.Errorf("expected error for empty plot_dirs")
	}

	cfg.PlotDirs = []string{"/mnt/plots"}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestValidateRejectsNoWorkers(t *testing.T) {
	cfg := Default()
	cfg.PlotDirs = []string{"/mnt/plots"}
	cfg.URL = "http://pool.example.com"
	cfg.CPUWorkerThreadCount = 0
	cfg.GPUWorkerThreadCount = 0

	if err := cfg.Validate(); err == nil {
		t.Errorf("expected error when no cpu or gpu workers are configured")
	}
}

func TestFindPrefersExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(path, []byte("plot_dirs: []\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	found, err := Find(path)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if found != path {
		t.Errorf("Find() = %q, want %q", found, path)
	}
}
