// Package config loads the miner's YAML configuration, adapted from a
// known-locations search and Config/Options split.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

// Cfg holds every recognized configuration option.
type Cfg struct {
	PlotDirs []string `yaml:"plot_dirs"`

	HDDUseDirectIO       bool `yaml:"hdd_use_direct_io"`
	HDDReaderThreadCount int  `yaml:"hdd_reader_thread_count"` // 0 = per-drive auto
	HDDWakeupAfter       int  `yaml:"hdd_wakeup_after"`        // seconds

	CPUWorkerThreadCount int  `yaml:"cpu_worker_thread_count"`
	GPUWorkerThreadCount int  `yaml:"gpu_worker_thread_count"`
	CPUNoncesPerCache    int  `yaml:"cpu_nonces_per_cache"`
	GPUNoncesPerCache    int  `yaml:"gpu_nonces_per_cache"`
	GPUPlatform          int  `yaml:"gpu_platform"`
	GPUDevice            int  `yaml:"gpu_device"`
	CPUThreadPinning     bool `yaml:"cpu_thread_pinning"`

	AccountID      uint64 `yaml:"account_id"`
	TargetDeadline uint64 `yaml:"target_deadline"`

	URL          string `yaml:"url"`
	SecretPhrase string `yaml:"secret_phrase"`
	TimeoutSec   int    `yaml:"timeout"`

	GetMiningInfoIntervalMS uint64 `yaml:"get_mining_info_interval"`
}

// Timeout returns the configured request timeout as a time.Duration.
func (c Cfg) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// WakeupAfterMS returns hdd_wakeup_after converted from seconds to
// milliseconds.
func (c Cfg) WakeupAfterMS() int64 {
	return int64(c.HDDWakeupAfter) * 1000
}

// Default returns a Cfg populated with the same defaults the original
// miner ships, before file/flag overrides are applied.
func Default() Cfg {
	return Cfg{
		HDDUseDirectIO:          false,
		CPUWorkerThreadCount:    1,
		GPUWorkerThreadCount:    0,
		CPUNoncesPerCache:       64,
		GPUNoncesPerCache:       0,
		TargetDeadline:          ^uint64(0),
		TimeoutSec:              10,
		GetMiningInfoIntervalMS: 3000,
		HDDWakeupAfter:          240,
	}
}

// Find searches known locations for a config file, mirroring
// preset.FindPresetFile: an explicit path first, then the working
// directory, then the user's config directories.
func Find(explicitPath string) (string, error) {
	locations := []string{explicitPath, "miner.yaml"}

	if home, err := os.UserHomeDir(); err == nil {
		locations = append(locations,
			filepath.Join(home, ".config", "scavenger", "miner.yaml"),
			filepath.Join(home, ".scavenger", "miner.yaml"),
		)
	}

	for _, loc := range locations {
		if loc == "" {
			continue
		}
		if _, err := os.Stat(loc); err == nil {
			return loc, nil
		}
	}
	return "", fmt.Errorf("could not find a config file in known locations")
}

// Load reads and parses the YAML config file at path on top of Default().
func Load(path string) (Cfg, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.PlotDirs = dedupDirs(cfg.PlotDirs)
	return cfg, nil
}

// dedupDirs drops duplicate plot_dirs entries, preserving first-seen order,
// so a repeated line in the config does not scan the same directory twice.
func dedupDirs(dirs []string) []string {
	var out []string
	for _, d := range dirs {
		if !slices.Contains(out, d) {
			out = append(out, d)
		}
	}
	return out
}

// Validate checks the invariants the miner depends on before it starts
// spawning readers and workers.
func (c Cfg) Validate() error {
	if len(c.PlotDirs) == 0 {
		return fmt.Errorf("config: plot_dirs must not be empty")
	}
	if c.CPUWorkerThreadCount == 0 && c.GPUWorkerThreadCount == 0 {
		return fmt.Errorf("config: at least one cpu or gpu worker must be configured")
	}
	if c.URL == "" {
		return fmt.Errorf("config: url must be set")
	}
	if c.CPUNoncesPerCache <= 0 && c.CPUWorkerThreadCount > 0 {
		return fmt.Errorf("config: cpu_nonces_per_cache must be positive")
	}
	if c.GPUNoncesPerCache <= 0 && c.GPUWorkerThreadCount > 0 {
		return fmt.Errorf("config: gpu_nonces_per_cache must be positive")
	}
	return nil
}
