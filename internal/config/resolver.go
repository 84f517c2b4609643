// Package config resolves sigscrub settings from its three sources.
// Precedence, lowest to highest: config file, environment, CLI flags.
// Every resolved value remembers where it came from so `sigscrub config`
// can explain the effective configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/inboxtools/sigscrub/internal/detect"
)

type ValueSource string

const (
	SourceUnknown ValueSource = "unknown"
	SourceConfig  ValueSource = "config"
	SourceEnv     ValueSource = "env"
	SourceCLI     ValueSource = "cli"
	SourceDefault ValueSource = "default"
)

type ResolvedValue struct {
	Value  string      `json:"value"`
	Source ValueSource `json:"source"`
	From   string      `json:"from,omitempty"`
}

type ResolveOptions struct {
	ConfigPath   string
	CLIThreshold string
	CLITagger    string
	CLICachePath string
}

type ResolvedConfig struct {
	ConfigPath string `json:"config_path"`

	Threshold ResolvedValue `json:"threshold"`
	Tagger    ResolvedValue `json:"tagger"`
	CachePath ResolvedValue `json:"cache_path"`
	NoCache   ResolvedValue `json:"no_cache"`
}

type fileConfig struct {
	Threshold *float64 `yaml:"threshold"`
	Tagger    string   `yaml:"tagger"`
	Cache     struct {
		Path     string `yaml:"path"`
		Disabled bool   `yaml:"disabled"`
	} `yaml:"cache"`
}

// DefaultConfigPath is ~/.sigscrub/config.yaml.
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".sigscrub", "config.yaml")
}

// ResolveConfig loads the config file (if any) and layers environment
// variables and CLI flags on top.
func ResolveConfig(opts ResolveOptions) (ResolvedConfig, error) {
	path := strings.TrimSpace(opts.ConfigPath)
	if path == "" {
		path = DefaultConfigPath()
	}

	out := ResolvedConfig{ConfigPath: path}

	cfg, err := loadConfig(path)
	if err != nil {
		return out, err
	}

	if cfg != nil {
		if cfg.Threshold != nil {
			apply(&out.Threshold, strconv.FormatFloat(*cfg.Threshold, 'f', -1, 64), SourceConfig, path)
		}
		apply(&out.Tagger, cfg.Tagger, SourceConfig, path)
		apply(&out.CachePath, cfg.Cache.Path, SourceConfig, path)
		if cfg.Cache.Disabled {
			out.NoCache = ResolvedValue{Value: "true", Source: SourceConfig, From: path}
		}
	}

	applyEnv(&out.Threshold, "SIGSCRUB_THRESHOLD")
	applyEnv(&out.Tagger, "SIGSCRUB_TAGGER")
	applyEnv(&out.CachePath, "SIGSCRUB_CACHE")
	if v := strings.TrimSpace(os.Getenv("SIGSCRUB_NO_CACHE")); v != "" {
		out.NoCache = ResolvedValue{Value: v, Source: SourceEnv, From: "SIGSCRUB_NO_CACHE"}
	}

	apply(&out.Threshold, opts.CLIThreshold, SourceCLI, "--threshold")
	apply(&out.Tagger, opts.CLITagger, SourceCLI, "--tagger")
	apply(&out.CachePath, opts.CLICachePath, SourceCLI, "--cache")

	if out.Threshold.Value == "" {
		out.Threshold = ResolvedValue{
			Value:  strconv.FormatFloat(detect.DefaultThreshold, 'f', -1, 64),
			Source: SourceDefault,
			From:   "built-in default",
		}
	}

	if out.CachePath.Value != "" {
		out.CachePath.Value = expandUserPath(out.CachePath.Value)
	}

	return out, nil
}

// ThresholdValue parses the resolved threshold. Range checking is left to
// the detector, which rejects values outside [0, 1].
func (r ResolvedConfig) ThresholdValue() (float64, error) {
	v, err := strconv.ParseFloat(r.Threshold.Value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid threshold %q (from %s): %w", r.Threshold.Value, r.Threshold.From, err)
	}
	return v, nil
}

// CacheDisabled reports whether the tag cache is turned off.
func (r ResolvedConfig) CacheDisabled() bool {
	v := strings.ToLower(strings.TrimSpace(r.NoCache.Value))
	return v == "true" || v == "1" || v == "yes"
}

func loadConfig(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &cfg, nil
}

func apply(dst *ResolvedValue, raw string, source ValueSource, from string) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return
	}
	*dst = ResolvedValue{Value: v, Source: source, From: from}
}

func applyEnv(dst *ResolvedValue, env string) {
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		*dst = ResolvedValue{Value: v, Source: SourceEnv, From: env}
	}
}

func expandUserPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}
