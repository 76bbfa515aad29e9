package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/milk9111/actskill/common"
)

// Tool holds the settings shared by skilltool and editor sessions.
type Tool struct {
	// Asset lookup. Empty dirs mean embedded assets only.
	AssetDir  string `yaml:"asset_dir"`
	ScriptDir string `yaml:"script_dir"`

	LogLevel string `yaml:"log_level"` // debug, info, warn, error

	// Playback
	FrameRate     int     `yaml:"frame_rate"`     // 0 keeps the asset's rate
	PlaybackSpeed float64 `yaml:"playback_speed"` // editor preview, 0..1

	// Hot reload
	WatchDebounceMs int `yaml:"watch_debounce_ms"`
	LoadConcurrency int `yaml:"load_concurrency"`

	MirrorClipboard bool `yaml:"mirror_clipboard"`
}

// DefaultTool returns Tool config with sensible defaults.
func DefaultTool() Tool {
	return Tool{
		AssetDir:        "skills",
		ScriptDir:       "skills/scripts",
		LogLevel:        "info",
		PlaybackSpeed:   1,
		WatchDebounceMs: 100,
		LoadConcurrency: 4,
	}
}

// LoadTool loads tool config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadTool(path string) (Tool, error) {
	cfg := DefaultTool()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.normalize()
	return cfg, nil
}

func (t *Tool) normalize() {
	t.PlaybackSpeed = common.Clamp(t.PlaybackSpeed, 0, 1)
	if t.FrameRate < 0 {
		t.FrameRate = 0
	}
	if t.WatchDebounceMs < 0 {
		t.WatchDebounceMs = 0
	}
	if t.LoadConcurrency < 1 {
		t.LoadConcurrency = 1
	}
}

// Level maps LogLevel to a slog level; unknown names fall back to info.
func (t Tool) Level() slog.Level {
	switch strings.ToLower(strings.TrimSpace(t.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (t Tool) Debounce() time.Duration {
	return time.Duration(t.WatchDebounceMs) * time.Millisecond
}
