package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	ModelPath string       `yaml:"model_path"`
	Language  string       `yaml:"language"`
	Hotkey    HotkeyConfig `yaml:"hotkey"`
	Audio     AudioConfig  `yaml:"audio"`
	Paste     PasteConfig  `yaml:"paste"`
	Notify    NotifyConfig `yaml:"notify"`
	Debug     DebugConfig  `yaml:"debug"`
	LogLevel  string       `yaml:"log_level"`
}

// HotkeyConfig holds the push-to-talk chord and the exit chord.
// Primary and Secondary list the key names accepted for each half of the
// chord, so left/right/generic variants of a modifier all count.
type HotkeyConfig struct {
	Primary   []string   `yaml:"primary"`
	Secondary []string   `yaml:"secondary"`
	Exit      ExitConfig `yaml:"exit"`
}

// ExitConfig holds the exit-combination policy. With RequireHotkey set the
// exit key only quits while the push-to-talk chord is held (Ctrl+Shift+Esc
// style); without it the key quits on its own (plain Esc).
type ExitConfig struct {
	Key           string `yaml:"key"`
	RequireHotkey bool   `yaml:"require_hotkey"`
}

// AudioConfig holds audio capture settings.
type AudioConfig struct {
	SampleRate uint32 `yaml:"sample_rate"`
	Channels   uint32 `yaml:"channels"`
	// MinDurationMS drops recordings shorter than this before they reach
	// the transcription engine. Whisper needs at least ~100ms of audio.
	MinDurationMS int `yaml:"min_duration_ms"`
	// SilenceThresholdDBFS is the RMS level below which a recording is
	// treated as silence and never sent to the engine.
	SilenceThresholdDBFS float64 `yaml:"silence_threshold_dbfs"`
}

// PasteConfig holds clipboard paste settings.
type PasteConfig struct {
	// SettleDelayMS is the pause between writing the clipboard and sending
	// the paste shortcut, so the clipboard update reaches the OS first.
	SettleDelayMS int `yaml:"settle_delay_ms"`
}

// NotifyConfig holds desktop notification settings.
type NotifyConfig struct {
	Enabled bool `yaml:"enabled"`
}

// DebugConfig holds debugging aids.
type DebugConfig struct {
	// SaveDir, when set, receives one WAV file per sealed recording.
	SaveDir string `yaml:"save_dir"`
}

// DefaultConfigDir returns the default config directory path.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "holdscribe")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// Default returns a Config with sensible default values.
func Default() *Config {
	home, _ := os.UserHomeDir()
	modelPath := filepath.Join(home, ".local", "share", "holdscribe", "models", "ggml-base.en.bin")

	return &Config{
		ModelPath: modelPath,
		Language:  "en",
		Hotkey: HotkeyConfig{
			Primary:   []string{"ctrl", "lctrl", "rctrl"},
			Secondary: []string{"shift", "lshift", "rshift"},
			Exit: ExitConfig{
				Key:           "esc",
				RequireHotkey: false,
			},
		},
		Audio: AudioConfig{
			SampleRate:           16000,
			Channels:             1,
			MinDurationMS:        300,
			SilenceThresholdDBFS: -40,
		},
		Paste: PasteConfig{
			SettleDelayMS: 200,
		},
		Notify: NotifyConfig{
			Enabled: true,
		},
		LogLevel: "info",
	}
}

// Load reads and parses a YAML config file. Missing fields are filled
// with defaults. Tilde (~) in paths is expanded to the user's home directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.ModelPath = expandTilde(cfg.ModelPath)
	cfg.Debug.SaveDir = expandTilde(cfg.Debug.SaveDir)

	return cfg, nil
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	if c.ModelPath == "" {
		return fmt.Errorf("model_path must not be empty")
	}

	if c.Language == "" {
		return fmt.Errorf("language must not be empty")
	}

	if len(c.Hotkey.Primary) == 0 {
		return fmt.Errorf("hotkey.primary must not be empty")
	}

	if len(c.Hotkey.Secondary) == 0 {
		return fmt.Errorf("hotkey.secondary must not be empty")
	}

	if c.Hotkey.Exit.Key == "" {
		return fmt.Errorf("hotkey.exit.key must not be empty")
	}

	if c.Audio.SampleRate == 0 {
		return fmt.Errorf("audio.sample_rate must be > 0")
	}

	if c.Audio.Channels == 0 || c.Audio.Channels > 2 {
		return fmt.Errorf("audio.channels must be 1 or 2, got %d", c.Audio.Channels)
	}

	if c.Audio.MinDurationMS < 0 {
		return fmt.Errorf("audio.min_duration_ms must be >= 0")
	}

	if c.Audio.SilenceThresholdDBFS > 0 {
		return fmt.Errorf("audio.silence_threshold_dbfs must be <= 0 (dBFS), got %v", c.Audio.SilenceThresholdDBFS)
	}

	if c.Paste.SettleDelayMS < 0 {
		return fmt.Errorf("paste.settle_delay_ms must be >= 0")
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn, or error, got %q", c.LogLevel)
	}

	return nil
}

// ParseLogLevel maps a log_level string to a slog.Level.
// Unknown values default to info.
func ParseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// expandTilde replaces a leading ~ with the user's home directory.
func expandTilde(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
