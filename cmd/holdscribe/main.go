// Command holdscribe is a push-to-talk dictation daemon. Hold the hotkey
// chord (Ctrl+Shift by default) to record from the microphone; release it
// and the recording is transcribed, copied to the clipboard, and pasted
// into the focused application.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"holdscribe/internal/audio"
	"holdscribe/internal/config"
	"holdscribe/internal/controller"
	"holdscribe/internal/dispatch"
	"holdscribe/internal/hotkey"
	"holdscribe/internal/inject"
	"holdscribe/internal/keytrack"
	"holdscribe/internal/notify"
	"holdscribe/internal/transcribe"
	"holdscribe/internal/wavdump"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default: ~/.config/holdscribe/config.yaml)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config validation: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: config.ParseLogLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	printBanner(cfg)

	logger.Info("loading whisper model", "path", cfg.ModelPath)
	modelStart := time.Now()
	engine, err := transcribe.NewWhisperEngine(cfg.ModelPath, cfg.Language)
	if err != nil {
		log.Fatalf("Failed to load whisper model: %v\n\nCheck that the model file exists at: %s\nRun 'make model' to download it.", err, cfg.ModelPath)
	}
	logger.Info("model loaded", "took", time.Since(modelStart).Round(time.Millisecond))

	opener, err := audio.NewMalgoOpener()
	if err != nil {
		engine.Close()
		log.Fatalf("Failed to initialize audio: %v\n\nEnsure microphone access is granted in your system's privacy settings.", err)
	}

	streams := audio.NewManager(audio.Config{
		SampleRate: cfg.Audio.SampleRate,
		Channels:   cfg.Audio.Channels,
	}, opener, logger)
	if err := streams.Recover(); err != nil {
		engine.Close()
		opener.Close()
		log.Fatalf("Failed to open capture stream: %v", err)
	}

	injector := inject.New()
	notifier := notify.New(cfg.Notify.Enabled, logger)

	var archive dispatch.Archiver
	if cfg.Debug.SaveDir != "" {
		archive = wavdump.New(cfg.Debug.SaveDir, int(cfg.Audio.SampleRate), logger)
		logger.Info("recording archive enabled", "dir", cfg.Debug.SaveDir)
	}

	dispatcher := dispatch.New(dispatch.Options{
		Engine:               engine,
		Clipboard:            injector,
		Paster:               injector,
		Notifier:             notifier,
		Archive:              archive,
		Log:                  logger,
		SampleRate:           int(cfg.Audio.SampleRate),
		Channels:             int(cfg.Audio.Channels),
		MinDuration:          time.Duration(cfg.Audio.MinDurationMS) * time.Millisecond,
		SilenceThresholdDBFS: cfg.Audio.SilenceThresholdDBFS,
		SettleDelay:          time.Duration(cfg.Paste.SettleDelayMS) * time.Millisecond,
	})

	ctrl := controller.New(streams, dispatcher, notifier, logger)
	tracker := keytrack.New(keytrack.Config{
		Primary:            cfg.Hotkey.Primary,
		Secondary:          cfg.Hotkey.Secondary,
		ExitKey:            cfg.Hotkey.Exit.Key,
		ExitRequiresHotkey: cfg.Hotkey.Exit.RequireHotkey,
	}, ctrl)
	listener := hotkey.NewListener(tracker, logger)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("signal received, shutting down", "signal", sig.String())
		listener.Stop()
	}()

	notifier.Ready()
	logger.Info("ready",
		"hotkey", chordString(cfg),
		"exit", cfg.Hotkey.Exit.Key)

	// Blocks on the key hook until the exit chord or a signal.
	listener.Run()

	// A release event may never arrive once the hook is down; seal any
	// recording still open so it is not lost.
	ctrl.OnHotkeyReleased()

	streams.Close()
	if err := opener.Close(); err != nil {
		logger.Warn("closing audio context", "error", err)
	}

	// Let an in-flight transcription finish and paste.
	dispatcher.Wait()

	if err := engine.Close(); err != nil {
		logger.Warn("closing whisper model", "error", err)
	}

	logger.Info("goodbye")
}

// loadConfig loads the config from the specified path, or falls back to
// the default config path, or uses built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}

	defaultPath := config.DefaultConfigPath()
	if _, err := os.Stat(defaultPath); err == nil {
		cfg, err := config.Load(defaultPath)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", defaultPath, err)
		}
		log.Printf("Config loaded from %s", defaultPath)
		return cfg, nil
	}

	log.Println("No config file found, using defaults")
	return config.Default(), nil
}

// printBanner displays the startup configuration summary.
func printBanner(cfg *config.Config) {
	fmt.Println("=== holdscribe ===")
	fmt.Printf("  Model:    %s (language: %s)\n", cfg.ModelPath, cfg.Language)
	fmt.Printf("  Hotkey:   %s (hold to record)\n", chordString(cfg))
	fmt.Printf("  Exit:     %s\n", exitString(cfg))
	fmt.Printf("  Audio:    %dHz, %dch\n", cfg.Audio.SampleRate, cfg.Audio.Channels)
	fmt.Printf("  Log:      %s\n", cfg.LogLevel)
	fmt.Println("==================")
}

func chordString(cfg *config.Config) string {
	return cfg.Hotkey.Primary[0] + "+" + cfg.Hotkey.Secondary[0]
}

func exitString(cfg *config.Config) string {
	if cfg.Hotkey.Exit.RequireHotkey {
		return strings.Join([]string{cfg.Hotkey.Primary[0], cfg.Hotkey.Secondary[0], cfg.Hotkey.Exit.Key}, "+")
	}
	return cfg.Hotkey.Exit.Key
}
