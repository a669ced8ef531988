package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Load reads a YAML file from the given path and returns a new Manager.
// If the file doesn't exist, the defaults are used as-is. Environment
// variables override file values so the job can be configured entirely from
// the environment when scheduled in a container.
func Load(path string) (*Manager, error) {
	var cfg *Config
	if _, err := os.Stat(path); os.IsNotExist(err) {
		slog.Info("Config file not found, using default configuration", "path", path)
		cfg = createDefaultConfig()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		cfg = createDefaultConfig()
		if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if cfg.StagingPath == "" {
		cfg.StagingPath = filepath.Join(os.TempDir(), "ytdl_sync")
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Loading must not touch the filesystem: a run that fails to take the
	// lock leaves no trace. Directories are created once the run owns the
	// lock, by the sync service and the organizer.
	return NewManager(cfg), nil
}

// applyEnvOverrides overrides file values with environment variables. The
// variable names match the ones the scheduled container is deployed with.
func applyEnvOverrides(cfg *Config) {
	setString := func(dst *string, envVar string) {
		if v := os.Getenv(envVar); v != "" {
			*dst = v
		}
	}
	setString(&cfg.Ytdl.URL, "YTDL_URL")
	setString(&cfg.Ytdl.User, "YTDL_USER")
	setString(&cfg.Ytdl.Password, "YTDL_PASSWORD")
	setString(&cfg.Ytdl.APIKey, "YTDL_API_KEY")
	setString(&cfg.Plex.URL, "PLEX_URL")
	setString(&cfg.Plex.Token, "PLEX_TOKEN")
	setString(&cfg.Plex.MusicSectionID, "PLEX_MUSIC_SECTION_ID")
	setString(&cfg.LibraryPath, "LOCAL_DOWNLOAD_DIR")
	setString(&cfg.Logger.Path, "LOG_PATH")
	setString(&cfg.Lock.Path, "LOCK_FILE_PATH")
	setString(&cfg.Telegram.Token, "TELEGRAM_TOKEN")

	switch os.Getenv("YTDL_CLEANUP_SYNCED") {
	case "1", "true", "True", "TRUE":
		cfg.Ytdl.CleanupSynced = true
	case "0", "false", "False", "FALSE":
		cfg.Ytdl.CleanupSynced = false
	}
}

// createDefaultConfig creates a new Config with sensible default values.
func createDefaultConfig() *Config {
	return &Config{
		LibraryPath: "/music",
		StagingPath: "", // resolved to <tmpdir>/ytdl_sync at load time
		Lock: Lock{
			Path:              "/tmp/ytdl_sync.lock",
			StaleAfterMinutes: 120,
		},
		Ytdl: Ytdl{
			CleanupSynced: true,
		},
		Tag: Tag{
			Providers: map[string]Provider{
				"musicbrainz": {Enabled: true},
			},
			MinScore: 90,
			Artwork: Artwork{
				Embedded: EmbeddedArtwork{
					Enabled: true,
					Size:    1000,
					Quality: 85,
				},
			},
		},
		Logger: Logger{
			Level:  "info",
			Format: "text",
		},
		History: History{
			Enabled: false,
			Path:    "./ytdlsync.db",
		},
		Metrics: Metrics{
			Enabled: false,
			Job:     "ytdlsync",
		},
		Telegram: Telegram{
			Enabled: false,
		},
	}
}

