package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"ytdlsync/src/features/config"
	"ytdlsync/src/features/logging"
	"ytdlsync/src/features/metrics"
	"ytdlsync/src/features/syncing"
	"ytdlsync/src/features/tagging"
	"ytdlsync/src/infra/database"
	"ytdlsync/src/infra/files"
	"ytdlsync/src/infra/lockfile"
	"ytdlsync/src/infra/musicbrainz"
	"ytdlsync/src/infra/notify"
	"ytdlsync/src/infra/plex"
	"ytdlsync/src/infra/tag"
	"ytdlsync/src/infra/ytdl"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "ytdlsync",
		Short:         "Sync ytdl-material downloads into a Plex music library",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runSync,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to the configuration file")

	root.AddCommand(&cobra.Command{
		Use:   "sections",
		Short: "List the library sections registered in Plex",
		RunE:  runSections,
	})

	if err := root.Execute(); err != nil {
		if errors.Is(err, syncing.ErrLockHeld) {
			slog.Warn("Another instance is running. Exiting.", "error", err)
		} else {
			slog.Error("Run failed", "error", err)
		}
		os.Exit(1)
	}
}

func loadConfig() (*config.Manager, error) {
	cfgManager, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	slog.SetDefault(logging.SetupLogger(cfgManager))
	slog.Debug("Configuration loaded", "config", cfgManager.GetYAML())
	return cfgManager, nil
}

func runSync(cmd *cobra.Command, args []string) error {
	cfgManager, err := loadConfig()
	if err != nil {
		return err
	}
	cfg := cfgManager.Get()

	if cfg.Ytdl.URL == "" || cfg.Ytdl.APIKey == "" {
		return fmt.Errorf("ytdl url and api key are required")
	}

	guard := lockfile.New(cfg.Lock.Path, time.Duration(cfg.Lock.StaleAfterMinutes)*time.Minute)
	remote := ytdl.NewClient(cfg.Ytdl)

	tagReader := tag.NewTagReader()
	tagWriter := tag.NewTagWriter(cfgManager)
	mbProvider := musicbrainz.NewClient(cfg.Tag.Providers["musicbrainz"].Enabled)
	var artwork tagging.ArtworkFetcher
	if cfg.Tag.Artwork.Embedded.Enabled {
		artwork = musicbrainz.NewCoverArtClient()
	}
	tagService := tagging.NewService(tagReader, tagWriter, []tagging.MetadataProvider{mbProvider}, artwork, cfgManager)

	organizer := files.NewOrganizer(cfg.LibraryPath)

	var plexClient syncing.LibraryNotifier
	if cfg.Plex.URL != "" && cfg.Plex.Token != "" {
		plexClient = plex.NewClient(cfg.Plex.URL, cfg.Plex.Token)
	} else {
		slog.Info("Plex not configured, rescan will be skipped")
	}

	var history syncing.RunStore
	if cfg.History.Enabled {
		h, err := database.NewRunHistory(cfg.History.Path)
		if err != nil {
			slog.Error("Failed to open run history, continuing without", "path", cfg.History.Path, "error", err)
		} else {
			defer h.Close()
			history = h
		}
	}

	var notifier syncing.RunNotifier
	if cfg.Telegram.Enabled && cfg.Telegram.Token != "" {
		n, err := notify.NewTelegramNotifier(cfg.Telegram.Token, cfg.Telegram.ChatID)
		if err != nil {
			slog.Error("Failed to initialize Telegram notifier, continuing without", "error", err)
		} else {
			notifier = n
		}
	}

	service := syncing.NewService(cfgManager, guard, remote, tagService, organizer, plexClient, history, notifier)
	summary, err := service.Run(cmd.Context())
	if err != nil {
		return err
	}

	if cfg.Metrics.Enabled && cfg.Metrics.Gateway != "" {
		if err := metrics.PushRun(cfg.Metrics, summary); err != nil {
			slog.Error("Failed to push run metrics", "gateway", cfg.Metrics.Gateway, "error", err)
		}
	}

	slog.Info("Sync completed.")
	return nil
}

func runSections(cmd *cobra.Command, args []string) error {
	cfgManager, err := loadConfig()
	if err != nil {
		return err
	}
	cfg := cfgManager.Get()

	if cfg.Plex.URL == "" || cfg.Plex.Token == "" {
		return fmt.Errorf("plex url and token are required")
	}

	sections, err := plex.NewClient(cfg.Plex.URL, cfg.Plex.Token).ListSections(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s\n", "ID", "SECTION")
	for _, s := range sections {
		fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s\n", s.ID, s.Title)
	}
	return nil
}
