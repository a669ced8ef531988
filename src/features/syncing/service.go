package syncing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"ytdlsync/src/features/config"
)

// Service orchestrates one sync pass: list remote files, then per file
// download, tag, place and clean up, then a single Plex refresh. Per-file
// failures never abort the batch; only lock acquisition and listing failures
// abort the run.
type Service struct {
	configManager *config.Manager
	locker        Locker
	remote        RemoteStore
	tagger        Tagger
	organizer     Organizer
	plex          LibraryNotifier // nil when Plex is not configured
	history       RunStore        // nil when history is disabled
	notifier      RunNotifier     // nil when notifications are disabled
}

// NewService creates a new sync service.
func NewService(cfgManager *config.Manager, locker Locker, remote RemoteStore, tagger Tagger, organizer Organizer, plex LibraryNotifier, history RunStore, notifier RunNotifier) *Service {
	return &Service{
		configManager: cfgManager,
		locker:        locker,
		remote:        remote,
		tagger:        tagger,
		organizer:     organizer,
		plex:          plex,
		history:       history,
		notifier:      notifier,
	}
}

// Run executes one sync pass. The returned error is non-nil only for fatal
// conditions (lock held, listing failed); per-file outcomes are in the
// summary.
func (s *Service) Run(ctx context.Context) (*RunSummary, error) {
	release, err := s.locker.Acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	summary := &RunSummary{
		ID:        uuid.New().String(),
		StartedAt: time.Now(),
	}
	slog.Info("Sync run started", "run", summary.ID)

	files, err := s.remote.ListPending(ctx)
	if err != nil {
		// No partial listing is trusted.
		return nil, fmt.Errorf("listing pending files: %w", err)
	}
	summary.Listed = len(files)
	slog.Info("Pending files listed", "count", len(files))

	staging := s.configManager.Get().StagingPath
	if err := os.MkdirAll(staging, 0755); err != nil {
		return nil, fmt.Errorf("creating staging directory %s: %w", staging, err)
	}

	for _, f := range files {
		summary.Files = append(summary.Files, s.processFile(ctx, f, staging))
	}

	s.notifyPlex(ctx, summary)

	summary.FinishedAt = time.Now()
	s.record(ctx, summary)

	slog.Info("Sync run finished",
		"run", summary.ID,
		"listed", summary.Listed,
		"placed", summary.Placed(),
		"failed", summary.Failed(),
		"duration", summary.FinishedAt.Sub(summary.StartedAt).Round(time.Millisecond),
	)
	return summary, nil
}

// processFile runs one file through the pipeline. The remote copy is deleted
// only after the organizer has returned a final path; every other outcome
// leaves the server copy in place so the next run reattempts it.
func (s *Service) processFile(ctx context.Context, f RemoteFile, staging string) FileResult {
	res := FileResult{UID: f.UID, Filename: filepath.Base(f.Path)}
	if res.Filename == "." || res.Filename == "" {
		res.Filename = f.Title
	}

	slog.Info("Downloading", "uid", f.UID, "file", res.Filename)
	staged, err := s.remote.Fetch(ctx, f, staging)
	if err != nil {
		slog.Error("Failed to download file", "uid", f.UID, "file", res.Filename, "error", err)
		res.Status = StatusDownloadFailed
		res.Error = err.Error()
		return res
	}

	track, err := s.tagger.Tag(ctx, staged, res.Filename)
	if err != nil {
		// The staged file stays behind for manual inspection.
		slog.Error("Failed to tag file", "uid", f.UID, "file", res.Filename, "error", err)
		res.Status = StatusTaggingFailed
		res.Error = err.Error()
		return res
	}

	dest, err := s.organizer.Place(ctx, staged, track)
	if err != nil {
		res.Error = err.Error()
		if errors.Is(err, ErrConflict) {
			slog.Warn("Destination exists, skipping", "uid", f.UID, "file", res.Filename, "error", err)
			res.Status = StatusConflict
		} else {
			slog.Error("Failed to place file", "uid", f.UID, "file", res.Filename, "error", err)
			res.Status = StatusPlaceFailed
		}
		return res
	}
	res.DestPath = dest
	slog.Info("Placed in library", "uid", f.UID, "dest", dest)

	if s.configManager.Get().Ytdl.CleanupSynced {
		if err := s.remote.Delete(ctx, f); err != nil {
			// Placement is not rolled back; the server will list the
			// file again next run.
			slog.Warn("Failed to delete remote file", "uid", f.UID, "error", err)
			res.Status = StatusCleanupFailed
			res.Error = err.Error()
			return res
		}
		slog.Info("Deleted remote file", "uid", f.UID)
	}

	res.Status = StatusPlaced
	return res
}

// notifyPlex fires the section refresh once per run, also when the batch was
// empty. Failure is logged and non-fatal.
func (s *Service) notifyPlex(ctx context.Context, summary *RunSummary) {
	cfg := s.configManager.Get().Plex
	if s.plex == nil || cfg.MusicSectionID == "" {
		slog.Debug("Plex not configured, skipping refresh")
		return
	}
	if err := s.plex.RefreshSection(ctx, cfg.MusicSectionID); err != nil {
		slog.Error("Failed to trigger Plex rescan", "section", cfg.MusicSectionID, "error", err)
		return
	}
	slog.Info("Plex rescan triggered", "section", cfg.MusicSectionID)
	summary.PlexNotified = true
}

// record persists and announces the summary, best effort.
func (s *Service) record(ctx context.Context, summary *RunSummary) {
	if s.history != nil {
		if err := s.history.SaveRun(ctx, summary); err != nil {
			slog.Error("Failed to save run history", "run", summary.ID, "error", err)
		}
	}
	if s.notifier != nil {
		if err := s.notifier.NotifyRun(ctx, summary); err != nil {
			slog.Error("Failed to send run notification", "run", summary.ID, "error", err)
		}
	}
}
