package syncing

import (
	"context"
	"time"

	"ytdlsync/src/music"
)

// RemoteFile is a file the download server reports as ready to sync.
// Its lifecycle is scoped to a single run.
type RemoteFile struct {
	UID   string `json:"uid"`
	Title string `json:"title"`
	Path  string `json:"path"`
	Size  int64  `json:"size,omitempty"`
}

// Status is the terminal state of one file within a run.
type Status string

const (
	StatusPlaced         Status = "placed"
	StatusDownloadFailed Status = "download_failed"
	StatusTaggingFailed  Status = "tagging_failed"
	StatusConflict       Status = "conflict"
	StatusPlaceFailed    Status = "place_failed"
	// StatusCleanupFailed means the file was placed but the remote delete
	// did not take; the server will list it again on the next run.
	StatusCleanupFailed Status = "cleanup_failed"
)

// FileResult records what happened to one remote file.
type FileResult struct {
	UID      string
	Filename string
	Status   Status
	DestPath string
	Error    string
}

// RunSummary collects the per-file results of one sync pass.
type RunSummary struct {
	ID           string
	StartedAt    time.Time
	FinishedAt   time.Time
	Listed       int
	PlexNotified bool
	Files        []FileResult
}

// Placed counts files that made it into the library, including the ones
// whose remote cleanup failed afterwards.
func (s *RunSummary) Placed() int {
	n := 0
	for _, f := range s.Files {
		if f.Status == StatusPlaced || f.Status == StatusCleanupFailed {
			n++
		}
	}
	return n
}

// Failed counts files that did not make it into the library this run.
func (s *RunSummary) Failed() int {
	return len(s.Files) - s.Placed()
}

// Locker guards against overlapping scheduled runs. Acquire fails with
// ErrLockHeld when another invocation is running; the returned func releases
// the lock and must be called on every exit path.
type Locker interface {
	Acquire() (release func(), err error)
}

// RemoteStore is the download server the run pulls files from.
type RemoteStore interface {
	// ListPending returns the files ready to sync. An empty slice is not
	// an error.
	ListPending(ctx context.Context) ([]RemoteFile, error)
	// Fetch streams a remote file into dir and returns the staged path.
	Fetch(ctx context.Context, file RemoteFile, dir string) (string, error)
	// Delete removes the file from the server.
	Delete(ctx context.Context, file RemoteFile) error
}

// Tagger derives tags for a staged file and writes them into it. The staged
// path is named after the remote UID, so the filename the server knew the
// file by is passed alongside for the heuristics.
type Tagger interface {
	Tag(ctx context.Context, path, originalName string) (*music.Track, error)
}

// Organizer moves a tagged file into its final library location.
type Organizer interface {
	Place(ctx context.Context, path string, track *music.Track) (string, error)
}

// LibraryNotifier asks the media server to rescan a library section.
type LibraryNotifier interface {
	RefreshSection(ctx context.Context, sectionID string) error
}

// RunStore persists run summaries.
type RunStore interface {
	SaveRun(ctx context.Context, summary *RunSummary) error
}

// RunNotifier reports a finished run to a human.
type RunNotifier interface {
	NotifyRun(ctx context.Context, summary *RunSummary) error
}
