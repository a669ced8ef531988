package syncing

import "errors"

// Error taxonomy of a sync run. Lock and listing failures abort the run;
// everything else is isolated to the file it happened on.
var (
	// ErrLockHeld means another invocation holds the run lock.
	ErrLockHeld = errors.New("another sync run holds the lock")
	// ErrRemoteUnavailable covers network/timeout/non-2xx failures against
	// the download server.
	ErrRemoteUnavailable = errors.New("download server unavailable")
	// ErrDownloadFailed covers transfer failures for a single file.
	ErrDownloadFailed = errors.New("download failed")
	// ErrTaggingFailed means no usable tags could be derived or written.
	// The staged file is retained and the remote copy is never deleted.
	ErrTaggingFailed = errors.New("tagging failed")
	// ErrConflict means the destination path already exists. The existing
	// file is never overwritten.
	ErrConflict = errors.New("destination already exists")
	// ErrPlexUnavailable covers failures of the library refresh request.
	ErrPlexUnavailable = errors.New("plex unavailable")
)
