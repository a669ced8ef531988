package tagging

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"ytdlsync/src/features/config"
	"ytdlsync/src/features/syncing"
	"ytdlsync/src/music"
)

// TagReader reads embedded metadata from a music file.
type TagReader interface {
	ReadFileTags(ctx context.Context, filePath string) (*music.Track, error)
}

// TagWriter writes metadata into a music file.
type TagWriter interface {
	WriteFileTags(ctx context.Context, filePath string, track *music.Track) error
}

// Match is a scored result from a metadata provider.
type Match struct {
	Track *music.Track
	// Score is the provider's confidence, 0-100.
	Score int
	// ReleaseID identifies the matched release for artwork lookup.
	ReleaseID string
}

// MetadataProvider looks up canonical metadata for a track.
type MetadataProvider interface {
	Search(ctx context.Context, artist, title string) (*Match, error)
	Name() string
	IsEnabled() bool
}

// ArtworkFetcher retrieves front cover artwork for a release.
type ArtworkFetcher interface {
	FetchFront(ctx context.Context, releaseID string) ([]byte, error)
}

// Service derives tags for staged files and writes them in. Filename-derived
// fields are always applied; provider fields override them only when the
// match score meets the configured minimum.
type Service struct {
	reader    TagReader
	writer    TagWriter
	providers []MetadataProvider
	artwork   ArtworkFetcher // may be nil
	config    *config.Manager
}

// NewService creates a new tagging service.
func NewService(reader TagReader, writer TagWriter, providers []MetadataProvider, artwork ArtworkFetcher, cfg *config.Manager) *Service {
	return &Service{
		reader:    reader,
		writer:    writer,
		providers: providers,
		artwork:   artwork,
		config:    cfg,
	}
}

// Tag derives tags for the file at path, writes them into it, and returns
// the resulting track. The staged path carries only the remote UID, so the
// filename heuristics run on originalName, the name the download server knew
// the file by. Fails with syncing.ErrTaggingFailed when no usable title can
// be derived or the tags cannot be written.
func (s *Service) Tag(ctx context.Context, path, originalName string) (*music.Track, error) {
	track := &music.Track{}
	if existing, err := s.reader.ReadFileTags(ctx, path); err != nil {
		slog.Debug("No readable embedded tags", "file", filepath.Base(path), "error", err)
	} else {
		track = existing
	}

	name := originalName
	if name == "" {
		name = path
	}
	artist, title := ParseFilename(name)
	if artist != "" {
		track.Artist = artist
	}
	if title != "" {
		track.Title = title
	}
	if track.Title == "" {
		return nil, fmt.Errorf("%w: no usable title for %s", syncing.ErrTaggingFailed, filepath.Base(name))
	}

	s.lookup(ctx, track)

	track.EnsureDefaults()
	if err := track.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", syncing.ErrTaggingFailed, err)
	}
	if err := s.writer.WriteFileTags(ctx, path, track); err != nil {
		return nil, fmt.Errorf("%w: %v", syncing.ErrTaggingFailed, err)
	}
	return track, nil
}

// lookup merges the first provider match that clears the configured minimum
// score. Provider failures are logged and never fail the file.
func (s *Service) lookup(ctx context.Context, track *music.Track) {
	minScore := s.config.Get().Tag.MinScore
	for _, p := range s.providers {
		if !p.IsEnabled() {
			continue
		}
		match, err := p.Search(ctx, track.Artist, track.Title)
		if err != nil {
			slog.Warn("Metadata lookup failed", "provider", p.Name(), "title", track.Title, "error", err)
			continue
		}
		if match == nil || match.Track == nil {
			slog.Debug("No metadata match", "provider", p.Name(), "title", track.Title)
			continue
		}
		if match.Score < minScore {
			slog.Debug("Metadata match below minimum score",
				"provider", p.Name(), "title", track.Title, "score", match.Score, "min", minScore)
			continue
		}

		slog.Info("Metadata match accepted",
			"provider", p.Name(), "artist", match.Track.Artist, "title", match.Track.Title, "score", match.Score)
		mergeMatch(track, match.Track)
		s.fetchArtwork(ctx, track, match.ReleaseID)
		return
	}
}

// mergeMatch overrides filename-derived fields with provider ones where the
// provider has a value.
func mergeMatch(track, matched *music.Track) {
	if matched.Title != "" {
		track.Title = matched.Title
	}
	if matched.Artist != "" {
		track.Artist = matched.Artist
	}
	if matched.Album != "" {
		track.Album = matched.Album
	}
	if matched.TrackNumber > 0 {
		track.TrackNumber = matched.TrackNumber
	}
	if matched.Year > 0 {
		track.Year = matched.Year
	}
	if matched.Genre != "" {
		track.Genre = matched.Genre
	}
}

func (s *Service) fetchArtwork(ctx context.Context, track *music.Track, releaseID string) {
	if s.artwork == nil || releaseID == "" {
		return
	}
	if !s.config.Get().Tag.Artwork.Embedded.Enabled {
		return
	}
	data, err := s.artwork.FetchFront(ctx, releaseID)
	if err != nil {
		slog.Warn("Failed to fetch cover art", "release", releaseID, "error", err)
		return
	}
	if len(data) > 0 {
		track.ArtworkData = data
		slog.Debug("Fetched cover art", "release", releaseID, "bytes", len(data))
	}
}
