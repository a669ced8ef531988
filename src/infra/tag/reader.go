package tag

import (
	"context"
	"fmt"
	"os"

	"github.com/dhowden/tag"

	"ytdlsync/src/features/tagging"
	"ytdlsync/src/music"
)

// TagReader reads embedded metadata using the dhowden/tag library.
type TagReader struct{}

// NewTagReader creates a new TagReader.
func NewTagReader() tagging.TagReader {
	return &TagReader{}
}

// ReadFileTags reads metadata from a music file.
func (r *TagReader) ReadFileTags(ctx context.Context, filePath string) (*music.Track, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	tags, err := tag.ReadFrom(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read tags: %w", err)
	}

	trackNumber, _ := tags.Track()
	return &music.Track{
		Title:       tags.Title(),
		Artist:      tags.Artist(),
		Album:       tags.Album(),
		TrackNumber: trackNumber,
		Year:        tags.Year(),
		Genre:       tags.Genre(),
	}, nil
}
