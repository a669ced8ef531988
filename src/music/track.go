package music

import (
	"fmt"
	"strings"
)

// Track carries the tag fields written into an audio file. The same fields
// drive the library path the file ends up at.
type Track struct {
	Title       string
	Artist      string
	Album       string
	TrackNumber int
	Year        int
	Genre       string
	ArtworkData []byte
}

// Validate validates the track fields.
func (t *Track) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("track title cannot be empty")
	}
	if len(t.Title) > 500 {
		return fmt.Errorf("title cannot exceed 500 characters, got %d: title -> %s", len(t.Title), t.Title)
	}
	if t.TrackNumber < 0 {
		return fmt.Errorf("track number cannot be negative, got %d", t.TrackNumber)
	}
	if t.Year < 0 {
		return fmt.Errorf("year cannot be negative, got %d", t.Year)
	}
	return nil
}

// EnsureDefaults adds fallback values for missing tag fields.
func (t *Track) EnsureDefaults() {
	if strings.TrimSpace(t.Artist) == "" {
		t.Artist = "Unknown Artist"
	}
	if strings.TrimSpace(t.Album) == "" {
		t.Album = "Unknown Album"
	}
}
