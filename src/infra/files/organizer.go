package files

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gosimple/unidecode"

	"ytdlsync/src/features/syncing"
	"ytdlsync/src/music"
)

// Organizer moves tagged files into the Artist/Album/Title layout under the
// library root. Destinations are never overwritten.
type Organizer struct {
	libraryPath string
}

// NewOrganizer creates a new file organizer rooted at libraryPath.
func NewOrganizer(libraryPath string) *Organizer {
	return &Organizer{libraryPath: libraryPath}
}

// Place computes `Artist/Album/Title.<ext>` for the track, creates
// intermediate directories and moves the file there. Fails with
// syncing.ErrConflict when the destination already exists.
func (o *Organizer) Place(ctx context.Context, srcPath string, track *music.Track) (string, error) {
	t := *track
	t.EnsureDefaults()

	ext := strings.ToLower(filepath.Ext(srcPath))
	if ext == "" {
		ext = ".mp3"
	}
	dest := filepath.Join(o.libraryPath,
		sanitizeComponent(t.Artist),
		sanitizeComponent(t.Album),
		sanitizeComponent(t.Title)+ext,
	)

	if _, err := os.Stat(dest); err == nil {
		return "", fmt.Errorf("%w: %s", syncing.ErrConflict, dest)
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to check destination: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	if err := moveFile(srcPath, dest); err != nil {
		return "", err
	}
	return dest, nil
}

// sanitizeComponent turns a tag value into a safe single path component.
func sanitizeComponent(s string) string {
	s = unidecode.Unidecode(s)
	s = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, s)
	s = strings.Join(strings.Fields(s), " ")
	s = strings.Trim(s, " .")
	if s == "" {
		return "_"
	}
	return s
}

// moveFile renames src to dst, falling back to a copy through a temporary
// file in the destination directory when the rename crosses filesystems.
// The final rename keeps partially written files invisible to the media
// server's scanner.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	tmp := dst + ".part"
	if err := copyFile(src, tmp); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to copy file: %w", err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to move file into place: %w", err)
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("failed to remove original file after copy: %w", err)
	}
	return nil
}

func copyFile(src, dst string) error {
	sourceFileStat, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !sourceFileStat.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", src)
	}

	source, err := os.Open(src)
	if err != nil {
		return err
	}
	defer source.Close()

	destination, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destination.Close()
	_, err = io.Copy(destination, source)
	return err
}
