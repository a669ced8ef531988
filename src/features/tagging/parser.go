package tagging

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	trackPrefixRe = regexp.MustCompile(`^\d{1,3}[\s.\-_]+`)
	junkSuffixRe  = regexp.MustCompile(`(?i)\s*[(\[][^)\]]*(official|video|audio|lyric|lyrics|visuali[sz]er|hd|hq|4k)[^)\]]*[)\]]\s*$`)
	spacesRe      = regexp.MustCompile(`\s+`)
)

// ParseFilename derives artist and title from a download filename following
// the "Artist - Title.ext" convention. The artist is empty when no delimiter
// is present; the title falls back to the whole base name.
func ParseFilename(name string) (artist, title string) {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = trackPrefixRe.ReplaceAllString(base, "")

	// Strip trailing "(Official Video)" style noise that video titles carry.
	for {
		stripped := junkSuffixRe.ReplaceAllString(base, "")
		if stripped == base {
			break
		}
		base = stripped
	}

	if artist, title, ok := strings.Cut(base, " - "); ok {
		return cleanField(artist), cleanField(title)
	}
	return "", cleanField(base)
}

func cleanField(s string) string {
	s = spacesRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
