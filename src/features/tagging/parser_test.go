package tagging

import "testing"

func TestParseFilename(t *testing.T) {
	cases := []struct {
		name   string
		in     string
		artist string
		title  string
	}{
		{"artist dash title", "Daft Punk - One More Time.mp3", "Daft Punk", "One More Time"},
		{"full path", "/downloads/audio/Daft Punk - One More Time.mp3", "Daft Punk", "One More Time"},
		{"no delimiter", "One More Time.mp3", "", "One More Time"},
		{"track number prefix", "01 - Queen - Bohemian Rhapsody.mp3", "Queen", "Bohemian Rhapsody"},
		{"dash inside title", "Orbital - Halcyon - On and On.mp3", "Orbital", "Halcyon - On and On"},
		{"official video suffix", "Daft Punk - One More Time (Official Video).mp3", "Daft Punk", "One More Time"},
		{"bracketed suffix", "Daft Punk - One More Time [Official Audio].flac", "Daft Punk", "One More Time"},
		{"stacked suffixes", "Artist - Song (Lyrics) [HD].mp3", "Artist", "Song"},
		{"extra whitespace", "  Daft Punk   -   One  More Time .mp3", "Daft Punk", "One More Time"},
		{"hyphen without spaces stays", "AC-DC Thunderstruck.mp3", "", "AC-DC Thunderstruck"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			artist, title := ParseFilename(tc.in)
			if artist != tc.artist {
				t.Errorf("artist: got %q, want %q", artist, tc.artist)
			}
			if title != tc.title {
				t.Errorf("title: got %q, want %q", title, tc.title)
			}
		})
	}
}
