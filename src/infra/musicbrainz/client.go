package musicbrainz

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"ytdlsync/src/features/tagging"
	"ytdlsync/src/music"
)

const defaultBaseURL = "https://musicbrainz.org/ws/2"

// userAgent identifies the application per MusicBrainz API etiquette.
const userAgent = "ytdlsync/1.0"

// Client implements tagging.MetadataProvider against the MusicBrainz
// recording search endpoint. Requests are throttled to one per second per
// MusicBrainz rate etiquette.
type Client struct {
	baseURL    string
	enabled    bool
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new MusicBrainz provider.
func NewClient(enabled bool) *Client {
	return &Client{
		baseURL:    defaultBaseURL,
		enabled:    enabled,
		httpClient: http.DefaultClient,
		limiter:    rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

func (c *Client) Name() string    { return "musicbrainz" }
func (c *Client) IsEnabled() bool { return c.enabled }

// Search queries the recording search endpoint and returns the best match,
// or nil when MusicBrainz knows nothing matching.
func (c *Client) Search(ctx context.Context, artist, title string) (*tagging.Match, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	query := `recording:"` + escapeLucene(title) + `"`
	if artist != "" {
		query += ` AND artist:"` + escapeLucene(artist) + `"`
	}
	u := c.baseURL + "/recording?query=" + url.QueryEscape(query) + "&fmt=json&limit=5"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("musicbrainz search returned %s", resp.Status)
	}

	var result struct {
		Recordings []struct {
			ID           string `json:"id"`
			Score        int    `json:"score"`
			Title        string `json:"title"`
			ArtistCredit []struct {
				Name string `json:"name"`
			} `json:"artist-credit"`
			FirstReleaseDate string `json:"first-release-date"`
			Releases         []struct {
				ID    string `json:"id"`
				Title string `json:"title"`
				Date  string `json:"date"`
				Media []struct {
					Track []struct {
						Number string `json:"number"`
					} `json:"track"`
				} `json:"media"`
			} `json:"releases"`
		} `json:"recordings"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding musicbrainz response: %w", err)
	}
	if len(result.Recordings) == 0 {
		return nil, nil
	}

	// Results come back sorted by score.
	rec := result.Recordings[0]
	track := &music.Track{Title: rec.Title}
	if len(rec.ArtistCredit) > 0 {
		track.Artist = rec.ArtistCredit[0].Name
	}
	match := &tagging.Match{Track: track, Score: rec.Score}

	track.Year = parseYear(rec.FirstReleaseDate)
	if len(rec.Releases) > 0 {
		rel := rec.Releases[0]
		track.Album = rel.Title
		match.ReleaseID = rel.ID
		if track.Year == 0 {
			track.Year = parseYear(rel.Date)
		}
		if len(rel.Media) > 0 && len(rel.Media[0].Track) > 0 {
			if n, err := strconv.Atoi(rel.Media[0].Track[0].Number); err == nil {
				track.TrackNumber = n
			}
		}
	}
	return match, nil
}

func parseYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	y, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return y
}

// escapeLucene escapes the characters the MusicBrainz Lucene query syntax
// treats specially.
func escapeLucene(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '+', '-', '&', '|', '!', '(', ')', '{', '}', '[', ']', '^', '"', '~', '*', '?', ':', '\\', '/':
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
