package musicbrainz

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

const defaultCoverArtBaseURL = "https://coverartarchive.org"

// CoverArtClient fetches front cover artwork from the Cover Art Archive for
// a matched MusicBrainz release.
type CoverArtClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewCoverArtClient creates a new Cover Art Archive client.
func NewCoverArtClient() *CoverArtClient {
	return &CoverArtClient{
		baseURL:    defaultCoverArtBaseURL,
		httpClient: http.DefaultClient,
	}
}

// FetchFront returns the front cover image bytes for a release, or nil when
// the archive has no artwork for it.
func (c *CoverArtClient) FetchFront(ctx context.Context, releaseID string) ([]byte, error) {
	u := fmt.Sprintf("%s/release/%s/front-500", c.baseURL, releaseID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("cover art archive returned %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}
