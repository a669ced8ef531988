package plex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"ytdlsync/src/features/syncing"
)

// Client issues library requests against a Plex server.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Section is a Plex library section.
type Section struct {
	ID    string
	Title string
}

// NewClient creates a new Plex client.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
		httpClient: http.DefaultClient,
	}
}

// RefreshSection asks Plex to rescan a library section.
func (c *Client) RefreshSection(ctx context.Context, sectionID string) error {
	u := fmt.Sprintf("%s/library/sections/%s/refresh?X-Plex-Token=%s",
		c.baseURL, url.PathEscape(sectionID), url.QueryEscape(c.token))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", syncing.ErrPlexUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: refresh returned %s", syncing.ErrPlexUnavailable, resp.Status)
	}
	return nil
}

// ListSections returns the library sections registered in Plex, so the
// operator can find the music section ID.
func (c *Client) ListSections(ctx context.Context) ([]Section, error) {
	u := fmt.Sprintf("%s/library/sections?X-Plex-Token=%s", c.baseURL, url.QueryEscape(c.token))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", syncing.ErrPlexUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: listing sections returned %s", syncing.ErrPlexUnavailable, resp.Status)
	}

	var result struct {
		MediaContainer struct {
			Directory []struct {
				Key   string `json:"key"`
				Title string `json:"title"`
			} `json:"Directory"`
		} `json:"MediaContainer"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decoding sections: %v", syncing.ErrPlexUnavailable, err)
	}

	sections := make([]Section, 0, len(result.MediaContainer.Directory))
	for _, d := range result.MediaContainer.Directory {
		sections = append(sections, Section{ID: d.Key, Title: d.Title})
	}
	return sections, nil
}
