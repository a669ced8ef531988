package ytdl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"ytdlsync/src/features/config"
	"ytdlsync/src/features/syncing"
)

// Client talks to a ytdl-material instance. Requests carry the API key as a
// query parameter; when a username/password is configured a JWT is obtained
// once per run and sent alongside it.
type Client struct {
	baseURL    string
	user       string
	password   string
	apiKey     string
	httpClient *http.Client

	token string
}

// NewClient creates a ytdl-material client from the configuration.
func NewClient(cfg config.Ytdl) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.URL, "/"),
		user:       cfg.User,
		password:   cfg.Password,
		apiKey:     cfg.APIKey,
		httpClient: http.DefaultClient,
	}
}

func (c *Client) authParams() url.Values {
	v := url.Values{}
	v.Set("apiKey", c.apiKey)
	if c.token != "" {
		v.Set("jwt", c.token)
	}
	return v
}

// ensureAuth obtains a JWT when credentials are configured. Without
// credentials the sync runs unauthenticated and sees all files.
func (c *Client) ensureAuth(ctx context.Context) error {
	if c.token != "" {
		return nil
	}
	if c.user == "" || c.password == "" {
		slog.Warn("No ytdl username/password configured, attempting unauthenticated sync")
		return nil
	}

	body, err := json.Marshal(map[string]string{"username": c.user, "password": c.password})
	if err != nil {
		return err
	}
	u := c.baseURL + "/api/auth/login?" + c.authParams().Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: login: %v", syncing.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: login returned %s", syncing.ErrRemoteUnavailable, resp.Status)
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("%w: decoding login response: %v", syncing.ErrRemoteUnavailable, err)
	}
	if result.Token == "" {
		return fmt.Errorf("%w: login returned no token", syncing.ErrRemoteUnavailable)
	}
	c.token = result.Token
	return nil
}

// ListPending returns the audio files the server reports as downloaded.
func (c *Client) ListPending(ctx context.Context) ([]syncing.RemoteFile, error) {
	if err := c.ensureAuth(ctx); err != nil {
		return nil, err
	}

	u := c.baseURL + "/api/getMp3s?" + c.authParams().Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: listing files: %v", syncing.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: listing returned %s", syncing.ErrRemoteUnavailable, resp.Status)
	}

	var result struct {
		Mp3s []syncing.RemoteFile `json:"mp3s"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decoding file list: %v", syncing.ErrRemoteUnavailable, err)
	}
	return result.Mp3s, nil
}

// Fetch streams one file into dir. The staged name is derived from the
// remote UID so files within a run cannot collide.
func (c *Client) Fetch(ctx context.Context, file syncing.RemoteFile, dir string) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Path))
	if ext == "" {
		ext = ".mp3"
	}
	dest := filepath.Join(dir, file.UID+ext)

	body, err := json.Marshal(map[string]string{"uid": file.UID, "type": "audio"})
	if err != nil {
		return "", err
	}
	u := c.baseURL + "/api/downloadFileFromServer?" + c.authParams().Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", syncing.ErrDownloadFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: server returned %s", syncing.ErrDownloadFailed, resp.Status)
	}

	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("%w: creating %s: %v", syncing.ErrDownloadFailed, dest, err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(dest)
		return "", fmt.Errorf("%w: writing %s: %v", syncing.ErrDownloadFailed, dest, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("%w: closing %s: %v", syncing.ErrDownloadFailed, dest, err)
	}
	return dest, nil
}

// Delete removes the file from the server.
func (c *Client) Delete(ctx context.Context, file syncing.RemoteFile) error {
	body, err := json.Marshal(map[string]string{"uid": file.UID})
	if err != nil {
		return err
	}
	u := c.baseURL + "/api/deleteFile?" + c.authParams().Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: deleting %s: %v", syncing.ErrRemoteUnavailable, file.UID, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: delete returned %s", syncing.ErrRemoteUnavailable, resp.Status)
	}
	return nil
}
