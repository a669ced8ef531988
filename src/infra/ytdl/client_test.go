package ytdl

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"ytdlsync/src/features/config"
	"ytdlsync/src/features/syncing"
)

func newTestClient(serverURL string) *Client {
	return NewClient(config.Ytdl{
		URL:      serverURL,
		User:     "admin",
		Password: "pass",
		APIKey:   "key123",
	})
}

func TestListPending(t *testing.T) {
	var loginCalls, listCalls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("apiKey") != "key123" {
			t.Errorf("missing apiKey param on %s", r.URL.Path)
		}
		switch r.URL.Path {
		case "/api/auth/login":
			loginCalls++
			var creds map[string]string
			if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
				t.Fatal(err)
			}
			if creds["username"] != "admin" || creds["password"] != "pass" {
				t.Errorf("unexpected credentials: %v", creds)
			}
			json.NewEncoder(w).Encode(map[string]string{"token": "jwt-token"})
		case "/api/getMp3s":
			listCalls++
			if r.URL.Query().Get("jwt") != "jwt-token" {
				t.Error("expected the jwt param after login")
			}
			json.NewEncoder(w).Encode(map[string]any{
				"mp3s": []map[string]any{
					{"uid": "a1", "title": "Song A", "path": "audio/Song A.mp3"},
					{"uid": "b2", "title": "Song B", "path": "audio/Song B.m4a"},
				},
			})
		default:
			t.Errorf("unexpected request to %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	files, err := client.ListPending(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if loginCalls != 1 {
		t.Errorf("expected exactly one login, got %d", loginCalls)
	}
	if listCalls != 1 || len(files) != 2 {
		t.Fatalf("expected 2 files from one listing, got %d from %d calls", len(files), listCalls)
	}
	if files[0].UID != "a1" || files[0].Title != "Song A" {
		t.Errorf("unexpected first file: %+v", files[0])
	}
}

func TestListPending_ServerDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(config.Ytdl{URL: server.URL, APIKey: "key123"})
	_, err := client.ListPending(context.Background())
	if !errors.Is(err, syncing.ErrRemoteUnavailable) {
		t.Fatalf("expected ErrRemoteUnavailable, got %v", err)
	}
}

func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/downloadFileFromServer" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if body["uid"] != "a1" || body["type"] != "audio" {
			t.Errorf("unexpected request body: %v", body)
		}
		w.Write([]byte("audio-bytes"))
	}))
	defer server.Close()

	client := NewClient(config.Ytdl{URL: server.URL, APIKey: "key123"})
	dir := t.TempDir()

	staged, err := client.Fetch(context.Background(), syncing.RemoteFile{UID: "a1", Path: "audio/Song A.mp3"}, dir)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if want := filepath.Join(dir, "a1.mp3"); staged != want {
		t.Errorf("staged path: got %q, want %q", staged, want)
	}
	data, err := os.ReadFile(staged)
	if err != nil || string(data) != "audio-bytes" {
		t.Errorf("staged content wrong: %q, %v", data, err)
	}
}

func TestFetch_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(config.Ytdl{URL: server.URL, APIKey: "key123"})
	dir := t.TempDir()

	_, err := client.Fetch(context.Background(), syncing.RemoteFile{UID: "a1", Path: "audio/a.mp3"}, dir)
	if !errors.Is(err, syncing.ErrDownloadFailed) {
		t.Fatalf("expected ErrDownloadFailed, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "a1.mp3")); !os.IsNotExist(statErr) {
		t.Error("expected no staged file after a failed download")
	}
}

func TestDelete(t *testing.T) {
	var deleted string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/deleteFile" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		deleted = body["uid"]
		w.Write([]byte("true"))
	}))
	defer server.Close()

	client := NewClient(config.Ytdl{URL: server.URL, APIKey: "key123"})
	if err := client.Delete(context.Background(), syncing.RemoteFile{UID: "a1"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if deleted != "a1" {
		t.Errorf("expected uid a1 to be deleted, got %q", deleted)
	}
}

func TestDelete_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(config.Ytdl{URL: server.URL, APIKey: "key123"})
	err := client.Delete(context.Background(), syncing.RemoteFile{UID: "a1"})
	if !errors.Is(err, syncing.ErrRemoteUnavailable) {
		t.Fatalf("expected ErrRemoteUnavailable, got %v", err)
	}
}
