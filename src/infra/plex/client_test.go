package plex

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"ytdlsync/src/features/syncing"
)

func TestRefreshSection(t *testing.T) {
	var gotPath, gotToken string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.URL.Query().Get("X-Plex-Token")
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret")
	if err := client.RefreshSection(context.Background(), "7"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if gotPath != "/library/sections/7/refresh" {
		t.Errorf("path: got %q", gotPath)
	}
	if gotToken != "secret" {
		t.Errorf("token: got %q", gotToken)
	}
}

func TestRefreshSection_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	err := NewClient(server.URL, "bad").RefreshSection(context.Background(), "7")
	if !errors.Is(err, syncing.ErrPlexUnavailable) {
		t.Fatalf("expected ErrPlexUnavailable, got %v", err)
	}
}

func TestListSections(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/library/sections" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Accept") != "application/json" {
			t.Error("expected Accept: application/json")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"MediaContainer":{"Directory":[
			{"key":"1","title":"Movies","type":"movie"},
			{"key":"7","title":"Music","type":"artist"}
		]}}`))
	}))
	defer server.Close()

	sections, err := NewClient(server.URL, "secret").ListSections(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(sections))
	}
	if sections[1].ID != "7" || sections[1].Title != "Music" {
		t.Errorf("unexpected section: %+v", sections[1])
	}
}
