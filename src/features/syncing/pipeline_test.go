package syncing_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"ytdlsync/src/features/config"
	"ytdlsync/src/features/syncing"
	"ytdlsync/src/features/tagging"
	"ytdlsync/src/infra/files"
	"ytdlsync/src/infra/tag"
	"ytdlsync/src/infra/ytdl"
)

// Runs a real download through the real tagger and organizer: the staged file
// is named after the remote UID, so the tags and the final library path must
// come from the filename the server reported, not from the staged name.
func TestPipeline_ServerFilenameDrivesLibraryPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Minimal MPEG frame header, enough for the id3v2 writer.
		w.Write([]byte{0xFF, 0xFB, 0x90, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00})
	}))
	defer server.Close()

	cfgManager := config.NewManager(&config.Config{
		Tag: config.Tag{MinScore: 90},
	})
	client := ytdl.NewClient(config.Ytdl{URL: server.URL, APIKey: "key123"})
	tagService := tagging.NewService(tag.NewTagReader(), tag.NewTagWriter(cfgManager), nil, nil, cfgManager)
	library := t.TempDir()
	organizer := files.NewOrganizer(library)

	file := syncing.RemoteFile{
		UID:   "abc",
		Title: "Daft Punk - One More Time",
		Path:  "/audio/Daft Punk - One More Time.mp3",
	}
	staging := t.TempDir()

	staged, err := client.Fetch(context.Background(), file, staging)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if staged != filepath.Join(staging, "abc.mp3") {
		t.Fatalf("staged path: got %q", staged)
	}

	track, err := tagService.Tag(context.Background(), staged, filepath.Base(file.Path))
	if err != nil {
		t.Fatalf("tag: %v", err)
	}
	if track.Artist != "Daft Punk" || track.Title != "One More Time" {
		t.Fatalf("derived tags: got %q / %q", track.Artist, track.Title)
	}

	dest, err := organizer.Place(context.Background(), staged, track)
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	want := filepath.Join(library, "Daft Punk", "Unknown Album", "One More Time.mp3")
	if dest != want {
		t.Errorf("library path: got %q, want %q", dest, want)
	}
}
