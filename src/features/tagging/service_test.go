package tagging

import (
	"context"
	"errors"
	"testing"

	"ytdlsync/src/features/config"
	"ytdlsync/src/features/syncing"
	"ytdlsync/src/music"
)

type mockReader struct {
	track *music.Track
	err   error
}

func (m *mockReader) ReadFileTags(ctx context.Context, filePath string) (*music.Track, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.track, nil
}

type mockWriter struct {
	written *music.Track
	path    string
	err     error
}

func (m *mockWriter) WriteFileTags(ctx context.Context, filePath string, track *music.Track) error {
	if m.err != nil {
		return m.err
	}
	m.path = filePath
	m.written = track
	return nil
}

type mockProvider struct {
	match   *Match
	err     error
	queried bool
}

func (m *mockProvider) Search(ctx context.Context, artist, title string) (*Match, error) {
	m.queried = true
	return m.match, m.err
}
func (m *mockProvider) Name() string    { return "mock" }
func (m *mockProvider) IsEnabled() bool { return true }

func newTestConfig(minScore int) *config.Manager {
	return config.NewManager(&config.Config{
		Tag: config.Tag{MinScore: minScore},
	})
}

func TestTag_FilenameFieldsApplied(t *testing.T) {
	reader := &mockReader{err: errors.New("no tags")}
	writer := &mockWriter{}
	service := NewService(reader, writer, nil, nil, newTestConfig(90))

	track, err := service.Tag(context.Background(), "/staging/abc123.mp3", "Daft Punk - One More Time.mp3")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if track.Artist != "Daft Punk" {
		t.Errorf("expected artist Daft Punk, got %q", track.Artist)
	}
	if track.Title != "One More Time" {
		t.Errorf("expected title One More Time, got %q", track.Title)
	}
	if writer.written == nil {
		t.Fatal("expected tags to be written")
	}
	if writer.written.Album != "Unknown Album" {
		t.Errorf("expected Unknown Album fallback, got %q", writer.written.Album)
	}
}

func TestTag_NoUsableTitle(t *testing.T) {
	reader := &mockReader{err: errors.New("no tags")}
	writer := &mockWriter{}
	service := NewService(reader, writer, nil, nil, newTestConfig(90))

	_, err := service.Tag(context.Background(), "/staging/abc123.mp3", " - .mp3")
	if !errors.Is(err, syncing.ErrTaggingFailed) {
		t.Fatalf("expected ErrTaggingFailed, got %v", err)
	}
	if writer.written != nil {
		t.Error("expected no tags to be written")
	}
}

func TestTag_ProviderOverridesAboveMinScore(t *testing.T) {
	reader := &mockReader{err: errors.New("no tags")}
	writer := &mockWriter{}
	provider := &mockProvider{match: &Match{
		Track: &music.Track{
			Title:  "One More Time",
			Artist: "Daft Punk",
			Album:  "Discovery",
			Year:   2001,
		},
		Score: 97,
	}}
	service := NewService(reader, writer, []MetadataProvider{provider}, nil, newTestConfig(90))

	track, err := service.Tag(context.Background(), "/staging/abc123.mp3", "Daft Punk - One More Time.mp3")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !provider.queried {
		t.Fatal("expected provider to be queried")
	}
	if track.Album != "Discovery" {
		t.Errorf("expected album Discovery, got %q", track.Album)
	}
	if track.Year != 2001 {
		t.Errorf("expected year 2001, got %d", track.Year)
	}
}

func TestTag_ProviderBelowMinScoreIgnored(t *testing.T) {
	reader := &mockReader{err: errors.New("no tags")}
	writer := &mockWriter{}
	provider := &mockProvider{match: &Match{
		Track: &music.Track{Title: "Something Else", Artist: "Somebody Else", Album: "Wrong Album"},
		Score: 42,
	}}
	service := NewService(reader, writer, []MetadataProvider{provider}, nil, newTestConfig(90))

	track, err := service.Tag(context.Background(), "/staging/abc123.mp3", "Daft Punk - One More Time.mp3")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if track.Artist != "Daft Punk" {
		t.Errorf("expected filename artist to survive, got %q", track.Artist)
	}
	if track.Album != "Unknown Album" {
		t.Errorf("expected Unknown Album fallback, got %q", track.Album)
	}
}

func TestTag_ProviderErrorIsNotFatal(t *testing.T) {
	reader := &mockReader{err: errors.New("no tags")}
	writer := &mockWriter{}
	provider := &mockProvider{err: errors.New("service down")}
	service := NewService(reader, writer, []MetadataProvider{provider}, nil, newTestConfig(90))

	track, err := service.Tag(context.Background(), "/staging/abc123.mp3", "Daft Punk - One More Time.mp3")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if track.Title != "One More Time" {
		t.Errorf("expected filename title, got %q", track.Title)
	}
}

func TestTag_WriterFailure(t *testing.T) {
	reader := &mockReader{err: errors.New("no tags")}
	writer := &mockWriter{err: errors.New("disk full")}
	service := NewService(reader, writer, nil, nil, newTestConfig(90))

	_, err := service.Tag(context.Background(), "/staging/abc123.mp3", "Daft Punk - One More Time.mp3")
	if !errors.Is(err, syncing.ErrTaggingFailed) {
		t.Fatalf("expected ErrTaggingFailed, got %v", err)
	}
}

func TestTag_EmbeddedTagsUsedWhenFilenameLacksArtist(t *testing.T) {
	reader := &mockReader{track: &music.Track{Title: "Embedded Title", Artist: "Embedded Artist", Album: "Embedded Album"}}
	writer := &mockWriter{}
	service := NewService(reader, writer, nil, nil, newTestConfig(90))

	track, err := service.Tag(context.Background(), "/staging/abc123.mp3", "One More Time.mp3")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	// The filename supplies a title, overriding the embedded one; the
	// embedded artist survives because the filename has none.
	if track.Title != "One More Time" {
		t.Errorf("expected filename title, got %q", track.Title)
	}
	if track.Artist != "Embedded Artist" {
		t.Errorf("expected embedded artist, got %q", track.Artist)
	}
}

func TestTag_StagedUIDNeverLeaksIntoTags(t *testing.T) {
	reader := &mockReader{err: errors.New("no tags")}
	writer := &mockWriter{}
	service := NewService(reader, writer, nil, nil, newTestConfig(90))

	// The staged file is named after the remote UID; the heuristics must run
	// on the server's filename, not the staged one.
	track, err := service.Tag(context.Background(), "/staging/8f3a1c.mp3", "Daft Punk - One More Time.mp3")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if track.Title == "8f3a1c" || track.Artist == "8f3a1c" {
		t.Fatalf("staged uid leaked into tags: %+v", track)
	}
	if track.Artist != "Daft Punk" || track.Title != "One More Time" {
		t.Errorf("expected Daft Punk / One More Time, got %q / %q", track.Artist, track.Title)
	}
	if writer.path != "/staging/8f3a1c.mp3" {
		t.Errorf("expected tags written into the staged file, got %q", writer.path)
	}
}

func TestTag_EmptyOriginalNameFallsBackToPath(t *testing.T) {
	reader := &mockReader{err: errors.New("no tags")}
	writer := &mockWriter{}
	service := NewService(reader, writer, nil, nil, newTestConfig(90))

	track, err := service.Tag(context.Background(), "/staging/Daft Punk - One More Time.mp3", "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if track.Artist != "Daft Punk" || track.Title != "One More Time" {
		t.Errorf("expected path fallback to parse, got %q / %q", track.Artist, track.Title)
	}
}
