package config

// Config holds the application configuration.
type Config struct {
	LibraryPath string   `yaml:"libraryPath" validate:"required"`
	StagingPath string   `yaml:"stagingPath" validate:"required"`
	Lock        Lock     `yaml:"lock"`
	Ytdl        Ytdl     `yaml:"ytdl"`
	Plex        Plex     `yaml:"plex"`
	Tag         Tag      `yaml:"tag"`
	Logger      Logger   `yaml:"logger"`
	History     History  `yaml:"history"`
	Metrics     Metrics  `yaml:"metrics"`
	Telegram    Telegram `yaml:"telegram"`
}

// Lock holds the configuration for the run lock marker.
type Lock struct {
	Path string `yaml:"path" validate:"required"`
	// StaleAfterMinutes is how old a marker must be before a run may
	// reclaim it. Zero disables reclaiming.
	StaleAfterMinutes int `yaml:"stale_after_minutes"`
}

// Ytdl holds the configuration for the ytdl-material server.
type Ytdl struct {
	URL      string `yaml:"url"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	APIKey   string `yaml:"api_key"`
	// CleanupSynced controls whether files are deleted from the server
	// after they have been placed in the library.
	CleanupSynced bool `yaml:"cleanup_synced"`
}

// Plex holds the configuration for the Plex server.
type Plex struct {
	URL            string `yaml:"url"`
	Token          string `yaml:"token"`
	MusicSectionID string `yaml:"music_section_id"`
}

// Tag holds the configuration for metadata tagging providers.
type Tag struct {
	Providers map[string]Provider `yaml:"providers"`
	// MinScore is the minimum provider match score (0-100) before
	// provider fields override filename-derived ones.
	MinScore int     `yaml:"min_score"`
	Artwork  Artwork `yaml:"artwork"`
}

// Provider holds configuration for individual tagging providers.
type Provider struct {
	Enabled bool `yaml:"enabled"`
}

// Artwork holds configuration for artwork handling.
type Artwork struct {
	Embedded EmbeddedArtwork `yaml:"embedded"`
}

// EmbeddedArtwork holds configuration for embedded artwork.
type EmbeddedArtwork struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
	Quality int  `yaml:"quality"`
}

// Logger holds the configuration for the app logging.
type Logger struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Path   string `yaml:"path"`
}

// History holds the configuration for the run history database.
type History struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Metrics holds the configuration for the Pushgateway metrics push.
type Metrics struct {
	Enabled bool   `yaml:"enabled"`
	Gateway string `yaml:"gateway"`
	Job     string `yaml:"job"`
}

// Telegram holds the configuration for run summary notifications.
type Telegram struct {
	Enabled bool   `yaml:"enabled"`
	Token   string `yaml:"token"`
	ChatID  int64  `yaml:"chat_id"`
}
