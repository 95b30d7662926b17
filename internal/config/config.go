// Package config provides configuration types and defaults for spooky.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zjrosen/spooky/internal/log"
	"github.com/zjrosen/spooky/internal/story"
)

// Source modes.
const (
	SourceEmbedded = "embedded"
	SourceFetch    = "fetch"
)

// Config holds all configuration options for spooky.
type Config struct {
	DefaultStory string          `mapstructure:"default_story"`
	Source       SourceConfig    `mapstructure:"source"`
	UI           UIConfig        `mapstructure:"ui"`
	Theme        ThemeConfig     `mapstructure:"theme"`
	Watch        WatchConfig     `mapstructure:"watch"`
	Tracing      TracingConfig   `mapstructure:"tracing"`
	Stories      []StoryConfig   `mapstructure:"stories"`
	Flags        map[string]bool `mapstructure:"flags"`
}

// SourceConfig selects where the story registry comes from.
type SourceConfig struct {
	Mode        string        `mapstructure:"mode"`         // "embedded" (default) or "fetch"
	Location    string        `mapstructure:"location"`     // URL or path, required for fetch
	StoryID     string        `mapstructure:"story_id"`     // id for a fetched single issue
	DisplayName string        `mapstructure:"display_name"` // nav label for a fetched single issue
	Timeout     time.Duration `mapstructure:"timeout"`
}

// UIConfig holds user interface configuration options.
type UIConfig struct {
	MarkdownStyle string `mapstructure:"markdown_style"` // "auto" (default) follows the theme, or "dark"/"light"
	ShowFooter    bool   `mapstructure:"show_footer"`
}

// ThemeConfig holds theme options.
type ThemeConfig struct {
	// Mode is the ambient mode used when no preference is stored.
	// "" detects the terminal background.
	Mode string `mapstructure:"mode"`
	// StoragePath is the preference database. "" keeps the preference in
	// memory for the session.
	StoragePath string `mapstructure:"storage_path"`
}

// WatchConfig controls reloading of custom story files.
type WatchConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Debounce time.Duration `mapstructure:"debounce"`
}

// TracingConfig holds tracing options.
type TracingConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	Exporter     string  `mapstructure:"exporter"` // none, file, stdout, otlp
	FilePath     string  `mapstructure:"file_path"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	SampleRate   float64 `mapstructure:"sample_rate"`
}

// StoryConfig registers a custom story from an issue JSON file.
type StoryConfig struct {
	ID          string `mapstructure:"id" yaml:"id"`
	Name        string `mapstructure:"name" yaml:"name"`
	Description string `mapstructure:"description" yaml:"description,omitempty"`
	Path        string `mapstructure:"path" yaml:"path"`
}

// DefaultStoryID is the story shown for an empty fragment.
const DefaultStoryID = "uuid"

// DefaultTracesFilePath returns ~/.config/spooky/traces/traces.jsonl, or ""
// if the home directory is unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "spooky", "traces", "traces.jsonl")
}

// DefaultStoragePath returns ~/.config/spooky/preferences.db, or "" if the
// home directory is unavailable.
func DefaultStoragePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "spooky", "preferences.db")
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		DefaultStory: DefaultStoryID,
		Source: SourceConfig{
			Mode:    SourceEmbedded,
			Timeout: 10 * time.Second,
		},
		UI: UIConfig{
			MarkdownStyle: "auto",
			ShowFooter:    true,
		},
		Theme: ThemeConfig{
			StoragePath: DefaultStoragePath(),
		},
		Watch: WatchConfig{
			Enabled:  true,
			Debounce: 300 * time.Millisecond,
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := story.ValidateID(c.DefaultStory); err != nil {
		return fmt.Errorf("default_story: %w", err)
	}
	if err := ValidateSource(c.Source); err != nil {
		return err
	}
	if err := ValidateUI(c.UI); err != nil {
		return err
	}
	if err := ValidateTheme(c.Theme); err != nil {
		return err
	}
	if err := ValidateStories(c.Stories); err != nil {
		return err
	}
	return ValidateTracing(c.Tracing)
}

// ValidateSource checks the story source.
func ValidateSource(s SourceConfig) error {
	switch s.Mode {
	case "", SourceEmbedded:
	case SourceFetch:
		if s.Location == "" {
			return fmt.Errorf("source.location is required when source.mode is %q", SourceFetch)
		}
		if s.StoryID != "" {
			if err := story.ValidateID(s.StoryID); err != nil {
				return fmt.Errorf("source.story_id: %w", err)
			}
		}
	default:
		return fmt.Errorf("source.mode must be %q or %q, got %q", SourceEmbedded, SourceFetch, s.Mode)
	}
	if s.Timeout < 0 {
		return fmt.Errorf("source.timeout must not be negative, got %s", s.Timeout)
	}
	return nil
}

// ValidateUI checks UI options.
func ValidateUI(u UIConfig) error {
	switch u.MarkdownStyle {
	case "", "auto", "dark", "light", "notty":
		return nil
	default:
		return fmt.Errorf("ui.markdown_style must be \"auto\", \"dark\", \"light\" or \"notty\", got %q", u.MarkdownStyle)
	}
}

// ValidateTheme checks theme options.
func ValidateTheme(t ThemeConfig) error {
	switch t.Mode {
	case "", "light", "dark":
		return nil
	default:
		return fmt.Errorf("theme.mode must be \"light\", \"dark\" or empty, got %q", t.Mode)
	}
}

// ValidateStories checks custom story entries: ids are well formed and
// unique, and every entry names a file.
func ValidateStories(stories []StoryConfig) error {
	seen := make(map[string]bool, len(stories))
	for i, s := range stories {
		if err := story.ValidateID(s.ID); err != nil {
			return fmt.Errorf("stories[%d].id: %w", i, err)
		}
		if seen[s.ID] {
			return fmt.Errorf("stories[%d].id %q is duplicated", i, s.ID)
		}
		seen[s.ID] = true
		if s.Path == "" {
			return fmt.Errorf("stories[%d].path is required", i)
		}
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(tracing TracingConfig) error {
	if tracing.SampleRate < 0.0 || tracing.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tracing.SampleRate)
	}

	if tracing.Exporter != "" {
		switch tracing.Exporter {
		case "none", "file", "stdout", "otlp":
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tracing.Exporter)
		}
	}

	if tracing.Enabled {
		if tracing.Exporter == "file" && tracing.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if tracing.Exporter == "otlp" && tracing.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}

	return nil
}

// ResolvePath makes a story path relative to the config file's directory.
func ResolvePath(configPath, path string) string {
	if path == "" || filepath.IsAbs(path) || configPath == "" {
		return path
	}
	return filepath.Join(filepath.Dir(configPath), path)
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# Spooky GitHub Issues configuration

# Story shown when the location fragment is empty or unknown
default_story: uuid

# Where the stories come from
source:
  mode: embedded            # "embedded" (built in) or "fetch"
  # location: https://example.com/stories.json   # URL, file:// URL or path (fetch only)
  # story_id: custom        # id for a fetched single issue (default: default_story)
  # display_name: "👻 Custom"
  timeout: 10s

# UI settings
ui:
  markdown_style: auto      # "auto" follows the theme, or "dark" / "light"
  show_footer: true         # Show the key hint line at the bottom

# Theme
theme:
  # mode: dark              # Ambient mode when no preference is saved (default: detect)
  # storage_path: ~/.config/spooky/preferences.db

# Reload custom story files when they change on disk
watch:
  enabled: true
  debounce: 300ms

# Custom stories, added to the nav after the built-in ones.
# Each file holds one issue in GitHub's JSON shape. Paths are relative to
# this file. 'spooky stories add' appends entries here.
# stories:
#   - id: poltergeist
#     name: "👻 Poltergeist"
#     description: "tests that pass only when nobody watches"
#     path: stories/poltergeist.json

# Feature flags
# flags:
#   reply-highlight: true   # Mark comments starting with @ as replies
#   witching-hour: true     # Tint the midnight story near midnight
#   location-bar: true      # Enable the / location bar

# Tracing
# tracing:
#   enabled: false
#   exporter: file          # none, file, stdout, otlp
#   file_path: ~/.config/spooky/traces/traces.jsonl
#   otlp_endpoint: localhost:4317
#   sample_rate: 1.0
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
