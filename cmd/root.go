package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/spooky/internal/app"
	"github.com/zjrosen/spooky/internal/config"
	"github.com/zjrosen/spooky/internal/infrastructure/sqlite"
	"github.com/zjrosen/spooky/internal/log"
	"github.com/zjrosen/spooky/internal/story"
	"github.com/zjrosen/spooky/internal/theme"
	"github.com/zjrosen/spooky/internal/tracing"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text in input fields.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

// defaultConfigPath is where the first run writes its config.
const defaultConfigPath = ".spooky/config.yaml"

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
	cfg       = config.Defaults()
)

var rootCmd = &cobra.Command{
	Use:   "spooky",
	Short: "A haunted GitHub issue page in your terminal",
	Long: `Spooky renders fictional GitHub issues as a terminal page. Each story is
addressed by a location fragment (#uuid, #midnight); switch stories with
alt+1..9 or tab, toggle the theme with alt+D and press ? for help.`,
	Version: version,
	Args:    cobra.MaximumNArgs(1),
	RunE:    runApp,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/spooky/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"write debug logs to debug.log (or $SPOOKY_LOG)")
	rootCmd.PersistentFlags().String("source", "",
		"fetch stories from a URL or file instead of the built-in set")
	rootCmd.Flags().Bool("no-watch", false,
		"do not reload custom story files when they change")

	// Bind flags to viper
	_ = viper.BindPFlag("source.location", rootCmd.PersistentFlags().Lookup("source"))
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("default_story", defaults.DefaultStory)
	viper.SetDefault("source.mode", defaults.Source.Mode)
	viper.SetDefault("source.timeout", defaults.Source.Timeout)
	viper.SetDefault("ui.markdown_style", defaults.UI.MarkdownStyle)
	viper.SetDefault("ui.show_footer", defaults.UI.ShowFooter)
	viper.SetDefault("theme.storage_path", defaults.Theme.StoragePath)
	viper.SetDefault("watch.enabled", defaults.Watch.Enabled)
	viper.SetDefault("watch.debounce", defaults.Watch.Debounce)
	viper.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .spooky/config.yaml (current directory)
		// 2. ~/.config/spooky/config.yaml (user config)
		if _, err := os.Stat(defaultConfigPath); err == nil {
			viper.SetConfigFile(defaultConfigPath)
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "spooky"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		// No config file found anywhere - create default at .spooky/config.yaml
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			if writeErr := config.WriteDefaultConfig(defaultConfigPath); writeErr == nil {
				viper.SetConfigFile(defaultConfigPath)
				_ = viper.ReadInConfig()
			}
			// If write fails, just continue with defaults (no config file)
		}
	}

	_ = viper.Unmarshal(&cfg)

	// A --source flag implies fetch mode.
	if rootCmd.PersistentFlags().Changed("source") {
		cfg.Source.Mode = config.SourceFetch
	}
}

// configFilePath is where story edits are saved: the loaded config file,
// or the default location when none was found.
func configFilePath() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	return defaultConfigPath
}

// setupLogging enables the file logger for --debug or SPOOKY_DEBUG. The
// returned cleanup is safe to call when logging stayed off.
func setupLogging(prefix string) (func(), error) {
	if os.Getenv("SPOOKY_DEBUG") == "" && !debugFlag {
		return func() {}, nil
	}
	logPath := os.Getenv("SPOOKY_LOG")
	if logPath == "" {
		logPath = "debug.log"
	}
	cleanup, err := log.InitWithTeaLog(logPath, prefix)
	if err != nil {
		return nil, fmt.Errorf("initializing logging: %w", err)
	}
	log.Info(log.CatConfig, "Spooky starting", "debug", true, "logPath", logPath, "version", version)
	return cleanup, nil
}

// newTracing builds the tracing provider from config, applying the default
// traces file when the file exporter has no path.
func newTracing(c config.TracingConfig) (*tracing.Provider, error) {
	if !c.Enabled {
		return tracing.Noop(), nil
	}
	filePath := c.FilePath
	if filePath == "" && c.Exporter == tracing.ExporterFile {
		filePath = config.DefaultTracesFilePath()
	}
	provider, err := tracing.NewProvider(tracing.Config{
		Enabled:      c.Enabled,
		Exporter:     c.Exporter,
		FilePath:     filePath,
		OTLPEndpoint: c.OTLPEndpoint,
		SampleRate:   c.SampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("creating tracing provider: %w", err)
	}
	log.Debug(log.CatTrace, "Tracing provider created", "exporter", c.Exporter, "session", provider.SessionID())
	return provider, nil
}

// openStore opens the preference database. An empty path keeps the
// preference in memory; so does a database that fails to open, since a
// missing preference must never stop the page from showing.
func openStore(path string) (theme.Store, func()) {
	if path == "" {
		return theme.NewMemoryStore(), func() {}
	}
	db, err := sqlite.NewDB(path)
	if err != nil {
		log.ErrorErr(log.CatDB, "Preference database unavailable, using memory", err, "path", path)
		return theme.NewMemoryStore(), func() {}
	}
	return db.PreferenceRepository(), func() { _ = db.Close() }
}

// ambientMode is the configured theme.mode, or the detected terminal
// background when unset.
func ambientMode(c config.ThemeConfig, hasDark func() bool) theme.Mode {
	if mode, err := theme.ParseMode(c.Mode); err == nil {
		return mode
	}
	if hasDark == nil || hasDark() {
		return theme.Dark
	}
	return theme.Light
}

// newLoader picks the story loader for the source config.
func newLoader(c config.Config) story.Loader {
	if c.Source.Mode != config.SourceFetch {
		return story.EmbeddedLoader{}
	}
	return story.FetchLoader{
		Location:    c.Source.Location,
		StoryID:     c.Source.StoryID,
		DisplayName: c.Source.DisplayName,
		DefaultID:   c.DefaultStory,
		Base:        story.EmbeddedLoader{},
		Timeout:     c.Source.Timeout,
	}
}

// syncLoader runs an async loader inline, for commands without a UI loop.
type syncLoader struct {
	story.Loader
}

func (syncLoader) Async() bool { return false }

// loadStories builds the registry for the non-interactive commands.
func loadStories(ctx context.Context, c config.Config, configPath string) (*story.Registry, error) {
	reg, err := app.LoadStories(ctx, c, configPath, syncLoader{newLoader(c)}, nil)
	if err != nil {
		log.ErrorErr(log.CatStory, "Loading stories", err)
	}
	return reg, err
}

// fragmentArg accepts "uuid" or "#uuid".
func fragmentArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return strings.TrimPrefix(args[0], "#")
}

func runApp(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	cleanupLog, err := setupLogging("spooky")
	if err != nil {
		return err
	}
	defer cleanupLog()

	if noWatch, _ := cmd.Flags().GetBool("no-watch"); noWatch {
		cfg.Watch.Enabled = false
	}

	provider, err := newTracing(cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = provider.Shutdown(ctx)
	}()

	store, closeStore := openStore(cfg.Theme.StoragePath)
	defer closeStore()

	zone.NewGlobal()
	model := app.New(app.Options{
		Config:     cfg,
		ConfigPath: configFilePath(),
		Loader:     newLoader(cfg),
		Store:      store,
		Ambient:    ambientMode(cfg.Theme, lipgloss.HasDarkBackground),
		Tracer:     provider.Tracer(),
		Fragment:   fragmentArg(args),
	})
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err = p.Run()

	// Clean up watcher resources
	if closeErr := model.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
