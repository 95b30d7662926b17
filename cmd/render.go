package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	zone "github.com/lrstanley/bubblezone"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/zjrosen/spooky/internal/app"
	"github.com/zjrosen/spooky/internal/config"
	"github.com/zjrosen/spooky/internal/theme"
	"github.com/zjrosen/spooky/internal/view"
)

// renderWidth is used when stdout has no size.
const renderWidth = 100

var (
	renderHTML      bool
	renderWidthFlag int
	renderTheme     string
)

var renderCmd = &cobra.Command{
	Use:   "render [story]",
	Short: "Print a story page once and exit",
	Long: `Render a story page once to stdout, without the interactive loop.

Output is styled when stdout is a terminal and plain text otherwise.

Examples:
  # Render the default story
  spooky render

  # Render a specific story at 120 columns in the light theme
  spooky render midnight --width 120 --theme light

  # Dump the document tree as HTML
  spooky render uuid --html > uuid.html`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		cleanup, err := setupLogging("spooky-render")
		if err != nil {
			return err
		}
		defer cleanup()

		out := cmd.OutOrStdout()
		tty := isTerminal(out)
		width := renderWidthFlag
		if width <= 0 {
			width = terminalWidth(out)
		}
		opts := renderOptions{
			Fragment: fragmentArg(args),
			Width:    width,
			HTML:     renderHTML,
			TTY:      tty,
			Theme:    renderTheme,
		}
		return runRender(out, cfg, configFilePath(), opts)
	},
}

func init() {
	renderCmd.Flags().BoolVar(&renderHTML, "html", false, "write the document tree as HTML")
	renderCmd.Flags().IntVarP(&renderWidthFlag, "width", "w", 0, "page width (default: terminal width or 100)")
	renderCmd.Flags().StringVarP(&renderTheme, "theme", "t", "", "light or dark (default: saved preference)")
	rootCmd.AddCommand(renderCmd)
}

type renderOptions struct {
	Fragment string
	Width    int
	HTML     bool
	TTY      bool
	Theme    string
}

// runRender builds the app model synchronously, sizes it once and writes a
// single frame. The file watcher stays off and the preference is read only.
func runRender(w io.Writer, c config.Config, configPath string, opts renderOptions) error {
	c.Watch.Enabled = false
	c.UI.ShowFooter = false

	if !opts.TTY {
		lipgloss.SetColorProfile(termenv.Ascii)
		if c.UI.MarkdownStyle == "" || c.UI.MarkdownStyle == "auto" {
			c.UI.MarkdownStyle = "notty"
		}
	}

	ambient := ambientMode(c.Theme, lipgloss.HasDarkBackground)
	store, closeStore := openStore(c.Theme.StoragePath)
	defer closeStore()
	if opts.Theme != "" {
		mode, err := theme.ParseMode(opts.Theme)
		if err != nil {
			return err
		}
		// An explicit theme must not touch the saved preference.
		store = theme.NewMemoryStore()
		ambient = mode
	}

	zone.NewGlobal()
	model := app.New(app.Options{
		Config:     c,
		ConfigPath: configPath,
		Loader:     syncLoader{newLoader(c)},
		Store:      store,
		Ambient:    ambient,
		Fragment:   opts.Fragment,
	})
	defer func() { _ = model.Close() }()

	if opts.HTML {
		return view.WriteHTML(w, model.Document())
	}

	width := opts.Width
	if width <= 0 {
		width = renderWidth
	}
	model.Fit(width)
	_, err := fmt.Fprintln(w, trimTrailingBlank(model.View()))
	return err
}

// trimTrailingBlank drops the empty footer row and any padding below it.
func trimTrailingBlank(s string) string {
	lines := strings.Split(s, "\n")
	end := len(lines)
	for end > 0 && strings.TrimSpace(ansi.Strip(lines[end-1])) == "" {
		end--
	}
	return strings.Join(lines[:end], "\n")
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // G115: fd fits in int
}

func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return renderWidth
	}
	width, _, err := term.GetSize(int(f.Fd())) //nolint:gosec // G115: fd fits in int
	if err != nil || width <= 0 {
		return renderWidth
	}
	return width
}
