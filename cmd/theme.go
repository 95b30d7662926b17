package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/zjrosen/spooky/internal/config"
	"github.com/zjrosen/spooky/internal/theme"
)

var themeCmd = &cobra.Command{
	Use:   "theme [toggle|light|dark]",
	Short: "Show or change the saved theme",
	Long: `Show or change the saved theme preference. The same preference is used by
the interactive page, where alt+D toggles it.

Examples:
  spooky theme          # print the current mode
  spooky theme toggle   # switch between light and dark
  spooky theme light`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"toggle", "light", "dark"},
	RunE: func(cmd *cobra.Command, args []string) error {
		action := ""
		if len(args) == 1 {
			action = args[0]
		}
		return runTheme(cmd.Context(), cmd.OutOrStdout(), cfg.Theme, action)
	},
}

func init() {
	rootCmd.AddCommand(themeCmd)
}

// runTheme applies action ("" shows, "toggle" flips, or a mode name) to
// the preference at c.StoragePath and prints the result.
func runTheme(ctx context.Context, w io.Writer, c config.ThemeConfig, action string) error {
	if c.StoragePath == "" && action != "" {
		return fmt.Errorf("theme.storage_path is empty, so the preference cannot be saved")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	store, closeStore := openStore(c.StoragePath)
	defer closeStore()
	ctl := theme.New(ctx, store, ambientMode(c, lipgloss.HasDarkBackground), nil)

	switch action {
	case "":
	case "toggle":
		if _, err := ctl.Toggle(ctx); err != nil {
			return fmt.Errorf("saving theme: %w", err)
		}
	default:
		mode, err := theme.ParseMode(action)
		if err != nil {
			return fmt.Errorf("unknown theme action %q: %w", action, err)
		}
		if err := ctl.Set(ctx, mode); err != nil {
			return fmt.Errorf("saving theme: %w", err)
		}
	}

	source := "saved"
	if !ctl.Persisted() {
		source = "terminal default"
	}
	_, err := fmt.Fprintf(w, "%s %s (%s)\n", ctl.Glyph(), ctl.Mode(), source)
	return err
}
