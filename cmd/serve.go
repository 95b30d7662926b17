package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zjrosen/spooky/internal/log"
	"github.com/zjrosen/spooky/internal/server"
)

var (
	serveAddr  string
	serveDir   string
	serveQuiet bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a directory and the stories over HTTP",
	Long: `Serve a directory over HTTP for local development, with permissive CORS
headers and caching disabled. The story registry is published as JSON:

  /stories.json        every story, in the embedded document format
  /stories/<id>.json   one issue in GitHub's JSON shape

Point another spooky at it with --source http://localhost:8000/stories.json.

Examples:
  # Serve the current directory on port 8000
  spooky serve

  # Serve ./site on a random port
  spooky serve --dir site --addr 127.0.0.1:0`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8000", "address to listen on")
	serveCmd.Flags().StringVar(&serveDir, "dir", ".", "directory to serve")
	serveCmd.Flags().BoolVarP(&serveQuiet, "quiet", "q", false, "do not log requests to stderr")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// The server has no UI to corrupt, so logs go to stderr unless --debug
	// asked for the file.
	cleanup, err := setupLogging("spooky-serve")
	if err != nil {
		return err
	}
	defer cleanup()
	if !debugFlag && os.Getenv("SPOOKY_DEBUG") == "" && !serveQuiet {
		log.InitWriter(cmd.ErrOrStderr())
		defer log.Reset()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg, err := loadStories(ctx, cfg, configFilePath())
	if err != nil {
		log.Warn(log.CatServe, "Serving with degraded stories", "error", err)
	}

	srv, err := server.NewServer(server.ServerConfig{
		Addr:    serveAddr,
		Root:    serveDir,
		Stories: reg,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out, "🎃 Starting spooky GitHub issues server...")
	_, _ = fmt.Fprintf(out, "📂 Serving files from %s\n", serveDir)
	_, _ = fmt.Fprintf(out, "🌐 Server available at: %s\n", srv.URL())
	_, _ = fmt.Fprintf(out, "👻 Try: %s/stories.json\n", srv.URL())
	_, _ = fmt.Fprintln(out, "🔥 Press Ctrl+C to stop")

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("stopping server: %w", err)
	}
	return <-errCh
}
