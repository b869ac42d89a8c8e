package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lazypower/lineage/internal/config"
	"github.com/lazypower/lineage/internal/engine"
	"github.com/lazypower/lineage/internal/server"
	"github.com/lazypower/lineage/internal/watcher"
)

var serveWatch bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "Reload the family file when it changes (file storage only)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveWatch && cfg.Storage.Driver != config.DriverFile {
		return fmt.Errorf("--watch needs the file storage driver, have %q", cfg.Storage.Driver)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, desc, closeFn, err := openProvider(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	eng := engine.New()
	if err := eng.Load(ctx, provider); err != nil {
		return err
	}

	if serveWatch {
		w := watcher.New(cfg.Storage.Path, func() {
			if err := eng.Load(ctx, provider); err != nil {
				log.Printf("serve: reload %s: %v", cfg.Storage.Path, err)
			}
		})
		go func() {
			if err := w.Watch(ctx); err != nil && err != context.Canceled {
				log.Printf("serve: watcher stopped: %v", err)
			}
		}()
	}

	srv := server.New(eng, provider, VersionString()).WithMaxDepth(cfg.Query.MaxDepth)
	addr := cfg.ListenAddr()
	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv,
	}

	go func() {
		fmt.Fprintf(os.Stderr, "lineage serving on %s\n", addr)
		fmt.Fprintf(os.Stderr, "  storage: %s\n", desc)
		fmt.Fprintf(os.Stderr, "  people: %d\n", eng.Len())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "server error: %v\n", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	fmt.Fprintln(os.Stderr, "\nshutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if serveWatch {
		// The file is the source of truth while watching.
		return nil
	}
	return eng.Save(shutdownCtx, provider)
}
