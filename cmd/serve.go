package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Bitlatte/tome/internal/config"
	"github.com/Bitlatte/tome/internal/logging"
)

const rebuildDebounce = 500 * time.Millisecond

var serverPort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the site locally and rebuilds it on change",
	Long: `The serve command performs an initial build, then serves the output
directory over HTTP. Content, theme, and static directories are watched and
every change triggers a full rebuild.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return runServe(ctx, cmd.OutOrStdout(), osFs, serverPort)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 1313, "Port to serve the site on")
	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context, w io.Writer, fsys afero.Fs, port int) error {
	if _, err := runBuild(w, fsys); err != nil {
		return fmt.Errorf("initial build failed: %w", err)
	}
	cfg, err := config.Load(fsys, config.DefaultFile)
	if err != nil {
		return err
	}
	logger := logging.New(w, cfg.Verbose)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	for _, root := range []string{cfg.ContentDir, cfg.ThemeDir, cfg.StaticDir} {
		watchTree(watcher, fsys, root, logger)
	}

	rb := &rebuilder{build: func() error {
		_, err := runBuild(w, fsys)
		return err
	}, log: logger}
	go rb.watch(ctx, watcher, fsys)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           previewHandler(fsys, cfg.OutputDir),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info(fmt.Sprintf("Serving site on http://localhost%s", srv.Addr), logging.Path(cfg.OutputDir))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// watchTree adds root and all of its subdirectories to the watcher.
// fsnotify does not watch recursively.
func watchTree(watcher *fsnotify.Watcher, fsys afero.Fs, root string, logger *slog.Logger) {
	if ok, _ := afero.DirExists(fsys, root); !ok {
		logger.Debug("Directory not found, not watching", logging.Path(root))
		return
	}
	err := afero.Walk(fsys, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			logger.Warn("Error walking directory", logging.Path(p), logging.Error(err))
			return nil
		}
		if info.IsDir() {
			if err := watcher.Add(p); err != nil {
				logger.Warn("Failed to watch directory", logging.Path(p), logging.Error(err))
			}
		}
		return nil
	})
	if err != nil {
		logger.Warn("Error setting up watches", logging.Path(root), logging.Error(err))
	}
}

// rebuilder coalesces bursts of file events into a single full rebuild.
// Builds never overlap.
type rebuilder struct {
	build func() error
	log   *slog.Logger

	mu    sync.Mutex
	timer *time.Timer
	runMu sync.Mutex
}

func (r *rebuilder) watch(ctx context.Context, watcher *fsnotify.Watcher, fsys afero.Fs) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			r.log.Debug("Change detected", logging.Path(event.Name), slog.String("op", event.Op.String()))
			if event.Has(fsnotify.Create) {
				if ok, _ := afero.IsDir(fsys, event.Name); ok {
					watchTree(watcher, fsys, event.Name, r.log)
				}
			}
			r.trigger()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			r.log.Warn("Watcher error", logging.Error(err))
		}
	}
}

// trigger schedules a rebuild after the debounce window, restarting the
// window if one is already pending.
func (r *rebuilder) trigger() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = time.AfterFunc(rebuildDebounce, r.run)
}

func (r *rebuilder) run() {
	r.runMu.Lock()
	defer r.runMu.Unlock()
	r.log.Info("Rebuilding site")
	if err := r.build(); err != nil {
		r.log.Error("Rebuild failed", logging.Error(err))
		return
	}
	r.log.Info("Site rebuilt")
}

// previewHandler serves dir from fsys with caching disabled. Directories
// without an index page are not listed.
func previewHandler(fsys afero.Fs, dir string) http.Handler {
	files := http.FileServer(afero.NewHttpFs(fsys).Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p := r.URL.Path; len(p) > 1 && p[len(p)-1] == '/' {
			index := filepath.Join(dir, filepath.FromSlash(path.Clean(p)), "index.html")
			if ok, _ := afero.Exists(fsys, index); !ok {
				http.NotFound(w, r)
				return
			}
		}
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		files.ServeHTTP(w, r)
	})
}
