package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/usefultrainer/freeze/pkg/build"
	"github.com/usefultrainer/freeze/pkg/console"
	"github.com/usefultrainer/freeze/pkg/constants"
	"github.com/usefultrainer/freeze/pkg/envutil"
	"github.com/usefultrainer/freeze/pkg/logger"
)

var watchLog = logger.New("cli:watch")

type watchOptions struct {
	// Path is the file to watch. Its parent directory is what fsnotify
	// watches, so editors that replace the file on save are still seen.
	Path     string
	Debounce time.Duration
	OnChange func()
	// Ready, if set, is closed once the watcher is registered.
	Ready chan<- struct{}
}

// watchAndRebuild builds once, then rebuilds every time the input changes
// until the context is cancelled or the user presses Ctrl+C.
func watchAndRebuild(ctx context.Context, input string, opts BuildConfig, buildOpts build.Options) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	_ = runOnce(ctx, opts, buildOpts)

	debounce := time.Duration(envutil.GetIntFromEnv(constants.EnvWatchDebounceMillis,
		constants.DefaultWatchDebounceMillis, 0, 60000, watchLog)) * time.Millisecond

	fmt.Fprintln(opts.Stderr, console.FormatInfoMessage(fmt.Sprintf("Watching %s for changes (Ctrl+C to stop)", console.ToRelativePath(input))))

	err := watchFile(ctx, watchOptions{
		Path:     input,
		Debounce: debounce,
		OnChange: func() {
			fmt.Fprintln(opts.Stderr, console.FormatProgressMessage(fmt.Sprintf("%s changed, rebuilding...", console.ToRelativePath(input))))
			_ = runOnce(ctx, opts, buildOpts)
		},
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(opts.Stderr, console.FormatInfoMessage("Stopped watching"))
	return nil
}

// watchFile calls OnChange after each burst of writes to Path. OnChange runs
// on the watching goroutine, so rebuilds never overlap.
func watchFile(ctx context.Context, opts watchOptions) error {
	target, err := filepath.Abs(opts.Path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", opts.Path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(target)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	watchLog.Printf("Watching %s (target %s, debounce %s)", dir, target, opts.Debounce)
	if opts.Ready != nil {
		close(opts.Ready)
	}

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			watchLog.Print("Watch cancelled")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isRelevantEvent(event, target) {
				continue
			}
			watchLog.Printf("Relevant event: %s", event)
			if timer == nil {
				timer = time.NewTimer(opts.Debounce)
			} else {
				timer.Reset(opts.Debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			opts.OnChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			watchLog.Printf("Watcher error: %v", err)
		}
	}
}

func isRelevantEvent(event fsnotify.Event, target string) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return abs == target
}
