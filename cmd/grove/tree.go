package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	lifecycleadapter "github.com/aretw0/grove/pkg/adapters/lifecycle"
)

var (
	treeAll   bool
	treeWatch bool
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the note hierarchy",
	Long: `Print the note hierarchy, newest first. Collapsed notes hide their
children unless --all is given. With --watch the tree is redrawn whenever
another process changes the cache.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		app := openApp(ctx)
		defer closeApp(context.Background(), app)

		fmt.Print(renderTree(app.Session.Tree(), app.Session.Selected(), treeAll))
		if !treeWatch {
			return
		}

		events, err := app.Watch(ctx)
		if err != nil {
			closeApp(context.Background(), app)
			fatal("Failed to watch cache", err)
		}
		source := lifecycleadapter.NewSource(events)
		if err := source.Start(ctx); err != nil {
			closeApp(context.Background(), app)
			fatal("Failed to watch cache", err)
		}
		fmt.Fprintln(os.Stderr, "Watching for changes. Press Ctrl+C to stop.")
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-source.Events():
				if !ok {
					return
				}
				slog.Debug("cache changed", "event", event.String())
				change, _ := event.(lifecycleadapter.Change)
				if change.Kind == lifecycleadapter.ChangeConfig && !change.Deleted {
					if cfg, err := app.Storage.LoadConfig(ctx); err == nil {
						slog.Info("remote configuration changed", "endpoint", cfg.Redacted().Endpoint)
					}
				}
				if !shouldRedraw(change) {
					continue
				}
				if err := app.Reload(ctx); err != nil {
					slog.Warn("reload failed", "error", err)
					continue
				}
				fmt.Print("\033[H\033[2J")
				fmt.Print(renderTree(app.Session.Tree(), app.Session.Selected(), treeAll))
			}
		}
	},
}

// shouldRedraw reports whether a change alters the tree on screen. A removed
// notes file leaves the last drawn tree in place.
func shouldRedraw(change lifecycleadapter.Change) bool {
	return change.Kind == lifecycleadapter.ChangeNotes && !change.Deleted
}

func init() {
	rootCmd.AddCommand(treeCmd)
	treeCmd.Flags().BoolVarP(&treeAll, "all", "a", false, "Show children of collapsed notes")
	treeCmd.Flags().BoolVarP(&treeWatch, "watch", "w", false, "Redraw when the cache changes")
}
