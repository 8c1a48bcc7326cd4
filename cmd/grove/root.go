package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/grove"
	"github.com/aretw0/grove/internal/platform"
)

// CacheEnv overrides the cache location when --cache is not given.
const CacheEnv = "GROVE_CACHE"

var (
	verbose      bool
	cacheDSN     string
	settingsPath string
	debounce     time.Duration
	settings     platform.Settings
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "grove",
	Short: "A hierarchical note store with debounced remote sync",
	Long: `Grove keeps a tree of notes in a local cache and mirrors it to an
optional HTTP JSON store. Local writes are immediate; remote writes are
debounced so a burst of edits becomes one request.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		path := settingsPath
		if path == "" {
			path = platform.DefaultSettingsPath()
		}
		loaded, err := platform.LoadSettings(path)
		if err != nil {
			fatal("Failed to load settings", err)
		}
		settings = loaded

		level := settings.Level()
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&cacheDSN, "cache", "", "Cache DSN or directory (default $GROVE_CACHE, settings, or .grove)")
	rootCmd.PersistentFlags().StringVar(&settingsPath, "config", "", "Settings file (YAML or TOML)")
	rootCmd.PersistentFlags().DurationVar(&debounce, "debounce", 0, "Quiet window before a remote write")
}

// resolveCache applies flag, environment, settings and default in that order.
func resolveCache() string {
	if cacheDSN != "" {
		return cacheDSN
	}
	if env := os.Getenv(CacheEnv); env != "" {
		return env
	}
	if settings.Cache != "" {
		return settings.Cache
	}
	cwd, err := os.Getwd()
	if err != nil {
		fatal("Failed to get CWD", err)
	}
	return platform.DefaultCacheDSN(cwd)
}

// openApp opens the notes at the resolved cache. Callers must closeApp.
func openApp(ctx context.Context) *grove.App {
	window := debounce
	if window == 0 {
		d, err := settings.DebounceDuration()
		if err != nil {
			fatal("Invalid settings", err)
		}
		window = d
	}

	app, err := grove.Open(ctx, resolveCache(),
		grove.WithLogger(slog.Default()),
		grove.WithDebounce(window),
	)
	if err != nil {
		fatal("Failed to open notes", err)
	}
	return app
}

// closeApp flushes pending writes. A failed remote write is reported but the
// local cache already holds the change.
func closeApp(ctx context.Context, app *grove.App) {
	if err := app.Close(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
}
