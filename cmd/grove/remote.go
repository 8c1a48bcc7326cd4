package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/grove"
)

var (
	remoteCredential string
	remoteDialect    string
)

var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Manage the remote JSON store",
}

var remoteSetCmd = &cobra.Command{
	Use:   "set [endpoint]",
	Short: "Mirror notes to an HTTP endpoint",
	Long: `Configure the remote store. The dialect is detected from the endpoint
when --dialect is omitted. The current notes are pushed immediately.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := grove.StorageConfig{
			Endpoint:   args[0],
			Credential: remoteCredential,
			Dialect:    grove.Dialect(remoteDialect),
		}
		if cfg.Dialect != "" && !cfg.Dialect.Valid() {
			fatal("Unknown dialect", fmt.Errorf("%q (want %s or %s)", remoteDialect, grove.DialectEnvelope, grove.DialectPlain))
		}
		if cfg.Credential == "" {
			cfg.Credential = os.Getenv("GROVE_REMOTE_CREDENTIAL")
		}

		ctx := context.Background()
		app := openApp(ctx)
		defer closeApp(ctx, app)

		if err := app.SetRemote(ctx, cfg); err != nil {
			closeApp(ctx, app)
			fatal("Failed to configure remote", err)
		}
		if err := app.Sync(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: initial push failed: %v\n", err)
		}
		fmt.Printf("Remote set to %s (%s).\n", app.Remote().Endpoint, app.Remote().Dialect)
	},
}

var remoteClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Return to local-only mode",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		app := openApp(ctx)
		defer closeApp(ctx, app)

		if err := app.SetRemote(ctx, grove.StorageConfig{}); err != nil {
			closeApp(ctx, app)
			fatal("Failed to clear remote", err)
		}
		fmt.Println("Remote cleared; notes stay local.")
	},
}

var remoteShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the remote configuration",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		app := openApp(ctx)
		defer closeApp(ctx, app)

		cfg := app.Remote()
		if !cfg.RemoteEnabled() {
			fmt.Println("No remote configured.")
			return
		}
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(cfg.Redacted()); err != nil {
			closeApp(ctx, app)
			fatal("Error encoding JSON", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(remoteCmd)
	remoteCmd.AddCommand(remoteSetCmd, remoteClearCmd, remoteShowCmd)
	remoteSetCmd.Flags().StringVar(&remoteCredential, "credential", "", "API key (default $GROVE_REMOTE_CREDENTIAL)")
	remoteSetCmd.Flags().StringVar(&remoteDialect, "dialect", "", "envelope or plain (default: detect)")
}
