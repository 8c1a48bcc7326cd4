package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/grove"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show where notes were loaded from and the sync state",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		app := openApp(ctx)
		defer closeApp(ctx, app)

		state := app.State().(grove.AppState)
		if statusJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(state); err != nil {
				closeApp(ctx, app)
				fatal("Error encoding JSON", err)
			}
			return
		}

		fmt.Printf("Notes:    %d (%d visible, %d roots)\n", state.Session.Notes, state.Session.Visible, state.Session.Roots)
		fmt.Printf("Loaded:   %s\n", state.Source)
		if state.Remote.RemoteEnabled() {
			fmt.Printf("Remote:   %s (%s)\n", state.Remote.Endpoint, state.Remote.Dialect)
		} else {
			fmt.Println("Remote:   none (local only)")
		}
		fmt.Printf("Sync:     %s\n", renderStatus(string(state.Sync.Status)))
		if state.Sync.Error != "" {
			fmt.Printf("Sync err: %s\n", state.Sync.Error)
		}
		if state.Sync.LoadError != "" {
			fmt.Printf("Load err: %s\n", state.Sync.LoadError)
		}
		if state.Session.Issues > 0 {
			fmt.Printf("Issues:   %d (run 'grove check')\n", state.Session.Issues)
		}
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report orphaned, cyclic or duplicate notes",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		app := openApp(ctx)
		defer closeApp(ctx, app)

		issues := grove.CheckHierarchy(app.Session.Records())
		if len(issues) == 0 {
			fmt.Println("Hierarchy is clean.")
			return
		}
		for _, issue := range issues {
			fmt.Printf("%s\t%s\n", issue.Kind, issue.ID)
		}
		closeApp(ctx, app)
		os.Exit(1)
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push the notes to the remote now",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		app := openApp(ctx)
		defer closeApp(ctx, app)

		if !app.Remote().RemoteEnabled() {
			fmt.Println("No remote configured; notes are saved locally.")
			return
		}
		fmt.Println("Syncing...")
		if err := app.Sync(ctx); err != nil {
			closeApp(ctx, app)
			fmt.Fprintf(os.Stderr, "Error: Sync failed: %v\n", err)
			fmt.Println("Tip: check the endpoint and credential with 'grove remote show'. Local changes are kept.")
			os.Exit(1)
		}
		fmt.Println("Sync completed successfully.")
	},
}

func init() {
	rootCmd.AddCommand(statusCmd, checkCmd, syncCmd)
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output introspection state as JSON")
}
