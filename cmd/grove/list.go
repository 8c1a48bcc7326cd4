package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/aretw0/grove"
)

var (
	listJSON  bool
	listMatch string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes in collection order",
	Long: `List every stored note, including orphans the tree cannot place.
--match filters titles with a glob pattern (e.g. "Proj*" or "**/draft").`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if listMatch != "" && !doublestar.ValidatePattern(listMatch) {
			fatal("Invalid pattern", fmt.Errorf("%q", listMatch))
		}

		ctx := context.Background()
		app := openApp(ctx)
		defer closeApp(ctx, app)

		filtered := filterNotes(app.Session.Records(), listMatch)

		if listJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(filtered); err != nil {
				closeApp(ctx, app)
				fatal("Error encoding JSON", err)
			}
			return
		}

		for _, note := range filtered {
			title := note.Title
			if title == "" {
				title = untitled
			}
			fmt.Printf("%s - %s\n", note.ID, title)
		}
	},
}

// filterNotes keeps records whose title matches the glob pattern. An empty
// pattern keeps everything.
func filterNotes(records []grove.NoteRecord, pattern string) []grove.NoteRecord {
	if pattern == "" {
		return records
	}
	filtered := make([]grove.NoteRecord, 0, len(records))
	for _, note := range records {
		if doublestar.MatchUnvalidated(pattern, note.Title) {
			filtered = append(filtered, note)
		}
	}
	return filtered
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().StringVar(&listMatch, "match", "", "Filter by title glob")
}
