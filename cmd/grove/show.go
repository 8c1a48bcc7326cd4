package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	showJSON bool
	showRaw  bool
)

var showCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a note",
	Long: `Show a note's title and content. Content is rendered as Markdown when
stdout is a terminal; use --raw for the stored text or --json for the record.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		app := openApp(ctx)
		defer closeApp(ctx, app)

		id := mustResolveID(app, args[0])
		note, _ := app.Session.Get(id)

		if showJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(note); err != nil {
				closeApp(ctx, app)
				fatal("Error encoding JSON", err)
			}
			return
		}

		title := note.Title
		if title == "" {
			title = untitled
		}
		if showRaw || !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Printf("# %s\n\n%s\n", title, note.Content)
			return
		}

		out, err := glamour.Render("# "+title+"\n\n"+note.Content, "dark")
		if err != nil {
			fmt.Printf("# %s\n\n%s\n", title, note.Content)
			return
		}
		fmt.Print(out)
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Output the record as JSON")
	showCmd.Flags().BoolVar(&showRaw, "raw", false, "Print content without Markdown rendering")
}
