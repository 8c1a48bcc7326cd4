package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/grove"
)

var (
	newParent  string
	newTitle   string
	newContent string

	editTitle   string
	editContent string
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a note",
	Long:  `Create an empty note at the root, or under --parent. Prints the new id.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		app := openApp(ctx)
		defer closeApp(ctx, app)

		parent := ""
		if newParent != "" {
			parent = mustResolveID(app, newParent)
		}
		id, err := app.Session.Create(parent)
		if err != nil {
			closeApp(ctx, app)
			fatal("Failed to create note", err)
		}

		var patch grove.Patch
		if cmd.Flags().Changed("title") {
			patch.Title = &newTitle
		}
		if cmd.Flags().Changed("content") {
			patch.Content = &newContent
		}
		if !patch.Empty() {
			app.Session.Update(id, patch)
		}
		fmt.Println(id)
	},
}

var editCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Update a note's title or content",
	Long:  `Update a note. Pass --content - to read the content from stdin.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var patch grove.Patch
		if cmd.Flags().Changed("title") {
			patch.Title = &editTitle
		}
		if cmd.Flags().Changed("content") {
			content := editContent
			if content == "-" {
				data, err := io.ReadAll(os.Stdin)
				if err != nil {
					fatal("Failed to read stdin", err)
				}
				content = string(data)
			}
			patch.Content = &content
		}
		if patch.Empty() {
			fmt.Println("Error: nothing to update, pass --title or --content")
			cmd.Usage()
			os.Exit(1)
		}

		ctx := context.Background()
		app := openApp(ctx)
		defer closeApp(ctx, app)

		id := mustResolveID(app, args[0])
		app.Session.Update(id, patch)
		fmt.Printf("Note '%s' updated.\n", id)
	},
}

var rmCmd = &cobra.Command{
	Use:     "rm [id]",
	Aliases: []string{"delete"},
	Short:   "Delete a note and all of its descendants",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		app := openApp(ctx)
		defer closeApp(ctx, app)

		id := mustResolveID(app, args[0])
		removed := app.Session.Delete(id)
		fmt.Printf("Removed %d note(s).\n", removed)
	},
}

var toggleCmd = &cobra.Command{
	Use:   "toggle [id]",
	Short: "Expand or collapse a note in the tree",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		app := openApp(ctx)
		defer closeApp(ctx, app)

		id := mustResolveID(app, args[0])
		app.Session.ToggleExpand(id)
		record, _ := app.Session.Get(id)
		state := "collapsed"
		if record.IsExpanded {
			state = "expanded"
		}
		fmt.Printf("Note '%s' %s.\n", id, state)
	},
}

func init() {
	rootCmd.AddCommand(newCmd, editCmd, rmCmd, toggleCmd)

	newCmd.Flags().StringVarP(&newParent, "parent", "p", "", "Parent note id (or unique prefix)")
	newCmd.Flags().StringVar(&newTitle, "title", "", "Note title")
	newCmd.Flags().StringVar(&newContent, "content", "", "Note content")

	editCmd.Flags().StringVar(&editTitle, "title", "", "New title")
	editCmd.Flags().StringVar(&editContent, "content", "", "New content, or - for stdin")
}

// resolveID accepts a full id or a prefix matching exactly one note.
func resolveID(records []grove.NoteRecord, ref string) (string, error) {
	var matches []string
	for _, r := range records {
		if r.ID == ref {
			return r.ID, nil
		}
		if strings.HasPrefix(r.ID, ref) {
			matches = append(matches, r.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no note matches %q", ref)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%q is ambiguous (%d notes)", ref, len(matches))
	}
}

func mustResolveID(app *grove.App, ref string) string {
	id, err := resolveID(app.Session.Records(), ref)
	if err != nil {
		closeApp(context.Background(), app)
		fatal("Unknown note", err)
	}
	return id
}
