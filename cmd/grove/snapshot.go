package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aretw0/grove/pkg/core"
	"github.com/aretw0/grove/pkg/snapshot"
)

var (
	exportFormat string
	importFormat string
	importYes    bool
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export all notes to a file",
	Long: `Export the whole collection. The file defaults to
grove-notes-YYYY-MM-DD.json; use - for stdout. The format follows the
file extension unless --format is given.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := snapshot.ExportFilename(time.Now())
		if len(args) == 1 {
			path = args[0]
		}
		format := pickFormat(exportFormat, path)

		ctx := context.Background()
		app := openApp(ctx)
		defer closeApp(ctx, app)

		if path == "-" {
			if err := app.Gateway.Export(os.Stdout, format); err != nil {
				closeApp(ctx, app)
				fatal("Export failed", err)
			}
			return
		}

		f, err := os.Create(path)
		if err != nil {
			closeApp(ctx, app)
			fatal("Failed to create file", err)
		}
		err = app.Gateway.Export(f, format)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			closeApp(ctx, app)
			fatal("Export failed", err)
		}
		fmt.Printf("Exported %d note(s) to %s\n", len(app.Session.Records()), path)
	},
}

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Replace all notes with an exported file",
	Long: `Import a JSON or YAML array of notes, replacing the whole collection.
Asks for confirmation on a terminal; pass --yes in scripts. Use - for stdin.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := args[0]
		format := pickFormat(importFormat, path)

		var in io.Reader = os.Stdin
		if path != "-" {
			f, err := os.Open(path)
			if err != nil {
				fatal("Failed to open file", err)
			}
			defer f.Close()
			in = f
		}

		var confirm snapshot.ConfirmFunc = snapshot.AlwaysConfirm
		if !importYes {
			if path == "-" || !term.IsTerminal(int(os.Stdin.Fd())) {
				fatal("Import refused", errors.New("stdin is not a terminal, pass --yes to confirm"))
			}
			confirm = promptConfirm(os.Stdin, os.Stdout)
		}

		ctx := context.Background()
		app := openApp(ctx)
		defer closeApp(ctx, app)

		records, err := app.Gateway.Import(in, format, confirm)
		if errors.Is(err, core.ErrImportCancelled) {
			fmt.Println("Import cancelled.")
			return
		}
		if err != nil {
			closeApp(ctx, app)
			fatal("Import failed", err)
		}
		fmt.Printf("Imported %d note(s).\n", len(records))
	},
}

// pickFormat honours an explicit --format, else the file extension.
func pickFormat(flag, path string) snapshot.Format {
	switch strings.ToLower(flag) {
	case "yaml", "yml":
		return snapshot.FormatYAML
	case "json":
		return snapshot.FormatJSON
	case "":
		return snapshot.FormatFromPath(path)
	default:
		fatal("Unknown format", fmt.Errorf("%q (want json or yaml)", flag))
		return snapshot.FormatJSON
	}
}

// promptConfirm asks on out and reads a yes/no answer from in.
func promptConfirm(in io.Reader, out io.Writer) snapshot.ConfirmFunc {
	return func(incoming, current int) (bool, error) {
		fmt.Fprintf(out, "Replace %d note(s) with %d imported note(s)? [y/N] ", current, incoming)
		answer, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return true, nil
		default:
			return false, nil
		}
	}
}

func init() {
	rootCmd.AddCommand(exportCmd, importCmd)
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "json or yaml")
	importCmd.Flags().StringVar(&importFormat, "format", "", "json or yaml")
	importCmd.Flags().BoolVarP(&importYes, "yes", "y", false, "Skip the confirmation prompt")
}
