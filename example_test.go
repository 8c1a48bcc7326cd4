package grove_test

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/aretw0/grove"
	"github.com/aretw0/grove/pkg/adapters/cache"
)

// Example_basic builds a small hierarchy and prints the materialized tree.
func Example_basic() {
	ctx := context.Background()
	n := 0
	app, err := grove.Open(ctx, "memory://",
		grove.WithCache(cache.NewMemory()),
		grove.WithSeed(nil),
		grove.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("note-%d", n)
		}),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer app.Close(ctx)

	root, _ := app.Session.Create("")
	title := "Projects"
	app.Session.Update(root, grove.Patch{Title: &title})

	child, _ := app.Session.Create(root)
	title = "grove"
	app.Session.Update(child, grove.Patch{Title: &title})

	for _, item := range app.Session.Tree() {
		printItem(item)
	}

	removed := app.Session.Delete(root)
	fmt.Printf("removed %d, left %d\n", removed, len(app.Session.Records()))
	// Output:
	// note-1 Projects
	//   note-2 grove
	// removed 2, left 0
}

func printItem(item *grove.NoteTreeItem) {
	fmt.Printf("%s%s %s\n", strings.Repeat("  ", item.Depth), item.ID, item.Title)
	for _, child := range item.Children {
		printItem(child)
	}
}
