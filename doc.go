// Package grove is the composition root for the grove note hierarchy.
//
// It connects the core model (flat note records, tree materialization,
// cascading mutations) with the persistence layer: an always-available local
// cache and an optional remote document store reached over HTTP.
//
// Features:
//
//   - **Flat Records, Derived Tree**: notes reference their parent by id; the tree is rebuilt on demand and never persisted.
//   - **Cascading Delete**: removing a note removes its whole subtree in one state change.
//   - **Local First**: every change reaches the local cache before any remote write is attempted.
//   - **Debounced Remote Sync**: bursts of edits collapse into one trailing write, with visible status.
//   - **Pluggable Caches**: file, bbolt, Postgres or memory, selected by DSN.
//   - **Portable Snapshots**: JSON or YAML export, shape-checked import.
//
// Usage:
//
//	app, err := grove.Open(ctx, "~/.cache/grove",
//		grove.WithLogger(logger),
//		grove.WithDebounce(time.Second),
//	)
//	defer app.Close(ctx)
//
//	id, err := app.Session.Create("")
//	app.Session.Update(id, grove.Patch{Title: &title})
package grove
