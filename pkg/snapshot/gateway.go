package snapshot

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/grove/pkg/core"
)

// Target is the collection an import replaces. *core.Session implements it.
type Target interface {
	Records() []core.NoteRecord
	Replace(records []core.NoteRecord)
}

// ConfirmFunc is asked before an import replaces the collection. incoming and
// current are record counts.
type ConfirmFunc func(incoming, current int) (bool, error)

// AlwaysConfirm accepts every import.
func AlwaysConfirm(int, int) (bool, error) { return true, nil }

// Gateway imports and exports a Target.
type Gateway struct {
	target Target
	logger *slog.Logger
}

// NewGateway creates a gateway over target. A nil logger is silent.
func NewGateway(target Target, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Gateway{target: target, logger: logger}
}

// Export writes the current collection.
func (g *Gateway) Export(w io.Writer, format Format) error {
	records := g.target.Records()
	if err := Export(w, records, format); err != nil {
		return err
	}
	g.logger.Info("notes exported", "notes", len(records), "format", format)
	return nil
}

// Import decodes r and, once confirm agrees, replaces the whole collection.
// A shape error or a declined confirmation leaves the collection untouched.
func (g *Gateway) Import(r io.Reader, format Format, confirm ConfirmFunc) ([]core.NoteRecord, error) {
	records, err := Decode(r, format)
	if err != nil {
		g.logger.Warn("import rejected", "error", err)
		return nil, err
	}
	if issues := core.CheckHierarchy(records); len(issues) > 0 {
		g.logger.Warn("imported hierarchy has issues", "count", len(issues), "first", issues[0].Error())
	}

	if confirm == nil {
		confirm = AlwaysConfirm
	}
	ok, err := confirm(len(records), len(g.target.Records()))
	if err != nil {
		return nil, fmt.Errorf("confirm import: %w", err)
	}
	if !ok {
		return nil, core.ErrImportCancelled
	}

	g.target.Replace(records)
	g.logger.Info("notes imported", "notes", len(records), "format", format)
	return records, nil
}
