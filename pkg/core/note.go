package core

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// NoteRecord is the persisted unit of the hierarchy.
// The collection is flat: hierarchy is expressed only through ParentID.
// An empty ParentID marks a root note and is serialized as null.
type NoteRecord struct {
	ID         string `json:"id" yaml:"id"`
	ParentID   string `json:"parentId" yaml:"parentId,omitempty"`
	Title      string `json:"title" yaml:"title"`
	Content    string `json:"content" yaml:"content"`
	CreatedAt  int64  `json:"createdAt" yaml:"createdAt"` // Unix milliseconds
	UpdatedAt  int64  `json:"updatedAt" yaml:"updatedAt"` // Unix milliseconds
	IsExpanded bool   `json:"isExpanded" yaml:"isExpanded"`
}

type noteRecordJSON struct {
	ID         string  `json:"id"`
	ParentID   *string `json:"parentId"`
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	CreatedAt  int64   `json:"createdAt"`
	UpdatedAt  int64   `json:"updatedAt"`
	IsExpanded bool    `json:"isExpanded"`
}

// MarshalJSON writes a root note's parent as null.
func (n NoteRecord) MarshalJSON() ([]byte, error) {
	wire := noteRecordJSON{
		ID:         n.ID,
		Title:      n.Title,
		Content:    n.Content,
		CreatedAt:  n.CreatedAt,
		UpdatedAt:  n.UpdatedAt,
		IsExpanded: n.IsExpanded,
	}
	if n.ParentID != "" {
		parent := n.ParentID
		wire.ParentID = &parent
	}
	return json.Marshal(wire)
}

// UnmarshalJSON accepts null, a missing field or a string for parentId.
func (n *NoteRecord) UnmarshalJSON(data []byte) error {
	var wire noteRecordJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*n = NoteRecord{
		ID:         wire.ID,
		Title:      wire.Title,
		Content:    wire.Content,
		CreatedAt:  wire.CreatedAt,
		UpdatedAt:  wire.UpdatedAt,
		IsExpanded: wire.IsExpanded,
	}
	if wire.ParentID != nil {
		n.ParentID = *wire.ParentID
	}
	return nil
}

// IsRoot reports whether the note has no parent.
func (n NoteRecord) IsRoot() bool {
	return n.ParentID == ""
}

// Patch carries the fields an update merges into a record. Nil fields are left untouched.
type Patch struct {
	Title      *string
	Content    *string
	IsExpanded *bool
}

// Empty reports whether the patch sets no field.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Content == nil && p.IsExpanded == nil
}

// NoteTreeItem is a NoteRecord placed in the materialized hierarchy.
// It is rebuilt from the flat collection and never persisted.
type NoteTreeItem struct {
	NoteRecord
	Depth    int             `json:"depth"`
	Children []*NoteTreeItem `json:"children"`
}

// Clock returns the current time. Injected so mutations stay deterministic in tests.
type Clock func() time.Time

// IDGenerator returns a fresh, globally unique record identifier.
type IDGenerator func() string

// NewID is the default IDGenerator.
func NewID() string {
	return uuid.NewString()
}

// Millis converts t to the Unix millisecond representation used by NoteRecord.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}

// CloneRecords returns an independent copy of records.
func CloneRecords(records []NoteRecord) []NoteRecord {
	if records == nil {
		return nil
	}
	out := make([]NoteRecord, len(records))
	copy(out, records)
	return out
}

// MarshalJSON flattens the record fields next to depth and children.
func (t NoteTreeItem) MarshalJSON() ([]byte, error) {
	record, err := json.Marshal(t.NoteRecord)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(record, &fields); err != nil {
		return nil, err
	}
	children := t.Children
	if children == nil {
		children = []*NoteTreeItem{}
	}
	fields["depth"] = t.Depth
	fields["children"] = children
	return json.Marshal(fields)
}
