package core

import "time"

const (
	welcomeTitle   = "Welcome to grove"
	welcomeContent = "# Welcome\n\nNotes live in a tree. Create a child under any note, collapse branches you are not using, and everything is saved to the local cache as you type.\n\nConfigure a remote endpoint with `grove remote set` to keep a copy elsewhere."
	basicsTitle    = "Formatting"
	basicsContent  = "Content is **markdown**. Inline math such as $e^{i\\pi} + 1 = 0$ is kept verbatim."
)

// SeedNotes returns the demo collection used when no cache exists yet.
func SeedNotes(clock Clock, newID IDGenerator) []NoteRecord {
	if clock == nil {
		clock = time.Now
	}
	if newID == nil {
		newID = NewID
	}
	now := Millis(clock())
	rootID := newID()
	return []NoteRecord{
		{
			ID:         newID(),
			ParentID:   rootID,
			Title:      basicsTitle,
			Content:    basicsContent,
			CreatedAt:  now,
			UpdatedAt:  now,
			IsExpanded: true,
		},
		{
			ID:         rootID,
			Title:      welcomeTitle,
			Content:    welcomeContent,
			CreatedAt:  now,
			UpdatedAt:  now,
			IsExpanded: true,
		},
	}
}
