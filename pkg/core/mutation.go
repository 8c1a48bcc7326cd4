package core

// The functions in this file are the mutation engine. Each one returns a new
// collection value and leaves its input untouched, so a caller can publish the
// result as a single state change.

// CreateNote prepends a fresh, expanded, empty note. When parentID names an
// existing record that parent is expanded in the same step.
func CreateNote(records []NoteRecord, id, parentID string, now int64) []NoteRecord {
	next := make([]NoteRecord, 0, len(records)+1)
	next = append(next, NoteRecord{
		ID:         id,
		ParentID:   parentID,
		CreatedAt:  now,
		UpdatedAt:  now,
		IsExpanded: true,
	})
	for _, r := range records {
		if parentID != "" && r.ID == parentID && !r.IsExpanded {
			r.IsExpanded = true
			r.UpdatedAt = touch(r.UpdatedAt, now)
		}
		next = append(next, r)
	}
	return next
}

// UpdateNote merges patch into the record with the given id and rewrites its
// UpdatedAt. The returned flag is false, and the collection unchanged, when no
// record has that id.
func UpdateNote(records []NoteRecord, id string, patch Patch, now int64) ([]NoteRecord, bool) {
	pos := indexOf(records, id)
	if pos < 0 {
		return records, false
	}
	next := CloneRecords(records)
	r := &next[pos]
	if patch.Title != nil {
		r.Title = *patch.Title
	}
	if patch.Content != nil {
		r.Content = *patch.Content
	}
	if patch.IsExpanded != nil {
		r.IsExpanded = *patch.IsExpanded
	}
	r.UpdatedAt = touch(r.UpdatedAt, now)
	return next, true
}

// ToggleExpand flips IsExpanded on the record with the given id.
func ToggleExpand(records []NoteRecord, id string, now int64) ([]NoteRecord, bool) {
	pos := indexOf(records, id)
	if pos < 0 {
		return records, false
	}
	expanded := !records[pos].IsExpanded
	return UpdateNote(records, id, Patch{IsExpanded: &expanded}, now)
}

// DeleteNote removes id and all of its descendants in one step and returns the
// removed ids. Nothing outside the closure is touched.
func DeleteNote(records []NoteRecord, id string) ([]NoteRecord, map[string]struct{}) {
	closure := DescendantClosure(records, id)
	if len(closure) == 0 {
		return records, closure
	}
	next := make([]NoteRecord, 0, len(records)-len(closure))
	for _, r := range records {
		if _, gone := closure[r.ID]; gone {
			continue
		}
		next = append(next, r)
	}
	return next, closure
}

// DescendantClosure returns id and every record transitively parented by it.
// The traversal uses a work list and a visited set, so parent cycles terminate.
// An id absent from the collection yields an empty closure.
func DescendantClosure(records []NoteRecord, id string) map[string]struct{} {
	closure := make(map[string]struct{})
	if id == "" || indexOf(records, id) < 0 {
		return closure
	}
	idx := indexChildren(records)
	stack := []string{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := closure[cur]; seen {
			continue
		}
		closure[cur] = struct{}{}
		for _, pos := range idx[cur] {
			child := records[pos].ID
			if _, seen := closure[child]; !seen {
				stack = append(stack, child)
			}
		}
	}
	return closure
}

// FindNote returns the record with the given id.
func FindNote(records []NoteRecord, id string) (NoteRecord, bool) {
	pos := indexOf(records, id)
	if pos < 0 {
		return NoteRecord{}, false
	}
	return records[pos], true
}

func indexOf(records []NoteRecord, id string) int {
	for i, r := range records {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// touch returns a timestamp strictly after prev, preferring now.
func touch(prev, now int64) int64 {
	if now <= prev {
		return prev + 1
	}
	return now
}
