package core

import (
	"fmt"
	"sort"
)

// childIndex maps a parent id to the positions of its children in the flat collection.
// Roots are indexed under the empty id.
type childIndex map[string][]int

func indexChildren(records []NoteRecord) childIndex {
	idx := make(childIndex, len(records))
	for i, r := range records {
		idx[r.ParentID] = append(idx[r.ParentID], i)
	}
	return idx
}

// Materialize builds the visible hierarchy from the flat collection.
//
// Only records reachable from a root by following parent references are returned;
// orphans and members of parent cycles are left out. Siblings are ordered by
// CreatedAt, newest first, with ties kept in collection order. Each record id is
// expanded at most once, so malformed input cannot make the walk loop.
func Materialize(records []NoteRecord) []*NoteTreeItem {
	idx := indexChildren(records)
	visited := make(map[string]struct{}, len(records))

	// The index is walked with an explicit queue instead of recursion.
	roots := buildLevel(records, idx[""], 0, visited)
	queue := append([]*NoteTreeItem(nil), roots...)
	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]
		item.Children = buildLevel(records, idx[item.ID], item.Depth+1, visited)
		queue = append(queue, item.Children...)
	}
	return roots
}

func buildLevel(records []NoteRecord, positions []int, depth int, visited map[string]struct{}) []*NoteTreeItem {
	level := make([]*NoteTreeItem, 0, len(positions))
	for _, pos := range positions {
		r := records[pos]
		if _, seen := visited[r.ID]; seen {
			continue
		}
		visited[r.ID] = struct{}{}
		level = append(level, &NoteTreeItem{NoteRecord: r, Depth: depth, Children: []*NoteTreeItem{}})
	}
	sort.SliceStable(level, func(i, j int) bool {
		return level[i].CreatedAt > level[j].CreatedAt
	})
	return level
}

// Walk visits items depth-first in display order. Returning false from fn skips the
// item's children.
func Walk(items []*NoteTreeItem, fn func(item *NoteTreeItem) bool) {
	stack := make([]*NoteTreeItem, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		stack = append(stack, items[i])
	}
	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(item) {
			continue
		}
		for i := len(item.Children) - 1; i >= 0; i-- {
			stack = append(stack, item.Children[i])
		}
	}
}

// IssueKind classifies a HierarchyIssue.
type IssueKind string

const (
	IssueDuplicateID IssueKind = "duplicate_id"
	IssueOrphan      IssueKind = "orphan"
	IssueCycle       IssueKind = "cycle"
)

// HierarchyIssue is a malformed parent reference found by CheckHierarchy.
type HierarchyIssue struct {
	Kind IssueKind
	ID   string
}

func (i HierarchyIssue) Error() string {
	return fmt.Sprintf("%s %s: %v", i.Kind, i.ID, ErrCyclicHierarchy)
}

func (i HierarchyIssue) Unwrap() error {
	return ErrCyclicHierarchy
}

// CheckHierarchy reports duplicate ids, records whose parent does not exist and
// records caught in a parent cycle. Records that merely descend from an orphan or
// a cycle are not reported again.
func CheckHierarchy(records []NoteRecord) []HierarchyIssue {
	var issues []HierarchyIssue
	parents := make(map[string]string, len(records))
	for _, r := range records {
		if _, dup := parents[r.ID]; dup {
			issues = append(issues, HierarchyIssue{Kind: IssueDuplicateID, ID: r.ID})
			continue
		}
		parents[r.ID] = r.ParentID
	}

	for _, r := range records {
		if r.ParentID == "" {
			continue
		}
		if _, ok := parents[r.ParentID]; !ok {
			issues = append(issues, HierarchyIssue{Kind: IssueOrphan, ID: r.ID})
		}
	}

	// Follow parent pointers from every record; a chain that revisits a node it
	// started in names a cycle. Each node is settled once.
	const (
		unvisited = iota
		inProgress
		done
	)
	state := make(map[string]int, len(parents))
	reported := make(map[string]struct{})
	for _, r := range records {
		if state[r.ID] != unvisited {
			continue
		}
		var chain []string
		cur := r.ID
		for {
			if _, ok := parents[cur]; !ok || state[cur] == done {
				break
			}
			if state[cur] == inProgress {
				if _, ok := reported[cur]; !ok {
					reported[cur] = struct{}{}
					issues = append(issues, HierarchyIssue{Kind: IssueCycle, ID: cur})
				}
				break
			}
			state[cur] = inProgress
			chain = append(chain, cur)
			next := parents[cur]
			if next == "" {
				break
			}
			cur = next
		}
		for _, id := range chain {
			state[id] = done
		}
	}
	return issues
}
