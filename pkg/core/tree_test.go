package core_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/aretw0/grove/pkg/core"
)

func note(id, parent string, createdAt int64) core.NoteRecord {
	return core.NoteRecord{ID: id, ParentID: parent, CreatedAt: createdAt, UpdatedAt: createdAt, IsExpanded: true}
}

func flatten(items []*core.NoteTreeItem) map[string]int {
	out := map[string]int{}
	core.Walk(items, func(item *core.NoteTreeItem) bool {
		out[item.ID] = item.Depth
		return true
	})
	return out
}

func TestMaterialize_Empty(t *testing.T) {
	assert.Empty(t, core.Materialize(nil))
	assert.Empty(t, core.Materialize([]core.NoteRecord{}))
}

func TestMaterialize_RootWithChild(t *testing.T) {
	records := []core.NoteRecord{
		note("b", "a", 2),
		note("a", "", 1),
	}

	roots := core.Materialize(records)
	require.Len(t, roots, 1)
	assert.Equal(t, "a", roots[0].ID)
	assert.Equal(t, 0, roots[0].Depth)
	require.Len(t, roots[0].Children, 1)
	assert.Equal(t, "b", roots[0].Children[0].ID)
	assert.Equal(t, 1, roots[0].Children[0].Depth)
	assert.Empty(t, roots[0].Children[0].Children)
}

func TestMaterialize_SiblingsNewestFirst(t *testing.T) {
	records := []core.NoteRecord{
		note("old", "", 1),
		note("new", "", 3),
		note("mid", "", 2),
		note("c1", "mid", 5),
		note("c2", "mid", 9),
	}

	roots := core.Materialize(records)
	require.Len(t, roots, 3)
	assert.Equal(t, []string{"new", "mid", "old"}, []string{roots[0].ID, roots[1].ID, roots[2].ID})
	require.Len(t, roots[1].Children, 2)
	assert.Equal(t, "c2", roots[1].Children[0].ID)
	assert.Equal(t, "c1", roots[1].Children[1].ID)
}

func TestMaterialize_OrphansExcluded(t *testing.T) {
	records := []core.NoteRecord{
		note("a", "", 1),
		note("orphan", "missing", 2),
		note("orphan-child", "orphan", 3),
	}

	got := flatten(core.Materialize(records))
	assert.Equal(t, map[string]int{"a": 0}, got)
}

func TestMaterialize_CycleTerminates(t *testing.T) {
	records := []core.NoteRecord{
		note("root", "", 1),
		note("x", "y", 2),
		note("y", "x", 3),
		note("self", "self", 4),
	}

	got := flatten(core.Materialize(records))
	assert.Equal(t, map[string]int{"root": 0}, got)
}

func TestMaterialize_DuplicateIDExpandedOnce(t *testing.T) {
	records := []core.NoteRecord{
		note("a", "", 1),
		note("a", "", 2),
		note("b", "a", 3),
	}

	roots := core.Materialize(records)
	require.Len(t, roots, 1)
	require.Len(t, roots[0].Children, 1)
}

func TestCheckHierarchy(t *testing.T) {
	t.Run("Clean Forest", func(t *testing.T) {
		records := []core.NoteRecord{note("a", "", 1), note("b", "a", 2)}
		assert.Empty(t, core.CheckHierarchy(records))
	})

	t.Run("Reports Orphans Cycles And Duplicates", func(t *testing.T) {
		records := []core.NoteRecord{
			note("a", "", 1),
			note("a", "", 1),
			note("o", "ghost", 2),
			note("x", "y", 3),
			note("y", "x", 4),
		}
		issues := core.CheckHierarchy(records)

		kinds := map[core.IssueKind]int{}
		for _, issue := range issues {
			kinds[issue.Kind]++
			assert.ErrorIs(t, issue, core.ErrCyclicHierarchy)
		}
		assert.Equal(t, 1, kinds[core.IssueDuplicateID])
		assert.Equal(t, 1, kinds[core.IssueOrphan])
		assert.Equal(t, 1, kinds[core.IssueCycle])
	})
}

// forestGenerator draws collections whose parents are either absent, an earlier
// record, or an id that does not exist.
func forestGenerator() *rapid.Generator[[]core.NoteRecord] {
	return rapid.Custom(func(t *rapid.T) []core.NoteRecord {
		n := rapid.IntRange(0, 40).Draw(t, "n")
		records := make([]core.NoteRecord, 0, n)
		for i := 0; i < n; i++ {
			id := fmt.Sprintf("n%d", i)
			parent := ""
			switch rapid.IntRange(0, 4).Draw(t, "parentKind") {
			case 0:
			case 1:
				parent = fmt.Sprintf("missing%d", i)
			default:
				if i > 0 {
					parent = fmt.Sprintf("n%d", rapid.IntRange(0, i-1).Draw(t, "parent"))
				}
			}
			created := rapid.Int64Range(0, 20).Draw(t, "createdAt")
			records = append(records, note(id, parent, created))
		}
		return records
	})
}

func reachable(records []core.NoteRecord) map[string]struct{} {
	parents := map[string]string{}
	for _, r := range records {
		parents[r.ID] = r.ParentID
	}
	out := map[string]struct{}{}
	for _, r := range records {
		cur, ok := r.ID, true
		for steps := 0; ok && steps <= len(records); steps++ {
			p := parents[cur]
			if p == "" {
				out[r.ID] = struct{}{}
				break
			}
			cur = p
			_, ok = parents[cur]
		}
	}
	return out
}

func TestMaterialize_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		records := forestGenerator().Draw(t, "records")
		roots := core.Materialize(records)

		seen := map[string]struct{}{}
		core.Walk(roots, func(item *core.NoteTreeItem) bool {
			seen[item.ID] = struct{}{}
			for i := 1; i < len(item.Children); i++ {
				if item.Children[i-1].CreatedAt < item.Children[i].CreatedAt {
					t.Fatalf("children of %s not newest first", item.ID)
				}
			}
			for _, child := range item.Children {
				if child.ParentID != item.ID || child.Depth != item.Depth+1 {
					t.Fatalf("child %s misplaced under %s", child.ID, item.ID)
				}
			}
			return true
		})
		for i := 1; i < len(roots); i++ {
			if roots[i-1].CreatedAt < roots[i].CreatedAt {
				t.Fatalf("roots not newest first")
			}
		}

		want := reachable(records)
		if len(seen) != len(want) {
			t.Fatalf("materialized %d records, want %d reachable", len(seen), len(want))
		}
		for id := range want {
			if _, ok := seen[id]; !ok {
				t.Fatalf("reachable record %s missing", id)
			}
		}
	})
}
