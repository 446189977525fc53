package history

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowsmith/document"
	"flowsmith/geometry"
)

type modelTarget struct {
	*document.Model
	restores int
}

func (t *modelTarget) Capture() document.Snapshot { return t.Snapshot() }

func (t *modelTarget) Restore(s document.Snapshot) {
	t.restores++
	t.Model.Restore(s)
}

func newTarget() *modelTarget {
	m := document.NewModel(nil)
	n := 0
	m.UseIDs(func(kind string) string {
		n++
		return fmt.Sprintf("%s-%d", kind, n)
	})
	return &modelTarget{Model: m}
}

// mutate applies one checkpointed edit the way the editor does.
func mutate(e *Engine, target *modelTarget, i int) {
	pre := target.Capture()
	if _, ok := target.AddNode(document.Process, geometry.Point{X: float64(i)}); ok {
		e.Commit(pre)
	}
}

func TestEngine_HistoryLaw(t *testing.T) {
	target := newTarget()
	e := New(target, 0)
	s0 := target.Document()

	const k = 7
	for i := 0; i < k; i++ {
		mutate(e, target, i)
	}
	final := target.Document()
	require.Equal(t, k+1, e.Len())
	assert.True(t, e.IsDirty())

	for i := 0; i < k; i++ {
		require.True(t, e.Undo())
	}
	assert.False(t, e.Undo())
	assert.Equal(t, s0, target.Document())
	assert.False(t, e.IsDirty())

	for i := 0; i < k; i++ {
		require.True(t, e.Redo())
	}
	assert.False(t, e.Redo())
	assert.Equal(t, final, target.Document())
}

func TestEngine_BranchTruncation(t *testing.T) {
	target := newTarget()
	e := New(target, 0)
	for i := 0; i < 4; i++ {
		mutate(e, target, i)
	}

	require.True(t, e.Undo())
	require.True(t, e.Undo())
	require.True(t, e.CanRedo())

	mutate(e, target, 100)
	assert.False(t, e.CanRedo())
	assert.False(t, e.Redo())
	assert.Equal(t, 4, e.Len())

	nodes := target.Nodes()
	require.Len(t, nodes, 3)
	assert.Equal(t, 100.0, nodes[2].Position.X)
}

func TestEngine_CapacityBound(t *testing.T) {
	target := newTarget()
	e := New(target, DefaultCapacity)

	for i := 0; i < 1000; i++ {
		mutate(e, target, i)
		require.LessOrEqual(t, e.Len(), DefaultCapacity)
	}
	assert.Equal(t, DefaultCapacity, e.Len())

	for e.Undo() {
	}
	// The oldest surviving entry is the state before the 49th most recent commit.
	assert.Len(t, target.Nodes(), 1000-(DefaultCapacity-1))
}

func TestEngine_CapacityFallback(t *testing.T) {
	assert.Equal(t, DefaultCapacity, New(newTarget(), 1).Capacity())
	assert.Equal(t, 10, New(newTarget(), 10).Capacity())
}

func TestEngine_RefreshesTipBeforeLeaving(t *testing.T) {
	target := newTarget()
	e := New(target, 0)

	mutate(e, target, 0)
	// Further edits inside the same gesture are not committed on their own.
	n := target.Nodes()[0]
	target.UpdateNodePosition(n.ID, geometry.Point{X: 500, Y: 500})

	require.True(t, e.Undo())
	assert.Empty(t, target.Nodes())
	require.True(t, e.Redo())
	got, _ := target.Node(n.ID)
	assert.Equal(t, geometry.Point{X: 500, Y: 500}, got.Position)
}

func TestEngine_Restore(t *testing.T) {
	target := newTarget()
	e := New(target, 0)
	for i := 0; i < 3; i++ {
		mutate(e, target, i)
	}

	restores := target.restores
	assert.False(t, e.Restore(-1))
	assert.False(t, e.Restore(e.Len()))
	assert.Equal(t, restores, target.restores, "out-of-range restore is a no-op")
	assert.Equal(t, 3, e.Cursor())

	require.True(t, e.Restore(1))
	assert.Len(t, target.Nodes(), 1)
	assert.Equal(t, 1, e.Cursor())

	require.True(t, e.Restore(3))
	assert.Len(t, target.Nodes(), 3)
}

func TestEngine_RestoreHandsOutCopies(t *testing.T) {
	target := newTarget()
	e := New(target, 0)
	mutate(e, target, 0)

	require.True(t, e.Undo())
	require.True(t, e.Redo())
	n := target.Nodes()[0]
	target.UpdateNodePosition(n.ID, geometry.Point{X: -1})

	require.True(t, e.Undo())
	require.True(t, e.Redo())
	got, _ := target.Node(n.ID)
	assert.Equal(t, 0.0, got.Position.X, "stored entries are not aliased by the live document")
}

func TestEngine_Reset(t *testing.T) {
	target := newTarget()
	e := New(target, 0)
	mutate(e, target, 0)
	mutate(e, target, 1)

	e.Reset(target.Capture())
	assert.Equal(t, 1, e.Len())
	assert.Equal(t, 0, e.Cursor())
	assert.False(t, e.IsDirty())
	assert.False(t, e.CanUndo())
	assert.False(t, e.CanRedo())
	assert.Len(t, e.Timestamps(), 1)
}

func TestEngine_DropForgetsLastCommit(t *testing.T) {
	target := newTarget()
	e := New(target, 0)
	mutate(e, target, 0)
	mutate(e, target, 1)

	require.True(t, e.Drop())
	assert.Equal(t, 2, e.Len())
	assert.False(t, e.CanRedo())
	assert.False(t, e.Drop(), "only the latest commit can be dropped")

	require.True(t, e.Undo())
	assert.Empty(t, target.Nodes())
}

func TestEngine_TouchRefreshesCurrentEntry(t *testing.T) {
	target := newTarget()
	e := New(target, 0)
	mutate(e, target, 0)
	mutate(e, target, 1)
	require.True(t, e.Undo())

	n := target.Nodes()[0]
	target.UpdateNodePosition(n.ID, geometry.Point{X: 42})
	e.Touch()

	require.True(t, e.Redo())
	require.True(t, e.Undo())
	got, _ := target.Node(n.ID)
	assert.Equal(t, 42.0, got.Position.X)
}

func TestEngine_MarkSavedKeepsHistory(t *testing.T) {
	target := newTarget()
	e := New(target, 0)
	mutate(e, target, 0)
	mutate(e, target, 1)

	e.MarkSaved()
	assert.False(t, e.IsDirty())
	assert.Equal(t, 3, e.Len())
	assert.True(t, e.CanUndo(), "saving keeps earlier steps")
	saved, ok := e.Saved()
	require.True(t, ok)
	assert.Equal(t, 2, saved)

	require.True(t, e.Undo())
	assert.True(t, e.IsDirty())
	require.True(t, e.Redo())
	assert.False(t, e.IsDirty(), "back on the saved entry")
	assert.Len(t, target.Nodes(), 2)
}

func TestEngine_SavedEntryLost(t *testing.T) {
	tests := []struct {
		name  string
		after func(e *Engine, target *modelTarget)
	}{
		{
			name: "redo branch holding it is discarded",
			after: func(e *Engine, target *modelTarget) {
				require.True(t, e.Undo())
				mutate(e, target, 100)
				require.True(t, e.Undo())
			},
		},
		{
			name: "uncommitted change overwrites it",
			after: func(e *Engine, target *modelTarget) {
				n := target.Nodes()[0]
				target.UpdateNodePosition(n.ID, geometry.Point{X: 7})
				e.Touch()
				mutate(e, target, 100)
				require.True(t, e.Undo())
			},
		},
		{
			name: "evicted over capacity",
			after: func(e *Engine, target *modelTarget) {
				for i := 0; i < DefaultCapacity; i++ {
					mutate(e, target, i)
				}
				for e.Undo() {
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := newTarget()
			e := New(target, 0)
			mutate(e, target, 0)
			e.MarkSaved()

			tt.after(e, target)
			_, ok := e.Saved()
			assert.False(t, ok)
			assert.True(t, e.IsDirty())
		})
	}
}

func TestEngine_TouchOnSavedEntryIsDirty(t *testing.T) {
	target := newTarget()
	e := New(target, 0)
	mutate(e, target, 0)
	e.MarkSaved()

	n := target.Nodes()[0]
	target.UpdateNodePosition(n.ID, geometry.Point{X: 9})
	e.Touch()
	assert.True(t, e.IsDirty())

	e.MarkSaved()
	assert.False(t, e.IsDirty())
}

func TestEngine_TimestampsFollowEntries(t *testing.T) {
	target := newTarget()
	e := New(target, 0)
	mutate(e, target, 0)
	mutate(e, target, 1)

	times := e.Timestamps()
	require.Len(t, times, e.Len())
	for i := 1; i < len(times); i++ {
		assert.False(t, times[i].Before(times[i-1]), "entries are oldest first")
	}
}
