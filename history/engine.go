// Package history keeps a bounded list of whole-document snapshots with a
// cursor, giving linear undo and redo.
package history

import (
	"time"

	"flowsmith/document"
)

// DefaultCapacity is the number of snapshots kept when none is configured.
const DefaultCapacity = 50

// Target is the live state the engine captures from and restores into.
type Target interface {
	Capture() document.Snapshot
	Restore(document.Snapshot)
}

// Engine is a snapshot history. Entry 0 is the pristine state. The document
// is clean exactly when the cursor sits on the saved entry, which starts as
// entry 0 and moves with MarkSaved.
//
// Commits store the pre-mutation state. The post-mutation state of the most
// recent commit is only known to the target, so the entry at the cursor is
// refreshed from the target before the cursor moves away from it.
type Engine struct {
	target   Target
	capacity int

	entries []document.Snapshot
	cursor  int
	stale   bool
	// saved is the entry matching the last save, or -1 once that state has
	// been discarded or overwritten.
	saved int
}

// New returns an engine seeded with the target's current state. Capacities
// below two fall back to DefaultCapacity.
func New(target Target, capacity int) *Engine {
	if capacity < 2 {
		capacity = DefaultCapacity
	}
	e := &Engine{target: target, capacity: capacity}
	e.Reset(target.Capture())
	return e
}

// Capacity returns the maximum number of entries kept.
func (e *Engine) Capacity() int {
	return e.capacity
}

// Checkpoint records the target's current state as the state before a
// mutation that is about to happen.
func (e *Engine) Checkpoint() {
	e.Commit(e.target.Capture())
}

// Commit records pre as the state before the latest mutation. Any redo
// branch past the cursor is discarded and the oldest entry is evicted once
// the history is over capacity.
func (e *Engine) Commit(pre document.Snapshot) {
	if e.saved > e.cursor || (e.saved == e.cursor && e.stale) {
		e.saved = -1
	}
	e.entries = e.entries[:e.cursor+1]
	e.entries[e.cursor] = pre
	e.entries = append(e.entries, pre)
	e.cursor++
	e.stale = true

	if over := len(e.entries) - e.capacity; over > 0 {
		e.entries = append(e.entries[:0:0], e.entries[over:]...)
		e.cursor -= over
		e.saved = max(e.saved-over, -1)
	}
}

// Touch marks the current entry as out of date after a mutation that was
// deliberately not committed. The entry is refreshed before the cursor moves.
func (e *Engine) Touch() {
	e.stale = true
}

// Drop forgets the most recent commit when nothing else has happened since.
// The target is left alone; the caller puts back whatever state it wants.
func (e *Engine) Drop() bool {
	if !e.stale || e.cursor == 0 || e.cursor != len(e.entries)-1 {
		return false
	}
	e.entries = e.entries[:e.cursor]
	e.cursor--
	e.stale = false
	return true
}

func (e *Engine) refresh() {
	if e.stale {
		if e.saved == e.cursor {
			e.saved = -1
		}
		e.entries[e.cursor] = e.target.Capture()
		e.stale = false
	}
}

// Undo steps back one entry. It reports false at the start of history.
func (e *Engine) Undo() bool {
	if !e.CanUndo() {
		return false
	}
	e.refresh()
	e.cursor--
	e.apply()
	return true
}

// Redo steps forward one entry. It reports false at the end of history.
func (e *Engine) Redo() bool {
	if !e.CanRedo() {
		return false
	}
	e.refresh()
	e.cursor++
	e.apply()
	return true
}

// Restore jumps straight to entry index. Out-of-range indices are ignored.
func (e *Engine) Restore(index int) bool {
	if index < 0 || index >= len(e.entries) {
		return false
	}
	e.refresh()
	e.cursor = index
	e.apply()
	return true
}

func (e *Engine) apply() {
	snap := e.entries[e.cursor]
	e.target.Restore(document.Snapshot{
		Document:  snap.Document.Clone(),
		Timestamp: snap.Timestamp,
	})
}

// Reset replaces the whole history with a single pristine entry.
func (e *Engine) Reset(initial document.Snapshot) {
	e.entries = []document.Snapshot{initial}
	e.cursor = 0
	e.stale = false
	e.saved = 0
}

// MarkSaved makes the current entry the clean one without touching the rest
// of the history.
func (e *Engine) MarkSaved() {
	if e.stale {
		e.entries[e.cursor] = e.target.Capture()
		e.stale = false
	}
	e.saved = e.cursor
}

// Saved returns the index of the entry matching the last save. It reports
// false once that entry is gone.
func (e *Engine) Saved() (int, bool) {
	return e.saved, e.saved >= 0
}

// CanUndo reports whether there is an earlier entry.
func (e *Engine) CanUndo() bool {
	return e.cursor > 0
}

// CanRedo reports whether there is a later entry.
func (e *Engine) CanRedo() bool {
	return e.cursor < len(e.entries)-1
}

// IsDirty reports whether the document differs from the saved entry.
func (e *Engine) IsDirty() bool {
	return e.cursor != e.saved || e.stale
}

// Len returns the number of entries.
func (e *Engine) Len() int {
	return len(e.entries)
}

// Cursor returns the index of the current entry.
func (e *Engine) Cursor() int {
	return e.cursor
}

// Timestamps lists when each entry was captured, oldest first.
func (e *Engine) Timestamps() []time.Time {
	out := make([]time.Time, len(e.entries))
	for i, s := range e.entries {
		out[i] = s.Timestamp
	}
	return out
}
