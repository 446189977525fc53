// Package editor composes the document model, its history and the routing
// layer into the single editing session a front end drives.
package editor

import (
	"time"

	"go.uber.org/zap"

	"flowsmith/document"
	"flowsmith/geometry"
	"flowsmith/history"
	"flowsmith/storage"
)

// Option configures a Session.
type Option func(*options)

type options struct {
	logger   *zap.Logger
	capacity int
	segments []document.Segment
	ids      func(kind string) string
	clock    func() time.Time
}

// WithLogger sets the session logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithHistoryCapacity bounds the number of undo snapshots.
func WithHistoryCapacity(n int) Option {
	return func(o *options) { o.capacity = n }
}

// WithSegments sets the process-wide segments new documents start with.
func WithSegments(segments []document.Segment) Option {
	return func(o *options) { o.segments = segments }
}

// WithIDs replaces the identifier generator.
func WithIDs(gen func(kind string) string) Option {
	return func(o *options) { o.ids = gen }
}

// WithClock replaces the clock used to stamp snapshots.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.clock = now }
}

// Selection is the set of selected nodes and containers, in selection order.
type Selection struct {
	Nodes      []string
	Containers []string
}

// Empty reports whether nothing is selected.
func (s Selection) Empty() bool {
	return len(s.Nodes) == 0 && len(s.Containers) == 0
}

// Session owns the live document. Every mutating call snapshots the
// pre-state, applies the change and commits the snapshot to history only if
// the change applied, so rejected requests never create undo steps.
type Session struct {
	model   *document.Model
	history *history.Engine
	log     *zap.Logger

	selection Selection
	drag      *dragGesture
	draw      *containerDraft
}

// New returns a session holding a blank document.
func New(opts ...Option) *Session {
	o := options{
		logger:   zap.NewNop(),
		capacity: history.DefaultCapacity,
	}
	for _, opt := range opts {
		opt(&o)
	}

	model := document.NewModel(o.segments)
	if o.ids != nil {
		model.UseIDs(o.ids)
	}
	if o.clock != nil {
		model.UseClock(o.clock)
	}

	s := &Session{model: model, log: o.logger}
	s.history = history.New(sessionTarget{s}, o.capacity)
	return s
}

// sessionTarget lets the history engine read and replace the live document.
type sessionTarget struct{ s *Session }

func (t sessionTarget) Capture() document.Snapshot {
	return t.s.model.Snapshot()
}

// Restore brings back a stored document but leaves the lock as it is now:
// the lock is not an edit, so stepping through history never flips it.
func (t sessionTarget) Restore(snap document.Snapshot) {
	snap.Document.IsLocked = t.s.model.IsLocked()
	t.s.model.Restore(snap)
	t.s.clearTransient()
}

// clearTransient drops the selection and every gesture in progress.
func (s *Session) clearTransient() {
	s.selection = Selection{}
	s.drag = nil
	s.draw = nil
	s.model.CancelConnection()
}

// apply runs one discrete edit under the checkpoint policy.
func (s *Session) apply(op string, mutate func() bool) bool {
	s.drag = nil

	pre := s.model.Snapshot()
	if !mutate() {
		s.log.Debug("edit rejected", zap.String("op", op), zap.Bool("locked", s.model.IsLocked()))
		return false
	}
	s.commit(op, pre)
	return true
}

func (s *Session) commit(op string, pre document.Snapshot) {
	s.history.Commit(pre)
	s.pruneSelection()
	s.log.Debug("edit applied", zap.String("op", op), zap.Int("history", s.history.Len()))
}

// Document returns a copy of the live document.
func (s *Session) Document() document.Document {
	return s.model.Document()
}

// Node looks up a node in the live document.
func (s *Session) Node(id string) (document.Node, bool) {
	return s.model.Node(id)
}

// Container looks up a container in the live document.
func (s *Session) Container(id string) (document.Container, bool) {
	return s.model.Container(id)
}

// Segments lists the document's segments.
func (s *Session) Segments() []document.Segment {
	return s.model.Segments()
}

// Segment looks up a segment by id.
func (s *Session) Segment(id string) (document.Segment, bool) {
	return s.model.Segment(id)
}

// IsLocked reports whether the edit lock is on.
func (s *Session) IsLocked() bool {
	return s.model.IsLocked()
}

// Title returns the document title.
func (s *Session) Title() string {
	return s.model.Title()
}

// AddNode places a node.
func (s *Session) AddNode(t document.NodeType, pos geometry.Point) (document.Node, bool) {
	var node document.Node
	ok := s.apply("add node", func() bool {
		var added bool
		node, added = s.model.AddNode(t, pos)
		return added
	})
	return node, ok
}

// UpdateNodePosition moves one node as a discrete edit.
func (s *Session) UpdateNodePosition(id string, pos geometry.Point) bool {
	return s.apply("move node", func() bool {
		return s.model.UpdateNodePosition(id, pos)
	})
}

// MoveSelection nudges every selected node and container by (dx, dy).
func (s *Session) MoveSelection(dx, dy float64) bool {
	sel := s.Selection()
	return s.apply("move selection", func() bool {
		return s.model.Translate(sel.Nodes, sel.Containers, dx, dy)
	})
}

// UpdateNode merges patch into a node.
func (s *Session) UpdateNode(id string, patch document.NodePatch) bool {
	return s.apply("update node", func() bool {
		return s.model.UpdateNode(id, patch)
	})
}

// SetText replaces a node's label.
func (s *Session) SetText(id, text string) bool {
	return s.UpdateNode(id, document.NodePatch{Text: &text})
}

// CycleSegment moves a node to the next segment in list order.
func (s *Session) CycleSegment(id string) bool {
	node, ok := s.model.Node(id)
	if !ok {
		return false
	}
	next := s.model.NextSegment(node.Segment)
	return s.UpdateNode(id, document.NodePatch{Segment: &next})
}

// AttachDocument appends a picked local file to a node's documents.
func (s *Session) AttachDocument(nodeID string, d storage.Descriptor) bool {
	node, ok := s.model.Node(nodeID)
	if !ok || d.Path == "" {
		return false
	}
	for _, existing := range node.Documents {
		if existing.Path == d.Path {
			return false
		}
	}
	docs := append(node.Documents, document.Attachment{Name: d.Name, Path: d.Path})
	return s.UpdateNode(nodeID, document.NodePatch{Documents: &docs})
}

// LinkFile points a node at another flowchart file.
func (s *Session) LinkFile(nodeID, path string) bool {
	return s.UpdateNode(nodeID, document.NodePatch{LinkedFile: &path})
}

// DeleteNode removes a node and its connections.
func (s *Session) DeleteNode(id string) bool {
	return s.apply("delete node", func() bool {
		return s.model.DeleteNode(id)
	})
}

// DeleteSelection removes every selected node and container as one edit.
func (s *Session) DeleteSelection() bool {
	sel := s.Selection()
	return s.apply("delete selection", func() bool {
		deleted := false
		for _, id := range sel.Nodes {
			deleted = s.model.DeleteNode(id) || deleted
		}
		for _, id := range sel.Containers {
			deleted = s.model.DeleteContainer(id) || deleted
		}
		return deleted
	})
}

// AddConnection creates a connection directly.
func (s *Session) AddConnection(from, to string, fromPort, toPort geometry.Port, decision document.DecisionType) (document.Connection, bool) {
	var conn document.Connection
	ok := s.apply("add connection", func() bool {
		var added bool
		conn, added = s.model.AddConnection(from, to, fromPort, toPort, decision)
		return added
	})
	return conn, ok
}

// DeleteConnection removes a connection.
func (s *Session) DeleteConnection(id string) bool {
	return s.apply("delete connection", func() bool {
		return s.model.DeleteConnection(id)
	})
}

// StartConnection begins drawing a connection. Nothing is recorded until it
// completes.
func (s *Session) StartConnection(fromID string, port geometry.Port) bool {
	s.drag = nil
	return s.model.StartConnection(fromID, port)
}

// CompleteConnection finishes the connection being drawn.
func (s *Session) CompleteConnection(toID string, port geometry.Port) (document.Connection, document.ConnectOutcome) {
	s.drag = nil
	pre := s.model.Snapshot()
	conn, outcome := s.model.CompleteConnection(toID, port)
	switch outcome {
	case document.Created:
		s.commit("connect", pre)
	case document.Pending:
		s.log.Debug("connection awaiting branch", zap.String("to", toID))
	default:
		s.log.Debug("edit rejected", zap.String("op", "connect"), zap.String("to", toID))
	}
	return conn, outcome
}

// ChooseBranch tags and creates the connection waiting on a decision.
func (s *Session) ChooseBranch(branch document.DecisionType) (document.Connection, bool) {
	var conn document.Connection
	ok := s.apply("choose branch", func() bool {
		var added bool
		conn, added = s.model.ChooseBranch(branch)
		return added
	})
	return conn, ok
}

// CancelConnection abandons a connection being drawn or awaiting a branch.
func (s *Session) CancelConnection() bool {
	return s.model.CancelConnection()
}

// Connecting returns the connection being drawn.
func (s *Session) Connecting() (document.ConnectDraft, bool) {
	return s.model.Connecting()
}

// Pending returns the connection awaiting a branch choice.
func (s *Session) Pending() (document.PendingConnection, bool) {
	return s.model.Pending()
}

// AddContainer appends a container.
func (s *Session) AddContainer(c document.Container) (document.Container, bool) {
	var added document.Container
	ok := s.apply("add container", func() bool {
		var applied bool
		added, applied = s.model.AddContainer(c)
		return applied
	})
	return added, ok
}

// UpdateContainer merges patch into a container. Patches that only move it
// are applied without a checkpoint.
func (s *Session) UpdateContainer(id string, patch document.ContainerPatch) bool {
	if !patch.PositionOnly() {
		return s.apply("update container", func() bool {
			return s.model.UpdateContainer(id, patch)
		})
	}
	if !s.model.UpdateContainer(id, patch) {
		return false
	}
	s.history.Touch()
	return true
}

// DeleteContainer removes a container.
func (s *Session) DeleteContainer(id string) bool {
	return s.apply("delete container", func() bool {
		return s.model.DeleteContainer(id)
	})
}

// AddSegment appends a segment.
func (s *Session) AddSegment(name, color string) (document.Segment, bool) {
	var seg document.Segment
	ok := s.apply("add segment", func() bool {
		var added bool
		seg, added = s.model.AddSegment(name, color)
		return added
	})
	return seg, ok
}

// UpdateSegment merges patch into a segment.
func (s *Session) UpdateSegment(id string, patch document.SegmentPatch) bool {
	return s.apply("update segment", func() bool {
		return s.model.UpdateSegment(id, patch)
	})
}

// DeleteSegment removes a segment, reassigning its nodes to the default.
func (s *Session) DeleteSegment(id string) bool {
	return s.apply("delete segment", func() bool {
		return s.model.DeleteSegment(id)
	})
}

// SetTitle renames the document. It is allowed while locked.
func (s *Session) SetTitle(title string) bool {
	return s.apply("set title", func() bool {
		return s.model.SetTitle(title)
	})
}

// ToggleLock flips the edit lock and returns the new state. It is not an
// undoable edit.
func (s *Session) ToggleLock() bool {
	s.drag = nil
	s.draw = nil
	locked := s.model.ToggleLock()
	s.log.Info("lock toggled", zap.Bool("locked", locked))
	return locked
}

// Undo steps back one edit. It is blocked while locked.
func (s *Session) Undo() bool {
	if s.model.IsLocked() {
		return false
	}
	s.endGesture()
	return s.history.Undo()
}

// Redo steps forward one edit. It is blocked while locked.
func (s *Session) Redo() bool {
	if s.model.IsLocked() {
		return false
	}
	s.endGesture()
	return s.history.Redo()
}

// JumpTo restores history entry index. Out-of-range indices are ignored.
func (s *Session) JumpTo(index int) bool {
	if s.model.IsLocked() {
		return false
	}
	s.endGesture()
	return s.history.Restore(index)
}

func (s *Session) endGesture() {
	s.drag = nil
	s.draw = nil
}

// CanUndo reports whether Undo would do anything.
func (s *Session) CanUndo() bool {
	return !s.model.IsLocked() && s.history.CanUndo()
}

// CanRedo reports whether Redo would do anything.
func (s *Session) CanRedo() bool {
	return !s.model.IsLocked() && s.history.CanRedo()
}

// RevertToSaved jumps back to the state last saved, loaded or started. It
// reports false when already there or when that state has left the history.
func (s *Session) RevertToSaved() bool {
	i, ok := s.history.Saved()
	if !ok || i == s.history.Cursor() {
		return false
	}
	return s.JumpTo(i)
}

// IsDirty reports whether there are edits since the last new, load or save.
func (s *Session) IsDirty() bool {
	return s.history.IsDirty()
}

// HistoryLen returns the number of history entries.
func (s *Session) HistoryLen() int {
	return s.history.Len()
}

// HistoryCursor returns the index of the current history entry.
func (s *Session) HistoryCursor() int {
	return s.history.Cursor()
}

// HistoryTime returns when the current history entry was recorded.
func (s *Session) HistoryTime() time.Time {
	return s.history.Timestamps()[s.history.Cursor()]
}

// New starts over with a blank document.
func (s *Session) New() {
	s.model.Replace(s.model.Blank())
	s.resetHistory()
	s.log.Info("new document")
}

// Load replaces the document with a parsed payload. On error the session is
// left untouched.
func (s *Session) Load(raw string) error {
	doc, err := document.Unmarshal([]byte(raw))
	if err != nil {
		s.log.Warn("load failed", zap.Error(err))
		return err
	}
	s.model.Replace(doc)
	s.resetHistory()
	s.log.Info("document loaded",
		zap.String("title", doc.Title),
		zap.Int("nodes", len(doc.Nodes)),
		zap.Int("connections", len(doc.Connections)))
	return nil
}

// Serialize encodes the live document.
func (s *Session) Serialize() (string, error) {
	data, err := document.Marshal(s.model.Document())
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// MarkSaved makes the current state the clean one. History is kept, so
// undoing past a save is possible and makes the document dirty again.
func (s *Session) MarkSaved() {
	s.history.MarkSaved()
}

func (s *Session) resetHistory() {
	s.clearTransient()
	s.history.Reset(s.model.Snapshot())
}
