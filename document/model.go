package document

import (
	"time"

	"github.com/google/uuid"

	"flowsmith/geometry"
)

const (
	defaultContainerTitle  = "Group"
	defaultContainerColor  = "#f5f5f5"
	defaultContainerBorder = "#9e9e9e"
	minContainerSize       = 20
)

// Model owns a Document and applies edits to it. Every mutator reports
// whether it changed anything; requests that are invalid, or arrive while
// the document is locked, are ignored and report false.
type Model struct {
	doc      Document
	defaults []Segment

	connecting *ConnectDraft
	pending    *PendingConnection

	newID func(kind string) string
	now   func() time.Time
}

// NewModel returns a model holding a blank document with the given
// process-wide segments. A nil or empty list means DefaultSegments.
func NewModel(segments []Segment) *Model {
	m := &Model{
		defaults: withDefaultSegment(segments),
		newID: func(kind string) string {
			return kind + "-" + uuid.NewString()
		},
		now: time.Now,
	}
	m.doc = m.Blank()
	return m
}

// UseIDs replaces the identifier generator. kind is "node", "conn",
// "container" or "segment".
func (m *Model) UseIDs(gen func(kind string) string) {
	m.newID = gen
}

// UseClock replaces the clock used to stamp snapshots.
func (m *Model) UseClock(now func() time.Time) {
	m.now = now
}

// Blank returns an empty document carrying the process-wide segments.
func (m *Model) Blank() Document {
	return Document{
		Nodes:       []Node{},
		Connections: []Connection{},
		Containers:  []Container{},
		Segments:    append([]Segment(nil), m.defaults...),
	}
}

// Document returns a deep copy of the current document.
func (m *Model) Document() Document {
	return m.doc.Clone()
}

// Snapshot captures the current document.
func (m *Model) Snapshot() Snapshot {
	return Snapshot{Document: m.doc.Clone(), Timestamp: m.now()}
}

// Restore replaces the document with the snapshot's contents and drops any
// connection being drawn or awaiting a branch choice.
func (m *Model) Restore(s Snapshot) {
	doc := s.Document.Clone()
	if len(doc.Segments) == 0 {
		doc.Segments = append([]Segment(nil), m.defaults...)
	} else {
		doc.Segments = withDefaultSegment(doc.Segments)
	}
	if doc.Nodes == nil {
		doc.Nodes = []Node{}
	}
	if doc.Connections == nil {
		doc.Connections = []Connection{}
	}
	if doc.Containers == nil {
		doc.Containers = []Container{}
	}
	m.doc = doc
	m.connecting = nil
	m.pending = nil
}

// IsLocked reports whether edits are currently blocked.
func (m *Model) IsLocked() bool {
	return m.doc.IsLocked
}

// ToggleLock flips the edit lock and returns the new state. It always applies.
func (m *Model) ToggleLock() bool {
	m.doc.IsLocked = !m.doc.IsLocked
	if m.doc.IsLocked {
		m.connecting = nil
		m.pending = nil
	}
	return m.doc.IsLocked
}

// Title returns the document title.
func (m *Model) Title() string {
	return m.doc.Title
}

// SetTitle renames the document. Titles stay editable while locked.
func (m *Model) SetTitle(title string) bool {
	if m.doc.Title == title {
		return false
	}
	m.doc.Title = title
	return true
}

// Nodes returns a copy of the node list.
func (m *Model) Nodes() []Node {
	return m.doc.Clone().Nodes
}

// Node looks a node up by id.
func (m *Model) Node(id string) (Node, bool) {
	if i := m.nodeIndex(id); i >= 0 {
		return m.doc.Clone().Nodes[i], true
	}
	return Node{}, false
}

func (m *Model) nodeIndex(id string) int {
	for i := range m.doc.Nodes {
		if m.doc.Nodes[i].ID == id {
			return i
		}
	}
	return -1
}

// AddNode places a new node of type t at pos.
func (m *Model) AddNode(t NodeType, pos geometry.Point) (Node, bool) {
	if m.doc.IsLocked || !t.Valid() {
		return Node{}, false
	}
	node := Node{
		ID:       m.newID("node"),
		Type:     t,
		Position: pos,
		Text:     t.DefaultText(),
		Segment:  DefaultSegmentID,
	}
	m.doc.Nodes = append(m.doc.Nodes, node)
	return node, true
}

// UpdateNodePosition moves a single node to pos.
func (m *Model) UpdateNodePosition(id string, pos geometry.Point) bool {
	if m.doc.IsLocked {
		return false
	}
	i := m.nodeIndex(id)
	if i < 0 || m.doc.Nodes[i].Position == pos {
		return false
	}
	m.doc.Nodes[i].Position = pos
	return true
}

// MoveNodes moves anchorID to pos and every other listed node by the same
// delta, so the group keeps its shape.
func (m *Model) MoveNodes(ids []string, anchorID string, pos geometry.Point) bool {
	anchor, ok := m.Node(anchorID)
	if !ok {
		return false
	}
	members := append([]string{anchorID}, ids...)
	return m.Translate(members, nil, pos.X-anchor.Position.X, pos.Y-anchor.Position.Y)
}

// Translate shifts the listed nodes and containers by (dx, dy). Unknown ids
// and duplicates are skipped.
func (m *Model) Translate(nodeIDs, containerIDs []string, dx, dy float64) bool {
	if m.doc.IsLocked || (dx == 0 && dy == 0) {
		return false
	}

	moved := false
	seen := make(map[string]bool, len(nodeIDs)+len(containerIDs))
	for _, id := range nodeIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		if i := m.nodeIndex(id); i >= 0 {
			m.doc.Nodes[i].Position = m.doc.Nodes[i].Position.Add(dx, dy)
			moved = true
		}
	}
	for _, id := range containerIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		if i := m.containerIndex(id); i >= 0 {
			m.doc.Containers[i].X += dx
			m.doc.Containers[i].Y += dy
			moved = true
		}
	}
	return moved
}

// NodePatch carries the node fields to overwrite; nil fields are kept.
type NodePatch struct {
	Text       *string
	Segment    *string
	Documents  *[]Attachment
	LinkedFile *string
	Width      *float64
	Height     *float64
}

// UpdateNode shallow-merges patch into the node. Assigning a segment that
// does not exist is rejected.
func (m *Model) UpdateNode(id string, patch NodePatch) bool {
	if m.doc.IsLocked {
		return false
	}
	i := m.nodeIndex(id)
	if i < 0 {
		return false
	}
	if patch.Segment != nil && m.segmentIndex(*patch.Segment) < 0 {
		return false
	}

	before := m.doc.Nodes[i]
	node := &m.doc.Nodes[i]
	if patch.Text != nil {
		node.Text = *patch.Text
	}
	if patch.Segment != nil {
		node.Segment = *patch.Segment
	}
	if patch.Documents != nil {
		node.Documents = nil
		if len(*patch.Documents) > 0 {
			node.Documents = append([]Attachment(nil), (*patch.Documents)...)
		}
	}
	if patch.LinkedFile != nil {
		node.LinkedFile = *patch.LinkedFile
	}
	if patch.Width != nil && *patch.Width >= 0 {
		node.Width = *patch.Width
	}
	if patch.Height != nil && *patch.Height >= 0 {
		node.Height = *patch.Height
	}
	return !sameNode(before, *node)
}

func sameNode(a, b Node) bool {
	if a.ID != b.ID || a.Type != b.Type || a.Position != b.Position || a.Text != b.Text ||
		a.Segment != b.Segment || a.LinkedFile != b.LinkedFile || a.Width != b.Width || a.Height != b.Height {
		return false
	}
	if len(a.Documents) != len(b.Documents) {
		return false
	}
	for i := range a.Documents {
		if a.Documents[i] != b.Documents[i] {
			return false
		}
	}
	return true
}

// DeleteNode removes a node and every connection touching it.
func (m *Model) DeleteNode(id string) bool {
	if m.doc.IsLocked {
		return false
	}
	i := m.nodeIndex(id)
	if i < 0 {
		return false
	}
	m.doc.Nodes = append(m.doc.Nodes[:i], m.doc.Nodes[i+1:]...)

	kept := m.doc.Connections[:0]
	for _, c := range m.doc.Connections {
		if c.From != id && c.To != id {
			kept = append(kept, c)
		}
	}
	m.doc.Connections = kept

	if m.connecting != nil && m.connecting.From == id {
		m.connecting = nil
	}
	if m.pending != nil && (m.pending.From == id || m.pending.To == id) {
		m.pending = nil
	}
	return true
}

// Containers returns a copy of the container list.
func (m *Model) Containers() []Container {
	return append([]Container(nil), m.doc.Containers...)
}

// Container looks a container up by id.
func (m *Model) Container(id string) (Container, bool) {
	if i := m.containerIndex(id); i >= 0 {
		return m.doc.Containers[i], true
	}
	return Container{}, false
}

func (m *Model) containerIndex(id string) int {
	for i := range m.doc.Containers {
		if m.doc.Containers[i].ID == id {
			return i
		}
	}
	return -1
}

// AddContainer appends a container with a fresh id. Empty colours and title
// take defaults; rectangles smaller than the minimum are rejected.
func (m *Model) AddContainer(c Container) (Container, bool) {
	if m.doc.IsLocked || c.Width < minContainerSize || c.Height < minContainerSize {
		return Container{}, false
	}
	c.ID = m.newID("container")
	if c.Title == "" {
		c.Title = defaultContainerTitle
	}
	if c.Color == "" {
		c.Color = defaultContainerColor
	}
	if c.BorderColor == "" {
		c.BorderColor = defaultContainerBorder
	}
	m.doc.Containers = append(m.doc.Containers, c)
	return c, true
}

// ContainerPatch carries the container fields to overwrite.
type ContainerPatch struct {
	X           *float64
	Y           *float64
	Width       *float64
	Height      *float64
	Color       *string
	BorderColor *string
	Title       *string
}

// PositionOnly reports whether the patch touches nothing but X and Y.
func (p ContainerPatch) PositionOnly() bool {
	return p.Width == nil && p.Height == nil && p.Color == nil &&
		p.BorderColor == nil && p.Title == nil
}

// UpdateContainer shallow-merges patch into the container.
func (m *Model) UpdateContainer(id string, patch ContainerPatch) bool {
	if m.doc.IsLocked {
		return false
	}
	i := m.containerIndex(id)
	if i < 0 {
		return false
	}
	before := m.doc.Containers[i]
	c := &m.doc.Containers[i]
	if patch.X != nil {
		c.X = *patch.X
	}
	if patch.Y != nil {
		c.Y = *patch.Y
	}
	if patch.Width != nil && *patch.Width >= minContainerSize {
		c.Width = *patch.Width
	}
	if patch.Height != nil && *patch.Height >= minContainerSize {
		c.Height = *patch.Height
	}
	if patch.Color != nil {
		c.Color = *patch.Color
	}
	if patch.BorderColor != nil {
		c.BorderColor = *patch.BorderColor
	}
	if patch.Title != nil {
		c.Title = *patch.Title
	}
	return before != *c
}

// DeleteContainer removes a container. Nodes drawn inside it are untouched.
func (m *Model) DeleteContainer(id string) bool {
	if m.doc.IsLocked {
		return false
	}
	i := m.containerIndex(id)
	if i < 0 {
		return false
	}
	m.doc.Containers = append(m.doc.Containers[:i], m.doc.Containers[i+1:]...)
	return true
}

// Replace swaps in a whole document, as when a file is loaded.
func (m *Model) Replace(doc Document) {
	m.Restore(Snapshot{Document: doc, Timestamp: m.now()})
}
