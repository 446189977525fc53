package document

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowsmith/geometry"
)

func newTestModel() *Model {
	m := NewModel(nil)
	counter := 0
	m.UseIDs(func(kind string) string {
		counter++
		return fmt.Sprintf("%s-%d", kind, counter)
	})
	return m
}

func addNode(t *testing.T, m *Model, typ NodeType, x, y float64) Node {
	t.Helper()
	n, ok := m.AddNode(typ, geometry.Point{X: x, Y: y})
	require.True(t, ok)
	return n
}

func TestAddNode_Defaults(t *testing.T) {
	m := newTestModel()

	tests := []struct {
		typ  NodeType
		text string
	}{
		{StartEnd, "Start"},
		{Process, "Process"},
		{Decision, "Decision"},
		{InputOutput, "Input / Output"},
		{Connector, ""},
	}
	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			n := addNode(t, m, tt.typ, 10, 20)
			assert.Equal(t, tt.text, n.Text)
			assert.Equal(t, DefaultSegmentID, n.Segment)
			assert.Equal(t, geometry.Point{X: 10, Y: 20}, n.Position)
			assert.NotEmpty(t, n.ID)
		})
	}

	ids := map[string]bool{}
	for _, n := range m.Nodes() {
		assert.False(t, ids[n.ID], "duplicate id %s", n.ID)
		ids[n.ID] = true
	}
}

func TestAddNode_UnknownType(t *testing.T) {
	m := newTestModel()
	_, ok := m.AddNode(NodeType("hexagon"), geometry.Point{})
	assert.False(t, ok)
	assert.Empty(t, m.Nodes())
}

func TestNewModel_UUIDs(t *testing.T) {
	m := NewModel(nil)
	a, _ := m.AddNode(Process, geometry.Point{})
	b, _ := m.AddNode(Process, geometry.Point{})
	assert.Regexp(t, `^node-[0-9a-f-]{36}$`, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestNodeSize(t *testing.T) {
	w, h := Node{Type: Decision}.Size()
	assert.Equal(t, []float64{120, 120}, []float64{w, h})
	w, h = Node{Type: Process}.Size()
	assert.Equal(t, []float64{120, 80}, []float64{w, h})
	w, h = Node{Type: Connector}.Size()
	assert.Equal(t, []float64{40, 40}, []float64{w, h})
	w, h = Node{Type: Process, Width: 200}.Size()
	assert.Equal(t, []float64{200, 80}, []float64{w, h})
}

func TestMoveNodes_PreservesRelativeOffsets(t *testing.T) {
	m := newTestModel()
	a := addNode(t, m, Process, 0, 0)
	b := addNode(t, m, Process, 200, 50)
	c := addNode(t, m, Process, 400, 400)

	require.True(t, m.MoveNodes([]string{a.ID, b.ID}, a.ID, geometry.Point{X: 30, Y: -10}))

	got, _ := m.Node(a.ID)
	assert.Equal(t, geometry.Point{X: 30, Y: -10}, got.Position)
	got, _ = m.Node(b.ID)
	assert.Equal(t, geometry.Point{X: 230, Y: 40}, got.Position)
	got, _ = m.Node(c.ID)
	assert.Equal(t, geometry.Point{X: 400, Y: 400}, got.Position, "unselected node must not move")
}

func TestUpdateNodePosition_NoChange(t *testing.T) {
	m := newTestModel()
	a := addNode(t, m, Process, 5, 5)
	assert.False(t, m.UpdateNodePosition(a.ID, geometry.Point{X: 5, Y: 5}))
	assert.True(t, m.UpdateNodePosition(a.ID, geometry.Point{X: 6, Y: 5}))
	assert.False(t, m.UpdateNodePosition("missing", geometry.Point{}))
}

func TestUpdateNode_Patch(t *testing.T) {
	m := newTestModel()
	n := addNode(t, m, Process, 0, 0)
	seg, ok := m.AddSegment("Billing", "#ff0000")
	require.True(t, ok)

	text := "Charge card"
	docs := []Attachment{{Name: "runbook.pdf", Path: "/tmp/runbook.pdf"}}
	require.True(t, m.UpdateNode(n.ID, NodePatch{Text: &text, Segment: &seg.ID, Documents: &docs}))

	got, _ := m.Node(n.ID)
	assert.Equal(t, "Charge card", got.Text)
	assert.Equal(t, seg.ID, got.Segment)
	assert.Equal(t, docs, got.Documents)

	docs[0].Name = "mutated"
	got, _ = m.Node(n.ID)
	assert.Equal(t, "runbook.pdf", got.Documents[0].Name, "patch slices are copied")

	assert.False(t, m.UpdateNode(n.ID, NodePatch{Text: &text}), "identical patch is not a change")

	missing := "nope"
	assert.False(t, m.UpdateNode(n.ID, NodePatch{Segment: &missing}))

	empty := []Attachment{}
	require.True(t, m.UpdateNode(n.ID, NodePatch{Documents: &empty}))
	got, _ = m.Node(n.ID)
	assert.Nil(t, got.Documents)
}

func TestDeleteNode_CascadesConnections(t *testing.T) {
	m := newTestModel()
	a := addNode(t, m, Process, 0, 0)
	b := addNode(t, m, Process, 300, 0)
	c := addNode(t, m, Process, 600, 0)

	_, ok := m.AddConnection(a.ID, b.ID, geometry.Right, geometry.Left, "")
	require.True(t, ok)
	_, ok = m.AddConnection(b.ID, c.ID, geometry.Right, geometry.Left, "")
	require.True(t, ok)
	keep, ok := m.AddConnection(a.ID, c.ID, geometry.Bottom, geometry.Bottom, "")
	require.True(t, ok)

	require.True(t, m.DeleteNode(b.ID))

	conns := m.Connections()
	require.Len(t, conns, 1)
	assert.Equal(t, keep.ID, conns[0].ID)
	for _, conn := range conns {
		assert.NotEqual(t, b.ID, conn.From)
		assert.NotEqual(t, b.ID, conn.To)
	}
	assert.False(t, m.DeleteNode(b.ID))
}

func TestDeleteNode_ClearsDraftFromIt(t *testing.T) {
	m := newTestModel()
	a := addNode(t, m, Process, 0, 0)
	require.True(t, m.StartConnection(a.ID, geometry.Right))

	m.DeleteNode(a.ID)
	_, drafting := m.Connecting()
	assert.False(t, drafting)
}

func TestLockedModelRejectsEdits(t *testing.T) {
	m := newTestModel()
	a := addNode(t, m, Process, 0, 0)
	b := addNode(t, m, Process, 300, 0)
	box, ok := m.AddContainer(Container{X: 0, Y: 0, Width: 100, Height: 100})
	require.True(t, ok)

	assert.True(t, m.ToggleLock())
	before := m.Document()

	_, ok = m.AddNode(Process, geometry.Point{})
	assert.False(t, ok)
	assert.False(t, m.DeleteNode(a.ID))
	assert.False(t, m.UpdateNodePosition(a.ID, geometry.Point{X: 99, Y: 99}))
	assert.False(t, m.MoveNodes(nil, a.ID, geometry.Point{X: 99}))
	_, ok = m.AddConnection(a.ID, b.ID, geometry.Right, geometry.Left, "")
	assert.False(t, ok)
	assert.False(t, m.StartConnection(a.ID, geometry.Right))
	text := "x"
	assert.False(t, m.UpdateNode(a.ID, NodePatch{Text: &text}))
	_, ok = m.AddContainer(Container{Width: 50, Height: 50})
	assert.False(t, ok)
	assert.False(t, m.DeleteContainer(box.ID))
	_, ok = m.AddSegment("x", "#000")
	assert.False(t, ok)

	assert.Equal(t, before, m.Document())

	assert.True(t, m.SetTitle("Still editable"))
	assert.False(t, m.ToggleLock())
	_, ok = m.AddNode(Process, geometry.Point{})
	assert.True(t, ok)
}

func TestContainers(t *testing.T) {
	m := newTestModel()

	_, ok := m.AddContainer(Container{Width: 10, Height: 100})
	assert.False(t, ok, "too small")

	c, ok := m.AddContainer(Container{X: 10, Y: 20, Width: 200, Height: 100})
	require.True(t, ok)
	assert.Equal(t, "Group", c.Title)
	assert.NotEmpty(t, c.Color)
	assert.NotEmpty(t, c.BorderColor)

	title := "Payments"
	x := 50.0
	assert.False(t, ContainerPatch{Title: &title}.PositionOnly())
	assert.True(t, ContainerPatch{X: &x}.PositionOnly())

	require.True(t, m.UpdateContainer(c.ID, ContainerPatch{Title: &title, X: &x}))
	got, _ := m.Container(c.ID)
	assert.Equal(t, "Payments", got.Title)
	assert.Equal(t, 50.0, got.X)
	assert.False(t, m.UpdateContainer(c.ID, ContainerPatch{Title: &title}))

	d, ok := m.AddContainer(Container{X: 300, Y: 20, Width: 100, Height: 100})
	require.True(t, ok)
	require.True(t, m.Translate(nil, []string{c.ID, d.ID}, 10, 10))
	got, _ = m.Container(d.ID)
	assert.Equal(t, 310.0, got.X)
	assert.Equal(t, 30.0, got.Y)

	require.True(t, m.DeleteContainer(c.ID))
	assert.Len(t, m.Containers(), 1)
}

func TestRestore_ClearsTransientState(t *testing.T) {
	m := newTestModel()
	a := addNode(t, m, Process, 0, 0)
	snap := m.Snapshot()

	addNode(t, m, Process, 100, 0)
	require.True(t, m.StartConnection(a.ID, geometry.Right))

	m.Restore(snap)
	assert.Len(t, m.Nodes(), 1)
	_, drafting := m.Connecting()
	assert.False(t, drafting)
}

func TestSnapshotIsIsolated(t *testing.T) {
	m := newTestModel()
	a := addNode(t, m, Process, 0, 0)
	docs := []Attachment{{Name: "a", Path: "/a"}}
	require.True(t, m.UpdateNode(a.ID, NodePatch{Documents: &docs}))

	snap := m.Snapshot()
	snap.Document.Nodes[0].Documents[0].Name = "changed"
	snap.Document.Nodes[0].Text = "changed"

	got, _ := m.Node(a.ID)
	assert.Equal(t, "a", got.Documents[0].Name)
	assert.Equal(t, "Process", got.Text)
}
