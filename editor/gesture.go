package editor

import (
	"slices"

	"go.uber.org/zap"

	"flowsmith/document"
	"flowsmith/geometry"
)

// Selection returns a copy of the current selection.
func (s *Session) Selection() Selection {
	return Selection{
		Nodes:      slices.Clone(s.selection.Nodes),
		Containers: slices.Clone(s.selection.Containers),
	}
}

// Select makes id the only selected node.
func (s *Session) Select(id string) bool {
	if _, ok := s.model.Node(id); !ok {
		return false
	}
	s.selection = Selection{Nodes: []string{id}}
	return true
}

// ToggleSelect adds id to the selection or removes it if already present.
func (s *Session) ToggleSelect(id string) bool {
	if _, ok := s.model.Node(id); !ok {
		return false
	}
	s.selection.Nodes = toggle(s.selection.Nodes, id)
	return true
}

// SelectContainer makes id the only selected container.
func (s *Session) SelectContainer(id string) bool {
	if _, ok := s.model.Container(id); !ok {
		return false
	}
	s.selection = Selection{Containers: []string{id}}
	return true
}

// ToggleSelectContainer adds or removes a container from the selection.
func (s *Session) ToggleSelectContainer(id string) bool {
	if _, ok := s.model.Container(id); !ok {
		return false
	}
	s.selection.Containers = toggle(s.selection.Containers, id)
	return true
}

// ClearSelection deselects everything.
func (s *Session) ClearSelection() {
	s.selection = Selection{}
}

// IsSelected reports whether a node or container id is selected.
func (s *Session) IsSelected(id string) bool {
	return slices.Contains(s.selection.Nodes, id) || slices.Contains(s.selection.Containers, id)
}

func toggle(ids []string, id string) []string {
	if i := slices.Index(ids, id); i >= 0 {
		return slices.Delete(ids, i, i+1)
	}
	return append(ids, id)
}

// pruneSelection drops ids that no longer exist.
func (s *Session) pruneSelection() {
	s.selection.Nodes = slices.DeleteFunc(s.selection.Nodes, func(id string) bool {
		_, ok := s.model.Node(id)
		return !ok
	})
	s.selection.Containers = slices.DeleteFunc(s.selection.Containers, func(id string) bool {
		_, ok := s.model.Container(id)
		return !ok
	})
}

// DragTarget names the item grabbed at the start of a drag: a node or a
// container.
type DragTarget struct {
	NodeID      string
	ContainerID string
}

type dragGesture struct {
	target     DragTarget
	nodes      []string
	containers []string
	pre        document.Snapshot
	committed  bool
}

// BeginDrag starts moving target. If target is part of the selection the
// whole selection moves with it; otherwise it becomes the selection.
func (s *Session) BeginDrag(target DragTarget) bool {
	if s.model.IsLocked() {
		return false
	}
	if _, ok := s.dragOrigin(target); !ok {
		return false
	}

	if !s.IsSelected(target.NodeID) && !s.IsSelected(target.ContainerID) {
		if target.NodeID != "" {
			s.Select(target.NodeID)
		} else {
			s.SelectContainer(target.ContainerID)
		}
	}

	sel := s.Selection()
	s.drag = &dragGesture{
		target:     target,
		nodes:      sel.Nodes,
		containers: sel.Containers,
		pre:        s.model.Snapshot(),
	}
	return true
}

// dragOrigin is the current top-left corner of the grabbed item.
func (s *Session) dragOrigin(target DragTarget) (geometry.Point, bool) {
	if target.NodeID != "" {
		n, ok := s.model.Node(target.NodeID)
		return n.Position, ok
	}
	c, ok := s.model.Container(target.ContainerID)
	return geometry.Point{X: c.X, Y: c.Y}, ok
}

// Dragging reports whether a drag gesture is in progress.
func (s *Session) Dragging() bool {
	return s.drag != nil
}

// DragTo moves the grabbed item's top-left corner to pos and everything
// else in the gesture by the same delta. The first movement of a gesture
// records one history entry; later movements extend it.
func (s *Session) DragTo(pos geometry.Point) bool {
	g := s.drag
	if g == nil {
		return false
	}
	origin, ok := s.dragOrigin(g.target)
	if !ok {
		s.drag = nil
		return false
	}
	if !s.model.Translate(g.nodes, g.containers, pos.X-origin.X, pos.Y-origin.Y) {
		return false
	}
	if !g.committed {
		g.committed = true
		s.history.Commit(g.pre)
		s.log.Debug("drag started", zap.Int("nodes", len(g.nodes)), zap.Int("containers", len(g.containers)))
	}
	return true
}

// DragBy moves the gesture by (dx, dy) from wherever it is now.
func (s *Session) DragBy(dx, dy float64) bool {
	if s.drag == nil {
		return false
	}
	origin, ok := s.dragOrigin(s.drag.target)
	if !ok {
		s.drag = nil
		return false
	}
	return s.DragTo(origin.Add(dx, dy))
}

// EndDrag finishes the gesture and reports whether anything moved.
func (s *Session) EndDrag() bool {
	g := s.drag
	s.drag = nil
	return g != nil && g.committed
}

// CancelDrag puts everything back where the gesture found it and forgets
// its history entry.
func (s *Session) CancelDrag() bool {
	g := s.drag
	s.drag = nil
	if g == nil {
		return false
	}
	if g.committed {
		s.history.Drop()
		s.model.Restore(g.pre)
	}
	return true
}

type containerDraft struct {
	start geometry.Point
	end   geometry.Point
}

// BeginContainer starts drawing a container rectangle at p.
func (s *Session) BeginContainer(p geometry.Point) bool {
	if s.model.IsLocked() {
		return false
	}
	s.drag = nil
	s.draw = &containerDraft{start: p, end: p}
	return true
}

// ExtendContainer moves the free corner of the rectangle being drawn.
func (s *Session) ExtendContainer(p geometry.Point) bool {
	if s.draw == nil {
		return false
	}
	s.draw.end = p
	return true
}

// DrawingContainer returns the rectangle being drawn.
func (s *Session) DrawingContainer() (geometry.Rect, bool) {
	if s.draw == nil {
		return geometry.Rect{}, false
	}
	return geometry.Normalize(s.draw.start, s.draw.end), true
}

// FinishContainer turns the drawn rectangle into a container. Rectangles
// that are too small are discarded.
func (s *Session) FinishContainer() (document.Container, bool) {
	r, ok := s.DrawingContainer()
	s.draw = nil
	if !ok {
		return document.Container{}, false
	}
	return s.AddContainer(document.Container{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height})
}

// CancelContainer abandons the rectangle being drawn.
func (s *Session) CancelContainer() bool {
	had := s.draw != nil
	s.draw = nil
	return had
}
