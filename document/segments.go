package document

// withDefaultSegment returns a copy of segments that is guaranteed to
// contain the default segment, first.
func withDefaultSegment(segments []Segment) []Segment {
	out := make([]Segment, 0, len(segments)+1)
	var def *Segment
	for i := range segments {
		if segments[i].ID == DefaultSegmentID && def == nil {
			s := segments[i]
			def = &s
			continue
		}
		out = append(out, segments[i])
	}
	if def == nil {
		def = &DefaultSegments()[0]
	}
	return append([]Segment{*def}, out...)
}

// Segments returns a copy of the segment list.
func (m *Model) Segments() []Segment {
	return append([]Segment(nil), m.doc.Segments...)
}

// Segment looks a segment up by id.
func (m *Model) Segment(id string) (Segment, bool) {
	if i := m.segmentIndex(id); i >= 0 {
		return m.doc.Segments[i], true
	}
	return Segment{}, false
}

func (m *Model) segmentIndex(id string) int {
	for i := range m.doc.Segments {
		if m.doc.Segments[i].ID == id {
			return i
		}
	}
	return -1
}

// AddSegment appends a new segment.
func (m *Model) AddSegment(name, color string) (Segment, bool) {
	if m.doc.IsLocked || name == "" {
		return Segment{}, false
	}
	s := Segment{ID: m.newID("segment"), Name: name, Color: color}
	m.doc.Segments = append(m.doc.Segments, s)
	return s, true
}

// SegmentPatch carries the segment fields to overwrite.
type SegmentPatch struct {
	Name  *string
	Color *string
}

// UpdateSegment merges patch into a segment.
func (m *Model) UpdateSegment(id string, patch SegmentPatch) bool {
	if m.doc.IsLocked {
		return false
	}
	i := m.segmentIndex(id)
	if i < 0 {
		return false
	}
	before := m.doc.Segments[i]
	if patch.Name != nil && *patch.Name != "" {
		m.doc.Segments[i].Name = *patch.Name
	}
	if patch.Color != nil {
		m.doc.Segments[i].Color = *patch.Color
	}
	return before != m.doc.Segments[i]
}

// DeleteSegment removes a segment and moves its nodes to the default one.
// The default segment itself cannot be deleted.
func (m *Model) DeleteSegment(id string) bool {
	if m.doc.IsLocked || id == DefaultSegmentID {
		return false
	}
	i := m.segmentIndex(id)
	if i < 0 {
		return false
	}
	m.doc.Segments = append(m.doc.Segments[:i], m.doc.Segments[i+1:]...)
	for n := range m.doc.Nodes {
		if m.doc.Nodes[n].Segment == id {
			m.doc.Nodes[n].Segment = DefaultSegmentID
		}
	}
	return true
}

// NextSegment returns the segment after current in list order, wrapping.
func (m *Model) NextSegment(current string) string {
	if len(m.doc.Segments) == 0 {
		return DefaultSegmentID
	}
	i := m.segmentIndex(current)
	return m.doc.Segments[(i+1)%len(m.doc.Segments)].ID
}
