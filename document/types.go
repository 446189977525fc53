// Package document holds the flowchart graph and the commands that edit it.
package document

import (
	"time"

	"flowsmith/geometry"
)

// NodeType is the flowchart symbol a node is drawn as.
type NodeType string

const (
	StartEnd    NodeType = "start-end"
	Process     NodeType = "process"
	Decision    NodeType = "decision"
	InputOutput NodeType = "input-output"
	Connector   NodeType = "connector"
)

// NodeTypes lists every node type in palette order.
var NodeTypes = []NodeType{StartEnd, Process, Decision, InputOutput, Connector}

// Valid reports whether t is a known node type.
func (t NodeType) Valid() bool {
	switch t {
	case StartEnd, Process, Decision, InputOutput, Connector:
		return true
	}
	return false
}

// DefaultSize returns the width and height used when a node carries no
// explicit dimensions.
func (t NodeType) DefaultSize() (width, height float64) {
	switch t {
	case Decision:
		return 120, 120
	case Connector:
		return 40, 40
	default:
		return 120, 80
	}
}

// DefaultText is the label a freshly placed node starts with.
func (t NodeType) DefaultText() string {
	switch t {
	case StartEnd:
		return "Start"
	case Process:
		return "Process"
	case Decision:
		return "Decision"
	case InputOutput:
		return "Input / Output"
	default:
		return ""
	}
}

// DecisionType tags a connection leaving a decision node.
type DecisionType string

const (
	Yes DecisionType = "yes"
	No  DecisionType = "no"
)

// Valid reports whether d is yes or no.
func (d DecisionType) Valid() bool {
	return d == Yes || d == No
}

// Attachment is a local document linked to a node.
type Attachment struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Node is a flowchart symbol.
type Node struct {
	ID         string         `json:"id"`
	Type       NodeType       `json:"type"`
	Position   geometry.Point `json:"position"`
	Text       string         `json:"text"`
	Segment    string         `json:"segment"`
	Documents  []Attachment   `json:"documents,omitempty"`
	LinkedFile string         `json:"linkedFile,omitempty"`
	Width      float64        `json:"width,omitempty"`  // zero means the type default
	Height     float64        `json:"height,omitempty"` // zero means the type default
}

// Size returns the effective dimensions of the node.
func (n Node) Size() (width, height float64) {
	width, height = n.Type.DefaultSize()
	if n.Width > 0 {
		width = n.Width
	}
	if n.Height > 0 {
		height = n.Height
	}
	return width, height
}

// Bounds implements geometry.Shape.
func (n Node) Bounds() geometry.Rect {
	w, h := n.Size()
	return geometry.Rect{X: n.Position.X, Y: n.Position.Y, Width: w, Height: h}
}

// Connection is a directed edge between two node ports.
type Connection struct {
	ID           string        `json:"id"`
	From         string        `json:"from"`
	To           string        `json:"to"`
	FromPort     geometry.Port `json:"fromPort"`
	ToPort       geometry.Port `json:"toPort"`
	DecisionType DecisionType  `json:"decisionType,omitempty"`
}

// Container is a visual grouping rectangle. It owns nothing: membership is
// whatever overlaps it when drawn.
type Container struct {
	ID          string  `json:"id"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Color       string  `json:"color"`
	BorderColor string  `json:"borderColor"`
	Title       string  `json:"title"`
}

// Bounds implements geometry.Shape.
func (c Container) Bounds() geometry.Rect {
	return geometry.Rect{X: c.X, Y: c.Y, Width: c.Width, Height: c.Height}
}

// DefaultSegmentID names the segment that can never be deleted.
const DefaultSegmentID = "default"

// Segment is a named colour category nodes can be assigned to.
type Segment struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// DefaultSegments is the process-wide segment set used when none is configured.
func DefaultSegments() []Segment {
	return []Segment{{ID: DefaultSegmentID, Name: "Default", Color: "#9e9e9e"}}
}

// Document is the whole flowchart.
type Document struct {
	Title       string       `json:"title"`
	Nodes       []Node       `json:"nodes"`
	Connections []Connection `json:"connections"`
	Containers  []Container  `json:"containers"`
	Segments    []Segment    `json:"-"`
	IsLocked    bool         `json:"isLocked"`
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	clone := Document{
		Title:       d.Title,
		Nodes:       make([]Node, len(d.Nodes)),
		Connections: make([]Connection, len(d.Connections)),
		Containers:  make([]Container, len(d.Containers)),
		Segments:    make([]Segment, len(d.Segments)),
		IsLocked:    d.IsLocked,
	}

	for i, node := range d.Nodes {
		clone.Nodes[i] = node
		if node.Documents != nil {
			clone.Nodes[i].Documents = append([]Attachment(nil), node.Documents...)
		}
	}
	copy(clone.Connections, d.Connections)
	copy(clone.Containers, d.Containers)
	copy(clone.Segments, d.Segments)

	return clone
}

// Snapshot is an immutable copy of a document taken at a point in time.
type Snapshot struct {
	Document  Document
	Timestamp time.Time
}
