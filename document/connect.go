package document

import "flowsmith/geometry"

// ConnectDraft is a connection whose source end has been chosen.
type ConnectDraft struct {
	From     string
	FromPort geometry.Port
}

// PendingConnection is a completed draft leaving a decision node. It becomes
// a connection once a branch is chosen.
type PendingConnection struct {
	From     string
	To       string
	FromPort geometry.Port
	ToPort   geometry.Port
}

// ConnectOutcome is the result of completing a connection draft.
type ConnectOutcome int

const (
	Rejected ConnectOutcome = iota
	Created
	Pending
)

func (o ConnectOutcome) String() string {
	switch o {
	case Created:
		return "created"
	case Pending:
		return "pending"
	default:
		return "rejected"
	}
}

// Connections returns a copy of the connection list.
func (m *Model) Connections() []Connection {
	return append([]Connection(nil), m.doc.Connections...)
}

// Connection looks a connection up by id.
func (m *Model) Connection(id string) (Connection, bool) {
	for _, c := range m.doc.Connections {
		if c.ID == id {
			return c, true
		}
	}
	return Connection{}, false
}

// Connecting returns the draft in progress, if any.
func (m *Model) Connecting() (ConnectDraft, bool) {
	if m.connecting == nil {
		return ConnectDraft{}, false
	}
	return *m.connecting, true
}

// Pending returns the connection awaiting a branch choice, if any.
func (m *Model) Pending() (PendingConnection, bool) {
	if m.pending == nil {
		return PendingConnection{}, false
	}
	return *m.pending, true
}

// StartConnection begins a draft from a node port. Starting again replaces
// the previous draft and discards any pending branch choice.
func (m *Model) StartConnection(fromID string, port geometry.Port) bool {
	if m.doc.IsLocked || m.nodeIndex(fromID) < 0 || !port.Valid() {
		return false
	}
	m.connecting = &ConnectDraft{From: fromID, FromPort: port}
	m.pending = nil
	return true
}

// CompleteConnection finishes the draft at toID. Drafts from a decision node
// are staged as pending until ChooseBranch. The draft is cleared whatever the
// outcome.
func (m *Model) CompleteConnection(toID string, port geometry.Port) (Connection, ConnectOutcome) {
	draft := m.connecting
	m.connecting = nil
	if draft == nil || m.doc.IsLocked || draft.From == toID || !port.Valid() {
		return Connection{}, Rejected
	}

	from, ok := m.Node(draft.From)
	if !ok || m.nodeIndex(toID) < 0 {
		return Connection{}, Rejected
	}

	if from.Type == Decision {
		m.pending = &PendingConnection{
			From:     draft.From,
			To:       toID,
			FromPort: draft.FromPort,
			ToPort:   port,
		}
		return Connection{}, Pending
	}

	conn, ok := m.AddConnection(draft.From, toID, draft.FromPort, port, "")
	if !ok {
		return Connection{}, Rejected
	}
	return conn, Created
}

// ChooseBranch materialises the pending connection with the given branch.
func (m *Model) ChooseBranch(branch DecisionType) (Connection, bool) {
	if m.pending == nil || !branch.Valid() {
		return Connection{}, false
	}
	p := *m.pending
	conn, ok := m.AddConnection(p.From, p.To, p.FromPort, p.ToPort, branch)
	if ok {
		m.pending = nil
	}
	return conn, ok
}

// CancelConnection drops any draft or pending connection. The document is
// never touched.
func (m *Model) CancelConnection() bool {
	had := m.connecting != nil || m.pending != nil
	m.connecting = nil
	m.pending = nil
	return had
}

// AddConnection creates a connection directly. Both endpoints must exist and
// differ, and decision must be set exactly when the source is a decision node.
func (m *Model) AddConnection(fromID, toID string, fromPort, toPort geometry.Port, decision DecisionType) (Connection, bool) {
	if m.doc.IsLocked || fromID == toID || !fromPort.Valid() || !toPort.Valid() {
		return Connection{}, false
	}
	from, ok := m.Node(fromID)
	if !ok || m.nodeIndex(toID) < 0 {
		return Connection{}, false
	}
	if (from.Type == Decision) != decision.Valid() {
		return Connection{}, false
	}
	if decision != "" && !decision.Valid() {
		return Connection{}, false
	}

	conn := Connection{
		ID:           m.newID("conn"),
		From:         fromID,
		To:           toID,
		FromPort:     fromPort,
		ToPort:       toPort,
		DecisionType: decision,
	}
	m.doc.Connections = append(m.doc.Connections, conn)
	return conn, true
}

// DeleteConnection removes a single connection.
func (m *Model) DeleteConnection(id string) bool {
	if m.doc.IsLocked {
		return false
	}
	for i, c := range m.doc.Connections {
		if c.ID == id {
			m.doc.Connections = append(m.doc.Connections[:i], m.doc.Connections[i+1:]...)
			return true
		}
	}
	return false
}
