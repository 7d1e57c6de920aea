package dialogue

type EventKind string

const (
	EventOpened   EventKind = "dialogue_opened"
	EventAdvanced EventKind = "dialogue_advanced"
	EventClosed   EventKind = "dialogue_closed"
)

// Session is the conversation the player is in, if any. It is persisted with the game
// state, so it carries the built definition rather than a reference.
type Session struct {
	Def     *Definition `json:"def,omitempty"`
	NodeID  string      `json:"node_id,omitempty"`
	OwnerID string      `json:"owner_id,omitempty"`
	// AutoCloseAt is a game-clock deadline; zero means the session stays open.
	AutoCloseAt float64 `json:"auto_close_at,omitempty"`
}

func (s *Session) Active() bool {
	return s.Def != nil && s.Def.FindNode(s.NodeID) != nil
}

func (s *Session) Node() *Node {
	if s.Def == nil {
		return nil
	}
	return s.Def.FindNode(s.NodeID)
}

// Begin opens def at startID (the definition's start node when empty). A session that
// was already open reports an advance instead of an open.
func (s *Session) Begin(def *Definition, ownerID, startID string, autoCloseAt float64) EventKind {
	wasActive := s.Active()
	if startID == "" && def != nil {
		startID = def.StartNode()
	}
	s.Def = def
	s.OwnerID = ownerID
	s.NodeID = startID
	s.AutoCloseAt = autoCloseAt
	if !s.Active() {
		return s.End()
	}
	if wasActive {
		return EventAdvanced
	}
	return EventOpened
}

// Choose applies choice i of the current node. Service actions close the session and
// are returned for the caller to carry out; OfferQuest leaves it open so the caller can
// jump to the offer node.
func (s *Session) Choose(i int) (Choice, EventKind, bool) {
	n := s.Node()
	if n == nil || i < 0 || i >= len(n.Choices) {
		return Choice{}, "", false
	}
	c := n.Choices[i]

	switch c.Action {
	case ActionOfferQuest, ActionHelpKeyAndOffer:
		return c, "", true
	case ActionOpenShop, ActionAcceptQuest, ActionTurnInQuest, ActionTurnInKey, ActionReportKeyTalk, ActionClose:
		return c, s.End(), true
	}

	next := s.Def.FindNode(c.Next)
	if next == nil {
		return c, s.End(), true
	}
	s.NodeID = next.ID
	s.AutoCloseAt = 0
	return c, EventAdvanced, true
}

func (s *Session) End() EventKind {
	*s = Session{}
	return EventClosed
}

// BeginOneLiner shows a single line. It gets an OK button unless it auto-closes or
// noButton is set.
func (s *Session) BeginOneLiner(npcName, line, ownerID string, autoCloseAt float64, noButton bool) EventKind {
	node := Node{ID: DefaultStartNode, Line: line}
	if !noButton && autoCloseAt <= 0 {
		node.Choices = []Choice{{Label: "OK", Action: ActionClose}}
	}
	def := &Definition{NPCName: npcName, Start: DefaultStartNode, Nodes: []Node{node}}
	return s.Begin(def, ownerID, DefaultStartNode, autoCloseAt)
}

// Tick closes an auto-closing session whose deadline has passed.
func (s *Session) Tick(now float64) bool {
	if s.Active() && s.AutoCloseAt > 0 && now >= s.AutoCloseAt {
		s.End()
		return true
	}
	return false
}
