package actor

// NPC is a non-hostile character the player can talk to.
type NPC struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Tag         string `json:"tag,omitempty" yaml:"tag,omitempty"` // "town" or "bandit"
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	DialogueID  string `json:"dialogue,omitempty" yaml:"dialogue,omitempty"`
	TraderID    string `json:"trader,omitempty" yaml:"trader,omitempty"`
	RefusalText string `json:"refusal_text,omitempty" yaml:"refusal_text,omitempty"`

	// Talk gates
	RefuseIfCriminal       bool `json:"refuse_if_criminal,omitempty" yaml:"refuse_if_criminal,omitempty"`
	RequireCriminal        bool `json:"require_criminal,omitempty" yaml:"require_criminal,omitempty"`
	RefuseIfBannedForTheft bool `json:"refuse_if_banned,omitempty" yaml:"refuse_if_banned,omitempty"`
}

const DefaultRefusal = "Not now."

func (n NPC) Refusal() string {
	if n.RefusalText == "" {
		return DefaultRefusal
	}
	return n.RefusalText
}
