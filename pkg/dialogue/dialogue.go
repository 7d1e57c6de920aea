// Package dialogue holds NPC conversation trees and the session that walks them.
package dialogue

import "strings"

type Action string

const (
	ActionNone            Action = ""
	ActionOpenShop        Action = "open_shop"
	ActionOfferQuest      Action = "offer_quest"
	ActionAcceptQuest     Action = "accept_quest"
	ActionTurnInQuest     Action = "turn_in_quest"
	ActionReportKeyTalk   Action = "report_key_talk"
	ActionTurnInKey       Action = "turn_in_key"
	ActionHelpKeyAndOffer Action = "help_key_and_offer"
	ActionClose           Action = "close"
)

const DefaultStartNode = "start"

type Choice struct {
	Label  string `json:"label" yaml:"label"`
	Next   string `json:"next,omitempty" yaml:"next,omitempty"`
	Action Action `json:"action,omitempty" yaml:"action,omitempty"`
}

type Node struct {
	ID      string   `json:"id" yaml:"id"`
	Line    string   `json:"line" yaml:"line"`
	Choices []Choice `json:"choices,omitempty" yaml:"choices,omitempty"`
}

// Definition is a conversation tree for one NPC.
type Definition struct {
	ID      string `json:"id" yaml:"id"`
	NPCName string `json:"npc_name" yaml:"npc_name"`
	Start   string `json:"start,omitempty" yaml:"start,omitempty"`
	Nodes   []Node `json:"nodes" yaml:"nodes"`
}

func (d *Definition) StartNode() string {
	if d.Start == "" {
		return DefaultStartNode
	}
	return d.Start
}

// FindNode returns the node with id, or nil.
func (d *Definition) FindNode(id string) *Node {
	if d == nil || id == "" {
		return nil
	}
	for i := range d.Nodes {
		if d.Nodes[i].ID == id {
			return &d.Nodes[i]
		}
	}
	return nil
}

// Clone deep-copies the definition so builders can edit it freely.
func (d *Definition) Clone() *Definition {
	c := &Definition{ID: d.ID, NPCName: d.NPCName, Start: d.Start, Nodes: make([]Node, len(d.Nodes))}
	for i, n := range d.Nodes {
		c.Nodes[i] = Node{ID: n.ID, Line: n.Line, Choices: append([]Choice(nil), n.Choices...)}
	}
	return c
}

// CleanName strips engine clone suffixes from an NPC name.
func CleanName(raw string) string {
	name := strings.TrimSpace(strings.ReplaceAll(raw, "(Clone)", ""))
	if name == "" {
		return "NPC"
	}
	return name
}
