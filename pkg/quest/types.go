package quest

import (
	"fmt"
	"strings"
)

// Type is the category of a side objective.
type Type string

const (
	TypeExplore Type = "explore"
	TypeKill    Type = "kill"
	TypeCollect Type = "collect"
	TypeDeliver Type = "deliver"
	TypeSteal   Type = "steal"
)

// AllTypes is the canonical order used anywhere iteration order matters.
var AllTypes = []Type{TypeExplore, TypeKill, TypeCollect, TypeDeliver, TypeSteal}

func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllTypes {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown quest type %q", s)
}

func (t Type) Valid() bool {
	_, err := ParseType(string(t))
	return err == nil
}

// Status of a quest instance.
type Status string

const (
	StatusInactive  Status = "inactive"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// PersonalityTag restricts a template to players of a certain persona.
type PersonalityTag string

const (
	PersonalityNeutral    PersonalityTag = "neutral"
	PersonalityAggressive PersonalityTag = "aggressive"
	PersonalityStealthy   PersonalityTag = "stealthy"
	PersonalityExplorer   PersonalityTag = "explorer"
	PersonalityCriminal   PersonalityTag = "criminal"
)
