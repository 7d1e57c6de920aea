package quest

import (
	"strings"

	"github.com/jwebster45206/quest-engine/pkg/activity"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	DefaultTitleFormat       = "{verb} {target} for {giver}"
	DefaultDescriptionFormat = "{flavor}\nLocation: {placeName}"
)

// Template is an authored blueprint the generator turns into a DynamicQuest.
type Template struct {
	ID          string         `json:"id" yaml:"id"`
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Type        Type           `json:"type" yaml:"type"`
	Personality PersonalityTag `json:"personality,omitempty" yaml:"personality,omitempty"`

	CriminalOnly bool `json:"criminal_only,omitempty" yaml:"criminal_only,omitempty"`
	AvoidTowns   bool `json:"avoid_towns,omitempty" yaml:"avoid_towns,omitempty"`

	RequiredItem string `json:"required_item,omitempty" yaml:"required_item,omitempty"`
	TargetEnemy  string `json:"target_enemy,omitempty" yaml:"target_enemy,omitempty"`
	DeliverTo    string `json:"deliver_to,omitempty" yaml:"deliver_to,omitempty"`

	// WorldTag is a location category (town, remote, secret, bandit).
	WorldTag       string  `json:"world_tag,omitempty" yaml:"world_tag,omitempty"`
	RemoteLocation bool    `json:"remote_location,omitempty" yaml:"remote_location,omitempty"`
	AreaRadius     float64 `json:"area_radius,omitempty" yaml:"area_radius,omitempty"`

	BaseTargetAmount int     `json:"base_target_amount,omitempty" yaml:"base_target_amount,omitempty"`
	DifficultyWeight float64 `json:"difficulty_weight,omitempty" yaml:"difficulty_weight,omitempty"`
	TimeLimit        float64 `json:"time_limit,omitempty" yaml:"time_limit,omitempty"`

	GoldReward  int      `json:"gold_reward,omitempty" yaml:"gold_reward,omitempty"`
	ItemRewards []string `json:"item_rewards,omitempty" yaml:"item_rewards,omitempty"`

	GiverTag    string   `json:"giver_tag,omitempty" yaml:"giver_tag,omitempty"`
	ContextTags []string `json:"context_tags,omitempty" yaml:"context_tags,omitempty"`

	TitleFormat       string   `json:"title_format,omitempty" yaml:"title_format,omitempty"`
	DescriptionFormat string   `json:"description_format,omitempty" yaml:"description_format,omitempty"`
	FlavorLines       []string `json:"flavor_lines,omitempty" yaml:"flavor_lines,omitempty"`
	Verb              string   `json:"verb,omitempty" yaml:"verb,omitempty"`
	TargetNoun        string   `json:"target_noun,omitempty" yaml:"target_noun,omitempty"`

	IntroText   string `json:"intro_text,omitempty" yaml:"intro_text,omitempty"`
	SuccessText string `json:"success_text,omitempty" yaml:"success_text,omitempty"`
	FailText    string `json:"fail_text,omitempty" yaml:"fail_text,omitempty"`
}

// Allows reports whether a player with this persona and criminal status may receive
// the template.
func (t Template) Allows(p activity.Persona, criminal bool) bool {
	if criminal && t.AvoidTowns {
		return false
	}
	if !criminal && t.CriminalOnly {
		return false
	}
	switch t.Personality {
	case PersonalityAggressive:
		return p == activity.PersonaFighter
	case PersonalityStealthy, PersonalityCriminal:
		return p == activity.PersonaCriminal
	case PersonalityExplorer:
		return p == activity.PersonaExplorer
	default:
		return true
	}
}

func (t Template) HasContext(tag string) bool {
	if tag == "" {
		return false
	}
	for _, c := range t.ContextTags {
		if strings.EqualFold(c, tag) {
			return true
		}
	}
	return false
}

// Tokens fill the {verb} {target} {giver} {flavor} {placeName} placeholders.
type Tokens struct {
	Verb   string
	Target string
	Giver  string
	Flavor string
	Place  string
}

var titleCaser = cases.Title(language.English)

// Render returns the title and description for the given tokens. Verb and target fall
// back to the template's own values.
func (t Template) Render(tok Tokens) (title, description string) {
	if tok.Verb == "" {
		tok.Verb = t.Verb
	}
	if tok.Target == "" {
		tok.Target = t.TargetNoun
	}
	r := strings.NewReplacer(
		"{verb}", tok.Verb,
		"{target}", tok.Target,
		"{giver}", tok.Giver,
		"{flavor}", tok.Flavor,
		"{placeName}", tok.Place,
	)

	titleFmt := t.TitleFormat
	if titleFmt == "" {
		titleFmt = DefaultTitleFormat
	}
	title = strings.Join(strings.Fields(r.Replace(titleFmt)), " ")
	if title == "" || title == "for" {
		title = t.Name
	} else {
		title = titleCaser.String(title)
	}

	descFmt := t.DescriptionFormat
	if descFmt == "" {
		descFmt = DefaultDescriptionFormat
	}
	description = strings.TrimSpace(r.Replace(descFmt))
	if t.Description != "" {
		if description == "" {
			description = t.Description
		} else {
			description = t.Description + "\n" + description
		}
	}
	return title, description
}
