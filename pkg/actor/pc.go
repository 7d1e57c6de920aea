package actor

import (
	"encoding/json"
	"fmt"
	"maps"

	"github.com/jwebster45206/d20"
)

// WeaponModifier is the combat modifier key equipped weapon damage is stored under.
const WeaponModifier = "weapon"

// Stats are the player's core ability scores.
type Stats struct {
	Strength     int `json:"strength" yaml:"strength"`
	Dexterity    int `json:"dexterity" yaml:"dexterity"`
	Constitution int `json:"constitution" yaml:"constitution"`
	Intelligence int `json:"intelligence" yaml:"intelligence"`
	Wisdom       int `json:"wisdom" yaml:"wisdom"`
	Charisma     int `json:"charisma" yaml:"charisma"`
}

// ToAttributes converts Stats to a map for d20.Actor compatibility
func (s *Stats) ToAttributes() map[string]int {
	return map[string]int{
		"strength":     s.Strength,
		"dexterity":    s.Dexterity,
		"constitution": s.Constitution,
		"intelligence": s.Intelligence,
		"wisdom":       s.Wisdom,
		"charisma":     s.Charisma,
	}
}

// PCSpec is the serializable specification for the player character
type PCSpec struct {
	ID          string         `json:"id" yaml:"id"`
	Name        string         `json:"name,omitempty" yaml:"name,omitempty"`
	Pronouns    string         `json:"pronouns,omitempty" yaml:"pronouns,omitempty"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Stats       Stats          `json:"stats" yaml:"stats"`
	HP          int            `json:"hp" yaml:"hp"`
	MaxHP       int            `json:"max_hp" yaml:"max_hp"`
	AC          int            `json:"ac" yaml:"ac"`
	BaseDamage  int            `json:"base_damage" yaml:"base_damage"`
	Attributes  map[string]int `json:"attributes,omitempty" yaml:"attributes,omitempty"`

	// Equipment bonuses currently folded into the actor.
	ArmorBonus  int `json:"armor_bonus,omitempty" yaml:"-"`
	WeaponBonus int `json:"weapon_bonus,omitempty" yaml:"-"`
}

// PC is the runtime representation of the player character. HP lives on the spec;
// the d20 actor carries AC, attributes and combat modifiers.
type PC struct {
	Spec  *PCSpec
	Actor *d20.Actor
}

// NewPCFromSpec creates a PC from a PCSpec, filling missing HP and damage.
func NewPCFromSpec(spec *PCSpec) (*PC, error) {
	if spec == nil {
		return nil, fmt.Errorf("spec cannot be nil")
	}
	if spec.MaxHP <= 0 {
		spec.MaxHP = 100
	}
	if spec.HP <= 0 || spec.HP > spec.MaxHP {
		spec.HP = spec.MaxHP
	}
	if spec.BaseDamage <= 0 {
		spec.BaseDamage = 1
	}
	pc := &PC{Spec: spec}
	if err := pc.rebuild(); err != nil {
		return nil, err
	}
	return pc, nil
}

func (pc *PC) rebuild() error {
	attrs := pc.Spec.Stats.ToAttributes()
	maps.Copy(attrs, pc.Spec.Attributes)

	mods := map[string]int{}
	if pc.Spec.WeaponBonus != 0 {
		mods[WeaponModifier] = pc.Spec.WeaponBonus
	}

	actor, err := d20.NewActor(pc.Spec.ID).
		WithHP(pc.Spec.MaxHP).
		WithAC(pc.Spec.AC + pc.Spec.ArmorBonus).
		WithAttributes(attrs).
		WithCombatModifiers(mods).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build actor: %w", err)
	}
	if pc.Spec.HP > 0 && pc.Spec.HP != pc.Spec.MaxHP {
		if err := actor.SetHP(pc.Spec.HP); err != nil {
			return fmt.Errorf("failed to set HP: %w", err)
		}
	}
	pc.Actor = actor
	return nil
}

// ApplyEquipment folds armor and weapon bonuses into the actor.
func (pc *PC) ApplyEquipment(armor, weapon int) error {
	if armor == pc.Spec.ArmorBonus && weapon == pc.Spec.WeaponBonus && pc.Actor != nil {
		return nil
	}
	pc.Spec.ArmorBonus = armor
	pc.Spec.WeaponBonus = weapon
	return pc.rebuild()
}

func (pc *PC) HP() int    { return pc.Spec.HP }
func (pc *PC) MaxHP() int { return pc.Spec.MaxHP }

func (pc *PC) AC() int {
	if pc.Actor == nil {
		return pc.Spec.AC + pc.Spec.ArmorBonus
	}
	return pc.Actor.AC()
}

// AttackDamage is base damage plus any weapon modifier on the actor.
func (pc *PC) AttackDamage() int {
	dmg := pc.Spec.BaseDamage
	if pc.Actor == nil {
		return dmg + pc.Spec.WeaponBonus
	}
	for _, mod := range pc.Actor.GetCombatModifiers() {
		if mod.Reason == WeaponModifier {
			dmg += mod.Value
		}
	}
	return dmg
}

// Defense divides incoming damage; armor raises it from a base of 1.
func (pc *PC) Defense() int {
	return 1 + pc.Spec.ArmorBonus
}

// TakeDamage applies amount reduced by defense (at least 1) and reports the damage taken
// and whether the hit was fatal.
func (pc *PC) TakeDamage(amount int) (int, bool) {
	if amount <= 0 || pc.IsDead() {
		return 0, false
	}
	taken := max(1, amount/pc.Defense())
	pc.Spec.HP = max(0, pc.Spec.HP-taken)
	return taken, pc.IsDead()
}

// Heal restores up to n HP to a living player and returns how much was restored.
func (pc *PC) Heal(n int) int {
	if n <= 0 || pc.IsDead() {
		return 0
	}
	before := pc.Spec.HP
	pc.Spec.HP = min(pc.Spec.MaxHP, pc.Spec.HP+n)
	return pc.Spec.HP - before
}

func (pc *PC) IsDead() bool {
	return pc.Spec.HP <= 0
}

// Respawn restores full health.
func (pc *PC) Respawn() error {
	pc.Spec.HP = pc.Spec.MaxHP
	return pc.rebuild()
}

// MarshalJSON writes the spec, which already mirrors runtime state.
func (pc *PC) MarshalJSON() ([]byte, error) {
	if pc == nil || pc.Spec == nil {
		return []byte("null"), nil
	}
	return json.Marshal(pc.Spec)
}

// UnmarshalJSON reconstructs a PC from JSON and rebuilds its Actor
func (pc *PC) UnmarshalJSON(data []byte) error {
	var spec PCSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return fmt.Errorf("failed to unmarshal PC spec: %w", err)
	}
	built, err := NewPCFromSpec(&spec)
	if err != nil {
		return fmt.Errorf("failed to rebuild actor: %w", err)
	}
	*pc = *built
	return nil
}
