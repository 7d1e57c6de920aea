package actor

import (
	"math/rand/v2"

	"github.com/jwebster45206/quest-engine/pkg/world"
)

type EnemyType string

const (
	EnemyBandit EnemyType = "bandit"
	EnemySpider EnemyType = "spider"
	EnemyGoblin EnemyType = "goblin"
)

// EnemyStats is an enemy template loaded from campaign content.
type EnemyStats struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Type        EnemyType `json:"type,omitempty" yaml:"type,omitempty"`
	MaxHealth   int       `json:"max_health" yaml:"max_health"`
	Damage      int       `json:"damage" yaml:"damage"`
	Defense     int       `json:"defense,omitempty" yaml:"defense,omitempty"`
	SightRange  float64   `json:"sight_range,omitempty" yaml:"sight_range,omitempty"`
	AttackRange float64   `json:"attack_range,omitempty" yaml:"attack_range,omitempty"`
	LootDrop    string    `json:"loot_drop,omitempty" yaml:"loot_drop,omitempty"`
	GoldMin     int       `json:"gold_min,omitempty" yaml:"gold_min,omitempty"`
	GoldMax     int       `json:"gold_max,omitempty" yaml:"gold_max,omitempty"`

	// Civilians and guards are not enemies of an honest player; killing one is a crime.
	Civilian bool `json:"civilian,omitempty" yaml:"civilian,omitempty"`
	Guard    bool `json:"guard,omitempty" yaml:"guard,omitempty"`
}

// Enemy is a spawned instance of an EnemyStats template.
type Enemy struct {
	ID         string     `json:"id"`
	TemplateID string     `json:"template_id"`
	Name       string     `json:"name"`
	HP         int        `json:"hp"`
	MaxHP      int        `json:"max_hp"`
	Position   world.Vec3 `json:"position"`
	// Aggro is set once the enemy has noticed the player.
	Aggro bool `json:"aggro,omitempty"`
}

// NewEnemy spawns an enemy from its template. An id left empty uses the template id.
func NewEnemy(id string, stats EnemyStats, pos world.Vec3) *Enemy {
	if id == "" {
		id = stats.ID
	}
	hp := stats.MaxHealth
	if hp <= 0 {
		hp = 1
	}
	return &Enemy{ID: id, TemplateID: stats.ID, Name: stats.Name, HP: hp, MaxHP: hp, Position: pos}
}

// TakeDamage reduces HP by n less defense, never below 0. It reports whether this hit
// defeated the enemy.
func (e *Enemy) TakeDamage(n, defense int) bool {
	if n <= 0 || e.IsDefeated() {
		return false
	}
	e.HP = max(0, e.HP-max(1, n-defense))
	return e.IsDefeated()
}

func (e *Enemy) IsDefeated() bool {
	return e.HP <= 0
}

// RollGold returns the gold dropped on defeat, inclusive of both bounds.
func (s EnemyStats) RollGold(rng *rand.Rand) int {
	lo, hi := s.GoldMin, s.GoldMax
	if hi < lo {
		hi = lo
	}
	if hi <= 0 {
		return 0
	}
	return lo + rng.IntN(hi-lo+1)
}

// IsHostileTo reports whether the enemy attacks this player on sight.
func (s EnemyStats) IsHostileTo(criminal bool) bool {
	if s.Guard {
		return criminal
	}
	return !s.Civilian
}
