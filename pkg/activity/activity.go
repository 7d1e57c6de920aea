package activity

import "github.com/jwebster45206/quest-engine/pkg/world"

const (
	// MinMoveSpeed is the speed below which the player counts as idle.
	MinMoveSpeed = 0.15
	// TeleportThreshold is the per-sample jump treated as a teleport rather than movement.
	TeleportThreshold = 15.0
)

// Counters is the player's behavioral record. The quest picker reads it to decide what
// kind of side quest to offer next.
type Counters struct {
	DistanceTraveled   float64 `json:"distance_traveled"`
	TimeSinceLastQuest float64 `json:"time_since_last_quest"` // seconds
	TimeInIdle         float64 `json:"time_in_idle"`          // seconds
	EnemiesKilled      int     `json:"enemies_killed"`
	CrimesCommitted    int     `json:"crimes_committed"`
	FightsAvoided      int     `json:"fights_avoided"`
	SecretsFound       int     `json:"secrets_found"`
}

// Tracker accumulates counters from position samples reported by the host.
type Tracker struct {
	Counters
	LastPosition *world.Vec3 `json:"last_position,omitempty"`
}

// Track records a position sample taken dt seconds after the previous one. The quest
// timer runs on every sample; distance and idle time only on ordinary movement.
func (t *Tracker) Track(pos world.Vec3, dt float64) {
	if dt > 0 {
		t.TimeSinceLastQuest += dt
	}
	if t.LastPosition == nil {
		t.LastPosition = &pos
		return
	}
	if t.LastPosition.Distance(pos) > TeleportThreshold {
		t.NotifyTeleported(pos)
		return
	}

	step := t.LastPosition.HorizontalDistance(pos)
	t.DistanceTraveled += step
	speed := 0.0
	if dt > 0 {
		speed = step / dt
	}
	if speed > MinMoveSpeed {
		t.TimeInIdle = 0
	} else {
		t.TimeInIdle += dt
	}
	t.LastPosition = &pos
}

// Advance passes time without movement information.
func (t *Tracker) Advance(dt float64) {
	if dt <= 0 {
		return
	}
	t.TimeSinceLastQuest += dt
	t.TimeInIdle += dt
}

func (t *Tracker) NotifyTeleported(pos world.Vec3) {
	t.LastPosition = &pos
	t.TimeInIdle = 0
}

func (t *Tracker) RegisterEnemyKill() { t.EnemiesKilled++ }

func (t *Tracker) RegisterCrime() { t.CrimesCommitted++ }

func (t *Tracker) RegisterFightAvoided() { t.FightsAvoided++ }

func (t *Tracker) RegisterSecretFound() { t.SecretsFound++ }

func (t *Tracker) ResetQuestTimer() { t.TimeSinceLastQuest = 0 }

// IsWanted is true once any crime has been committed.
func (c Counters) IsWanted() bool {
	return c.CrimesCommitted > 0
}
