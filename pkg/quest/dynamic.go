package quest

import (
	"fmt"

	"github.com/jwebster45206/quest-engine/pkg/world"
)

// Default area sizes
const (
	DefaultExploreRadius = 8.0
	DefaultDeliverRadius = 2.0
)

// DynamicQuest is a generated side objective. Times are game-clock seconds.
type DynamicQuest struct {
	ID          string `json:"id"`
	TemplateID  string `json:"template_id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Type        Type   `json:"type"`
	Status      Status `json:"status"`
	ContextTag  string `json:"context_tag,omitempty"`

	GiverID        string     `json:"giver_id,omitempty"`
	LocationID     string     `json:"location_id,omitempty"`
	TargetPosition world.Vec3 `json:"target_position"`
	AreaRadius     float64    `json:"area_radius,omitempty"`
	TargetItem     string     `json:"target_item,omitempty"`
	TargetEnemy    string     `json:"target_enemy,omitempty"`
	DeliverTo      string     `json:"deliver_to,omitempty"`

	RequiredCount int `json:"required_count"`
	CurrentCount  int `json:"current_count"`

	TimeLimit float64 `json:"time_limit,omitempty"`
	StartedAt float64 `json:"started_at,omitempty"`

	GoldReward  int      `json:"gold_reward"`
	ItemRewards []string `json:"item_rewards,omitempty"`

	IntroText   string `json:"intro_text,omitempty"`
	SuccessText string `json:"success_text,omitempty"`
	FailText    string `json:"fail_text,omitempty"`
}

// Start activates the quest at game time now.
func (q *DynamicQuest) Start(now float64) {
	q.Status = StatusActive
	q.StartedAt = now
	if q.RequiredCount < 1 {
		q.RequiredCount = 1
	}
}

// MarkProgress adds delta to the count of an active quest and completes it once the
// required count is reached. It reports whether the quest changed.
func (q *DynamicQuest) MarkProgress(delta int) bool {
	if q.Status != StatusActive || delta <= 0 {
		return false
	}
	q.CurrentCount += delta
	if q.CurrentCount >= q.RequiredCount {
		q.CurrentCount = q.RequiredCount
		q.Complete()
	}
	return true
}

func (q *DynamicQuest) Complete() {
	if q.Status == StatusCompleted {
		return
	}
	q.Status = StatusCompleted
}

// Fail does nothing to a completed quest.
func (q *DynamicQuest) Fail() {
	if q.Status == StatusCompleted {
		return
	}
	q.Status = StatusFailed
}

func (q *DynamicQuest) IsTimedOut(now float64) bool {
	return q.Status == StatusActive && q.TimeLimit > 0 && now-q.StartedAt > q.TimeLimit
}

func (q *DynamicQuest) IsComplete() bool {
	return q.Status == StatusCompleted
}

// ShortDescription is what the giver says when offering the quest.
func (q *DynamicQuest) ShortDescription() string {
	if q.IntroText != "" {
		return q.IntroText
	}
	switch q.Type {
	case TypeKill:
		if q.TargetEnemy != "" {
			return fmt.Sprintf("I need you to eliminate %s.", q.TargetEnemy)
		}
		return "I need you to eliminate the threat."
	case TypeSteal:
		if q.TargetItem != "" {
			return fmt.Sprintf("I need you to steal %s for me.", q.TargetItem)
		}
		return "I've heard there are some valuables easily accessible nearby."
	case TypeCollect:
		if q.TargetItem != "" {
			return fmt.Sprintf("I need %d of %s.", q.RequiredCount, q.TargetItem)
		}
		return fmt.Sprintf("Could you collect %d items for me?", q.RequiredCount)
	case TypeDeliver:
		if q.TargetItem != "" && q.DeliverTo != "" {
			return fmt.Sprintf("Take %s to %s.", q.TargetItem, q.DeliverTo)
		}
		return "I need a package delivered."
	case TypeExplore:
		return "There's something strange going on nearby. I've marked the spot on your map, can you investigate?"
	default:
		return "Complete the objective."
	}
}
