package quest

import (
	"errors"
	"fmt"
	"slices"

	"github.com/jwebster45206/quest-engine/pkg/world"
)

var (
	ErrNoPendingOffer  = errors.New("no pending quest offer")
	ErrWrongGiver      = errors.New("quest belongs to another giver")
	ErrQuestNotFound   = errors.New("quest not found")
	ErrQuestIncomplete = errors.New("quest is not complete")
)

// Rewarder receives turn-in rewards.
type Rewarder interface {
	AddGold(amount int)
	GrantItem(itemID string, qty int) error
}

// Progress describes one change to an active quest.
type Progress struct {
	QuestID   string `json:"quest_id"`
	Name      string `json:"name"`
	Current   int    `json:"current"`
	Required  int    `json:"required"`
	Completed bool   `json:"completed"`
}

// Log holds the player's dynamic quests: an unaccepted offer, accepted quests and the
// ids of those already turned in.
type Log struct {
	Pending   *DynamicQuest   `json:"pending,omitempty"`
	Active    []*DynamicQuest `json:"active,omitempty"`
	Completed []string        `json:"completed,omitempty"`
	Failed    []string        `json:"failed,omitempty"`
}

func (l *Log) SetPendingOffer(q *DynamicQuest) {
	l.Pending = q
}

func (l *Log) HasPendingFor(giverID string) bool {
	return l.Pending != nil && l.Pending.GiverID == giverID
}

// Current is the most recently accepted quest that has not been turned in.
func (l *Log) Current() *DynamicQuest {
	if len(l.Active) == 0 {
		return nil
	}
	return l.Active[len(l.Active)-1]
}

func (l *Log) Find(id string) *DynamicQuest {
	for _, q := range l.Active {
		if q.ID == id {
			return q
		}
	}
	return nil
}

// Accept starts the pending offer at game time now.
func (l *Log) Accept(now float64) (*DynamicQuest, error) {
	q := l.Pending
	if q == nil {
		return nil, ErrNoPendingOffer
	}
	l.Pending = nil
	q.Start(now)
	l.Active = append(l.Active, q)
	return q, nil
}

// ReportKill advances kill quests. Quests with a target enemy only count that enemy.
func (l *Log) ReportKill(enemyID, enemyType string) []Progress {
	return l.report(TypeKill, func(q *DynamicQuest) bool {
		return q.TargetEnemy == "" || q.TargetEnemy == enemyID || q.TargetEnemy == enemyType
	})
}

func (l *Log) ReportCollect(itemID string) []Progress {
	return l.report(TypeCollect, func(q *DynamicQuest) bool {
		return q.TargetItem == "" || q.TargetItem == itemID
	})
}

// ReportExplore advances explore quests whose area contains pos.
func (l *Log) ReportExplore(pos world.Vec3) []Progress {
	return l.report(TypeExplore, func(q *DynamicQuest) bool {
		r := q.AreaRadius
		if r <= 0 {
			r = DefaultExploreRadius
		}
		return pos.Distance(q.TargetPosition) <= r
	})
}

func (l *Log) ReportSteal(itemID string) []Progress {
	return l.report(TypeSteal, func(q *DynamicQuest) bool {
		return q.TargetItem == "" || q.TargetItem == itemID
	})
}

// ReportDeliver advances deliver quests addressed to npcID. has reports whether the
// player carries a given item.
func (l *Log) ReportDeliver(npcID string, has func(itemID string) bool) []Progress {
	return l.report(TypeDeliver, func(q *DynamicQuest) bool {
		if q.DeliverTo != npcID {
			return false
		}
		return q.TargetItem == "" || has(q.TargetItem)
	})
}

func (l *Log) report(t Type, match func(*DynamicQuest) bool) []Progress {
	var out []Progress
	for _, q := range l.Active {
		if q.Type != t || q.Status != StatusActive || !match(q) {
			continue
		}
		if q.MarkProgress(1) {
			out = append(out, Progress{
				QuestID:   q.ID,
				Name:      q.Name,
				Current:   q.CurrentCount,
				Required:  q.RequiredCount,
				Completed: q.IsComplete(),
			})
		}
	}
	return out
}

// CanTurnIn returns the completed quest giverID can accept, if any.
func (l *Log) CanTurnIn(giverID string) *DynamicQuest {
	for _, q := range l.Active {
		if q.IsComplete() && q.GiverID == giverID {
			return q
		}
	}
	return nil
}

// TurnIn removes a completed quest given by giverID and pays its rewards.
func (l *Log) TurnIn(giverID string, r Rewarder) (*DynamicQuest, error) {
	q := l.CanTurnIn(giverID)
	if q == nil {
		if cur := l.Current(); cur != nil && !cur.IsComplete() && cur.GiverID == giverID {
			return nil, ErrQuestIncomplete
		}
		return nil, ErrQuestNotFound
	}
	if r != nil {
		if q.GoldReward > 0 {
			r.AddGold(q.GoldReward)
		}
		for _, item := range q.ItemRewards {
			if err := r.GrantItem(item, 1); err != nil {
				return nil, fmt.Errorf("granting reward %s: %w", item, err)
			}
		}
	}
	l.remove(q.ID)
	l.Completed = append(l.Completed, q.ID)
	return q, nil
}

// FailTimedOut fails every active quest past its time limit and returns them.
func (l *Log) FailTimedOut(now float64) []*DynamicQuest {
	var failed []*DynamicQuest
	for _, q := range l.Active {
		if q.IsTimedOut(now) {
			q.Fail()
			failed = append(failed, q)
		}
	}
	for _, q := range failed {
		l.remove(q.ID)
		l.Failed = append(l.Failed, q.ID)
	}
	return failed
}

// Abandon fails an accepted quest at the player's request.
func (l *Log) Abandon(id string) (*DynamicQuest, error) {
	q := l.Find(id)
	if q == nil {
		return nil, ErrQuestNotFound
	}
	q.Fail()
	l.remove(id)
	l.Failed = append(l.Failed, id)
	return q, nil
}

func (l *Log) remove(id string) {
	l.Active = slices.DeleteFunc(l.Active, func(q *DynamicQuest) bool { return q.ID == id })
}
