package game

import (
	"fmt"

	"github.com/jwebster45206/quest-engine/pkg/quest"
	"github.com/jwebster45206/quest-engine/pkg/world"
)

func (r *run) travel(pos world.Vec3, dt float64) {
	r.gs.Activity.Track(pos, dt)
	r.gs.Clock += dt
	r.arrive(pos)
}

func (r *run) teleport(pos world.Vec3, dt float64) {
	r.gs.Activity.NotifyTeleported(pos)
	r.gs.Activity.TimeSinceLastQuest += dt
	r.gs.Clock += dt
	r.arrive(pos)
}

// arrive checks everything that depends on where the player now stands.
func (r *run) arrive(pos world.Vec3) {
	r.gs.Position = pos
	r.progress(r.gs.Quests.ReportExplore(pos))
	r.reach(pos)

	cp, ok := world.ClosestCheckpoint(r.c.Atlas.Checkpoints, pos)
	if ok && cp.ID != r.gs.Checkpoint && cp.Position.Distance(pos) <= checkpointRadius {
		r.gs.Checkpoint = cp.ID
		r.emit(Event{Type: EventCheckpoint, Message: cp.ID})
	}
}

func (r *run) reach(pos world.Vec3) {
	k := r.keys.Current()
	if k == nil || k.Completion != quest.CompleteReachLocation {
		return
	}
	loc, ok := r.c.Atlas.Location(k.TargetLocation)
	if !ok {
		return
	}
	r.keyEvents(r.keys.TryCompleteByReach(pos, loc.Position))
}

// reachLocation handles a host trigger volume: the player is inside the location.
func (r *run) reachLocation(id string) error {
	loc, ok := r.c.Atlas.Location(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownLocation, id)
	}
	r.progress(r.gs.Quests.ReportExplore(loc.Position))
	r.reach(loc.Position)
	return nil
}

func (r *run) setCheckpoint(id string) error {
	for _, cp := range r.c.Atlas.Checkpoints {
		if cp.ID == id {
			if r.gs.Checkpoint != id {
				r.gs.Checkpoint = id
				r.emit(Event{Type: EventCheckpoint, Message: id})
			}
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownCheckpoint, id)
}

// progress reports quest counter changes, clearing the map target of finished quests.
func (r *run) progress(ps []quest.Progress) {
	for _, p := range ps {
		r.emit(Event{
			Type:      EventQuestProgress,
			QuestID:   p.QuestID,
			QuestName: p.Name,
			Current:   p.Current,
			Required:  p.Required,
		})
		if !p.Completed {
			continue
		}
		r.gs.Markers.Remove(targetMarker(p.QuestID))
		ev := Event{Type: EventQuestCompleted, QuestID: p.QuestID, QuestName: p.Name}
		if q := r.gs.Quests.Find(p.QuestID); q != nil {
			ev.NPCID = q.GiverID
			ev.Message = fmt.Sprintf("Return to %s.", r.giverName(q.GiverID))
		}
		r.emit(ev)
	}
}

func (r *run) giverName(id string) string {
	if npc, ok := r.c.NPC(id); ok && npc.Name != "" {
		return npc.Name
	}
	if g, ok := r.c.Atlas.Giver(id); ok && g.Name != "" {
		return g.Name
	}
	return id
}
