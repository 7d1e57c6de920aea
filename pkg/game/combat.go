package game

import (
	"fmt"

	"github.com/jwebster45206/quest-engine/pkg/actor"
	"github.com/jwebster45206/quest-engine/pkg/world"
)

func (r *run) enemy(id string) (*actor.Enemy, actor.EnemyStats, error) {
	en, ok := r.gs.Enemies[id]
	if !ok {
		return nil, actor.EnemyStats{}, fmt.Errorf("%w: %s", ErrUnknownEnemy, id)
	}
	stats, ok := r.c.Enemy(en.TemplateID)
	if !ok {
		return nil, actor.EnemyStats{}, fmt.Errorf("%w: template %s", ErrUnknownEnemy, en.TemplateID)
	}
	return en, stats, nil
}

// attack lands one hit. amount overrides the player's attack damage when positive.
func (r *run) attack(id string, amount int) error {
	en, stats, err := r.enemy(id)
	if err != nil {
		return err
	}
	if en.IsDefeated() {
		return fmt.Errorf("%w: %s", ErrEnemyDefeated, id)
	}
	if stats.Guard && !r.gs.Tags.AttackedGuards {
		r.gs.Tags.AttackedGuards = true
		r.emit(Event{Type: EventCrime, EnemyID: id, Message: "attacked a guard"})
	}
	en.Aggro = true

	if amount <= 0 {
		amount = r.gs.Player.AttackDamage()
	}
	killed := en.TakeDamage(amount, stats.Defense)
	r.emit(Event{Type: EventEnemyDamaged, EnemyID: id, HP: en.HP})
	if killed {
		r.defeated(en, stats)
	}
	return nil
}

// kill handles a defeat the host resolved on its own.
func (r *run) kill(id string) error {
	en, stats, err := r.enemy(id)
	if err != nil {
		return err
	}
	if en.IsDefeated() {
		return fmt.Errorf("%w: %s", ErrEnemyDefeated, id)
	}
	en.HP = 0
	r.defeated(en, stats)
	return nil
}

func (r *run) defeated(en *actor.Enemy, stats actor.EnemyStats) {
	r.gs.Activity.RegisterEnemyKill()
	r.emit(Event{Type: EventEnemyKilled, EnemyID: en.ID, Message: en.Name})

	switch {
	case stats.Guard:
		r.gs.Tags.AttackedGuards = true
		r.crime("killed a guard")
	case stats.Civilian:
		r.crime("killed a civilian")
	}

	if gold := stats.RollGold(r.rng); gold > 0 {
		r.gs.Inventory.AddGold(gold)
		r.emit(Event{Type: EventGoldChanged, EnemyID: en.ID, Gold: gold})
	}
	if stats.LootDrop != "" {
		if err := r.grant(stats.LootDrop, 1); err != nil {
			r.e.logger.Warn("Dropped unknown loot item", "enemy", en.TemplateID, "item", stats.LootDrop)
		}
	}

	r.progress(r.gs.Quests.ReportKill(en.ID, en.TemplateID))
	evs := r.keys.NotifyEnemyKilled(en.ID)
	if len(evs) == 0 && en.TemplateID != en.ID {
		evs = r.keys.NotifyEnemyKilled(en.TemplateID)
	}
	r.keyEvents(evs)
}

// crime marks the player wanted.
func (r *run) crime(what string) {
	r.gs.Activity.RegisterCrime()
	r.gs.Tags.PlayerWanted = true
	r.emit(Event{Type: EventCrime, Message: what})
}

// takeDamage applies a hit to the player, by default the enemy's base damage.
func (r *run) takeDamage(enemyID string, amount int) error {
	if amount <= 0 {
		_, stats, err := r.enemy(enemyID)
		if err != nil {
			return err
		}
		amount = stats.Damage
	}
	taken, dead := r.gs.Player.TakeDamage(amount)
	r.emit(Event{Type: EventPlayerDamaged, EnemyID: enemyID, Qty: taken, HP: r.gs.Player.HP()})
	if dead {
		return r.die()
	}
	return nil
}

// die drops everything but equipment and respawns the player at full health. Wanted
// players are sent to the nearest checkpoint outside town.
func (r *run) die() error {
	cat := r.c.Catalog()
	r.gs.Inventory.ClearOnDeath(cat)
	r.gs.Deaths++
	if r.gs.Dialogue.Active() {
		r.gs.Dialogue.End()
	}

	pos := r.c.Atlas.SpawnPoint(r.gs.Checkpoint)
	if r.gs.Criminal() {
		var outside []world.Checkpoint
		for _, cp := range r.c.Atlas.Checkpoints {
			if !cp.Town {
				outside = append(outside, cp)
			}
		}
		if cp, ok := world.ClosestCheckpoint(outside, r.gs.Position); ok {
			pos = cp.Position
			r.gs.Checkpoint = cp.ID
		}
	}
	r.gs.Position = pos
	r.gs.Activity.NotifyTeleported(pos)

	if err := r.gs.Player.Respawn(); err != nil {
		return fmt.Errorf("failed to respawn: %w", err)
	}
	if err := r.gs.RefreshEquipment(cat); err != nil {
		return err
	}
	r.emit(Event{Type: EventPlayerDied, HP: r.gs.Player.HP(), Message: r.gs.Checkpoint})
	return nil
}
