package main

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/quest-engine/internal/services/events"
	"github.com/jwebster45206/quest-engine/pkg/game"
	"github.com/jwebster45206/quest-engine/pkg/shop"
	"github.com/jwebster45206/quest-engine/pkg/state"
	"github.com/muesli/reflow/wordwrap"
)

// describeEvent renders one engine event as a log line, or "" for events the log skips.
func describeEvent(ev game.Event) string {
	switch ev.Type {
	case game.EventQuestOffered:
		return fmt.Sprintf("%s offers work: %s (%d gold)", ev.NPCID, ev.QuestName, ev.Gold)
	case game.EventQuestAssigned:
		return "Quest accepted: " + ev.QuestName
	case game.EventQuestProgress:
		return fmt.Sprintf("%s: %d/%d", ev.QuestName, ev.Current, ev.Required)
	case game.EventQuestCompleted:
		return "Objective done: " + ev.QuestName
	case game.EventQuestFailed:
		return "Quest failed: " + ev.QuestName
	case game.EventQuestTurnedIn:
		return fmt.Sprintf("Quest turned in: %s (+%d gold)", ev.QuestName, ev.Gold)
	case game.EventQuestDeclined:
		return "Offer declined: " + ev.QuestName
	case game.EventKeyAvailable:
		return fmt.Sprintf("Main quest: %s (see %s)", ev.Message, ev.NPCID)
	case game.EventKeyObjectiveComplete:
		return "Main quest objective complete"
	case game.EventKeyTurnedIn:
		return fmt.Sprintf("Reported to %s: %s", ev.NPCID, ev.Message)
	case game.EventKeyCompleted:
		return "Main quest complete: " + ev.Message
	case game.EventKeyAllCompleted:
		return ev.Message
	case game.EventItemAdded:
		return fmt.Sprintf("+%d %s", max(1, ev.Qty), ev.ItemID)
	case game.EventItemRemoved:
		return fmt.Sprintf("-%d %s", max(1, ev.Qty), ev.ItemID)
	case game.EventItemBought:
		return fmt.Sprintf("Bought %d %s for %d gold", max(1, ev.Qty), ev.ItemID, ev.Gold)
	case game.EventItemSold:
		return fmt.Sprintf("Sold %d %s for %d gold", max(1, ev.Qty), ev.ItemID, ev.Gold)
	case game.EventItemEquipped:
		return "Equipped " + ev.ItemID
	case game.EventItemUsed:
		return "Used " + ev.ItemID
	case game.EventGoldChanged:
		return fmt.Sprintf("Gold: %d", ev.Gold)
	case game.EventDialogueOpened, game.EventDialogueAdvanced:
		if ev.Dialogue != nil {
			return ev.Dialogue.Line
		}
	case game.EventShopOpened:
		return "Shop open: " + ev.TraderID
	case game.EventEnemyDamaged:
		return fmt.Sprintf("%s takes a hit (%d HP left)", ev.EnemyID, ev.HP)
	case game.EventEnemyKilled:
		return ev.EnemyID + " is dead"
	case game.EventPlayerDamaged:
		return fmt.Sprintf("You are hit (%d HP)", ev.HP)
	case game.EventPlayerHealed:
		return fmt.Sprintf("You feel better (%d HP)", ev.HP)
	case game.EventPlayerDied:
		return "You died. " + ev.Message
	case game.EventCrime:
		return "Someone saw that."
	case game.EventLootFound:
		return fmt.Sprintf("Found %d %s", max(1, ev.Qty), ev.ItemID)
	case game.EventCheckpoint:
		return "Checkpoint set"
	}
	return ev.Message
}

// describeStreamEvent renders a pub/sub message. Completed requests expand into their
// engine events.
func describeStreamEvent(ev events.Event) []string {
	switch ev.Type {
	case events.EventTypeRequestCompleted, events.EventTypeGameEvents:
		var lines []string
		for _, e := range ev.Events {
			if s := describeEvent(e); s != "" {
				lines = append(lines, s)
			}
		}
		return lines
	case events.EventTypeRequestFailed:
		return []string{fmt.Sprintf("%s refused: %s", ev.Action, ev.Error)}
	case events.EventTypeGameDeleted:
		return []string{"The game was deleted."}
	}
	return nil
}

func writeDialogue(d *game.DialogueView, width int) string {
	if d == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(formatSpeakerLine(d.Line, width) + "\n")
	for i, c := range d.Choices {
		fmt.Fprintf(&b, "  %s %s\n", choiceStyle.Render(fmt.Sprintf("%d.", i+1)), c)
	}
	return b.String()
}

func writeListings(traderID string, gold int, listings []shop.Listing) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Shop: "+traderID) + fmt.Sprintf("  (you have %d gold)\n", gold))
	for _, l := range listings {
		fmt.Fprintf(&b, "  %-22s %4d gold  x%d\n", l.Name+" ("+l.ItemID+")", l.Price, l.Qty)
	}
	return b.String()
}

// formatSpeakerLine highlights a "Name: text" prefix.
func formatSpeakerLine(line string, width int) string {
	wrapped := wordwrap.String(line, max(10, width))
	if idx := strings.Index(wrapped, ":"); idx > 0 && idx <= 24 && len(strings.Fields(wrapped[:idx])) <= 3 {
		return speakerStyle.Render(wrapped[:idx+1]) + wrapped[idx+1:]
	}
	return narratorStyle.Render(wrapped)
}

func writeMetadata(gs *state.GameState, j *game.Journal) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("GAME STATE") + "\n\n")

	content.WriteString("Game ID:\n")
	content.WriteString(gs.ID.String()[:8] + "...\n\n")

	content.WriteString("Campaign:\n")
	content.WriteString(gs.CampaignID + "\n\n")

	if gs.Player != nil {
		fmt.Fprintf(&content, "HP: %d/%d\n", gs.Player.HP(), gs.Player.MaxHP())
	}
	fmt.Fprintf(&content, "Gold: %d\n", gs.Inventory.Gold)
	fmt.Fprintf(&content, "Clock: %.0fs\n", gs.Clock)
	fmt.Fprintf(&content, "Position: %.0f, %.0f, %.0f\n\n", gs.Position.X, gs.Position.Y, gs.Position.Z)

	content.WriteString("Inventory:\n")
	if len(gs.Inventory.Slots) == 0 {
		content.WriteString("Empty\n")
	}
	for _, s := range gs.Inventory.Slots {
		mark := ""
		if s.Equipped {
			mark = " (equipped)"
		}
		fmt.Fprintf(&content, "• %s x%d%s\n", s.ItemID, s.Quantity, mark)
	}

	if j != nil {
		content.WriteString("\n" + writeJournal(j))
	}
	return content.String()
}

func writeJournal(j *game.Journal) string {
	var b strings.Builder
	b.WriteString("Quests:\n")
	if j.Key != nil {
		status := "in progress"
		switch {
		case !j.Key.Available:
			status = fmt.Sprintf("%d side quest(s) first", j.Key.BridgesLeft)
		case j.Key.ObjectiveComplete:
			status = "report back"
		}
		fmt.Fprintf(&b, "★ %s (%s)\n", j.Key.Title, status)
	} else if j.KeysDone {
		b.WriteString("★ Main story complete\n")
	}
	if j.Pending != nil {
		fmt.Fprintf(&b, "? %s from %s\n", j.Pending.Name, j.Pending.GiverID)
	}
	for _, q := range j.Active {
		fmt.Fprintf(&b, "• %s %d/%d\n", q.Name, q.CurrentCount, q.RequiredCount)
	}
	if len(j.Active) == 0 && j.Pending == nil {
		b.WriteString("No side quests\n")
	}
	switch {
	case j.Standing.Wanted:
		fmt.Fprintf(&b, "\nWanted (%d crimes)\n", j.Standing.Crimes)
	case j.Standing.Good:
		b.WriteString("\nFriend of the village\n")
	}
	if !j.HasConsumables {
		b.WriteString("No consumables left\n")
	}
	return b.String()
}
