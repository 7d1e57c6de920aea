package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/jwebster45206/quest-engine/internal/handlers"
	"github.com/jwebster45206/quest-engine/pkg/game"
	"github.com/jwebster45206/quest-engine/pkg/world"
)

// commandSpec describes one typed command for /help and suggestions.
type commandSpec struct {
	name  string
	args  string
	help  string
	nargs int
}

var commands = []commandSpec{
	{"help", "", "Show this help", 0},
	{"quests", "", "Show the quest log", 0},
	{"state", "", "Reload the game state", 0},
	{"copy", "", "Copy the game ID to the clipboard", 0},
	{"quit", "", "Leave the console", 0},

	{"talk", "<npc>", "Start a conversation", 1},
	{"choose", "<n>", "Pick a dialogue option (a bare number works too)", 1},
	{"leave", "", "End the conversation", 0},
	{"shop", "<trader>", "Show a trader's stock", 1},
	{"buy", "<item> [qty]", "Buy from the open shop", 1},
	{"sell", "<item> [qty]", "Sell to the open shop", 1},
	{"equip", "<item>", "Equip an item", 1},
	{"unequip", "<item>", "Unequip an item", 1},
	{"use", "<item>", "Use a consumable", 1},

	{"accept", "", "Accept the offered quest", 0},
	{"decline", "", "Decline the offered quest", 0},
	{"ask", "[npc]", "Ask for work", 0},
	{"turnin", "<npc>", "Turn in a finished quest", 1},
	{"abandon", "<quest>", "Abandon an accepted quest", 1},

	{"go", "<x> <y> <z>", "Travel to a position", 3},
	{"wait", "<seconds>", "Let time pass", 1},
	{"reach", "<location>", "Arrive at a location", 1},
	{"checkpoint", "<location>", "Set a respawn checkpoint", 1},
	{"attack", "<enemy> <damage>", "Hit an enemy", 2},
	{"kill", "<enemy>", "Finish an enemy", 1},
	{"avoid", "", "Walk away from a fight", 0},
	{"hurt", "<damage> [enemy]", "Take damage", 1},
	{"collect", "<item> [qty]", "Pick something up", 1},
	{"steal", "<item> <owner> [qty]", "Take something that isn't yours", 2},
	{"open", "<chest>", "Open a chest", 1},
	{"crime", "", "Commit a crime", 0},
	{"help_villagers", "", "Help the villagers", 0},
}

// commandContext is the UI state a command is parsed against.
type commandContext struct {
	inDialogue bool
	trader     string
}

// command is a parsed input line. Exactly one target is set.
type command struct {
	verb string

	action    *game.Action
	dialogue  *handlers.DialogueRequest
	trade     *handlers.TradeRequest
	inventory *handlers.InventoryRequest
	shop      string
}

var errEmptyCommand = errors.New("empty command")

func parseCommand(input string, ctx commandContext) (command, error) {
	fields := strings.Fields(strings.TrimPrefix(strings.TrimSpace(input), "/"))
	if len(fields) == 0 {
		return command{}, errEmptyCommand
	}
	verb, args := strings.ToLower(fields[0]), fields[1:]

	if n, err := strconv.Atoi(verb); err == nil && ctx.inDialogue {
		return choiceCommand(n)
	}

	spec, ok := findCommand(verb)
	if !ok {
		if s := suggestCommand(verb); s != "" {
			return command{}, fmt.Errorf("unknown command %q, did you mean %q?", verb, s)
		}
		return command{}, fmt.Errorf("unknown command %q, try help", verb)
	}
	if len(args) < spec.nargs {
		return command{}, fmt.Errorf("usage: %s %s", spec.name, spec.args)
	}

	c := command{verb: verb}
	act := func(a game.Action) (command, error) {
		if err := a.Validate(); err != nil {
			return command{}, err
		}
		c.action = &a
		return c, nil
	}

	switch verb {
	case "help", "quests", "state", "copy", "quit":
		return c, nil
	case "talk":
		c.dialogue = &handlers.DialogueRequest{NPCID: args[0]}
	case "choose":
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return command{}, fmt.Errorf("choice must be a number: %s", args[0])
		}
		return choiceCommand(n)
	case "leave":
		c.dialogue = &handlers.DialogueRequest{Leave: true}
	case "shop":
		c.shop = args[0]
	case "buy", "sell":
		if ctx.trader == "" {
			return command{}, errors.New("open a shop first: shop <trader>")
		}
		qty, err := optionalInt(args, 1, 1)
		if err != nil {
			return command{}, err
		}
		c.shop = ctx.trader
		c.trade = &handlers.TradeRequest{Op: verb, ItemID: args[0], Qty: qty}
	case "equip", "unequip", "use":
		c.inventory = &handlers.InventoryRequest{Op: verb, ItemID: args[0]}
	case "accept":
		return act(game.Action{Type: game.ActAcceptQuest})
	case "decline":
		return act(game.Action{Type: game.ActDeclineOffer})
	case "ask":
		a := game.Action{Type: game.ActRequestOffer}
		if len(args) > 0 {
			a.NPCID = args[0]
		}
		return act(a)
	case "turnin":
		return act(game.Action{Type: game.ActTurnInQuest, NPCID: args[0]})
	case "abandon":
		return act(game.Action{Type: game.ActAbandonQuest, QuestID: args[0]})
	case "go":
		var v [3]float64
		for i := range v {
			f, err := strconv.ParseFloat(args[i], 64)
			if err != nil {
				return command{}, fmt.Errorf("coordinates must be numbers: %s", args[i])
			}
			v[i] = f
		}
		return act(game.Action{Type: game.ActTravel, Position: &world.Vec3{X: v[0], Y: v[1], Z: v[2]}})
	case "wait":
		dt, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return command{}, fmt.Errorf("seconds must be a number: %s", args[0])
		}
		return act(game.Action{Type: game.ActWait, DT: dt})
	case "reach":
		return act(game.Action{Type: game.ActReachLocation, LocationID: args[0]})
	case "checkpoint":
		return act(game.Action{Type: game.ActSetCheckpoint, LocationID: args[0]})
	case "attack":
		dmg, err := strconv.Atoi(args[1])
		if err != nil {
			return command{}, fmt.Errorf("damage must be a number: %s", args[1])
		}
		return act(game.Action{Type: game.ActAttackEnemy, EnemyID: args[0], Amount: dmg})
	case "kill":
		return act(game.Action{Type: game.ActKillEnemy, EnemyID: args[0]})
	case "avoid":
		return act(game.Action{Type: game.ActAvoidFight})
	case "hurt":
		dmg, err := strconv.Atoi(args[0])
		if err != nil {
			return command{}, fmt.Errorf("damage must be a number: %s", args[0])
		}
		a := game.Action{Type: game.ActTakeDamage, Amount: dmg}
		if len(args) > 1 {
			a.EnemyID = args[1]
		}
		return act(a)
	case "collect":
		qty, err := optionalInt(args, 1, 1)
		if err != nil {
			return command{}, err
		}
		return act(game.Action{Type: game.ActCollectItem, ItemID: args[0], Qty: qty})
	case "steal":
		qty, err := optionalInt(args, 2, 1)
		if err != nil {
			return command{}, err
		}
		return act(game.Action{Type: game.ActStealItem, ItemID: args[0], Owner: args[1], Qty: qty})
	case "open":
		return act(game.Action{Type: game.ActOpenChest, ChestID: args[0]})
	case "crime":
		return act(game.Action{Type: game.ActCrime})
	case "help_villagers":
		return act(game.Action{Type: game.ActHelpVillagers})
	}
	return c, nil
}

// choiceCommand turns a 1-based menu number into a dialogue choice.
func choiceCommand(n int) (command, error) {
	if n < 1 {
		return command{}, fmt.Errorf("choices start at 1")
	}
	i := n - 1
	return command{verb: "choose", dialogue: &handlers.DialogueRequest{Choice: &i}}, nil
}

func optionalInt(args []string, i, def int) (int, error) {
	if len(args) <= i {
		return def, nil
	}
	n, err := strconv.Atoi(args[i])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("quantity must be a positive number: %s", args[i])
	}
	return n, nil
}

func findCommand(name string) (commandSpec, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return commandSpec{}, false
}

// suggestCommand returns the closest command name within two edits.
func suggestCommand(verb string) string {
	best, bestDist := "", 3
	for _, c := range commands {
		if d := levenshtein.ComputeDistance(verb, c.name); d < bestDist {
			best, bestDist = c.name, d
		}
	}
	return best
}

func helpText() string {
	var b strings.Builder
	for _, c := range commands {
		usage := c.name
		if c.args != "" {
			usage += " " + c.args
		}
		fmt.Fprintf(&b, "• %-28s %s\n", usage, c.help)
	}
	return b.String()
}
