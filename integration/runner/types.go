package runner

import (
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/quest-engine/pkg/game"
)

// TestSuite defines a complete integration test scenario
// Can either be a regular test with Steps, or a suite that references other Cases
type TestSuite struct {
	Name     string     `json:"name"`
	Campaign string     `json:"campaign,omitempty"` // Used for regular tests
	Steps    []TestStep `json:"steps,omitempty"`    // Used for regular tests
	Cases    []string   `json:"cases,omitempty"`    // Used for suite tests (list of case files)
}

// IsSequence returns true if this is a suite that sequences other cases
func (ts *TestSuite) IsSequence() bool {
	return len(ts.Cases) > 0
}

// TestStep is one request against the game. Exactly one of Action, Talk, Choose,
// Leave, Trade or Inventory is set.
type TestStep struct {
	Name string `json:"name,omitempty"`

	// Action is queued and awaited on the event stream.
	Action *game.Action `json:"action,omitempty"`

	Talk      string         `json:"talk,omitempty"`
	Choose    *int           `json:"choose,omitempty"`
	Leave     bool           `json:"leave,omitempty"`
	Trade     *TradeStep     `json:"trade,omitempty"`
	Inventory *InventoryStep `json:"inventory,omitempty"`

	Expectations Expectations `json:"expect"`
}

type TradeStep struct {
	Trader string `json:"trader"`
	Op     string `json:"op"`
	Item   string `json:"item"`
	Qty    int    `json:"qty,omitempty"`
}

type InventoryStep struct {
	Op   string `json:"op"`
	Item string `json:"item"`
}

// Expectations defines what to check after a test step executes
type Expectations struct {
	// Status is the HTTP status of a synchronous step. Defaults to 200.
	Status *int `json:"status,omitempty"`
	// Failed expects a queued action to be rejected by the engine.
	Failed        bool   `json:"failed,omitempty"`
	ErrorContains string `json:"error_contains,omitempty"`

	Events    []game.EventType `json:"events,omitempty"`     // must all appear
	NotEvents []game.EventType `json:"not_events,omitempty"` // must not appear

	Gold         *int     `json:"gold,omitempty"`
	HP           *int     `json:"hp,omitempty"`
	Inventory    []string `json:"inventory,omitempty"`     // item ids that must be held
	NotInventory []string `json:"not_inventory,omitempty"` // item ids that must not be held
	Flags        []string `json:"flags,omitempty"`

	DialogueOpen     *bool  `json:"dialogue_open,omitempty"`
	DialogueContains string `json:"dialogue_contains,omitempty"`

	KeyQuest     *string `json:"key_quest,omitempty"`
	KeysDone     *bool   `json:"keys_done,omitempty"`
	ActiveQuests *int    `json:"active_quests,omitempty"`
	PendingOffer *bool   `json:"pending_offer,omitempty"`
}

// TestResult contains the outcome of running a test step
type TestResult struct {
	TestName string
	StepName string
	Success  bool
	Error    error
	Duration time.Duration
	Events   []game.Event
}

// TestJob represents a test suite to be executed by a worker
type TestJob struct {
	Name     string
	Suite    TestSuite
	CaseFile string
}

// TestRunResult contains the results of running an entire test suite
type TestRunResult struct {
	Job       TestJob
	Results   []TestResult
	Error     error
	Duration  time.Duration
	GameState uuid.UUID // ID of the gamestate used for this test
}
