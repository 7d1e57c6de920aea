package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/quest-engine/internal/handlers"
	"github.com/jwebster45206/quest-engine/internal/services/events"
	"github.com/jwebster45206/quest-engine/pkg/game"
	"github.com/jwebster45206/quest-engine/pkg/state"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

// Runner executes integration tests against a running quest-engine API and worker
type Runner struct {
	BaseURL           string
	Client            *http.Client
	Timeout           time.Duration
	Logger            func(format string, args ...any)
	ErrorHandlingMode ErrorHandlingMode
	CampaignOverride  string // If set, overrides the campaign for all test cases
}

// NewRunner creates a new test runner
func NewRunner(baseURL string) *Runner {
	return &Runner{
		BaseURL:           strings.TrimSuffix(baseURL, "/"),
		Client:            &http.Client{Timeout: 60 * time.Second},
		Timeout:           30 * time.Second,
		Logger:            func(string, ...any) {},
		ErrorHandlingMode: ErrorHandlingContinue,
	}
}

// LoadTestSuite loads a test suite from a JSON file
func LoadTestSuite(filename string) (TestSuite, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return TestSuite{}, fmt.Errorf("failed to read test file %s: %w", filename, err)
	}

	var suite TestSuite
	if err := json.Unmarshal(content, &suite); err != nil {
		return TestSuite{}, fmt.Errorf("failed to parse JSON in %s: %w", filename, err)
	}
	for i, step := range suite.Steps {
		if n := step.kinds(); n != 1 {
			return TestSuite{}, fmt.Errorf("%s: step %d (%s) must set exactly one request, has %d", filename, i, step.Name, n)
		}
	}

	return suite, nil
}

// LoadTestSuiteWithExpansion loads a test suite and expands it if it's a sequence
func LoadTestSuiteWithExpansion(filename string, casesDir string) ([]TestJob, error) {
	suite, err := LoadTestSuite(filename)
	if err != nil {
		return nil, err
	}

	if !suite.IsSequence() {
		return []TestJob{{
			Name:     suite.Name,
			Suite:    suite,
			CaseFile: filename,
		}}, nil
	}

	var jobs []TestJob
	for _, caseFile := range suite.Cases {
		casePath := filepath.Join(casesDir, caseFile)

		// a sequence may reference another sequence
		subJobs, err := LoadTestSuiteWithExpansion(casePath, casesDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load case '%s' referenced by sequence '%s': %w", caseFile, suite.Name, err)
		}

		jobs = append(jobs, subJobs...)
	}

	return jobs, nil
}

func (s TestStep) kinds() int {
	n := 0
	for _, set := range []bool{s.Action != nil, s.Talk != "", s.Choose != nil, s.Leave, s.Trade != nil, s.Inventory != nil} {
		if set {
			n++
		}
	}
	return n
}

// RunSuite creates a fresh game and executes every step against it
func (r *Runner) RunSuite(ctx context.Context, suite TestSuite) (TestRunResult, error) {
	start := time.Now()
	result := TestRunResult{
		Job: TestJob{
			Name:  suite.Name,
			Suite: suite,
		},
		Results: make([]TestResult, 0, len(suite.Steps)),
	}

	campaign := suite.Campaign
	if r.CampaignOverride != "" {
		campaign = r.CampaignOverride
	}
	gameStateID, err := r.createGame(ctx, campaign)
	if err != nil {
		result.Error = fmt.Errorf("failed to create gamestate: %w", err)
		result.Duration = time.Since(start)
		return result, result.Error
	}
	result.GameState = gameStateID
	defer r.deleteGame(gameStateID)

	stream, err := OpenEventStream(ctx, r.BaseURL, gameStateID)
	if err != nil {
		result.Error = err
		result.Duration = time.Since(start)
		return result, result.Error
	}
	defer func() { _ = stream.Close() }()

	for i, step := range suite.Steps {
		r.Logger("    [%d/%d] Running step: %s", i+1, len(suite.Steps), step.Name)
		stepResult := r.runStep(ctx, gameStateID, stream, step)
		stepResult.TestName = suite.Name
		result.Results = append(result.Results, stepResult)

		if stepResult.Error != nil {
			r.Logger("    [%d/%d] ✗ %s: %v", i+1, len(suite.Steps), step.Name, stepResult.Error)
			if result.Error == nil {
				result.Error = fmt.Errorf("step %d (%s) failed: %w", i, step.Name, stepResult.Error)
			}
			if r.ErrorHandlingMode == ErrorHandlingExit {
				break
			}
			continue
		}

		r.Logger("    [%d/%d] ✓ %s (%v)", i+1, len(suite.Steps), step.Name, stepResult.Duration)
	}

	result.Duration = time.Since(start)
	return result, result.Error
}

func (r *Runner) createGame(ctx context.Context, campaign string) (uuid.UUID, error) {
	var resp handlers.GameResponse
	body := handlers.CreateGameStateRequest{CampaignID: campaign}
	if err := doJSON(ctx, r.Client, http.MethodPost, r.BaseURL+"/v1/gamestate", body, http.StatusCreated, &resp); err != nil {
		return uuid.Nil, err
	}
	if resp.Game == nil {
		return uuid.Nil, errors.New("create response has no game")
	}
	return resp.Game.ID, nil
}

func (r *Runner) deleteGame(id uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := doJSON(ctx, r.Client, http.MethodDelete, r.BaseURL+"/v1/gamestate/"+id.String(), nil, http.StatusNoContent, nil); err != nil {
		r.Logger("    failed to delete gamestate %s: %v", id, err)
	}
}

// runStep executes a single test step with timeout
func (r *Runner) runStep(ctx context.Context, gameStateID uuid.UUID, stream *EventStream, step TestStep) TestResult {
	start := time.Now()
	stepCtx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	result := TestResult{StepName: step.Name}
	out, err := r.executeStep(stepCtx, gameStateID, stream, step)
	if err == nil {
		var gs *state.GameState
		var journal *game.Journal
		if gs, err = GetGameState(stepCtx, r.Client, r.BaseURL, gameStateID); err == nil {
			if journal, err = GetJournal(stepCtx, r.Client, r.BaseURL, gameStateID); err == nil {
				err = checkExpectations(step.Expectations, out, gs, journal)
			}
		}
	}
	result.Events = out.events
	result.Error = err
	result.Success = err == nil
	result.Duration = time.Since(start)
	return result
}

// stepOutcome is what a step returned before the game state is re-read.
type stepOutcome struct {
	status   int
	errMsg   string
	failed   bool
	events   []game.Event
	dialogue *game.DialogueView
}

func (r *Runner) executeStep(ctx context.Context, gameStateID uuid.UUID, stream *EventStream, step TestStep) (stepOutcome, error) {
	if step.Action != nil {
		return r.executeAction(ctx, gameStateID, stream, *step.Action)
	}

	base := r.BaseURL + "/v1/gamestate/" + gameStateID.String()
	var (
		out stepOutcome
		err error
	)
	switch {
	case step.Talk != "" || step.Choose != nil || step.Leave:
		var d handlers.DialogueResponse
		req := handlers.DialogueRequest{NPCID: step.Talk, Choice: step.Choose, Leave: step.Leave}
		err = doJSON(ctx, r.Client, http.MethodPost, base+"/dialogue", req, http.StatusOK, &d)
		out.events, out.dialogue = d.Events, d.Dialogue
	case step.Trade != nil:
		var s handlers.ShopResponse
		req := handlers.TradeRequest{Op: step.Trade.Op, ItemID: step.Trade.Item, Qty: step.Trade.Qty}
		err = doJSON(ctx, r.Client, http.MethodPost, base+"/shop/"+step.Trade.Trader, req, http.StatusOK, &s)
		out.events = s.Events
	case step.Inventory != nil:
		var inv handlers.InventoryResponse
		req := handlers.InventoryRequest{Op: step.Inventory.Op, ItemID: step.Inventory.Item}
		err = doJSON(ctx, r.Client, http.MethodPost, base+"/inventory", req, http.StatusOK, &inv)
		out.events = inv.Events
	default:
		return out, errors.New("step has no request")
	}
	out.status = http.StatusOK
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		out.status, out.errMsg = apiErr.Status, apiErr.Message
		return out, nil
	}
	return out, err
}

// executeAction queues an action and waits on the event stream for the worker's result.
func (r *Runner) executeAction(ctx context.Context, gameStateID uuid.UUID, stream *EventStream, a game.Action) (stepOutcome, error) {
	var out stepOutcome
	requestID, err := PostAction(ctx, r.Client, r.BaseURL, gameStateID, a)
	if err != nil {
		var apiErr *apiError
		if errors.As(err, &apiErr) {
			out.status, out.errMsg = apiErr.Status, apiErr.Message
			return out, nil
		}
		return out, err
	}
	ev, err := stream.WaitForRequest(requestID)
	if err != nil {
		return out, err
	}
	out.status = http.StatusAccepted
	out.events = ev.Events
	if ev.Type == events.EventTypeRequestFailed {
		out.failed, out.errMsg = true, ev.Error
	}
	return out, nil
}

// checkExpectations compares a step's outcome and the re-read game with what the case expects.
func checkExpectations(exp Expectations, out stepOutcome, gs *state.GameState, journal *game.Journal) error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if exp.Status != nil {
		if out.status != *exp.Status {
			fail("expected status %d, got %d (%s)", *exp.Status, out.status, out.errMsg)
		}
	} else if out.status >= 300 {
		fail("unexpected status %d: %s", out.status, out.errMsg)
	}
	if exp.Failed != out.failed {
		fail("expected failed=%t, got %t (%s)", exp.Failed, out.failed, out.errMsg)
	}
	if exp.ErrorContains != "" && !strings.Contains(strings.ToLower(out.errMsg), strings.ToLower(exp.ErrorContains)) {
		fail("expected error containing %q, got %q", exp.ErrorContains, out.errMsg)
	}

	seen := make(map[game.EventType]bool, len(out.events))
	for _, ev := range out.events {
		seen[ev.Type] = true
	}
	for _, t := range exp.Events {
		if !seen[t] {
			fail("expected event %s, got %v", t, eventTypes(out.events))
		}
	}
	for _, t := range exp.NotEvents {
		if seen[t] {
			fail("unexpected event %s", t)
		}
	}

	if exp.Gold != nil && gs.Inventory.Gold != *exp.Gold {
		fail("expected gold %d, got %d", *exp.Gold, gs.Inventory.Gold)
	}
	if exp.HP != nil && gs.Player.HP() != *exp.HP {
		fail("expected hp %d, got %d", *exp.HP, gs.Player.HP())
	}
	for _, id := range exp.Inventory {
		if !gs.Inventory.Has(id) {
			fail("expected %s in inventory", id)
		}
	}
	for _, id := range exp.NotInventory {
		if gs.Inventory.Has(id) {
			fail("expected %s not in inventory", id)
		}
	}
	for _, flag := range exp.Flags {
		if !gs.Tags.HasFlag(flag) {
			fail("expected world flag %s", flag)
		}
	}

	if exp.DialogueOpen != nil && gs.Dialogue.Active() != *exp.DialogueOpen {
		fail("expected dialogue open=%t, got %t", *exp.DialogueOpen, gs.Dialogue.Active())
	}
	if exp.DialogueContains != "" {
		line := ""
		if out.dialogue != nil {
			line = out.dialogue.Line
		} else if n := gs.Dialogue.Node(); n != nil {
			line = n.Line
		}
		if !strings.Contains(strings.ToLower(line), strings.ToLower(exp.DialogueContains)) {
			fail("expected dialogue containing %q, got %q", exp.DialogueContains, line)
		}
	}

	if exp.KeyQuest != nil {
		got := ""
		if journal.Key != nil {
			got = journal.Key.ID
		}
		if got != *exp.KeyQuest {
			fail("expected key quest %q, got %q", *exp.KeyQuest, got)
		}
	}
	if exp.KeysDone != nil && journal.KeysDone != *exp.KeysDone {
		fail("expected keys_done=%t, got %t", *exp.KeysDone, journal.KeysDone)
	}
	if exp.ActiveQuests != nil && len(journal.Active) != *exp.ActiveQuests {
		fail("expected %d active quests, got %d", *exp.ActiveQuests, len(journal.Active))
	}
	if exp.PendingOffer != nil && (journal.Pending != nil) != *exp.PendingOffer {
		fail("expected pending offer=%t, got %t", *exp.PendingOffer, journal.Pending != nil)
	}

	return errors.Join(errs...)
}

func eventTypes(evs []game.Event) []game.EventType {
	types := make([]game.EventType, 0, len(evs))
	for _, ev := range evs {
		if !slices.Contains(types, ev.Type) {
			types = append(types, ev.Type)
		}
	}
	return types
}
