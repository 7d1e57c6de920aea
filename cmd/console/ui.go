package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jwebster45206/quest-engine/internal/services/events"
	"github.com/jwebster45206/quest-engine/pkg/content"
	"github.com/jwebster45206/quest-engine/pkg/game"
	"github.com/jwebster45206/quest-engine/pkg/state"
	"github.com/muesli/reflow/wordwrap"
)

const PlaceHolderText = "Type a command (help for a list)..."

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	api          *apiClient
	gameState    *state.GameState
	journal      *game.Journal
	logViewport  viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	err          error
	loading      bool

	// log holds rendered lines; dialogue and trader track the open conversation and shop.
	log      []string
	dialogue *game.DialogueView
	trader   string
	// queued request ids whose outcome is still expected on the stream
	queued map[string]bool

	stream       <-chan events.Event
	cancelStream context.CancelFunc

	// Campaign selection state
	showCampaignModal bool
	campaigns         []content.Summary
	selectedCampaign  int
	loadingCampaigns  bool

	showQuitModal bool

	progressTick int
}

type campaignsLoadedMsg struct {
	campaigns []content.Summary
	err       error
}

type gameCreatedMsg struct {
	gameState *state.GameState
	events    []game.Event
	err       error
}

type streamOpenedMsg struct {
	stream <-chan events.Event
	cancel context.CancelFunc
	err    error
}

type streamEventMsg struct {
	event events.Event
	ok    bool
}

type refreshMsg struct {
	gameState *state.GameState
	journal   *game.Journal
	err       error
}

// resultMsg is the outcome of one command.
type resultMsg struct {
	lines     []string
	dialogue  *game.DialogueView
	setDialog bool
	trader    string
	queuedID  string
	refresh   bool
	err       error
}

type progressTickMsg struct{}

var (
	logPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	narratorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	choiceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")). // yellow
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey
)

func NewConsoleUI(cfg *ConsoleConfig, api *apiClient) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 200
	ta.SetWidth(50)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false

	logVp := viewport.New(50, 20)
	logVp.MouseWheelEnabled = true

	return ConsoleUI{
		config:            cfg,
		api:               api,
		textarea:          ta,
		logViewport:       logVp,
		metaViewport:      viewport.New(20, 20),
		queued:            map[string]bool{},
		showCampaignModal: true,
		loadingCampaigns:  cfg.Campaign == "",
		loading:           cfg.Campaign != "",
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	if m.config.Campaign != "" {
		return m.createGame(m.config.Campaign)
	}
	return m.loadCampaigns()
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}
	if m.showCampaignModal {
		return m.updateCampaignModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.logViewport, vpCmd = m.logViewport.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.writeLog()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}
			input := strings.TrimSpace(m.textarea.Value())
			m.textarea.Reset()
			if input == "" {
				return m, nil
			}
			return m.handleCommand(input)
		}

	case streamOpenedMsg:
		if msg.err != nil {
			m.addLines(errorStyle.Render("Live events unavailable: " + msg.err.Error()))
			return m, nil
		}
		m.stream = msg.stream
		m.cancelStream = msg.cancel
		return m, waitForEvent(m.stream)

	case streamEventMsg:
		if !msg.ok {
			m.addLines(promptStyle.Render("Event stream closed."))
			return m, nil
		}
		cmd := m.handleStreamEvent(msg.event)
		return m, tea.Batch(cmd, waitForEvent(m.stream))

	case resultMsg:
		m.loading = false
		if msg.err != nil {
			m.addLines(errorStyle.Render("Error: " + msg.err.Error()))
			return m, nil
		}
		if msg.queuedID != "" {
			m.queued[msg.queuedID] = true
		}
		if msg.setDialog {
			m.dialogue = msg.dialogue
		}
		if msg.trader != "" {
			m.trader = msg.trader
		}
		m.addLines(msg.lines...)
		if msg.refresh {
			return m, m.refreshGameState()
		}
		return m, nil

	case refreshMsg:
		if msg.err != nil {
			m.addLines(errorStyle.Render("Error: " + msg.err.Error()))
			return m, nil
		}
		m.gameState = msg.gameState
		m.journal = msg.journal
		m.dialogue = game.ViewOf(&m.gameState.Dialogue)
		m.metaViewport.SetContent(writeMetadata(m.gameState, m.journal))
		m.writeLog()

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeLog()
			return m, progressTick()
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.logViewport, vpCmd = m.logViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

func (m *ConsoleUI) resize() {
	logWidth := int(float64(m.width)*0.7) - 4
	metaWidth := m.width - logWidth - 6
	m.logViewport.Width = logWidth - 2
	m.logViewport.Height = m.height - 5
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
	m.textarea.SetWidth(logWidth - 4)
}

func (m *ConsoleUI) addLines(lines ...string) {
	m.log = append(m.log, lines...)
	m.writeLog()
}

// writeLog rebuilds the log for the current viewport width.
func (m *ConsoleUI) writeLog() {
	width := max(20, m.logViewport.Width-6)

	var content strings.Builder
	content.WriteString(titleStyle.Render("QUEST ENGINE") + "\n\n")
	content.WriteString("Type commands below. Try " + userStyle.Render("help") + ".\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", width)) + "\n\n")

	for _, line := range m.log {
		content.WriteString(wordwrap.String(line, width) + "\n")
	}
	if d := writeDialogue(m.dialogue, width); d != "" {
		content.WriteString("\n" + d)
	}
	if m.loading {
		content.WriteString("\n" + m.renderProgressBar())
	}

	m.logViewport.SetContent(content.String())
	m.logViewport.GotoBottom()
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	m.addLines(userStyle.Render("> " + input))

	cmd, err := parseCommand(input, commandContext{inDialogue: m.dialogue != nil, trader: m.trader})
	if err != nil {
		m.addLines(errorStyle.Render(err.Error()))
		return m, nil
	}

	switch cmd.verb {
	case "help":
		m.addLines(titleStyle.Render("Commands:"), helpText())
		return m, nil
	case "quests":
		if m.journal != nil {
			m.addLines(writeJournal(m.journal))
		}
		return m, m.refreshGameState()
	case "state":
		return m, m.refreshGameState()
	case "copy":
		if err := clipboard.WriteAll(m.gameState.ID.String()); err != nil {
			m.addLines(errorStyle.Render("Copy failed: " + err.Error()))
		} else {
			m.addLines(promptStyle.Render("Game ID copied to clipboard."))
		}
		return m, nil
	case "quit":
		m.showQuitModal = true
		return m, nil
	}

	m.loading = true
	m.progressTick = 0
	m.writeLog()
	return m, tea.Batch(m.run(cmd), progressTick())
}

// run performs the API call for cmd.
func (m ConsoleUI) run(cmd command) tea.Cmd {
	id := m.gameState.ID
	api := m.api
	return func() tea.Msg {
		switch {
		case cmd.action != nil:
			resp, err := api.queueAction(id, *cmd.action)
			if err != nil {
				return resultMsg{err: err}
			}
			return resultMsg{
				lines:    []string{promptStyle.Render(fmt.Sprintf("(%s queued)", cmd.action.Type))},
				queuedID: resp.RequestID,
			}

		case cmd.dialogue != nil:
			resp, err := api.dialogue(id, *cmd.dialogue)
			if err != nil {
				return resultMsg{err: err}
			}
			res := resultMsg{dialogue: resp.Dialogue, setDialog: true, refresh: true}
			for _, ev := range resp.Events {
				switch ev.Type {
				case game.EventDialogueOpened, game.EventDialogueAdvanced, game.EventDialogueClosed:
					continue
				case game.EventShopOpened:
					res.trader = ev.TraderID
					if s, err := api.shop(id, ev.TraderID); err == nil {
						res.lines = append(res.lines, writeListings(s.TraderID, s.Gold, s.Listings))
					}
					continue
				}
				if s := describeEvent(ev); s != "" {
					res.lines = append(res.lines, s)
				}
			}
			return res

		case cmd.trade != nil:
			resp, err := api.trade(id, cmd.shop, *cmd.trade)
			if err != nil {
				return resultMsg{err: err}
			}
			res := resultMsg{refresh: true, trader: cmd.shop}
			res.lines = eventLines(resp.Events)
			res.lines = append(res.lines, writeListings(resp.TraderID, resp.Gold, resp.Listings))
			return res

		case cmd.shop != "":
			resp, err := api.shop(id, cmd.shop)
			if err != nil {
				return resultMsg{err: err}
			}
			return resultMsg{trader: cmd.shop, lines: []string{writeListings(resp.TraderID, resp.Gold, resp.Listings)}}

		case cmd.inventory != nil:
			resp, err := api.inventory(id, *cmd.inventory)
			if err != nil {
				return resultMsg{err: err}
			}
			return resultMsg{lines: eventLines(resp.Events), refresh: true}
		}
		return resultMsg{}
	}
}

func eventLines(evs []game.Event) []string {
	var lines []string
	for _, ev := range evs {
		if s := describeEvent(ev); s != "" {
			lines = append(lines, s)
		}
	}
	return lines
}

// handleStreamEvent shows outcomes of actions this console queued.
func (m *ConsoleUI) handleStreamEvent(ev events.Event) tea.Cmd {
	switch ev.Type {
	case events.EventTypeRequestCompleted, events.EventTypeRequestFailed:
		if !m.queued[ev.RequestID] {
			return nil
		}
		delete(m.queued, ev.RequestID)
	case events.EventTypeGameEvents, events.EventTypeGameDeleted:
	default:
		return nil
	}

	lines := describeStreamEvent(ev)
	if ev.Type == events.EventTypeRequestFailed {
		for i := range lines {
			lines[i] = errorStyle.Render(lines[i])
		}
	}
	m.addLines(lines...)
	if ev.Type == events.EventTypeGameDeleted {
		return nil
	}
	return m.refreshGameState()
}

func waitForEvent(stream <-chan events.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-stream
		return streamEventMsg{event: ev, ok: ok}
	}
}

func (m ConsoleUI) refreshGameState() tea.Cmd {
	id := m.gameState.ID
	api := m.api
	return func() tea.Msg {
		gs, err := api.getGameState(id)
		if err != nil {
			return refreshMsg{err: err}
		}
		j, err := api.getJournal(id)
		return refreshMsg{gameState: gs, journal: j, err: err}
	}
}

func (m ConsoleUI) openStream() tea.Cmd {
	id := m.gameState.ID
	api := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithCancel(context.Background())
		ch, err := api.streamEvents(ctx, id)
		if err != nil {
			cancel()
			return streamOpenedMsg{err: err}
		}
		return streamOpenedMsg{stream: ch, cancel: cancel}
	}
}

func (m ConsoleUI) loadCampaigns() tea.Cmd {
	return func() tea.Msg {
		list, err := m.api.listCampaigns()
		return campaignsLoadedMsg{list, err}
	}
}

func (m ConsoleUI) createGame(campaignID string) tea.Cmd {
	return func() tea.Msg {
		resp, err := m.api.createGame(campaignID)
		if err != nil {
			return gameCreatedMsg{err: err}
		}
		return gameCreatedMsg{gameState: resp.Game, events: resp.Events}
	}
}

func (m ConsoleUI) updateCampaignModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case campaignsLoadedMsg:
		m.loadingCampaigns = false
		if msg.err != nil {
			m.err = msg.err
		} else if len(msg.campaigns) == 0 {
			m.err = fmt.Errorf("the server has no campaigns")
		} else {
			m.campaigns = msg.campaigns
		}

	case gameCreatedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.gameState = msg.gameState
		m.showCampaignModal = false
		m.resize()
		m.log = eventLines(msg.events)
		m.metaViewport.SetContent(writeMetadata(m.gameState, nil))
		m.textarea.Focus()
		m.ready = true
		m.writeLog()
		return m, tea.Batch(textarea.Blink, m.openStream(), m.refreshGameState())

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			if m.loadingCampaigns {
				return m, tea.Quit
			}
			m.showQuitModal = true
			return m, nil
		}
		if m.loadingCampaigns || m.loading || m.err != nil {
			return m, nil
		}

		switch msg.Type {
		case tea.KeyUp:
			if m.selectedCampaign > 0 {
				m.selectedCampaign--
			}
		case tea.KeyDown:
			if m.selectedCampaign < len(m.campaigns)-1 {
				m.selectedCampaign++
			}
		case tea.KeyEnter:
			if len(m.campaigns) > 0 {
				m.loading = true
				return m, m.createGame(m.campaigns[m.selectedCampaign].ID)
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m.quit()
		default:
			switch msg.String() {
			case "y", "Y":
				return m.quit()
			case "n", "N":
				m.showQuitModal = false
				if m.showCampaignModal {
					return m, nil
				}
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) quit() (tea.Model, tea.Cmd) {
	if m.cancelStream != nil {
		m.cancelStream()
	}
	return m, tea.Quit
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit Game?"))
	content.WriteString("\n\n")
	content.WriteString("Your progress is saved on the server.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderCampaignModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder

	switch {
	case m.err != nil:
		content.WriteString(modalTitleStyle.Render("Error"))
		content.WriteString("\n\n")
		content.WriteString(errorStyle.Render(fmt.Sprintf("Failed to start: %v", m.err)))
		content.WriteString("\n\n")
		content.WriteString("Press Ctrl+C to exit")
	case m.loadingCampaigns:
		content.WriteString(modalTitleStyle.Render("Loading Campaigns..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Please wait while we fetch available campaigns..."))
	case m.loading:
		content.WriteString(modalTitleStyle.Render("Creating Game..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Setting up your adventure..."))
	default:
		content.WriteString(modalTitleStyle.Render("Select a Campaign"))
		content.WriteString("\n\n")

		for i, c := range m.campaigns {
			label := c.Name
			if c.Description != "" {
				label += " - " + c.Description
			}
			label = wordwrap.String(label, 50)
			if i == m.selectedCampaign {
				content.WriteString(modalSelectedItemStyle.Render("▶ " + label))
			} else {
				content.WriteString(modalItemStyle.Render("  " + label))
			}
			content.WriteString("\n")
		}

		content.WriteString("\n")
		content.WriteString(promptStyle.Render("Use ↑/↓ to navigate, Enter to select, Ctrl+C to exit"))
	}

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}
	if m.showCampaignModal {
		return m.renderCampaignModal()
	}
	if !m.ready {
		return "\n  Initializing..."
	}

	logWidth := int(float64(m.width)*0.7) - 4
	metaWidth := m.width - logWidth - 6

	logPanel := logPanelStyle.Width(logWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.logViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", max(0, logWidth-4))),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, logPanel, metaPanel)
}

// renderProgressBar creates an animated progress bar for loading states
func (m ConsoleUI) renderProgressBar() string {
	usable := min(max(m.logViewport.Width-6, 10), 80)

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		switch {
		case i < filled:
			bar.WriteString("█")
		case i == filled && frame%4 < 2:
			bar.WriteString("▓")
		default:
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
