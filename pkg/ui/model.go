package ui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/Dicklesworthstone/chess_viewer/pkg/board"
	"github.com/Dicklesworthstone/chess_viewer/pkg/client"
	"github.com/Dicklesworthstone/chess_viewer/pkg/layout"
	"github.com/Dicklesworthstone/chess_viewer/pkg/logging"
	"github.com/Dicklesworthstone/chess_viewer/pkg/model"
	"github.com/Dicklesworthstone/chess_viewer/pkg/scene"
	"github.com/Dicklesworthstone/chess_viewer/pkg/session"
	"github.com/Dicklesworthstone/chess_viewer/pkg/store"
)

// Tab selects what the side panel shows
type Tab int

const (
	TabEngine Tab = iota
	TabTree
	TabStats
)

var tabNames = []string{"Engine", "Game Tree", "Stats"}

// String returns the tab title
func (t Tab) String() string {
	if t < 0 || int(t) >= len(tabNames) {
		return "?"
	}
	return tabNames[t]
}

// Options wires the model to its collaborators. Backend, Stream and Store
// are required.
type Options struct {
	Backend Backend
	Stream  Stream
	Store   *store.Store
	Journal Journal
	Logger  *slog.Logger
	Theme   Theme

	FetchTimeout    time.Duration
	TreeAnimation   time.Duration
	TreeOrientation layout.Orientation
	HelpStyle       string // glamour style for the help overlay

	// Clock drives animations; tests pin it.
	Clock func() time.Time
}

// Model is the whole terminal view. bubbletea hands it one message at a
// time, which makes it the single owner of the store: fetch results, stream
// frames, key presses and animation ticks are applied strictly in order.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	backend      Backend
	stream       Stream
	store        *store.Store
	journal      Journal
	logger       *slog.Logger
	theme        Theme
	now          func() time.Time
	fetchTimeout time.Duration

	width  int
	height int
	tab    Tab

	tree      *TreeView
	animating bool
	help      HelpOverlayModel
	spinner   spinner.Model
	stats     StatsData

	pgn     PGNInputModel
	showPGN bool

	moveInput    textinput.Model
	enteringMove bool

	resetForm    *huh.Form
	confirmReset *bool

	status    string
	statusErr bool
	quitting  bool
}

// New creates the model. Nothing is fetched or dialed until Init.
func New(opts Options) Model {
	ctx, cancel := context.WithCancel(context.Background())
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Theme.Renderer == nil {
		opts.Theme = DefaultTheme(nil)
	}
	if opts.TreeAnimation < 0 {
		opts.TreeAnimation = scene.DefaultDuration
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = opts.Theme.Renderer.NewStyle().Foreground(opts.Theme.Info)

	mi := textinput.New()
	mi.Placeholder = "e2e4"
	mi.Prompt = "move › "
	mi.CharLimit = 5
	mi.Width = 8

	return Model{
		ctx:          ctx,
		cancel:       cancel,
		backend:      opts.Backend,
		stream:       opts.Stream,
		store:        opts.Store,
		journal:      opts.Journal,
		logger:       logging.Component(opts.Logger, "ui"),
		theme:        opts.Theme,
		now:          opts.Clock,
		fetchTimeout: opts.FetchTimeout,
		tree:         NewTreeView(opts.Theme, opts.TreeAnimation, opts.TreeOrientation),
		help:         NewHelpOverlayModel(opts.Theme, opts.HelpStyle),
		spinner:      sp,
		pgn:          NewPGNInputModel(opts.Theme),
		moveInput:    mi,
	}
}

// Init starts the initial fetch and opens the stream concurrently.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.fetchCmd(),
		m.openCmd(),
		waitForEvent(m.stream.Events()),
		m.spinner.Tick,
		statsCmd(m.journal, nil),
	)
}

// Store exposes the board store, for tests and teardown
func (m Model) Store() *store.Store {
	return m.store
}

// Tab returns the active side panel tab
func (m Model) Tab() Tab {
	return m.tab
}

// Status returns the status line text
func (m Model) Status() string {
	return m.status
}

// Tree returns the game tree view
func (m Model) Tree() *TreeView {
	return m.tree
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.SetSize(msg.Width, msg.Height)
		m.pgn.SetSize(msg.Width, msg.Height)
		w, h := m.treeSize()
		cmd := m.animate(m.tree.SetSize(w, h, m.now()))
		return m, cmd

	case StoreEventMsg:
		cmd := m.apply(msg.Event)
		return m, cmd

	case SessionEventMsg:
		cmd := m.apply(store.FromSession(msg.Event))
		return m, tea.Batch(cmd, waitForEvent(m.stream.Events()))

	case SessionEndedMsg:
		m.logger.Debug("stream events ended")
		return m, nil

	case AnimationTickMsg:
		m.animating = m.tree.Advance(m.now())
		if m.animating {
			return m, animationTick()
		}
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case StatsMsg:
		if msg.Err != nil {
			m.logger.Warn("stats read failed", "error", msg.Err)
		}
		m.stats = msg.Data
		return m, nil

	case PGNUploadedMsg:
		if msg.Err != nil {
			m.setError(fmt.Errorf("load game: %w", msg.Err))
			return m, nil
		}
		m.setStatus("Game loaded from " + msg.Source)
		return m, nil

	case PGNFileChangedMsg:
		m.setStatus("Reloading " + msg.Path)
		return m, m.reloadFileCmd(msg.Path)

	case ClipboardMsg:
		if msg.Err != nil {
			m.setError(fmt.Errorf("copy position: %w", msg.Err))
			return m, nil
		}
		m.setStatus("Copied " + msg.Text)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Non-key messages for the focused widget (cursor blink and the like)
	var cmd tea.Cmd
	switch {
	case m.resetForm != nil:
		return m.updateResetForm(msg)
	case m.showPGN:
		m.pgn, cmd = m.pgn.Update(msg)
	case m.enteringMove:
		m.moveInput, cmd = m.moveInput.Update(msg)
	}
	return m, cmd
}

// apply folds one event into the store and reacts to what changed.
func (m *Model) apply(ev store.Event) tea.Cmd {
	if ev == nil {
		return nil
	}
	c := m.store.Apply(ev)

	var cmds []tea.Cmd
	if c.Err != nil {
		m.setError(c.Err)
	} else if ok := successMessage(ev); ok != "" {
		m.setStatus(ok)
	}
	if c.Tree {
		cmds = append(cmds, m.animate(m.tree.SetTree(m.store.State().MoveTree, m.now())))
	}
	_, moved := ev.(store.MoveSent)
	if c.Evaluation || c.Tree || c.Err != nil || moved {
		cmds = append(cmds, statsCmd(m.journal, m.store.State().MoveTree))
	}
	if c.Connection && m.busy() {
		cmds = append(cmds, m.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

func successMessage(ev store.Event) string {
	switch e := ev.(type) {
	case store.MoveSent:
		return "Sent " + e.Move
	case store.ActionCompleted:
		switch e.Action {
		case client.ActionReset:
			return "Game reset"
		case client.ActionForward:
			return "Forward"
		case client.ActionBackward:
			return "Back"
		}
	}
	return ""
}

// animate starts the tick loop if a transition began and none is running
func (m *Model) animate(started bool) tea.Cmd {
	if !started || m.animating {
		return nil
	}
	m.animating = true
	return animationTick()
}

// busy is true while the view is waiting for the server: the stream is
// still connecting or no valid position has arrived yet.
func (m Model) busy() bool {
	return m.store.Connection() == session.StateConnecting || !m.store.Synced()
}

func (m *Model) setStatus(s string) {
	m.status, m.statusErr = s, false
}

func (m *Model) setError(err error) {
	m.status, m.statusErr = err.Error(), true
}

// teardown ends the model's life: pending commands see a cancelled context,
// the stream is closed and the store stops accepting writes.
func (m *Model) teardown() {
	m.quitting = true
	m.cancel()
	if err := m.stream.Close(); err != nil {
		m.logger.Warn("closing stream", "error", err)
	}
	m.store.Close()
}

// ══════════════════════════════════════════════════════════════════════════════
// KEYS
// ══════════════════════════════════════════════════════════════════════════════

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.teardown()
		return m, tea.Quit
	}

	// Overlays take the keyboard first
	switch {
	case m.help.IsVisible():
		var cmd tea.Cmd
		m.help, cmd = m.help.Update(msg)
		return m, cmd
	case m.resetForm != nil:
		if msg.String() == "esc" {
			m.resetForm = nil
			m.setStatus("Reset cancelled")
			return m, nil
		}
		return m.updateResetForm(msg)
	case m.showPGN:
		return m.updatePGN(msg)
	case m.enteringMove:
		return m.updateMoveInput(msg)
	case m.tab == TabTree && m.tree.Searching():
		return m, m.tree.UpdateSearch(msg, m.now())
	}

	switch msg.String() {
	case "q":
		m.teardown()
		return m, tea.Quit
	case "?":
		m.help.Toggle()
		return m, nil
	case "tab":
		cmd := m.selectTab((m.tab + 1) % Tab(len(tabNames)))
		return m, cmd
	case "shift+tab":
		cmd := m.selectTab((m.tab + Tab(len(tabNames)) - 1) % Tab(len(tabNames)))
		return m, cmd
	case "1", "2", "3":
		cmd := m.selectTab(Tab(msg.String()[0] - '1'))
		return m, cmd
	case "left", "h":
		return m, m.actionCmd(client.ActionBackward)
	case "right", "l":
		return m, m.actionCmd(client.ActionForward)
	case "f":
		cmd := m.apply(store.Flipped{})
		return m, cmd
	case "r":
		cmd := m.openResetForm()
		return m, cmd
	case "n":
		m.showPGN = true
		m.pgn.Reset()
		return m, m.pgn.Init()
	case "m", "enter":
		m.enteringMove = true
		m.moveInput.Reset()
		cmd := m.moveInput.Focus()
		return m, cmd
	case "y":
		return m, copyCmd(m.positionFEN())
	}

	if m.tab == TabTree {
		cmd := m.handleTreeKey(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleTreeKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "w":
		m.tree.Pan(0, 1)
	case "s":
		m.tree.Pan(0, -1)
	case "a":
		m.tree.Pan(1, 0)
	case "d":
		m.tree.Pan(-1, 0)
	case "+", "=":
		m.tree.Zoom(true)
	case "-":
		m.tree.Zoom(false)
	case "0":
		m.tree.ResetView()
	case "o":
		return m.animate(m.tree.ToggleOrientation(m.now()))
	case "/":
		return m.tree.StartSearch(m.now())
	}
	return nil
}

func (m *Model) selectTab(t Tab) tea.Cmd {
	m.tab = t
	if t == TabStats {
		return statsCmd(m.journal, m.store.State().MoveTree)
	}
	return nil
}

func (m Model) positionFEN() string {
	p := m.store.State().Position
	if p.IsStart() {
		return board.StartFEN
	}
	return p.String()
}

func (m Model) updateMoveInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.enteringMove = false
		m.moveInput.Blur()
		return m, nil
	case "enter":
		text := strings.TrimSpace(m.moveInput.Value())
		m.enteringMove = false
		m.moveInput.Blur()
		if text == "" {
			return m, nil
		}
		from, to, err := board.ParseMove(text)
		if err != nil {
			m.setError(err)
			return m, nil
		}
		return m, sendMoveCmd(m.stream, from, to)
	}
	var cmd tea.Cmd
	m.moveInput, cmd = m.moveInput.Update(msg)
	return m, cmd
}

func (m Model) updatePGN(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.pgn, cmd = m.pgn.Update(msg)
	switch {
	case m.pgn.IsCancelled():
		m.showPGN = false
		return m, nil
	case m.pgn.IsSubmitted():
		m.showPGN = false
		m.setStatus("Loading game...")
		return m, m.uploadCmd(m.pgn.PGN(), "editor")
	}
	return m, cmd
}

func (m *Model) openResetForm() tea.Cmd {
	confirm := false
	m.confirmReset = &confirm
	m.resetForm = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Reset the game?").
				Description("The server goes back to the starting position.").
				Affirmative("Reset").
				Negative("Cancel").
				Value(m.confirmReset),
		),
	).WithTheme(huh.ThemeDracula()).WithShowHelp(false)
	return m.resetForm.Init()
}

func (m Model) updateResetForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.resetForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.resetForm = f
	}
	switch m.resetForm.State {
	case huh.StateCompleted:
		m.resetForm = nil
		if *m.confirmReset {
			return m, m.actionCmd(client.ActionReset)
		}
		m.setStatus("Reset cancelled")
		return m, nil
	case huh.StateAborted:
		m.resetForm = nil
		m.setStatus("Reset cancelled")
		return m, nil
	}
	return m, cmd
}

// ══════════════════════════════════════════════════════════════════════════════
// VIEW
// ══════════════════════════════════════════════════════════════════════════════

// Heights of the fixed rows around the panels
const (
	headerHeight   = 1
	controlsHeight = 1
	statusHeight   = 1
	tabBarHeight   = 2
	panelChrome    = 2 // border
)

func (m Model) sidePanelSize() (w, h int) {
	if m.width < BreakpointNarrow {
		w = m.width - panelChrome
		h = m.height - headerHeight - controlsHeight - statusHeight - boardPanelHeight() - 2*panelChrome
	} else {
		w = m.width - boardPanelWidth() - panelChrome
		h = m.height - headerHeight - controlsHeight - statusHeight - panelChrome
	}
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return w, h
}

func (m Model) treeSize() (w, h int) {
	w, h = m.sidePanelSize()
	h -= tabBarHeight
	if h < 0 {
		h = 0
	}
	return w, h
}

func boardPanelWidth() int {
	return BoardWidth + panelChrome + 2*SpaceXS
}

func boardPanelHeight() int {
	return 8 + 2 + 3 // ranks, file row + side to move, eval bar
}

// View implements tea.Model
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "Initializing..."
	}

	switch {
	case m.help.IsVisible():
		return m.overlay(m.help.View())
	case m.resetForm != nil:
		box := m.theme.Renderer.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(m.theme.Border).
			Padding(1, 2).
			Render(m.resetForm.View())
		return m.overlay(box)
	case m.showPGN:
		return m.overlay(m.pgn.View())
	}

	st := m.store.State()
	boardPanel := PanelStyle(m.theme).Padding(0, SpaceXS).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			RenderBoard(st.Position, st.Orientation, m.theme),
			"",
			RenderEvalBar(st.EvaluationScore, BoardWidth, m.theme),
		),
	)

	sw, sh := m.sidePanelSize()
	side := FocusedPanelStyle(m.theme).Width(sw).Height(sh).Render(m.renderSidePanel(st, sw))

	var body string
	if m.width < BreakpointNarrow {
		body = lipgloss.JoinVertical(lipgloss.Left, boardPanel, side)
	} else {
		body = lipgloss.JoinHorizontal(lipgloss.Top, boardPanel, side)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderControls(),
		m.renderStatus(),
	)
}

func (m Model) overlay(content string) string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m Model) renderHeader() string {
	t := m.theme
	title := t.Renderer.NewStyle().Bold(true).Foreground(t.Primary).Render("♞ chessview")
	parts := []string{title, RenderConnectionBadge(m.store.Connection(), t)}
	if m.busy() {
		parts = append(parts, m.spinner.View()+t.Renderer.NewStyle().Foreground(t.Subtext).Render(" syncing"))
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderSidePanel(st model.BoardState, width int) string {
	var tabs []string
	for i := range tabNames {
		tabs = append(tabs, RenderTab(Tab(i).String(), Tab(i) == m.tab, m.theme))
	}
	header := strings.Join(tabs, " ") + "\n" + RenderDivider(width, m.theme)

	var content string
	switch m.tab {
	case TabEngine:
		content = m.renderEngine(st, width)
	case TabTree:
		content = m.tree.View()
	case TabStats:
		content = RenderStatsPanel(m.stats, width, m.theme)
	}
	return header + "\n" + content
}

func (m Model) renderEngine(st model.BoardState, width int) string {
	t := m.theme
	section := t.Renderer.NewStyle().Bold(true).Foreground(t.Secondary)
	text := t.Renderer.NewStyle().Foreground(t.Subtext).Width(width - 2)

	barWidth := width - 4
	if barWidth > 40 {
		barWidth = 40
	}
	lines := []string{
		section.Render("EVALUATION"),
		RenderEvalBar(st.EvaluationScore, barWidth, t),
		"",
		section.Render("POSITION"),
		text.Render(m.positionFEN()),
		"",
		section.Render("MAIN LINE"),
	}
	if st.MoveTree == nil || st.MoveTree.FormatMainLine() == "" {
		lines = append(lines, text.Italic(true).Render("No moves yet"))
	} else {
		lines = append(lines, text.Render(st.MoveTree.FormatMainLine()))
	}
	if m.enteringMove {
		lines = append(lines, "", m.moveInput.View())
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderControls() string {
	t := m.theme
	hints := []string{
		RenderKeyHint("←", "back", t),
		RenderKeyHint("f", "flip", t),
		RenderKeyHint("→", "forward", t),
		RenderKeyHint("r", "reset", t),
		RenderKeyHint("m", "move", t),
		RenderKeyHint("n", "new game", t),
		RenderKeyHint("?", "help", t),
		RenderKeyHint("q", "quit", t),
	}
	return strings.Join(hints, "  ")
}

func (m Model) renderStatus() string {
	t := m.theme
	if m.enteringMove && m.tab != TabEngine {
		return m.moveInput.View()
	}
	if m.status == "" {
		return ""
	}
	style := t.Renderer.NewStyle().Foreground(t.Subtext)
	if m.statusErr {
		style = t.Renderer.NewStyle().Foreground(t.Danger)
	}
	return style.Render(m.status)
}
