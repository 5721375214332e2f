package ui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"

	"nearshare/internal/config"
	"nearshare/internal/discovery"
	"nearshare/internal/domain"
	"nearshare/internal/eventbus"
	"nearshare/internal/files"
	"nearshare/internal/history"
	"nearshare/internal/nearshare"
	"nearshare/internal/selection"
	"nearshare/internal/ui/commands"
	"nearshare/internal/ui/handlers"
	"nearshare/internal/ui/input"
	inputtypes "nearshare/internal/ui/input/types"
	"nearshare/internal/ui/logic"
	"nearshare/internal/ui/state"
	"nearshare/internal/ui/views"
)

const (
	historyLimit     = 200
	statusClearDelay = 5 * time.Second

	// Rows taken by everything but the two panes
	chromeHeight = 12
)

// HistorySource provides the recent transfers shown by the history pager
type HistorySource interface {
	Recent(limit int) ([]domain.Transfer, error)
}

// Options are the collaborators of the share screen
type Options struct {
	Bus     eventbus.EventBus
	Config  *config.Config
	Sender  nearshare.Sender
	Watcher discovery.Watcher
	History HistorySource // nil disables the history pager
	Fs      afero.Fs

	// Files and URI preload the screen from the command line
	Files []domain.FileRef
	URI   string
}

// Model represents the UI state
type Model struct {
	ctx     context.Context
	bus     eventbus.EventBus
	config  *config.Config
	state   *state.AppState
	watcher discovery.Watcher
	history HistorySource

	// UI-specific state not in AppState
	width       int
	height      int
	help        help.Model
	keys        inputtypes.KeyMap
	spinner     spinner.Model
	progress    progress.Model
	inPagerMode bool
	readyMarker bool

	// visible maps device pane rows to device container positions
	visible []int

	// Click plumbing: one notifier per pane, both reporting to the router
	router  *selection.Router
	notices map[selection.Source]*selection.Notifier

	renderer     *views.Renderer
	helpRenderer *HelpRenderer
	eventHandler *handlers.EventHandler
	cmdExecutor  *commands.Executor
	inputHandler *input.Handler
	pager        *PagerOps

	// Program reference for terminal management
	program *tea.Program
}

// NewModel creates a new UI model
func NewModel(ctx context.Context, opts Options) *Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}

	appState := state.NewAppState()
	appState.Filters = cfg.Filters()
	appState.AddFiles(opts.Files...)
	appState.PendingURI = opts.URI

	inputHandler := input.New()
	keys := inputHandler.Keys()
	m := &Model{
		ctx:          ctx,
		bus:          opts.Bus,
		config:       cfg,
		state:        appState,
		watcher:      opts.Watcher,
		history:      opts.History,
		help:         help.New(),
		keys:         keys,
		spinner:      spinner.New(spinner.WithSpinner(spinner.Dot)),
		progress:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(30), progress.WithoutPercentage()),
		readyMarker:  os.Getenv("NEARSHARE_E2E_TEST") == "1",
		renderer:     views.NewRenderer(fs),
		helpRenderer: NewHelpRenderer(keys),
		eventHandler: handlers.NewEventHandler(appState),
		cmdExecutor:  commands.NewExecutor(ctx, appState, opts.Sender, opts.Watcher, fs),
		inputHandler: inputHandler,
		pager:        NewPagerOps(),
	}

	m.router = selection.NewRouter()
	m.router.Register(selection.SourceDevices, func(position int) error {
		_, err := m.state.Devices.ToggleAt(position)
		return err
	})
	m.router.Register(selection.SourceFiles, func(position int) error {
		_, err := m.state.Files.ToggleAt(position)
		return err
	})
	m.notices = map[selection.Source]*selection.Notifier{
		selection.SourceDevices: selection.NewNotifier(selection.SourceDevices),
		selection.SourceFiles:   selection.NewNotifier(selection.SourceFiles),
	}
	for _, n := range m.notices {
		n.SetListener(m.router)
	}

	if opts.URI != "" {
		appState.SetStatus(state.StatusInfo, fmt.Sprintf("Select a device and press u to send %s", opts.URI))
	}
	m.refreshVisible()
	return m
}

// SetProgram sets the program reference for terminal management
func (m *Model) SetProgram(p *tea.Program) {
	m.program = p
	m.pager.SetProgram(p)
}

// State exposes the application state, mostly for tests
func (m *Model) State() *state.AppState {
	return m.state
}

// Init starts discovery and the spinner
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	if m.watcher != nil {
		watcher, ctx, filters := m.watcher, m.ctx, m.state.Filters
		cmds = append(cmds, func() tea.Msg {
			err := watcher.Start(ctx, filters)
			return commands.WatcherRestartedMsg{Filters: filters, Err: err}
		})
	}
	return tea.Batch(cmds...)
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.updateViewportHeight()
		return m, nil

	case tea.KeyMsg:
		if m.state.ShowHelp {
			return m, m.handleHelpKey(msg)
		}

		ctx := &input.ModelContext{State: m.state, VisibleDevices: len(m.visible)}
		actions, cmd := m.inputHandler.HandleKey(msg, ctx)

		cmds := []tea.Cmd{}
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		for _, action := range actions {
			if actionCmd := m.processAction(action); actionCmd != nil {
				cmds = append(cmds, actionCmd)
			}
		}
		m.refreshVisible()
		return m, tea.Batch(cmds...)

	default:
		if cmd := m.inputHandler.Update(msg); cmd != nil {
			return m, cmd
		}
		return m.handleNonKeyboardMsg(msg)
	}
}

func (m *Model) handleNonKeyboardMsg(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case EventMsg:
		cmd := m.eventHandler.HandleEvent(msg.Event)
		m.refreshVisible()
		return m, cmd

	case commands.TransferDoneMsg:
		return m, m.transferDone(msg)

	case commands.WatcherRestartedMsg:
		if msg.Err != nil {
			log.Printf("UI: discovery start failed: %v", msg.Err)
			m.state.Watching = false
			m.state.SetStatus(state.StatusError, fmt.Sprintf("Discovery failed: %v", msg.Err))
		}
		return m, nil

	case spinner.TickMsg:
		// Don't keep ticking behind the pager
		if m.inPagerMode {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case pagerMsg:
		if msg.err != nil {
			log.Printf("UI: %s pager failed: %v", msg.what, msg.err)
			m.state.SetStatus(state.StatusError, fmt.Sprintf("Could not show %s: %v", msg.what, msg.err))
		}
		return m, nil

	case pauseRenderingMsg:
		m.inPagerMode = true
		return m, nil

	case resumeRenderingMsg:
		m.inPagerMode = false
		return m, m.spinner.Tick

	case clearStatusMsg:
		if m.state.StatusMessage == msg.message {
			m.state.StatusMessage = ""
		}
		return m, nil
	}

	return m, nil
}

// processAction processes an action from the input handler
func (m *Model) processAction(action inputtypes.Action) tea.Cmd {
	switch a := action.(type) {
	case inputtypes.NavigateAction:
		m.navigate(a.Direction)

	case inputtypes.SwitchFocusAction:
		if m.state.Focus == selection.SourceDevices {
			m.state.Focus = selection.SourceFiles
		} else {
			m.state.Focus = selection.SourceDevices
		}

	case inputtypes.ClickAction:
		m.click()

	case inputtypes.ClearSelectionAction:
		m.clearSelection()

	case inputtypes.UpdateTextAction:
		if m.inputHandler.CurrentMode() == inputtypes.ModeFilter {
			m.setFilter(a.Text)
		}

	case inputtypes.SubmitTextAction:
		switch a.Mode {
		case inputtypes.ModeFilter:
			m.setFilter(a.Text)
		case inputtypes.ModeURI:
			return m.cmdExecutor.ExecuteSendURI(a.Text)
		case inputtypes.ModeAddFile:
			return m.cmdExecutor.ExecuteAddFile(a.Text)
		}

	case inputtypes.CancelTextAction:
		if a.Mode == inputtypes.ModeFilter {
			m.setFilter("")
		}

	case inputtypes.ToggleProximityAction:
		return m.cmdExecutor.ExecuteToggleProximity()

	case inputtypes.SendAction:
		return m.cmdExecutor.ExecuteSend()

	case inputtypes.CancelTransferAction:
		return m.cmdExecutor.ExecuteCancel()

	case inputtypes.RemoveFileAction:
		m.state.RemoveFileAt(m.state.FileCursor)
		m.clampCursors()

	case inputtypes.OpenHistoryAction:
		return m.showHistory()

	case inputtypes.ToggleHelpAction:
		m.state.ShowHelp = !m.state.ShowHelp
		m.state.HelpScrollOffset = 0

	case inputtypes.QuitAction:
		if a.Force && m.state.TransferActive() {
			m.cmdExecutor.ExecuteCancel()
		}
		return tea.Quit
	}

	return nil
}

func (m *Model) handleHelpKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c":
		return tea.Quit
	case "?", "esc", "q":
		m.state.ShowHelp = false
	case "j", "down":
		m.state.HelpScrollOffset++
	case "k", "up":
		if m.state.HelpScrollOffset > 0 {
			m.state.HelpScrollOffset--
		}
	case "o":
		m.state.ShowHelp = false
		return m.runPager("help", func() (string, error) {
			return m.helpRenderer.RenderHelpContentPlain(), nil
		})
	}
	return nil
}

// click activates the row under the cursor through the pane's notifier
func (m *Model) click() {
	focus := m.state.Focus
	position := m.state.FileCursor
	if focus == selection.SourceDevices {
		if m.state.DeviceCursor >= len(m.visible) {
			return
		}
		position = m.visible[m.state.DeviceCursor]
	}

	if err := m.notices[focus].Activate(position); err != nil {
		log.Printf("UI: bug: click on %s row %d: %v", focus, position, err)
		m.state.SetStatus(state.StatusError, fmt.Sprintf("Internal error: %v", err))
		return
	}

	if focus == selection.SourceDevices {
		if d, ok := m.state.SelectedDevice(); ok {
			m.state.SetStatus(state.StatusInfo, fmt.Sprintf("Selected %s", d.DisplayName))
		} else {
			m.state.SetStatus(state.StatusInfo, "No device selected")
		}
	}
}

// clearSelection deselects every row of the focused pane, keeping the rows
func (m *Model) clearSelection() {
	if m.state.Focus == selection.SourceFiles {
		// FileSnap follows every toggle, so duplicates are only toggled once
		for i := 0; i < m.state.FileSnap.Len(); i++ {
			if m.state.FileSnap.SelectedAt(i) {
				if _, err := m.state.Files.ToggleAt(i); err != nil {
					log.Printf("UI: bug: deselect file %d: %v", i, err)
				}
			}
		}
		return
	}

	id, ok := m.state.Devices.CurrentSelection()
	if !ok {
		return
	}
	for i, item := range m.state.DeviceSnap.Items() {
		if item == id {
			if _, err := m.state.Devices.ToggleAt(i); err != nil {
				log.Printf("UI: bug: deselect device %d: %v", i, err)
			}
			return
		}
	}
}

func (m *Model) navigate(direction string) {
	height := m.paneHeight()
	if m.state.Focus == selection.SourceFiles {
		nav := logic.NewNavigator(m.state.FileCursor, m.state.FileOffset, height, m.state.FileSnap.Len())
		nav.Move(direction)
		m.state.FileCursor, m.state.FileOffset = nav.Cursor(), nav.Offset()
		return
	}
	nav := logic.NewNavigator(m.state.DeviceCursor, m.state.DeviceOffset, height, len(m.visible))
	nav.Move(direction)
	m.state.DeviceCursor, m.state.DeviceOffset = nav.Cursor(), nav.Offset()
}

func (m *Model) setFilter(query string) {
	query = strings.TrimSpace(query)
	if query == m.state.FilterQuery {
		return
	}
	m.state.FilterQuery = query
	m.state.DeviceCursor = 0
	m.state.DeviceOffset = 0
	m.refreshVisible()
}

// refreshVisible recomputes the device rows after the list or the filter changed
func (m *Model) refreshVisible() {
	m.visible = logic.VisibleDevices(m.state.FilterQuery, m.state.DeviceList())
	m.clampCursors()
}

func (m *Model) clampCursors() {
	height := m.paneHeight()
	dev := logic.NewNavigator(m.state.DeviceCursor, m.state.DeviceOffset, height, len(m.visible))
	m.state.DeviceCursor, m.state.DeviceOffset = dev.Cursor(), dev.Offset()
	file := logic.NewNavigator(m.state.FileCursor, m.state.FileOffset, height, m.state.FileSnap.Len())
	m.state.FileCursor, m.state.FileOffset = file.Cursor(), file.Offset()
}

func (m *Model) updateViewportHeight() {
	m.state.ViewportHeight = max(m.height-chromeHeight, 3)
	m.clampCursors()
}

func (m *Model) paneHeight() int {
	return max(m.state.ViewportHeight, 1)
}

func (m *Model) transferDone(msg commands.TransferDoneMsg) tea.Cmd {
	m.cmdExecutor.Finished(msg.Transfer.ID)
	if t := m.state.Transfer; t != nil && t.ID == msg.Transfer.ID {
		m.state.Transfer = nil
	}

	var text string
	switch msg.Status {
	case domain.TransferCompleted:
		text = fmt.Sprintf("Sent %s to %s", describe(msg.Transfer), msg.Transfer.DeviceName)
		m.state.SetStatus(state.StatusSuccess, text)
	case domain.TransferCanceled:
		text = "Transfer canceled"
		m.state.SetStatus(state.StatusWarning, text)
	default:
		log.Printf("UI: transfer %s failed: %v", msg.Transfer.ID, msg.Err)
		m.state.SetStatus(state.StatusError, fmt.Sprintf("Send failed: %v", msg.Err))
		return nil
	}

	return tea.Tick(statusClearDelay, func(time.Time) tea.Msg {
		return clearStatusMsg{message: text}
	})
}

func describe(t domain.Transfer) string {
	switch {
	case t.Kind == domain.TransferURI && len(t.Items) == 1:
		return t.Items[0]
	case len(t.Items) == 1:
		return files.Name(domain.FileRef(t.Items[0]))
	default:
		return fmt.Sprintf("%d files", len(t.Items))
	}
}

func (m *Model) showHistory() tea.Cmd {
	if m.history == nil {
		m.state.SetStatus(state.StatusWarning, "History is disabled")
		return nil
	}
	source := m.history
	return m.runPager("history", func() (string, error) {
		transfers, err := source.Recent(historyLimit)
		if err != nil {
			return "", err
		}
		var buf strings.Builder
		if err := history.Render(&buf, transfers); err != nil {
			return "", err
		}
		return buf.String(), nil
	})
}

// runPager returns a command that pauses rendering and shows content in ov
func (m *Model) runPager(what string, content func() (string, error)) tea.Cmd {
	program, pager := m.program, m.pager
	return func() tea.Msg {
		text, err := content()
		if err != nil {
			return pagerMsg{what: what, err: err}
		}
		if program == nil {
			return pagerMsg{what: what, err: errors.New("program not set")}
		}

		program.Send(pauseRenderingMsg{})
		err = pager.ShowInPager(text)
		program.Send(resumeRenderingMsg{})

		return pagerMsg{what: what, err: err}
	}
}

// View renders the UI
func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	vs := views.ViewState{
		Width:         m.width,
		Height:        m.height,
		Focus:         m.state.Focus,
		Devices:       m.deviceRows(),
		DeviceCursor:  m.state.DeviceCursor,
		DeviceOffset:  m.state.DeviceOffset,
		Files:         m.state.FileSnap,
		FileCursor:    m.state.FileCursor,
		FileOffset:    m.state.FileOffset,
		PaneHeight:    m.paneHeight(),
		Filters:       m.state.Filters,
		Watching:      m.state.Watching,
		FilterQuery:   m.state.FilterQuery,
		ConfirmQuit:   m.inputHandler.CurrentMode() == inputtypes.ModeConfirmQuit,
		StatusMessage: m.state.StatusMessage,
		StatusLevel:   m.state.StatusLevel,
		Transfer:      m.state.Transfer,
		SpinnerView:   m.spinner.View(),
		ShowHelp:      m.state.ShowHelp,
		ShortHelp:     m.help.View(m.keys),
	}
	if ti := m.inputHandler.TextInput(); ti != nil {
		vs.InputPrompt = m.inputHandler.Prompt()
		vs.InputView = ti.View()
	}
	if m.state.Transfer != nil {
		vs.ProgressView = m.progress.ViewAs(m.state.Transfer.Fraction())
	}
	if m.state.ShowHelp {
		vs.HelpContent = m.helpRenderer.renderHelpContent(m.height, m.state.HelpScrollOffset)
	}

	out := m.renderer.Render(vs)
	if m.readyMarker {
		out += "\n__READY__"
	}
	return out
}

func (m *Model) deviceRows() []views.DeviceRow {
	rows := make([]views.DeviceRow, 0, len(m.visible))
	for _, pos := range m.visible {
		id := m.state.DeviceSnap.At(pos)
		rows = append(rows, views.DeviceRow{
			Device:   m.state.DeviceInfo[id],
			Selected: m.state.DeviceSnap.SelectedAt(pos),
		})
	}
	return rows
}
