package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/yday/internal/formatter"
	"github.com/desertthunder/yday/internal/models"
	"github.com/desertthunder/yday/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LoadingView ViewState = iota
	PlanView
	ConfirmView
	UploadView
	ResultView
)

// recentLimit is the number of streamed outcomes shown while uploading.
const recentLimit = 8

// uploadRun is one engine run started from the TUI. result and err are set before done is closed.
type uploadRun struct {
	progress chan tasks.ProgressUpdate
	done     chan struct{}
	cancel   context.CancelFunc
	result   *tasks.Result
	err      error
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	engine       tasks.Reconciler
	req          models.UploadRequest
	autoStart    bool
	width        int
	height       int
	planList     list.Model
	preview      *tasks.Preview
	run          *uploadRun
	stopping     bool
	completed    bool
	progress     tasks.ProgressUpdate
	recent       []models.ItemOutcome
	result       *tasks.Result
	err          error
	spinner      spinner.Model
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model for one upload.
//
// With autoStart the plan and confirmation views are skipped.
func NewModel(ctx context.Context, engine tasks.Reconciler, req models.UploadRequest, autoStart bool) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.title.UnsetMarginBottom()

	return &Model{
		ctx:       ctx,
		view:      LoadingView,
		engine:    engine,
		req:       req,
		autoStart: autoStart,
		spinner:   s,
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Result returns the upload result once the program has exited. Both values are nil if no upload ran.
func (m *Model) Result() (*tasks.Result, error) {
	return m.result, m.err
}

// Init starts the spinner and either the dry run or the upload.
func (m *Model) Init() tea.Cmd {
	if m.autoStart {
		m.view = UploadView
		return tea.Batch(m.spinner.Tick, m.startUpload())
	}
	return tea.Batch(m.spinner.Tick, m.fetchPreview())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.view == PlanView {
			m.planList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case LoadingView:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		case UploadView:
			if key.Matches(msg, m.keys.quit) {
				return m.stop()
			}
			return m, nil
		case PlanView:
			return m.handlePlanKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateList(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgPreviewReady:
		data := msg.data.(previewData)
		if data.err != nil {
			m.err = data.err
			m.view = ResultView
			return m, nil
		}
		m.preview = data.preview
		m.planList = list.New(planItems(data.preview.Plan), list.NewDefaultDelegate(), 0, 0)
		m.planList.Title = fmt.Sprintf("Releases for '%s'", data.preview.FolderName)
		m.planList.SetSize(m.width-4, m.height-8)
		m.view = PlanView
		return m, nil

	case MsgProgressUpdate:
		update := msg.data.(tasks.ProgressUpdate)
		m.progress = update
		if outcome, ok := update.Data.(models.ItemOutcome); ok {
			m.recent = append(m.recent, outcome)
			if len(m.recent) > recentLimit {
				m.recent = m.recent[len(m.recent)-recentLimit:]
			}
		}
		return m, m.waitForProgress()

	case MsgUploadComplete:
		data := msg.data.(completeData)
		m.result = data.result
		m.err = data.err
		m.view = ResultView
		m.completed = true
		if m.run != nil {
			m.run.cancel()
		}
		if m.stopping {
			return m, tea.Quit
		}
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case LoadingView:
		return fmt.Sprintf("%s Reading folder %q...\n", m.spinner.View(), m.req.FolderName)
	case PlanView:
		return m.renderPlan()
	case ConfirmView:
		return m.renderConfirm()
	case UploadView:
		return m.renderUpload()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handlePlanKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.planList.FilterState() == list.Filtering {
		return m.updateList(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		m.view = ConfirmView
		return m, nil
	}
	return m.updateList(msg)
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back):
		m.view = PlanView
		return m, nil
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.yes):
		m.view = UploadView
		return m, m.startUpload()
	}
	return m, nil
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.view != PlanView {
		return m, nil
	}
	var cmd tea.Cmd
	m.planList, cmd = m.planList.Update(msg)
	return m, cmd
}

func (m *Model) fetchPreview() tea.Cmd {
	return func() tea.Msg {
		preview, err := m.engine.Preview(m.ctx, m.req, nil)
		return previewReadyMsg(preview, err)
	}
}

func (m *Model) startUpload() tea.Cmd {
	if m.run != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(m.ctx)
	run := &uploadRun{
		progress: make(chan tasks.ProgressUpdate, 64),
		done:     make(chan struct{}),
		cancel:   cancel,
	}
	m.run = run

	engine, req := m.engine, m.req
	go func() {
		run.result, run.err = engine.Run(ctx, req, run.progress)
		close(run.progress)
		close(run.done)
	}()

	return m.waitForProgress()
}

// stop cancels a running upload and keeps the program alive until the engine returns its partial result.
// A second quit exits immediately.
func (m *Model) stop() (tea.Model, tea.Cmd) {
	if m.run == nil || m.completed || m.stopping {
		return m, tea.Quit
	}
	m.stopping = true
	m.run.cancel()
	return m, nil
}

// wait cancels an upload that is still running and blocks until the engine has returned.
func (m *Model) wait() {
	if m.run == nil || m.completed {
		return
	}
	m.run.cancel()
	<-m.run.done
	m.result, m.err = m.run.result, m.run.err
	m.completed = true
}

func (m *Model) waitForProgress() tea.Cmd {
	run := m.run
	return func() tea.Msg {
		if run == nil {
			return nil
		}
		update, ok := <-run.progress
		if !ok {
			<-run.done
			return uploadCompleteMsg(run.result, run.err)
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) adds() int {
	n := 0
	if m.preview == nil {
		return n
	}
	for _, e := range m.preview.Plan {
		if e.Action == models.Add {
			n++
		}
	}
	return n
}

func (m *Model) renderPlan() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.planList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	adds := m.adds()
	title := styles.title.Render(fmt.Sprintf("Add %d releases to '%s'?", adds, m.req.FolderName))

	folder := "will be created"
	if m.preview != nil && m.preview.Folder != nil {
		folder = fmt.Sprintf("ID %d, %d releases", m.preview.Folder.ID, m.preview.Existing)
	}
	info := fmt.Sprintf("\nAccount: %s\nFolder: %s (%s)\nAlready in collection: %d\n",
		m.req.Account, m.req.FolderName, folder, len(m.req.ItemIDs)-adds)
	if adds > 0 {
		info += styles.help.Render(fmt.Sprintf("Releases are added one per %s.", tasks.AddDelay)) + "\n"
	}

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderUpload() string {
	title := styles.title.Render("Uploading Releases")

	var phase string
	switch m.progress.Phase {
	case tasks.ResolveFolder:
		phase = "Resolving folder..."
	case tasks.CreateFolder:
		phase = "Creating folder..."
	case tasks.EnumeratePage:
		phase = fmt.Sprintf("Reading collection (page %d/%d)", m.progress.Step, m.progress.Total)
	case tasks.ApplyItem:
		phase = fmt.Sprintf("Adding releases (%d/%d)", m.progress.Step, m.progress.Total)
	default:
		phase = "Processing..."
	}

	var b strings.Builder
	for _, o := range m.recent {
		b.WriteString("\n  " + renderOutcome(o))
	}

	if m.stopping {
		phase = styles.warn.Render("Stopping after the current release...")
	}

	return fmt.Sprintf("%s\n\n%s %s\n%s\n%s", title, m.spinner.View(), phase, m.progress.Message, b.String())
}

func renderOutcome(o models.ItemOutcome) string {
	label := styles.forStatus(o.Status).Render(statusMark(o.Status) + " " + o.ItemID)
	if o.Status == models.AlreadyPresent {
		return label + " " + styles.help.Render("already in collection")
	}
	return label + " " + o.Detail
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.quit})

	if m.result == nil {
		msg := "No result available"
		if m.err != nil {
			msg = fmt.Sprintf("Upload failed: %v", m.err)
		}
		return fmt.Sprintf("%s\n\n%s", styles.err.Render(msg), helpView)
	}

	title := styles.forStatus(models.Added).Render(statusMark(models.Added) + " Upload Complete!")
	if m.err != nil {
		title = styles.warn.Render(fmt.Sprintf("Upload interrupted: %v", m.err))
	}

	summary := formatter.Summarize(m.result.Outcomes)
	info := fmt.Sprintf("\nFolder: %s (ID %d)\n%s", m.result.Folder.Name, m.result.Folder.ID, summary)

	var failed string
	if summary.Failed > 0 {
		failed = fmt.Sprintf("\n\n%s", styles.warn.Render(fmt.Sprintf("Failed to add %d releases:", summary.Failed)))
		for _, o := range m.result.Outcomes {
			if o.Status == models.Failed {
				failed += "\n  " + renderOutcome(o)
			}
		}
	}

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, failed, helpView)
}

// Run shows the TUI for one upload and returns its result after the user quits.
//
// An upload still running when the program exits is cancelled, and its partial result is returned.
func Run(ctx context.Context, engine tasks.Reconciler, req models.UploadRequest, autoStart bool) (*tasks.Result, error) {
	m := NewModel(ctx, engine, req, autoStart)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	m.wait()
	if err != nil && m.result == nil {
		return nil, fmt.Errorf("TUI error: %w", err)
	}
	return m.Result()
}
