// Package tui is the interactive tag browser: pick a directory, filter its
// images by tag, and run classification on it.
package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"autotag/internal/config"
	serr "autotag/internal/errors"
	"autotag/internal/gallery"
	"autotag/internal/index"
	"autotag/internal/tui/common"
	"autotag/internal/tui/components"
	"autotag/internal/tui/messages"
	"autotag/internal/tui/views"
	"autotag/internal/worker"
	"autotag/pkg/types"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// maxTagKeys is the number of top tags reachable with the digit keys.
const maxTagKeys = 10

// Backend is the part of the gallery service the browser drives.
type Backend interface {
	SetSelectedDirectory(ctx context.Context, path string) (*gallery.State, error)
	StartProcessing(ctx context.Context, path string) (*worker.Job, error)
}

type Model struct {
	backend  Backend
	ctx      context.Context
	keys     keyMap
	topLimit int
	pstyles  filepicker.Styles

	// Core state
	mode         common.Mode
	state        *gallery.State
	visible      []types.ImageRecord
	cursor       int
	selectedTags map[string]bool
	showHelp     bool
	processing   bool
	initial      string

	// Components
	search textinput.Model
	picker components.DirPicker
	status components.StatusBar
	help   help.Model

	width  int
	height int
}

// New creates the browser. With an empty dir it starts in the directory
// picker.
func New(ctx context.Context, backend Backend, cfg *config.Config, dir string) *Model {
	if cfg == nil {
		cfg = config.New()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "search tags"
	ti.CharLimit = 64

	topLimit := cfg.Index.TopLimit
	if topLimit <= 0 || topLimit > maxTagKeys {
		topLimit = maxTagKeys
	}

	m := &Model{
		backend:      backend,
		ctx:          ctx,
		keys:         defaultKeys(),
		topLimit:     topLimit,
		pstyles:      pickerStyles(cfg),
		mode:         common.Normal,
		selectedTags: make(map[string]bool),
		initial:      dir,
		search:       ti,
		status:       components.NewStatusBar(),
		help:         help.New(),
	}

	if dir == "" {
		m.mode = common.Picker
		m.picker = components.NewDirPicker(homeDir(), m.pstyles, 0)
	} else {
		m.status = m.status.Set(common.StatusBusy, "Loading "+dir)
	}
	return m
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	if m.mode == common.Picker {
		return m.picker.Init()
	}
	return tea.Batch(m.loadDirectory(m.initial), m.status.Tick())
}

// View implements tea.Model
func (m *Model) View() string {
	return views.RenderMainView(m)
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		newModel := m.copy()
		newModel.width = msg.Width
		newModel.height = msg.Height
		newModel.help.Width = msg.Width
		return newModel, nil
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case messages.DirectoryLoadedMsg:
		return m.handleLoaded(msg)
	case messages.ProcessStartedMsg:
		return m.handleProcessStarted(msg)
	case messages.ProcessDoneMsg:
		return m.handleProcessDone(msg)
	case spinner.TickMsg:
		newModel := m.copy()
		var cmd tea.Cmd
		newModel.status, cmd = newModel.status.Update(msg)
		return newModel, cmd
	}

	// The picker reads directories asynchronously.
	if m.mode == common.Picker {
		return m.handlePicker(msg)
	}
	return m, nil
}

func (m *Model) copy() *Model {
	newModel := *m
	newModel.selectedTags = make(map[string]bool, len(m.selectedTags))
	for k, v := range m.selectedTags {
		newModel.selectedTags[k] = v
	}
	return &newModel
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case common.Search:
		return m.handleSearchKeys(msg)
	case common.Picker:
		return m.handlePicker(msg)
	default:
		return m.handleNormalKeys(msg)
	}
}

func (m *Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	newModel := m.copy()

	switch {
	case key.Matches(msg, newModel.keys.Quit):
		return newModel, tea.Quit
	case key.Matches(msg, newModel.keys.Down):
		if newModel.cursor < len(newModel.visible)-1 {
			newModel.cursor++
		}
	case key.Matches(msg, newModel.keys.Up):
		if newModel.cursor > 0 {
			newModel.cursor--
		}
	case key.Matches(msg, newModel.keys.Search):
		newModel.mode = common.Search
		return newModel, newModel.search.Focus()
	case key.Matches(msg, newModel.keys.Tags):
		i, _ := components.TagIndex(msg.String())
		top := newModel.TopTags()
		if i < len(top) {
			name := top[i].Name
			if newModel.selectedTags[name] {
				delete(newModel.selectedTags, name)
			} else {
				newModel.selectedTags[name] = true
			}
			newModel.refilter()
		}
	case key.Matches(msg, newModel.keys.Clear):
		newModel.selectedTags = make(map[string]bool)
		newModel.search.SetValue("")
		newModel.refilter()
	case key.Matches(msg, newModel.keys.Open):
		start := newModel.CurrentDir()
		if start == "" {
			start = homeDir()
		}
		newModel.mode = common.Picker
		newModel.picker = components.NewDirPicker(start, newModel.pstyles, newModel.pickerHeight())
		return newModel, newModel.picker.Init()
	case key.Matches(msg, newModel.keys.Process):
		dir := newModel.CurrentDir()
		if dir == "" {
			newModel.status = newModel.status.Set(common.StatusError, "No directory selected")
			return newModel, nil
		}
		newModel.status = newModel.status.Set(common.StatusBusy, "Starting classification of "+filepath.Base(dir))
		return newModel, tea.Batch(newModel.startProcessing(dir), newModel.status.Tick())
	case key.Matches(msg, newModel.keys.Refresh):
		dir := newModel.CurrentDir()
		if dir == "" {
			return newModel, nil
		}
		newModel.status = newModel.status.Set(common.StatusBusy, "Reloading "+filepath.Base(dir))
		return newModel, tea.Batch(newModel.loadDirectory(dir), newModel.status.Tick())
	case key.Matches(msg, newModel.keys.Help):
		newModel.showHelp = !newModel.showHelp
		newModel.help.ShowAll = newModel.showHelp
	}

	return newModel, nil
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	newModel := m.copy()

	switch msg.String() {
	case "enter":
		newModel.mode = common.Normal
		newModel.search.Blur()
		return newModel, nil
	case "esc":
		newModel.mode = common.Normal
		newModel.search.Blur()
		newModel.search.SetValue("")
		newModel.refilter()
		return newModel, nil
	case "ctrl+c":
		return newModel, tea.Quit
	}

	var cmd tea.Cmd
	newModel.search, cmd = newModel.search.Update(msg)
	newModel.refilter()
	return newModel, cmd
}

func (m *Model) handlePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel := m.copy()

	var cmd tea.Cmd
	newModel.picker, cmd = newModel.picker.Update(msg)

	if newModel.picker.Cancelled() {
		newModel.mode = common.Normal
		if newModel.state == nil {
			return newModel, tea.Quit
		}
		return newModel, nil
	}
	if dir, ok := newModel.picker.Chosen(); ok {
		newModel.mode = common.Normal
		newModel.status = newModel.status.Set(common.StatusBusy, "Loading "+dir)
		return newModel, tea.Batch(newModel.loadDirectory(dir), newModel.status.Tick())
	}
	return newModel, cmd
}

func (m *Model) handleLoaded(msg messages.DirectoryLoadedMsg) (tea.Model, tea.Cmd) {
	newModel := m.copy()

	if msg.Error != nil {
		newModel.status = newModel.status.Set(common.StatusError, describeError("Cannot open "+msg.Path, msg.Error))
		return newModel, nil
	}

	sameDir := newModel.state != nil && newModel.state.Directory() == msg.State.Directory()
	newModel.state = msg.State
	if !sameDir {
		newModel.cursor = 0
	}
	// keep only selections that still exist
	for tag := range newModel.selectedTags {
		if newModel.state.Index.Count(tag) == 0 {
			delete(newModel.selectedTags, tag)
		}
	}
	newModel.refilter()

	text := fmt.Sprintf("%d images, %d tags in %s", newModel.state.Snapshot.Len(), newModel.state.Index.Len(), newModel.state.Directory())
	if newModel.processing {
		newModel.status = newModel.status.Set(common.StatusBusy, "Classifying… "+text)
	} else {
		newModel.status = newModel.status.Set(common.StatusInfo, text)
	}
	return newModel, nil
}

func (m *Model) handleProcessStarted(msg messages.ProcessStartedMsg) (tea.Model, tea.Cmd) {
	newModel := m.copy()

	if msg.Error != nil {
		newModel.status = newModel.status.Set(common.StatusError, describeError("Classification not started", msg.Error))
		return newModel, nil
	}
	newModel.processing = true
	newModel.status = newModel.status.Set(common.StatusBusy, "Classifying "+filepath.Base(msg.Path))
	return newModel, waitForJob(msg.Path, msg.Job)
}

func (m *Model) handleProcessDone(msg messages.ProcessDoneMsg) (tea.Model, tea.Cmd) {
	newModel := m.copy()
	newModel.processing = false

	res := msg.Result
	if !res.Success {
		text := "Classification failed: " + res.Error
		if detail := lastLine(res.Details); detail != "" {
			text += " (" + detail + ")"
		}
		newModel.status = newModel.status.Set(common.StatusError, text)
		return newModel, nil
	}

	newModel.status = newModel.status.Set(common.StatusSuccess, "Classification finished")
	if newModel.CurrentDir() == msg.Path {
		return newModel, newModel.loadDirectory(msg.Path)
	}
	return newModel, nil
}

func (m *Model) refilter() {
	if m.state == nil {
		m.visible = nil
		m.cursor = 0
		return
	}
	m.visible = m.state.Filter(index.Query{Search: m.search.Value(), Tags: m.selectedList()})
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// selectedList returns the selected tags in index order.
func (m *Model) selectedList() []string {
	if len(m.selectedTags) == 0 || m.state == nil {
		return nil
	}
	out := make([]string, 0, len(m.selectedTags))
	for _, tag := range m.state.Index.Tags() {
		if m.selectedTags[tag] {
			out = append(out, tag)
		}
	}
	return out
}

// Commands

func (m *Model) loadDirectory(path string) tea.Cmd {
	backend, ctx := m.backend, m.ctx
	return func() tea.Msg {
		st, err := backend.SetSelectedDirectory(ctx, path)
		return messages.DirectoryLoadedMsg{Path: path, State: st, Error: err}
	}
}

func (m *Model) startProcessing(path string) tea.Cmd {
	backend, ctx := m.backend, m.ctx
	return func() tea.Msg {
		job, err := backend.StartProcessing(ctx, path)
		return messages.ProcessStartedMsg{Path: path, Job: job, Error: err}
	}
}

func waitForJob(path string, job *worker.Job) tea.Cmd {
	return func() tea.Msg {
		<-job.Done()
		return messages.ProcessDoneMsg{Path: path, Result: job.Result()}
	}
}

// Getters

func (m *Model) CurrentDir() string {
	return m.state.Directory()
}

func (m *Model) State() *gallery.State {
	return m.state
}

func (m *Model) Images() []types.ImageRecord {
	return m.visible
}

func (m *Model) Total() int {
	if m.state == nil {
		return 0
	}
	return m.state.Snapshot.Len()
}

func (m *Model) Cursor() int {
	return m.cursor
}

func (m *Model) TopTags() []types.TagCount {
	if m.state == nil {
		return nil
	}
	return m.state.Index.Top(m.topLimit)
}

func (m *Model) IsTagSelected(tag string) bool {
	return m.selectedTags[tag]
}

func (m *Model) SearchView() string {
	return m.search.View()
}

func (m *Model) SearchText() string {
	return m.search.Value()
}

func (m *Model) Status() common.Status {
	return m.status.Status()
}

func (m *Model) PickerView() string {
	return m.picker.View()
}

func (m *Model) HelpView() string {
	return m.help.View(m.keys)
}

func (m *Model) ShowHelp() bool {
	return m.showHelp
}

func (m *Model) Mode() common.Mode {
	return m.mode
}

func (m *Model) Processing() bool {
	return m.processing
}

// ListHeight is the number of image rows that fit on screen, 0 for all.
func (m *Model) ListHeight() int {
	if m.height == 0 {
		return 0
	}
	h := m.height - 12
	if h < 3 {
		h = 3
	}
	return h
}

func (m *Model) pickerHeight() int {
	if m.height == 0 {
		return 0
	}
	return m.height - 6
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

func describeError(prefix string, err error) string {
	kind := serr.KindOf(err)
	var appErr interface{ Message() string }
	msg := err.Error()
	if serr.As(err, &appErr) {
		msg = appErr.Message()
	}
	if kind == serr.Unknown {
		return prefix + ": " + msg
	}
	return fmt.Sprintf("%s: %s (%s)", prefix, kind, msg)
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
