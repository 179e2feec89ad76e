package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ilievs/facelight/core"
	"github.com/ilievs/facelight/dispatch"
	"github.com/ilievs/facelight/notify"
	"github.com/ilievs/facelight/render"
)

// Handler turns user intents into outcomes and holds the delete awaiting
// confirmation. *dispatch.Table implements it.
type Handler interface {
	Handle(ctx context.Context, in dispatch.Intent) dispatch.Outcome
	PendingDelete() (string, bool)
}

// focus identifies where key presses go.
type focus int

const (
	focusPanel focus = iota
	focusName
	focusConfirm
)

// snapshotMsg carries a snapshot applied by the poller.
type snapshotMsg core.Snapshot

// noteMsg carries a change of the notification slot.
type noteMsg notify.Message

// outcomeMsg is sent when an intent handled off the UI loop completes.
type outcomeMsg dispatch.Outcome

// Model is the bubbletea model of the dashboard. It never holds device state
// of its own beyond the last rendered View; the brightness readout is the only
// local value and it lives until committed.
type Model struct {
	ctx     context.Context
	handler Handler
	updates <-chan core.Snapshot
	notes   <-chan notify.Message

	view       render.View
	brightness int
	readout    string
	adjusting  bool
	cursor     int

	focus     focus
	nameInput textinput.Model
	note      notify.Message

	keys   KeyMap
	help   help.Model
	styles Styles
}

func New(ctx context.Context, handler Handler, initial core.Snapshot, updates <-chan core.Snapshot, notes <-chan notify.Message) Model {
	ti := textinput.New()
	ti.Placeholder = "name"
	ti.Prompt = "Register face: "
	ti.CharLimit = 64

	m := Model{
		ctx:       ctx,
		handler:   handler,
		updates:   updates,
		notes:     notes,
		nameInput: ti,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		styles:    DefaultStyles(),
	}
	m.apply(initial)
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitSnapshot(m.updates), waitNote(m.notes))
}

func waitSnapshot(updates <-chan core.Snapshot) tea.Cmd {
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		s, ok := <-updates
		if !ok {
			return nil
		}
		return snapshotMsg(s)
	}
}

func waitNote(notes <-chan notify.Message) tea.Cmd {
	if notes == nil {
		return nil
	}
	return func() tea.Msg {
		n, ok := <-notes
		if !ok {
			return nil
		}
		return noteMsg(n)
	}
}

func (m Model) handle(in dispatch.Intent) tea.Cmd {
	ctx, handler := m.ctx, m.handler
	return func() tea.Msg {
		return outcomeMsg(handler.Handle(ctx, in))
	}
}

func (m *Model) apply(s core.Snapshot) {
	m.view = render.Build(s)
	if !m.adjusting {
		m.brightness = m.view.Brightness
		m.readout = m.view.BrightnessText
	}
	if m.cursor >= len(m.view.Faces) {
		m.cursor = max(0, len(m.view.Faces)-1)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		m.apply(core.Snapshot(msg))
		return m, waitSnapshot(m.updates)

	case noteMsg:
		m.note = notify.Message(msg)
		return m, waitNote(m.notes)

	case outcomeMsg:
		if msg.Readout != "" && !m.adjusting {
			m.readout = msg.Readout
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.focus {
		case focusName:
			return m.updateName(msg)
		case focusConfirm:
			return m.updateConfirm(msg)
		}
		return m.updatePanel(msg)
	}
	return m, nil
}

func (m Model) updateName(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		name := m.nameInput.Value()
		m.nameInput.Reset()
		m.nameInput.Blur()
		m.focus = focusPanel
		return m, m.handle(dispatch.RegisterFace(name))
	case tea.KeyEsc:
		m.nameInput.Reset()
		m.nameInput.Blur()
		m.focus = focusPanel
		return m, nil
	}

	var cmd tea.Cmd
	m.nameInput, cmd = m.nameInput.Update(msg)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.focus = focusPanel
		return m, m.handle(dispatch.ConfirmDelete())
	case key.Matches(msg, m.keys.Cancel):
		m.focus = focusPanel
		m.handler.Handle(m.ctx, dispatch.CancelDelete())
		return m, nil
	}
	return m, nil
}

func (m Model) updatePanel(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Toggle):
		return m, m.handle(dispatch.ToggleLight())

	case key.Matches(msg, m.keys.Dimmer):
		return m.adjust(-5), nil

	case key.Matches(msg, m.keys.Brighter):
		return m.adjust(+5), nil

	case key.Matches(msg, m.keys.Commit):
		if !m.adjusting {
			return m, nil
		}
		m.adjusting = false
		return m, m.handle(dispatch.BrightnessCommit(m.brightness))

	case key.Matches(msg, m.keys.Normal):
		return m, m.selectMode(0)
	case key.Matches(msg, m.keys.Relaxing):
		return m, m.selectMode(1)
	case key.Matches(msg, m.keys.Party):
		return m, m.selectMode(2)

	case key.Matches(msg, m.keys.NewFace):
		m.focus = focusName
		return m, m.nameInput.Focus()

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.view.Faces)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		if m.cursor >= len(m.view.Faces) || m.view.Faces[m.cursor].Delete == nil {
			return m, nil
		}
		out := m.handler.Handle(m.ctx, *m.view.Faces[m.cursor].Delete)
		if out.NeedsConfirm {
			m.focus = focusConfirm
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m, m.handle(dispatch.Refresh())

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}
	return m, nil
}

// adjust moves the local readout only; nothing is sent until Commit.
func (m Model) adjust(delta int) Model {
	m.brightness = max(0, min(100, m.brightness+delta))
	m.adjusting = true
	m.readout = m.handler.Handle(m.ctx, dispatch.BrightnessInput(m.brightness)).Readout
	return m
}

func (m Model) selectMode(i int) tea.Cmd {
	if i >= len(m.view.Modes) {
		return nil
	}
	return m.handle(m.view.Modes[i].Select)
}

func (m Model) View() string {
	st := m.styles
	v := m.view

	row := func(label, value string) string {
		return st.Label.Render(fmt.Sprintf("%-11s", label)) + value
	}

	readout := st.Value.Render(m.readout)
	if m.adjusting {
		readout += st.Muted.Render("  (enter to apply)")
	}

	light := st.Panel.Render(strings.Join([]string{
		row("Power", st.Colored(v.PowerColor).Render(v.PowerText)),
		row("Brightness", readout),
		row("", brightnessBar(m.brightness)),
		row("Mode", st.Badge(v.ModeColor).Render(v.ModeText)),
	}, "\n"))

	var faces []string
	faces = append(faces, row("Faces", st.Value.Render(v.FaceCountText)))
	for i, f := range v.Faces {
		switch {
		case f.Placeholder:
			faces = append(faces, "  "+st.Muted.Render(f.Name))
		case i == m.cursor:
			faces = append(faces, st.Cursor.Render("> "+f.Name))
		default:
			faces = append(faces, "  "+f.Name)
		}
	}
	facePanel := st.Panel.Render(strings.Join(faces, "\n"))

	var buttons []string
	for i, b := range v.Modes {
		label := fmt.Sprintf("%d %s", i+1, b.Mode)
		if b.Active {
			buttons = append(buttons, st.Active.BorderForeground(lipgloss.Color(string(render.ModeColor(b.Mode)))).Render(label))
		} else {
			buttons = append(buttons, st.Button.Render(label))
		}
	}

	sections := []string{
		st.Title.Render("facelight"),
		lipgloss.JoinHorizontal(lipgloss.Top, light, facePanel),
		lipgloss.JoinHorizontal(lipgloss.Top, buttons...),
	}

	switch m.focus {
	case focusName:
		sections = append(sections, m.nameInput.View())
	case focusConfirm:
		if name, ok := m.handler.PendingDelete(); ok {
			sections = append(sections, st.Prompt.Render(dispatch.DeletePrompt(name)))
		}
	}

	if m.note.Visible {
		sections = append(sections, st.Notification(m.note.Kind).Render(m.note.Text))
	}

	sections = append(sections, m.help.View(m.keys))
	return strings.Join(sections, "\n") + "\n"
}

func brightnessBar(b int) string {
	const width = 20
	filled := b * width / 100
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}
