// Package tui implements the full-screen catalog browser.
package tui

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/xlsql/xlsql/domain/model"
	"github.com/xlsql/xlsql/highlight"
	"github.com/xlsql/xlsql/internal/render"
	"github.com/xlsql/xlsql/internal/session"
)

// previewRows caps the rows of the result preview.
const previewRows = 10

type styles struct {
	title    lipgloss.Style
	cursor   lipgloss.Style
	detail   lipgloss.Style
	menu     lipgloss.Style
	status   lipgloss.Style
	errorMsg lipgloss.Style
	help     lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		cursor:   r.NewStyle().Reverse(true),
		detail:   r.NewStyle().Faint(true),
		menu:     r.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
		status:   r.NewStyle().Foreground(lipgloss.Color("10")),
		errorMsg: r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		help:     r.NewStyle().Faint(true),
	}
}

// inputMode is what the text input is collecting.
type inputMode int

const (
	inputNone inputMode = iota
	inputSQL
	inputSheetName
)

// Model is the bubbletea model of the browser.
type Model struct {
	ctx     context.Context
	sess    *session.Session
	keys    KeyMap
	styles  styles
	painter *highlight.Painter

	cursor   int
	menu     []session.Action
	menuNode *model.Node
	width    int

	input      textinput.Model
	mode       inputMode
	exportNode *model.Node
}

// New creates a browser over sess. Styles are built with renderer.
func New(ctx context.Context, sess *session.Session, theme highlight.Theme, renderer *lipgloss.Renderer) Model {
	if renderer == nil {
		renderer = lipgloss.DefaultRenderer()
	}
	return Model{
		ctx:     ctx,
		sess:    sess,
		keys:    DefaultKeyMap(),
		styles:  newStyles(renderer),
		painter: highlight.NewPainter(sess.Highlighter(), theme, renderer),
		input:   textinput.New(),
	}
}

// Run shows the browser until the user quits.
func Run(ctx context.Context, sess *session.Session, theme highlight.Theme, renderer *lipgloss.Renderer) error {
	p := tea.NewProgram(New(ctx, sess, theme, renderer), tea.WithContext(ctx), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		if m.mode != inputNone {
			return m.updateInput(msg)
		}
		if m.menu != nil {
			return m.updateMenu(msg)
		}
		return m.updateTree(msg)
	}
	if m.mode != inputNone {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateTree(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	nodes := m.sess.Tree().Visible()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(nodes)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Toggle):
		if n := m.selected(nodes); n != nil && len(n.Children) > 0 {
			n.Expanded = !n.Expanded
		}
	case key.Matches(msg, m.keys.Menu):
		n := m.selected(nodes)
		if n == nil {
			break
		}
		actions, err := session.Actions(n.Kind)
		if err != nil {
			break
		}
		m.menu = actions
		m.menuNode = n
	case key.Matches(msg, m.keys.Run):
		_ = m.sess.Run(m.ctx)
	case key.Matches(msg, m.keys.Format):
		m.sess.Format()
	case key.Matches(msg, m.keys.Edit):
		// newlines of formatted SQL become spaces in the one-line editor
		cmd := m.openInput(inputSQL, "SQL> ", m.sess.SQL())
		return m, cmd
	case key.Matches(msg, m.keys.Export):
		n := m.selected(nodes)
		if n == nil {
			break
		}
		cmd := m.openInput(inputSheetName, "Sheet name: ", "")
		m.exportNode = n
		return m, cmd
	}
	return m, nil
}

func (m *Model) openInput(mode inputMode, prompt, value string) tea.Cmd {
	m.mode = mode
	m.input.Prompt = prompt
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) closeInput() {
	m.mode = inputNone
	m.exportNode = nil
	m.input.Blur()
	m.input.Reset()
}

// updateInput handles keys while the SQL line or the sheet name prompt is
// focused. Enter commits, esc discards.
func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back):
		m.closeInput()
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		value := m.input.Value()
		switch m.mode {
		case inputSQL:
			m.sess.SetSQL(value)
			_ = m.sess.Run(m.ctx)
		case inputSheetName:
			_ = m.sess.Export(m.ctx, m.exportNode, strings.TrimSpace(value))
		}
		m.closeInput()
		m.clampCursor()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Quit):
		m.closeMenu()
		return m, nil
	}

	s := msg.String()
	if len(s) != 1 || s[0] < '1' || s[0] > '9' {
		return m, nil
	}
	i := int(s[0] - '1')
	if i >= len(m.menu) {
		return m, nil
	}
	_ = m.sess.Dispatch(m.ctx, m.menuNode, m.menu[i].ID)
	m.closeMenu()
	m.clampCursor()
	return m, nil
}

func (m *Model) closeMenu() {
	m.menu = nil
	m.menuNode = nil
}

// clampCursor keeps the cursor on a visible node after the tree shrank.
func (m *Model) clampCursor() {
	n := len(m.sess.Tree().Visible())
	if m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}

func (m Model) selected(nodes []*model.Node) *model.Node {
	if m.cursor < 0 || m.cursor >= len(nodes) {
		return nil
	}
	return nodes[m.cursor]
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.title.Render("xlsql"))
	b.WriteString("\n\n")
	b.WriteString(m.treeView())

	if m.menu != nil {
		b.WriteString("\n")
		b.WriteString(m.menuView())
	}

	switch m.mode {
	case inputSQL:
		b.WriteString("\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	case inputSheetName:
		b.WriteString("\n")
		if f := model.FileOf(m.exportNode); f != nil {
			b.WriteString(m.styles.detail.Render("export result to " + f.Text))
			b.WriteString("\n")
		}
		b.WriteString(m.input.View())
		b.WriteString("\n")
	default:
		if sql := m.sess.SQL(); sql != "" {
			b.WriteString("\nSQL> ")
			b.WriteString(m.painter.Render(sql))
			b.WriteString("\n")
		}
	}

	if result := m.sess.Result(); !result.Empty() {
		var buf bytes.Buffer
		if err := render.Result(&buf, result, render.Options{MaxRows: previewRows}); err == nil {
			b.WriteString("\n")
			b.WriteString(buf.String())
		}
	}

	b.WriteString("\n")
	if status, failed := m.sess.Status(); status != "" {
		if failed {
			b.WriteString(m.styles.errorMsg.Render(status))
		} else {
			b.WriteString(m.styles.status.Render(status))
		}
		b.WriteString("\n")
	}
	b.WriteString(m.helpView())
	return b.String()
}

func (m Model) treeView() string {
	nodes := m.sess.Tree().Visible()
	if len(nodes) == 0 {
		return m.styles.detail.Render("no files imported") + "\n"
	}

	depths := make(map[*model.Node]int, len(nodes))
	m.sess.Tree().Walk(func(n *model.Node, depth int) bool {
		depths[n] = depth
		return n.Expanded
	})

	var b strings.Builder
	for i, n := range nodes {
		marker := "  "
		if len(n.Children) > 0 {
			marker = "▸ "
			if n.Expanded {
				marker = "▾ "
			}
		}
		line := strings.Repeat("  ", depths[n]) + marker + n.Text
		if i == m.cursor {
			line = m.styles.cursor.Render(line)
		}
		b.WriteString(line)
		if n.Detail != "" {
			b.WriteString(" ")
			b.WriteString(m.styles.detail.Render(n.Detail))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) menuView() string {
	lines := make([]string, 0, len(m.menu))
	for i, a := range m.menu {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, a.Label))
	}
	return m.styles.menu.Render(strings.Join(lines, "\n")) + "\n"
}

func (m Model) helpView() string {
	bindings := m.keys.ShortHelp()
	if m.mode != inputNone {
		bindings = m.keys.InputHelp()
	}
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return m.styles.help.Render(strings.Join(parts, " • "))
}
