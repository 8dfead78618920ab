package tui

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/xlsql/xlsql/highlight"
	"github.com/xlsql/xlsql/internal/session"
	"github.com/xlsql/xlsql/internal/testutil"
)

func newTestBrowser(t *testing.T) (Model, *session.Session) {
	t.Helper()

	ctx := context.Background()
	sess, err := session.New(ctx, session.WithLogger(testutil.NewTestLogger(t)))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sess.Close()
	})

	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", "Orders"))
	require.NoError(t, f.SetSheetRow("Orders", "A1", &[]any{"id", "item"}))
	require.NoError(t, f.SetSheetRow("Orders", "A2", &[]any{"1", "pen"}))
	require.NoError(t, f.SetSheetRow("Orders", "A3", &[]any{"2", "ink"}))
	path := filepath.Join(t.TempDir(), "shop.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, sess.Import(ctx, path))

	return New(ctx, sess, highlight.DefaultTheme(), lipgloss.NewRenderer(io.Discard)), sess
}

func press(t *testing.T, m Model, msgs ...tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()

	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(Model)
	}
	return m, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyUp    = tea.KeyMsg{Type: tea.KeyUp}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keySpace = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
)

func TestBrowser_Navigation(t *testing.T) {
	t.Parallel()

	m, sess := newTestBrowser(t)
	require.Len(t, sess.Tree().Visible(), 2)

	m, _ = press(t, m, keyUp)
	assert.Equal(t, 0, m.cursor)

	m, _ = press(t, m, keyDown, keyDown, keyDown)
	assert.Equal(t, 1, m.cursor)

	m, _ = press(t, m, keySpace)
	assert.Len(t, sess.Tree().Visible(), 4)
	assert.Contains(t, m.View(), "item")

	m, _ = press(t, m, keySpace)
	assert.Len(t, sess.Tree().Visible(), 2)
}

func TestBrowser_ActionMenu(t *testing.T) {
	t.Parallel()

	t.Run("show data", func(t *testing.T) {
		t.Parallel()

		m, sess := newTestBrowser(t)
		m, _ = press(t, m, keyDown, keyEnter)
		require.Len(t, m.menu, 3)
		assert.Contains(t, m.View(), "2. Show table data")

		m, _ = press(t, m, runes("2"))
		assert.Nil(t, m.menu)
		assert.Equal(t, 2, sess.Result().Len())
		assert.Contains(t, m.View(), "Showing data of [Orders]")
	})

	t.Run("out of range digit keeps the menu", func(t *testing.T) {
		t.Parallel()

		m, _ := newTestBrowser(t)
		m, _ = press(t, m, keyEnter, runes("7"))
		assert.Len(t, m.menu, 2)

		m, _ = press(t, m, keyEsc)
		assert.Nil(t, m.menu)
	})

	t.Run("insert then run", func(t *testing.T) {
		t.Parallel()

		m, sess := newTestBrowser(t)
		sess.SetSQL("SELECT * FROM")
		m, _ = press(t, m, keyDown, keyEnter, runes("1"), runes("r"))
		assert.Equal(t, "SELECT * FROM [Orders] ", sess.SQL())
		assert.Equal(t, 2, sess.Result().Len())
	})

	t.Run("remove file clamps the cursor", func(t *testing.T) {
		t.Parallel()

		m, sess := newTestBrowser(t)
		m, _ = press(t, m, keyDown, keyEnter, runes("3"))
		assert.Zero(t, sess.Tree().Len())
		assert.Equal(t, 0, m.cursor)
		assert.Contains(t, m.View(), "no files imported")

		m, _ = press(t, m, keyEnter)
		assert.Nil(t, m.menu)
	})
}

func TestBrowser_Quit(t *testing.T) {
	t.Parallel()

	m, _ := newTestBrowser(t)
	_, cmd := press(t, m, runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestBrowser_ErrorStatus(t *testing.T) {
	t.Parallel()

	m, sess := newTestBrowser(t)
	sess.SetSQL("SELECT * FROM missing")
	m, _ = press(t, m, runes("r"))

	_, failed := sess.Status()
	assert.True(t, failed)
	assert.Contains(t, m.View(), "no such table")
}

func TestBrowser_EditSQL(t *testing.T) {
	t.Parallel()

	t.Run("enter runs the edited text", func(t *testing.T) {
		t.Parallel()

		m, sess := newTestBrowser(t)
		sess.SetSQL("SELECT * FROM")
		m, _ = press(t, m, runes("e"))
		require.Equal(t, inputSQL, m.mode)
		assert.Equal(t, "SELECT * FROM", m.input.Value())
		assert.Contains(t, m.View(), "enter confirm")

		// q is text while the editor is focused
		m, _ = press(t, m, runes(" Orders WHERE item <> '"), runes("q"), runes("'"))
		require.Equal(t, inputSQL, m.mode)
		m, _ = press(t, m, keyEnter)

		assert.Equal(t, inputNone, m.mode)
		assert.Equal(t, "SELECT * FROM Orders WHERE item <> 'q'", sess.SQL())
		assert.Equal(t, 2, sess.Result().Len())
		assert.Contains(t, m.View(), "Query returned 2 row(s)")
	})

	t.Run("esc discards the edit", func(t *testing.T) {
		t.Parallel()

		m, sess := newTestBrowser(t)
		sess.SetSQL("SELECT 1")
		m, _ = press(t, m, runes("e"), runes(" junk"), keyEsc)

		assert.Equal(t, inputNone, m.mode)
		assert.Equal(t, "SELECT 1", sess.SQL())
		assert.True(t, sess.Result().Empty())
	})

	t.Run("ctrl+c quits while editing", func(t *testing.T) {
		t.Parallel()

		m, _ := newTestBrowser(t)
		_, cmd := press(t, m, runes("e"), tea.KeyMsg{Type: tea.KeyCtrlC})
		require.NotNil(t, cmd)
		assert.Equal(t, tea.Quit(), cmd())
	})
}

func TestBrowser_Export(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("appends the result to the selected file", func(t *testing.T) {
		t.Parallel()

		m, sess := newTestBrowser(t)
		sess.SetSQL("SELECT item FROM Orders")
		require.NoError(t, sess.Run(ctx))

		m, _ = press(t, m, keyDown, runes("x"))
		require.Equal(t, inputSheetName, m.mode)
		assert.Contains(t, m.View(), "export result to shop")

		m, _ = press(t, m, runes("Q1 sales"), keyEnter)
		assert.Equal(t, inputNone, m.mode)
		assert.Nil(t, m.exportNode)

		status, failed := sess.Status()
		assert.False(t, failed, status)
		assert.Contains(t, status, "as sheet [Q1 sales]")

		names, err := sess.Catalog().ListTableNames(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Orders", "Q1 sales"}, names)
		assert.Len(t, sess.Tree().Visible(), 3)
		assert.Contains(t, m.View(), "Q1 sales")
	})

	t.Run("invalid name becomes the status", func(t *testing.T) {
		t.Parallel()

		m, sess := newTestBrowser(t)
		sess.SetSQL("SELECT item FROM Orders")
		require.NoError(t, sess.Run(ctx))

		m, _ = press(t, m, runes("x"), runes("orders"), keyEnter)
		status, failed := sess.Status()
		assert.True(t, failed)
		assert.Contains(t, status, "already exists")
		assert.Contains(t, m.View(), "already exists")
	})

	t.Run("esc cancels", func(t *testing.T) {
		t.Parallel()

		m, sess := newTestBrowser(t)
		sess.SetSQL("SELECT item FROM Orders")
		require.NoError(t, sess.Run(ctx))

		m, _ = press(t, m, runes("x"), runes("Nope"), keyEsc)
		assert.Equal(t, inputNone, m.mode)

		names, err := sess.Catalog().ListTableNames(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Orders"}, names)
	})
}
