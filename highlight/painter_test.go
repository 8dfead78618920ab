package highlight

import (
	"io"
	"regexp"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func newTestRenderer(profile termenv.Profile) *lipgloss.Renderer {
	renderer := lipgloss.NewRenderer(io.Discard)
	renderer.SetColorProfile(profile)
	return renderer
}

func TestPainter_Render(t *testing.T) {
	t.Parallel()

	text := "select name from Users where id = '1'"
	painter := NewPainter(New("Users"), DefaultTheme(), newTestRenderer(termenv.TrueColor))

	out := painter.Render(text)
	assert.NotEqual(t, text, out)
	assert.Contains(t, out, "\x1b[")
	assert.Equal(t, text, ansiPattern.ReplaceAllString(out, ""))
}

func TestPainter_NoColor(t *testing.T) {
	t.Parallel()

	theme := Theme{}
	painter := NewPainter(New("Users"), theme, newTestRenderer(termenv.Ascii))

	text := "from Users"
	assert.Equal(t, text, ansiPattern.ReplaceAllString(painter.Render(text), ""))
}

func TestPainter_Paint(t *testing.T) {
	t.Parallel()

	painter := NewPainter(New(), DefaultTheme(), newTestRenderer(termenv.ANSI256))

	assert.Empty(t, painter.Paint(nil, 0))
	line := []rune("plain words")
	assert.Equal(t, line, painter.Paint(line, 3))
	assert.NotEqual(t, []rune("SELECT 1"), painter.Paint([]rune("SELECT 1"), 8))
}

func TestTheme_Styles(t *testing.T) {
	t.Parallel()

	styles := DefaultTheme().Styles(newTestRenderer(termenv.TrueColor))
	assert.Len(t, styles, 4)
	assert.True(t, styles[CategoryKeyword].GetBold())
	assert.False(t, styles[CategoryLiteral].GetBold())
	assert.Equal(t, lipgloss.Color("#008000"), styles[CategoryLiteral].GetForeground())
}
