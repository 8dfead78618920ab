package highlight

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme holds the colors of each category. Colors are lipgloss color strings
// ("#800000", "9", ...); an empty color leaves the text unstyled.
type Theme struct {
	Keyword    string `koanf:"keyword"`
	Identifier string `koanf:"identifier"`
	Literal    string `koanf:"literal"`
	Table      string `koanf:"table"`
}

// DefaultTheme mirrors the classic editor palette: dark red bold keywords,
// blue identifiers and tables, dark green literals.
func DefaultTheme() Theme {
	return Theme{
		Keyword:    "#800000",
		Identifier: "#0000FF",
		Literal:    "#008000",
		Table:      "#0000FF",
	}
}

// Styles returns one lipgloss style per category built with renderer.
// Keywords are bold.
func (t Theme) Styles(renderer *lipgloss.Renderer) map[Category]lipgloss.Style {
	if renderer == nil {
		renderer = lipgloss.DefaultRenderer()
	}
	style := func(color string) lipgloss.Style {
		s := renderer.NewStyle()
		if color != "" {
			s = s.Foreground(lipgloss.Color(color))
		}
		return s
	}
	return map[Category]lipgloss.Style{
		CategoryKeyword:    style(t.Keyword).Bold(true),
		CategoryIdentifier: style(t.Identifier),
		CategoryLiteral:    style(t.Literal),
		CategoryTable:      style(t.Table),
	}
}

// Painter renders highlighted text for a terminal. It satisfies the
// readline Painter interface, so a line editor can repaint on every keystroke.
type Painter struct {
	highlighter *Highlighter
	styles      map[Category]lipgloss.Style
}

// NewPainter creates a Painter over h.
func NewPainter(h *Highlighter, theme Theme, renderer *lipgloss.Renderer) *Painter {
	return &Painter{
		highlighter: h,
		styles:      theme.Styles(renderer),
	}
}

// Render returns text with every span styled by its category.
func (p *Painter) Render(text string) string {
	var b strings.Builder
	for _, span := range Spans(text, p.highlighter.Highlight(text)) {
		style, ok := p.styles[span.Category]
		if !ok {
			b.WriteString(span.Text)
			continue
		}
		b.WriteString(style.Render(span.Text))
	}
	return b.String()
}

// Paint implements readline.Painter.
func (p *Painter) Paint(line []rune, _ int) []rune {
	if len(line) == 0 {
		return line
	}
	return []rune(p.Render(string(line)))
}
