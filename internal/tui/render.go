package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// MarkdownRenderer converte markdown em texto de terminal
type MarkdownRenderer interface {
	Render(markdown string, width int) (string, error)
}

// GlamourRenderer renderiza com glamour, recriando o renderer quando a largura muda
type GlamourRenderer struct {
	width    int
	renderer *glamour.TermRenderer
}

func NewGlamourRenderer() *GlamourRenderer {
	return &GlamourRenderer{}
}

func (g *GlamourRenderer) Render(markdown string, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	if g.renderer == nil || g.width != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return "", err
		}
		g.renderer = r
		g.width = width
	}

	out, err := g.renderer.Render(markdown)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

var (
	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	assistantStyle = lipgloss.NewStyle().
			PaddingLeft(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	statusDoneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	inputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)
)
