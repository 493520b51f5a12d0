package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color scheme for terminal rendering.
type Theme struct {
	Primary lipgloss.Color // Main accent color
	Dim     lipgloss.Color // Dimmed/help text color
	Warn    lipgloss.Color // Partial/incomplete marker color
}

// DefaultTheme is the default bright green theme.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#00ff9f"),
	Dim:     lipgloss.Color("#6e7681"),
	Warn:    lipgloss.Color("#f0b429"),
}

// Styles holds all styles derived from a theme.
type Styles struct {
	Label   lipgloss.Style
	Value   lipgloss.Style
	Partial lipgloss.Style
	Help    lipgloss.Style
	Border  lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Label:   lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Value:   lipgloss.NewStyle(),
		Partial: lipgloss.NewStyle().Foreground(t.Warn),
		Help:    lipgloss.NewStyle().Foreground(t.Dim),
		Border:  lipgloss.NewStyle().Foreground(t.Primary),
	}
}

// RenderHeading renders a bordered one-line heading, used by the stream
// command to separate blocks.
func (s Styles) RenderHeading(label, note string) string {
	head := s.Label.Render(label)
	if note != "" {
		head += " " + s.Help.Render("["+note+"]")
	}
	rule := s.Border.Render(strings.Repeat("─", 3))
	return fmt.Sprintf("%s %s", rule, head)
}

// RenderKV renders an indented key/value line.
func (s Styles) RenderKV(key, value string) string {
	return "  " + s.Label.Render(key+":") + " " + s.Value.Render(value)
}
