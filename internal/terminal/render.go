// Package terminal renders user-facing coco messages.
package terminal

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Severity selects the badge a message is rendered with.
type Severity int

const (
	Plain Severity = iota
	Info
	Success
	Warning
	Error
)

// Color modes accepted by NewRenderer.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

var labels = map[Severity]string{
	Success: " SUCCESS: ",
	Warning: " WARNING: ",
	Error:   " ERROR: ",
}

// Renderer turns a severity and a message into one styled line.
type Renderer struct {
	badges map[Severity]lipgloss.Style
	texts  map[Severity]lipgloss.Style
}

// NewRenderer creates a Renderer for output written to w. mode is one of
// the Color constants; an unknown mode behaves like ColorAuto.
func NewRenderer(w io.Writer, mode string) *Renderer {
	r := lipgloss.NewRenderer(w)
	switch mode {
	case ColorNever:
		r.SetColorProfile(termenv.Ascii)
	case ColorAlways:
		r.SetColorProfile(termenv.ANSI)
	}

	badge := r.NewStyle().Bold(true)
	return &Renderer{
		badges: map[Severity]lipgloss.Style{
			Success: badge.Background(lipgloss.Color("2")).Foreground(lipgloss.Color("15")),
			Warning: badge.Background(lipgloss.Color("3")).Foreground(lipgloss.Color("0")),
			Error:   badge.Background(lipgloss.Color("1")).Foreground(lipgloss.Color("0")),
		},
		texts: map[Severity]lipgloss.Style{
			Info:    r.NewStyle().Foreground(lipgloss.Color("4")),
			Success: r.NewStyle().Foreground(lipgloss.Color("2")),
			Warning: r.NewStyle().Foreground(lipgloss.Color("3")),
			Error:   r.NewStyle().Foreground(lipgloss.Color("1")),
		},
	}
}

// Render returns message decorated for sev, without a trailing newline.
func (r *Renderer) Render(sev Severity, message string) string {
	text := message
	if style, ok := r.texts[sev]; ok {
		text = style.Render(message)
	}

	label, ok := labels[sev]
	if !ok {
		return text
	}
	return r.badges[sev].Render(label) + " " + text
}
