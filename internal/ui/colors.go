package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/yday/internal/models"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// Palette holds the TUI's named styles: titles, help text and one style per release outcome.
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
}

// NewPalette builds a palette from hex colors for titles, added, failed, warnings and help text.
func NewPalette(title, added, failed, warn, help string) *Palette {
	return &Palette{
		title: NewBold(title).MarginBottom(1),
		ok:    NewBold(added),
		err:   NewBold(failed),
		warn:  NewStyle(warn),
		help:  NewEm(help),
	}
}

// forStatus returns the style used for a release with status s.
func (p *Palette) forStatus(s models.Status) lipgloss.Style {
	switch s {
	case models.Added:
		return p.ok
	case models.Failed:
		return p.err
	default:
		return p.help
	}
}

// statusMark is the one-character marker shown before a release id.
func statusMark(s models.Status) string {
	switch s {
	case models.Added:
		return "✓"
	case models.Failed:
		return "✗"
	default:
		return "="
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
