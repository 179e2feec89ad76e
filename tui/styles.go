package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ilievs/facelight/notify"
	"github.com/ilievs/facelight/render"
)

type Styles struct {
	Title   lipgloss.Style
	Panel   lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Muted   lipgloss.Style
	Cursor  lipgloss.Style
	Button  lipgloss.Style
	Active  lipgloss.Style
	Prompt  lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f8fafc")).Background(lipgloss.Color("#334155")).Padding(0, 1),
		Panel:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#475569")).Padding(0, 1),
		Label:   lipgloss.NewStyle().Foreground(lipgloss.Color("#94a3b8")),
		Value:   lipgloss.NewStyle().Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("#64748b")).Italic(true),
		Cursor:  lipgloss.NewStyle().Foreground(lipgloss.Color("#f59e0b")).Bold(true),
		Button:  lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("#475569")),
		Active:  lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.ThickBorder()).Bold(true),
		Prompt:  lipgloss.NewStyle().Foreground(lipgloss.Color("#f59e0b")).Bold(true),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color(string(render.ColorOn))).Bold(true),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color(string(render.ColorOff))).Bold(true),
	}
}

func (s Styles) Colored(c render.Color) lipgloss.Style {
	return s.Value.Foreground(lipgloss.Color(string(c)))
}

func (s Styles) Badge(c render.Color) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Padding(0, 1).
		Foreground(lipgloss.Color("#ffffff")).
		Background(lipgloss.Color(string(c)))
}

func (s Styles) Notification(kind notify.Kind) lipgloss.Style {
	if kind == notify.KindError {
		return s.Error
	}
	return s.Success
}
