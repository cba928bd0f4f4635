package ui

import (
	"github.com/charmbracelet/lipgloss"
)

type palette struct {
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Accent  lipgloss.Color
	Border  lipgloss.Color
	Success lipgloss.Color
	Danger  lipgloss.Color
	Unread  lipgloss.Color
}

var palettes = map[string]palette{
	"dark": {
		Text:    lipgloss.Color("#d8ffe1"),
		Muted:   lipgloss.Color("#93ffb0"),
		Accent:  lipgloss.Color("#39ff14"),
		Border:  lipgloss.Color("#1b3b2f"),
		Success: lipgloss.Color("#24f38d"),
		Danger:  lipgloss.Color("#ff4d4d"),
		Unread:  lipgloss.Color("#f9e2af"),
	},
	"light": {
		Text:    lipgloss.Color("#1d1c1d"),
		Muted:   lipgloss.Color("#616061"),
		Accent:  lipgloss.Color("#4a154b"),
		Border:  lipgloss.Color("#dddddd"),
		Success: lipgloss.Color("#007a5a"),
		Danger:  lipgloss.Color("#e01e5a"),
		Unread:  lipgloss.Color("#1264a3"),
	},
}

func paletteFor(name string) palette {
	if p, ok := palettes[name]; ok {
		return p
	}
	return palettes["dark"]
}

type styles struct {
	title   lipgloss.Style
	muted   lipgloss.Style
	active  lipgloss.Style
	unread  lipgloss.Style
	success lipgloss.Style
	danger  lipgloss.Style
	panel   lipgloss.Style
	side    lipgloss.Style
}

func newStyles(theme string) styles {
	p := paletteFor(theme)
	return styles{
		title:   lipgloss.NewStyle().Bold(true).Foreground(p.Accent),
		muted:   lipgloss.NewStyle().Foreground(p.Muted),
		active:  lipgloss.NewStyle().Bold(true).Foreground(p.Text).Background(p.Border),
		unread:  lipgloss.NewStyle().Bold(true).Foreground(p.Unread),
		success: lipgloss.NewStyle().Foreground(p.Success),
		danger:  lipgloss.NewStyle().Foreground(p.Danger),
		panel:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(p.Border).Padding(0, 1),
		side:    lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(p.Border).Padding(0, 1),
	}
}
