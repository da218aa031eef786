package main

import "github.com/charmbracelet/lipgloss"

type colorPalette struct {
	accent    lipgloss.Color
	textMuted lipgloss.Color
	warning   lipgloss.Color
	danger    lipgloss.Color
	success   lipgloss.Color
}

var palette = colorPalette{
	accent:    lipgloss.Color("33"),
	textMuted: lipgloss.Color("243"),
	warning:   lipgloss.Color("178"),
	danger:    lipgloss.Color("160"),
	success:   lipgloss.Color("35"),
}

type styles struct {
	app, topBar                      lipgloss.Style
	sidebarTitle, columnTitle        lipgloss.Style
	panel, panelFocused              lipgloss.Style
	statusBar, statusSeg, statusHint lipgloss.Style
	listItem, listSel                lipgloss.Style
	banner, warning, success         lipgloss.Style
	fieldLabel, fieldValue           lipgloss.Style
	cmdOverlay, cmdPrompt, cmdHint   lipgloss.Style
}

func newStyles() styles {
	base := lipgloss.NewStyle()
	panelBorder := lipgloss.NormalBorder()
	focusedBorder := lipgloss.DoubleBorder()

	return styles{
		app:          base,
		topBar:       base.Padding(0, 1),
		sidebarTitle: base.Copy().Bold(true).Padding(0, 1),
		columnTitle:  base.Copy().Bold(true).Padding(0, 1),
		panel:        base.BorderStyle(panelBorder),
		panelFocused: base.BorderStyle(focusedBorder),
		statusBar:    base.Padding(0, 1),
		statusSeg:    base.Padding(0, 1).MarginRight(1),
		statusHint:   base.Copy().Foreground(palette.textMuted),
		listItem:     base.Padding(0, 1),
		listSel:      base.Padding(0, 1).Bold(true).Foreground(palette.accent),
		banner:       base.Copy().Foreground(palette.danger).Padding(0, 1),
		warning:      base.Copy().Foreground(palette.warning).Padding(0, 1),
		success:      base.Copy().Foreground(palette.success).Padding(0, 1),
		fieldLabel:   base.Copy().Bold(true),
		fieldValue:   base,
		cmdOverlay:   base.Border(lipgloss.RoundedBorder()).Padding(1, 2),
		cmdPrompt:    base.Copy().Bold(true),
		cmdHint:      base.Copy().Faint(true),
	}
}
