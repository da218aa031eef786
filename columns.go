package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type column interface {
	SetSize(width, height int)
	Update(msg tea.Msg) (column, tea.Cmd)
	View(styles styles, focused bool) string
	Title() string
}

type listEntry struct {
	title   string
	desc    string
	payload any
}

func (e listEntry) Title() string       { return e.title }
func (e listEntry) Description() string { return e.desc }
func (e listEntry) FilterValue() string { return e.title }

type selectableColumn struct {
	title       string
	model       list.Model
	width       int
	height      int
	onSelect    func(entry listEntry) tea.Cmd
	onHighlight func(entry listEntry) tea.Cmd
}

func newSelectableColumn(title string, items []list.Item, width int, s styles, onSelect func(listEntry) tea.Cmd) *selectableColumn {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = s.listSel
	delegate.Styles.SelectedDesc = s.listSel
	delegate.Styles.NormalTitle = s.listItem
	delegate.Styles.NormalDesc = s.listItem.Foreground(palette.textMuted)

	m := list.New(items, delegate, width, 20)
	m.Title = title
	m.SetShowStatusBar(false)
	m.SetFilteringEnabled(false)
	m.SetShowHelp(false)
	m.SetShowPagination(false)

	return &selectableColumn{
		title:    title,
		model:    m,
		width:    width,
		onSelect: onSelect,
	}
}

func (c *selectableColumn) SetItems(items []list.Item) {
	c.model.SetItems(items)
	if len(items) > 0 {
		c.model.Select(0)
	}
}

func (c *selectableColumn) SetHighlightFunc(fn func(listEntry) tea.Cmd) {
	c.onHighlight = fn
}

func (c *selectableColumn) SelectedEntry() (listEntry, bool) {
	if entry, ok := c.model.SelectedItem().(listEntry); ok {
		return entry, true
	}
	return listEntry{}, false
}

func (c *selectableColumn) SetSize(width, height int) {
	c.width = width
	if height < 3 {
		height = 3
	}
	c.height = height
	c.model.SetSize(width, height-2)
}

func (c *selectableColumn) Update(msg tea.Msg) (column, tea.Cmd) {
	prev := c.model.Index()
	if m, ok := msg.(tea.KeyMsg); ok {
		if m.String() == "enter" && c.onSelect != nil {
			if item, ok := c.model.SelectedItem().(listEntry); ok {
				return c, c.onSelect(item)
			}
		}
	}
	var cmd tea.Cmd
	c.model, cmd = c.model.Update(msg)
	if c.model.Index() != prev && c.onHighlight != nil {
		if item, ok := c.model.SelectedItem().(listEntry); ok {
			if run := c.onHighlight(item); run != nil {
				if cmd != nil {
					return c, tea.Batch(cmd, run)
				}
				return c, run
			}
		}
	}
	return c, cmd
}

func (c *selectableColumn) View(s styles, focused bool) string {
	body := lipgloss.JoinVertical(lipgloss.Left, s.columnTitle.Render(c.title), c.model.View())
	if focused {
		return s.panelFocused.Width(c.width).Render(body)
	}
	return s.panel.Width(c.width).Render(body)
}

func (c *selectableColumn) Title() string {
	return c.title
}

// checklistEntry is a row with a checkbox marker, used for the approved
// queue's multi-select.
type checklistEntry struct {
	title   string
	desc    string
	id      string
	checked bool
}

func (e checklistEntry) Title() string {
	marker := "[ ]"
	if e.checked {
		marker = "[x]"
	}
	return fmt.Sprintf("%s %s", marker, e.title)
}

func (e checklistEntry) Description() string { return e.desc }
func (e checklistEntry) FilterValue() string { return e.title }

type checklistColumn struct {
	title       string
	model       list.Model
	width       int
	height      int
	onToggle    func(id string) tea.Cmd
	onHighlight func(id string) tea.Cmd
}

func newChecklistColumn(title string, width int, s styles) *checklistColumn {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = s.listSel
	delegate.Styles.SelectedDesc = s.listSel
	delegate.Styles.NormalTitle = s.listItem
	delegate.Styles.NormalDesc = s.listItem.Foreground(palette.textMuted)

	m := list.New([]list.Item{}, delegate, width, 20)
	m.Title = title
	m.SetShowStatusBar(false)
	m.SetFilteringEnabled(false)
	m.SetShowHelp(false)
	m.SetShowPagination(false)

	return &checklistColumn{
		title: title,
		model: m,
		width: width,
	}
}

func (c *checklistColumn) SetCallbacks(onToggle, onHighlight func(id string) tea.Cmd) {
	c.onToggle = onToggle
	c.onHighlight = onHighlight
}

func (c *checklistColumn) SetEntries(entries []checklistEntry) {
	prev := c.model.Index()
	items := make([]list.Item, 0, len(entries))
	for _, entry := range entries {
		items = append(items, entry)
	}
	c.model.SetItems(items)
	if prev >= 0 && prev < len(items) {
		c.model.Select(prev)
	} else if len(items) > 0 {
		c.model.Select(0)
	}
}

func (c *checklistColumn) SelectedID() (string, bool) {
	if entry, ok := c.model.SelectedItem().(checklistEntry); ok {
		return entry.id, true
	}
	return "", false
}

func (c *checklistColumn) SetSize(width, height int) {
	c.width = width
	if height < 3 {
		height = 3
	}
	c.height = height
	c.model.SetSize(width, height-2)
}

func (c *checklistColumn) Update(msg tea.Msg) (column, tea.Cmd) {
	var cmds []tea.Cmd
	prev := c.model.Index()

	var cmd tea.Cmd
	c.model, cmd = c.model.Update(msg)
	if cmd != nil {
		cmds = append(cmds, cmd)
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case " ", "space", "enter":
			if id, ok := c.SelectedID(); ok && c.onToggle != nil {
				cmds = append(cmds, c.onToggle(id))
			}
		}
	}

	if c.model.Index() != prev {
		if id, ok := c.SelectedID(); ok && c.onHighlight != nil {
			cmds = append(cmds, c.onHighlight(id))
		}
	}

	return c, tea.Batch(cmds...)
}

func (c *checklistColumn) View(s styles, focused bool) string {
	body := lipgloss.JoinVertical(lipgloss.Left, s.columnTitle.Render(c.title), c.model.View())
	if focused {
		return s.panelFocused.Width(c.width).Render(body)
	}
	return s.panel.Width(c.width).Render(body)
}

func (c *checklistColumn) Title() string {
	return c.title
}

type previewColumn struct {
	title   string
	width   int
	height  int
	content string
	view    viewport.Model
}

func newPreviewColumn(width int) *previewColumn {
	vp := viewport.New(width, 20)
	return &previewColumn{
		title: "Preview",
		width: width,
		view:  vp,
	}
}

func (p *previewColumn) SetTitle(title string) {
	p.title = title
}

func (p *previewColumn) SetSize(width, height int) {
	p.width = width
	if height < 3 {
		height = 3
	}
	p.height = height
	p.view.Width = width - 2
	p.view.Height = height - 3
}

func (p *previewColumn) SetContent(content string) {
	p.content = content
	p.view.SetContent(content)
}

func (p *previewColumn) Update(msg tea.Msg) (column, tea.Cmd) {
	var cmd tea.Cmd
	p.view, cmd = p.view.Update(msg)
	return p, cmd
}

func (p *previewColumn) View(s styles, focused bool) string {
	header := s.columnTitle.Render(p.title)
	body := header + "\n" + p.view.View()
	if focused {
		return s.panelFocused.Width(p.width).Render(body)
	}
	return s.panel.Width(p.width).Render(body)
}

func (p *previewColumn) Title() string {
	return p.title
}

func truncateLine(value string, width int) string {
	if width <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= width {
		return value
	}
	if width == 1 {
		return string(runes[:1])
	}
	return strings.TrimSpace(string(runes[:width-1])) + "…"
}
