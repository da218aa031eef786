package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

type accountLoadedMsg struct {
	info *accountInfo
	err  error
}

type orgsLoadedMsg struct {
	orgs []organization
	err  error
}

type postsLoadedMsg struct {
	posts []post
	err   error
}

type runBatchDoneMsg struct {
	resp *runBatchResponse
	err  error
}

// enterDashboard fires the three dashboard fetches in parallel; each
// carries its own error so one failure does not blank the others.
func (m *model) enterDashboard() tea.Cmd {
	return tea.Batch(m.loadAccountCmd(), m.loadOrgsCmd(), m.loadPostsCmd())
}

func (m *model) loadAccountCmd() tea.Cmd {
	client := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), defaultRequestTimeout)
		defer cancel()
		info, err := client.Me(ctx)
		return accountLoadedMsg{info: info, err: err}
	}
}

func (m *model) loadOrgsCmd() tea.Cmd {
	client := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), defaultRequestTimeout)
		defer cancel()
		orgs, err := client.Orgs(ctx)
		return orgsLoadedMsg{orgs: orgs, err: err}
	}
}

func (m *model) loadPostsCmd() tea.Cmd {
	client := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), defaultRequestTimeout)
		defer cancel()
		posts, err := client.Posts(ctx)
		return postsLoadedMsg{posts: posts, err: err}
	}
}

func (m *model) handleAccountLoaded(msg accountLoadedMsg) {
	m.account = msg.info
	m.accountErr = msg.err
	if isUnauthorized(msg.err) {
		m.queueUnauthorized = true
	}
}

func (m *model) handleOrgsLoaded(msg orgsLoadedMsg) {
	m.orgs = msg.orgs
	m.orgsErr = msg.err
}

func (m *model) handlePostsLoaded(msg postsLoadedMsg) {
	m.posts = msg.posts
	m.postsErr = msg.err
	m.refreshPostsColumn()
}

func (m *model) refreshPostsColumn() {
	if m.postsCol == nil {
		return
	}
	items := make([]list.Item, 0, len(m.posts))
	for _, p := range m.posts {
		title := truncateLine(strings.ReplaceAll(p.Commentary, "\n", " "), 48)
		desc := p.Status
		if !p.CreatedAt.IsZero() {
			desc += " • " + p.CreatedAt.Local().Format("Jan _2 15:04")
		}
		items = append(items, listEntry{title: title, desc: desc, payload: p})
	}
	m.postsCol.SetItems(items)
}

func (m *model) runBatchCmd() tea.Cmd {
	client := m.api
	m.setToast("Starting generation batch…", 4*time.Second)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*defaultRequestTimeout)
		defer cancel()
		resp, err := client.RunBatch(ctx)
		return runBatchDoneMsg{resp: resp, err: err}
	}
}

func (m *model) handleRunBatchDone(msg runBatchDoneMsg) tea.Cmd {
	if msg.err != nil {
		m.appendLog(fmt.Sprintf("[batch] failed: %v", msg.err))
		m.setToast("Batch failed: "+msg.err.Error(), 6*time.Second)
		return nil
	}
	m.appendLog(fmt.Sprintf("[batch] started %d generation(s)", msg.resp.Started))
	m.setToast(fmt.Sprintf("Batch started (%d)", msg.resp.Started), 5*time.Second)
	m.emitTelemetry("batch_started", nil)
	return m.loadPostsCmd()
}

func (m *model) handleDashboardKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.String() {
	case "g":
		return true, m.runBatchCmd()
	case "r":
		return true, m.enterDashboard()
	case "y":
		if entry, ok := m.postsCol.SelectedEntry(); ok {
			if p, ok := entry.payload.(post); ok {
				m.copyToClipboard(p.Commentary, "Post copied")
			}
		}
		return true, nil
	}
	return false, nil
}

func (m *model) renderAccountSummary() string {
	var b strings.Builder
	switch {
	case m.accountErr != nil:
		b.WriteString(m.styles.banner.Render(m.accountErr.Error()) + "\n")
	case m.account == nil:
		b.WriteString("Loading account…\n")
	default:
		b.WriteString(m.styles.fieldLabel.Render(m.account.Name) + "\n")
		if m.account.Email != "" {
			b.WriteString(m.account.Email + "\n")
		}
		state := "LinkedIn: not connected"
		if m.account.Connected {
			state = "LinkedIn: connected"
		}
		b.WriteString(m.styles.statusHint.Render(state) + "\n")
	}

	b.WriteString("\n" + m.styles.fieldLabel.Render("Organizations") + "\n")
	switch {
	case m.orgsErr != nil:
		b.WriteString(m.styles.banner.Render(m.orgsErr.Error()) + "\n")
	case len(m.orgs) == 0:
		b.WriteString(m.styles.statusHint.Render("none") + "\n")
	default:
		for _, org := range m.orgs {
			b.WriteString(fmt.Sprintf("  %s (%s)\n", org.ID, org.URN))
		}
	}
	return b.String()
}

func (m *model) renderDashboardPreview() string {
	entry, ok := m.postsCol.SelectedEntry()
	if !ok {
		if m.postsErr != nil {
			return m.styles.banner.Render(m.postsErr.Error())
		}
		return "No posts yet — press g to run a generation batch."
	}
	p, ok := entry.payload.(post)
	if !ok {
		return ""
	}
	var b strings.Builder
	b.WriteString(renderMarkdown(p.Commentary))
	if len(p.Hashtags) > 0 {
		b.WriteString("\n" + strings.Join(p.Hashtags, " ") + "\n")
	}
	b.WriteString(fmt.Sprintf("\nStatus: %s", p.Status))
	if p.Error != "" {
		b.WriteString("\nError: " + p.Error)
	}
	return b.String()
}
