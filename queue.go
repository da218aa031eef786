package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type approvedLoadedMsg struct {
	posts []post
	err   error
}

type publishDoneMsg struct {
	resp  *publishResponse
	total int
	err   error
}

type clearDoneMsg struct {
	err error
}

func (m *model) enterQueue() tea.Cmd {
	m.queueNotice = ""
	m.queueErr = nil
	return m.loadApprovedCmd()
}

func (m *model) loadApprovedCmd() tea.Cmd {
	client := m.api
	m.queueLoading = true
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), defaultRequestTimeout)
		defer cancel()
		posts, err := client.Approved(ctx)
		return approvedLoadedMsg{posts: posts, err: err}
	}
}

func (m *model) handleApprovedLoaded(msg approvedLoadedMsg) {
	m.queueLoading = false
	if msg.err != nil {
		m.queueErr = msg.err
		m.queueUnauthorized = isUnauthorized(msg.err)
		if m.queueUnauthorized {
			m.hideQueueForLogin()
		}
		return
	}
	m.queueErr = nil
	m.queueUnauthorized = false
	m.queuePosts = msg.posts
	// Drop selections for posts that vanished from the queue.
	for id := range m.queueSelection {
		if !queueContains(msg.posts, id) {
			delete(m.queueSelection, id)
		}
	}
	m.refreshQueueColumn()
}

// hideQueueForLogin swaps the list rows for the signed-out presentation.
// They come back with the next successful load.
func (m *model) hideQueueForLogin() {
	m.queuePosts = nil
	m.queueSelection = make(map[string]bool)
	m.refreshQueueColumn()
}

func queueContains(posts []post, id string) bool {
	for _, p := range posts {
		if p.ID == id {
			return true
		}
	}
	return false
}

func (m *model) refreshQueueColumn() {
	if m.queueCol == nil {
		return
	}
	entries := make([]checklistEntry, 0, len(m.queuePosts))
	for _, p := range m.queuePosts {
		title := truncateLine(strings.ReplaceAll(p.Commentary, "\n", " "), 48)
		desc := p.Status
		if !p.CreatedAt.IsZero() {
			desc += " • " + p.CreatedAt.Local().Format("Jan _2 15:04")
		}
		entries = append(entries, checklistEntry{
			title:   title,
			desc:    desc,
			id:      p.ID,
			checked: m.queueSelection[p.ID],
		})
	}
	m.queueCol.SetEntries(entries)
}

func (m *model) toggleQueueSelection(id string) {
	if m.queueSelection[id] {
		delete(m.queueSelection, id)
	} else {
		m.queueSelection[id] = true
	}
	m.refreshQueueColumn()
}

// toggleQueueSelectAll flips every visible row to the new state: all on
// unless everything is already selected.
func (m *model) toggleQueueSelectAll() {
	allSelected := len(m.queuePosts) > 0
	for _, p := range m.queuePosts {
		if !m.queueSelection[p.ID] {
			allSelected = false
			break
		}
	}
	if allSelected {
		m.queueSelection = make(map[string]bool)
	} else {
		for _, p := range m.queuePosts {
			m.queueSelection[p.ID] = true
		}
	}
	m.refreshQueueColumn()
}

func (m *model) selectedQueueIDs() []string {
	var ids []string
	for _, p := range m.queuePosts {
		if m.queueSelection[p.ID] {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

func (m *model) publishSelectedCmd() tea.Cmd {
	ids := m.selectedQueueIDs()
	if len(ids) == 0 {
		m.queueNotice = "Select at least one post to publish"
		return nil
	}
	req := publishRequest{
		IDs:        ids,
		Target:     targetMember,
		PublishNow: true,
	}
	if m.config.OrgID != "" {
		req.Target = targetOrg
		req.OrgID = m.config.OrgID
	}
	client := m.api
	total := len(ids)
	m.queueBusy = true
	m.queueNotice = fmt.Sprintf("Publishing %d post(s)…", total)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*defaultRequestTimeout)
		defer cancel()
		resp, err := client.PublishApproved(ctx, req)
		return publishDoneMsg{resp: resp, total: total, err: err}
	}
}

func (m *model) handlePublishDone(msg publishDoneMsg) tea.Cmd {
	m.queueBusy = false
	if msg.err != nil {
		m.queueErr = msg.err
		m.queueUnauthorized = isUnauthorized(msg.err)
		if m.queueUnauthorized {
			m.hideQueueForLogin()
		}
		m.queueNotice = ""
		return nil
	}
	// Selection clears even on partial failure; the notice carries the ratio.
	m.queueSelection = make(map[string]bool)
	m.queueNotice = fmt.Sprintf("Published %d/%d", msg.resp.Successful, msg.total)
	m.setToast(m.queueNotice, 5*time.Second)
	m.emitTelemetry("queue_published", map[string]string{
		"successful": fmt.Sprintf("%d", msg.resp.Successful),
		"total":      fmt.Sprintf("%d", msg.total),
	})
	return m.loadApprovedCmd()
}

func (m *model) clearApprovedCmd() tea.Cmd {
	client := m.api
	m.queueBusy = true
	m.queueNotice = "Clearing queue…"
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), defaultRequestTimeout)
		defer cancel()
		return clearDoneMsg{err: client.ClearApproved(ctx)}
	}
}

func (m *model) handleClearDone(msg clearDoneMsg) tea.Cmd {
	m.queueBusy = false
	if msg.err != nil {
		m.queueErr = msg.err
		m.queueUnauthorized = isUnauthorized(msg.err)
		if m.queueUnauthorized {
			m.hideQueueForLogin()
		}
		m.queueNotice = ""
		return nil
	}
	m.queueSelection = make(map[string]bool)
	m.queueNotice = "Queue cleared"
	return m.loadApprovedCmd()
}

func (m *model) handleQueueKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.String() {
	case "a":
		m.toggleQueueSelectAll()
		return true, nil
	case "P":
		if m.queueBusy {
			return true, nil
		}
		return true, m.publishSelectedCmd()
	case "C":
		if m.queueBusy {
			return true, nil
		}
		return true, m.clearApprovedCmd()
	case "r":
		return true, m.loadApprovedCmd()
	}
	return false, nil
}

func (m *model) queuePostByID(id string) *post {
	for idx := range m.queuePosts {
		if m.queuePosts[idx].ID == id {
			return &m.queuePosts[idx]
		}
	}
	return nil
}

func (m *model) renderQueuePreview(id string) string {
	p := m.queuePostByID(id)
	if p == nil {
		return "Select a post to preview it."
	}
	var b strings.Builder
	b.WriteString(renderMarkdown(p.Commentary))
	if len(p.Hashtags) > 0 {
		b.WriteString("\n" + strings.Join(p.Hashtags, " ") + "\n")
	}
	b.WriteString(fmt.Sprintf("\nStatus: %s", p.Status))
	if p.LinkedInPostID != "" {
		b.WriteString(fmt.Sprintf("\nLinkedIn post: %s", p.LinkedInPostID))
	}
	if p.Error != "" {
		b.WriteString("\nError: " + p.Error)
	}
	if !p.CreatedAt.IsZero() {
		b.WriteString("\nCreated: " + p.CreatedAt.Local().Format(time.RFC822))
	}
	return b.String()
}

// renderQueueStatus is the header line above the queue column.
func (m *model) renderQueueStatus() string {
	if m.queueUnauthorized {
		return m.styles.warning.Render("Not signed in — open " + m.api.LoginURL() + " in your browser, then press t to paste the callback URL.")
	}
	var parts []string
	parts = append(parts, fmt.Sprintf("%d approved", len(m.queuePosts)))
	if selected := len(m.selectedQueueIDs()); selected > 0 {
		parts = append(parts, fmt.Sprintf("%d selected", selected))
	}
	if m.queueLoading {
		parts = append(parts, "loading…")
	}
	if m.queueNotice != "" {
		parts = append(parts, m.queueNotice)
	}
	if m.queueErr != nil {
		return m.styles.banner.Render(m.queueErr.Error())
	}
	return m.styles.statusHint.Render(strings.Join(parts, " • "))
}
