package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

type agentsLoadedMsg struct {
	agents []agentSummary
	err    error
}

type promptBundleLoadedMsg struct {
	agent  string
	bundle *promptBundle
	err    error
}

type promptSavedMsg struct {
	agent string
	err   error
}

type promptResetMsg struct {
	agent string
	err   error
}

func (m *model) enterPrompts() tea.Cmd {
	m.promptsErr = nil
	return m.loadAgentsCmd()
}

func (m *model) loadAgentsCmd() tea.Cmd {
	client := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), defaultRequestTimeout)
		defer cancel()
		agents, err := client.Agents(ctx)
		return agentsLoadedMsg{agents: agents, err: err}
	}
}

func (m *model) handleAgentsLoaded(msg agentsLoadedMsg) tea.Cmd {
	if msg.err != nil {
		m.promptsErr = msg.err
		return nil
	}
	m.promptsErr = nil
	m.agents = msg.agents
	m.refreshAgentsColumn()
	if len(msg.agents) > 0 {
		return m.loadPromptBundleCmd(msg.agents[0].Name)
	}
	return nil
}

func (m *model) refreshAgentsColumn() {
	if m.agentsCol == nil {
		return
	}
	items := make([]list.Item, 0, len(m.agents))
	for _, agent := range m.agents {
		desc := agent.Description
		if agent.CustomPrompt {
			desc = strings.TrimSpace("custom • " + desc)
		}
		items = append(items, listEntry{title: agent.Name, desc: desc, payload: agent})
	}
	m.agentsCol.SetItems(items)
}

func (m *model) loadPromptBundleCmd(agent string) tea.Cmd {
	client := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), defaultRequestTimeout)
		defer cancel()
		bundle, err := client.PromptBundle(ctx, agent)
		return promptBundleLoadedMsg{agent: agent, bundle: bundle, err: err}
	}
}

func (m *model) handlePromptBundleLoaded(msg promptBundleLoadedMsg) {
	if msg.err != nil {
		m.promptsErr = msg.err
		return
	}
	m.promptsErr = nil
	m.promptAgent = msg.agent
	m.promptBundle = msg.bundle
	m.promptSystemDraft = msg.bundle.SystemPrompt
	m.promptUserDraft = msg.bundle.UserPromptTemplate
}

// promptDirty reports whether the drafts differ from the loaded bundle.
// Save stays unavailable while clean.
func (m *model) promptDirty() bool {
	if m.promptBundle == nil {
		return false
	}
	return m.promptSystemDraft != m.promptBundle.SystemPrompt ||
		m.promptUserDraft != m.promptBundle.UserPromptTemplate
}

func (m *model) savePromptCmd() tea.Cmd {
	if m.promptBundle == nil || !m.promptDirty() {
		return nil
	}
	agent := m.promptAgent
	update := promptUpdate{
		SystemPrompt:       m.promptSystemDraft,
		UserPromptTemplate: m.promptUserDraft,
	}
	client := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), defaultRequestTimeout)
		defer cancel()
		return promptSavedMsg{agent: agent, err: client.SavePrompt(ctx, agent, update)}
	}
}

func (m *model) handlePromptSaved(msg promptSavedMsg) tea.Cmd {
	if msg.err != nil {
		m.promptsErr = msg.err
		return nil
	}
	m.setToast(fmt.Sprintf("Saved prompts for %s", msg.agent), 4*time.Second)
	m.emitTelemetry("prompt_saved", map[string]string{"agent": msg.agent})
	return m.loadPromptBundleCmd(msg.agent)
}

func (m *model) resetPromptCmd() tea.Cmd {
	if m.promptAgent == "" {
		return nil
	}
	agent := m.promptAgent
	client := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), defaultRequestTimeout)
		defer cancel()
		return promptResetMsg{agent: agent, err: client.ResetPrompt(ctx, agent)}
	}
}

func (m *model) handlePromptReset(msg promptResetMsg) tea.Cmd {
	if msg.err != nil {
		m.promptsErr = msg.err
		return nil
	}
	m.setToast(fmt.Sprintf("Restored defaults for %s", msg.agent), 4*time.Second)
	return m.loadPromptBundleCmd(msg.agent)
}

func (m *model) handlePromptsKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.String() {
	case "s":
		m.openTextarea("System prompt for "+m.promptAgent, m.promptSystemDraft, inputPromptSystem)
		return true, nil
	case "u":
		m.openTextarea("User prompt template for "+m.promptAgent, m.promptUserDraft, inputPromptUser)
		return true, nil
	case "S":
		if !m.promptDirty() {
			m.setToast("Nothing to save", 3*time.Second)
			return true, nil
		}
		return true, m.savePromptCmd()
	case "R":
		if m.promptAgent == "" {
			return true, nil
		}
		m.openInput(fmt.Sprintf("Type %q to restore defaults", m.promptAgent), "", inputPromptResetConfirm)
		return true, nil
	case "r":
		return true, m.loadAgentsCmd()
	}
	return false, nil
}

func (m *model) renderPromptPreview() string {
	if m.promptsErr != nil {
		return m.styles.banner.Render(m.promptsErr.Error())
	}
	bundle := m.promptBundle
	if bundle == nil {
		return "Select an agent to edit its prompts."
	}
	var b strings.Builder
	b.WriteString(m.styles.fieldLabel.Render(bundle.Agent))
	if bundle.Description != "" {
		b.WriteString(" — " + bundle.Description)
	}
	b.WriteString("\n")
	state := "defaults"
	if bundle.CustomPrompt {
		state = "custom override"
	}
	if m.promptDirty() {
		state += " • unsaved changes"
	}
	b.WriteString(m.styles.statusHint.Render(state) + "\n\n")

	b.WriteString(m.styles.fieldLabel.Render("System prompt") + "\n")
	b.WriteString(previewPromptText(m.promptSystemDraft, bundle.DefaultSystemPrompt) + "\n\n")
	b.WriteString(m.styles.fieldLabel.Render("User prompt template") + "\n")
	b.WriteString(previewPromptText(m.promptUserDraft, bundle.DefaultUserPromptTemplate) + "\n\n")

	save := "S save"
	if !m.promptDirty() {
		save = "S save (no changes)"
	}
	b.WriteString(m.styles.cmdHint.Render("s edit system • u edit user • " + save + " • R restore defaults"))
	return b.String()
}

func previewPromptText(value, fallback string) string {
	text := value
	if strings.TrimSpace(text) == "" {
		text = fallback
		if strings.TrimSpace(text) == "" {
			return "(empty)"
		}
		text += "\n(default)"
	}
	lines := strings.Split(text, "\n")
	if len(lines) > 12 {
		lines = append(lines[:12], fmt.Sprintf("…%d more lines", len(lines)-12))
	}
	return strings.Join(lines, "\n")
}
