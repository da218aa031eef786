package main

import (
	"context"
	"errors"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type linkedInSettingsLoadedMsg struct {
	settings *linkedInSettings
	err      error
}

type linkedInSettingsSavedMsg struct {
	settings *linkedInSettings
	err      error
}

const (
	settingsFieldClientID = iota
	settingsFieldClientSecret
	settingsFieldRedirectURI
	settingsFieldCount
)

func (m *model) enterSettings() tea.Cmd {
	m.settingsErr = nil
	m.settingsNotice = ""
	m.settingsField = settingsFieldClientID
	return m.loadLinkedInSettingsCmd()
}

func (m *model) loadLinkedInSettingsCmd() tea.Cmd {
	client := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), defaultRequestTimeout)
		defer cancel()
		settings, err := client.LinkedInSettings(ctx)
		return linkedInSettingsLoadedMsg{settings: settings, err: err}
	}
}

func (m *model) handleLinkedInSettingsLoaded(msg linkedInSettingsLoadedMsg) {
	if msg.err != nil {
		m.settingsErr = msg.err
		return
	}
	m.settingsErr = nil
	m.settingsLoaded = msg.settings
	m.settingsClientID = msg.settings.ClientID
	m.settingsClientSecret = ""
	m.settingsRedirectURI = msg.settings.RedirectURI
	if m.settingsRedirectURI == "" {
		m.settingsRedirectURI = msg.settings.SuggestedRedirectURI
	}
}

// validateLinkedInSettings mirrors the form's client-side checks: client id
// and redirect URI always required, secret only on first-time setup.
func validateLinkedInSettings(clientID, clientSecret, redirectURI string, hasExistingSecret bool) error {
	if strings.TrimSpace(clientID) == "" {
		return errors.New("client ID is required")
	}
	if strings.TrimSpace(redirectURI) == "" {
		return errors.New("redirect URI is required")
	}
	if !hasExistingSecret && strings.TrimSpace(clientSecret) == "" {
		return errors.New("client secret is required for first-time setup")
	}
	return nil
}

func (m *model) saveLinkedInSettingsCmd() tea.Cmd {
	hasSecret := m.settingsLoaded != nil && m.settingsLoaded.HasSecret
	if err := validateLinkedInSettings(m.settingsClientID, m.settingsClientSecret, m.settingsRedirectURI, hasSecret); err != nil {
		m.settingsNotice = err.Error()
		return nil
	}
	payload := linkedInSettings{
		ClientID:     strings.TrimSpace(m.settingsClientID),
		ClientSecret: strings.TrimSpace(m.settingsClientSecret),
		RedirectURI:  strings.TrimSpace(m.settingsRedirectURI),
	}
	client := m.api
	m.settingsNotice = "Saving…"
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), defaultRequestTimeout)
		defer cancel()
		saved, err := client.SaveLinkedInSettings(ctx, payload)
		return linkedInSettingsSavedMsg{settings: saved, err: err}
	}
}

func (m *model) handleLinkedInSettingsSaved(msg linkedInSettingsSavedMsg) tea.Cmd {
	if msg.err != nil {
		m.settingsErr = msg.err
		m.settingsNotice = ""
		return nil
	}
	m.settingsErr = nil
	m.settingsNotice = "Settings saved"
	if msg.settings != nil && msg.settings.RedirectURICorrect != nil && !*msg.settings.RedirectURICorrect {
		// Mismatch is a warning, not a failure.
		m.settingsNotice = "Saved, but the redirect URI does not match the suggested one"
	}
	m.setToast(m.settingsNotice, 5*time.Second)
	m.emitTelemetry("settings_saved", nil)
	return m.loadLinkedInSettingsCmd()
}

func (m *model) handleSettingsKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.settingsField > 0 {
			m.settingsField--
		}
		return true, nil
	case "down", "j", "tab":
		if m.settingsField < settingsFieldCount-1 {
			m.settingsField++
		}
		return true, nil
	case "e", "enter":
		label, value, mode := m.settingsFieldPrompt()
		m.openInput(label, value, mode)
		return true, nil
	case "S":
		return true, m.saveLinkedInSettingsCmd()
	case "y":
		uri := m.settingsRedirectURI
		if uri == "" && m.settingsLoaded != nil {
			uri = m.settingsLoaded.SuggestedRedirectURI
		}
		if uri != "" {
			m.copyToClipboard(uri, "Redirect URI copied")
		}
		return true, nil
	case "r":
		return true, m.loadLinkedInSettingsCmd()
	}
	return false, nil
}

func (m *model) settingsFieldPrompt() (string, string, inputMode) {
	switch m.settingsField {
	case settingsFieldClientSecret:
		return "LinkedIn client secret", "", inputSettingsClientSecret
	case settingsFieldRedirectURI:
		return "OAuth redirect URI", m.settingsRedirectURI, inputSettingsRedirectURI
	default:
		return "LinkedIn client ID", m.settingsClientID, inputSettingsClientID
	}
}

func (m *model) renderSettings(width int) string {
	var b strings.Builder
	b.WriteString("LinkedIn application\n\n")

	secretValue := "(not set)"
	if m.settingsLoaded != nil && m.settingsLoaded.HasSecret {
		secretValue = "••••••••"
	}
	if m.settingsClientSecret != "" {
		secretValue = "(pending change)"
	}
	fields := []struct {
		label string
		value string
	}{
		{"Client ID", emptyDash(m.settingsClientID)},
		{"Client secret", secretValue},
		{"Redirect URI", emptyDash(m.settingsRedirectURI)},
	}
	for idx, field := range fields {
		cursor := "  "
		if idx == m.settingsField {
			cursor = "> "
		}
		b.WriteString(cursor + m.styles.fieldLabel.Render(field.label+":") + " " + truncateLine(field.value, width-20) + "\n")
	}

	if m.settingsLoaded != nil && m.settingsLoaded.SuggestedRedirectURI != "" {
		b.WriteString("\nSuggested redirect URI:\n  " + m.settingsLoaded.SuggestedRedirectURI + "\n")
		if m.settingsLoaded.RedirectURICorrect != nil && !*m.settingsLoaded.RedirectURICorrect {
			b.WriteString(m.styles.warning.Render("⚠ configured redirect URI differs from the suggested one") + "\n")
		}
	}

	if m.settingsErr != nil {
		b.WriteString("\n" + m.styles.banner.Render(m.settingsErr.Error()) + "\n")
	} else if m.settingsNotice != "" {
		b.WriteString("\n" + m.styles.success.Render(m.settingsNotice) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(m.styles.cmdHint.Render("j/k move • e edit field • S save • y copy redirect URI • r reload"))
	return b.String()
}

func emptyDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "—"
	}
	return value
}
