package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateLinkedInSettings(t *testing.T) {
	tests := []struct {
		name      string
		clientID  string
		secret    string
		redirect  string
		hasSecret bool
		wantErr   string
	}{
		{
			name:     "first-time setup complete",
			clientID: "abc", secret: "s3cret", redirect: "https://app/cb",
		},
		{
			name:     "missing client id",
			secret:   "s3cret",
			redirect: "https://app/cb",
			wantErr:  "client ID is required",
		},
		{
			name:     "missing redirect uri",
			clientID: "abc", secret: "s3cret",
			wantErr: "redirect URI is required",
		},
		{
			name:     "first-time setup without secret",
			clientID: "abc", redirect: "https://app/cb",
			wantErr: "client secret is required for first-time setup",
		},
		{
			name:     "existing secret can stay blank",
			clientID: "abc", redirect: "https://app/cb",
			hasSecret: true,
		},
		{
			name:     "whitespace counts as empty",
			clientID: "  ", secret: "s3cret", redirect: "https://app/cb",
			wantErr: "client ID is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateLinkedInSettings(tt.clientID, tt.secret, tt.redirect, tt.hasSecret)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestHandleLinkedInSettingsLoadedPrefersSuggestedURI(t *testing.T) {
	m := &model{styles: newStyles()}
	m.handleLinkedInSettingsLoaded(linkedInSettingsLoadedMsg{settings: &linkedInSettings{
		ClientID:             "abc",
		HasSecret:            true,
		SuggestedRedirectURI: "https://app/cb",
	}})

	assert.Equal(t, "abc", m.settingsClientID)
	assert.Empty(t, m.settingsClientSecret, "the stored secret is never echoed back")
	assert.Equal(t, "https://app/cb", m.settingsRedirectURI)
}

func TestHandleLinkedInSettingsSavedMismatchWarning(t *testing.T) {
	wrong := false
	m := &model{styles: newStyles()}
	cmd := m.handleLinkedInSettingsSaved(linkedInSettingsSavedMsg{settings: &linkedInSettings{
		ClientID:           "abc",
		RedirectURICorrect: &wrong,
	}})

	assert.Contains(t, m.settingsNotice, "does not match")
	assert.NoError(t, m.settingsErr)
	assert.NotNil(t, cmd, "a reload follows every save")
}
