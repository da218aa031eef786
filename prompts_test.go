package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func promptsTestModel() *model {
	m := &model{styles: newStyles()}
	m.handlePromptBundleLoaded(promptBundleLoadedMsg{
		agent: "copywriter",
		bundle: &promptBundle{
			Agent:              "copywriter",
			SystemPrompt:       "You write LinkedIn posts.",
			UserPromptTemplate: "Write about {{topic}}.",
		},
	})
	return m
}

func TestPromptDirty(t *testing.T) {
	m := &model{}
	assert.False(t, m.promptDirty(), "no bundle loaded means nothing to save")

	m = promptsTestModel()
	assert.False(t, m.promptDirty(), "freshly loaded drafts are clean")

	m.promptSystemDraft = "You write punchy LinkedIn posts."
	assert.True(t, m.promptDirty())

	m.promptSystemDraft = "You write LinkedIn posts."
	assert.False(t, m.promptDirty(), "reverting the draft clears the dirty state")

	m.promptUserDraft = "Write about {{topic}} in depth."
	assert.True(t, m.promptDirty())
}

func TestSavePromptCmdSkipsCleanDrafts(t *testing.T) {
	m := promptsTestModel()
	assert.Nil(t, m.savePromptCmd(), "save is a no-op while the drafts are clean")

	m.promptUserDraft = "changed"
	assert.NotNil(t, m.savePromptCmd())
}

func TestHandlePromptBundleLoadedError(t *testing.T) {
	m := promptsTestModel()
	m.handlePromptBundleLoaded(promptBundleLoadedMsg{agent: "x", err: &apiError{Status: 500}})
	assert.Error(t, m.promptsErr)
	assert.Equal(t, "copywriter", m.promptAgent, "a failed load keeps the current bundle")
}

func TestPreviewPromptText(t *testing.T) {
	assert.Equal(t, "(empty)", previewPromptText("", ""))
	assert.Contains(t, previewPromptText("", "fallback"), "(default)")
	assert.Equal(t, "custom", previewPromptText("custom", "fallback"))
}
