package main

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wizardSource(id string) inspirationSource {
	return inspirationSource{Type: "news", ID: id, Title: "Source " + id}
}

func TestToggleInspirationCapsAtThree(t *testing.T) {
	w := newWizardState()

	require.NoError(t, w.toggleInspiration(wizardSource("a")))
	require.NoError(t, w.toggleInspiration(wizardSource("b")))
	require.NoError(t, w.toggleInspiration(wizardSource("c")))
	require.Len(t, w.Inspirations, 3)

	err := w.toggleInspiration(wizardSource("d"))
	assert.ErrorIs(t, err, errTooManyInspirations)
	assert.Len(t, w.Inspirations, 3, "rejected selection must leave the set unchanged")
	assert.False(t, w.hasInspiration(wizardSource("d")))

	// Toggling an existing pick still works at the cap.
	require.NoError(t, w.toggleInspiration(wizardSource("b")))
	assert.Len(t, w.Inspirations, 2)
	require.NoError(t, w.toggleInspiration(wizardSource("d")))
	assert.True(t, w.hasInspiration(wizardSource("d")))
}

func TestWizardGoToNeverSkipsAhead(t *testing.T) {
	w := newWizardState()
	require.NoError(t, w.toggleInspiration(wizardSource("a")))
	require.NoError(t, w.next())
	require.NoError(t, w.next())
	require.Equal(t, stepFormat, w.Step)

	assert.False(t, w.goTo(stepReview), "jumping past the current step must be refused")
	assert.Equal(t, stepFormat, w.Step)

	assert.True(t, w.goTo(stepBrand))
	assert.Equal(t, stepBrand, w.Step)

	// A previously visited step stays reachable after going back.
	assert.True(t, w.goTo(stepFormat))
	assert.Equal(t, stepFormat, w.Step)

	assert.False(t, w.goTo(0))
	assert.Equal(t, stepFormat, w.Step)
}

func TestWizardStepGates(t *testing.T) {
	w := newWizardState()
	require.NoError(t, w.next())
	require.Equal(t, stepInspiration, w.Step)

	err := w.next()
	assert.ErrorIs(t, err, errNoInspirations)
	assert.Equal(t, stepInspiration, w.Step)

	require.NoError(t, w.toggleInspiration(wizardSource("a")))
	require.NoError(t, w.next())
	require.NoError(t, w.next())
	require.Equal(t, stepAudience, w.Step)

	w.setPersonaEnabled(true)
	w.Persona.Title = "   "
	err = w.next()
	assert.ErrorIs(t, err, errPersonaTitle)

	w.setPersonaEnabled(false)
	require.NoError(t, w.next())
	assert.Equal(t, stepReview, w.Step)
}

func TestSetPersonaEnabled(t *testing.T) {
	w := newWizardState()

	w.setPersonaEnabled(true)
	require.NotNil(t, w.Persona)
	assert.Equal(t, "Head of Marketing", w.Persona.Title)

	w.Persona.Sector = "fintech"
	w.setPersonaEnabled(false)
	assert.Nil(t, w.Persona)

	// Re-enabling starts from defaults again.
	w.setPersonaEnabled(true)
	assert.Empty(t, w.Persona.Sector)
}

func TestBuildGenerateRequest(t *testing.T) {
	w := newWizardState()
	w.Brand = brandSettings{Tone: 80, Pithiness: 20, Jargon: 10, Notes: "dry humor"}
	require.NoError(t, w.toggleInspiration(wizardSource("a")))
	w.toggleStyleFlag("cta")
	w.toggleStyleFlag("hashtags") // default on, toggled off
	w.Length = lengthLong
	w.setPersonaEnabled(true)
	w.Persona.Title = "CTO"

	req := w.buildGenerateRequest()
	assert.Equal(t, 80, req.Brand.Tone)
	assert.Equal(t, lengthLong, req.Length)
	assert.Equal(t, []string{"cta"}, req.StyleFlags)
	require.Len(t, req.Inspirations, 1)
	require.NotNil(t, req.Persona)
	assert.Equal(t, "CTO", req.Persona.Title)

	// The request carries a copy, not the live persona.
	req.Persona.Title = "changed"
	assert.Equal(t, "CTO", w.Persona.Title)
}

func TestClampSlider(t *testing.T) {
	assert.Equal(t, 0, clampSlider(-5))
	assert.Equal(t, 100, clampSlider(140))
	assert.Equal(t, 55, clampSlider(55))
}

func TestMaybeStartGenerateFiresOnce(t *testing.T) {
	m := &model{styles: newStyles(), wizard: newWizardState()}
	m.wizard.Step = stepReview

	cmd := m.maybeStartGenerate()
	require.NotNil(t, cmd)
	assert.True(t, m.wizard.Generating)

	assert.Nil(t, m.maybeStartGenerate(), "no second request while one is in flight")

	m.wizard.Generating = false
	m.wizard.Generated = &generatedPost{Content: "done"}
	assert.Nil(t, m.maybeStartGenerate(), "a finished draft suppresses regeneration")
}

func TestMaybeStartGenerateOnlyOnReview(t *testing.T) {
	m := &model{styles: newStyles(), wizard: newWizardState()}
	m.wizard.Step = stepFormat
	assert.Nil(t, m.maybeStartGenerate())

	m.wizard = nil
	assert.Nil(t, m.maybeStartGenerate())
}

func TestHandleBrandDefaultsKeepsFallback(t *testing.T) {
	m := &model{styles: newStyles(), wizard: newWizardState()}
	m.wizard.Brand.Notes = "keep the dry humor"

	m.handleBrandDefaults(brandDefaultsMsg{err: errors.New("backend down")})
	want := defaultBrandSettings()
	want.Notes = "keep the dry humor"
	assert.Equal(t, want, m.wizard.Brand, "an error keeps the built-in defaults")

	m.handleBrandDefaults(brandDefaultsMsg{})
	assert.Equal(t, want, m.wizard.Brand, "an empty payload keeps the built-in defaults")
}

func TestHandleBrandDefaultsClampsAndKeepsNotes(t *testing.T) {
	m := &model{styles: newStyles(), wizard: newWizardState()}
	m.wizard.Brand.Notes = "keep me"

	m.handleBrandDefaults(brandDefaultsMsg{brand: &brandSettings{Tone: 70, Pithiness: 20, Jargon: 140}})

	assert.Equal(t, 70, m.wizard.Brand.Tone)
	assert.Equal(t, 20, m.wizard.Brand.Pithiness)
	assert.Equal(t, 100, m.wizard.Brand.Jargon)
	assert.Equal(t, "keep me", m.wizard.Brand.Notes)
}

func TestAutoSaveChainSurvivesApproveFailure(t *testing.T) {
	refreshed := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/posts":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":"p1"}`))
		case "/api/posts/p1/approve":
			http.Error(w, "boom", http.StatusInternalServerError)
		case "/api/showcase/refresh":
			refreshed = true
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	m := &model{
		styles:  newStyles(),
		actions: newActionRunner(),
		api:     newAPIClient(server.URL, nil),
	}

	cmd := m.enqueueAutoSave(&generatedPost{Content: "hello", Hashtags: []string{"#go"}})
	require.NotNil(t, cmd)

	var lines []string
	var finished *actionFinishedMsg
	for cmd != nil {
		raw := cmd()
		msg, ok := raw.(actionMsg)
		require.True(t, ok, "unexpected message %T", raw)
		switch msg := msg.(type) {
		case actionLogMsg:
			lines = append(lines, msg.Line)
		case actionFinishedMsg:
			done := msg
			finished = &done
		}
		cmd = m.actions.Handle(msg)
	}

	require.NotNil(t, finished)
	assert.NoError(t, finished.Err, "the chain is best-effort end to end")
	assert.True(t, refreshed, "a failed approve must not stop the showcase refresh")

	joined := strings.Join(lines, "\n")
	assert.Contains(t, joined, "saved post p1")
	assert.Contains(t, joined, "auto-approve failed")
	assert.Contains(t, joined, "showcase refreshed")
}
