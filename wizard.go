package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	stepBrand = 1 + iota
	stepInspiration
	stepFormat
	stepAudience
	stepReview

	wizardLastStep = stepReview
)

const maxInspirations = 3

const (
	lengthShort  = "short"
	lengthMedium = "medium"
	lengthLong   = "long"
)

var lengthOptions = []string{lengthShort, lengthMedium, lengthLong}

var styleFlagOptions = []string{"emoji", "hashtags", "cta", "question", "story"}

var (
	errTooManyInspirations = errors.New("you can pick at most 3 inspiration sources")
	errNoInspirations      = errors.New("pick at least one inspiration source to continue")
	errPersonaTitle        = errors.New("persona needs a title, or switch the persona off")
)

func defaultBrandSettings() brandSettings {
	return brandSettings{Tone: 50, Pithiness: 50, Jargon: 30}
}

func defaultPersona() *buyerPersona {
	return &buyerPersona{
		Title:         "Head of Marketing",
		CompanySize:   "51-200",
		RiskTolerance: "moderate",
	}
}

// wizardState is the cumulative draft for the five-step compose flow. It
// lives in memory only; leaving the wizard discards it.
type wizardState struct {
	Step           int
	Brand          brandSettings
	Inspirations   []inspirationSource
	Length         string
	StyleFlags     map[string]bool
	PersonaEnabled bool
	Persona        *buyerPersona

	Generated  *generatedPost
	Generating bool
}

func newWizardState() *wizardState {
	return &wizardState{
		Step:       stepBrand,
		Brand:      defaultBrandSettings(),
		Length:     lengthMedium,
		StyleFlags: map[string]bool{"hashtags": true},
	}
}

// gate returns the reason the current step cannot be left, or nil.
func (w *wizardState) gate() error {
	switch w.Step {
	case stepInspiration:
		if len(w.Inspirations) == 0 {
			return errNoInspirations
		}
	case stepAudience:
		if w.PersonaEnabled && (w.Persona == nil || strings.TrimSpace(w.Persona.Title) == "") {
			return errPersonaTitle
		}
	}
	return nil
}

func (w *wizardState) next() error {
	if w.Step >= wizardLastStep {
		return nil
	}
	if err := w.gate(); err != nil {
		return err
	}
	w.Step++
	return nil
}

func (w *wizardState) back() {
	if w.Step > stepBrand {
		w.Step--
	}
}

// goTo jumps to an already-visited step; skipping ahead is a no-op.
func (w *wizardState) goTo(step int) bool {
	if step < stepBrand || step > w.Step {
		return false
	}
	w.Step = step
	return true
}

func (w *wizardState) hasInspiration(src inspirationSource) bool {
	for _, picked := range w.Inspirations {
		if picked.Type == src.Type && picked.ID == src.ID {
			return true
		}
	}
	return false
}

// toggleInspiration adds or removes a selection. Adding a fourth leaves the
// set unchanged and reports errTooManyInspirations.
func (w *wizardState) toggleInspiration(src inspirationSource) error {
	for idx, picked := range w.Inspirations {
		if picked.Type == src.Type && picked.ID == src.ID {
			w.Inspirations = append(w.Inspirations[:idx], w.Inspirations[idx+1:]...)
			return nil
		}
	}
	if len(w.Inspirations) >= maxInspirations {
		return errTooManyInspirations
	}
	w.Inspirations = append(w.Inspirations, src)
	return nil
}

func (w *wizardState) setPersonaEnabled(enabled bool) {
	w.PersonaEnabled = enabled
	if enabled {
		if w.Persona == nil {
			w.Persona = defaultPersona()
		}
		return
	}
	w.Persona = nil
}

func (w *wizardState) toggleStyleFlag(flag string) {
	if w.StyleFlags == nil {
		w.StyleFlags = make(map[string]bool)
	}
	w.StyleFlags[flag] = !w.StyleFlags[flag]
}

func (w *wizardState) buildGenerateRequest() generateRequest {
	req := generateRequest{
		Brand:        w.Brand,
		Inspirations: append([]inspirationSource(nil), w.Inspirations...),
		Length:       w.Length,
	}
	for _, flag := range styleFlagOptions {
		if w.StyleFlags[flag] {
			req.StyleFlags = append(req.StyleFlags, flag)
		}
	}
	if w.PersonaEnabled && w.Persona != nil {
		persona := *w.Persona
		req.Persona = &persona
	}
	return req
}

func clampSlider(value int) int {
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}

// --- model integration -----------------------------------------------------

type brandDefaultsMsg struct {
	brand *brandSettings
	err   error
}

type inspirationSourcesMsg struct {
	sources []inspirationSource
	err     error
}

type wizardGeneratedMsg struct {
	post *generatedPost
	err  error
}

// wizard slider focus order on the brand step.
const (
	brandFieldTone = iota
	brandFieldPithiness
	brandFieldJargon
	brandFieldNotes
	brandFieldCount
)

// persona field focus order on the audience step.
const (
	personaFieldTitle = iota
	personaFieldCompanySize
	personaFieldSector
	personaFieldRegion
	personaFieldGoals
	personaFieldRiskTolerance
	personaFieldCriteria
	personaFieldPersonality
	personaFieldToneResonance
	personaFieldCount
)

func (m *model) enterWizard() tea.Cmd {
	m.wizard = newWizardState()
	m.wizardWarning = ""
	m.wizardGenerateErr = nil
	m.wizardSources = nil
	m.wizardSourcesErr = nil
	m.wizardCursor = 0
	m.wizardField = brandFieldTone
	m.emitTelemetry("wizard_opened", nil)
	return tea.Batch(m.loadBrandDefaultsCmd(), m.loadInspirationSourcesCmd())
}

func (m *model) loadBrandDefaultsCmd() tea.Cmd {
	client := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), defaultRequestTimeout)
		defer cancel()
		brand, err := client.BrandDefaults(ctx)
		return brandDefaultsMsg{brand: brand, err: err}
	}
}

func (m *model) loadInspirationSourcesCmd() tea.Cmd {
	client := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), defaultRequestTimeout)
		defer cancel()
		sources, err := client.InspirationSources(ctx)
		return inspirationSourcesMsg{sources: sources, err: err}
	}
}

func (m *model) handleBrandDefaults(msg brandDefaultsMsg) {
	// Failure keeps the hardcoded defaults; the wizard stays usable.
	if msg.err != nil || msg.brand == nil || m.wizard == nil {
		return
	}
	notes := m.wizard.Brand.Notes
	m.wizard.Brand = brandSettings{
		Tone:      clampSlider(msg.brand.Tone),
		Pithiness: clampSlider(msg.brand.Pithiness),
		Jargon:    clampSlider(msg.brand.Jargon),
		Notes:     notes,
	}
}

func (m *model) handleInspirationSources(msg inspirationSourcesMsg) {
	m.wizardSources = msg.sources
	m.wizardSourcesErr = msg.err
	if m.wizardCursor >= len(m.wizardSources) {
		m.wizardCursor = 0
	}
}

// maybeStartGenerate fires the generation request exactly once per arrival
// on the review step.
func (m *model) maybeStartGenerate() tea.Cmd {
	w := m.wizard
	if w == nil || w.Step != stepReview || w.Generated != nil || w.Generating {
		return nil
	}
	w.Generating = true
	m.wizardGenerateErr = nil
	m.appendLog("[wizard] generating post…")
	req := w.buildGenerateRequest()
	client := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*defaultRequestTimeout)
		defer cancel()
		post, err := client.GeneratePost(ctx, req)
		return wizardGeneratedMsg{post: post, err: err}
	}
}

func (m *model) handleWizardGenerated(msg wizardGeneratedMsg) tea.Cmd {
	if m.wizard == nil {
		return nil
	}
	m.wizard.Generating = false
	if msg.err != nil {
		m.wizardGenerateErr = msg.err
		m.appendLog(fmt.Sprintf("[wizard] generation failed: %v", msg.err))
		return nil
	}
	m.wizard.Generated = msg.post
	m.appendLog("[wizard] post generated")
	m.emitTelemetry("wizard_generated", nil)
	return m.enqueueAutoSave(msg.post)
}

// enqueueAutoSave runs the best-effort save → approve → showcase-refresh
// chain. Every step is non-fatal; failures only reach the logs pane.
func (m *model) enqueueAutoSave(generated *generatedPost) tea.Cmd {
	if generated == nil {
		return nil
	}
	client := m.api
	req := createPostRequest{
		Commentary: generated.Content,
		Hashtags:   generated.Hashtags,
		ImageURL:   generated.ImageURL,
		Source:     "wizard",
	}
	return m.actions.Enqueue(actionRequest{
		title: "Auto-save generated post",
		run: func(ctx context.Context, log func(string)) error {
			created, err := client.CreatePost(ctx, req)
			if err != nil {
				log(fmt.Sprintf("auto-save failed: %v", err))
				return nil
			}
			log(fmt.Sprintf("saved post %s", created.ID))
			if err := client.ApprovePost(ctx, created.ID); err != nil {
				log(fmt.Sprintf("auto-approve failed: %v", err))
			} else {
				log(fmt.Sprintf("approved post %s", created.ID))
			}
			if err := client.RefreshShowcase(ctx); err != nil {
				log(fmt.Sprintf("showcase refresh failed: %v", err))
			} else {
				log("showcase refreshed")
			}
			return nil
		},
	})
}

func (m *model) handleWizardKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	w := m.wizard
	if w == nil {
		return false, nil
	}
	key := msg.String()

	switch key {
	case "n", "right", "enter":
		if w.Step == stepReview {
			return false, nil
		}
		m.wizardWarning = ""
		if err := w.next(); err != nil {
			m.wizardWarning = err.Error()
			return true, nil
		}
		return true, m.maybeStartGenerate()
	case "b", "left":
		m.wizardWarning = ""
		w.back()
		return true, nil
	case "1", "2", "3", "4", "5":
		target := int(key[0] - '0')
		if w.goTo(target) {
			m.wizardWarning = ""
		}
		return true, nil
	}

	switch w.Step {
	case stepBrand:
		return m.handleWizardBrandKey(key)
	case stepInspiration:
		return m.handleWizardInspirationKey(key)
	case stepFormat:
		return m.handleWizardFormatKey(key)
	case stepAudience:
		return m.handleWizardAudienceKey(key)
	case stepReview:
		return m.handleWizardReviewKey(key)
	}
	return false, nil
}

func (m *model) handleWizardBrandKey(key string) (bool, tea.Cmd) {
	w := m.wizard
	switch key {
	case "up", "k":
		if m.wizardField > 0 {
			m.wizardField--
		}
		return true, nil
	case "down", "j", "tab":
		if m.wizardField < brandFieldCount-1 {
			m.wizardField++
		}
		return true, nil
	case "-", "h":
		m.adjustBrandSlider(-5)
		return true, nil
	case "=", "+", "l":
		m.adjustBrandSlider(5)
		return true, nil
	case "e":
		if m.wizardField == brandFieldNotes {
			m.openTextarea("Brand notes", w.Brand.Notes, inputWizardNotes)
			return true, nil
		}
	}
	return false, nil
}

func (m *model) adjustBrandSlider(delta int) {
	w := m.wizard
	switch m.wizardField {
	case brandFieldTone:
		w.Brand.Tone = clampSlider(w.Brand.Tone + delta)
	case brandFieldPithiness:
		w.Brand.Pithiness = clampSlider(w.Brand.Pithiness + delta)
	case brandFieldJargon:
		w.Brand.Jargon = clampSlider(w.Brand.Jargon + delta)
	}
}

func (m *model) handleWizardInspirationKey(key string) (bool, tea.Cmd) {
	w := m.wizard
	switch key {
	case "up", "k":
		if m.wizardCursor > 0 {
			m.wizardCursor--
		}
		return true, nil
	case "down", "j":
		if m.wizardCursor < len(m.wizardSources)-1 {
			m.wizardCursor++
		}
		return true, nil
	case " ", "space":
		if m.wizardCursor < 0 || m.wizardCursor >= len(m.wizardSources) {
			return true, nil
		}
		m.wizardWarning = ""
		if err := w.toggleInspiration(m.wizardSources[m.wizardCursor]); err != nil {
			m.wizardWarning = err.Error()
		}
		return true, nil
	case "r":
		return true, m.loadInspirationSourcesCmd()
	}
	return false, nil
}

func (m *model) handleWizardFormatKey(key string) (bool, tea.Cmd) {
	w := m.wizard
	switch key {
	case "up", "k":
		if m.wizardCursor > 0 {
			m.wizardCursor--
		}
		return true, nil
	case "down", "j":
		if m.wizardCursor < len(styleFlagOptions)-1 {
			m.wizardCursor++
		}
		return true, nil
	case " ", "space":
		if m.wizardCursor >= 0 && m.wizardCursor < len(styleFlagOptions) {
			w.toggleStyleFlag(styleFlagOptions[m.wizardCursor])
		}
		return true, nil
	case "L":
		w.Length = nextLength(w.Length)
		return true, nil
	}
	return false, nil
}

func nextLength(current string) string {
	for idx, option := range lengthOptions {
		if option == current {
			return lengthOptions[(idx+1)%len(lengthOptions)]
		}
	}
	return lengthOptions[0]
}

func (m *model) handleWizardAudienceKey(key string) (bool, tea.Cmd) {
	w := m.wizard
	switch key {
	case "p", " ", "space":
		w.setPersonaEnabled(!w.PersonaEnabled)
		m.wizardWarning = ""
		m.wizardField = personaFieldTitle
		return true, nil
	case "up", "k":
		if m.wizardField > 0 {
			m.wizardField--
		}
		return true, nil
	case "down", "j", "tab":
		if w.PersonaEnabled && m.wizardField < personaFieldCount-1 {
			m.wizardField++
		}
		return true, nil
	case "e":
		if !w.PersonaEnabled || w.Persona == nil {
			return true, nil
		}
		label, value := personaFieldValue(w.Persona, m.wizardField)
		m.openInput("Persona "+label, value, inputWizardPersonaField)
		return true, nil
	}
	return false, nil
}

func personaFieldLabel(field int) string {
	switch field {
	case personaFieldTitle:
		return "title"
	case personaFieldCompanySize:
		return "company size"
	case personaFieldSector:
		return "sector"
	case personaFieldRegion:
		return "region"
	case personaFieldGoals:
		return "goals (comma separated)"
	case personaFieldRiskTolerance:
		return "risk tolerance"
	case personaFieldCriteria:
		return "decision criteria (comma separated)"
	case personaFieldPersonality:
		return "personality"
	case personaFieldToneResonance:
		return "tone resonance"
	}
	return ""
}

func personaFieldValue(p *buyerPersona, field int) (string, string) {
	label := personaFieldLabel(field)
	switch field {
	case personaFieldTitle:
		return label, p.Title
	case personaFieldCompanySize:
		return label, p.CompanySize
	case personaFieldSector:
		return label, p.Sector
	case personaFieldRegion:
		return label, p.Region
	case personaFieldGoals:
		return label, strings.Join(p.Goals, ", ")
	case personaFieldRiskTolerance:
		return label, p.RiskTolerance
	case personaFieldCriteria:
		return label, strings.Join(p.DecisionCriteria, ", ")
	case personaFieldPersonality:
		return label, p.Personality
	case personaFieldToneResonance:
		return label, p.ToneResonance
	}
	return label, ""
}

func setPersonaFieldValue(p *buyerPersona, field int, value string) {
	value = strings.TrimSpace(value)
	switch field {
	case personaFieldTitle:
		p.Title = value
	case personaFieldCompanySize:
		p.CompanySize = value
	case personaFieldSector:
		p.Sector = value
	case personaFieldRegion:
		p.Region = value
	case personaFieldGoals:
		p.Goals = splitCommaList(value)
	case personaFieldRiskTolerance:
		p.RiskTolerance = value
	case personaFieldCriteria:
		p.DecisionCriteria = splitCommaList(value)
	case personaFieldPersonality:
		p.Personality = value
	case personaFieldToneResonance:
		p.ToneResonance = value
	}
}

func splitCommaList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func (m *model) handleWizardReviewKey(key string) (bool, tea.Cmd) {
	w := m.wizard
	switch key {
	case "g":
		// manual retry after a failed generation
		w.Generated = nil
		return true, m.maybeStartGenerate()
	case "y":
		if w.Generated != nil {
			m.copyToClipboard(w.Generated.Content, "Post copied")
		}
		return true, nil
	}
	return false, nil
}

// --- rendering -------------------------------------------------------------

func renderSlider(label string, value, width int, active bool) string {
	if width < 10 {
		width = 10
	}
	filled := value * width / 100
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	marker := "  "
	if active {
		marker = "> "
	}
	return fmt.Sprintf("%s%-10s %s %3d", marker, label, bar, value)
}

func (m *model) renderWizard(width int) string {
	w := m.wizard
	if w == nil {
		return ""
	}
	var b strings.Builder

	b.WriteString(renderWizardSteps(w.Step))
	b.WriteString("\n\n")

	switch w.Step {
	case stepBrand:
		b.WriteString(m.renderWizardBrand(width))
	case stepInspiration:
		b.WriteString(m.renderWizardInspirations(width))
	case stepFormat:
		b.WriteString(m.renderWizardFormat())
	case stepAudience:
		b.WriteString(m.renderWizardAudience())
	case stepReview:
		b.WriteString(m.renderWizardReview(width))
	}

	if m.wizardWarning != "" {
		b.WriteString("\n")
		b.WriteString(m.styles.warning.Render("⚠ " + m.wizardWarning))
		b.WriteString("\n")
	}
	return b.String()
}

func renderWizardSteps(current int) string {
	labels := []string{"Brand", "Inspiration", "Format", "Audience", "Review"}
	parts := make([]string, 0, len(labels))
	for idx, label := range labels {
		step := idx + 1
		switch {
		case step == current:
			parts = append(parts, fmt.Sprintf("[%d %s]", step, label))
		case step < current:
			parts = append(parts, fmt.Sprintf(" %d %s ", step, label))
		default:
			parts = append(parts, fmt.Sprintf(" %d ····", step))
		}
	}
	return strings.Join(parts, " → ")
}

func (m *model) renderWizardBrand(width int) string {
	w := m.wizard
	barWidth := width - 24
	if barWidth > 40 {
		barWidth = 40
	}
	var b strings.Builder
	b.WriteString("Brand voice\n\n")
	b.WriteString(renderSlider("Tone", w.Brand.Tone, barWidth, m.wizardField == brandFieldTone) + "\n")
	b.WriteString(renderSlider("Pithiness", w.Brand.Pithiness, barWidth, m.wizardField == brandFieldPithiness) + "\n")
	b.WriteString(renderSlider("Jargon", w.Brand.Jargon, barWidth, m.wizardField == brandFieldJargon) + "\n\n")
	marker := "  "
	if m.wizardField == brandFieldNotes {
		marker = "> "
	}
	notes := strings.TrimSpace(w.Brand.Notes)
	if notes == "" {
		notes = "(none — press e to edit)"
	}
	b.WriteString(marker + "Notes: " + truncateLine(notes, width-12) + "\n\n")
	b.WriteString(m.styles.cmdHint.Render("h/l adjust • j/k move • e edit notes • n continue"))
	return b.String()
}

func (m *model) renderWizardInspirations(width int) string {
	w := m.wizard
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Inspiration sources (%d/%d selected)\n\n", len(w.Inspirations), maxInspirations))
	if m.wizardSourcesErr != nil {
		b.WriteString(m.styles.banner.Render("Failed to load sources: "+m.wizardSourcesErr.Error()) + "\n")
		b.WriteString(m.styles.cmdHint.Render("r retry") + "\n")
		return b.String()
	}
	if len(m.wizardSources) == 0 {
		b.WriteString("Loading sources…\n")
		return b.String()
	}
	for idx, src := range m.wizardSources {
		marker := "[ ]"
		if w.hasInspiration(src) {
			marker = "[x]"
		}
		cursor := "  "
		if idx == m.wizardCursor {
			cursor = "> "
		}
		line := fmt.Sprintf("%s%s %s • %s", cursor, marker, src.Type, src.Title)
		b.WriteString(truncateLine(line, width-2) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(m.styles.cmdHint.Render("space toggle • j/k move • n continue • b back"))
	return b.String()
}

func (m *model) renderWizardFormat() string {
	w := m.wizard
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Length: %s (press L to cycle)\n\nStyle flags\n", w.Length))
	for idx, flag := range styleFlagOptions {
		marker := "[ ]"
		if w.StyleFlags[flag] {
			marker = "[x]"
		}
		cursor := "  "
		if idx == m.wizardCursor {
			cursor = "> "
		}
		b.WriteString(fmt.Sprintf("%s%s %s\n", cursor, marker, flag))
	}
	b.WriteString("\n")
	b.WriteString(m.styles.cmdHint.Render("space toggle • L length • n continue • b back"))
	return b.String()
}

func (m *model) renderWizardAudience() string {
	w := m.wizard
	var b strings.Builder
	toggle := "off"
	if w.PersonaEnabled {
		toggle = "on"
	}
	b.WriteString(fmt.Sprintf("Target a buyer persona: %s (press p to toggle)\n\n", toggle))
	if !w.PersonaEnabled || w.Persona == nil {
		b.WriteString("No persona — the post targets a general audience.\n\n")
		b.WriteString(m.styles.cmdHint.Render("p toggle persona • n continue • b back"))
		return b.String()
	}
	for field := personaFieldTitle; field < personaFieldCount; field++ {
		label, value := personaFieldValue(w.Persona, field)
		if strings.TrimSpace(value) == "" {
			value = "—"
		}
		cursor := "  "
		if m.wizardField == field {
			cursor = "> "
		}
		b.WriteString(fmt.Sprintf("%s%-36s %s\n", cursor, label+":", value))
	}
	b.WriteString("\n")
	b.WriteString(m.styles.cmdHint.Render("j/k move • e edit field • p toggle • n continue"))
	return b.String()
}

func (m *model) renderWizardReview(width int) string {
	w := m.wizard
	var b strings.Builder
	switch {
	case w.Generating:
		b.WriteString("Generating your post…\n")
	case m.wizardGenerateErr != nil:
		b.WriteString(m.styles.banner.Render("Generation failed: "+m.wizardGenerateErr.Error()) + "\n\n")
		b.WriteString(m.styles.cmdHint.Render("g retry • b back"))
	case w.Generated != nil:
		b.WriteString(renderMarkdown(w.Generated.Content))
		if len(w.Generated.Hashtags) > 0 {
			b.WriteString("\n" + truncateLine(strings.Join(w.Generated.Hashtags, " "), width-2) + "\n")
		}
		if w.Generated.ImageURL != "" {
			b.WriteString("\n" + truncateLine("Image: "+w.Generated.ImageURL, width-2) + "\n")
		}
		if len(w.Generated.ValidationScores) > 0 {
			b.WriteString("\nValidation scores\n")
			for _, name := range sortedScoreKeys(w.Generated.ValidationScores) {
				b.WriteString(fmt.Sprintf("  %-18s %.1f\n", name, w.Generated.ValidationScores[name]))
			}
		}
		b.WriteString("\n")
		b.WriteString(m.styles.cmdHint.Render("y copy post • g regenerate • b back"))
	default:
		b.WriteString("Preparing generation…\n")
	}
	return b.String()
}
