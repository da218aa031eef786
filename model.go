package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type featureDefinition struct {
	Key   string
	Title string
	Desc  string
}

var featureDefinitions = []featureDefinition{
	{Key: "dashboard", Title: "Dashboard", Desc: "Account, orgs, recent posts"},
	{Key: "queue", Title: "Queue", Desc: "Approved posts ready to publish"},
	{Key: "compose", Title: "Compose", Desc: "Guided five-step post wizard"},
	{Key: "prompts", Title: "Prompts", Desc: "Per-agent prompt overrides"},
	{Key: "settings", Title: "Settings", Desc: "LinkedIn application setup"},
	{Key: "costs", Title: "Costs", Desc: "Generation cost ledger"},
}

func findFeatureDefinition(key string) featureDefinition {
	for _, def := range featureDefinitions {
		if def.Key == key {
			return def
		}
	}
	return featureDefinitions[0]
}

type featureSelectedMsg struct {
	feature featureDefinition
}

type inputMode int

const (
	inputNone inputMode = iota
	inputLoginURL
	inputWizardNotes
	inputWizardPersonaField
	inputPromptSystem
	inputPromptUser
	inputPromptResetConfirm
	inputSettingsClientID
	inputSettingsClientSecret
	inputSettingsRedirectURI
)

type keyMap struct {
	quit        key.Binding
	nextFocus   key.Binding
	prevFocus   key.Binding
	nextFeature key.Binding
	prevFeature key.Binding
	toggleLogs  key.Binding
	login       key.Binding
	theme       key.Binding
	toggleHelp  key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		nextFocus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next panel"),
		),
		prevFocus: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev panel"),
		),
		nextFeature: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "next view"),
		),
		prevFeature: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "prev view"),
		),
		toggleLogs: key.NewBinding(
			key.WithKeys("f6"),
			key.WithHelp("F6", "toggle logs"),
		),
		login: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "paste login URL"),
		),
		theme: key.NewBinding(
			key.WithKeys("f7"),
			key.WithHelp("F7", "markdown theme"),
		),
		toggleHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.nextFocus,
		k.nextFeature,
		k.prevFeature,
		k.login,
		k.toggleLogs,
		k.toggleHelp,
		k.quit,
	}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.nextFocus, k.prevFocus, k.nextFeature, k.prevFeature},
		{k.login, k.theme, k.toggleLogs},
		{k.toggleHelp, k.quit},
	}
}

type model struct {
	width  int
	height int

	styles styles
	keys   keyMap
	help   help.Model

	config     *portalConfig
	configPath string
	store      *sessionStore
	api        *apiClient
	telemetry  *telemetryLogger
	actions    *actionRunner

	markdownTheme markdownTheme

	featuresCol    *selectableColumn
	contentCol     *previewColumn
	previewCol     *previewColumn
	columns        []column
	focus          int
	currentFeature string

	showLogs   bool
	logsHeight int
	logs       viewport.Model
	logLines   []string

	inputActive     bool
	inputMode       inputMode
	inputPrompt     string
	inputField      textinput.Model
	inputArea       textarea.Model
	textAreaEnabled bool
	spinner         spinner.Model

	toastMessage string
	toastExpires time.Time

	// dashboard
	account    *accountInfo
	accountErr error
	orgs       []organization
	orgsErr    error
	posts      []post
	postsErr   error
	postsCol   *selectableColumn

	// approved queue
	queuePosts        []post
	queueSelection    map[string]bool
	queueCol          *checklistColumn
	queueErr          error
	queueUnauthorized bool
	queueNotice       string
	queueLoading      bool
	queueBusy         bool

	// compose wizard
	wizard            *wizardState
	wizardWarning     string
	wizardGenerateErr error
	wizardSources     []inspirationSource
	wizardSourcesErr  error
	wizardCursor      int
	wizardField       int

	// prompts manager
	agents            []agentSummary
	agentsCol         *selectableColumn
	promptAgent       string
	promptBundle      *promptBundle
	promptSystemDraft string
	promptUserDraft   string
	promptsErr        error

	// linkedin settings
	settingsLoaded       *linkedInSettings
	settingsClientID     string
	settingsClientSecret string
	settingsRedirectURI  string
	settingsField        int
	settingsErr          error
	settingsNotice       string

	// cost ledger
	costsLedger     *costLedger
	costsView       costViewData
	costsRangeIndex int
	costsGroup      costGroupMode
	costsCursor     int
	costsLoading    bool
	costsErr        error
}

type modelOptions struct {
	config     *portalConfig
	configPath string
	store      *sessionStore
}

func initialModel(opts modelOptions) *model {
	s := newStyles()
	m := &model{
		styles:        s,
		keys:          newKeyMap(),
		help:          help.New(),
		config:        opts.config,
		configPath:    opts.configPath,
		store:         opts.store,
		markdownTheme: markdownThemeFromString(opts.config.Theme),
		showLogs:      true,
		logsHeight:    6,
		logLines: []string{
			"[INFO] Connected views fetch their data on entry; press r to refresh.",
			"[TIP] Use [ and ] to switch views, Tab to move focus.",
		},
		currentFeature:  "dashboard",
		queueSelection:  make(map[string]bool),
		costsGroup:      costGroupByDay,
		costsRangeIndex: len(costRangeOptions) - 1,
	}
	setMarkdownTheme(m.markdownTheme)

	m.api = newAPIClient(opts.config.BaseURL, opts.store.Token)
	m.actions = newActionRunner()
	m.telemetry = newTelemetryLogger(filepath.Join(resolveConfigDir(), "ui-events.ndjson"))

	m.help.ShortSeparator = " │ "
	m.help.Styles.ShortKey = m.styles.statusHint.Copy()
	m.help.Styles.ShortDesc = m.styles.statusHint.Copy()
	m.help.Styles.ShortSeparator = m.styles.statusSeg.Copy()

	m.inputField = textinput.New()
	m.inputField.Prompt = "> "
	m.inputField.CharLimit = 512
	m.inputArea = textarea.New()
	m.inputArea.Prompt = ""
	m.inputArea.CharLimit = 8192
	m.inputArea.ShowLineNumbers = false
	m.inputArea.SetHeight(6)
	m.inputArea.SetWidth(48)
	m.inputArea.Blur()
	m.spinner = spinner.New(spinner.WithSpinner(spinner.Dot))
	m.spinner.Style = m.styles.statusHint.Copy().Bold(true)
	m.logs = viewport.New(80, m.logsHeight)

	m.featuresCol = newSelectableColumn("Views", nil, 22, s, func(entry listEntry) tea.Cmd {
		if def, ok := entry.payload.(featureDefinition); ok {
			return func() tea.Msg { return featureSelectedMsg{feature: def} }
		}
		return nil
	})
	items := make([]list.Item, 0, len(featureDefinitions))
	for _, def := range featureDefinitions {
		items = append(items, listEntry{title: def.Title, desc: def.Desc, payload: def})
	}
	m.featuresCol.SetItems(items)

	m.postsCol = newSelectableColumn("Recent posts", nil, 40, s, nil)
	m.agentsCol = newSelectableColumn("Agents", nil, 28, s, nil)
	m.agentsCol.SetHighlightFunc(func(entry listEntry) tea.Cmd {
		if agent, ok := entry.payload.(agentSummary); ok {
			return m.loadPromptBundleCmd(agent.Name)
		}
		return nil
	})

	m.queueCol = newChecklistColumn("Approved posts", 50, s)
	m.queueCol.SetCallbacks(
		func(id string) tea.Cmd {
			m.toggleQueueSelection(id)
			return nil
		},
		nil,
	)

	m.contentCol = newPreviewColumn(60)
	m.contentCol.SetTitle("Content")
	m.previewCol = newPreviewColumn(48)

	m.applyFeatureLayout()
	m.refreshLogs()
	return m
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.enterDashboard())
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if tick, ok := msg.(spinner.TickMsg); ok {
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(tick)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	if m.inputActive {
		return m.updateInput(msg, cmds)
	}

	switch message := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = message.Width, message.Height
		m.applyLayout()
		return m, nil

	case tea.KeyMsg:
		if handled, cmd := m.handleGlobalKey(message); handled {
			if cmd != nil {
				cmds = append(cmds, cmd)
			}
			m.refreshPreviews()
			return m, tea.Batch(cmds...)
		}
	}

	if m.focus >= 0 && m.focus < len(m.columns) {
		col := m.columns[m.focus]
		var cmd tea.Cmd
		m.columns[m.focus], cmd = col.Update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	switch message := msg.(type) {
	case featureSelectedMsg:
		if cmd := m.switchFeature(message.feature.Key); cmd != nil {
			cmds = append(cmds, cmd)
		}
	case actionMsg:
		if cmd := m.handleActionMessage(message); cmd != nil {
			cmds = append(cmds, cmd)
		}

	case accountLoadedMsg:
		m.handleAccountLoaded(message)
	case orgsLoadedMsg:
		m.handleOrgsLoaded(message)
	case postsLoadedMsg:
		m.handlePostsLoaded(message)
	case runBatchDoneMsg:
		if cmd := m.handleRunBatchDone(message); cmd != nil {
			cmds = append(cmds, cmd)
		}

	case approvedLoadedMsg:
		m.handleApprovedLoaded(message)
	case publishDoneMsg:
		if cmd := m.handlePublishDone(message); cmd != nil {
			cmds = append(cmds, cmd)
		}
	case clearDoneMsg:
		if cmd := m.handleClearDone(message); cmd != nil {
			cmds = append(cmds, cmd)
		}

	case brandDefaultsMsg:
		m.handleBrandDefaults(message)
	case inspirationSourcesMsg:
		m.handleInspirationSources(message)
	case wizardGeneratedMsg:
		if cmd := m.handleWizardGenerated(message); cmd != nil {
			cmds = append(cmds, cmd)
		}

	case agentsLoadedMsg:
		if cmd := m.handleAgentsLoaded(message); cmd != nil {
			cmds = append(cmds, cmd)
		}
	case promptBundleLoadedMsg:
		m.handlePromptBundleLoaded(message)
	case promptSavedMsg:
		if cmd := m.handlePromptSaved(message); cmd != nil {
			cmds = append(cmds, cmd)
		}
	case promptResetMsg:
		if cmd := m.handlePromptReset(message); cmd != nil {
			cmds = append(cmds, cmd)
		}

	case linkedInSettingsLoadedMsg:
		m.handleLinkedInSettingsLoaded(message)
	case linkedInSettingsSavedMsg:
		if cmd := m.handleLinkedInSettingsSaved(message); cmd != nil {
			cmds = append(cmds, cmd)
		}

	case costsLoadedMsg:
		m.handleCostsLoaded(message)
	case costsExportedMsg:
		m.handleCostsExported(message)
	}

	m.refreshPreviews()
	return m, tea.Batch(cmds...)
}

func (m *model) updateInput(msg tea.Msg, cmds []tea.Cmd) (tea.Model, tea.Cmd) {
	if m.textAreaEnabled {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "esc":
				m.closeInput()
				return m, tea.Batch(cmds...)
			case "ctrl+s":
				value := m.inputArea.Value()
				if cmd := m.handleInputSubmit(value); cmd != nil {
					cmds = append(cmds, cmd)
				}
				m.closeInput()
				m.refreshPreviews()
				return m, tea.Batch(cmds...)
			}
		}
		var cmd tea.Cmd
		m.inputArea, cmd = m.inputArea.Update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			m.closeInput()
			return m, tea.Batch(cmds...)
		case "enter":
			value := strings.TrimSpace(m.inputField.Value())
			if cmd := m.handleInputSubmit(value); cmd != nil {
				cmds = append(cmds, cmd)
			}
			m.closeInput()
			m.refreshPreviews()
			return m, tea.Batch(cmds...)
		}
	}
	var cmd tea.Cmd
	m.inputField, cmd = m.inputField.Update(msg)
	if cmd != nil {
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m *model) handleGlobalKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		if m.currentFeature == "compose" && m.wizard != nil && msg.String() == "q" {
			// q inside the wizard would eat free-text navigation; require ctrl+c
			break
		}
		_ = m.store.Close()
		return true, tea.Quit
	case key.Matches(msg, m.keys.nextFocus):
		m.focus = (m.focus + 1) % len(m.columns)
		return true, nil
	case key.Matches(msg, m.keys.prevFocus):
		m.focus = (m.focus - 1 + len(m.columns)) % len(m.columns)
		return true, nil
	case key.Matches(msg, m.keys.nextFeature):
		if m.currentFeature == "costs" {
			break
		}
		return true, m.cycleFeature(1)
	case key.Matches(msg, m.keys.prevFeature):
		if m.currentFeature == "costs" {
			break
		}
		return true, m.cycleFeature(-1)
	case key.Matches(msg, m.keys.toggleLogs):
		m.showLogs = !m.showLogs
		m.applyLayout()
		return true, nil
	case key.Matches(msg, m.keys.login):
		m.openInput("Paste the login callback URL", "", inputLoginURL)
		return true, nil
	case key.Matches(msg, m.keys.theme):
		m.markdownTheme = nextMarkdownTheme(m.markdownTheme)
		setMarkdownTheme(m.markdownTheme)
		m.setToast("Markdown theme: "+m.markdownTheme.String(), 3*time.Second)
		return true, nil
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return true, nil
	}

	switch m.currentFeature {
	case "dashboard":
		return m.handleDashboardKey(msg)
	case "queue":
		return m.handleQueueKey(msg)
	case "compose":
		return m.handleWizardKey(msg)
	case "prompts":
		return m.handlePromptsKey(msg)
	case "settings":
		return m.handleSettingsKey(msg)
	case "costs":
		return m.handleCostsKey(msg)
	}
	return false, nil
}

func (m *model) cycleFeature(delta int) tea.Cmd {
	current := 0
	for idx, def := range featureDefinitions {
		if def.Key == m.currentFeature {
			current = idx
			break
		}
	}
	next := (current + delta + len(featureDefinitions)) % len(featureDefinitions)
	return m.switchFeature(featureDefinitions[next].Key)
}

func (m *model) switchFeature(keyName string) tea.Cmd {
	if keyName == m.currentFeature {
		return nil
	}
	m.currentFeature = keyName
	m.applyFeatureLayout()
	m.emitTelemetry("view_opened", map[string]string{"view": keyName})
	switch keyName {
	case "dashboard":
		return m.enterDashboard()
	case "queue":
		return m.enterQueue()
	case "compose":
		return m.enterWizard()
	case "prompts":
		return m.enterPrompts()
	case "settings":
		return m.enterSettings()
	case "costs":
		return m.enterCosts()
	}
	return nil
}

// applyFeatureLayout assembles the visible columns for the active view.
func (m *model) applyFeatureLayout() {
	switch m.currentFeature {
	case "queue":
		m.columns = []column{m.featuresCol, m.queueCol, m.previewCol}
		m.focus = 1
	case "compose":
		m.contentCol.SetTitle("Compose")
		m.columns = []column{m.featuresCol, m.contentCol}
		m.focus = 1
	case "prompts":
		m.columns = []column{m.featuresCol, m.agentsCol, m.previewCol}
		m.focus = 1
	case "settings":
		m.contentCol.SetTitle("LinkedIn settings")
		m.columns = []column{m.featuresCol, m.contentCol}
		m.focus = 1
	case "costs":
		m.contentCol.SetTitle("Cost ledger")
		m.columns = []column{m.featuresCol, m.contentCol, m.previewCol}
		m.focus = 1
	default:
		m.columns = []column{m.featuresCol, m.postsCol, m.previewCol}
		m.focus = 1
	}
	m.applyLayout()
	m.refreshPreviews()
}

func (m *model) applyLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	bodyHeight := m.height - 4
	if m.showLogs {
		bodyHeight -= m.logsHeight + 2
	}
	if bodyHeight < 6 {
		bodyHeight = 6
	}

	sidebarWidth := 22
	remaining := m.width - sidebarWidth - 4
	if remaining < 30 {
		remaining = 30
	}
	m.featuresCol.SetSize(sidebarWidth, bodyHeight)
	switch len(m.columns) {
	case 2:
		m.columns[1].SetSize(remaining, bodyHeight)
	case 3:
		mainWidth := remaining * 55 / 100
		m.columns[1].SetSize(mainWidth, bodyHeight)
		m.columns[2].SetSize(remaining-mainWidth, bodyHeight)
	}

	m.logs.Width = m.width - 4
	m.logs.Height = m.logsHeight
	setMarkdownWordWrap(min(remaining-8, 100))
	m.refreshLogs()
}

// refreshPreviews pushes freshly rendered content into the passive panes.
func (m *model) refreshPreviews() {
	switch m.currentFeature {
	case "dashboard":
		m.previewCol.SetTitle("Post preview")
		m.previewCol.SetContent(m.renderAccountSummary() + "\n" + m.renderDashboardPreview())
	case "queue":
		m.previewCol.SetTitle("Post preview")
		if m.queueUnauthorized {
			m.previewCol.SetContent("Sign in to load the approved queue.")
		} else if id, ok := m.queueCol.SelectedID(); ok {
			m.previewCol.SetContent(m.renderQueuePreview(id))
		} else {
			m.previewCol.SetContent("The approved queue is empty.")
		}
	case "compose":
		m.contentCol.SetContent(m.renderWizard(m.contentCol.width - 4))
	case "prompts":
		m.previewCol.SetTitle("Prompt bundle")
		m.previewCol.SetContent(m.renderPromptPreview())
	case "settings":
		m.contentCol.SetContent(m.renderSettings(m.contentCol.width - 4))
	case "costs":
		m.contentCol.SetContent(m.renderCosts(m.contentCol.width - 4))
		m.previewCol.SetTitle("Breakdown")
		if row, ok := m.selectedCostRow(); ok {
			m.previewCol.SetContent(renderCostPreview(m.costsView, row))
		} else {
			m.previewCol.SetContent("No cost rows in this range.")
		}
	}
}

func (m *model) handleActionMessage(msg actionMsg) tea.Cmd {
	switch message := msg.(type) {
	case actionStartedMsg:
		m.appendLog(fmt.Sprintf("[action] %s started", message.Title))
	case actionLogMsg:
		m.appendLog("[action] " + message.Line)
	case actionFinishedMsg:
		if message.Err != nil {
			m.appendLog(fmt.Sprintf("[action] %s failed: %v", message.Title, message.Err))
		} else {
			m.appendLog(fmt.Sprintf("[action] %s finished", message.Title))
		}
	}
	m.refreshLogs()
	return m.actions.Handle(msg)
}

func (m *model) handleInputSubmit(value string) tea.Cmd {
	switch m.inputMode {
	case inputLoginURL:
		capture, err := syncLoginToken(m.store, value)
		if err != nil {
			m.setToast("Login failed: "+err.Error(), 6*time.Second)
			return nil
		}
		m.queueUnauthorized = false
		m.appendLog("[auth] session token stored; URL scrubbed to " + capture.CleanedURL)
		m.setToast("Signed in", 4*time.Second)
		m.emitTelemetry("login_completed", nil)
		return m.switchFeatureReload()
	case inputWizardNotes:
		if m.wizard != nil {
			m.wizard.Brand.Notes = value
		}
	case inputWizardPersonaField:
		if m.wizard != nil && m.wizard.Persona != nil {
			setPersonaFieldValue(m.wizard.Persona, m.wizardField, value)
		}
	case inputPromptSystem:
		m.promptSystemDraft = value
	case inputPromptUser:
		m.promptUserDraft = value
	case inputPromptResetConfirm:
		if value == m.promptAgent {
			return m.resetPromptCmd()
		}
		m.setToast("Reset cancelled", 3*time.Second)
	case inputSettingsClientID:
		m.settingsClientID = strings.TrimSpace(value)
	case inputSettingsClientSecret:
		m.settingsClientSecret = strings.TrimSpace(value)
	case inputSettingsRedirectURI:
		m.settingsRedirectURI = strings.TrimSpace(value)
	}
	return nil
}

// switchFeatureReload re-runs the current view's entry fetches, e.g. after
// a fresh login.
func (m *model) switchFeatureReload() tea.Cmd {
	feature := m.currentFeature
	m.currentFeature = ""
	return m.switchFeature(feature)
}

func (m *model) openInput(prompt, initial string, mode inputMode) {
	m.inputActive = true
	m.inputMode = mode
	m.inputPrompt = prompt
	m.textAreaEnabled = false
	m.inputField.SetValue(initial)
	m.inputField.CursorEnd()
	m.inputField.Focus()
}

func (m *model) openTextarea(prompt, initial string, mode inputMode) {
	m.inputActive = true
	m.inputMode = mode
	m.inputPrompt = prompt
	m.textAreaEnabled = true
	m.inputArea.SetValue(initial)
	m.inputArea.Focus()
}

func (m *model) closeInput() {
	m.inputActive = false
	m.inputMode = inputNone
	m.inputPrompt = ""
	m.textAreaEnabled = false
	m.inputField.Blur()
	m.inputField.SetValue("")
	m.inputArea.Blur()
	m.inputArea.SetValue("")
}

func (m *model) appendLog(line string) {
	m.logLines = append(m.logLines, line)
	if len(m.logLines) > 400 {
		m.logLines = m.logLines[len(m.logLines)-400:]
	}
	m.refreshLogs()
}

func (m *model) refreshLogs() {
	m.logs.SetContent(strings.Join(m.logLines, "\n"))
	m.logs.GotoBottom()
}

func (m *model) setToast(message string, ttl time.Duration) {
	m.toastMessage = message
	m.toastExpires = time.Now().Add(ttl)
}

func (m *model) emitTelemetry(event string, extra map[string]string) {
	if m.telemetry == nil {
		return
	}
	m.telemetry.Emit(telemetryEvent{
		Event:     event,
		View:      m.currentFeature,
		ExtraJSON: extra,
	})
}

func (m *model) copyToClipboard(text, toast string) {
	if err := clipboard.WriteAll(text); err != nil {
		m.setToast("Clipboard unavailable: "+err.Error(), 4*time.Second)
		return
	}
	m.setToast(toast, 3*time.Second)
}

func (m *model) View() string {
	var builder strings.Builder

	helpWidth := m.width - 4
	if helpWidth < 0 {
		helpWidth = 0
	}
	m.help.Width = helpWidth

	title := "postdeck • " + findFeatureDefinition(m.currentFeature).Title
	if m.account != nil && m.account.Name != "" {
		title += " • " + m.account.Name
	}
	builder.WriteString(m.styles.topBar.Width(m.width).Render(title))
	builder.WriteRune('\n')

	if banner := m.renderFeatureBanner(); banner != "" {
		builder.WriteString(banner)
		builder.WriteRune('\n')
	}

	var colViews []string
	for i, col := range m.columns {
		colViews = append(colViews, col.View(m.styles, i == m.focus))
	}
	builder.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, colViews...))
	builder.WriteRune('\n')

	if m.showLogs {
		logTitle := m.styles.columnTitle.Render("Activity")
		builder.WriteString(m.styles.panel.Width(m.width - 2).Render(logTitle + "\n" + m.logs.View()))
		builder.WriteRune('\n')
	}

	if helpView := m.help.View(m.keys); helpView != "" {
		builder.WriteString(helpView)
		if !strings.HasSuffix(helpView, "\n") {
			builder.WriteRune('\n')
		}
	}

	builder.WriteString(m.renderStatus())

	if m.inputActive {
		builder.WriteString("\n")
		builder.WriteString(m.renderInputOverlay())
	}

	return m.styles.app.Render(builder.String())
}

func (m *model) renderFeatureBanner() string {
	switch m.currentFeature {
	case "queue":
		return m.renderQueueStatus()
	case "compose":
		if m.queueUnauthorized {
			return m.styles.warning.Render("Not signed in — generation may fail. Press t to paste a login URL.")
		}
	}
	return ""
}

func (m *model) renderStatus() string {
	segments := []string{findFeatureDefinition(m.currentFeature).Title}
	if busy := m.busyLabel(); busy != "" {
		segments = append(segments, m.spinner.View()+" "+busy)
	}
	if m.toastMessage != "" && time.Now().Before(m.toastExpires) {
		segments = append(segments, m.toastMessage)
	}
	var rendered []string
	for _, seg := range segments {
		rendered = append(rendered, m.styles.statusSeg.Render(seg))
	}
	return m.styles.statusBar.Width(m.width).Render(strings.Join(rendered, ""))
}

func (m *model) busyLabel() string {
	switch {
	case m.queueBusy:
		return "publishing"
	case m.wizard != nil && m.wizard.Generating:
		return "generating"
	case m.costsLoading:
		return "loading costs"
	case m.queueLoading:
		return "loading queue"
	}
	return ""
}

func (m *model) renderInputOverlay() string {
	overlayWidth := min(72, m.width-4)
	if overlayWidth < 24 {
		overlayWidth = 24
	}
	var content strings.Builder
	content.WriteString(m.styles.cmdPrompt.Render(m.inputPrompt))
	content.WriteRune('\n')
	if m.textAreaEnabled {
		m.inputArea.SetWidth(overlayWidth - 4)
		content.WriteString(m.inputArea.View())
		content.WriteRune('\n')
		content.WriteString(m.styles.cmdHint.Render("ctrl+s save • esc cancel"))
	} else {
		content.WriteString(m.inputField.View())
		content.WriteRune('\n')
		content.WriteString(m.styles.cmdHint.Render("enter confirm • esc cancel"))
	}
	overlay := m.styles.cmdOverlay.Width(overlayWidth).Render(strings.TrimRight(content.String(), "\n"))
	return lipgloss.Place(m.width, m.height/2, lipgloss.Center, lipgloss.Center, overlay)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
