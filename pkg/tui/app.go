package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/evanschultz/instlist/pkg/config"
	"github.com/evanschultz/instlist/pkg/curation"
	"github.com/evanschultz/instlist/pkg/export"
	"github.com/evanschultz/instlist/pkg/institution"
	"github.com/evanschultz/instlist/pkg/models"
	"github.com/evanschultz/instlist/pkg/render"
	"github.com/evanschultz/instlist/pkg/tui/components"
)

const (
	unsavedWarning = "Your changes to the institution list will be lost if you proceed."
	prepareTimeout = time.Minute
)

// Options configures a Model. Zero values fall back to the configured
// defaults.
type Options struct {
	Config    *config.Config
	Preparer  render.Preparer
	Logger    *zap.Logger
	XML       string // submitted on start when set
	Files     export.Sink
	Clipboard export.Sink
}

type Model struct {
	cfg      *config.Config
	logger   *zap.Logger
	session  *curation.Session
	dispatch func(curation.Event) bool
	preparer render.Preparer
	renderer *render.Renderer
	fatal    error

	step   step
	width  int
	height int

	// Components
	xmlInput      *components.TextPane
	tree          *Tree
	exclusions    *components.TextPane
	substitutions *components.TextPane
	preview       *Preview
	rulePrompt    *RulePrompt
	focus         *FocusManager
	activity      *ActivityPanel
	help          help.Model

	files     export.Sink
	clipboard export.Sink

	// UI state
	pending     []models.Institution
	hasPending  bool
	status      string
	statusErr   bool
	savedCSV    string
	hasSaved    bool
	confirmQuit bool
}

type keyMap struct {
	NextPane       key.Binding
	PrevPane       key.Binding
	SubmitXML      key.Binding
	Apply          key.Binding
	SaveCSV        key.Binding
	SaveExclusions key.Binding
	Copy           key.Binding
	Activity       key.Binding
	Back           key.Binding
	AddRule        key.Binding
	RemoveRule     key.Binding
	PrevRule       key.Binding
	NextRule       key.Binding
	Quit           key.Binding
	ForceQuit      key.Binding
}

var keys = keyMap{
	NextPane: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next pane"),
	),
	PrevPane: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "previous pane"),
	),
	SubmitXML: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("ctrl+s", "load tree"),
	),
	Apply: components.DefaultKeyMap.Submit,
	SaveCSV: key.NewBinding(
		key.WithKeys("ctrl+e"),
		key.WithHelp("ctrl+e", "save csv"),
	),
	SaveExclusions: key.NewBinding(
		key.WithKeys("ctrl+x"),
		key.WithHelp("ctrl+x", "save exclusions"),
	),
	Copy: key.NewBinding(
		key.WithKeys("ctrl+y"),
		key.WithHelp("ctrl+y", "copy csv"),
	),
	Activity: key.NewBinding(
		key.WithKeys("ctrl+l"),
		key.WithHelp("ctrl+l", "activity"),
	),
	Back: key.NewBinding(
		key.WithKeys("ctrl+o"),
		key.WithHelp("ctrl+o", "edit xml"),
	),
	AddRule: key.NewBinding(
		key.WithKeys("+"),
		key.WithHelp("+", "add rule"),
	),
	RemoveRule: key.NewBinding(
		key.WithKeys("-", "delete"),
		key.WithHelp("-", "remove rule"),
	),
	PrevRule: key.NewBinding(
		key.WithKeys("["),
		key.WithHelp("[", "previous rule"),
	),
	NextRule: key.NewBinding(
		key.WithKeys("]"),
		key.WithHelp("]", "next rule"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q"),
		key.WithHelp("q", "quit"),
	),
	ForceQuit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
}

func NewModel(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	preparer := opts.Preparer
	if preparer == nil {
		preparer = render.Select(cfg)
	}
	files := opts.Files
	if files == nil {
		files = export.FileSink{Dir: cfg.OutputDir}
	}
	clip := opts.Clipboard
	if clip == nil {
		clip = export.ClipboardSink{}
	}

	session := curation.NewSession(logger)
	activity := NewActivityPanel()

	m := Model{
		cfg:      cfg,
		logger:   logger,
		session:  session,
		preparer: preparer,
		activity: activity,
		help:     help.New(),

		files:     files,
		clipboard: clip,
	}

	m.dispatch = func(ev curation.Event) bool {
		if !session.Dispatch(ev) {
			activity.Add("SYNC", "update dropped while views were refreshing", LevelWarning)
			return false
		}
		entryType, content := describeEvent(ev, session)
		activity.Add(entryType, content, LevelInfo)
		return true
	}

	m.xmlInput = components.NewTextPane("Institution XML", "Paste the institution XML here...")
	m.tree = NewTree(m.dispatch)
	m.exclusions = components.NewTextPane("Exclusions", "ID - LABEL, one per line")
	m.substitutions = components.NewTextPane("Substitutions", "s/FIND/REPLACE/, one per line")
	m.preview = NewPreview()
	m.rulePrompt = NewRulePrompt()
	m.focus = NewFocusManager(m.tree, m.exclusions, m.substitutions, m.preview)

	exclusions := m.exclusions
	session.Subscribe(m.tree)
	session.Subscribe(m.preview)
	session.Subscribe(curation.ViewFunc(func(s curation.Snapshot) {
		exclusions.SetValue(s.ExclusionText)
	}))

	if cfg.Substitutions != "" {
		m.substitutions.SetValue(cfg.Substitutions)
		m.dispatch(curation.SetSubstitutions{Text: cfg.Substitutions})
	}
	if cfg.Exclusions != "" {
		m.dispatch(curation.EditExclusions{Text: cfg.Exclusions})
	}

	m.xmlInput.Focus()
	if opts.XML != "" {
		m.xmlInput.SetValue(opts.XML)
		m.submitXML(opts.XML)
	}

	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.prepareRenderer(), textarea.Blink)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateSizes()
		return m, nil

	case rendererReadyMsg:
		m.renderer = msg.renderer
		m.preview.SetRenderer(msg.renderer)
		m.logger.Info("Renderer ready", zap.String("source", msg.renderer.Source()))
		m.activity.Add("RENDERER", "ready ("+msg.renderer.Source()+")", LevelSuccess)
		if m.hasPending {
			insts := m.pending
			m.pending, m.hasPending = nil, false
			cmds = append(cmds, m.loadTree(insts))
		}
		return m, tea.Batch(cmds...)

	case rendererFailedMsg:
		m.fatal = msg.err
		m.logger.Error("Renderer preparation failed", zap.Error(msg.err))
		return m, nil

	case savedMsg:
		switch msg.kind {
		case kindCSV:
			m.savedCSV, m.hasSaved = msg.data, true
			m.setStatus("Saved " + filepath.Join(m.cfg.OutputDir, msg.name))
		case kindExclusions:
			m.setStatus("Saved " + filepath.Join(m.cfg.OutputDir, msg.name))
		case kindClipboard:
			m.setStatus("Copied the list to the clipboard")
		}
		m.activity.Add("SAVE", msg.kind+" "+msg.name, LevelSuccess)
		m.logger.Info("Document saved", zap.String("kind", msg.kind), zap.String("name", msg.name))
		return m, nil

	case saveFailedMsg:
		m.setError(fmt.Sprintf("Could not save %s: %v", msg.kind, msg.err))
		m.activity.AddError("SAVE", msg.err)
		m.logger.Warn("Save failed", zap.String("kind", msg.kind), zap.Error(msg.err))
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.fatal == nil {
		cmds = append(cmds, m.updateFocused(msg))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.fatal != nil {
		if key.Matches(msg, keys.Quit, keys.ForceQuit) {
			return m, tea.Quit
		}
		return m, nil
	}

	if key.Matches(msg, keys.ForceQuit) || (key.Matches(msg, keys.Quit) && !m.typing()) {
		return m.requestQuit()
	}
	m.confirmQuit = false

	if m.step == stepXML {
		if key.Matches(msg, keys.SubmitXML) {
			cmd := m.submitXML(m.xmlInput.Value())
			return m, cmd
		}
		return m, m.xmlInput.Update(msg)
	}

	if m.rulePrompt.Active() {
		return m.handlePromptKey(msg)
	}

	switch {
	case key.Matches(msg, keys.AddRule) && !m.typing():
		cmd := m.openRulePrompt()
		return m, cmd

	case m.focus.Current() == panePreview && key.Matches(msg, keys.RemoveRule):
		m.removeRule()
		return m, nil

	case m.focus.Current() == panePreview && key.Matches(msg, keys.PrevRule):
		m.preview.SelectPrev()
		return m, nil

	case m.focus.Current() == panePreview && key.Matches(msg, keys.NextRule):
		m.preview.SelectNext()
		return m, nil

	case key.Matches(msg, keys.NextPane):
		m.leavePane()
		cmd := m.focus.Next()
		return m, cmd

	case key.Matches(msg, keys.PrevPane):
		m.leavePane()
		cmd := m.focus.Previous()
		return m, cmd

	case key.Matches(msg, keys.Apply):
		m.apply()
		return m, nil

	case key.Matches(msg, keys.SaveCSV):
		m.leavePane()
		cmd := m.save(m.files, export.CSV(m.cfg.CSVFile, m.session.CSV()), kindCSV)
		return m, cmd

	case key.Matches(msg, keys.SaveExclusions):
		m.leavePane()
		cmd := m.save(m.files, export.Exclusions(m.cfg.ExclusionsFile, m.session.ExclusionText()), kindExclusions)
		return m, cmd

	case key.Matches(msg, keys.Copy):
		m.leavePane()
		cmd := m.save(m.clipboard, export.CSV(m.cfg.CSVFile, m.session.CSV()), kindClipboard)
		return m, cmd

	case key.Matches(msg, keys.Activity):
		m.activity.Toggle()
		m.updateSizes()
		return m, nil

	case key.Matches(msg, keys.Back):
		m.leavePane()
		m.focus.Disable()
		m.step = stepXML
		m.setStatus("")
		cmd := m.xmlInput.Focus()
		return m, cmd
	}

	return m, m.updateFocused(msg)
}

func (m Model) View() string {
	if m.fatal != nil {
		return m.fatalView()
	}

	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	var parts []string
	switch m.step {
	case stepXML:
		parts = append(parts, m.xmlInput.View())

	case stepCurate:
		middle := lipgloss.JoinVertical(lipgloss.Left, m.exclusions.View(), m.substitutions.View())
		parts = append(parts, lipgloss.JoinHorizontal(lipgloss.Top, m.tree.View(), middle, m.preview.View()))
		if m.rulePrompt.Active() {
			parts = append(parts, m.rulePrompt.View(m.width))
		}
		if m.activity.IsVisible() {
			parts = append(parts, m.activity.View(m.width))
		}
	}

	parts = append(parts, m.statusView(), m.help.ShortHelpView(m.bindings()))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// submitXML parses text and loads it, or parks it until the renderer is ready
func (m *Model) submitXML(text string) tea.Cmd {
	insts, err := institution.Parse(text)
	if err != nil {
		m.setError(xmlErrorMessage(err))
		m.activity.AddError("XML", err)
		m.logger.Debug("XML rejected", zap.Error(err))
		return nil
	}

	if m.renderer == nil {
		m.pending, m.hasPending = insts, true
		m.setStatus("Preparing the renderer; the tree loads when it is ready")
		return nil
	}
	return m.loadTree(insts)
}

func (m *Model) loadTree(insts []models.Institution) tea.Cmd {
	m.dispatch(curation.LoadTree{Institutions: insts})
	m.step = stepCurate
	m.xmlInput.Blur()
	m.setStatus(fmt.Sprintf("Loaded %d institutions", len(insts)))
	return m.focus.Enable(paneTree)
}

// leavePane commits the exclusion text when focus leaves its pane
func (m *Model) leavePane() {
	if m.focus.Enabled() && m.focus.Current() == paneExclusions {
		m.commitExclusions()
	}
}

func (m *Model) commitExclusions() {
	text := m.exclusions.Value()
	if text == m.session.ExclusionText() {
		return
	}
	m.dispatch(curation.EditExclusions{Text: text})
}

func (m *Model) apply() {
	switch m.focus.Current() {
	case paneExclusions:
		m.commitExclusions()
		m.setStatus(fmt.Sprintf("%d institutions excluded", len(m.session.Excluded())))
	case paneSubstitutions:
		m.dispatch(curation.SetSubstitutions{Text: m.substitutions.Value()})
		m.setStatus(fmt.Sprintf("%d substitutions applied", len(m.session.Rules())))
	}
}

func (m *Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, promptKeys.Cancel):
		m.closeRulePrompt()
		m.setStatus("")
		return *m, nil

	case key.Matches(msg, promptKeys.Submit):
		cmd := m.addRule()
		return *m, cmd
	}
	cmd := m.rulePrompt.Update(msg)
	return *m, cmd
}

// openRulePrompt starts a new rule. From the tree the find field holds the
// label under the cursor, escaped.
func (m *Model) openRulePrompt() tea.Cmd {
	m.leavePane()
	find := ""
	if m.focus.Current() == paneTree {
		if inst, ok := m.tree.Cursor(); ok {
			find = regexp.QuoteMeta(inst.Label)
		}
	}
	cmd := m.rulePrompt.Open(find)
	m.updateSizes()
	return cmd
}

func (m *Model) closeRulePrompt() {
	m.rulePrompt.Close()
	m.updateSizes()
}

func (m *Model) addRule() tea.Cmd {
	find, replace := m.rulePrompt.Values()
	if find == "" {
		m.setError("Enter a pattern to find")
		return nil
	}

	before := len(m.session.Rules())
	m.dispatch(curation.AddSubstitution{Find: find, Replace: replace})
	if len(m.session.Rules()) == before {
		m.setError("Not a valid pattern: " + find)
		return nil
	}

	m.closeRulePrompt()
	m.substitutions.SetValue(curation.FormatRules(m.session.Rules()))
	cmd := m.focus.SetFocus(panePreview)
	m.preview.SelectLast()
	m.setStatus(fmt.Sprintf("Added substitution %d", before+1))
	return cmd
}

func (m *Model) removeRule() {
	i, ok := m.preview.Selected()
	if !ok {
		m.setError("No substitution to remove")
		return
	}
	m.dispatch(curation.RemoveSubstitution{Index: i})
	m.substitutions.SetValue(curation.FormatRules(m.session.Rules()))
	m.setStatus(fmt.Sprintf("Removed substitution %d", i+1))
}

func (m *Model) requestQuit() (tea.Model, tea.Cmd) {
	if m.unsaved() && !m.confirmQuit {
		m.confirmQuit = true
		m.setError(unsavedWarning + " Press quit again to leave.")
		m.activity.Add("QUIT", unsavedWarning, LevelWarning)
		return *m, nil
	}
	return *m, tea.Quit
}

// unsaved reports whether the current list differs from the last saved CSV
func (m Model) unsaved() bool {
	if !m.session.Loaded() {
		return false
	}
	return !m.hasSaved || m.session.CSV() != m.savedCSV
}

// typing reports whether keys go to a text pane
func (m Model) typing() bool {
	if m.step == stepXML || m.rulePrompt.Active() {
		return true
	}
	current := m.focus.Current()
	return current == paneExclusions || current == paneSubstitutions
}

func (m Model) updateFocused(msg tea.Msg) tea.Cmd {
	if m.step == stepXML {
		return m.xmlInput.Update(msg)
	}
	if m.rulePrompt.Active() {
		return m.rulePrompt.Update(msg)
	}

	switch m.focus.Current() {
	case paneTree:
		return m.tree.Update(msg)
	case paneExclusions:
		return m.exclusions.Update(msg)
	case paneSubstitutions:
		return m.substitutions.Update(msg)
	case panePreview:
		return m.preview.Update(msg)
	}
	return nil
}

func (m Model) prepareRenderer() tea.Cmd {
	preparer := m.preparer
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), prepareTimeout)
		defer cancel()

		r, err := preparer.Prepare(ctx)
		if err != nil {
			return rendererFailedMsg{err: err}
		}
		return rendererReadyMsg{renderer: r}
	}
}

func (m *Model) save(sink export.Sink, doc export.Document, kind string) tea.Cmd {
	if !m.session.Loaded() {
		m.setError("Load the institution XML first")
		return nil
	}
	return func() tea.Msg {
		if err := sink.Save(doc); err != nil {
			return saveFailedMsg{kind: kind, err: err}
		}
		return savedMsg{kind: kind, name: doc.Name, data: string(doc.Data)}
	}
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(s string) {
	m.status = s
	m.statusErr = true
}

func (m *Model) updateSizes() {
	// status and help lines
	contentHeight := max(6, m.height-2-m.activity.Height()-m.rulePrompt.Height())

	m.xmlInput.SetSize(m.width, max(4, m.height-2))

	treeWidth := m.width * 2 / 5
	textWidth := m.width * 3 / 10
	previewWidth := m.width - treeWidth - textWidth

	m.tree.SetSize(treeWidth, contentHeight)
	m.exclusions.SetSize(textWidth, contentHeight/2)
	m.substitutions.SetSize(textWidth, contentHeight-contentHeight/2)
	m.preview.SetSize(previewWidth, contentHeight)
}

func (m Model) bindings() []key.Binding {
	if m.step == stepXML {
		return []key.Binding{keys.SubmitXML, keys.ForceQuit}
	}

	if m.rulePrompt.Active() {
		return []key.Binding{promptKeys.Submit, promptKeys.Switch, promptKeys.Cancel, keys.ForceQuit}
	}

	bindings := []key.Binding{keys.NextPane}
	switch m.focus.Current() {
	case paneTree:
		bindings = append(bindings, treeKeys.Toggle, treeKeys.CheckAll, treeKeys.UncheckAll, keys.AddRule)
	case paneExclusions, paneSubstitutions:
		bindings = append(bindings, keys.Apply)
	case panePreview:
		bindings = append(bindings, keys.AddRule, keys.RemoveRule, keys.PrevRule, keys.NextRule)
	}
	bindings = append(bindings, keys.SaveCSV, keys.SaveExclusions, keys.Copy, keys.Activity, keys.Back)
	if m.typing() {
		return append(bindings, keys.ForceQuit)
	}
	return append(bindings, keys.Quit)
}

func (m Model) statusView() string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	status := m.status
	if err := m.preview.Err(); err != nil && !m.statusErr {
		status = "Preview could not be rendered: " + err.Error()
		style = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	}
	if m.statusErr {
		style = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	}
	return style.Width(max(1, m.width)).Render(status)
}

func (m Model) fatalView() string {
	panel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("9")).
		Padding(1, 2)

	body := lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.NewStyle().Bold(true).Render("The renderer could not be prepared"),
		"",
		m.fatal.Error(),
		"",
		"Press q to quit.",
	)
	return panel.Render(body)
}

func xmlErrorMessage(err error) string {
	if errors.Is(err, institution.ErrEmptyInput) {
		return "Enter the institution XML"
	}
	detail := strings.TrimPrefix(err.Error(), institution.ErrInvalidXML.Error()+": ")
	return "Invalid XML: " + detail
}

func describeEvent(ev curation.Event, s *curation.Session) (string, string) {
	switch ev := ev.(type) {
	case curation.LoadTree:
		return "LOAD", fmt.Sprintf("%d institutions, %d excluded", len(ev.Institutions), len(s.Excluded()))
	case curation.ToggleInstitution:
		state := "unchecked"
		if ev.Checked {
			state = "checked"
		}
		return "TOGGLE", ev.ID + " " + state
	case curation.EditExclusions:
		return "EXCLUSIONS", fmt.Sprintf("%d excluded", len(s.Excluded()))
	case curation.SetSubstitutions:
		return "RULES", fmt.Sprintf("%d rules", len(s.Rules()))
	case curation.AddSubstitution:
		rule := curation.FormatRules([]curation.Rule{{Find: ev.Find, Replace: ev.Replace}})
		return "RULES", fmt.Sprintf("add %s, %d rules", rule, len(s.Rules()))
	case curation.RemoveSubstitution:
		return "RULES", fmt.Sprintf("remove rule %d, %d rules", ev.Index+1, len(s.Rules()))
	}
	return "EVENT", fmt.Sprintf("%T", ev)
}
