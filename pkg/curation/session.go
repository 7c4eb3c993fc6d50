package curation

import (
	"strings"

	"go.uber.org/zap"

	"github.com/evanschultz/instlist/pkg/models"
)

// Event is a user action fed to Session.Dispatch
type Event interface {
	eventName() string
}

// LoadTree replaces the institution tree. The exclusion set is seeded from
// the current exclusion text, or from the default patterns when the text
// is blank.
type LoadTree struct {
	Institutions []models.Institution
}

// ToggleInstitution is a checkbox change in the tree view
type ToggleInstitution struct {
	ID      string
	Checked bool
}

// EditExclusions is a committed edit of the textual exclusion list
type EditExclusions struct {
	Text string
}

// SetSubstitutions replaces the rule list from "s/FIND/REPLACE/" lines
type SetSubstitutions struct {
	Text string
}

// AddSubstitution appends one rule
type AddSubstitution struct {
	Find    string
	Replace string
}

// RemoveSubstitution drops the rule at Index
type RemoveSubstitution struct {
	Index int
}

func (LoadTree) eventName() string           { return "load_tree" }
func (ToggleInstitution) eventName() string  { return "toggle_institution" }
func (EditExclusions) eventName() string     { return "edit_exclusions" }
func (SetSubstitutions) eventName() string   { return "set_substitutions" }
func (AddSubstitution) eventName() string    { return "add_substitution" }
func (RemoveSubstitution) eventName() string { return "remove_substitution" }

// Snapshot is an immutable view of the session after a dispatch
type Snapshot struct {
	Institutions  []models.Institution
	Excluded      ExclusionSet
	ExclusionText string
	Rows          []models.Row
	Rules         []Rule
	Counts        []int
	Loaded        bool
}

// Checked reports whether id is selected in this snapshot
func (s Snapshot) Checked(id string) bool {
	return !s.Excluded.Has(id)
}

// CSV returns the generated list as CSV
func (s Snapshot) CSV() string {
	return FormatCSV(s.Rows)
}

// View renders session state. Views must treat the snapshot as read-only.
type View interface {
	Render(snapshot Snapshot)
}

// ViewFunc adapts a function to View
type ViewFunc func(Snapshot)

// Render calls f
func (f ViewFunc) Render(s Snapshot) { f(s) }

// Session owns the exclusion set, the rule list and the generated rows,
// and keeps the tree and text views consistent. All changes go through
// Dispatch; views are re-rendered from the updated model afterwards.
//
// A Session is not safe for concurrent use.
type Session struct {
	institutions  []models.Institution
	index         map[string]int
	excluded      ExclusionSet
	exclusionText string
	rules         []Rule
	pipeline      *Pipeline
	rows          []models.Row
	loaded        bool

	// syncing is set while views are being rendered. Dispatches issued
	// from inside a view are dropped.
	syncing bool
	views   []View
	logger  *zap.Logger
}

// NewSession creates an empty session
func NewSession(logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		index:    make(map[string]int),
		excluded: make(ExclusionSet),
		pipeline: NewPipeline(nil),
		logger:   logger,
	}
}

// Subscribe registers a view. It is rendered on every accepted dispatch.
func (s *Session) Subscribe(v View) {
	s.views = append(s.views, v)
}

// Dispatch applies ev, regenerates the list and renders every view.
// It returns false when the event was dropped because it arrived while
// views were being rendered.
func (s *Session) Dispatch(ev Event) bool {
	if s.syncing {
		s.logger.Debug("dropping re-entrant dispatch", zap.String("event", ev.eventName()))
		return false
	}

	switch ev := ev.(type) {
	case LoadTree:
		s.loadTree(ev.Institutions)
	case ToggleInstitution:
		s.toggle(ev.ID, ev.Checked)
	case EditExclusions:
		s.excluded = ParseExclusions(ev.Text)
		s.exclusionText = ev.Text
	case SetSubstitutions:
		s.setRules(CompileRules(ev.Text))
	case AddSubstitution:
		s.setRules(append(s.Rules(), Rule{Find: ev.Find, Replace: ev.Replace}))
	case RemoveSubstitution:
		if ev.Index < 0 || ev.Index >= len(s.rules) {
			return true
		}
		rules := s.Rules()
		s.setRules(append(rules[:ev.Index], rules[ev.Index+1:]...))
	}

	s.generate()
	s.logger.Debug("dispatched",
		zap.String("event", ev.eventName()),
		zap.Int("excluded", len(s.excluded)),
		zap.Int("rows", len(s.rows)))

	s.syncing = true
	defer func() { s.syncing = false }()

	snapshot := s.Snapshot()
	for _, v := range s.views {
		v.Render(snapshot)
	}
	return true
}

func (s *Session) loadTree(institutions []models.Institution) {
	s.institutions = append([]models.Institution(nil), institutions...)
	s.index = make(map[string]int, len(institutions))
	for i, inst := range s.institutions {
		s.index[inst.ID] = i
	}

	if strings.TrimSpace(s.exclusionText) == "" {
		s.excluded = BuildDefault(s.institutions)
	} else {
		s.excluded = ParseExclusions(s.exclusionText)
	}
	// Normalize the text view from the set
	s.exclusionText = s.excluded.String()
	s.loaded = true

	s.logger.Info("institution tree loaded",
		zap.Int("institutions", len(s.institutions)),
		zap.Int("excluded", len(s.excluded)))
}

func (s *Session) toggle(id string, checked bool) {
	i, ok := s.index[id]
	if !ok {
		s.logger.Debug("toggle for unknown institution", zap.String("id", id))
		return
	}

	if checked {
		delete(s.excluded, id)
	} else {
		s.excluded[id] = s.institutions[i].Label
	}
	s.exclusionText = s.excluded.String()
}

func (s *Session) setRules(rules []Rule) {
	s.pipeline = NewPipeline(rules)
	// NewPipeline drops rules it cannot compile
	s.rules = s.pipeline.Rules()
	if dropped := len(rules) - len(s.rules); dropped > 0 {
		s.logger.Debug("ignoring invalid rules", zap.Int("dropped", dropped))
	}
}

func (s *Session) generate() {
	if !s.loaded {
		s.rows = nil
		s.pipeline.Reset()
		return
	}
	s.rows = Generate(s.institutions, s.excluded, s.pipeline)
}

// Snapshot returns a copy of the current state
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Institutions:  append([]models.Institution(nil), s.institutions...),
		Excluded:      s.excluded.Clone(),
		ExclusionText: s.exclusionText,
		Rows:          append([]models.Row(nil), s.rows...),
		Rules:         s.Rules(),
		Counts:        s.pipeline.Counts(),
		Loaded:        s.loaded,
	}
}

// Checked reports whether the institution is selected
func (s *Session) Checked(id string) bool {
	return !s.excluded.Has(id)
}

// Excluded returns a copy of the exclusion set
func (s *Session) Excluded() ExclusionSet {
	return s.excluded.Clone()
}

// ExclusionText returns the current content of the textual view
func (s *Session) ExclusionText() string {
	return s.exclusionText
}

// Rows returns the generated list
func (s *Session) Rows() []models.Row {
	return append([]models.Row(nil), s.rows...)
}

// Rules returns a copy of the rule list
func (s *Session) Rules() []Rule {
	out := make([]Rule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Counts returns the per-rule occurrence counts of the last generation
func (s *Session) Counts() []int {
	return s.pipeline.Counts()
}

// CSV returns the generated list as CSV
func (s *Session) CSV() string {
	return FormatCSV(s.rows)
}

// Loaded reports whether a tree has been loaded
func (s *Session) Loaded() bool {
	return s.loaded
}

// Institutions returns the loaded tree in document order
func (s *Session) Institutions() []models.Institution {
	return append([]models.Institution(nil), s.institutions...)
}
