package expect

import (
	"sort"
	"strings"
)

// ActionKind tags the HandlerAction sum type (spec.md §4.4).
type ActionKind int

const (
	ActionContinue ActionKind = iota
	ActionReturn
	ActionAbort
	ActionRespond
)

// HandlerAction is the result of a persistent before/after handler:
// Continue lets the engine proceed normally, Return/Abort end the expect
// with a success/error outcome respectively, and Respond writes text to
// the transport before continuing (spec.md §4.4).
type HandlerAction struct {
	Kind    ActionKind
	Payload string // the string for Return/Abort/Respond; unused for Continue
}

// Continue is the default, no-op handler outcome.
var Continue = HandlerAction{Kind: ActionContinue}

// Return produces a successful early-exit outcome carrying s.
func Return(s string) HandlerAction { return HandlerAction{Kind: ActionReturn, Payload: s} }

// Abort produces an error outcome carrying message s.
func Abort(s string) HandlerAction { return HandlerAction{Kind: ActionAbort, Payload: s} }

// Respond writes s to the transport and lets the engine continue.
func Respond(s string) HandlerAction { return HandlerAction{Kind: ActionRespond, Payload: s} }

// Handler is the callback signature for persistent patterns, modeled as an
// explicit function type (not a bare interface{}) per spec.md §9's guidance
// to structurally enforce the callback shape.
type Handler func(bufferView string) HandlerAction

// PersistentPattern is a registered before/after handler: a literal string
// to look for, the handler to invoke, an enabled flag, and a priority
// (lower runs first; ties break by insertion order) — spec.md §4.4.
type PersistentPattern struct {
	id       int
	Pattern  string
	Handler  Handler
	Enabled  bool
	Priority int
	seq      int // insertion order, for stable tie-break
	firedTo  int // buffer offset through the last occurrence this handler responded to
}

// PatternManager stores two independently-ordered sets of persistent
// handlers: before-handlers run at the top of every ExpectEngine
// iteration, after-handlers run once a match has been consumed.
type PatternManager struct {
	before map[int]*PersistentPattern
	after  map[int]*PersistentPattern
	nextID int
	seq    int
}

// NewPatternManager creates an empty manager.
func NewPatternManager() *PatternManager {
	return &PatternManager{before: make(map[int]*PersistentPattern), after: make(map[int]*PersistentPattern)}
}

// AddBefore registers a before-handler with default priority 0 and returns
// its id for later removal/lookup.
func (m *PatternManager) AddBefore(pattern string, h Handler) int {
	return m.add(m.before, pattern, h, 0)
}

// AddAfter registers an after-handler.
func (m *PatternManager) AddAfter(pattern string, h Handler) int {
	return m.add(m.after, pattern, h, 0)
}

// AddBeforeWithPriority registers a before-handler with an explicit priority.
func (m *PatternManager) AddBeforeWithPriority(pattern string, h Handler, priority int) int {
	return m.add(m.before, pattern, h, priority)
}

// AddAfterWithPriority registers an after-handler with an explicit priority.
func (m *PatternManager) AddAfterWithPriority(pattern string, h Handler, priority int) int {
	return m.add(m.after, pattern, h, priority)
}

func (m *PatternManager) add(set map[int]*PersistentPattern, pattern string, h Handler, priority int) int {
	m.nextID++
	id := m.nextID
	m.seq++
	set[id] = &PersistentPattern{id: id, Pattern: pattern, Handler: h, Enabled: true, Priority: priority, seq: m.seq}
	return id
}

// RemoveBefore deletes a before-handler by id.
func (m *PatternManager) RemoveBefore(id int) { delete(m.before, id) }

// RemoveAfter deletes an after-handler by id.
func (m *PatternManager) RemoveAfter(id int) { delete(m.after, id) }

// EnableBefore toggles a before-handler without removing it.
func (m *PatternManager) EnableBefore(id int, enabled bool) {
	if p, ok := m.before[id]; ok {
		p.Enabled = enabled
	}
}

// EnableAfter toggles an after-handler without removing it.
func (m *PatternManager) EnableAfter(id int, enabled bool) {
	if p, ok := m.after[id]; ok {
		p.Enabled = enabled
	}
}

// ClearBefore removes all before-handlers.
func (m *PatternManager) ClearBefore() { m.before = make(map[int]*PersistentPattern) }

// ClearAfter removes all after-handlers.
func (m *PatternManager) ClearAfter() { m.after = make(map[int]*PersistentPattern) }

// ClearAll removes all handlers.
func (m *PatternManager) ClearAll() { m.ClearBefore(); m.ClearAfter() }

// BeforeCount reports how many before-handlers are registered.
func (m *PatternManager) BeforeCount() int { return len(m.before) }

// AfterCount reports how many after-handlers are registered.
func (m *PatternManager) AfterCount() int { return len(m.after) }

// CheckBefore evaluates enabled before-handlers against view, in priority
// order (ties by insertion order), returning the first non-Continue
// action.
func (m *PatternManager) CheckBefore(view string) (HandlerAction, bool) {
	return checkPatterns(m.before, view)
}

// CheckAfter evaluates enabled after-handlers against view.
func (m *PatternManager) CheckAfter(view string) (HandlerAction, bool) {
	return checkPatterns(m.after, view)
}

func checkPatterns(set map[int]*PersistentPattern, view string) (HandlerAction, bool) {
	ordered := make([]*PersistentPattern, 0, len(set))
	for _, p := range set {
		if p.Enabled {
			ordered = append(ordered, p)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Priority != ordered[j].Priority {
			return ordered[i].Priority < ordered[j].Priority
		}
		return ordered[i].seq < ordered[j].seq
	})

	for _, p := range ordered {
		idx := strings.Index(view, p.Pattern)
		if idx < 0 {
			continue
		}
		// Skip an occurrence this handler already responded to — otherwise
		// a Respond action re-fires every loop iteration until the matched
		// text scrolls out of the buffer, since nothing else consumes it.
		end := idx + len(p.Pattern)
		if end <= p.firedTo {
			continue
		}
		action := p.Handler(view)
		if action.Kind == ActionRespond {
			p.firedTo = end
		}
		if action.Kind != ActionContinue {
			return action, true
		}
	}
	return Continue, false
}

// WithPasswordHandler registers a before-handler that responds with
// password+"\n" whenever the view contains "assword", so both "Password"
// and "password" prompts trigger it. Convenience
// constructor carried over from the distilled source's PatternBuilder.
func (m *PatternManager) WithPasswordHandler(password string) *PatternManager {
	m.AddBefore("assword", func(string) HandlerAction { return Respond(password + "\n") })
	return m
}

// WithSudoHandler registers a before-handler that responds to a sudo
// password prompt.
func (m *PatternManager) WithSudoHandler(password string) *PatternManager {
	m.AddBefore("[sudo]", func(string) HandlerAction { return Respond(password + "\n") })
	return m
}

// WithYesNoHandler registers a before-handler that answers "(yes/no)"
// prompts.
func (m *PatternManager) WithYesNoHandler(answer string) *PatternManager {
	m.AddBefore("(yes/no)", func(string) HandlerAction { return Respond(answer + "\n") })
	return m
}

// WithContinueHandler registers a before-handler that presses Enter on
// "[Press Enter to continue]"-style prompts.
func (m *PatternManager) WithContinueHandler() *PatternManager {
	m.AddBefore("ress Enter", func(string) HandlerAction { return Respond("\n") })
	return m
}
