package permissions

import (
	"encoding/json"
	"fmt"
	"slices"
	"sort"

	"github.com/damsoledevelopers/spireleap-console/internal/backend"
	"github.com/damsoledevelopers/spireleap-console/pkg/enums"
	pkgerrors "github.com/damsoledevelopers/spireleap-console/pkg/errors"
)

// Key is one cell of the matrix.
type Key struct {
	Module string                 `json:"module"`
	Action enums.PermissionAction `json:"action"`
}

// Editor tracks edits to one scope's matrix. The change set is maintained
// on every write: a key is in it exactly when the current value differs from
// the baseline, so Dirty never compares whole matrices.
type Editor struct {
	scope    Scope
	baseline backend.PermissionMatrix
	current  backend.PermissionMatrix
	changes  map[Key]struct{}
}

// NewEditor starts an editor whose baseline and current state are matrix.
func NewEditor(scope Scope, matrix backend.PermissionMatrix) *Editor {
	base := withDefaults(matrix)
	return &Editor{
		scope:    scope,
		baseline: base,
		current:  Clone(base),
		changes:  map[Key]struct{}{},
	}
}

func (e *Editor) Scope() Scope { return e.scope }

// Current returns a copy of the edited matrix.
func (e *Editor) Current() backend.PermissionMatrix { return Clone(e.current) }

// Baseline returns a copy of the last loaded or saved matrix.
func (e *Editor) Baseline() backend.PermissionMatrix { return Clone(e.baseline) }

// Toggle flips one action of one module.
func (e *Editor) Toggle(module string, action enums.PermissionAction) error {
	if err := e.validate(module, action); err != nil {
		return err
	}
	e.set(Key{Module: module, Action: action}, !Get(e.current[module], action))
	return nil
}

// ToggleAll sets every action of module to value.
func (e *Editor) ToggleAll(module string, value bool) error {
	if err := e.validate(module, enums.PermissionActionView); err != nil {
		return err
	}
	for _, action := range enums.PermissionActions() {
		e.set(Key{Module: module, Action: action}, value)
	}
	return nil
}

// Dirty reports whether any cell differs from the baseline.
func (e *Editor) Dirty() bool {
	return len(e.changes) > 0
}

// Changes lists the edited cells in module then action order.
func (e *Editor) Changes() []Key {
	out := make([]Key, 0, len(e.changes))
	for k := range e.changes {
		out = append(out, k)
	}
	actionOrder := enums.PermissionActions()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Module != out[j].Module {
			return out[i].Module < out[j].Module
		}
		return slices.Index(actionOrder, out[i].Action) < slices.Index(actionOrder, out[j].Action)
	})
	return out
}

// Reset discards edits.
func (e *Editor) Reset() {
	e.current = Clone(e.baseline)
	e.changes = map[Key]struct{}{}
}

// MarkSaved makes the current matrix the new baseline.
func (e *Editor) MarkSaved() {
	e.baseline = Clone(e.current)
	e.changes = map[Key]struct{}{}
}

// Modules returns the editor rows: the default modules first, then any
// extra modules the backend sent, alphabetically.
func (e *Editor) Modules() []string {
	out := append([]string(nil), DefaultModules...)
	extra := []string{}
	for module := range e.current {
		if !slices.Contains(DefaultModules, module) {
			extra = append(extra, module)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

func (e *Editor) set(key Key, value bool) {
	e.current[key.Module] = Set(e.current[key.Module], key.Action, value)
	if Get(e.baseline[key.Module], key.Action) == value {
		delete(e.changes, key)
		return
	}
	e.changes[key] = struct{}{}
}

func (e *Editor) validate(module string, action enums.PermissionAction) error {
	if _, ok := e.current[module]; !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("Unknown module %q", module))
	}
	if !action.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("Unknown action %q", action))
	}
	return nil
}

type editorState struct {
	Scope    Scope                    `json:"scope"`
	Baseline backend.PermissionMatrix `json:"baseline"`
	Current  backend.PermissionMatrix `json:"current"`
	Changes  []Key                    `json:"changes"`
}

func (e *Editor) MarshalJSON() ([]byte, error) {
	return json.Marshal(editorState{
		Scope:    e.scope,
		Baseline: e.baseline,
		Current:  e.current,
		Changes:  e.Changes(),
	})
}

func (e *Editor) UnmarshalJSON(data []byte) error {
	var state editorState
	if err := json.Unmarshal(data, &state); err != nil {
		return err
	}
	e.scope = state.Scope
	e.baseline = withDefaults(state.Baseline)
	e.current = withDefaults(state.Current)
	e.changes = make(map[Key]struct{}, len(state.Changes))
	for _, k := range state.Changes {
		e.changes[k] = struct{}{}
	}
	return nil
}

// View is what the console UI renders for an open editor.
type View struct {
	Scope       Scope                    `json:"scope"`
	Modules     []string                 `json:"modules"`
	Actions     []enums.PermissionAction `json:"actions"`
	Permissions backend.PermissionMatrix `json:"permissions"`
	Changes     []Key                    `json:"changes"`
	Dirty       bool                     `json:"dirty"`
}

func (e *Editor) View() View {
	return View{
		Scope:       e.scope,
		Modules:     e.Modules(),
		Actions:     enums.PermissionActions(),
		Permissions: e.Current(),
		Changes:     e.Changes(),
		Dirty:       e.Dirty(),
	}
}
