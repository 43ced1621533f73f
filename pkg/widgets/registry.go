package widgets

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formstate/pkg/formset"
	"github.com/goliatone/go-formstate/pkg/model"
)

// Built-in widget identifiers exposed by the registry.
const (
	WidgetToggle      = "toggle"
	WidgetSelect      = "select"
	WidgetMultiSelect = "multiselect"
	WidgetTextArea    = "textarea"
	WidgetNumber      = "number"
	WidgetText        = "text"
)

// Kind is the shape of a field's value.
type Kind string

const (
	KindText     Kind = "text"
	KindRichText Kind = "richtext"
	KindNumber   Kind = "number"
	KindBool     Kind = "bool"
	// KindList values are []string, as held by attribute formset entries.
	KindList Kind = "list"
)

// Field describes an editable input: a scalar form field or a formset
// entry.
type Field struct {
	Name      string
	Label     string
	Help      string
	Kind      Kind
	InputType model.InputType
	Choices   []model.Choice
	// Hints carries explicit overrides; Hints["widget"] bypasses matchers.
	Hints map[string]string
}

// EntryField describes a formset entry whose Data is a model.InputMeta.
func EntryField[V any](entry formset.Entry[V]) Field {
	field := Field{
		Name:  entry.ID,
		Label: entry.Label,
		Kind:  KindList,
	}
	if field.Label == "" {
		field.Label = entry.ID
	}
	switch meta := entry.Data.(type) {
	case model.InputMeta:
		field.InputType = meta.InputType
		field.Choices = meta.Values
	case *model.InputMeta:
		if meta != nil {
			field.InputType = meta.InputType
			field.Choices = meta.Values
		}
	}
	return field
}

// Matcher decides whether a widget should handle the supplied field.
type Matcher func(field Field) bool

type rule struct {
	name     string
	priority int
	match    Matcher
	order    int
}

// Registry selects widgets for fields based on explicit hints or
// registered matchers. Higher priority wins; ties fall back to registration
// order. An empty registry never resolves a widget.
type Registry struct {
	mu    sync.RWMutex
	rules []rule
}

// NewRegistry constructs a registry with the built-in widget matchers
// registered.
func NewRegistry() *Registry {
	reg := &Registry{}
	reg.registerBuiltins()
	return reg
}

// Register adds a widget matcher with the provided name and priority. Higher
// priority values take precedence.
func (r *Registry) Register(name string, priority int, matcher Matcher) {
	if r == nil || matcher == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		name:     trimmed,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// Resolve returns the widget name for a field. An explicit widget hint is
// honoured before matcher evaluation.
func (r *Registry) Resolve(field Field) (string, bool) {
	if explicit := explicitWidget(field); explicit != "" {
		return explicit, true
	}
	if r == nil {
		return "", false
	}
	r.mu.RLock()
	if len(r.rules) == 0 {
		r.mu.RUnlock()
		return "", false
	}
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(field) {
			return entry.name, true
		}
	}
	return "", false
}

// ResolveOr returns the resolved widget or fallback.
func (r *Registry) ResolveOr(field Field, fallback string) string {
	if widget, ok := r.Resolve(field); ok {
		return widget
	}
	return fallback
}

func explicitWidget(field Field) string {
	if field.Hints != nil {
		return strings.TrimSpace(field.Hints["widget"])
	}
	return ""
}

func (r *Registry) registerBuiltins() {
	r.Register(WidgetToggle, 90, func(field Field) bool {
		return field.Kind == KindBool
	})

	r.Register(WidgetMultiSelect, 80, func(field Field) bool {
		if field.InputType == model.InputTypeMultiselect {
			return true
		}
		return field.Kind == KindList && field.InputType == "" && len(field.Choices) > 0
	})

	r.Register(WidgetSelect, 70, func(field Field) bool {
		if field.InputType == model.InputTypeDropdown {
			return true
		}
		return field.Kind != KindList && len(field.Choices) > 0
	})

	r.Register(WidgetTextArea, 60, func(field Field) bool {
		if field.Kind == KindRichText {
			return true
		}
		return field.Hints != nil && strings.EqualFold(field.Hints["input"], "textarea")
	})

	r.Register(WidgetNumber, 50, func(field Field) bool {
		return field.Kind == KindNumber
	})
}
