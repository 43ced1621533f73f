// Package tui edits form fields and formset entries from the terminal.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-formstate/pkg/formset"
	"github.com/goliatone/go-formstate/pkg/model"
	"github.com/goliatone/go-formstate/pkg/widgets"
)

const defaultMaxAttempts = 5

// ApplyFunc receives the answer for a field. A returned error is shown and
// the field is asked again.
type ApplyFunc func(value any) error

// Editor prompts for field values and feeds them back through change
// events.
type Editor struct {
	driver      PromptDriver
	registry    *widgets.Registry
	theme       Theme
	maxAttempts int
}

// NewEditor constructs an editor with defaults (survey driver, built-in
// widget registry).
func NewEditor(options ...Option) *Editor {
	e := &Editor{
		driver:      NewSurveyDriver(),
		registry:    widgets.NewRegistry(),
		maxAttempts: defaultMaxAttempts,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	return e
}

// EditFormset prompts for every entry in order and applies each answer
// with Formset.Change. Entries describe their input with model.InputMeta.
func (e *Editor) EditFormset(ctx context.Context, fs *formset.Formset[[]string], apply func(id string, values []string) error) error {
	for _, entry := range fs.All() {
		field := widgets.EntryField(entry)
		err := e.EditField(ctx, field, entry.Value, func(value any) error {
			values, ok := formset.Strings(value)
			if !ok {
				return fmt.Errorf("unsupported value %T", value)
			}
			if apply != nil {
				return apply(entry.ID, values)
			}
			fs.Change(entry.ID, values)
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// EditForm prompts for each field, reading defaults from values and sending
// answers to change as model.ChangeEvent.
func (e *Editor) EditForm(ctx context.Context, fields []widgets.Field, values map[string]any, change func(model.ChangeEvent) error) error {
	for _, field := range fields {
		err := e.EditField(ctx, field, values[field.Name], func(value any) error {
			return change(model.Change(field.Name, value))
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// EditField prompts for one field with the widget the registry resolves
// and hands the answer to apply, retrying on rejected answers.
func (e *Editor) EditField(ctx context.Context, field widgets.Field, current any, apply ApplyFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	widget := e.registry.ResolveOr(field, widgets.WidgetText)
	label := field.Label
	if label == "" {
		label = field.Name
	}

	for attempt := 1; ; attempt++ {
		value, err := e.ask(ctx, widget, label, field, current)
		if err != nil {
			return err
		}
		err = apply(value)
		if err == nil {
			return nil
		}
		_ = e.driver.Info(ctx, fmt.Sprintf("%sInvalid %s: %v", e.theme.ErrorPrefix, field.Name, err))
		if attempt >= e.maxAttempts {
			return fmt.Errorf("tui: %s: %w", field.Name, err)
		}
	}
}

func (e *Editor) ask(ctx context.Context, widget, label string, field widgets.Field, current any) (any, error) {
	switch widget {
	case widgets.WidgetToggle:
		b, _ := current.(bool)
		return e.driver.Confirm(ctx, ConfirmConfig{Message: label, Default: b, Help: field.Help})

	case widgets.WidgetSelect:
		if len(field.Choices) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrNoChoices, field.Name)
		}
		options, values := choiceLists(field.Choices)
		idx, err := e.driver.Select(ctx, SelectConfig{
			Message:      label,
			Options:      options,
			DefaultIndex: indexOf(values, firstString(current)),
			Help:         field.Help,
		})
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(values) {
			return nil, fmt.Errorf("tui: %s: selection out of range", field.Name)
		}
		if field.Kind == widgets.KindList {
			return []string{values[idx]}, nil
		}
		return values[idx], nil

	case widgets.WidgetMultiSelect:
		if len(field.Choices) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrNoChoices, field.Name)
		}
		options, values := choiceLists(field.Choices)
		selected, _ := formset.Strings(current)
		indices, err := e.driver.MultiSelect(ctx, SelectConfig{
			Message:  label,
			Options:  options,
			Defaults: indicesOf(values, selected),
			Help:     field.Help,
		})
		if err != nil {
			return nil, err
		}
		return valuesAt(values, indices), nil

	case widgets.WidgetTextArea:
		return e.driver.TextArea(ctx, TextAreaConfig{Message: label, Default: toText(current), Help: field.Help})

	case widgets.WidgetNumber:
		return e.driver.Input(ctx, InputConfig{
			Message: label,
			Default: toText(current),
			Help:    field.Help,
			Validator: func(s string) error {
				if strings.TrimSpace(s) == "" {
					return nil
				}
				_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
				return err
			},
		})

	default:
		text, err := e.driver.Input(ctx, InputConfig{Message: label, Default: toText(current), Help: field.Help})
		if err != nil {
			return nil, err
		}
		if field.Kind == widgets.KindList {
			if strings.TrimSpace(text) == "" {
				return []string{}, nil
			}
			return []string{text}, nil
		}
		return text, nil
	}
}

// Info prints a message through the driver.
func (e *Editor) Info(ctx context.Context, msg string) error {
	return e.driver.Info(ctx, e.theme.InfoPrefix+msg)
}

// IsAborted reports whether err came from the user cancelling a prompt.
func IsAborted(err error) bool {
	return errors.Is(err, ErrAborted)
}

func choiceLists(choices []model.Choice) (labels, values []string) {
	labels = make([]string, len(choices))
	values = make([]string, len(choices))
	for i, c := range choices {
		labels[i] = c.Label
		if labels[i] == "" {
			labels[i] = c.Value
		}
		values[i] = c.Value
	}
	return labels, values
}

func valuesAt(values []string, indices []int) []string {
	out := make([]string, 0, len(indices))
	for _, idx := range indices {
		if idx >= 0 && idx < len(values) {
			out = append(out, values[idx])
		}
	}
	return out
}

func firstString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	default:
		list, _ := formset.Strings(value)
		if len(list) > 0 {
			return list[0]
		}
		return ""
	}
}

func toText(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []string:
		return strings.Join(v, ", ")
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
