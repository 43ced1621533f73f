package form

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.uber.org/zap"

	"github.com/goliatone/go-formstate/pkg/confirm"
	"github.com/goliatone/go-formstate/pkg/model"
)

// Form tracks the values of one mounted form.
type Form struct {
	mu           sync.RWMutex
	initial      map[string]any
	values       map[string]any
	errors       ErrorMapping
	submitting   bool
	submit       SubmitFunc
	button       *confirm.Button
	confirmLeave bool
	onChange     []func()
	logger       *zap.Logger
}

// Result describes a completed submission.
type Result struct {
	Errors ErrorMapping `json:"errors"`
}

// OK reports whether the submission returned no user errors.
func (r Result) OK() bool { return r.Errors.Empty() }

// New creates a form seeded with initial. The map is copied.
func New(initial map[string]any, opts ...Option) *Form {
	f := &Form{
		initial: cloneValues(initial),
		values:  cloneValues(initial),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(f)
	}
	return f
}

// Change applies an input event. Target.Name is a dotted path.
func (f *Form) Change(event model.ChangeEvent) error {
	name := strings.TrimSpace(event.Target.Name)
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidPath)
	}
	f.mu.Lock()
	err := setPath(f.values, name, deepCopy(event.Target.Value))
	f.mu.Unlock()
	if err != nil {
		return err
	}
	f.changed()
	return nil
}

// Data returns a deep copy of the current values.
func (f *Form) Data() map[string]any {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return cloneValues(f.values)
}

// Value resolves a dotted path in the current values.
func (f *Form) Value(path string) (any, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := getPath(f.values, path)
	return deepCopy(v), ok
}

// HasChanged reports whether the values differ from the initial snapshot.
// Nil and empty collections compare equal.
func (f *Form) HasChanged() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return !cmp.Equal(f.initial, f.values, cmpopts.EquateEmpty())
}

// ConfirmLeave reports whether navigating away should ask for
// confirmation.
func (f *Form) ConfirmLeave() bool {
	return f.confirmLeave && f.HasChanged()
}

// Errors returns field-level errors from the last submission.
func (f *Form) Errors() map[string][]string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if len(f.errors.Fields) == 0 {
		return nil
	}
	out := make(map[string][]string, len(f.errors.Fields))
	for k, v := range f.errors.Fields {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// FormErrors returns form-level errors from the last submission.
func (f *Form) FormErrors() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]string(nil), f.errors.Form...)
}

// Button returns the attached confirm button, if any.
func (f *Form) Button() *confirm.Button {
	return f.button
}

// Submitting reports whether a submission is running.
func (f *Form) Submitting() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.submitting
}

// Reset reseeds the form, dropping values and errors. Used when the edited
// record changes out of band.
func (f *Form) Reset(initial map[string]any) {
	f.mu.Lock()
	f.initial = cloneValues(initial)
	f.values = cloneValues(initial)
	f.errors = ErrorMapping{}
	f.mu.Unlock()
	f.changed()
}

// Submit sends a snapshot of the values to the submit function. The
// attached button goes to loading first, then to error when the
// submission fails or returns user errors, or success otherwise. On
// success the submitted snapshot becomes the new initial state. A failed
// submission clears the errors of the previous one.
func (f *Form) Submit(ctx context.Context) (Result, error) {
	if f.submit == nil {
		return Result{}, ErrNoSubmit
	}
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return Result{}, ErrSubmitInFlight
	}
	f.submitting = true
	data := cloneValues(f.values)
	known := fieldPaths(f.initial)
	for path := range fieldPaths(f.values) {
		known[path] = struct{}{}
	}
	f.mu.Unlock()

	f.button.SetState(confirm.StateLoading)
	userErrs, err := f.submit(ctx, cloneValues(data))

	f.mu.Lock()
	f.submitting = false
	if err != nil {
		f.errors = ErrorMapping{}
		f.mu.Unlock()
		f.logger.Warn("form submit failed", zap.Error(err))
		f.button.SetState(confirm.StateError)
		f.changed()
		return Result{}, fmt.Errorf("form: submit: %w", err)
	}

	mapping := MapUserErrors(known, userErrs)
	f.errors = mapping
	if mapping.Empty() {
		f.initial = data
	}
	f.mu.Unlock()

	if mapping.Empty() {
		f.button.SetState(confirm.StateSuccess)
	} else {
		f.logger.Debug("form submit returned user errors",
			zap.Int("fields", len(mapping.Fields)),
			zap.Int("form", len(mapping.Form)),
		)
		f.button.SetState(confirm.StateError)
	}
	f.changed()
	return Result{Errors: mapping}, nil
}

func (f *Form) changed() {
	for _, fn := range f.onChange {
		fn()
	}
}
