package form

import (
	"context"

	"go.uber.org/zap"

	"github.com/goliatone/go-formstate/pkg/confirm"
	"github.com/goliatone/go-formstate/pkg/model"
)

// SubmitFunc persists a snapshot of the form values. User errors describe
// business-rule violations; a non-nil error means the submission itself
// failed.
type SubmitFunc func(ctx context.Context, data map[string]any) ([]model.UserError, error)

// Option configures a Form.
type Option func(*Form)

// WithSubmit sets the function Submit calls.
func WithSubmit(fn SubmitFunc) Option {
	return func(f *Form) {
		f.submit = fn
	}
}

// WithButton attaches the confirm button Submit drives.
func WithButton(button *confirm.Button) Option {
	return func(f *Form) {
		f.button = button
	}
}

// WithConfirmLeave makes ConfirmLeave report unsaved changes.
func WithConfirmLeave(enabled bool) Option {
	return func(f *Form) {
		f.confirmLeave = enabled
	}
}

// WithOnChange registers fn to run after every value, error or reset
// change.
func WithOnChange(fn func()) Option {
	return func(f *Form) {
		if fn != nil {
			f.onChange = append(f.onChange, fn)
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(f *Form) {
		if logger != nil {
			f.logger = logger
		}
	}
}
