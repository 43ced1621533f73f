package tui

import "github.com/goliatone/go-formstate/pkg/widgets"

// Theme captures optional formatting hints the driver can apply when printing
// messages. Keep minimal to avoid coupling editor logic to ANSI specifics.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
}

// Option configures the Editor.
type Option func(*Editor)

// WithPromptDriver overrides the prompt driver used by the editor.
func WithPromptDriver(driver PromptDriver) Option {
	return func(e *Editor) {
		if driver != nil {
			e.driver = driver
		}
	}
}

// WithRegistry overrides the widget registry.
func WithRegistry(registry *widgets.Registry) Option {
	return func(e *Editor) {
		if registry != nil {
			e.registry = registry
		}
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(e *Editor) {
		e.theme = theme
	}
}

// WithMaxAttempts bounds how often an invalid answer is asked again.
func WithMaxAttempts(n int) Option {
	return func(e *Editor) {
		if n > 0 {
			e.maxAttempts = n
		}
	}
}
