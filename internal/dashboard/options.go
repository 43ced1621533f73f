package dashboard

import (
	"go.uber.org/zap"

	"github.com/goliatone/go-formstate/pkg/confirm"
)

// SaveLabel is the save bar button label.
const SaveLabel = "Save"

// Option configures a page.
type Option func(*config)

type config struct {
	logger        *zap.Logger
	buttonOptions []confirm.Option
	onChange      []func()
	onButton      []func(confirm.Snapshot)
	confirmLeave  bool
}

func newConfig(opts []Option) config {
	cfg := config{logger: zap.NewNop(), confirmLeave: true}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	return cfg
}

// WithLogger attaches a logger to the page and its controllers.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithButtonOptions configures the save bar button (clock, reset delay).
func WithButtonOptions(opts ...confirm.Option) Option {
	return func(c *config) {
		c.buttonOptions = append(c.buttonOptions, opts...)
	}
}

// WithOnChange registers fn to run after any value, selection or error
// change.
func WithOnChange(fn func()) Option {
	return func(c *config) {
		if fn != nil {
			c.onChange = append(c.onChange, fn)
		}
	}
}

// WithOnButton registers fn to run after every save button transition and
// reset. Resets arrive on the button's timer goroutine.
func WithOnButton(fn func(confirm.Snapshot)) Option {
	return func(c *config) {
		if fn != nil {
			c.onButton = append(c.onButton, fn)
		}
	}
}

// WithConfirmLeave toggles the unsaved-changes prompt. Enabled by default.
func WithConfirmLeave(enabled bool) Option {
	return func(c *config) {
		c.confirmLeave = enabled
	}
}

func (c config) notify() {
	for _, fn := range c.onChange {
		fn()
	}
}

func (c config) button() *confirm.Button {
	opts := append([]confirm.Option{
		confirm.WithLogger(c.logger.Named("button")),
		confirm.WithNotify(func(snap confirm.Snapshot) {
			for _, fn := range c.onButton {
				fn(snap)
			}
		}),
	}, c.buttonOptions...)
	return confirm.New(opts...)
}
