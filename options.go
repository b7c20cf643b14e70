package rabbit

import (
	"io"

	"github.com/oarkflow/log"
)

type Option func(*Runner) error

// WithOutput directs print output and input prompts to w.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) error {
		if w == nil {
			return &Error{Code: ErrCodeInput, Message: "output writer must not be nil"}
		}
		r.out = w
		return nil
	}
}

// WithInput supplies the reader input calls consume lines from. A nil
// reader disables input, making input calls fail instead of blocking.
func WithInput(rd io.Reader) Option {
	return func(r *Runner) error {
		r.in = rd
		return nil
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(r *Runner) error {
		if logger == nil {
			return &Error{Code: ErrCodeInput, Message: "logger must not be nil"}
		}
		r.logger = logger
		return nil
	}
}

// WithEnvironment pins a shared environment so bindings survive across
// Run calls, the way the REPL accumulates state line by line. Without
// it every Run starts from an empty environment.
func WithEnvironment(env *Environment) Option {
	return func(r *Runner) error {
		if env == nil {
			return &Error{Code: ErrCodeInput, Message: "environment must not be nil"}
		}
		r.env = env
		return nil
	}
}

// WithProgramCache enables source-keyed program memoization sized to
// the given number of entries; zero or negative falls back to the
// runtime config default.
func WithProgramCache(entries int64) Option {
	return func(r *Runner) error {
		cache, err := NewProgramCache(entries)
		if err != nil {
			return err
		}
		r.cache = cache
		return nil
	}
}
