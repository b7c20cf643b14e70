package rabbit

import (
	"sort"
	"strings"
	"sync"
)

// canonicalBuiltins is the closed set of names the lexical classifier
// recognizes as BUILTIN. Registration here is a classification contract
// only; whether the evaluator implements a name is a separate question.
var canonicalBuiltins = []string{
	"json.parse", "json.stringify",
	"http.get", "http.post", "http.fetch",
	"len", "split", "join", "trim",
	"sqrt", "pow", "abs", "sin", "cos", "tan",
	"rand", "randint",
	"max", "min", "sum",
	"map", "filter", "reduce", "sort", "reverse",
	"pi", "e", "inf",
}

type builtinRegistry struct {
	mu    sync.RWMutex
	names map[string]struct{}
	opts  BuiltinRegistryOptions
}

type BuiltinRegistryOptions struct {
	AllowOverride bool
	Frozen        bool
}

var (
	builtinRegistryInitOnce sync.Once
	builtinNames            = &builtinRegistry{
		names: make(map[string]struct{}),
		opts: BuiltinRegistryOptions{
			AllowOverride: false,
			Frozen:        false,
		},
	}
)

func RegisterBuiltin(name string) {
	ensureBuiltinRegistryInitialized()
	_ = builtinNames.register(name, false)
}

func RegisterBuiltinE(name string) error {
	ensureBuiltinRegistryInitialized()
	return builtinNames.register(name, false)
}

func UnregisterBuiltin(name string) error {
	ensureBuiltinRegistryInitialized()
	return builtinNames.unregister(name)
}

func SetBuiltinRegistryOptions(opts BuiltinRegistryOptions) {
	ensureBuiltinRegistryInitialized()
	builtinNames.mu.Lock()
	builtinNames.opts = opts
	builtinNames.mu.Unlock()
}

func GetBuiltinRegistryOptions() BuiltinRegistryOptions {
	ensureBuiltinRegistryInitialized()
	builtinNames.mu.RLock()
	defer builtinNames.mu.RUnlock()
	return builtinNames.opts
}

func FreezeBuiltinRegistry() {
	ensureBuiltinRegistryInitialized()
	builtinNames.mu.Lock()
	builtinNames.opts.Frozen = true
	builtinNames.mu.Unlock()
}

func UnfreezeBuiltinRegistry() {
	ensureBuiltinRegistryInitialized()
	builtinNames.mu.Lock()
	builtinNames.opts.Frozen = false
	builtinNames.mu.Unlock()
}

// IsBuiltin reports whether the full dotted name is registered. Matching
// is exact and case-sensitive; classification never splits a dotted run.
func IsBuiltin(name string) bool {
	ensureBuiltinRegistryInitialized()
	builtinNames.mu.RLock()
	defer builtinNames.mu.RUnlock()
	_, ok := builtinNames.names[strings.TrimSpace(name)]
	return ok
}

// Builtins returns the registered names in sorted order.
func Builtins() []string {
	ensureBuiltinRegistryInitialized()
	builtinNames.mu.RLock()
	defer builtinNames.mu.RUnlock()
	out := make([]string, 0, len(builtinNames.names))
	for name := range builtinNames.names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func ensureBuiltinRegistryInitialized() {
	builtinRegistryInitOnce.Do(registerCanonicalBuiltins)
}

func registerCanonicalBuiltins() {
	for _, name := range canonicalBuiltins {
		_ = builtinNames.register(name, true)
	}
}

func (r *builtinRegistry) register(name string, internal bool) error {
	n := strings.TrimSpace(name)
	if !validBuiltinName(n) {
		return &Error{Code: ErrCodeRegistry, Message: "invalid builtin name: " + name}
	}
	r.mu.Lock()
	if r.opts.Frozen && !internal {
		r.mu.Unlock()
		return &Error{Code: ErrCodeRegistry, Message: "builtin registry is frozen"}
	}
	if _, exists := r.names[n]; exists && !r.opts.AllowOverride && !internal {
		r.mu.Unlock()
		return &Error{Code: ErrCodeRegistry, Message: "builtin already exists: " + n}
	}
	r.names[n] = struct{}{}
	r.mu.Unlock()
	return nil
}

func (r *builtinRegistry) unregister(name string) error {
	n := strings.TrimSpace(name)
	if n == "" {
		return &Error{Code: ErrCodeRegistry, Message: "invalid builtin name"}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.opts.Frozen {
		return &Error{Code: ErrCodeRegistry, Message: "builtin registry is frozen"}
	}
	delete(r.names, n)
	return nil
}

// validBuiltinName requires the dotted-identifier shape the lexer can
// actually produce: non-empty identifier segments separated by single
// dots.
func validBuiltinName(name string) bool {
	if name == "" {
		return false
	}
	for _, segment := range strings.Split(name, ".") {
		if segment == "" || !isIdentifierStart(segment[0]) {
			return false
		}
		for i := 1; i < len(segment); i++ {
			if !isIdentifierChar(segment[i]) {
				return false
			}
		}
	}
	return true
}
