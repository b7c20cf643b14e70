package rabbit

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/oarkflow/log"
	"github.com/oarkflow/xid"
)

// Tokenize scans source and returns the full token stream, terminated
// by the EOF token, together with any lexical diagnostics. Characters
// the scanner cannot classify are reported and skipped; they never
// appear in the stream.
func Tokenize(source string) ([]Token, []Diagnostic) {
	lexer := NewLexer(source)
	var tokens []Token
	for {
		tok := lexer.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			break
		}
	}
	return tokens, lexer.Diagnostics()
}

// ParseToTree runs the lexer and grammar engine and returns the
// concrete parse tree along with lexical diagnostics. The first
// grammar error aborts the parse; no partial tree is returned.
func ParseToTree(source string) (*ParseNode, []Diagnostic, error) {
	return parseSource(source, GetRuntimeConfig())
}

// Parse runs the full front half over source: scan, parse, and build
// the typed tree. Lexical diagnostics are logged; grammar errors come
// back as a syntax Error carrying every parser message.
func Parse(source string) (*Program, error) {
	tree, diags, err := parseSource(source, GetRuntimeConfig())
	if err != nil {
		return nil, err
	}
	logDiagnostics(&log.DefaultLogger, diags)
	return NewBuilder().Build(tree)
}

func parseSource(source string, cfg RuntimeConfig) (*ParseNode, []Diagnostic, error) {
	lexer := NewLexer(source)
	parser := NewParser(lexer)
	if cfg.MaxExpressionDepth > 0 {
		parser.maxDepth = cfg.MaxExpressionDepth
	}
	tree := parser.ParseProgram()
	diags := lexer.Diagnostics()
	if errs := parser.Errors(); len(errs) != 0 {
		return nil, diags, syntaxError(errs)
	}
	return tree, diags, nil
}

func syntaxError(errs []string) error {
	msg := "syntax error"
	if len(errs) > 0 {
		msg = errs[0]
	}
	return &Error{Code: ErrCodeSyntax, Message: msg, Details: errs}
}

func logDiagnostics(logger *log.Logger, diags []Diagnostic) {
	for _, diag := range diags {
		logger.Warn().
			Int("line", diag.Line).
			Int("column", diag.Column).
			Str("message", diag.Message).
			Msg("lexical diagnostic")
	}
}

// Runner executes scripts end to end: scan, parse, build, evaluate.
// The zero-option Runner talks to stdout and stdin. Each Run takes a
// fresh environment unless WithEnvironment pinned a shared one, so
// independent runs stay isolated without any locking.
type Runner struct {
	out    io.Writer
	in     io.Reader
	logger *log.Logger
	cache  *ProgramCache
	env    *Environment
}

func NewRunner(opts ...Option) (*Runner, error) {
	r := &Runner{
		out:    os.Stdout,
		in:     os.Stdin,
		logger: &log.DefaultLogger,
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Run parses and evaluates source, returning the program result: the
// value of the first return statement, or of the last value-producing
// statement, or nil when the program only has side effects.
func (r *Runner) Run(source string) (Value, error) {
	return r.RunContext(context.Background(), source)
}

// RunContext is Run honoring per-call runtime overrides attached to
// ctx via WithRuntimeConfigOverride.
func (r *Runner) RunContext(ctx context.Context, source string) (Value, error) {
	cfg := effectiveRuntimeConfig(ctx)
	if cfg.MaxSourceBytes > 0 && len(source) > cfg.MaxSourceBytes {
		return nil, &Error{
			Code:    ErrCodeInput,
			Message: fmt.Sprintf("source is %d bytes, limit is %d", len(source), cfg.MaxSourceBytes),
		}
	}
	runID := xid.New().String()
	if cfg.LogRunExecution {
		r.logger.Info().Str("run_id", runID).Int("source_bytes", len(source)).Msg("run started")
	}
	program, err := r.loadProgram(source, cfg)
	if err != nil {
		if cfg.LogRunExecution {
			r.logger.Error().Str("run_id", runID).Err(err).Msg("run failed")
		}
		return nil, err
	}
	result, err := r.RunProgram(program)
	if cfg.LogRunExecution {
		if err != nil {
			r.logger.Error().Str("run_id", runID).Err(err).Msg("run failed")
		} else {
			r.logger.Info().Str("run_id", runID).Msg("run completed")
		}
	}
	return result, err
}

// RunProgram evaluates an already-built program against the runner's
// environment, or a fresh one when none is pinned.
func (r *Runner) RunProgram(program *Program) (Value, error) {
	if program == nil {
		return nil, &Error{Code: ErrCodeInput, Message: "program must not be nil"}
	}
	env := r.env
	if env == nil {
		env = NewEnvironment()
	}
	return NewEvaluator(r.out, r.in).Eval(program, env)
}

func (r *Runner) loadProgram(source string, cfg RuntimeConfig) (*Program, error) {
	if r.cache != nil {
		if program, ok := r.cache.Get(source); ok {
			return program, nil
		}
	}
	tree, diags, err := parseSource(source, cfg)
	if err != nil {
		return nil, err
	}
	logDiagnostics(r.logger, diags)
	program, err := NewBuilder().Build(tree)
	if err != nil {
		return nil, err
	}
	if r.cache != nil {
		r.cache.Set(source, program)
	}
	return program, nil
}

// Close releases the program cache, if one was configured.
func (r *Runner) Close() {
	if r.cache != nil {
		r.cache.Close()
	}
}

// Run executes source with default collaborators. It is the one-call
// surface for scripts that just need stdout and stdin.
func Run(source string) (Value, error) {
	r, err := NewRunner()
	if err != nil {
		return nil, err
	}
	return r.Run(source)
}
