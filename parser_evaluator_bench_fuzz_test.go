package rabbit

import (
	"strings"
	"testing"

	"github.com/oarkflow/expr"
)

func BenchmarkLexerSimpleScript(b *testing.B) {
	source := `area = pi * r²
total = 1_000 + area * 2
print("area", area, "total", total)
return total`
	lexer := NewLexer(source)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		lexer.Reset(source)
		for lexer.NextToken().Type != EOF {
		}
	}
}

func BenchmarkParserSimpleScript(b *testing.B) {
	source := `area = pi * r²
total = 1_000 + area * 2
print("area", area, "total", total)
return total`
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		p := NewParser(NewLexer(source))
		tree := p.ParseProgram()
		if tree == nil || len(p.Errors()) > 0 {
			b.Fatalf("parse failed: %v", p.Errors())
		}
	}
}

func BenchmarkBuilderSimpleScript(b *testing.B) {
	p := NewParser(NewLexer("x = 1 + 2 * 3\nreturn x ^ 2"))
	tree := p.ParseProgram()
	if tree == nil || len(p.Errors()) > 0 {
		b.Fatalf("parse failed: %v", p.Errors())
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := NewBuilder().Build(tree); err != nil {
			b.Fatalf("build failed: %v", err)
		}
	}
}

// --- Simple arithmetic against the expr baseline: 1 + 2 + 3 ---

func Benchmark_Rabbit_Math_ParseAndEval(b *testing.B) {
	input := "1 + 2 + 3"
	for i := 0; i < b.N; i++ {
		p := NewParser(NewLexer(input))
		tree := p.ParseProgram()
		program, err := NewBuilder().Build(tree)
		if err != nil {
			b.Fatal(err)
		}
		if _, err := NewEvaluator(nil, nil).Eval(program, NewEnvironment()); err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_Expr_Math_ParseAndEval(b *testing.B) {
	input := "1 + 2 + 3"
	for i := 0; i < b.N; i++ {
		program, err := expr.Compile(input)
		if err != nil {
			b.Fatal(err)
		}
		expr.Run(program, nil)
	}
}

func Benchmark_Rabbit_Math_EvalOnly(b *testing.B) {
	input := "1 + 2 + 3"
	p := NewParser(NewLexer(input))
	program, err := NewBuilder().Build(p.ParseProgram())
	if err != nil {
		b.Fatal(err)
	}
	evaluator := NewEvaluator(nil, nil)
	env := NewEnvironment()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := evaluator.Eval(program, env); err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_Expr_Math_EvalOnly(b *testing.B) {
	input := "1 + 2 + 3"
	program, err := expr.Compile(input)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		expr.Run(program, nil)
	}
}

// --- Variables: x + y ---

func Benchmark_Rabbit_Vars_EvalOnly(b *testing.B) {
	input := "x + y"
	p := NewParser(NewLexer(input))
	program, err := NewBuilder().Build(p.ParseProgram())
	if err != nil {
		b.Fatal(err)
	}
	evaluator := NewEvaluator(nil, nil)
	env := NewEnvironment()
	env.Set("x", &Number{Value: 10})
	env.Set("y", &Number{Value: 20})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := evaluator.Eval(program, env); err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_Expr_Vars_EvalOnly(b *testing.B) {
	input := "x + y"
	env := map[string]interface{}{
		"x": 10,
		"y": 20,
	}
	program, err := expr.Compile(input, expr.Env(env))
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		expr.Run(program, env)
	}
}

func FuzzParserNoPanic(f *testing.F) {
	seeds := []string{
		"x = 1",
		"area = pi * r²",
		"data = json.parse(input_str)",
		`print("hello", 42)`,
		"5 (3)",
		"return 1 + 2 * 3",
		"names = [1, 2]; pick = choice(names)",
		"total = 1_000_000.5 ^ 2",
	}
	for _, s := range seeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, source string) {
		if strings.TrimSpace(source) == "" {
			return
		}
		defer func() {
			if r := recover(); r != nil {
				t.Fatalf("front end panicked for source %q: %v", source, r)
			}
		}()
		tree, _, err := parseSource(source, GetRuntimeConfig())
		if err != nil || tree == nil {
			return
		}
		_, _ = NewBuilder().Build(tree)
	})
}

func FuzzLexerNoPanic(f *testing.F) {
	f.Add("r² + x³")
	f.Add(`s = "unterminated`)
	f.Add("a.2 @ #")
	f.Add("1_")
	f.Fuzz(func(t *testing.T, source string) {
		defer func() {
			if r := recover(); r != nil {
				t.Fatalf("lexer panicked for source %q: %v", source, r)
			}
		}()
		lexer := NewLexer(source)
		// One lexeme consumes at least one byte, so this bound is only
		// reachable if the scanner stops advancing.
		for i := 0; i < len(source)+16; i++ {
			if lexer.NextToken().Type == EOF {
				return
			}
		}
		t.Fatalf("lexer did not reach EOF for source %q", source)
	})
}
