package rabbit

import (
	"strings"
	"testing"
)

func parseTree(t *testing.T, input string) *ParseNode {
	t.Helper()
	parser := NewParser(NewLexer(input))
	tree := parser.ParseProgram()
	if errs := parser.Errors(); len(errs) != 0 {
		t.Fatalf("parse of %q failed: %v", input, errs)
	}
	if tree == nil {
		t.Fatalf("parse of %q returned no tree", input)
	}
	return tree
}

func TestOperatorPrecedenceAndAssociativity(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"1 + 2 / 3", "(1 + (2 / 3))"},
		{"1 + 2 ^ 3", "(1 + (2 ^ 3))"},
		{"10 - 2 - 3", "((10 - 2) - 3)"},
		{"1 + 2 + 3", "((1 + 2) + 3)"},
		// Exponentiation shares the product tier, left-associative.
		{"2 ^ 3 * 4", "((2 ^ 3) * 4)"},
		{"2 * 3 ^ 4", "((2 * 3) ^ 4)"},
		{"2 ^ 3 ^ 2", "((2 ^ 3) ^ 2)"},
		{"(1 + 2) * 3", "((1 + 2) * 3)"},
		{"2 * (3 + 4)", "(2 * (3 + 4))"},
		{"2 / 2 + 1", "((2 / 2) + 1)"},
	}
	for _, tt := range tests {
		program, err := Parse(tt.input)
		if err != nil {
			t.Fatalf("parse of %q failed: %v", tt.input, err)
		}
		if got := program.String(); got != tt.expected {
			t.Fatalf("input %q: expected %q, got %q", tt.input, tt.expected, got)
		}
	}
}

func TestPowerGlyphParsesLikeCaret(t *testing.T) {
	caret := parseTree(t, "r^2").String()
	glyph := parseTree(t, "r²").String()
	if caret != glyph {
		t.Fatalf("expected equivalent shapes, got %q and %q", caret, glyph)
	}
	expected := "(program (expr_stmt (pow (var r) (number 2))))"
	if caret != expected {
		t.Fatalf("expected %q, got %q", expected, caret)
	}

	cube := parseTree(t, "x³").String()
	if cube != "(program (expr_stmt (pow (var x) (number 3))))" {
		t.Fatalf("unexpected cube shape %q", cube)
	}
}

func TestGlyphInsideLargerExpression(t *testing.T) {
	tree := parseTree(t, "area = pi * r²")
	expected := "(program (assign_var area (pow (mul (builtin pi) (var r)) (number 2))))"
	if got := tree.String(); got != expected {
		t.Fatalf("expected %q, got %q", expected, got)
	}
}

func TestAssignmentKinds(t *testing.T) {
	tree := parseTree(t, "x = 1")
	if got := tree.String(); got != "(program (assign_var x (number 1)))" {
		t.Fatalf("unexpected shape %q", got)
	}

	tree = parseTree(t, "pi = 3")
	if got := tree.String(); got != "(program (assign_builtin pi (number 3)))" {
		t.Fatalf("unexpected shape %q", got)
	}
}

func TestCallProductions(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"sqrt(4)", "(program (expr_stmt (builtin_call sqrt (number 4))))"},
		{"rand()", "(program (expr_stmt (builtin_call rand)))"},
		{"shout(4)", "(program (expr_stmt (func_call shout (number 4))))"},
		{"max(1, 2 + 3)", "(program (expr_stmt (builtin_call max (number 1) (add (number 2) (number 3)))))"},
		{"json.parse(raw)", "(program (expr_stmt (builtin_call json.parse (var raw))))"},
		// Without an adjacent '(' a builtin name is a bare reference.
		{"pi", "(program (expr_stmt (builtin pi)))"},
		{"pi + 1", "(program (expr_stmt (add (builtin pi) (number 1))))"},
	}
	for _, tt := range tests {
		tree := parseTree(t, tt.input)
		if got := tree.String(); got != tt.expected {
			t.Fatalf("input %q: expected %q, got %q", tt.input, tt.expected, got)
		}
	}
}

func TestReturnStatement(t *testing.T) {
	tree := parseTree(t, "return 1 + 2")
	expected := "(program (return_stmt (add (number 1) (number 2))))"
	if got := tree.String(); got != expected {
		t.Fatalf("expected %q, got %q", expected, got)
	}
}

func TestSemicolonsAreOptional(t *testing.T) {
	terminated := parseTree(t, "x = 1; y = 2;").String()
	bare := parseTree(t, "x = 1\ny = 2").String()
	if terminated != bare {
		t.Fatalf("expected identical programs, got %q and %q", terminated, bare)
	}
	if !strings.Contains(terminated, "(assign_var x") || !strings.Contains(terminated, "(assign_var y") {
		t.Fatalf("expected two assignments, got %q", terminated)
	}
}

func TestAdjacentExpressionsAreTwoStatements(t *testing.T) {
	tree := parseTree(t, "5 (3)")
	expected := "(program (expr_stmt (number 5)) (expr_stmt (number 3)))"
	if got := tree.String(); got != expected {
		t.Fatalf("expected %q, got %q", expected, got)
	}
}

func TestEmptyProgram(t *testing.T) {
	tree := parseTree(t, "")
	if len(tree.Children) != 0 {
		t.Fatalf("expected no statements, got %d", len(tree.Children))
	}
}

func TestFirstSyntaxErrorIsFatal(t *testing.T) {
	inputs := []string{
		"1 +",
		"x =",
		") + 2",
		"x = ;",
		"sqrt(1,)",
		"return",
		"; x = 1",
	}
	for _, input := range inputs {
		parser := NewParser(NewLexer(input))
		tree := parser.ParseProgram()
		if tree != nil {
			t.Fatalf("input %q: expected no tree, got %s", input, tree.String())
		}
		if len(parser.Errors()) == 0 {
			t.Fatalf("input %q: expected parser errors", input)
		}
	}
}

func TestSyntaxErrorNamesOffendingToken(t *testing.T) {
	parser := NewParser(NewLexer("x = (1 + 2"))
	if tree := parser.ParseProgram(); tree != nil {
		t.Fatalf("expected no tree")
	}
	errs := parser.Errors()
	if len(errs) == 0 {
		t.Fatalf("expected parser errors")
	}
	if !strings.Contains(errs[0], "expected next token to be )") {
		t.Fatalf("expected missing-paren message, got %q", errs[0])
	}
}

func TestExpressionDepthLimit(t *testing.T) {
	orig := GetRuntimeConfig()
	t.Cleanup(func() { SetRuntimeConfig(orig) })
	cfg := orig
	cfg.MaxExpressionDepth = 3
	SetRuntimeConfig(cfg)

	parser := NewParser(NewLexer("((((1))))"))
	if tree := parser.ParseProgram(); tree != nil {
		t.Fatalf("expected depth-limited parse to fail")
	}
	if len(parser.Errors()) == 0 {
		t.Fatalf("expected depth error")
	}

	parser = NewParser(NewLexer("1 + 1"))
	if tree := parser.ParseProgram(); tree == nil {
		t.Fatalf("shallow expression should still parse: %v", parser.Errors())
	}
}

func TestParseIsDeterministic(t *testing.T) {
	input := "x = 1_0 * (2 + pi)\nprint(x)\nreturn x ^ 2"
	first, err := Parse(input)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	second, err := Parse(input)
	if err != nil {
		t.Fatalf("reparse failed: %v", err)
	}
	if first.String() != second.String() {
		t.Fatalf("expected identical programs, got %q and %q", first.String(), second.String())
	}
}
