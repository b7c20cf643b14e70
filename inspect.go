package rabbit

import (
	"github.com/oarkflow/json"
)

// InspectAST renders the typed tree as plain maps and slices, the
// shape the HTTP service and the ast command serialize. Every node
// carries its kind under "node"; nodes with a source position carry
// "line" and "column".
func InspectAST(program *Program) map[string]any {
	if program == nil {
		return nil
	}
	statements := make([]any, 0, len(program.Statements))
	for _, stmt := range program.Statements {
		statements = append(statements, inspectStatement(stmt))
	}
	return map[string]any{
		"node":       "program",
		"statements": statements,
	}
}

// MarshalAST serializes the typed tree as JSON.
func MarshalAST(program *Program) ([]byte, error) {
	return json.Marshal(InspectAST(program))
}

func inspectStatement(stmt Statement) map[string]any {
	switch stmt := stmt.(type) {
	case *AssignStatement:
		return position(stmt.Token, map[string]any{
			"node":  "assign",
			"kind":  string(stmt.Kind),
			"name":  stmt.Name,
			"value": inspectExpression(stmt.Value),
		})
	case *ReturnStatement:
		return position(stmt.Token, map[string]any{
			"node":  "return",
			"value": inspectExpression(stmt.Value),
		})
	case *ExpressionStatement:
		return position(stmt.Token, map[string]any{
			"node":       "expr_stmt",
			"expression": inspectExpression(stmt.Expression),
		})
	}
	return map[string]any{"node": "unknown"}
}

func inspectExpression(expr Expression) map[string]any {
	switch expr := expr.(type) {
	case *NumberLiteral:
		return position(expr.Token, map[string]any{
			"node":  "number",
			"value": expr.Value,
		})
	case *StringLiteral:
		return position(expr.Token, map[string]any{
			"node":  "string",
			"value": expr.Value,
		})
	case *Variable:
		return position(expr.Token, map[string]any{
			"node": "var",
			"name": expr.Name,
		})
	case *BuiltinReference:
		return position(expr.Token, map[string]any{
			"node": "builtin",
			"name": expr.Name,
		})
	case *BinaryOp:
		return position(expr.Token, map[string]any{
			"node":  string(expr.Op),
			"op":    expr.Op.Symbol(),
			"left":  inspectExpression(expr.Left),
			"right": inspectExpression(expr.Right),
		})
	case *CallExpression:
		args := make([]any, 0, len(expr.Args))
		for _, arg := range expr.Args {
			args = append(args, inspectExpression(arg))
		}
		return position(expr.Token, map[string]any{
			"node": "call",
			"kind": string(expr.Callee),
			"name": expr.Name,
			"args": args,
		})
	case nil:
		return nil
	}
	return map[string]any{"node": "unknown"}
}

func position(tok Token, node map[string]any) map[string]any {
	node["line"] = tok.Line
	node["column"] = tok.Column
	return node
}
