package rabbit

import (
	"strconv"
	"strings"
)

// Builder rewrites the concrete parse tree into the typed AST, one case
// per grammar rule. It never evaluates. Assignments to plain variables
// are recorded in the symbol table as their unevaluated right-hand
// sides; the table is a compile-time declaration record, not a value
// cache, and is never reconciled with a runtime environment.
type Builder struct {
	symbols map[string]Expression
}

func NewBuilder() *Builder {
	return &Builder{symbols: make(map[string]Expression)}
}

// Symbols returns the declaration record from the most recent Build:
// each variable name mapped to its last assigned, unevaluated
// expression. Builtin-target assignments build an Assign node but are
// not recorded here.
func (b *Builder) Symbols() map[string]Expression {
	return b.symbols
}

func (b *Builder) Build(tree *ParseNode) (*Program, error) {
	if tree == nil || tree.Rule != RuleProgram {
		return nil, &Error{Code: ErrCodeParse, Message: "malformed parse tree: missing program root"}
	}
	b.symbols = make(map[string]Expression)
	program := &Program{}
	for _, child := range tree.Children {
		stmt, err := b.buildStatement(child)
		if err != nil {
			return nil, err
		}
		program.Statements = append(program.Statements, stmt)
	}
	return program, nil
}

func (b *Builder) buildStatement(node *ParseNode) (Statement, error) {
	if node == nil || len(node.Children) != 1 {
		return nil, &Error{Code: ErrCodeParse, Message: "malformed parse tree: statement wants one child"}
	}
	switch node.Rule {
	case RuleAssignVar, RuleAssignBuiltin:
		value, err := b.buildExpression(node.Children[0])
		if err != nil {
			return nil, err
		}
		kind := AssignVar
		if node.Rule == RuleAssignBuiltin {
			kind = AssignBuiltin
		}
		if kind == AssignVar {
			b.symbols[node.Token.Literal] = value
		}
		return &AssignStatement{Token: node.Token, Kind: kind, Name: node.Token.Literal, Value: value}, nil
	case RuleReturnStmt:
		value, err := b.buildExpression(node.Children[0])
		if err != nil {
			return nil, err
		}
		return &ReturnStatement{Token: node.Token, Value: value}, nil
	case RuleExprStmt:
		expr, err := b.buildExpression(node.Children[0])
		if err != nil {
			return nil, err
		}
		return &ExpressionStatement{Token: node.Token, Expression: expr}, nil
	default:
		return nil, &Error{Code: ErrCodeParse, Message: "unknown statement rule: " + node.Rule}
	}
}

func (b *Builder) buildExpression(node *ParseNode) (Expression, error) {
	if node == nil {
		return nil, &Error{Code: ErrCodeParse, Message: "malformed parse tree: nil expression node"}
	}
	switch node.Rule {
	case RuleNumber:
		value, err := strconv.ParseFloat(strings.ReplaceAll(node.Token.Literal, "_", ""), 64)
		if err != nil {
			return nil, &Error{Code: ErrCodeParse, Message: "invalid numeric literal: " + node.Token.Literal, Cause: err}
		}
		return &NumberLiteral{Token: node.Token, Value: value}, nil
	case RuleString:
		return &StringLiteral{Token: node.Token, Value: node.Token.Literal}, nil
	case RuleVar:
		return &Variable{Token: node.Token, Name: node.Token.Literal}, nil
	case RuleBuiltinRef:
		return &BuiltinReference{Token: node.Token, Name: node.Token.Literal}, nil
	case RuleAdd, RuleSub, RuleMul, RuleDiv, RulePow:
		if len(node.Children) != 2 {
			return nil, &Error{Code: ErrCodeParse, Message: "malformed parse tree: binary rule wants two operands"}
		}
		left, err := b.buildExpression(node.Children[0])
		if err != nil {
			return nil, err
		}
		right, err := b.buildExpression(node.Children[1])
		if err != nil {
			return nil, err
		}
		return &BinaryOp{Token: node.Token, Op: binaryOpKind(node.Rule), Left: left, Right: right}, nil
	case RuleBuiltinCall, RuleFuncCall:
		callee := CallUser
		if node.Rule == RuleBuiltinCall {
			callee = CallBuiltin
		}
		call := &CallExpression{Token: node.Token, Callee: callee, Name: node.Token.Literal}
		for _, argNode := range node.Children {
			arg, err := b.buildExpression(argNode)
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, arg)
		}
		return call, nil
	default:
		return nil, &Error{Code: ErrCodeParse, Message: "unknown expression rule: " + node.Rule}
	}
}

func binaryOpKind(rule string) BinaryOpKind {
	switch rule {
	case RuleAdd:
		return OpAdd
	case RuleSub:
		return OpSub
	case RuleMul:
		return OpMul
	case RuleDiv:
		return OpDiv
	}
	return OpPow
}
