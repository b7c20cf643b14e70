package rabbit

import (
	"fmt"
	"strings"
)

type Node interface {
	TokenLiteral() string
	String() string
}

type Statement interface {
	Node
	statementNode()
}

type Expression interface {
	Node
	expressionNode()
}

// AssignKind distinguishes assignment to a plain variable from
// assignment to a reserved builtin name. Both carry a name and a value;
// only the tag differs, and nothing prevents shadowing a builtin.
type AssignKind string

const (
	AssignVar     AssignKind = "assign_var"
	AssignBuiltin AssignKind = "assign_builtin"
)

// CallKind is decided by the callee's lexeme kind alone.
type CallKind string

const (
	CallBuiltin CallKind = "builtin"
	CallUser    CallKind = "user"
)

type BinaryOpKind string

const (
	OpAdd BinaryOpKind = "add"
	OpSub BinaryOpKind = "sub"
	OpMul BinaryOpKind = "mul"
	OpDiv BinaryOpKind = "div"
	OpPow BinaryOpKind = "pow"
)

// Symbol returns the canonical operator spelling, so equivalent sources
// render identically regardless of which power glyph was written.
func (op BinaryOpKind) Symbol() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpPow:
		return "^"
	}
	return string(op)
}

type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) String() string {
	var sb strings.Builder
	for i, s := range p.Statements {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(s.String())
	}
	return sb.String()
}

type AssignStatement struct {
	Token Token
	Kind  AssignKind
	Name  string
	Value Expression
}

func (as *AssignStatement) statementNode()       {}
func (as *AssignStatement) TokenLiteral() string { return as.Token.Literal }
func (as *AssignStatement) String() string {
	return fmt.Sprintf("%s = %s", as.Name, as.Value.String())
}

type ReturnStatement struct {
	Token Token
	Value Expression
}

func (rs *ReturnStatement) statementNode()       {}
func (rs *ReturnStatement) TokenLiteral() string { return rs.Token.Literal }
func (rs *ReturnStatement) String() string {
	return fmt.Sprintf("return %s", rs.Value.String())
}

type ExpressionStatement struct {
	Token      Token
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Literal }
func (es *ExpressionStatement) String() string {
	if es.Expression == nil {
		return ""
	}
	return es.Expression.String()
}

type NumberLiteral struct {
	Token Token
	Value float64
}

func (nl *NumberLiteral) expressionNode()      {}
func (nl *NumberLiteral) TokenLiteral() string { return nl.Token.Literal }
func (nl *NumberLiteral) String() string       { return fmt.Sprintf("%g", nl.Value) }

type StringLiteral struct {
	Token Token
	Value string
}

func (sl *StringLiteral) expressionNode()      {}
func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Literal }
func (sl *StringLiteral) String() string       { return fmt.Sprintf("%q", sl.Value) }

type Variable struct {
	Token Token
	Name  string
}

func (v *Variable) expressionNode()      {}
func (v *Variable) TokenLiteral() string { return v.Token.Literal }
func (v *Variable) String() string       { return v.Name }

type BuiltinReference struct {
	Token Token
	Name  string
}

func (br *BuiltinReference) expressionNode()      {}
func (br *BuiltinReference) TokenLiteral() string { return br.Token.Literal }
func (br *BuiltinReference) String() string       { return br.Name }

type BinaryOp struct {
	Token Token
	Op    BinaryOpKind
	Left  Expression
	Right Expression
}

func (bo *BinaryOp) expressionNode()      {}
func (bo *BinaryOp) TokenLiteral() string { return bo.Token.Literal }
func (bo *BinaryOp) String() string {
	return fmt.Sprintf("(%s %s %s)", bo.Left.String(), bo.Op.Symbol(), bo.Right.String())
}

type CallExpression struct {
	Token  Token
	Callee CallKind
	Name   string
	Args   []Expression
}

func (ce *CallExpression) expressionNode()      {}
func (ce *CallExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *CallExpression) String() string {
	var args []string
	for _, a := range ce.Args {
		args = append(args, a.String())
	}
	return fmt.Sprintf("%s(%s)", ce.Name, strings.Join(args, ", "))
}
