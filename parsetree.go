package rabbit

import "strings"

// Grammar rule names carried on parse tree nodes. The builder switches
// on these; they are the contract between the grammar engine and the
// AST builder.
const (
	RuleProgram       = "program"
	RuleAssignVar     = "assign_var"
	RuleAssignBuiltin = "assign_builtin"
	RuleReturnStmt    = "return_stmt"
	RuleExprStmt      = "expr_stmt"
	RuleAdd           = "add"
	RuleSub           = "sub"
	RuleMul           = "mul"
	RuleDiv           = "div"
	RulePow           = "pow"
	RuleNumber        = "number"
	RuleString        = "string"
	RuleVar           = "var"
	RuleBuiltinRef    = "builtin"
	RuleBuiltinCall   = "builtin_call"
	RuleFuncCall      = "func_call"
)

// ParseNode is grammar-rule-shaped: syntactic structure only, no
// semantics. The tree lives for one parse call and is discarded once
// the builder has consumed it. Leaves carry their source token; binary
// nodes carry the operator token, assignment and call nodes the name
// token.
type ParseNode struct {
	Rule     string
	Token    Token
	Children []*ParseNode
}

// String renders the tree as an s-expression, which keeps grammar tests
// readable: (add (number 2) (mul (number 3) (number 4))).
func (n *ParseNode) String() string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteByte('(')
	sb.WriteString(n.Rule)
	switch n.Rule {
	case RuleNumber, RuleString, RuleVar, RuleBuiltinRef,
		RuleAssignVar, RuleAssignBuiltin, RuleBuiltinCall, RuleFuncCall:
		sb.WriteByte(' ')
		sb.WriteString(n.Token.Literal)
	}
	for _, child := range n.Children {
		sb.WriteByte(' ')
		sb.WriteString(child.String())
	}
	sb.WriteByte(')')
	return sb.String()
}
