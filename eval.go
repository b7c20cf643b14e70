package rabbit

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Evaluator walks the typed tree and executes the minimal dialect:
// literals, assignment, variable lookup, polymorphic +, and the print
// and input callables. All side effects flow through the injected
// collaborators, so one Evaluator per run keeps executions isolated.
type Evaluator struct {
	out io.Writer
	in  *bufio.Reader
}

// NewEvaluator builds an evaluator around the given collaborators.
// Either may be nil: a nil writer discards print output, a nil reader
// makes input calls fail instead of blocking.
func NewEvaluator(out io.Writer, in io.Reader) *Evaluator {
	ev := &Evaluator{out: out}
	if in != nil {
		ev.in = bufio.NewReader(in)
	}
	return ev
}

// Eval executes node against env. The returned value is nil for
// statements that produce nothing, such as assignments and print
// calls. A return statement stops the enclosing program and yields
// its operand as the program result.
func (ev *Evaluator) Eval(node Node, env *Environment) (Value, error) {
	switch node := node.(type) {
	case *Program:
		return ev.evalProgram(node, env)
	case *ExpressionStatement:
		return ev.Eval(node.Expression, env)
	case *AssignStatement:
		val, err := ev.evalOperand(node.Value, env)
		if err != nil {
			return nil, err
		}
		env.Set(node.Name, val)
		return nil, nil
	case *ReturnStatement:
		val, err := ev.evalOperand(node.Value, env)
		if err != nil {
			return nil, err
		}
		return &ReturnValue{Value: val}, nil
	case *NumberLiteral:
		return &Number{Value: node.Value}, nil
	case *StringLiteral:
		return &String{Value: node.Value}, nil
	case *Variable:
		return ev.lookupName(node.Name, env)
	case *BuiltinReference:
		// Builtin names carry no values of their own in the minimal
		// dialect; a bare reference resolves only if an assignment
		// bound it earlier.
		return ev.lookupName(node.Name, env)
	case *BinaryOp:
		left, err := ev.evalOperand(node.Left, env)
		if err != nil {
			return nil, err
		}
		right, err := ev.evalOperand(node.Right, env)
		if err != nil {
			return nil, err
		}
		return ev.evalBinaryOp(node.Op, left, right)
	case *CallExpression:
		return ev.evalCall(node, env)
	case nil:
		return nil, &Error{Code: ErrCodeUnsupported, Message: "cannot evaluate empty node"}
	}
	return nil, &Error{Code: ErrCodeUnsupported, Message: fmt.Sprintf("evaluation not implemented for %T", node)}
}

func (ev *Evaluator) evalProgram(program *Program, env *Environment) (Value, error) {
	var result Value
	for _, stmt := range program.Statements {
		val, err := ev.Eval(stmt, env)
		if err != nil {
			return nil, err
		}
		if ret, ok := val.(*ReturnValue); ok {
			return ret.Value, nil
		}
		if val != nil {
			result = val
		}
	}
	return result, nil
}

// evalOperand evaluates an expression that must produce a value, such
// as an operand, an argument, or the right side of an assignment.
func (ev *Evaluator) evalOperand(node Expression, env *Environment) (Value, error) {
	val, err := ev.Eval(node, env)
	if err != nil {
		return nil, err
	}
	if val == nil {
		return nil, &Error{Code: ErrCodeUnsupported, Message: "expression yields no value"}
	}
	return val, nil
}

func (ev *Evaluator) lookupName(name string, env *Environment) (Value, error) {
	if val, ok := env.Get(name); ok {
		return val, nil
	}
	return nil, &Error{Code: ErrCodeUnboundName, Message: fmt.Sprintf("unbound name %q", name)}
}

// evalBinaryOp implements the dialect's single operator. Addition of
// two numbers is numeric; any other operand mix concatenates the
// printed forms, so "a" + 1 yields "a1" rather than "a1.0". The
// remaining operators parse but are not implemented here.
func (ev *Evaluator) evalBinaryOp(op BinaryOpKind, left, right Value) (Value, error) {
	if op != OpAdd {
		return nil, &Error{
			Code:    ErrCodeUnsupported,
			Message: fmt.Sprintf("operator %q is not implemented by the minimal dialect", op.Symbol()),
		}
	}
	if ln, ok := left.(*Number); ok {
		if rn, ok := right.(*Number); ok {
			return &Number{Value: ln.Value + rn.Value}, nil
		}
	}
	return &String{Value: left.Inspect() + right.Inspect()}, nil
}

func (ev *Evaluator) evalCall(call *CallExpression, env *Environment) (Value, error) {
	switch call.Name {
	case "print":
		return ev.evalPrint(call, env)
	case "input":
		return ev.evalInput(call, env)
	}
	return nil, &Error{Code: ErrCodeUnknownCallable, Message: fmt.Sprintf("unknown callable %q", call.Name)}
}

// evalPrint writes the arguments' printed forms space-joined with a
// trailing newline and produces no value.
func (ev *Evaluator) evalPrint(call *CallExpression, env *Environment) (Value, error) {
	parts := make([]string, 0, len(call.Args))
	for _, arg := range call.Args {
		val, err := ev.evalOperand(arg, env)
		if err != nil {
			return nil, err
		}
		parts = append(parts, val.Inspect())
	}
	if ev.out != nil {
		if _, err := fmt.Fprintln(ev.out, strings.Join(parts, " ")); err != nil {
			return nil, &Error{Code: ErrCodeUnsupported, Message: "writing print output", Cause: err}
		}
	}
	return nil, nil
}

// evalInput prints the prompt without a newline, reads one line from
// the input collaborator, and yields it as a string with the line
// ending stripped.
func (ev *Evaluator) evalInput(call *CallExpression, env *Environment) (Value, error) {
	if len(call.Args) != 1 {
		return nil, &Error{
			Code:    ErrCodeInput,
			Message: fmt.Sprintf("input expects exactly one prompt argument, got %d", len(call.Args)),
		}
	}
	prompt, err := ev.evalOperand(call.Args[0], env)
	if err != nil {
		return nil, err
	}
	if ev.out != nil {
		fmt.Fprint(ev.out, prompt.Inspect())
	}
	if ev.in == nil {
		return nil, &Error{Code: ErrCodeInput, Message: "no input collaborator attached"}
	}
	line, err := ev.in.ReadString('\n')
	if err != nil && line == "" {
		return nil, &Error{Code: ErrCodeInput, Message: "reading input line", Cause: err}
	}
	return &String{Value: strings.TrimRight(line, "\r\n")}, nil
}
