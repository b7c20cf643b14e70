package rabbit

import "fmt"

type ValueType string

const (
	NumberType      ValueType = "NUMBER"
	StringType      ValueType = "STRING"
	ReturnValueType ValueType = "RETURN_VALUE"
)

// Value is the evaluator's closed runtime union: numbers and strings.
// ReturnValue is a control-flow wrapper the evaluator unwraps before
// results reach callers.
type Value interface {
	Type() ValueType
	Inspect() string
}

type Number struct {
	Value float64
}

func (n *Number) Type() ValueType { return NumberType }
func (n *Number) Inspect() string { return fmt.Sprintf("%g", n.Value) }

type String struct {
	Value string
}

func (s *String) Type() ValueType { return StringType }
func (s *String) Inspect() string { return s.Value }

type ReturnValue struct {
	Value Value
}

func (rv *ReturnValue) Type() ValueType { return ReturnValueType }
func (rv *ReturnValue) Inspect() string { return rv.Value.Inspect() }

// Environment maps variable names to evaluated values for one program
// execution. Created empty, mutated only by assignment, owned by
// exactly one run; concurrent runs take independent environments.
type Environment struct {
	store map[string]Value
}

func NewEnvironment() *Environment {
	return &Environment{store: make(map[string]Value)}
}

func (e *Environment) Get(name string) (Value, bool) {
	val, ok := e.store[name]
	return val, ok
}

func (e *Environment) Set(name string, val Value) Value {
	e.store[name] = val
	return val
}

// Len reports how many names are bound.
func (e *Environment) Len() int {
	return len(e.store)
}
