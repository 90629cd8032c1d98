package domain

import (
	"fmt"
	"strconv"
)

// Predicate is a boolean expression over the GameState.
// It is evaluated against the live state every time it is reached.
type Predicate interface {
	Eval(g *GameState) bool
	String() string
}

// CompareOp is a counter comparison operator.
type CompareOp string

const (
	OpLT CompareOp = "<"
	OpLE CompareOp = "<="
	OpEQ CompareOp = "=="
	OpNE CompareOp = "!="
	OpGE CompareOp = ">="
	OpGT CompareOp = ">"
)

// Compare applies the operator to a and b.
func (op CompareOp) Compare(a, b int) bool {
	switch op {
	case OpLT:
		return a < b
	case OpLE:
		return a <= b
	case OpEQ:
		return a == b
	case OpNE:
		return a != b
	case OpGE:
		return a >= b
	case OpGT:
		return a > b
	}
	return false
}

// Valid reports whether op is a known operator.
func (op CompareOp) Valid() bool {
	switch op {
	case OpLT, OpLE, OpEQ, OpNE, OpGE, OpGT:
		return true
	}
	return false
}

// FlagPred is true when the flag equals Want.
type FlagPred struct {
	Name string
	Want bool
}

func (p FlagPred) Eval(g *GameState) bool { return g.Flag(p.Name) == p.Want }

func (p FlagPred) String() string {
	return fmt.Sprintf("flag:%s == %t", p.Name, p.Want)
}

// CounterPred compares a counter against a constant.
type CounterPred struct {
	Name  string
	Op    CompareOp
	Value int
}

func (p CounterPred) Eval(g *GameState) bool { return p.Op.Compare(g.Counter(p.Name), p.Value) }

func (p CounterPred) String() string {
	return fmt.Sprintf("counter:%s %s %d", p.Name, p.Op, p.Value)
}

// NotPred negates its operand.
type NotPred struct {
	Operand Predicate
}

func (p NotPred) Eval(g *GameState) bool { return !p.Operand.Eval(g) }
func (p NotPred) String() string          { return "not (" + p.Operand.String() + ")" }

// AndPred is true when both sides are true. Right is not evaluated when Left is false.
type AndPred struct {
	Left, Right Predicate
}

func (p AndPred) Eval(g *GameState) bool { return p.Left.Eval(g) && p.Right.Eval(g) }

func (p AndPred) String() string {
	return "(" + p.Left.String() + " and " + p.Right.String() + ")"
}

// OrPred is true when either side is true.
type OrPred struct {
	Left, Right Predicate
}

func (p OrPred) Eval(g *GameState) bool { return p.Left.Eval(g) || p.Right.Eval(g) }

func (p OrPred) String() string {
	return "(" + p.Left.String() + " or " + p.Right.String() + ")"
}

// ConstPred is a literal true or false.
type ConstPred bool

func (p ConstPred) Eval(*GameState) bool { return bool(p) }
func (p ConstPred) String() string       { return strconv.FormatBool(bool(p)) }
