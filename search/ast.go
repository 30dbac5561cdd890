// Package search implements the boolean expression language described
// in spec.md §4.6/§4.7: a small grammar over signal values and edges,
// parsed into an AST and evaluated at each timestamp of a signal
// store to produce a sorted list of findings.
package search

import "zappem.net/pub/wave/dwfv/wave"

// Relation is the comparison operator of an Equal/Transition node.
type Relation int

// Recognized relations. NotEqual desugars to Not(Equal); Nand desugars
// to Not(And) at parse time, per spec.md §4.6, so they have no AST
// node of their own.
const (
	RelEqual Relation = iota
	RelTransition
)

// Value is the right-hand side of a relation: either a literal signal
// value or a reference to another signal's value at the same instant.
type Value struct {
	IsID    bool
	Literal wave.SignalValue
	ID      string
}

// Expr is the closed tagged variant every search expression compiles
// to. Adding a node kind means touching every switch over Kind in this
// package (spec.md §9's "dynamic dispatch" note): this is deliberate,
// not an oversight.
type Expr struct {
	Kind Kind

	// Equal / Transition
	ID    string
	Value Value

	// AnyTransition
	// (reuses ID above)

	// Not
	Operand *Expr

	// And / Or
	Left, Right *Expr

	// After / Before
	Limit wave.Timestamp
}

// Kind tags the variant of an Expr.
type Kind int

// AST node kinds.
const (
	KindEqual Kind = iota
	KindTransition
	KindAnyTransition
	KindNot
	KindAnd
	KindOr
	KindAfter
	KindBefore
)

func equal(id string, v Value) *Expr      { return &Expr{Kind: KindEqual, ID: id, Value: v} }
func transition(id string, v Value) *Expr { return &Expr{Kind: KindTransition, ID: id, Value: v} }
func anyTransition(id string) *Expr       { return &Expr{Kind: KindAnyTransition, ID: id} }
func not(e *Expr) *Expr                   { return &Expr{Kind: KindNot, Operand: e} }
func and(l, r *Expr) *Expr                { return &Expr{Kind: KindAnd, Left: l, Right: r} }
func or(l, r *Expr) *Expr                 { return &Expr{Kind: KindOr, Left: l, Right: r} }
func after(t wave.Timestamp) *Expr        { return &Expr{Kind: KindAfter, Limit: t} }
func before(t wave.Timestamp) *Expr       { return &Expr{Kind: KindBefore, Limit: t} }
