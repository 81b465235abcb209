// Package boolcond supplies a default, concrete ConditionAlgebra: a small
// reduced boolean-expression type over named branch-condition variables,
// interned by structural signature so structurally identical guards
// compare equal by pointer. spec.md deliberately leaves the real condition
// algebra external; this is the toy implementation the CLI runs with when
// no richer solver (e.g. a BDD package backed by an SMT or symbolic
// executor) is wired in its place.
package boolcond

import (
	"fmt"

	"github.com/shivasurya/uafscan/internal/cfg"
	"github.com/shivasurya/uafscan/internal/verify"
)

type exprKind int

const (
	kTrue exprKind = iota
	kFalse
	kVar
	kNot
	kAnd
	kOr
)

// Expr is a reduced boolean expression: True, False, a named variable, or
// Not/And/Or over sub-expressions.
type Expr struct {
	kind  exprKind
	name  string
	left  *Expr
	right *Expr
	sig   string
}

// Equal implements verify.Condition: two expressions are equal iff they
// are structurally identical, matching §9's "condition values as
// reference-equal when structurally identical" design note.
func (e *Expr) Equal(other verify.Condition) bool {
	o, ok := other.(*Expr)
	if !ok {
		return false
	}
	if e == o {
		return true
	}
	if e == nil || o == nil {
		return false
	}
	return e.sig == o.sig
}

func (e *Expr) String() string {
	return e.sig
}

func asExpr(c verify.Condition) *Expr {
	e, ok := c.(*Expr)
	if !ok {
		panic("boolcond: condition from a foreign algebra")
	}
	return e
}

// Algebra is a ConditionAlgebra backed by Expr, deriving IntraGuard /
// InterCallGuard / InterRetGuard from a cfg.Provider's basic-block
// metadata: a block's Condition/TrueSucc/FalseSucc fields, set by whatever
// built the CFG (internal/loader for the JSON snapshot format).
type Algebra struct {
	provider   cfg.Provider
	trueExpr   *Expr
	falseExpr  *Expr
	intern     map[string]*Expr
	current    string
}

// New wraps provider in a default condition algebra.
func New(provider cfg.Provider) *Algebra {
	a := &Algebra{
		provider: provider,
		intern:   make(map[string]*Expr),
	}
	a.trueExpr = a.leaf(kTrue, "")
	a.falseExpr = a.leaf(kFalse, "")
	return a
}

func (a *Algebra) leaf(kind exprKind, name string) *Expr {
	sig := name
	switch kind {
	case kTrue:
		sig = "T"
	case kFalse:
		sig = "F"
	case kVar:
		sig = "v:" + name
	}
	if existing, ok := a.intern[sig]; ok {
		return existing
	}
	e := &Expr{kind: kind, name: name, sig: sig}
	a.intern[sig] = e
	return e
}

func (a *Algebra) unary(kind exprKind, child *Expr) *Expr {
	sig := fmt.Sprintf("!(%s)", child.sig)
	if existing, ok := a.intern[sig]; ok {
		return existing
	}
	e := &Expr{kind: kind, left: child, sig: sig}
	a.intern[sig] = e
	return e
}

func (a *Algebra) binary(kind exprKind, op string, l, r *Expr) *Expr {
	sig := fmt.Sprintf("(%s%s%s)", l.sig, op, r.sig)
	if existing, ok := a.intern[sig]; ok {
		return existing
	}
	e := &Expr{kind: kind, left: l, right: r, sig: sig}
	a.intern[sig] = e
	return e
}

// True returns the interned True sentinel.
func (a *Algebra) True() verify.Condition { return a.trueExpr }

// False returns the interned False sentinel.
func (a *Algebra) False() verify.Condition { return a.falseExpr }

// And is a short-circuiting conjunction: True/False are absorbed rather
// than building a larger tree, keeping the fixed point in §4.8 finite.
func (a *Algebra) And(x, y verify.Condition) verify.Condition {
	ex, ey := asExpr(x), asExpr(y)
	if ex.kind == kFalse || ey.kind == kFalse {
		return a.falseExpr
	}
	if ex.kind == kTrue {
		return ey
	}
	if ey.kind == kTrue {
		return ex
	}
	if ex.Equal(ey) {
		return ex
	}
	return a.binary(kAnd, "&", ex, ey)
}

// Or is a short-circuiting, idempotent disjunction: merging a guard with
// itself (or with a subsuming True) must not keep growing the expression,
// which is what lets Step 3's worklist reach a fixed point.
func (a *Algebra) Or(x, y verify.Condition) verify.Condition {
	ex, ey := asExpr(x), asExpr(y)
	if ex.kind == kTrue || ey.kind == kTrue {
		return a.trueExpr
	}
	if ex.kind == kFalse {
		return ey
	}
	if ey.kind == kFalse {
		return ex
	}
	if ex.Equal(ey) {
		return ex
	}
	return a.binary(kOr, "|", ex, ey)
}

// IntraGuard derives the branch condition governing bbFrom -> bbTo from
// bbFrom's CFG metadata: True unless bbFrom is a two-way conditional block
// and bbTo is specifically its true- or false-successor.
func (a *Algebra) IntraGuard(bbFrom, bbTo string) verify.Condition {
	return a.branchGuard(bbFrom, bbTo)
}

// InterCallGuard derives the guard for leaving bbFrom across a call
// anchored at bbCallSite. In this default algebra the relevant branch
// decision is whichever one governs reaching the call-site block itself;
// bbTo lives in the callee and carries no local branch information.
func (a *Algebra) InterCallGuard(bbFrom, bbTo, bbCallSite string) verify.Condition {
	return a.branchGuard(bbFrom, bbCallSite)
}

// InterRetGuard is InterCallGuard's dual for return edges.
func (a *Algebra) InterRetGuard(bbFrom, bbTo, bbRetSite string) verify.Condition {
	return a.branchGuard(bbFrom, bbRetSite)
}

func (a *Algebra) branchGuard(bbFrom, bbTo string) verify.Condition {
	function, ok := a.provider.BlockFunction(bbFrom)
	if !ok {
		return a.trueExpr
	}
	graph, ok := a.provider.Graph(function)
	if !ok {
		return a.trueExpr
	}
	from, ok := graph.Block(bbFrom)
	if !ok || from.Type != cfg.BlockTypeConditional || from.Condition == "" {
		return a.trueExpr
	}
	switch bbTo {
	case from.TrueSucc:
		return a.leaf(kVar, from.Condition)
	case from.FalseSucc:
		return a.unary(kNot, a.leaf(kVar, from.Condition))
	default:
		return a.trueExpr
	}
}

// ClearScratch is a no-op: this algebra holds no mutable control-flow
// scratch state between guard computations, only the immutable interned
// expression table.
func (a *Algebra) ClearScratch() {}

// SetCurrentValue records which IR value the verifier is currently
// propagating. This default algebra does not branch on it (it has no
// per-value BDDs to intern), but a richer algebra would.
func (a *Algebra) SetCurrentValue(value string) {
	a.current = value
}
