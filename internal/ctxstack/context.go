// Package ctxstack implements the context stack engine (C3): balanced
// matching of Call*/Ret* SVFG edges as the walk crosses procedure
// boundaries, in both the backward and forward traversal directions.
package ctxstack

import "github.com/shivasurya/uafscan/internal/svfg"

// FunctionOf resolves which function an SVFG node belongs to. Only the
// context stack's rule 4/3 (the "continuing the caller chain" guard) needs
// this; everything else operates on CallSiteID and edge kind alone.
type FunctionOf interface {
	FunctionOf(id svfg.NodeID) (string, bool)
}

// Context is an ordered sequence of Call*/Ret* SVFG edges, treated as a
// stack: a Call* push can be cancelled by a matching Ret* with the same
// CallSiteID, and vice versa.
type Context struct {
	edges []svfg.Edge
}

// New returns an empty Context.
func New() *Context {
	return &Context{}
}

// Len reports the current context depth.
func (c *Context) Len() int {
	return len(c.edges)
}

// Top returns the most recently pushed edge.
func (c *Context) Top() (svfg.Edge, bool) {
	if len(c.edges) == 0 {
		return svfg.Edge{}, false
	}
	return c.edges[len(c.edges)-1], true
}

// Edges returns a snapshot copy of the context, oldest first.
func (c *Context) Edges() []svfg.Edge {
	out := make([]svfg.Edge, len(c.edges))
	copy(out, c.edges)
	return out
}

func (c *Context) push(e svfg.Edge) {
	c.edges = append(c.edges, e)
}

func (c *Context) pop() {
	c.edges = c.edges[:len(c.edges)-1]
}

// AllCall reports whether every edge currently on the context is a Call
// edge. A non-empty all-Call context is the pivot condition the backward
// explorer checks at every node (§4.4 step 3).
func (c *Context) AllCall() bool {
	return c.allCall()
}

func (c *Context) allCall() bool {
	for _, e := range c.edges {
		if !e.Kind.IsCall() {
			return false
		}
	}
	return true
}

func (c *Context) allRet() bool {
	for _, e := range c.edges {
		if !e.Kind.IsRet() {
			return false
		}
	}
	return true
}

// kindsDiffer reports whether a and b differ in Call-vs-Ret (regardless of
// direct/indirect variant), the condition rule 3 of both match_backward and
// match_forward checks for paren cancellation.
func kindsDiffer(a, b svfg.EdgeKind) bool {
	return a.IsCall() != b.IsCall()
}

// noop is returned as the Undo for a rejected match: there is nothing to
// undo since the context was never touched.
func noop() {}

// MatchBackward implements match_backward(Ctx, E) from §4.3. On acceptance
// it mutates ctx (pushing E, or popping E's paren-matching partner) and
// returns an undo function that exactly reverses that mutation, so a
// caller backtracking out of the recursive step it guarded can restore ctx
// for its next sibling. On rejection it returns false and a no-op undo,
// having left ctx untouched.
func MatchBackward(ctx *Context, e svfg.Edge, fn FunctionOf) (bool, func()) {
	top, hasTop := ctx.Top()
	if !hasTop {
		ctx.push(e)
		return true, func() { ctx.pop() }
	}
	if e.CallSite == top.CallSite && kindsDiffer(e.Kind, top.Kind) {
		ctx.pop()
		return true, func() { ctx.push(top) }
	}
	if e.Kind.IsCall() && ctx.allCall() {
		dstE, okE := fn.FunctionOf(e.To)
		srcTop, okTop := fn.FunctionOf(top.From)
		if okE && okTop && dstE == srcTop {
			ctx.push(e)
			return true, func() { ctx.pop() }
		}
	}
	if e.Kind.IsRet() {
		ctx.push(e)
		return true, func() { ctx.pop() }
	}
	return false, noop
}

// MatchForward implements match_forward(Ctx, E) from §4.3: symmetric to
// MatchBackward with Call and Ret swapped. See MatchBackward for the undo
// contract.
func MatchForward(ctx *Context, e svfg.Edge, fn FunctionOf) (bool, func()) {
	top, hasTop := ctx.Top()
	if !hasTop {
		ctx.push(e)
		return true, func() { ctx.pop() }
	}
	if e.CallSite == top.CallSite && kindsDiffer(e.Kind, top.Kind) {
		ctx.pop()
		return true, func() { ctx.push(top) }
	}
	if e.Kind.IsRet() && ctx.allRet() {
		srcE, okE := fn.FunctionOf(e.From)
		dstTop, okTop := fn.FunctionOf(top.To)
		if okE && okTop && srcE == dstTop {
			ctx.push(e)
			return true, func() { ctx.pop() }
		}
	}
	if e.Kind.IsCall() {
		ctx.push(e)
		return true, func() { ctx.pop() }
	}
	return false, noop
}

// PushSeed pushes e onto ctx unconditionally, without going through
// MatchBackward/MatchForward. The orchestrator uses this once, to seed the
// synthetic (Src -> Zero) edge before backward exploration begins (§4.9):
// there is no "previous" edge for the seed to match against.
func PushSeed(ctx *Context, e svfg.Edge) {
	ctx.push(e)
}
