package ctxstack

import (
	"testing"

	"github.com/shivasurya/uafscan/internal/svfg"
)

type fakeFunctions map[svfg.NodeID]string

func (f fakeFunctions) FunctionOf(id svfg.NodeID) (string, bool) {
	fn, ok := f[id]
	return fn, ok
}

func TestMatchBackwardEmptyPushes(t *testing.T) {
	ctx := New()
	e := svfg.Edge{From: "a", To: "b", Kind: svfg.EdgeCallDirect, CallSite: 1}
	ok, _ := MatchBackward(ctx, e, fakeFunctions{})
	if !ok {
		t.Fatal("empty context must always accept")
	}
	if ctx.Len() != 1 {
		t.Fatalf("expected context depth 1, got %d", ctx.Len())
	}
}

func TestMatchBackwardParenCancellation(t *testing.T) {
	ctx := New()
	call := svfg.Edge{From: "a", To: "b", Kind: svfg.EdgeCallDirect, CallSite: 7}
	ret := svfg.Edge{From: "c", To: "d", Kind: svfg.EdgeRetDirect, CallSite: 7}
	MatchBackward(ctx, call, fakeFunctions{})
	ok, undo := MatchBackward(ctx, ret, fakeFunctions{})
	if !ok {
		t.Fatal("matching call-site ret must cancel the call")
	}
	if ctx.Len() != 0 {
		t.Fatalf("expected context to be empty after cancellation, got depth %d", ctx.Len())
	}

	undo()
	if ctx.Len() != 1 {
		t.Fatalf("undo must restore the cancelled call, got depth %d", ctx.Len())
	}
	top, ok := ctx.Top()
	if !ok || top.CallSite != 7 || top.Kind != svfg.EdgeCallDirect {
		t.Fatal("undo must restore the exact edge that was popped")
	}
}

func TestMatchBackwardCallerChain(t *testing.T) {
	ctx := New()
	// first: caller_site (function "f") calls into callee_entry.
	fns := fakeFunctions{"caller_site": "f", "callee_entry": "g"}
	first := svfg.Edge{From: "caller_site", To: "callee_entry", Kind: svfg.EdgeCallDirect, CallSite: 1}
	MatchBackward(ctx, first, fns)

	// rule 4 requires dst_function(E) == src_function(Top); src_function(Top)
	// is the function of caller_site, "f", so E must land back in "f".
	fns["second_dst"] = "f"
	second := svfg.Edge{From: "x", To: "second_dst", Kind: svfg.EdgeCallDirect, CallSite: 2}

	ok, _ := MatchBackward(ctx, second, fns)
	if !ok {
		t.Fatal("a call edge continuing the caller chain must be accepted")
	}
	if ctx.Len() != 2 {
		t.Fatalf("expected depth 2 after continuing the chain, got %d", ctx.Len())
	}
}

func TestMatchBackwardRetAlwaysPushes(t *testing.T) {
	ctx := New()
	call := svfg.Edge{From: "a", To: "b", Kind: svfg.EdgeCallDirect, CallSite: 1}
	ret := svfg.Edge{From: "c", To: "d", Kind: svfg.EdgeRetDirect, CallSite: 99}
	MatchBackward(ctx, call, fakeFunctions{})
	ok, undo := MatchBackward(ctx, ret, fakeFunctions{})
	if !ok {
		t.Fatal("a ret edge not cancelling the top must still push")
	}
	if ctx.Len() != 2 {
		t.Fatalf("expected depth 2, got %d", ctx.Len())
	}

	undo()
	if ctx.Len() != 1 {
		t.Fatalf("undo must pop the pushed ret, got depth %d", ctx.Len())
	}
}

func TestMatchBackwardRejectsUnrelatedCall(t *testing.T) {
	ctx := New()
	call := svfg.Edge{From: "a", To: "b", Kind: svfg.EdgeCallDirect, CallSite: 1}
	unrelated := svfg.Edge{From: "x", To: "y", Kind: svfg.EdgeCallDirect, CallSite: 2}
	MatchBackward(ctx, call, fakeFunctions{})
	before := ctx.Len()
	ok, undo := MatchBackward(ctx, unrelated, fakeFunctions{})
	if ok {
		t.Fatal("a call edge that doesn't continue the caller chain must be rejected")
	}
	if ctx.Len() != before {
		t.Fatal("a rejected match must leave the context unchanged")
	}
	undo() // must be safe to call even though nothing was mutated
	if ctx.Len() != before {
		t.Fatal("undo on a rejected match must remain a no-op")
	}
}

func TestMatchForwardIsInverseOfBackwardOnReversedSequence(t *testing.T) {
	// Build a sequence of edges that a backward walk accepts in order,
	// then verify the same edges, each reversed (From/To swapped, and
	// Call<->Ret swapped to represent the dual traversal direction),
	// applied in reverse order, are accepted by match_forward.
	edges := []svfg.Edge{
		{From: "s1", To: "e1", Kind: svfg.EdgeCallDirect, CallSite: 1},
		{From: "s2", To: "f", Kind: svfg.EdgeCallDirect, CallSite: 2},
	}
	fns := fakeFunctions{"e1": "g1", "s2": "g1", "f": "g2", "s1": "g2"}

	bctx := New()
	for _, e := range edges {
		ok, _ := MatchBackward(bctx, e, fns)
		if !ok {
			t.Fatalf("expected backward match to accept %+v", e)
		}
	}

	// dual: Call -> Ret, From/To swapped, processed in reverse order.
	dual := func(e svfg.Edge) svfg.Edge {
		k := svfg.EdgeRetDirect
		if e.Kind == svfg.EdgeRetDirect {
			k = svfg.EdgeCallDirect
		}
		return svfg.Edge{From: e.To, To: e.From, Kind: k, CallSite: e.CallSite}
	}
	fctx := New()
	for i := len(edges) - 1; i >= 0; i-- {
		d := dual(edges[i])
		ok, _ := MatchForward(fctx, d, fns)
		if !ok {
			t.Fatalf("expected forward match to accept the dual of %+v", edges[i])
		}
	}
	if fctx.Len() != bctx.Len() {
		t.Fatalf("dual traversal must reach the same depth: forward=%d backward=%d", fctx.Len(), bctx.Len())
	}
}

func TestMatchBackwardUndoChainRestoresOriginalContext(t *testing.T) {
	// Push three edges via MatchBackward, then undo them in LIFO order and
	// confirm the context returns to empty — the discipline the backward
	// explorer relies on when backtracking across sibling in-edges.
	ctx := New()
	fns := fakeFunctions{}
	edges := []svfg.Edge{
		{From: "a", To: "b", Kind: svfg.EdgeCallDirect, CallSite: 1},
		{From: "c", To: "d", Kind: svfg.EdgeRetDirect, CallSite: 55},
		{From: "e", To: "f", Kind: svfg.EdgeRetDirect, CallSite: 56},
	}
	var undos []func()
	for _, e := range edges {
		ok, undo := MatchBackward(ctx, e, fns)
		if !ok {
			t.Fatalf("expected %+v to be accepted", e)
		}
		undos = append(undos, undo)
	}
	if ctx.Len() != 3 {
		t.Fatalf("expected depth 3 before undo, got %d", ctx.Len())
	}
	for i := len(undos) - 1; i >= 0; i-- {
		undos[i]()
	}
	if ctx.Len() != 0 {
		t.Fatalf("expected depth 0 after full undo, got %d", ctx.Len())
	}
}

func TestPushSeedUnconditional(t *testing.T) {
	ctx := New()
	seed := svfg.Edge{From: "src", To: svfg.Zero, Kind: svfg.EdgeCallDirect, CallSite: 5}
	PushSeed(ctx, seed)
	top, ok := ctx.Top()
	if !ok || top.CallSite != 5 {
		t.Fatal("expected the seed edge to be on top of the context")
	}
}
