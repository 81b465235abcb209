package explore

import (
	"github.com/shivasurya/uafscan/internal/ctxstack"
	"github.com/shivasurya/uafscan/internal/svfg"
)

// backward implements the backward explorer (C4, §4.4). curr is the node
// currently being visited; ctx is the context accumulated on the walk from
// the source to curr.
func (ex *Explorer) backward(curr svfg.NodeID, prev svfg.NodeID, ctx *ctxstack.Context) {
	if ctx.Len() > ex.cfg.MaxCxtLen+1 {
		return
	}
	ex.path.Add(curr)

	// Pivot check (step 3): a context composed entirely of Call edges
	// marks curr as a plausible value-flow root. This is evaluated at
	// every node visited, not just once, so a single backward walk may
	// spawn more than one forward probe.
	if ctx.AllCall() {
		ex.pivot(curr, ctx)
	}

	currFn, ok := ex.fn.FunctionOf(curr)
	if !ok {
		return
	}

	for _, e := range ex.svfg.InEdges(curr) {
		a := e.From
		if a == curr {
			continue // self-loop
		}
		aNode, ok := ex.svfg.Node(a)
		if !ok || aNode.Block == "" {
			continue // no block anchor
		}

		if e.Kind.IsInter() {
			matched, undo := ctxstack.MatchBackward(ctx, e, ex.fn)
			if !matched {
				continue
			}
			ex.recurseBackward(a, curr, e, ctx)
			undo()
			continue
		}

		if ex.cfg.NoGlobal {
			aFn, _ := ex.fn.FunctionOf(a)
			if aFn != currFn {
				continue
			}
		}
		ex.recurseBackward(a, curr, e, ctx)
	}
}

// recurseBackward recurses into ancestor a under the path recorder's
// push/pop discipline (§4.4 step 4). For intraprocedural edges it also
// guards against infinite recursion on a cyclic value-flow edge: such
// edges never change Ctx, so MaxCxtLen cannot bound them the way it bounds
// inter-procedural recursion, and a plain ancestor-membership check is
// needed instead.
func (ex *Explorer) recurseBackward(a, curr svfg.NodeID, e svfg.Edge, ctx *ctxstack.Context) {
	if e.Kind.IsIntra() && ex.visited.Contains(a) {
		return
	}

	ex.path.Push()
	ex.visited.Push()
	if e.Kind.IsIntra() {
		ex.visited.Add(a)
	}

	ex.backward(a, curr, ctx)

	ex.visited.Pop(1)
	ex.path.Pop(1)
}

// pivot starts a forward search rooted at curr, using the call site
// instruction named by the top of Ctx as the origin of the free (§4.4
// step 3). Since the pivot check runs at every node on the backward walk,
// not just once, the whole forward probe is bracketed in its own path
// recorder checkpoint: backward exploration resumes right after pivot
// returns and must see the path exactly as it was before the probe, not
// polluted by whatever the forward search appended while it ran.
func (ex *Explorer) pivot(curr svfg.NodeID, ctx *ctxstack.Context) {
	top, ok := ctx.Top()
	if !ok {
		return
	}
	cs, ok := ex.svfg.CallSiteInstruction(top.CallSite)
	if !ok {
		return
	}

	fctx := ctxstack.New()
	ex.path.Push()
	ex.forward(curr, "", fctx, origin{instr: cs, callSite: top.CallSite}, true)
	ex.path.Pop(1)
}
