package explore

import (
	"github.com/shivasurya/uafscan/internal/ctxstack"
	"github.com/shivasurya/uafscan/internal/svfg"
)

// forward implements the forward explorer (C5, §4.5). curr is the node
// currently being visited, prev the node the walk just came from (so the
// step-4 edge scan doesn't immediately retreat), ctx the forward context
// accumulated since the pivot, org the deallocation call site the walk
// originated from, and tag whether reporting is still enabled on this
// branch (it is permanently disabled, for this branch only, once the walk
// crosses a call/ret boundary the CFG oracle can't show is reachable from
// the free).
func (ex *Explorer) forward(curr, prev svfg.NodeID, ctx *ctxstack.Context, org origin, tag bool) {
	if ctx.Len() > ex.cfg.MaxCxtLen {
		return
	}
	ex.path.Add(curr)

	currNode, ok := ex.svfg.Node(curr)
	if ok && tag && currNode.Kind == svfg.KindStatement {
		ex.checkCandidates(currNode, org)
	}

	currFn, ok := ex.fn.FunctionOf(curr)
	if !ok {
		return
	}

	for _, e := range ex.svfg.OutEdges(curr) {
		c := e.To
		if c == prev || c == svfg.Zero {
			continue
		}
		cNode, ok := ex.svfg.Node(c)
		if !ok || cNode.Block == "" {
			continue
		}

		if e.Kind.IsInter() {
			if e.CallSite == org.callSite {
				continue // would revisit the free site
			}
			matched, undo := ctxstack.MatchForward(ctx, e, ex.fn)
			if !matched {
				continue
			}
			childTag := tag
			if cs2, ok := ex.svfg.CallSiteInstruction(e.CallSite); !ok || !ex.reachable(org.instr, cs2) {
				childTag = false
			}
			ex.recurseForward(c, curr, e, ctx, org, childTag)
			undo()
			continue
		}

		if ex.cfg.NoGlobal {
			cFn, _ := ex.fn.FunctionOf(c)
			if cFn != currFn {
				continue
			}
		}
		ex.recurseForward(c, curr, e, ctx, org, tag)
	}
}

// recurseForward recurses into child c under the path recorder's
// push/pop discipline (§4.5 step 4), with the same intraprocedural cycle
// guard recurseBackward uses.
func (ex *Explorer) recurseForward(c, curr svfg.NodeID, e svfg.Edge, ctx *ctxstack.Context, org origin, tag bool) {
	if e.Kind.IsIntra() && ex.visited.Contains(c) {
		return
	}

	ex.path.Push()
	ex.visited.Push()
	if e.Kind.IsIntra() {
		ex.visited.Add(c)
	}

	ex.forward(c, curr, ctx, org, tag)

	ex.visited.Pop(1)
	ex.path.Pop(1)
}

// checkCandidates implements §4.5 step 3 together with the candidate
// filter (C6, §4.7): classify every IR user of curr's anchoring
// instruction as a load, store or double-free use of the value it
// produces, then require CFG reachability from the free before handing
// the candidate to the verifier.
func (ex *Explorer) checkCandidates(node *svfg.Node, org origin) {
	instr := node.Instruction
	if instr == nil || instr.ID == "" {
		return // PHI/parameter/return nodes produce no instruction-anchored value
	}
	for _, u := range instr.Users {
		if !ex.isUse(u, instr.ID) {
			continue
		}
		if !ex.reachable(org.instr, u) {
			continue
		}
		ex.verifyCandidate(node, u)
	}
}

// isUse implements C6's three use-kinds exactly: a load through the
// tracked pointer, a store through it, or a second deallocator call with
// it as the first argument.
func (ex *Explorer) isUse(u *svfg.Instruction, ptr string) bool {
	switch u.Kind {
	case svfg.InstrLoad, svfg.InstrStore:
		return u.PointerOperand == ptr
	case svfg.InstrCall:
		if len(u.CallArgs) == 0 || u.CallArgs[0] != ptr {
			return false
		}
		return ex.sinks.IsDeallocator(u.CallTarget)
	default:
		return false
	}
}

// verifyCandidate invokes the path-condition verifier (C7) on u, under the
// path recorder's push/pop discipline, and records a Report if it (or
// NoCheck mode) accepts it.
func (ex *Explorer) verifyCandidate(node *svfg.Node, u *svfg.Instruction) {
	if ex.cfg.NoCheck {
		ex.reports = append(ex.reports, Report{Source: ex.source, Use: u, Path: ex.path.Items()})
		return
	}

	ex.path.Push()
	accepted, err := ex.verifier.Verify(ex.path.Items(), u.Function, u.Block, ex.source, svfg.NodeID(u.ID))
	ex.path.Pop(1)
	if err != nil || !accepted {
		return
	}
	ex.reports = append(ex.reports, Report{Source: ex.source, Use: u, Path: ex.path.Items()})
}
