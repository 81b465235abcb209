package verify

import (
	"errors"

	"github.com/shivasurya/uafscan/internal/svfg"
)

// ErrNoPivot is returned when the recorded path has no self-duplicate node,
// meaning the backward and forward walks never met. §9 treats this as
// undefined behavior in the reference design and directs implementations
// to "abort cleanly"; the verifier reports it as an ordinary error rather
// than panicking, since it is reachable only through a caller bug in C4/C5,
// not through attacker- or input-controlled data.
var ErrNoPivot = errors.New("verify: no self-duplicate pivot found in recorded path")

// NodeInfo is the subset of svfg.Provider the verifier needs: the block
// each node anchors to, and out-edges for the round-trip successor walk.
type NodeInfo interface {
	Node(id svfg.NodeID) (*svfg.Node, bool)
	OutEdges(id svfg.NodeID) []svfg.Edge
	CallSiteInstruction(cs svfg.CallSiteID) (*svfg.Instruction, bool)
}

// Verifier is the path-condition verifier (C7).
type Verifier struct {
	nodes   NodeInfo
	algebra ConditionAlgebra
}

// New builds a Verifier over the given SVFG node accessor and condition
// algebra.
func New(nodes NodeInfo, algebra ConditionAlgebra) *Verifier {
	return &Verifier{nodes: nodes, algebra: algebra}
}

// Verify implements §4.8. path is the full recorded backward+forward walk
// (oldest first); candidateFunction/candidateBlock locate the instruction
// found at the end of the walk that the candidate filter (C6) flagged as a
// use of the freed value. source and candidate identify the (root, use)
// SVFG node pair for this query; Verifier itself ignores them (the plain
// fixed-point computation depends only on path and the candidate's
// location), but CachedVerifier uses them as its memoization key.
func (v *Verifier) Verify(path []svfg.NodeID, candidateFunction, candidateBlock string, source, candidate svfg.NodeID) (bool, error) {
	pivotIdx, ok := findPivot(path)
	if !ok {
		return false, ErrNoPivot
	}
	source = path[pivotIdx]

	succ := v.buildSucc(path, pivotIdx)
	guard := v.propagate(path, source, succ)

	top := path[len(path)-1]
	topNode, ok := v.nodes.Node(top)
	if !ok {
		return false, errors.New("verify: path's final node has no SVFG entry")
	}
	if topNode.Function != candidateFunction {
		return false, errors.New("verify: final path node and candidate must share a function")
	}

	v.algebra.ClearScratch()
	tail := v.algebra.IntraGuard(topNode.Block, candidateBlock)
	tailGuard := v.algebra.And(guard[top], tail)
	final := v.algebra.And(guard[path[0]], tailGuard)

	return !final.Equal(v.algebra.False()), nil
}

// findPivot scans path for the first index i with path[i] == path[i+1], the
// pivot where the backward walk transitioned into the forward walk (§4.8
// Step 1).
func findPivot(path []svfg.NodeID) (int, bool) {
	for i := 0; i+1 < len(path); i++ {
		if path[i] == path[i+1] {
			return i, true
		}
	}
	return 0, false
}

// buildSucc implements §4.8 Step 2: the recorded path, read as a round trip
// from the pivot, reinterpreted as a pure forward walk. Before the pivot is
// reached, P[i]'s successor in the round trip is its predecessor in the
// recorded order (the backward walk ran against value flow); from the
// pivot onward, it's the node's actual successor in the recorded order.
func (v *Verifier) buildSucc(path []svfg.NodeID, pivotIdx int) map[svfg.NodeID][]svfg.NodeID {
	succ := make(map[svfg.NodeID][]svfg.NodeID)
	for i := 1; i <= len(path)-2; i++ {
		if i <= pivotIdx {
			succ[path[i]] = append(succ[path[i]], path[i-1])
		} else {
			succ[path[i]] = append(succ[path[i]], path[i+1])
		}
	}
	return succ
}

// propagate implements §4.8 Step 3: fixed-point guard propagation over the
// round-trip successor relation, seeded with guard(source) = True.
func (v *Verifier) propagate(path []svfg.NodeID, source svfg.NodeID, succ map[svfg.NodeID][]svfg.NodeID) map[svfg.NodeID]Condition {
	guard := make(map[svfg.NodeID]Condition)
	guard[source] = v.algebra.True()

	inPath := make(map[svfg.NodeID]bool, len(path))
	for _, n := range path {
		inPath[n] = true
	}

	worklist := []svfg.NodeID{source}
	for len(worklist) > 0 {
		node := worklist[0]
		worklist = worklist[1:]
		cond, ok := guard[node]
		if !ok {
			cond = v.algebra.False()
		}
		nodeInfo, ok := v.nodes.Node(node)
		if !ok {
			continue
		}
		v.algebra.SetCurrentValue(nodeInfo.Value)

		for _, succID := range succ[node] {
			if !inPath[succID] {
				continue
			}
			edge, ok := v.findEdge(node, succID)
			if !ok {
				continue
			}
			succInfo, ok := v.nodes.Node(succID)
			if !ok {
				continue
			}

			v.algebra.ClearScratch()
			vfCond := v.edgeGuard(edge, nodeInfo, succInfo)
			newCond := v.algebra.And(cond, vfCond)

			existing, ok := guard[succID]
			if !ok {
				existing = v.algebra.False()
			}
			merged := v.algebra.Or(existing, newCond)
			if !merged.Equal(existing) {
				guard[succID] = merged
				worklist = append(worklist, succID)
			}
		}
	}
	return guard
}

// findEdge locates the SVFG edge between node and succID, trying both
// directions since buildSucc's round trip may traverse an edge against its
// original orientation (the backward half of the walk).
func (v *Verifier) findEdge(node, succID svfg.NodeID) (svfg.Edge, bool) {
	for _, e := range v.nodes.OutEdges(node) {
		if e.To == succID {
			return e, true
		}
	}
	for _, e := range v.nodes.OutEdges(succID) {
		if e.To == node {
			return e, true
		}
	}
	return svfg.Edge{}, false
}

func (v *Verifier) edgeGuard(e svfg.Edge, from, to *svfg.Node) Condition {
	switch {
	case e.Kind.IsCall():
		return v.algebra.InterCallGuard(from.Block, to.Block, v.siteBlock(e, from.Block))
	case e.Kind.IsRet():
		return v.algebra.InterRetGuard(from.Block, to.Block, v.siteBlock(e, from.Block))
	default:
		return v.algebra.IntraGuard(from.Block, to.Block)
	}
}

// siteBlock resolves block_of(call_site(edge))/block_of(ret_site(edge)):
// the block containing the actual call or return instruction the edge is
// labeled with. Falls back to the edge's source block if the call-site
// instruction isn't known (e.g. a synthetic seed edge), which is
// conservative but never less precise than treating it as unconditional.
func (v *Verifier) siteBlock(e svfg.Edge, fallback string) string {
	if instr, ok := v.nodes.CallSiteInstruction(e.CallSite); ok {
		return instr.Block
	}
	return fallback
}
