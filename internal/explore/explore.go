// Package explore implements the backward explorer (C4), forward explorer
// (C5) and the candidate filter embedded in it (C6): the bidirectional
// SVFG walk that starts at a deallocation call site, looks for a plausible
// value-flow root, and from there searches for reachable uses of the freed
// pointer.
package explore

import (
	"github.com/shivasurya/uafscan/internal/cfg"
	"github.com/shivasurya/uafscan/internal/config"
	"github.com/shivasurya/uafscan/internal/ctxstack"
	"github.com/shivasurya/uafscan/internal/pathrec"
	"github.com/shivasurya/uafscan/internal/svfg"
)

// Verifier is the subset of *verify.Verifier / *verify.CachedVerifier the
// forward explorer needs: decide whether a recorded path plus a candidate
// use admits a satisfiable control-flow guard.
type Verifier interface {
	Verify(path []svfg.NodeID, candidateFunction, candidateBlock string, source, candidate svfg.NodeID) (bool, error)
}

// Report is one confirmed use-after-free: the freed pointer's root SVFG
// node, the IR instruction found to use it after the free, and the full
// recorded backward+forward path connecting them.
type Report struct {
	Source svfg.NodeID
	Use    *svfg.Instruction
	Path   []svfg.NodeID
}

// functionOf adapts svfg.Provider's Node lookup into ctxstack.FunctionOf,
// the only extra fact the context stack engine needs.
type functionOf struct{ provider svfg.Provider }

func (f functionOf) FunctionOf(id svfg.NodeID) (string, bool) {
	n, ok := f.provider.Node(id)
	if !ok {
		return "", false
	}
	return n.Function, true
}

// origin bundles the deallocation call site's instruction and CallSiteID,
// threaded unchanged through an entire forward walk: §4.5 step 4 needs the
// ID to recognize (and skip) an edge that would revisit the free site
// itself, and §4.6's reachability bridge needs the instruction.
type origin struct {
	instr    *svfg.Instruction
	callSite svfg.CallSiteID
}

// Explorer runs the C4/C5/C6 walk for one source at a time. It is not safe
// for concurrent use; the orchestrator gives each goroutine its own
// Explorer (and its own cfg.Oracle, per §5).
type Explorer struct {
	svfg     svfg.Provider
	reach    *cfg.Oracle
	sinks    svfg.SinkPredicate
	verifier Verifier
	cfg      *config.Config
	fn       functionOf

	path    *pathrec.Recorder
	visited *pathrec.UniqueSet
	source  svfg.NodeID
	reports []Report
}

// New builds an Explorer over the given SVFG, CFG reachability oracle,
// deallocator predicate, path-condition verifier and configuration.
func New(provider svfg.Provider, reach *cfg.Oracle, sinks svfg.SinkPredicate, verifier Verifier, cfg *config.Config) *Explorer {
	return &Explorer{
		svfg:     provider,
		reach:    reach,
		sinks:    sinks,
		verifier: verifier,
		cfg:      cfg,
		fn:       functionOf{provider},
		path:     pathrec.New(),
		visited:  pathrec.NewUniqueSet(),
	}
}

// Run drives the backward explorer from src under the seeded synthetic
// edge (§4.9's "Drive" step: Ctx = [seed(S)], push the path recorder,
// invoke Backward Explorer, pop on return) and returns every UAF
// confirmed while exploring this source.
func (ex *Explorer) Run(src svfg.NodeID, seed svfg.Edge) []Report {
	ex.reports = nil
	ex.source = src

	ctx := ctxstack.New()
	ctxstack.PushSeed(ctx, seed)

	ex.path.Push()
	ex.visited.Push()
	ex.visited.Add(src)

	ex.backward(src, "", ctx)

	ex.visited.Pop(1)
	ex.path.Pop(1)
	return ex.reports
}

// reachable implements §4.6: the CFG-reachability bridge shared by the
// forward explorer's reporting check and its call/ret-edge dampening.
// Cross-function pairs are conservatively reachable (no interprocedural
// CFG reachability is modeled); same-function pairs defer to the
// intraprocedural oracle and additionally require the two instructions to
// be distinct.
func (ex *Explorer) reachable(f, t *svfg.Instruction) bool {
	if f == nil || t == nil {
		return false
	}
	if f.Function != t.Function {
		return true
	}
	if f.ID == t.ID {
		return false
	}
	return ex.reach.CanReachInst(f, t)
}
