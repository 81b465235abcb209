package cfg

import "github.com/shivasurya/uafscan/internal/svfg"

// Provider supplies the CFGs the reachability oracle and the default
// condition algebra query. One Provider instance is expected to serve the
// whole program; internal/loader builds one from a snapshot.
type Provider interface {
	// Graph returns the CFG for function, if known.
	Graph(function string) (*Graph, bool)

	// Instructions returns block's instructions in program order.
	Instructions(block string) []*svfg.Instruction

	// BlockFunction returns the name of the function a basic block ID
	// belongs to. Block IDs are only unique within their owning function's
	// Graph, so anything resolving a bare block ID (the default condition
	// algebra's guard lookups) needs this reverse mapping.
	BlockFunction(block string) (string, bool)
}

// Oracle answers "can control reach basic block dst from basic block src,
// within one function" queries. It is the intraprocedural CFG reachability
// oracle (C1): a plain reverse breadth-first search from dst over
// predecessor edges, computed lazily on first query for a given
// (function, dst) pair and cached for the oracle's lifetime.
//
// An Oracle is not safe for concurrent use; callers running more than one
// query concurrently should use one Oracle per goroutine.
type Oracle struct {
	provider Provider
	analyzed map[string]map[string]bool            // function -> dst -> done
	reach    map[string]map[string]map[string]bool // function -> dst -> src -> reachable
}

// NewOracle wraps provider in a reachability oracle.
func NewOracle(provider Provider) *Oracle {
	return &Oracle{
		provider: provider,
		analyzed: make(map[string]map[string]bool),
		reach:    make(map[string]map[string]map[string]bool),
	}
}

// CanReach reports whether control can flow from src to dst within
// function. src == dst is true only if dst lies on a cycle that passes
// through itself — a block does not reach itself by default. A
// cross-function query is a precondition violation (§7): callers must
// never ask about blocks belonging to two different functions, since this
// oracle is intraprocedural only.
func (o *Oracle) CanReach(function, src, dst string) bool {
	o.ensure(function, dst)
	return o.reach[function][dst][src]
}

// CanReachInst reports whether control can reach dst from src. Both must
// be anchored in the same function; when they share a basic block the
// answer is decided by program order within the block instead of a graph
// search, otherwise it defers to CanReach on their owning blocks.
func (o *Oracle) CanReachInst(src, dst *svfg.Instruction) bool {
	if src.Function != dst.Function {
		panic("cfg: CanReachInst called across functions")
	}
	if src.Block == dst.Block {
		return src.Before(dst)
	}
	return o.CanReach(src.Function, src.Block, dst.Block)
}

func (o *Oracle) ensure(function, dst string) {
	if o.analyzed[function] == nil {
		o.analyzed[function] = make(map[string]bool)
	}
	if o.analyzed[function][dst] {
		return
	}
	g, ok := o.provider.Graph(function)
	if !ok {
		o.analyzed[function][dst] = true
		return
	}
	visited := map[string]bool{dst: true}
	reachSet := make(map[string]bool)
	reachedSelf := false
	queue := []string{dst}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		block, ok := g.Block(cur)
		if !ok {
			continue
		}
		for _, pred := range block.Predecessors {
			if pred == dst {
				reachedSelf = true
				continue
			}
			if !visited[pred] {
				visited[pred] = true
				reachSet[pred] = true
				queue = append(queue, pred)
			}
		}
	}
	if reachedSelf {
		reachSet[dst] = true
	}
	if o.reach[function] == nil {
		o.reach[function] = make(map[string]map[string]bool)
	}
	o.reach[function][dst] = reachSet
	o.analyzed[function][dst] = true
}
