package cfg

import (
	"testing"

	"github.com/shivasurya/uafscan/internal/svfg"
)

type fakeProvider struct {
	graphs map[string]*Graph
}

func (f *fakeProvider) Graph(function string) (*Graph, bool) {
	g, ok := f.graphs[function]
	return g, ok
}

func (f *fakeProvider) Instructions(block string) []*svfg.Instruction { return nil }

func (f *fakeProvider) BlockFunction(block string) (string, bool) {
	for fn, g := range f.graphs {
		if _, ok := g.Block(block); ok {
			return fn, true
		}
	}
	return "", false
}

func linearGraph() *Graph {
	g := NewGraph("f")
	g.AddBlock(&BasicBlock{ID: "entry", Type: BlockTypeEntry})
	g.AddBlock(&BasicBlock{ID: "cond", Type: BlockTypeConditional, Condition: "x", TrueSucc: "then", FalseSucc: "exit"})
	g.AddBlock(&BasicBlock{ID: "then", Type: BlockTypeNormal})
	g.AddBlock(&BasicBlock{ID: "exit", Type: BlockTypeExit})
	g.AddEdge("entry", "cond")
	g.AddEdge("cond", "then")
	g.AddEdge("cond", "exit")
	g.AddEdge("then", "exit")
	return g
}

func cyclicGraph() *Graph {
	g := NewGraph("loopy")
	g.AddBlock(&BasicBlock{ID: "head", Type: BlockTypeLoop})
	g.AddBlock(&BasicBlock{ID: "body", Type: BlockTypeNormal})
	g.AddBlock(&BasicBlock{ID: "after", Type: BlockTypeNormal})
	g.AddEdge("head", "body")
	g.AddEdge("body", "head") // back edge: head reaches itself
	g.AddEdge("head", "after")
	return g
}

func TestOracleReflexive(t *testing.T) {
	o := NewOracle(&fakeProvider{graphs: map[string]*Graph{"f": linearGraph()}})
	if o.CanReach("f", "entry", "entry") {
		t.Fatal("entry does not lie on a cycle through itself in a linear CFG, must not reach itself")
	}
}

func TestOracleForwardReachability(t *testing.T) {
	o := NewOracle(&fakeProvider{graphs: map[string]*Graph{"f": linearGraph()}})
	if !o.CanReach("f", "entry", "exit") {
		t.Fatal("entry must reach exit")
	}
	if !o.CanReach("f", "cond", "then") {
		t.Fatal("cond must reach then")
	}
	if o.CanReach("f", "exit", "entry") {
		t.Fatal("exit must not reach entry: no back edge in a linear CFG")
	}
	if o.CanReach("f", "then", "cond") {
		t.Fatal("then must not reach cond")
	}
}

func TestOracleSelfCycleOnlyViaBackEdge(t *testing.T) {
	o := NewOracle(&fakeProvider{graphs: map[string]*Graph{"loopy": cyclicGraph()}})
	if !o.CanReach("loopy", "head", "head") {
		t.Fatal("head lies on a cycle through itself via the back edge, must reach itself")
	}
	if !o.CanReach("loopy", "head", "after") {
		t.Fatal("head must reach after")
	}
	// after has no successors, so no block (itself included) is reachable
	// from it.
	if o.CanReach("loopy", "after", "head") {
		t.Fatal("after must not reach head: it has no outgoing edges")
	}
}

func TestOracleCachesAnalysis(t *testing.T) {
	o := NewOracle(&fakeProvider{graphs: map[string]*Graph{"f": linearGraph()}})
	first := o.CanReach("f", "entry", "exit")
	// analyzed map must now be populated for (f, exit); calling again must
	// hit the cache and return the same answer.
	second := o.CanReach("f", "entry", "exit")
	if first != second || !first {
		t.Fatal("repeated queries for the same destination must be stable")
	}
	if !o.analyzed["f"]["exit"] {
		t.Fatal("expected the oracle to cache analysis for the exit block")
	}
}

func TestCanReachInstSameBlockUsesProgramOrder(t *testing.T) {
	o := NewOracle(&fakeProvider{graphs: map[string]*Graph{"f": linearGraph()}})
	a := &svfg.Instruction{Function: "f", Block: "then", Index: 0}
	b := &svfg.Instruction{Function: "f", Block: "then", Index: 1}
	if !o.CanReachInst(a, b) {
		t.Fatal("earlier instruction in the same block must reach the later one")
	}
	if o.CanReachInst(b, a) {
		t.Fatal("later instruction must not reach the earlier one in the same block")
	}
}

func TestCanReachInstDifferentBlocks(t *testing.T) {
	o := NewOracle(&fakeProvider{graphs: map[string]*Graph{"f": linearGraph()}})
	a := &svfg.Instruction{Function: "f", Block: "entry", Index: 0}
	b := &svfg.Instruction{Function: "f", Block: "exit", Index: 0}
	if !o.CanReachInst(a, b) {
		t.Fatal("entry block instruction must reach exit block instruction")
	}
}

func TestCanReachInstCrossFunctionPanics(t *testing.T) {
	o := NewOracle(&fakeProvider{graphs: map[string]*Graph{"f": linearGraph()}})
	a := &svfg.Instruction{Function: "f", Block: "entry"}
	b := &svfg.Instruction{Function: "g", Block: "exit"}
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic on a cross-function CanReachInst query")
		}
	}()
	o.CanReachInst(a, b)
}
