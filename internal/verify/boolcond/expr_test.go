package boolcond

import (
	"testing"

	"github.com/shivasurya/uafscan/internal/cfg"
	"github.com/shivasurya/uafscan/internal/svfg"
)

type fakeProvider struct {
	graphs map[string]*cfg.Graph
	blocks map[string]string // block -> function
}

func (f *fakeProvider) Graph(function string) (*cfg.Graph, bool) {
	g, ok := f.graphs[function]
	return g, ok
}

func (f *fakeProvider) Instructions(block string) []*svfg.Instruction { return nil }

func (f *fakeProvider) BlockFunction(block string) (string, bool) {
	fn, ok := f.blocks[block]
	return fn, ok
}

func conditionalGraph() (*fakeProvider, string, string, string) {
	g := cfg.NewGraph("f")
	g.AddBlock(&cfg.BasicBlock{ID: "cond", Type: cfg.BlockTypeConditional, Condition: "c", TrueSucc: "then", FalseSucc: "els"})
	g.AddBlock(&cfg.BasicBlock{ID: "then", Type: cfg.BlockTypeNormal})
	g.AddBlock(&cfg.BasicBlock{ID: "els", Type: cfg.BlockTypeNormal})
	g.AddEdge("cond", "then")
	g.AddEdge("cond", "els")
	p := &fakeProvider{
		graphs: map[string]*cfg.Graph{"f": g},
		blocks: map[string]string{"cond": "f", "then": "f", "els": "f"},
	}
	return p, "cond", "then", "els"
}

func TestIntraGuardTrueBranch(t *testing.T) {
	p, cond, then, _ := conditionalGraph()
	a := New(p)
	g := a.IntraGuard(cond, then)
	if g.Equal(a.False()) || g.Equal(a.True()) {
		t.Fatal("expected a variable guard for the true branch, not True/False")
	}
}

func TestIntraGuardFalseBranchIsNegated(t *testing.T) {
	p, cond, then, els := conditionalGraph()
	a := New(p)
	trueGuard := a.IntraGuard(cond, then)
	falseGuard := a.IntraGuard(cond, els)
	if trueGuard.Equal(falseGuard) {
		t.Fatal("true and false branch guards must differ")
	}
}

func TestIntraGuardUnconditionalBlockIsTrue(t *testing.T) {
	p, _, then, _ := conditionalGraph()
	a := New(p)
	g := a.IntraGuard(then, "els")
	if !g.Equal(a.True()) {
		t.Fatal("an edge out of a non-conditional block must have a True guard")
	}
}

func TestAndAbsorbsFalse(t *testing.T) {
	p, cond, then, _ := conditionalGraph()
	a := New(p)
	v := a.IntraGuard(cond, then)
	if !a.And(v, a.False()).Equal(a.False()) {
		t.Fatal("And with False must be False")
	}
	if !a.And(v, a.True()).Equal(v) {
		t.Fatal("And with True must be a no-op")
	}
}

func TestOrIsIdempotentAndAbsorbsTrue(t *testing.T) {
	p, cond, then, _ := conditionalGraph()
	a := New(p)
	v := a.IntraGuard(cond, then)
	if !a.Or(v, v).Equal(v) {
		t.Fatal("Or of a condition with itself must be idempotent, required for the fixed point to terminate")
	}
	if !a.Or(v, a.True()).Equal(a.True()) {
		t.Fatal("Or with True must be True")
	}
	if !a.Or(v, a.False()).Equal(v) {
		t.Fatal("Or with False must be a no-op")
	}
}

func TestInterCallGuardUsesCallSiteBlock(t *testing.T) {
	p, cond, then, _ := conditionalGraph()
	a := New(p)
	// the call site block IS cond's true-branch target, so the guard for
	// reaching it should match the guard for the ordinary true-branch edge.
	direct := a.IntraGuard(cond, then)
	viaCall := a.InterCallGuard(cond, "callee_entry", then)
	if !direct.Equal(viaCall) {
		t.Fatal("InterCallGuard must derive from the branch reaching the call-site block")
	}
	// a call site in an unrelated block carries no branch information.
	viaUnrelated := a.InterCallGuard(cond, "callee_entry", "unrelated_block")
	if !viaUnrelated.Equal(a.True()) {
		t.Fatal("a call site outside cond's labeled successors must yield True")
	}
}
