package loader

import (
	"fmt"

	"github.com/shivasurya/uafscan/internal/cfg"
	"github.com/shivasurya/uafscan/internal/svfg"
)

// Graph is the in-memory result of parsing a Snapshot: it implements
// svfg.Provider, svfg.PAG, svfg.CalleeResolver and cfg.Provider all at once,
// since a single JSON file is the source of truth for every one of them.
type Graph struct {
	nodes    map[svfg.NodeID]*svfg.Node
	outEdges map[svfg.NodeID][]svfg.Edge
	inEdges  map[svfg.NodeID][]svfg.Edge

	instructions map[string]*svfg.Instruction
	blockInstrs  map[string][]*svfg.Instruction
	blockFunc    map[string]string
	cfgs         map[string]*cfg.Graph

	callSiteIDs    map[string]svfg.CallSiteID // textual id -> dense id
	callSiteOrder  []svfg.CallSiteID
	callSiteInstr  map[svfg.CallSiteID]*svfg.Instruction
	callSiteCallee map[svfg.CallSiteID]string
	callSiteArgs   map[svfg.CallSiteID][]svfg.NodeID

	pendingUsers []pendingUser
}

func newGraph() *Graph {
	return &Graph{
		nodes:          make(map[svfg.NodeID]*svfg.Node),
		outEdges:       make(map[svfg.NodeID][]svfg.Edge),
		inEdges:        make(map[svfg.NodeID][]svfg.Edge),
		instructions:   make(map[string]*svfg.Instruction),
		blockInstrs:    make(map[string][]*svfg.Instruction),
		blockFunc:      make(map[string]string),
		cfgs:           make(map[string]*cfg.Graph),
		callSiteIDs:    make(map[string]svfg.CallSiteID),
		callSiteInstr:  make(map[svfg.CallSiteID]*svfg.Instruction),
		callSiteCallee: make(map[svfg.CallSiteID]string),
		callSiteArgs:   make(map[svfg.CallSiteID][]svfg.NodeID),
	}
}

// internCallSite assigns textual call-site names a dense svfg.CallSiteID in
// first-seen order, so the same name always maps to the same ID for the
// lifetime of this Graph (§3's CallSiteID stability invariant).
func (g *Graph) internCallSite(name string) svfg.CallSiteID {
	if id, ok := g.callSiteIDs[name]; ok {
		return id
	}
	id := svfg.CallSiteID(len(g.callSiteOrder))
	g.callSiteIDs[name] = id
	g.callSiteOrder = append(g.callSiteOrder, id)
	return id
}

// --- svfg.Provider ---

func (g *Graph) Node(id svfg.NodeID) (*svfg.Node, bool) {
	if id == svfg.Zero {
		return nil, false
	}
	n, ok := g.nodes[id]
	return n, ok
}

func (g *Graph) OutEdges(id svfg.NodeID) []svfg.Edge { return g.outEdges[id] }
func (g *Graph) InEdges(id svfg.NodeID) []svfg.Edge  { return g.inEdges[id] }

func (g *Graph) CallSiteInstruction(cs svfg.CallSiteID) (*svfg.Instruction, bool) {
	instr, ok := g.callSiteInstr[cs]
	return instr, ok
}

// --- svfg.PAG ---

func (g *Graph) CallSites() []svfg.CallSiteID {
	out := make([]svfg.CallSiteID, len(g.callSiteOrder))
	copy(out, g.callSiteOrder)
	return out
}

func (g *Graph) Args(cs svfg.CallSiteID) []svfg.NodeID {
	return g.callSiteArgs[cs]
}

// --- svfg.CalleeResolver ---

func (g *Graph) Callee(cs svfg.CallSiteID) (string, bool) {
	fn, ok := g.callSiteCallee[cs]
	if !ok || fn == "" {
		return "", false
	}
	return fn, true
}

// --- cfg.Provider ---

func (g *Graph) Graph(function string) (*cfg.Graph, bool) {
	c, ok := g.cfgs[function]
	return c, ok
}

func (g *Graph) Instructions(block string) []*svfg.Instruction {
	return g.blockInstrs[block]
}

func (g *Graph) BlockFunction(block string) (string, bool) {
	fn, ok := g.blockFunc[block]
	return fn, ok
}

// Deallocators is a svfg.SinkPredicate built from a snapshot's deallocator
// list: the set of function names the orchestrator and candidate filter
// treat as sink-like.
type Deallocators map[string]bool

func (d Deallocators) IsDeallocator(function string) bool { return d[function] }

func blockType(t string) (cfg.BlockType, error) {
	switch cfg.BlockType(t) {
	case cfg.BlockTypeEntry, cfg.BlockTypeExit, cfg.BlockTypeNormal, cfg.BlockTypeConditional, cfg.BlockTypeLoop, cfg.BlockTypeSwitch:
		return cfg.BlockType(t), nil
	default:
		return "", fmt.Errorf("loader: unknown block type %q", t)
	}
}

func instrKind(k string) (svfg.InstrKind, error) {
	switch svfg.InstrKind(k) {
	case svfg.InstrLoad, svfg.InstrStore, svfg.InstrCall, svfg.InstrOther:
		return svfg.InstrKind(k), nil
	default:
		return "", fmt.Errorf("loader: unknown instruction kind %q", k)
	}
}

func nodeKind(k string) (svfg.NodeKind, error) {
	switch svfg.NodeKind(k) {
	case svfg.KindStatement, svfg.KindPHI, svfg.KindActualParam, svfg.KindFormalParam,
		svfg.KindActualRet, svfg.KindFormalRet, svfg.KindActualIn, svfg.KindActualOut, svfg.KindNullPtr:
		return svfg.NodeKind(k), nil
	default:
		return "", fmt.Errorf("loader: unknown node kind %q", k)
	}
}

func edgeKind(k string) (svfg.EdgeKind, error) {
	switch svfg.EdgeKind(k) {
	case svfg.EdgeIntraDirect, svfg.EdgeIntraIndirect, svfg.EdgeCallDirect, svfg.EdgeCallIndirect,
		svfg.EdgeRetDirect, svfg.EdgeRetIndirect:
		return svfg.EdgeKind(k), nil
	default:
		return "", fmt.Errorf("loader: unknown edge kind %q", k)
	}
}
