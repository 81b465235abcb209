// Package svfg defines the data model for the sparse value-flow graph that
// the detector walks: nodes, edges, call sites and contexts. The graph
// itself is supplied by an external pointer-analysis pass; this package only
// describes its shape and the small set of provider interfaces the explorer
// needs to query it.
package svfg

// NodeID identifies a node in the value-flow graph. Nodes are opaque to
// this package; callers mint and interpret them.
type NodeID string

// CallSiteID is a small, dense identifier for a call site, shared by the
// SVFG's inter-procedural edges and the PAG's argument lists.
type CallSiteID int

// NodeKind classifies what a value-flow node represents.
type NodeKind string

const (
	KindStatement   NodeKind = "statement"
	KindPHI         NodeKind = "phi"
	KindActualParam NodeKind = "actual_param"
	KindFormalParam NodeKind = "formal_param"
	KindActualRet   NodeKind = "actual_ret"
	KindFormalRet   NodeKind = "formal_ret"
	KindActualIn    NodeKind = "actual_in"
	KindActualOut   NodeKind = "actual_out"
	KindNullPtr     NodeKind = "null_ptr"
)

// Node is a single SVFG vertex. Statement nodes anchor an Instruction;
// other kinds (PHI, actual/formal parameter and return nodes) carry only a
// tracked value identifier, used by the path-condition verifier's
// set_current_value side channel.
type Node struct {
	ID          NodeID
	Kind        NodeKind
	Function    string
	Block       string
	Instruction *Instruction
	Value       string
}

// EdgeKind classifies an SVFG edge as intraprocedural or inter-procedural,
// and as direct (def-use through a value) or indirect (through memory).
type EdgeKind string

const (
	EdgeIntraDirect   EdgeKind = "intra_direct"
	EdgeIntraIndirect EdgeKind = "intra_indirect"
	EdgeCallDirect    EdgeKind = "call_direct"
	EdgeCallIndirect  EdgeKind = "call_indirect"
	EdgeRetDirect     EdgeKind = "ret_direct"
	EdgeRetIndirect   EdgeKind = "ret_indirect"
)

// IsCall reports whether the edge crosses a call boundary (callee-ward).
func (k EdgeKind) IsCall() bool {
	return k == EdgeCallDirect || k == EdgeCallIndirect
}

// IsRet reports whether the edge crosses a return boundary (caller-ward).
func (k EdgeKind) IsRet() bool {
	return k == EdgeRetDirect || k == EdgeRetIndirect
}

// IsInter reports whether the edge is inter-procedural at all.
func (k EdgeKind) IsInter() bool {
	return k.IsCall() || k.IsRet()
}

// IsIntra reports whether the edge stays within one function.
func (k EdgeKind) IsIntra() bool {
	return k == EdgeIntraDirect || k == EdgeIntraIndirect
}

// Edge is a directed SVFG edge. CallSite is only meaningful when Kind is
// inter-procedural; it is the shared label matched by the context stack.
type Edge struct {
	From     NodeID
	To       NodeID
	Kind     EdgeKind
	CallSite CallSiteID
}

// Zero is the sentinel destination used for the synthetic seed edge the
// orchestrator pushes before backward exploration begins: a deallocation
// call site has no real SVFG successor, so its seed edge points at Zero.
const Zero NodeID = ""
