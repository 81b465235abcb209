package svfg

// Provider is the read-only SVFG query surface the explorer and verifier
// depend on. A real implementation wraps the pointer-analysis backend's own
// graph; internal/loader builds one from a JSON snapshot for tests and the
// CLI's default mode.
type Provider interface {
	// Node looks up a node by ID. ok is false for Zero or any ID the
	// provider has never seen.
	Node(id NodeID) (*Node, bool)

	// OutEdges returns the edges leaving id, in no particular order.
	OutEdges(id NodeID) []Edge

	// InEdges returns the edges entering id, in no particular order.
	InEdges(id NodeID) []Edge

	// CallSiteInstruction returns the call instruction a CallSiteID labels.
	CallSiteInstruction(cs CallSiteID) (*Instruction, bool)
}

// PAG is the points-to/argument surface (§6's "Points-to/Alias provider"
// collaborator, reduced to what the orchestrator needs): for every call
// site, the SVFG nodes backing its actual arguments.
type PAG interface {
	// CallSites enumerates every call site with argument information.
	CallSites() []CallSiteID

	// Args returns the actual-argument nodes of cs, in argument order.
	// Args(cs)[0] is the pointer a deallocator call frees.
	Args(cs CallSiteID) []NodeID
}

// CalleeResolver maps a call site to the function it calls. A call site
// whose callee cannot be determined statically (an indirect call through an
// unresolved function pointer) reports ok=false; the orchestrator treats
// that the same as any other missing static information (§7): the call
// site is simply not considered as a deallocation source.
type CalleeResolver interface {
	Callee(cs CallSiteID) (function string, ok bool)
}

// SinkPredicate decides whether a function is a deallocator, i.e. whether
// any call site resolving to it is a UAF source. Supplied externally; the
// detector never hardcodes allocator/deallocator identity.
type SinkPredicate interface {
	IsDeallocator(function string) bool
}
