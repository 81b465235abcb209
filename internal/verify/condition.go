// Package verify implements the path-condition verifier (C7): given a
// recorded backward+forward walk and a candidate use, it builds a per-node
// boolean guard and accepts the candidate only if that guard is
// satisfiable. The boolean algebra itself is an external collaborator
// (§6); this package depends only on the small ConditionAlgebra interface,
// with internal/verify/boolcond supplying a default implementation.
package verify

// Condition is an opaque boolean guard value. Implementations are expected
// to treat structurally identical conditions as equal, since the fixed
// point in Step 3 of §4.8 relies on detecting when OR-merging a node's
// guard no longer changes it.
type Condition interface {
	// Equal reports whether this condition is the same value as other.
	Equal(other Condition) bool
}

// ConditionAlgebra is the path-condition allocator collaborator from §6:
// True/False sentinels, conjunction/disjunction, and guard formulas for
// each of the three SVFG edge shapes (intraprocedural, call, return).
type ConditionAlgebra interface {
	True() Condition
	False() Condition
	And(a, b Condition) Condition
	Or(a, b Condition) Condition

	// IntraGuard returns the guard for flowing from bbFrom to bbTo within
	// one function along ordinary control flow.
	IntraGuard(bbFrom, bbTo string) Condition

	// InterCallGuard returns the guard for flowing from bbFrom to bbTo
	// across a call edge anchored at bbCallSite.
	InterCallGuard(bbFrom, bbTo, bbCallSite string) Condition

	// InterRetGuard returns the guard for flowing from bbFrom to bbTo
	// across a return edge anchored at bbRetSite.
	InterRetGuard(bbFrom, bbTo, bbRetSite string) Condition

	// ClearScratch resets any per-query control-flow scratch state. The
	// verifier calls this before computing each edge guard (§5: "the
	// external condition algebra must be reset between candidate
	// verifications by the verifier itself").
	ClearScratch()

	// SetCurrentValue tells the algebra which IR value is currently being
	// propagated, for algebras that intern per-value BDDs.
	SetCurrentValue(value string)
}
