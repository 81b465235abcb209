package orchestrator

import "github.com/shivasurya/uafscan/internal/svfg"

// Report is one confirmed use-after-free, carrying everything the output
// formatters need to render a finding: the freeing call site and the
// candidate use the forward explorer (C5) and candidate filter (C6) found,
// plus the full recorded backward+forward path (C2) the path-condition
// verifier (C7) accepted.
type Report struct {
	Source       svfg.NodeID
	FreeCallSite svfg.CallSiteID
	Free         *svfg.Instruction
	Use          *svfg.Instruction
	Path         []svfg.NodeID

	// Verified is false when the run skipped the path-condition verifier
	// (§6's no-check option): the report is a syntactic candidate only.
	Verified bool
}

// Result is the outcome of one detect run.
type Result struct {
	Reports       []Report
	SourcesWalked int
}
