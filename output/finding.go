package output

// UseKind classifies how a Finding's reported instruction uses the freed
// pointer, mirroring the three kinds the candidate filter (C6) recognizes.
type UseKind string

const (
	UseKindLoad       UseKind = "load"
	UseKindStore      UseKind = "store"
	UseKindDoubleFree UseKind = "double_free"
)

// PathStep is one SVFG node along a Finding's recorded backward+forward
// walk, reduced to the source-level facts a human or a SARIF code flow
// can show: which function and line the node is anchored to.
type PathStep struct {
	Function string
	File     string
	Line     int
}

// Finding is one confirmed use-after-free, in a form the formatters can
// render without any knowledge of the SVFG/explorer/verifier types that
// produced it.
type Finding struct {
	ID string // stable per-run identifier, e.g. "UAF-0001"

	FreeFunction string
	FreeFile     string
	FreeLine     int

	UseFunction string
	UseFile     string
	UseLine     int
	UseKind     UseKind

	// Verified is false only when the scan ran with NoCheck and the
	// path-condition verifier was bypassed.
	Verified bool

	Path []PathStep
}

// Summary holds aggregated statistics over one run's findings.
type Summary struct {
	TotalFindings int
	SourcesWalked int
	ByUseKind     map[UseKind]int
}

// BuildSummary computes a Summary over findings.
func BuildSummary(findings []*Finding, sourcesWalked int) *Summary {
	s := &Summary{
		TotalFindings: len(findings),
		SourcesWalked: sourcesWalked,
		ByUseKind:     make(map[UseKind]int),
	}
	for _, f := range findings {
		s.ByUseKind[f.UseKind]++
	}
	return s
}
