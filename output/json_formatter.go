package output

import (
	"encoding/json"
	"io"
	"os"
	"time"
)

// JSONFormatter formats findings as JSON.
type JSONFormatter struct {
	writer  io.Writer
	options *OutputOptions
}

// NewJSONFormatter creates a JSON formatter.
func NewJSONFormatter(opts *OutputOptions) *JSONFormatter {
	if opts == nil {
		opts = NewDefaultOptions()
	}
	return &JSONFormatter{
		writer:  os.Stdout,
		options: opts,
	}
}

// NewJSONFormatterWithWriter creates a formatter with custom writer (for testing).
func NewJSONFormatterWithWriter(w io.Writer, opts *OutputOptions) *JSONFormatter {
	jf := NewJSONFormatter(opts)
	jf.writer = w
	return jf
}

// JSONOutput represents the complete JSON output structure.
type JSONOutput struct {
	Tool    JSONTool     `json:"tool"`
	Scan    JSONScan     `json:"scan"`
	Results []JSONResult `json:"results"`
	Summary JSONSummary  `json:"summary"`
	Errors  []string     `json:"errors,omitempty"`
}

// JSONTool contains tool metadata.
type JSONTool struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	URL     string `json:"url"`
}

// JSONScan contains scan metadata.
type JSONScan struct {
	ID            string  `json:"id"`
	Target        string  `json:"target"`
	Timestamp     string  `json:"timestamp"`
	Duration      float64 `json:"duration"`
	SourcesWalked int     `json:"sources_walked"` //nolint:tagliatelle
}

// JSONResult represents a single finding.
type JSONResult struct {
	ID         string          `json:"id"`
	UseKind    UseKind         `json:"use_kind"` //nolint:tagliatelle
	Verified   bool            `json:"verified"`
	FreeSite   JSONLocation    `json:"free_site"` //nolint:tagliatelle
	UseSite    JSONLocation    `json:"use_site"`  //nolint:tagliatelle
	Path       []JSONPathStep  `json:"path,omitempty"`
}

// JSONLocation contains a finding's location.
type JSONLocation struct {
	File     string `json:"file"`
	Line     int    `json:"line,omitempty"`
	Function string `json:"function,omitempty"`
}

// JSONPathStep is one node of the recorded value-flow path.
type JSONPathStep struct {
	Function string `json:"function"`
	File     string `json:"file,omitempty"`
	Line     int    `json:"line,omitempty"`
}

// JSONSummary contains aggregated statistics.
type JSONSummary struct {
	Total     int             `json:"total"`
	ByUseKind map[UseKind]int `json:"by_use_kind"` //nolint:tagliatelle
}

// ScanInfo contains metadata about the scan.
type ScanInfo struct {
	ID            string // per-run scan identifier, e.g. a uuid
	Target        string
	Version       string
	Duration      time.Duration
	SourcesWalked int
	Errors        []string
}

// Format outputs all findings as JSON.
func (f *JSONFormatter) Format(findings []*Finding, summary *Summary, scanInfo ScanInfo) error {
	output := f.buildOutput(findings, summary, scanInfo)

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func (f *JSONFormatter) buildOutput(findings []*Finding, summary *Summary, scanInfo ScanInfo) JSONOutput {
	version := scanInfo.Version
	if version == "" {
		version = "unknown"
	}

	return JSONOutput{
		Tool: JSONTool{
			Name:    "uafscan",
			Version: version,
			URL:     "https://github.com/shivasurya/uafscan",
		},
		Scan: JSONScan{
			ID:            scanInfo.ID,
			Target:        scanInfo.Target,
			Timestamp:     time.Now().UTC().Format(time.RFC3339),
			Duration:      scanInfo.Duration.Seconds(),
			SourcesWalked: scanInfo.SourcesWalked,
		},
		Results: f.buildResults(findings),
		Summary: JSONSummary{
			Total:     summary.TotalFindings,
			ByUseKind: summary.ByUseKind,
		},
		Errors: scanInfo.Errors,
	}
}

func (f *JSONFormatter) buildResults(findings []*Finding) []JSONResult {
	results := make([]JSONResult, 0, len(findings))

	for _, finding := range findings {
		results = append(results, JSONResult{
			ID:       finding.ID,
			UseKind:  finding.UseKind,
			Verified: finding.Verified,
			FreeSite: JSONLocation{File: finding.FreeFile, Line: finding.FreeLine, Function: finding.FreeFunction},
			UseSite:  JSONLocation{File: finding.UseFile, Line: finding.UseLine, Function: finding.UseFunction},
			Path:     f.buildPath(finding.Path),
		})
	}

	return results
}

func (f *JSONFormatter) buildPath(path []PathStep) []JSONPathStep {
	if len(path) == 0 {
		return nil
	}
	steps := make([]JSONPathStep, len(path))
	for i, step := range path {
		steps[i] = JSONPathStep{Function: step.Function, File: step.File, Line: step.Line}
	}
	return steps
}
