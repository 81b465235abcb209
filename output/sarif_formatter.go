package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	sarif "github.com/owenrumney/go-sarif/v2/sarif"
)

// SARIFFormatter formats findings as SARIF 2.1.0.
type SARIFFormatter struct {
	writer  io.Writer
	options *OutputOptions
}

// NewSARIFFormatter creates a SARIF formatter.
func NewSARIFFormatter(opts *OutputOptions) *SARIFFormatter {
	if opts == nil {
		opts = NewDefaultOptions()
	}
	return &SARIFFormatter{
		writer:  os.Stdout,
		options: opts,
	}
}

// NewSARIFFormatterWithWriter creates a formatter with custom writer (for testing).
func NewSARIFFormatterWithWriter(w io.Writer, opts *OutputOptions) *SARIFFormatter {
	sf := NewSARIFFormatter(opts)
	sf.writer = w
	return sf
}

const ruleID = "use-after-free"

// Format outputs all findings as SARIF.
func (f *SARIFFormatter) Format(findings []*Finding, scanInfo ScanInfo) error {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return err
	}

	run := sarif.NewRunWithInformationURI("uafscan", "https://github.com/shivasurya/uafscan")
	f.buildRule(run)

	for _, finding := range findings {
		f.buildResult(finding, run)
	}

	report.AddRun(run)

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

func (f *SARIFFormatter) buildRule(run *sarif.Run) {
	sarifRule := run.AddRule(ruleID).
		WithDescription("A pointer is dereferenced, written through, or freed again after it was already freed.").
		WithName("UseAfterFree").
		WithHelpURI("https://github.com/shivasurya/uafscan")

	sarifRule.WithDefaultConfiguration(sarif.NewReportingConfiguration().WithLevel("error"))
	sarifRule.WithProperties(map[string]interface{}{
		"tags":              []string{"security", "memory-safety"},
		"security-severity": "9.0",
		"precision":         "high",
	})
}

func (f *SARIFFormatter) buildResult(finding *Finding, run *sarif.Run) {
	message := fmt.Sprintf("%s of a value freed in %s", finding.UseKind, finding.FreeFunction)
	if !finding.Verified {
		message += " (path-condition check skipped)"
	}

	result := run.CreateResultForRule(ruleID).
		WithMessage(sarif.NewTextMessage(message))

	f.addLocation(finding, result)
	f.addCodeFlow(finding, result)
}

func (f *SARIFFormatter) addLocation(finding *Finding, result *sarif.Result) {
	region := sarif.NewRegion().WithStartLine(finding.UseLine)

	location := sarif.NewLocation().
		WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(finding.UseFile)).
				WithRegion(region),
		)

	result.AddLocation(location)
}

// addCodeFlow emits one ThreadFlowLocation per node of the finding's
// recorded backward+forward path, so a SARIF viewer can step through the
// full value-flow walk from the free to the reported use.
func (f *SARIFFormatter) addCodeFlow(finding *Finding, result *sarif.Result) {
	if len(finding.Path) == 0 {
		return
	}

	locations := make([]*sarif.ThreadFlowLocation, 0, len(finding.Path)+1)
	for _, step := range finding.Path {
		msg := "value flow: " + step.Function
		loc := sarif.NewLocation().
			WithPhysicalLocation(
				sarif.NewPhysicalLocation().
					WithArtifactLocation(sarif.NewArtifactLocation().WithUri(step.File)).
					WithRegion(sarif.NewRegion().WithStartLine(step.Line)),
			).
			WithMessage(sarif.NewTextMessage(msg))
		locations = append(locations, sarif.NewThreadFlowLocation().WithLocation(loc))
	}

	useLoc := sarif.NewLocation().
		WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(finding.UseFile)).
				WithRegion(sarif.NewRegion().WithStartLine(finding.UseLine)),
		).
		WithMessage(sarif.NewTextMessage("use: " + string(finding.UseKind)))
	locations = append(locations, sarif.NewThreadFlowLocation().WithLocation(useLoc))

	threadFlow := sarif.NewThreadFlow().WithLocations(locations)
	codeFlow := sarif.NewCodeFlow().
		WithThreadFlows([]*sarif.ThreadFlow{threadFlow}).
		WithMessage(sarif.NewTextMessage(fmt.Sprintf("value flow from free in %s to use in %s", finding.FreeFunction, finding.UseFunction)))

	result.WithCodeFlows([]*sarif.CodeFlow{codeFlow})
}
