package output

import (
	"fmt"
	"io"
	"os"
)

// TextFormatter formats findings as human-readable text.
type TextFormatter struct {
	writer  io.Writer
	options *OutputOptions
	logger  *Logger
}

// NewTextFormatter creates a text formatter.
func NewTextFormatter(opts *OutputOptions, logger *Logger) *TextFormatter {
	if opts == nil {
		opts = NewDefaultOptions()
	}
	return &TextFormatter{
		writer:  os.Stdout,
		options: opts,
		logger:  logger,
	}
}

// NewTextFormatterWithWriter creates a formatter with custom writer (for testing).
func NewTextFormatterWithWriter(w io.Writer, opts *OutputOptions, logger *Logger) *TextFormatter {
	tf := NewTextFormatter(opts, logger)
	tf.writer = w
	return tf
}

// Format outputs all findings as formatted text.
func (f *TextFormatter) Format(findings []*Finding, summary *Summary) error {
	if len(findings) == 0 {
		f.writeNoFindings()
		return nil
	}

	f.writeHeader()
	f.writeResults(findings)
	f.writeSummary(summary)

	if f.options.ShouldShowStatistics() {
		f.writeStatistics(summary)
	}

	return nil
}

func (f *TextFormatter) writeHeader() {
	fmt.Fprintln(f.writer, "uafscan use-after-free report")
	fmt.Fprintln(f.writer)
}

func (f *TextFormatter) writeNoFindings() {
	fmt.Fprintln(f.writer, "uafscan use-after-free report")
	fmt.Fprintln(f.writer)
	fmt.Fprintln(f.writer, "No use-after-free issues found.")
}

func (f *TextFormatter) writeResults(findings []*Finding) {
	fmt.Fprintln(f.writer, "Findings:")
	fmt.Fprintln(f.writer)

	for _, finding := range findings {
		f.writeFinding(finding)
	}
}

func (f *TextFormatter) writeFinding(finding *Finding) {
	fmt.Fprintf(f.writer, "  [%s] use-after-free: %s of a value freed in %s\n",
		finding.ID, finding.UseKind, finding.FreeFunction)

	fmt.Fprintf(f.writer, "    freed at   %s\n", f.formatLocation(finding.FreeFunction, finding.FreeFile, finding.FreeLine))
	fmt.Fprintf(f.writer, "    used at    %s\n", f.formatLocation(finding.UseFunction, finding.UseFile, finding.UseLine))

	confidence := "verified"
	if !finding.Verified {
		confidence = "unverified (path-condition check skipped)"
	}
	fmt.Fprintf(f.writer, "    confidence: %s\n", confidence)

	if f.options.ShouldShowDebug() && len(finding.Path) > 0 {
		fmt.Fprintln(f.writer, "    path:")
		for _, step := range finding.Path {
			fmt.Fprintf(f.writer, "      %s\n", f.formatLocation(step.Function, step.File, step.Line))
		}
	}
	fmt.Fprintln(f.writer)
}

func (f *TextFormatter) formatLocation(function, file string, line int) string {
	loc := file
	if loc == "" {
		loc = function
	}
	if line > 0 {
		loc = fmt.Sprintf("%s:%d", loc, line)
	}
	if function != "" && loc != function {
		loc = fmt.Sprintf("%s (in %s)", loc, function)
	}
	return loc
}

func (f *TextFormatter) writeSummary(summary *Summary) {
	fmt.Fprintln(f.writer, "Summary:")
	fmt.Fprintf(f.writer, "  %d use-after-free findings across %d deallocation sites\n",
		summary.TotalFindings, summary.SourcesWalked)
	fmt.Fprintln(f.writer)
}

func (f *TextFormatter) writeStatistics(summary *Summary) {
	fmt.Fprintln(f.writer, "By use kind:")
	for kind, count := range summary.ByUseKind {
		fmt.Fprintf(f.writer, "  %s: %d\n", kind, count)
	}
	fmt.Fprintln(f.writer)
}
