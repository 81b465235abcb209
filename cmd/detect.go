package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shivasurya/uafscan/analytics"
	"github.com/shivasurya/uafscan/internal/config"
	"github.com/shivasurya/uafscan/internal/loader"
	"github.com/shivasurya/uafscan/internal/orchestrator"
	"github.com/shivasurya/uafscan/internal/svfg"
	"github.com/shivasurya/uafscan/output"
	"github.com/spf13/cobra"
)

var (
	detectFormat         string
	detectConfigPath     string
	detectMaxContextLen  int
	detectWorkers        int
	detectNoCheck        bool
	detectNoGlobal       bool
	detectFailOnFindings bool
	detectChangedFiles   string
)

var detectCmd = &cobra.Command{
	Use:   "detect <snapshot.json>",
	Short: "Detect use-after-frees in a sparse value-flow graph snapshot",
	Long: `detect loads a JSON snapshot of a program's sparse value-flow graph and
control-flow graphs, enumerates every deallocation call site as a UAF
source, drives the backward/forward explorer over each one, and reports
every path-condition-verified use-after-free it finds.`,
	Args: cobra.ExactArgs(1),
	RunE: runDetect,
}

func init() {
	detectCmd.Flags().StringVarP(&detectFormat, "format", "f", "text", "Output format: text, json, or sarif")
	detectCmd.Flags().StringVarP(&detectConfigPath, "config", "c", "", "Path to a YAML config file overlaying the defaults")
	detectCmd.Flags().IntVar(&detectMaxContextLen, "max-context-len", 0, "Override MaxCxtLen (0 keeps the config/default value)")
	detectCmd.Flags().IntVar(&detectWorkers, "workers", 0, "Override worker count (0 keeps the config/default value)")
	detectCmd.Flags().BoolVar(&detectNoCheck, "no-check", false, "Skip the path-condition verifier; report every syntactic candidate")
	detectCmd.Flags().BoolVar(&detectNoGlobal, "no-global", false, "Skip value-flow edges that cross function boundaries outside Call/Ret")
	detectCmd.Flags().BoolVar(&detectFailOnFindings, "fail-on-findings", false, "Exit non-zero if any use-after-free is reported")
	detectCmd.Flags().StringVar(&detectChangedFiles, "diff-only", "", "Comma-separated list of changed files; only report findings whose use site lands in one of them")
	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, args []string) error {
	start := time.Now()
	target := args[0]

	analytics.ReportEvent(analytics.DetectStarted)

	logger := output.NewLogger(verbosityFromFlags(cmd))
	opts := output.NewDefaultOptions()
	opts.Format = output.OutputFormat(detectFormat)

	conf, err := config.Load(detectConfigPath)
	if err != nil {
		analytics.ReportEvent(analytics.DetectFailed)
		return fmt.Errorf("loading config: %w", err)
	}
	applyDetectFlagOverrides(conf)

	logger.Progress("Loading snapshot %s...", target)
	graph, dealloc, err := loader.Load(target)
	if err != nil {
		analytics.ReportEvent(analytics.DetectFailed)
		return fmt.Errorf("loading snapshot: %w", err)
	}

	logger.Progress("Walking %d MaxCxtLen across %d workers...", conf.MaxCxtLen, conf.NWorkers)
	result, err := orchestrator.Run(orchestrator.Deps{
		SVFG:    graph,
		CFG:     graph,
		PAG:     graph,
		Callees: graph,
		Sinks:   dealloc,
	}, conf)
	if err != nil {
		analytics.ReportEvent(analytics.DetectFailed)
		return fmt.Errorf("running detector: %w", err)
	}

	findings := buildFindings(result, graph)
	if detectChangedFiles != "" {
		filter := output.NewDiffFilter(strings.Split(detectChangedFiles, ","))
		findings = filter.Filter(findings)
	}

	summary := output.BuildSummary(findings, result.SourcesWalked)
	scanInfo := output.ScanInfo{
		ID:            uuid.New().String(),
		Target:        target,
		Version:       Version,
		Duration:      time.Since(start),
		SourcesWalked: result.SourcesWalked,
	}

	if err := renderFindings(opts, logger, findings, summary, scanInfo); err != nil {
		analytics.ReportEvent(analytics.DetectFailed)
		return err
	}

	analytics.ReportEventWithProperties(analytics.DetectCompleted, map[string]interface{}{
		"findings_count": len(findings),
	})

	code := output.DetermineExitCode(findings, detectFailOnFindings, false)
	if code != output.ExitCodeSuccess {
		os.Exit(int(code))
	}
	return nil
}

func verbosityFromFlags(cmd *cobra.Command) output.VerbosityLevel {
	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		return output.VerbosityVerbose
	}
	return output.VerbosityDefault
}

func applyDetectFlagOverrides(conf *config.Config) {
	if detectMaxContextLen > 0 {
		conf.MaxCxtLen = detectMaxContextLen
	}
	if detectWorkers > 0 {
		conf.NWorkers = detectWorkers
	}
	if detectNoCheck {
		conf.NoCheck = true
	}
	if detectNoGlobal {
		conf.NoGlobal = true
	}
}

func renderFindings(opts *output.OutputOptions, logger *output.Logger, findings []*output.Finding, summary *output.Summary, scanInfo output.ScanInfo) error {
	switch opts.Format {
	case output.FormatJSON:
		return output.NewJSONFormatter(opts).Format(findings, summary, scanInfo)
	case output.FormatSARIF:
		return output.NewSARIFFormatter(opts).Format(findings, scanInfo)
	default:
		return output.NewTextFormatter(opts, logger).Format(findings, summary)
	}
}

// buildFindings converts the orchestrator's SVFG-shaped reports into the
// formatters' source-location-shaped Finding values (§output keeps no
// knowledge of svfg/explore/orchestrator types).
func buildFindings(result *orchestrator.Result, graph *loader.Graph) []*output.Finding {
	findings := make([]*output.Finding, 0, len(result.Reports))
	for i, r := range result.Reports {
		findings = append(findings, &output.Finding{
			ID:           fmt.Sprintf("UAF-%04d", i+1),
			FreeFunction: instrFunction(r.Free),
			FreeFile:     instrFile(r.Free),
			FreeLine:     instrLine(r.Free),
			UseFunction:  instrFunction(r.Use),
			UseFile:      instrFile(r.Use),
			UseLine:      instrLine(r.Use),
			UseKind:      useKindOf(r.Use),
			Verified:     r.Verified,
			Path:         buildPathSteps(r.Path, graph),
		})
	}
	return findings
}

func buildPathSteps(path []svfg.NodeID, graph *loader.Graph) []output.PathStep {
	if len(path) == 0 {
		return nil
	}
	steps := make([]output.PathStep, 0, len(path))
	for _, id := range path {
		node, ok := graph.Node(id)
		if !ok || node.Instruction == nil {
			continue
		}
		steps = append(steps, output.PathStep{
			Function: node.Instruction.Function,
			File:     node.Instruction.File,
			Line:     node.Instruction.Line,
		})
	}
	return steps
}

func useKindOf(instr *svfg.Instruction) output.UseKind {
	if instr == nil {
		return output.UseKindLoad
	}
	switch instr.Kind {
	case svfg.InstrStore:
		return output.UseKindStore
	case svfg.InstrCall:
		return output.UseKindDoubleFree
	default:
		return output.UseKindLoad
	}
}

func instrFunction(instr *svfg.Instruction) string {
	if instr == nil {
		return ""
	}
	return instr.Function
}

func instrFile(instr *svfg.Instruction) string {
	if instr == nil {
		return ""
	}
	return instr.File
}

func instrLine(instr *svfg.Instruction) int {
	if instr == nil {
		return 0
	}
	return instr.Line
}
