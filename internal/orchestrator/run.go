package orchestrator

import (
	"sync"

	"github.com/shivasurya/uafscan/internal/cfg"
	"github.com/shivasurya/uafscan/internal/config"
	"github.com/shivasurya/uafscan/internal/explore"
	"github.com/shivasurya/uafscan/internal/svfg"
	"github.com/shivasurya/uafscan/internal/verify"
	"github.com/shivasurya/uafscan/internal/verify/boolcond"
)

// verifyCacheSize bounds the per-worker (source, candidate) memoization
// table (internal/verify.CachedVerifier). Not a tunable in §6's
// configuration table; chosen generously since one cache lives per worker
// goroutine, not per source.
const verifyCacheSize = 4096

// Deps bundles the external collaborators §6 specifies: the SVFG, the PAG,
// the callee resolver, the sink predicate and the CFG provider. One Deps
// value backs an entire detect run.
type Deps struct {
	SVFG    svfg.Provider
	CFG     cfg.Provider
	PAG     svfg.PAG
	Callees svfg.CalleeResolver
	Sinks   svfg.SinkPredicate
}

// Run enumerates sources and drives the backward/forward explorer for each
// one (§4.9's Drive step), fanning out across conf.NWorkers goroutines.
//
// §5 scopes single-threaded cooperative execution to "a single UAF query":
// each source is its own query, so distinct sources may run concurrently
// as long as each gets its own cfg.Oracle, condition algebra and verifier —
// exactly the "one oracle per analysis thread" policy §5 calls out, since
// none of those three are safe to share across goroutines. Report order is
// still made reproducible: outcomes are collected into a slice indexed by
// enumeration order and only then flattened, per §5's ordering requirement.
func Run(deps Deps, conf *config.Config) (*Result, error) {
	sources := EnumerateSources(deps.PAG, deps.Callees, deps.Sinks, deps.CFG)
	if len(sources) == 0 {
		return &Result{}, nil
	}

	workers := conf.NWorkers
	if workers < 1 {
		workers = 1
	}
	if workers > len(sources) {
		workers = len(sources)
	}

	type job struct {
		index int
		src   Source
	}
	type outcome struct {
		index   int
		reports []explore.Report
	}

	jobs := make(chan job)
	outcomes := make(chan outcome)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			oracle := cfg.NewOracle(deps.CFG)
			algebra := boolcond.New(deps.CFG)
			verifier := verify.New(deps.SVFG, algebra)

			var v explore.Verifier = verifier
			if cached, err := verify.NewCached(verifier, verifyCacheSize); err == nil {
				v = cached
			}

			ex := explore.New(deps.SVFG, oracle, deps.Sinks, v, conf)
			for j := range jobs {
				outcomes <- outcome{index: j.index, reports: ex.Run(j.src.Node, j.src.Seed)}
			}
		}()
	}

	go func() {
		for i, src := range sources {
			jobs <- job{index: i, src: src}
		}
		close(jobs)
	}()
	go func() {
		wg.Wait()
		close(outcomes)
	}()

	bySource := make([][]explore.Report, len(sources))
	for o := range outcomes {
		bySource[o.index] = o.reports
	}

	result := &Result{SourcesWalked: len(sources)}
	for i, reports := range bySource {
		src := sources[i]
		free, _ := deps.SVFG.CallSiteInstruction(src.CallSite)
		for _, r := range reports {
			result.Reports = append(result.Reports, Report{
				Source:       r.Source,
				FreeCallSite: src.CallSite,
				Free:         free,
				Use:          r.Use,
				Path:         r.Path,
				Verified:     !conf.NoCheck,
			})
		}
	}

	return result, nil
}
