// Package orchestrator implements the orchestrator (C8): it enumerates
// deallocation call sites as UAF sources, drives the backward/forward
// explorer for each one, and assembles the confirmed findings into
// orchestrator.Report values the CLI and output formatters consume.
package orchestrator

import (
	"github.com/shivasurya/uafscan/internal/cfg"
	"github.com/shivasurya/uafscan/internal/svfg"
)

// Source is one registered UAF source (§4.9): the actual-parameter SVFG
// node of a deallocator call's first argument, plus the synthetic seed
// edge the backward explorer is started with.
type Source struct {
	Node     svfg.NodeID
	Seed     svfg.Edge
	CallSite svfg.CallSiteID
}

// EnumerateSources implements §4.9's initialization step: every call site
// whose callee resolves to a sink-like (deallocator) function with an
// empty body — no CFG registered for it, meaning it is external to the
// analyzed program, per §4.9's "has an empty body (external function)"
// qualifier — contributes its first argument as a source, seeded with a
// synthetic Call-direct edge labeled by the call site's ID.
//
// Iteration follows pag.CallSites()'s order, which the loader fixes to
// first-seen snapshot order, satisfying §5's reproducibility requirement
// on source enumeration order.
func EnumerateSources(pag svfg.PAG, callees svfg.CalleeResolver, sinks svfg.SinkPredicate, cfgs cfg.Provider) []Source {
	var sources []Source
	for _, cs := range pag.CallSites() {
		fn, ok := callees.Callee(cs)
		if !ok || !sinks.IsDeallocator(fn) {
			continue
		}
		if _, hasBody := cfgs.Graph(fn); hasBody {
			continue
		}
		args := pag.Args(cs)
		if len(args) == 0 {
			continue
		}
		src := args[0]
		sources = append(sources, Source{
			Node:     src,
			CallSite: cs,
			Seed: svfg.Edge{
				From:     src,
				To:       svfg.Zero,
				Kind:     svfg.EdgeCallDirect,
				CallSite: cs,
			},
		})
	}
	return sources
}
