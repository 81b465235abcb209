package verify

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/shivasurya/uafscan/internal/svfg"
)

// CachedVerifier memoizes Verify results keyed by (source, candidate): the
// same (Src, U) pair can be rediscovered via distinct context-matched paths
// during backward/forward re-exploration, and re-running the fixed-point
// propagation for an identical pair each time is wasted work.
//
// Memoizing by (source, candidate) rather than by the full recorded path is
// deliberately coarser — two distinct paths reaching the same pair collapse
// to one cache entry, keeping the first verdict — which is sound for
// report-counting purposes since spec.md's orchestrator only needs to know
// whether a pair is reportable, not how many distinct paths justify it.
type CachedVerifier struct {
	inner *Verifier
	cache *lru.Cache[string, bool]
}

// NewCached wraps inner with an LRU cache of the given capacity.
func NewCached(inner *Verifier, capacity int) (*CachedVerifier, error) {
	c, err := lru.New[string, bool](capacity)
	if err != nil {
		return nil, err
	}
	return &CachedVerifier{inner: inner, cache: c}, nil
}

// Verify behaves like Verifier.Verify but serves repeated (source,
// candidate) pairs from cache. Errors are never cached.
func (c *CachedVerifier) Verify(path []svfg.NodeID, candidateFunction, candidateBlock string, source, candidate svfg.NodeID) (bool, error) {
	key := fmt.Sprintf("%s|%s", source, candidate)
	if v, ok := c.cache.Get(key); ok {
		return v, nil
	}
	accepted, err := c.inner.Verify(path, candidateFunction, candidateBlock, source, candidate)
	if err != nil {
		return false, err
	}
	c.cache.Add(key, accepted)
	return accepted, nil
}
