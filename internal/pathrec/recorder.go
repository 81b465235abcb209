// Package pathrec implements the backtracking path recorder (C2): an
// append-only sequence with LIFO checkpoints, used by the backward and
// forward explorers to record the SVFG nodes visited on the current DFS
// branch and unwind them cleanly on backtrack.
package pathrec

import "github.com/shivasurya/uafscan/internal/svfg"

// Recorder is a growable node sequence with marked checkpoints. Add
// appends; Push records the current size as a checkpoint; Pop truncates
// back to an earlier checkpoint, discarding both the recorded nodes and
// the checkpoints at or after it.
//
// The plain Recorder allows duplicate entries: the same node can appear
// more than once in the sequence, which is exactly what the verifier (C7)
// relies on to find the pivot where a backward walk and its dual forward
// walk meet (the first node recorded twice).
type Recorder struct {
	items []svfg.NodeID
	marks []int
}

// New returns an empty Recorder.
func New() *Recorder {
	return &Recorder{}
}

// Add appends x to the recorded sequence.
func (r *Recorder) Add(x svfg.NodeID) {
	r.items = append(r.items, x)
}

// Push records the current size as a new checkpoint.
func (r *Recorder) Push() {
	r.marks = append(r.marks, len(r.items))
}

// Pop truncates the sequence back to the n-th most recent checkpoint
// (n=1, the default, is the top of the checkpoint stack) and discards that
// many checkpoints. Popping more checkpoints than exist truncates to
// empty. Popping with n<=0 is treated as n=1.
func (r *Recorder) Pop(n int) {
	if n <= 0 {
		n = 1
	}
	if n > len(r.marks) {
		r.items = r.items[:0]
		r.marks = r.marks[:0]
		return
	}
	idx := len(r.marks) - n
	target := 0
	if idx >= 0 && idx < len(r.marks) {
		target = r.marks[idx]
	}
	r.items = r.items[:target]
	r.marks = r.marks[:idx]
}

// Size returns the number of currently recorded nodes.
func (r *Recorder) Size() int {
	return len(r.items)
}

// Top returns the most recently recorded node, if any.
func (r *Recorder) Top() (svfg.NodeID, bool) {
	if len(r.items) == 0 {
		return "", false
	}
	return r.items[len(r.items)-1], true
}

// At returns the node recorded at position i (0-indexed).
func (r *Recorder) At(i int) svfg.NodeID {
	return r.items[i]
}

// Items returns a snapshot copy of the recorded sequence, in recording
// order. Mutating the returned slice does not affect the recorder.
func (r *Recorder) Items() []svfg.NodeID {
	out := make([]svfg.NodeID, len(r.items))
	copy(out, r.items)
	return out
}

// UniqueSet is the set-uniqueness variant of the recorder described
// alongside C2: Add is a no-op for an element already present, and Pop
// removes popped elements from the membership set along with the sequence.
// The explorers use this, separately from the plain path Recorder, to
// guard against infinite recursion on a cyclic intraprocedural value-flow
// edge (a context-stack match never fires to bound such a cycle, since
// intraprocedural edges don't change Ctx).
type UniqueSet struct {
	items []svfg.NodeID
	marks []int
	index map[svfg.NodeID]int
}

// NewUniqueSet returns an empty UniqueSet.
func NewUniqueSet() *UniqueSet {
	return &UniqueSet{index: make(map[svfg.NodeID]int)}
}

// Add appends x unless it is already a member.
func (u *UniqueSet) Add(x svfg.NodeID) {
	if _, ok := u.index[x]; ok {
		return
	}
	u.index[x] = len(u.items)
	u.items = append(u.items, x)
}

// Contains reports whether x is currently a member.
func (u *UniqueSet) Contains(x svfg.NodeID) bool {
	_, ok := u.index[x]
	return ok
}

// Push records the current size as a new checkpoint.
func (u *UniqueSet) Push() {
	u.marks = append(u.marks, len(u.items))
}

// Pop truncates back to the n-th most recent checkpoint, removing the
// discarded elements from the membership set as well as the sequence.
func (u *UniqueSet) Pop(n int) {
	if n <= 0 {
		n = 1
	}
	if n > len(u.marks) {
		n = len(u.marks)
	}
	idx := len(u.marks) - n
	target := 0
	if idx >= 0 && idx < len(u.marks) {
		target = u.marks[idx]
	}
	for _, x := range u.items[target:] {
		delete(u.index, x)
	}
	u.items = u.items[:target]
	u.marks = u.marks[:idx]
}

// Size returns the number of currently recorded members.
func (u *UniqueSet) Size() int {
	return len(u.items)
}
