package output

// DiffFilter filters findings to only include use-after-frees whose use
// site lands in a changed file. Used for diff-aware scanning where the
// whole program is analyzed but the report is limited to files changed in
// the PR/commit under review.
type DiffFilter struct {
	changedFiles map[string]bool // Set of relative file paths.
}

// NewDiffFilter creates a filter from a list of changed file paths.
// Paths should be relative to the project root (matching Finding.UseFile).
func NewDiffFilter(changedFiles []string) *DiffFilter {
	fileSet := make(map[string]bool, len(changedFiles))
	for _, f := range changedFiles {
		fileSet[f] = true
	}
	return &DiffFilter{changedFiles: fileSet}
}

// Filter returns only findings whose UseFile is in the changed files set.
// If no changed files were provided (empty set), all findings are returned.
func (f *DiffFilter) Filter(findings []*Finding) []*Finding {
	if len(f.changedFiles) == 0 {
		return findings
	}
	filtered := make([]*Finding, 0, len(findings))
	for _, finding := range findings {
		if f.changedFiles[finding.UseFile] {
			filtered = append(filtered, finding)
		}
	}
	return filtered
}

// FilteredCount returns the number of findings that would be removed.
func (f *DiffFilter) FilteredCount(findings []*Finding) int {
	if len(f.changedFiles) == 0 {
		return 0
	}
	count := 0
	for _, finding := range findings {
		if !f.changedFiles[finding.UseFile] {
			count++
		}
	}
	return count
}

// ChangedFileCount returns the number of changed files in the filter set.
func (f *DiffFilter) ChangedFileCount() int {
	return len(f.changedFiles)
}
