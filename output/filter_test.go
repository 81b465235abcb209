package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiffFilterNoChangedFiles(t *testing.T) {
	filter := NewDiffFilter(nil)
	findings := []*Finding{{ID: "UAF-0001", UseFile: "a.c"}}

	assert.Equal(t, findings, filter.Filter(findings))
	assert.Equal(t, 0, filter.FilteredCount(findings))
	assert.Equal(t, 0, filter.ChangedFileCount())
}

func TestDiffFilterKeepsOnlyChangedFiles(t *testing.T) {
	filter := NewDiffFilter([]string{"a.c"})
	findings := []*Finding{
		{ID: "UAF-0001", UseFile: "a.c"},
		{ID: "UAF-0002", UseFile: "b.c"},
	}

	filtered := filter.Filter(findings)
	assert.Len(t, filtered, 1)
	assert.Equal(t, "UAF-0001", filtered[0].ID)
	assert.Equal(t, 1, filter.FilteredCount(findings))
	assert.Equal(t, 1, filter.ChangedFileCount())
}

func TestDiffFilterNoMatches(t *testing.T) {
	filter := NewDiffFilter([]string{"c.c"})
	findings := []*Finding{{ID: "UAF-0001", UseFile: "a.c"}}

	assert.Empty(t, filter.Filter(findings))
	assert.Equal(t, 1, filter.FilteredCount(findings))
}
