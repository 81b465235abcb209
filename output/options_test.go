package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDefaultOptions(t *testing.T) {
	opts := NewDefaultOptions()
	assert.Equal(t, VerbosityDefault, opts.Verbosity)
	assert.Equal(t, FormatText, opts.Format)
}

func TestShouldShowStatistics(t *testing.T) {
	assert.False(t, (&OutputOptions{Verbosity: VerbosityDefault}).ShouldShowStatistics())
	assert.True(t, (&OutputOptions{Verbosity: VerbosityVerbose}).ShouldShowStatistics())
	assert.True(t, (&OutputOptions{Verbosity: VerbosityDebug}).ShouldShowStatistics())
}

func TestShouldShowDebug(t *testing.T) {
	assert.False(t, (&OutputOptions{Verbosity: VerbosityVerbose}).ShouldShowDebug())
	assert.True(t, (&OutputOptions{Verbosity: VerbosityDebug}).ShouldShowDebug())
}
