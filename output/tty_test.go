package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTTYNonFileWriter(t *testing.T) {
	var buf bytes.Buffer
	assert.False(t, IsTTY(&buf))
}

func TestGetTerminalWidthNonFileWriterDefaults(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, 80, GetTerminalWidth(&buf))
}
