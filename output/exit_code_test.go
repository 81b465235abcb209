package output

import "testing"

func TestDetermineExitCode(t *testing.T) {
	finding := &Finding{ID: "UAF-0001"}

	tests := []struct {
		name           string
		findings       []*Finding
		failOnFindings bool
		hadErrors      bool
		want           ExitCode
	}{
		{"no findings, no flag", nil, false, false, ExitCodeSuccess},
		{"findings, flag unset", []*Finding{finding}, false, false, ExitCodeSuccess},
		{"findings, flag set", []*Finding{finding}, true, false, ExitCodeFindings},
		{"no findings, flag set", nil, true, false, ExitCodeSuccess},
		{"errors win over findings", []*Finding{finding}, true, true, ExitCodeError},
		{"errors win over clean run", nil, false, true, ExitCodeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetermineExitCode(tt.findings, tt.failOnFindings, tt.hadErrors)
			if got != tt.want {
				t.Errorf("DetermineExitCode() = %v, want %v", got, tt.want)
			}
		})
	}
}
