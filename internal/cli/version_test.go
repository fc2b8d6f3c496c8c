package cli

import (
	"strings"
	"testing"
)

func TestVersionCmdOutput(t *testing.T) {
	newTestEnv(t)

	output, err := executeCommand(t, "version")
	if err != nil {
		t.Fatalf("version command failed: %v", err)
	}

	if !strings.Contains(output, "stackablectl") {
		t.Errorf("expected output to contain 'stackablectl', got: %s", output)
	}
	if !strings.Contains(output, version) {
		t.Errorf("expected output to contain version '%s', got: %s", version, output)
	}
	if !strings.Contains(output, commit) {
		t.Errorf("expected output to contain commit '%s', got: %s", commit, output)
	}
}

func TestVersionVariables(t *testing.T) {
	if version == "" {
		t.Error("version variable should not be empty")
	}
	if commit == "" {
		t.Error("commit variable should not be empty")
	}
}
