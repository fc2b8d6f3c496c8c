package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stackabletech/stackable/internal/core/spec"
)

func TestPublishCmdArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{name: "no args (invalid)", args: []string{}, wantErr: true},
		{name: "one arg (valid)", args: []string{"ghcr.io/acme/stacks:1.0.0"}, wantErr: false},
		{name: "two args (invalid)", args: []string{"ghcr.io/acme/stacks:1.0.0", "extra"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := publishCmd.Args(publishCmd, tt.args)
			if (err != nil) != tt.wantErr {
				t.Errorf("Args validation: wantErr=%v, got=%v", tt.wantErr, err)
			}
		})
	}
}

func TestPublishCmdFlags(t *testing.T) {
	fileFlag := publishCmd.Flags().Lookup("file")
	if fileFlag == nil {
		t.Fatal("Expected --file flag to be defined")
	}
	if fileFlag.Shorthand != "f" {
		t.Errorf("Expected -f shorthand, got %q", fileFlag.Shorthand)
	}
}

func TestValidateSpecFile(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		path      string
		wantKind  spec.Kind
		wantCount int
	}{
		{path: env.releases, wantKind: spec.KindRelease, wantCount: 2},
		{path: env.stacks, wantKind: spec.KindStack, wantCount: 2},
		{path: env.demos, wantKind: spec.KindDemo, wantCount: 1},
	}

	for _, tt := range tests {
		t.Run(string(tt.wantKind), func(t *testing.T) {
			kind, count, err := validateSpecFile(context.Background(), tt.path)
			if err != nil {
				t.Fatalf("validateSpecFile failed: %v", err)
			}
			if kind != tt.wantKind || count != tt.wantCount {
				t.Errorf("got %s/%d, want %s/%d", kind, count, tt.wantKind, tt.wantCount)
			}
		})
	}
}

func TestValidateSpecFileErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name          string
		content       string
		expectedError string
	}{
		{
			name:          "unknown document",
			content:       "services:\n  app:\n    image: nginx\n",
			expectedError: "is not a release, stack or demo file",
		},
		{
			name:          "invalid yaml",
			content:       "stacks: [\n",
			expectedError: "failed to parse",
		},
		{
			name:          "stack without release",
			content:       "stacks:\n  broken:\n    description: no release\n",
			expectedError: "broken",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "-")+".yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("failed to write file: %v", err)
			}
			_, _, err := validateSpecFile(context.Background(), path)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.expectedError) {
				t.Errorf("expected error containing %q, got %q", tt.expectedError, err.Error())
			}
		})
	}
}

func TestPublishMissingFile(t *testing.T) {
	env := newTestEnv(t)

	_, err := executeCommand(t, env.args("publish", "ghcr.io/acme/stacks:1.0.0", "--file", filepath.Join(env.dir, "missing.yaml"))...)
	if err == nil || !strings.Contains(err.Error(), "failed to read") {
		t.Fatalf("expected read error, got %v", err)
	}
}
