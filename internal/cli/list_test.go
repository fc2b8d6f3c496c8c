package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/stackabletech/stackable/internal/core/install"
	"github.com/stackabletech/stackable/internal/core/spec"
)

func TestListCmd(t *testing.T) {
	env := newTestEnv(t)

	store := install.NewStore(env.stateDir)
	records := []install.Record{
		{
			Kind:              spec.KindDemo,
			Name:              "trino-taxi-data",
			Stack:             "trino-stack",
			Release:           "24.11",
			OperatorNamespace: "stackable-operators",
			ProductNamespace:  "default",
			InstallTime:       time.Now().Add(-time.Hour),
			Status:            "installed",
		},
		{
			Kind:             spec.KindStack,
			Name:             "kafka-stack",
			ProductNamespace: "kafka",
			InstallTime:      time.Now(),
			Status:           "installed",
		},
	}
	for _, rec := range records {
		if err := store.Save(rec); err != nil {
			t.Fatalf("failed to save record: %v", err)
		}
	}

	output, err := executeCommand(t, env.args("list")...)
	if err != nil {
		t.Fatalf("list command failed: %v", err)
	}

	expectedStrings := []string{
		"KIND",
		"NAME",
		"NAMESPACE",
		"INSTALLED",
		"trino-taxi-data",
		"trino-stack",
		"24.11",
		"kafka-stack",
		"kafka",
	}
	for _, expected := range expectedStrings {
		if !strings.Contains(output, expected) {
			t.Errorf("output doesn't contain %q\nGot:\n%s", expected, output)
		}
	}
}

func TestListCmdEmpty(t *testing.T) {
	env := newTestEnv(t)

	output, err := executeCommand(t, env.args("list")...)
	if err != nil {
		t.Fatalf("list command failed: %v", err)
	}
	if !strings.Contains(output, "No stacks or demos installed") {
		t.Errorf("expected empty message, got:\n%s", output)
	}
}
