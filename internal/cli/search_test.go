package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stackabletech/stackable/internal/core/fetch"
	"github.com/stackabletech/stackable/internal/core/spec"
)

func testLists(t *testing.T, env *testEnv) *specLists {
	t.Helper()
	fetcher, err := fetch.New(fetch.CacheSettings{})
	if err != nil {
		t.Fatalf("failed to create fetcher: %v", err)
	}
	stacks, err := buildList[spec.StackDocument, *spec.Stack](context.Background(), fetcher, []string{env.stacks})
	if err != nil {
		t.Fatalf("failed to build stacks: %v", err)
	}
	demos, err := buildList[spec.DemoDocument, *spec.Demo](context.Background(), fetcher, []string{env.demos})
	if err != nil {
		t.Fatalf("failed to build demos: %v", err)
	}
	return &specLists{stacks: stacks, demos: demos}
}

func TestSearchCmd_Flags(t *testing.T) {
	if searchCmd.Flags().Lookup("limit") == nil {
		t.Error("Expected --limit flag to be defined")
	}
}

func TestSearchCmd_Args(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{name: "no args (valid)", args: []string{}, wantErr: false},
		{name: "one arg (valid)", args: []string{"trino"}, wantErr: false},
		{name: "two args (invalid)", args: []string{"trino", "extra"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := searchCmd.Args(searchCmd, tt.args)
			if (err != nil) != tt.wantErr {
				t.Errorf("Args validation: wantErr=%v, got=%v", tt.wantErr, err)
			}
		})
	}
}

func TestSearchSpecs(t *testing.T) {
	lists := testLists(t, newTestEnv(t))

	tests := []struct {
		name     string
		query    string
		limit    int
		contains []string
		excludes []string
	}{
		{
			name:     "by label",
			query:    "taxi",
			contains: []string{"[demo] trino-taxi-data", "Found 1 result(s)"},
			excludes: []string{"[stack]"},
		},
		{
			name:     "stacks and demos",
			query:    "trino",
			contains: []string{"[stack] trino-stack", "[demo] trino-taxi-data", "Labels: trino, minio"},
			excludes: []string{"kafka-stack"},
		},
		{
			name:     "limit",
			query:    "",
			limit:    1,
			contains: []string{"Found 1 result(s)", "[stack] trino-stack"},
			excludes: []string{"kafka-stack"},
		},
		{
			name:     "no match",
			query:    "hbase",
			contains: []string{"No stacks or demos found matching 'hbase'"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := searchSpecs(&buf, lists, tt.query, tt.limit); err != nil {
				t.Fatalf("searchSpecs failed: %v", err)
			}
			output := buf.String()
			for _, expected := range tt.contains {
				if !strings.Contains(output, expected) {
					t.Errorf("output doesn't contain %q\nGot:\n%s", expected, output)
				}
			}
			for _, unexpected := range tt.excludes {
				if strings.Contains(output, unexpected) {
					t.Errorf("output unexpectedly contains %q\nGot:\n%s", unexpected, output)
				}
			}
		})
	}
}

func TestSearchCmd(t *testing.T) {
	env := newTestEnv(t)

	output, err := executeCommand(t, env.args("search", "kafka")...)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if !strings.Contains(output, "[stack] kafka-stack") {
		t.Errorf("expected kafka-stack in output:\n%s", output)
	}
}
