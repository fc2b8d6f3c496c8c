package cli

import (
	"errors"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/stackabletech/stackable/internal/core/install"
)

func TestDemoListCmd(t *testing.T) {
	env := newTestEnv(t)

	output, err := executeCommand(t, env.args("demo", "list")...)
	if err != nil {
		t.Fatalf("demo list failed: %v", err)
	}
	for _, expected := range []string{"NAME", "STACK", "trino-taxi-data", "trino-stack", "Taxi data analysis"} {
		if !strings.Contains(output, expected) {
			t.Errorf("output doesn't contain %q\nGot:\n%s", expected, output)
		}
	}
}

func TestDemoListCmdYAML(t *testing.T) {
	env := newTestEnv(t)

	output, err := executeCommand(t, env.args("demo", "list", "-o", "yaml")...)
	if err != nil {
		t.Fatalf("demo list failed: %v", err)
	}
	var decoded map[string]map[string]any
	if err := yaml.Unmarshal([]byte(output), &decoded); err != nil {
		t.Fatalf("output is not YAML: %v\n%s", err, output)
	}
	if decoded["trino-taxi-data"]["stackableStack"] != "trino-stack" {
		t.Errorf("unexpected demo: %v", decoded["trino-taxi-data"])
	}
}

func TestDemoDescribeCmd(t *testing.T) {
	env := newTestEnv(t)

	output, err := executeCommand(t, env.args("demo", "describe", "trino-taxi-data")...)
	if err != nil {
		t.Fatalf("demo describe failed: %v", err)
	}
	for _, expected := range []string{"DEMO", "trino-taxi-data", "STACK", "trino-stack", "minioPassword=minio", "stackablectl demo install trino-taxi-data"} {
		if !strings.Contains(output, expected) {
			t.Errorf("output doesn't contain %q\nGot:\n%s", expected, output)
		}
	}
}

func TestDemoDescribeUnknown(t *testing.T) {
	env := newTestEnv(t)

	_, err := executeCommand(t, env.args("demo", "describe", "missing")...)
	var noDemo *install.NoSuchDemoError
	if !errors.As(err, &noDemo) {
		t.Fatalf("expected NoSuchDemoError, got %v", err)
	}
	if !strings.Contains(err.Error(), `no demo with name "missing", available demos are: trino-taxi-data`) {
		t.Errorf("unexpected error message %q", err.Error())
	}
}

func TestDemoInstallCmdArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{name: "no args (invalid)", args: []string{}, wantErr: true},
		{name: "one arg (valid)", args: []string{"trino-taxi-data"}, wantErr: false},
		{name: "two args (invalid)", args: []string{"a", "b"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := demoInstallCmd.Args(demoInstallCmd, tt.args)
			if (err != nil) != tt.wantErr {
				t.Errorf("Args validation: wantErr=%v, got=%v", tt.wantErr, err)
			}
		})
	}
}

func TestDemoInstallCmdFlags(t *testing.T) {
	for _, name := range []string{"skip-release", "stack-parameters", "parameters", "operator-namespace", "product-namespace"} {
		if demoInstallCmd.Flags().Lookup(name) == nil {
			t.Errorf("expected --%s flag to be defined", name)
		}
	}
	if short := demoInstallCmd.Flags().ShorthandLookup("n"); short == nil || short.Name != "product-namespace" {
		t.Error("expected -n to be the product namespace shorthand")
	}
}
