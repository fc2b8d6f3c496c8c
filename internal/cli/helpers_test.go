package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const testReleases = `releases:
  "24.11":
    releaseDate: "2024-11-18"
    description: Stable release
    products:
      trino:
        operatorVersion: 24.11.0
      zookeeper:
        operatorVersion: 24.11.0
  "24.7":
    releaseDate: "2024-07-24"
    description: Previous release
    products:
      trino:
        operatorVersion: 24.7.0
`

const testStacks = `stacks:
  trino-stack:
    description: Trino with MinIO
    stackableRelease: "24.11"
    stackableOperators: [trino]
    labels: [trino, minio]
    manifests:
      - plainYaml: https://example.com/trino.yaml
    parameters:
      - name: trinoAdminPassword
        description: Password of the Trino admin user
        default: adminadmin
    customField: kept
  kafka-stack:
    description: Kafka with ZooKeeper
    stackableRelease: "24.7"
    labels: [kafka]
`

const testDemos = `demos:
  trino-taxi-data:
    description: Taxi data analysis with Trino
    stackableStack: trino-stack
    labels: [trino, taxi]
    manifests:
      - plainYaml: https://example.com/taxi.yaml
    parameters:
      - name: minioPassword
        description: MinIO password
        default: minio
`

type testEnv struct {
	dir      string
	releases string
	stacks   string
	demos    string
	stateDir string
	cacheDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	for _, key := range []string{"STACKABLE_RELEASE_FILES", "STACKABLE_STACK_FILES", "STACKABLE_DEMO_FILES"} {
		t.Setenv(key, "")
	}

	env := &testEnv{
		dir:      dir,
		releases: filepath.Join(dir, "releases.yaml"),
		stacks:   filepath.Join(dir, "stacks.yaml"),
		demos:    filepath.Join(dir, "demos.yaml"),
		stateDir: filepath.Join(dir, "state"),
		cacheDir: filepath.Join(dir, "cache"),
	}
	for path, content := range map[string]string{
		env.releases: testReleases,
		env.stacks:   testStacks,
		env.demos:    testDemos,
	} {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", path, err)
		}
	}
	return env
}

// args prefixes the command line with flags pointing at the test files.
func (e *testEnv) args(args ...string) []string {
	return append([]string{
		"--no-default-sources",
		"--release-file", e.releases,
		"--stack-file", e.stacks,
		"--demo-file", e.demos,
		"--state-dir", e.stateDir,
		"--cache-dir", e.cacheDir,
		"--log-level", "error",
	}, args...)
}

// executeCommand runs the root command with args and returns its stdout.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	return out.String(), err
}

// resetFlags restores every flag of cmd and its children to its default so
// that values do not leak between executions of the shared command tree.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, child := range cmd.Commands() {
		resetFlags(child)
	}
}
