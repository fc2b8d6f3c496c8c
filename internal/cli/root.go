package cli

import (
	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/stackabletech/stackable/internal/config"
	"github.com/stackabletech/stackable/internal/logging"
)

var (
	configFile string
	settings   config.Settings
	logger     = logr.Discard()
)

var rootCmd = &cobra.Command{
	Use:   "stackablectl",
	Short: "Command line tool to interact with the Stackable Data Platform",
	Long: `stackablectl installs Stackable releases, stacks and demos into a Kubernetes cluster.

Releases, stacks and demos are read from the remote Stackable repositories
followed by any files given with --release-file, --stack-file and --demo-file
or the STACKABLE_RELEASE_FILES, STACKABLE_STACK_FILES and STACKABLE_DEMO_FILES
environment variables. Later files override entries of earlier ones.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initSettings(cmd)
	},
}

// flagKeys maps persistent flag names to their configuration keys.
var flagKeys = map[string]string{
	"release-file":       config.KeyReleaseFiles,
	"stack-file":         config.KeyStackFiles,
	"demo-file":          config.KeyDemoFiles,
	"no-cache":           config.KeyNoCache,
	"cache-dir":          config.KeyCacheDir,
	"cache-max-age":      config.KeyCacheMaxAge,
	"stale-fallback":     config.KeyStaleFallback,
	"state-dir":          config.KeyStateDir,
	"kubeconfig":         config.KeyKubeconfig,
	"context":            config.KeyKubeContext,
	"log-level":          config.KeyLogLevel,
	"demo-branch":        config.KeyDemoBranch,
	"no-default-sources": config.KeyNoDefaultSources,
}

func Execute() error {
	err := rootCmd.Execute()
	handleError(err)
	return err
}

func initSettings(cmd *cobra.Command) error {
	v := config.NewViper(configFile)
	if err := bindFlags(v, cmd); err != nil {
		return err
	}
	if err := config.ReadConfigFile(v, configFile != ""); err != nil {
		return err
	}

	loaded, err := config.Load(v)
	if err != nil {
		return err
	}
	log, err := logging.New(loaded.LogLevel)
	if err != nil {
		return err
	}

	settings = loaded
	logger = log
	return nil
}

// bindFlags binds the persistent flags under their configuration keys and
// the namespace flags of the running command under their own names.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for name, key := range flagKeys {
		if flag := cmd.Flags().Lookup(name); flag != nil {
			if err := v.BindPFlag(key, flag); err != nil {
				return err
			}
		}
	}

	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Name != config.KeyOperatorNamespace && f.Name != config.KeyProductNamespace {
			return
		}
		if err := v.BindPFlag(f.Name, f); err != nil && bindErr == nil {
			bindErr = err
		}
	})
	return bindErr
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Path to a config file (default $XDG_CONFIG_HOME/stackablectl/config.yaml)")
	flags.StringSliceP("release-file", "r", nil, "Additional release files (path, URL or oci:// reference)")
	flags.StringSliceP("stack-file", "s", nil, "Additional stack files (path, URL or oci:// reference)")
	flags.StringSliceP("demo-file", "d", nil, "Additional demo files (path, URL or oci:// reference)")
	flags.Bool("no-cache", false, "Do not cache remote files")
	flags.String("cache-dir", "", "Directory for cached remote files")
	flags.Duration("cache-max-age", 0, "Maximum age of cached remote files (default 24h)")
	flags.Bool("stale-fallback", false, "Use expired cache entries when a remote file cannot be refreshed")
	flags.String("state-dir", "", "Directory holding installation records")
	flags.String("kubeconfig", "", "Path to the kubeconfig file")
	flags.String("context", "", "Name of the kubeconfig context to use")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("demo-branch", config.DefaultDemoBranch, "Branch of the demos repository to read stacks and demos from")
	flags.Bool("no-default-sources", false, "Only read the files given explicitly")
	_ = flags.MarkHidden("no-default-sources")
}
