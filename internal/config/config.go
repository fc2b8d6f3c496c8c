// Package config resolves stackablectl settings from flags, STACKABLE_*
// environment variables and an optional config file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/stackabletech/stackable/internal/core/fetch"
	"github.com/stackabletech/stackable/internal/core/install"
)

const (
	appName   = "stackablectl"
	envPrefix = "STACKABLE"

	RemoteReleaseFile = "https://raw.githubusercontent.com/stackabletech/release/main/releases.yaml"
	RemoteDemoBaseURL = "https://raw.githubusercontent.com/stackabletech/demos/refs/heads/"
	DefaultDemoBranch = "main"
)

// Keys shared by viper, environment variables and the config file. The
// environment variable of a key is STACKABLE_ followed by the key in upper
// case with dashes replaced by underscores.
const (
	KeyReleaseFiles      = "release-files"
	KeyStackFiles        = "stack-files"
	KeyDemoFiles         = "demo-files"
	KeyNoCache           = "no-cache"
	KeyCacheDir          = "cache-dir"
	KeyCacheMaxAge       = "cache-max-age"
	KeyStaleFallback     = "stale-fallback"
	KeyStateDir          = "state-dir"
	KeyOperatorNamespace = "operator-namespace"
	KeyProductNamespace  = "product-namespace"
	KeyKubeconfig        = "kubeconfig"
	KeyKubeContext       = "context"
	KeyLogLevel          = "log-level"
	KeyDemoBranch        = "demo-branch"
	KeyNoDefaultSources  = "no-default-sources"
)

// Settings is the resolved configuration of one invocation.
type Settings struct {
	ReleaseFiles []string
	StackFiles   []string
	DemoFiles    []string

	Cache    fetch.CacheSettings
	StateDir string

	OperatorNamespace string
	ProductNamespace  string
	Kubeconfig        string
	KubeContext       string
	LogLevel          string

	DemoBranch       string
	NoDefaultSources bool
}

// NewViper returns a viper instance with defaults, environment binding and
// config file lookup configured. An explicit configFile must exist when read.
func NewViper(configFile string) *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	v.SetDefault(KeyCacheMaxAge, fetch.DefaultMaxAge)
	v.SetDefault(KeyOperatorNamespace, install.DefaultOperatorNamespace)
	v.SetDefault(KeyProductNamespace, install.DefaultProductNamespace)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyDemoBranch, DefaultDemoBranch)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		for _, dir := range configSearchDirs() {
			v.AddConfigPath(dir)
		}
	}
	return v
}

// ReadConfigFile loads the config file. A missing file is only an error when
// it was requested explicitly.
func ReadConfigFile(v *viper.Viper, strict bool) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && !strict {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// Load resolves Settings from v.
func Load(v *viper.Viper) (Settings, error) {
	maxAge := v.GetDuration(KeyCacheMaxAge)
	if maxAge <= 0 {
		return Settings{}, fmt.Errorf("invalid %s %q: must be positive", KeyCacheMaxAge, v.GetString(KeyCacheMaxAge))
	}

	cacheDir, err := resolveDir(v.GetString(KeyCacheDir), DefaultCacheDir)
	if err != nil {
		return Settings{}, err
	}
	stateDir, err := resolveDir(v.GetString(KeyStateDir), GetStateDir)
	if err != nil {
		return Settings{}, err
	}

	return Settings{
		ReleaseFiles: splitList(v.GetStringSlice(KeyReleaseFiles)),
		StackFiles:   splitList(v.GetStringSlice(KeyStackFiles)),
		DemoFiles:    splitList(v.GetStringSlice(KeyDemoFiles)),
		Cache: fetch.CacheSettings{
			BaseDir:       cacheDir,
			MaxAge:        maxAge,
			UseCache:      !v.GetBool(KeyNoCache),
			StaleFallback: v.GetBool(KeyStaleFallback),
		},
		StateDir:          stateDir,
		OperatorNamespace: v.GetString(KeyOperatorNamespace),
		ProductNamespace:  v.GetString(KeyProductNamespace),
		Kubeconfig:        v.GetString(KeyKubeconfig),
		KubeContext:       v.GetString(KeyKubeContext),
		LogLevel:          v.GetString(KeyLogLevel),
		DemoBranch:        v.GetString(KeyDemoBranch),
		NoDefaultSources:  v.GetBool(KeyNoDefaultSources),
	}, nil
}

// ReleaseSources returns the remote release file followed by user supplied
// files. Later sources override earlier ones.
func (s Settings) ReleaseSources() []string {
	return s.withDefault(RemoteReleaseFile, s.ReleaseFiles)
}

func (s Settings) StackSources() []string {
	return s.withDefault(RemoteDemoBaseURL+s.branch()+"/stacks/stacks-v2.yaml", s.StackFiles)
}

func (s Settings) DemoSources() []string {
	return s.withDefault(RemoteDemoBaseURL+s.branch()+"/demos/demos-v2.yaml", s.DemoFiles)
}

func (s Settings) branch() string {
	if s.DemoBranch == "" {
		return DefaultDemoBranch
	}
	return s.DemoBranch
}

func (s Settings) withDefault(remote string, extra []string) []string {
	if s.NoDefaultSources {
		return append([]string(nil), extra...)
	}
	return append([]string{remote}, extra...)
}

// GetStateDir returns the directory holding the installation records.
func GetStateDir() (string, error) {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "state", appName), nil
}

// DefaultCacheDir returns the per-user cache directory.
func DefaultCacheDir() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName), nil
}

func resolveDir(configured string, fallback func() (string, error)) (string, error) {
	if configured == "" {
		dir, err := fallback()
		if err != nil {
			return "", fmt.Errorf("failed to determine default directory: %w", err)
		}
		return dir, nil
	}
	expanded, err := homedir.Expand(configured)
	if err != nil {
		return "", fmt.Errorf("failed to expand %q: %w", configured, err)
	}
	return filepath.Clean(expanded), nil
}

// splitList accepts both repeated values and comma separated values, the
// latter being the only way to pass several files through one variable.
func splitList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func configSearchDirs() []string {
	var dirs []string
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		dirs = append(dirs, filepath.Join(dir, appName))
	}
	if dir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(dir, appName))
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, "."+appName))
	}
	return dirs
}
