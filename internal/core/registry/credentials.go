package registry

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"oras.land/oras-go/v2/registry/remote/auth"
)

const httpsPrefix = "https://"

type DockerConfig struct {
	Auths map[string]DockerAuth `json:"auths"`
}

type DockerAuth struct {
	Auth string `json:"auth"`
}

func (c *Client) dockerCredentials() auth.CredentialFunc {
	return func(ctx context.Context, registry string) (auth.Credential, error) {
		if cred := githubCredential(registry); cred.Username != "" {
			c.log.V(1).Info("using GITHUB_TOKEN for authentication", "registry", registry)
			return cred, nil
		}
		return dockerConfigCredential(registry)
	}
}

func githubCredential(registry string) auth.Credential {
	if !strings.Contains(registry, "ghcr.io") {
		return auth.EmptyCredential
	}

	token := os.Getenv("GITHUB_TOKEN")
	username := os.Getenv("GITHUB_USER")
	if token == "" || username == "" {
		return auth.EmptyCredential
	}

	return auth.Credential{
		Username: username,
		Password: token,
	}
}

func dockerConfigCredential(registry string) (auth.Credential, error) {
	configPath := dockerConfigPath()
	if configPath == "" {
		return auth.EmptyCredential, nil
	}

	config, err := loadDockerConfig(configPath)
	if err != nil {
		return auth.EmptyCredential, nil
	}

	return findRegistryCredential(config, registry), nil
}

func dockerConfigPath() string {
	if dockerConfig := os.Getenv("DOCKER_CONFIG"); dockerConfig != "" {
		return filepath.Join(dockerConfig, "config.json")
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".docker", "config.json")
}

func loadDockerConfig(configFile string) (DockerConfig, error) {
	var config DockerConfig

	cleanPath := filepath.Clean(configFile)
	if filepath.Base(cleanPath) != "config.json" {
		return config, fmt.Errorf("unexpected docker config file %s", configFile)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return config, err
	}

	err = json.Unmarshal(data, &config)
	return config, err
}

func findRegistryCredential(config DockerConfig, registry string) auth.Credential {
	registryKeys := lo.FlatMap([]string{registry, httpsPrefix + registry}, func(base string, _ int) []string {
		return []string{base, base + "/v1/", base + "/v2/"}
	})

	return lo.Reduce(registryKeys, func(acc auth.Credential, key string, _ int) auth.Credential {
		if acc.Username != "" {
			return acc
		}
		return decodeAuth(config.Auths[key].Auth)
	}, auth.EmptyCredential)
}

func decodeAuth(authStr string) auth.Credential {
	if authStr == "" {
		return auth.EmptyCredential
	}

	decoded, err := base64.StdEncoding.DecodeString(authStr)
	if err != nil {
		return auth.EmptyCredential
	}

	user, password, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return auth.EmptyCredential
	}

	return auth.Credential{
		Username: user,
		Password: password,
	}
}
