package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-logr/logr"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/samber/lo"
	"oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content"
	"oras.land/oras-go/v2/content/memory"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/retry"
)

const (
	Scheme = "oci://"

	MediaTypeSpec    = "application/vnd.stackable.spec.v1+yaml"
	ArtifactTypeSpec = "application/vnd.stackable.spec.v1"
	defaultTag       = "latest"
)

// Client moves single spec documents in and out of OCI registries.
type Client struct {
	log logr.Logger
}

func NewClient(log logr.Logger) *Client {
	return &Client{log: log}
}

// Pull returns the spec document stored at reference. The reference may carry
// the oci:// scheme.
func (c *Client) Pull(ctx context.Context, reference string) ([]byte, error) {
	repo, err := c.createRepository(reference)
	if err != nil {
		return nil, err
	}
	tag := lo.Ternary(repo.Reference.Reference != "", repo.Reference.Reference, defaultTag)

	store := memory.New()
	if _, err := oras.Copy(ctx, repo, tag, store, tag, oras.DefaultCopyOptions); err != nil {
		return nil, fmt.Errorf("failed to pull %s: %w", reference, err)
	}

	_, manifestContent, err := oras.FetchBytes(ctx, store, tag, oras.DefaultFetchBytesOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch manifest: %w", err)
	}

	var manifest ocispec.Manifest
	if err := json.Unmarshal(manifestContent, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	layer, ok := specLayer(manifest.Layers)
	if !ok {
		return nil, fmt.Errorf("artifact %s contains no layer of type %s", reference, MediaTypeSpec)
	}

	data, err := content.FetchAll(ctx, store, layer)
	if err != nil {
		return nil, fmt.Errorf("failed to read layer %s: %w", layer.Digest, err)
	}
	c.log.V(1).Info("pulled spec document", "reference", reference, "digest", layer.Digest.String())
	return data, nil
}

func specLayer(layers []ocispec.Descriptor) (ocispec.Descriptor, bool) {
	return lo.Find(layers, func(layer ocispec.Descriptor) bool {
		return layer.MediaType == MediaTypeSpec
	})
}

// Push uploads a single spec file and tags the resulting artifact.
func (c *Client) Push(ctx context.Context, specFile, reference string) error {
	data, err := os.ReadFile(filepath.Clean(specFile))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", specFile, err)
	}

	repo, err := c.createRepository(reference)
	if err != nil {
		return err
	}
	tag := lo.Ternary(repo.Reference.Reference != "", repo.Reference.Reference, defaultTag)

	specDesc, err := oras.PushBytes(ctx, repo, MediaTypeSpec, data)
	if err != nil {
		return fmt.Errorf("failed to push %s: %w", specFile, err)
	}
	specDesc.Annotations = map[string]string{
		ocispec.AnnotationTitle: filepath.Base(specFile),
	}

	packOpts := oras.PackManifestOptions{
		Layers: []ocispec.Descriptor{specDesc},
	}
	manifestDesc, err := oras.PackManifest(ctx, repo, oras.PackManifestVersion1_1, ArtifactTypeSpec, packOpts)
	if err != nil {
		return fmt.Errorf("failed to pack manifest: %w", err)
	}

	if err := repo.Tag(ctx, manifestDesc, tag); err != nil {
		return fmt.Errorf("failed to tag manifest: %w", err)
	}

	c.log.Info("pushed spec document", "reference", reference, "digest", manifestDesc.Digest.String())
	return nil
}

func (c *Client) createRepository(reference string) (*remote.Repository, error) {
	repo, err := remote.NewRepository(strings.TrimPrefix(reference, Scheme))
	if err != nil {
		return nil, fmt.Errorf("failed to create repository: %w", err)
	}

	repo.Client = &auth.Client{
		Client:     retry.DefaultClient,
		Cache:      auth.NewCache(),
		Credential: c.dockerCredentials(),
	}
	return repo, nil
}

func IsReference(ref string) bool {
	return strings.HasPrefix(ref, Scheme)
}
