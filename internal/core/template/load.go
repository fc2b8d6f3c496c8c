package template

import (
	"context"

	"gopkg.in/yaml.v3"

	"github.com/stackabletech/stackable/internal/core/fetch"
)

type Fetcher interface {
	Fetch(ctx context.Context, source fetch.Source) ([]byte, error)
}

// LoadText fetches source and renders it with params.
func LoadText(ctx context.Context, fetcher Fetcher, source fetch.Source, params map[string]string) (string, error) {
	raw, err := fetcher.Fetch(ctx, source)
	if err != nil {
		return "", err
	}
	return Render(source.Location, string(raw), params)
}

// Load fetches source, renders it with params and decodes the result as T.
func Load[T any](ctx context.Context, fetcher Fetcher, source fetch.Source, params map[string]string) (T, error) {
	var out T

	rendered, err := LoadText(ctx, fetcher, source, params)
	if err != nil {
		return out, err
	}

	if err := yaml.Unmarshal([]byte(rendered), &out); err != nil {
		return out, &YamlError{Source: source.Location, Err: err}
	}
	return out, nil
}
