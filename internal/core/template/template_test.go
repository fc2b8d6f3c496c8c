package template

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackabletech/stackable/internal/core/fetch"
)

type mapFetcher map[string]string

func (m mapFetcher) Fetch(_ context.Context, source fetch.Source) ([]byte, error) {
	data, ok := m[source.Location]
	if !ok {
		return nil, &fetch.LocalReadError{Path: source.Location, Err: errors.New("not found")}
	}
	return []byte(data), nil
}

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		params   map[string]string
		expected string
		wantErr  bool
	}{
		{
			name:     "function style placeholder",
			text:     "password: {{ adminPassword }}",
			params:   map[string]string{"adminPassword": "secret"},
			expected: "password: secret",
		},
		{
			name:     "field style placeholder",
			text:     "bucket: {{ .s3Bucket }}",
			params:   map[string]string{"s3Bucket": "demo"},
			expected: "bucket: demo",
		},
		{
			name:     "non identifier names through index",
			text:     `version: {{ index . "trino-version" }}`,
			params:   map[string]string{"trino-version": "451"},
			expected: "version: 451",
		},
		{
			name:     "no placeholders",
			text:     "plain: text",
			expected: "plain: text",
		},
		{
			name:    "unknown function style placeholder",
			text:    "x: {{ missing }}",
			params:  map[string]string{"other": "1"},
			wantErr: true,
		},
		{
			name:    "unknown field style placeholder",
			text:    "x: {{ .missing }}",
			params:  map[string]string{"other": "1"},
			wantErr: true,
		},
		{
			name:    "builtin name without parameter",
			text:    "x: {{ print }}",
			params:  map[string]string{"other": "1"},
			wantErr: true,
		},
		{
			name:    "builtin used as argument",
			text:    "x: {{ len .other }}",
			params:  map[string]string{"other": "1"},
			wantErr: true,
		},
		{
			name:     "parameter shadowing a builtin",
			text:     "x: {{ html }}",
			params:   map[string]string{"html": "<b>"},
			expected: "x: <b>",
		},
		{
			name:    "index of a missing parameter",
			text:    `x: {{ index . "trino-version" }}`,
			params:  map[string]string{"other": "1"},
			wantErr: true,
		},
		{
			name:    "builtin inside a conditional",
			text:    "{{ if .other }}{{ printf \"%s\" .other }}{{ end }}",
			params:  map[string]string{"other": "1"},
			wantErr: true,
		},
		{
			name:    "unterminated action",
			text:    "x: {{ .other",
			params:  map[string]string{"other": "1"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Render("test.yaml", tt.text, tt.params)
			if tt.wantErr {
				var tmplErr *TemplatingError
				require.ErrorAs(t, err, &tmplErr)
				assert.Equal(t, "test.yaml", tmplErr.Source)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

type document struct {
	Name  string `yaml:"name"`
	Count int    `yaml:"count"`
}

func TestLoad(t *testing.T) {
	fetcher := mapFetcher{
		"ok.yaml":     "name: {{ name }}\ncount: {{ .count }}\n",
		"broken.yaml": "name: [unclosed\n",
		"strict.yaml": "name: {{ nope }}\n",
	}
	ctx := context.Background()
	params := map[string]string{"name": "trino", "count": "3"}

	doc, err := Load[document](ctx, fetcher, fetch.Source{Location: "ok.yaml"}, params)
	require.NoError(t, err)
	assert.Equal(t, document{Name: "trino", Count: 3}, doc)

	_, err = Load[document](ctx, fetcher, fetch.Source{Location: "broken.yaml"}, params)
	var yamlErr *YamlError
	assert.ErrorAs(t, err, &yamlErr)

	_, err = Load[document](ctx, fetcher, fetch.Source{Location: "strict.yaml"}, params)
	var tmplErr *TemplatingError
	assert.ErrorAs(t, err, &tmplErr)

	_, err = Load[document](ctx, fetcher, fetch.Source{Location: "missing.yaml"}, params)
	var readErr *fetch.LocalReadError
	assert.ErrorAs(t, err, &readErr)
}

func TestLoadConcurrentCallsDoNotShareParams(t *testing.T) {
	fetcher := mapFetcher{"doc.yaml": "name: {{ name }}\n"}

	var wg sync.WaitGroup
	results := make([]string, 16)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			doc, err := Load[document](context.Background(), fetcher, fetch.Source{Location: "doc.yaml"},
				map[string]string{"name": fmt.Sprintf("n%d", i)})
			if err == nil {
				results[i] = doc.Name
			}
		}()
	}
	wg.Wait()

	for i, got := range results {
		assert.Equal(t, fmt.Sprintf("n%d", i), got)
	}
}
