package fetch

import (
	"fmt"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/samber/lo"
)

type SourceKind int

const (
	SourceFile SourceKind = iota
	SourceURL
	SourceOCI
)

func (k SourceKind) String() string {
	switch k {
	case SourceURL:
		return "url"
	case SourceOCI:
		return "oci"
	default:
		return "file"
	}
}

// Source is a classified location of a spec or manifest document.
type Source struct {
	Kind     SourceKind
	Location string
}

func (s Source) String() string {
	return s.Location
}

// ParseSource classifies s. http(s) locations are URLs, oci:// locations are
// registry references and everything else is a local path.
func ParseSource(s string) (Source, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Source{}, ErrEmptySource
	}

	switch {
	case strings.HasPrefix(s, "https://"), strings.HasPrefix(s, "http://"):
		return Source{Kind: SourceURL, Location: s}, nil
	case strings.HasPrefix(s, "oci://"):
		return Source{Kind: SourceOCI, Location: s}, nil
	}

	path, err := homedir.Expand(strings.TrimPrefix(s, "file://"))
	if err != nil {
		return Source{}, fmt.Errorf("failed to expand path %s: %w", s, err)
	}
	return Source{Kind: SourceFile, Location: path}, nil
}

func ParseSources(locations []string) ([]Source, error) {
	sources := make([]Source, 0, len(locations))
	for _, location := range lo.Compact(locations) {
		source, err := ParseSource(location)
		if err != nil {
			return nil, err
		}
		sources = append(sources, source)
	}
	return sources, nil
}
