// Package index builds ordered, name-keyed collections of specs from an
// ordered list of sources. Later sources override earlier ones.
package index

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/stackabletech/stackable/internal/core/fetch"
	"github.com/stackabletech/stackable/internal/core/spec"
	"github.com/stackabletech/stackable/internal/core/template"
)

// Document is a decoded spec file exposing its entries in file order.
type Document[S spec.Spec] interface {
	Specs() spec.Entries[S]
}

type Loader[D any] func(ctx context.Context, source fetch.Source) (D, error)

// List is immutable once built. Iteration follows the order in which names
// were first seen; an override replaces the value in place.
type List[S spec.Spec] struct {
	names []string
	specs map[string]S
	from  map[string]fetch.Source
}

type ValidationError struct {
	Name   string
	Source string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid spec %q in %s: %v", e.Name, e.Source, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Build loads every source in order. The first failing source fails the build.
func Build[D Document[S], S spec.Spec](ctx context.Context, load Loader[D], sources []fetch.Source) (*List[S], error) {
	validate := validator.New()
	list := &List[S]{
		specs: make(map[string]S),
		from:  make(map[string]fetch.Source),
	}

	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		doc, err := load(ctx, source)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", source, err)
		}

		for _, entry := range doc.Specs() {
			if err := validate.Struct(entry.Spec); err != nil {
				return nil, &ValidationError{Name: entry.Name, Source: source.Location, Err: err}
			}
			if _, exists := list.specs[entry.Name]; !exists {
				list.names = append(list.names, entry.Name)
			}
			list.specs[entry.Name] = entry.Spec
			list.from[entry.Name] = source
		}
	}

	return list, nil
}

// YAMLLoader reads list files verbatim. List files are not templated.
func YAMLLoader[D any](fetcher template.Fetcher) Loader[D] {
	return func(ctx context.Context, source fetch.Source) (D, error) {
		var doc D
		data, err := fetcher.Fetch(ctx, source)
		if err != nil {
			return doc, err
		}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return doc, &template.YamlError{Source: source.Location, Err: err}
		}
		return doc, nil
	}
}

func (l *List[S]) Get(name string) (S, bool) {
	s, ok := l.specs[name]
	return s, ok
}

// Source reports which source provided the current value of name.
func (l *List[S]) Source(name string) (fetch.Source, bool) {
	s, ok := l.from[name]
	return s, ok
}

func (l *List[S]) Names() []string {
	return append([]string(nil), l.names...)
}

func (l *List[S]) Len() int {
	return len(l.names)
}

// All yields entries in list order.
func (l *List[S]) All() iter.Seq2[string, S] {
	return func(yield func(string, S) bool) {
		for _, name := range l.names {
			if !yield(name, l.specs[name]) {
				return
			}
		}
	}
}

func (l *List[S]) Entries() spec.Entries[S] {
	return lo.Map(l.names, func(name string, _ int) spec.Entry[S] {
		return spec.Entry[S]{Name: name, Spec: l.specs[name]}
	})
}

type labeled interface {
	LabelSet() []string
}

// Search matches query case-insensitively against names, summaries and labels.
// An empty query matches everything.
func (l *List[S]) Search(query string) spec.Entries[S] {
	query = strings.ToLower(query)
	return lo.Filter(l.Entries(), func(entry spec.Entry[S], _ int) bool {
		if query == "" {
			return true
		}
		if strings.Contains(strings.ToLower(entry.Name), query) ||
			strings.Contains(strings.ToLower(entry.Spec.Summary()), query) {
			return true
		}
		if withLabels, ok := any(entry.Spec).(labeled); ok {
			return lo.SomeBy(withLabels.LabelSet(), func(label string) bool {
				return strings.Contains(strings.ToLower(label), query)
			})
		}
		return false
	})
}
