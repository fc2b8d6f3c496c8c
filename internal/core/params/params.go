// Package params parses NAME=VALUE parameter tokens and merges them with the
// parameters a stack or demo declares.
package params

import (
	"strings"

	"github.com/samber/lo"
)

// Parameter is a parameter declared by a stack or demo spec.
type Parameter struct {
	Name        string `yaml:"name" json:"name" validate:"required"`
	Description string `yaml:"description" json:"description"`
	Default     string `yaml:"default" json:"default"`

	Extra map[string]any `yaml:",inline" json:"-"`
}

// RawParameter is an unvalidated NAME=VALUE token supplied by a caller.
type RawParameter struct {
	Name  string
	Value string
}

func (p RawParameter) String() string {
	return p.Name + "=" + p.Value
}

// ParseRaw parses a single NAME=VALUE token.
func ParseRaw(token string) (RawParameter, error) {
	input := strings.TrimSpace(token)
	if input == "" {
		return RawParameter{}, ErrInvalidParameterInput
	}

	parts := strings.Split(input, "=")
	switch {
	case len(parts) > 2:
		return RawParameter{}, &ParseError{Token: input, Err: ErrInvalidEqualSignCount}
	case len(parts) == 1:
		return RawParameter{}, &ParseError{Token: input, Err: ErrInvalidParameterValue}
	case parts[0] == "":
		return RawParameter{}, &ParseError{Token: input, Err: ErrInvalidParameterName}
	case parts[1] == "":
		return RawParameter{}, &ParseError{Token: input, Err: ErrInvalidParameterValue}
	}

	return RawParameter{Name: parts[0], Value: parts[1]}, nil
}

// ParseRawString parses a whitespace separated list of tokens.
func ParseRawString(input string) ([]RawParameter, error) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return nil, ErrInvalidParameterInput
	}
	return ParseRawList(fields)
}

// ParseRawList parses tokens as they arrive from repeated CLI flags. Each
// entry may itself hold several whitespace separated tokens.
func ParseRawList(tokens []string) ([]RawParameter, error) {
	result := make([]RawParameter, 0, len(tokens))
	for _, token := range tokens {
		fields := strings.Fields(token)
		if len(fields) == 0 {
			return nil, ErrInvalidParameterInput
		}
		for _, field := range fields {
			raw, err := ParseRaw(field)
			if err != nil {
				return nil, err
			}
			result = append(result, raw)
		}
	}
	return result, nil
}

// Merge seeds the result with every declared default and overwrites the
// values named by raw. The returned map always has exactly the declared
// names as keys. Unknown names are rejected.
func Merge(raw []RawParameter, declared []Parameter) (map[string]string, error) {
	merged := make(map[string]string, len(declared))
	for _, p := range declared {
		merged[p.Name] = p.Default
	}

	for _, r := range raw {
		if _, ok := merged[r.Name]; !ok {
			return nil, &InvalidParameterError{
				Parameter: r.Name,
				Expected: strings.Join(lo.Map(declared, func(p Parameter, _ int) string {
					return p.Name
				}), ", "),
			}
		}
		merged[r.Name] = r.Value
	}

	return merged, nil
}

// MergeTokens parses tokens and merges them in one step.
func MergeTokens(tokens []string, declared []Parameter) (map[string]string, error) {
	var raw []RawParameter
	if len(tokens) > 0 {
		parsed, err := ParseRawList(tokens)
		if err != nil {
			return nil, err
		}
		raw = parsed
	}
	return Merge(raw, declared)
}
