// Package template renders parameterised documents strictly: every
// placeholder must resolve or rendering fails.
package template

import (
	"bytes"
	"fmt"
	"regexp"
	"text/template"
	"text/template/parse"
)

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Render substitutes params into text. Placeholders may be written as
// {{ name }} or {{ .name }}.
func Render(name, text string, params map[string]string) (string, error) {
	funcs := template.FuncMap{}
	for key, value := range params {
		if !identifier.MatchString(key) {
			continue
		}
		funcs[key] = func() string { return value }
	}

	tmpl, err := template.New(name).Option("missingkey=error").Funcs(funcs).Parse(text)
	if err != nil {
		return "", &TemplatingError{Source: name, Err: err}
	}
	for _, t := range tmpl.Templates() {
		if t.Tree == nil {
			continue
		}
		if err := checkIdentifiers(t.Tree.Root, params); err != nil {
			return "", &TemplatingError{Source: name, Err: err}
		}
	}

	data := make(map[string]string, len(params))
	for key, value := range params {
		data[key] = value
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", &TemplatingError{Source: name, Err: err}
	}
	return buf.String(), nil
}

// checkIdentifiers rejects bare identifiers that are not parameters, so a
// placeholder never falls through to a template builtin. The only builtin
// allowed is `index . "name"`, and name must be a parameter.
func checkIdentifiers(node parse.Node, params map[string]string) error {
	switch n := node.(type) {
	case *parse.ListNode:
		if n == nil {
			return nil
		}
		for _, child := range n.Nodes {
			if err := checkIdentifiers(child, params); err != nil {
				return err
			}
		}
	case *parse.ActionNode:
		return checkIdentifiers(n.Pipe, params)
	case *parse.PipeNode:
		if n == nil {
			return nil
		}
		for _, cmd := range n.Cmds {
			if err := checkIdentifiers(cmd, params); err != nil {
				return err
			}
		}
	case *parse.CommandNode:
		if key, ok := indexKey(n); ok {
			if _, found := params[key]; !found {
				return fmt.Errorf("no parameter named %q", key)
			}
			return nil
		}
		for _, arg := range n.Args {
			if err := checkIdentifiers(arg, params); err != nil {
				return err
			}
		}
	case *parse.IdentifierNode:
		if _, ok := params[n.Ident]; !ok {
			return fmt.Errorf("no parameter named %q", n.Ident)
		}
	case *parse.ChainNode:
		return checkIdentifiers(n.Node, params)
	case *parse.IfNode:
		return checkBranch(&n.BranchNode, params)
	case *parse.RangeNode:
		return checkBranch(&n.BranchNode, params)
	case *parse.WithNode:
		return checkBranch(&n.BranchNode, params)
	case *parse.TemplateNode:
		return checkIdentifiers(n.Pipe, params)
	}
	return nil
}

func checkBranch(n *parse.BranchNode, params map[string]string) error {
	if err := checkIdentifiers(n.Pipe, params); err != nil {
		return err
	}
	if err := checkIdentifiers(n.List, params); err != nil {
		return err
	}
	return checkIdentifiers(n.ElseList, params)
}

// indexKey matches `index . "name"`.
func indexKey(n *parse.CommandNode) (string, bool) {
	if len(n.Args) != 3 {
		return "", false
	}
	ident, ok := n.Args[0].(*parse.IdentifierNode)
	if !ok || ident.Ident != "index" {
		return "", false
	}
	if _, ok := n.Args[1].(*parse.DotNode); !ok {
		return "", false
	}
	key, ok := n.Args[2].(*parse.StringNode)
	if !ok {
		return "", false
	}
	return key.Text, true
}

type TemplatingError struct {
	Source string
	Err    error
}

func (e *TemplatingError) Error() string {
	return fmt.Sprintf("failed to render %s: %v", e.Source, e.Err)
}

func (e *TemplatingError) Unwrap() error { return e.Err }

type YamlError struct {
	Source string
	Err    error
}

func (e *YamlError) Error() string {
	return fmt.Sprintf("failed to parse YAML from %s: %v", e.Source, e.Err)
}

func (e *YamlError) Unwrap() error { return e.Err }
