package template

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Render substitutes variables into a template. Every variable the
// template references must be present in variables; a missing one is a
// KindUndefined error rather than silent empty output. Plain content
// without markup passes through unchanged.
func Render(content string, variables map[string]any) (string, error) {
	nodes, err := parse(content)
	if err != nil {
		pe := err.(*parseError)
		return "", syntaxError(pe.line, pe.diag)
	}

	r := &renderer{
		out:    &strings.Builder{},
		scopes: []map[string]any{globals, variables},
	}
	if err := r.renderNodes(nodes); err != nil {
		return "", err
	}
	return r.out.String(), nil
}

// globals are always in scope, mirroring the literal keywords the
// extraction layer excludes from variable lists.
var globals = map[string]any{
	"true":  true,
	"True":  true,
	"false": false,
	"False": false,
	"none":  nil,
	"None":  nil,
}

type renderer struct {
	out *strings.Builder
	// scopes is an innermost-last stack; loops push a scope holding
	// the loop variable and the loop object.
	scopes []map[string]any
}

func (r *renderer) renderNodes(nodes []node) error {
	for _, n := range nodes {
		switch n := n.(type) {
		case *textNode:
			r.out.WriteString(n.text)
		case *varNode:
			if err := r.renderVar(n); err != nil {
				return err
			}
		case *forNode:
			if err := r.renderFor(n); err != nil {
				return err
			}
		case *ifNode:
			if err := r.renderIf(n); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *renderer) renderVar(n *varNode) error {
	value, err := r.lookup(n.path)
	if err != nil {
		return err
	}
	for _, filter := range n.filters {
		value, err = applyFilter(filter, value, n.line)
		if err != nil {
			return err
		}
	}
	r.out.WriteString(stringify(value))
	return nil
}

func (r *renderer) renderFor(n *forNode) error {
	value, err := r.lookup(n.iterable)
	if err != nil {
		return err
	}
	items, err := iterate(value, strings.Join(n.iterable, "."), n.line)
	if err != nil {
		return err
	}

	for i, item := range items {
		scope := map[string]any{
			n.loopVar: item,
			"loop": map[string]any{
				"index":  i + 1,
				"index0": i,
				"first":  i == 0,
				"last":   i == len(items)-1,
				"length": len(items),
			},
		}
		r.scopes = append(r.scopes, scope)
		err := r.renderNodes(n.body)
		r.scopes = r.scopes[:len(r.scopes)-1]
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *renderer) renderIf(n *ifNode) error {
	for _, branch := range n.branches {
		value, err := r.lookup(branch.path)
		if err != nil {
			return err
		}
		result := truthy(value)
		if branch.negate {
			result = !result
		}
		if result {
			return r.renderNodes(branch.body)
		}
	}
	return r.renderNodes(n.elseBody)
}

// lookup resolves a dotted path against the scope stack, innermost
// first. Any missing segment is a strict-undefined failure.
func (r *renderer) lookup(path []string) (any, error) {
	name := path[0]
	var value any
	found := false
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if v, ok := r.scopes[i][name]; ok {
			value, found = v, true
			break
		}
	}
	if !found {
		return nil, undefinedError(name)
	}

	for i, seg := range path[1:] {
		m, ok := value.(map[string]any)
		if !ok {
			return nil, undefinedError(strings.Join(path[:i+2], "."))
		}
		value, ok = m[seg]
		if !ok {
			return nil, undefinedError(strings.Join(path[:i+2], "."))
		}
	}
	return value, nil
}

func iterate(value any, name string, line int) ([]any, error) {
	switch v := value.(type) {
	case []any:
		return v, nil
	case []string:
		items := make([]any, len(v))
		for i, s := range v {
			items[i] = s
		}
		return items, nil
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		items := make([]any, len(keys))
		for i, k := range keys {
			items[i] = k
		}
		return items, nil
	default:
		return nil, syntaxError(line, fmt.Sprintf("'%s' is not iterable", name))
	}
}

func applyFilter(name string, value any, line int) (any, error) {
	switch name {
	case "upper":
		return strings.ToUpper(stringify(value)), nil
	case "lower":
		return strings.ToLower(stringify(value)), nil
	case "title":
		return cases.Title(language.Und).String(stringify(value)), nil
	case "trim":
		return strings.TrimSpace(stringify(value)), nil
	case "length":
		switch v := value.(type) {
		case string:
			return len(v), nil
		case []any:
			return len(v), nil
		case []string:
			return len(v), nil
		case map[string]any:
			return len(v), nil
		default:
			return nil, syntaxError(line, "object has no length")
		}
	default:
		return nil, syntaxError(line, fmt.Sprintf("no filter named '%s'", name))
	}
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return "None"
	case string:
		return v
	case bool:
		if v {
			return "True"
		}
		return "False"
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case []any:
		return len(v) > 0
	case []string:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		return true
	}
}
