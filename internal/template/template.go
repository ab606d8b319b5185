// Package template implements the prompt template dialect: Jinja-style
// {{ variable }} interpolation, {% for %} loops and {% if %} conditionals,
// rendered with strict-undefined semantics. It also provides the cheap
// regex layer used to detect templates and extract their variable names
// without a full parse.
package template

import (
	"fmt"
	"regexp"
	"sort"
)

var (
	markerRe     = regexp.MustCompile(`\{\{.*?\}\}|\{%.*?%\}`)
	varRe        = regexp.MustCompile(`\{\{\s*(\w+)(?:\s*\|.*?)?\s*\}\}`)
	forIterRe    = regexp.MustCompile(`\{%\s*for\s+\w+\s+in\s+(\w+)\s*%\}`)
	forLoopVarRe = regexp.MustCompile(`\{%\s*for\s+(\w+)\s+in\s+\w+\s*%\}`)
	ifRe         = regexp.MustCompile(`\{%\s*if\s+(\w+)(?:\s|\})`)
)

// builtins are names that appear in template syntax but are never
// caller-supplied variables.
var builtins = map[string]struct{}{
	"loop":  {},
	"true":  {},
	"false": {},
	"none":  {},
	"True":  {},
	"False": {},
	"None":  {},
}

// IsTemplate reports whether content contains any template markup.
// A lone brace pair like "{ not a template }" does not count.
func IsTemplate(content string) bool {
	return markerRe.MatchString(content)
}

// ExtractVariables returns the sorted set of variable names content
// references. For a loop like {% for item in items %} the iterable
// "items" is a variable but the bound name "item" is not, even where
// the body interpolates {{ item }}.
func ExtractVariables(content string) []string {
	loopVars := make(map[string]struct{})
	for _, m := range forLoopVarRe.FindAllStringSubmatch(content, -1) {
		loopVars[m[1]] = struct{}{}
	}

	names := make(map[string]struct{})
	collect := func(re *regexp.Regexp) {
		for _, m := range re.FindAllStringSubmatch(content, -1) {
			name := m[1]
			if _, ok := builtins[name]; ok {
				continue
			}
			if _, ok := loopVars[name]; ok {
				continue
			}
			names[name] = struct{}{}
		}
	}
	collect(varRe)
	collect(forIterRe)
	collect(ifRe)

	out := make([]string, 0, len(names))
	for name := range names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// VarSpec describes one template variable as stored on a prompt.
type VarSpec struct {
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Description string `json:"description,omitempty"`
	Default     string `json:"default,omitempty"`
}

// DeriveMetadata computes the template flag and variable map for a
// prompt's content. A nil explicitIsTemplate means the caller did not
// say either way, so the flag comes from detection. Explicit variable
// specs always win; otherwise extracted names each get a required
// string spec.
func DeriveMetadata(content string, explicitIsTemplate *bool, explicitVars map[string]VarSpec) (bool, map[string]VarSpec) {
	isTemplate := IsTemplate(content)
	if explicitIsTemplate != nil {
		isTemplate = *explicitIsTemplate
	}

	if !isTemplate {
		if len(explicitVars) > 0 {
			return false, explicitVars
		}
		return false, nil
	}

	if len(explicitVars) > 0 {
		return true, explicitVars
	}

	vars := make(map[string]VarSpec)
	for _, name := range ExtractVariables(content) {
		vars[name] = VarSpec{Type: "string", Required: true}
	}
	return true, vars
}

// Validate parses content and reports whether it is well formed. The
// second return is a human-readable diagnostic, empty when valid.
func Validate(content string) (bool, string) {
	if _, err := parse(content); err != nil {
		pe := err.(*parseError)
		return false, fmt.Sprintf("Syntax error at line %d: %s", pe.line, pe.diag)
	}
	return true, ""
}
