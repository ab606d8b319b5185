package template

import (
	"fmt"
	"regexp"
	"strings"
)

type node interface{}

type textNode struct {
	text string
}

type varNode struct {
	path    []string
	filters []string
	line    int
}

type forNode struct {
	loopVar  string
	iterable []string
	body     []node
	line     int
}

type ifBranch struct {
	negate bool
	path   []string
	body   []node
	line   int
}

type ifNode struct {
	branches []ifBranch
	elseBody []node
	line     int
}

var identifierPathRe = regexp.MustCompile(`^\w+(\.\w+)*$`)

var knownFilters = map[string]struct{}{
	"upper":  {},
	"lower":  {},
	"title":  {},
	"trim":   {},
	"length": {},
}

// parse turns template content into a node tree. It returns a
// *parseError on malformed markup.
func parse(content string) ([]node, error) {
	p := &parser{src: content, line: 1}
	nodes, _, _, err := p.parseUntil("")
	if err != nil {
		return nil, err
	}
	return nodes, nil
}

type parser struct {
	src  string
	pos  int
	line int
}

// next scans forward to the next tag and returns the text before it,
// the tag kind ("{{" or "{%"), its inner expression and the line the
// tag opened on. An empty kind means end of input.
func (p *parser) next() (text, kind, inner string, tagLine int, err error) {
	rest := p.src[p.pos:]
	idx := strings.Index(rest, "{{")
	if pct := strings.Index(rest, "{%"); pct != -1 && (idx == -1 || pct < idx) {
		idx = pct
	}
	if idx == -1 {
		text = rest
		p.advance(len(rest))
		return text, "", "", 0, nil
	}

	text = rest[:idx]
	p.advance(idx)
	tagLine = p.line

	opener := rest[idx : idx+2]
	closer := "}}"
	if opener == "{%" {
		closer = "%}"
	}
	body := rest[idx+2:]
	end := strings.Index(body, closer)
	if end == -1 {
		return "", "", "", 0, &parseError{line: tagLine, diag: fmt.Sprintf("unexpected end of template, expected '%s'", closer)}
	}
	inner = strings.TrimSpace(body[:end])
	p.advance(2 + end + 2)
	return text, opener, inner, tagLine, nil
}

func (p *parser) advance(n int) {
	p.line += strings.Count(p.src[p.pos:p.pos+n], "\n")
	p.pos += n
}

// parseUntil consumes nodes until it hits a control tag belonging to
// the enclosing construct ("endfor", "endif" or "" for top level) and
// returns that tag (endfor, endif, else, or elif with its argument)
// so the caller can continue the construct.
func (p *parser) parseUntil(until string) (nodes []node, stopTag, stopArg string, err error) {
	for {
		text, kind, inner, tagLine, err := p.next()
		if err != nil {
			return nil, "", "", err
		}
		if text != "" {
			nodes = append(nodes, &textNode{text: text})
		}
		switch kind {
		case "":
			if until != "" {
				return nil, "", "", &parseError{line: p.line, diag: fmt.Sprintf("unexpected end of template, expected '%s'", until)}
			}
			return nodes, "", "", nil

		case "{{":
			vn, err := parseVarExpr(inner, tagLine)
			if err != nil {
				return nil, "", "", err
			}
			nodes = append(nodes, vn)

		case "{%":
			tag, arg := splitTag(inner)
			switch tag {
			case "for":
				fn, err := p.parseFor(arg, tagLine)
				if err != nil {
					return nil, "", "", err
				}
				nodes = append(nodes, fn)
			case "if":
				in, err := p.parseIf(arg, tagLine)
				if err != nil {
					return nil, "", "", err
				}
				nodes = append(nodes, in)
			case "endfor", "endif", "else", "elif":
				if until == "" {
					return nil, "", "", &parseError{line: tagLine, diag: fmt.Sprintf("unexpected '%s'", tag)}
				}
				return nodes, tag, arg, nil
			default:
				return nil, "", "", &parseError{line: tagLine, diag: fmt.Sprintf("unknown tag '%s'", tag)}
			}
		}
	}
}

func (p *parser) parseFor(arg string, line int) (*forNode, error) {
	fields := strings.Fields(arg)
	if len(fields) != 3 || fields[1] != "in" || !isIdentifier(fields[0]) || !identifierPathRe.MatchString(fields[2]) {
		return nil, &parseError{line: line, diag: "expected 'for <name> in <iterable>'"}
	}
	body, stop, _, err := p.parseUntil("endfor")
	if err != nil {
		return nil, err
	}
	if stop != "endfor" {
		return nil, &parseError{line: line, diag: fmt.Sprintf("unexpected '%s', expected 'endfor'", stop)}
	}
	return &forNode{
		loopVar:  fields[0],
		iterable: strings.Split(fields[2], "."),
		body:     body,
		line:     line,
	}, nil
}

func (p *parser) parseIf(arg string, line int) (*ifNode, error) {
	in := &ifNode{line: line}
	for {
		branch, err := parseCondition(arg, line)
		if err != nil {
			return nil, err
		}
		body, stop, stopArg, err := p.parseUntil("endif")
		if err != nil {
			return nil, err
		}
		branch.body = body
		in.branches = append(in.branches, branch)

		switch stop {
		case "endif":
			return in, nil
		case "elif":
			arg = stopArg
			line = p.line
			continue
		case "else":
			elseBody, stop, _, err := p.parseUntil("endif")
			if err != nil {
				return nil, err
			}
			if stop != "endif" {
				return nil, &parseError{line: p.line, diag: fmt.Sprintf("unexpected '%s', expected 'endif'", stop)}
			}
			in.elseBody = elseBody
			return in, nil
		default:
			return nil, &parseError{line: line, diag: fmt.Sprintf("unexpected '%s', expected 'endif'", stop)}
		}
	}
}

func parseCondition(arg string, line int) (ifBranch, error) {
	fields := strings.Fields(arg)
	negate := false
	if len(fields) > 0 && fields[0] == "not" {
		negate = true
		fields = fields[1:]
	}
	if len(fields) != 1 || !identifierPathRe.MatchString(fields[0]) {
		return ifBranch{}, &parseError{line: line, diag: "expected 'if [not] <name>'"}
	}
	return ifBranch{
		negate: negate,
		path:   strings.Split(fields[0], "."),
		line:   line,
	}, nil
}

func parseVarExpr(inner string, line int) (*varNode, error) {
	parts := strings.Split(inner, "|")
	head := strings.TrimSpace(parts[0])
	if !identifierPathRe.MatchString(head) {
		return nil, &parseError{line: line, diag: fmt.Sprintf("unexpected token '%s'", head)}
	}
	vn := &varNode{path: strings.Split(head, "."), line: line}
	for _, raw := range parts[1:] {
		name := strings.TrimSpace(raw)
		if _, ok := knownFilters[name]; !ok {
			return nil, &parseError{line: line, diag: fmt.Sprintf("no filter named '%s'", name)}
		}
		vn.filters = append(vn.filters, name)
	}
	return vn, nil
}

func splitTag(inner string) (tag, arg string) {
	if i := strings.IndexAny(inner, " \t\n"); i != -1 {
		return inner[:i], strings.TrimSpace(inner[i+1:])
	}
	return inner, ""
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}
