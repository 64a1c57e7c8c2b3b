// Package blueprint parses blueprint and ignorerules files: the plain
// text, one-request-per-line declaration of desired packages.
package blueprint

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"avular-packages/internal/debversion"
	"avular-packages/internal/types"
)

// variablePattern matches "{VAR}" placeholders inside a package name.
var variablePattern = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// Vars supplies values for "{VAR}" placeholders during expansion.
type Vars map[string]string

// Parse reads a blueprint file (one request per line, "#" comments) and
// returns the expanded requests. source is recorded on each request for
// ErrContradictoryRange attribution.
func Parse(r io.Reader, source string, vars Vars) ([]types.BlueprintRequest, error) {
	scanner := bufio.NewScanner(r)
	var out []types.BlueprintRequest
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		req, err := parseLine(line, source, vars)
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("%s:%d: %v", source, lineNo, err)).
				WithCause(types.ErrParse)
		}
		out = append(out, req)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ParseIgnoreRules reads an ignorerules file: name-only lines used by
// the planner to forbid removal of matching units.
func ParseIgnoreRules(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	var names []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	return names, scanner.Err()
}

// parseLine parses one "NAME[-{VAR}]* (ATTR, ATTR, ...)?" blueprint line.
func parseLine(line, source string, vars Vars) (types.BlueprintRequest, error) {
	name, attrPart := splitNameAndAttrs(line)
	name, err := expandVars(name, vars)
	if err != nil {
		return types.BlueprintRequest{}, err
	}
	if name == "" {
		return types.BlueprintRequest{}, fmt.Errorf("empty package name")
	}

	req := types.BlueprintRequest{Name: name, Source: source}
	if attrPart == "" {
		return req, nil
	}

	var atoms []debversion.Atom
	for _, rawAttr := range strings.Split(attrPart, ",") {
		attr := strings.TrimSpace(rawAttr)
		if attr == "" {
			continue
		}
		switch {
		case attr == "local":
			req.Local = true
		case strings.HasPrefix(attr, "added_by"):
			parent, err := attrValue(attr, "added_by")
			if err != nil {
				return types.BlueprintRequest{}, err
			}
			req.AddedBy = parent
		default:
			atom, err := parseVersionAtom(attr)
			if err != nil {
				return types.BlueprintRequest{}, err
			}
			atoms = append(atoms, atom)
		}
	}
	if len(atoms) > 0 {
		r, err := debversion.RangeParse(atoms)
		if err != nil {
			return types.BlueprintRequest{}, err
		}
		req.Range = &r
	}
	return req, nil
}

func splitNameAndAttrs(line string) (name string, attrs string) {
	open := strings.Index(line, "(")
	if open < 0 {
		return strings.TrimSpace(line), ""
	}
	close := strings.LastIndex(line, ")")
	if close < open {
		return strings.TrimSpace(line), ""
	}
	return strings.TrimSpace(line[:open]), strings.TrimSpace(line[open+1 : close])
}

func attrValue(attr, key string) (string, error) {
	rest := strings.TrimSpace(strings.TrimPrefix(attr, key))
	rest = strings.TrimPrefix(rest, "=")
	value := strings.TrimSpace(rest)
	if value == "" {
		return "", fmt.Errorf("%s requires a value", key)
	}
	return value, nil
}

var attrOps = []debversion.Op{
	debversion.OpGE,
	debversion.OpLE,
	debversion.OpLT,
	debversion.OpGT,
	debversion.OpEQ,
}

func parseVersionAtom(attr string) (debversion.Atom, error) {
	for _, op := range attrOps {
		if idx := strings.Index(attr, string(op)); idx >= 0 {
			versionStr := strings.TrimSpace(attr[idx+len(op):])
			v, err := debversion.Parse(versionStr)
			if err != nil {
				return debversion.Atom{}, err
			}
			return debversion.Atom{Op: op, Version: v}, nil
		}
	}
	return debversion.Atom{}, fmt.Errorf("unrecognized blueprint attribute: %q", attr)
}

// expandVars substitutes every "{VAR}" placeholder in name exactly once.
// An unknown variable is a hard error, never a silent empty
// substitution.
func expandVars(name string, vars Vars) (string, error) {
	var outerErr error
	expanded := variablePattern.ReplaceAllStringFunc(name, func(match string) string {
		key := variablePattern.FindStringSubmatch(match)[1]
		value, ok := vars[key]
		if !ok {
			outerErr = fmt.Errorf("unknown blueprint variable %q", key)
			return match
		}
		return value
	})
	if outerErr != nil {
		return "", outerErr
	}
	return expanded, nil
}
