package metadata

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"avular-packages/internal/debversion"
	"avular-packages/internal/types"
)

// relationFields maps the control-file field name to the RelationKind it
// populates; fields outside this set plus the handful of scalar fields
// below are skipped entirely.
var relationFields = map[string]types.RelationKind{
	"Depends":     types.RelationDepends,
	"Pre-Depends": types.RelationPreDepends,
	"Recommends":  types.RelationRecommends,
	"Breaks":      types.RelationBreaks,
	"Conflicts":   types.RelationConflicts,
	"Replaces":    types.RelationReplaces,
}

// ParsePackages parses a Packages index (RFC-822-like stanzas separated
// by a blank line) for one repo/dist/component/arch coordinate. A
// malformed stanza is rejected individually: it is logged and skipped,
// the remainder of the file still parses.
func ParsePackages(r io.Reader, origin types.Origin) ([]types.PackageUnit, error) {
	stanzas, err := splitStanzas(r)
	if err != nil {
		return nil, err
	}
	var units []types.PackageUnit
	for i, raw := range stanzas {
		unit, err := parseStanza(raw, origin)
		if err != nil {
			log.Warn().Err(err).Int("stanza", i).Msg("skipping malformed package stanza")
			continue
		}
		units = append(units, unit)
	}
	return units, nil
}

// splitStanzas groups raw control-file lines into stanzas, joining
// RFC-822 folded continuation lines (leading whitespace) onto the
// previous field.
func splitStanzas(r io.Reader) ([][]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)

	var stanzas [][]string
	var current []string
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if len(current) > 0 {
				stanzas = append(stanzas, current)
				current = nil
			}
			continue
		}
		if (strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")) && len(current) > 0 {
			current[len(current)-1] += "\n" + line
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		stanzas = append(stanzas, current)
	}
	return stanzas, scanner.Err()
}

func parseStanza(lines []string, origin types.Origin) (types.PackageUnit, error) {
	fields := map[string]string{}
	for _, line := range lines {
		idx := strings.Index(line, ":")
		if idx < 0 {
			return types.PackageUnit{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("malformed control line: " + line).
				WithCause(types.ErrParse)
		}
		key := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])
		fields[key] = value
	}

	name := fields["Package"]
	if name == "" {
		return types.PackageUnit{}, fmt.Errorf("stanza missing Package field")
	}
	versionStr := fields["Version"]
	if versionStr == "" {
		return types.PackageUnit{}, fmt.Errorf("stanza %s missing Version field", name)
	}
	version, err := debversion.Parse(versionStr)
	if err != nil {
		return types.PackageUnit{}, fmt.Errorf("stanza %s: %w", name, err)
	}

	unit := types.PackageUnit{
		Name:         name,
		Version:      version,
		Architecture: fields["Architecture"],
		SHA256:       fields["SHA256"],
		Essential:    strings.EqualFold(fields["Essential"], "yes"),
		Priority:     types.Priority(fields["Priority"]),
		Origin:       origin,
	}

	if sizeStr := fields["Size"]; sizeStr != "" {
		size, err := strconv.ParseInt(sizeStr, 10, 64)
		if err != nil {
			return types.PackageUnit{}, fmt.Errorf("stanza %s: invalid Size: %w", name, err)
		}
		unit.Size = size
	}

	relations := map[types.RelationKind][]types.Relation{}
	for field, kind := range relationFields {
		value := fields[field]
		if value == "" {
			continue
		}
		parsed, err := parseRelationField(value)
		if err != nil {
			return types.PackageUnit{}, fmt.Errorf("stanza %s field %s: %w", name, field, err)
		}
		relations[kind] = parsed
	}
	if provides := fields["Provides"]; provides != "" {
		var rels []types.Relation
		for _, n := range parseProvidesField(provides) {
			rels = append(rels, types.Relation{Atoms: []types.RelationAtom{{Name: n}}})
		}
		relations[types.RelationProvides] = rels
	}
	unit.Relations = relations

	unit.RepoPath = fields["Filename"]

	return unit, nil
}
