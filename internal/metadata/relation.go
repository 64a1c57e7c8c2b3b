package metadata

import (
	"fmt"
	"strings"

	"avular-packages/internal/debversion"
	"avular-packages/internal/types"
)

// parseRelationField parses one Depends/Pre-Depends/Recommends/Breaks/
// Conflicts/Replaces field value: comma-separated relations, each a
// "|"-separated disjunction of "name (op version) [arch]" atoms.
func parseRelationField(value string) ([]types.Relation, error) {
	var relations []types.Relation
	for _, group := range strings.Split(value, ",") {
		group = strings.TrimSpace(group)
		if group == "" {
			continue
		}
		var atoms []types.RelationAtom
		for _, alt := range strings.Split(group, "|") {
			atom, err := parseRelationAtom(strings.TrimSpace(alt))
			if err != nil {
				return nil, err
			}
			atoms = append(atoms, atom)
		}
		relations = append(relations, types.Relation{Atoms: atoms})
	}
	return relations, nil
}

// parseProvidesField parses a Provides field into bare names; version
// constraints on Provides (rare, "name (= version)") are accepted but the
// version is not modeled since pool.ResolveAtom treats Provides purely
// as unversioned clause expansion.
func parseProvidesField(value string) []string {
	var names []string
	for _, group := range strings.Split(value, ",") {
		group = strings.TrimSpace(group)
		if group == "" {
			continue
		}
		name := group
		if idx := strings.Index(group, "("); idx >= 0 {
			name = strings.TrimSpace(group[:idx])
		}
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

func parseRelationAtom(text string) (types.RelationAtom, error) {
	if text == "" {
		return types.RelationAtom{}, fmt.Errorf("empty relation alternative")
	}
	name := text
	var rangeConstraint *debversion.VersionRange
	var arch string

	if idx := strings.Index(text, "["); idx >= 0 {
		end := strings.Index(text, "]")
		if end > idx {
			arch = strings.TrimSpace(text[idx+1 : end])
			text = strings.TrimSpace(text[:idx])
			name = text
		}
	}

	if idx := strings.Index(text, "("); idx >= 0 {
		end := strings.LastIndex(text, ")")
		if end < idx {
			return types.RelationAtom{}, fmt.Errorf("malformed version constraint: %q", text)
		}
		name = strings.TrimSpace(text[:idx])
		constraint := strings.TrimSpace(text[idx+1 : end])
		atom, err := parseConstraint(constraint)
		if err != nil {
			return types.RelationAtom{}, err
		}
		r, err := debversion.RangeParse([]debversion.Atom{atom})
		if err != nil {
			return types.RelationAtom{}, err
		}
		rangeConstraint = &r
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return types.RelationAtom{}, fmt.Errorf("relation atom missing a package name: %q", text)
	}
	return types.RelationAtom{Name: name, Range: rangeConstraint, Arch: arch}, nil
}

var relationOps = []debversion.Op{
	debversion.OpLE, // ordering matters: "<=" before "<<" before single-char variants
	debversion.OpGE,
	debversion.OpLT,
	debversion.OpGT,
	debversion.OpEQ,
}

func parseConstraint(constraint string) (debversion.Atom, error) {
	for _, op := range relationOps {
		if strings.HasPrefix(constraint, string(op)) {
			versionStr := strings.TrimSpace(strings.TrimPrefix(constraint, string(op)))
			v, err := debversion.Parse(versionStr)
			if err != nil {
				return debversion.Atom{}, err
			}
			return debversion.Atom{Op: op, Version: v}, nil
		}
	}
	return debversion.Atom{}, fmt.Errorf("unrecognized version constraint: %q", constraint)
}
