// Package types holds the core data model shared by the metadata
// pipeline, the pool, the resolver, and the planner: package units,
// relations, blueprint requests, installed state, and resolver/plan
// outputs.
package types

import "avular-packages/internal/debversion"

// RelationKind distinguishes the seven Debian relation fields a
// PackageUnit may carry.
type RelationKind string

const (
	RelationDepends    RelationKind = "depends"
	RelationPreDepends RelationKind = "pre_depends"
	RelationRecommends RelationKind = "recommends"
	RelationBreaks     RelationKind = "breaks"
	RelationConflicts  RelationKind = "conflicts"
	RelationReplaces   RelationKind = "replaces"
	RelationProvides   RelationKind = "provides"
)

// RelationAtom is one alternative within a disjunctive Relation: a name,
// an optional version range, and an optional architecture qualifier.
type RelationAtom struct {
	Name  string
	Range *debversion.VersionRange // nil means "any version"
	Arch  string                   // empty means unqualified
}

// Relation is a disjunction of atoms — Debian's "|" alternatives.
type Relation struct {
	Atoms []RelationAtom
}

// Origin identifies where a PackageUnit came from.
type Origin struct {
	Repo      string // empty for local-origin units
	Component string
	Local     bool
	LocalPath string
}

// Priority mirrors Debian's apt priority field. It is parsed and stored
// on each unit; neither the resolver nor the planner reads it.
type Priority string

const (
	PriorityRequired  Priority = "required"
	PriorityImportant Priority = "important"
	PriorityStandard  Priority = "standard"
	PriorityOptional  Priority = "optional"
	PriorityExtra     Priority = "extra"
)

// PackageUnit is a specific (name, version, architecture) candidate in
// the pool.
type PackageUnit struct {
	ID           int64 // stable id assigned when the unit enters the pool
	Name         string
	Version      debversion.Version
	Architecture string

	Size   int64
	SHA256 string

	Relations map[RelationKind][]Relation

	Essential bool
	Priority  Priority

	// Files lists filesystem paths this unit's archive would install,
	// used by the file-index "provide" lookup. The Packages index never
	// carries this (it requires unpacking the archive), so it is left
	// unset by the metadata pipeline today.
	Files []string

	// RepoPath is the archive's path relative to the repo root (the
	// Packages stanza's Filename field), used to build the download URL
	// for a Fetch action.
	RepoPath string

	Origin Origin
}

// Key uniquely identifies a unit within a pool.
type Key struct {
	Name         string
	Version      string
	Architecture string
}

// Key returns the (name, version, architecture) tuple for this unit.
func (u PackageUnit) Key() Key {
	return Key{Name: u.Name, Version: u.Version.String(), Architecture: u.Architecture}
}
