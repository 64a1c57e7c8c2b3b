// Package resolver encodes the pool, blueprint, and installed set into a
// CNF satisfiability problem, invokes a CDCL SAT engine, and runs the
// post-SAT optimization passes that produce a minimal, latest-preferred
// model. One SAT variable represents each (name, version) candidate plus
// one "absent" variable per name, reused across a multi-pass
// optimization loop on top of a single base encoding.
package resolver

import (
	"sort"

	"github.com/crillab/gophersat/solver"

	"avular-packages/internal/debversion"
	"avular-packages/internal/pool"
	"avular-packages/internal/types"
)

// Flags control optional relaxations of the base encoding.
type Flags struct {
	NoRecommends         bool
	RemoveRecommends     bool
	AllowRemoveEssential bool

	// NativeArch is the single architecture each package name is keyed
	// to for this run: a name may have units of several architectures
	// in the pool (amd64, i386, arm64, ...), but ResolverModel.Install
	// keys by name alone, so the encoding must pick exactly one
	// architecture's candidates per name rather than let the SAT
	// variable for "name @ version" silently alias across architectures.
	// Units with Architecture "all" always match regardless of
	// NativeArch. Defaults to "amd64" when empty.
	NativeArch string
}

func (f Flags) nativeArch() string {
	if f.NativeArch == "" {
		return "amd64"
	}
	return f.NativeArch
}

// filterNativeArch keeps only the units matching arch or carrying
// Architecture "all".
func filterNativeArch(units []*types.PackageUnit, arch string) []*types.PackageUnit {
	out := make([]*types.PackageUnit, 0, len(units))
	for _, u := range units {
		if u.Architecture == arch || u.Architecture == "all" {
			out = append(out, u)
		}
	}
	return out
}

// varKey maps a SAT variable back to its (name, version) meaning.
// Version == "" denotes the synthetic absent candidate for Name.
type varKey struct {
	Name    string
	Version string
}

// encoding is the reusable base CNF plus the bookkeeping needed to
// extract a model and to layer additional unit clauses for re-solves.
type encoding struct {
	pool       *pool.Pool
	nativeArch string

	nextVar int
	varOf   map[varKey]int // (name, version|"") -> var id
	keyOf   map[int]varKey
	unitOf  map[int]*types.PackageUnit // nil for absent vars

	namesByOrder []string // names in deterministic iteration order

	baseClauses [][]int
	costLits    []solver.Lit
	costWeights []int

	blueprintVar    map[string]int      // blueprint request name -> its absent var, tracked for suspect extraction
	requestClauses  map[string][][]int  // direct (added_by == "") blueprint request name -> its demand clauses
}

// allRequestClauses flattens requestClauses for every direct request
// name, for use as the "extra" clauses on a normal (non-suspect-search)
// solve.
func (e *encoding) allRequestClauses() [][]int {
	var out [][]int
	for _, clauses := range e.requestClauses {
		out = append(out, clauses...)
	}
	return out
}

// requestClausesFor flattens requestClauses for exactly the given subset
// of direct request names, used by suspect extraction to test whether
// dropping some requests restores satisfiability.
func (e *encoding) requestClausesFor(names []string) [][]int {
	var out [][]int
	for _, name := range names {
		out = append(out, e.requestClauses[name]...)
	}
	return out
}

// build constructs the base encoding: at-most-one per name, blueprint
// demand clauses, Depends/Pre-Depends implications, Breaks/Conflicts
// exclusions, essential protection, and a cost function that prefers
// latest versions and (unless NoRecommends) soft Recommends.
func build(p *pool.Pool, blueprint types.BlueprintSet, installed types.InstalledSet, flags Flags) (*encoding, error) {
	e := &encoding{
		pool:         p,
		nativeArch:   flags.nativeArch(),
		varOf:        map[varKey]int{},
		keyOf:        map[int]varKey{},
		unitOf:       map[int]*types.PackageUnit{},
		blueprintVar: map[string]int{},
	}

	names := collectNames(p, blueprint, installed)
	e.namesByOrder = names

	for _, name := range names {
		units := filterNativeArch(p.Lookup(name), e.nativeArch)
		absentID := e.newVar(varKey{Name: name}, nil)

		sortedUnits := append([]*types.PackageUnit(nil), units...)
		sort.Slice(sortedUnits, func(i, j int) bool {
			return debversion.Compare(sortedUnits[i].Version, sortedUnits[j].Version) == debversion.Greater
		})

		var ids []int
		for _, u := range sortedUnits {
			id := e.newVar(varKey{Name: name, Version: u.Version.String()}, u)
			ids = append(ids, id)
		}

		// At-most-one per name, including absent as the disjoint
		// alternative; the at-least-one clause over the same set is
		// always satisfiable because absent is always a candidate.
		all := append([]int{absentID}, ids...)
		for i := 0; i < len(all); i++ {
			for j := i + 1; j < len(all); j++ {
				e.baseClauses = append(e.baseClauses, []int{-all[i], -all[j]})
			}
		}
		e.baseClauses = append(e.baseClauses, all)

		// Cost: prefer latest version (low cost for newer candidates),
		// and prefer absence weighted lightly so minimality emerges
		// naturally for packages nothing demands.
		for i, id := range ids {
			weight := i + 1 // i=0 is newest (lowest weight)
			e.costLits = append(e.costLits, solver.IntToLit(int32(id))) //nolint:gosec // bounded by candidate count
			e.costWeights = append(e.costWeights, weight)
		}
		if installedVersion, ok := installed.Versions[name]; ok {
			// Stability tie-break: matching the installed version costs
			// nothing extra beyond the latest-preferred weight already
			// assigned; a tiny bonus nudges ties toward the status quo.
			if id, ok := e.varOf[varKey{Name: name, Version: installedVersion.String()}]; ok {
				e.costWeights[indexOfCostLit(e.costLits, id)] -= 1
			}
		}
	}

	if err := e.encodeBlueprint(blueprint, flags); err != nil {
		return nil, err
	}
	e.encodeRelations(flags)

	return e, nil
}

func indexOfCostLit(lits []solver.Lit, varID int) int {
	target := solver.IntToLit(int32(varID)) //nolint:gosec
	for i, l := range lits {
		if l == target {
			return i
		}
	}
	return -1
}

func (e *encoding) newVar(key varKey, unit *types.PackageUnit) int {
	e.nextVar++
	id := e.nextVar
	e.varOf[key] = id
	e.keyOf[id] = key
	e.unitOf[id] = unit
	return id
}

func (e *encoding) absentVar(name string) (int, bool) {
	id, ok := e.varOf[varKey{Name: name}]
	return id, ok
}

// collectNames gathers every package name that must have a SAT variable:
// everything in the pool, every blueprint request, and every installed
// package (so removal can be modeled as "absent selected").
func collectNames(p *pool.Pool, blueprint types.BlueprintSet, installed types.InstalledSet) []string {
	seen := map[string]bool{}
	var names []string
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	for _, name := range p.Names() {
		add(name)
	}
	for _, req := range blueprint.Requests {
		add(req.Name)
	}
	for name := range installed.Versions {
		add(name)
	}
	sort.Strings(names)
	return names
}
