package resolver

import (
	"github.com/crillab/gophersat/solver"

	"avular-packages/internal/debversion"
	"avular-packages/internal/types"
)

// encodeBlueprint emits, for each request, a unit clause forbidding
// absent and forbidding any candidate outside the request's range
// (plus non-local candidates when Local is set). added_by requests are
// encoded as an implication on an auxiliary "parent selected" variable
// rather than as a hard demand.
func (e *encoding) encodeBlueprint(blueprint types.BlueprintSet, flags Flags) error {
	if e.requestClauses == nil {
		e.requestClauses = map[string][][]int{}
	}
	for _, req := range blueprint.Requests {
		absentID, ok := e.absentVar(req.Name)
		if !ok {
			continue
		}
		e.blueprintVar[req.Name] = absentID

		forbidden := e.forbiddenCandidates(req)

		if req.AddedBy == "" {
			var clauses [][]int
			clauses = append(clauses, []int{-absentID})
			for _, id := range forbidden {
				clauses = append(clauses, []int{-id})
			}
			e.requestClauses[req.Name] = append(e.requestClauses[req.Name], clauses...)
			continue
		}

		parentSelected, ok := e.parentSelectedVar(req.AddedBy)
		if !ok {
			// Parent has no candidates at all; the recommendation can
			// never fire, so it imposes no constraint.
			continue
		}
		e.baseClauses = append(e.baseClauses, []int{-parentSelected, -absentID})
		for _, id := range forbidden {
			e.baseClauses = append(e.baseClauses, []int{-parentSelected, -id})
		}
	}
	return nil
}

// forbiddenCandidates returns every candidate var for req.Name that does
// not satisfy req's range/local constraints.
func (e *encoding) forbiddenCandidates(req types.BlueprintRequest) []int {
	var out []int
	for _, u := range filterNativeArch(e.pool.Lookup(req.Name), e.nativeArch) {
		id, ok := e.varOf[varKey{Name: req.Name, Version: u.Version.String()}]
		if !ok {
			continue
		}
		if req.Range != nil && !debversion.RangeContains(*req.Range, u.Version) {
			out = append(out, id)
			continue
		}
		if req.Local && !u.Origin.Local {
			out = append(out, id)
		}
	}
	return out
}

// resolveAtom resolves atom against the pool, then narrows the result to
// the run's native architecture unless the atom itself carries an
// explicit "[arch]" qualifier (which ResolveAtom already honored).
func (e *encoding) resolveAtom(atom types.RelationAtom) []*types.PackageUnit {
	candidates := e.pool.ResolveAtom(atom)
	if atom.Arch != "" {
		return candidates
	}
	return filterNativeArch(candidates, e.nativeArch)
}

// parentSelectedVar returns (creating if needed) the auxiliary "any
// version of parent is selected" variable used to encode added_by
// implications.
func (e *encoding) parentSelectedVar(parent string) (int, bool) {
	var candidateIDs []int
	for _, u := range filterNativeArch(e.pool.Lookup(parent), e.nativeArch) {
		if id, ok := e.varOf[varKey{Name: parent, Version: u.Version.String()}]; ok {
			candidateIDs = append(candidateIDs, id)
		}
	}
	if len(candidateIDs) == 0 {
		return 0, false
	}
	e.nextVar++
	aux := e.nextVar
	// aux <=> OR(candidateIDs)
	orClause := append([]int{-aux}, candidateIDs...)
	e.baseClauses = append(e.baseClauses, orClause)
	for _, id := range candidateIDs {
		e.baseClauses = append(e.baseClauses, []int{-id, aux})
	}
	return aux, true
}

// encodeRelations emits, for every concrete unit var, implication
// clauses for Depends/Pre-Depends (hard), Breaks/Conflicts (hard
// exclusion), and soft cost weighting for Recommends unless suppressed.
// Essential protection forbids the absent variable of every name that
// has a candidate unit flagged Essential in the pool, unless
// AllowRemoveEssential is set; InstalledSet.Essential is not consulted.
func (e *encoding) encodeRelations(flags Flags) {
	for id, unit := range e.unitOf {
		if unit == nil {
			continue
		}
		e.encodeDependsGroup(id, unit, types.RelationDepends)
		e.encodeDependsGroup(id, unit, types.RelationPreDepends)
		e.encodeExclusions(id, unit, types.RelationBreaks)
		e.encodeExclusions(id, unit, types.RelationConflicts)

		if !flags.NoRecommends {
			e.softenRecommends(id, unit)
		}

		if unit.Essential && !flags.AllowRemoveEssential {
			if absentID, ok := e.absentVar(unit.Name); ok {
				e.baseClauses = append(e.baseClauses, []int{-absentID})
			}
		}
	}
}

// encodeDependsGroup emits "unit ⇒ (⋁ candidates)" for every relation
// group of the given kind; a group with zero resolvable candidates
// forces the unit itself to absent (it can never be validly selected).
func (e *encoding) encodeDependsGroup(unitVar int, unit *types.PackageUnit, kind types.RelationKind) {
	for _, rel := range unit.Relations[kind] {
		var candidates []int
		for _, atom := range rel.Atoms {
			for _, cand := range e.resolveAtom(atom) {
				if id, ok := e.varOf[varKey{Name: cand.Name, Version: cand.Version.String()}]; ok {
					candidates = append(candidates, id)
				}
			}
		}
		candidates = uniqueInts(candidates)
		if len(candidates) == 0 {
			e.baseClauses = append(e.baseClauses, []int{-unitVar})
			continue
		}
		clause := append([]int{-unitVar}, candidates...)
		e.baseClauses = append(e.baseClauses, clause)
	}
}

// encodeExclusions emits "unit ⇒ ¬other" for every unit matching a
// Breaks/Conflicts relation, excluding self-conflicts arising purely
// through a shared Provides name.
func (e *encoding) encodeExclusions(unitVar int, unit *types.PackageUnit, kind types.RelationKind) {
	for _, rel := range unit.Relations[kind] {
		for _, atom := range rel.Atoms {
			for _, other := range e.resolveAtom(atom) {
				if other.ID == unit.ID {
					continue
				}
				otherVar, ok := e.varOf[varKey{Name: other.Name, Version: other.Version.String()}]
				if !ok {
					continue
				}
				e.baseClauses = append(e.baseClauses, []int{-unitVar, -otherVar})
			}
		}
	}
}

// softenRecommends biases the cost function toward including a
// Recommends target rather than emitting a hard clause: a preferred
// literal, not a requirement.
func (e *encoding) softenRecommends(unitVar int, unit *types.PackageUnit) {
	for _, rel := range unit.Relations[types.RelationRecommends] {
		for _, atom := range rel.Atoms {
			for _, cand := range e.resolveAtom(atom) {
				id, ok := e.varOf[varKey{Name: cand.Name, Version: cand.Version.String()}]
				if !ok {
					continue
				}
				idx := indexOfCostLit(e.costLits, id)
				if idx < 0 {
					e.costLits = append(e.costLits, solver.IntToLit(int32(id))) //nolint:gosec
					e.costWeights = append(e.costWeights, -1)
					continue
				}
				e.costWeights[idx]--
			}
		}
	}
}

func uniqueInts(values []int) []int {
	seen := map[int]struct{}{}
	out := make([]int, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
