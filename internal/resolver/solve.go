package resolver

import (
	"context"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/crillab/gophersat/solver"

	"avular-packages/internal/types"
)

// model is one satisfying assignment: name -> selected version string,
// or "" for absent.
type model map[string]string

// solve runs clauses (base + any extra unit clauses from optimization
// passes) through gophersat and extracts a model. The SAT engine is
// treated as a black box: any internal error is fatal.
func (e *encoding) solve(ctx context.Context, extra [][]int) (model, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, errbuilder.New().
			WithCode(errbuilder.CodeCancelled).
			WithMsg("resolution cancelled").
			WithCause(types.ErrCancelled)
	}

	clauses := make([][]int, 0, len(e.baseClauses)+len(extra))
	clauses = append(clauses, e.baseClauses...)
	clauses = append(clauses, extra...)

	problem := solver.ParseSliceNb(clauses, e.nextVar)
	problem.SetCostFunc(e.costLits, e.costWeights)
	sat := solver.New(problem)

	if cost := sat.Minimize(); cost < 0 {
		return nil, false, nil
	}

	assignment := sat.Model()
	m := model{}
	for id, key := range e.keyOf {
		if id-1 < 0 || id-1 >= len(assignment) {
			continue
		}
		if !assignment[id-1] {
			continue
		}
		if key.Version == "" {
			continue // absent: name is simply missing from the model
		}
		m[key.Name] = key.Version
	}
	return m, true, nil
}

// forceUnit returns a unit clause pinning varID to true.
func forceUnit(varID int) []int { return []int{varID} }

// forceAbsent returns a unit clause pinning name's absent var to true.
func (e *encoding) forceAbsent(name string) ([]int, bool) {
	id, ok := e.absentVar(name)
	if !ok {
		return nil, false
	}
	return forceUnit(id), true
}

// forceVersion returns a unit clause pinning name to exactly version.
func (e *encoding) forceVersion(name, version string) ([]int, bool) {
	id, ok := e.varOf[varKey{Name: name, Version: version}]
	if !ok {
		return nil, false
	}
	return forceUnit(id), true
}
