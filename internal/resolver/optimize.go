package resolver

import (
	"context"

	"avular-packages/internal/debversion"
	"avular-packages/internal/pool"
	"avular-packages/internal/types"
)

// optimize runs the latest-preferred and minimality passes on top of an
// already-satisfiable base model. Each pass is a single sweep over every
// name, so the number of re-solves is at most twice the number of names;
// the sweeps are not repeated, so a restriction that becomes possible
// only after a later acceptance is not tried again.
func optimize(ctx context.Context, e *encoding, p *pool.Pool, blueprint types.BlueprintSet, base model) (model, error) {
	current := base
	forced := [][]int{}

	directNames := map[string]bool{}
	for _, req := range blueprint.Requests {
		if req.AddedBy == "" {
			directNames[req.Name] = true
		}
	}

	for _, name := range e.namesByOrder {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		latest := latestVersion(p, name, e.nativeArch)
		if latest == "" {
			continue
		}
		selected, present := current[name]
		if present && selected == latest {
			continue
		}
		clause, ok := e.forceVersion(name, latest)
		if !ok {
			continue
		}
		candidate, sat, err := e.solve(ctx, append(forced, clause))
		if err != nil {
			return nil, err
		}
		if !sat {
			continue
		}
		if downgradesOthers(current, candidate, name) || introducesNewInstalls(current, candidate, name) {
			continue
		}
		forced = append(forced, clause)
		current = candidate
	}

	for _, name := range e.namesByOrder {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if directNames[name] {
			continue
		}
		if _, present := current[name]; !present {
			continue
		}
		clause, ok := e.forceAbsent(name)
		if !ok {
			continue
		}
		candidate, sat, err := e.solve(ctx, append(forced, clause))
		if err != nil {
			return nil, err
		}
		if !sat {
			continue
		}
		if downgradesOthers(current, candidate, "") {
			continue
		}
		forced = append(forced, clause)
		current = candidate
	}

	return current, nil
}

func latestVersion(p *pool.Pool, name, nativeArch string) string {
	units := filterNativeArch(p.Lookup(name), nativeArch)
	if len(units) == 0 {
		return ""
	}
	best := units[0]
	for _, u := range units[1:] {
		if debversion.Compare(u.Version, best.Version) == debversion.Greater {
			best = u
		}
	}
	return best.Version.String()
}

// downgradesOthers reports whether candidate strictly lowers the
// version of any name present in both models other than except.
func downgradesOthers(prev, candidate model, except string) bool {
	for name, oldVersion := range prev {
		if name == except {
			continue
		}
		newVersion, ok := candidate[name]
		if !ok {
			continue
		}
		if newVersion == oldVersion {
			continue
		}
		ov, err1 := debversion.Parse(oldVersion)
		nv, err2 := debversion.Parse(newVersion)
		if err1 != nil || err2 != nil {
			continue
		}
		if nv.Less(ov) {
			return true
		}
	}
	return false
}

// introducesNewInstalls reports whether candidate adds a name (other
// than except) that prev did not have at all.
func introducesNewInstalls(prev, candidate model, except string) bool {
	for name := range candidate {
		if name == except {
			continue
		}
		if _, ok := prev[name]; !ok {
			return true
		}
	}
	return false
}
