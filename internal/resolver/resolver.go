package resolver

import (
	"context"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"avular-packages/internal/debversion"
	"avular-packages/internal/pool"
	"avular-packages/internal/types"
)

// Resolve encodes pool, blueprint, and installed into CNF, invokes the
// CDCL engine, and runs the optimization passes, returning a
// ResolverModel or, when the problem is unsatisfiable, a
// CodeFailedPrecondition error whose cause is a *types.Unsolvable.
func Resolve(ctx context.Context, p *pool.Pool, blueprint types.BlueprintSet, installed types.InstalledSet, flags Flags) (types.ResolverModel, error) {
	e, err := build(p, blueprint, installed, flags)
	if err != nil {
		return types.ResolverModel{}, err
	}

	extra := e.allRequestClauses()
	base, sat, err := e.solve(ctx, extra)
	if err != nil {
		return types.ResolverModel{}, err
	}
	if !sat {
		directNames := directRequestNames(blueprint)
		suspects, serr := extractSuspects(ctx, e, directNames)
		if serr != nil {
			return types.ResolverModel{}, serr
		}
		unsolvable := &types.Unsolvable{Suspects: suspects}
		return types.ResolverModel{}, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(unsolvable.Error()).
			WithCause(unsolvable)
	}

	// The optimization passes operate on top of the same base encoding,
	// additionally constrained by the (never-relaxed) blueprint demand
	// clauses, so every re-solve remains a valid candidate model.
	optimizeEncoding := *e
	optimizeEncoding.baseClauses = append(append([][]int(nil), e.baseClauses...), extra...)

	optimized, err := optimize(ctx, &optimizeEncoding, p, blueprint, base)
	if err != nil {
		return types.ResolverModel{}, err
	}

	result := toResolverModel(optimized, installed)
	log.Ctx(ctx).Debug().Int("installed", len(result.Install)).Int("removed", len(result.Remove)).Msg("resolver completed")
	return result, nil
}

func directRequestNames(blueprint types.BlueprintSet) []string {
	var out []string
	for _, req := range blueprint.Requests {
		if req.AddedBy == "" {
			out = append(out, req.Name)
		}
	}
	return out
}

func toResolverModel(m model, installed types.InstalledSet) types.ResolverModel {
	out := types.ResolverModel{Install: map[string]debversion.Version{}}
	for name, versionStr := range m {
		v, err := debversion.Parse(versionStr)
		if err != nil {
			continue
		}
		out.Install[name] = v
	}
	for name := range installed.Versions {
		if _, ok := m[name]; !ok {
			out.Remove = append(out.Remove, name)
		}
	}
	return out
}
