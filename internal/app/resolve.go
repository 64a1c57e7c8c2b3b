package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"avular-packages/internal/blueprint"
	"avular-packages/internal/debversion"
	"avular-packages/internal/planner"
	"avular-packages/internal/pool"
	"avular-packages/internal/ports"
	"avular-packages/internal/resolver"
	"avular-packages/internal/types"
)

// ResolveRequest carries every run-specific input beyond the adapters
// already wired into Service.
type ResolveRequest struct {
	Repos    []ports.RepoConfig
	Vars     map[string]string
	Flags    resolver.Flags
	PlanOpts planner.Options
}

// ResolveResult bundles both outputs of one pipeline run.
type ResolveResult struct {
	Model types.ResolverModel
	Plan  types.ActionPlan
}

// Resolve runs the full pipeline: fetch metadata, load and merge
// blueprints, resolve, then plan.
func (s Service) Resolve(ctx context.Context, req ResolveRequest) (ResolveResult, error) {
	p, err := s.Metadata.FetchAll(ctx, req.Repos)
	if err != nil {
		return ResolveResult{}, err
	}
	log.Ctx(ctx).Info().Int("units", p.Len()).Msg("metadata pipeline populated pool")

	installed, err := s.InstalledSet.Load()
	if err != nil {
		return ResolveResult{}, err
	}

	userSet, err := s.Blueprint.Load(req.Vars)
	if err != nil {
		return ResolveResult{}, err
	}
	vendorSet, err := s.VendorOverlay.Load(req.Vars)
	if err != nil {
		return ResolveResult{}, err
	}
	merged, err := blueprint.Merge(userSet.Requests, vendorSet.Requests)
	if err != nil {
		return ResolveResult{}, err
	}

	model, err := resolver.Resolve(ctx, p, merged, installed, req.Flags)
	if err != nil {
		return ResolveResult{}, err
	}

	ignore, err := s.IgnoreRules.Load()
	if err != nil {
		return ResolveResult{}, err
	}
	opts := req.PlanOpts
	opts.Ignore = append(append([]string(nil), opts.Ignore...), ignore...)
	opts.AddedBy = blueprint.AddedByForest(merged)
	opts.RemoveRecommends = req.Flags.RemoveRecommends
	if opts.NativeArch == "" {
		opts.NativeArch = req.Flags.NativeArch
	}
	if opts.NativeArch == "" {
		opts.NativeArch = "amd64"
	}
	if opts.Cached == nil {
		opts.Cached = s.cachedUnits(p, model, opts.NativeArch)
	}

	plan, err := planner.Plan(p, model, installed, opts)
	if err != nil {
		return ResolveResult{}, err
	}

	return ResolveResult{Model: model, Plan: plan}, nil
}

// cachedUnits reports, for each name the model would install, whether
// its archive already sits in the on-disk cache, so the planner can skip
// emitting a redundant Fetch action.
func (s Service) cachedUnits(p *pool.Pool, model types.ResolverModel, nativeArch string) map[types.Key]bool {
	out := map[types.Key]bool{}
	for name, version := range model.Install {
		u, ok := installUnit(p, name, version, nativeArch)
		if !ok {
			continue
		}
		key := u.Key()
		if s.Cache.Exists(s.Cache.ArchivePath(u.Name, key.Version, u.Architecture)) {
			out[key] = true
		}
	}
	return out
}

// installUnit mirrors the planner's own architecture-preference policy
// (exact nativeArch match, falling back to "all", then to whatever is
// left) so the cache keys this builds match the ones findUnit will look
// up during planning.
func installUnit(p *pool.Pool, name string, version debversion.Version, nativeArch string) (*types.PackageUnit, bool) {
	var allMatch, anyMatch *types.PackageUnit
	for _, u := range p.Lookup(name) {
		if debversion.Compare(u.Version, version) != debversion.Equal {
			continue
		}
		if u.Architecture == nativeArch {
			return u, true
		}
		if u.Architecture == "all" && allMatch == nil {
			allMatch = u
		}
		if anyMatch == nil {
			anyMatch = u
		}
	}
	if allMatch != nil {
		return allMatch, true
	}
	if anyMatch != nil {
		return anyMatch, true
	}
	return nil, false
}
