package planner

import (
	"github.com/ZanzyTHEbar/errbuilder-go"

	"avular-packages/internal/debversion"
	"avular-packages/internal/pool"
	"avular-packages/internal/types"
)

// Options configures plan construction beyond the raw model diff.
type Options struct {
	// Ignore lists names the planner must never schedule a removal for
	//.
	Ignore []string

	// Cached reports, for a given unit key, whether its archive is
	// already present in the on-disk cache; nil treats nothing as
	// cached, so every install-set unit gets a Fetch action.
	Cached map[types.Key]bool

	// AddedBy is the flattened added_by forest (child name -> parent
	// name) for requests pulled in via Recommends. Consulted
	// only when RemoveRecommends is false.
	AddedBy map[string]string

	// RemoveRecommends allows the planner to schedule removal of
	// orphaned recommendations (names the AddedBy forest marks as
	// recommendation-derived). When false, such names are left installed
	// instead of removed, mirroring an apt-style "keep unless asked".
	RemoveRecommends bool

	// NativeArch is the architecture findUnit prefers when a (name,
	// version) pair is carried by units of more than one architecture in
	// the pool. Defaults to "amd64" when empty, matching resolver.Flags.
	NativeArch string
}

func (o Options) nativeArch() string {
	if o.NativeArch == "" {
		return "amd64"
	}
	return o.NativeArch
}

// Plan computes a validated ActionPlan transitioning InstalledSet toward
// ResolverModel.
func Plan(p *pool.Pool, model types.ResolverModel, installed types.InstalledSet, opts Options) (types.ActionPlan, error) {
	ignore := map[string]bool{}
	for _, n := range opts.Ignore {
		ignore[n] = true
	}

	transitions := computeTransitions(model, installed)

	installUnits := map[string]*types.PackageUnit{}
	removeNames := map[string]bool{}
	for _, t := range transitions {
		switch t.Kind() {
		case types.ActionUnpack:
			u, ok := findUnit(p, t.Name, *t.To, opts.nativeArch())
			if !ok {
				return types.ActionPlan{}, errbuilder.New().
					WithCode(errbuilder.CodeInternal).
					WithMsg("planner: resolved unit not found in pool: " + t.Name)
			}
			installUnits[t.Name] = u
		case types.ActionRemove:
			if isIgnored(t.Name, ignore) {
				continue
			}
			if !opts.RemoveRecommends && opts.AddedBy[t.Name] != "" {
				continue
			}
			removeNames[t.Name] = true
		}
	}

	fetches := fetchActions(installUnits, opts.Cached)
	removes := removalOrder(p, installed, removeNames, opts.nativeArch())
	installOrder := topoOrder(installUnits)

	var actions []types.Action
	actions = append(actions, fetches...)

	for _, name := range removes {
		v := installed.Versions[name]
		actions = append(actions, types.Action{Kind: types.ActionRemove, Name: name, From: v})
	}

	for _, name := range installOrder {
		u := installUnits[name]
		var from debversion.Version
		if v, ok := installed.Versions[name]; ok {
			from = v
		}
		actions = append(actions, types.Action{Kind: types.ActionUnpack, Name: name, From: from, To: u.Version})
		actions = append(actions, types.Action{Kind: types.ActionConfigure, Name: name, From: from, To: u.Version})
	}

	plan := types.ActionPlan{Actions: actions}
	if err := validate(plan, installUnits); err != nil {
		return types.ActionPlan{}, err
	}
	return plan, nil
}

func fetchActions(installUnits map[string]*types.PackageUnit, cached map[types.Key]bool) []types.Action {
	names := sortedKeys(installUnits)
	var out []types.Action
	for _, name := range names {
		u := installUnits[name]
		if cached != nil && cached[u.Key()] {
			continue
		}
		out = append(out, types.Action{Kind: types.ActionFetch, Name: name, To: u.Version})
	}
	return out
}

// validate rejects any plan where an Unpack action's Pre-Depends targets
// (restricted to the install set) are not already configured at that
// point in the sequence.
func validate(plan types.ActionPlan, installUnits map[string]*types.PackageUnit) error {
	configured := map[string]bool{}
	for _, a := range plan.Actions {
		switch a.Kind {
		case types.ActionUnpack:
			u, ok := installUnits[a.Name]
			if !ok {
				continue
			}
			for _, rel := range u.Relations[types.RelationPreDepends] {
				if !preDependSatisfied(rel, installUnits, configured) {
					return errbuilder.New().
						WithCode(errbuilder.CodeFailedPrecondition).
						WithMsg("planner: pre-depends not configured before unpack of " + a.Name)
				}
			}
		case types.ActionConfigure:
			configured[a.Name] = true
		}
	}
	return nil
}

func preDependSatisfied(rel types.Relation, installUnits map[string]*types.PackageUnit, configured map[string]bool) bool {
	for _, atom := range rel.Atoms {
		if _, inTarget := installUnits[atom.Name]; !inTarget {
			// Not part of this plan's install set: already satisfied by
			// prior state, nothing for this plan to enforce.
			return true
		}
		if configured[atom.Name] {
			return true
		}
	}
	return false
}
