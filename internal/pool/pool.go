// Package pool implements the in-memory package pool: the immutable
// index of all candidate PackageUnits the resolver reads without locks
// once the metadata pipeline has finished populating it.
package pool

import (
	"sort"
	"sync"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"avular-packages/internal/debversion"
	"avular-packages/internal/types"
)

// Pool is a thin, append-only-during-build store of PackageUnits,
// indexed for fast lookup by name (descending version), by provided
// virtual name, and by installed file path.
type Pool struct {
	mu sync.RWMutex

	byName     map[string][]*types.PackageUnit // descending by version
	byProvides map[string][]*types.PackageUnit
	byFile     map[string]*types.PackageUnit
	byID       map[int64]*types.PackageUnit
	byKey      map[types.Key]*types.PackageUnit

	atomCache map[string][]*types.PackageUnit // memoized resolve_atom results

	nextID int64
	seen   map[types.Key]bool // uniqueness invariant
}

// New returns an empty pool.
func New() *Pool {
	return &Pool{
		byName:     map[string][]*types.PackageUnit{},
		byProvides: map[string][]*types.PackageUnit{},
		byFile:     map[string]*types.PackageUnit{},
		byID:       map[int64]*types.PackageUnit{},
		byKey:      map[types.Key]*types.PackageUnit{},
		atomCache:  map[string][]*types.PackageUnit{},
		seen:       map[types.Key]bool{},
	}
}

// Add inserts a unit, assigning it a stable id. Returns
// ErrDuplicateUnit if (name, version, architecture) already exists in
// the pool, except for Architecture "all" units: those are listed in
// every per-arch Packages file of a component, so a repeat sighting
// under a second configured arch is expected and is skipped rather than
// treated as a conflict.
func (p *Pool) Add(u types.PackageUnit) (*types.PackageUnit, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := u.Key()
	if p.seen[key] {
		if u.Architecture == "all" {
			return p.byKey[key], nil
		}
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeAlreadyExists).
			WithMsg("duplicate package unit: " + key.Name + " " + key.Version + " " + key.Architecture)
	}
	p.seen[key] = true

	p.nextID++
	u.ID = p.nextID
	stored := &u
	p.byID[stored.ID] = stored
	p.byKey[key] = stored

	p.byName[u.Name] = insertDescending(p.byName[u.Name], stored)

	for _, rel := range u.Relations[types.RelationProvides] {
		for _, atom := range rel.Atoms {
			p.byProvides[atom.Name] = append(p.byProvides[atom.Name], stored)
		}
	}
	for _, f := range u.Files {
		p.byFile[f] = stored
	}
	return stored, nil
}

func insertDescending(list []*types.PackageUnit, u *types.PackageUnit) []*types.PackageUnit {
	idx := sort.Search(len(list), func(i int) bool {
		return debversion.Compare(list[i].Version, u.Version) != debversion.Greater
	})
	list = append(list, nil)
	copy(list[idx+1:], list[idx:])
	list[idx] = u
	return list
}

// Lookup returns every candidate for name, ordered descending by
// version.
func (p *Pool) Lookup(name string) []*types.PackageUnit {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]*types.PackageUnit(nil), p.byName[name]...)
}

// LookupProvides returns every unit that declares name via Provides.
func (p *Pool) LookupProvides(name string) []*types.PackageUnit {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]*types.PackageUnit(nil), p.byProvides[name]...)
}

// LookupFile returns the unit that installs path, if any (backs
// `oma provide`).
func (p *Pool) LookupFile(path string) (*types.PackageUnit, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	u, ok := p.byFile[path]
	return u, ok
}

// UnitByID resolves a stable id back to its unit.
func (p *Pool) UnitByID(id int64) (*types.PackageUnit, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	u, ok := p.byID[id]
	return u, ok
}

// Names returns every distinct package name present in the pool
// (concrete or virtual-providing), for iterating the SAT encoding.
func (p *Pool) Names() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	seen := map[string]bool{}
	var out []string
	for name := range p.byName {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// ResolveAtom returns every unit satisfying atom: concrete candidates
// under atom.Name whose version lies in atom.Range, plus every unit that
// Provides atom.Name. Provided versions are not modeled, so atom.Range
// does not filter providers. When atom.Arch is
// set (an explicit "[arch]" qualifier on the relation), only units of
// that architecture (or "all") are considered; an unqualified atom is
// not filtered here — the resolver applies its own native-architecture
// policy on top of this result. Resolution is lazy and memoized; an
// atom naming an unknown package with no providers resolves to the
// empty set — it is up to the SAT layer to decide whether that is an
// error.
func (p *Pool) ResolveAtom(atom types.RelationAtom) []*types.PackageUnit {
	cacheKey := atomCacheKey(atom)

	p.mu.RLock()
	if cached, ok := p.atomCache[cacheKey]; ok {
		p.mu.RUnlock()
		return cached
	}
	p.mu.RUnlock()

	var out []*types.PackageUnit
	for _, u := range p.Lookup(atom.Name) {
		if atom.Arch != "" && u.Architecture != atom.Arch && u.Architecture != "all" {
			continue
		}
		if atom.Range == nil || debversion.RangeContains(*atom.Range, u.Version) {
			out = append(out, u)
		}
	}
	for _, u := range p.LookupProvides(atom.Name) {
		if atom.Arch != "" && u.Architecture != atom.Arch && u.Architecture != "all" {
			continue
		}
		out = append(out, u)
	}
	out = dedupe(out)

	p.mu.Lock()
	p.atomCache[cacheKey] = out
	p.mu.Unlock()
	return out
}

func atomCacheKey(atom types.RelationAtom) string {
	key := atom.Name
	if atom.Arch != "" {
		key += ":" + atom.Arch
	}
	if atom.Range != nil {
		key += "@" + atom.Range.String()
	}
	return key
}

func dedupe(units []*types.PackageUnit) []*types.PackageUnit {
	seen := map[int64]bool{}
	out := make([]*types.PackageUnit, 0, len(units))
	for _, u := range units {
		if seen[u.ID] {
			continue
		}
		seen[u.ID] = true
		out = append(out, u)
	}
	return out
}

// Len reports the total number of units in the pool.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	n := 0
	for _, list := range p.byName {
		n += len(list)
	}
	return n
}
