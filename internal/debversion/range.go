package debversion

import (
	"github.com/ZanzyTHEbar/errbuilder-go"
)

// Op is an atomic Debian version relation operator.
type Op string

const (
	OpLT  Op = "<<" // strictly less than
	OpLE  Op = "<="
	OpEQ  Op = "="
	OpGE  Op = ">="
	OpGT  Op = ">>" // strictly greater than
)

// Atom is a single {op, version} constraint, as found in a Depends
// relation alternative such as "libfoo (>= 1.0)".
type Atom struct {
	Op      Op
	Version Version
}

// bound is an inclusive-or-exclusive endpoint of an interval.
type bound struct {
	set    bool
	strict bool
	value  Version
}

// VersionRange is a conjunction of atomic constraints, represented as a
// merged interval: an optional lower bound, an optional upper bound, and
// an optional exact-equality pin. Built once by RangeParse and reused
// across repeated RangeContains calls without re-parsing.
type VersionRange struct {
	lower bound
	upper bound
	eq    *Version
}

// String renders a debug form of the range, stable enough to use as a
// memoization cache key.
func (r VersionRange) String() string {
	out := ""
	if r.eq != nil {
		return "=" + r.eq.String()
	}
	if r.lower.set {
		op := ">="
		if r.lower.strict {
			op = ">>"
		}
		out += op + r.lower.value.String()
	}
	if r.upper.set {
		op := "<="
		if r.upper.strict {
			op = "<<"
		}
		out += op + r.upper.value.String()
	}
	return out
}

// RangeParse intersects a list of atoms into a single VersionRange. An
// empty intersection is a static contradiction and is rejected here,
// never at query time (§4.A).
func RangeParse(atoms []Atom) (VersionRange, error) {
	var r VersionRange
	for _, atom := range atoms {
		switch atom.Op {
		case OpGE:
			r.tightenLower(atom.Version, false)
		case OpGT:
			r.tightenLower(atom.Version, true)
		case OpLE:
			r.tightenUpper(atom.Version, false)
		case OpLT:
			r.tightenUpper(atom.Version, true)
		case OpEQ:
			if r.eq != nil && !r.eq.Equal(atom.Version) {
				return VersionRange{}, contradiction()
			}
			v := atom.Version
			r.eq = &v
		default:
			return VersionRange{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("unknown version relation operator")
		}
	}
	if err := r.validate(); err != nil {
		return VersionRange{}, err
	}
	return r, nil
}

func (r *VersionRange) tightenLower(v Version, strict bool) {
	if !r.lower.set || v.Greater(r.lower.value) || (v.Equal(r.lower.value) && strict && !r.lower.strict) {
		r.lower = bound{set: true, strict: strict, value: v}
	}
}

func (r *VersionRange) tightenUpper(v Version, strict bool) {
	if !r.upper.set || v.Less(r.upper.value) || (v.Equal(r.upper.value) && strict && !r.upper.strict) {
		r.upper = bound{set: true, strict: strict, value: v}
	}
}

// validate checks lower <= upper with correct strictness, and that an
// exact-equality pin (if any) falls inside the bounds.
func (r *VersionRange) validate() error {
	if r.lower.set && r.upper.set {
		switch {
		case r.lower.value.Greater(r.upper.value):
			return contradiction()
		case r.lower.value.Equal(r.upper.value) && (r.lower.strict || r.upper.strict):
			return contradiction()
		}
	}
	if r.eq != nil {
		if r.lower.set {
			if r.eq.Less(r.lower.value) || (r.eq.Equal(r.lower.value) && r.lower.strict) {
				return contradiction()
			}
		}
		if r.upper.set {
			if r.eq.Greater(r.upper.value) || (r.eq.Equal(r.upper.value) && r.upper.strict) {
				return contradiction()
			}
		}
	}
	return nil
}

// RangeContains reports whether v satisfies r. Equivalent to the
// logical AND of range_contains over the atoms r was built from.
func RangeContains(r VersionRange, v Version) bool {
	if r.eq != nil {
		return v.Equal(*r.eq)
	}
	if r.lower.set {
		if v.Less(r.lower.value) || (v.Equal(r.lower.value) && r.lower.strict) {
			return false
		}
	}
	if r.upper.set {
		if v.Greater(r.upper.value) || (v.Equal(r.upper.value) && r.upper.strict) {
			return false
		}
	}
	return true
}

func contradiction() error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg("contradictory version range").
		WithCause(ErrContradictoryRange)
}
