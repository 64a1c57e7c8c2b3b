// Package debversion implements Debian version comparison and interval
// constraint reasoning (Debian Policy §5.6.12) on top of go-deb-version.
package debversion

import (
	"github.com/ZanzyTHEbar/errbuilder-go"
	debversion "github.com/knqyf263/go-deb-version"
)

// Version is a parsed Debian version: epoch, upstream, revision.
type Version struct {
	raw string
	v   debversion.Version
}

// String returns the original version string.
func (v Version) String() string {
	return v.raw
}

// Epoch returns the version's epoch component (0 when absent).
func (v Version) Epoch() uint {
	return v.v.Epoch()
}

// Parse parses a Debian version string. Returns ErrVersionSyntax on
// malformed input.
func Parse(s string) (Version, error) {
	parsed, err := debversion.NewVersion(s)
	if err != nil {
		return Version{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid debian version: " + s).
			WithCause(ErrVersionSyntax)
	}
	return Version{raw: s, v: parsed}, nil
}

// MustParse parses s and panics on error. Intended for constants in
// tests and fixtures, never for user-supplied input.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Ordering mirrors the three-way result of Compare.
type Ordering int

const (
	Less Ordering = iota - 1
	Equal
	Greater
)

// Compare totally orders two versions per Debian Policy §5.6.12: epoch
// numerically, then upstream and revision lexicographically under the
// mixed letter/digit rule.
func Compare(a, b Version) Ordering {
	switch c := a.v.Compare(b.v); {
	case c < 0:
		return Less
	case c > 0:
		return Greater
	default:
		return Equal
	}
}

// Equal reports whether a and b compare equal.
func (v Version) Equal(other Version) bool { return Compare(v, other) == Equal }

// Less reports whether v sorts strictly before other.
func (v Version) Less(other Version) bool { return Compare(v, other) == Less }

// Greater reports whether v sorts strictly after other.
func (v Version) Greater(other Version) bool { return Compare(v, other) == Greater }
