package debversion

import "errors"

// ErrVersionSyntax is returned (wrapped) when a version string does not
// conform to Debian version syntax.
var ErrVersionSyntax = errors.New("debversion: invalid version syntax")

// ErrContradictoryRange is returned when a set of atomic constraints has
// an empty intersection — rejected at parse time, never at query time.
var ErrContradictoryRange = errors.New("debversion: contradictory version range")
