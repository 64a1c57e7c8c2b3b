package ports

import "avular-packages/internal/types"

// InstalledSetPort reads the system's current package status, typically
// backed by dpkg's status file.
type InstalledSetPort interface {
	Load() (types.InstalledSet, error)
}
