package ports

import (
	"context"

	"avular-packages/internal/pool"
)

// RepoConfig describes one configured repository.
type RepoConfig struct {
	Name            string
	URL             string
	Mirrorlist      string
	Distribution    string
	Components      []string
	Arch            []string
	TrustedKeyPaths []string
	Tags            []string
	Mandatory       bool
}

// MetadataFetchPort fetches, verifies, and parses every configured
// repository into a populated Pool.
type MetadataFetchPort interface {
	FetchAll(ctx context.Context, repos []RepoConfig) (*pool.Pool, error)
}
