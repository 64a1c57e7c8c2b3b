package app

import (
	"time"

	"avular-packages/internal/metadata"
)

func loadKeyrings(paths map[string]string) (map[string]metadata.Keyring, error) {
	out := map[string]metadata.Keyring{}
	for repo, path := range paths {
		if path == "" {
			continue
		}
		keyring, err := metadata.LoadKeyring([]string{path})
		if err != nil {
			return nil, err
		}
		out[repo] = keyring
	}
	return out, nil
}

func newMetadataPipeline(cacheRoot string, keyrings map[string]metadata.Keyring, requireTrust bool) *metadata.Pipeline {
	return &metadata.Pipeline{
		Fetcher:      metadata.NewHTTPFetcher(30 * time.Second),
		Cache:        metadata.NewCache(cacheRoot),
		Keyrings:     keyrings,
		MaxInflight:  4,
		RequireTrust: requireTrust,
	}
}
