// Package app orchestrates the metadata pipeline, the resolver, and the
// planner behind a small Service type that wires ports to adapters for
// each operation. No CLI subcommand surface lives here.
package app

import (
	"avular-packages/internal/adapters"
	"avular-packages/internal/metadata"
	"avular-packages/internal/ports"
)

type Service struct {
	Metadata      ports.MetadataFetchPort
	InstalledSet  ports.InstalledSetPort
	Blueprint     ports.BlueprintSourcePort
	VendorOverlay ports.VendorBlueprintPort
	IgnoreRules   ports.IgnoreRulesPort
	Cache         metadata.Cache
}

// Config gathers the filesystem locations NewService needs to build its
// adapters.
type Config struct {
	DpkgStatusPath  string
	BlueprintDir    string
	VendorDir       string
	IgnoreRulesPath string
	CacheRoot       string
	Repos           []ports.RepoConfig
	Keyrings        map[string]string // repo name -> armored public key path
	RequireTrust    bool
}

// NewService wires the concrete adapters behind the ports Service needs
// for a resolve+plan run.
func NewService(cfg Config) (Service, error) {
	keyrings, err := loadKeyrings(cfg.Keyrings)
	if err != nil {
		return Service{}, err
	}

	return Service{
		Metadata:      newMetadataPipeline(cfg.CacheRoot, keyrings, cfg.RequireTrust),
		InstalledSet:  adapters.NewDpkgStatusAdapter(cfg.DpkgStatusPath),
		Blueprint:     adapters.NewFileBlueprintAdapter(cfg.BlueprintDir),
		VendorOverlay: adapters.NewFileVendorBlueprintAdapter(cfg.VendorDir),
		IgnoreRules:   adapters.NewFileIgnoreRulesAdapter(cfg.IgnoreRulesPath),
		Cache:         metadata.NewCache(cfg.CacheRoot),
	}, nil
}
