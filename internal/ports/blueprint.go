package ports

import "avular-packages/internal/types"

// BlueprintSourcePort loads the user-authored blueprint files that
// express installation intent.
type BlueprintSourcePort interface {
	Load(vars map[string]string) (types.BlueprintSet, error)
}

// VendorBlueprintPort loads the read-only vendor blueprint overlay
// merged under the user blueprint before resolution (supplemented
// feature, GLOSSARY "Vendor blueprint").
type VendorBlueprintPort interface {
	Load(vars map[string]string) (types.BlueprintSet, error)
}

// IgnoreRulesPort loads the ignorerules file consulted by the planner
// to forbid removal of matching units.
type IgnoreRulesPort interface {
	Load() ([]string, error)
}
