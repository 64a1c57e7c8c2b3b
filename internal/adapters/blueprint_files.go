package adapters

import (
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"avular-packages/internal/blueprint"
	"avular-packages/internal/ports"
	"avular-packages/internal/types"
)

// FileBlueprintAdapter loads every blueprint file in Dir, in
// lexicographic filename order for deterministic variable-expansion and
// merge results.
type FileBlueprintAdapter struct {
	Dir string
}

var _ ports.BlueprintSourcePort = FileBlueprintAdapter{}

func NewFileBlueprintAdapter(dir string) FileBlueprintAdapter {
	return FileBlueprintAdapter{Dir: dir}
}

func (a FileBlueprintAdapter) Load(vars map[string]string) (types.BlueprintSet, error) {
	return loadBlueprintDir(a.Dir, vars)
}

// FileVendorBlueprintAdapter loads the read-only vendor blueprint
// overlay from a separate directory.
type FileVendorBlueprintAdapter struct {
	Dir string
}

var _ ports.VendorBlueprintPort = FileVendorBlueprintAdapter{}

func NewFileVendorBlueprintAdapter(dir string) FileVendorBlueprintAdapter {
	return FileVendorBlueprintAdapter{Dir: dir}
}

func (a FileVendorBlueprintAdapter) Load(vars map[string]string) (types.BlueprintSet, error) {
	return loadBlueprintDir(a.Dir, vars)
}

func loadBlueprintDir(dir string, vars map[string]string) (types.BlueprintSet, error) {
	if dir == "" {
		return types.BlueprintSet{}, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return types.BlueprintSet{}, nil
		}
		return types.BlueprintSet{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to list blueprint directory: " + dir).
			WithCause(err)
	}

	var requests []types.BlueprintRequest
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		f, err := os.Open(path)
		if err != nil {
			return types.BlueprintSet{}, err
		}
		parsed, err := blueprint.Parse(f, path, blueprint.Vars(vars))
		f.Close()
		if err != nil {
			return types.BlueprintSet{}, err
		}
		requests = append(requests, parsed...)
	}
	return types.BlueprintSet{Requests: requests}, nil
}

// FileIgnoreRulesAdapter loads the ignorerules file consulted by the
// planner.
type FileIgnoreRulesAdapter struct {
	Path string
}

var _ ports.IgnoreRulesPort = FileIgnoreRulesAdapter{}

func NewFileIgnoreRulesAdapter(path string) FileIgnoreRulesAdapter {
	return FileIgnoreRulesAdapter{Path: path}
}

func (a FileIgnoreRulesAdapter) Load() ([]string, error) {
	if a.Path == "" {
		return nil, nil
	}
	f, err := os.Open(a.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()
	return blueprint.ParseIgnoreRules(f)
}
