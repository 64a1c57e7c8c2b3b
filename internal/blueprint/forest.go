package blueprint

import "avular-packages/internal/types"

// AddedByForest collects the child -> parent edges of the "added_by"
// recommendation provenance forest: every request pulled in
// via a Recommends relation records its originating package name, and
// this flattens the set into a lookup the planner consults when
// deciding whether an orphaned recommendation may be pruned.
func AddedByForest(set types.BlueprintSet) map[string]string {
	forest := map[string]string{}
	for _, req := range set.Requests {
		if req.AddedBy != "" {
			forest[req.Name] = req.AddedBy
		}
	}
	return forest
}
