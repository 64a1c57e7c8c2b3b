package blueprint

import (
	"github.com/ZanzyTHEbar/errbuilder-go"

	"avular-packages/internal/debversion"
	"avular-packages/internal/types"
)

// Merge combines a user blueprint with a vendor blueprint overlay into a
// single BlueprintSet. The same package requested by both with
// contradictory version ranges is a hard error,
// surfaced at load time rather than silently intersected.
func Merge(user, vendor []types.BlueprintRequest) (types.BlueprintSet, error) {
	byName := map[string]types.BlueprintRequest{}
	var order []string

	add := func(req types.BlueprintRequest) error {
		existing, ok := byName[req.Name]
		if !ok {
			byName[req.Name] = req
			order = append(order, req.Name)
			return nil
		}
		merged, err := mergeRequest(existing, req)
		if err != nil {
			return err
		}
		byName[req.Name] = merged
		return nil
	}

	for _, req := range user {
		if err := add(req); err != nil {
			return types.BlueprintSet{}, err
		}
	}
	for _, req := range vendor {
		if err := add(req); err != nil {
			return types.BlueprintSet{}, err
		}
	}

	out := make([]types.BlueprintRequest, 0, len(order))
	for _, name := range order {
		out = append(out, byName[name])
	}
	return types.BlueprintSet{Requests: out}, nil
}

func mergeRequest(a, b types.BlueprintRequest) (types.BlueprintRequest, error) {
	merged := a
	merged.Local = a.Local || b.Local
	if merged.AddedBy == "" {
		merged.AddedBy = b.AddedBy
	}

	switch {
	case a.Range == nil:
		merged.Range = b.Range
	case b.Range == nil:
		merged.Range = a.Range
	default:
		if !rangesEqual(*a.Range, *b.Range) {
			return types.BlueprintRequest{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(contradictionMsg(a, b)).
				WithCause(debversion.ErrContradictoryRange)
		}
		merged.Range = a.Range
	}
	return merged, nil
}

func rangesEqual(a, b debversion.VersionRange) bool {
	return a.String() == b.String()
}

func contradictionMsg(a, b types.BlueprintRequest) string {
	return "contradictory version range for " + a.Name + " between " + a.Source + " and " + b.Source
}
