package resolver

import "context"

// extractSuspects finds an approximate minimal set of blueprint request
// names whose removal restores satisfiability, by iteratively dropping
// their hard demand clauses. This is not guaranteed minimal — it is a
// restricted re-solve, a deliberate best-effort tradeoff rather than a
// full minimal unsatisfiable core.
func extractSuspects(ctx context.Context, e *encoding, blueprintNames []string) ([]string, error) {
	dropped := map[string]bool{}
	remaining := append([]string(nil), blueprintNames...)

	for {
		extra := e.requestClausesFor(remaining)
		_, sat, err := e.solve(ctx, extra)
		if err != nil {
			return nil, err
		}
		if sat {
			break
		}
		if len(remaining) == 0 {
			break
		}
		// Drop the first request whose removal alone, among those left,
		// restores satisfiability; a linear scan is sufficient at the
		// scale this pipeline targets.
		victim := -1
		for i := range remaining {
			trial := withoutIndex(remaining, i)
			_, sat, err := e.solve(ctx, e.requestClausesFor(trial))
			if err != nil {
				return nil, err
			}
			if sat {
				victim = i
				break
			}
		}
		if victim < 0 {
			// No single drop suffices; drop the first and keep iterating.
			victim = 0
		}
		dropped[remaining[victim]] = true
		remaining = withoutIndex(remaining, victim)
	}

	out := make([]string, 0, len(dropped))
	for name := range dropped {
		out = append(out, name)
	}
	return out, nil
}

func withoutIndex(names []string, idx int) []string {
	out := make([]string, 0, len(names)-1)
	out = append(out, names[:idx]...)
	out = append(out, names[idx+1:]...)
	return out
}
