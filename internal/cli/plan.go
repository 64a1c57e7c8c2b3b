package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"avular-packages/internal/app"
	"avular-packages/internal/planner"
	"avular-packages/internal/resolver"
)

func newPlanCommand() *cobra.Command {
	opts := sharedOptions{}
	var ignore []string
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Resolve blueprints and emit the ordered action plan",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPlan(cmd.Context(), cmd, opts, ignore)
		},
	}
	addSharedFlags(cmd, &opts)
	cmd.Flags().StringSliceVar(&ignore, "ignore", nil, "Package name(s) the planner must never schedule for removal")
	return cmd
}

func runPlan(ctx context.Context, cmd *cobra.Command, opts sharedOptions, ignore []string) error {
	resolved := resolvedOptions(cmd, opts)
	service, err := newAppService(resolved)
	if err != nil {
		return err
	}
	repos, _, err := loadRepos(resolved.RepoFile)
	if err != nil {
		return err
	}

	result, err := service.Resolve(ctx, app.ResolveRequest{
		Repos: repos,
		Vars:  parseVars(resolved.Vars),
		Flags: resolver.Flags{
			NoRecommends:         resolved.NoRecommends,
			RemoveRecommends:     resolved.RemoveRecommends,
			AllowRemoveEssential: resolved.AllowRemoveEssential,
			NativeArch:           resolved.NativeArch,
		},
		PlanOpts: planner.Options{
			Ignore:     ignore,
			NativeArch: resolved.NativeArch,
		},
	})
	if err != nil {
		return err
	}

	for i, action := range result.Plan.Actions {
		switch action.Kind {
		case "fetch", "remove", "purge":
			fmt.Printf("%3d  %-10s %s\n", i+1, action.Kind, action.Name)
		default:
			fmt.Printf("%3d  %-10s %s %s -> %s\n", i+1, action.Kind, action.Name, action.From.String(), action.To.String())
		}
	}
	return nil
}
