package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"avular-packages/internal/app"
	"avular-packages/internal/resolver"
)

func newResolveCommand() *cobra.Command {
	opts := sharedOptions{}
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve blueprints against repository metadata into an installation set",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runResolve(cmd.Context(), cmd, opts)
		},
	}
	addSharedFlags(cmd, &opts)
	return cmd
}

func runResolve(ctx context.Context, cmd *cobra.Command, opts sharedOptions) error {
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
	})
	if err != nil {
		return err
	}

	fmt.Printf("install set: %d package(s)\n", len(result.Model.Install))
	for name, version := range result.Model.Install {
		fmt.Printf("  %s %s\n", name, version.String())
	}
	if len(result.Model.Remove) > 0 {
		fmt.Printf("remove: %d package(s)\n", len(result.Model.Remove))
		for _, name := range result.Model.Remove {
			fmt.Printf("  %s\n", name)
		}
	}
	return nil
}
