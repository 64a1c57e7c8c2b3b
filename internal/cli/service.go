package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"avular-packages/internal/app"
)

// sharedOptions are the flags every subcommand needs to build a Service
// and a ResolveRequest.
type sharedOptions struct {
	RepoFile             string
	BlueprintDir         string
	VendorDir            string
	IgnoreRules          string
	CacheRoot            string
	DpkgStatus           string
	RequireTrust         bool
	Vars                 []string
	NoRecommends         bool
	RemoveRecommends     bool
	AllowRemoveEssential bool
	NativeArch           string
}

func addSharedFlags(cmd *cobra.Command, opts *sharedOptions) {
	cmd.Flags().StringVar(&opts.RepoFile, "repos", "", "Repository config file (YAML)")
	cmd.Flags().StringVar(&opts.BlueprintDir, "blueprint-dir", "", "Blueprint directory")
	cmd.Flags().StringVar(&opts.VendorDir, "vendor-dir", "", "Vendor blueprint overlay directory")
	cmd.Flags().StringVar(&opts.IgnoreRules, "ignore-rules", "", "Ignorerules file path")
	cmd.Flags().StringVar(&opts.CacheRoot, "cache-root", "/var/cache/oma-resolved", "Metadata and archive cache root")
	cmd.Flags().StringVar(&opts.DpkgStatus, "dpkg-status", "/var/lib/dpkg/status", "dpkg status file path")
	cmd.Flags().BoolVar(&opts.RequireTrust, "require-trust", true, "Fail the run when any repository fails to fetch or verify (when false, failed non-mandatory repositories are skipped)")
	cmd.Flags().StringSliceVar(&opts.Vars, "var", nil, "Blueprint variable key=value (repeatable)")
	cmd.Flags().BoolVar(&opts.NoRecommends, "no-recommends", false, "Do not install Recommends")
	cmd.Flags().BoolVar(&opts.RemoveRecommends, "remove-recommends", false, "Allow pruning orphaned recommendations on removal")
	cmd.Flags().BoolVar(&opts.AllowRemoveEssential, "allow-remove-essential", false, "Allow removing essential packages")
	cmd.Flags().StringVar(&opts.NativeArch, "native-arch", "amd64", "Native architecture the resolver and planner key each package name to (Architecture: all units always match)")

	_ = viper.BindPFlag("repos", cmd.Flags().Lookup("repos"))
	_ = viper.BindPFlag("blueprint_dir", cmd.Flags().Lookup("blueprint-dir"))
	_ = viper.BindPFlag("vendor_dir", cmd.Flags().Lookup("vendor-dir"))
	_ = viper.BindPFlag("ignore_rules", cmd.Flags().Lookup("ignore-rules"))
	_ = viper.BindPFlag("cache_root", cmd.Flags().Lookup("cache-root"))
	_ = viper.BindPFlag("dpkg_status", cmd.Flags().Lookup("dpkg-status"))
	_ = viper.BindPFlag("require_trust", cmd.Flags().Lookup("require-trust"))
	_ = viper.BindPFlag("vars", cmd.Flags().Lookup("var"))
	_ = viper.BindPFlag("no_recommends", cmd.Flags().Lookup("no-recommends"))
	_ = viper.BindPFlag("remove_recommends", cmd.Flags().Lookup("remove-recommends"))
	_ = viper.BindPFlag("allow_remove_essential", cmd.Flags().Lookup("allow-remove-essential"))
	_ = viper.BindPFlag("native_arch", cmd.Flags().Lookup("native-arch"))
}

func resolvedOptions(cmd *cobra.Command, opts sharedOptions) sharedOptions {
	return sharedOptions{
		RepoFile:             resolveString(cmd, opts.RepoFile, "repos", "repos"),
		BlueprintDir:         resolveString(cmd, opts.BlueprintDir, "blueprint_dir", "blueprint-dir"),
		VendorDir:            resolveString(cmd, opts.VendorDir, "vendor_dir", "vendor-dir"),
		IgnoreRules:          resolveString(cmd, opts.IgnoreRules, "ignore_rules", "ignore-rules"),
		CacheRoot:            resolveString(cmd, opts.CacheRoot, "cache_root", "cache-root"),
		DpkgStatus:           resolveString(cmd, opts.DpkgStatus, "dpkg_status", "dpkg-status"),
		RequireTrust:         resolveBool(cmd, opts.RequireTrust, "require_trust", "require-trust"),
		Vars:                 resolveStrings(cmd, opts.Vars, "vars", "var"),
		NoRecommends:         resolveBool(cmd, opts.NoRecommends, "no_recommends", "no-recommends"),
		RemoveRecommends:     resolveBool(cmd, opts.RemoveRecommends, "remove_recommends", "remove-recommends"),
		AllowRemoveEssential: resolveBool(cmd, opts.AllowRemoveEssential, "allow_remove_essential", "allow-remove-essential"),
		NativeArch:           resolveString(cmd, opts.NativeArch, "native_arch", "native-arch"),
	}
}

// newAppService wires the concrete adapters for one command invocation
// from the resolved shared options.
func newAppService(opts sharedOptions) (app.Service, error) {
	_, keyrings, err := loadRepos(opts.RepoFile)
	if err != nil {
		return app.Service{}, err
	}
	return app.NewService(app.Config{
		DpkgStatusPath:  opts.DpkgStatus,
		BlueprintDir:    opts.BlueprintDir,
		VendorDir:       opts.VendorDir,
		IgnoreRulesPath: opts.IgnoreRules,
		CacheRoot:       opts.CacheRoot,
		Keyrings:        keyrings,
		RequireTrust:    opts.RequireTrust,
	})
}

func resolveString(cmd *cobra.Command, value string, key string, flagName string) string {
	if cmd == nil {
		if value != "" {
			return value
		}
		return viper.GetString(key)
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetString(key)
}

func resolveStrings(cmd *cobra.Command, values []string, key string, flagName string) []string {
	if cmd == nil {
		if len(values) > 0 {
			return values
		}
		return viper.GetStringSlice(key)
	}
	if flagChanged(cmd, flagName) {
		return values
	}
	return viper.GetStringSlice(key)
}

func resolveBool(cmd *cobra.Command, value bool, key string, flagName string) bool {
	if cmd == nil {
		return value
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetBool(key)
}

func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil || strings.TrimSpace(name) == "" {
		return false
	}
	if flag := cmd.Flags().Lookup(name); flag != nil {
		return flag.Changed
	}
	if flag := cmd.PersistentFlags().Lookup(name); flag != nil {
		return flag.Changed
	}
	return false
}
