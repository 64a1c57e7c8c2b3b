package cli

import (
	"os"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"avular-packages/internal/ports"
)

// repoFile is the on-disk shape of the repository configuration file
// passed via --repos.
type repoFile struct {
	Repos []repoEntry `yaml:"repos"`
}

type repoEntry struct {
	Name            string   `yaml:"name"`
	URL             string   `yaml:"url"`
	Mirrorlist      string   `yaml:"mirrorlist"`
	Distribution    string   `yaml:"distribution"`
	Components      []string `yaml:"components"`
	Arch            []string `yaml:"arch"`
	TrustedKeyPaths []string `yaml:"trusted_keys"`
	Tags            []string `yaml:"tags"`
	Mandatory       bool     `yaml:"mandatory"`
}

// loadRepos reads the repository config file and splits it into the
// RepoConfig list the metadata pipeline needs plus the repo-name ->
// keyring-path map the app layer uses to build keyrings.
func loadRepos(path string) ([]ports.RepoConfig, map[string]string, error) {
	if path == "" {
		return nil, nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to read repo config: " + path).
			WithCause(err)
	}
	var file repoFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse repo config: " + path).
			WithCause(err)
	}

	repos := make([]ports.RepoConfig, 0, len(file.Repos))
	keyrings := map[string]string{}
	for _, entry := range file.Repos {
		repos = append(repos, ports.RepoConfig{
			Name:            entry.Name,
			URL:             entry.URL,
			Mirrorlist:      entry.Mirrorlist,
			Distribution:    entry.Distribution,
			Components:      entry.Components,
			Arch:            entry.Arch,
			TrustedKeyPaths: entry.TrustedKeyPaths,
			Tags:            entry.Tags,
			Mandatory:       entry.Mandatory,
		})
		if len(entry.TrustedKeyPaths) > 0 {
			keyrings[entry.Name] = entry.TrustedKeyPaths[0]
		}
	}
	return repos, keyrings, nil
}

// parseVars turns "key=value" pairs from --var flags into the variable
// map blueprint expansion consumes.
func parseVars(pairs []string) map[string]string {
	if len(pairs) == 0 {
		return nil
	}
	vars := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, found := splitKV(pair)
		if !found {
			continue
		}
		vars[key] = value
	}
	return vars
}

func splitKV(pair string) (string, string, bool) {
	for i := 0; i < len(pair); i++ {
		if pair[i] == '=' {
			return pair[:i], pair[i+1:], true
		}
	}
	return "", "", false
}
