// Package metadata implements the authenticated metadata pipeline:
// fetching, verifying, decompressing, and parsing signed repository
// indices into the package pool. Concurrency follows the
// teacher's bounded-worker-pool shape (repo_snapshot_proget.go's
// channel-of-tasks fan-out), generalized here to errgroup+semaphore so
// cancellation and the first-error-wins policy come from the standard
// concurrency idiom instead of a hand-rolled wait group.
package metadata

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"avular-packages/internal/pool"
	"avular-packages/internal/ports"
	"avular-packages/internal/types"
)

// Pipeline fetches every configured repo and merges the results into a
// single pool, honoring the ordering guarantee (InRelease before
// Packages within a repo, repos independent of each other) and the
// partial-pool-never-visible guarantee.
type Pipeline struct {
	Fetcher      HTTPFetcher
	Cache        Cache
	Keyrings     map[string]Keyring // repo name -> loaded keyring
	MaxInflight  int64
	RequireTrust bool // when false, failures of non-Mandatory repos are tolerated
}

var _ ports.MetadataFetchPort = (*Pipeline)(nil)

// FetchAll runs the pipeline across repos, each in its own goroutine,
// bounded to MaxInflight concurrent transfers per repo via a per-repo
// semaphore.
func (p *Pipeline) FetchAll(ctx context.Context, repos []ports.RepoConfig) (*pool.Pool, error) {
	result := pool.New()

	group, gctx := errgroup.WithContext(ctx)
	for _, repo := range repos {
		repo := repo
		group.Go(func() error {
			sem := semaphore.NewWeighted(p.maxInflight())
			units, err := p.fetchRepo(gctx, sem, repo)
			if err != nil {
				if repo.Mandatory || p.RequireTrust {
					return fmt.Errorf("repo %s: %w", repo.Name, err)
				}
				log.Ctx(gctx).Warn().Err(err).Str("repo", repo.Name).Msg("optional repo failed, continuing without it")
				return nil
			}
			for _, u := range units {
				if _, err := result.Add(u); err != nil {
					return err
				}
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

func (p *Pipeline) maxInflight() int64 {
	if p.MaxInflight <= 0 {
		return 4
	}
	return p.MaxInflight
}

// fetchRepo fetches and verifies InRelease, then fetches every
// component/arch Packages file for the repo; a failed component/arch
// short-circuits the whole repo.
func (p *Pipeline) fetchRepo(ctx context.Context, sem *semaphore.Weighted, repo ports.RepoConfig) ([]types.PackageUnit, error) {
	if err := sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	inReleaseBody, err := p.Fetcher.Get(ctx, strings.TrimRight(repo.URL, "/")+"/"+repo.Distribution+"/InRelease")
	sem.Release(1)
	if err != nil {
		return nil, err
	}

	keyring := p.Keyrings[repo.Name]
	if err := VerifyInRelease(inReleaseBody, nil, keyring); err != nil {
		return nil, err
	}

	checksums := parseReleaseChecksums(inReleaseBody, "SHA256")

	collector := &unitCollector{}
	group, gctx := errgroup.WithContext(ctx)
	for _, component := range repo.Components {
		for _, arch := range repo.Arch {
			component, arch := component, arch
			group.Go(func() error {
				parsed, err := p.fetchPackages(gctx, sem, repo, component, arch, checksums)
				if err != nil {
					return fmt.Errorf("%s/%s/%s: %w", repo.Distribution, component, arch, err)
				}
				collector.add(parsed)
				return nil
			})
		}
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return collector.units, nil
}

func (p *Pipeline) fetchPackages(ctx context.Context, sem *semaphore.Weighted, repo ports.RepoConfig, component, arch string, checksums map[string]string) ([]types.PackageUnit, error) {
	basePath := fmt.Sprintf("%s/binary-%s/Packages", component, arch)

	var chosenSuffix, chosenHash, chosenPath string
	for _, suffix := range compressedVariants {
		candidate := basePath + suffix
		if hash, ok := checksums[candidate]; ok {
			chosenSuffix, chosenHash, chosenPath = suffix, hash, candidate
			break
		}
	}
	if chosenPath == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("no Packages variant listed in InRelease for " + basePath)
	}

	hashPath := p.Cache.PackagesPath(repo.Name, repo.Distribution, component, arch, chosenHash)

	var raw []byte
	cacheHit := p.Cache.Exists(hashPath)
	if cacheHit {
		cached, err := p.Cache.Read(hashPath)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("path", hashPath).Msg("failed to read cached Packages entry, re-fetching")
			cacheHit = false
		} else {
			raw = cached
		}
	}

	if !cacheHit {
		url := strings.TrimRight(repo.URL, "/") + "/" + repo.Distribution + "/" + chosenPath

		if err := sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		fetched, err := p.Fetcher.Get(ctx, url)
		sem.Release(1)
		if err != nil {
			return nil, err
		}
		raw = fetched
	}

	if err := VerifySHA256(bytes.NewReader(raw), chosenHash); err != nil {
		return nil, err
	}

	decoded, err := decompressReader(bytes.NewReader(raw), chosenSuffix)
	if err != nil {
		return nil, err
	}

	origin := types.Origin{Repo: repo.Name, Component: component}
	units, err := ParsePackages(decoded, origin)
	if err != nil {
		return nil, err
	}

	if !cacheHit {
		if err := p.Cache.WriteAtomic(hashPath, bytes.NewReader(raw)); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("path", hashPath).Msg("failed to persist Packages cache entry")
		}
	}

	return units, nil
}

// unitCollector serializes appends from the per-component/arch
// goroutines of a single repo into one slice.
type unitCollector struct {
	mu    sync.Mutex
	units []types.PackageUnit
}

func (c *unitCollector) add(units []types.PackageUnit) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.units = append(c.units, units...)
}
