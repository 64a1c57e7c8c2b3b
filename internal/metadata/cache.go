package metadata

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"avular-packages/internal/ports"
)

// Cache lays out the on-disk cache as:
// cache_root/<repo>/<dist>/<comp>/<arch>/Packages.<hash>,
// cache_root/<repo>/InRelease.<hash>, and
// cache_root/archives/<pkg>_<version>_<arch>.deb.
type Cache struct {
	Root string
}

func NewCache(root string) Cache {
	return Cache{Root: root}
}

func (c Cache) InReleasePath(repo, hash string) string {
	return filepath.Join(c.Root, repo, fmt.Sprintf("InRelease.%s", hash))
}

func (c Cache) PackagesPath(repo, dist, component, arch, hash string) string {
	return filepath.Join(c.Root, repo, dist, component, arch, fmt.Sprintf("Packages.%s", hash))
}

func (c Cache) ArchivePath(name, version, arch string) string {
	return filepath.Join(c.Root, "archives", fmt.Sprintf("%s_%s_%s.deb", name, version, arch))
}

// WriteAtomic writes r to path via a ".part"-suffixed temp file followed
// by an atomic rename, so a cancelled run never leaves a half-written
// file at the final name.
func (c Cache) WriteAtomic(path string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create cache directory for " + path).
			WithCause(err)
	}
	partPath := path + ".part"
	f, err := os.Create(partPath)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create temp cache file " + partPath).
			WithCause(err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(partPath)
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed writing temp cache file " + partPath).
			WithCause(err)
	}
	if err := f.Close(); err != nil {
		os.Remove(partPath)
		return err
	}
	if err := os.Rename(partPath, path); err != nil {
		os.Remove(partPath)
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to rename temp cache file into place: " + path).
			WithCause(err)
	}
	return nil
}

// Exists reports whether path is already present, for
// conditional-fetch-on-hash-match and round-trip checks.
func (c Cache) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Read returns the full contents of an already-cached file at path, for
// the conditional-fetch path: callers check Exists(path) first and, on a
// hit, read the cached bytes back instead of re-fetching over the
// network.
func (c Cache) Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read cache file " + path).
			WithCause(err)
	}
	return data, nil
}

// CleanPartials removes every ".part" file under the cache root, used
// after a cancelled run to restore a consistent cache state.
func (c Cache) CleanPartials() error {
	return filepath.WalkDir(c.Root, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if !entry.IsDir() && filepath.Ext(path) == ".part" {
			return os.Remove(path)
		}
		return nil
	})
}

// Lock is a simple single-process advisory lock implemented with
// O_CREATE|O_EXCL: no third-party library is pulled in purely for
// advisory locking since the semantics are a three-line
// create/defer-remove.
type Lock struct {
	path string
	file *os.File
}

var _ ports.CacheLockPort = (*Lock)(nil)

func NewLock(cacheRoot string) Lock {
	return Lock{path: filepath.Join(cacheRoot, ".lock")}
}

func (l *Lock) Lock() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeUnavailable).
			WithMsg("cache already locked by another process: " + l.path).
			WithCause(err)
	}
	l.file = f
	return nil
}

func (l *Lock) Unlock() error {
	if l.file == nil {
		return nil
	}
	l.file.Close()
	return os.Remove(l.path)
}
