// Package cache manages keyed directories under the cache root.
//
// Every entry is created under an exclusive per-key file lock: it is
// populated in a temporary location, marked complete, then renamed into
// place. The completion marker travels with the rename, so an entry's final
// path is either absent or complete. Anything left in the temporary area by
// an interrupted run is removed the next time its key is locked.
package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	apperrors "github.com/rodoo-dev/rodoo/internal/application/errors"
	"golang.org/x/sync/singleflight"
)

const (
	// CompleteMarker is the file whose presence makes an entry usable.
	CompleteMarker = ".rodoo-complete"

	tmpDir      = "tmp"
	locksDir    = "locks"
	tmpSuffix   = ".tmp"
	trashSuffix = ".trash"
	keySep      = "~"

	// DefaultLockTimeout bounds how long Ensure waits for another process.
	DefaultLockTimeout = 10 * time.Minute
	defaultRetryDelay  = 250 * time.Millisecond
)

// PopulateFunc fills dir, which does not exist yet, with an entry's content.
type PopulateFunc func(ctx context.Context, dir string) error

// Entry is one keyed directory found under the root.
type Entry struct {
	ModTime  time.Time
	Rel      string
	Path     string
	Complete bool
}

// StoreOptions configure a Store.
type StoreOptions struct {
	Logger      *slog.Logger
	Root        string
	LockTimeout time.Duration
	RetryDelay  time.Duration
}

// Store creates and hands out keyed directories. It is safe for concurrent
// use by goroutines and by independent processes sharing the root.
type Store struct {
	logger      *slog.Logger
	group       singleflight.Group
	root        string
	lockTimeout time.Duration
	retryDelay  time.Duration
}

// NewStore creates a store rooted at opts.Root. The root is created on first use.
func NewStore(opts StoreOptions) (*Store, error) {
	if opts.Root == "" {
		return nil, fmt.Errorf("cache root cannot be empty")
	}
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("resolving cache root %q: %w", opts.Root, err)
	}
	if opts.LockTimeout <= 0 {
		opts.LockTimeout = DefaultLockTimeout
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = defaultRetryDelay
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Store{
		root:        root,
		lockTimeout: opts.LockTimeout,
		retryDelay:  opts.RetryDelay,
		logger:      opts.Logger,
	}, nil
}

// Root returns the absolute cache root.
func (s *Store) Root() string {
	return s.root
}

// Path returns the final location of rel.
func (s *Store) Path(rel string) string {
	return filepath.Join(s.root, rel)
}

// IsComplete reports whether rel exists and carries the completion marker.
func (s *Store) IsComplete(rel string) bool {
	return isComplete(s.Path(rel))
}

// Ensure returns the final path of rel, populating it first if it is not
// complete. Concurrent callers for the same key, in this process or others,
// observe exactly one populate call.
func (s *Store) Ensure(ctx context.Context, rel string, populate PopulateFunc) (string, error) {
	final := s.Path(rel)
	if isComplete(final) {
		return final, nil
	}

	v, err, _ := s.group.Do("ensure:"+rel, func() (any, error) {
		return s.create(ctx, rel, populate, false)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Replace populates rel anew and swaps it in place of the current entry.
// Until the swap, readers keep seeing the previous complete entry.
func (s *Store) Replace(ctx context.Context, rel string, populate PopulateFunc) (string, error) {
	v, err, _ := s.group.Do("replace:"+rel, func() (any, error) {
		return s.create(ctx, rel, populate, true)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (s *Store) create(ctx context.Context, rel string, populate PopulateFunc, replace bool) (string, error) {
	unlock, err := s.lock(ctx, rel)
	if err != nil {
		return "", err
	}
	defer unlock()

	final := s.Path(rel)
	if !replace && isComplete(final) {
		// another process finished while we waited
		return final, nil
	}

	s.removeStale(rel)
	if !replace {
		if err := s.removeIncomplete(final); err != nil {
			return "", err
		}
	}

	tmp := s.tempPath(rel, tmpSuffix)
	if err := os.MkdirAll(filepath.Dir(tmp), 0o755); err != nil {
		return "", fmt.Errorf("creating temporary area: %w", err)
	}

	s.logger.Debug("populating cache entry", "key", rel, "tmp", tmp)
	if err := populate(ctx, tmp); err != nil {
		s.discard(tmp)
		return "", err
	}
	if err := markComplete(tmp); err != nil {
		s.discard(tmp)
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(final), 0o755); err != nil {
		s.discard(tmp)
		return "", fmt.Errorf("creating %s: %w", filepath.Dir(final), err)
	}

	var trash string
	if replace && exists(final) {
		trash = s.tempPath(rel, trashSuffix)
		if err := os.Rename(final, trash); err != nil {
			s.discard(tmp)
			return "", fmt.Errorf("moving previous %s aside: %w", rel, err)
		}
	}

	if err := os.Rename(tmp, final); err != nil {
		s.discard(tmp)
		if trash != "" {
			if restoreErr := os.Rename(trash, final); restoreErr != nil {
				s.logger.Warn("failed to restore previous cache entry", "key", rel, "error", restoreErr)
			}
		}
		return "", fmt.Errorf("moving %s into place: %w", rel, err)
	}

	if trash != "" {
		s.discard(trash)
	}

	s.logger.Debug("cache entry ready", "key", rel, "path", final)
	return final, nil
}

// lock takes the exclusive lock of rel, waiting at most the lock timeout.
func (s *Store) lock(ctx context.Context, rel string) (func(), error) {
	fl, err := s.lockFile(lockName(rel))
	if err != nil {
		return nil, err
	}

	lockCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()

	start := time.Now()
	locked, err := fl.TryLockContext(lockCtx, s.retryDelay)
	if err != nil || !locked {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if err == nil || errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.NewResourceBusyError(rel, time.Since(start).Round(time.Millisecond))
		}
		return nil, fmt.Errorf("locking %s: %w", rel, err)
	}

	return func() {
		if err := fl.Unlock(); err != nil {
			s.logger.Warn("failed to release cache lock", "key", rel, "error", err)
		}
	}, nil
}

func (s *Store) lockFile(name string) (*flock.Flock, error) {
	dir := filepath.Join(s.root, locksDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating lock directory: %w", err)
	}
	return flock.New(filepath.Join(dir, name+".lock")), nil
}

// removeStale deletes temporary locations left behind for rel. The caller
// holds the key's lock, so none of them can be in use.
func (s *Store) removeStale(rel string) {
	pattern := filepath.Join(s.root, tmpDir, lockName(rel)+keySep+"*")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return
	}
	for _, m := range matches {
		s.logger.Info("removing stale temporary cache location", "path", m)
		s.discard(m)
	}
}

func (s *Store) removeIncomplete(final string) error {
	if !exists(final) {
		return nil
	}
	s.logger.Warn("removing incomplete cache entry", "path", final)
	if err := os.RemoveAll(final); err != nil {
		return fmt.Errorf("removing incomplete entry %s: %w", final, err)
	}
	return nil
}

func (s *Store) tempPath(rel, suffix string) string {
	return filepath.Join(s.root, tmpDir, lockName(rel)+keySep+uuid.NewString()+suffix)
}

func (s *Store) discard(path string) {
	if err := os.RemoveAll(path); err != nil {
		s.logger.Warn("failed to remove temporary cache location", "path", path, "error", err)
	}
}

// List returns the directories matching pattern (relative to the root, in
// filepath.Match syntax), sorted by relative path.
func (s *Store) List(_ context.Context, pattern string) ([]Entry, error) {
	matches, err := filepath.Glob(filepath.Join(s.root, pattern))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", pattern, err)
	}

	entries := make([]Entry, 0, len(matches))
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || !info.IsDir() {
			continue
		}
		rel, err := filepath.Rel(s.root, m)
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			Rel:      rel,
			Path:     m,
			Complete: isComplete(m),
			ModTime:  info.ModTime(),
		})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Rel < entries[j].Rel })
	return entries, nil
}

// PruneResult lists what Prune removed and what it left because the key
// was locked.
type PruneResult struct {
	Removed []string
	Skipped []string
}

// Prune removes temporary locations and incomplete entries matching patterns.
// Keys whose lock is held by someone else are skipped.
func (s *Store) Prune(ctx context.Context, patterns ...string) (*PruneResult, error) {
	result := &PruneResult{}

	tmpEntries, err := os.ReadDir(filepath.Join(s.root, tmpDir))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading temporary area: %w", err)
	}
	for _, e := range tmpEntries {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		name, _, ok := strings.Cut(e.Name(), keySep)
		if !ok {
			continue
		}
		path := filepath.Join(s.root, tmpDir, e.Name())
		s.pruneUnderLock(name, path, result, func() bool { return true })
	}

	for _, pattern := range patterns {
		entries, err := s.List(ctx, pattern)
		if err != nil {
			return result, err
		}
		for _, e := range entries {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			if e.Complete {
				continue
			}
			path := e.Path
			s.pruneUnderLock(lockName(e.Rel), path, result, func() bool { return !isComplete(path) })
		}
	}

	return result, nil
}

func (s *Store) pruneUnderLock(name, path string, result *PruneResult, stillStale func() bool) {
	fl, err := s.lockFile(name)
	if err != nil {
		result.Skipped = append(result.Skipped, path)
		return
	}
	locked, err := fl.TryLock()
	if err != nil || !locked {
		result.Skipped = append(result.Skipped, path)
		return
	}
	defer func() { _ = fl.Unlock() }()

	if !stillStale() {
		return
	}
	if err := os.RemoveAll(path); err != nil {
		s.logger.Warn("failed to prune cache location", "path", path, "error", err)
		result.Skipped = append(result.Skipped, path)
		return
	}
	result.Removed = append(result.Removed, path)
}

// lockName flattens a relative key into a single file-name component.
func lockName(rel string) string {
	return strings.ReplaceAll(filepath.ToSlash(rel), "/", "_")
}

func isComplete(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, CompleteMarker))
	return err == nil && info.Mode().IsRegular()
}

func markComplete(dir string) error {
	stamp := time.Now().UTC().Format(time.RFC3339) + "\n"
	//nolint:gosec // G306: marker holds no secrets
	if err := os.WriteFile(filepath.Join(dir, CompleteMarker), []byte(stamp), 0o644); err != nil {
		return fmt.Errorf("writing completion marker: %w", err)
	}
	return nil
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
