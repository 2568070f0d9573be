package services

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/rodoo-dev/rodoo/internal/application/ports"
	"github.com/rodoo-dev/rodoo/internal/domain/entities"
	"github.com/rodoo-dev/rodoo/internal/domain/values"
)

const mockCacheRoot = "/cache"

// MockProfileRepository keeps profiles in memory.
type MockProfileRepository struct {
	Set     *entities.ProfileSet
	LoadErr error
	Targets map[ports.SaveTarget]string
	Saved   []savedProfile
}

type savedProfile struct {
	Path  string
	Entry entities.ProfileEntry
}

func (m *MockProfileRepository) Load(_ context.Context) (*entities.ProfileSet, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	if m.Set == nil {
		return entities.NewProfileSet(), nil
	}
	return m.Set, nil
}

func (m *MockProfileRepository) Save(_ context.Context, path string, entry entities.ProfileEntry) error {
	m.Saved = append(m.Saved, savedProfile{Path: path, Entry: entry})
	return nil
}

func (m *MockProfileRepository) TargetPath(target ports.SaveTarget) (string, error) {
	if p, ok := m.Targets[target]; ok {
		return p, nil
	}
	return filepath.Join("/work", "rodoo.toml"), nil
}

// MockPrompter answers prompts from preset values.
type MockPrompter struct {
	Interactive   bool
	Choice        string
	Draft         *ports.ProfileDraft
	ConfirmAnswer bool
	Selections    [][]string
	Confirms      int
	Creates       int
}

func (m *MockPrompter) IsInteractive() bool { return m.Interactive }

func (m *MockPrompter) SelectProfile(_ context.Context, names []string) (string, error) {
	m.Selections = append(m.Selections, names)
	return m.Choice, nil
}

func (m *MockPrompter) CreateProfile(_ context.Context, _ entities.ProfileSpec) (*ports.ProfileDraft, error) {
	m.Creates++
	return m.Draft, nil
}

func (m *MockPrompter) Confirm(_ context.Context, _ string, _ bool) (bool, error) {
	m.Confirms++
	return m.ConfirmAnswer, nil
}

// MockSourceCache hands out trees under mockCacheRoot.
type MockSourceCache struct {
	mu sync.Mutex
	// EnsureFunc overrides Ensure when set.
	EnsureFunc func(ctx context.Context, key entities.SourceKey) (entities.SourceTree, error)
	Cached     []entities.CacheEntry
	Ensured    []string
	Refreshed  []string
	Err        map[string]error
}

func mockTree(key entities.SourceKey) entities.SourceTree {
	path := filepath.Join(mockCacheRoot, key.RelPath())
	dirs := []string{path}
	if key.Edition == values.EditionCommunity {
		dirs = []string{filepath.Join(path, "addons"), filepath.Join(path, "odoo", "addons")}
	}
	return entities.SourceTree{Key: key, Path: path, AddonDirs: dirs}
}

func (m *MockSourceCache) Ensure(ctx context.Context, key entities.SourceKey) (entities.SourceTree, error) {
	m.mu.Lock()
	m.Ensured = append(m.Ensured, key.String())
	err := m.Err[key.String()]
	fn := m.EnsureFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, key)
	}
	if err != nil {
		return entities.SourceTree{}, err
	}
	return mockTree(key), nil
}

func (m *MockSourceCache) Refresh(_ context.Context, key entities.SourceKey) (entities.SourceTree, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Refreshed = append(m.Refreshed, key.String())
	if err := m.Err[key.String()]; err != nil {
		return entities.SourceTree{}, err
	}
	return mockTree(key), nil
}

func (m *MockSourceCache) Entries(_ context.Context) ([]entities.CacheEntry, error) {
	return m.Cached, nil
}

// MockEnvironmentCache creates environments by calling the dependency
// provider unless the key is listed as existing.
type MockEnvironmentCache struct {
	mu       sync.Mutex
	Existing map[string]bool
	Cached   []entities.CacheEntry
	Err      error
	Deps     []ports.DependencySpec
	Rebuilt  []string
}

func (m *MockEnvironmentCache) env(key entities.EnvironmentKey) entities.Environment {
	return entities.Environment{Key: key, Path: filepath.Join(mockCacheRoot, key.RelPath())}
}

func (m *MockEnvironmentCache) create(ctx context.Context, key entities.EnvironmentKey, deps ports.DependencyProvider) (entities.Environment, error) {
	spec, err := deps(ctx)
	if err != nil {
		return entities.Environment{}, err
	}
	m.mu.Lock()
	m.Deps = append(m.Deps, spec)
	m.mu.Unlock()
	if m.Err != nil {
		return entities.Environment{}, m.Err
	}
	return m.env(key), nil
}

func (m *MockEnvironmentCache) Ensure(ctx context.Context, key entities.EnvironmentKey, deps ports.DependencyProvider) (entities.Environment, error) {
	if m.Existing[key.String()] {
		return m.env(key), nil
	}
	return m.create(ctx, key, deps)
}

func (m *MockEnvironmentCache) Rebuild(ctx context.Context, key entities.EnvironmentKey, deps ports.DependencyProvider) (entities.Environment, error) {
	m.mu.Lock()
	m.Rebuilt = append(m.Rebuilt, key.String())
	m.mu.Unlock()
	return m.create(ctx, key, deps)
}

func (m *MockEnvironmentCache) Entries(_ context.Context) ([]entities.CacheEntry, error) {
	return m.Cached, nil
}

// MockLauncher records plans instead of starting processes.
type MockLauncher struct {
	Plans []entities.LaunchPlan
	Err   error
}

func (m *MockLauncher) Launch(_ context.Context, plan entities.LaunchPlan) error {
	m.Plans = append(m.Plans, plan)
	return m.Err
}

// MockInspector reports a fixed set of missing modules.
type MockInspector struct {
	Missing []string
}

func (m *MockInspector) MissingModules(_, _ []string) []string {
	return m.Missing
}

// MockMaintainer returns a fixed prune report.
type MockMaintainer struct {
	Report *entities.PruneReport
}

func (m *MockMaintainer) Prune(_ context.Context) (*entities.PruneReport, error) {
	return m.Report, nil
}

func testDefaults() entities.ProfileSpec {
	return entities.ProfileSpec{
		Version:       values.MustNewProductVersion("18.0"),
		PythonVersion: values.MustNewPythonVersion("3.12"),
		Modules:       []string{},
		Paths:         []string{},
	}
}

func profileSet(entries ...entities.ProfileEntry) *entities.ProfileSet {
	set := entities.NewProfileSet()
	for _, e := range entries {
		set.Put(e)
	}
	return set
}

func versionPtr(s string) *values.ProductVersion {
	v := values.MustNewProductVersion(s)
	return &v
}
