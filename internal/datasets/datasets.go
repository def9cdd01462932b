// Package datasets keeps loaded sale-line tables in memory behind handle IDs
// with idle-TTL eviction.
package datasets

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vinodismyname/mcpcellar/config"
	"github.com/vinodismyname/mcpcellar/internal/prep"
	"github.com/vinodismyname/mcpcellar/internal/sheets"
)

// Dataset is one loaded dish report joined onto one catalog. Lines, Articles
// and the reject lists are never modified after load; callers must treat
// them as read-only.
type Dataset struct {
	ID          string
	DishPath    string
	CatalogPath string
	Lines       []prep.SaleLine
	Articles    []prep.Article
	DishRejects []prep.Reject
	ItemRejects []prep.Reject
	OrderLines  int
	LoadedAt    time.Time

	// Fingerprint changes whenever the content would; cursors bind to it.
	Fingerprint string

	mu        sync.RWMutex
	expiresAt time.Time
}

// ExpiresAt returns the current idle deadline.
func (d *Dataset) ExpiresAt() time.Time {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.expiresAt
}

// Expired reports whether the dataset has reached its TTL.
func (d *Dataset) Expired(now time.Time) bool {
	return now.After(d.ExpiresAt())
}

func (d *Dataset) touch(deadline time.Time) {
	d.mu.Lock()
	d.expiresAt = deadline
	d.mu.Unlock()
}

// Gate coordinates capacity for loaded datasets (backed by runtime.Controller).
type Gate interface {
	AcquireDataset(ctx context.Context) error
	ReleaseDataset()
}

// PathValidator abstracts filesystem path validation. Implementations should
// return a canonical absolute path if allowed, or an error when denied.
type PathValidator interface {
	ValidateOpenPath(path string) (string, error)
}

// ErrDatasetNotFound indicates an unknown or expired dataset ID.
var ErrDatasetNotFound = errors.New("datasets: dataset not found")

// Manager owns loaded datasets and evicts idle ones.
type Manager struct {
	mu           sync.RWMutex
	sets         map[string]*Dataset
	ttl          time.Duration
	cleanupEvery time.Duration
	clock        func() time.Time
	gate         Gate
	validator    PathValidator
	stopCh       chan struct{}
	stopOnce     sync.Once
	cleanupWG    sync.WaitGroup
}

// NewManager constructs a manager. Pass ttl or cleanupEvery <= 0 to use the
// config defaults. Gate can be nil for tests; clock defaults to time.Now.
func NewManager(ttl, cleanupEvery time.Duration, gate Gate, clock func() time.Time) *Manager {
	if ttl <= 0 {
		ttl = config.DefaultDatasetIdleTTL
	}
	if cleanupEvery <= 0 {
		cleanupEvery = config.DefaultDatasetCleanupPeriod
	}
	if clock == nil {
		clock = time.Now
	}
	return &Manager{
		sets:         make(map[string]*Dataset),
		ttl:          ttl,
		cleanupEvery: cleanupEvery,
		clock:        clock,
		gate:         gate,
		stopCh:       make(chan struct{}),
	}
}

// SetValidator installs the path guard applied to every load.
func (m *Manager) SetValidator(v PathValidator) {
	m.validator = v
}

// Start launches periodic eviction of expired datasets.
func (m *Manager) Start() {
	m.cleanupWG.Add(1)
	ticker := time.NewTicker(m.cleanupEvery)
	go func() {
		defer m.cleanupWG.Done()
		defer ticker.Stop()
		for {
			select {
			case <-m.stopCh:
				return
			case <-ticker.C:
				m.EvictExpired()
			}
		}
	}()
}

// Close stops background cleanup and drops every dataset.
func (m *Manager) Close(ctx context.Context) error {
	m.stopOnce.Do(func() { close(m.stopCh) })
	done := make(chan struct{})
	go func() { m.cleanupWG.Wait(); close(done) }()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	m.mu.Lock()
	n := len(m.sets)
	m.sets = make(map[string]*Dataset)
	m.mu.Unlock()
	for i := 0; i < n; i++ {
		m.release()
	}
	return nil
}

// LoadRequest names the two source workbooks and where their tables sit.
type LoadRequest struct {
	DishPath         string
	CatalogPath      string
	DishSheet        string
	CatalogSheet     string
	DishHeaderRow    int
	CatalogHeaderRow int
	MaxRows          int
}

// Load reads both workbooks, runs the preparation pipeline and registers the
// merged table under a new ID. Shape errors from any stage fail the load and
// release the capacity slot.
func (m *Manager) Load(ctx context.Context, req LoadRequest) (*Dataset, error) {
	log := zerolog.Ctx(ctx)
	if err := m.acquire(ctx); err != nil {
		return nil, err
	}
	ds, err := m.build(ctx, req)
	if err != nil {
		m.release()
		log.Warn().Err(err).Str("dish", req.DishPath).Str("catalog", req.CatalogPath).Msg("dataset load failed")
		return nil, err
	}
	m.register(ds)
	log.Info().
		Str("dataset_id", ds.ID).
		Int("sale_lines", len(ds.Lines)).
		Int("articles", len(ds.Articles)).
		Int("dish_rejected", len(ds.DishRejects)).
		Int("catalog_rejected", len(ds.ItemRejects)).
		Msg("dataset loaded")
	return ds, nil
}

func (m *Manager) build(ctx context.Context, req LoadRequest) (*Dataset, error) {
	dishPath, err := m.validate(req.DishPath)
	if err != nil {
		return nil, err
	}
	catalogPath, err := m.validate(req.CatalogPath)
	if err != nil {
		return nil, err
	}
	if req.DishHeaderRow <= 0 {
		req.DishHeaderRow = config.DefaultDishHeaderRow
	}
	if req.CatalogHeaderRow <= 0 {
		req.CatalogHeaderRow = config.DefaultCatalogHeaderRow
	}

	dishTbl, err := sheets.ReadTable(ctx, dishPath, sheets.ReadOptions{Sheet: req.DishSheet, HeaderRow: req.DishHeaderRow, MaxRows: req.MaxRows})
	if err != nil {
		return nil, fmt.Errorf("dish report: %w", err)
	}
	dish, err := prep.NormalizeDishes(dishTbl)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	catTbl, err := sheets.ReadTable(ctx, catalogPath, sheets.ReadOptions{Sheet: req.CatalogSheet, HeaderRow: req.CatalogHeaderRow, MaxRows: req.MaxRows})
	if err != nil {
		return nil, fmt.Errorf("article catalog: %w", err)
	}
	cat, err := prep.NormalizeCatalog(catTbl)
	if err != nil {
		return nil, err
	}
	articles, err := prep.Remap(cat.Articles)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ds := &Dataset{
		ID:          uuid.NewString(),
		DishPath:    dishPath,
		CatalogPath: catalogPath,
		Lines:       prep.Merge(dish.Lines, articles),
		Articles:    articles,
		DishRejects: dish.Rejected,
		ItemRejects: cat.Rejected,
		OrderLines:  len(dish.Lines),
	}
	return ds, nil
}

func (m *Manager) register(ds *Dataset) {
	now := m.clock()
	ds.LoadedAt = now
	ds.expiresAt = now.Add(m.ttl)
	ds.Fingerprint = fingerprint(ds)
	m.mu.Lock()
	m.sets[ds.ID] = ds
	m.mu.Unlock()
}

// Get returns the dataset when present and refreshes its TTL.
func (m *Manager) Get(id string) (*Dataset, bool) {
	m.mu.RLock()
	ds, ok := m.sets[id]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	ds.touch(m.clock().Add(m.ttl))
	return ds, true
}

// Remove drops a dataset by ID, releasing capacity via the gate.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	_, ok := m.sets[id]
	delete(m.sets, id)
	m.mu.Unlock()
	if !ok {
		return ErrDatasetNotFound
	}
	m.release()
	return nil
}

// EvictExpired drops every dataset past its idle deadline.
func (m *Manager) EvictExpired() {
	now := m.clock()
	m.mu.Lock()
	var evicted int
	for id, ds := range m.sets {
		if ds.Expired(now) {
			delete(m.sets, id)
			evicted++
		}
	}
	m.mu.Unlock()
	for i := 0; i < evicted; i++ {
		m.release()
	}
}

// List returns the loaded datasets ordered by load time.
func (m *Manager) List() []*Dataset {
	m.mu.RLock()
	out := make([]*Dataset, 0, len(m.sets))
	for _, ds := range m.sets {
		out = append(out, ds)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LoadedAt.Equal(out[j].LoadedAt) {
			return out[i].LoadedAt.Before(out[j].LoadedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Count returns the current number of loaded datasets.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sets)
}

func (m *Manager) validate(path string) (string, error) {
	if m.validator == nil {
		return path, nil
	}
	return m.validator.ValidateOpenPath(path)
}

func (m *Manager) acquire(ctx context.Context) error {
	if m.gate == nil {
		return nil
	}
	return m.gate.AcquireDataset(ctx)
}

func (m *Manager) release() {
	if m.gate == nil {
		return
	}
	m.gate.ReleaseDataset()
}

func fingerprint(ds *Dataset) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%d|%d", ds.ID, len(ds.Lines), ds.LoadedAt.UnixNano())
	return fmt.Sprintf("%016x", h.Sum64())
}
