package runtime

import (
	"context"
	"time"

	"github.com/vinodismyname/mcpcellar/config"
	"golang.org/x/sync/semaphore"
)

// Limits captures the concurrency and dataset guardrails configured for the server.
type Limits struct {
	// Concurrency caps
	MaxConcurrentRequests int
	MaxLoadedDatasets     int

	// Payload and row bounds
	MaxPayloadBytes int
	MaxRowsPerSheet int
	PageRowLimit    int
	MaxPageRows     int

	// Timeouts
	OperationTimeout      time.Duration
	AcquireRequestTimeout time.Duration
}

// NewLimits initializes Limits with sensible fallbacks when values are unset.
func NewLimits(maxConcurrentRequests, maxLoadedDatasets int) Limits {
	if maxConcurrentRequests <= 0 {
		maxConcurrentRequests = config.DefaultMaxConcurrentRequests
	}
	if maxLoadedDatasets <= 0 {
		maxLoadedDatasets = config.DefaultMaxLoadedDatasets
	}

	return Limits{
		MaxConcurrentRequests: maxConcurrentRequests,
		MaxLoadedDatasets:     maxLoadedDatasets,
		MaxPayloadBytes:       config.DefaultMaxPayloadBytes,
		MaxRowsPerSheet:       config.DefaultMaxRowsPerSheet,
		PageRowLimit:          config.DefaultPageRowLimit,
		MaxPageRows:           config.DefaultMaxPageRows,
		OperationTimeout:      config.DefaultOperationTimeout,
		AcquireRequestTimeout: config.DefaultAcquireRequestTimeout,
	}
}

// LimitsFromConfig applies the file-level overrides on top of NewLimits.
func LimitsFromConfig(c config.Config) Limits {
	l := NewLimits(c.Limits.MaxConcurrentRequests, c.Limits.MaxLoadedDatasets)
	if c.Limits.MaxRowsPerSheet > 0 {
		l.MaxRowsPerSheet = c.Limits.MaxRowsPerSheet
	}
	return l
}

// Controller coordinates runtime semaphores for request and dataset guardrails.
type Controller struct {
	limits           Limits
	requestSemaphore *semaphore.Weighted
	datasetSemaphore *semaphore.Weighted
}

// NewController constructs a Controller backed by weighted semaphores.
func NewController(limits Limits) *Controller {
	return &Controller{
		limits:           limits,
		requestSemaphore: semaphore.NewWeighted(int64(limits.MaxConcurrentRequests)),
		datasetSemaphore: semaphore.NewWeighted(int64(limits.MaxLoadedDatasets)),
	}
}

// AcquireRequest reserves capacity for an incoming request.
func (c *Controller) AcquireRequest(ctx context.Context) error {
	return c.requestSemaphore.Acquire(ctx, 1)
}

// ReleaseRequest frees previously-acquired request capacity.
func (c *Controller) ReleaseRequest() {
	c.requestSemaphore.Release(1)
}

// AcquireDataset reserves a loaded-dataset slot without waiting; a full
// server answers busy rather than queueing loads.
func (c *Controller) AcquireDataset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !c.datasetSemaphore.TryAcquire(1) {
		return ErrDatasetCapacity
	}
	return nil
}

// ReleaseDataset frees a loaded-dataset slot.
func (c *Controller) ReleaseDataset() {
	c.datasetSemaphore.Release(1)
}

// LimitsSnapshot exposes the configured guardrails for telemetry and discovery.
func (c *Controller) LimitsSnapshot() Limits {
	return c.limits
}

// PageSize clamps a requested page size into [1, MaxPageRows], using
// PageRowLimit when unset.
func (l Limits) PageSize(requested int) int {
	if requested <= 0 {
		return l.PageRowLimit
	}
	if l.MaxPageRows > 0 && requested > l.MaxPageRows {
		return l.MaxPageRows
	}
	return requested
}
