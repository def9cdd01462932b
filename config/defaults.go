package config

import "time"

// Default runtime limits and guardrails for the cellar analysis server.
// They can be overridden through the TOML config file (see Load).

const (
	// Concurrency
	DefaultMaxConcurrentRequests = 10
	DefaultMaxLoadedDatasets     = 4

	// Payload and row limits
	DefaultMaxPayloadBytes = 256 * 1024
	DefaultMaxRowsPerSheet = 200_000
	DefaultPageRowLimit    = 50
	DefaultMaxPageRows     = 500
)

const (
	// Timeouts
	DefaultOperationTimeout      = 60 * time.Second
	DefaultAcquireRequestTimeout = 2 * time.Second

	// Loaded datasets are evicted after this much idle time.
	DefaultDatasetIdleTTL       = 30 * time.Minute
	DefaultDatasetCleanupPeriod = time.Minute
)

// Classification thresholds. ABC cuts are cumulative value-share fractions,
// XYZ cuts are coefficient-of-variation values.
const (
	DefaultABCThresholdA = 0.80
	DefaultABCThresholdB = 0.95
	DefaultXYZThresholdX = 0.35
	DefaultXYZThresholdY = 0.80
)

// Wine unit economics.
const (
	// A standard bottle yields this many glasses.
	GlassesPerBottle = 5
	// Fractional POS quantities are fifths of a bottle: 0.2 is one glass.
	GlassFraction = 0.2
	// Catalog rows priced at or below this are noise.
	MinArticlePrice = 1.0
)

// Source export layout.
const (
	// Dish report: three banner rows precede the header.
	DefaultDishHeaderRow = 4
	// Article catalog: one banner row precedes the header.
	DefaultCatalogHeaderRow = 2
	// Exact timestamp layout of the dish report open-time column.
	DishTimeLayout = "02.01.2006 15:04"
	// Directory for opt-in report exports.
	DefaultExportDir = "processed"
)
