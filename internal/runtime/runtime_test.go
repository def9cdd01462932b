package runtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vinodismyname/mcpcellar/config"
)

func TestControllerAcquireRelease(t *testing.T) {
	limits := NewLimits(1, 1)
	controller := NewController(limits)

	require.Equal(t, limits, controller.LimitsSnapshot())

	require.NoError(t, controller.AcquireRequest(context.Background()))
	controller.ReleaseRequest()

	require.NoError(t, controller.AcquireDataset(context.Background()))
	require.ErrorIs(t, controller.AcquireDataset(context.Background()), ErrDatasetCapacity)
	controller.ReleaseDataset()
	require.NoError(t, controller.AcquireDataset(context.Background()))
	controller.ReleaseDataset()
}

func TestLimitsFromConfig(t *testing.T) {
	c := config.Default()
	c.Limits.MaxLoadedDatasets = 2
	c.Limits.MaxRowsPerSheet = 10
	l := LimitsFromConfig(c)
	require.Equal(t, 2, l.MaxLoadedDatasets)
	require.Equal(t, 10, l.MaxRowsPerSheet)
	require.Equal(t, config.DefaultMaxConcurrentRequests, l.MaxConcurrentRequests)
}

func TestPageSize(t *testing.T) {
	l := NewLimits(1, 1)
	require.Equal(t, config.DefaultPageRowLimit, l.PageSize(0))
	require.Equal(t, 7, l.PageSize(7))
	require.Equal(t, config.DefaultMaxPageRows, l.PageSize(1_000_000))
}
