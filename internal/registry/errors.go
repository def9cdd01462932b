package registry

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/vinodismyname/mcpcellar/internal/analysis"
	"github.com/vinodismyname/mcpcellar/internal/datasets"
	"github.com/vinodismyname/mcpcellar/internal/prep"
	"github.com/vinodismyname/mcpcellar/internal/runtime"
	"github.com/vinodismyname/mcpcellar/internal/security"
	"github.com/vinodismyname/mcpcellar/internal/sheets"
	"github.com/vinodismyname/mcpcellar/pkg/mcperr"
	"github.com/vinodismyname/mcpcellar/pkg/pagination"
)

// codeFor classifies a pipeline error. fallback is used when no sentinel
// matches.
func codeFor(err error, fallback mcperr.Code) mcperr.Code {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return mcperr.Timeout
	case errors.Is(err, datasets.ErrDatasetNotFound):
		return mcperr.InvalidDataset
	case errors.Is(err, runtime.ErrDatasetCapacity):
		return mcperr.BusyResource
	case errors.Is(err, pagination.ErrCursorMismatch):
		return mcperr.CursorInvalid
	case errors.Is(err, security.ErrNotAllowed), errors.Is(err, security.ErrNotFound):
		return mcperr.PermissionDenied
	case errors.Is(err, security.ErrUnsupportedExtension):
		return mcperr.UnsupportedFormat
	case errors.Is(err, sheets.ErrSheetNotFound):
		return mcperr.InvalidSheet
	case errors.Is(err, sheets.ErrTooManyRows):
		return mcperr.LimitExceeded
	case errors.Is(err, sheets.ErrNoHeader),
		errors.Is(err, prep.ErrMissingColumn),
		errors.Is(err, prep.ErrTimeFormat),
		errors.Is(err, prep.ErrUnknownCategory):
		return mcperr.LoadFailed
	case errors.Is(err, analysis.ErrInvalidMode),
		errors.Is(err, analysis.ErrInvalidMetric),
		errors.Is(err, analysis.ErrInvalidThreshold),
		errors.Is(err, analysis.ErrInvalidGranularity),
		errors.Is(err, analysis.ErrInvalidSubject):
		return mcperr.Validation
	}
	return fallback
}

// toolError maps err onto its canonical code and returns the tool error result.
func toolError(err error, fallback mcperr.Code) *mcp.CallToolResult {
	return mcperr.Wrapf(codeFor(err, fallback), "%v", err)
}
