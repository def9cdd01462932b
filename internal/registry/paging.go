package registry

import (
	"encoding/json"
	"fmt"

	"github.com/vinodismyname/mcpcellar/internal/datasets"
	"github.com/vinodismyname/mcpcellar/internal/runtime"
	"github.com/vinodismyname/mcpcellar/pkg/pagination"
)

// paginate cuts one page out of rows. A cursor must have been issued for the
// same dataset snapshot, view and parameter hash; it then fixes the offset
// and page size.
func paginate[T any](limits runtime.Limits, rows []T, ds *datasets.Dataset, view pagination.View, ph string, in PageInput) ([]T, PageMeta, error) {
	off, ps := 0, limits.PageSize(in.PageSize)
	if in.Cursor != "" {
		c, err := pagination.DecodeCursor(in.Cursor)
		if err != nil {
			return nil, PageMeta{}, fmt.Errorf("%w: %v", pagination.ErrCursorMismatch, err)
		}
		if err := c.Matches(ds.ID, ds.Fingerprint, view, ph); err != nil {
			return nil, PageMeta{}, err
		}
		off, ps = c.Off, limits.PageSize(c.Ps)
	}

	start, end := pagination.Window(len(rows), off, ps)
	page := fitPayload(rows[start:end], limits.MaxPayloadBytes)
	end = start + len(page)

	meta := PageMeta{Total: len(rows), Offset: start, Returned: len(page), Truncated: end < len(rows)}
	if meta.Truncated {
		tok, err := pagination.EncodeCursor(pagination.Cursor{
			Did:  ds.ID,
			Fp:   ds.Fingerprint,
			View: view,
			Off:  pagination.NextOffset(start, len(page)),
			Ps:   ps,
			Ph:   ph,
		})
		if err != nil {
			return nil, PageMeta{}, err
		}
		meta.NextCursor = tok
	}
	return page, meta, nil
}

// fitPayload halves the page until its JSON fits limit bytes. One row is always kept.
func fitPayload[T any](rows []T, limit int) []T {
	if limit <= 0 {
		return rows
	}
	for len(rows) > 1 {
		b, err := json.Marshal(rows)
		if err != nil || len(b) <= limit {
			break
		}
		rows = rows[:len(rows)/2]
	}
	return rows
}
