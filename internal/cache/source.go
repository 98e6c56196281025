// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"context"

	"github.com/pdiddy/bibcheck/internal/sources"
	"github.com/pdiddy/bibcheck/pkg/types"
)

// Lookup kinds used as cache keys.
const (
	kindDOI   = "doi"
	kindTitle = "title"
)

// cachedSource wraps a Source with read-through caching. Cache failures
// fall back to the live lookup; a broken cache only costs a refetch.
type cachedSource struct {
	src   sources.Source
	store *Store
}

// Wrap returns src with its lookups cached in store.
func Wrap(src sources.Source, store *Store) sources.Source {
	return &cachedSource{src: src, store: store}
}

func (c *cachedSource) Name() string { return c.src.Name() }

func (c *cachedSource) LookupDOI(ctx context.Context, doi string) (*types.Record, error) {
	if records, ok, err := c.store.Get(ctx, c.src.Name(), kindDOI, doi); err == nil && ok {
		if len(records) == 0 {
			return nil, nil
		}
		return &records[0], nil
	}

	rec, err := c.src.LookupDOI(ctx, doi)
	if err != nil {
		return nil, err
	}

	var records []types.Record
	if rec != nil {
		records = []types.Record{*rec}
	}
	_ = c.store.Put(ctx, c.src.Name(), kindDOI, doi, records)

	return rec, nil
}

func (c *cachedSource) SearchTitle(ctx context.Context, title string) ([]types.Record, error) {
	if records, ok, err := c.store.Get(ctx, c.src.Name(), kindTitle, title); err == nil && ok {
		return records, nil
	}

	records, err := c.src.SearchTitle(ctx, title)
	if err != nil {
		return nil, err
	}
	_ = c.store.Put(ctx, c.src.Name(), kindTitle, title, records)

	return records, nil
}
