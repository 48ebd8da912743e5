package server

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/gigurra/billview/internal"
)

// BillSource is where the views get their data. *api.Client implements it.
type BillSource interface {
	ListBills(ctx context.Context, includeArchived bool) ([]internal.Bill, error)
	ListShares(ctx context.Context, billID int) ([]internal.BillShare, error)
}

// StaticSource serves a dataset loaded from a file. It has no share records.
type StaticSource struct {
	Bills []internal.Bill
}

func (s StaticSource) ListBills(_ context.Context, includeArchived bool) ([]internal.Bill, error) {
	if includeArchived {
		return slices.Clone(s.Bills), nil
	}
	out := make([]internal.Bill, 0, len(s.Bills))
	for _, b := range s.Bills {
		if !b.Archived {
			out = append(out, b)
		}
	}
	return out, nil
}

func (StaticSource) ListShares(context.Context, int) ([]internal.BillShare, error) {
	return nil, nil
}

// cachedSource answers repeated view requests from memory so the backend's
// rate limits are not hit by every page refresh.
type cachedSource struct {
	next    BillSource
	bills   *lruCache[[]internal.Bill]
	shares  *lruCache[[]internal.BillShare]
	metrics *Metrics
}

func newCachedSource(next BillSource, size int, ttl time.Duration, m *Metrics) *cachedSource {
	return &cachedSource{
		next:    next,
		bills:   newLRUCache[[]internal.Bill](size, ttl),
		shares:  newLRUCache[[]internal.BillShare](size, ttl),
		metrics: m,
	}
}

func (c *cachedSource) ListBills(ctx context.Context, includeArchived bool) ([]internal.Bill, error) {
	key := fmt.Sprintf("bills:%t", includeArchived)
	if bills, ok := c.bills.Get(key); ok {
		c.metrics.cacheResult("hit")
		return slices.Clone(bills), nil
	}
	c.metrics.cacheResult("miss")

	bills, err := c.next.ListBills(ctx, includeArchived)
	if err != nil {
		return nil, err
	}
	c.bills.Set(key, bills)
	return slices.Clone(bills), nil
}

func (c *cachedSource) ListShares(ctx context.Context, billID int) ([]internal.BillShare, error) {
	key := fmt.Sprintf("shares:%d", billID)
	if shares, ok := c.shares.Get(key); ok {
		c.metrics.cacheResult("hit")
		return shares, nil
	}
	c.metrics.cacheResult("miss")

	shares, err := c.next.ListShares(ctx, billID)
	if err != nil {
		return nil, err
	}
	c.shares.Set(key, shares)
	return shares, nil
}

func (c *cachedSource) cleanEvery(ctx context.Context, interval time.Duration) {
	go c.bills.cleanEvery(ctx, interval)
	go c.shares.cleanEvery(ctx, interval)
}
