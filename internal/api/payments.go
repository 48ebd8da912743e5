package api

import (
	"context"
	"sync"

	"github.com/gigurra/billview/internal"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentFetches bounds the per-bill fan-out; the backend rate-limits
// payment history at 60 requests per minute.
const maxConcurrentFetches = 4

// PaymentsForBills fetches the payment history of several bills concurrently.
// The first failure cancels the rest.
func (c *Client) PaymentsForBills(ctx context.Context, ids []int) (map[int][]internal.Payment, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)

	var mu sync.Mutex
	result := make(map[int][]internal.Payment, len(ids))

	for _, id := range ids {
		g.Go(func() error {
			payments, err := c.ListPayments(ctx, id)
			if err != nil {
				return err
			}
			mu.Lock()
			result[id] = payments
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}
