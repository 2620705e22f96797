package gateway

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/hammamikhairi/recipedesk/internal/domain"
)

// maxParallelPages bounds concurrent page requests in FetchAll.
const maxParallelPages = 4

// FetchAll pages through the whole remote collection, pageSize records per
// request. The first page reports the total; the rest are fetched
// concurrently and stitched back in order.
func (c *Client) FetchAll(ctx context.Context, pageSize int) ([]domain.Recipe, error) {
	if pageSize <= 0 {
		pageSize = 100
	}
	first, err := c.fetchPage(ctx, pageSize, 0)
	if err != nil {
		return nil, err
	}
	if len(first.Recipes) >= first.Total || len(first.Recipes) == 0 {
		return first.Recipes, nil
	}

	var skips []int
	for skip := len(first.Recipes); skip < first.Total; skip += pageSize {
		skips = append(skips, skip)
	}
	pages := make([][]domain.Recipe, len(skips))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelPages)
	for i, skip := range skips {
		g.Go(func() error {
			env, err := c.fetchPage(gctx, pageSize, skip)
			if err != nil {
				return err
			}
			pages[i] = env.Recipes
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := first.Recipes
	for _, p := range pages {
		out = append(out, p...)
	}
	c.log.Debug("fetched all %d records in %d pages", len(out), len(skips)+1)
	return out, nil
}
