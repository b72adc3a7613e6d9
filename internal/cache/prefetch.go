package cache

import (
	"context"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const prefetchConcurrency = 4

// Prefetch loads every slug that is not cached yet so the first visitors of
// a post don't wait on HN. Failures are logged and skipped.
func (c *Cache) Prefetch(ctx context.Context, slugs []string) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(prefetchConcurrency)

	for _, slug := range slugs {
		slug := slug
		g.Go(func() error {
			t, err := c.Get(ctx, slug)
			if err != nil {
				log.WithField("slug", slug).Warnf("[cache] prefetch failed: %v", err)
				return nil
			}
			log.WithFields(log.Fields{"slug": slug, "found": t != nil}).Debug("[cache] prefetched")
			return nil
		})
	}
	_ = g.Wait()
	log.Infof("[cache] prefetched %d posts", len(slugs))
}
