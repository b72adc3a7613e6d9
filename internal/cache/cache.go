package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/brundonsmith/website/internal/metrics"
)

const (
	// DefaultLifetime is how long a loaded thread is served without a refresh.
	DefaultLifetime = 60 * time.Second
	// DefaultRefreshTimeout bounds a single background refresh.
	DefaultRefreshTimeout = 2 * time.Minute
)

// Thread is the rendered comment thread for one blog post.
type Thread struct {
	StoryID int    `json:"postId,string"`
	HTML    string `json:"html"`
}

// Loader produces the thread for a post slug. A nil thread with a nil error
// means the post has no HN discussion.
type Loader interface {
	Load(ctx context.Context, slug string) (*Thread, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, slug string) (*Thread, error)

func (f LoaderFunc) Load(ctx context.Context, slug string) (*Thread, error) {
	return f(ctx, slug)
}

type entry struct {
	value      *Thread
	fetchedAt  time.Time
	refreshing bool
}

// Cache serves threads per slug with stale-while-revalidate semantics. The
// first request for a slug loads synchronously; afterwards requests never
// wait on the upstream, and a stale entry triggers at most one background
// refresh at a time.
type Cache struct {
	loader         Loader
	lifetime       time.Duration
	refreshTimeout time.Duration
	now            func() time.Time

	mu      sync.Mutex
	entries map[string]*entry

	group singleflight.Group
	wg    sync.WaitGroup
}

// Option configures a Cache.
type Option func(*Cache)

// WithLifetime sets how long an entry stays fresh.
func WithLifetime(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.lifetime = d
		}
	}
}

// WithRefreshTimeout bounds each background refresh.
func WithRefreshTimeout(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.refreshTimeout = d
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// New creates an empty cache backed by loader.
func New(loader Loader, opts ...Option) *Cache {
	c := &Cache{
		loader:         loader,
		lifetime:       DefaultLifetime,
		refreshTimeout: DefaultRefreshTimeout,
		now:            time.Now,
		entries:        make(map[string]*entry),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Get returns the best available thread for slug. Only a slug that has never
// loaded successfully blocks on the loader; a nil thread means not found.
func (c *Cache) Get(ctx context.Context, slug string) (*Thread, error) {
	c.mu.Lock()
	e, ok := c.entries[slug]
	if !ok {
		c.mu.Unlock()
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return c.loadEmpty(ctx, slug)
	}

	value := e.value
	if c.now().Sub(e.fetchedAt) <= c.lifetime {
		c.mu.Unlock()
		metrics.CacheLookups.WithLabelValues("fresh").Inc()
		return value, nil
	}

	start := !e.refreshing
	if start {
		e.refreshing = true
		c.wg.Add(1)
	}
	c.mu.Unlock()

	metrics.CacheLookups.WithLabelValues("stale").Inc()
	if start {
		go c.refresh(slug)
	}
	return value, nil
}

// loadEmpty loads a slug with no entry. Concurrent callers share one load,
// which is detached from any single caller and bounded by the refresh
// timeout; each caller only stops waiting when its own context ends.
// Failures store nothing so the next request retries.
func (c *Cache) loadEmpty(ctx context.Context, slug string) (*Thread, error) {
	ch := c.group.DoChan(slug, func() (any, error) {
		c.mu.Lock()
		if e, ok := c.entries[slug]; ok {
			c.mu.Unlock()
			return e.value, nil
		}
		c.mu.Unlock()

		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.refreshTimeout)
		defer cancel()

		t, err := c.loader.Load(lctx, slug)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[slug] = &entry{value: t, fetchedAt: c.now()}
		c.mu.Unlock()
		return t, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("load %q: %w", slug, res.Err)
		}
		return res.Val.(*Thread), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("load %q: %w", slug, ctx.Err())
	}
}

// refresh reloads a stale slug in the background. The previous value is
// kept unless the load succeeds; the refreshing flag is always cleared.
func (c *Cache) refresh(slug string) {
	var (
		value *Thread
		ok    bool
	)
	defer c.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			log.WithField("slug", slug).Errorf("[cache] refresh panicked: %v", r)
			metrics.CacheRefreshes.WithLabelValues("panic").Inc()
		}

		c.mu.Lock()
		e := c.entries[slug]
		if ok {
			e.value = value
			e.fetchedAt = c.now()
		}
		e.refreshing = false
		c.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), c.refreshTimeout)
	defer cancel()

	t, err := c.loader.Load(ctx, slug)
	if err != nil {
		log.WithField("slug", slug).Warnf("[cache] refresh failed, serving stale value: %v", err)
		metrics.CacheRefreshes.WithLabelValues("error").Inc()
		return
	}

	value, ok = t, true
	metrics.CacheRefreshes.WithLabelValues("ok").Inc()
	log.WithField("slug", slug).Debug("[cache] refreshed")
}

// Wait blocks until every background refresh has finished.
func (c *Cache) Wait() {
	c.wg.Wait()
}
