package images

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	stdnet "vellum/std/net"
)

var (
	// ErrBusy is returned by TryGet when the cache lock is contended.
	ErrBusy = errors.New("image cache busy")
	// ErrNoFetcher is returned for network paths when no Fetcher is set.
	ErrNoFetcher = errors.New("no fetcher for network image")
)

// Fetcher retrieves remote resources.
type Fetcher interface {
	Fetch(ctx context.Context, uri string) (body []byte, contentType string, err error)
}

// Stats are cumulative cache counters.
type Stats struct {
	Hits     uint64
	Misses   uint64
	Decodes  uint64
	Failures uint64
	Busy     uint64
}

// Cache is a path-keyed decode cache. Entries are never evicted; drop the
// cache to release them. At most one read and decode runs per path, and an
// entry becomes visible only once fully decoded.
type Cache struct {
	fs      afero.Fs
	fetcher Fetcher
	log     *zap.Logger
	limit   int

	mu      sync.RWMutex
	entries map[string]*Image
	group   singleflight.Group

	hits, misses, decodes, failures, busy atomic.Uint64
}

// Option configures a Cache.
type Option func(*Cache)

// WithFetcher enables http(s) image paths.
func WithFetcher(f Fetcher) Option {
	return func(c *Cache) { c.fetcher = f }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Cache) {
		if log != nil {
			c.log = log
		}
	}
}

// WithPrefetchLimit bounds the number of concurrent decodes in Prefetch.
func WithPrefetchLimit(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.limit = n
		}
	}
}

// NewCache creates a cache reading local paths from fs. A nil fs means
// the OS filesystem.
func NewCache(fs afero.Fs, opts ...Option) *Cache {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	c := &Cache{
		fs:      fs,
		log:     zap.NewNop(),
		limit:   4,
		entries: make(map[string]*Image),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the decoded image for path, decoding it on first use.
func (c *Cache) Get(path string) (*Image, error) {
	return c.get(context.Background(), path)
}

// TryGet is Get for the paint path: when the cache lock cannot be taken
// immediately it returns ErrBusy instead of waiting.
func (c *Cache) TryGet(path string) (*Image, error) {
	if !c.mu.TryRLock() {
		c.busy.Add(1)
		return nil, ErrBusy
	}
	img, ok := c.entries[path]
	c.mu.RUnlock()
	if ok {
		c.hits.Add(1)
		return img, nil
	}
	return c.load(context.Background(), path)
}

func (c *Cache) get(ctx context.Context, path string) (*Image, error) {
	c.mu.RLock()
	img, ok := c.entries[path]
	c.mu.RUnlock()
	if ok {
		c.hits.Add(1)
		return img, nil
	}
	return c.load(ctx, path)
}

func (c *Cache) load(ctx context.Context, path string) (*Image, error) {
	c.misses.Add(1)
	v, err, shared := c.group.Do(path, func() (any, error) {
		// A concurrent loader may have finished between our lookup and Do.
		c.mu.RLock()
		img, ok := c.entries[path]
		c.mu.RUnlock()
		if ok {
			return img, nil
		}

		data, err := c.read(ctx, path)
		if err != nil {
			return nil, err
		}
		img, err = Decode(path, data)
		if err != nil {
			return nil, err
		}
		c.decodes.Add(1)

		c.mu.Lock()
		c.entries[path] = img
		c.mu.Unlock()
		c.log.Debug("decoded image",
			zap.String("path", path),
			zap.String("encoding", img.Encoding),
			zap.Int("width", img.Width),
			zap.Int("height", img.Height))
		return img, nil
	})
	if err != nil {
		if !shared {
			c.failures.Add(1)
		}
		return nil, err
	}
	return v.(*Image), nil
}

func (c *Cache) read(ctx context.Context, path string) ([]byte, error) {
	switch {
	case IsDataURI(path):
		data, _, err := ParseDataURI(path)
		return data, err
	case stdnet.IsNetworkURL(path):
		if c.fetcher == nil {
			return nil, fmt.Errorf("%s: %w", path, ErrNoFetcher)
		}
		data, _, err := c.fetcher.Fetch(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("fetching image: %w", err)
		}
		return data, nil
	}

	local, err := stdnet.FilePath(path)
	if err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(c.fs, local)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	return data, nil
}

// Prefetch decodes paths concurrently so that the first paint frame does
// not pay for decoding. Individual failures are logged and skipped; only
// cancellation of ctx is returned.
func (c *Cache) Prefetch(ctx context.Context, paths []string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.limit)

	seen := make(map[string]bool, len(paths))
	for _, path := range paths {
		path = strings.TrimSpace(path)
		if path == "" || seen[path] {
			continue
		}
		seen[path] = true

		path := path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, err := c.get(ctx, path); err != nil {
				c.log.Warn("prefetch failed", zap.String("path", path), zap.Error(err))
			}
			return nil
		})
	}
	return g.Wait()
}

// Len returns the number of cached images.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:     c.hits.Load(),
		Misses:   c.misses.Load(),
		Decodes:  c.decodes.Load(),
		Failures: c.failures.Load(),
		Busy:     c.busy.Load(),
	}
}
