package pipeline

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pivolan/stay_dashboard/domain/models"
)

// Cache holds the cleaned Dataset for the lifetime of the process.
// The file is loaded on first Get and reloaded only when its size or
// modification time changes, or after Refresh.
// A failed load is never cached.
type Cache struct {
	mu     sync.Mutex
	source string
	opts   Options
	log    zerolog.Logger

	ds      *models.Dataset
	modTime time.Time
	size    int64
	loads   int
}

func NewCache(source string, opts Options, log zerolog.Logger) *Cache {
	return &Cache{
		source: source,
		opts:   opts,
		log:    log.With().Str("component", "dataset_cache").Logger(),
	}
}

// Get returns the cached Dataset, loading it when needed.
func (c *Cache) Get() (*models.Dataset, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, err := os.Stat(c.source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSource, err)
	}
	if c.ds != nil && st.ModTime().Equal(c.modTime) && st.Size() == c.size {
		return c.ds, nil
	}
	if c.ds != nil {
		c.log.Info().Str("source", c.source).Msg("source changed, reloading")
	}
	return c.loadLocked(st)
}

// Refresh drops the cached Dataset and loads the source again.
func (c *Cache) Refresh() (*models.Dataset, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ds = nil
	st, err := os.Stat(c.source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSource, err)
	}
	return c.loadLocked(st)
}

// Replace points the cache at ds.Source and serves ds until that file
// changes. ds must have been loaded from ds.Source already.
func (c *Cache) Replace(ds *models.Dataset) error {
	st, err := os.Stat(ds.Source)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSource, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.source = ds.Source
	c.ds = ds
	c.modTime = st.ModTime()
	c.size = st.Size()
	return nil
}

func (c *Cache) Source() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.source
}

// Loads reports how many successful loads the cache performed.
func (c *Cache) Loads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loads
}

func (c *Cache) loadLocked(st os.FileInfo) (*models.Dataset, error) {
	start := time.Now()
	ds, err := Load(c.source, c.opts)
	if err != nil {
		c.ds = nil
		c.log.Error().Err(err).Str("source", c.source).Msg("dataset load failed")
		return nil, err
	}
	c.ds = ds
	c.modTime = st.ModTime()
	c.size = st.Size()
	c.loads++
	c.log.Info().
		Str("source", c.source).
		Int("rows", ds.Len()).
		Int("dropped", ds.Dropped).
		Dur("took", time.Since(start)).
		Msg("dataset loaded")
	return ds, nil
}
