package location

import (
	"context"

	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog/log"
)

// CachedDirectory keeps resolved locations in an LRU cache in front of another
// directory. Misses and failures are never cached.
type CachedDirectory struct {
	next  Directory
	cache *lru.Cache
}

func NewCachedDirectory(next Directory, size int) *CachedDirectory {
	if size <= 0 {
		size = len(Defaults)
	}
	c, err := lru.New(size)
	if err != nil {
		log.Warn().Err(err).Msg("unable to configure location cache")
	}
	return &CachedDirectory{next: next, cache: c}
}

func (d *CachedDirectory) Resolve(ctx context.Context, identifier string) (Location, error) {
	if l, ok := d.get(identifier); ok {
		return l, nil
	}

	l, err := d.next.Resolve(ctx, identifier)
	if err != nil {
		return Location{}, err
	}

	if d.cache != nil {
		d.cache.Add(identifier, l)
	}
	return l, nil
}

func (d *CachedDirectory) get(identifier string) (Location, bool) {
	if d.cache == nil {
		return Location{}, false
	}
	v, ok := d.cache.Get(identifier)
	if !ok {
		return Location{}, false
	}
	l, ok := v.(Location)
	return l, ok
}
