// Package profiles resolves user ids to profiles through a process-wide TTL
// cache that also remembers ids with no profile.
package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"kollab-api/internal/cache"
	"kollab-api/internal/models"
	"kollab-api/internal/repository"

	"go.uber.org/zap"
)

const (
	// DefaultTTL is how long a lookup result is served from the cache.
	DefaultTTL = 15 * time.Minute
	// DefaultBatchSize matches the store's membership filter limit.
	DefaultBatchSize = repository.MaxInFilter
)

// ErrPartialBatch reports that some batches could not be fetched. The
// profiles that did resolve are still returned.
var ErrPartialBatch = errors.New("profile batch fetch partially failed")

// Store is the backing lookup used on cache misses.
type Store interface {
	GetProfile(ctx context.Context, id string) (*models.UserProfile, error)
	GetProfiles(ctx context.Context, ids []string) ([]models.UserProfile, error)
}

// Resolver is shared by every request in the process. A nil entry in the
// cache is a negative hit: the id was looked up and has no profile.
// Expired entries are swept at most once per TTL, on the next lookup.
type Resolver struct {
	store     Store
	cache     cache.Cache[string, *models.UserProfile]
	ttl       time.Duration
	batchSize int
	clock     cache.Clock
	log       *zap.SugaredLogger

	purgeMu   sync.Mutex
	lastPurge time.Time
}

type Options struct {
	TTL       time.Duration
	BatchSize int
	Clock     cache.Clock
}

func NewResolver(store Store, log *zap.SugaredLogger, opts Options) *Resolver {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.BatchSize <= 0 || opts.BatchSize > repository.MaxInFilter {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Resolver{
		store:     store,
		cache:     cache.NewSimpleCache[string, *models.UserProfile](cache.Options{Clock: opts.Clock}),
		ttl:       opts.TTL,
		batchSize: opts.BatchSize,
		clock:     opts.Clock,
		log:       log,
		lastPurge: opts.Clock(),
	}
}

// purgeIfDue drops expired entries once a full TTL has passed since the last
// sweep, so ids that are never asked for again do not pile up.
func (r *Resolver) purgeIfDue() {
	now := r.clock()
	r.purgeMu.Lock()
	if now.Sub(r.lastPurge) < r.ttl {
		r.purgeMu.Unlock()
		return
	}
	r.lastPurge = now
	r.purgeMu.Unlock()

	if n := r.cache.PurgeExpired(); n > 0 {
		r.log.Debugw("purged expired profile cache entries", "count", n)
	}
}

// GetProfile returns the profile for id, or (nil, nil) when no such user
// exists. The result is a copy; callers may modify it freely.
func (r *Resolver) GetProfile(ctx context.Context, id string) (*models.UserProfile, error) {
	r.purgeIfDue()
	if p, ok := r.cache.Get(id); ok {
		return cloneProfile(p), nil
	}

	p, err := r.store.GetProfile(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			r.cache.Set(id, nil, r.ttl)
			return nil, nil
		}
		return nil, err
	}
	r.cache.Set(id, cloneProfile(p), r.ttl)
	return p, nil
}

func cloneProfile(p *models.UserProfile) *models.UserProfile {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

// GetProfiles resolves a set of ids. Cached entries are served directly; the
// rest are fetched in batches of at most batchSize ids. A failed batch is
// logged and its ids are left out of the result, and the returned error wraps
// ErrPartialBatch. Ids with no profile are absent from the map.
func (r *Resolver) GetProfiles(ctx context.Context, ids []string) (map[string]models.UserProfile, error) {
	r.purgeIfDue()
	out := make(map[string]models.UserProfile, len(ids))
	seen := make(map[string]struct{}, len(ids))
	var toFetch []string

	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		if p, ok := r.cache.Get(id); ok {
			if p != nil {
				out[id] = *p
			}
			continue
		}
		toFetch = append(toFetch, id)
	}

	var failed []string
	for start := 0; start < len(toFetch); start += r.batchSize {
		end := min(start+r.batchSize, len(toFetch))
		batch := toFetch[start:end]

		found, err := r.store.GetProfiles(ctx, batch)
		if err != nil {
			r.log.Errorw("profile batch fetch failed", "ids", len(batch), "error", err)
			failed = append(failed, batch...)
			continue
		}

		byID := make(map[string]models.UserProfile, len(found))
		for _, p := range found {
			byID[p.ID] = p
		}
		for _, id := range batch {
			p, ok := byID[id]
			if !ok {
				r.cache.Set(id, nil, r.ttl)
				continue
			}
			r.cache.Set(id, &p, r.ttl)
			out[id] = p
		}
	}

	if len(failed) > 0 {
		return out, fmt.Errorf("%w: %d ids unresolved (%s)", ErrPartialBatch, len(failed), strings.Join(failed, ","))
	}
	return out, nil
}

// Invalidate drops any cached result for id, positive or negative.
func (r *Resolver) Invalidate(id string) {
	r.cache.Delete(id)
}
