package cache

import (
	"context"
	"crypto/sha1"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"moviecatalog/proj/internal/domain/filters"
	"moviecatalog/proj/internal/domain/models"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/singleflight"
)

const generationKey = "movies:generation"

type MovieStorage interface {
	Get(ctx context.Context, id int64) (*models.Movie, error)
	Insert(ctx context.Context, movie *models.Movie) (*models.Movie, error)
	List(ctx context.Context, filter filters.MovieFilter, pagination filters.Pagination) ([]models.Movie, error)
	Count(ctx context.Context, filter filters.MovieFilter) (int, error)
	Latest(ctx context.Context, limit int) ([]models.Movie, error)
	Update(ctx context.Context, movie *models.Movie) (*models.Movie, error)
	Delete(ctx context.Context, id int64) error
}

// CachedMovies caches listing reads of next in redis. Every successful write
// bumps a generation counter that is part of each cache key, so instances
// sharing the redis database stop serving pages older than that write.
//
// Redis failures never fail a read: the breaker opens and reads go to next.
// A write whose generation bump failed leaves a pending invalidation, and the
// cache is bypassed until a later bump succeeds.
type CachedMovies struct {
	next MovieStorage
	rdb  *redis.Client
	ttl  time.Duration
	log  *slog.Logger
	cb   *gobreaker.CircuitBreaker
	sf   singleflight.Group

	pendingInvalidation atomic.Bool
}

func NewCachedMovies(log *slog.Logger, next MovieStorage, rdb *redis.Client, ttl time.Duration) *CachedMovies {
	log = log.With("component", "cache.CachedMovies")
	st := gobreaker.Settings{
		Name:        "movies-cache",
		MaxRequests: 1,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	}
	return &CachedMovies{
		next: next,
		rdb:  rdb,
		ttl:  ttl,
		log:  log,
		cb:   gobreaker.NewCircuitBreaker(st),
	}
}

func (c *CachedMovies) Get(ctx context.Context, id int64) (*models.Movie, error) {
	return c.next.Get(ctx, id)
}

func (c *CachedMovies) List(ctx context.Context, filter filters.MovieFilter, pagination filters.Pagination) ([]models.Movie, error) {
	var movies []models.Movie
	err := c.readThrough(ctx, "list", listKeyParts{filter, pagination}, &movies, func() (any, error) {
		return c.next.List(ctx, filter, pagination)
	})
	return movies, err
}

func (c *CachedMovies) Count(ctx context.Context, filter filters.MovieFilter) (int, error) {
	var count int
	err := c.readThrough(ctx, "count", filter, &count, func() (any, error) {
		return c.next.Count(ctx, filter)
	})
	return count, err
}

func (c *CachedMovies) Latest(ctx context.Context, limit int) ([]models.Movie, error) {
	var movies []models.Movie
	err := c.readThrough(ctx, "latest", limit, &movies, func() (any, error) {
		return c.next.Latest(ctx, limit)
	})
	return movies, err
}

func (c *CachedMovies) Insert(ctx context.Context, movie *models.Movie) (*models.Movie, error) {
	inserted, err := c.next.Insert(ctx, movie)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx)
	return inserted, nil
}

func (c *CachedMovies) Update(ctx context.Context, movie *models.Movie) (*models.Movie, error) {
	updated, err := c.next.Update(ctx, movie)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx)
	return updated, nil
}

func (c *CachedMovies) Delete(ctx context.Context, id int64) error {
	if err := c.next.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

type listKeyParts struct {
	Filter     filters.MovieFilter
	Pagination filters.Pagination
}

// readThrough decodes the cached value of (kind, params) into dst or loads
// it with load, stores it, and decodes the loaded value into dst.
func (c *CachedMovies) readThrough(ctx context.Context, kind string, params any, dst any, load func() (any, error)) error {
	const op = "cache.CachedMovies.readThrough"
	log := c.log.With("op", op, "kind", kind)

	key, err := c.key(ctx, kind, params)
	if err == nil {
		cached, err := c.cb.Execute(func() (any, error) {
			res, err := c.rdb.Get(ctx, key).Bytes()
			if errors.Is(err, redis.Nil) {
				return nil, nil
			}
			return res, err
		})
		if err != nil {
			log.Warn("cache read failed", "errMsg", err.Error())
		} else if cached != nil {
			if err := json.Unmarshal(cached.([]byte), dst); err == nil {
				return nil
			}
			log.Warn("cache entry is corrupt", "key", key)
		}
	} else {
		log.Warn("cache key unavailable", "errMsg", err.Error())
	}

	sfKey := key
	if sfKey == "" {
		sfKey = kind + ":" + fingerprint(params)
	}
	data, err, _ := c.sf.Do(sfKey, func() (any, error) {
		val, err := load()
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(val)
		if err != nil {
			return nil, err
		}
		if key != "" {
			_, err := c.cb.Execute(func() (any, error) {
				return nil, c.rdb.Set(ctx, key, data, c.ttl).Err()
			})
			if err != nil {
				log.Warn("cache write failed", "errMsg", err.Error())
			}
		}
		return data, nil
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(data.([]byte), dst)
}

func (c *CachedMovies) key(ctx context.Context, kind string, params any) (string, error) {
	if c.pendingInvalidation.Swap(false) {
		gen, err := c.bumpGeneration(ctx)
		if err != nil {
			c.pendingInvalidation.Store(true)
			return "", err
		}
		return movieCacheKey(gen, kind, params), nil
	}
	gen, err := c.cb.Execute(func() (any, error) {
		gen, err := c.rdb.Get(ctx, generationKey).Int64()
		if errors.Is(err, redis.Nil) {
			return int64(0), nil
		}
		return gen, err
	})
	if err != nil {
		return "", err
	}
	return movieCacheKey(gen.(int64), kind, params), nil
}

func (c *CachedMovies) invalidate(ctx context.Context) {
	if _, err := c.bumpGeneration(ctx); err != nil {
		c.pendingInvalidation.Store(true)
		c.log.Error("failed to invalidate movies cache, bypassing it until redis recovers", "errMsg", err.Error())
	}
}

func (c *CachedMovies) bumpGeneration(ctx context.Context) (int64, error) {
	gen, err := c.cb.Execute(func() (any, error) {
		return c.rdb.Incr(ctx, generationKey).Result()
	})
	if err != nil {
		return 0, err
	}
	return gen.(int64), nil
}

func movieCacheKey(generation int64, kind string, params any) string {
	return fmt.Sprintf("movies:%d:%s:%s", generation, kind, fingerprint(params))
}

func fingerprint(params any) string {
	raw, err := json.Marshal(params)
	if err != nil {
		panic(err)
	}
	return fmt.Sprintf("%x", sha1.Sum(raw))
}

func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, err
	}
	return rdb, nil
}
