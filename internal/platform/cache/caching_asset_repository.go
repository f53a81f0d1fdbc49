// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"market_backend/internal/feature/assets/domain/entity"
	"market_backend/internal/feature/assets/usecase"
	"market_backend/internal/platform/logger"
)

// CachingAssetRepository decorates an AssetRepository with Redis caching.
// Reads are cached per query; every successful write drops the whole namespace.
type CachingAssetRepository struct {
	inner     usecase.AssetRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.AssetRepository = (*CachingAssetRepository)(nil)

// NewCachingAssetRepository decorates an AssetRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "assets".
func NewCachingAssetRepository(rdb *redis.Client, ttl time.Duration, inner usecase.AssetRepository, namespace string) *CachingAssetRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "assets"
	}
	return &CachingAssetRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// ListAll returns every stored asset, checking the cache first.
func (c *CachingAssetRepository) ListAll(ctx context.Context) ([]entity.Asset, error) {
	return c.cached(ctx, c.namespace+":all", func() ([]entity.Asset, error) {
		return c.inner.ListAll(ctx)
	})
}

// FindBySymbols returns the rows for the given symbols, checking the cache first.
func (c *CachingAssetRepository) FindBySymbols(ctx context.Context, symbols []string) ([]entity.Asset, error) {
	if len(symbols) == 0 {
		return c.inner.FindBySymbols(ctx, symbols)
	}
	return c.cached(ctx, c.symbolsKey(symbols), func() ([]entity.Asset, error) {
		return c.inner.FindBySymbols(ctx, symbols)
	})
}

// UpsertBatch writes through and invalidates the namespace.
func (c *CachingAssetRepository) UpsertBatch(ctx context.Context, assets []entity.Asset) error {
	if err := c.inner.UpsertBatch(ctx, assets); err != nil {
		return err
	}
	if len(assets) > 0 {
		c.invalidate(ctx)
	}
	return nil
}

// DeleteByIDs deletes through and invalidates the namespace when rows were removed.
func (c *CachingAssetRepository) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	n, err := c.inner.DeleteByIDs(ctx, ids)
	if err != nil {
		return n, err
	}
	if n > 0 {
		c.invalidate(ctx)
	}
	return n, nil
}

// DeleteBySymbol deletes through and invalidates the namespace when a row was removed.
func (c *CachingAssetRepository) DeleteBySymbol(ctx context.Context, symbol string) (int64, error) {
	n, err := c.inner.DeleteBySymbol(ctx, symbol)
	if err != nil {
		return n, err
	}
	if n > 0 {
		c.invalidate(ctx)
	}
	return n, nil
}

// WriteThrough は読み取りをキャッシュせず inner から行い、書き込み時だけ名前空間を無効化するビューを返します。
// 読み取った内容をもとに書き込むユースケース（reconcile, cleanup）はこちらを使います。
func (c *CachingAssetRepository) WriteThrough() *WriteThroughAssetRepository {
	return &WriteThroughAssetRepository{CachingAssetRepository: c}
}

// WriteThroughAssetRepository は CachingAssetRepository の書き込み専用ビューです。
type WriteThroughAssetRepository struct {
	*CachingAssetRepository
}

var _ usecase.AssetRepository = (*WriteThroughAssetRepository)(nil)

// ListAll always reads from the underlying store.
func (w *WriteThroughAssetRepository) ListAll(ctx context.Context) ([]entity.Asset, error) {
	return w.inner.ListAll(ctx)
}

// FindBySymbols always reads from the underlying store.
func (w *WriteThroughAssetRepository) FindBySymbols(ctx context.Context, symbols []string) ([]entity.Asset, error) {
	return w.inner.FindBySymbols(ctx, symbols)
}

func (c *CachingAssetRepository) cached(ctx context.Context, key string, load func() ([]entity.Asset, error)) ([]entity.Asset, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return load()
	}

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.Asset
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to database
	out, err := load()
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
	return out, nil
}

// symbolsKey は順序に依存しないキーを生成します。
func (c *CachingAssetRepository) symbolsKey(symbols []string) string {
	s := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		s = append(s, safe(sym))
	}
	slices.Sort(s)
	return fmt.Sprintf("%s:symbols:%s", c.namespace, strings.Join(s, ","))
}

// invalidate は名前空間内のキーを削除します。失敗しても書き込み自体は成功扱いです。
func (c *CachingAssetRepository) invalidate(ctx context.Context) {
	if c.rdb == nil {
		return
	}
	if err := c.deleteByPattern(ctx, c.namespace+":*"); err != nil {
		logger.FromContext(ctx).Warn("asset cache invalidation failed", "namespace", c.namespace, "error", err)
	}
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingAssetRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	s = strings.ReplaceAll(s, ",", "_")
	return s
}
