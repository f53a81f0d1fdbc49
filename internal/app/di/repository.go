package di

import (
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	assetadapters "market_backend/internal/feature/assets/adapters"
	"market_backend/internal/feature/assets/usecase"
	"market_backend/internal/platform/cache"
)

// NewAssetRepositories creates the asset repositories for readers and writers.
// If Redis is available, reads are cached and writes invalidate the cache.
// writes never reads from the cache, so reconcile and cleanup plan against the database.
// Without Redis both are the gorm repository.
func NewAssetRepositories(rdb *redis.Client, db *gorm.DB, ttl time.Duration) (reads, writes usecase.AssetRepository) {
	repo := assetadapters.NewAssetRepository(db)
	if rdb == nil {
		return repo, repo
	}
	cached := cache.NewCachingAssetRepository(rdb, ttl, repo, "assets")
	return cached, cached.WriteThrough()
}
