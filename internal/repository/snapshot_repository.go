package repository

import (
	"time"

	"treasury_checker/internal/entity"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const consolidatedKey = "consolidated"

// SnapshotRepository holds the last successful aggregation result so that
// read requests never wait on upstreams. Entries expire after the
// configured TTL; past that point even a stale snapshot is considered
// misleading and readers fall back to the zeroed shape.
type SnapshotRepository interface {
	// Store replaces the held snapshot. Writers race benignly; the last
	// completed aggregation wins.
	Store(data *entity.ConsolidatedData)
	// Latest returns the held snapshot and whether it is stale, i.e. older
	// than the expected refresh cadence. Returns nil when nothing usable
	// is held.
	Latest() (*entity.ConsolidatedData, bool)
}

// snapshotRepositoryImpl is the implementation of SnapshotRepository.
type snapshotRepositoryImpl struct {
	cache          *gocache.Cache
	staleThreshold time.Duration
	logger         *zap.Logger
}

// NewSnapshotRepository creates a new instance of snapshotRepositoryImpl.
// ttl bounds how long a snapshot may be served at all; staleThreshold marks
// when it starts being flagged as stale.
func NewSnapshotRepository(ttl, staleThreshold time.Duration, logger *zap.Logger) SnapshotRepository {
	return &snapshotRepositoryImpl{
		cache:          gocache.New(ttl, 2*ttl),
		staleThreshold: staleThreshold,
		logger:         logger.Named("SnapshotRepository"),
	}
}

// Store implements SnapshotRepository.
func (r *snapshotRepositoryImpl) Store(data *entity.ConsolidatedData) {
	if data == nil {
		return
	}
	r.cache.Set(consolidatedKey, data, gocache.DefaultExpiration)
	r.logger.Debug("Stored consolidated snapshot",
		zap.Int("wallets", len(data.Wallets)),
		zap.Time("lastUpdated", data.Treasury.LastUpdated))
}

// Latest implements SnapshotRepository.
func (r *snapshotRepositoryImpl) Latest() (*entity.ConsolidatedData, bool) {
	cached, found := r.cache.Get(consolidatedKey)
	if !found {
		return nil, false
	}
	data := cached.(*entity.ConsolidatedData)
	stale := time.Since(data.Treasury.LastUpdated) > r.staleThreshold
	return data, stale
}
