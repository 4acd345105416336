// Package cache keeps resolved exercise metadata in process memory.
package cache

import (
	"errors"
	"time"

	"liftlog/workout-app/internal/domain"
	"liftlog/workout-app/internal/metrics"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExerciseCache maps exercise references to ExerciseInfo values stored as
// BSON in a freecache ring. User exercises are keyed by owner too, so a
// lookup never returns another user's exercise. Safe for concurrent use.
type ExerciseCache struct {
	cache   *freecache.Cache
	ttl     time.Duration
	metrics *metrics.Manager
}

// NewExerciseCache allocates sizeMB of cache memory. freecache enforces
// a 512KB minimum.
func NewExerciseCache(sizeMB int, ttl time.Duration, metricsManager *metrics.Manager) *ExerciseCache {
	if sizeMB <= 0 {
		sizeMB = 1
	}
	return &ExerciseCache{
		cache:   freecache.NewCache(sizeMB * 1024 * 1024),
		ttl:     ttl,
		metrics: metricsManager,
	}
}

func (c *ExerciseCache) Get(owner primitive.ObjectID, ref domain.ExerciseRef) (domain.ExerciseInfo, bool) {
	raw, err := c.cache.Get(key(owner, ref))
	if err != nil {
		if !errors.Is(err, freecache.ErrNotFound) {
			log.Errorf("exercise cache get %s: %s", ref, err)
		}
		c.count("miss")
		return domain.ExerciseInfo{}, false
	}
	var info domain.ExerciseInfo
	if err := bson.Unmarshal(raw, &info); err != nil {
		log.Errorf("exercise cache decode %s: %s", ref, err)
		c.count("miss")
		return domain.ExerciseInfo{}, false
	}
	c.count("hit")
	return info, true
}

func (c *ExerciseCache) Set(owner primitive.ObjectID, ref domain.ExerciseRef, info domain.ExerciseInfo) {
	raw, err := bson.Marshal(info)
	if err != nil {
		log.Errorf("exercise cache encode %s: %s", ref, err)
		return
	}
	if err := c.cache.Set(key(owner, ref), raw, int(c.ttl.Seconds())); err != nil {
		log.Warnf("exercise cache set %s: %s", ref, err)
	}
}

// Del evicts ref; it is called whenever a custom exercise changes.
func (c *ExerciseCache) Del(owner primitive.ObjectID, ref domain.ExerciseRef) {
	c.cache.Del(key(owner, ref))
}

func (c *ExerciseCache) Clear() {
	c.cache.Clear()
}

func key(owner primitive.ObjectID, ref domain.ExerciseRef) []byte {
	if ref.Kind == domain.KindGlobal {
		return []byte(ref.Key())
	}
	return []byte(owner.Hex() + "/" + ref.Key())
}

func (c *ExerciseCache) count(result string) {
	if c.metrics != nil {
		c.metrics.CounterCatalogCache.WithLabelValues(result).Inc()
	}
}
