package cache

import (
	"testing"
	"time"

	"liftlog/workout-app/internal/domain"
	"liftlog/workout-app/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestExerciseCache(t *testing.T) {
	m := metrics.NewTestManager()
	c := NewExerciseCache(1, time.Minute, m)
	owner := primitive.NewObjectID()
	ref := domain.UserRef(primitive.NewObjectID())
	info := domain.ExerciseInfo{
		Name:             "Zercher Squat",
		PrimaryMuscle:    domain.MuscleQuads,
		SecondaryMuscles: []string{domain.MuscleCore},
	}

	_, ok := c.Get(owner, ref)
	assert.False(t, ok)

	c.Set(owner, ref, info)
	got, ok := c.Get(owner, ref)
	assert.True(t, ok)
	assert.Equal(t, info, got)

	// other users and the other catalog use different keys
	_, ok = c.Get(primitive.NewObjectID(), ref)
	assert.False(t, ok)
	_, ok = c.Get(owner, domain.GlobalRef(ref.ID))
	assert.False(t, ok)

	c.Del(owner, ref)
	_, ok = c.Get(owner, ref)
	assert.False(t, ok)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterCatalogCache.WithLabelValues("hit")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.CounterCatalogCache.WithLabelValues("miss")))
}

func TestExerciseCache_GlobalIgnoresOwner(t *testing.T) {
	c := NewExerciseCache(1, 0, nil)
	ref := domain.GlobalRef(primitive.NewObjectID())
	c.Set(primitive.NilObjectID, ref, domain.ExerciseInfo{Name: "Plank", PrimaryMuscle: domain.MuscleAbs})

	got, ok := c.Get(primitive.NewObjectID(), ref)
	assert.True(t, ok)
	assert.Equal(t, "Plank", got.Name)
}
