package analytics

import (
	"sort"

	"liftlog/workout-app/internal/domain"
)

// GroupTally is the number of sets a workout put into one group.
// Sets moves in steps of 0.5 when half credit is on.
type GroupTally struct {
	Name string  `json:"name"`
	Sets float64 `json:"sets"`
}

// Resolver looks up exercise metadata for a reference.
type Resolver interface {
	Resolve(ref domain.ExerciseRef) (domain.ExerciseInfo, bool)
}

// MapResolver resolves from a snapshot keyed by reference.
type MapResolver map[domain.ExerciseRef]domain.ExerciseInfo

func (m MapResolver) Resolve(ref domain.ExerciseRef) (domain.ExerciseInfo, bool) {
	info, ok := m[ref]
	return info, ok
}

// Compute tallies sets per group. Each item adds its set count to the
// primary muscle's group; with halfCredit, each secondary muscle outside
// the primary's group adds half of it to its own group. Items that do not resolve are
// skipped. Groups with a zero tally are dropped and the rest are sorted by
// descending count, ties in table order.
func Compute(items []domain.WorkoutItem, resolver Resolver, table *Table, halfCredit bool) []GroupTally {
	tally := make(map[string]float64, len(table.groups))
	for _, item := range items {
		info, ok := resolver.Resolve(item.Exercise)
		if !ok {
			continue
		}
		n := float64(len(item.Sets))

		primary, hasPrimary := table.GroupOf(info.PrimaryMuscle)
		if hasPrimary {
			tally[primary] += n
		}
		if !halfCredit {
			continue
		}
		for _, m := range info.SecondaryMuscles {
			g, ok := table.GroupOf(m)
			if !ok || (hasPrimary && g == primary) {
				continue
			}
			tally[g] += n * 0.5
		}
	}

	out := make([]GroupTally, 0, len(tally))
	for _, g := range table.groups {
		if sets := tally[g]; sets > 0 {
			out = append(out, GroupTally{Name: g, Sets: sets})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Sets > out[j].Sets })
	return out
}
