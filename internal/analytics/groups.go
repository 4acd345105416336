// Package analytics turns workout items into a ranked tally of the
// muscle groups they worked.
package analytics

import (
	"liftlog/workout-app/internal/domain"
)

// Group is one broad muscle group and the specific muscles it covers.
type Group struct {
	Name    string
	Muscles []string
}

// Table maps specific muscles to broad groups. Group order is the
// tie-break order of Compute.
type Table struct {
	groups   []string
	byMuscle map[string]string
}

// NewTable builds a table from groups in enumeration order. A muscle listed
// under two groups belongs to the first.
func NewTable(groups ...Group) *Table {
	t := &Table{byMuscle: map[string]string{}}
	for _, g := range groups {
		t.groups = append(t.groups, g.Name)
		for _, m := range g.Muscles {
			if _, taken := t.byMuscle[m]; !taken {
				t.byMuscle[m] = g.Name
			}
		}
	}
	return t
}

// IdentityTable treats every listed muscle as its own group.
func IdentityTable(muscles ...string) *Table {
	groups := make([]Group, len(muscles))
	for i, m := range muscles {
		groups[i] = Group{Name: m, Muscles: []string{m}}
	}
	return NewTable(groups...)
}

// GroupOf resolves a specific muscle. Unknown muscles resolve to nothing.
func (t *Table) GroupOf(muscle string) (string, bool) {
	g, ok := t.byMuscle[muscle]
	return g, ok
}

// Groups returns group names in enumeration order.
func (t *Table) Groups() []string {
	return append([]string(nil), t.groups...)
}

// BroadGroups is the canonical six-group table, enumerated alphabetically.
var BroadGroups = NewTable(
	Group{Name: "Arms", Muscles: []string{domain.MuscleBiceps, domain.MuscleTriceps, domain.MuscleForearms}},
	Group{Name: "Back", Muscles: []string{domain.MuscleBack, domain.MuscleLats, domain.MuscleTraps, domain.MuscleLowerBack}},
	Group{Name: "Chest", Muscles: []string{domain.MuscleChest, domain.MuscleUpperChest}},
	Group{Name: "Core", Muscles: []string{domain.MuscleAbs, domain.MuscleCore, domain.MuscleHipFlexors}},
	Group{Name: "Legs", Muscles: []string{domain.MuscleQuads, domain.MuscleHamstrings, domain.MuscleGlutes, domain.MuscleCalves}},
	Group{Name: "Shoulders", Muscles: []string{
		domain.MuscleShoulders, domain.MuscleFrontDeltoids, domain.MuscleRearDeltoids, domain.MuscleLateralDeltoids,
	}},
)
