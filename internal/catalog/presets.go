// Package catalog holds the built-in exercise list and the client-side
// fuzzy search over a cached catalog.
package catalog

import (
	"liftlog/workout-app/internal/domain"
)

// Preset is a built-in global exercise. OldName, when set, is the name the
// exercise had in an earlier catalog revision and is kept as a search alias.
type Preset struct {
	Name      string
	OldName   string
	Primary   string
	Secondary []string
}

const (
	chest      = domain.MuscleChest
	shoulders  = domain.MuscleShoulders
	back       = domain.MuscleBack
	biceps     = domain.MuscleBiceps
	triceps    = domain.MuscleTriceps
	quads      = domain.MuscleQuads
	hamstrings = domain.MuscleHamstrings
	glutes     = domain.MuscleGlutes
	calves     = domain.MuscleCalves
	frontDelts = domain.MuscleFrontDeltoids
	rearDelts  = domain.MuscleRearDeltoids
	latDelts   = domain.MuscleLateralDeltoids
	forearms   = domain.MuscleForearms
	lowerBack  = domain.MuscleLowerBack
	traps      = domain.MuscleTraps
	lats       = domain.MuscleLats
	upperChest = domain.MuscleUpperChest
	abs        = domain.MuscleAbs
	core       = domain.MuscleCore
	hipFlexors = domain.MuscleHipFlexors
)

var presets = []Preset{
	// chest
	{Name: "Barbell Bench Press", OldName: "Bench Press", Primary: chest, Secondary: []string{triceps, frontDelts}},
	{Name: "Dumbbell Bench Press", Primary: chest, Secondary: []string{triceps, frontDelts}},
	{Name: "Incline Barbell Bench Press", OldName: "Incline Press", Primary: upperChest, Secondary: []string{triceps, frontDelts}},
	{Name: "Incline Dumbbell Bench Press", Primary: upperChest, Secondary: []string{triceps, frontDelts}},
	{Name: "Decline Bench Press", Primary: chest, Secondary: []string{triceps, frontDelts}},
	{Name: "Dumbbell Fly", Primary: chest},
	{Name: "Cable Fly", Primary: chest},
	{Name: "Push-Up", Primary: chest, Secondary: []string{triceps, frontDelts}},
	{Name: "Machine Chest Press", Primary: chest, Secondary: []string{triceps, frontDelts}},
	{Name: "Pec Deck (Machine Fly)", Primary: chest},

	// shoulders
	{Name: "Overhead Barbell Press", OldName: "Overhead Press", Primary: shoulders, Secondary: []string{triceps, traps}},
	{Name: "Seated Dumbbell Shoulder Press", Primary: shoulders, Secondary: []string{triceps}},
	{Name: "Arnold Press", Primary: shoulders, Secondary: []string{triceps}},
	{Name: "Lateral Raise (Dumbbell)", Primary: latDelts},
	{Name: "Cable Lateral Raise", Primary: latDelts},
	{Name: "Rear Delt Fly (Dumbbell)", Primary: rearDelts},
	{Name: "Cable Rear Delt Fly", Primary: rearDelts},
	{Name: "Face Pull", Primary: rearDelts, Secondary: []string{traps}},
	{Name: "Front Raise (Dumbbell/Plate)", Primary: frontDelts},

	// back
	{Name: "Pull-Up", Primary: lats, Secondary: []string{biceps, rearDelts}},
	{Name: "Chin-Up", Primary: lats, Secondary: []string{biceps}},
	{Name: "Lat Pulldown", OldName: "Pulldown", Primary: lats, Secondary: []string{biceps, rearDelts}},
	{Name: "Seated Cable Row", Primary: lats, Secondary: []string{biceps, rearDelts}},
	{Name: "Bent-Over Barbell Row", Primary: back, Secondary: []string{lats, rearDelts, biceps}},
	{Name: "One-Arm Dumbbell Row", Primary: lats, Secondary: []string{biceps, rearDelts}},
	{Name: "T-Bar Row", Primary: back, Secondary: []string{lats, rearDelts}},
	{Name: "Machine Row", Primary: lats, Secondary: []string{biceps}},
	{Name: "Straight-Arm Pulldown", Primary: lats},

	// legs
	{Name: "Barbell Back Squat", OldName: "Squat", Primary: quads, Secondary: []string{glutes, hamstrings, lowerBack}},
	{Name: "Front Squat", Primary: quads, Secondary: []string{glutes, core}},
	{Name: "Leg Press", Primary: quads, Secondary: []string{glutes, hamstrings}},
	{Name: "Walking Lunge (Dumbbells)", Primary: quads, Secondary: []string{glutes, hamstrings}},
	{Name: "Bulgarian Split Squat", Primary: quads, Secondary: []string{glutes}},
	{Name: "Leg Extension", Primary: quads},
	{Name: "Barbell Deadlift (Conventional)", OldName: "Deadlift", Primary: back, Secondary: []string{glutes, hamstrings, lowerBack, traps}},
	{Name: "Romanian Deadlift", Primary: hamstrings, Secondary: []string{glutes, lowerBack, traps}},
	{Name: "Hip Thrust (Barbell)", Primary: glutes, Secondary: []string{hamstrings}},
	{Name: "Glute Bridge", Primary: glutes, Secondary: []string{hamstrings}},
	{Name: "Hamstring Curl (Seated)", OldName: "Leg Curl", Primary: hamstrings},
	{Name: "Hamstring Curl (Lying)", Primary: hamstrings},
	{Name: "Calf Raise (Standing)", Primary: calves},
	{Name: "Calf Raise (Seated)", Primary: calves},

	// arms
	{Name: "Barbell Biceps Curl", Primary: biceps, Secondary: []string{forearms}},
	{Name: "Dumbbell Biceps Curl", OldName: "Dumbbell Bicep Curl", Primary: biceps, Secondary: []string{forearms}},
	{Name: "Incline Dumbbell Curl", Primary: biceps},
	{Name: "Preacher Curl (Barbell/Dumbbell/Machine)", Primary: biceps},
	{Name: "Cable Biceps Curl", OldName: "Cable Bicep Curl", Primary: biceps, Secondary: []string{forearms}},
	{Name: "Hammer Curl", Primary: biceps, Secondary: []string{forearms}},
	{Name: "Triceps Pushdown (Cable, straight/EZ/rope)", Primary: triceps},
	{Name: "Overhead Rope Extension", Primary: triceps},
	{Name: "Skull Crushers (Lying Triceps Extension, EZ Bar)", Primary: triceps},
	{Name: "Close-Grip Bench Press", Primary: triceps, Secondary: []string{chest}},
	{Name: "Dips (Chest/Triceps)", Primary: triceps, Secondary: []string{chest, frontDelts}},

	// core
	{Name: "Plank", Primary: abs},
	{Name: "Hanging Knee Raise/Leg Raise", Primary: abs, Secondary: []string{hipFlexors}},
	{Name: "Cable Crunch", Primary: abs},
	{Name: "Ab Wheel Rollout", Primary: abs, Secondary: []string{core}},
	{Name: "Back Extension (Hyperextension)", Primary: lowerBack, Secondary: []string{glutes, hamstrings}},
	{Name: "Shrug (Barbell/Dumbbell)", Primary: traps, Secondary: []string{forearms}},
}

// Presets returns a copy of the built-in list.
func Presets() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}

// GlobalExercises converts the presets into catalog documents ready for seeding.
func GlobalExercises() []domain.Exercise {
	out := make([]domain.Exercise, 0, len(presets))
	for _, p := range presets {
		ex := domain.Exercise{
			Name:             p.Name,
			PrimaryMuscle:    p.Primary,
			SecondaryMuscles: append([]string{}, p.Secondary...),
		}
		if p.OldName != "" {
			ex.Aliases = []string{p.OldName}
		}
		out = append(out, ex)
	}
	return out
}
