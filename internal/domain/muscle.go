package domain

// Specific muscle names used by the built-in catalog and the analytics
// grouping table. Custom exercises may use any string.
const (
	MuscleChest      = "Chest"
	MuscleShoulders  = "Shoulders"
	MuscleBack       = "Back"
	MuscleBiceps     = "Biceps"
	MuscleTriceps    = "Triceps"
	MuscleQuads      = "Quads"
	MuscleHamstrings = "Hamstrings"
	MuscleGlutes     = "Glutes"
	MuscleCalves     = "Calves"

	MuscleFrontDeltoids   = "Front Deltoids"
	MuscleRearDeltoids    = "Rear Deltoids"
	MuscleLateralDeltoids = "Lateral Deltoids"
	MuscleForearms        = "Forearms"
	MuscleLowerBack       = "Lower Back"
	MuscleTraps           = "Traps"
	MuscleLats            = "Lats"
	MuscleUpperChest      = "Upper Chest"
	MuscleAbs             = "Abs"
	MuscleCore            = "Core"
	MuscleHipFlexors      = "Hip Flexors"
)
