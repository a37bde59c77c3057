package voting

import (
	"errors"
	"fmt"
	"math"
)

// Grade is one step of the majority judgment scale, ordered worst to best.
// All median and tie-break logic works over this order, never over an
// arbitrary numeric encoding exposed to callers.
type Grade int

const (
	GradeBad Grade = iota
	GradeInadequate
	GradePassable
	GradeFair
	GradeGood
	GradeVeryGood
	GradeExcellent
)

// GradeCount is the number of steps on the scale.
const GradeCount = 7

// WorstGrade is the seeding default for voters that engaged a vote but did
// not rate an option yet.
const WorstGrade = GradeBad

var ErrUnknownGrade = errors.New("unknown grade")

var gradeNames = map[Grade]string{
	GradeBad:        "bad",
	GradeInadequate: "inadequate",
	GradePassable:   "passable",
	GradeFair:       "fair",
	GradeGood:       "good",
	GradeVeryGood:   "very_good",
	GradeExcellent:  "excellent",
}

func (g Grade) Valid() bool {
	return g >= GradeBad && g <= GradeExcellent
}

func (g Grade) String() string {
	if name, ok := gradeNames[g]; ok {
		return name
	}
	return fmt.Sprintf("grade(%d)", int(g))
}

// ParseGrade maps a wire name back onto the scale.
func ParseGrade(s string) (Grade, error) {
	for g, name := range gradeNames {
		if name == s {
			return g, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownGrade, s)
}

// GradeNames returns the wire names of the full scale ordered worst first.
func GradeNames() []string {
	names := make([]string, 0, GradeCount)
	for g := GradeBad; g <= GradeExcellent; g++ {
		names = append(names, g.String())
	}
	return names
}

// satAdd adds two non-negative counters without wrapping.
func satAdd(a, b int) int {
	if s := a + b; s >= a {
		return s
	}
	return math.MaxInt
}
