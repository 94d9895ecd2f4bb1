package spacedrep

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInvalidGrade is returned for grades outside 0..5.
	ErrInvalidGrade = errors.New("spacedrep: invalid grade")

	// ErrUnknownItem is returned when no state record exists for an identifier.
	ErrUnknownItem = errors.New("spacedrep: unknown item")
)

// Grade is the recall quality reported after a review, from 0 to 5.
type Grade int

const (
	GradeAgain    Grade = iota // Complete blackout.
	GradeVeryHard              // Wrong, but the answer felt familiar.
	GradeHard                  // Wrong, but the answer seemed easy once shown.
	GradeOkay                  // Correct with serious difficulty.
	GradeEasy                  // Correct after some hesitation.
	GradeVeryEasy              // Perfect recall.
)

// MaxGrade is the highest valid grade.
const MaxGrade = GradeVeryEasy

var gradeNames = [...]string{
	GradeAgain:    "again",
	GradeVeryHard: "very hard",
	GradeHard:     "hard",
	GradeOkay:     "okay",
	GradeEasy:     "easy",
	GradeVeryEasy: "very easy",
}

var _ fmt.Stringer = Grade(0)

// String returns the label shown next to the grade key.
func (g Grade) String() string {
	if g.Valid() {
		return gradeNames[g]
	}
	return fmt.Sprintf("Grade(%d)", int(g))
}

// Valid reports whether g is within 0..5.
func (g Grade) Valid() bool {
	return g >= GradeAgain && g <= MaxGrade
}

// IsSuccess reports whether g counts as a successful recall.
func (g Grade) IsSuccess() bool {
	return g >= GradeOkay
}

// ParseGrade parses a decimal grade such as "4".
func ParseGrade(s string) (Grade, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidGrade, s)
	}
	g := Grade(n)
	if !g.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidGrade, n)
	}
	return g, nil
}

// Grades returns every valid grade in ascending order.
func Grades() []Grade {
	gs := make([]Grade, 0, int(MaxGrade)+1)
	for g := GradeAgain; g <= MaxGrade; g++ {
		gs = append(gs, g)
	}
	return gs
}
