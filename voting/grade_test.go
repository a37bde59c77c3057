package voting

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGrade(t *testing.T) {
	t.Run("Happy path - every wire name round-trips", func(t *testing.T) {
		for g := GradeBad; g <= GradeExcellent; g++ {
			parsed, err := ParseGrade(g.String())
			require.NoError(t, err)
			assert.Equal(t, g, parsed)
		}
	})

	t.Run("Unhappy path - unknown name is rejected", func(t *testing.T) {
		_, err := ParseGrade("mediocre")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnknownGrade)
	})

	t.Run("Unhappy path - names are case sensitive", func(t *testing.T) {
		_, err := ParseGrade("Good")
		assert.ErrorIs(t, err, ErrUnknownGrade)
	})
}

func TestGradeValid(t *testing.T) {
	assert.True(t, GradeBad.Valid())
	assert.True(t, GradeExcellent.Valid())
	assert.False(t, Grade(-1).Valid())
	assert.False(t, Grade(GradeCount).Valid())
}

func TestGradeNames(t *testing.T) {
	names := GradeNames()
	require.Len(t, names, GradeCount)
	assert.Equal(t, "bad", names[0])
	assert.Equal(t, "excellent", names[GradeCount-1])
}

func TestSatAdd(t *testing.T) {
	assert.Equal(t, 5, satAdd(2, 3))
	assert.Equal(t, math.MaxInt, satAdd(math.MaxInt, 1))
	assert.Equal(t, math.MaxInt, satAdd(math.MaxInt, math.MaxInt))
}
