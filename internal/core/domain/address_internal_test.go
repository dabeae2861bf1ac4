package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindProgramAddressTakesHighestOffCurveBump(t *testing.T) {
	program := MustParseAddress("Ak88q7XogJ5Hq2uUG4oPvA95JzcE3t35BMDujfC4Rd5c")

	for pollID := uint64(0); pollID < 64; pollID++ {
		seeds := PollSeeds(pollID)
		addr, bump, err := FindProgramAddress(seeds, program)
		require.NoError(t, err)
		require.GreaterOrEqual(t, bump, uint8(minBump))

		for higher := maxBump; higher > int(bump); higher-- {
			_, err := CreateProgramAddress(append(PollSeeds(pollID), []byte{uint8(higher)}), program)
			require.ErrorIs(t, err, errOnCurve, "poll %d bump %d", pollID, higher)
		}
		direct, err := CreateProgramAddress(append(seeds, []byte{bump}), program)
		require.NoError(t, err)
		assert.Equal(t, addr, direct)
	}
}

func TestSearchBumpStopsAtOne(t *testing.T) {
	var tried []uint8
	_, _, err := searchBump(func(bump uint8) (Address, error) {
		tried = append(tried, bump)
		return Address{}, errOnCurve
	})
	require.Error(t, err)

	require.Len(t, tried, 255)
	assert.Equal(t, uint8(255), tried[0])
	assert.Equal(t, uint8(1), tried[len(tried)-1])
	assert.NotContains(t, tried, uint8(0))
}
