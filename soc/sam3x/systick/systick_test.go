package systick

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestElapsedOrdinaryCase(t *testing.T) {
	assert.Equal(t, int32(5), Elapsed(105, 100))
	assert.True(t, Elapsed(105, 100) >= 0)
}

func TestElapsedNotYetReached(t *testing.T) {
	assert.True(t, Elapsed(95, 100) < 0)
}

func TestElapsedWrapAround(t *testing.T) {
	// start = 0xFFFF_FF00, now wraps past 0 to 0x0000_00E8: 0x1E8 (488)
	// ticks have elapsed in modular time, so a 1000 ms sleep begun at
	// start is not yet over.
	start := uint32(0xFFFFFF00)
	now := uint32(0x000000E8)

	elapsed := Elapsed(now, start)
	assert.Equal(t, int32(0x1E8), elapsed)
	assert.True(t, elapsed >= 0)
}

func TestElapsedWrapAroundNotYetDue(t *testing.T) {
	start := uint32(0xFFFFFF00)
	now := uint32(0x00000050) // 0x150 ticks elapsed, less than 1000

	elapsed := Elapsed(now, start)
	assert.True(t, elapsed < 1000)
}

func TestTickMonotonicUnderHandler(t *testing.T) {
	tick = 0
	defer func() { tick = 0 }()

	before := tick
	Handler()
	Handler()
	after := tick

	assert.Equal(t, before+2, after)
}
