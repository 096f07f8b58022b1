package analog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrite12RejectsOutOfRangeValueBeforeTouchingHardware(t *testing.T) {
	d := NewDAC()

	err := d.Write12(0, 4096)
	assert.ErrorIs(t, err, ErrValueOutOfRange)
	assert.False(t, d.initialized, "out-of-range value must not trigger lazy init")
}

func TestWrite12RejectsInvalidChannelBeforeTouchingHardware(t *testing.T) {
	d := NewDAC()

	err := d.Write12(2, 100)
	assert.ErrorIs(t, err, ErrValueOutOfRange)
	assert.False(t, d.initialized)
}
