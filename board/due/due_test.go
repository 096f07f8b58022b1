package due

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultOptionsMatchDocumentedDefaults(t *testing.T) {
	opts := DefaultOptions()

	assert.Equal(t, uint32(115200), opts.Baud)
	assert.True(t, opts.PrintBootBanner)
	assert.True(t, opts.EnableTWI)
	assert.Equal(t, uint32(100000), opts.I2CClockHz)
}

func TestClockConstantsMatchBringUpContract(t *testing.T) {
	assert.Equal(t, uint32(84000000), uint32(CPUHz84MHz))
	assert.Equal(t, uint32(4000000), uint32(CPUHz4MHz))
}
