package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dkeye/Strangers/internal/core"
)

func TestPartnerVariants(t *testing.T) {
	assert.True(t, core.NoPartner.IsNone())
	assert.Equal(t, "none", core.NoPartner.String())

	real := core.RealPartner("abc")
	sid, ok := real.Real()
	assert.True(t, ok)
	assert.Equal(t, core.SessionID("abc"), sid)
	_, ok = real.Simulated()
	assert.False(t, ok)

	sim := core.SimulatedPartner("abc")
	name, ok := sim.Simulated()
	assert.True(t, ok)
	assert.Equal(t, "abc", name)
	// a persona that shares a session's name is still not addressable
	_, ok = sim.Real()
	assert.False(t, ok)
	assert.NotEqual(t, real, sim)
}
