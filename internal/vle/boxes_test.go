package vle

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVaporBoxLength(t *testing.T) {
	// N=500 ideal-gas molecules at 300 K and 1 bar.
	got, err := VaporBoxLength(500, 1.0, 300.0)
	require.NoError(t, err)
	assert.Equal(t, 27.46, got)

	// Deterministic across invocations.
	again, err := VaporBoxLength(500, 1.0, 300.0)
	require.NoError(t, err)
	assert.Equal(t, got, again)

	// Rounded to 0.01 nm.
	assert.Equal(t, got, math.Round(got*100)/100)
	assert.Positive(t, got)
}

func TestLiquidBoxLength(t *testing.T) {
	got, err := LiquidBoxLength(500, 1200.0)
	require.NoError(t, err)
	assert.Equal(t, 4.36, got)
	assert.Positive(t, got)
}

func TestBoxLengths_Monotonic(t *testing.T) {
	// More molecules need a bigger box; denser liquid needs a smaller one.
	small, err := VaporBoxLength(100, 1.0, 300.0)
	require.NoError(t, err)
	large, err := VaporBoxLength(1000, 1.0, 300.0)
	require.NoError(t, err)
	assert.Greater(t, large, small)

	dense, err := LiquidBoxLength(500, 1400.0)
	require.NoError(t, err)
	light, err := LiquidBoxLength(500, 1000.0)
	require.NoError(t, err)
	assert.Greater(t, light, dense)
}

func TestBoxLengths_RejectBadInputs(t *testing.T) {
	_, err := VaporBoxLength(0, 1.0, 300.0)
	assert.Error(t, err)
	_, err = VaporBoxLength(500, -1.0, 300.0)
	assert.Error(t, err)
	_, err = VaporBoxLength(500, 1.0, 0)
	assert.Error(t, err)
	_, err = LiquidBoxLength(500, 0)
	assert.Error(t, err)
}
