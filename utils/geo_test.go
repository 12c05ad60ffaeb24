package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineMeters(t *testing.T) {
	assert.Zero(t, HaversineMeters(40.7, -74.0, 40.7, -74.0))

	// One degree of latitude is ~111.2km everywhere.
	d := HaversineMeters(40.0, -74.0, 41.0, -74.0)
	assert.InDelta(t, 111_200, d, 1_000)

	// Symmetric in its endpoints.
	assert.InDelta(t,
		HaversineMeters(40.7, -74.0, 40.71, -74.01),
		HaversineMeters(40.71, -74.01, 40.7, -74.0), 1e-9)
}
