package cache

import (
	"testing"

	"github.com/roamio/discovery-api/types"
	"github.com/stretchr/testify/assert"
)

func boundsAt(swLat, swLng, neLat, neLng float64) types.Bounds {
	return types.Bounds{
		Southwest: types.LatLng{Lat: swLat, Lng: swLng},
		Northeast: types.LatLng{Lat: neLat, Lng: neLng},
	}
}

func TestTileKeyQuantizesNearbyViewports(t *testing.T) {
	a := TileKey(boundsAt(40.7101, -74.0151, 40.7301, -73.9951), nil)
	b := TileKey(boundsAt(40.7109, -74.0159, 40.7309, -73.9959), nil)

	assert.Equal(t, a, b, "viewports inside the same grid cells should share a tile")
}

func TestTileKeyCategoryOrderIrrelevant(t *testing.T) {
	bounds := boundsAt(40.71, -74.01, 40.73, -73.99)

	a := TileKey(bounds, []string{"park", "bar"})
	b := TileKey(bounds, []string{"bar", "park"})
	c := TileKey(bounds, []string{"Bar", " park "})

	assert.Equal(t, a, b)
	assert.Equal(t, a, c)
}

func TestTileKeyDifferentCategoriesDiffer(t *testing.T) {
	bounds := boundsAt(40.71, -74.01, 40.73, -73.99)

	assert.NotEqual(t,
		TileKey(bounds, []string{"park"}),
		TileKey(bounds, []string{"bar"}))
	assert.NotEqual(t,
		TileKey(bounds, nil),
		TileKey(bounds, []string{"bar"}))
}

func TestTileKeyDistantViewportsDiffer(t *testing.T) {
	assert.NotEqual(t,
		TileKey(boundsAt(40.71, -74.01, 40.73, -73.99), nil),
		TileKey(boundsAt(41.71, -74.01, 41.73, -73.99), nil))
}
