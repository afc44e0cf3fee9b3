package sptest

import (
	"testing"

	"github.com/flywave/go-geom/general"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pointCollection = `{
	"type": "FeatureCollection",
	"features": [
		{"type": "Feature", "properties": {}, "geometry": {"type": "Point", "coordinates": [0, 0, 1.5]}},
		{"type": "Feature", "properties": {}, "geometry": {"type": "Point", "coordinates": [1, 0, 2.5]}},
		{"type": "Feature", "properties": {}, "geometry": {"type": "MultiPoint", "coordinates": [[0, 1, 0.5], [1, 1, 3.5]]}},
		{"type": "Feature", "properties": {}, "geometry": {"type": "Point", "coordinates": [2, 1, 1.0]}}
	]
}`

func TestSampleFromFeatureCollection(t *testing.T) {
	a := assert.New(t)

	fc, err := general.UnmarshalFeatureCollection([]byte(pointCollection))
	require.NoError(t, err)

	spdata, err := SampleFromFeatureCollection(fc)
	require.NoError(t, err)

	nr, nc := spdata.Dims()
	a.Equal(5, nr)
	a.Equal(3, nc)
	a.Equal(1.5, spdata.At(0, 2))
	a.Equal(0.5, spdata.At(2, 2))
	a.Equal(2.0, spdata.At(4, 0))
}

func TestSampleFromFeatureCollectionTooSmall(t *testing.T) {
	fc, err := general.UnmarshalFeatureCollection([]byte(`{
		"type": "FeatureCollection",
		"features": [
			{"type": "Feature", "properties": {}, "geometry": {"type": "Point", "coordinates": [0, 0, 1]}}
		]
	}`))
	require.NoError(t, err)

	_, err = SampleFromFeatureCollection(fc)
	assert.ErrorIs(t, err, ErrTooFewLocations)
}
