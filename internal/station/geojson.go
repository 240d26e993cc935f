package station

import (
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/station-insight-cli/internal/model"
)

// ToFeatureCollection converts stations to a GeoJSON FeatureCollection.
// Stations without valid coordinates are excluded; coordinate columns are
// dropped from feature properties since the geometry already carries them.
func ToFeatureCollection(stations []model.Station) *geojson.FeatureCollection {
	features := make([]*geojson.Feature, 0, len(stations))
	for _, st := range stations {
		lat, lng, ok := st.Coords()
		if !ok {
			continue
		}

		props := make(map[string]any, len(st))
		for k, v := range st {
			switch k {
			case "위도", "경도", "lat", "lng", "latitude", "longitude":
				continue
			}
			props[k] = v
		}

		features = append(features, &geojson.Feature{
			Geometry:   geom.NewPointFlat(geom.XY, []float64{lng, lat}),
			Properties: props,
		})
	}
	return &geojson.FeatureCollection{Features: features}
}
