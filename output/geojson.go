package output

import (
	geojson "github.com/paulmach/go.geojson"

	"github.com/transit-tools/subway-validator/model"
	"github.com/transit-tools/subway-validator/osm"
)

// UnusedEntrancesFeatureCollection builds a GeoJSON FeatureCollection
// of every subway/train-station entrance in cities that is not wired
// into any stop area, for visual review on a map
// (mirrors the notices produced by City.countUnusedEntrances).
func UnusedEntrancesFeatureCollection(cities []*model.City) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, city := range cities {
		for _, el := range city.Elements {
			if el.Type.String() != "node" || el.Tags == nil {
				continue
			}
			railway := el.Tags["railway"]
			if railway != "subway_entrance" && railway != "train_station_entrance" {
				continue
			}
			if len(city.ElementStopAreas[osm.ID(el)]) > 0 {
				continue
			}
			if el.Center == nil {
				continue
			}
			f := geojson.NewPointFeature([]float64{el.Center.Lon, el.Center.Lat})
			f.SetProperty("id", osm.ID(el))
			f.SetProperty("city", city.Descriptor.Name)
			if name, ok := el.Tags["name"]; ok {
				f.SetProperty("name", name)
			}
			fc.AddFeature(f)
		}
	}
	return fc
}
