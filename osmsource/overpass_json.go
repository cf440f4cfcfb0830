package osmsource

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/transit-tools/subway-validator/geo"
	"github.com/transit-tools/subway-validator/osm"
)

// overpassElement is the wire shape of one element in an Overpass JSON
// response body.
type overpassElement struct {
	Type    string            `json:"type"`
	ID      int64             `json:"id"`
	Lat     float64           `json:"lat,omitempty"`
	Lon     float64           `json:"lon,omitempty"`
	Tags    map[string]string `json:"tags,omitempty"`
	Nodes   []int64           `json:"nodes,omitempty"`
	Members []overpassMember  `json:"members,omitempty"`
	Center  *overpassCenter   `json:"center,omitempty"`
}

type overpassMember struct {
	Type string `json:"type"`
	Ref  int64  `json:"ref"`
	Role string `json:"role"`
}

type overpassCenter struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

// ParseOverpassJSON decodes an Overpass {"elements": [...]} document
// into the raw element array, without converting to *osm.Element yet.
func ParseOverpassJSON(data []byte) ([]overpassElement, error) {
	var resp overpassResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("osmsource: decoding overpass json: %w", err)
	}
	return resp.Elements, nil
}

// EncodeOverpassJSON re-serializes an element array back into the
// {"elements": [...]} wire shape, used to merge paginated responses.
func EncodeOverpassJSON(elements []overpassElement) ([]byte, error) {
	return json.Marshal(overpassResponse{Elements: elements})
}

// LoadOverpassJSON parses data and converts every element into an
// *osm.Element.
func LoadOverpassJSON(data []byte) ([]*osm.Element, error) {
	raw, err := ParseOverpassJSON(data)
	if err != nil {
		return nil, err
	}
	elements := make([]*osm.Element, 0, len(raw))
	for _, e := range raw {
		el, err := convertElement(e)
		if err != nil {
			return nil, err
		}
		elements = append(elements, el)
	}
	return elements, nil
}

func convertElement(e overpassElement) (*osm.Element, error) {
	t, err := osm.ParseElementType(e.Type)
	if err != nil {
		return nil, fmt.Errorf("osmsource: element %d: %w", e.ID, err)
	}

	el := &osm.Element{
		Type:  t,
		ID:    e.ID,
		Tags:  e.Tags,
		Lon:   e.Lon,
		Lat:   e.Lat,
		Nodes: e.Nodes,
	}
	if t == osm.ElementNode {
		el.Center = &geo.Point{Lon: e.Lon, Lat: e.Lat}
	} else if e.Center != nil {
		el.Center = &geo.Point{Lon: e.Center.Lon, Lat: e.Center.Lat}
	}

	if e.Members != nil {
		el.Members = make([]osm.Member, 0, len(e.Members))
		for _, m := range e.Members {
			mt, err := osm.ParseElementType(m.Type)
			if err != nil {
				return nil, fmt.Errorf("osmsource: relation %d member: %w", e.ID, err)
			}
			el.Members = append(el.Members, osm.Member{Type: mt, Ref: m.Ref, Role: m.Role})
		}
	}
	return el, nil
}
