package model

import (
	"github.com/transit-tools/subway-validator/osm"
)

// Transfer links two or more stop areas that let a rider change
// vehicles without leaving the paid area, grounded by a
// public_transport=stop_area_group relation
// (subways/structure/city.py::make_transfer).
type Transfer struct {
	ID        string
	StopAreas []*StopArea
}

// IsStopAreaGroup reports whether el groups several stop_areas into one
// interchange.
func IsStopAreaGroup(el *osm.Element) bool {
	return el.Type == osm.ElementRelation && osm.TagIs(el, "public_transport", "stop_area_group")
}

// MakeTransfer resolves one stop_area_group relation into a Transfer,
// appending it to the city if it links more than one stop area.
func (c *City) MakeTransfer(group *osm.Element) {
	seen := map[string]bool{}
	var members []*StopArea
	for _, m := range group.Members {
		k := osm.MemberID(m)
		el, ok := c.Elements[k]
		if !ok {
			continue
		}
		if el.Tags == nil {
			c.Warn("An untagged object "+k+" in a stop_area_group", group)
			continue
		}
		if el.Type != osm.ElementRelation || !osm.TagIs(el, "type", "public_transport") || !osm.TagIs(el, "public_transport", "stop_area") {
			continue
		}
		stopAreas, known := c.ElementStopAreas[k]
		if !known {
			continue
		}
		sa := stopAreas[0]
		if seen[sa.ID] {
			continue
		}
		seen[sa.ID] = true
		if sa.Transfer != "" {
			c.Warn("Stop area "+k+" belongs to multiple interchanges", nil)
		}
		sa.Transfer = osm.ID(group)
		members = append(members, sa)
	}
	if len(members) > 1 {
		c.Transfers = append(c.Transfers, Transfer{ID: osm.ID(group), StopAreas: members})
	}
}
