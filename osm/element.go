// Package osm models raw OpenStreetMap elements (nodes, ways, relations)
// and the fixed-point center calculation that gives every way and
// relation an approximate coordinate.
package osm

import (
	"fmt"

	"github.com/transit-tools/subway-validator/geo"
)

// ElementType is the kind of OSM element.
type ElementType uint8

const (
	ElementNode ElementType = iota
	ElementWay
	ElementRelation
)

func (t ElementType) String() string {
	switch t {
	case ElementNode:
		return "node"
	case ElementWay:
		return "way"
	case ElementRelation:
		return "relation"
	default:
		return "unknown"
	}
}

// letter returns the single-character type prefix used in stable ids.
func (t ElementType) letter() string {
	switch t {
	case ElementNode:
		return "n"
	case ElementWay:
		return "w"
	case ElementRelation:
		return "r"
	default:
		return "?"
	}
}

// ParseElementType converts an Overpass/OSM XML type string to an
// ElementType.
func ParseElementType(s string) (ElementType, error) {
	switch s {
	case "node":
		return ElementNode, nil
	case "way":
		return ElementWay, nil
	case "relation":
		return ElementRelation, nil
	default:
		return 0, fmt.Errorf("unknown element type: %q", s)
	}
}

// Member is a relation member: a reference to another element plus its
// role within the relation (e.g. "platform", "stop", "").
type Member struct {
	Type ElementType
	Ref  int64
	Role string
}

// Element is a single OSM node, way, or relation.
type Element struct {
	Type Type
	ID   int64
	Tags map[string]string

	// Lon, Lat are populated for nodes.
	Lon, Lat float64

	// Nodes holds the way's member node ids, in order, for ways.
	Nodes []int64

	// Members holds relation members, in order, for relations.
	Members []Member

	// Center is the element's computed or native center, filled by
	// CalculateCenters for ways and relations, and self-referential for
	// nodes.
	Center *geo.Point
}

// Type is an alias kept for readability at call sites; Element.Type is
// an ElementType.
type Type = ElementType

// ID returns the stable "<n|w|r><id>" identifier for el, matching
// subways/osm_element.py::el_id.
func ID(el *Element) string {
	return fmt.Sprintf("%s%d", el.Type.letter(), el.ID)
}

// MemberID returns the stable "<n|w|r><id>" identifier a relation
// member refers to, without needing the referenced Element itself.
func MemberID(m Member) string {
	return fmt.Sprintf("%s%d", m.Type.letter(), m.Ref)
}

// Tag returns el's tag value for key, and whether it was present.
func Tag(el *Element, key string) (string, bool) {
	if el.Tags == nil {
		return "", false
	}
	v, ok := el.Tags[key]
	return v, ok
}

// TagIs reports whether el's tag key equals value.
func TagIs(el *Element, key, value string) bool {
	v, ok := Tag(el, key)
	return ok && v == value
}

// Network resolves the network name for a route/route_master relation,
// preferring network:metro, falling back to network, then operator.
func Network(el *Element) string {
	for _, k := range []string{"network:metro", "network", "operator"} {
		if v, ok := Tag(el, k); ok {
			return v
		}
	}
	return ""
}
