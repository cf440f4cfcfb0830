package osmsource

import (
	"fmt"
	"io"
	"strconv"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/transit-tools/subway-validator/geo"
	"github.com/transit-tools/subway-validator/osm"
)

// compiledXPath caches the handful of expressions the XML loader
// reuses across every node/way/relation in a document, since
// xpath.Compile parses the expression text every call.
var compiledXPath = map[string]*xpath.Expr{
	"nodes":      mustCompile("//node"),
	"ways":       mustCompile("//way"),
	"relations":  mustCompile("//relation"),
	"tags":       mustCompile("tag"),
	"wayNodes":   mustCompile("nd"),
	"members":    mustCompile("member"),
}

func mustCompile(expr string) *xpath.Expr {
	e, err := xpath.Compile(expr)
	if err != nil {
		panic(fmt.Sprintf("osmsource: invalid built-in xpath %q: %v", expr, err))
	}
	return e
}

// LoadXML parses an OSM XML document (as produced by Overpass's
// `out body;` with XML output, or a .osm export) into osm.Elements.
func LoadXML(r io.Reader) ([]*osm.Element, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("osmsource: parsing osm xml: %w", err)
	}

	var elements []*osm.Element

	for _, n := range xmlquery.QuerySelectorAll(doc, compiledXPath["nodes"]) {
		el, err := nodeFromXML(n)
		if err != nil {
			return nil, err
		}
		elements = append(elements, el)
	}
	for _, n := range xmlquery.QuerySelectorAll(doc, compiledXPath["ways"]) {
		el, err := wayFromXML(n)
		if err != nil {
			return nil, err
		}
		elements = append(elements, el)
	}
	for _, n := range xmlquery.QuerySelectorAll(doc, compiledXPath["relations"]) {
		el, err := relationFromXML(n)
		if err != nil {
			return nil, err
		}
		elements = append(elements, el)
	}

	return elements, nil
}

func attrInt64(n *xmlquery.Node, name string) (int64, error) {
	v := n.SelectAttr(name)
	return strconv.ParseInt(v, 10, 64)
}

func attrFloat(n *xmlquery.Node, name string) (float64, error) {
	v := n.SelectAttr(name)
	if v == "" {
		return 0, nil
	}
	return strconv.ParseFloat(v, 64)
}

func tagsFromXML(n *xmlquery.Node) map[string]string {
	children := xmlquery.QuerySelectorAll(n, compiledXPath["tags"])
	if len(children) == 0 {
		return nil
	}
	tags := make(map[string]string, len(children))
	for _, c := range children {
		k := c.SelectAttr("k")
		v := c.SelectAttr("v")
		if k != "" {
			tags[k] = v
		}
	}
	return tags
}

func nodeFromXML(n *xmlquery.Node) (*osm.Element, error) {
	id, err := attrInt64(n, "id")
	if err != nil {
		return nil, fmt.Errorf("osmsource: node missing id: %w", err)
	}
	lat, err := attrFloat(n, "lat")
	if err != nil {
		return nil, err
	}
	lon, err := attrFloat(n, "lon")
	if err != nil {
		return nil, err
	}
	return &osm.Element{
		Type:   osm.ElementNode,
		ID:     id,
		Tags:   tagsFromXML(n),
		Lat:    lat,
		Lon:    lon,
		Center: &geo.Point{Lon: lon, Lat: lat},
	}, nil
}

func wayFromXML(n *xmlquery.Node) (*osm.Element, error) {
	id, err := attrInt64(n, "id")
	if err != nil {
		return nil, fmt.Errorf("osmsource: way missing id: %w", err)
	}
	var nodes []int64
	for _, nd := range xmlquery.QuerySelectorAll(n, compiledXPath["wayNodes"]) {
		ref, err := attrInt64(nd, "ref")
		if err != nil {
			return nil, fmt.Errorf("osmsource: way %d has a node with no ref: %w", id, err)
		}
		nodes = append(nodes, ref)
	}
	return &osm.Element{
		Type:  osm.ElementWay,
		ID:    id,
		Tags:  tagsFromXML(n),
		Nodes: nodes,
	}, nil
}

func relationFromXML(n *xmlquery.Node) (*osm.Element, error) {
	id, err := attrInt64(n, "id")
	if err != nil {
		return nil, fmt.Errorf("osmsource: relation missing id: %w", err)
	}
	var members []osm.Member
	for _, m := range xmlquery.QuerySelectorAll(n, compiledXPath["members"]) {
		ref, err := attrInt64(m, "ref")
		if err != nil {
			return nil, fmt.Errorf("osmsource: relation %d has a member with no ref: %w", id, err)
		}
		t, err := osm.ParseElementType(m.SelectAttr("type"))
		if err != nil {
			return nil, fmt.Errorf("osmsource: relation %d: %w", id, err)
		}
		members = append(members, osm.Member{Type: t, Ref: ref, Role: m.SelectAttr("role")})
	}
	return &osm.Element{
		Type:    osm.ElementRelation,
		ID:      id,
		Tags:    tagsFromXML(n),
		Members: members,
	}, nil
}
