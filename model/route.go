package model

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/transit-tools/subway-validator/colors"
	"github.com/transit-tools/subway-validator/geo"
	"github.com/transit-tools/subway-validator/osm"
)

const (
	allowedAngleBetweenStops    = 45.0 // degrees
	disallowedAngleBetweenStops = 20.0 // degrees
)

var startEndTimesRE = regexp.MustCompile(`(\d{2}):(\d{2})-(\d{2}):(\d{2})`)

// Route is one directional variant of a line, built from a single
// route relation.
type Route struct {
	City      *City
	Element   *osm.Element
	ID        string

	Ref        string
	Name       string
	Mode       string
	Colour     string
	Infill     string
	Network    string
	Interval   int // seconds, 0 if unknown
	Duration   int // seconds, 0 if unknown
	StartTime  [2]int
	EndTime    [2]int
	HasTimes   bool
	IsCircular bool

	Stops []*RouteStop

	// Tracks is the longest contiguous track polyline built from
	// member ways, in route order. May be empty.
	Tracks []geo.Point

	FirstStopOnRailsIndex int
	LastStopOnRailsIndex  int
}

// IsRoute reports whether el qualifies as a route relation for the
// given target mode set (subways/structure/route.py::Route.is_route).
func IsRoute(el *osm.Element, modes map[string]bool) bool {
	if el.Type != osm.ElementRelation || !osm.TagIs(el, "type", "route") {
		return false
	}
	if el.Members == nil {
		return false
	}
	route, ok := osm.Tag(el, "route")
	if !ok || !modes[route] {
		return false
	}
	if hasConstructionTag(el) {
		return false
	}
	_, hasRef := osm.Tag(el, "ref")
	_, hasName := osm.Tag(el, "name")
	return hasRef || hasName
}

// NewRoute builds a Route from relation, optionally inheriting tags
// from a route_master element.
func NewRoute(relation *osm.Element, city *City, master *osm.Element) *Route {
	r := &Route{
		City:    city,
		Element: relation,
		ID:      osm.ID(relation),
	}
	r.processTags(master)
	stopPositionElements := r.processStopMembers()
	r.processTracks(stopPositionElements)
	return r
}

func tagOrMaster(tags map[string]string, masterTags map[string]string, key string) (string, bool) {
	if v, ok := tags[key]; ok {
		return v, true
	}
	if masterTags != nil {
		if v, ok := masterTags[key]; ok {
			return v, true
		}
	}
	return "", false
}

func (r *Route) processTags(master *osm.Element) {
	tags := r.Element.Tags
	var masterTags map[string]string
	if master != nil {
		masterTags = master.Tags
	}

	_, hasRef := tagOrMaster(tags, masterTags, "ref")
	if !hasRef {
		r.City.Notice("Missing ref on a route", r.Element)
	}
	if ref, ok := tagOrMaster(tags, masterTags, "ref"); ok {
		r.Ref = ref
	} else if name, ok := tags["name"]; ok {
		r.Ref = name
	}
	r.Name = tags["name"]
	r.Mode = tags["route"]

	_, hasColour := tagOrMaster(tags, masterTags, "colour")
	if !hasColour && r.Mode != "tram" {
		r.City.Notice("Missing colour on a route", r.Element)
	}
	colourRaw, _ := tagOrMaster(tags, masterTags, "colour")
	if c, err := colors.Normalize(colourRaw); err != nil {
		r.City.Warn(err.Error(), r.Element)
	} else {
		r.Colour = c
	}
	infillRaw, _ := tagOrMaster(tags, masterTags, "colour:infill")
	if c, err := colors.Normalize(infillRaw); err != nil {
		r.City.Warn(err.Error(), r.Element)
	} else {
		r.Infill = c
	}

	r.Network = osm.Network(r.Element)
	if iv := routeIntervalSeconds(tags); iv > 0 {
		r.Interval = iv
	} else if masterTags != nil {
		r.Interval = routeIntervalSeconds(masterTags)
	}
	if d := routeDurationSeconds(tags); d > 0 {
		r.Duration = d
	} else if masterTags != nil {
		r.Duration = routeDurationSeconds(masterTags)
	}

	openingHours, _ := tagOrMaster(tags, masterTags, "opening_hours")
	if start, end, ok := parseTimeRange(openingHours); ok {
		r.StartTime, r.EndTime, r.HasTimes = start, end, true
	}

	if tags["public_transport:version"] == "1" {
		r.City.Warn("Public transport version is 1, which means the route is an unsorted pile of objects", r.Element)
	}
}

// parseTimeRange implements the simplified opening_hours parse of
// subways/structure/route.py::parse_time_range: take the first
// HH:MM-HH:MM substring, or treat "24/7" as the whole day.
func parseTimeRange(openingHours string) (start, end [2]int, ok bool) {
	if openingHours == "24/7" {
		return [2]int{0, 0}, [2]int{24, 0}, true
	}
	m := startEndTimesRE.FindStringSubmatch(openingHours)
	if m == nil {
		return start, end, false
	}
	nums := make([]int, 4)
	for i, s := range m[1:] {
		nums[i], _ = strconv.Atoi(s)
	}
	if nums[1] > 59 || nums[3] > 59 {
		return start, end, false
	}
	return [2]int{nums[0], nums[1]}, [2]int{nums[2], nums[3]}, true
}

// osmIntervalToSeconds parses OSM's interval/headway/duration value
// format: HH:MM:SS, HH:MM, MM, or M.
func osmIntervalToSeconds(s string) int {
	parts := strings.Split(s, ":")
	var hours, minutes, seconds int
	var err error
	switch len(parts) {
	case 1:
		minutes, err = strconv.Atoi(parts[0])
	case 2:
		hours, err = strconv.Atoi(parts[0])
		if err == nil {
			minutes, err = strconv.Atoi(parts[1])
		}
	case 3:
		hours, err = strconv.Atoi(parts[0])
		if err == nil {
			minutes, err = strconv.Atoi(parts[1])
		}
		if err == nil {
			seconds, err = strconv.Atoi(parts[2])
		}
	default:
		return 0
	}
	if err != nil || hours < 0 || minutes < 0 || seconds < 0 {
		return 0
	}
	if len(parts) > 1 && (seconds >= 60 || minutes >= 60) {
		return 0
	}
	return seconds + 60*minutes + 3600*hours
}

func intervalFromTags(tags map[string]string, keys ...string) int {
	var value string
	for _, k := range keys {
		if v, ok := tags[k]; ok {
			value = v
			break
		}
	}
	if value == "" {
		for _, k := range keys {
			for tagName, v := range tags {
				if strings.HasPrefix(tagName, k+":") {
					value = v
					break
				}
			}
			if value != "" {
				break
			}
		}
	}
	if value == "" {
		return 0
	}
	return osmIntervalToSeconds(value)
}

func routeIntervalSeconds(tags map[string]string) int {
	return intervalFromTags(tags, "interval", "headway")
}

func routeDurationSeconds(tags map[string]string) int {
	return intervalFromTags(tags, "duration")
}

// processStopMembers runs the repeat-stop/circular-detection state
// machine over the relation's ordered members
// (subways/structure/route.py::process_stop_members).
func (r *Route) processStopMembers() []*osm.Element {
	stationsSeen := map[*StopArea]bool{}
	seenStops := false
	seenPlatforms := false
	repeatPos := -1 // -1 means "not in repeat mode"

	var stopPositionElements []*osm.Element

	for _, m := range r.Element.Members {
		if strings.Contains(m.Role, "inactive") {
			continue
		}
		k := osm.MemberID(m)

		if stopAreas, known := r.City.ElementStopAreas[k]; known {
			sa := stopAreas[0]
			if len(stopAreas) > 1 {
				r.City.Error(fmt.Sprintf("Ambiguous station %s in route. Please use stop_position or split interchange stations", sa.Name), r.Element)
			}
			el := r.City.Elements[k]
			actualRole := ActualRole(el, m.Role, r.City.Modes)
			if actualRole == "" {
				switch {
				case IsStation(el, r.City.Modes):
					// Not included due to a prior "multiple stations" error; no
					// further message needed.
				case el.Tags["railway"] == "station" || el.Tags["railway"] == "halt":
					r.City.Error(fmt.Sprintf("Missing station=%s on a %s", r.Mode, m.Role), el)
				default:
					if !IsTrack(el) {
						r.City.Warn(fmt.Sprintf("Unknown member type for %s %d in route", m.Type, m.Ref), r.Element)
					}
				}
				continue
			}
			if m.Role != "" && !strings.Contains(m.Role, actualRole) {
				r.City.Warn(fmt.Sprintf("Wrong role '%s' for %s %s", m.Role, actualRole, k), r.Element)
			}

			var stop *RouteStop
			if repeatPos < 0 {
				switch {
				case len(r.Stops) == 0 || !stationsSeen[sa]:
					stop = NewRouteStop(sa)
					r.Stops = append(r.Stops, stop)
					stationsSeen[sa] = true
				case r.Stops[len(r.Stops)-1].StopArea.ID == sa.ID:
					stop = r.Stops[len(r.Stops)-1]
				default:
					circular := (seenStops && seenPlatforms) ||
						(actualRole == "stop" && !seenPlatforms) ||
						(actualRole == "platform" && !seenStops)
					if circular {
						stop = NewRouteStop(sa)
						r.Stops = append(r.Stops, stop)
						stationsSeen[sa] = true
					} else {
						repeatPos = 0
					}
				}
			}
			if repeatPos >= 0 {
				if repeatPos >= len(r.Stops) {
					continue
				}
				if (actualRole == "stop" && seenStops) || (actualRole == "platform" && seenPlatforms) {
					r.City.Error(fmt.Sprintf("Found an out-of-place %s: \"%s\" (%s)", actualRole, el.Tags["name"], k), r.Element)
					continue
				}
				for repeatPos < len(r.Stops) && r.Stops[repeatPos].StopArea.ID != sa.ID {
					repeatPos++
				}
				if repeatPos >= len(r.Stops) {
					r.City.Error(fmt.Sprintf("Incorrect order of %ss at %s", actualRole, k), r.Element)
					continue
				}
				stop = r.Stops[repeatPos]
			}

			stop.Add(el, m.Role, r.Element, r.City)
			if repeatPos < 0 {
				seenStops = seenStops || stop.seenStop || stop.seenStation
				seenPlatforms = seenPlatforms || stop.seenPlatform()
			}
			if IsStop(el) {
				stopPositionElements = append(stopPositionElements, el)
			}
			continue
		}

		el, ok := r.City.Elements[k]
		if !ok {
			if strings.Contains(m.Role, "stop") || strings.Contains(m.Role, "platform") {
				r.City.CriticalError(fmt.Sprintf("%s %s %d for route relation %d is not in the dataset", m.Role, m.Type, m.Ref, r.Element.ID), r.Element)
			}
			continue
		}
		if el.Tags == nil {
			r.City.Error(fmt.Sprintf("Untagged object %s in a route", k), r.Element)
			continue
		}

		if hasConstructionTag(el) {
			role := m.Role
			if role == "" {
				role = "feature"
			}
			r.City.Warn(fmt.Sprintf("Under construction %s %s in route. Consider setting 'inactive' role or removing construction attributes", role, k), r.Element)
			continue
		}

		switch {
		case IsStation(el, r.City.Modes):
			// Not included due to a prior "multiple stations" error; no
			// further message needed.
		case el.Tags["railway"] == "station" || el.Tags["railway"] == "halt":
			r.City.Error(fmt.Sprintf("Missing station=%s on a %s", r.Mode, m.Role), el)
		default:
			actualRole := ActualRole(el, m.Role, r.City.Modes)
			if actualRole != "" {
				r.City.Error(fmt.Sprintf("%s %s %d is not connected to a station in route", actualRole, m.Type, m.Ref), r.Element)
			} else if !IsTrack(el) {
				r.City.Warn(fmt.Sprintf("Unknown member type for %s %d in route", m.Type, m.Ref), r.Element)
			}
		}
	}

	return stopPositionElements
}

// buildLongestLine concatenates member ways carrying rail track into
// the longest contiguous node-id chain
// (subways/structure/route.py::build_longest_line).
func (r *Route) buildLongestLine() (track []string, lineNodes map[string]bool) {
	lineNodes = map[string]bool{}
	var lastTrack, cur []string
	warnedAboutHoles := false
	isFirst := true

	for _, m := range r.Element.Members {
		el, ok := r.City.Elements[osm.MemberID(m)]
		if !ok || !IsTrack(el) {
			continue
		}
		if len(el.Nodes) < 2 {
			r.City.Error("Cannot find nodes in a railway", el)
			continue
		}
		nodes := make([]string, len(el.Nodes))
		for i, n := range el.Nodes {
			nodes[i] = fmt.Sprintf("n%d", n)
		}
		if m.Role == "backward" {
			reverseStrings(nodes)
		}
		for _, n := range nodes {
			lineNodes[n] = true
		}

		switch {
		case len(cur) == 0:
			cur = append(cur, nodes...)
		case nodes[0] == cur[len(cur)-1]:
			cur = append(cur, nodes[1:]...)
		case nodes[len(nodes)-1] == cur[len(cur)-1]:
			rev := append([]string(nil), nodes[:len(nodes)-1]...)
			reverseStrings(rev)
			cur = append(cur, rev...)
		case isFirst && (cur[0] == nodes[0] || cur[0] == nodes[len(nodes)-1]):
			reverseStrings(cur)
			if nodes[0] == cur[len(cur)-1] {
				cur = append(cur, nodes[1:]...)
			} else {
				rev := append([]string(nil), nodes[:len(nodes)-1]...)
				reverseStrings(rev)
				cur = append(cur, rev...)
			}
		default:
			if !warnedAboutHoles {
				r.City.Warn(fmt.Sprintf("Hole in route rails near node %s", cur[len(cur)-1]), r.Element)
				warnedAboutHoles = true
			}
			if len(cur) > len(lastTrack) {
				lastTrack = cur
			}
			cur = nil
		}
		isFirst = false
	}
	if len(cur) > len(lastTrack) {
		lastTrack = cur
	}

	dedup := make([]string, 0, len(lastTrack))
	for i, n := range lastTrack {
		if i == 0 || lastTrack[i-1] != n {
			dedup = append(dedup, n)
		}
	}
	return dedup, lineNodes
}

func reverseStrings(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func (r *Route) processTracks(stopPositionElements []*osm.Element) {
	trackIDs, lineNodes := r.buildLongestLine()

	for _, stopEl := range stopPositionElements {
		id := osm.ID(stopEl)
		if !lineNodes[id] {
			r.City.Warn(fmt.Sprintf("Stop position \"%s\" (%s) is not on tracks", stopEl.Tags["name"], id), r.Element)
		}
	}

	r.Tracks = make([]geo.Point, 0, len(trackIDs))
	missing := false
	for _, id := range trackIDs {
		el, ok := r.City.Elements[id]
		if !ok || el.Center == nil {
			missing = true
			r.City.Warn(fmt.Sprintf("The dataset is missing the railway tracks node %s", id), r.Element)
			break
		}
		r.Tracks = append(r.Tracks, *el.Center)
	}
	if missing {
		r.Tracks = nil
	}

	if len(r.Stops) <= 1 {
		return
	}

	r.IsCircular = r.Stops[0].StopArea.ID == r.Stops[len(r.Stops)-1].StopArea.ID
	if r.IsCircular && len(r.Tracks) > 0 && r.Tracks[0] != r.Tracks[len(r.Tracks)-1] {
		r.City.Warn("Non-closed rail sequence in a circular route", r.Element)
	}

	projected := r.projectStopsOnLine()
	r.checkAndRecoverStopsOrder(projected)
	r.applyProjectedStopsData(projected)
}

// stopProjection mirrors one entry of projected_stops_data's
// stops_on_longest_line.
type stopProjection struct {
	index            int
	coords           *geo.Point
	positionsOnRails []float64
}

type projectedStopsData struct {
	firstIndex int
	lastIndex  int
	onLine     []stopProjection
}

func (r *Route) projectStopsOnLine() projectedStopsData {
	projections := make([]geo.LineProjection, len(r.Stops))
	for i, s := range r.Stops {
		projections[i] = geo.ProjectOnLine(s.Stop, r.Tracks, maxDistanceStopToLineConst)
	}

	nearTracks := func(i int) bool {
		if !projections[i].Found {
			return false
		}
		return geo.Distance(r.Stops[i].Stop, projections[i].ProjectedPoint) <= maxDistanceStopToLineConst
	}

	first := 0
	for first < len(r.Stops) && !nearTracks(first) {
		first++
	}
	last := len(r.Stops) - 1
	for last > first && !nearTracks(last) {
		last--
	}

	var result projectedStopsData
	result.firstIndex = first
	result.lastIndex = last

	for i, rs := range r.Stops {
		if i < first || i > last {
			continue
		}
		if !projections[i].Found {
			r.City.Error(fmt.Sprintf("Stop \"%s\" %v is nowhere near the tracks", rs.StopArea.Name, rs.Stop), r.Element)
			continue
		}
		sp := stopProjection{index: i, positionsOnRails: projections[i].PositionsOnLine}
		point := projections[i].ProjectedPoint
		d := geo.Distance(rs.Stop, point)
		if d > maxDistanceStopToLineConst {
			r.City.Notice(fmt.Sprintf("Stop \"%s\" %v is %d meters from the tracks", rs.StopArea.Name, rs.Stop, int(d+0.5)), r.Element)
		} else {
			p := point
			sp.coords = &p
		}
		result.onLine = append(result.onLine, sp)
	}
	return result
}

const maxDistanceStopToLineConst = 50.0

func (r *Route) applyProjectedStopsData(data projectedStopsData) {
	r.FirstStopOnRailsIndex = data.firstIndex
	r.LastStopOnRailsIndex = data.lastIndex
	for _, sp := range data.onLine {
		rs := r.Stops[sp.index]
		rs.PositionsOnRails = sp.positionsOnRails
		if sp.coords != nil {
			rs.Stop = *sp.coords
		}
	}
}

func (r *Route) checkStopsOrderByAngle() (warnings, errs []string) {
	for i := 1; i < len(r.Stops)-1; i++ {
		angle := geo.AngleBetween(r.Stops[i-1].Stop, r.Stops[i].Stop, r.Stops[i+1].Stop)
		if angle < allowedAngleBetweenStops {
			msg := fmt.Sprintf("Angle between stops around \"%s\" %v is too narrow, %v degrees", r.Stops[i].StopArea.Name, r.Stops[i].Stop, angle)
			if angle < disallowedAngleBetweenStops {
				errs = append(errs, msg)
			} else {
				warnings = append(warnings, msg)
			}
		}
	}
	return warnings, errs
}

func (r *Route) checkStopsOrderOnTracksDirect(sequence []stopProjection) string {
	allowedViolations := 0
	if r.IsCircular {
		allowedViolations = 1
	}
	maxPos := -1.0
	for _, sp := range sequence {
		occurrence := 0
		for occurrence < len(sp.positionsOnRails) && sp.positionsOnRails[occurrence] < maxPos {
			occurrence++
		}
		if occurrence == len(sp.positionsOnRails) {
			if allowedViolations > 0 {
				occurrence--
				allowedViolations--
			} else {
				rs := r.Stops[sp.index]
				return fmt.Sprintf("Stops on tracks are unordered near \"%s\" %v", rs.StopArea.Name, rs.Stop)
			}
		}
		maxPos = sp.positionsOnRails[occurrence]
	}
	return ""
}

func reversedProjections(in []stopProjection) []stopProjection {
	out := make([]stopProjection, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}

func (r *Route) checkStopsOrderOnTracks(data *projectedStopsData) string {
	errMsg := r.checkStopsOrderOnTracksDirect(data.onLine)
	if errMsg == "" {
		return ""
	}
	reversedErr := r.checkStopsOrderOnTracksDirect(reversedProjections(data.onLine))
	if reversedErr == "" {
		r.City.Warn("Tracks seem to go in the opposite direction to stops", r.Element)
		reversePoints(r.Tracks)
		*data = r.projectStopsOnLine()
		return ""
	}
	return errMsg
}

func reversePoints(s []geo.Point) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func (r *Route) checkAndRecoverStopsOrder(data projectedStopsData) {
	warnings, errs := r.checkStopsOrderByAngle()
	if onTracksErr := r.checkStopsOrderOnTracks(&data); onTracksErr != "" {
		errs = append(errs, onTracksErr)
	}
	if len(warnings) == 0 && len(errs) == 0 {
		return
	}

	resorted := r.tryResortStops()
	if resorted {
		for _, msg := range warnings {
			r.City.Notice(msg, r.Element)
		}
		for _, msg := range errs {
			r.City.Warn("Fixed with recovery data: "+msg, r.Element)
		}
		return
	}
	for _, msg := range warnings {
		r.City.Notice(msg, r.Element)
	}
	for _, msg := range errs {
		r.City.Error(msg, r.Element)
	}
}

// tryResortStops attempts to recover a broken stop order using the
// city's recovery data, matching stop names against a previously
// recorded itinerary within displacement tolerance
// (subways/structure/route.py::try_resort_stops).
func (r *Route) tryResortStops() bool {
	byName := map[string]*RouteStop{}
	for _, s := range r.Stops {
		name := s.StopArea.Station.Name
		if name == "?" && s.StopArea.Station.IntName != "" {
			name = s.StopArea.Station.IntName
		}
		if _, dup := byName[name]; dup {
			return false
		}
		byName[name] = s
	}

	itineraries := r.City.Recovery.Lookup(r.Colour, r.Ref)
	if len(itineraries) == 0 {
		return false
	}

	names := make([]string, 0, len(byName))
	for n := range byName {
		names = append(names, n)
	}
	sort.Strings(names)

	var suitable [][]string // itinerary stop-name sequences that match
	var suitableIdx []int
	for idx, it := range itineraries {
		itNames := make([]string, len(it.Stations))
		for i, st := range it.Stations {
			itNames[i] = st.Name
		}
		sortedIt := append([]string(nil), itNames...)
		sort.Strings(sortedIt)
		if len(sortedIt) != len(names) || !equalStrings(sortedIt, names) {
			continue
		}
		bigDisplacement := false
		for _, st := range it.Stations {
			rs, ok := byName[st.Name]
			if !ok {
				continue
			}
			if geo.Distance(st.Center, rs.StopArea.Station.Center) > displacementToleranceConst {
				bigDisplacement = true
				break
			}
		}
		if !bigDisplacement {
			suitable = append(suitable, itNames)
			suitableIdx = append(suitableIdx, idx)
		}
	}

	var chosen []string
	switch len(suitable) {
	case 0:
		return false
	case 1:
		chosen = suitable[0]
	default:
		fromTag, to := r.Element.Tags["from"], r.Element.Tags["to"]
		if fromTag == "" && to == "" {
			return false
		}
		var matches []int
		for _, idx := range suitableIdx {
			it := itineraries[idx]
			if (fromTag != "" && it.From == fromTag) || (to != "" && it.To == to) {
				matches = append(matches, idx)
			}
		}
		if len(matches) != 1 {
			return false
		}
		itNames := make([]string, len(itineraries[matches[0]].Stations))
		for i, st := range itineraries[matches[0]].Stations {
			itNames[i] = st.Name
		}
		chosen = itNames
	}

	newStops := make([]*RouteStop, 0, len(chosen))
	for _, name := range chosen {
		newStops = append(newStops, byName[name])
	}
	r.Stops = newStops
	return true
}

const displacementToleranceConst = 300.0

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// CalculateDistances walks the stops and assigns each one's Distance,
// preferring distance_on_line when it is consistent with the direct
// distance (subways/structure/route.py::calculate_distances).
func (r *Route) CalculateDistances() {
	dist := 0
	vertex := 0
	for i, stop := range r.Stops {
		if i > 0 {
			direct := geo.Distance(stop.Stop, r.Stops[i-1].Stop)
			usedLine := false
			if i >= r.FirstStopOnRailsIndex && i <= r.LastStopOnRailsIndex {
				if d, next, ok := geo.DistanceOnLine(r.Stops[i-1].Stop, stop.Stop, r.Tracks, vertex); ok {
					if d >= direct-10 && d <= direct*2 {
						vertex = next
						dist += int(d + 0.5)
						usedLine = true
					}
				}
			}
			if !usedLine {
				dist += int(direct + 0.5)
			}
		}
		stop.Distance = dist
	}
}

// EndTransfers returns the (from, to) transfer-or-stoparea ids at the
// route's endpoints, collapsing a shared transfer id that would
// otherwise look circular (subways/structure/route.py::get_end_transfers).
func (r *Route) EndTransfers() (string, string) {
	first, last := r.Stops[0].StopArea, r.Stops[len(r.Stops)-1].StopArea
	if first.Transfer != "" && first.Transfer == last.Transfer {
		return first.ID, last.ID
	}
	from := first.Transfer
	if from == "" {
		from = first.ID
	}
	to := last.Transfer
	if to == "" {
		to = last.ID
	}
	return from, to
}

// TransfersSequence returns the transfer-or-stoparea id of every stop,
// in order.
func (r *Route) TransfersSequence() []string {
	seq := make([]string, len(r.Stops))
	for i, s := range r.Stops {
		id := s.StopArea.Transfer
		if id == "" {
			id = s.StopArea.ID
		}
		seq[i] = id
	}
	first, last := r.Stops[0].StopArea, r.Stops[len(r.Stops)-1].StopArea
	if first.Transfer != "" && first.Transfer == last.Transfer {
		seq[0], seq[len(seq)-1] = r.EndTransfers()
	}
	return seq
}

// AreTracksComplete reports whether every stop lies within the
// on-rails stretch.
func (r *Route) AreTracksComplete() bool {
	return r.FirstStopOnRailsIndex == 0 && r.LastStopOnRailsIndex == len(r.Stops)-1
}

// ExtendedTracks prepends/appends the coordinates of stops outside the
// on-rails stretch to Tracks, giving routes with partial or no rail
// coverage a visible polyline end to end.
func (r *Route) ExtendedTracks() []geo.Point {
	if r.FirstStopOnRailsIndex >= len(r.Stops) {
		tracks := make([]geo.Point, len(r.Stops))
		for i, s := range r.Stops {
			tracks[i] = s.Stop
		}
		return tracks
	}
	var tracks []geo.Point
	for i, s := range r.Stops {
		if i < r.FirstStopOnRailsIndex {
			tracks = append(tracks, s.Stop)
		}
	}
	tracks = append(tracks, r.Tracks...)
	for i, s := range r.Stops {
		if i > r.LastStopOnRailsIndex {
			tracks = append(tracks, s.Stop)
		}
	}
	return tracks
}

// TruncatedTracks clips tracks' leading/trailing segments to the
// first/last stop locations.
func (r *Route) TruncatedTracks(tracks []geo.Point) []geo.Point {
	if r.IsCircular {
		out := make([]geo.Point, len(tracks))
		copy(out, tracks)
		return out
	}

	out := make([]geo.Point, len(tracks))
	copy(out, tracks)

	seg2, u2, ok2 := geo.FindSegment(r.Stops[len(r.Stops)-1].Stop, out, 0)
	if ok2 {
		if u2 == 0 {
			seg2--
		}
		if seg2+2 < len(out) {
			out = out[:seg2+2]
		}
		if len(out) > 0 {
			out[len(out)-1] = r.Stops[len(r.Stops)-1].Stop
		}
	}

	seg1, u1, ok1 := geo.FindSegment(r.Stops[0].Stop, out, 0)
	if ok1 {
		if u1 == 1 {
			seg1++
		}
		if seg1 > 0 && seg1 < len(out) {
			out = out[seg1:]
		}
		if len(out) > 0 {
			out[0] = r.Stops[0].Stop
		}
	}

	return out
}
