package pkg

const (
	// bump whenever the on-disk graph layout changes
	GRAPH_FORMAT_VERSION = 1
	GRAPH_MAGIC          = "OSMROUTER-GRAPH"

	DEFAULT_SPEED_KMH = 30.0
	// reverse_cost placeholder used by osm2po/pgRouting for one-way edges
	PGR_NO_REVERSE_COST = 1000000.0
)

// OsmHighwayType. road class of an edge, stored in the graph artifact & exported as clazz.
type OsmHighwayType uint8

const (
	MOTORWAY OsmHighwayType = iota
	TRUNK
	PRIMARY
	SECONDARY
	TERTIARY
	RESIDENTIAL
	SERVICE
	UNCLASSIFIED
	MOTORWAY_LINK
	TRUNK_LINK
	PRIMARY_LINK
	SECONDARY_LINK
	TERTIARY_LINK
	LIVING_STREET
	ROAD
	TRACK
	MOTORROAD
	UNKNOWN
)

// urutan harus sama dengan enum di atas
var highwayTypeNames = []string{
	"motorway", "trunk", "primary", "secondary", "tertiary",
	"residential", "service", "unclassified",
	"motorway_link", "trunk_link", "primary_link", "secondary_link", "tertiary_link",
	"living_street", "road", "track", "motorroad", "unknown",
}

var highwayTypeByName = func() map[string]OsmHighwayType {
	m := make(map[string]OsmHighwayType, len(highwayTypeNames))
	for i, name := range highwayTypeNames {
		m[name] = OsmHighwayType(i)
	}
	return m
}()

func (h OsmHighwayType) String() string {
	if int(h) < len(highwayTypeNames) {
		return highwayTypeNames[h]
	}
	return "unknown"
}

// GetHighwayType. value of the osm highway tag -> road class, UNKNOWN for anything else
func GetHighwayType(highway string) OsmHighwayType {
	if h, ok := highwayTypeByName[highway]; ok {
		return h
	}
	return UNKNOWN
}
