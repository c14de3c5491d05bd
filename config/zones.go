package config

// Coordinate is a point in decimal degrees
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ZoneBoundary is a rectangle given by its min (Start) and max (End) corners
type ZoneBoundary struct {
	Start Coordinate `json:"start"`
	End   Coordinate `json:"end"`
}

// Zone is a configured administrative region
type Zone struct {
	Value    string       `json:"value"`
	Label    string       `json:"label"`
	Region   string       `json:"region"`
	Boundary ZoneBoundary `json:"boundary"`
}

// Department is a functional work category independent of geography
type Department struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Zones is the static zone table. Loaded once at startup, never mutated.
// Order matters: ResolveZone returns the first containing zone.
var Zones = []Zone{
	{
		Value:  "zone_1",
		Label:  "Zone 1 - North",
		Region: "North",
		Boundary: ZoneBoundary{
			Start: Coordinate{Lat: 13.15, Lng: 79.75},
			End:   Coordinate{Lat: 13.45, Lng: 80.10},
		},
	},
	{
		Value:  "zone_2",
		Label:  "Zone 2 - North-East",
		Region: "North-East",
		Boundary: ZoneBoundary{
			Start: Coordinate{Lat: 13.00, Lng: 80.10},
			End:   Coordinate{Lat: 13.30, Lng: 80.35},
		},
	},
	{
		Value:  "zone_3",
		Label:  "Zone 3 - Central",
		Region: "Central",
		Boundary: ZoneBoundary{
			Start: Coordinate{Lat: 12.95, Lng: 79.90},
			End:   Coordinate{Lat: 13.15, Lng: 80.10},
		},
	},
	{
		Value:  "zone_4",
		Label:  "Zone 4 - South-West",
		Region: "South-West",
		Boundary: ZoneBoundary{
			Start: Coordinate{Lat: 12.80, Lng: 79.75},
			End:   Coordinate{Lat: 13.00, Lng: 79.95},
		},
	},
	{
		Value:  "zone_5",
		Label:  "Zone 5 - South-East",
		Region: "South-East",
		Boundary: ZoneBoundary{
			Start: Coordinate{Lat: 12.80, Lng: 80.00},
			End:   Coordinate{Lat: 13.00, Lng: 80.20},
		},
	},
}

// Departments is the static department table consumed by the assignment UI
// and the triage endpoints.
var Departments = []Department{
	{Value: "roads", Label: "Roads & Infrastructure"},
	{Value: "water", Label: "Water & Sewerage"},
	{Value: "electricity", Label: "Electricity"},
	{Value: "sanitation", Label: "Sanitation & Waste"},
	{Value: "parks", Label: "Parks & Recreation"},
	{Value: "drainage", Label: "Storm Drainage"},
	{Value: "traffic", Label: "Traffic Management"},
	{Value: "general", Label: "General Services"},
}

// ResolveZone returns the first zone whose boundary contains the point, or
// nil when the point falls outside every configured zone. Zones may overlap
// or leave gaps; configuration order is the tie-break.
func ResolveZone(lat, lng float64) *Zone {
	for i := range Zones {
		b := Zones[i].Boundary
		if lat >= b.Start.Lat && lat <= b.End.Lat && lng >= b.Start.Lng && lng <= b.End.Lng {
			return &Zones[i]
		}
	}
	return nil
}

// ZoneByValue returns the zone with the given identifier, or nil
func ZoneByValue(value string) *Zone {
	for i := range Zones {
		if Zones[i].Value == value {
			return &Zones[i]
		}
	}
	return nil
}

// ZoneCenter returns the midpoint of the zone's boundary
func ZoneCenter(zone *Zone) (float64, float64) {
	b := zone.Boundary
	return (b.Start.Lat + b.End.Lat) / 2, (b.Start.Lng + b.End.Lng) / 2
}

// DepartmentByValue returns the department with the given identifier, or nil
func DepartmentByValue(value string) *Department {
	for i := range Departments {
		if Departments[i].Value == value {
			return &Departments[i]
		}
	}
	return nil
}
