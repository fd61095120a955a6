package utils

import "strings"

// MeetingPoint is a named pickup location on or near a campus.
type MeetingPoint struct {
	Label string  `json:"label"`
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
}

// campusMeetingPoints maps a campus key to its known pickup spots. The first
// entry of each campus is the default.
var campusMeetingPoints = map[string][]MeetingPoint{
	"main": {
		{Label: "Entrée principale", Lat: 48.84620, Lng: 2.35591},
		{Label: "Parking visiteurs", Lat: 48.84710, Lng: 2.35802},
		{Label: "Arrêt tram T3a", Lat: 48.84412, Lng: 2.35377},
	},
	"sciences": {
		{Label: "Bibliothèque universitaire", Lat: 48.84015, Lng: 2.35522},
		{Label: "Restaurant universitaire", Lat: 48.83927, Lng: 2.35689},
	},
	"sport": {
		{Label: "Gymnase", Lat: 48.83560, Lng: 2.36120},
	},
}

// ResolveMeetingPoint picks the meeting point whose label best matches the
// depart label of a ride, falling back to the campus default. The returned
// value is snapshotted onto bookings so later edits to the table never move an
// agreed pickup.
func ResolveMeetingPoint(campus, departLabel string) MeetingPoint {
	points, ok := campusMeetingPoints[strings.ToLower(strings.TrimSpace(campus))]
	if !ok || len(points) == 0 {
		points = campusMeetingPoints["main"]
	}

	needle := strings.ToLower(strings.TrimSpace(departLabel))
	if needle != "" {
		for _, p := range points {
			if strings.Contains(strings.ToLower(p.Label), needle) || strings.Contains(needle, strings.ToLower(p.Label)) {
				return p
			}
		}
	}
	return points[0]
}

// IsKnownCampus reports whether a campus has configured meeting points.
func IsKnownCampus(campus string) bool {
	_, ok := campusMeetingPoints[strings.ToLower(strings.TrimSpace(campus))]
	return ok
}

// KnownCampuses lists the campuses with configured meeting points.
func KnownCampuses() []string {
	keys := make([]string, 0, len(campusMeetingPoints))
	for k := range campusMeetingPoints {
		keys = append(keys, k)
	}
	return keys
}
