package geo

import "math"

// MatchThreshold is the maximum straight-line distance, in decimal
// degrees, at which a coordinate is attributed to a reference place.
// Distances are plain Euclidean in degree space, not great-circle:
// at Tanzanian latitudes 1.0 degree is roughly 110 km, which is
// coarse but sufficient for bucketing reports by nearest city.
const MatchThreshold = 1.0

// UnknownPlace is the city and region reported for coordinates that
// fall outside MatchThreshold of every reference place.
const UnknownPlace = "Unknown"

// ReferencePlace is a named city with its canonical coordinates.
type ReferencePlace struct {
	Name      string
	Region    string
	Latitude  float64
	Longitude float64
}

// Resolver maps raw coordinates to the nearest known place.
type Resolver struct {
	places []ReferencePlace
}

func NewResolver(places []ReferencePlace) *Resolver {
	return &Resolver{places: places}
}

// Resolve returns the city and region of the nearest reference place
// within MatchThreshold, or UnknownPlace for both when nothing is
// close enough.
func (r *Resolver) Resolve(lat, lng float64) (city, region string) {
	best := math.Inf(1)
	city, region = UnknownPlace, UnknownPlace
	for _, p := range r.places {
		d := math.Hypot(lat-p.Latitude, lng-p.Longitude)
		if d < MatchThreshold && d < best {
			best = d
			city, region = p.Name, p.Region
		}
	}
	return city, region
}
