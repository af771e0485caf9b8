package geo

import "testing"

var testPlaces = []ReferencePlace{
	{Name: "Dar es Salaam", Region: "Dar es Salaam", Latitude: -6.7924, Longitude: 39.2083},
	{Name: "Arusha", Region: "Arusha", Latitude: -3.3869, Longitude: 36.6830},
	{Name: "Dodoma", Region: "Dodoma", Latitude: -6.1659, Longitude: 35.7497},
}

func TestResolveNearestPlace(t *testing.T) {
	r := NewResolver(testPlaces)

	city, region := r.Resolve(-6.8, 39.25)
	if city != "Dar es Salaam" || region != "Dar es Salaam" {
		t.Fatalf("got %s/%s, want Dar es Salaam", city, region)
	}

	city, region = r.Resolve(-3.4, 36.7)
	if city != "Arusha" || region != "Arusha" {
		t.Fatalf("got %s/%s, want Arusha", city, region)
	}
}

func TestResolveUnknownWhenOutsideThreshold(t *testing.T) {
	r := NewResolver(testPlaces)

	// Mid-ocean, far from every reference place.
	city, region := r.Resolve(0, 0)
	if city != UnknownPlace || region != UnknownPlace {
		t.Fatalf("got %s/%s, want %s", city, region, UnknownPlace)
	}
}

func TestResolvePrefersClosestMatch(t *testing.T) {
	r := NewResolver(testPlaces)

	// Between Dodoma and Dar es Salaam, slightly closer to Dodoma.
	city, _ := r.Resolve(-6.2, 36.0)
	if city != "Dodoma" {
		t.Fatalf("got %s, want Dodoma", city)
	}
}

func TestResolveEmptyTable(t *testing.T) {
	r := NewResolver(nil)
	city, region := r.Resolve(-6.8, 39.25)
	if city != UnknownPlace || region != UnknownPlace {
		t.Fatalf("got %s/%s, want %s", city, region, UnknownPlace)
	}
}
