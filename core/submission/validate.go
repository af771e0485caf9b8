package submission

import (
	"net/mail"
	"strconv"
	"strings"
)

// Request carries the raw submission fields as received from the
// form. Coordinates and the loss amount arrive as strings because
// browsers post them that way; parsing is part of validation.
type Request struct {
	ReporterName  string
	ContactInfo   string
	CrimeType     string
	Description   string
	Latitude      string
	Longitude     string
	Address       string
	EstimatedLoss string
}

// validated is a Request after the checks in Validate pass, with
// coordinates and loss parsed into numbers.
type validated struct {
	ReporterName string
	ContactInfo  string
	CrimeType    string
	Description  string
	Latitude     float64
	Longitude    float64
	Address      string
	Loss         float64
}

// Validate checks required fields in a fixed order so the first
// missing field is always the one reported, then parses and
// bounds-checks the coordinates. Both poles and the antimeridian are
// accepted.
func Validate(req *Request) (*validated, error) {
	required := []struct {
		field, value string
	}{
		{"reporter_name", req.ReporterName},
		{"contact_info", req.ContactInfo},
		{"crime_type", req.CrimeType},
		{"description", req.Description},
		{"latitude", req.Latitude},
		{"longitude", req.Longitude},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return nil, &ValidationError{Field: r.field, Reason: "required field is missing"}
		}
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(req.Latitude), 64)
	if err != nil {
		return nil, &ValidationError{Field: "latitude", Reason: "must be a number"}
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(req.Longitude), 64)
	if err != nil {
		return nil, &ValidationError{Field: "longitude", Reason: "must be a number"}
	}
	if lat < -90 || lat > 90 {
		return nil, &ValidationError{Field: "latitude", Reason: "must be between -90 and 90"}
	}
	if lng < -180 || lng > 180 {
		return nil, &ValidationError{Field: "longitude", Reason: "must be between -180 and 180"}
	}

	loss := 0.0
	if s := strings.TrimSpace(req.EstimatedLoss); s != "" {
		loss, err = strconv.ParseFloat(s, 64)
		if err != nil || loss < 0 {
			return nil, &ValidationError{Field: "estimated_loss", Reason: "must be a non-negative number"}
		}
	}

	return &validated{
		ReporterName: strings.TrimSpace(req.ReporterName),
		ContactInfo:  strings.TrimSpace(req.ContactInfo),
		CrimeType:    strings.TrimSpace(req.CrimeType),
		Description:  strings.TrimSpace(req.Description),
		Latitude:     lat,
		Longitude:    lng,
		Address:      strings.TrimSpace(req.Address),
		Loss:         loss,
	}, nil
}

// ClassifyContact splits a free-form contact string into an email or
// a phone number. Anything that does not parse as a bare address is
// treated as a phone number.
func ClassifyContact(contact string) (email, phone string) {
	addr, err := mail.ParseAddress(contact)
	if err == nil && addr.Address == contact {
		return contact, ""
	}
	return "", contact
}
