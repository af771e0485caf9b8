package submission

import (
	"errors"
	"strings"
	"testing"
)

func validRequest() *Request {
	return &Request{
		ReporterName: "Jane Citizen",
		ContactInfo:  "jane@example.com",
		CrimeType:    "Phishing",
		Description:  "Received a fake bank login page.",
		Latitude:     "-6.7924",
		Longitude:    "39.2083",
	}
}

func TestValidateAccepts(t *testing.T) {
	v, err := Validate(validRequest())
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if v.Latitude != -6.7924 || v.Longitude != 39.2083 {
		t.Fatalf("coords = %v/%v", v.Latitude, v.Longitude)
	}
}

func TestValidateRequiredFieldOrder(t *testing.T) {
	cases := []struct {
		clear string
		want  string
	}{
		{"reporter_name", "reporter_name"},
		{"contact_info", "contact_info"},
		{"crime_type", "crime_type"},
		{"description", "description"},
		{"latitude", "latitude"},
		{"longitude", "longitude"},
	}
	for _, tc := range cases {
		req := validRequest()
		switch tc.clear {
		case "reporter_name":
			req.ReporterName = "  "
		case "contact_info":
			req.ContactInfo = ""
		case "crime_type":
			req.CrimeType = ""
		case "description":
			req.Description = ""
		case "latitude":
			req.Latitude = ""
		case "longitude":
			req.Longitude = ""
		}
		_, err := Validate(req)
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("%s: err = %v, want *ValidationError", tc.clear, err)
		}
		if vErr.Field != tc.want {
			t.Fatalf("%s: reported field = %s", tc.clear, vErr.Field)
		}
	}

	// When several fields are missing, the first in form order wins.
	req := validRequest()
	req.ContactInfo = ""
	req.Longitude = ""
	_, err := Validate(req)
	var vErr *ValidationError
	if !errors.As(err, &vErr) || vErr.Field != "contact_info" {
		t.Fatalf("err = %v, want contact_info validation error", err)
	}
}

func TestValidateCoordinateBounds(t *testing.T) {
	accept := [][2]string{
		{"90", "180"},
		{"-90", "-180"},
		{"0", "0"},
	}
	for _, c := range accept {
		req := validRequest()
		req.Latitude, req.Longitude = c[0], c[1]
		if _, err := Validate(req); err != nil {
			t.Fatalf("lat=%s lng=%s rejected: %v", c[0], c[1], err)
		}
	}

	reject := []struct {
		lat, lng, field string
	}{
		{"90.0001", "0", "latitude"},
		{"-90.0001", "0", "latitude"},
		{"0", "180.0001", "longitude"},
		{"0", "-180.0001", "longitude"},
		{"abc", "0", "latitude"},
		{"0", "abc", "longitude"},
	}
	for _, c := range reject {
		req := validRequest()
		req.Latitude, req.Longitude = c.lat, c.lng
		_, err := Validate(req)
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("lat=%s lng=%s: err = %v, want *ValidationError", c.lat, c.lng, err)
		}
		if vErr.Field != c.field {
			t.Fatalf("lat=%s lng=%s: field = %s, want %s", c.lat, c.lng, vErr.Field, c.field)
		}
	}
}

func TestValidateEstimatedLoss(t *testing.T) {
	req := validRequest()
	req.EstimatedLoss = "25000.50"
	v, err := Validate(req)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if v.Loss != 25000.50 {
		t.Fatalf("loss = %v", v.Loss)
	}

	req.EstimatedLoss = "-5"
	if _, err := Validate(req); err == nil {
		t.Fatal("negative loss accepted")
	}

	req.EstimatedLoss = ""
	v, err = Validate(req)
	if err != nil {
		t.Fatalf("validate without loss: %v", err)
	}
	if v.Loss != 0 {
		t.Fatalf("default loss = %v", v.Loss)
	}
}

func TestClassifyContact(t *testing.T) {
	email, phone := ClassifyContact("jane@example.com")
	if email != "jane@example.com" || phone != "" {
		t.Fatalf("got %q/%q", email, phone)
	}

	email, phone = ClassifyContact("+255 712 345 678")
	if email != "" || phone != "+255 712 345 678" {
		t.Fatalf("got %q/%q", email, phone)
	}

	email, phone = ClassifyContact("0712345678")
	if email != "" || phone != "0712345678" {
		t.Fatalf("got %q/%q", email, phone)
	}
}

func TestSanitizeStripsMarkup(t *testing.T) {
	out := Sanitize("<b>Jane</b> Citizen")
	if strings.Contains(out, "<") || strings.Contains(out, ">") {
		t.Fatalf("markup survived: %q", out)
	}
	if !strings.Contains(out, "Jane") || !strings.Contains(out, "Citizen") {
		t.Fatalf("text lost: %q", out)
	}

	out = Sanitize("<script>alert(1)</script>hello")
	if strings.Contains(out, "<script") {
		t.Fatalf("script survived: %q", out)
	}
	if !strings.Contains(out, "hello") {
		t.Fatalf("text lost: %q", out)
	}
}
