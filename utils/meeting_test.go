package utils

import "testing"

func TestResolveMeetingPoint(t *testing.T) {
	tests := []struct {
		name      string
		campus    string
		depart    string
		wantLabel string
	}{
		{"label match wins", "main", "parking visiteurs", "Parking visiteurs"},
		{"unknown label falls back to default", "main", "gare de Lyon", "Entrée principale"},
		{"unknown campus falls back to main", "nowhere", "", "Entrée principale"},
		{"campus key is case insensitive", "SCIENCES", "", "Bibliothèque universitaire"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ResolveMeetingPoint(tt.campus, tt.depart)
			if p.Label != tt.wantLabel {
				t.Errorf("ResolveMeetingPoint(%q, %q).Label = %q, want %q",
					tt.campus, tt.depart, p.Label, tt.wantLabel)
			}
			if p.Lat == 0 || p.Lng == 0 {
				t.Error("meeting point missing coordinates")
			}
		})
	}
}

func TestIsKnownCampus(t *testing.T) {
	if !IsKnownCampus("main") || !IsKnownCampus(" Sport ") {
		t.Error("known campuses should be recognized")
	}
	if IsKnownCampus("mars") {
		t.Error("unknown campus should not be recognized")
	}
}
