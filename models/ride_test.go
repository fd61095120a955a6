package models

import "testing"

func TestSeatPriceCents(t *testing.T) {
	tests := []struct {
		name  string
		mode  string
		price int64
		seats int
		want  int64
	}{
		{"per seat unchanged", PricingPerSeat, 450, 3, 450},
		{"fixed split evenly", PricingFixed, 900, 3, 300},
		{"fixed split rounds up", PricingFixed, 1000, 3, 334},
		{"fixed single seat", PricingFixed, 700, 1, 700},
		{"fixed zero seats falls through", PricingFixed, 700, 0, 700},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Ride{PricingMode: tt.mode, PriceCents: tt.price, Seats: tt.seats}
			if got := r.SeatPriceCents(); got != tt.want {
				t.Errorf("SeatPriceCents() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSeatsLeft(t *testing.T) {
	r := Ride{Seats: 3, Passengers: []string{"a", "b"}}
	if got := r.SeatsLeft(); got != 1 {
		t.Errorf("SeatsLeft() = %d, want 1", got)
	}
}

func TestClampRating(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 1},
		{-2, 1},
		{1, 1},
		{3.44, 3.4},
		{3.45, 3.5},
		{5, 5},
		{6.3, 5},
	}
	for _, tt := range tests {
		if got := ClampRating(tt.in); got != tt.want {
			t.Errorf("ClampRating(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestConversationIDOrderIndependent(t *testing.T) {
	a := ConversationID("ride1", "alice", "bob")
	b := ConversationID("ride1", "bob", "alice")
	if a != b {
		t.Errorf("ConversationID not symmetric: %q vs %q", a, b)
	}
	c := ConversationID("ride2", "alice", "bob")
	if a == c {
		t.Error("ConversationID should differ across rides")
	}
}
