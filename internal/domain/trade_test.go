package domain

import (
	"testing"
	"time"
)

func validTrade() Trade {
	return Trade{
		ID:        "t-1",
		MarketID:  "0xabc",
		Side:      SideBuy,
		Price:     0.42,
		Size:      120,
		Timestamp: time.Unix(1700000000, 0),
	}
}

func TestNewTradePriceRange(t *testing.T) {
	tests := []struct {
		name    string
		price   float64
		wantErr bool
	}{
		{"zero is valid", 0.0, false},
		{"one is valid", 1.0, false},
		{"mid is valid", 0.65, false},
		{"negative rejected", -0.01, true},
		{"above one rejected", 1.01, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := validTrade()
			tr.Price = tt.price
			_, err := NewTrade(tr)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewTrade(price=%g) error = %v, wantErr %v", tt.price, err, tt.wantErr)
			}
			if tt.wantErr {
				ve, ok := err.(*ValidationError)
				if !ok {
					t.Fatalf("expected *ValidationError, got %T", err)
				}
				if ve.Field != "price" {
					t.Errorf("error names field %q, want price", ve.Field)
				}
			}
		})
	}
}

func TestNewTradeSizeAndSide(t *testing.T) {
	tr := validTrade()
	tr.Size = -5
	if _, err := NewTrade(tr); err == nil {
		t.Error("negative size should fail validation")
	}

	tr = validTrade()
	tr.Side = Side("HOLD")
	if _, err := NewTrade(tr); err == nil {
		t.Error("unknown side should fail validation")
	}
}

func TestWhaleClassification(t *testing.T) {
	tests := []struct {
		size float64
		want bool
	}{
		{499.99, false},
		{500.0, true}, // boundary is inclusive
		{500.01, true},
		{0, false},
	}

	for _, tt := range tests {
		tr := validTrade()
		tr.Size = tt.size
		got, err := NewTrade(tr)
		if err != nil {
			t.Fatalf("NewTrade: %v", err)
		}
		if got.IsWhale() != tt.want {
			t.Errorf("IsWhale() with size %g = %v, want %v", tt.size, got.IsWhale(), tt.want)
		}
	}
}

func TestMeetsThresholdCustom(t *testing.T) {
	tr := validTrade()
	tr.Size = 250
	got, err := NewTrade(tr)
	if err != nil {
		t.Fatalf("NewTrade: %v", err)
	}
	if !got.MeetsThreshold(250) {
		t.Error("size 250 should meet threshold 250")
	}
	if got.MeetsThreshold(250.01) {
		t.Error("size 250 should not meet threshold 250.01")
	}
}

func TestParseSide(t *testing.T) {
	tests := []struct {
		raw  string
		want Side
		ok   bool
	}{
		{"BUY", SideBuy, true},
		{"buy", SideBuy, true},
		{"Sell", SideSell, true},
		{" sell ", SideSell, true},
		{"HOLD", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseSide(tt.raw)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseSide(%q) = (%q, %v), want (%q, %v)", tt.raw, got, ok, tt.want, tt.ok)
		}
	}
}
