package units

import (
	"math"
	"testing"

	nerr "github.com/Dante-U/nervi/pkg/errors"
)

func TestConversions(t *testing.T) {
	if got := MToMM(2.8); !ApproxEqual(got, 2800, 1e-9) {
		t.Errorf("MToMM(2.8) = %v, want 2800", got)
	}
	if got := MMToM(170); got != 0.17 {
		t.Errorf("MMToM(170) = %v, want 0.17", got)
	}
	if got := MM3ToM3(1e9); got != 1 {
		t.Errorf("MM3ToM3(1e9) = %v, want 1", got)
	}
	if got := Deg(Rad(37.5)); !ApproxEqual(got, 37.5, 1e-12) {
		t.Errorf("Deg(Rad(37.5)) = %v", got)
	}
}

func TestTriangleHelpers(t *testing.T) {
	// 3-4-5 triangle.
	ang := AdjOppToAng(4, 3)
	if !ApproxEqual(ang, Deg(math.Atan(0.75)), 1e-12) {
		t.Errorf("AdjOppToAng(4,3) = %v", ang)
	}
	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"hyp", Hyp(4, 3), 5},
		{"ang_opp_to_hyp", AngOppToHyp(ang, 3), 5},
		{"ang_adj_to_hyp", AngAdjToHyp(ang, 4), 5},
		{"ang_hyp_to_opp", AngHypToOpp(ang, 5), 3},
		{"ang_hyp_to_adj", AngHypToAdj(ang, 5), 4},
		{"ang_adj_to_opp", AngAdjToOpp(ang, 4), 3},
		{"ang_opp_to_adj", AngOppToAdj(ang, 3), 4},
		{"adj_hyp_to_ang", AdjHypToAng(4, 5), ang},
		{"opp_hyp_to_ang", OppHypToAng(3, 5), ang},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !ApproxEqual(tt.got, tt.want, 1e-9) {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

// Recovering the adjacent side from hyp(adj, opp) must give back adj.
func TestTriangleRoundTrip(t *testing.T) {
	for adj := 1.0; adj <= 5000; adj *= 3.7 {
		for opp := 0.5; opp <= 5000; opp *= 4.1 {
			h := Hyp(adj, opp)
			a := AdjOppToAng(adj, opp)
			back := AngHypToAdj(a, h)
			if !ApproxEqual(back, adj, 1e-9*math.Max(1, adj)) {
				t.Fatalf("adj=%v opp=%v: recovered %v", adj, opp, back)
			}
			if hyp := AngAdjToHyp(a, adj); !ApproxEqual(hyp, h, 1e-9*h) {
				t.Fatalf("adj=%v opp=%v: AngAdjToHyp = %v, want %v", adj, opp, hyp, h)
			}
		}
	}
}

func TestCheckMeters(t *testing.T) {
	tests := []struct {
		name string
		v    float64
		code nerr.Code
	}{
		{"ok", 2.8, ""},
		{"zero", 0, nerr.ErrCodeInvalidInput},
		{"negative", -1, nerr.ErrCodeInvalidInput},
		{"nan", math.NaN(), nerr.ErrCodeInvalidInput},
		{"millimeters", 2800, nerr.ErrCodeUnitConfusion},
		{"exactly limit", MaxPlausibleMeters, nerr.ErrCodeUnitConfusion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckMeters("stairs", "totalRise", tt.v)
			if tt.code == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !nerr.Is(err, tt.code) {
				t.Fatalf("error = %v, want code %s", err, tt.code)
			}
			if nerr.GetParam(err) != "totalRise" {
				t.Errorf("param = %q, want totalRise", nerr.GetParam(err))
			}
		})
	}
}

func TestCheckRangeAndSign(t *testing.T) {
	if err := CheckRange("spiralStairs", "turns", 1.5, 0.25, 10); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := CheckRange("spiralStairs", "turns", 11, 0.25, 10); err == nil {
		t.Error("expected out of range error")
	}
	if err := CheckPositive("handrail", "postInterval", 0); err == nil {
		t.Error("expected error for zero")
	}
	if err := CheckNonNegative("handrail", "totalRise", 0); err != nil {
		t.Errorf("zero should be accepted: %v", err)
	}
	if err := CheckNonNegative("handrail", "totalRise", -0.1); err == nil {
		t.Error("expected error for negative")
	}
}
