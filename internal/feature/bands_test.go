package feature

import (
	"math"
	"testing"
)

func TestAgeBand_BoundariesGoToLowerBand(t *testing.T) {
	cases := []struct {
		age  float64
		want int
	}{
		{math.NaN(), 0},
		{0, 0},
		{0.42, 0},
		{16, 0},
		{16.5, 1},
		{32, 1},
		{32.01, 2},
		{48, 2},
		{49, 3},
		{64, 3},
		{64.5, 4},
		{80, 4},
	}
	for _, c := range cases {
		if got := AgeBand(c.age); got != c.want {
			t.Fatalf("AgeBand(%v) = %d, want %d", c.age, got, c.want)
		}
	}
}

// Regression: the second fare band is bounded on both sides.
func TestFareBand_CorrectedBoundaries(t *testing.T) {
	cases := []struct {
		fare float64
		want int
	}{
		{math.NaN(), 0},
		{7.25, 0},
		{10.5, 0},
		{10.51, 1},
		{21.7, 1},
		{21.71, 2},
		{39.7, 2},
		{39.71, 3},
		{512.33, 3},
	}
	for _, c := range cases {
		if got := FareBand(c.fare); got != c.want {
			t.Fatalf("FareBand(%v) = %d, want %d", c.fare, got, c.want)
		}
	}
}

func TestExtractTitle(t *testing.T) {
	cases := []struct{ name, want string }{
		{"Braund, Mr. Owen Harris", "Mr"},
		{"Cumings, Mrs. John Bradley (Florence)", "Mrs"},
		{"Rothes, the Countess. of (Lucy Noel)", "Countess"},
		{"Palsson, Master. Gosta Leonard", "Master"},
		{"no honorific here", ""},
		{"Uruchurtu, Don. Manuel E", "Don"},
		{"Reynaldo, Ms. Encarnacion", "Ms"},
	}
	for _, c := range cases {
		if got := ExtractTitle(c.name); got != c.want {
			t.Fatalf("ExtractTitle(%q) = %q, want %q", c.name, got, c.want)
		}
	}
}

func TestTitleCode_Grouping(t *testing.T) {
	rare := []string{
		"Capt", "Col", "Countess", "Don", "Dona", "Dr", "Jonkheer", "Lady",
		"Major", "Rev", "Sir", "", "Baron",
	}
	groups := map[int][]string{
		TitleMiss:   {"Miss", "Mlle", "Ms"},
		TitleMrs:    {"Mrs", "Mme"},
		TitleMaster: {"Master"},
		TitleMr:     {"Mr"},
		TitleRare:   rare,
	}
	for want, titles := range groups {
		for _, in := range titles {
			if got := TitleCode(in); got != want {
				t.Fatalf("TitleCode(%q) = %d, want %d", in, got, want)
			}
		}
	}
}
