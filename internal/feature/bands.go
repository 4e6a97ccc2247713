package feature

import (
	"math"
	"regexp"
)

var ageBounds = []float64{16, 32, 48, 64}

// AgeBand maps an age to 0..4. NaN counts as age 0. Bounds belong to the lower band.
func AgeBand(age float64) int {
	if math.IsNaN(age) {
		age = 0
	}
	return band(age, ageBounds)
}

var fareBounds = []float64{10.5, 21.7, 39.7}

// FareBand maps a fare to 0..3. NaN counts as fare 0.
func FareBand(fare float64) int {
	if math.IsNaN(fare) {
		fare = 0
	}
	return band(fare, fareBounds)
}

func band(v float64, bounds []float64) int {
	for i, b := range bounds {
		if v <= b {
			return i
		}
	}
	return len(bounds)
}

// Title codes.
const (
	TitleMiss   = 1
	TitleMrs    = 2
	TitleMaster = 3
	TitleMr     = 4
	TitleRare   = 5
)

var titleGroups = map[string]string{
	"Capt": "Rare", "Col": "Rare", "Countess": "Rare", "Don": "Rare",
	"Dona": "Rare", "Dr": "Rare", "Jonkheer": "Rare", "Lady": "Rare",
	"Major": "Rare", "Rev": "Rare", "Sir": "Rare",
	"Mlle": "Miss", "Ms": "Miss",
	"Mme": "Mrs",
}

var titleCodes = map[string]int{
	"Miss":   TitleMiss,
	"Mrs":    TitleMrs,
	"Master": TitleMaster,
	"Mr":     TitleMr,
	"Rare":   TitleRare,
}

var honorific = regexp.MustCompile(` ([A-Za-z]+)\.`)

// ExtractTitle returns the honorific preceding the first period, or "".
func ExtractTitle(name string) string {
	m := honorific.FindStringSubmatch(name)
	if m == nil {
		return ""
	}
	return m[1]
}

// TitleCode groups an honorific and returns its code; anything unknown is Rare.
func TitleCode(title string) int {
	if g, ok := titleGroups[title]; ok {
		title = g
	}
	if c, ok := titleCodes[title]; ok {
		return c
	}
	return TitleRare
}
