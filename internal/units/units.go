// Package units defines the linear units and unit systems a scalebar is labelled with.
package units

import (
	"fmt"
	"strings"
)

// System groups linear units into a family used for relabelling.
type System int

const (
	Metric System = iota
	Imperial
)

func (s System) String() string {
	switch s {
	case Metric:
		return "metric"
	case Imperial:
		return "imperial"
	default:
		return fmt.Sprintf("System(%d)", int(s))
	}
}

// BaseUnit returns the smallest unit of the system's display ladder.
func (s System) BaseUnit() LinearUnit {
	if s == Imperial {
		return Feet
	}
	return Meters
}

// ParseSystem accepts "metric" or "imperial" in any case.
func ParseSystem(s string) (System, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "metric":
		return Metric, nil
	case "imperial":
		return Imperial, nil
	}
	return Metric, fmt.Errorf("unknown unit system %q", s)
}

// LinearUnit is a unit of distance with an exact factor to meters.
type LinearUnit struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Abbreviation string  `json:"abbreviation"`
	ToMeters     float64 `json:"to_meters"`
}

var (
	Meters        = LinearUnit{ID: "m", Name: "meters", Abbreviation: "m", ToMeters: 1}
	Kilometers    = LinearUnit{ID: "km", Name: "kilometers", Abbreviation: "km", ToMeters: 1000}
	Feet          = LinearUnit{ID: "ft", Name: "feet", Abbreviation: "ft", ToMeters: 0.3048}
	Yards         = LinearUnit{ID: "yd", Name: "yards", Abbreviation: "yd", ToMeters: 0.9144}
	Miles         = LinearUnit{ID: "mi", Name: "miles", Abbreviation: "mi", ToMeters: 1609.344}
	NauticalMiles = LinearUnit{ID: "nmi", Name: "nautical miles", Abbreviation: "nmi", ToMeters: 1852}
)

var byID = map[string]LinearUnit{
	"m":              Meters,
	"meter":          Meters,
	"meters":         Meters,
	"metre":          Meters,
	"metres":         Meters,
	"km":             Kilometers,
	"kilometer":      Kilometers,
	"kilometers":     Kilometers,
	"kilometre":      Kilometers,
	"kilometres":     Kilometers,
	"ft":             Feet,
	"foot":           Feet,
	"feet":           Feet,
	"yd":             Yards,
	"yard":           Yards,
	"yards":          Yards,
	"mi":             Miles,
	"mile":           Miles,
	"miles":          Miles,
	"nmi":            NauticalMiles,
	"nautical miles": NauticalMiles,
}

// ParseLinearUnit resolves an id, abbreviation or name.
func ParseLinearUnit(s string) (LinearUnit, error) {
	u, ok := byID[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return LinearUnit{}, fmt.Errorf("unknown linear unit %q", s)
	}
	return u, nil
}

// ConvertTo converts v expressed in u into the unit to.
func (u LinearUnit) ConvertTo(to LinearUnit, v float64) float64 {
	if u.ToMeters == to.ToMeters {
		return v
	}
	return v * u.ToMeters / to.ToMeters
}

// System reports the family u belongs to. Yards and nautical miles count as imperial.
func (u LinearUnit) System() System {
	switch u.ID {
	case Meters.ID, Kilometers.ID:
		return Metric
	}
	return Imperial
}

func (u LinearUnit) String() string {
	return u.Abbreviation
}

// Thresholds are the distances, in each system's base unit, from which the larger unit
// of the ladder is used.
type Thresholds struct {
	Meters float64 `yaml:"meters" json:"meters"`
	Feet   float64 `yaml:"feet" json:"feet"`
}

// DefaultThresholds switches to kilometers at 1000 m and to miles at 5280 ft.
var DefaultThresholds = Thresholds{Meters: 1000, Feet: 5280}

// OrDefault replaces non-positive fields with the defaults.
func (t Thresholds) OrDefault() Thresholds {
	if t.Meters <= 0 {
		t.Meters = DefaultThresholds.Meters
	}
	if t.Feet <= 0 {
		t.Feet = DefaultThresholds.Feet
	}
	return t
}

// SelectLinearUnit picks the most readable unit of sys for distance, which is
// expressed in base.
func SelectLinearUnit(distance float64, base LinearUnit, sys System, th Thresholds) LinearUnit {
	th = th.OrDefault()
	switch sys {
	case Imperial:
		if base.ConvertTo(Feet, distance) >= th.Feet {
			return Miles
		}
		return Feet
	default:
		if base.ConvertTo(Meters, distance) >= th.Meters {
			return Kilometers
		}
		return Meters
	}
}
