package units

import "fmt"

// Distance is a non-negative length with its unit attached.
type Distance struct {
	Value float64    `json:"value"`
	Unit  LinearUnit `json:"unit"`
}

// In returns d re-expressed in u.
func (d Distance) In(u LinearUnit) Distance {
	return Distance{Value: d.Unit.ConvertTo(u, d.Value), Unit: u}
}

// Meters returns d's length in meters.
func (d Distance) Meters() float64 {
	return d.Value * d.Unit.ToMeters
}

func (d Distance) String() string {
	return fmt.Sprintf("%g %s", d.Value, d.Unit.Abbreviation)
}
