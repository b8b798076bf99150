// Package scalebar computes the distance a map scalebar displays, the unit it is
// labelled with and the width it is drawn at.
//
// The computation is pure: it holds no state, never fails and degrades invalid input
// to a hidden, zero-length result.
package scalebar

import (
	"math"

	"scalebar-service/internal/units"
)

// Input describes one scalebar computation.
type Input struct {
	// AvailableWidth is the pixel budget the bar may occupy.
	AvailableWidth float64
	// GroundDistancePerPixel is expressed in BaseUnit.
	GroundDistancePerPixel float64
	// BaseUnit defaults to the base unit of System when zero.
	BaseUnit units.LinearUnit
	System   units.System
	// AlwaysFit picks the smallest nice number covering the maximum distance instead
	// of the largest one inside it.
	AlwaysFit bool
}

// Result is what a scalebar shows.
type Result struct {
	// MaxDistance is the distance covered by the full available width, in the base
	// unit of the selected system.
	MaxDistance units.Distance `json:"max_distance"`
	Distance    units.Distance `json:"distance"`
	RenderWidth float64        `json:"render_width"`
	Visible     bool           `json:"visible"`
	Label       string         `json:"label"`
}

// Engine carries the unit switch thresholds. The zero Engine uses the defaults.
type Engine struct {
	Thresholds units.Thresholds
}

// Compute runs the default engine.
func Compute(in Input) Result {
	return Engine{}.Compute(in)
}

// Compute derives the displayed distance and render width for in.
func (e Engine) Compute(in Input) Result {
	sysBase := in.System.BaseUnit()
	base := in.BaseUnit
	if base.ToMeters <= 0 {
		base = sysBase
	}
	if !finitePositive(in.AvailableWidth) || !finitePositive(in.GroundDistancePerPixel) {
		return hidden(sysBase)
	}
	maxDistance := base.ConvertTo(sysBase, in.AvailableWidth*in.GroundDistancePerPixel)
	if !finitePositive(maxDistance) {
		return hidden(sysBase)
	}

	best := NiceNumber(maxDistance, in.AlwaysFit)
	unit := units.SelectLinearUnit(best, sysBase, in.System, e.Thresholds)
	display := best
	if unit != sysBase {
		// Pick again in the display unit so the label stays a round number.
		display = NiceNumber(sysBase.ConvertTo(unit, maxDistance), in.AlwaysFit)
		best = unit.ConvertTo(sysBase, display)
	}
	renderWidth := best / maxDistance * in.AvailableWidth
	if !finitePositive(display) || !finitePositive(best) || !finitePositive(renderWidth) {
		return hidden(sysBase)
	}

	d := units.Distance{Value: display, Unit: unit}
	return Result{
		MaxDistance: units.Distance{Value: maxDistance, Unit: sysBase},
		Distance:    d,
		RenderWidth: renderWidth,
		Visible:     true,
		Label:       Label(d),
	}
}

func hidden(u units.LinearUnit) Result {
	return Result{
		MaxDistance: units.Distance{Unit: u},
		Distance:    units.Distance{Unit: u},
	}
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}
