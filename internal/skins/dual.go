package skins

import (
	"math"

	"scalebar-service/internal/units"
)

// DualUnitLine draws one line with the metric distance marked above it and the
// imperial distance marked below. The settings' system is ignored.
type DualUnitLine struct{}

func (DualUnitLine) Layout(width float64, s Settings) Layout {
	available := availableWidth(width)

	ms := s
	ms.System = units.Metric
	metric := s.Engine.Compute(ms.input(available, s.AlwaysFit))

	is := s
	is.System = units.Imperial
	imperial := s.Engine.Compute(is.input(available, s.AlwaysFit))

	if !metric.Visible && !imperial.Visible {
		return Layout{Style: StyleDualUnitLine, Result: metric, Secondary: &imperial}
	}

	dw := math.Max(metric.RenderWidth, imperial.RenderWidth)
	mid := LabelHeight + BarHeight
	lines := []Segment{
		{X1: 0, Y1: mid - BarHeight, X2: 0, Y2: mid + BarHeight},
		{X1: 0, Y1: mid, X2: dw, Y2: mid},
	}
	var labels []Label
	if metric.Visible {
		x := metric.RenderWidth
		lines = append(lines, Segment{X1: x, Y1: mid, X2: x, Y2: mid - BarHeight})
		labels = append(labels, Label{Text: metric.Label, X: x, Y: LabelHeight - 2, Anchor: AnchorEnd})
	}
	if imperial.Visible {
		x := imperial.RenderWidth
		lines = append(lines, Segment{X1: x, Y1: mid, X2: x, Y2: mid + BarHeight})
		labels = append(labels, Label{Text: imperial.Label, X: x, Y: mid + BarHeight + LabelHeight, Anchor: AnchorEnd})
	}
	return Layout{
		Style:     StyleDualUnitLine,
		OffsetX:   s.Alignment.OffsetX(width, dw),
		Width:     dw,
		Height:    2 * (LabelHeight + BarHeight),
		Visible:   true,
		Result:    metric,
		Secondary: &imperial,
		Lines:     lines,
		Labels:    labels,
	}
}
