package skins

import (
	"scalebar-service/internal/scalebar"
)

// divisionCandidates maps the leading digit of a nice number to the segment counts
// that keep every division label round, most preferred first.
var divisionCandidates = map[float64][]int{
	1: {4, 2, 1},
	2: {4, 2, 1},
	3: {3, 1},
	5: {5, 1},
}

// Divisions picks how many segments a bar of displayWidth showing r is split into.
// The widest label must fit inside one segment.
func Divisions(r scalebar.Result, displayWidth float64) int {
	candidates := divisionCandidates[scalebar.LeadingDigit(r.Distance.Value)]
	widest := labelWidth(r.Label)
	for _, n := range candidates {
		if displayWidth/float64(n) >= widest {
			return n
		}
	}
	return 1
}

// divisionLabels returns the labels at 0..n. The last one carries the unit.
func divisionLabels(r scalebar.Result, n int, segWidth, y float64) []Label {
	labels := make([]Label, 0, n+1)
	for i := 0; i <= n; i++ {
		text := scalebar.LabelString(r.Distance.Value * float64(i) / float64(n))
		anchor := AnchorMiddle
		switch i {
		case 0:
			anchor = AnchorStart
		case n:
			text = r.Label
			anchor = AnchorEnd
		}
		labels = append(labels, Label{Text: text, X: segWidth * float64(i), Y: y, Anchor: anchor})
	}
	return labels
}

// AlternatingBar draws the distance as alternately filled segments, labelled at
// every division.
type AlternatingBar struct{}

func (AlternatingBar) Layout(width float64, s Settings) Layout {
	r := s.Engine.Compute(s.input(availableWidth(width), true))
	if !r.Visible {
		return hiddenLayout(StyleAlternatingBar, r)
	}
	dw := r.RenderWidth
	n := Divisions(r, dw)
	seg := dw / float64(n)

	rects := make([]Rect, 0, n)
	for i := 0; i < n; i++ {
		rects = append(rects, Rect{X: seg * float64(i), Y: 0, W: seg, H: BarHeight, Filled: i%2 == 0})
	}
	return Layout{
		Style:   StyleAlternatingBar,
		OffsetX: s.Alignment.OffsetX(width, dw),
		Width:   dw,
		Height:  BarHeight + LabelHeight,
		Visible: true,
		Result:  r,
		Rects:   rects,
		Labels:  divisionLabels(r, n, seg, BarHeight+LabelHeight),
	}
}

// GraduatedLine draws a line with a tick and a label at every division.
type GraduatedLine struct{}

func (GraduatedLine) Layout(width float64, s Settings) Layout {
	r := s.Engine.Compute(s.input(availableWidth(width), true))
	if !r.Visible {
		return hiddenLayout(StyleGraduatedLine, r)
	}
	dw := r.RenderWidth
	n := Divisions(r, dw)
	seg := dw / float64(n)

	lines := []Segment{{X1: 0, Y1: BarHeight, X2: dw, Y2: BarHeight}}
	for i := 0; i <= n; i++ {
		top := BarHeight / 2
		if i == 0 || i == n {
			top = 0
		}
		x := seg * float64(i)
		lines = append(lines, Segment{X1: x, Y1: BarHeight, X2: x, Y2: top})
	}
	return Layout{
		Style:   StyleGraduatedLine,
		OffsetX: s.Alignment.OffsetX(width, dw),
		Width:   dw,
		Height:  BarHeight + LabelHeight,
		Visible: true,
		Result:  r,
		Lines:   lines,
		Labels:  divisionLabels(r, n, seg, BarHeight+LabelHeight),
	}
}
