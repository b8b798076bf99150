package skins

// Line draws the distance as a line with vertical marks at both ends and a single
// label below it.
type Line struct{}

func (Line) Layout(width float64, s Settings) Layout {
	r := s.Engine.Compute(s.input(availableWidth(width), s.AlwaysFit))
	if !r.Visible {
		return hiddenLayout(StyleLine, r)
	}
	dw := r.RenderWidth
	return Layout{
		Style:   StyleLine,
		OffsetX: s.Alignment.OffsetX(width, dw),
		Width:   dw,
		Height:  BarHeight + LabelHeight,
		Visible: true,
		Result:  r,
		Lines: []Segment{
			{X1: 0, Y1: BarHeight, X2: 0, Y2: 0},
			{X1: 0, Y1: BarHeight, X2: dw, Y2: BarHeight},
			{X1: dw, Y1: BarHeight, X2: dw, Y2: 0},
		},
		Labels: []Label{{Text: r.Label, X: dw / 2, Y: BarHeight + LabelHeight, Anchor: AnchorMiddle}},
	}
}

// Bar draws the distance as a single filled bar with one label.
type Bar struct{}

func (Bar) Layout(width float64, s Settings) Layout {
	r := s.Engine.Compute(s.input(availableWidth(width), s.AlwaysFit))
	if !r.Visible {
		return hiddenLayout(StyleBar, r)
	}
	dw := r.RenderWidth
	return Layout{
		Style:   StyleBar,
		OffsetX: s.Alignment.OffsetX(width, dw),
		Width:   dw,
		Height:  BarHeight + LabelHeight,
		Visible: true,
		Result:  r,
		Rects:   []Rect{{X: 0, Y: 0, W: dw, H: BarHeight, Filled: true}},
		Labels:  []Label{{Text: r.Label, X: dw / 2, Y: BarHeight + LabelHeight, Anchor: AnchorMiddle}},
	}
}
