// Package skins turns scalebar results into drawable geometry. Each visual style is a
// Skin with a single Layout capability; the caller owns the actual drawing.
package skins

import (
	"fmt"
	"strings"

	"scalebar-service/internal/scalebar"
	"scalebar-service/internal/units"
)

// Geometry shared by all styles, in pixels.
const (
	StrokeWidth  = 3.0
	ShadowOffset = 1.0
	BarHeight    = 10.0
	LabelHeight  = 14.0
	// CharWidth estimates the advance of one label character.
	CharWidth = 7.0
)

// Style names a visual style.
type Style string

const (
	StyleLine           Style = "line"
	StyleBar            Style = "bar"
	StyleAlternatingBar Style = "alternating-bar"
	StyleGraduatedLine  Style = "graduated-line"
	StyleDualUnitLine   Style = "dual-unit-line"
)

// Styles lists every supported style.
var Styles = []Style{StyleLine, StyleBar, StyleAlternatingBar, StyleGraduatedLine, StyleDualUnitLine}

// ParseStyle accepts a style name in any case.
func ParseStyle(s string) (Style, error) {
	st := Style(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Styles {
		if st == known {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown scalebar style %q", s)
}

// Alignment positions the drawn bar inside the available width.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

func (a Alignment) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return "left"
	}
}

// ParseAlignment accepts "left", "center" or "right".
func ParseAlignment(s string) (Alignment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left":
		return AlignLeft, nil
	case "center", "centre":
		return AlignCenter, nil
	case "right":
		return AlignRight, nil
	}
	return AlignLeft, fmt.Errorf("unknown alignment %q", s)
}

// OffsetX returns the x translation placing a bar of displayWidth inside width.
func (a Alignment) OffsetX(width, displayWidth float64) float64 {
	switch a {
	case AlignCenter:
		return (width - displayWidth) / 2
	case AlignRight:
		return width - displayWidth
	default:
		return 0
	}
}

// Settings are the inputs shared by every style.
type Settings struct {
	GroundDistancePerPixel float64
	BaseUnit               units.LinearUnit
	System                 units.System
	Alignment              Alignment
	// AlwaysFit is honoured by the single-division styles. Segmented styles always fit.
	AlwaysFit bool
	Engine    scalebar.Engine
}

func (s Settings) input(available float64, alwaysFit bool) scalebar.Input {
	return scalebar.Input{
		AvailableWidth:         available,
		GroundDistancePerPixel: s.GroundDistancePerPixel,
		BaseUnit:               s.BaseUnit,
		System:                 s.System,
		AlwaysFit:              alwaysFit,
	}
}

// Segment is a straight stroke.
type Segment struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Rect is an outlined rectangle, filled when Filled is set.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	W      float64 `json:"w"`
	H      float64 `json:"h"`
	Filled bool    `json:"filled"`
}

// Anchor is the horizontal text anchor of a Label.
type Anchor string

const (
	AnchorStart  Anchor = "start"
	AnchorMiddle Anchor = "middle"
	AnchorEnd    Anchor = "end"
)

// Label is a text baseline position.
type Label struct {
	Text   string  `json:"text"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Anchor Anchor  `json:"anchor"`
}

// Layout is the geometry of one scalebar, in coordinates relative to OffsetX.
type Layout struct {
	Style     Style            `json:"style"`
	OffsetX   float64          `json:"offset_x"`
	Width     float64          `json:"width"`
	Height    float64          `json:"height"`
	Visible   bool             `json:"visible"`
	Result    scalebar.Result  `json:"result"`
	Secondary *scalebar.Result `json:"secondary,omitempty"`
	Lines     []Segment        `json:"lines,omitempty"`
	Rects     []Rect           `json:"rects,omitempty"`
	Labels    []Label          `json:"labels,omitempty"`
}

// Skin computes the layout of a scalebar drawn inside width pixels.
type Skin interface {
	Layout(width float64, s Settings) Layout
}

// New returns the skin for style.
func New(style Style) (Skin, error) {
	switch style {
	case StyleLine:
		return Line{}, nil
	case StyleBar:
		return Bar{}, nil
	case StyleAlternatingBar:
		return AlternatingBar{}, nil
	case StyleGraduatedLine:
		return GraduatedLine{}, nil
	case StyleDualUnitLine:
		return DualUnitLine{}, nil
	}
	return nil, fmt.Errorf("unknown scalebar style %q", style)
}

func availableWidth(width float64) float64 {
	return width - StrokeWidth - ShadowOffset
}

func hiddenLayout(style Style, r scalebar.Result) Layout {
	return Layout{Style: style, Result: r}
}

func labelWidth(text string) float64 {
	return float64(len([]rune(text))) * CharWidth
}
