package models

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Viewpoint is one map view a scalebar is computed for. Resolution, in meters per
// pixel, wins over Zoom when set.
type Viewpoint struct {
	Name       string
	Center     Coordinate
	Zoom       int
	Resolution float64
	Width      float64
	RowIndex   int
}

type ScaleRow struct {
	Name       string
	Lat        float64
	Lon        float64
	Zoom       int
	Resolution float64
	Width      float64
	Distance   float64
	Unit       string
	// DistanceMeters is Distance in meters, comparable across unit systems.
	DistanceMeters float64
	Label          string
	RenderWidth    float64
	Visible        bool
}

// Preferences are the per-client defaults kept in the session.
type Preferences struct {
	System    string `json:"system" form:"system"`
	Style     string `json:"style" form:"style"`
	Alignment string `json:"align" form:"align"`
}
