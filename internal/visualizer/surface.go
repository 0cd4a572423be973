package visualizer

import "github.com/lucasb-eyer/go-colorful"

// Surface is the drawing target of the trail. Coordinates are in surface
// pixels with y growing downward.
type Surface interface {
	Size() (width, height int)
	FillGradient(top, bottom colorful.Color)
	SetStroke(c colorful.Color, alpha float64)
	SetStrokeWeight(w float64)
	BeginShape()
	// Vertex adds a point joined to its neighbours by straight segments.
	Vertex(x, y float64)
	// CurveVertex adds a point on a smooth spline through consecutive curve
	// vertices.
	CurveVertex(x, y float64)
	EndShape()
	// Point plots a single dot that never covers pixels already inked by a
	// shape.
	Point(x, y float64)
}
