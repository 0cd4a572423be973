package visualizer

// RenderState carries the per-frame colour inputs of the curve renderer.
type RenderState struct {
	Hue  float64
	Bass float64 // smoothed bass energy, drives stroke weight
}

// Render draws every row of h onto s, newest first. Each row is a straight
// lead-in at the left edge, a smooth curve through the interior samples and
// a straight lead-out at the right edge so the spline never overshoots the
// surface boundary.
func Render(s Surface, h *History, cfg Config, st RenderState) {
	_, height := s.Size()
	n := h.Len()
	weight := StrokeWeight(cfg.StrokeWeight, st.Bass)
	top := float64(height) * cfg.Baseline

	for i := range n {
		row := h.At(i)
		style := StyleFor(i, n)
		s.SetStroke(style.StrokeColor(st.Hue), style.Opacity)
		s.SetStrokeWeight(weight)

		baseline := float64(i)*cfg.LineSpacing + top
		width := float64(row.Width)

		s.BeginShape()
		s.Vertex(0, baseline)
		for k, v := range row.Samples {
			x := row.X(k)
			if x == 0 || x >= row.Width-row.Stride {
				s.Vertex(float64(x), baseline)
				continue
			}
			s.CurveVertex(float64(x), baseline+v)
		}
		s.Vertex(width, baseline)
		s.EndShape()
	}
}
