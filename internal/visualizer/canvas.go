package visualizer

import (
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Braille dot positions (col, row) → bit offset:
//
//	(0,0)=0  (1,0)=3
//	(0,1)=1  (1,1)=4
//	(0,2)=2  (1,2)=5
//	(0,3)=6  (1,3)=7
var brailleBits = [2][4]uint{
	{0, 1, 2, 6},
	{3, 4, 5, 7},
}

const maxStrokeWeight = 8

type vertex struct {
	x, y  float64
	curve bool
}

// Canvas is a Surface backed by a grid of braille cells. Each terminal cell
// holds 2x4 dots, so a cols x rows canvas is 2*cols x 4*rows pixels.
type Canvas struct {
	cols, rows int
	w, h       int

	bg    []colorful.Color // one per pixel row
	ink   []colorful.Color // one per pixel
	alpha []float64        // one per pixel, 0 = empty

	stroke      colorful.Color
	strokeAlpha float64
	weight      float64
	shape       []vertex

	profile colorProfile
}

// NewCanvas returns a canvas of cols x rows terminal cells using the
// terminal's colour profile.
func NewCanvas(cols, rows int) *Canvas {
	c := &Canvas{profile: currentColorProfile(), strokeAlpha: 1, weight: 1}
	c.Resize(cols, rows)
	return c
}

// Resize changes the canvas dimensions and clears it.
func (c *Canvas) Resize(cols, rows int) {
	c.cols = max(cols, 0)
	c.rows = max(rows, 0)
	c.w = c.cols * 2
	c.h = c.rows * 4
	c.bg = make([]colorful.Color, c.h)
	c.ink = make([]colorful.Color, c.w*c.h)
	c.alpha = make([]float64, c.w*c.h)
}

// Cells returns the size in terminal cells.
func (c *Canvas) Cells() (cols, rows int) { return c.cols, c.rows }

// Size returns the size in pixels.
func (c *Canvas) Size() (width, height int) { return c.w, c.h }

// FillGradient clears all strokes and paints a vertical gradient.
func (c *Canvas) FillGradient(top, bottom colorful.Color) {
	den := float64(max(c.h-1, 1))
	for y := range c.bg {
		c.bg[y] = top.BlendRgb(bottom, float64(y)/den)
	}
	clear(c.alpha)
}

func (c *Canvas) SetStroke(col colorful.Color, alpha float64) {
	c.stroke = col
	c.strokeAlpha = clamp01(alpha)
}

// SetStrokeWeight sets the line thickness in dots, clamped to
// [1, maxStrokeWeight].
func (c *Canvas) SetStrokeWeight(w float64) {
	switch {
	case math.IsNaN(w) || w < 1:
		w = 1
	case w > maxStrokeWeight:
		w = maxStrokeWeight
	}
	c.weight = w
}

func (c *Canvas) BeginShape() { c.shape = c.shape[:0] }

func (c *Canvas) Vertex(x, y float64) {
	c.shape = append(c.shape, c.bound(vertex{x: x, y: y}))
}

func (c *Canvas) CurveVertex(x, y float64) {
	c.shape = append(c.shape, c.bound(vertex{x: x, y: y, curve: true}))
}

// bound clamps a vertex to within one canvas size beyond each edge.
func (c *Canvas) bound(v vertex) vertex {
	w, h := float64(c.w), float64(c.h)
	v.x = math.Min(math.Max(v.x, -w), 2*w)
	v.y = math.Min(math.Max(v.y, -h), 2*h)
	return v
}

// EndShape strokes the shape: straight vertices are joined by lines and each
// run of curve vertices by a Catmull-Rom spline through all of them.
func (c *Canvas) EndShape() {
	pts := c.tessellate()
	for i := 1; i < len(pts); i++ {
		c.line(pts[i-1], pts[i])
	}
	if len(pts) == 1 && finite(pts[0].x) && finite(pts[0].y) {
		c.plot(int(math.Round(pts[0].x)), int(math.Round(pts[0].y)))
	}
	c.shape = c.shape[:0]
}

func (c *Canvas) tessellate() []vertex {
	var out []vertex
	for i := 0; i < len(c.shape); {
		v := c.shape[i]
		if !v.curve {
			out = append(out, v)
			i++
			continue
		}
		j := i
		for j < len(c.shape) && c.shape[j].curve {
			j++
		}
		run := c.shape[i:j]
		before := run[0]
		if i > 0 {
			before = c.shape[i-1]
		}
		after := run[len(run)-1]
		if j < len(c.shape) {
			after = c.shape[j]
		}
		out = append(out, run[0])
		for k := 0; k+1 < len(run); k++ {
			p0 := before
			if k > 0 {
				p0 = run[k-1]
			}
			p3 := after
			if k+2 < len(run) {
				p3 = run[k+2]
			}
			out = appendSpline(out, p0, run[k], run[k+1], p3)
		}
		i = j
	}
	return out
}

// appendSpline appends points of the Catmull-Rom segment from p1 to p2,
// excluding p1 and including p2.
func appendSpline(out []vertex, p0, p1, p2, p3 vertex) []vertex {
	d := math.Hypot(p2.x-p1.x, p2.y-p1.y)
	steps := 1
	if finite(d) {
		steps = max(int(math.Ceil(d)), 1)
	}
	for s := 1; s <= steps; s++ {
		t := float64(s) / float64(steps)
		out = append(out, vertex{
			x: catmullRom(p0.x, p1.x, p2.x, p3.x, t),
			y: catmullRom(p0.y, p1.y, p2.y, p3.y, t),
		})
	}
	return out
}

func catmullRom(p0, p1, p2, p3, t float64) float64 {
	t2 := t * t
	t3 := t2 * t
	return 0.5 * (2*p1 + (-p0+p2)*t + (2*p0-5*p1+4*p2-p3)*t2 + (-p0+3*p1-3*p2+p3)*t3)
}

// Point plots a single dot in the stroke colour on a pixel nothing has
// inked yet. Points never cover shapes.
func (c *Canvas) Point(x, y float64) {
	if !finite(x) || !finite(y) {
		return
	}
	px, py := int(math.Round(x)), int(math.Round(y))
	if px < 0 || px >= c.w || py < 0 || py >= c.h {
		return
	}
	idx := py*c.w + px
	if c.alpha[idx] > 0 {
		return
	}
	c.ink[idx] = c.stroke
	c.alpha[idx] = c.strokeAlpha
}

func (c *Canvas) line(a, b vertex) {
	if !finite(a.x) || !finite(a.y) || !finite(b.x) || !finite(b.y) {
		return
	}
	x0, y0 := int(math.Round(a.x)), int(math.Round(a.y))
	x1, y1 := int(math.Round(b.x)), int(math.Round(b.y))

	dx := absInt(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -absInt(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy

	for {
		c.plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// plot inks the dot at (x,y), thickened downward by the stroke weight. A dot
// already inked more opaquely is left alone, so shapes drawn first stay on
// top of fainter ones drawn later.
func (c *Canvas) plot(x, y int) {
	if x < 0 || x >= c.w {
		return
	}
	thick := max(int(math.Round(c.weight)), 1)
	for py := max(y, 0); py < min(y+thick, c.h); py++ {
		idx := py*c.w + x
		if c.strokeAlpha <= c.alpha[idx] {
			continue
		}
		c.ink[idx] = c.stroke
		c.alpha[idx] = c.strokeAlpha
	}
}

// Inked reports whether the pixel at (x,y) carries a stroke.
func (c *Canvas) Inked(x, y int) bool {
	if x < 0 || x >= c.w || y < 0 || y >= c.h {
		return false
	}
	return c.alpha[y*c.w+x] > 0
}

// String renders the canvas as rows of braille runes with ANSI colours.
func (c *Canvas) String() string {
	var sb strings.Builder
	color := newANSIState(c.profile)

	for r := range c.rows {
		if r > 0 {
			sb.WriteByte('\n')
		}
		bg := c.bg[min(r*4+2, c.h-1)]
		for col := range c.cols {
			var pattern uint
			var best float64
			var ink colorful.Color
			for dx := range 2 {
				for dy := range 4 {
					idx := (r*4+dy)*c.w + col*2 + dx
					a := c.alpha[idx]
					if a == 0 {
						continue
					}
					pattern |= 1 << brailleBits[dx][dy]
					if a > best {
						best = a
						ink = c.ink[idx]
					}
				}
			}
			color.setBg(&sb, bg)
			if pattern == 0 {
				sb.WriteByte(' ')
				continue
			}
			color.setFg(&sb, bg.BlendRgb(ink, best))
			sb.WriteRune(rune(0x2800 + pattern))
		}
		color.reset(&sb)
	}
	return sb.String()
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
