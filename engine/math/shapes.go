package math

import "github.com/chewxy/math32"

// Format says how a shape is drawn: filled, or outlined with a line width.
type Format struct {
	line  bool
	width float32
}

// Fill is the default format.
var Fill = Format{}

func Line(width float32) Format {
	return Format{line: true, width: width}
}

func (f Format) IsLine() bool {
	return f.line
}

func (f Format) LineWidth() float32 {
	return f.width
}

// Rectangle is an axis-aligned rectangle anchored at its top-left corner.
// It is a value type: WithColor and WithFormat return modified copies.
type Rectangle struct {
	Position Vec2
	Size     Vec2
	Color    RGBA8
	Format   Format
}

func NewRectangle(x, y, w, h float32) Rectangle {
	return Rectangle{
		Position: Vec2{x, y},
		Size:     Vec2{w, h},
		Color:    RGBA8{255, 255, 255, 255},
		Format:   Fill,
	}
}

func (r Rectangle) WithColor(c RGBA8) Rectangle {
	r.Color = c
	return r
}

func (r Rectangle) WithFormat(f Format) Rectangle {
	r.Format = f
	return r
}

func (r Rectangle) Center() Vec2 {
	return r.Position.Add(r.Size.Scale(0.5))
}

func (r Rectangle) Area() float32 {
	return math32.Abs(r.Size.X * r.Size.Y)
}

// Contains reports whether p lies inside r, edges included.
func (r Rectangle) Contains(p Vec2) bool {
	return p.X >= r.Position.X && p.X <= r.Position.X+r.Size.X &&
		p.Y >= r.Position.Y && p.Y <= r.Position.Y+r.Size.Y
}

// Vertices returns the four corners clockwise from the anchor.
func (r Rectangle) Vertices() [4]Vec2 {
	return [4]Vec2{
		r.Position,
		{r.Position.X + r.Size.X, r.Position.Y},
		r.Position.Add(r.Size),
		{r.Position.X, r.Position.Y + r.Size.Y},
	}
}

type Triangle struct {
	A, B, C Vec2
	Color   RGBA8
	Format  Format
}

func NewTriangle(a, b, c Vec2) Triangle {
	return Triangle{
		A:      a,
		B:      b,
		C:      c,
		Color:  RGBA8{255, 255, 255, 255},
		Format: Fill,
	}
}

func (t Triangle) WithColor(c RGBA8) Triangle {
	t.Color = c
	return t
}

func (t Triangle) WithFormat(f Format) Triangle {
	t.Format = f
	return t
}

// Center returns the centroid.
func (t Triangle) Center() Vec2 {
	return t.A.Add(t.B).Add(t.C).Scale(1.0 / 3.0)
}

func (t Triangle) Area() float32 {
	return math32.Abs(t.B.Sub(t.A).Cross(t.C.Sub(t.A))) / 2
}

// Contains uses edge signs, so it works for either winding order.
func (t Triangle) Contains(p Vec2) bool {
	d1 := t.B.Sub(t.A).Cross(p.Sub(t.A))
	d2 := t.C.Sub(t.B).Cross(p.Sub(t.B))
	d3 := t.A.Sub(t.C).Cross(p.Sub(t.C))

	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

func (t Triangle) Vertices() [3]Vec2 {
	return [3]Vec2{t.A, t.B, t.C}
}
