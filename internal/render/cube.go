package render

import (
	"image"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/mudra/internal/gesture"
)

// CubeVertices are the corners of the unit cube, back face first.
var CubeVertices = [8]r3.Vec{
	{X: -1, Y: -1, Z: -1}, {X: 1, Y: -1, Z: -1}, {X: 1, Y: 1, Z: -1}, {X: -1, Y: 1, Z: -1},
	{X: -1, Y: -1, Z: 1}, {X: 1, Y: -1, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: -1, Y: 1, Z: 1},
}

// CubeEdges index CubeVertices.
var CubeEdges = [12][2]int{
	{0, 1}, {1, 2}, {2, 3}, {3, 0},
	{4, 5}, {5, 6}, {6, 7}, {7, 4},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// Face indices into CubeFaces.
const (
	FaceBack = iota
	FaceFront
	FaceBottom
	FaceTop
	FaceLeft
	FaceRight
)

// CubeFaces index CubeVertices.
var CubeFaces = [6][4]int{
	FaceBack:   {0, 1, 2, 3},
	FaceFront:  {4, 5, 6, 7},
	FaceBottom: {0, 1, 5, 4},
	FaceTop:    {2, 3, 7, 6},
	FaceLeft:   {0, 3, 7, 4},
	FaceRight:  {1, 2, 6, 5},
}

// Rotate applies o to v about X (pitch), then Y (yaw), then Z (roll).
func Rotate(v r3.Vec, o gesture.Orientation) r3.Vec {
	sx, cx := math.Sincos(o.Pitch)
	v = r3.Vec{X: v.X, Y: v.Y*cx - v.Z*sx, Z: v.Y*sx + v.Z*cx}

	sy, cy := math.Sincos(o.Yaw)
	v = r3.Vec{X: v.X*cy + v.Z*sy, Y: v.Y, Z: -v.X*sy + v.Z*cy}

	sz, cz := math.Sincos(o.Roll)
	return r3.Vec{X: v.X*cz - v.Y*sz, Y: v.X*sz + v.Y*cz, Z: v.Z}
}

// Project maps v orthographically onto the screen around center.
func Project(v r3.Vec, center r2.Vec, scale float64) image.Point {
	return image.Pt(
		int(v.X*scale+center.X),
		int(v.Y*scale+center.Y),
	)
}

// Cube is a projected cube ready to draw.
type Cube struct {
	Points  [8]image.Point
	Rotated [8]r3.Vec
	// Order lists faces from farthest to nearest. Larger z is farther.
	Order [6]int
}

// ProjectCube rotates and projects the unit cube. The bottom face stays
// unrotated so the cube sits on a fixed base.
func ProjectCube(o gesture.Orientation, center r2.Vec, scale float64) Cube {
	var c Cube
	for i, v := range CubeVertices {
		c.Rotated[i] = Rotate(v, o)
		c.Points[i] = Project(c.Rotated[i], center, scale)
	}

	depth := func(face int) float64 {
		var z float64
		for _, i := range CubeFaces[face] {
			z += c.Rotated[i].Z
		}
		return z / 4
	}

	for i := range c.Order {
		c.Order[i] = i
	}
	sort.SliceStable(c.Order[:], func(a, b int) bool {
		return depth(c.Order[a]) > depth(c.Order[b])
	})

	return c
}

// Face returns the screen polygon for face. The bottom face uses the
// unrotated base.
func (c Cube) Face(face int, center r2.Vec, scale float64) []image.Point {
	pts := make([]image.Point, 4)
	for i, v := range CubeFaces[face] {
		if face == FaceBottom {
			pts[i] = Project(CubeVertices[v], center, scale)
		} else {
			pts[i] = c.Points[v]
		}
	}
	return pts
}

// FaceCenter is the mean of a polygon's corners.
func FaceCenter(pts []image.Point) image.Point {
	var x, y int
	for _, p := range pts {
		x += p.X
		y += p.Y
	}
	n := len(pts)
	if n == 0 {
		return image.Point{}
	}
	return image.Pt(x/n, y/n)
}

// WrapTitle splits s into at most maxLines lines of about width characters,
// breaking on spaces.
func WrapTitle(s string, width, maxLines int) []string {
	if len(s) <= width {
		return []string{s}
	}

	var lines []string
	var line string
	for _, word := range strings.Fields(s) {
		if line == "" {
			line = word
			continue
		}
		if len(line)+1+len(word) <= width {
			line += " " + word
			continue
		}
		lines = append(lines, line)
		line = word
	}
	if line != "" {
		lines = append(lines, line)
	}

	if len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	return lines
}

// Truncate shortens s to max characters with a trailing ellipsis.
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
