package render

import (
	"image/color"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r3"
)

var stringColors = []color.RGBA{
	{255, 100, 100, 0},
	{100, 255, 100, 0},
	{100, 100, 255, 0},
	{255, 255, 100, 0},
	{255, 100, 255, 0},
	{100, 255, 255, 0},
}

// trail is how far the tail lags the head along the path.
const trail = 0.3

// Strand is a line segment travelling between two points inside the cube.
type Strand struct {
	From, To r3.Vec
	Progress float64
	Speed    float64
	Color    color.RGBA
}

// Strands animates the lines drawn through the cube while music plays.
type Strands struct {
	rng     *rand.Rand
	strands []Strand
}

// NewStrands creates n strands with a deterministic seed.
func NewStrands(n int, seed uint64) *Strands {
	s := &Strands{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
	s.strands = make([]Strand, n)
	for i := range s.strands {
		s.reset(&s.strands[i])
	}
	return s
}

func (s *Strands) point() r3.Vec {
	return r3.Vec{X: s.rng.Float64()*2 - 1, Y: s.rng.Float64()*2 - 1, Z: s.rng.Float64()*2 - 1}
}

func (s *Strands) reset(st *Strand) {
	st.From = s.point()
	st.To = s.point()
	st.Progress = 0
	st.Speed = 0.01 + s.rng.Float64()*0.02
	st.Color = stringColors[s.rng.IntN(len(stringColors))]
}

// Step advances every strand; finished strands restart on a new path.
func (s *Strands) Step() {
	for i := range s.strands {
		st := &s.strands[i]
		st.Progress += st.Speed
		if st.Progress >= 1 {
			s.reset(st)
		}
	}
}

// Segments returns the current head and tail of every strand in cube space.
func (s *Strands) Segments() [][2]r3.Vec {
	out := make([][2]r3.Vec, len(s.strands))
	for i, st := range s.strands {
		tail := max(0, st.Progress-trail)
		out[i] = [2]r3.Vec{lerp(st.From, st.To, st.Progress), lerp(st.From, st.To, tail)}
	}
	return out
}

// Len returns the number of strands.
func (s *Strands) Len() int {
	return len(s.strands)
}

func lerp(a, b r3.Vec, t float64) r3.Vec {
	return r3.Add(r3.Scale(1-t, a), r3.Scale(t, b))
}
