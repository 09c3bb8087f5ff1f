package render

import (
	"image"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/mudra/internal/gesture"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestRotate(t *testing.T) {
	tests := []struct {
		name string
		v    r3.Vec
		o    gesture.Orientation
		want r3.Vec
	}{
		{"identity", r3.Vec{X: 1, Y: 2, Z: 3}, gesture.Orientation{}, r3.Vec{X: 1, Y: 2, Z: 3}},
		{"yaw quarter turn", r3.Vec{X: 1}, gesture.Orientation{Yaw: math.Pi / 2}, r3.Vec{Z: -1}},
		{"pitch quarter turn", r3.Vec{Y: 1}, gesture.Orientation{Pitch: math.Pi / 2}, r3.Vec{Z: 1}},
		{"roll quarter turn", r3.Vec{X: 1}, gesture.Orientation{Roll: math.Pi / 2}, r3.Vec{Y: 1}},
		// X first: (0,1,0) -> (0,0,1), then Y: (0,0,1) -> (1,0,0).
		{"pitch then yaw", r3.Vec{Y: 1}, gesture.Orientation{Pitch: math.Pi / 2, Yaw: math.Pi / 2}, r3.Vec{X: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Rotate(tt.v, tt.o)
			if diff := cmp.Diff(tt.want, got, approx); diff != "" {
				t.Errorf("Rotate() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRotate_PreservesLength(t *testing.T) {
	o := gesture.Orientation{Pitch: 0.3, Yaw: -1.1, Roll: 0.2}
	for _, v := range CubeVertices {
		if got, want := r3.Norm(Rotate(v, o)), r3.Norm(v); math.Abs(got-want) > 1e-9 {
			t.Errorf("|Rotate(%v)| = %f, want %f", v, got, want)
		}
	}
}

func TestProject(t *testing.T) {
	got := Project(r3.Vec{X: 1, Y: -1, Z: 5}, r2.Vec{X: 200, Y: 200}, 100)
	if got != image.Pt(300, 100) {
		t.Errorf("Project() = %v, want (300,100)", got)
	}
}

func TestProjectCube(t *testing.T) {
	center := r2.Vec{X: 200, Y: 200}
	cube := ProjectCube(gesture.Orientation{}, center, 100)

	if cube.Points[0] != image.Pt(100, 100) || cube.Points[6] != image.Pt(300, 300) {
		t.Errorf("unrotated corners = %v, %v", cube.Points[0], cube.Points[6])
	}

	// Larger z is farther away, so the front face (z = +1) is drawn first.
	pos := map[int]int{}
	for i, f := range cube.Order {
		pos[f] = i
	}
	if pos[FaceFront] > pos[FaceBack] {
		t.Errorf("back face drawn before front face: order %v", cube.Order)
	}
}

func TestCube_BottomFaceLocked(t *testing.T) {
	center := r2.Vec{X: 200, Y: 200}
	still := ProjectCube(gesture.Orientation{}, center, 100)
	turned := ProjectCube(gesture.Orientation{Yaw: 1}, center, 100)

	if diff := cmp.Diff(still.Face(FaceBottom, center, 100), turned.Face(FaceBottom, center, 100)); diff != "" {
		t.Errorf("bottom face moved with rotation (-still +turned):\n%s", diff)
	}
	if cmp.Equal(still.Face(FaceTop, center, 100), turned.Face(FaceTop, center, 100)) {
		t.Error("top face did not rotate")
	}
}

func TestFaceCenter(t *testing.T) {
	pts := []image.Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	if got := FaceCenter(pts); got != image.Pt(5, 5) {
		t.Errorf("FaceCenter() = %v, want (5,5)", got)
	}
	if got := FaceCenter(nil); got != (image.Point{}) {
		t.Errorf("FaceCenter(nil) = %v", got)
	}
}

func TestWrapTitle(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Short", []string{"Short"}},
		{"Exactly fifteen", []string{"Exactly fifteen"}},
		{"Blue in Green Take Two", []string{"Blue in Green", "Take Two"}},
		{"One Two Three Four Five Six Seven Eight", []string{"One Two Three", "Four Five Six"}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, WrapTitle(tt.in, 15, 2)); diff != "" {
			t.Errorf("WrapTitle(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"Miles Davis", 20, "Miles Davis"},
		{"The Dave Brubeck Quartet", 20, "The Dave Brubeck ..."},
		{"abcdef", 3, "abc"},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
