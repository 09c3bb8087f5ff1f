package render

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ayusman/mudra/internal/gesture"
)

// Layout constants in pixels.
const (
	CubeScale   = 80
	PuckRadius  = 90
	buttonReach = 0.62
)

var (
	colorDivider  = color.RGBA{80, 80, 100, 0}
	colorCubeZone = color.RGBA{100, 255, 255, 0}
	colorPuckZone = color.RGBA{255, 150, 100, 0}
	colorEdge     = color.RGBA{200, 200, 200, 0}
	colorFace     = color.RGBA{255, 50, 80, 0}
	colorBase     = color.RGBA{180, 30, 50, 0}
	colorPuck     = color.RGBA{20, 20, 30, 0}
	colorRim      = color.RGBA{140, 140, 180, 0}
	colorActive   = color.RGBA{255, 255, 120, 0}
	colorText     = color.RGBA{255, 255, 255, 0}
	colorSubtext  = color.RGBA{200, 200, 255, 0}
	colorShadow   = color.RGBA{0, 0, 0, 0}
)

type button struct {
	dir    gesture.Direction
	dx, dy float64
	label  string
	color  color.RGBA
}

var buttons = []button{
	{gesture.Up, 0, -1, "Vol+", color.RGBA{120, 255, 130, 0}},
	{gesture.Down, 0, 1, "Vol-", color.RGBA{255, 120, 130, 0}},
	{gesture.Left, -1, 0, "Prev", color.RGBA{255, 210, 120, 0}},
	{gesture.Right, 1, 0, "Next", color.RGBA{120, 210, 255, 0}},
}

// Window shows the camera frame with the scene drawn on top in an OpenCV
// window. It must be used from the thread that created it.
type Window struct {
	window  *gocv.Window
	strands *Strands
}

// NewWindow opens a preview window titled name.
func NewWindow(name string) *Window {
	return &Window{
		window:  gocv.NewWindow(name),
		strands: NewStrands(8, 1),
	}
}

// Render draws scene over img and shows it. Pressing q or Esc, or closing
// the window, returns ErrQuit.
func (w *Window) Render(img *gocv.Mat, scene Scene) error {
	canvas := w.canvas(img, scene)
	if canvas != img {
		defer canvas.Close()
	}

	Draw(canvas, scene, w.strands)

	w.window.IMShow(*canvas)
	key := w.window.WaitKey(1)
	if key == 'q' || key == 27 || !w.window.IsOpen() {
		return ErrQuit
	}
	return nil
}

func (w *Window) canvas(img *gocv.Mat, scene Scene) *gocv.Mat {
	if img != nil && !img.Empty() {
		return img
	}
	m := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), scene.Height, scene.Width, gocv.MatTypeCV8UC3)
	return &m
}

// Close closes the window.
func (w *Window) Close() error {
	return w.window.Close()
}

// Draw paints the scene onto img. strands may be nil.
func Draw(img *gocv.Mat, scene Scene, strands *Strands) {
	width, height := img.Cols(), img.Rows()

	divider := int(scene.Midline * float64(width))
	gocv.Line(img, image.Pt(divider, 0), image.Pt(divider, height), colorDivider, 2)
	label(img, "CUBE ZONE", image.Pt(divider/2-45, 25), 0.6, colorCubeZone)
	label(img, "PUCK ZONE", image.Pt(divider+(width-divider)/2-45, 25), 0.6, colorPuckZone)

	drawCube(img, scene, strands)
	drawPuck(img, scene.Command, scene.Active)

	status := "commands on"
	if !scene.CommandsEnabled {
		status = "commands off"
	}
	label(img, status, image.Pt(10, height-15), 0.5, colorSubtext)
}

func drawCube(img *gocv.Mat, scene Scene, strands *Strands) {
	center := scene.Visualizer
	cube := ProjectCube(scene.Rotation, center, CubeScale)

	overlay := img.Clone()
	defer overlay.Close()

	for _, face := range cube.Order {
		c := colorFace
		if face == FaceBottom {
			c = colorBase
		}
		pv := gocv.NewPointsVectorFromPoints([][]image.Point{cube.Face(face, center, CubeScale)})
		gocv.FillPoly(&overlay, pv, c)
		pv.Close()
	}
	gocv.AddWeighted(overlay, 0.35, *img, 0.65, 0, img)

	for _, e := range CubeEdges {
		gocv.Line(img, cube.Points[e[0]], cube.Points[e[1]], colorEdge, 2)
	}

	if scene.Playback.IsPlaying && strands != nil {
		strands.Step()
		for i, seg := range strands.Segments() {
			a := Project(Rotate(seg[0], scene.Rotation), center, CubeScale)
			b := Project(Rotate(seg[1], scene.Rotation), center, CubeScale)
			gocv.Line(img, a, b, strands.strands[i].Color, 2)
		}
	}

	front := FaceCenter(cube.Face(FaceFront, center, CubeScale))
	lines := WrapTitle(scene.Playback.Title(), 15, 2)
	y := front.Y - 15
	if len(lines) > 1 {
		y = front.Y - 25
	}
	for _, line := range lines {
		label(img, line, image.Pt(front.X-len(line)*5, y), 0.5, colorText)
		y += 18
	}
	artist := Truncate(scene.Playback.ArtistName(), 20)
	label(img, artist, image.Pt(front.X-len(artist)*4, y+5), 0.4, colorSubtext)
}

func drawPuck(img *gocv.Mat, center r2.Vec, active gesture.Direction) {
	c := image.Pt(int(center.X), int(center.Y))
	gocv.Circle(img, c, PuckRadius, colorPuck, -1)
	gocv.Circle(img, c, PuckRadius, colorRim, 4)
	gocv.Circle(img, c, PuckRadius*3/4, colorRim, 1)

	reach := PuckRadius * buttonReach
	for _, b := range buttons {
		pos := image.Pt(c.X+int(b.dx*reach), c.Y+int(b.dy*reach))

		col, radius := b.color, 18
		if b.dir == active {
			col, radius = colorActive, 22
		}
		gocv.Circle(img, pos, radius, col, -1)
		gocv.Circle(img, pos, radius, colorText, 2)
		label(img, b.label, image.Pt(pos.X-14, pos.Y+radius+14), 0.4, colorText)
	}
}

// label draws text with a one-pixel drop shadow.
func label(img *gocv.Mat, text string, at image.Point, scale float64, c color.RGBA) {
	gocv.PutText(img, text, at.Add(image.Pt(1, 1)), gocv.FontHersheySimplex, scale, colorShadow, 2)
	gocv.PutText(img, text, at, gocv.FontHersheySimplex, scale, c, 1)
}
