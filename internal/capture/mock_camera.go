package capture

import (
	"image"
	"image/color"
	"sync"

	"gocv.io/x/gocv"
)

// MockCamera plays back pre-built frames for testing.
type MockCamera struct {
	frames  []*gocv.Mat
	index   int
	loop    bool
	err     error
	reads   int
	closes  int
	mu      sync.Mutex
	running bool
}

func NewMockCamera(frames []*gocv.Mat, loop bool) *MockCamera {
	return &MockCamera{
		frames: frames,
		loop:   loop,
	}
}

// BlankFrames returns n black frames of the given size.
func BlankFrames(n, width, height int) []*gocv.Mat {
	frames := make([]*gocv.Mat, n)
	for i := range frames {
		m := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), height, width, gocv.MatTypeCV8UC3)
		frames[i] = &m
	}
	return frames
}

// MarkedFrame returns a black frame with a white dot near the left edge, for
// checking the mirror flip.
func MarkedFrame(width, height int) *gocv.Mat {
	m := BlankFrames(1, width, height)[0]
	gocv.Circle(m, image.Pt(width/10, height/2), 2, color.RGBA{255, 255, 255, 0}, -1)
	return m
}

func (c *MockCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = true
	c.index = 0
	return nil
}

func (c *MockCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
	c.closes++
	return nil
}

// ReadFrame returns a clone of the next frame. Running past the end of a
// non-looping sequence fails with ErrCameraRead.
func (c *MockCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.reads++

	if !c.running {
		return nil, ErrCameraNotOpen
	}
	if c.err != nil {
		return nil, c.err
	}
	if len(c.frames) == 0 {
		return nil, ErrCameraRead
	}

	if c.index >= len(c.frames) {
		if !c.loop {
			return nil, ErrCameraRead
		}
		c.index = 0
	}

	frame := c.frames[c.index].Clone()
	c.index++

	return &frame, nil
}

func (c *MockCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// SetError makes every following ReadFrame fail with err.
func (c *MockCamera) SetError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

// Reads returns the number of ReadFrame calls.
func (c *MockCamera) Reads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}

// Closes returns the number of Close calls.
func (c *MockCamera) Closes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closes
}

// Release frees the frames held by the mock.
func (c *MockCamera) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, f := range c.frames {
		f.Close()
	}
	c.frames = nil
}
