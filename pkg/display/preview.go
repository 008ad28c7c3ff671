//go:build cgo

package display

import (
	"runtime"
	"sync"

	"gocv.io/x/gocv"
)

// WindowSink is a debug Sink that blits frames into an on-screen OpenCV
// window. OpenCV UI calls must happen from a single dedicated OS thread on
// Linux/X11, so WindowSink runs its own locked goroutine.
type WindowSink struct {
	window   *gocv.Window
	frameCh  chan gocv.Mat
	closeCh  chan struct{}
	doneCh   chan struct{}
	once     sync.Once
	initDone chan struct{}
}

// NewWindowSink creates a debug preview window with the given title.
func NewWindowSink(title string) *WindowSink {
	w := &WindowSink{
		frameCh:  make(chan gocv.Mat, 1),
		closeCh:  make(chan struct{}),
		doneCh:   make(chan struct{}),
		initDone: make(chan struct{}),
	}
	go w.loop(title)
	<-w.initDone
	return w
}

func (w *WindowSink) loop(title string) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	w.window = gocv.NewWindow(title)
	close(w.initDone)

	for {
		select {
		case frame := <-w.frameCh:
			w.window.IMShow(frame)
			w.window.WaitKey(1)
			frame.Close()
		case <-w.closeCh:
			if w.window != nil {
				w.window.Close()
			}
			close(w.doneCh)
			return
		}
	}
}

// ShowMat displays a gocv.Mat frame, cloning it internally so the caller
// keeps ownership of the original. Frames are dropped if the window is
// slower than the caller.
func (w *WindowSink) ShowMat(frame gocv.Mat) {
	if frame.Empty() {
		return
	}
	cloned := frame.Clone()
	select {
	case w.frameCh <- cloned:
	default:
		cloned.Close()
	}
}

// Render implements Sink by wrapping a packed XRGB8888 buffer into a Mat
// and displaying it.
func (w *WindowSink) Render(buf []byte, stride, width, height int) error {
	bpp, err := BytesPerPixel(stride, width)
	if err != nil {
		return err
	}
	matType := gocv.MatTypeCV8UC4
	if bpp == 2 {
		matType = gocv.MatTypeCV16UC1
	}
	mat, err := gocv.NewMatFromBytes(height, width, matType, buf)
	if err != nil {
		return err
	}
	defer mat.Close()
	w.ShowMat(mat)
	return nil
}

// Close closes the preview window and releases resources.
func (w *WindowSink) Close() error {
	w.once.Do(func() {
		close(w.closeCh)
		<-w.doneCh
	})
	return nil
}
