//go:build cgo

package camera

import (
	"fmt"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

const (
	// fourccMJPEG is the FourCC code for Motion JPEG codec.
	// MJPEG is widely supported by USB webcams and provides good compression.
	fourccMJPEG = 0x47504A4D
)

// OpenCVSource implements Source using OpenCV via GoCV.
//
// Implementation notes:
//   - Uses the V4L2 backend on Linux to avoid GStreamer stream errors.
//   - Sets the MJPEG codec explicitly for USB webcam compatibility.
//   - Converts BGR->RGB since the detection pipeline expects RGB888.
//   - Supports horizontal flip (mirror mode) for a natural projector-facing
//     orientation when the camera sits on the opposite side of the table.
//   - Thread-safe: mu protects all fields and camera operations.
type OpenCVSource struct {
	mu sync.Mutex

	deviceID int
	width    int
	height   int
	fps      int
	mirror   bool

	webcam *gocv.VideoCapture
	opened bool
}

// NewOpenCVSource creates a new OpenCV-based frame source.
// Set mirror=true to flip the image horizontally.
func NewOpenCVSource(mirror bool) *OpenCVSource {
	return &OpenCVSource{mirror: mirror}
}

// Open initializes the camera with the given configuration.
func (c *OpenCVSource) Open(deviceID, width, height, fps int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.opened {
		return fmt.Errorf("camera: device %d already opened", deviceID)
	}

	webcam, err := gocv.OpenVideoCaptureWithAPI(deviceID, gocv.VideoCaptureV4L2)
	if err != nil {
		return fmt.Errorf("camera: opening device %d: %w", deviceID, err)
	}
	if !webcam.IsOpened() {
		webcam.Close()
		return fmt.Errorf("camera: device %d not found or unavailable", deviceID)
	}

	webcam.Set(gocv.VideoCaptureFOURCC, fourccMJPEG)
	if width > 0 {
		webcam.Set(gocv.VideoCaptureFrameWidth, float64(width))
	}
	if height > 0 {
		webcam.Set(gocv.VideoCaptureFrameHeight, float64(height))
	}
	if fps > 0 {
		webcam.Set(gocv.VideoCaptureFPS, float64(fps))
	}

	c.deviceID = deviceID
	c.width = int(webcam.Get(gocv.VideoCaptureFrameWidth))
	c.height = int(webcam.Get(gocv.VideoCaptureFrameHeight))
	c.fps = int(webcam.Get(gocv.VideoCaptureFPS))
	c.webcam = webcam
	c.opened = true

	// Warm up: some cameras need a moment to initialize.
	warmup := gocv.NewMat()
	c.webcam.Read(&warmup)
	warmup.Close()

	return nil
}

// Read captures a single frame as an owned RGB888 Frame.
func (c *OpenCVSource) Read() (*Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.opened {
		return nil, fmt.Errorf("camera: not opened")
	}

	mat := gocv.NewMat()
	defer mat.Close()

	if ok := c.webcam.Read(&mat); !ok {
		return nil, fmt.Errorf("camera: failed to read frame")
	}
	if mat.Empty() {
		return nil, fmt.Errorf("camera: captured frame is empty")
	}

	if c.mirror {
		gocv.Flip(mat, &mat, 1) //nolint:errcheck
	}

	rgb := gocv.NewMat()
	defer rgb.Close()
	gocv.CvtColor(mat, &rgb, gocv.ColorBGRToRGB) //nolint:errcheck

	width := rgb.Cols()
	height := rgb.Rows()
	pixels := rgb.ToBytes()

	return &Frame{
		Pixels:      pixels,
		Width:       width,
		Height:      height,
		Stride:      width * 3,
		Format:      FormatRGB888,
		TimestampNS: uint64(time.Now().UnixNano()),
	}, nil
}

// Close releases camera resources.
func (c *OpenCVSource) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.opened {
		return nil
	}
	if c.webcam != nil {
		if err := c.webcam.Close(); err != nil {
			c.opened = false
			return fmt.Errorf("camera: closing webcam: %w", err)
		}
	}
	c.opened = false
	return nil
}

// SetMirror enables or disables horizontal flip. Safe to call while running.
func (c *OpenCVSource) SetMirror(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mirror = enabled
}

// IsMirror reports whether horizontal flip is enabled.
func (c *OpenCVSource) IsMirror() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mirror
}

// GetActualResolution returns the actual configured resolution, which may
// differ from the requested resolution if the device doesn't support it.
func (c *OpenCVSource) GetActualResolution() (width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

// GetActualFPS returns the actual configured frame rate.
func (c *OpenCVSource) GetActualFPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

// EnumerateDevices attempts to detect available camera devices. Best effort;
// may not work on all systems.
func EnumerateDevices(maxDevices int) []int {
	var devices []int
	if maxDevices <= 0 {
		maxDevices = 10
	}
	for i := 0; i < maxDevices; i++ {
		cam, err := gocv.OpenVideoCaptureWithAPI(i, gocv.VideoCaptureV4L2)
		if err != nil {
			continue
		}
		if cam.IsOpened() {
			devices = append(devices, i)
		}
		cam.Close()
	}
	return devices
}
