// ABOUTME: Camera endpoint streaming JPEG frames straight onto the client socket
// ABOUTME: /mjpeg streams multipart frames until the client leaves; otherwise one still image

package apps

import (
	stderrors "errors"
	"fmt"
	"io"
	"time"

	"github.com/harper/netcmd/internal/device"
	"github.com/harper/netcmd/internal/endpoint"
)

// CameraRoute is the camera endpoint name. Matching ignores case.
const CameraRoute = "liveCam.jpeg"

const (
	// BusyMessage is returned as plain text while another client holds the camera.
	BusyMessage = "Someone is already reading from the camera. Wait a moment and try again"

	mjpegBoundary = "netcmdframe"
	// DefaultFrameInterval paces the stream between frames.
	DefaultFrameInterval = 100 * time.Millisecond
)

type CameraControl struct {
	Frames        FrameSource
	Camera        *device.Exclusive
	Indicator     device.Indicator
	FrameInterval time.Duration
}

func NewCameraControl(frames FrameSource, ind device.Indicator) *CameraControl {
	return &CameraControl{
		Frames:        frames,
		Camera:        device.NewExclusive("camera"),
		Indicator:     ind,
		FrameInterval: DefaultFrameInterval,
	}
}

func (c *CameraControl) Initialize() error {
	if c.Frames == nil {
		return stderrors.New("no frame source")
	}
	if c.Camera == nil {
		c.Camera = device.NewExclusive("camera")
	}
	return nil
}

func (c *CameraControl) Endpoints() []endpoint.Endpoint {
	return []endpoint.Endpoint{
		endpoint.New(CameraRoute, "Writes the camera image to the socket; /mjpeg streams it live", true, c.takePicture),
	}
}

func (c *CameraControl) takePicture(ec *endpoint.Context, args []string) (string, error) {
	release, err := c.Camera.TryAcquire()
	if err != nil {
		return BusyMessage, nil
	}
	defer release()

	if c.Indicator != nil {
		c.Indicator.Set(true)
		defer c.Indicator.Set(false)
	}

	conn, err := ec.Hijack()
	if err != nil {
		return "", err
	}

	mjpeg := len(args) > 0 && args[0] == "mjpeg"
	if !mjpeg {
		frame, err := c.Frames.Frame(ec.Context())
		if err != nil {
			return "", err
		}
		return "", writeStill(conn, frame)
	}

	if _, err := io.WriteString(conn, mjpegHeader()); err != nil {
		return "", err
	}

	ctx := ec.Context()
	count := 0
	for {
		start := time.Now()
		frame, err := c.Frames.Frame(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Debug("[%s] stream stopped after %d frames", shortID(ec), count)
				return "", nil
			}
			return "", err
		}
		if err := writePart(conn, frame); err != nil {
			// the client went away
			log.Debug("[%s] stream closed after %d frames: %v", shortID(ec), count, err)
			return "", nil
		}
		count++
		log.Debug("[%s] frame #%d sent in %v", shortID(ec), count, time.Since(start))

		select {
		case <-ctx.Done():
			return "", nil
		case <-time.After(c.FrameInterval):
		}
	}
}

func mjpegHeader() string {
	return "HTTP/1.1 200 OK\r\n" +
		"Content-Type: multipart/x-mixed-replace; boundary=" + mjpegBoundary + "\r\n" +
		"Cache-Control: no-cache\r\n\r\n"
}

func writeStill(w io.Writer, frame []byte) error {
	header := fmt.Sprintf("HTTP/1.1 200 OK\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(frame))
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}
	_, err := w.Write(frame)
	return err
}

func writePart(w io.Writer, frame []byte) error {
	header := fmt.Sprintf("--%s\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", mjpegBoundary, len(frame))
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}
	if _, err := w.Write(frame); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\r\n")
	return err
}

func shortID(ec *endpoint.Context) string {
	id := ec.RequestID()
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
