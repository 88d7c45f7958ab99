package coordinator

import (
	"fmt"
	"image"
)

// Job is one frame handed to a worker.
type Job struct {
	Frame  int
	Worker string
}

// JobResult carries a rendered frame back to the coordinator. Error is set instead of the pixels
// when the worker could not render the frame.
type JobResult struct {
	Frame  int
	Worker string
	Width  int
	Height int
	Pix    []byte
	Error  string
}

func NewJobResult(job Job, img *image.RGBA, err error) JobResult {
	result := JobResult{Frame: job.Frame, Worker: job.Worker}
	if err != nil {
		result.Error = err.Error()
		return result
	}
	b := img.Bounds()
	result.Width, result.Height = b.Dx(), b.Dy()
	result.Pix = make([]byte, 0, 4*b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		start := img.PixOffset(b.Min.X, y)
		result.Pix = append(result.Pix, img.Pix[start:start+4*b.Dx()]...)
	}
	return result
}

func (jr JobResult) Image() (*image.RGBA, error) {
	if jr.Width <= 0 || jr.Height <= 0 || len(jr.Pix) != 4*jr.Width*jr.Height {
		return nil, fmt.Errorf("frame %d: malformed result %dx%d with %d bytes", jr.Frame, jr.Width, jr.Height, len(jr.Pix))
	}
	return &image.RGBA{
		Pix:    jr.Pix,
		Stride: 4 * jr.Width,
		Rect:   image.Rect(0, 0, jr.Width, jr.Height),
	}, nil
}
