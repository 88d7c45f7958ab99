package sink

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"FractalAnimator/misc"
)

// ImageSink persists a finished raster under a name.
type ImageSink interface {
	Save(name string, img image.Image) error
}

// PathEnsurer makes sure an output directory exists before anything is written to it.
type PathEnsurer interface {
	Ensure(dir string) error
}

var formats = map[string]string{
	"png":  ".png",
	"jpg":  ".jpg",
	"jpeg": ".jpg",
	"tif":  ".tiff",
	"tiff": ".tiff",
	"bmp":  ".bmp",
}

// ParseFormat maps an image format name onto the file extension used for it.
func ParseFormat(name string) (string, error) {
	name = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "."))
	if name == "" {
		return ".png", nil
	}
	ext, ok := formats[name]
	if !ok {
		return "", misc.NewConfigError("imageFormat", "unsupported image format %q", name)
	}
	return ext, nil
}

// FrameName is the zero padded file name of frame index in a run of total frames. Names sort in
// frame order so downstream video tools can glob them.
func FrameName(index int, total int, ext string) string {
	width := max(5, len(fmt.Sprint(max(total-1, 0))))
	return fmt.Sprintf("%0*d%s", width, index, ext)
}

// FileSink encodes rasters into files under Dir. The encoding is picked from the file extension.
type FileSink struct {
	Dir string
}

func NewFileSink(dir string) FileSink {
	return FileSink{Dir: dir}
}

// Save writes to a temporary file first and renames it into place, so an interrupted run never
// leaves a truncated frame behind.
func (fs FileSink) Save(name string, img image.Image) error {
	encode, err := encoder(filepath.Ext(name))
	if err != nil {
		return err
	}

	path := filepath.Join(fs.Dir, name)
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(name)+".*")
	if err != nil {
		return fmt.Errorf("unable to create image %s: %w", path, err)
	}
	tmp := f.Name()

	err = encode(f, img)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Rename(tmp, path)
	}
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("unable to save image %s: %w", path, err)
	}
	return nil
}

func encoder(ext string) (func(io.Writer, image.Image) error, error) {
	switch strings.ToLower(ext) {
	case ".png":
		return png.Encode, nil
	case ".jpg", ".jpeg":
		return func(w io.Writer, img image.Image) error {
			return jpeg.Encode(w, img, &jpeg.Options{Quality: 95})
		}, nil
	case ".tif", ".tiff":
		return func(w io.Writer, img image.Image) error {
			return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
		}, nil
	case ".bmp":
		return bmp.Encode, nil
	}
	return nil, fmt.Errorf("no encoder for image extension %q", ext)
}

// DirEnsurer creates directories on the local file system.
type DirEnsurer struct{}

func (DirEnsurer) Ensure(dir string) error {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return fmt.Errorf("unable to create folder %s: %w", dir, err)
	}
	return nil
}
