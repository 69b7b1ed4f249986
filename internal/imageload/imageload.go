// Package imageload decodes image files and scales them for display.
package imageload

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// MaxPixels bounds the decoded size of a single image.
const MaxPixels = 16384 * 16384

// ErrUnsupported is wrapped by Error when the file is not a known image format.
var ErrUnsupported = errors.New("unsupported image format")

// ErrTooLarge is wrapped by Error when the image exceeds MaxPixels.
var ErrTooLarge = errors.New("image too large")

// Extensions lists the file name extensions offered when choosing an image.
var Extensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp"}

// Error reports a failure to load an image. The previously displayed image
// is unaffected.
type Error struct {
	Path string
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("could not %s image %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Decode reads and decodes the image at path. Any failure is an *Error.
func Decode(path string) (image.Image, error) {
	if path == "" {
		return nil, &Error{Path: path, Op: "open", Err: os.ErrNotExist}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &Error{Path: path, Op: "open", Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, &Error{Path: path, Op: "open", Err: err}
	}
	if info.IsDir() {
		return nil, &Error{Path: path, Op: "open", Err: errors.New("is a directory")}
	}

	img, err := decode(f)
	if err != nil {
		return nil, &Error{Path: path, Op: "decode", Err: err}
	}
	return img, nil
}

func decode(rs io.ReadSeeker) (image.Image, error) {
	cfg, _, err := image.DecodeConfig(bufio.NewReader(rs))
	if err != nil {
		return nil, classify(err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("invalid dimensions %dx%d", cfg.Width, cfg.Height)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("%dx%d: %w", cfg.Width, cfg.Height, ErrTooLarge)
	}

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bufio.NewReader(rs))
	if err != nil {
		return nil, classify(err)
	}
	return img, nil
}

func classify(err error) error {
	if errors.Is(err, image.ErrFormat) {
		return ErrUnsupported
	}
	return err
}

// Fit returns the largest size with the aspect ratio of width x height that
// fits in maxWidth x maxHeight. Images that already fit keep their size.
func Fit(width, height, maxWidth, maxHeight int) (int, int) {
	if width <= 0 || height <= 0 {
		return 0, 0
	}
	if width <= maxWidth && height <= maxHeight {
		return width, height
	}
	return scaleTo(width, height, maxWidth, maxHeight)
}

// Fill returns the size that scales width x height up or down to fill
// maxWidth x maxHeight while preserving aspect ratio.
func Fill(width, height, maxWidth, maxHeight int) (int, int) {
	if width <= 0 || height <= 0 {
		return 0, 0
	}
	return scaleTo(width, height, maxWidth, maxHeight)
}

func scaleTo(width, height, maxWidth, maxHeight int) (int, int) {
	if maxWidth <= 0 || maxHeight <= 0 {
		return 0, 0
	}
	sx := float64(maxWidth) / float64(width)
	sy := float64(maxHeight) / float64(height)
	s := min(sx, sy)
	return max(int(float64(width)*s), 1), max(int(float64(height)*s), 1)
}

// Scale resamples src to width x height.
func Scale(src image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, max(width, 1), max(height, 1)))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}
