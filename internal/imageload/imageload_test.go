package imageload

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0x80, A: 0xff})
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return path
}

func TestDecodePNG(t *testing.T) {
	path := writePNG(t, t.TempDir(), "a.png", 32, 16)

	img, err := Decode(path)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 32 || b.Dy() != 16 {
		t.Fatalf("unexpected bounds %v", b)
	}
}

func TestDecodeFailures(t *testing.T) {
	dir := t.TempDir()

	corrupt := filepath.Join(dir, "corrupt.png")
	if err := os.WriteFile(corrupt, []byte("\x89PNG\r\n\x1a\nthis is not a png"), 0o644); err != nil {
		t.Fatal(err)
	}
	text := filepath.Join(dir, "notes.png")
	if err := os.WriteFile(text, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		path   string
		op     string
		target error
	}{
		{"missing file", filepath.Join(dir, "nope.png"), "open", os.ErrNotExist},
		{"empty path", "", "open", os.ErrNotExist},
		{"directory", dir, "open", nil},
		{"corrupt png", corrupt, "decode", nil},
		{"not an image", text, "decode", ErrUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := Decode(tt.path)
			if err == nil {
				t.Fatalf("expected error, got image %v", img.Bounds())
			}
			var loadErr *Error
			if !errors.As(err, &loadErr) {
				t.Fatalf("expected *Error, got %T: %v", err, err)
			}
			if loadErr.Op != tt.op || loadErr.Path != tt.path {
				t.Fatalf("unexpected error fields: %+v", loadErr)
			}
			if tt.target != nil && !errors.Is(err, tt.target) {
				t.Fatalf("expected %v in chain, got %v", tt.target, err)
			}
		})
	}
}

func TestFit(t *testing.T) {
	tests := []struct {
		name             string
		w, h, maxW, maxH int
		wantW, wantH     int
	}{
		{"fits already", 640, 480, 1820, 980, 640, 480},
		{"too wide", 4000, 1000, 1820, 980, 1820, 455},
		{"too tall", 1000, 4000, 1820, 980, 245, 980},
		{"empty", 0, 10, 100, 100, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := Fit(tt.w, tt.h, tt.maxW, tt.maxH)
			if w != tt.wantW || h != tt.wantH {
				t.Fatalf("Fit = %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestFillScalesUp(t *testing.T) {
	w, h := Fill(100, 50, 390, 240)
	if w != 390 || h != 195 {
		t.Fatalf("Fill = %dx%d, want 390x195", w, h)
	}
}

func TestScale(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 40, 20))
	dst := Scale(src, 10, 5)
	if b := dst.Bounds(); b.Dx() != 10 || b.Dy() != 5 {
		t.Fatalf("unexpected bounds %v", b)
	}
}
