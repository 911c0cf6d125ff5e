package output

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/fogleman/gg"
)

// testImage returns a 2x2 image: red, green on top; blue, gray below
func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.SetRGBA(0, 0, color.RGBA{R: 255, A: 255})
	img.SetRGBA(1, 0, color.RGBA{G: 255, A: 255})
	img.SetRGBA(0, 1, color.RGBA{B: 255, A: 255})
	img.SetRGBA(1, 1, color.RGBA{R: 127, G: 128, B: 1, A: 255})
	return img
}

func TestWritePPM(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePPM(&buf, testImage()); err != nil {
		t.Fatalf("WritePPM failed: %v", err)
	}

	expected := "P3\n2 2\n255\n" +
		"255 0 0\n" +
		"0 255 0\n" +
		"0 0 255\n" +
		"127 128 1\n"
	if buf.String() != expected {
		t.Errorf("Unexpected PPM output:\n%q\nwant:\n%q", buf.String(), expected)
	}
}

func TestWritePPM_RowsTopToBottom(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 3))
	for y := 0; y < 3; y++ {
		img.SetRGBA(0, y, color.RGBA{R: uint8(y), A: 255})
	}

	var buf bytes.Buffer
	if err := WritePPM(&buf, img); err != nil {
		t.Fatalf("WritePPM failed: %v", err)
	}

	expected := "P3\n1 3\n255\n0 0 0\n1 0 0\n2 0 0\n"
	if buf.String() != expected {
		t.Errorf("Got %q, want %q", buf.String(), expected)
	}
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	img := testImage()

	t.Run("png", func(t *testing.T) {
		path := filepath.Join(dir, "nested", "render.png")
		if err := Save(path, img); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		loaded, err := gg.LoadPNG(path)
		if err != nil {
			t.Fatalf("LoadPNG failed: %v", err)
		}
		if loaded.Bounds() != img.Bounds() {
			t.Fatalf("Expected bounds %v, got %v", img.Bounds(), loaded.Bounds())
		}
		r, g, b, _ := loaded.At(1, 1).RGBA()
		if r>>8 != 127 || g>>8 != 128 || b>>8 != 1 {
			t.Errorf("Pixel (1,1) = (%d,%d,%d), want (127,128,1)", r>>8, g>>8, b>>8)
		}
	})

	t.Run("ppm", func(t *testing.T) {
		path := filepath.Join(dir, "render.ppm")
		if err := Save(path, img); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile failed: %v", err)
		}
		if !bytes.HasPrefix(data, []byte("P3\n2 2\n255\n")) {
			t.Errorf("Expected a P3 header, got %q", data)
		}
	})
}
