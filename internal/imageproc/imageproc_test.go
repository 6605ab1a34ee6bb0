package imageproc

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
)

func pngBytes(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test png: %v", err)
	}
	return buf.Bytes()
}

func TestLetterbox_WideImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 100, 50)) // ratio 2.0 > 1.5
	got := Letterbox(src, 1200, 800)

	bounds := got.Bounds()
	if bounds.Dx() != 1200 || bounds.Dy() != 800 {
		t.Fatalf("Letterbox() canvas = %dx%d, want 1200x800", bounds.Dx(), bounds.Dy())
	}

	// Fitted area is 1200x600 centered, so the top rows are padding.
	r, g, b, _ := got.At(0, 0).RGBA()
	if r != 0xffff || g != 0xffff || b != 0xffff {
		t.Fatalf("Letterbox() padding pixel = %v, want white", got.At(0, 0))
	}
}

func TestLetterbox_TallImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 50, 100)) // ratio 0.5 < 1.5
	got := Letterbox(src, 1200, 800)

	bounds := got.Bounds()
	if bounds.Dx() != 1200 || bounds.Dy() != 800 {
		t.Fatalf("Letterbox() canvas = %dx%d, want 1200x800", bounds.Dx(), bounds.Dy())
	}

	// Fitted area is 400x800 centered, so the left columns are padding.
	r, g, b, _ := got.At(0, 400).RGBA()
	if r != 0xffff || g != 0xffff || b != 0xffff {
		t.Fatalf("Letterbox() padding pixel = %v, want white", got.At(0, 400))
	}
}

func TestProcess_NormalizesToJPEG(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(pngBytes(t, 30, 30, color.RGBA{R: 255, A: 255}))
	}))
	defer server.Close()

	p := New(server.Client(), 120, 80, "")
	data, err := p.Process(context.Background(), server.URL+"/img.png", "")
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	decoded, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Process() output does not decode: %v", err)
	}
	if format != "jpeg" {
		t.Fatalf("Process() output format = %q, want jpeg", format)
	}
	if decoded.Bounds().Dx() != 120 || decoded.Bounds().Dy() != 80 {
		t.Fatalf("Process() output = %dx%d, want 120x80", decoded.Bounds().Dx(), decoded.Bounds().Dy())
	}
}

func TestProcess_FetchStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	p := New(server.Client(), 120, 80, "")
	if _, err := p.Process(context.Background(), server.URL+"/missing.png", ""); err == nil {
		t.Fatal("Process() expected error for 404 response")
	}
}

func TestProcess_DecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not an image"))
	}))
	defer server.Close()

	p := New(server.Client(), 120, 80, "")
	if _, err := p.Process(context.Background(), server.URL+"/bad.png", ""); err == nil {
		t.Fatal("Process() expected error for undecodable body")
	}
}
