// Package imageproc downloads source images and normalizes them onto a
// fixed-size canvas as JPEG.
package imageproc

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"

	// Decoders for the recognized source formats.
	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/andresuchdata/imagesync/pkg/logger"
)

const jpegQuality = 85

// Processor fetches an image over HTTP and letterboxes it to the target
// dimensions. When DebugDir is set, each normalized JPEG is also written
// locally under that directory.
type Processor struct {
	client   *http.Client
	width    int
	height   int
	debugDir string
}

func New(client *http.Client, width, height int, debugDir string) *Processor {
	return &Processor{client: client, width: width, height: height, debugDir: debugDir}
}

// Process downloads url, letterboxes the image and re-encodes it as JPEG.
func (p *Processor) Process(ctx context.Context, url, debugName string) ([]byte, error) {
	raw, err := p.fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image from %s: %w", url, err)
	}

	normalized := Letterbox(src, p.width, p.height)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, normalized, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg for %s: %w", url, err)
	}

	if p.debugDir != "" && debugName != "" {
		p.saveDebug(debugName, buf.Bytes())
	}

	return buf.Bytes(), nil
}

func (p *Processor) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s returned status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body of %s: %w", url, err)
	}
	return data, nil
}

func (p *Processor) saveDebug(name string, data []byte) {
	if err := os.MkdirAll(p.debugDir, 0o755); err != nil {
		logger.Log.Warn().Err(err).Str("dir", p.debugDir).Msg("failed to create debug directory")
		return
	}
	path := filepath.Join(p.debugDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		logger.Log.Warn().Err(err).Str("path", path).Msg("failed to save debug image")
		return
	}
	logger.Log.Debug().Str("path", path).Msg("debug image saved")
}

// Letterbox scales src to fit within width x height preserving aspect
// ratio, centered on a white canvas. The source is never cropped.
func Letterbox(src image.Image, width, height int) image.Image {
	bounds := src.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()

	imgRatio := float64(srcW) / float64(srcH)
	targetRatio := float64(width) / float64(height)

	var fitW, fitH int
	if imgRatio > targetRatio {
		fitW = width
		fitH = int(float64(width) / imgRatio)
	} else {
		fitH = height
		fitW = int(float64(height) * imgRatio)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	offsetX := (width - fitW) / 2
	offsetY := (height - fitH) / 2
	target := image.Rect(offsetX, offsetY, offsetX+fitW, offsetY+fitH)
	draw.CatmullRom.Scale(canvas, target, src, bounds, draw.Over, nil)

	return canvas
}
