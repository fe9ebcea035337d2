// Package debug provides screenshot capture and reference geometry for
// inspecting rendered maps.
package debug

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"
)

// LatestName is the file every capture is also written to, so scripts can
// pick up the newest frame without scanning the directory.
const LatestName = "latest.png"

// ScreenshotCapture writes frames to PNG files.
type ScreenshotCapture struct {
	outputDir string
	prefix    string
	now       func() time.Time
	last      string
	seq       int
}

// NewScreenshotCapture creates a new screenshot capture handler.
func NewScreenshotCapture(outputDir, prefix string) *ScreenshotCapture {
	return &ScreenshotCapture{
		outputDir: outputDir,
		prefix:    prefix,
		now:       time.Now,
	}
}

// SetOutputDir sets the output directory for screenshots.
func (sc *ScreenshotCapture) SetOutputDir(dir string) {
	sc.outputDir = dir
}

// FlipRows converts bottom-up RGBA rows as read back from OpenGL into a
// top-down image.
func FlipRows(pixels []byte, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", width, height)
	}
	if len(pixels) != width*height*4 {
		return nil, fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rowSize := width * 4
	for y := 0; y < height; y++ {
		src := (height - 1 - y) * rowSize
		dst := y * img.Stride
		copy(img.Pix[dst:dst+rowSize], pixels[src:src+rowSize])
	}
	return img, nil
}

// CaptureFromPixels saves bottom-up RGBA pixels with width*height*4 bytes.
func (sc *ScreenshotCapture) CaptureFromPixels(pixels []byte, width, height int) (string, error) {
	img, err := FlipRows(pixels, width, height)
	if err != nil {
		return "", err
	}
	return sc.CaptureFromImage(img)
}

// CaptureFromImage saves img and refreshes LatestName next to it.
func (sc *ScreenshotCapture) CaptureFromImage(img image.Image) (string, error) {
	if sc.outputDir != "" {
		if err := os.MkdirAll(sc.outputDir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	filename := sc.GenerateFilename()
	if err := writePNG(filename, img); err != nil {
		return "", err
	}
	sc.last = filename

	if err := writePNG(filepath.Join(sc.outputDir, LatestName), img); err != nil {
		return filename, fmt.Errorf("updating %s: %w", LatestName, err)
	}
	return filename, nil
}

// GenerateFilename returns the next screenshot path without saving. Captures
// within the same second get a numeric suffix.
func (sc *ScreenshotCapture) GenerateFilename() string {
	timestamp := sc.now().Format("2006-01-02_15-04-05")
	name := fmt.Sprintf("%s_%s.png", sc.prefix, timestamp)
	if sc.outputDir != "" {
		name = filepath.Join(sc.outputDir, name)
	}

	base := name
	if sc.last != "" && sc.sameSecond(base) {
		sc.seq++
		name = fmt.Sprintf("%s_%d.png", base[:len(base)-len(".png")], sc.seq)
	} else {
		sc.seq = 0
	}
	return name
}

func (sc *ScreenshotCapture) sameSecond(base string) bool {
	stem := base[:len(base)-len(".png")]
	return sc.last == base || (len(sc.last) > len(stem) && sc.last[:len(stem)] == stem && sc.last[len(stem)] == '_')
}

func writePNG(path string, img image.Image) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("encoding PNG: %w", err)
	}
	return nil
}
