// Package export writes finished preview buffers to disk.
package export

import (
	"bufio"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Format selects the on-disk encoding of a preview.
type Format string

const (
	FormatPNG Format = "png"
	FormatRaw Format = "rgba"
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "png", "":
		return FormatPNG, nil
	case "rgba", "raw":
		return FormatRaw, nil
	default:
		return "", fmt.Errorf("unknown export format: %s", s)
	}
}

// ResultPath builds <dir>/<base>_<kind>.<ext>, where base is the script file
// name without its extension.
func ResultPath(dir, script string, kind fmt.Stringer, format Format) string {
	base := strings.TrimSuffix(filepath.Base(script), filepath.Ext(script))
	return filepath.Join(dir, fmt.Sprintf("%s_%s.%s", base, kind, format))
}

// Write stores img at path in the given format, creating the directory.
func Write(path string, img *image.RGBA, format Format) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(f)
	switch format {
	case FormatRaw:
		err = WriteRaw(w, img)
	default:
		err = png.Encode(w, img)
	}
	if err == nil {
		err = w.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func WritePNG(path string, img *image.RGBA) error {
	return Write(path, img, FormatPNG)
}

// WriteRaw writes tightly packed RGBA rows, width*height*4 bytes.
func WriteRaw(w io.Writer, img *image.RGBA) error {
	bounds := img.Bounds()
	// sub-images and padded rows are repacked first
	if img.Stride != bounds.Dx()*4 || bounds.Min != (image.Point{}) {
		packed := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(packed, packed.Bounds(), img, bounds.Min, draw.Src)
		img = packed
	}
	_, err := w.Write(img.Pix)
	return err
}
