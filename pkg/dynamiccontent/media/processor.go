// Package media normalizes uploaded images into the square thumbnails stored
// for media fields and assigns them stable, human-readable object keys.
package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"path"
	"regexp"
	"strings"

	"golang.org/x/image/draw"
)

const (
	// CanvasSize is the side length of the square output image.
	CanvasSize = 500

	// MaxBytes is the size limit enforced on the processed image.
	MaxBytes = 2 * 1024 * 1024

	jpegQuality = 92
)

// ErrImageTooLarge indicates the processed image exceeds MaxBytes.
var ErrImageTooLarge = errors.New("image exceeds 2MB size limit after resizing")

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// Processed is the output of one image normalization.
type Processed struct {
	Data        []byte
	ContentType string
	Ext         string
}

// Process decodes an image and redraws it centered on a white square canvas,
// scaled to fit while keeping its aspect ratio. PNG input stays PNG; every
// other decodable format is re-encoded as JPEG.
func Process(r io.Reader) (*Processed, error) {
	src, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, CanvasSize, CanvasSize))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	bounds := src.Bounds()
	ratio := min(float64(CanvasSize)/float64(bounds.Dx()), float64(CanvasSize)/float64(bounds.Dy()))
	w := int(float64(bounds.Dx()) * ratio)
	h := int(float64(bounds.Dy()) * ratio)
	x := (CanvasSize - w) / 2
	y := (CanvasSize - h) / 2
	draw.CatmullRom.Scale(canvas, image.Rect(x, y, x+w, y+h), src, bounds, draw.Over, nil)

	var (
		buf         bytes.Buffer
		contentType string
		ext         string
	)
	if format == "png" {
		err = png.Encode(&buf, canvas)
		contentType, ext = "image/png", "png"
	} else {
		err = jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: jpegQuality})
		contentType, ext = "image/jpeg", "jpg"
	}
	if err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}

	if buf.Len() > MaxBytes {
		return nil, ErrImageTooLarge
	}
	return &Processed{Data: buf.Bytes(), ContentType: contentType, Ext: ext}, nil
}

// Key builds the object key for a processed image:
// <typeName>_<itemName>.<ext>, with anything outside [a-zA-Z0-9_-] stripped
// from the name parts.
func Key(typeName, itemName, ext string) string {
	return fmt.Sprintf("%s_%s.%s", SafeName(typeName), SafeName(itemName), ext)
}

// SafeName strips everything outside [a-zA-Z0-9_-] from a key part.
func SafeName(s string) string {
	return unsafeKeyChars.ReplaceAllString(s, "")
}

// ExtFromFilename extracts a file extension, defaulting to jpg.
func ExtFromFilename(name string) string {
	ext := strings.TrimPrefix(path.Ext(name), ".")
	if ext == "" {
		return "jpg"
	}
	return strings.ToLower(ext)
}
