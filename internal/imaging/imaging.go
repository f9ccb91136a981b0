// Package imaging provides the image plumbing shared by the extractor,
// the recognition engine, and the web handlers: decoding, resizing,
// bounds-safe cropping, and JPEG/base64 encoding.
package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
)

// ErrInvalidImage is returned for empty or undecodable image data.
var ErrInvalidImage = errors.New("empty or invalid image")

// Decode decodes JPEG, PNG, GIF, or BMP image data.
func Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrInvalidImage
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return img, nil
}

// Clone copies an image into a freshly allocated RGBA buffer.
func Clone(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	dst := image.NewRGBA(bounds)
	draw.Draw(dst, bounds, img, bounds.Min, draw.Src)
	return dst
}

// Resize scales an image to exactly width x height using CatmullRom
// interpolation. The traversal order is fixed, so repeated calls on the
// same input produce identical pixels.
func Resize(img image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Over, nil)
	return dst
}

// CropClamped extracts a sub-image after clamping the rectangle to the
// image bounds on all four sides. Returns ErrInvalidImage if the clamped
// region is empty.
func CropClamped(img image.Image, r image.Rectangle) (*image.RGBA, error) {
	clamped := r.Intersect(img.Bounds())
	if clamped.Empty() {
		return nil, fmt.Errorf("%w: crop region %v outside image bounds %v", ErrInvalidImage, r, img.Bounds())
	}
	dst := image.NewRGBA(image.Rect(0, 0, clamped.Dx(), clamped.Dy()))
	draw.Draw(dst, dst.Bounds(), img, clamped.Min, draw.Src)
	return dst, nil
}

// EncodeJPEG encodes an image as JPEG with the quality the rest of the
// system expects for stored face crops.
func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeBase64JPEG encodes an image as a base64 JPEG string for transport.
func EncodeBase64JPEG(img image.Image) (string, error) {
	data, err := EncodeJPEG(img)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}
