// Package imaging validates uploaded item images and renders preview
// thumbnails for them.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"net/http"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/erazemk/mintmarket/internal/apperr"
)

// ThumbnailDimension is the maximum width or height of a thumbnail.
const ThumbnailDimension = 256

// JPEGQuality is the compression quality for thumbnails.
const JPEGQuality = 80

// allowedExtensions maps accepted file extensions to the MIME type their
// content must sniff as.
var allowedExtensions = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
}

// Extension returns the lowercased extension of filename without the dot.
func Extension(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

// BaseName returns filename without its final extension.
func BaseName(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}

// ValidateExtension rejects file names whose extension is not an accepted
// image type.
func ValidateExtension(filename string) error {
	if _, ok := allowedExtensions[Extension(filename)]; !ok {
		return apperr.Business(apperr.FileExtensionNotSupported)
	}
	return nil
}

// Sniff detects the MIME type of data from its leading bytes (never from
// client headers) and rejects content that does not match the extension of
// filename.
func Sniff(filename string, data []byte) (string, error) {
	want, ok := allowedExtensions[Extension(filename)]
	if !ok {
		return "", apperr.Business(apperr.FileExtensionNotSupported)
	}
	if detected := http.DetectContentType(data); detected != want {
		return "", apperr.Business(apperr.FileExtensionNotSupported)
	}
	return want, nil
}

// Result is an encoded thumbnail.
type Result struct {
	Data []byte
	MIME string
}

// Thumbnail decodes an image of any accepted type, downscales it to fit
// ThumbnailDimension and re-encodes it as JPEG. Animated GIFs use their
// first frame.
func Thumbnail(data []byte) (*Result, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	img = downscale(img, ThumbnailDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flatten(img), &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}

	return &Result{Data: buf.Bytes(), MIME: "image/jpeg"}, nil
}

// downscale resizes img so neither dimension exceeds maxDim, keeping the
// aspect ratio. Smaller images are returned unchanged.
func downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}

	newW, newH := maxDim, maxDim
	if w > h {
		newH = max(1, h*maxDim/w)
	} else {
		newW = max(1, w*maxDim/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

// flatten composites img onto white so transparent areas do not turn black
// in JPEG output.
func flatten(img image.Image) image.Image {
	bounds := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Over)
	return dst
}
