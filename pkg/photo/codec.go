// Package photo turns captured images into transport-safe payloads and back
// into displayable resources.
package photo

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	// DefaultMaxWidth bounds the larger side of an encoded photo.
	DefaultMaxWidth = 1024
	// DefaultQuality is the JPEG quality used for every re-encode.
	DefaultQuality = 80
	// MediaTypeJPEG is the media type of every encoded payload.
	MediaTypeJPEG = "image/jpeg"
)

// Payload is an encoded photo ready to be embedded in a store record.
type Payload struct {
	Data      string `json:"data"`
	MediaType string `json:"media_type"`
	Filename  string `json:"filename,omitempty"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// Encoder resizes and re-encodes images.
type Encoder struct {
	MaxWidth int
	Quality  int
}

// NewEncoder returns an encoder, replacing non-positive settings with defaults.
func NewEncoder(maxWidth, quality int) *Encoder {
	if maxWidth <= 0 {
		maxWidth = DefaultMaxWidth
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}
	return &Encoder{MaxWidth: maxWidth, Quality: quality}
}

// Encode is Encoder.Encode with the default quality.
func Encode(r io.Reader, maxWidth int) (Payload, error) {
	return NewEncoder(maxWidth, DefaultQuality).Encode(r)
}

// Encode decodes r, scales it so that neither side exceeds MaxWidth and
// returns the JPEG re-encode as base64. Images already within bounds keep
// their dimensions.
func (e *Encoder) Encode(r io.Reader) (Payload, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: read source: %v", ErrEncodeFailed, err)
	}
	if len(raw) == 0 {
		return Payload{}, fmt.Errorf("%w: empty source", ErrEncodeFailed)
	}
	if mt := mimetype.Detect(raw); !strings.HasPrefix(mt.String(), "image/") {
		return Payload{}, fmt.Errorf("%w: unsupported content %s", ErrEncodeFailed, mt.String())
	}

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrEncodeFailed, err)
	}

	img := e.fit(src)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: e.Quality}); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrEncodeFailed, err)
	}

	b := img.Bounds()
	return Payload{
		Data:      base64.StdEncoding.EncodeToString(buf.Bytes()),
		MediaType: MediaTypeJPEG,
		Width:     b.Dx(),
		Height:    b.Dy(),
	}, nil
}

func (e *Encoder) fit(src image.Image) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	w2, h2 := scaledSize(w, h, e.MaxWidth)
	if w2 == w && h2 == h {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, w2, h2))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

// scaledSize keeps the aspect ratio and bounds the larger side by limit.
func scaledSize(w, h, limit int) (int, int) {
	if limit <= 0 || (w <= limit && h <= limit) {
		return w, h
	}
	if w >= h {
		nh := h * limit / w
		if nh < 1 {
			nh = 1
		}
		return limit, nh
	}
	nw := w * limit / h
	if nw < 1 {
		nw = 1
	}
	return nw, limit
}

// Decode returns the raw image bytes carried by p.
func (p Payload) Decode() ([]byte, error) {
	return base64.StdEncoding.DecodeString(p.Data)
}

// Displayable returns the payload as a data URI.
func (p Payload) Displayable() Displayable {
	return ToDisplayable(p.Data, p.MediaType)
}
