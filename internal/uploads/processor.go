// Copyright (c) 2025-2026 Lensfolio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package uploads prepares admin media uploads before they are sent to
// the portfolio API: format sniffing, EXIF orientation correction,
// capture metadata extraction, and thumbnail generation. Files are
// never stored locally; the processed bytes stream straight to the
// API.
package uploads

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder
)

// Thumbnail bounds and encoding quality.
const (
	thumbMaxWidth   = 480
	thumbMaxHeight  = 480
	thumbQuality    = 80
	originalQuality = 92
)

// Processed is an upload ready for the API.
type Processed struct {
	FileName    string
	ContentType string
	Data        []byte
	Thumbnail   []byte // JPEG, fits within thumbMaxWidth x thumbMaxHeight
	Width       int
	Height      int

	// Capture metadata from EXIF, when present.
	TakenAt *time.Time
	Camera  string
}

// Processor validates and transforms uploads.
type Processor struct {
	maxSize int64
}

// NewProcessor creates a processor enforcing the given size limit in
// bytes.
func NewProcessor(maxSize int64) *Processor {
	return &Processor{maxSize: maxSize}
}

// Process reads the upload, corrects orientation, extracts capture
// metadata, and renders a thumbnail. title names the stored file;
// original supplies the extension.
func (p *Processor) Process(r io.Reader, title, original string) (*Processed, error) {
	data, err := io.ReadAll(io.LimitReader(r, p.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if int64(len(data)) > p.maxSize {
		return nil, fmt.Errorf("file exceeds the %d MB limit", p.maxSize/(1<<20))
	}

	format := detectFormat(data)
	if format == "" {
		return nil, fmt.Errorf("unsupported image format")
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	// EXIF is stripped on re-encode, so orientation must be baked in
	// and capture metadata read out first.
	takenAt, camera := readCaptureMetadata(bytes.NewReader(data))
	img = applyOrientation(img, readOrientation(bytes.NewReader(data)))

	bounds := img.Bounds()

	processed, err := encodeImage(img, format, originalQuality)
	if err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}

	thumb := imaging.Fit(img, thumbMaxWidth, thumbMaxHeight, imaging.Lanczos)
	thumbData, err := encodeImage(thumb, "jpeg", thumbQuality)
	if err != nil {
		return nil, fmt.Errorf("encoding thumbnail: %w", err)
	}

	return &Processed{
		FileName:    FileName(title, original),
		ContentType: formatToMimeType(format),
		Data:        processed,
		Thumbnail:   thumbData,
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
		TakenAt:     takenAt,
		Camera:      camera,
	}, nil
}

// readOrientation reads the EXIF orientation tag.
// Returns 1 (normal) when it cannot be determined.
func readOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}

	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}

	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}

	return orientation
}

// readCaptureMetadata pulls the capture time and camera model from
// EXIF. Either may be absent.
func readCaptureMetadata(r io.Reader) (*time.Time, string) {
	x, err := exif.Decode(r)
	if err != nil {
		return nil, ""
	}

	var takenAt *time.Time
	if t, err := x.DateTime(); err == nil {
		takenAt = &t
	}

	var camera string
	if tag, err := x.Get(exif.Model); err == nil {
		if s, err := tag.StringVal(); err == nil {
			camera = strings.TrimSpace(s)
		}
	}

	return takenAt, camera
}

// applyOrientation bakes the EXIF orientation into the pixels.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.FlipH(imaging.Rotate270(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.FlipH(imaging.Rotate90(img))
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

// encodeImage encodes an image with the specified format and quality.
// WebP encoding has no pure Go implementation, so WebP re-encodes as
// JPEG.
func encodeImage(img image.Image, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}
	case "gif":
		if err := gif.Encode(&buf, img, nil); err != nil {
			return nil, err
		}
	default:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

// detectFormat detects the image format from raw bytes.
func detectFormat(data []byte) string {
	contentType := http.DetectContentType(data)
	// Reject TIFF (CVE-2023-36308 in disintegration/imaging)
	if strings.Contains(contentType, "tiff") {
		return ""
	}
	switch {
	case strings.Contains(contentType, "jpeg"):
		return "jpeg"
	case strings.Contains(contentType, "png"):
		return "png"
	case strings.Contains(contentType, "gif"):
		return "gif"
	case strings.Contains(contentType, "webp"):
		return "webp"
	default:
		return ""
	}
}

func formatToMimeType(format string) string {
	switch format {
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	default:
		return "image/jpeg"
	}
}
