// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package hydrate turns raw stored blobs into display-ready images. Every
// incoming photo is re-encoded to JPEG at two sizes: a thumbnail that fits
// within 320 pixels and a downscaled original that fits within 1280 pixels.
// Images are never upscaled.
package hydrate

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	_ "image/gif"
	_ "image/png"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

const (
	// ThumbMaxDim bounds the longer edge of a thumbnail.
	ThumbMaxDim = 320
	// FullMaxDim bounds the longer edge of a stored original.
	FullMaxDim = 1280

	thumbQuality = 70
	fullQuality  = 80
)

// decode reads any of the supported photo formats. WebP has no decoder in
// the standard registry, so it gets a second pass.
func decode(blob []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(blob))
	if err == nil {
		return img, nil
	}
	if webpImg, webpErr := webp.Decode(bytes.NewReader(blob)); webpErr == nil {
		return webpImg, nil
	}
	return nil, fmt.Errorf("decode image: %w", err)
}

// fitWithin returns dimensions scaled so both edges fit inside max while
// preserving aspect ratio. Dimensions already within bounds pass through.
func fitWithin(w, h, max int) (int, int) {
	if w <= max && h <= max {
		return w, h
	}
	if w >= h {
		scaled := h * max / w
		if scaled < 1 {
			scaled = 1
		}
		return max, scaled
	}
	scaled := w * max / h
	if scaled < 1 {
		scaled = 1
	}
	return scaled, max
}

func scaleJPEG(blob []byte, maxDim, quality int) ([]byte, error) {
	src, err := decode(blob)
	if err != nil {
		return nil, err
	}
	bounds := src.Bounds()
	w, h := fitWithin(bounds.Dx(), bounds.Dy(), maxDim)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, dst, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return out.Bytes(), nil
}

// Thumbnail re-encodes a photo as a JPEG fitting within 320 pixels.
func Thumbnail(blob []byte) ([]byte, error) {
	return scaleJPEG(blob, ThumbMaxDim, thumbQuality)
}

// Downscale re-encodes a photo as a JPEG fitting within 1280 pixels. This
// is the form originals are persisted in.
func Downscale(blob []byte) ([]byte, error) {
	return scaleJPEG(blob, FullMaxDim, fullQuality)
}
