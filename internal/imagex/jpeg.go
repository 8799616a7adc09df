// Package imagex provides lossy size reduction for still images captured by
// the recorder. Videos are never touched.
package imagex

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	_ "image/gif"
	_ "image/png"
)

// DefaultQuality is the JPEG quality used when the configured value is
// out of the 1..100 range.
const DefaultQuality = 75

// Reduce re-encodes an image as JPEG at the given quality. If the re-encoded
// result is not smaller than the original, the original bytes are returned
// unchanged. The returned content type reflects the bytes that are returned.
//
// Reduce never modifies data in place.
func Reduce(data []byte, contentType string, quality int) ([]byte, string, error) {
	if quality < 1 || quality > 100 {
		quality = DefaultQuality
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, "", fmt.Errorf("encode jpeg: %w", err)
	}

	if buf.Len() >= len(data) {
		return data, contentType, nil
	}

	return buf.Bytes(), "image/jpeg", nil
}
