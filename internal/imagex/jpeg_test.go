package imagex

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noisy so PNG cannot compress it well and the JPEG re-encode actually shrinks it
func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 31 % 255), G: uint8(y * 57 % 255), B: uint8((x ^ y) % 255), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestReduceShrinksPNG(t *testing.T) {
	original := pngBytes(t, 120, 120)

	reduced, ct, err := Reduce(original, "image/png", 60)
	require.NoError(t, err)
	assert.Less(t, len(reduced), len(original))
	assert.Equal(t, "image/jpeg", ct)

	_, err = jpeg.Decode(bytes.NewReader(reduced))
	require.NoError(t, err, "result must be a valid jpeg")
}

func TestReduceKeepsOriginalWhenNotSmaller(t *testing.T) {
	// a tiny jpeg at max quality re-encodes to roughly the same size or bigger
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 10}))
	original := buf.Bytes()

	reduced, ct, err := Reduce(original, "image/jpeg", 100)
	require.NoError(t, err)
	assert.Equal(t, original, reduced)
	assert.Equal(t, "image/jpeg", ct)
}

func TestReduceInvalidImage(t *testing.T) {
	_, _, err := Reduce([]byte("definitely not an image"), "image/png", 75)
	assert.Error(t, err)
}

func TestReduceQualityOutOfRangeFallsBack(t *testing.T) {
	original := pngBytes(t, 64, 64)

	reduced, _, err := Reduce(original, "image/png", 0)
	require.NoError(t, err)
	assert.NotEmpty(t, reduced)
}
