package hydrate

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/poiesic/stride/core"
	"github.com/poiesic/stride/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h)), nil))
	return buf.Bytes()
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func decodeBounds(t *testing.T, blob []byte) (int, int) {
	t.Helper()
	img, format, err := image.Decode(bytes.NewReader(blob))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	return img.Bounds().Dx(), img.Bounds().Dy()
}

func TestFitWithin(t *testing.T) {
	cases := []struct {
		w, h, max    int
		wantW, wantH int
	}{
		{640, 480, 320, 320, 240},
		{480, 640, 320, 240, 320},
		{100, 50, 320, 100, 50},
		{320, 320, 320, 320, 320},
		{4000, 1, 320, 320, 1},
	}
	for _, c := range cases {
		gotW, gotH := fitWithin(c.w, c.h, c.max)
		assert.Equal(t, c.wantW, gotW, "fitWithin(%d, %d, %d)", c.w, c.h, c.max)
		assert.Equal(t, c.wantH, gotH, "fitWithin(%d, %d, %d)", c.w, c.h, c.max)
	}
}

func TestThumbnail_DownscalesLandscape(t *testing.T) {
	thumb, err := Thumbnail(encodeJPEG(t, 640, 480))
	require.NoError(t, err)
	w, h := decodeBounds(t, thumb)
	assert.Equal(t, 320, w)
	assert.Equal(t, 240, h)
}

func TestThumbnail_NeverUpscales(t *testing.T) {
	thumb, err := Thumbnail(encodeJPEG(t, 100, 50))
	require.NoError(t, err)
	w, h := decodeBounds(t, thumb)
	assert.Equal(t, 100, w)
	assert.Equal(t, 50, h)
}

func TestThumbnail_AcceptsPNG(t *testing.T) {
	thumb, err := Thumbnail(encodePNG(t, 800, 800))
	require.NoError(t, err)
	w, h := decodeBounds(t, thumb)
	assert.Equal(t, 320, w)
	assert.Equal(t, 320, h)
}

func TestThumbnail_RejectsGarbage(t *testing.T) {
	_, err := Thumbnail([]byte("not an image at all"))
	require.Error(t, err)
}

func TestDownscale(t *testing.T) {
	full, err := Downscale(encodeJPEG(t, 2560, 1920))
	require.NoError(t, err)
	w, h := decodeBounds(t, full)
	assert.Equal(t, 1280, w)
	assert.Equal(t, 960, h)
}

func TestServiceItems(t *testing.T) {
	svc, err := NewService()
	require.NoError(t, err)
	defer svc.Close()

	older := &store.RawItem{
		Meta: &core.Item{
			ID:        "older",
			Client:    "ACME",
			CreatedAt: 1000,
			Images: []core.ImageRef{
				{ID: "a", Name: "a.jpg", Mime: "image/jpeg"},
				{ID: "gone", Name: "gone.jpg", Mime: "image/jpeg"},
			},
		},
		Blobs: map[string][]byte{"a": encodeJPEG(t, 640, 480)},
	}
	newer := &store.RawItem{
		Meta: &core.Item{
			ID:        "newer",
			Client:    "ACME",
			CreatedAt: 2000,
			Images: []core.ImageRef{
				{ID: "b", Name: "b.jpg", Mime: "image/jpeg"},
				{ID: "bad", Name: "bad.jpg", Mime: "image/jpeg"},
			},
		},
		Blobs: map[string][]byte{
			"b":   encodeJPEG(t, 640, 480),
			"bad": []byte("corrupt"),
		},
	}

	items, err := svc.Items(context.Background(), []*store.RawItem{older, newer})
	require.NoError(t, err)
	require.Len(t, items, 2)

	// newest first; missing and undecodable blobs dropped
	assert.Equal(t, "newer", items[0].Meta.ID)
	require.Len(t, items[0].Images, 1)
	assert.Equal(t, "b", items[0].Images[0].ID)

	assert.Equal(t, "older", items[1].Meta.ID)
	require.Len(t, items[1].Images, 1)
	assert.Equal(t, "a", items[1].Images[0].ID)
	assert.NotEmpty(t, items[1].Images[0].Thumb)
}

func TestServiceItems_PreservesImageOrder(t *testing.T) {
	svc, err := NewService()
	require.NoError(t, err)
	defer svc.Close()

	raw := &store.RawItem{
		Meta: &core.Item{
			ID:        "multi",
			Client:    "ACME",
			CreatedAt: 1000,
			Images: []core.ImageRef{
				{ID: "one", Name: "one.jpg", Mime: "image/jpeg"},
				{ID: "two", Name: "two.jpg", Mime: "image/jpeg"},
				{ID: "three", Name: "three.jpg", Mime: "image/jpeg"},
			},
		},
		Blobs: map[string][]byte{
			"one":   encodeJPEG(t, 64, 64),
			"two":   encodeJPEG(t, 64, 64),
			"three": encodeJPEG(t, 64, 64),
		},
	}

	items, err := svc.Items(context.Background(), []*store.RawItem{raw})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Len(t, items[0].Images, 3)
	assert.Equal(t, "one", items[0].Images[0].ID)
	assert.Equal(t, "two", items[0].Images[1].ID)
	assert.Equal(t, "three", items[0].Images[2].ID)
}
