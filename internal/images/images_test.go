package images

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, dir string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	path := filepath.Join(dir, "in.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func decodeJPEG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := jpeg.Decode(f)
	require.NoError(t, err)
	return img
}

func TestImport_ScalesDownWidePictures(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()

	name, err := Import(writePNG(t, src, 1600, 400), dst)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".jpg"))

	img := decodeJPEG(t, filepath.Join(dst, name))
	assert.Equal(t, MaxWidth, img.Bounds().Dx())
	assert.Equal(t, 200, img.Bounds().Dy())
}

func TestImport_KeepsSmallPictures(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()

	name, err := Import(writePNG(t, src, 120, 60), dst)
	require.NoError(t, err)

	img := decodeJPEG(t, filepath.Join(dst, name))
	assert.Equal(t, 120, img.Bounds().Dx())
	assert.Equal(t, 60, img.Bounds().Dy())
}

func TestDecode_RejectsUnknownFormat(t *testing.T) {
	_, err := Decode(strings.NewReader("GIF89a"), "picture.gif")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
