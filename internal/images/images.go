// Package images stores lesson pictures the way the lessons backend serves
// them: re-encoded as JPEG under a random name.
package images

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/nfnt/resize"
)

// MaxWidth is the width wider pictures are scaled down to.
const MaxWidth = 800

var ErrUnsupportedFormat = errors.New("unsupported image format")

// Decode reads a PNG or JPEG picture, chosen by the file extension of name.
func Decode(r io.Reader, name string) (image.Image, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		return png.Decode(r)
	case ".jpg", ".jpeg":
		return jpeg.Decode(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(name))
	}
}

// Save scales img down to MaxWidth when needed and writes it as a JPEG into
// dir. It returns the generated file name.
func Save(img image.Image, dir string) (string, error) {
	if img.Bounds().Dx() > MaxWidth {
		img = resize.Resize(MaxWidth, 0, img, resize.Lanczos3)
	}

	filename := uuid.New().String() + ".jpg"
	out, err := os.Create(filepath.Join(dir, filename))
	if err != nil {
		return "", err
	}
	if err := jpeg.Encode(out, img, &jpeg.Options{Quality: 80}); err != nil {
		out.Close()
		os.Remove(out.Name())
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	return filename, nil
}

// Import decodes the picture at path and saves it into dir.
func Import(path, dir string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	img, err := Decode(f, path)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", path, err)
	}
	return Save(img, dir)
}
