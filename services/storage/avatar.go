package storage

import (
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"time"
)

// subImager is satisfied by the stdlib image types we decode into.
type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// CropAvatarFile decodes the image at localFilePath, applies the crop
// rectangle derived from the client's framing parameters and writes the result
// as a temporary JPEG. The caller owns the returned file.
func CropAvatarFile(localFilePath string, p CropParams) (string, error) {
	f, err := os.Open(localFilePath)
	if err != nil {
		return "", fmt.Errorf("failed to open avatar file: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("failed to decode avatar image: %w", err)
	}

	bounds := img.Bounds()
	rect, err := CropRect(bounds.Dx(), bounds.Dy(), p)
	if err != nil {
		return "", err
	}
	rect = rect.Add(bounds.Min)

	si, ok := img.(subImager)
	if !ok {
		return "", fmt.Errorf("unsupported image type %T", img)
	}
	cropped := si.SubImage(rect)

	outPath := filepath.Join(os.TempDir(), fmt.Sprintf("avatar-%d.jpg", time.Now().UnixNano()))
	out, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("failed to create cropped file: %w", err)
	}
	defer out.Close()

	if err := jpeg.Encode(out, cropped, &jpeg.Options{Quality: 90}); err != nil {
		return "", fmt.Errorf("failed to encode cropped avatar: %w", err)
	}
	return outPath, nil
}
