package services

import (
	"github.com/disintegration/imaging"
	"go.uber.org/zap"
)

// ImageService resizes uploaded images that exceed the configured bound.
type ImageService struct {
	maxDimension int
}

// NewImageService constructs an ImageService.
func NewImageService(maxDimension int) *ImageService {
	return &ImageService{maxDimension: maxDimension}
}

// ResizeProportionally shrinks the image at path in place so neither side
// exceeds the maximum dimension, preserving aspect ratio. Smaller images are
// left untouched.
func (s *ImageService) ResizeProportionally(path string) error {
	img, err := imaging.Open(path)
	if err != nil {
		return err
	}

	bounds := img.Bounds()
	if bounds.Dx() <= s.maxDimension && bounds.Dy() <= s.maxDimension {
		return nil
	}

	resized := imaging.Fit(img, s.maxDimension, s.maxDimension, imaging.Lanczos)
	if err := imaging.Save(resized, path); err != nil {
		return err
	}

	zap.L().Debug("logo resized",
		zap.String("path", path),
		zap.Int("width", resized.Bounds().Dx()),
		zap.Int("height", resized.Bounds().Dy()))
	return nil
}
