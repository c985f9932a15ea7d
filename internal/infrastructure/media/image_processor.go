// Package media provides image processing for canvas uploads.
package media

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// ThumbnailWidth is the pixel width canvas previews render at.
const ThumbnailWidth = 600

// ImageProcessor stores canvas images under the data directory and
// generates WebP thumbnails for note previews.
type ImageProcessor struct {
	basePath string // {dataDir}/media
}

// NewImageProcessor creates a new ImageProcessor instance
func NewImageProcessor(basePath string) *ImageProcessor {
	return &ImageProcessor{
		basePath: basePath,
	}
}

// ProcessCanvasImage decodes a base64 canvas image upload, saves the
// original, and writes a WebP thumbnail next to it. Returns the relative
// URL paths for the original and the thumbnail.
func (p *ImageProcessor) ProcessCanvasImage(data, imageID string) (string, string, error) {
	if data == "" {
		return "", "", fmt.Errorf("empty base64 data")
	}

	ext := extractExtension(data)
	if ext == "" {
		return "", "", fmt.Errorf("unsupported image format")
	}

	raw, err := decodeBase64Payload(data)
	if err != nil {
		return "", "", err
	}

	imagesDir := filepath.Join(p.basePath, "images")
	thumbsDir := filepath.Join(p.basePath, "thumbs")
	for _, dir := range []string{imagesDir, thumbsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	originalName := fmt.Sprintf("%s.%s", imageID, ext)
	originalPath := filepath.Join(imagesDir, originalName)
	if err := os.WriteFile(originalPath, raw, 0644); err != nil {
		return "", "", fmt.Errorf("failed to write image: %w", err)
	}

	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		os.Remove(originalPath)
		return "", "", fmt.Errorf("failed to decode image: %w", err)
	}

	resized := imaging.Resize(img, ThumbnailWidth, 0, imaging.Lanczos)

	thumbName := fmt.Sprintf("%s_%dpx.webp", imageID, ThumbnailWidth)
	thumbPath := filepath.Join(thumbsDir, thumbName)
	// Save with the webp library, not imaging.Save: imaging has no WebP encoder.
	if err := webp.Save(thumbPath, resized, &webp.Options{Quality: 85}); err != nil {
		os.Remove(originalPath)
		return "", "", fmt.Errorf("failed to save WebP thumbnail: %w", err)
	}

	return "/media/images/" + originalName, "/media/thumbs/" + thumbName, nil
}

// DeleteCanvasImage removes an uploaded image and its thumbnail.
func (p *ImageProcessor) DeleteCanvasImage(imageID string) error {
	if imageID == "" {
		return fmt.Errorf("empty image id")
	}

	for _, ext := range []string{"png", "jpg", "jpeg", "webp"} {
		os.Remove(filepath.Join(p.basePath, "images", fmt.Sprintf("%s.%s", imageID, ext)))
	}
	os.Remove(filepath.Join(p.basePath, "thumbs", fmt.Sprintf("%s_%dpx.webp", imageID, ThumbnailWidth)))
	return nil
}

func decodeBase64Payload(data string) ([]byte, error) {
	idx := strings.Index(data, "base64,")
	if idx == -1 {
		return nil, fmt.Errorf("invalid base64 image format")
	}
	raw, err := base64.StdEncoding.DecodeString(data[idx+len("base64,"):])
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64: %w", err)
	}
	return raw, nil
}

// extractExtension auto-detects file extension from MIME type
func extractExtension(data string) string {
	if strings.Contains(data, "data:image/png") {
		return "png"
	} else if strings.Contains(data, "data:image/jpeg") || strings.Contains(data, "data:image/jpg") {
		return "jpg"
	} else if strings.Contains(data, "data:image/webp") {
		return "webp"
	}
	return ""
}
