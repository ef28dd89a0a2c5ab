package services

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// ImageService handles image processing and storage
type ImageService struct {
	uploadDir string
}

func NewImageService(uploadDir string) *ImageService {
	if _, err := os.Stat(uploadDir); os.IsNotExist(err) {
		_ = os.MkdirAll(uploadDir, 0755)
	}
	return &ImageService{
		uploadDir: uploadDir,
	}
}

// ProcessAndSavePhoto stores the original image and a square thumbnail,
// returning both paths relative to the statically served upload root.
func (s *ImageService) ProcessAndSavePhoto(file multipart.File, header *multipart.FileHeader) (originalPath, thumbnailPath string, err error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		return "", "", fmt.Errorf("unsupported image format (only JPG/PNG)")
	}

	filename := uuid.New().String()
	originalFilename := filename + ext
	thumbFilename := filename + "_thumb" + ext

	img, _, err := image.Decode(file)
	if err != nil {
		return "", "", fmt.Errorf("failed to decode image: %w", err)
	}

	// Copy the original stream untouched, decoding above only validates it
	if _, err := file.Seek(0, 0); err != nil {
		return "", "", fmt.Errorf("failed to read file: %w", err)
	}

	outOriginalPath := filepath.Join(s.uploadDir, originalFilename)
	outOriginal, err := os.Create(outOriginalPath)
	if err != nil {
		return "", "", fmt.Errorf("failed to create file: %w", err)
	}
	defer outOriginal.Close()

	if _, err := io.Copy(outOriginal, file); err != nil {
		return "", "", fmt.Errorf("failed to save original image: %w", err)
	}

	thumbImg := imaging.Fill(img, 256, 256, imaging.Center, imaging.Lanczos)

	outThumbPath := filepath.Join(s.uploadDir, thumbFilename)
	outThumb, err := os.Create(outThumbPath)
	if err != nil {
		return "", "", fmt.Errorf("failed to create thumbnail: %w", err)
	}
	defer outThumb.Close()

	if ext == ".png" {
		err = png.Encode(outThumb, thumbImg)
	} else {
		err = jpeg.Encode(outThumb, thumbImg, &jpeg.Options{Quality: 85})
	}
	if err != nil {
		return "", "", fmt.Errorf("failed to save thumbnail: %w", err)
	}

	return "/uploads/" + originalFilename, "/uploads/" + thumbFilename, nil
}

// SaveImage stores an uploaded image without generating a thumbnail
// and returns its path relative to the upload root.
func (s *ImageService) SaveImage(file multipart.File, header *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" && ext != ".webp" {
		return "", fmt.Errorf("unsupported image format (only JPG/PNG/WEBP)")
	}

	filename := uuid.New().String() + ext
	outPath := filepath.Join(s.uploadDir, filename)

	out, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}

	return "/uploads/" + filename, nil
}
