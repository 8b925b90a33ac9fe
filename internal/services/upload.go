package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// UploadService stores multipart photo uploads under the media directory.
// Stored paths are relative to the media root (e.g., "structures/169..._cafe.jpg")
// and served back under /media/.
type UploadService struct{ MediaDir string }

func NewUploadService(mediaDir string) *UploadService {
	if mediaDir == "" {
		mediaDir = "media"
	}
	return &UploadService{MediaDir: mediaDir}
}

var allowedImageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}

// Save writes the upload into MediaDir/subdir with a timestamped, cleaned
// filename and returns the media-relative path.
func (s *UploadService) Save(fh *multipart.FileHeader, subdir string) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedImageExts[ext] {
		return "", fmt.Errorf("unsupported image type: %s", ext)
	}
	base := strings.TrimSuffix(filepath.Base(fh.Filename), filepath.Ext(fh.Filename))
	// Strip stacked extensions like photo.jpg.jpg left by some clients.
	for {
		e := strings.ToLower(filepath.Ext(base))
		if e != "" && allowedImageExts[e] {
			base = strings.TrimSuffix(base, filepath.Ext(base))
		} else {
			break
		}
	}
	base = strings.ReplaceAll(base, " ", "_")
	if base == "" {
		base = "photo"
	}

	dir := filepath.Join(s.MediaDir, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	name := fmt.Sprintf("%d_%s%s", time.Now().UnixNano(), base, ext)

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return filepath.ToSlash(filepath.Join(subdir, name)), nil
}
