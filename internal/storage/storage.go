package storage

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Uploader stores service gallery images and returns their public URL.
type Uploader interface {
	Upload(ctx context.Context, folder, fileName string, data []byte) (string, error)
	Delete(ctx context.Context, url string) error
}

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// MaxImageSize bounds one uploaded image.
const MaxImageSize = 5 << 20

// ObjectName builds a unique key for an upload and checks its content type.
func ObjectName(data []byte) (string, string, error) {
	if len(data) == 0 {
		return "", "", fmt.Errorf("empty file")
	}
	if len(data) > MaxImageSize {
		return "", "", fmt.Errorf("file exceeds %d bytes", MaxImageSize)
	}
	ct := http.DetectContentType(data)
	ext, ok := allowedTypes[ct]
	if !ok {
		return "", "", fmt.Errorf("unsupported content type %s", ct)
	}
	return uuid.NewString() + ext, ct, nil
}

func objectKey(folder, fileName string) string {
	return path.Join(strings.Trim(folder, "/"), fileName)
}
