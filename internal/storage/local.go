package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalUploader writes files under a directory served at BaseURL.
type LocalUploader struct {
	Dir     string
	BaseURL string
}

func (u *LocalUploader) Upload(_ context.Context, folder, fileName string, data []byte) (string, error) {
	key := objectKey(folder, fileName)
	full := filepath.Join(u.Dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", err
	}
	return strings.TrimRight(u.BaseURL, "/") + "/" + key, nil
}

func (u *LocalUploader) Delete(_ context.Context, url string) error {
	prefix := strings.TrimRight(u.BaseURL, "/") + "/"
	key := strings.TrimPrefix(url, prefix)
	if key == url || strings.Contains(key, "..") {
		return fmt.Errorf("url %s is not a local upload", url)
	}
	err := os.Remove(filepath.Join(u.Dir, filepath.FromSlash(key)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
