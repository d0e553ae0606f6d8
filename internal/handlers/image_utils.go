package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"khidmaBack/internal/models"
)

const (
	maxMultipartMemory = 32 << 20
	maxImageBytes      = 5 << 20
)

// isMultipart reports whether the request carries a multipart form.
func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// collectImageFiles gathers every file stored under the given form keys.
func collectImageFiles(form *multipart.Form, keys ...string) []*multipart.FileHeader {
	if form == nil {
		return nil
	}
	var result []*multipart.FileHeader
	for _, key := range keys {
		if headers, ok := form.File[key]; ok {
			result = append(result, headers...)
		}
	}
	return result
}

// decodeFormPayload reads the JSON document sent in the "payload" form field.
func decodeFormPayload(form *multipart.Form, dst interface{}) error {
	values := form.Value["payload"]
	if len(values) == 0 || strings.TrimSpace(values[0]) == "" {
		return errInvalidJSON
	}
	if err := json.Unmarshal([]byte(values[0]), dst); err != nil {
		return errInvalidJSON
	}
	return nil
}

type uploadedFile struct {
	Name string
	Data []byte
}

func readImageFiles(headers []*multipart.FileHeader) ([]uploadedFile, error) {
	files := make([]uploadedFile, 0, len(headers))
	for _, fh := range headers {
		if fh.Size > maxImageBytes {
			return nil, fmt.Errorf("%w: %s exceeds %d bytes", models.ErrInvalidFile, fh.Filename, maxImageBytes)
		}
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(io.LimitReader(f, maxImageBytes+1))
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", fh.Filename, err)
		}
		files = append(files, uploadedFile{Name: fh.Filename, Data: data})
	}
	return files, nil
}
