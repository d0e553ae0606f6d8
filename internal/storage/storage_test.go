package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestObjectNameDetectsType(t *testing.T) {
	name, ct, err := ObjectName(pngHeader)
	require.NoError(t, err)
	assert.Equal(t, "image/png", ct)
	assert.True(t, strings.HasSuffix(name, ".png"))

	_, _, err = ObjectName([]byte("plain text"))
	assert.Error(t, err)

	_, _, err = ObjectName(nil)
	assert.Error(t, err)
}

func TestLocalUploader(t *testing.T) {
	dir := t.TempDir()
	u := &LocalUploader{Dir: dir, BaseURL: "http://localhost/uploads/"}

	url, err := u.Upload(context.Background(), "/services/5/", "a.png", pngHeader)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost/uploads/services/5/a.png", url)

	_, err = os.Stat(filepath.Join(dir, "services", "5", "a.png"))
	require.NoError(t, err)

	require.NoError(t, u.Delete(context.Background(), url))
	_, err = os.Stat(filepath.Join(dir, "services", "5", "a.png"))
	assert.True(t, os.IsNotExist(err))

	assert.Error(t, u.Delete(context.Background(), "http://elsewhere/x.png"))
}
