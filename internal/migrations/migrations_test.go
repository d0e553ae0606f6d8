package migrations

import (
	"errors"
	"io"
	"io/fs"
	"strings"
	"testing"

	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	src, err := iofs.New(files, "sql")
	require.NoError(t, err)
	defer src.Close()

	var versions []uint
	v, err := src.First()
	require.NoError(t, err)
	for {
		versions = append(versions, v)

		up, _, err := src.ReadUp(v)
		require.NoError(t, err, "up migration %d", v)
		body, _ := io.ReadAll(up)
		up.Close()
		assert.NotEmpty(t, strings.TrimSpace(string(body)))

		down, _, err := src.ReadDown(v)
		require.NoError(t, err, "down migration %d", v)
		down.Close()

		next, err := src.Next(v)
		if errors.Is(err, fs.ErrNotExist) {
			break
		}
		require.NoError(t, err)
		v = next
	}
	assert.Equal(t, []uint{1, 2, 3, 4}, versions)
}

func TestSchemaCoversOrderStatuses(t *testing.T) {
	raw, err := files.ReadFile("sql/000003_orders.up.sql")
	require.NoError(t, err)
	for _, status := range []string{"PENDING", "IN_PROGRESS", "DELIVERED", "COMPLETED", "DISPUTED", "CANCELLED"} {
		assert.Contains(t, string(raw), "'"+status+"'")
	}
}
