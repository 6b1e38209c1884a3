package postgres

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateRejectsBadInput(t *testing.T) {
	err := Migrate("", "up")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")

	for _, dir := range []string{"", "UP", "sideways"} {
		err := Migrate("postgres://localhost/enrollments", dir)
		require.Error(t, err, "direction %q", dir)
		assert.Contains(t, err.Error(), "direction")
	}
}

func TestMigrationsArePaired(t *testing.T) {
	ups, err := fs.Glob(migrationFS, "migrations/*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(migrationFS, "migrations/*.down.sql")
	require.NoError(t, err)

	require.NotEmpty(t, ups)
	assert.Len(t, downs, len(ups))
}

func TestOpenRequiresDSN(t *testing.T) {
	_, err := Open(t.Context(), "")
	require.Error(t, err)
}
