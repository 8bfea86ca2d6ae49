package migrations_test

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/erp/posgateway/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(migrations.FS, ".")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}
	assert.Equal(t, ups, downs)
}

func TestSchemaHasCompletedSaleIndex(t *testing.T) {
	up, err := fs.ReadFile(migrations.FS, "000001_create_pos_schema.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(up), "ON pos_sale_logs (transaction_id) WHERE status = 'completed'")
}
