package migration

import (
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestAvailable(t *testing.T) {
	migrations, err := Available()
	require.NoError(t, err)

	require.NotEmpty(t, migrations)
	assert.Equal(t, Migration{Version: 1, Name: "create_rental_tables"}, migrations[0])
	for i := 1; i < len(migrations); i++ {
		assert.Less(t, migrations[i-1].Version, migrations[i].Version)
	}
}

func TestEmbeddedMigrations_ArePaired(t *testing.T) {
	migrations, err := Available()
	require.NoError(t, err)

	for _, mig := range migrations {
		name := fmt.Sprintf("%s/%06d_%s.down.sql", sourceDir, mig.Version, mig.Name)
		down, err := fs.ReadFile(migrationsFS, name)
		require.NoError(t, err, "missing down migration %s", name)
		assert.NotEmpty(t, strings.TrimSpace(string(down)))
	}
}

func TestMigrateLogger_Verbose(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	l := migrateLogger{zap.New(core).Sugar()}

	assert.True(t, l.Verbose())
	l.Printf("Start buffering %v\n", "1/u create_rental_tables")
	require.Equal(t, 1, recorded.Len())
	assert.Equal(t, "Start buffering 1/u create_rental_tables", recorded.All()[0].Message)

	assert.False(t, migrateLogger{zap.NewNop().Sugar()}.Verbose())
}

func TestInitialMigration_CreatesRentalTables(t *testing.T) {
	up, err := fs.ReadFile(migrationsFS, sourceDir+"/000001_create_rental_tables.up.sql")
	require.NoError(t, err)

	sql := string(up)
	for _, table := range []string{"landlords", "properties", "tenants", "payments"} {
		assert.Contains(t, sql, "CREATE TABLE IF NOT EXISTS "+table)
	}
	assert.Contains(t, sql, "idx_landlords_phone")
	assert.Contains(t, sql, "amount > 0")
}
