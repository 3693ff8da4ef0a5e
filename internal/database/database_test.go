package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

func TestOpen_MigratesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracker.db")
	db, err := Open(path, "silent", zap.NewNop())
	require.NoError(t, err)

	for _, table := range []string{"positions", "workers", "task_types", "teams", "projects", "tasks",
		"team_members", "project_teams", "task_assignees"} {
		require.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestGormLogLevel(t *testing.T) {
	require.Equal(t, logger.Silent, gormLogLevel("silent"))
	require.Equal(t, logger.Info, gormLogLevel("INFO"))
	require.Equal(t, logger.Warn, gormLogLevel(""))
}
