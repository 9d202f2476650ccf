package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/sanjeevni-health/sanjeevni/db"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// OpenDB migrates a private in-memory sqlite database and installs it as
// db.DB for the duration of the test.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", name)

	conn, err := gorm.Open(sqlite.Open(dsn), db.Config(false))
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	previous := db.DB
	db.Use(conn)

	t.Cleanup(func() {
		db.Use(previous)
		_ = sqlDB.Close()
	})

	require.NoError(t, db.MigrateDatabase())

	return conn
}
