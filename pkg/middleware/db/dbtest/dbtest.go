// Package dbtest opens throwaway in-memory databases for package tests.
package dbtest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/scienceol/labinv/pkg/middleware/db"
)

// Open returns a datastore backed by a private in-memory SQLite database with
// the given models migrated. A single connection keeps the memory database
// alive for the lifetime of the test.
func Open(t testing.TB, models ...any) *db.Datastore {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	gdb, err := db.Open(sqlite.Open(dsn), db.LogConf{Level: "silent"})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := gdb.AutoMigrate(models...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db.NewDatastore(gdb)
}
