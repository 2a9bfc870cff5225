// Package testdb opens throwaway in-memory SQLite stores for tests.
package testdb

import (
	"fmt"
	"sync/atomic"
	"testing"

	"gorm.io/gorm"

	"team-portal/internal/repository"
	"team-portal/pkg/logger"
)

var seq atomic.Int64

// Open returns a fresh database that is closed when the test ends.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb%d?mode=memory&cache=shared", seq.Add(1))
	db, err := repository.Open(repository.DriverSQLite, dsn, logger.Discard())
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() {
		_ = repository.Close(db)
	})

	return db
}

// Store returns a migrated store on a fresh database.
func Store(t testing.TB) *repository.Store {
	t.Helper()

	store, err := repository.NewStore(Open(t), logger.Discard())
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	return store
}
