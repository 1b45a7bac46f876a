// Package testutil provides shared test helpers for setting up stores and
// repositories.
package testutil

import (
	"os"
	"testing"

	"github.com/starford/ansuz/internal/repository"
	"github.com/starford/ansuz/internal/store"
)

// TestStore creates a temporary SQLite store that is automatically cleaned up.
func TestStore(t *testing.T) *store.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "ansuz-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := store.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// Repos bundles the repositories backed by one store.
type Repos struct {
	Documents *repository.Documents
	Templates *repository.Templates
	Settings  *repository.Settings
}

// TestRepos creates repositories over a temporary store.
func TestRepos(t *testing.T) Repos {
	t.Helper()
	db := TestStore(t)
	return Repos{
		Documents: repository.NewDocuments(db),
		Templates: repository.NewTemplates(db),
		Settings:  repository.NewSettings(db),
	}
}
