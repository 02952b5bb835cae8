// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"SurgiFlow/database"
	"fmt"
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDB returns a migrated in-memory SQLite database. A single connection
// keeps every query on the same in-memory database.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.RunMigrations(db))
	return db
}

// Templates returns a filesystem holding the two Oxford templates with
// twelve questions scored 0 to 4.
func Templates() fstest.MapFS {
	return fstest.MapFS{
		"oxfordkneescore.json": &fstest.MapFile{Data: []byte(OxfordTemplate("Oxford Knee Score"))},
		"oxfordhipscore.json":  &fstest.MapFile{Data: []byte(OxfordTemplate("Oxford Hip Score"))},
	}
}

// OxfordTemplate renders a twelve-question template with numeric ids.
func OxfordTemplate(title string) string {
	questions := make([]string, 0, 12)
	for i := 1; i <= 12; i++ {
		questions = append(questions, fmt.Sprintf(`{"id": %d, "text": "Question %d", "range_min": 0, "range_max": 4}`, i, i))
	}
	return fmt.Sprintf(`{"name": %q, "questions": [%s]}`, title, strings.Join(questions, ","))
}

// WithFile adds or replaces one template file.
func WithFile(fsys fstest.MapFS, name, data string) fs.FS {
	fsys[name] = &fstest.MapFile{Data: []byte(data)}
	return fsys
}

