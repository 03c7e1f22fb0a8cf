package dbtest

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Migrate применяет все *.sql из каталога в лексическом порядке имен.
func Migrate(db *sqlx.DB, dir string) error {
	fileNames, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return fmt.Errorf("filepath.Glob: %w", err)
	}

	if len(fileNames) == 0 {
		return fmt.Errorf("no migrations in %s", dir)
	}

	slices.Sort(fileNames)

	for _, fileName := range fileNames {
		fileBytes, err := os.ReadFile(fileName)
		if err != nil {
			return fmt.Errorf("os.ReadFile: %w", err)
		}

		if _, err = db.Exec(string(fileBytes)); err != nil {
			return fmt.Errorf("db.Exec(%s): %w", filepath.Base(fileName), err)
		}
	}

	return nil
}

// Truncate очищает таблицы между тестами.
func Truncate(db *sqlx.DB, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}

	if _, err := db.Exec("TRUNCATE " + strings.Join(tables, ", ") + " CASCADE"); err != nil {
		return fmt.Errorf("db.Exec: %w", err)
	}

	return nil
}
