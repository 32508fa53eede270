package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"

	"github.com/psds-microservice/dispatch/internal/model"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// MigrateShared применяет миграции общей базы пользователей (goose, версии в goose_db_version).
func MigrateShared(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("migrate shared: %w", err)
	}
	fsys, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return fmt.Errorf("migrate shared: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, sqlDB, fsys)
	if err != nil {
		return fmt.Errorf("migrate shared: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("migrate shared: %w", err)
	}
	return nil
}

// Помесячные файлы создавались разными версиями программы и не имеют таблицы версий,
// поэтому схема records доводится до текущей по фактическому набору колонок.
const createRecords = `CREATE TABLE IF NOT EXISTS main.records (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT,
	surname TEXT,
	description TEXT,
	date TEXT,
	user_id INTEGER
)`

type columnDef struct {
	Column string
	Def    string
}

var periodColumns = []columnDef{
	{"assignment_date", "TEXT"},
	{"status", "TEXT"},
	{"problem", "TEXT"},
	{"phone", "TEXT"},
	{"address", "TEXT"},
	{"created_at", "TEXT"},
	{"improvement", "TEXT"},
	{"brigade_number", "TEXT"},
	{"category", "TEXT"},
}

// MigratePeriod создаёт records при отсутствии, добавляет недостающие колонки
// и приводит статусы к текущему набору. Повторный запуск ничего не меняет.
// Возвращает имена добавленных колонок.
func MigratePeriod(ctx context.Context, db *gorm.DB) ([]string, error) {
	var added []string
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(createRecords).Error; err != nil {
			return fmt.Errorf("create records: %w", err)
		}
		existing, err := tableColumns(tx, "records")
		if err != nil {
			return err
		}
		for _, c := range periodColumns {
			if existing[c.Column] {
				continue
			}
			if err := tx.Exec(fmt.Sprintf("ALTER TABLE main.records ADD COLUMN %s %s", c.Column, c.Def)).Error; err != nil {
				return fmt.Errorf("add column %s: %w", c.Column, err)
			}
			added = append(added, c.Column)
		}

		if !existing["status"] {
			err = tx.Exec("UPDATE main.records SET status = ? WHERE status IS NULL", string(model.StatusNotDone)).Error
		} else {
			err = tx.Exec("UPDATE main.records SET status = ? WHERE status = ?",
				string(model.StatusNotDone), string(model.StatusLegacyNotStarted)).Error
		}
		if err != nil {
			return fmt.Errorf("normalize status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("migrate period: %w", err)
	}
	return added, nil
}

func tableColumns(tx *gorm.DB, table string) (map[string]bool, error) {
	rows, err := tx.Raw(fmt.Sprintf("PRAGMA main.table_info(%s)", table)).Rows()
	if err != nil {
		return nil, fmt.Errorf("table_info %s: %w", table, err)
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var (
			cid     int
			name    string
			typ     string
			notNull int
			dflt    interface{}
			pk      int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("table_info %s: %w", table, err)
		}
		cols[name] = true
	}
	return cols, rows.Err()
}
