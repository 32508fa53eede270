package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/psds-microservice/dispatch/internal/model"
)

// driverName — sqlite3 с функцией fold(): регистронезависимое сравнение кириллицы
// (встроенные LOWER/LIKE в SQLite понимают только ASCII).
const driverName = "sqlite3_dispatch"

// SharedAlias — имя, под которым общая база пользователей присоединяется к помесячной.
const SharedAlias = "common"

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("fold", foldValue, true)
		},
	})
}

func foldValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return model.Fold(x)
	case []byte:
		return model.Fold(string(x))
	default:
		return model.Fold(fmt.Sprint(x))
	}
}

// Open открывает (и при необходимости создаёт) файл SQLite. Одно соединение на файл:
// ATTACH действует только в рамках соединения.
func Open(path string) (*gorm.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}
	db, err := gorm.Open(sqlite.New(sqlite.Config{
		DriverName: driverName,
		DSN:        path + "?_busy_timeout=5000",
	}), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)
	return db, nil
}

// Attach присоединяет общую базу пользователей как "common".
func Attach(ctx context.Context, db *gorm.DB, sharedPath string) error {
	if err := db.WithContext(ctx).Exec("ATTACH DATABASE ? AS "+SharedAlias, sharedPath).Error; err != nil {
		return fmt.Errorf("attach %s: %w", sharedPath, err)
	}
	return nil
}

func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
