package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// QueryFunc выполняет запрос к одной помесячной базе (с присоединённой common);
// period — имя её файла.
type QueryFunc[T any] func(ctx context.Context, db *gorm.DB, period string) ([]T, error)

// QueryPeriods выполняет fn по каждому файлу из files и склеивает результаты в порядке files.
// Пустой files — запрос к активной базе. Отсутствующие и нечитаемые файлы пропускаются
// с предупреждением. При отмене ctx возвращается уже собранное и ctx.Err().
func QueryPeriods[T any](ctx context.Context, s *Session, files []string, fn QueryFunc[T]) ([]T, error) {
	if len(files) == 0 {
		var out []T
		err := s.WithActive(func(db *gorm.DB) error {
			var err error
			out, err = fn(ctx, db, filepath.Base(s.activePath))
			return err
		})
		return out, err
	}
	var out []T
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		rows, err := queryFile(ctx, s, path, fn)
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			s.log.Warn("period skipped", zap.String("file", filepath.Base(path)), zap.Error(err))
			continue
		}
		out = append(out, rows...)
	}
	return out, nil
}

func queryFile[T any](ctx context.Context, s *Session, path string, fn QueryFunc[T]) ([]T, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	db, err := s.openPeriod(ctx, path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := Close(db); err != nil {
			s.log.Warn("close period", zap.String("file", filepath.Base(path)), zap.Error(err))
		}
	}()
	return fn(ctx, db, filepath.Base(path))
}
