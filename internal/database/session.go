package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/psds-microservice/dispatch/internal/errs"
)

// ErrSessionClosed — обращение к сессии после Close.
var ErrSessionClosed = errors.New("session closed")

// Session — открытое хранилище: общая база пользователей и активная помесячная база
// с присоединённой к ней общей. Безопасна для конкурентного использования: запросы к
// активной базе идут через WithActive, смена периода ждёт их завершения.
type Session struct {
	mu sync.RWMutex

	baseDir    string
	log        *zap.Logger
	shared     *gorm.DB
	active     *gorm.DB
	activePath string
}

// Signature — отпечаток активной базы для обнаружения чужих изменений.
type Signature struct {
	MaxID int64 `json:"max_id"`
	Count int64 `json:"count"`
}

// OpenSession открывает app.db (с миграциями) и помесячную базу для момента at.
func OpenSession(ctx context.Context, baseDir string, at time.Time, log *zap.Logger) (*Session, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create base dir: %w", err)
	}
	shared, err := Open(SharedPath(baseDir))
	if err != nil {
		return nil, err
	}
	if err := MigrateShared(ctx, shared); err != nil {
		_ = Close(shared)
		return nil, err
	}

	s := &Session{baseDir: baseDir, log: log, shared: shared}
	if err := s.Switch(ctx, PathFor(baseDir, at)); err != nil {
		_ = Close(shared)
		return nil, err
	}
	return s, nil
}

// openPeriod открывает помесячную базу, доводит схему и присоединяет общую.
func (s *Session) openPeriod(ctx context.Context, path string) (*gorm.DB, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	added, err := MigratePeriod(ctx, db)
	if err != nil {
		_ = Close(db)
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if len(added) > 0 {
		s.log.Info("period schema upgraded", zap.String("file", filepath.Base(path)), zap.Strings("columns", added))
	}
	if err := Attach(ctx, db, SharedPath(s.baseDir)); err != nil {
		_ = Close(db)
		return nil, err
	}
	return db, nil
}

// Switch делает активной базу path (создаётся при первом обращении).
// При ошибке активной остаётся прежняя.
func (s *Session) Switch(ctx context.Context, path string) error {
	if _, _, err := ParseFileName(path); err != nil {
		return err
	}
	if !filepath.IsAbs(path) && filepath.Dir(path) == "." {
		path = filepath.Join(s.baseDir, path)
	}
	db, err := s.openPeriod(ctx, path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.shared == nil {
		s.mu.Unlock()
		_ = Close(db)
		return ErrSessionClosed
	}
	old := s.active
	s.active, s.activePath = db, path
	s.mu.Unlock()

	if old != nil {
		if err := Close(old); err != nil {
			s.log.Warn("close previous period", zap.Error(err))
		}
	}
	s.log.Debug("active period", zap.String("file", filepath.Base(path)))
	return nil
}

// SwitchToDate — Switch на месяц, которому принадлежит t.
func (s *Session) SwitchToDate(ctx context.Context, t time.Time) error {
	return s.Switch(ctx, PathFor(s.baseDir, t))
}

// WithActive выполняет fn над активной базой под блокировкой чтения:
// Switch дожидается завершения fn и только потом закрывает прежнюю базу.
// fn не должна вызывать методы Session, берущие блокировку.
func (s *Session) WithActive(fn func(db *gorm.DB) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.active == nil {
		return ErrSessionClosed
	}
	return fn(s.active)
}

// WithPeriod выполняет fn над базой периода period (имя файла или ГГГГ-ММ);
// fn получает имя файла.
// Пустой period или активный файл — WithActive; другой период открывается на время fn
// и должен уже существовать.
func (s *Session) WithPeriod(ctx context.Context, period string, fn func(db *gorm.DB, period string) error) error {
	active := func(db *gorm.DB) error {
		return fn(db, filepath.Base(s.activePath))
	}
	if period == "" {
		return s.WithActive(active)
	}
	paths, err := ResolvePeriods(s.baseDir, []string{period})
	if err != nil {
		return err
	}
	if len(paths) != 1 {
		return fmt.Errorf("%w: %q", errs.ErrInvalidPeriod, period)
	}
	path := paths[0]
	if filepath.Base(path) == s.ActivePeriod() {
		return s.WithActive(active)
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%w: %s", errs.ErrPeriodNotFound, filepath.Base(path))
	}
	db, err := s.openPeriod(ctx, path)
	if err != nil {
		return err
	}
	defer func() {
		if err := Close(db); err != nil {
			s.log.Warn("close period", zap.String("file", filepath.Base(path)), zap.Error(err))
		}
	}()
	return fn(db, filepath.Base(path))
}

// ActivePeriod — имя файла активной базы.
func (s *Session) ActivePeriod() string {
	return filepath.Base(s.ActivePath())
}

func (s *Session) ActivePath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activePath
}

func (s *Session) Shared() *gorm.DB {
	return s.shared
}

func (s *Session) BaseDir() string {
	return s.baseDir
}

func (s *Session) Logger() *zap.Logger {
	return s.log
}

// Signature — (max(id), count) по records активной базы.
func (s *Session) Signature(ctx context.Context) (Signature, error) {
	var sig Signature
	err := s.WithActive(func(db *gorm.DB) error {
		return db.WithContext(ctx).
			Raw("SELECT COALESCE(MAX(id), 0) AS max_id, COUNT(*) AS count FROM main.records").
			Scan(&sig).Error
	})
	if err != nil {
		return Signature{}, fmt.Errorf("signature: %w", err)
	}
	return sig, nil
}

func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var firstErr error
	if err := Close(s.active); err != nil {
		firstErr = err
	}
	if err := Close(s.shared); err != nil && firstErr == nil {
		firstErr = err
	}
	s.active, s.shared = nil, nil
	return firstErr
}
