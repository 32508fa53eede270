package database

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/psds-microservice/dispatch/internal/errs"
)

const (
	// SharedFileName — общая база пользователей, не относится ни к одному периоду.
	SharedFileName = "app.db"
	periodPattern  = "app_*.db"
)

var periodNameRe = regexp.MustCompile(`^app_(\d{4})_(\d{2})\.db$`)

var monthsRu = [...]string{
	"", "Январь", "Февраль", "Март", "Апрель", "Май", "Июнь",
	"Июль", "Август", "Сентябрь", "Октябрь", "Ноябрь", "Декабрь",
}

// FileName возвращает имя помесячной базы app_YYYY_MM.db; нулевое время — текущий месяц.
func FileName(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return fmt.Sprintf("app_%04d_%02d.db", t.Year(), int(t.Month()))
}

// ParseFileName — обратная к FileName. Принимает имя файла или путь.
func ParseFileName(name string) (year int, month time.Month, err error) {
	m := periodNameRe.FindStringSubmatch(filepath.Base(name))
	if m == nil {
		return 0, 0, fmt.Errorf("%w: %q", errs.ErrInvalidPeriod, name)
	}
	year, _ = strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	if mm < 1 || mm > 12 {
		return 0, 0, fmt.Errorf("%w: month %02d in %q", errs.ErrInvalidPeriod, mm, name)
	}
	return year, time.Month(mm), nil
}

func PathFor(baseDir string, t time.Time) string {
	return filepath.Join(baseDir, FileName(t))
}

func SharedPath(baseDir string) string {
	return filepath.Join(baseDir, SharedFileName)
}

// ListPeriods возвращает пути помесячных баз каталога, новые первыми.
// Отсутствующий каталог — пустой список.
func ListPeriods(baseDir string) []string {
	matches, err := filepath.Glob(filepath.Join(baseDir, periodPattern))
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(matches))
	for _, p := range matches {
		name := filepath.Base(p)
		if name == SharedFileName || !periodNameRe.MatchString(name) {
			continue
		}
		if info, err := os.Stat(p); err != nil || info.IsDir() {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return filepath.Base(out[i]) > filepath.Base(out[j])
	})
	return out
}

// PeriodLabel — подпись периода вида "Январь 2025"; нераспознанное имя возвращается как есть.
func PeriodLabel(name string) string {
	year, month, err := ParseFileName(name)
	if err != nil {
		return name
	}
	return fmt.Sprintf("%s %d", monthsRu[month], year)
}

// ResolvePeriods превращает имена периодов в пути внутри baseDir. Принимает имена файлов
// (app_2025_01.db) и месяцы (2025-01), в том числе через запятую. Пустой ввод — nil.
func ResolvePeriods(baseDir string, names []string) ([]string, error) {
	var out []string
	for _, n := range names {
		for _, part := range strings.Split(n, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if t, err := time.Parse("2006-01", part); err == nil {
				out = append(out, PathFor(baseDir, t))
				continue
			}
			if _, _, err := ParseFileName(part); err != nil {
				return nil, err
			}
			out = append(out, filepath.Join(baseDir, filepath.Base(part)))
		}
	}
	return out, nil
}
