package model

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/psds-microservice/dispatch/internal/errs"
)

// Срок выполнения хранится внутри текста проблемы: "<текст> (срок выполнения N ч)".
// Кодировка сохранена только ради совместимости с уже записанными файлами.
var (
	deadlineBracketRe = regexp.MustCompile(`(?i)\(\s*срок\s+выполнения\s*(\d+)\s*ч\s*\)`)
	deadlineLooseRe   = regexp.MustCompile(`(?i)срок\s+выполнения\s*[:\-]?\s*(\d+)\s*ч`)
	deadlineHoursRe   = regexp.MustCompile(`(\d+)\s*ч(?:[^\p{L}]|$)`)
	deadlineAnyRe     = regexp.MustCompile(`(?i)\((\s*срок\s+выполнения\s*[^)]*)\)`)

	statusStampRe = regexp.MustCompile(`\s*\(\d{2}\.\d{2}\.\d{4}\s+\d{2}:\d{2}\)\s*$`)
)

const brigadeSuffix = ".бр"

// ValidateDeadline проверяет срок в часах: пусто — без срока, иначе положительное целое.
func ValidateDeadline(hours string) (string, error) {
	hours = strings.TrimSpace(hours)
	if hours == "" {
		return "", nil
	}
	n, err := strconv.Atoi(hours)
	if err != nil {
		return "", fmt.Errorf("%w: срок выполнения должен быть числом", errs.ErrInvalidDeadline)
	}
	if n <= 0 {
		return "", fmt.Errorf("%w: срок выполнения должен быть положительным числом", errs.ErrInvalidDeadline)
	}
	return strconv.Itoa(n), nil
}

// EmbedDeadline дописывает срок к тексту проблемы. Пустой текст срок не несёт.
func EmbedDeadline(problem, hours string) string {
	problem = strings.TrimSpace(problem)
	if problem == "" {
		return ""
	}
	if hours == "" {
		return problem
	}
	return fmt.Sprintf("%s (срок выполнения %s ч)", problem, hours)
}

// ExtractDeadline возвращает текст проблемы без срока и сам срок (строкой цифр, "" если нет).
func ExtractDeadline(problem string) (base, hours string) {
	for _, re := range []*regexp.Regexp{deadlineBracketRe, deadlineLooseRe, deadlineHoursRe} {
		if m := re.FindStringSubmatch(problem); m != nil {
			hours = m[1]
			break
		}
	}
	base = strings.TrimSpace(deadlineBracketRe.ReplaceAllString(problem, ""))
	return base, hours
}

// SplitDeadlineText отделяет фрагмент "срок выполнения ..." для колонки отчёта.
func SplitDeadlineText(problem string) (text, deadline string) {
	text = strings.TrimSpace(problem)
	m := deadlineAnyRe.FindStringSubmatch(text)
	if m == nil {
		return text, ""
	}
	return strings.TrimSpace(deadlineAnyRe.ReplaceAllString(text, "")), strings.TrimSpace(m[1])
}

// ParseStatus приводит ввод к одному из трёх состояний.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusInProgress, StatusNotDone, StatusDone:
		return st, nil
	case StatusLegacyNotStarted:
		return StatusNotDone, nil
	}
	return "", fmt.Errorf("%w: %q", errs.ErrInvalidStatus, s)
}

// StampStatus — "<состояние> (ДД.ММ.ГГГГ ЧЧ:ММ)", отметка ставится при каждом изменении.
func StampStatus(st Status, at time.Time) string {
	return fmt.Sprintf("%s (%s)", st, at.Format(StatusLayout))
}

// BaseStatus убирает отметку времени. Пустой статус считается "не выполнено".
func BaseStatus(stored string) string {
	base := strings.TrimSpace(statusStampRe.ReplaceAllString(stored, ""))
	if base == "" {
		return string(StatusNotDone)
	}
	return base
}

// NormalizeBrigade добавляет суффикс ".бр" к непустому номеру бригады.
func NormalizeBrigade(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasSuffix(s, brigadeSuffix) {
		return s
	}
	return s + brigadeSuffix
}

// BrigadeDisplay — номер бригады без суффикса, для формы редактирования.
func BrigadeDisplay(s string) string {
	return strings.ReplaceAll(s, brigadeSuffix, "")
}

// ParseCategory принимает категорию без учёта регистра и возвращает каноническое написание.
func ParseCategory(s string) (string, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return CategoryNone, nil
	case strings.EqualFold(s, CategorySewerage):
		return CategorySewerage, nil
	case strings.EqualFold(s, CategoryWaterSupply):
		return CategoryWaterSupply, nil
	}
	return "", fmt.Errorf("%w: %q", errs.ErrInvalidCategory, s)
}

func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleUser, RoleAdmin:
		return r, nil
	case "":
		return RoleUser, nil
	}
	return "", fmt.Errorf("%w: %q", errs.ErrInvalidRole, s)
}

// ParseDate принимает ГГГГ-ММ-ДД или ДД.ММ.ГГГГ и возвращает ГГГГ-ММ-ДД; пустая строка допустима.
func ParseDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	for _, layout := range []string{DateLayout, "02.01.2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DateLayout), nil
		}
	}
	return "", fmt.Errorf("%w: %q", errs.ErrInvalidDate, s)
}

// Fold — форма строки для сравнения без учёта регистра, включая кириллицу.
func Fold(s string) string {
	return cases.Fold().String(s)
}
