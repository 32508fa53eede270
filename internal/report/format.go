package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/psds-microservice/dispatch/internal/model"
)

const (
	ruDate      = "02.01.2006"
	ruShortDate = "02.01.06"
	signedBy    = "Составил: __________________"
	approvedBy  = "Утвердил: __________________"
)

// createdParts — дата и время обращения для таблиц ("ДД.ММ.ГГ", "ЧЧ:ММ:СС").
// Нераспознанное значение возвращается в дате как есть.
func createdParts(r model.RequestRow) (date, clock string) {
	t, hasTime, ok := r.Created()
	switch {
	case !ok:
		return r.CreatedAt, ""
	case hasTime:
		return t.Format(ruShortDate), t.Format("15:04:05")
	default:
		return t.Format(ruShortDate), ""
	}
}

// bracketDeadline — текст без "(срок выполнения N ч)" и N, если такой фрагмент был.
func bracketDeadline(problem string) (text, hours string) {
	text = strings.TrimSpace(problem)
	base, h := model.ExtractDeadline(text)
	if base == text {
		return text, ""
	}
	return base, h
}

// FilterCaption — строка "Отбор: ..." в шапке отчёта по фильтрам.
type FilterCaption struct {
	From     time.Time
	To       time.Time
	Status   string
	Problem  string
	Operator string
	Keyword  string
}

func (c FilterCaption) periodLine() string {
	from, to := "...", "..."
	if !c.From.IsZero() {
		from = c.From.Format(ruShortDate)
	}
	if !c.To.IsZero() {
		to = c.To.Format(ruShortDate)
	}
	return fmt.Sprintf("за период с  %s  по  %s г.г.", from, to)
}

func (c FilterCaption) selectionLine() string {
	var parts []string
	if c.Status != "" {
		parts = append(parts, "Состояние выполнения: "+c.Status)
	}
	if c.Problem != "" {
		parts = append(parts, "Содержание: "+c.Problem)
	}
	if c.Operator != "" {
		parts = append(parts, "Оператор: "+c.Operator)
	}
	if c.Keyword != "" {
		parts = append(parts, "Поиск: "+c.Keyword)
	}
	if len(parts) == 0 {
		return "Отбор: не задан"
	}
	return "Отбор: " + strings.Join(parts, "; ")
}

// Имена файлов по умолчанию.

func ListFileName() string { return "экспорт_текущий_список.xlsx" }

func PeriodFileName(from, to time.Time) string {
	return fmt.Sprintf("отчёт_%s_to_%s.xlsx", from.Format(ruDate), to.Format(ruDate))
}

func FilteredFileName(now time.Time) string {
	return fmt.Sprintf("сводка_по_фильтрам_%s.xlsx", now.Format("02.01.2006_15-04"))
}

func SummaryFileName(p Period) string {
	if p.IsDay() {
		return fmt.Sprintf("отчёт_за_сутки_%s.xlsx", p.Start.Format(ruDate))
	}
	return fmt.Sprintf("отчёт_за_неделю_%s_to_%s.xlsx", p.Start.Format(ruDate), p.End.Format(ruDate))
}

func BlankFileName(day time.Time) string {
	return fmt.Sprintf("бланк_сведений_%s.xlsx", day.Format(ruDate))
}
