package report

import (
	"time"

	"github.com/psds-microservice/dispatch/internal/model"
)

// Виды заявок в сводке за сутки/неделю.
const (
	KindSewerLeak         = "течь канализации"
	KindWaterLeak         = "течь воды"
	KindMainAccident      = "ав. на водоводе"
	KindStandpipeDefect   = "дефект водоразборной колонки"
	KindRustyWater        = "рж. х/в"
	KindSewerBlockage     = "засор канализации"
	KindCollectorAccident = "ав. на к/коллекторе"
	KindCloggedWell       = "забит колодец"
	KindOpenWell          = "открыт колодец"
)

func accident(t string) bool { return hasAny(t, "ав", "ав.", "авар") }

// summaryRules: первое совпадение; проблемы без совпадения в сводку не попадают.
var summaryRules = []Rule{
	{KindSewerLeak, func(t string) bool { return has(t, "течь") && hasAny(t, "канализац", "к/к", "коллектор") }},
	{KindWaterLeak, func(t string) bool {
		return has(t, "течь") && hasAny(t, "вод", "х/в", "гидрант", "колонк", "водовод", "трасс")
	}},
	{KindMainAccident, func(t string) bool {
		return accident(t) && (has(t, "водовод") || (has(t, "трасс") && has(t, "х/в"))) && !has(t, "течь")
	}},
	{KindStandpipeDefect, func(t string) bool { return has(t, "дефект") && has(t, "колонк") }},
	{KindRustyWater, func(t string) bool {
		return hasAny(t, "рж", "ржа") && (has(t, "х/в") || (has(t, "холодн") && has(t, "вод")))
	}},
	{KindSewerBlockage, func(t string) bool { return has(t, "засор") && has(t, "канализац") }},
	{KindCollectorAccident, func(t string) bool { return accident(t) && has(t, "к/коллектор") }},
	{KindCloggedWell, func(t string) bool { return has(t, "забит") && has(t, "колодец") }},
	{KindOpenWell, func(t string) bool { return has(t, "открыт") && has(t, "колодец") }},
}

var (
	waterKinds = []string{KindWaterLeak, KindMainAccident, KindStandpipeDefect, KindRustyWater}
	sewerKinds = []string{KindSewerLeak, KindSewerBlockage, KindCollectorAccident, KindCloggedWell, KindOpenWell}
)

// Summary — счётчики сводки и итоги по системам водоснабжения и водоотведения.
type Summary struct {
	Counts map[string]int `json:"counts"`
	Water  int            `json:"water_total"`
	Sewer  int            `json:"sewer_total"`
}

// Summarize раскладывает сгруппированные по тексту проблемы счётчики по видам.
func Summarize(counts []model.ProblemCount) Summary {
	s := Summary{Counts: make(map[string]int, len(summaryRules))}
	for _, r := range summaryRules {
		s.Counts[r.Label] = 0
	}
	for _, pc := range counts {
		if kind := match(summaryRules, pc.Problem, ""); kind != "" {
			s.Counts[kind] += pc.Count
		}
	}
	for _, k := range waterKinds {
		s.Water += s.Counts[k]
	}
	for _, k := range sewerKinds {
		s.Sewer += s.Counts[k]
	}
	return s
}

// Period — отчётный интервал сводки: сутки или семь дней, заканчивающиеся End.
type Period struct {
	Start time.Time
	End   time.Time
}

func Day(d time.Time) Period {
	return Period{Start: d, End: d}
}

func WeekEnding(end time.Time) Period {
	return Period{Start: end.AddDate(0, 0, -6), End: end}
}

func (p Period) IsDay() bool {
	return p.Start.Format(model.DateLayout) == p.End.Format(model.DateLayout)
}

// Title — "ДД.ММ.ГГГГ" для суток, "ДД.ММ.ГГГГ - ДД.ММ.ГГГГ" для недели.
func (p Period) Title() string {
	if p.IsDay() {
		return p.Start.Format(ruDate)
	}
	return p.Start.Format(ruDate) + " - " + p.End.Format(ruDate)
}
