package report

import (
	"strings"

	"github.com/psds-microservice/dispatch/internal/model"
)

// Разделы бланка сведений.
const (
	LabelRelay       = "ПЕРЕКЛАДКА"
	LabelWaterMain   = "ВОДОПРОВОД"
	LabelStandpipes  = "В/КОЛОНКИ"
	LabelHydrants    = "ПОЖАРНЫЕ ГИДРАНТЫ"
	LabelPrivateTaps = "ЧАСТНЫЕ ВРЕЗКИ"
	LabelSewerage    = "КАНАЛИЗАЦИЯ"
	FallbackLabel    = LabelWaterMain
)

// Sections — порядок разделов в бланке.
var Sections = []string{LabelRelay, LabelWaterMain, LabelStandpipes, LabelHydrants, LabelPrivateTaps, LabelSewerage}

// Rule сопоставляет текст проблемы (уже приведённый к нижнему регистру) с меткой.
type Rule struct {
	Label string
	Match func(t string) bool
}

func hasAny(t string, subs ...string) bool {
	for _, s := range subs {
		if strings.Contains(t, s) {
			return true
		}
	}
	return false
}

func has(t, sub string) bool { return strings.Contains(t, sub) }

// ClassifierRules проверяются по порядку, побеждает первое совпадение.
var ClassifierRules = []Rule{
	{LabelRelay, func(t string) bool { return hasAny(t, "перекладк", "прокладк") }},
	{LabelRelay, func(t string) bool { return has(t, "разрытие") && !has(t, "восстанов") }},
	{LabelRelay, func(t string) bool { return has(t, "прокол") }},
	{LabelRelay, func(t string) bool { return has(t, "замен") && has(t, "водовод") }},
	{LabelRelay, func(t string) bool { return has(t, "врезк") && has(t, "водопровод") && !has(t, "частн") }},
	{LabelPrivateTaps, func(t string) bool { return has(t, "врезк") && hasAny(t, "частн", "ч/") }},
	{LabelHydrants, func(t string) bool { return hasAny(t, "гидрант", "пг") }},
	{LabelStandpipes, func(t string) bool { return has(t, "колонк") }},
	{LabelWaterMain, func(t string) bool { return has(t, "течь") && !has(t, "канализац") }},
	{LabelWaterMain, func(t string) bool { return has(t, "замен") && has(t, "кран") }},
	{LabelWaterMain, func(t string) bool { return has(t, "открыт") && hasAny(t, "в/к", "в/колонк") }},
	{LabelWaterMain, func(t string) bool { return hasAny(t, "перекрыт", "открыт") && hasAny(t, "х/в", "холодн") }},
	{LabelWaterMain, func(t string) bool { return has(t, "восстанов") && hasAny(t, "благоустр", "разрытие") }},
	{LabelWaterMain, func(t string) bool { return hasAny(t, "слаб", "сл.") && hasAny(t, "давл", "х/в", "холодн") }},
	{LabelWaterMain, func(t string) bool { return has(t, "водопровод") }},
	{LabelSewerage, func(t string) bool {
		return has(t, "засор") || has(t, "канализац") || (has(t, "колодец") && has(t, "забой"))
	}},
}

// Classify относит заявку к разделу бланка; без совпадений — ВОДОПРОВОД.
func Classify(problem string) string {
	return match(ClassifierRules, problem, FallbackLabel)
}

func match(rules []Rule, text, fallback string) string {
	t := model.Fold(text)
	for _, r := range rules {
		if r.Match(t) {
			return r.Label
		}
	}
	return fallback
}
