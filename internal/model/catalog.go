package model

import (
	"sort"
	"strings"
)

var (
	sewerageProblems = []string{
		"забой канализационного колодца",
		"течь канализации по дороге",
	}
	waterSupplyProblems = []string{
		"течь воды",
		"течь в / колонки",
		"течь из-под земли",
		"течь пожарного гидранта",
		"течь из -под асфальта",
		"течь трассы холодной воды",
		"откачка воды из колодца",
		"дефект водоразборной колонки",
		"ржавая холодная вода в жилом фонде",
		"Не работает в / колонка",
		"слабое давление х/в",
		"восстановить в/колонку",
		"течь в/к",
		"нет х/в",
	}
	generalProblems = []string{
		"перекладка",
		"водопровод",
		"частные врезки",
		"открыт колодец (отсутствие/несоответствие крышки)",
		"восстановление асфальтобетонного покрытия",
		"разрушена плита колодца",
		"привести к/к в нормативное состояние",
		"привести в / к в нормативное состояние",
		"обвал в/к",
		"обвал к/к",
	}
)

// ProblemCatalog возвращает типовые формулировки для категории, отсортированные без учёта регистра.
// Без категории предлагается общий список.
func ProblemCatalog(category string) []string {
	var src []string
	switch {
	case strings.EqualFold(category, CategorySewerage):
		src = sewerageProblems
	case strings.EqualFold(category, CategoryWaterSupply):
		src = waterSupplyProblems
	default:
		src = generalProblems
	}
	out := append([]string(nil), src...)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	return out
}
