package report

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/psds-microservice/dispatch/internal/model"
)

func sampleRows() []model.RequestRow {
	return []model.RequestRow{
		{
			ID: 7, Name: "Иван", Surname: "Петров", Category: model.CategoryWaterSupply,
			Problem: "течь воды (срок выполнения 3 ч)", BrigadeNumber: "2.бр", Phone: "555-01",
			Address: "ул. Ленина, 1", CreatedAt: "2025-01-15 10:30:00",
			Status: "в работе (15.01.2025 10:30)", Username: "ivanova",
		},
		{
			ID: 8, Surname: "ООО Мир", Problem: "засор канализации", CreatedAt: "2025-01-15",
			Status: "выполнено (15.01.2025 12:00)",
		},
	}
}

// reopen сохраняет книгу и читает её заново, как это сделает получатель файла.
func reopen(t *testing.T, f *excelize.File, name string) *excelize.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	out, err := excelize.OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = out.Close() })
	return out
}

func cell(t *testing.T, f *excelize.File, sheet, axis string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, axis)
	require.NoError(t, err)
	return v
}

func TestBuildList(t *testing.T) {
	f, err := BuildList(sampleRows())
	require.NoError(t, err)
	f = reopen(t, f, ListFileName())

	assert.Equal(t, []string{SheetList}, f.GetSheetList())
	assert.Equal(t, "№ п/п", cell(t, f, SheetList, "A1"))
	assert.Equal(t, "Состояние выполнения", cell(t, f, SheetList, "N1"))

	assert.Equal(t, "№ 7", cell(t, f, SheetList, "B2"))
	assert.Equal(t, "15.01.25", cell(t, f, SheetList, "C2"))
	assert.Equal(t, "10:30:00", cell(t, f, SheetList, "D2"))
	assert.Equal(t, "ТЕЧЬ ВОДЫ", cell(t, f, SheetList, "E2"))
	assert.Equal(t, "срок выполнения 3 ч", cell(t, f, SheetList, "H2"))
	assert.Equal(t, "Иван Петров", cell(t, f, SheetList, "L2"))
	assert.Equal(t, "ivanova", cell(t, f, SheetList, "M2"))

	assert.Equal(t, "", cell(t, f, SheetList, "D3"))
	assert.Equal(t, "ООО Мир", cell(t, f, SheetList, "L3"))

	assert.Equal(t, signedBy, cell(t, f, SheetList, "A5"))
	assert.Equal(t, approvedBy, cell(t, f, SheetList, "A6"))

	width, err := f.GetColWidth(SheetList, "E")
	require.NoError(t, err)
	assert.Equal(t, 50.0, width)

	merged, err := f.GetMergeCells(SheetList)
	require.NoError(t, err)
	assert.Len(t, merged, 2)
}

func TestBuildFiltered(t *testing.T) {
	caption := FilterCaption{
		From:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local),
		Status: "в работе",
	}
	f, err := BuildFiltered(sampleRows()[:1], caption)
	require.NoError(t, err)
	f = reopen(t, f, "filtered.xlsx")

	assert.Equal(t, "Сводка заявок", cell(t, f, SheetReport, "A1"))
	assert.Equal(t, "за период с  01.01.25  по  ... г.г.", cell(t, f, SheetReport, "A2"))
	assert.Equal(t, "Отбор: Состояние выполнения: в работе", cell(t, f, SheetReport, "A3"))
	assert.Equal(t, "Всего отобрано  1 заявок.", cell(t, f, SheetReport, "A5"))
	assert.Equal(t, "Дата/Время обращения", cell(t, f, SheetReport, "C7"))
	assert.Equal(t, "15.01.25\n10:30:00", cell(t, f, SheetReport, "C8"))
	assert.Equal(t, "КАТЕГОРИЯ: ВОДОСНАБЖЕНИЕ\nТЕЧЬ ВОДЫ\nТЕЛ. 555-01\nул. Ленина, 1\nИван Петров", cell(t, f, SheetReport, "D8"))
	assert.Equal(t, "СРОК ВЫПОЛНЕНИЯ: 3 ч.", cell(t, f, SheetReport, "E8"))
	assert.Equal(t, "Отчёт сформирован:", cell(t, f, SheetReport, "A10"))
}

func TestFilterCaption_Empty(t *testing.T) {
	assert.Equal(t, "Отбор: не задан", FilterCaption{}.selectionLine())
	assert.Equal(t, "за период с  ...  по  ... г.г.", FilterCaption{}.periodLine())
}

func TestBuildSummary(t *testing.T) {
	sum := Summarize([]model.ProblemCount{
		{Problem: "течь воды", Count: 2},
		{Problem: "засор канализации", Count: 3},
	})
	p := WeekEnding(time.Date(2025, 1, 15, 0, 0, 0, 0, time.Local))
	f, err := BuildSummary(p, sum)
	require.NoError(t, err)
	f = reopen(t, f, SummaryFileName(p))

	assert.Equal(t, "Система водоснабжения", cell(t, f, SheetReport, "A1"))
	assert.Equal(t, "2", cell(t, f, SheetReport, "B2"))
	assert.Equal(t, KindWaterLeak, cell(t, f, SheetReport, "A3"))
	assert.Equal(t, "2", cell(t, f, SheetReport, "B3"))
	assert.Equal(t, "Система водоотведения", cell(t, f, SheetReport, "A8"))
	assert.Equal(t, "3", cell(t, f, SheetReport, "B9"))
	assert.Equal(t, "Период", cell(t, f, SheetReport, "A18"))
	assert.Equal(t, "09.01.2025 - 15.01.2025", cell(t, f, SheetReport, "B18"))
	assert.Equal(t, signedBy, cell(t, f, SheetReport, "A22"))
}

func TestPeriod(t *testing.T) {
	d := time.Date(2025, 3, 1, 0, 0, 0, 0, time.Local)
	assert.True(t, Day(d).IsDay())
	assert.Equal(t, "01.03.2025", Day(d).Title())
	assert.Equal(t, "отчёт_за_сутки_01.03.2025.xlsx", SummaryFileName(Day(d)))
	assert.Equal(t, "отчёт_за_неделю_23.02.2025_to_01.03.2025.xlsx", SummaryFileName(WeekEnding(d)))
}

func TestBuildDailyBlank(t *testing.T) {
	day := time.Date(2025, 1, 15, 0, 0, 0, 0, time.Local)
	f, err := BuildDailyBlank(day, sampleRows())
	require.NoError(t, err)
	f = reopen(t, f, BlankFileName(day))

	assert.Equal(t, []string{SheetBlank}, f.GetSheetList())
	assert.Equal(t, "БЛАНК - СВЕДЕНИЙ  15.01.25", cell(t, f, SheetBlank, "A1"))

	// Каждый раздел: заголовок, минимум одна строка, пустая строка-разделитель.
	assert.Equal(t, LabelRelay, cell(t, f, SheetBlank, "A3"))
	assert.Equal(t, "", cell(t, f, SheetBlank, "A4"))
	assert.Equal(t, LabelWaterMain, cell(t, f, SheetBlank, "A6"))
	assert.Equal(t,
		"10:30 — Категория: Водоснабжение — ул. Ленина, 1 — течь воды (срок выполнения 3 ч) — тел: 555-01 — Иван Петров — оператор: ivanova",
		cell(t, f, SheetBlank, "A7"))
	assert.Equal(t, "15.01.25 10:30 — в работе (15.01.2025 10:30)", cell(t, f, SheetBlank, "F7"))
	assert.Equal(t, LabelStandpipes, cell(t, f, SheetBlank, "A9"))
	assert.Equal(t, LabelHydrants, cell(t, f, SheetBlank, "A12"))
	assert.Equal(t, LabelPrivateTaps, cell(t, f, SheetBlank, "A15"))
	assert.Equal(t, LabelSewerage, cell(t, f, SheetBlank, "A18"))
	assert.Equal(t, "засор канализации — ООО Мир", cell(t, f, SheetBlank, "A19"))
	assert.Equal(t, "выполнено (15.01.2025 12:00)", cell(t, f, SheetBlank, "F19"))
	assert.Equal(t, signedBy, cell(t, f, SheetBlank, "A21"))
}
