package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/psds-microservice/dispatch/internal/model"
)

const (
	SheetList    = "Лист1"
	SheetReport  = "Отчёт"
	SheetBlank   = "Бланк"
	contentWidth = 6
)

var listColumns = []struct {
	Title string
	Width float64
}{
	{"№ п/п", 8},
	{"Номер заявки", 16},
	{"Дата", 14},
	{"Время", 12},
	{"Содержание заявки", 50},
	{"Категория", 20},
	{"Номер бригады", 18},
	{"Срок выполнения", 28},
	{"Телефон", 20},
	{"Адрес", 40},
	{"Примечание", 30},
	{"Заявитель", 25},
	{"Оператор", 20},
	{"Состояние выполнения", 28},
}

// sheet накапливает первую ошибку excelize, чтобы построение листа читалось линейно.
type sheet struct {
	f    *excelize.File
	name string
	err  error
}

func newWorkbook(name string) (*excelize.File, *sheet) {
	f := excelize.NewFile()
	s := &sheet{f: f, name: name}
	s.err = f.SetSheetName(f.GetSheetName(0), name)
	return f, s
}

func (s *sheet) cell(col, row int) string {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil && s.err == nil {
		s.err = err
	}
	return name
}

func (s *sheet) set(col, row int, v interface{}) {
	if s.err != nil {
		return
	}
	s.err = s.f.SetCellValue(s.name, s.cell(col, row), v)
}

func (s *sheet) merge(c1, r1, c2, r2 int) {
	if s.err != nil {
		return
	}
	s.err = s.f.MergeCell(s.name, s.cell(c1, r1), s.cell(c2, r2))
}

func (s *sheet) style(c1, r1, c2, r2, id int) {
	if s.err != nil {
		return
	}
	s.err = s.f.SetCellStyle(s.name, s.cell(c1, r1), s.cell(c2, r2), id)
}

func (s *sheet) width(col string, w float64) {
	if s.err != nil {
		return
	}
	s.err = s.f.SetColWidth(s.name, col, col, w)
}

func (s *sheet) newStyle(st *excelize.Style) int {
	if s.err != nil {
		return 0
	}
	id, err := s.f.NewStyle(st)
	s.err = err
	return id
}

// signatures — строки "Составил"/"Утвердил" одна под другой, каждая объединена на span колонок.
func (s *sheet) signatures(row, span int) {
	s.merge(1, row, span, row)
	s.set(1, row, signedBy)
	s.merge(1, row+1, span, row+1)
	s.set(1, row+1, approvedBy)
}

func (s *sheet) done() error {
	if s.err != nil {
		_ = s.f.Close()
		return fmt.Errorf("build %s: %w", s.name, s.err)
	}
	return nil
}

var thinBorder = []excelize.Border{
	{Type: "left", Color: "000000", Style: 1},
	{Type: "right", Color: "000000", Style: 1},
	{Type: "top", Color: "000000", Style: 1},
	{Type: "bottom", Color: "000000", Style: 1},
}

// BuildList — плоская выгрузка заявок, 14 колонок (текущий список и выгрузка за период).
func BuildList(rows []model.RequestRow) (*excelize.File, error) {
	f, s := newWorkbook(SheetList)
	header := s.newStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Border:    thinBorder,
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	for i, c := range listColumns {
		s.set(i+1, 1, c.Title)
		col, _ := excelize.ColumnNumberToName(i + 1)
		s.width(col, c.Width)
	}
	s.style(1, 1, len(listColumns), 1, header)

	for i, r := range rows {
		row := i + 2
		date, clock := createdParts(r)
		text, deadline := model.SplitDeadlineText(r.Problem)
		values := []interface{}{
			i + 1,
			fmt.Sprintf("№ %d", r.ID),
			date,
			clock,
			strings.ToUpper(text),
			r.Category,
			r.BrigadeNumber,
			deadline,
			r.Phone,
			r.Address,
			r.Improvement,
			r.Applicant(),
			r.Username,
			r.Status,
		}
		for c, v := range values {
			s.set(c+1, row, v)
		}
	}

	s.signatures(len(rows)+3, 2)
	if err := s.done(); err != nil {
		return nil, err
	}
	return f, nil
}

// BuildFiltered — сводка заявок по фильтрам: шапка с условиями отбора и таблица.
func BuildFiltered(rows []model.RequestRow, caption FilterCaption) (*excelize.File, error) {
	f, s := newWorkbook(SheetReport)
	title := s.newStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	centered := s.newStyle(&excelize.Style{Alignment: &excelize.Alignment{Horizontal: "center"}})
	bold := s.newStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	header := s.newStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Border:    thinBorder,
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	wrapped := s.newStyle(&excelize.Style{
		Border:    thinBorder,
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
	})
	plain := s.newStyle(&excelize.Style{
		Border:    thinBorder,
		Alignment: &excelize.Alignment{Vertical: "top"},
	})

	r := 1
	s.merge(1, r, contentWidth, r)
	s.set(1, r, "Сводка заявок")
	s.style(1, r, 1, r, title)
	r++
	s.merge(1, r, contentWidth, r)
	s.set(1, r, caption.periodLine())
	s.style(1, r, 1, r, centered)
	r++
	s.merge(1, r, contentWidth, r)
	s.set(1, r, caption.selectionLine())
	s.style(1, r, 1, r, centered)
	r += 2
	s.merge(1, r, contentWidth, r)
	s.set(1, r, fmt.Sprintf("Всего отобрано  %d заявок.", len(rows)))
	s.style(1, r, 1, r, bold)
	r += 2

	for i, h := range []string{"№ п/п", "Номер заявки", "Дата/Время обращения", "Содержание заявки", "Постановка на выполнение", "Состояние выполнения"} {
		s.set(i+1, r, h)
	}
	s.style(1, r, contentWidth, r, header)
	r++

	for i, row := range rows {
		date, clock := createdParts(row)
		when := date
		if clock != "" {
			when = date + "\n" + clock
		}
		text, hours := bracketDeadline(row.Problem)

		var content []string
		if row.Category != "" {
			content = append(content, "КАТЕГОРИЯ: "+strings.ToUpper(row.Category))
		}
		if text != "" {
			content = append(content, strings.ToUpper(text))
		}
		if row.Phone != "" {
			content = append(content, "ТЕЛ. "+row.Phone)
		}
		if row.Address != "" {
			content = append(content, row.Address)
		}
		if who := row.Applicant(); who != "" {
			content = append(content, who)
		}
		deadline := ""
		if hours != "" {
			deadline = fmt.Sprintf("СРОК ВЫПОЛНЕНИЯ: %s ч.", hours)
		}

		s.set(1, r, i+1)
		s.set(2, r, fmt.Sprintf("№ %d", row.ID))
		s.set(3, r, when)
		s.set(4, r, strings.Join(content, "\n"))
		s.set(5, r, deadline)
		s.set(6, r, row.Status)
		s.style(1, r, 2, r, plain)
		s.style(3, r, 5, r, wrapped)
		s.style(6, r, 6, r, plain)
		r++
	}

	for col, w := range map[string]float64{"A": 6, "B": 12, "C": 16, "D": 58, "E": 24, "F": 26} {
		s.width(col, w)
	}

	r++
	s.merge(1, r, 3, r)
	s.set(1, r, "Отчёт сформирован:")
	s.signatures(r+2, 3)
	if err := s.done(); err != nil {
		return nil, err
	}
	return f, nil
}

// BuildSummary — краткий отчёт за сутки или неделю.
func BuildSummary(p Period, sum Summary) (*excelize.File, error) {
	f, s := newWorkbook(SheetReport)
	bold := s.newStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	left := s.newStyle(&excelize.Style{Alignment: &excelize.Alignment{Horizontal: "left"}})

	row := 1
	line := func(label string, value interface{}, isBold bool) {
		s.set(1, row, label)
		if value != nil {
			s.set(2, row, value)
		}
		if isBold {
			s.style(1, row, 1, row, bold)
		}
		row++
	}

	line("Система водоснабжения", nil, true)
	line("Общее количество:", sum.Water, true)
	for _, k := range waterKinds {
		line(k, sum.Counts[k], false)
	}
	row++
	line("Система водоотведения", nil, true)
	line("Общее кол-во:", sum.Sewer, true)
	line(KindSewerLeak, sum.Counts[KindSewerLeak], false)
	line(KindSewerBlockage, sum.Counts[KindSewerBlockage], false)
	line("с/м. засор канализации", 0, false)
	line(KindCollectorAccident, sum.Counts[KindCollectorAccident], false)
	line("с/м. ав. на к/коллекторе", 0, false)
	line(KindCloggedWell, sum.Counts[KindCloggedWell], false)
	line(KindOpenWell, sum.Counts[KindOpenWell], false)
	row++
	line("Период", p.Title(), true)
	line("Смену сдал(а):", "", false)

	s.width("A", 45)
	s.width("B", 12)

	row += 2
	s.signatures(row, 3)
	s.style(1, row, 1, row+1, left)
	if err := s.done(); err != nil {
		return nil, err
	}
	return f, nil
}

// blankLine — левая часть строки бланка (время, категория, адрес, проблема, контакты)
// и правая (дата/время и состояние).
func blankLine(r model.RequestRow) (leftText, rightText string) {
	var date, clock string
	if t, hasTime, ok := r.Created(); ok && hasTime {
		date, clock = t.Format(ruShortDate), t.Format("15:04")
	}

	var parts []string
	if clock != "" {
		parts = append(parts, clock)
	}
	if r.Category != "" {
		parts = append(parts, "Категория: "+r.Category)
	}
	if r.Address != "" {
		parts = append(parts, r.Address)
	}
	if r.Problem != "" {
		parts = append(parts, r.Problem)
	}
	if r.Phone != "" {
		parts = append(parts, "тел: "+r.Phone)
	}
	if who := r.Applicant(); who != "" {
		parts = append(parts, who)
	}
	if r.Username != "" {
		parts = append(parts, "оператор: "+r.Username)
	}

	rightText = strings.TrimSpace(date + " " + clock)
	if r.Status != "" {
		if rightText != "" {
			rightText += " — "
		}
		rightText += r.Status
	}
	return strings.Join(parts, " — "), rightText
}

// BuildDailyBlank — бланк сведений за сутки: по разделу на каждую метку классификатора,
// в фиксированном порядке; пустой раздел получает одну пустую строку.
func BuildDailyBlank(day time.Time, rows []model.RequestRow) (*excelize.File, error) {
	sections := make(map[string][][2]string, len(Sections))
	for _, r := range rows {
		label := Classify(r.Problem)
		l, rt := blankLine(r)
		sections[label] = append(sections[label], [2]string{l, rt})
	}

	f, s := newWorkbook(SheetBlank)
	title := s.newStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	sectionHeader := s.newStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Border:    thinBorder,
		Alignment: &excelize.Alignment{Horizontal: "left"},
	})
	leftCell := s.newStyle(&excelize.Style{
		Border:    thinBorder,
		Alignment: &excelize.Alignment{WrapText: true},
	})
	rightCell := s.newStyle(&excelize.Style{
		Border:    thinBorder,
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})

	s.merge(1, 1, contentWidth, 1)
	s.set(1, 1, "БЛАНК - СВЕДЕНИЙ  "+day.Format(ruShortDate))
	s.style(1, 1, 1, 1, title)

	row := 3
	lastUsed := 1
	for _, label := range Sections {
		s.merge(1, row, contentWidth, row)
		s.set(1, row, label)
		s.style(1, row, contentWidth, row, sectionHeader)
		row++

		lines := sections[label]
		if len(lines) == 0 {
			lines = [][2]string{{"", ""}}
		}
		for _, ln := range lines {
			s.merge(1, row, contentWidth-1, row)
			s.set(1, row, ln[0])
			s.set(contentWidth, row, ln[1])
			s.style(1, row, contentWidth-1, row, leftCell)
			s.style(contentWidth, row, contentWidth, row, rightCell)
			lastUsed = row
			row++
		}
		row++
	}

	s.width("A", 16)
	for _, col := range []string{"B", "C", "D", "E"} {
		s.width(col, 24)
	}
	s.width("F", 44)

	s.signatures(lastUsed+2, 3)
	if err := s.done(); err != nil {
		return nil, err
	}
	return f, nil
}
