package service

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/psds-microservice/dispatch/internal/errs"
	"github.com/psds-microservice/dispatch/internal/model"
	"github.com/psds-microservice/dispatch/internal/report"
)

// Export — готовая книга и имя файла по умолчанию. Вызывающий закрывает File.
type Export struct {
	File *excelize.File
	Name string
	Rows int
}

// ReportService собирает данные по периодам и строит из них xlsx-отчёты.
type ReportService struct {
	requests RequestServicer
	now      func() time.Time
}

func NewReportService(requests RequestServicer) *ReportService {
	return &ReportService{requests: requests, now: time.Now}
}

func parseDay(s string) (time.Time, error) {
	d, err := model.ParseDate(s)
	if err != nil {
		return time.Time{}, err
	}
	if d == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(model.DateLayout, d, time.Local)
}

// List — текущий список по фильтру, 14 колонок.
func (s *ReportService) List(ctx context.Context, f Filter, periods []string) (*Export, error) {
	rows, err := s.requests.List(ctx, f, periods)
	if err != nil {
		return nil, err
	}
	file, err := report.BuildList(rows)
	if err != nil {
		return nil, err
	}
	return &Export{File: file, Name: report.ListFileName(), Rows: len(rows)}, nil
}

// Period — все заявки за [from, to] без прочих фильтров. Без границ — все заявки.
func (s *ReportService) Period(ctx context.Context, from, to string, periods []string) (*Export, error) {
	fromT, err := parseDay(from)
	if err != nil {
		return nil, err
	}
	toT, err := parseDay(to)
	if err != nil {
		return nil, err
	}
	rows, err := s.requests.List(ctx, Filter{From: from, To: to}, periods)
	if err != nil {
		return nil, err
	}
	file, err := report.BuildList(rows)
	if err != nil {
		return nil, err
	}
	name := report.ListFileName()
	if !fromT.IsZero() && !toT.IsZero() {
		name = report.PeriodFileName(fromT, toT)
	}
	return &Export{File: file, Name: name, Rows: len(rows)}, nil
}

// Filtered — сводка по фильтрам с шапкой условий отбора.
func (s *ReportService) Filtered(ctx context.Context, f Filter, periods []string) (*Export, error) {
	fromT, err := parseDay(f.From)
	if err != nil {
		return nil, err
	}
	toT, err := parseDay(f.To)
	if err != nil {
		return nil, err
	}
	rows, err := s.requests.List(ctx, f, periods)
	if err != nil {
		return nil, err
	}
	file, err := report.BuildFiltered(rows, report.FilterCaption{
		From:     fromT,
		To:       toT,
		Status:   f.Status,
		Problem:  f.Problem,
		Operator: f.Operator,
		Keyword:  f.Keyword,
	})
	if err != nil {
		return nil, err
	}
	return &Export{File: file, Name: report.FilteredFileName(s.now()), Rows: len(rows)}, nil
}

// Summary — краткий отчёт за сутки (week=false) или за семь дней, заканчивающихся day.
func (s *ReportService) Summary(ctx context.Context, day string, week bool, periods []string) (*Export, error) {
	d, err := parseDay(day)
	if err != nil {
		return nil, err
	}
	if d.IsZero() {
		return nil, fmt.Errorf("%w: report date is required", errs.ErrInvalidDate)
	}
	p := report.Day(d)
	if week {
		p = report.WeekEnding(d)
	}
	counts, err := s.requests.ProblemCounts(ctx, p.Start.Format(model.DateLayout), p.End.Format(model.DateLayout), periods)
	if err != nil {
		return nil, err
	}
	file, err := report.BuildSummary(p, report.Summarize(counts))
	if err != nil {
		return nil, err
	}
	return &Export{File: file, Name: report.SummaryFileName(p), Rows: len(counts)}, nil
}

// Blank — бланк сведений за сутки.
func (s *ReportService) Blank(ctx context.Context, day string, periods []string) (*Export, error) {
	d, err := parseDay(day)
	if err != nil {
		return nil, err
	}
	if d.IsZero() {
		return nil, fmt.Errorf("%w: report date is required", errs.ErrInvalidDate)
	}
	ds := d.Format(model.DateLayout)
	rows, err := s.requests.List(ctx, Filter{From: ds, To: ds}, periods)
	if err != nil {
		return nil, err
	}
	file, err := report.BuildDailyBlank(d, rows)
	if err != nil {
		return nil, err
	}
	return &Export{File: file, Name: report.BlankFileName(d), Rows: len(rows)}, nil
}
