package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/psds-microservice/dispatch/internal/database"
	"github.com/psds-microservice/dispatch/internal/errs"
	"github.com/psds-microservice/dispatch/internal/model"
)

// DefaultRecentLimit — сколько последних заявок показывает лента.
const DefaultRecentLimit = 11

// RequestServicer — интерфейс для HTTP-обработчиков и CLI.
// period в методах по id — файл периода (app_YYYY_MM.db или ГГГГ-ММ); пусто — активный.
type RequestServicer interface {
	Create(ctx context.Context, caller model.User, in RequestInput) (int64, error)
	Update(ctx context.Context, period string, id int64, in RequestInput) error
	SetStatus(ctx context.Context, period string, id int64, state string) error
	Delete(ctx context.Context, caller model.User, period string, id int64) error
	Get(ctx context.Context, period string, id int64) (*model.RequestRow, error)
	Recent(ctx context.Context, limit int) ([]model.RequestRow, error)
	List(ctx context.Context, f Filter, periods []string) ([]model.RequestRow, error)
	ProblemCounts(ctx context.Context, from, to string, periods []string) ([]model.ProblemCount, error)
	Signature(ctx context.Context) (database.Signature, error)
}

// RequestInput — редактируемые поля заявки в том виде, в каком их вводит оператор.
type RequestInput struct {
	Name           string `json:"name"`
	Surname        string `json:"surname"`
	Problem        string `json:"problem"`
	Deadline       string `json:"deadline"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
	AssignmentDate string `json:"assignment_date"`
	Status         string `json:"status"`
	Improvement    string `json:"improvement"`
	Brigade        string `json:"brigade"`
	Category       string `json:"category"`
}

// Filter — отбор заявок. Пустые поля не ограничивают выборку.
type Filter struct {
	Keyword  string `json:"keyword" form:"keyword"`
	Category string `json:"category" form:"category"`
	Problem  string `json:"problem" form:"problem"`
	Status   string `json:"status" form:"status"`
	Operator string `json:"operator" form:"operator"`
	From     string `json:"from" form:"from"`
	To       string `json:"to" form:"to"`
}

func (f Filter) IsEmpty() bool {
	return f == Filter{}
}

type RequestService struct {
	session *database.Session
	log     *zap.Logger
	now     func() time.Time
}

func NewRequestService(s *database.Session, log *zap.Logger) *RequestService {
	if log == nil {
		log = zap.NewNop()
	}
	return &RequestService{session: s, log: log, now: time.Now}
}

type normalizedInput struct {
	problemText    string
	hours          string
	status         model.Status
	category       string
	assignmentDate string
	brigade        string
}

// normalize проверяет ввод целиком до любой записи.
func normalize(in RequestInput) (normalizedInput, error) {
	var n normalizedInput
	var err error
	if n.hours, err = model.ValidateDeadline(in.Deadline); err != nil {
		return n, err
	}
	if n.category, err = model.ParseCategory(in.Category); err != nil {
		return n, err
	}
	if n.assignmentDate, err = model.ParseDate(in.AssignmentDate); err != nil {
		return n, err
	}
	if strings.TrimSpace(in.Status) != "" {
		if n.status, err = model.ParseStatus(in.Status); err != nil {
			return n, err
		}
	}
	// Срок, уже вписанный в текст, используется, если отдельно не задан.
	n.problemText = strings.TrimSpace(in.Problem)
	if base, inline := model.ExtractDeadline(n.problemText); base != n.problemText {
		n.problemText = base
		if n.hours == "" {
			n.hours = inline
		}
	}
	n.brigade = model.NormalizeBrigade(in.Brigade)
	return n, nil
}

func (s *RequestService) Create(ctx context.Context, caller model.User, in RequestInput) (int64, error) {
	n, err := normalize(in)
	if err != nil {
		return 0, err
	}
	if n.status == "" {
		n.status = model.StatusInProgress
	}
	now := s.now()
	req := model.Request{
		Name:           strings.TrimSpace(in.Name),
		Surname:        strings.TrimSpace(in.Surname),
		Problem:        model.EmbedDeadline(n.problemText, n.hours),
		Phone:          strings.TrimSpace(in.Phone),
		Address:        strings.TrimSpace(in.Address),
		Date:           now.Format(model.DateLayout),
		AssignmentDate: n.assignmentDate,
		Status:         model.StampStatus(n.status, now),
		UserID:         caller.ID,
		CreatedAt:      now.Format(model.TimestampLayout),
		Improvement:    strings.TrimSpace(in.Improvement),
		BrigadeNumber:  n.brigade,
		Category:       n.category,
	}
	err = s.session.WithActive(func(db *gorm.DB) error {
		return db.WithContext(ctx).Create(&req).Error
	})
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	s.log.Info("request created", zap.Int64("id", req.ID), zap.String("operator", caller.Username))
	return req.ID, nil
}

func find(ctx context.Context, db *gorm.DB, id int64) (*model.Request, error) {
	var r model.Request
	if err := db.WithContext(ctx).First(&r, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrRequestNotFound
		}
		return nil, err
	}
	return &r, nil
}

// Update заменяет все редактируемые поля. Пустой срок оставляет срок, записанный ранее;
// пустое состояние — прежнее состояние. Отметка времени ставится заново.
func (s *RequestService) Update(ctx context.Context, period string, id int64, in RequestInput) error {
	n, err := normalize(in)
	if err != nil {
		return err
	}
	return s.session.WithPeriod(ctx, period, func(db *gorm.DB, _ string) error {
		return s.update(ctx, db, id, n, in)
	})
}

func (s *RequestService) update(ctx context.Context, db *gorm.DB, id int64, n normalizedInput, in RequestInput) error {
	existing, err := find(ctx, db, id)
	if err != nil {
		return err
	}
	if n.hours == "" {
		_, n.hours = model.ExtractDeadline(existing.Problem)
	}
	if n.status == "" {
		if n.status, err = model.ParseStatus(model.BaseStatus(existing.Status)); err != nil {
			n.status = model.StatusNotDone
		}
	}
	changes := map[string]interface{}{
		"name":            strings.TrimSpace(in.Name),
		"surname":         strings.TrimSpace(in.Surname),
		"problem":         model.EmbedDeadline(n.problemText, n.hours),
		"phone":           strings.TrimSpace(in.Phone),
		"address":         strings.TrimSpace(in.Address),
		"assignment_date": n.assignmentDate,
		"status":          model.StampStatus(n.status, s.now()),
		"improvement":     strings.TrimSpace(in.Improvement),
		"brigade_number":  n.brigade,
		"category":        n.category,
	}
	if err := db.WithContext(ctx).Model(existing).Updates(changes).Error; err != nil {
		return fmt.Errorf("update request %d: %w", id, err)
	}
	return nil
}

func (s *RequestService) SetStatus(ctx context.Context, period string, id int64, state string) error {
	st, err := model.ParseStatus(state)
	if err != nil {
		return err
	}
	return s.session.WithPeriod(ctx, period, func(db *gorm.DB, _ string) error {
		res := db.WithContext(ctx).Model(&model.Request{}).
			Where("id = ?", id).
			Update("status", model.StampStatus(st, s.now()))
		if res.Error != nil {
			return fmt.Errorf("set status %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return errs.ErrRequestNotFound
		}
		return nil
	})
}

// Delete: оператор без прав администратора удаляет только свои заявки.
func (s *RequestService) Delete(ctx context.Context, caller model.User, period string, id int64) error {
	err := s.session.WithPeriod(ctx, period, func(db *gorm.DB, _ string) error {
		existing, err := find(ctx, db, id)
		if err != nil {
			return err
		}
		if !caller.IsAdmin() && existing.UserID != caller.ID {
			return errs.ErrForbidden
		}
		if err := db.WithContext(ctx).Delete(&model.Request{}, id).Error; err != nil {
			return fmt.Errorf("delete request %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("request deleted", zap.Int64("id", id), zap.String("operator", caller.Username))
	return nil
}

const (
	rowColumns = `r.id, r.name, r.surname, r.category, r.problem, r.brigade_number, r.phone, r.address,
	COALESCE(r.created_at, r.date) AS created_at, r.assignment_date, r.status, r.improvement, r.user_id, u.username`
	rowFrom = ` FROM main.records r LEFT JOIN common.users u ON r.user_id = u.id`
)

func (s *RequestService) Get(ctx context.Context, period string, id int64) (*model.RequestRow, error) {
	var (
		rows []model.RequestRow
		file string
	)
	err := s.session.WithPeriod(ctx, period, func(db *gorm.DB, p string) error {
		file = p
		return db.WithContext(ctx).
			Raw("SELECT "+rowColumns+rowFrom+" WHERE r.id = ?", id).
			Scan(&rows).Error
	})
	if err != nil {
		return nil, fmt.Errorf("get request %d: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, errs.ErrRequestNotFound
	}
	rows[0].Period = file
	return &rows[0], nil
}

// Recent — последние limit заявок активного периода в порядке возрастания id.
func (s *RequestService) Recent(ctx context.Context, limit int) ([]model.RequestRow, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	rows, err := database.QueryPeriods(ctx, s.session, nil, func(ctx context.Context, db *gorm.DB, period string) ([]model.RequestRow, error) {
		var out []model.RequestRow
		err := db.WithContext(ctx).
			Raw("SELECT * FROM (SELECT "+rowColumns+rowFrom+" ORDER BY r.id DESC LIMIT ?) sub ORDER BY sub.id ASC", limit).
			Scan(&out).Error
		return withPeriod(out, period), err
	})
	if err != nil {
		return nil, fmt.Errorf("recent requests: %w", err)
	}
	return rows, nil
}

// List отбирает заявки по фильтру из periods (nil — все периоды каталога, при их
// отсутствии — активный). Результаты склеиваются в порядке periods.
func (s *RequestService) List(ctx context.Context, f Filter, periods []string) ([]model.RequestRow, error) {
	where, args, err := buildWhere(f)
	if err != nil {
		return nil, err
	}
	query := "SELECT " + rowColumns + rowFrom
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY r.id ASC"

	files := periods
	if files == nil {
		files = database.ListPeriods(s.session.BaseDir())
	}
	rows, err := database.QueryPeriods(ctx, s.session, files, func(ctx context.Context, db *gorm.DB, period string) ([]model.RequestRow, error) {
		var out []model.RequestRow
		err := db.WithContext(ctx).Raw(query, args...).Scan(&out).Error
		return withPeriod(out, period), err
	})
	if err != nil {
		return rows, err
	}
	if kw := strings.TrimSpace(f.Keyword); kw != "" && !isNumeric(kw) {
		rows = filterKeyword(rows, kw)
	}
	return rows, nil
}

func withPeriod(rows []model.RequestRow, period string) []model.RequestRow {
	for i := range rows {
		rows[i].Period = period
	}
	return rows
}

func buildWhere(f Filter) (string, []interface{}, error) {
	var (
		clauses []string
		args    []interface{}
	)
	if kw := strings.TrimSpace(f.Keyword); kw != "" {
		if isNumeric(kw) {
			id, _ := strconv.ParseInt(kw, 10, 64)
			clauses = append(clauses, "r.id = ?")
			args = append(args, id)
		} else {
			var ors []string
			for _, col := range keywordColumns {
				ors = append(ors, "instr(fold("+col+"), fold(?)) > 0")
				args = append(args, kw)
			}
			clauses = append(clauses, "("+strings.Join(ors, " OR ")+")")
		}
	}
	if c := strings.TrimSpace(f.Category); c != "" {
		clauses = append(clauses, "instr(fold(r.category), fold(?)) > 0")
		args = append(args, c)
	}
	if p := strings.TrimSpace(f.Problem); p != "" {
		clauses = append(clauses, "instr(fold(r.problem), fold(?)) > 0")
		args = append(args, p)
	}
	if st := strings.TrimSpace(f.Status); st != "" {
		clauses = append(clauses, `r.status LIKE ? ESCAPE '\'`)
		args = append(args, escapeLike(st)+"%")
	}
	if op := strings.TrimSpace(f.Operator); op != "" {
		clauses = append(clauses, "u.username = ?")
		args = append(args, op)
	}
	from, err := model.ParseDate(f.From)
	if err != nil {
		return "", nil, err
	}
	to, err := model.ParseDate(f.To)
	if err != nil {
		return "", nil, err
	}
	if from != "" {
		clauses = append(clauses, "date(r.date) >= date(?)")
		args = append(args, from)
	}
	if to != "" {
		clauses = append(clauses, "date(r.date) <= date(?)")
		args = append(args, to)
	}
	return strings.Join(clauses, " AND "), args, nil
}

var keywordColumns = []string{"r.name", "r.surname", "r.problem", "r.phone", "r.address", "u.username"}

// filterKeyword повторяет отбор по ключевому слову в памяти: строки из разных
// периодов проходят одно и то же сравнение независимо от того, как его выполнила база.
func filterKeyword(rows []model.RequestRow, kw string) []model.RequestRow {
	needle := model.Fold(kw)
	out := rows[:0]
	for _, r := range rows {
		for _, v := range []string{r.Name, r.Surname, r.Problem, r.Phone, r.Address, r.Username} {
			if strings.Contains(model.Fold(v), needle) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// ProblemCounts — число заявок по тексту проблемы за [from, to], сложенное по периодам.
func (s *RequestService) ProblemCounts(ctx context.Context, from, to string, periods []string) ([]model.ProblemCount, error) {
	from, err := model.ParseDate(from)
	if err != nil {
		return nil, err
	}
	to, err = model.ParseDate(to)
	if err != nil {
		return nil, err
	}
	if from == "" || to == "" {
		return nil, fmt.Errorf("%w: period bounds are required", errs.ErrInvalidDate)
	}

	files := periods
	if files == nil {
		files = database.ListPeriods(s.session.BaseDir())
	}
	rows, err := database.QueryPeriods(ctx, s.session, files, func(ctx context.Context, db *gorm.DB, _ string) ([]model.ProblemCount, error) {
		var out []model.ProblemCount
		err := db.WithContext(ctx).Raw(`SELECT problem, COUNT(*) AS count FROM main.records
			WHERE date(date) >= date(?) AND date(date) <= date(?)
			GROUP BY problem`, from, to).Scan(&out).Error
		return out, err
	})
	if err != nil {
		return nil, err
	}

	merged := make([]model.ProblemCount, 0, len(rows))
	index := make(map[string]int, len(rows))
	for _, pc := range rows {
		if i, ok := index[pc.Problem]; ok {
			merged[i].Count += pc.Count
			continue
		}
		index[pc.Problem] = len(merged)
		merged = append(merged, pc)
	}
	return merged, nil
}

func (s *RequestService) Signature(ctx context.Context) (database.Signature, error) {
	return s.session.Signature(ctx)
}
