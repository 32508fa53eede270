package model

import "time"

type Status string

const (
	StatusInProgress Status = "в работе"
	StatusNotDone    Status = "не выполнено"
	StatusDone       Status = "выполнено"

	// StatusLegacyNotStarted встречается в старых файлах, мигратор заменяет его на StatusNotDone.
	StatusLegacyNotStarted Status = "не начато"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

const (
	CategoryNone        = ""
	CategorySewerage    = "Водоотведение"
	CategoryWaterSupply = "Водоснабжение"
)

// Форматы дат в текстовых колонках хранилища.
const (
	DateLayout      = "2006-01-02"
	TimestampLayout = "2006-01-02 15:04:05"
	StatusLayout    = "02.01.2006 15:04"
)

// Request — заявка. Даты хранятся текстом для совместимости с существующими файлами.
type Request struct {
	ID             int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name           string `gorm:"column:name" json:"name"`
	Surname        string `gorm:"column:surname" json:"surname"`
	Description    string `gorm:"column:description" json:"-"`
	Date           string `gorm:"column:date" json:"date"`
	UserID         int64  `gorm:"column:user_id" json:"user_id"`
	AssignmentDate string `gorm:"column:assignment_date" json:"assignment_date"`
	Status         string `gorm:"column:status" json:"status"`
	Problem        string `gorm:"column:problem" json:"problem"`
	Phone          string `gorm:"column:phone" json:"phone"`
	Address        string `gorm:"column:address" json:"address"`
	CreatedAt      string `gorm:"column:created_at;autoCreateTime:false" json:"created_at"`
	Improvement    string `gorm:"column:improvement" json:"improvement"`
	BrigadeNumber  string `gorm:"column:brigade_number" json:"brigade_number"`
	Category       string `gorm:"column:category" json:"category"`
}

func (Request) TableName() string { return "records" }

// RequestRow — заявка вместе с логином оператора, форма строки любого запроса по периодам.
type RequestRow struct {
	ID             int64  `gorm:"column:id" json:"id"`
	Name           string `gorm:"column:name" json:"name"`
	Surname        string `gorm:"column:surname" json:"surname"`
	Category       string `gorm:"column:category" json:"category"`
	Problem        string `gorm:"column:problem" json:"problem"`
	BrigadeNumber  string `gorm:"column:brigade_number" json:"brigade_number"`
	Phone          string `gorm:"column:phone" json:"phone"`
	Address        string `gorm:"column:address" json:"address"`
	CreatedAt      string `gorm:"column:created_at" json:"created_at"`
	AssignmentDate string `gorm:"column:assignment_date" json:"assignment_date"`
	Status         string `gorm:"column:status" json:"status"`
	Improvement    string `gorm:"column:improvement" json:"improvement"`
	UserID         int64  `gorm:"column:user_id" json:"user_id"`
	Username       string `gorm:"column:username" json:"username"`
	// Period — файл периода, из которого прочитана строка: id уникален только внутри файла.
	Period string `gorm:"-" json:"period"`
}

// Applicant — имя и фамилия заявителя через пробел, пустые части пропускаются.
func (r RequestRow) Applicant() string {
	switch {
	case r.Name != "" && r.Surname != "":
		return r.Name + " " + r.Surname
	case r.Name != "":
		return r.Name
	default:
		return r.Surname
	}
}

// Created разбирает created_at (или date у старых записей). ok=false, если формат не распознан;
// hasTime=false, если в строке только дата.
func (r RequestRow) Created() (t time.Time, hasTime, ok bool) {
	if ts, err := time.ParseInLocation(TimestampLayout, r.CreatedAt, time.Local); err == nil {
		return ts, true, true
	}
	if ts, err := time.ParseInLocation(DateLayout, r.CreatedAt, time.Local); err == nil {
		return ts, false, true
	}
	return time.Time{}, false, false
}

// User — оператор из общей базы app.db.
type User struct {
	ID       int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Username string `gorm:"column:username;uniqueIndex" json:"username"`
	Password string `gorm:"column:password" json:"-"`
	Role     Role   `gorm:"column:role" json:"role"`
}

func (User) TableName() string { return "users" }

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// ProblemCount — число заявок с одинаковым текстом проблемы.
type ProblemCount struct {
	Problem string `gorm:"column:problem" json:"problem"`
	Count   int    `gorm:"column:count" json:"count"`
}
