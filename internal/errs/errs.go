package errs

import "errors"

var (
	ErrRequestNotFound = errors.New("request not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrPeriodNotFound  = errors.New("period file not found")
	// ErrForbidden — оператор пытается удалить чужую заявку.
	ErrForbidden = errors.New("operation not permitted for this operator")
	// ErrInvalidCredentials не различает неизвестный логин и неверный пароль.
	ErrInvalidCredentials = errors.New("invalid login or password")
	ErrMissingCredentials = errors.New("login and password are required")
	ErrUserExists         = errors.New("username already exists")

	ErrInvalidDeadline = errors.New("invalid deadline")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidRole     = errors.New("invalid role")
	ErrInvalidPeriod   = errors.New("invalid period file name")
	ErrInvalidDate     = errors.New("invalid date")
)

// IsValidation сообщает, относится ли ошибка к ошибкам ввода: операция отменена, данные не изменены.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrInvalidDeadline, ErrInvalidStatus, ErrInvalidCategory,
		ErrInvalidRole, ErrInvalidPeriod, ErrInvalidDate, ErrMissingCredentials,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
