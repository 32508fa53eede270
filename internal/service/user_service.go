package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/psds-microservice/dispatch/internal/errs"
	"github.com/psds-microservice/dispatch/internal/model"
)

const (
	DefaultAdminLogin    = "admin"
	DefaultAdminPassword = "admin"
)

type UserServicer interface {
	Create(ctx context.Context, username, password, role string) (*model.User, error)
	Authenticate(ctx context.Context, username, password string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
}

// UserService работает с таблицей users общей базы app.db.
type UserService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewUserService(db *gorm.DB, log *zap.Logger) *UserService {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserService{db: db, log: log}
}

func hashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}

func (s *UserService) Create(ctx context.Context, username, password, role string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, errs.ErrMissingCredentials
	}
	r, err := model.ParseRole(role)
	if err != nil {
		return nil, err
	}
	var n int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).Where("username = ?", username).Count(&n).Error; err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if n > 0 {
		return nil, errs.ErrUserExists
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &model.User{Username: username, Password: hash, Role: r}
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errs.ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.log.Info("user created", zap.String("username", username), zap.String("role", string(r)))
	return u, nil
}

// Authenticate не различает неизвестный логин и неверный пароль.
// Пароли старых записей хранились открытым текстом: при успешном входе они перехешируются.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, errs.ErrMissingCredentials
	}
	var u model.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	if isBcryptHash(u.Password) {
		if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
			return nil, errs.ErrInvalidCredentials
		}
		return &u, nil
	}

	if subtle.ConstantTimeCompare([]byte(u.Password), []byte(password)) != 1 {
		return nil, errs.ErrInvalidCredentials
	}
	s.log.Warn("plain-text password found, rehashing", zap.String("username", u.Username))
	if hash, err := hashPassword(password); err == nil {
		if err := s.db.WithContext(ctx).Model(&u).Update("password", hash).Error; err != nil {
			s.log.Warn("rehash password", zap.String("username", u.Username), zap.Error(err))
		}
	}
	return &u, nil
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// List — операторы по алфавиту, для фильтра "Оператор".
func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := s.db.WithContext(ctx).Order("username").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// EnsureDefaultAdmin создаёт admin/admin, если такого логина ещё нет.
func (s *UserService) EnsureDefaultAdmin(ctx context.Context) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).Where("username = ?", DefaultAdminLogin).Count(&n).Error; err != nil {
		return false, fmt.Errorf("check default admin: %w", err)
	}
	if n > 0 {
		return false, nil
	}
	if _, err := s.Create(ctx, DefaultAdminLogin, DefaultAdminPassword, string(model.RoleAdmin)); err != nil {
		return false, err
	}
	s.log.Warn("default admin account created, change its password", zap.String("username", DefaultAdminLogin))
	return true, nil
}
