package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/psds-microservice/dispatch/internal/database"
	"github.com/psds-microservice/dispatch/internal/errs"
	"github.com/psds-microservice/dispatch/internal/model"
)

func newSharedDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), database.SharedFileName))
	require.NoError(t, err)
	require.NoError(t, database.MigrateShared(context.Background(), db))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func TestUserService_CreateAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(newSharedDB(t), zap.NewNop())

	u, err := svc.Create(ctx, "operator1", "pa55", "user")
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.NotEqual(t, "pa55", u.Password)

	got, err := svc.Authenticate(ctx, "operator1", "pa55")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.False(t, got.IsAdmin())

	_, err = svc.Authenticate(ctx, "operator1", "wrong")
	assert.ErrorIs(t, err, errs.ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "nobody", "pa55")
	assert.ErrorIs(t, err, errs.ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "", "")
	assert.ErrorIs(t, err, errs.ErrMissingCredentials)
}

func TestUserService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(newSharedDB(t), zap.NewNop())

	_, err := svc.Create(ctx, "dup", "x", "")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "dup", "y", "")
	assert.ErrorIs(t, err, errs.ErrUserExists)

	_, err = svc.Create(ctx, "boss", "x", "superuser")
	assert.ErrorIs(t, err, errs.ErrInvalidRole)

	_, err = svc.Create(ctx, " ", "x", "")
	assert.ErrorIs(t, err, errs.ErrMissingCredentials)
}

func TestUserService_LegacyPlainTextIsRehashed(t *testing.T) {
	ctx := context.Background()
	db := newSharedDB(t)
	svc := NewUserService(db, zap.NewNop())

	require.NoError(t, db.Exec("INSERT INTO users (username, password, role) VALUES ('old', 'qwerty', 'user')").Error)

	u, err := svc.Authenticate(ctx, "old", "qwerty")
	require.NoError(t, err)

	var stored string
	require.NoError(t, db.Raw("SELECT password FROM users WHERE id = ?", u.ID).Scan(&stored).Error)
	assert.True(t, isBcryptHash(stored))

	_, err = svc.Authenticate(ctx, "old", "qwerty")
	assert.NoError(t, err)
	_, err = svc.Authenticate(ctx, "old", "qwert")
	assert.ErrorIs(t, err, errs.ErrInvalidCredentials)
}

func TestUserService_DefaultAdminAndList(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(newSharedDB(t), zap.NewNop())

	created, err := svc.EnsureDefaultAdmin(ctx)
	require.NoError(t, err)
	assert.True(t, created)
	created, err = svc.EnsureDefaultAdmin(ctx)
	require.NoError(t, err)
	assert.False(t, created)

	_, err = svc.Create(ctx, "borisova", "pw", "")
	require.NoError(t, err)

	users, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "admin", users[0].Username)
	assert.Equal(t, model.RoleAdmin, users[0].Role)
	assert.Equal(t, "borisova", users[1].Username)

	got, err := svc.GetByID(ctx, users[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "borisova", got.Username)

	_, err = svc.GetByID(ctx, 999)
	assert.ErrorIs(t, err, errs.ErrUserNotFound)
}
