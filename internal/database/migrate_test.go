package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTemp(t *testing.T, name string) *gorm.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), name))
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })
	return db
}

func TestMigratePeriod_FreshAndIdempotent(t *testing.T) {
	ctx := context.Background()
	db := openTemp(t, "app_2025_01.db")

	added, err := MigratePeriod(ctx, db)
	require.NoError(t, err)
	assert.Len(t, added, len(periodColumns))

	added, err = MigratePeriod(ctx, db)
	require.NoError(t, err)
	assert.Empty(t, added)

	cols, err := tableColumns(db, "records")
	require.NoError(t, err)
	for _, c := range append([]string{"id", "name", "surname", "description", "date", "user_id"}, "category", "brigade_number", "improvement") {
		assert.True(t, cols[c], c)
	}
}

func TestMigratePeriod_LegacyWithoutStatus(t *testing.T) {
	ctx := context.Background()
	db := openTemp(t, "app_2023_05.db")

	require.NoError(t, db.Exec(`CREATE TABLE records (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT, surname TEXT, description TEXT, date TEXT, user_id INTEGER)`).Error)
	require.NoError(t, db.Exec(`INSERT INTO records (name, surname, date, user_id) VALUES ('Иван', 'Петров', '2023-05-02 10:00:00', 1)`).Error)

	added, err := MigratePeriod(ctx, db)
	require.NoError(t, err)
	assert.Contains(t, added, "status")

	var status string
	require.NoError(t, db.Raw("SELECT status FROM records WHERE id = 1").Scan(&status).Error)
	assert.Equal(t, "не выполнено", status)
}

func TestMigratePeriod_RewritesNotStarted(t *testing.T) {
	ctx := context.Background()
	db := openTemp(t, "app_2023_06.db")

	require.NoError(t, db.Exec(`CREATE TABLE records (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT, surname TEXT, description TEXT, date TEXT, user_id INTEGER, status TEXT)`).Error)
	require.NoError(t, db.Exec(`INSERT INTO records (name, status) VALUES ('a', 'не начато'), ('b', 'выполнено (01.06.2023 10:00)')`).Error)

	_, err := MigratePeriod(ctx, db)
	require.NoError(t, err)

	var statuses []string
	require.NoError(t, db.Raw("SELECT status FROM records ORDER BY id").Scan(&statuses).Error)
	assert.Equal(t, []string{"не выполнено", "выполнено (01.06.2023 10:00)"}, statuses)
}

func TestMigrateShared_Idempotent(t *testing.T) {
	ctx := context.Background()
	db := openTemp(t, SharedFileName)

	require.NoError(t, MigrateShared(ctx, db))
	require.NoError(t, MigrateShared(ctx, db))

	cols, err := tableColumns(db, "users")
	require.NoError(t, err)
	assert.True(t, cols["username"])
	assert.True(t, cols["password"])
	assert.True(t, cols["role"])
}

func TestFoldFunction(t *testing.T) {
	db := openTemp(t, "fold.db")

	var hit int
	require.NoError(t, db.Raw("SELECT instr(fold(?), fold(?)) > 0", "Улица ЛЕНИНА", "ленина").Scan(&hit).Error)
	assert.Equal(t, 1, hit)

	var folded string
	require.NoError(t, db.Raw("SELECT fold(NULL)").Scan(&folded).Error)
	assert.Equal(t, "", folded)
}
