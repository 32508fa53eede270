package database

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psds-microservice/dispatch/internal/errs"
)

func TestFileName(t *testing.T) {
	assert.Equal(t, "app_2025_01.db", FileName(time.Date(2025, time.January, 31, 23, 0, 0, 0, time.Local)))
	assert.Equal(t, "app_2024_12.db", FileName(time.Date(2024, time.December, 1, 0, 0, 0, 0, time.Local)))
	assert.Regexp(t, `^app_\d{4}_\d{2}\.db$`, FileName(time.Time{}))
}

func TestParseFileName(t *testing.T) {
	y, m, err := ParseFileName("/data/app_2025_03.db")
	require.NoError(t, err)
	assert.Equal(t, 2025, y)
	assert.Equal(t, time.March, m)

	for _, bad := range []string{"app.db", "app_2025_13.db", "app_2025_00.db", "app_25_01.db", "notes.txt"} {
		_, _, err := ParseFileName(bad)
		assert.Error(t, err, bad)
	}
}

func TestFileName_RoundTrip(t *testing.T) {
	for year := 1999; year <= 2031; year++ {
		for month := time.January; month <= time.December; month++ {
			first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
			last := first.AddDate(0, 1, 0).Add(-time.Second)
			for _, at := range []time.Time{first, last} {
				y, m, err := ParseFileName(FileName(at))
				require.NoError(t, err, at)
				assert.Equal(t, at.Year(), y, at)
				assert.Equal(t, at.Month(), m, at)
			}
		}
	}
}

func TestListPeriods(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"app.db", "app_2024_12.db", "app_2025_02.db", "app_2025_01.db", "app_backup.db", "other.db"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "app_2023_01.db"), 0o755))

	got := ListPeriods(dir)
	require.Len(t, got, 3)
	assert.Equal(t, "app_2025_02.db", filepath.Base(got[0]))
	assert.Equal(t, "app_2025_01.db", filepath.Base(got[1]))
	assert.Equal(t, "app_2024_12.db", filepath.Base(got[2]))
}

func TestListPeriods_MissingDir(t *testing.T) {
	assert.Empty(t, ListPeriods(filepath.Join(t.TempDir(), "nope")))
}

func TestPeriodLabel(t *testing.T) {
	assert.Equal(t, "Январь 2025", PeriodLabel("app_2025_01.db"))
	assert.Equal(t, "Декабрь 2024", PeriodLabel("/x/app_2024_12.db"))
	assert.Equal(t, "weird.db", PeriodLabel("weird.db"))
}

func TestResolvePeriods(t *testing.T) {
	got, err := ResolvePeriods("/data", []string{"app_2025_01.db, 2024-12", "../x/app_2023_03.db"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join("/data", "app_2025_01.db"),
		filepath.Join("/data", "app_2024_12.db"),
		filepath.Join("/data", "app_2023_03.db"),
	}, got)

	got, err = ResolvePeriods("/data", nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = ResolvePeriods("/data", []string{"notes.db"})
	assert.ErrorIs(t, err, errs.ErrInvalidPeriod)
}
