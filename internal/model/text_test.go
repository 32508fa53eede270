package model

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psds-microservice/dispatch/internal/errs"
)

func TestDeadlineRoundTrip(t *testing.T) {
	encoded := EmbedDeadline("течь воды", "5")
	assert.Equal(t, "течь воды (срок выполнения 5 ч)", encoded)

	base, hours := ExtractDeadline(encoded)
	assert.Equal(t, "5", hours)
	assert.Equal(t, "течь воды", base)
	assert.Equal(t, encoded, EmbedDeadline(base, hours))
}

func TestExtractDeadline(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		wantBase  string
		wantHours string
	}{
		{"no deadline", "засор канализации", "засор канализации", ""},
		{"bracketed, mixed case", "течь (Срок Выполнения 12 ч)", "течь", "12"},
		{"loose form", "течь, срок выполнения: 4 ч", "течь, срок выполнения: 4 ч", "4"},
		{"bare hours", "открыт колодец 8 ч", "открыт колодец 8 ч", "8"},
		{"digits without unit", "дом 15", "дом 15", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, hours := ExtractDeadline(tt.in)
			assert.Equal(t, tt.wantBase, base)
			assert.Equal(t, tt.wantHours, hours)
		})
	}
}

func TestEmbedDeadline_EmptyProblem(t *testing.T) {
	assert.Equal(t, "", EmbedDeadline("  ", "3"))
	assert.Equal(t, "течь", EmbedDeadline("течь", ""))
}

func TestValidateDeadline(t *testing.T) {
	h, err := ValidateDeadline(" 7 ")
	require.NoError(t, err)
	assert.Equal(t, "7", h)

	h, err = ValidateDeadline("")
	require.NoError(t, err)
	assert.Empty(t, h)

	for _, bad := range []string{"abc", "0", "-2", "1.5"} {
		_, err := ValidateDeadline(bad)
		assert.ErrorIs(t, err, errs.ErrInvalidDeadline, bad)
	}
}

func TestSplitDeadlineText(t *testing.T) {
	text, deadline := SplitDeadlineText("течь воды (срок выполнения 3 ч)")
	assert.Equal(t, "течь воды", text)
	assert.Equal(t, "срок выполнения 3 ч", deadline)

	text, deadline = SplitDeadlineText("течь воды")
	assert.Equal(t, "течь воды", text)
	assert.Empty(t, deadline)
}

func TestStampStatus(t *testing.T) {
	at := time.Date(2025, time.March, 4, 9, 7, 0, 0, time.Local)
	stamped := StampStatus(StatusDone, at)

	assert.True(t, strings.HasPrefix(stamped, "выполнено ("))
	assert.True(t, strings.HasSuffix(stamped, ")"))
	assert.Equal(t, "выполнено (04.03.2025 09:07)", stamped)
	assert.Equal(t, "выполнено", BaseStatus(stamped))
}

func TestBaseStatus(t *testing.T) {
	assert.Equal(t, "в работе", BaseStatus("в работе (01.01.2025 10:00)"))
	assert.Equal(t, "не выполнено", BaseStatus(""))
	assert.Equal(t, "выполнено", BaseStatus("выполнено"))
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus(" Выполнено ")
	require.NoError(t, err)
	assert.Equal(t, StatusDone, st)

	st, err = ParseStatus("не начато")
	require.NoError(t, err)
	assert.Equal(t, StatusNotDone, st)

	_, err = ParseStatus("отменено")
	assert.ErrorIs(t, err, errs.ErrInvalidStatus)
}

func TestNormalizeBrigade(t *testing.T) {
	assert.Equal(t, "", NormalizeBrigade("  "))
	assert.Equal(t, "3.бр", NormalizeBrigade("3"))
	assert.Equal(t, "3.бр", NormalizeBrigade("3.бр"))
	assert.Equal(t, "3", BrigadeDisplay("3.бр"))
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory("водоснабжение")
	require.NoError(t, err)
	assert.Equal(t, CategoryWaterSupply, c)

	c, err = ParseCategory("")
	require.NoError(t, err)
	assert.Empty(t, c)

	_, err = ParseCategory("электричество")
	assert.ErrorIs(t, err, errs.ErrInvalidCategory)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("05.02.2025")
	require.NoError(t, err)
	assert.Equal(t, "2025-02-05", d)

	_, err = ParseDate("2025/02/05")
	assert.ErrorIs(t, err, errs.ErrInvalidDate)
}

func TestProblemCatalog(t *testing.T) {
	sewer := ProblemCatalog("ВОДООТВЕДЕНИЕ")
	assert.Equal(t, []string{"забой канализационного колодца", "течь канализации по дороге"}, sewer)

	general := ProblemCatalog("")
	assert.Contains(t, general, "перекладка")
	assert.Len(t, general, 10)
}

func TestRequestRowCreated(t *testing.T) {
	r := RequestRow{CreatedAt: "2025-02-05 14:30:00"}
	ts, hasTime, ok := r.Created()
	require.True(t, ok)
	assert.True(t, hasTime)
	assert.Equal(t, 14, ts.Hour())

	r.CreatedAt = "2025-02-05"
	_, hasTime, ok = r.Created()
	assert.True(t, ok)
	assert.False(t, hasTime)

	r.Name, r.Surname = "Иван", ""
	assert.Equal(t, "Иван", r.Applicant())
}
