package db

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/smart-ats/internal/evaluation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExcerpt(t *testing.T) {
	tests := []struct {
		name string
		text string
		n    int
		want string
	}{
		{"short", "Senior Go Engineer", 50, "Senior Go Engineer"},
		{"collapses whitespace", "Senior\n\n  Go\tEngineer", 50, "Senior Go Engineer"},
		{"truncates", "abcdefghij", 5, "abcde…"},
		{"trims before ellipsis", "abcd efgh", 5, "abcd…"},
		{"counts runes", "ééééé", 3, "ééé…"},
		{"empty", "", 10, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Excerpt(tt.text, tt.n))
		})
	}
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultListLimit, ClampLimit(0))
	assert.Equal(t, DefaultListLimit, ClampLimit(-5))
	assert.Equal(t, 7, ClampLimit(7))
	assert.Equal(t, MaxListLimit, ClampLimit(MaxListLimit+1))
}

func TestNewEvaluationRecord(t *testing.T) {
	fraction := 0.85
	result := &evaluation.Result{
		ID:            uuid.New(),
		Evaluation:    &evaluation.Evaluation{JDMatch: "85%"},
		MatchFraction: &fraction,
		Model:         "gemini-test",
		ResumeName:    "cv.pdf",
		CreatedAt:     time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC),
		Duration:      "1.25s",
	}

	rec := NewEvaluationRecord(result, strings.Repeat("word ", 200))

	assert.Equal(t, result.ID, rec.ID)
	assert.Equal(t, "cv.pdf", rec.ResumeName)
	assert.Equal(t, "85%", rec.JDMatch)
	assert.Equal(t, &fraction, rec.MatchFraction)
	assert.Equal(t, int64(1250), rec.DurationMS)
	assert.Equal(t, result.CreatedAt, rec.CreatedAt)
	assert.LessOrEqual(t, len([]rune(rec.JDExcerpt)), ExcerptLength+1)
	assert.True(t, strings.HasSuffix(rec.JDExcerpt, "…"))
}

func TestMigrationFiles(t *testing.T) {
	names, err := migrationFiles()
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "001_evaluations.sql", names[0])

	sql, err := migrations.ReadFile("migrations/" + names[0])
	require.NoError(t, err)
	assert.Contains(t, string(sql), "CREATE TABLE IF NOT EXISTS evaluations")
}
