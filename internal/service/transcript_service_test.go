package service

import (
	"context"
	"encoding/json"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/registrar-api/internal/models"
	appErrors "github.com/campusops/registrar-api/pkg/errors"
)

type stubTranscriptReader struct {
	entries []models.TranscriptEntry
	err     error
	calls   int
}

func (s *stubTranscriptReader) ListByStudent(_ context.Context, _ string, _ models.TranscriptFilter) ([]models.TranscriptEntry, error) {
	s.calls++
	return s.entries, s.err
}

func mark(m models.Mark) *models.Mark { return &m }

func entry(subject, number string, credits float64, grade *models.Mark, status models.EnrollmentStatus) models.TranscriptEntry {
	return models.TranscriptEntry{
		Subject:      subject,
		CourseNumber: number,
		Title:        subject + " " + number,
		Credits:      credits,
		Grade:        grade,
		Status:       status,
	}
}

func TestAggregateMixedMarks(t *testing.T) {
	svc := NewTranscriptService(nil, nil, nil, 0, nil)

	entries := []models.TranscriptEntry{
		entry("CSE", "101", 3, mark(models.MarkA), models.EnrollmentStatusCompleted),
		entry("CSE", "102", 3, mark(models.MarkB), models.EnrollmentStatusCompleted),
		entry("CSE", "103", 3, mark(models.MarkF), models.EnrollmentStatusCompleted),
		entry("WRT", "102", 3, mark(models.MarkP), models.EnrollmentStatusCompleted),
		entry("PHY", "121", 3, mark(models.MarkNP), models.EnrollmentStatusCompleted),
		entry("AMS", "151", 3, mark(models.MarkI), models.EnrollmentStatusCompleted),
	}

	summary := svc.Aggregate(entries)
	assert.Equal(t, 9.0, summary.CreditsAttempted)
	assert.Equal(t, 9.0, summary.CreditsCompleted)
	require.NotNil(t, summary.GPA)
	assert.Equal(t, 2.333, *summary.GPA)
}

func TestAggregateGPANilWithoutQualityMarks(t *testing.T) {
	svc := NewTranscriptService(nil, nil, nil, 0, nil)

	summary := svc.Aggregate(nil)
	assert.Nil(t, summary.GPA)

	summary = svc.Aggregate([]models.TranscriptEntry{
		entry("WRT", "102", 3, mark(models.MarkP), models.EnrollmentStatusCompleted),
		entry("CSE", "101", 3, nil, models.EnrollmentStatusEnrolled),
		entry("PHY", "121", 4, mark(models.MarkW), models.EnrollmentStatusWithdrawn),
	})
	assert.Nil(t, summary.GPA)
	assert.Equal(t, 3.0, summary.CreditsCompleted)
	assert.Equal(t, 0.0, summary.CreditsAttempted)
}

func TestAggregateGPABounds(t *testing.T) {
	svc := NewTranscriptService(nil, nil, nil, 0, nil)
	scale := models.DefaultGradeScale()

	marks := []models.Mark{
		models.MarkAPlus, models.MarkA, models.MarkAMinus, models.MarkBPlus, models.MarkB,
		models.MarkBMinus, models.MarkCPlus, models.MarkC, models.MarkCMinus,
		models.MarkDPlus, models.MarkD, models.MarkDMinus, models.MarkF,
	}
	for _, m := range marks {
		summary := svc.Aggregate([]models.TranscriptEntry{
			entry("CSE", "101", 3, mark(m), models.EnrollmentStatusCompleted),
		})
		require.NotNil(t, summary.GPA, "mark %s", m)
		assert.GreaterOrEqual(t, *summary.GPA, 0.0)
		assert.LessOrEqual(t, *summary.GPA, 4.0)
		class := scale.Classify(m)
		assert.True(t, class.IsQualityPoint())
	}
}

func TestAggregateOrderIndependentAndIdempotent(t *testing.T) {
	svc := NewTranscriptService(nil, nil, nil, 0, nil)

	entries := []models.TranscriptEntry{
		entry("CSE", "101", 3, mark(models.MarkA), models.EnrollmentStatusCompleted),
		entry("CSE", "102", 4, mark(models.MarkCMinus), models.EnrollmentStatusCompleted),
		entry("WRT", "102", 3, mark(models.MarkP), models.EnrollmentStatusCompleted),
		entry("PHY", "121", 4, mark(models.MarkF), models.EnrollmentStatusCompleted),
		entry("AMS", "151", 3, nil, models.EnrollmentStatusEnrolled),
	}

	base := svc.Aggregate(entries)
	again := svc.Aggregate(entries)
	assert.Equal(t, base, again)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		shuffled := make([]models.TranscriptEntry, len(entries))
		copy(shuffled, entries)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, base, svc.Aggregate(shuffled))
	}
}

func TestCategoriesSharedCourse(t *testing.T) {
	svc := NewTranscriptService(nil, nil, nil, 0, nil)

	sbc := "partially fulfills: WRT, SPK"
	e := entry("WRT", "102", 3, mark(models.MarkA), models.EnrollmentStatusCompleted)
	e.SBCFulfills = &sbc

	categories := svc.Categories([]models.TranscriptEntry{e}, nil)
	require.Len(t, categories, 2)

	byCode := map[string]models.RequirementCategory{}
	for _, cat := range categories {
		byCode[cat.Code] = cat
	}
	for _, code := range []string{"WRT", "SPK"} {
		cat, ok := byCode[code]
		require.True(t, ok, code)
		assert.True(t, cat.Completed)
		assert.False(t, cat.InProgress)
		require.Len(t, cat.CompletedCourses, 1)
		assert.Equal(t, "WRT", cat.CompletedCourses[0].Subject)
	}
}

func TestCategoriesInProgress(t *testing.T) {
	svc := NewTranscriptService(nil, nil, nil, 0, nil)

	sbc := "ARTS"
	current := entry("ARS", "154", 3, nil, models.EnrollmentStatusRegistered)
	current.SBCFulfills = &sbc
	failed := entry("ARS", "105", 3, mark(models.MarkF), models.EnrollmentStatusCompleted)
	failed.SBCFulfills = &sbc

	categories := svc.Categories([]models.TranscriptEntry{failed, current}, nil)
	require.Len(t, categories, 1)
	assert.Equal(t, "ARTS", categories[0].Code)
	assert.False(t, categories[0].Completed)
	assert.True(t, categories[0].InProgress)
	assert.Empty(t, categories[0].CompletedCourses)
	require.Len(t, categories[0].InProgressCourses, 1)
}

func TestCategoriesPinnedCatalogOrder(t *testing.T) {
	svc := NewTranscriptService(nil, nil, nil, 0, nil)

	wrt := "WRT"
	legacy := "LEGACY"
	a := entry("WRT", "102", 3, mark(models.MarkA), models.EnrollmentStatusCompleted)
	a.SBCFulfills = &wrt
	b := entry("HIS", "104", 3, mark(models.MarkB), models.EnrollmentStatusCompleted)
	b.SBCFulfills = &legacy

	categories := svc.Categories([]models.TranscriptEntry{a, b}, []string{"SPK", "WRT", "QPS"})
	require.Len(t, categories, 3)

	// Catalog order is preserved, untouched categories still appear, and
	// codes outside the catalog are dropped.
	assert.Equal(t, "SPK", categories[0].Code)
	assert.False(t, categories[0].Completed)
	assert.Equal(t, "WRT", categories[1].Code)
	assert.True(t, categories[1].Completed)
	assert.Equal(t, "QPS", categories[2].Code)
	assert.False(t, categories[2].Completed)
}

func TestAggregateSkipsNonPositiveCredits(t *testing.T) {
	svc := NewTranscriptService(nil, nil, nil, 0, nil)

	entries := []models.TranscriptEntry{
		entry("CSE", "101", 3, mark(models.MarkA), models.EnrollmentStatusCompleted),
		entry("PHY", "133", 0, mark(models.MarkA), models.EnrollmentStatusCompleted),
		entry("PHY", "134", -1, mark(models.MarkA), models.EnrollmentStatusCompleted),
	}

	summary := svc.Aggregate(entries)
	assert.Equal(t, 3.0, summary.CreditsCompleted)
	assert.Equal(t, 3.0, summary.CreditsAttempted)
	require.NotNil(t, summary.GPA)
	assert.Equal(t, 4.0, *summary.GPA)
}

func TestParseCategoryCodes(t *testing.T) {
	cases := []struct {
		name string
		raw  *string
		want []string
	}{
		{"nil", nil, nil},
		{"empty", strPtr(""), nil},
		{"prefix", strPtr("Partially Fulfills: WRT, SPK"), []string{"WRT", "SPK"}},
		{"no prefix", strPtr("DIV"), []string{"DIV"}},
		{"blank segments", strPtr("partially fulfills: WRT, , SPK,"), []string{"WRT", "SPK"}},
		{"whitespace", strPtr("  partially fulfills:  QPS  "), []string{"QPS"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, parseCategoryCodes(tc.raw))
		})
	}
}

func strPtr(s string) *string { return &s }

type memoryCacheRepo struct {
	data map[string][]byte
}

func (m *memoryCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	raw, ok := m.data[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(_ context.Context, _ string) error {
	m.data = map[string][]byte{}
	return nil
}

func TestProgressServedFromCache(t *testing.T) {
	reader := &stubTranscriptReader{entries: []models.TranscriptEntry{
		entry("CSE", "101", 3, mark(models.MarkA), models.EnrollmentStatusCompleted),
	}}
	cache := NewCacheService(&memoryCacheRepo{data: map[string][]byte{}}, nil, time.Minute, nil, true)
	svc := NewTranscriptService(reader, nil, cache, time.Minute, nil)

	first, err := svc.Progress(context.Background(), "stu-1")
	require.NoError(t, err)
	require.NotNil(t, first.Summary.GPA)
	assert.Equal(t, 1, reader.calls)

	second, err := svc.Progress(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.Equal(t, 1, reader.calls, "second read should hit the cache")
	assert.Equal(t, first.Summary, second.Summary)

	svc.InvalidateStudent(context.Background(), "stu-1")
	_, err = svc.Progress(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.Equal(t, 2, reader.calls)
}
