package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/registrar-api/internal/models"
)

type stubWindowRepo struct {
	windows  []models.RegistrationWindow
	replaced []models.RegistrationWindow
	err      error
}

func (s *stubWindowRepo) ListByTerm(_ context.Context, _ string) ([]models.RegistrationWindow, error) {
	return s.windows, s.err
}

func (s *stubWindowRepo) ReplaceForTerm(_ context.Context, _ string, windows []models.RegistrationWindow) error {
	s.replaced = windows
	s.windows = windows
	return s.err
}

func threshold(t models.CreditThreshold) *models.CreditThreshold { return &t }

func termWindows() []models.RegistrationWindow {
	nov3 := time.Date(2025, 11, 3, 8, 0, 0, 0, time.UTC)
	nov10 := nov3.AddDate(0, 0, 7)
	nov17 := nov3.AddDate(0, 0, 14)
	return []models.RegistrationWindow{
		{ID: "w1", TermID: "2026-spring", ClassStanding: models.StandingU4, CreditThreshold: threshold(models.ThresholdHundredPlus), StartsAt: nov3},
		{ID: "w2", TermID: "2026-spring", ClassStanding: models.StandingU4, CreditThreshold: threshold(models.ThresholdBelowHundred), StartsAt: nov10},
		{ID: "w3", TermID: "2026-spring", ClassStanding: models.StandingU3, StartsAt: nov17},
	}
}

func TestResolveThresholdCohorts(t *testing.T) {
	windows := termWindows()

	senior := Resolve(windows, models.StandingU4, 110)
	require.NotNil(t, senior)
	assert.Equal(t, "w1", senior.ID)

	juniorCredits := Resolve(windows, models.StandingU4, 60)
	require.NotNil(t, juniorCredits)
	assert.Equal(t, "w2", juniorCredits.ID)

	junior := Resolve(windows, models.StandingU3, 0)
	require.NotNil(t, junior)
	assert.Equal(t, "w3", junior.ID)
	junior = Resolve(windows, models.StandingU3, 200)
	require.NotNil(t, junior)
	assert.Equal(t, "w3", junior.ID)
}

func TestResolveNoMatchIsNil(t *testing.T) {
	windows := termWindows()

	assert.Nil(t, Resolve(windows, models.StandingU1, 10), "no window configured for U1")
	assert.Nil(t, Resolve(nil, models.StandingU4, 110), "empty configuration")
	assert.Nil(t, Resolve(windows, models.ClassStanding("G5"), 110), "unrecognized standing")
}

func TestResolveFallsBackToUnconditional(t *testing.T) {
	nov3 := time.Date(2025, 11, 3, 8, 0, 0, 0, time.UTC)
	windows := []models.RegistrationWindow{
		{ID: "w1", ClassStanding: models.StandingU2, CreditThreshold: threshold(models.ThresholdHundredPlus), StartsAt: nov3},
		{ID: "w2", ClassStanding: models.StandingU2, StartsAt: nov3.AddDate(0, 0, 7)},
	}

	resolved := Resolve(windows, models.StandingU2, 45)
	require.NotNil(t, resolved)
	assert.Equal(t, "w2", resolved.ID)
}

func TestResolveForStudentComputesEarnedCredits(t *testing.T) {
	reader := &stubTranscriptReader{entries: []models.TranscriptEntry{
		entry("CSE", "101", 60, mark(models.MarkA), models.EnrollmentStatusCompleted),
		entry("CSE", "102", 50, mark(models.MarkP), models.EnrollmentStatusCompleted),
		entry("CSE", "103", 50, mark(models.MarkF), models.EnrollmentStatusCompleted),
	}}
	repo := &stubWindowRepo{windows: termWindows()}
	svc := NewRegistrationService(repo, reader, nil, nil, nil)

	resolved, err := svc.ResolveForStudent(context.Background(), "stu-1", "2026-spring", models.StandingU4)
	require.NoError(t, err)
	assert.Equal(t, 110.0, resolved.EarnedCredits)
	require.NotNil(t, resolved.Window)
	assert.Equal(t, "w1", resolved.Window.ID)
}

func TestReplaceWindowsValidates(t *testing.T) {
	repo := &stubWindowRepo{}
	svc := NewRegistrationService(repo, nil, nil, nil, nil)

	_, err := svc.ReplaceWindows(context.Background(), "2026-spring", ReplaceWindowsRequest{
		Windows: []WindowUpsertItem{{ClassStanding: "U9", StartsAt: time.Now()}},
	})
	require.Error(t, err)
	assert.Empty(t, repo.replaced)

	windows, err := svc.ReplaceWindows(context.Background(), "2026-spring", ReplaceWindowsRequest{
		Windows: []WindowUpsertItem{
			{ClassStanding: models.StandingU4, CreditThreshold: threshold(models.ThresholdHundredPlus), StartsAt: time.Now()},
			{ClassStanding: models.StandingU4, StartsAt: time.Now().Add(time.Hour)},
		},
	})
	require.NoError(t, err)
	assert.Len(t, windows, 2)
	assert.Equal(t, "2026-spring", repo.replaced[0].TermID)
}
