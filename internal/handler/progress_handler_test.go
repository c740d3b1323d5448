package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/registrar-api/internal/models"
	"github.com/campusops/registrar-api/internal/service"
)

type transcriptReaderMock struct {
	entries []models.TranscriptEntry
	err     error
}

func (m *transcriptReaderMock) ListByStudent(_ context.Context, _ string, _ models.TranscriptFilter) ([]models.TranscriptEntry, error) {
	return m.entries, m.err
}

type windowRepoMock struct {
	windows []models.RegistrationWindow
}

func (m *windowRepoMock) ListByTerm(_ context.Context, _ string) ([]models.RegistrationWindow, error) {
	return m.windows, nil
}

func (m *windowRepoMock) ReplaceForTerm(_ context.Context, _ string, windows []models.RegistrationWindow) error {
	m.windows = windows
	return nil
}

func gradedEntry(subject, number string, credits float64, m models.Mark) models.TranscriptEntry {
	grade := m
	return models.TranscriptEntry{
		Subject:      subject,
		CourseNumber: number,
		Credits:      credits,
		Grade:        &grade,
		Status:       models.EnrollmentStatusCompleted,
	}
}

func TestProgressHandlerGPA(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reader := &transcriptReaderMock{entries: []models.TranscriptEntry{
		gradedEntry("CSE", "101", 3, models.MarkA),
		gradedEntry("CSE", "102", 3, models.MarkB),
	}}
	transcripts := service.NewTranscriptService(reader, nil, nil, 0, nil)
	handler := NewProgressHandler(transcripts, nil, nil)

	c, w := newGinContext(http.MethodGet, "/students/stu-1/gpa", nil)
	c.Params = gin.Params{{Key: "studentID", Value: "stu-1"}}

	handler.GPA(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data models.TranscriptSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Data.GPA)
	assert.Equal(t, 3.5, *envelope.Data.GPA)
	assert.Equal(t, 6.0, envelope.Data.CreditsAttempted)
}

func TestProgressHandlerRegistrationWindow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reader := &transcriptReaderMock{entries: []models.TranscriptEntry{
		gradedEntry("CSE", "101", 110, models.MarkA),
	}}
	threshold := models.ThresholdHundredPlus
	windows := &windowRepoMock{windows: []models.RegistrationWindow{
		{ID: "w1", TermID: "2026-spring", ClassStanding: models.StandingU4, CreditThreshold: &threshold},
	}}
	registration := service.NewRegistrationService(windows, reader, nil, nil, nil)
	handler := NewProgressHandler(nil, nil, registration)

	c, w := newGinContext(http.MethodGet, "/students/stu-1/registration-window?termId=2026-spring&standing=U4", nil)
	c.Params = gin.Params{{Key: "studentID", Value: "stu-1"}}

	handler.RegistrationWindow(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data service.ResolvedWindow `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Data.Window)
	assert.Equal(t, "w1", envelope.Data.Window.ID)
	assert.Equal(t, 110.0, envelope.Data.EarnedCredits)
}

func TestProgressHandlerRegistrationWindowRequiresParams(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewProgressHandler(nil, nil, nil)

	c, w := newGinContext(http.MethodGet, "/students/stu-1/registration-window", nil)
	c.Params = gin.Params{{Key: "studentID", Value: "stu-1"}}

	handler.RegistrationWindow(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
