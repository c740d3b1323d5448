package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/registrar-api/internal/middleware"
	"github.com/campusops/registrar-api/internal/models"
	"github.com/campusops/registrar-api/internal/service"
	appErrors "github.com/campusops/registrar-api/pkg/errors"
	"github.com/campusops/registrar-api/pkg/response"
)

type waiverRepoMock struct {
	waiver *models.TimeConflictWaiver
	err    error
}

func (m *waiverRepoMock) Create(_ context.Context, waiver *models.TimeConflictWaiver) error {
	if m.err != nil {
		return m.err
	}
	waiver.ID = "wvr-1"
	waiver.CreatedAt = time.Now().UTC()
	m.waiver = waiver
	return nil
}

func (m *waiverRepoMock) GetByID(_ context.Context, _ string) (*models.TimeConflictWaiver, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.waiver, nil
}

func (m *waiverRepoMock) List(_ context.Context, _ models.WaiverFilter) ([]models.TimeConflictWaiver, error) {
	if m.waiver == nil {
		return nil, m.err
	}
	return []models.TimeConflictWaiver{*m.waiver}, m.err
}

func (m *waiverRepoMock) Approve(_ context.Context, _ string, party models.WaiverParty) (*models.TimeConflictWaiver, error) {
	if m.err != nil {
		return nil, m.err
	}
	switch party {
	case models.WaiverPartyInstructor1:
		m.waiver.Instructor1Approved = true
	case models.WaiverPartyInstructor2:
		m.waiver.Instructor2Approved = true
	case models.WaiverPartyAdvisor:
		m.waiver.AdvisorApproved = true
	}
	return m.waiver, nil
}

func (m *waiverRepoMock) Deny(_ context.Context, _ string, party models.WaiverParty) (*models.TimeConflictWaiver, error) {
	if m.err != nil {
		return nil, m.err
	}
	now := time.Now().UTC()
	m.waiver.DeniedBy = &party
	m.waiver.DeniedAt = &now
	return m.waiver, nil
}

func waiverPayload() []byte {
	payload, _ := json.Marshal(service.CreateWaiverRequest{
		StudentID: "stu-1",
		FirstClass: service.ClassReferenceRequest{
			Subject: "CSE", CourseNumber: "320", SectionID: "sec-1", TermID: "2026-spring",
		},
		SecondClass: service.ClassReferenceRequest{
			Subject: "AMS", CourseNumber: "310", SectionID: "sec-2", TermID: "2026-spring",
		},
	})
	return payload
}

func TestWaiverHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &waiverRepoMock{}
	handler := NewWaiverHandler(service.NewWaiverService(repo, nil, nil))

	c, w := newGinContext(http.MethodPost, "/waivers", waiverPayload())
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "adv-1", Role: models.RoleAdvisor})

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)

	var envelope struct {
		Data service.WaiverView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, models.WaiverStatePending, envelope.Data.State)
	assert.Equal(t, "stu-1", envelope.Data.StudentID)
}

func TestWaiverHandlerCreateForcesStudentOwnership(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &waiverRepoMock{}
	handler := NewWaiverHandler(service.NewWaiverService(repo, nil, nil))

	c, w := newGinContext(http.MethodPost, "/waivers", waiverPayload())
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "stu-other", Role: models.RoleStudent})

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "stu-other", repo.waiver.StudentID)
}

func TestWaiverHandlerGetHidesOtherStudents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &waiverRepoMock{waiver: &models.TimeConflictWaiver{ID: "wvr-1", StudentID: "stu-1"}}
	handler := NewWaiverHandler(service.NewWaiverService(repo, nil, nil))

	c, w := newGinContext(http.MethodGet, "/waivers/wvr-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "wvr-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "stu-2", Role: models.RoleStudent})

	handler.Get(c)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestWaiverHandlerApproveConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &waiverRepoMock{err: appErrors.Clone(appErrors.ErrWaiverDenied, "waiver has been denied")}
	handler := NewWaiverHandler(service.NewWaiverService(repo, nil, nil))

	payload, _ := json.Marshal(service.DecideWaiverRequest{Party: models.WaiverPartyAdvisor})
	c, w := newGinContext(http.MethodPost, "/waivers/wvr-1/approve", payload)
	c.Params = gin.Params{{Key: "id", Value: "wvr-1"}}

	handler.Approve(c)
	require.Equal(t, http.StatusConflict, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "WAIVER_DENIED", envelope.Error.Code)
}

func TestWaiverHandlerDeny(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &waiverRepoMock{waiver: &models.TimeConflictWaiver{ID: "wvr-1", StudentID: "stu-1"}}
	handler := NewWaiverHandler(service.NewWaiverService(repo, nil, nil))

	payload, _ := json.Marshal(service.DecideWaiverRequest{Party: models.WaiverPartyInstructor1})
	c, w := newGinContext(http.MethodPost, "/waivers/wvr-1/deny", payload)
	c.Params = gin.Params{{Key: "id", Value: "wvr-1"}}

	handler.Deny(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data service.WaiverView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, models.WaiverStateDenied, envelope.Data.State)
}
