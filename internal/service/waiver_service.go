package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campusops/registrar-api/internal/models"
	appErrors "github.com/campusops/registrar-api/pkg/errors"
)

type waiverRepo interface {
	Create(ctx context.Context, waiver *models.TimeConflictWaiver) error
	GetByID(ctx context.Context, id string) (*models.TimeConflictWaiver, error)
	List(ctx context.Context, filter models.WaiverFilter) ([]models.TimeConflictWaiver, error)
	Approve(ctx context.Context, id string, party models.WaiverParty) (*models.TimeConflictWaiver, error)
	Deny(ctx context.Context, id string, party models.WaiverParty) (*models.TimeConflictWaiver, error)
}

// ClassReferenceRequest identifies one conflicting section in a waiver
// submission.
type ClassReferenceRequest struct {
	Subject      string `json:"subject" validate:"required"`
	CourseNumber string `json:"course_number" validate:"required"`
	SectionID    string `json:"section_id" validate:"required"`
	TermID       string `json:"term_id" validate:"required"`
}

// CreateWaiverRequest submits a new time-conflict waiver.
type CreateWaiverRequest struct {
	StudentID   string                `json:"student_id" validate:"required"`
	FirstClass  ClassReferenceRequest `json:"first_class" validate:"required"`
	SecondClass ClassReferenceRequest `json:"second_class" validate:"required"`
}

// DecideWaiverRequest records one party's approval or denial.
type DecideWaiverRequest struct {
	Party models.WaiverParty `json:"party" validate:"required,oneof=INSTRUCTOR1 INSTRUCTOR2 ADVISOR"`
}

// WaiverView is a waiver together with its derived aggregate state.
type WaiverView struct {
	models.TimeConflictWaiver
	State models.WaiverState `json:"state"`
}

// WaiverService drives the multi-party waiver approval workflow. All state
// transitions happen under a row lock in the repository, so two concurrent
// decisions for the same waiver serialize instead of overwriting each other.
type WaiverService struct {
	waivers   waiverRepo
	validator *validator.Validate
	logger    *zap.Logger
}

// NewWaiverService constructs the service.
func NewWaiverService(waivers waiverRepo, validate *validator.Validate, logger *zap.Logger) *WaiverService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WaiverService{waivers: waivers, validator: validate, logger: logger}
}

// Create opens a new waiver in its pending state with all approvals unset.
func (s *WaiverService) Create(ctx context.Context, req CreateWaiverRequest) (*WaiverView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid waiver payload")
	}
	if req.FirstClass == req.SecondClass {
		return nil, appErrors.Clone(appErrors.ErrValidation, "waiver must reference two distinct sections")
	}

	waiver := &models.TimeConflictWaiver{
		StudentID:   req.StudentID,
		FirstClass:  classRef(req.FirstClass),
		SecondClass: classRef(req.SecondClass),
	}
	if err := s.waivers.Create(ctx, waiver); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create waiver")
	}

	s.logger.Info("waiver created",
		zap.String("waiver_id", waiver.ID),
		zap.String("student_id", waiver.StudentID))
	return view(waiver), nil
}

// Get returns one waiver with its derived state.
func (s *WaiverService) Get(ctx context.Context, id string) (*WaiverView, error) {
	waiver, err := s.waivers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return view(waiver), nil
}

// List returns waivers matching the filter.
func (s *WaiverService) List(ctx context.Context, filter models.WaiverFilter) ([]WaiverView, error) {
	waivers, err := s.waivers.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list waivers")
	}
	views := make([]WaiverView, 0, len(waivers))
	for i := range waivers {
		views = append(views, *view(&waivers[i]))
	}
	return views, nil
}

// Approve records one party's sign-off. The waiver becomes fully approved
// only once all three parties have signed; a denied waiver can never be
// approved again.
func (s *WaiverService) Approve(ctx context.Context, id string, req DecideWaiverRequest) (*WaiverView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid approval payload")
	}
	waiver, err := s.waivers.Approve(ctx, id, req.Party)
	if err != nil {
		return nil, err
	}
	s.logger.Info("waiver approval recorded",
		zap.String("waiver_id", id),
		zap.String("party", string(req.Party)),
		zap.String("state", string(waiver.State())))
	return view(waiver), nil
}

// Deny records a terminal denial. Any single party can deny a pending
// waiver; a resubmission requires a fresh waiver.
func (s *WaiverService) Deny(ctx context.Context, id string, req DecideWaiverRequest) (*WaiverView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid denial payload")
	}
	waiver, err := s.waivers.Deny(ctx, id, req.Party)
	if err != nil {
		return nil, err
	}
	s.logger.Info("waiver denied",
		zap.String("waiver_id", id),
		zap.String("party", string(req.Party)))
	return view(waiver), nil
}

func classRef(req ClassReferenceRequest) models.ClassReference {
	return models.ClassReference{
		Subject:      req.Subject,
		CourseNumber: req.CourseNumber,
		SectionID:    req.SectionID,
		TermID:       req.TermID,
	}
}

func view(waiver *models.TimeConflictWaiver) *WaiverView {
	return &WaiverView{TimeConflictWaiver: *waiver, State: waiver.State()}
}
