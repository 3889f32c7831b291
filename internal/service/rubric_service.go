package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/rubrica-dev/rubrica-api/internal/dto"
	"github.com/rubrica-dev/rubrica-api/internal/models"
	"github.com/rubrica-dev/rubrica-api/internal/repository"
)

// ErrTemplateNotFound indicates the rubric template does not exist.
var ErrTemplateNotFound = errors.New("rubric template not found")

// ErrCriterionNotFound indicates the rubric criterion does not exist.
var ErrCriterionNotFound = errors.New("rubric criterion not found")

// RubricService exposes rubric catalog use cases.
type RubricService interface {
	ListTemplates(ctx context.Context, activeOnly bool) ([]dto.TemplateResponse, error)
	GetTemplate(ctx context.Context, id string) (dto.TemplateResponse, error)
	CreateTemplate(ctx context.Context, payload dto.TemplateCreateRequest) (dto.TemplateResponse, error)
	UpdateTemplate(ctx context.Context, id string, payload dto.TemplateUpdateRequest) (dto.TemplateResponse, error)
	DeleteTemplate(ctx context.Context, id string) error

	// ListCriteria degrades gracefully: a malformed or missing template id
	// filter lists every criterion instead of failing. Admin dashboards rely
	// on this leniency.
	ListCriteria(ctx context.Context, templateID string) ([]dto.CriterionResponse, error)
	GetCriterion(ctx context.Context, id string) (dto.CriterionResponse, error)
	CreateCriterion(ctx context.Context, templateID string, payload dto.CriterionCreateRequest) (dto.CriterionResponse, error)
	UpdateCriterion(ctx context.Context, id string, payload dto.CriterionUpdateRequest) (dto.CriterionResponse, error)
	DeleteCriterion(ctx context.Context, id string) error
}

type rubricService struct {
	repo      repository.RubricRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewRubricService builds the rubric catalog service.
func NewRubricService(repo repository.RubricRepository, validate *validator.Validate, logger zerolog.Logger) RubricService {
	return &rubricService{
		repo:      repo,
		validator: validate,
		logger:    logger.With().Str("component", "rubric_service").Logger(),
	}
}

func (s *rubricService) ListTemplates(ctx context.Context, activeOnly bool) ([]dto.TemplateResponse, error) {
	templates, err := s.repo.ListTemplates(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	return dto.NewTemplateResponseSlice(templates), nil
}

func (s *rubricService) GetTemplate(ctx context.Context, id string) (dto.TemplateResponse, error) {
	templateID, err := ParseID(id)
	if err != nil {
		return dto.TemplateResponse{}, err
	}

	template, err := s.repo.GetTemplateWithCriteria(ctx, templateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TemplateResponse{}, ErrTemplateNotFound
		}
		return dto.TemplateResponse{}, err
	}
	return dto.NewTemplateResponse(template), nil
}

func (s *rubricService) CreateTemplate(ctx context.Context, payload dto.TemplateCreateRequest) (dto.TemplateResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TemplateResponse{}, err
	}

	template := models.RubricTemplate{
		Name: payload.Name,
	}
	if payload.Description.Present {
		template.Description = payload.Description.Value
	}
	if payload.Active != nil {
		template.Active = *payload.Active
	}

	if payload.Version != nil {
		template.Version = *payload.Version
	} else {
		version, err := s.repo.NextVersion(ctx, payload.Name)
		if err != nil {
			return dto.TemplateResponse{}, err
		}
		template.Version = version
	}

	if err := s.repo.CreateTemplate(ctx, &template); err != nil {
		return dto.TemplateResponse{}, err
	}

	s.logger.Info().Str("template_id", template.ID.String()).Int("version", template.Version).Msg("rubric template created")
	return dto.NewTemplateResponse(template), nil
}

func (s *rubricService) UpdateTemplate(ctx context.Context, id string, payload dto.TemplateUpdateRequest) (dto.TemplateResponse, error) {
	templateID, err := ParseID(id)
	if err != nil {
		return dto.TemplateResponse{}, err
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.TemplateResponse{}, err
	}

	template, err := s.repo.GetTemplate(ctx, templateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TemplateResponse{}, ErrTemplateNotFound
		}
		return dto.TemplateResponse{}, err
	}

	if payload.Name != nil {
		template.Name = *payload.Name
	}
	// Absent key leaves the description alone, explicit null clears it.
	if payload.Description.Present {
		template.Description = payload.Description.Value
	}
	if payload.Version != nil {
		template.Version = *payload.Version
	}
	if payload.Active != nil {
		template.Active = *payload.Active
	}

	if err := s.repo.UpdateTemplate(ctx, &template); err != nil {
		return dto.TemplateResponse{}, err
	}

	s.logger.Info().Str("template_id", template.ID.String()).Msg("rubric template updated")
	return dto.NewTemplateResponse(template), nil
}

func (s *rubricService) DeleteTemplate(ctx context.Context, id string) error {
	templateID, err := ParseID(id)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteTemplate(ctx, templateID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTemplateNotFound
		}
		return err
	}

	s.logger.Info().Str("template_id", templateID.String()).Msg("rubric template deleted")
	return nil
}

func (s *rubricService) ListCriteria(ctx context.Context, templateID string) ([]dto.CriterionResponse, error) {
	parsed, err := uuid.Parse(templateID)
	if err != nil || parsed == uuid.Nil {
		criteria, listErr := s.repo.ListAllCriteria(ctx)
		if listErr != nil {
			return nil, listErr
		}
		return dto.NewCriterionResponseSlice(criteria), nil
	}

	criteria, err := s.repo.ListCriteria(ctx, parsed)
	if err != nil {
		return nil, err
	}
	return dto.NewCriterionResponseSlice(criteria), nil
}

func (s *rubricService) GetCriterion(ctx context.Context, id string) (dto.CriterionResponse, error) {
	criterionID, err := ParseID(id)
	if err != nil {
		return dto.CriterionResponse{}, err
	}

	criterion, err := s.repo.GetCriterion(ctx, criterionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CriterionResponse{}, ErrCriterionNotFound
		}
		return dto.CriterionResponse{}, err
	}
	return dto.NewCriterionResponse(criterion), nil
}

func (s *rubricService) CreateCriterion(ctx context.Context, templateID string, payload dto.CriterionCreateRequest) (dto.CriterionResponse, error) {
	parsedTemplateID, err := ParseID(templateID)
	if err != nil {
		return dto.CriterionResponse{}, err
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.CriterionResponse{}, err
	}

	if _, err := s.repo.GetTemplate(ctx, parsedTemplateID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CriterionResponse{}, ErrTemplateNotFound
		}
		return dto.CriterionResponse{}, err
	}

	criterion := models.RubricCriterion{
		TemplateID: parsedTemplateID,
		Criterion:  payload.Criterion,
		Weight:     1,
		MinScore:   0,
		MaxScore:   100,
	}
	if payload.Description.Present {
		criterion.Description = payload.Description.Value
	}
	if payload.Weight.Present {
		criterion.Weight = payload.Weight.Value
	}
	if payload.MinScore.Present {
		criterion.MinScore = payload.MinScore.Value
	}
	if payload.MaxScore.Present {
		criterion.MaxScore = payload.MaxScore.Value
	}

	if err := s.repo.CreateCriterion(ctx, &criterion); err != nil {
		return dto.CriterionResponse{}, err
	}

	s.logger.Info().Str("criterion_id", criterion.ID.String()).Str("template_id", parsedTemplateID.String()).Msg("rubric criterion created")
	return dto.NewCriterionResponse(criterion), nil
}

func (s *rubricService) UpdateCriterion(ctx context.Context, id string, payload dto.CriterionUpdateRequest) (dto.CriterionResponse, error) {
	criterionID, err := ParseID(id)
	if err != nil {
		return dto.CriterionResponse{}, err
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.CriterionResponse{}, err
	}

	criterion, err := s.repo.GetCriterion(ctx, criterionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CriterionResponse{}, ErrCriterionNotFound
		}
		return dto.CriterionResponse{}, err
	}

	if payload.Criterion != nil {
		criterion.Criterion = *payload.Criterion
	}
	if payload.Description.Present {
		criterion.Description = payload.Description.Value
	}
	if payload.Weight.Present {
		criterion.Weight = payload.Weight.Value
	}
	if payload.MinScore.Present {
		criterion.MinScore = payload.MinScore.Value
	}
	if payload.MaxScore.Present {
		criterion.MaxScore = payload.MaxScore.Value
	}

	if err := s.repo.UpdateCriterion(ctx, &criterion); err != nil {
		return dto.CriterionResponse{}, err
	}

	s.logger.Info().Str("criterion_id", criterion.ID.String()).Msg("rubric criterion updated")
	return dto.NewCriterionResponse(criterion), nil
}

func (s *rubricService) DeleteCriterion(ctx context.Context, id string) error {
	criterionID, err := ParseID(id)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteCriterion(ctx, criterionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCriterionNotFound
		}
		return err
	}

	s.logger.Info().Str("criterion_id", criterionID.String()).Msg("rubric criterion deleted")
	return nil
}
