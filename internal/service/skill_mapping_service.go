package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/talentbridge/match-api/internal/dto"
	"github.com/talentbridge/match-api/internal/models"
	appErrors "github.com/talentbridge/match-api/pkg/errors"
)

type mappingStore interface {
	GetByID(ctx context.Context, id string) (*models.SkillMapping, error)
	List(ctx context.Context) ([]models.SkillMapping, error)
	ListBySport(ctx context.Context, sport string) ([]models.SkillMapping, error)
	Upsert(ctx context.Context, mapping *models.SkillMapping) error
}

// SkillMappingService manages the admin-curated athletic transfer table.
type SkillMappingService struct {
	repo     mappingStore
	validate *validator.Validate
	logger   *zap.Logger
}

// NewSkillMappingService constructs the service.
func NewSkillMappingService(repo mappingStore, logger *zap.Logger) *SkillMappingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SkillMappingService{
		repo:     repo,
		validate: validator.New(),
		logger:   logger,
	}
}

// List returns every mapping, optionally filtered to one sport.
func (s *SkillMappingService) List(ctx context.Context, sport string) ([]models.SkillMapping, error) {
	var (
		mappings []models.SkillMapping
		err      error
	)
	if sport != "" {
		mappings, err = s.repo.ListBySport(ctx, sport)
	} else {
		mappings, err = s.repo.List(ctx)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list skill mappings")
	}
	return mappings, nil
}

// Create validates and stores a new mapping row.
func (s *SkillMappingService) Create(ctx context.Context, req dto.UpsertSkillMappingRequest) (*models.SkillMapping, error) {
	mapping, err := s.buildMapping(req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Upsert(ctx, mapping); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save skill mapping")
	}
	s.logger.Info("skill mapping saved",
		zap.String("sport", mapping.Sport),
		zap.String("position", mapping.Position),
		zap.String("skill", mapping.ProfessionalSkill))
	return mapping, nil
}

// Update validates and overwrites an existing mapping row.
func (s *SkillMappingService) Update(ctx context.Context, id string, req dto.UpsertSkillMappingRequest) (*models.SkillMapping, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "skill mapping not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load skill mapping")
	}

	mapping, err := s.buildMapping(req)
	if err != nil {
		return nil, err
	}
	mapping.ID = existing.ID
	mapping.CreatedAt = existing.CreatedAt

	if err := s.repo.Upsert(ctx, mapping); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save skill mapping")
	}
	return mapping, nil
}

func (s *SkillMappingService) buildMapping(req dto.UpsertSkillMappingRequest) (*models.SkillMapping, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid skill mapping payload")
	}
	return &models.SkillMapping{
		Sport:             strings.ToLower(strings.TrimSpace(req.Sport)),
		Position:          strings.ToLower(strings.TrimSpace(req.Position)),
		ProfessionalSkill: strings.ToLower(strings.TrimSpace(req.ProfessionalSkill)),
		TransferStrength:  req.TransferStrength,
		SkillCategory:     strings.ToLower(strings.TrimSpace(req.SkillCategory)),
		Description:       strings.TrimSpace(req.Description),
	}, nil
}
