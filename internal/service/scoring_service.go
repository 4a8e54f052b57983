package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/talentbridge/match-api/internal/matching"
	"github.com/talentbridge/match-api/internal/models"
	appErrors "github.com/talentbridge/match-api/pkg/errors"
)

type snapshotRepository interface {
	GetStudent(ctx context.Context, studentID string) (*models.StudentProfile, error)
	GetListing(ctx context.Context, listingID string) (*models.Listing, error)
	GetTenant(ctx context.Context, tenantID string) (*models.Tenant, error)
	ListPublishedListings(ctx context.Context, tenantID string) ([]models.Listing, error)
	ListActiveStudents(ctx context.Context, tenantID string) ([]models.StudentProfile, error)
}

type historyRepository interface {
	OutcomesByStudent(ctx context.Context, studentID string) ([]models.ApplicationOutcome, error)
	FeedbackByStudent(ctx context.Context, studentID string) ([]models.MatchFeedback, error)
	AppliedListingIDs(ctx context.Context, studentID string) (map[string]struct{}, error)
	AppliedStudentIDs(ctx context.Context, listingID string) (map[string]struct{}, error)
	InterestedStudentIDs(ctx context.Context, listingID string) ([]string, error)
	FeedbackStats(ctx context.Context) (*models.FeedbackStats, error)
}

type mappingReader interface {
	ListBySport(ctx context.Context, sport string) ([]models.SkillMapping, error)
}

// ScoringService assembles calculator inputs from the external snapshots and
// runs the pure computation. It is the single compute path shared by the
// synchronous read side and the queue workers.
type ScoringService struct {
	snapshots snapshotRepository
	history   historyRepository
	mappings  mappingReader
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
}

// NewScoringService constructs the scoring service.
func NewScoringService(snapshots snapshotRepository, history historyRepository, mappings mappingReader, metrics *MetricsService, logger *zap.Logger) *ScoringService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScoringService{
		snapshots: snapshots,
		history:   history,
		mappings:  mappings,
		metrics:   metrics,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// pairContext bundles the loaded snapshots so list endpoints can score many
// listings against one student without reloading the student side.
type pairContext struct {
	student   models.StudentProfile
	history   matching.AffinityProfile
	transfers []matching.Transfer
}

// loadStudentContext resolves the student snapshot, history aggregation and
// applicable transfer mappings. Unknown ids surface as InvalidReference.
func (s *ScoringService) loadStudentContext(ctx context.Context, studentID string) (*pairContext, error) {
	student, err := s.snapshots.GetStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidReference, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	outcomes, err := s.history.OutcomesByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application history")
	}
	feedback, err := s.history.FeedbackByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load feedback history")
	}

	transfers, err := s.resolveTransfers(ctx, student)
	if err != nil {
		return nil, err
	}

	return &pairContext{
		student:   *student,
		history:   matching.BuildAffinityProfile(outcomes, feedback),
		transfers: transfers,
	}, nil
}

// resolveTransfers loads the transfer mappings applicable to a student.
// Standard tenants, and students without a sport, resolve to nothing.
func (s *ScoringService) resolveTransfers(ctx context.Context, student *models.StudentProfile) ([]matching.Transfer, error) {
	if student.Sport == nil || *student.Sport == "" {
		return nil, nil
	}
	tenant, err := s.snapshots.GetTenant(ctx, student.TenantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load tenant")
	}
	if !tenant.AthleticEnabled() {
		return nil, nil
	}

	rows, err := s.mappings.ListBySport(ctx, *student.Sport)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load skill mappings")
	}
	return matching.NewTransferIndex(rows).Resolve(student.Sport, student.Position), nil
}

// ComputePair scores one (student, listing) pair and materialises the row to
// persist. The version stamp carries the triggering event's logical version
// so the store can reject out-of-order writes.
func (s *ScoringService) ComputePair(ctx context.Context, studentID, listingID string, version int64) (*models.MatchScore, *matching.Result, error) {
	pair, err := s.loadStudentContext(ctx, studentID)
	if err != nil {
		return nil, nil, err
	}

	listing, err := s.snapshots.GetListing(ctx, listingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrInvalidReference, "listing not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load listing")
	}

	score, result := s.computeForListing(pair, *listing, version)
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	return score, result, nil
}

// computeForListing runs the pure calculator against an already-loaded
// student context.
func (s *ScoringService) computeForListing(pair *pairContext, listing models.Listing, version int64) (*models.MatchScore, *matching.Result) {
	computedAt := s.now()
	wallStart := time.Now()
	result := matching.Compute(matching.ComputeInput{
		Student:   pair.student,
		Listing:   listing,
		History:   pair.history,
		Transfers: pair.transfers,
		Now:       computedAt,
	})
	elapsed := time.Since(wallStart)
	if s.metrics != nil {
		s.metrics.ObserveComputation(elapsed)
	}

	score := &models.MatchScore{
		StudentID:         pair.student.ID,
		ListingID:         listing.ID,
		CompositeScore:    result.Composite,
		SkillMatch:        result.Breakdown.SkillMatch,
		CategoryAffinity:  result.Breakdown.CategoryAffinity,
		Availability:      result.Breakdown.Availability,
		RecencyBoost:      result.Breakdown.RecencyBoost,
		SuccessHistory:    result.Breakdown.SuccessHistory,
		IsStale:           false,
		Version:           version,
		ComputedAt:        computedAt,
		ComputationTimeMs: elapsed.Milliseconds(),
	}
	return score, &result
}
