package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/talentbridge/match-api/internal/dto"
	"github.com/talentbridge/match-api/internal/matching"
	"github.com/talentbridge/match-api/internal/models"
	appErrors "github.com/talentbridge/match-api/pkg/errors"
)

type scoreReader interface {
	Get(ctx context.Context, studentID, listingID string) (*models.MatchScore, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.MatchScore, error)
	Upsert(ctx context.Context, score *models.MatchScore) (bool, error)
}

type enqueuer interface {
	Enqueue(ctx context.Context, entry *models.RecomputationEntry) (bool, error)
}

// Nudger wakes the queue workers after an enqueue. Satisfied by jobs.Runner.
type Nudger interface {
	Nudge()
}

const defaultRecommendationLimit = 20

// MatchService serves the recommendation read APIs: the score store in
// front, the calculator behind it. List views serve stale rows and defer
// recomputation to the queue; the single-pair explanation recomputes
// synchronously under a timeout and degrades to the last cached score.
type MatchService struct {
	scoring     *ScoringService
	scores      scoreReader
	queue       enqueuer
	snapshots   snapshotRepository
	history     historyRepository
	cache       *CacheService
	nudger      Nudger
	logger      *zap.Logger
	syncTimeout time.Duration
}

// NewMatchService constructs the match service.
func NewMatchService(scoring *ScoringService, scores scoreReader, queue enqueuer, snapshots snapshotRepository, history historyRepository, cache *CacheService, nudger Nudger, syncTimeout time.Duration, logger *zap.Logger) *MatchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if syncTimeout <= 0 {
		syncTimeout = 2 * time.Second
	}
	return &MatchService{
		scoring:     scoring,
		scores:      scores,
		queue:       queue,
		snapshots:   snapshots,
		history:     history,
		cache:       cache,
		nudger:      nudger,
		logger:      logger,
		syncTimeout: syncTimeout,
	}
}

// RecommendedListings returns the ranked listings for a student. The second
// return value reports whether any served score was stale, so the handler
// can flag the response as degraded.
func (s *MatchService) RecommendedListings(ctx context.Context, studentID string, limit int) ([]dto.RecommendedListing, bool, error) {
	if limit <= 0 {
		limit = defaultRecommendationLimit
	}

	cacheKey := fmt.Sprintf("recs:listings:%s:%d", studentID, limit)
	var cached []dto.RecommendedListing
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return cached, false, nil
		}
	}

	pair, err := s.scoring.loadStudentContext(ctx, studentID)
	if err != nil {
		return nil, false, err
	}

	listings, err := s.snapshots.ListPublishedListings(ctx, pair.student.TenantID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load listings")
	}

	applied, err := s.history.AppliedListingIDs(ctx, studentID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load applications")
	}

	cachedScores, err := s.scores.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load cached scores")
	}
	byListing := make(map[string]models.MatchScore, len(cachedScores))
	for _, score := range cachedScores {
		byListing[score.ListingID] = score
	}

	degraded := false
	recommendations := make([]dto.RecommendedListing, 0, len(listings))
	for _, listing := range listings {
		if _, ok := applied[listing.ID]; ok {
			continue
		}

		stored, ok := byListing[listing.ID]
		switch {
		case !ok:
			// First sight of the pair: compute inline and persist.
			score, result := s.scoring.computeForListing(pair, listing, 1)
			if _, err := s.scores.Upsert(ctx, score); err != nil {
				s.logger.Warn("persist computed score", zap.String("student_id", studentID), zap.String("listing_id", listing.ID), zap.Error(err))
			}
			recommendations = append(recommendations, buildRecommendation(pair, listing, *score, result, false))
		case stored.IsStale:
			// Serve the stale value and let the queue refresh it.
			degraded = true
			s.enqueuePair(ctx, stored.StudentID, stored.ListingID, stored.Version)
			recommendations = append(recommendations, buildRecommendation(pair, listing, stored, nil, true))
		default:
			recommendations = append(recommendations, buildRecommendation(pair, listing, stored, nil, false))
		}
	}

	sortRecommendedListings(recommendations)
	if len(recommendations) > limit {
		recommendations = recommendations[:limit]
	}

	if s.cache != nil && !degraded {
		if err := s.cache.Set(ctx, cacheKey, recommendations, 0); err != nil {
			s.logger.Warn("cache recommendations", zap.Error(err))
		}
	}
	return recommendations, degraded, nil
}

// RecommendedStudents returns the skill-ranked candidates for a listing.
// Only the skill-match term applies; students who already applied are
// excluded.
func (s *MatchService) RecommendedStudents(ctx context.Context, listingID string, limit int) ([]dto.RecommendedStudent, error) {
	if limit <= 0 {
		limit = defaultRecommendationLimit
	}

	cacheKey := fmt.Sprintf("recs:students:%s:%d", listingID, limit)
	var cached []dto.RecommendedStudent
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	listing, err := s.snapshots.GetListing(ctx, listingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidReference, "listing not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load listing")
	}

	students, err := s.snapshots.ListActiveStudents(ctx, listing.TenantID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}

	applied, err := s.history.AppliedStudentIDs(ctx, listingID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load applications")
	}

	candidates := make([]dto.RecommendedStudent, 0, len(students))
	for _, student := range students {
		if _, ok := applied[student.ID]; ok {
			continue
		}
		transfers, err := s.scoring.resolveTransfers(ctx, &student)
		if err != nil {
			return nil, err
		}
		result := matching.SkillOnly(student, *listing, transfers)
		candidates = append(candidates, dto.RecommendedStudent{
			Student:       student,
			SkillScore:    result.Composite,
			MatchedSkills: result.MatchedSkills,
			MissingSkills: result.MissingSkills,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return matching.CandidateBefore(candidates[i].SkillScore, candidates[i].Student.ID,
			candidates[j].SkillScore, candidates[j].Student.ID)
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, candidates, 0); err != nil {
			s.logger.Warn("cache candidates", zap.Error(err))
		}
	}
	return candidates, nil
}

// Explain returns the detailed breakdown for one pair. Stale or missing
// rows are recomputed synchronously under the configured timeout; on
// timeout the last cached score is served with the degraded flag set.
func (s *MatchService) Explain(ctx context.Context, studentID, listingID string) (*dto.MatchExplanation, error) {
	stored, err := s.scores.Get(ctx, studentID, listingID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load score")
	}

	if stored != nil && !stored.IsStale {
		return explanationFromScore(stored, nil, false), nil
	}

	version := int64(1)
	if stored != nil {
		version = stored.Version
	}

	computeCtx, cancel := context.WithTimeout(ctx, s.syncTimeout)
	defer cancel()

	score, result, err := s.scoring.ComputePair(computeCtx, studentID, listingID, version)
	if err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) && appErr.Code == appErrors.ErrInvalidReference.Code {
			return nil, err
		}
		// Absorb the failure and serve the stale row when one exists.
		if stored != nil {
			s.logger.Warn("synchronous recompute degraded",
				zap.String("student_id", studentID),
				zap.String("listing_id", listingID),
				zap.Error(err))
			s.enqueuePair(ctx, studentID, listingID, stored.Version)
			return explanationFromScore(stored, nil, true), nil
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, appErrors.Clone(appErrors.ErrComputationTimeout, "")
		}
		return nil, err
	}

	if _, err := s.scores.Upsert(ctx, score); err != nil {
		s.logger.Warn("persist recomputed score", zap.String("student_id", studentID), zap.String("listing_id", listingID), zap.Error(err))
	}
	return explanationFromScore(score, result, false), nil
}

func (s *MatchService) enqueuePair(ctx context.Context, studentID, listingID string, version int64) {
	if s.queue == nil {
		return
	}
	inserted, err := s.queue.Enqueue(ctx, &models.RecomputationEntry{
		StudentID: studentID,
		ListingID: listingID,
		Version:   version,
	})
	if err != nil {
		s.logger.Warn("enqueue recompute", zap.String("student_id", studentID), zap.String("listing_id", listingID), zap.Error(err))
		return
	}
	if inserted && s.nudger != nil {
		s.nudger.Nudge()
	}
}

func buildRecommendation(pair *pairContext, listing models.Listing, score models.MatchScore, result *matching.Result, stale bool) dto.RecommendedListing {
	if result == nil {
		// Stored rows keep only the numbers; rebuild the skill lists from
		// the already-loaded student context.
		overlap := matching.SkillOnly(pair.student, listing, pair.transfers)
		result = &overlap
	}
	return dto.RecommendedListing{
		Listing:        listing,
		CompositeScore: score.CompositeScore,
		Breakdown:      score.Breakdown(),
		MatchedSkills:  result.MatchedSkills,
		MissingSkills:  result.MissingSkills,
		Stale:          stale,
	}
}

func sortRecommendedListings(items []dto.RecommendedListing) {
	sort.SliceStable(items, func(i, j int) bool {
		return matching.ListingBefore(items[i].CompositeScore, items[i].Listing.PublishedAt, items[i].Listing.ID,
			items[j].CompositeScore, items[j].Listing.PublishedAt, items[j].Listing.ID)
	})
}

func explanationFromScore(score *models.MatchScore, result *matching.Result, degraded bool) *dto.MatchExplanation {
	explanation := &dto.MatchExplanation{
		StudentID:      score.StudentID,
		ListingID:      score.ListingID,
		CompositeScore: score.CompositeScore,
		Breakdown:      score.Breakdown(),
		MatchedSkills:  []string{},
		MissingSkills:  []string{},
		ComputedAt:     score.ComputedAt,
		Degraded:       degraded,
	}
	if result != nil {
		explanation.MatchedSkills = result.MatchedSkills
		explanation.MissingSkills = result.MissingSkills
	}
	return explanation
}
