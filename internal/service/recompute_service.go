package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/talentbridge/match-api/internal/dto"
	"github.com/talentbridge/match-api/internal/models"
	"github.com/talentbridge/match-api/internal/repository"
	"github.com/talentbridge/match-api/pkg/config"
	appErrors "github.com/talentbridge/match-api/pkg/errors"
)

type staleMarker interface {
	MarkStaleByStudent(ctx context.Context, studentID string) ([]repository.StalePair, error)
	MarkStaleByListing(ctx context.Context, listingID string) ([]repository.StalePair, error)
	Upsert(ctx context.Context, score *models.MatchScore) (bool, error)
}

type queueStore interface {
	Enqueue(ctx context.Context, entry *models.RecomputationEntry) (bool, error)
	ClaimBatch(ctx context.Context, limit int, now time.Time) ([]models.RecomputationEntry, error)
	MarkProcessed(ctx context.Context, id string, processedAt time.Time) error
	Release(ctx context.Context, id string, nextAttempt time.Time, lastErr string) error
	DeadLetter(ctx context.Context, id string, lastErr string) error
	PendingCount(ctx context.Context) (int64, error)
}

type interestedReader interface {
	InterestedStudentIDs(ctx context.Context, listingID string) ([]string, error)
}

// RecomputeService propagates upstream change events into staleness marks
// and queue entries, and drains the queue from the worker pool. Both halves
// share one rule: the version stamped at mark time travels with the entry,
// so a recompute that raced a newer event cannot clobber its result.
type RecomputeService struct {
	scoring *ScoringService
	scores  staleMarker
	queue   queueStore
	history interestedReader
	cache   *CacheService
	metrics *MetricsService
	nudger  Nudger
	logger  *zap.Logger
	cfg     config.EngineConfig
	now     func() time.Time
}

// NewRecomputeService constructs the recompute service.
func NewRecomputeService(scoring *ScoringService, scores staleMarker, queue queueStore, history interestedReader, cache *CacheService, metrics *MetricsService, cfg config.EngineConfig, logger *zap.Logger) *RecomputeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 25
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 30 * time.Second
	}
	return &RecomputeService{
		scoring: scoring,
		scores:  scores,
		queue:   queue,
		history: history,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
		cfg:     cfg,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// SetNudger wires the queue runner after construction. The runner needs the
// service's Drain and the service needs the runner's Nudge, so one side is
// attached late.
func (s *RecomputeService) SetNudger(n Nudger) {
	s.nudger = n
}

// HandleEvent marks affected cached scores stale and enqueues their
// recomputation. When the backlog exceeds the configured threshold the
// staleness marks still land but enqueueing is skipped; readers will serve
// stale values until pressure subsides.
func (s *RecomputeService) HandleEvent(ctx context.Context, event dto.ChangeEvent) (*dto.ChangeEventResult, error) {
	pairs, err := s.markStale(ctx, event)
	if err != nil {
		return nil, err
	}

	result := &dto.ChangeEventResult{StaleMarked: len(pairs)}
	s.invalidateCaches(ctx, event, pairs)

	if len(pairs) == 0 {
		return result, nil
	}

	if s.cfg.BacklogThreshold > 0 {
		pending, err := s.queue.PendingCount(ctx)
		if err != nil {
			s.logger.Warn("backlog check failed", zap.Error(err))
		} else if pending >= s.cfg.BacklogThreshold {
			s.logger.Warn("recomputation backlog over threshold, deferring enqueue",
				zap.String("code", appErrors.ErrQueueOverflow.Code),
				zap.Int64("pending", pending),
				zap.Int64("threshold", s.cfg.BacklogThreshold))
			result.BacklogDeferred = true
			return result, nil
		}
	}

	for _, pair := range pairs {
		inserted, err := s.queue.Enqueue(ctx, &models.RecomputationEntry{
			StudentID: pair.StudentID,
			ListingID: pair.ListingID,
			Version:   pair.Version,
		})
		if err != nil {
			return result, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue recomputation")
		}
		if inserted {
			result.Enqueued++
		}
	}

	if result.Enqueued > 0 && s.nudger != nil {
		s.nudger.Nudge()
	}
	return result, nil
}

// markStale fans the event out to the affected pairs. Listing events also
// cover students who applied but have no cached score yet; those enter the
// queue at version 1.
func (s *RecomputeService) markStale(ctx context.Context, event dto.ChangeEvent) ([]repository.StalePair, error) {
	switch event.Type {
	case dto.EventProfileUpdated, dto.EventOutcomeChanged, dto.EventFeedbackCreated:
		if event.StudentID == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "student_id is required for "+event.Type)
		}
		pairs, err := s.scores.MarkStaleByStudent(ctx, event.StudentID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark scores stale")
		}
		return pairs, nil

	case dto.EventListingUpdated:
		if event.ListingID == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "listing_id is required for "+event.Type)
		}
		pairs, err := s.scores.MarkStaleByListing(ctx, event.ListingID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark scores stale")
		}
		seen := make(map[string]struct{}, len(pairs))
		for _, pair := range pairs {
			seen[pair.StudentID] = struct{}{}
		}
		students, err := s.history.InterestedStudentIDs(ctx, event.ListingID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load interested students")
		}
		for _, studentID := range students {
			if _, ok := seen[studentID]; ok {
				continue
			}
			pairs = append(pairs, repository.StalePair{StudentID: studentID, ListingID: event.ListingID, Version: 1})
		}
		return pairs, nil

	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown event type "+event.Type)
	}
}

func (s *RecomputeService) invalidateCaches(ctx context.Context, event dto.ChangeEvent, pairs []repository.StalePair) {
	if s.cache == nil || !s.cache.Enabled() {
		return
	}
	if event.StudentID != "" {
		if err := s.cache.Invalidate(ctx, "recs:listings:"+event.StudentID+":*"); err != nil {
			s.logger.Warn("invalidate student recommendations", zap.Error(err))
		}
	}
	if event.ListingID != "" {
		if err := s.cache.Invalidate(ctx, "recs:students:"+event.ListingID+":*"); err != nil {
			s.logger.Warn("invalidate listing candidates", zap.Error(err))
		}
	}
	// Student-side events touch many listings; drop the corporate view too.
	if event.ListingID == "" && len(pairs) > 0 {
		if err := s.cache.Invalidate(ctx, "recs:students:*"); err != nil {
			s.logger.Warn("invalidate candidate lists", zap.Error(err))
		}
	}
}

// Drain claims and processes one batch of due queue entries. It returns the
// number handled so the runner can keep draining while work remains.
func (s *RecomputeService) Drain(ctx context.Context) (int, error) {
	now := s.now()
	entries, err := s.queue.ClaimBatch(ctx, s.cfg.BatchSize, now)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		s.publishDepth(ctx)
		return 0, nil
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			// Shutdown mid-batch: release unprocessed claims for the
			// next cycle.
			release := s.now().Add(s.cfg.RetryBackoff)
			if relErr := s.queue.Release(context.Background(), entry.ID, release, "shutdown before processing"); relErr != nil {
				s.logger.Warn("release on shutdown", zap.String("entry_id", entry.ID), zap.Error(relErr))
			}
			continue
		}
		s.processEntry(ctx, entry)
	}

	s.publishDepth(ctx)
	return len(entries), nil
}

// processEntry recomputes one claimed pair. Unknown references dead-letter
// immediately; transient failures release with exponential backoff until the
// attempt ceiling parks them.
func (s *RecomputeService) processEntry(ctx context.Context, entry models.RecomputationEntry) {
	score, _, err := s.scoring.ComputePair(ctx, entry.StudentID, entry.ListingID, entry.Version)
	if err == nil {
		applied, upsertErr := s.scores.Upsert(ctx, score)
		if upsertErr != nil {
			err = upsertErr
		} else if !applied {
			s.logger.Debug("recompute superseded by newer version",
				zap.String("student_id", entry.StudentID),
				zap.String("listing_id", entry.ListingID),
				zap.Int64("version", entry.Version))
		}
	}

	if err == nil {
		if markErr := s.queue.MarkProcessed(ctx, entry.ID, s.now()); markErr != nil {
			s.logQueueUpdate("mark processed", entry.ID, markErr)
		}
		return
	}

	var appErr *appErrors.Error
	if errors.As(err, &appErr) && appErr.Code == appErrors.ErrInvalidReference.Code {
		// The pair no longer resolves; retrying cannot help.
		if dlErr := s.queue.DeadLetter(ctx, entry.ID, err.Error()); dlErr != nil {
			s.logQueueUpdate("dead-letter entry", entry.ID, dlErr)
		}
		return
	}

	if entry.Attempts >= s.cfg.MaxAttempts {
		failure := appErrors.Wrap(err, appErrors.ErrPersistentComputeFailure.Code, appErrors.ErrPersistentComputeFailure.Status, appErrors.ErrPersistentComputeFailure.Message)
		s.logger.Error("recomputation exhausted retries",
			zap.String("student_id", entry.StudentID),
			zap.String("listing_id", entry.ListingID),
			zap.Int("attempts", entry.Attempts),
			zap.Error(failure))
		s.metrics.ObserveComputationFailure()
		if dlErr := s.queue.DeadLetter(ctx, entry.ID, failure.Error()); dlErr != nil {
			s.logQueueUpdate("dead-letter entry", entry.ID, dlErr)
		}
		return
	}

	backoff := s.cfg.RetryBackoff << uint(entry.Attempts-1)
	next := s.now().Add(backoff)
	s.logger.Warn("recomputation failed, scheduling retry",
		zap.String("student_id", entry.StudentID),
		zap.String("listing_id", entry.ListingID),
		zap.Int("attempts", entry.Attempts),
		zap.Duration("backoff", backoff),
		zap.Error(err))
	if relErr := s.queue.Release(ctx, entry.ID, next, err.Error()); relErr != nil {
		s.logQueueUpdate("release entry", entry.ID, relErr)
	}
}

// logQueueUpdate keeps lost claim races quiet: another worker owns the
// entry now and this one simply moves on.
func (s *RecomputeService) logQueueUpdate(msg, entryID string, err error) {
	if errors.Is(err, appErrors.ErrQueueClaimConflict) {
		s.logger.Debug(msg+" skipped, claim lost", zap.String("entry_id", entryID))
		return
	}
	s.logger.Warn(msg, zap.String("entry_id", entryID), zap.Error(err))
}

func (s *RecomputeService) publishDepth(ctx context.Context) {
	if s.metrics == nil {
		return
	}
	pending, err := s.queue.PendingCount(ctx)
	if err != nil {
		return
	}
	s.metrics.SetQueueDepth(pending)
}
