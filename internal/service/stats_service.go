package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/talentbridge/match-api/internal/models"
	appErrors "github.com/talentbridge/match-api/pkg/errors"
	"github.com/talentbridge/match-api/pkg/export"
)

// ExportFormat enumerates the admin statistics export formats.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

const statsCacheKey = "stats:engine"

type scoreStatsReader interface {
	Stats(ctx context.Context) (*models.ScoreStats, error)
}

type queueStatsReader interface {
	Stats(ctx context.Context) (*models.QueueStats, error)
	ListByStatus(ctx context.Context, status models.QueueEntryStatus, limit int) ([]models.RecomputationEntry, error)
}

type feedbackStatsReader interface {
	FeedbackStats(ctx context.Context) (*models.FeedbackStats, error)
}

// StatsService assembles the admin statistics snapshot and its CSV and PDF
// exports.
type StatsService struct {
	scores   scoreStatsReader
	queue    queueStatsReader
	feedback feedbackStatsReader
	metrics  *MetricsService
	cache    *CacheService
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	logger   *zap.Logger
	statsTTL time.Duration
}

// NewStatsService constructs the stats service.
func NewStatsService(scores scoreStatsReader, queue queueStatsReader, feedback feedbackStatsReader, metrics *MetricsService, cache *CacheService, statsTTL time.Duration, logger *zap.Logger) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if statsTTL <= 0 {
		statsTTL = time.Minute
	}
	return &StatsService{
		scores:   scores,
		queue:    queue,
		feedback: feedback,
		metrics:  metrics,
		cache:    cache,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		logger:   logger,
		statsTTL: statsTTL,
	}
}

// EngineStats returns the combined statistics snapshot, cached briefly to
// keep the admin dashboard from hammering the aggregate queries.
func (s *StatsService) EngineStats(ctx context.Context) (*models.EngineStats, error) {
	var cached models.EngineStats
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, statsCacheKey, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	scoreStats, err := s.scores.Stats(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate score stats")
	}
	queueStats, err := s.queue.Stats(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate queue stats")
	}
	feedbackStats, err := s.feedback.FeedbackStats(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate feedback stats")
	}

	stats := &models.EngineStats{
		Scores:      *scoreStats,
		Queue:       *queueStats,
		Feedback:    *feedbackStats,
		System:      s.metrics.Snapshot(),
		GeneratedAt: time.Now().UTC(),
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, statsCacheKey, stats, s.statsTTL); err != nil {
			s.logger.Warn("cache engine stats", zap.Error(err))
		}
	}
	return stats, nil
}

// Export renders the statistics snapshot in the requested format. The
// returned content type matches the body.
func (s *StatsService) Export(ctx context.Context, format ExportFormat) ([]byte, string, error) {
	stats, err := s.EngineStats(ctx)
	if err != nil {
		return nil, "", err
	}

	dataset := statsDataset(stats)
	switch format {
	case ExportFormatCSV:
		body, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return body, "text/csv", nil
	case ExportFormatPDF:
		body, err := s.pdf.Render(dataset, "Matching Engine Statistics")
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return body, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

// QueueEntries lists queue entries in a given state for inspection.
func (s *StatsService) QueueEntries(ctx context.Context, status models.QueueEntryStatus, limit int) ([]models.RecomputationEntry, error) {
	switch status {
	case models.QueueStatusPending, models.QueueStatusProcessing, models.QueueStatusProcessed, models.QueueStatusDeadLetter:
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown queue status %q", status))
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	entries, err := s.queue.ListByStatus(ctx, status, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list queue entries")
	}
	return entries, nil
}

func statsDataset(stats *models.EngineStats) export.Dataset {
	row := func(metric, value string) map[string]string {
		return map[string]string{"Metric": metric, "Value": value}
	}
	return export.Dataset{
		Headers: []string{"Metric", "Value"},
		Rows: []map[string]string{
			row("Total Scores", fmt.Sprintf("%d", stats.Scores.TotalScores)),
			row("Stale Scores", fmt.Sprintf("%d", stats.Scores.StaleScores)),
			row("Average Score", fmt.Sprintf("%.2f", stats.Scores.AverageScore)),
			row("Min Score", fmt.Sprintf("%d", stats.Scores.MinScore)),
			row("Max Score", fmt.Sprintf("%d", stats.Scores.MaxScore)),
			row("Avg Computation Ms", fmt.Sprintf("%.2f", stats.Scores.AvgComputationMs)),
			row("Queue Pending", fmt.Sprintf("%d", stats.Queue.Pending)),
			row("Queue Processing", fmt.Sprintf("%d", stats.Queue.Processing)),
			row("Queue Processed", fmt.Sprintf("%d", stats.Queue.Processed)),
			row("Queue Dead Letter", fmt.Sprintf("%d", stats.Queue.DeadLetter)),
			row("Total Feedback", fmt.Sprintf("%d", stats.Feedback.TotalFeedback)),
			row("Average Rating", fmt.Sprintf("%.2f", stats.Feedback.AverageRating)),
			row("Computations Total", fmt.Sprintf("%d", stats.System.ComputationsTotal)),
			row("Computation Failures", fmt.Sprintf("%d", stats.System.ComputationFailures)),
			row("Cache Hit Ratio", fmt.Sprintf("%.2f", stats.System.CacheHitRatio)),
			row("Generated At", stats.GeneratedAt.Format(time.RFC3339)),
		},
	}
}
