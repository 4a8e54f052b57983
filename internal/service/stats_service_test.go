package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/talentbridge/match-api/internal/models"
	appErrors "github.com/talentbridge/match-api/pkg/errors"
)

type mockScoreStatsRepo struct {
	stats models.ScoreStats
	err   error
}

func (m *mockScoreStatsRepo) Stats(ctx context.Context) (*models.ScoreStats, error) {
	if m.err != nil {
		return nil, m.err
	}
	stats := m.stats
	return &stats, nil
}

func newStatsFixture() (*mockScoreStatsRepo, *mockQueueStore, *StatsService) {
	scores := &mockScoreStatsRepo{stats: models.ScoreStats{
		TotalScores:  120,
		StaleScores:  4,
		AverageScore: 61.5,
		MinScore:     12,
		MaxScore:     98,
	}}
	queue := &mockQueueStore{queueStats: models.QueueStats{Pending: 7, Processed: 300, DeadLetter: 2}}
	history := &mockHistoryRepo{feedbackStats: models.FeedbackStats{TotalFeedback: 45, AverageRating: 4.1}}
	svc := NewStatsService(scores, queue, history, NewMetricsService(), nil, 0, zap.NewNop())
	return scores, queue, svc
}

func TestEngineStatsAssemblesSections(t *testing.T) {
	_, _, svc := newStatsFixture()

	stats, err := svc.EngineStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(120), stats.Scores.TotalScores)
	assert.Equal(t, int64(7), stats.Queue.Pending)
	assert.Equal(t, int64(2), stats.Queue.DeadLetter)
	assert.Equal(t, int64(45), stats.Feedback.TotalFeedback)
	assert.False(t, stats.GeneratedAt.IsZero())
}

func TestEngineStatsPropagatesRepositoryFailure(t *testing.T) {
	scores, _, svc := newStatsFixture()
	scores.err = assert.AnError

	_, err := svc.EngineStats(context.Background())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}

func TestExportCSV(t *testing.T) {
	_, _, svc := newStatsFixture()

	body, contentType, err := svc.Export(context.Background(), ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)
	assert.Contains(t, string(body), "Metric,Value")
	assert.Contains(t, string(body), "Total Scores,120")
	assert.Contains(t, string(body), "Queue Dead Letter,2")
}

func TestExportPDF(t *testing.T) {
	_, _, svc := newStatsFixture()

	body, contentType, err := svc.Export(context.Background(), ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", contentType)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
}

func TestExportUnknownFormat(t *testing.T) {
	_, _, svc := newStatsFixture()

	_, _, err := svc.Export(context.Background(), ExportFormat("xml"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestQueueEntriesValidatesStatus(t *testing.T) {
	_, queue, svc := newStatsFixture()
	queue.entries = []models.RecomputationEntry{
		{ID: "e1", StudentID: "s1", ListingID: "l1", Status: models.QueueStatusDeadLetter},
		{ID: "e2", StudentID: "s2", ListingID: "l1", Status: models.QueueStatusPending},
	}

	entries, err := svc.QueueEntries(context.Background(), models.QueueStatusDeadLetter, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "e1", entries[0].ID)

	_, err = svc.QueueEntries(context.Background(), models.QueueEntryStatus("BOGUS"), 10)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
