package service

import (
	"context"
	"database/sql"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/talentbridge/match-api/internal/models"
	"github.com/talentbridge/match-api/internal/repository"
	appErrors "github.com/talentbridge/match-api/pkg/errors"
)

type mockSnapshotRepo struct {
	students map[string]models.StudentProfile
	listings map[string]models.Listing
	tenants  map[string]models.Tenant
	err      error
}

func (m *mockSnapshotRepo) GetStudent(ctx context.Context, studentID string) (*models.StudentProfile, error) {
	if m.err != nil {
		return nil, m.err
	}
	if s, ok := m.students[studentID]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSnapshotRepo) GetListing(ctx context.Context, listingID string) (*models.Listing, error) {
	if m.err != nil {
		return nil, m.err
	}
	if l, ok := m.listings[listingID]; ok {
		return &l, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSnapshotRepo) GetTenant(ctx context.Context, tenantID string) (*models.Tenant, error) {
	if t, ok := m.tenants[tenantID]; ok {
		return &t, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSnapshotRepo) ListPublishedListings(ctx context.Context, tenantID string) ([]models.Listing, error) {
	if m.err != nil {
		return nil, m.err
	}
	ids := make([]string, 0, len(m.listings))
	for id := range m.listings {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	listings := make([]models.Listing, 0, len(ids))
	for _, id := range ids {
		l := m.listings[id]
		if l.TenantID == tenantID && l.Status == models.ListingStatusPublished {
			listings = append(listings, l)
		}
	}
	return listings, nil
}

func (m *mockSnapshotRepo) ListActiveStudents(ctx context.Context, tenantID string) ([]models.StudentProfile, error) {
	if m.err != nil {
		return nil, m.err
	}
	ids := make([]string, 0, len(m.students))
	for id := range m.students {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	students := make([]models.StudentProfile, 0, len(ids))
	for _, id := range ids {
		s := m.students[id]
		if s.TenantID == tenantID && s.Active {
			students = append(students, s)
		}
	}
	return students, nil
}

type mockHistoryRepo struct {
	outcomes        map[string][]models.ApplicationOutcome
	feedback        map[string][]models.MatchFeedback
	appliedListings map[string]map[string]struct{}
	appliedStudents map[string]map[string]struct{}
	interested      map[string][]string
	feedbackStats   models.FeedbackStats
	err             error
}

func (m *mockHistoryRepo) OutcomesByStudent(ctx context.Context, studentID string) ([]models.ApplicationOutcome, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.outcomes[studentID], nil
}

func (m *mockHistoryRepo) FeedbackByStudent(ctx context.Context, studentID string) ([]models.MatchFeedback, error) {
	return m.feedback[studentID], nil
}

func (m *mockHistoryRepo) AppliedListingIDs(ctx context.Context, studentID string) (map[string]struct{}, error) {
	if set, ok := m.appliedListings[studentID]; ok {
		return set, nil
	}
	return map[string]struct{}{}, nil
}

func (m *mockHistoryRepo) AppliedStudentIDs(ctx context.Context, listingID string) (map[string]struct{}, error) {
	if set, ok := m.appliedStudents[listingID]; ok {
		return set, nil
	}
	return map[string]struct{}{}, nil
}

func (m *mockHistoryRepo) InterestedStudentIDs(ctx context.Context, listingID string) ([]string, error) {
	return m.interested[listingID], nil
}

func (m *mockHistoryRepo) FeedbackStats(ctx context.Context) (*models.FeedbackStats, error) {
	stats := m.feedbackStats
	return &stats, nil
}

type mockMappingRepo struct {
	rows []models.SkillMapping
}

func (m *mockMappingRepo) ListBySport(ctx context.Context, sport string) ([]models.SkillMapping, error) {
	return m.rows, nil
}

type mockScoreStore struct {
	scores  map[string]models.MatchScore
	upserts []models.MatchScore
}

func scoreKey(studentID, listingID string) string {
	return studentID + "|" + listingID
}

func (m *mockScoreStore) Get(ctx context.Context, studentID, listingID string) (*models.MatchScore, error) {
	if s, ok := m.scores[scoreKey(studentID, listingID)]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockScoreStore) ListByStudent(ctx context.Context, studentID string) ([]models.MatchScore, error) {
	scores := []models.MatchScore{}
	for _, s := range m.scores {
		if s.StudentID == studentID {
			scores = append(scores, s)
		}
	}
	return scores, nil
}

func (m *mockScoreStore) Upsert(ctx context.Context, score *models.MatchScore) (bool, error) {
	if m.scores == nil {
		m.scores = make(map[string]models.MatchScore)
	}
	key := scoreKey(score.StudentID, score.ListingID)
	if existing, ok := m.scores[key]; ok && existing.Version > score.Version {
		return false, nil
	}
	m.scores[key] = *score
	m.upserts = append(m.upserts, *score)
	return true, nil
}

func (m *mockScoreStore) MarkStaleByStudent(ctx context.Context, studentID string) ([]repository.StalePair, error) {
	pairs := []repository.StalePair{}
	for key, s := range m.scores {
		if s.StudentID != studentID {
			continue
		}
		s.IsStale = true
		s.Version++
		m.scores[key] = s
		pairs = append(pairs, repository.StalePair{StudentID: s.StudentID, ListingID: s.ListingID, Version: s.Version})
	}
	return pairs, nil
}

func (m *mockScoreStore) MarkStaleByListing(ctx context.Context, listingID string) ([]repository.StalePair, error) {
	pairs := []repository.StalePair{}
	for key, s := range m.scores {
		if s.ListingID != listingID {
			continue
		}
		s.IsStale = true
		s.Version++
		m.scores[key] = s
		pairs = append(pairs, repository.StalePair{StudentID: s.StudentID, ListingID: s.ListingID, Version: s.Version})
	}
	return pairs, nil
}

type mockQueueStore struct {
	entries      []models.RecomputationEntry
	queueStats   models.QueueStats
	enqueueErr   error
	claimErr     error
	pendingCount int64
	usePending   bool
}

func (m *mockQueueStore) Enqueue(ctx context.Context, entry *models.RecomputationEntry) (bool, error) {
	if m.enqueueErr != nil {
		return false, m.enqueueErr
	}
	for _, e := range m.entries {
		if e.StudentID == entry.StudentID && e.ListingID == entry.ListingID && e.Status == models.QueueStatusPending {
			return false, nil
		}
	}
	if entry.ID == "" {
		entry.ID = scoreKey(entry.StudentID, entry.ListingID)
	}
	entry.Status = models.QueueStatusPending
	m.entries = append(m.entries, *entry)
	return true, nil
}

func (m *mockQueueStore) ClaimBatch(ctx context.Context, limit int, now time.Time) ([]models.RecomputationEntry, error) {
	if m.claimErr != nil {
		return nil, m.claimErr
	}
	claimed := []models.RecomputationEntry{}
	for i := range m.entries {
		if len(claimed) >= limit {
			break
		}
		if m.entries[i].Status != models.QueueStatusPending || m.entries[i].NextAttempt.After(now) {
			continue
		}
		m.entries[i].Status = models.QueueStatusProcessing
		m.entries[i].Attempts++
		claimed = append(claimed, m.entries[i])
	}
	return claimed, nil
}

func (m *mockQueueStore) MarkProcessed(ctx context.Context, id string, processedAt time.Time) error {
	for i := range m.entries {
		if m.entries[i].ID == id {
			m.entries[i].Status = models.QueueStatusProcessed
			m.entries[i].ProcessedAt = &processedAt
		}
	}
	return nil
}

func (m *mockQueueStore) Release(ctx context.Context, id string, nextAttempt time.Time, lastErr string) error {
	for i := range m.entries {
		if m.entries[i].ID == id {
			m.entries[i].Status = models.QueueStatusPending
			m.entries[i].NextAttempt = nextAttempt
			m.entries[i].LastError = &lastErr
		}
	}
	return nil
}

func (m *mockQueueStore) DeadLetter(ctx context.Context, id string, lastErr string) error {
	for i := range m.entries {
		if m.entries[i].ID == id {
			m.entries[i].Status = models.QueueStatusDeadLetter
			m.entries[i].LastError = &lastErr
		}
	}
	return nil
}

func (m *mockQueueStore) PendingCount(ctx context.Context) (int64, error) {
	if m.usePending {
		return m.pendingCount, nil
	}
	var count int64
	for _, e := range m.entries {
		if e.Status == models.QueueStatusPending {
			count++
		}
	}
	return count, nil
}

func (m *mockQueueStore) Stats(ctx context.Context) (*models.QueueStats, error) {
	stats := m.queueStats
	return &stats, nil
}

func (m *mockQueueStore) ListByStatus(ctx context.Context, status models.QueueEntryStatus, limit int) ([]models.RecomputationEntry, error) {
	entries := []models.RecomputationEntry{}
	for _, e := range m.entries {
		if e.Status == status && len(entries) < limit {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

type mockNudger struct {
	nudges int
}

func (m *mockNudger) Nudge() {
	m.nudges++
}

func newMatchFixture() (*mockSnapshotRepo, *mockHistoryRepo, *mockScoreStore, *mockQueueStore, *MatchService) {
	now := time.Now().UTC()
	snapshots := &mockSnapshotRepo{
		students: map[string]models.StudentProfile{
			"s1": {ID: "s1", TenantID: "t1", FullName: "Dana Wu", Skills: []string{"python", "sql"}, HoursPerWeek: 10, Active: true},
			"s2": {ID: "s2", TenantID: "t1", FullName: "Ira Chen", Skills: []string{"writing"}, HoursPerWeek: 10, Active: true},
		},
		listings: map[string]models.Listing{
			"l1": {ID: "l1", TenantID: "t1", Title: "Data Analyst", RequiredSkills: []string{"python", "sql"}, Category: "data", HoursPerWeek: 10, Status: models.ListingStatusPublished, PublishedAt: now.Add(-72 * time.Hour)},
			"l2": {ID: "l2", TenantID: "t1", Title: "Copywriter", RequiredSkills: []string{"copywriting"}, Category: "marketing", HoursPerWeek: 10, Status: models.ListingStatusPublished, PublishedAt: now.Add(-72 * time.Hour)},
		},
		tenants: map[string]models.Tenant{
			"t1": {ID: "t1", Name: "Campus", MarketplaceType: models.MarketplaceStandard},
		},
	}
	history := &mockHistoryRepo{}
	scores := &mockScoreStore{scores: map[string]models.MatchScore{}}
	queue := &mockQueueStore{}
	scoring := NewScoringService(snapshots, history, &mockMappingRepo{}, nil, zap.NewNop())
	svc := NewMatchService(scoring, scores, queue, snapshots, history, nil, &mockNudger{}, time.Second, zap.NewNop())
	return snapshots, history, scores, queue, svc
}

func TestRecommendedListingsComputesAndRanks(t *testing.T) {
	_, _, scores, _, svc := newMatchFixture()

	recs, degraded, err := svc.RecommendedListings(context.Background(), "s1", 10)
	require.NoError(t, err)
	assert.False(t, degraded)
	require.Len(t, recs, 2)

	// Full skill overlap beats no overlap.
	assert.Equal(t, "l1", recs[0].Listing.ID)
	assert.Equal(t, "l2", recs[1].Listing.ID)
	assert.Greater(t, recs[0].CompositeScore, recs[1].CompositeScore)
	assert.Equal(t, []string{"python", "sql"}, recs[0].MatchedSkills)

	// Inline computes were persisted.
	assert.Len(t, scores.upserts, 2)
}

func TestRecommendedListingsExcludesApplied(t *testing.T) {
	_, history, _, _, svc := newMatchFixture()
	history.appliedListings = map[string]map[string]struct{}{
		"s1": {"l1": {}},
	}

	recs, _, err := svc.RecommendedListings(context.Background(), "s1", 10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "l2", recs[0].Listing.ID)
}

func TestRecommendedListingsServesStaleAndEnqueues(t *testing.T) {
	_, _, scores, queue, svc := newMatchFixture()
	scores.scores[scoreKey("s1", "l1")] = models.MatchScore{
		StudentID: "s1", ListingID: "l1", CompositeScore: 55, IsStale: true, Version: 3,
		ComputedAt: time.Now().UTC().Add(-time.Hour),
	}

	recs, degraded, err := svc.RecommendedListings(context.Background(), "s1", 10)
	require.NoError(t, err)
	assert.True(t, degraded)

	var stale *models.MatchScore
	for _, rec := range recs {
		if rec.Listing.ID == "l1" {
			require.True(t, rec.Stale)
			assert.Equal(t, 55, rec.CompositeScore)
			s := scores.scores[scoreKey("s1", "l1")]
			stale = &s
		}
	}
	require.NotNil(t, stale)

	require.Len(t, queue.entries, 1)
	assert.Equal(t, "s1", queue.entries[0].StudentID)
	assert.Equal(t, "l1", queue.entries[0].ListingID)
	assert.Equal(t, int64(3), queue.entries[0].Version)
}

func TestRecommendedListingsUnknownStudent(t *testing.T) {
	_, _, _, _, svc := newMatchFixture()

	_, _, err := svc.RecommendedListings(context.Background(), "ghost", 10)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidReference.Code, appErr.Code)
}

func TestRecommendedStudentsRanksBySkill(t *testing.T) {
	_, _, _, _, svc := newMatchFixture()

	candidates, err := svc.RecommendedStudents(context.Background(), "l1", 10)
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	assert.Equal(t, "s1", candidates[0].Student.ID)
	assert.Equal(t, 100, candidates[0].SkillScore)
	assert.Equal(t, "s2", candidates[1].Student.ID)
	assert.Equal(t, 0, candidates[1].SkillScore)
}

func TestRecommendedStudentsExcludesApplicants(t *testing.T) {
	_, history, _, _, svc := newMatchFixture()
	history.appliedStudents = map[string]map[string]struct{}{
		"l1": {"s1": {}},
	}

	candidates, err := svc.RecommendedStudents(context.Background(), "l1", 10)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "s2", candidates[0].Student.ID)
}

func TestExplainFreshRowSkipsRecompute(t *testing.T) {
	_, _, scores, _, svc := newMatchFixture()
	computedAt := time.Now().UTC().Add(-10 * time.Minute)
	scores.scores[scoreKey("s1", "l1")] = models.MatchScore{
		StudentID: "s1", ListingID: "l1", CompositeScore: 72, Version: 2, ComputedAt: computedAt,
	}

	explanation, err := svc.Explain(context.Background(), "s1", "l1")
	require.NoError(t, err)
	assert.Equal(t, 72, explanation.CompositeScore)
	assert.False(t, explanation.Degraded)
	assert.True(t, explanation.ComputedAt.Equal(computedAt))
	assert.Empty(t, scores.upserts)
}

func TestExplainStaleRowRecomputes(t *testing.T) {
	_, _, scores, _, svc := newMatchFixture()
	scores.scores[scoreKey("s1", "l1")] = models.MatchScore{
		StudentID: "s1", ListingID: "l1", CompositeScore: 10, IsStale: true, Version: 4,
	}

	explanation, err := svc.Explain(context.Background(), "s1", "l1")
	require.NoError(t, err)
	assert.False(t, explanation.Degraded)
	// s1 fully covers l1's requirements, so the recompute lands well above
	// the stale 10.
	assert.Greater(t, explanation.CompositeScore, 10)
	assert.Equal(t, []string{"python", "sql"}, explanation.MatchedSkills)

	require.Len(t, scores.upserts, 1)
	assert.Equal(t, int64(4), scores.upserts[0].Version)
	assert.False(t, scores.upserts[0].IsStale)
}

func TestExplainDegradesToStaleOnFailure(t *testing.T) {
	snapshots, _, scores, queue, svc := newMatchFixture()
	stale := models.MatchScore{
		StudentID: "s1", ListingID: "l1", CompositeScore: 61, IsStale: true, Version: 5,
		ComputedAt: time.Now().UTC().Add(-time.Hour),
	}
	scores.scores[scoreKey("s1", "l1")] = stale
	snapshots.err = context.DeadlineExceeded

	explanation, err := svc.Explain(context.Background(), "s1", "l1")
	require.NoError(t, err)
	assert.True(t, explanation.Degraded)
	assert.Equal(t, 61, explanation.CompositeScore)

	require.Len(t, queue.entries, 1)
	assert.Equal(t, int64(5), queue.entries[0].Version)
}

func TestExplainUnknownPair(t *testing.T) {
	_, _, _, _, svc := newMatchFixture()

	_, err := svc.Explain(context.Background(), "s1", "ghost")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidReference.Code, appErr.Code)
}
