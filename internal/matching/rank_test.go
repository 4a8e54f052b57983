package matching

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestListingBeforeOrdersByScoreThenRecencyThenID(t *testing.T) {
	older := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(48 * time.Hour)

	assert.True(t, ListingBefore(80, older, "b", 70, newer, "a"))
	assert.True(t, ListingBefore(70, newer, "b", 70, older, "a"))
	assert.True(t, ListingBefore(70, older, "a", 70, older, "b"))
	assert.False(t, ListingBefore(70, older, "b", 70, older, "a"))
}

func TestCandidateBeforeOrdersByScoreThenID(t *testing.T) {
	assert.True(t, CandidateBefore(90, "s2", 60, "s1"))
	assert.True(t, CandidateBefore(60, "s1", 60, "s2"))
	assert.False(t, CandidateBefore(60, "s2", 60, "s1"))
}
