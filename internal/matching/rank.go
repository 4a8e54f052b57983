package matching

import "time"

// ListingBefore is the list-view ordering: composite descending, newer
// publish timestamp first, listing id ascending. Total, so equal inputs
// rank identically on every run.
func ListingBefore(scoreA int, publishedA time.Time, idA string, scoreB int, publishedB time.Time, idB string) bool {
	if scoreA != scoreB {
		return scoreA > scoreB
	}
	if !publishedA.Equal(publishedB) {
		return publishedA.After(publishedB)
	}
	return idA < idB
}

// CandidateBefore is the corporate-view ordering: skill score descending,
// student id ascending.
func CandidateBefore(scoreA int, idA string, scoreB int, idB string) bool {
	if scoreA != scoreB {
		return scoreA > scoreB
	}
	return idA < idB
}
