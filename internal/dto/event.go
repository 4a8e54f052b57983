package dto

// Change event types accepted by the internal events endpoint.
const (
	EventProfileUpdated  = "profile-updated"
	EventListingUpdated  = "listing-updated"
	EventOutcomeChanged  = "outcome-changed"
	EventFeedbackCreated = "feedback-created"
)

// ChangeEvent notifies the engine that upstream data changed. Profile,
// outcome and feedback events carry a student id; listing events carry a
// listing id.
type ChangeEvent struct {
	Type      string `json:"type" validate:"required,oneof=profile-updated listing-updated outcome-changed feedback-created"`
	StudentID string `json:"student_id,omitempty"`
	ListingID string `json:"listing_id,omitempty"`
}

// ChangeEventResult reports what the staleness propagation did.
type ChangeEventResult struct {
	StaleMarked     int  `json:"stale_marked"`
	Enqueued        int  `json:"enqueued"`
	BacklogDeferred bool `json:"backlog_deferred"`
}
