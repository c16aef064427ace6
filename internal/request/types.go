package request

import "time"

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusQuoted    Status = "quoted"
	StatusAccepted  Status = "accepted"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether the request can no longer change state.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// allowedTransitions is the full request state machine. Cancelled is
// reachable from every non-terminal state.
var allowedTransitions = map[Status][]Status{
	StatusDraft:     {StatusPublished, StatusCancelled},
	StatusPublished: {StatusQuoted, StatusCancelled},
	StatusQuoted:    {StatusQuoted, StatusAccepted, StatusCancelled},
	StatusAccepted:  {StatusCompleted, StatusCancelled},
	StatusCompleted: {},
	StatusCancelled: {},
}

func canTransition(from, to Status) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Leg is one origin-to-destination segment of a request.
type Leg struct {
	From                string    `json:"from"`
	To                  string    `json:"to"`
	Departure           time.Time `json:"departure"`
	Passengers          int       `json:"passengers"`
	Luggage             int       `json:"luggage"`
	SpecialRequirements string    `json:"special_requirements,omitempty"`
}

// Request is a broker's multi-leg charter inquiry. Legs are ordered and
// non-empty; TotalPassengers mirrors the per-leg sum.
type Request struct {
	ID              string    `json:"id"`
	BrokerID        string    `json:"broker_id"`
	Legs            []Leg     `json:"legs"`
	TotalPassengers int       `json:"total_passengers"`
	TotalLuggage    int       `json:"total_luggage"`
	Catering        string    `json:"catering,omitempty"`
	ComplianceNotes string    `json:"compliance_notes,omitempty"`
	Attachments     []string  `json:"attachments,omitempty"`
	Status          Status    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	PublishedAt     time.Time `json:"published_at,omitzero"`
	ExpiresAt       time.Time `json:"expires_at,omitzero"`
	AcceptedQuoteID string    `json:"accepted_quote_id,omitempty"`
}

// NewRequestInput is the broker-supplied part of a draft request.
type NewRequestInput struct {
	BrokerID        string    `json:"broker_id"`
	Legs            []Leg     `json:"legs"`
	Catering        string    `json:"catering"`
	ComplianceNotes string    `json:"compliance_notes"`
	Attachments     []string  `json:"attachments"`
	ExpiresAt       time.Time `json:"expires_at"`
}
