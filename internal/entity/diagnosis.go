package entity

import "time"

// Status is the collapsed lifecycle state of an order.
type Status string

const (
	StatusNotInitiated Status = "not_initiated"
	StatusInProgress   Status = "in_progress"
	StatusCompleted    Status = "completed"
	StatusRefunded     Status = "refunded"
	StatusExpired      Status = "expired"
	StatusUndetermined Status = "undetermined"
)

// Action marks a diagnosis that needs human follow-up.
type Action string

const ActionHumanIntervention Action = "human_intervention_required"

// Diagnosis is the final verdict for a single order.
type Diagnosis struct {
	OrderID        string     `json:"order_id"`
	Status         Status     `json:"status"`
	Summary        string     `json:"summary"`
	ReasonCode     ReasonCode `json:"reason_code,omitempty"`
	Evidence       Evidence   `json:"evidence,omitempty"`
	CompletionTime string     `json:"completion_time,omitempty"`
	Action         Action     `json:"action,omitempty"`
}

// TimingReport is the facts-only deadline/initiation report for an order.
type TimingReport struct {
	OrderID               string     `json:"order_id"`
	CreatedAt             time.Time  `json:"created_at"`
	Deadline              *time.Time `json:"deadline"`
	InitiateTimestamp     *time.Time `json:"initiate_timestamp"`
	MissedDeadline        bool       `json:"missed_deadline"`
	DelayMinutes          *int64     `json:"delay_minutes"`
	Reason                string     `json:"reason"`
	RequiredConfirmations int        `json:"required_confirmations"`
	CurrentConfirmations  int        `json:"current_confirmations"`
}
