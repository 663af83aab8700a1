package audit

import "time"

// Action names an audited operation.
type Action string

const (
	ActionCaseCreated             Action = "case_created"
	ActionCaseUpdated             Action = "case_updated"
	ActionNoteAdded               Action = "note_added"
	ActionSubscribed              Action = "subscribed"
	ActionSubscriptionAutoCreated Action = "subscription_auto_created"
	ActionUnsubscribed            Action = "unsubscribed"
	ActionReportFiled             Action = "report_filed"
	ActionUserSignedUp            Action = "user_signed_up"
	ActionCasesExported           Action = "cases_exported"
)

// Event is emitted from domain logic to capture key actions. It is
// transport-agnostic so sinks can fan out.
type Event struct {
	Timestamp time.Time         `json:"timestamp"`
	Action    Action            `json:"action"`
	Actor     string            `json:"actor,omitempty"`
	Subject   string            `json:"subject,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
}
