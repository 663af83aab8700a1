package domain

import (
	"github.com/google/uuid"

	dErrors "casetrack/pkg/domain-errors"
)

// Typed identifiers keep a CaseID from being passed where a SubscriptionID is
// expected. All of them are UUIDs on the wire.
type (
	UserID         uuid.UUID
	CaseID         uuid.UUID
	NoteID         uuid.UUID
	SubscriptionID uuid.UUID
	ReportID       uuid.UUID
)

// maxIDLength bounds input before it reaches uuid.Parse.
const maxIDLength = 64

func parseUUID(kind, s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" is required")
	}
	if len(s) > maxIDLength {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	u, err := uuid.Parse(s)
	if err != nil || u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	return u, nil
}

// ParseUserID parses a user id at a trust boundary.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID("user id", s)
	return UserID(u), err
}

// ParseCaseID parses a case id from a URL parameter.
func ParseCaseID(s string) (CaseID, error) {
	u, err := parseUUID("case id", s)
	return CaseID(u), err
}

func ParseNoteID(s string) (NoteID, error) {
	u, err := parseUUID("note id", s)
	return NoteID(u), err
}

// ParseSubscriptionID parses a subscription id submitted by the unsubscribe form.
func ParseSubscriptionID(s string) (SubscriptionID, error) {
	u, err := parseUUID("subscription id", s)
	return SubscriptionID(u), err
}

func ParseReportID(s string) (ReportID, error) {
	u, err := parseUUID("report id", s)
	return ReportID(u), err
}

func NewUserID() UserID                 { return UserID(uuid.New()) }
func NewCaseID() CaseID                 { return CaseID(uuid.New()) }
func NewNoteID() NoteID                 { return NoteID(uuid.New()) }
func NewSubscriptionID() SubscriptionID { return SubscriptionID(uuid.New()) }
func NewReportID() ReportID             { return ReportID(uuid.New()) }

func (id UserID) String() string         { return uuid.UUID(id).String() }
func (id CaseID) String() string         { return uuid.UUID(id).String() }
func (id NoteID) String() string         { return uuid.UUID(id).String() }
func (id SubscriptionID) String() string { return uuid.UUID(id).String() }
func (id ReportID) String() string       { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id CaseID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// MarshalText lets typed IDs serialize as plain UUID strings in JSON.
func (id UserID) MarshalText() ([]byte, error)         { return uuid.UUID(id).MarshalText() }
func (id CaseID) MarshalText() ([]byte, error)         { return uuid.UUID(id).MarshalText() }
func (id NoteID) MarshalText() ([]byte, error)         { return uuid.UUID(id).MarshalText() }
func (id SubscriptionID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id ReportID) MarshalText() ([]byte, error)       { return uuid.UUID(id).MarshalText() }

func (id *UserID) UnmarshalText(b []byte) error         { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *CaseID) UnmarshalText(b []byte) error         { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *NoteID) UnmarshalText(b []byte) error         { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *SubscriptionID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *ReportID) UnmarshalText(b []byte) error       { return (*uuid.UUID)(id).UnmarshalText(b) }
