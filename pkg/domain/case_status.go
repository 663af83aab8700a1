package domain

import dErrors "casetrack/pkg/domain-errors"

// CaseStatus is the lifecycle stage of a case.
// Invariant: the value must be one of the four supported stages.
//
// Usage: construct via ParseCaseStatus at trust boundaries; direct casting
// bypasses validation.
type CaseStatus string

const (
	CaseStatusInvestigation CaseStatus = "investigation"
	CaseStatusDCI           CaseStatus = "dci"
	CaseStatusCourt         CaseStatus = "court"
	CaseStatusJudgement     CaseStatus = "judgement"
)

// CaseStatuses lists every stage in workflow order. Dashboard counts iterate it.
var CaseStatuses = []CaseStatus{
	CaseStatusInvestigation,
	CaseStatusDCI,
	CaseStatusCourt,
	CaseStatusJudgement,
}

var caseStatusLabels = map[CaseStatus]string{
	CaseStatusInvestigation: "Investigation",
	CaseStatusDCI:           "DCI",
	CaseStatusCourt:         "Court",
	CaseStatusJudgement:     "Judgement",
}

// ParseCaseStatus constructs a CaseStatus from external input. An empty value
// yields the default stage, investigation.
//
// Errors: returns CodeValidation when the value is not a supported stage.
func ParseCaseStatus(s string) (CaseStatus, error) {
	if s == "" {
		return CaseStatusInvestigation, nil
	}
	st := CaseStatus(s)
	if !st.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "invalid status: "+s)
	}
	return st, nil
}

func (s CaseStatus) IsValid() bool {
	_, ok := caseStatusLabels[s]
	return ok
}

// Label is the human-readable name used in exports.
func (s CaseStatus) Label() string {
	if l, ok := caseStatusLabels[s]; ok {
		return l
	}
	return string(s)
}

func (s CaseStatus) String() string {
	return string(s)
}
