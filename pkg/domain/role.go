package domain

import dErrors "casetrack/pkg/domain-errors"

// Role is the account type carried in bearer tokens.
type Role string

const (
	RoleCitizen Role = "citizen"
	RoleOfficer Role = "officer"
)

// ParseRole validates a role from external input. Empty means citizen.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case "":
		return RoleCitizen, nil
	case RoleCitizen, RoleOfficer:
		return Role(s), nil
	default:
		return "", dErrors.New(dErrors.CodeValidation, "invalid role: "+s)
	}
}

func (r Role) String() string { return string(r) }
