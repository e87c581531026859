package domain

// SubjectType distinguishes citizen accounts from staff accounts in
// issued tokens and audit trails.
type SubjectType string

const (
	SubjectTypeCitizen SubjectType = "citizen"
	SubjectTypeStaff   SubjectType = "staff"
)
