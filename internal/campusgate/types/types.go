package types

// Decision is the terminal verdict a security operator gives on an
// unauthorized entry attempt.
type Decision string

const (
	DecisionAllow Decision = "allow"
	DecisionDeny  Decision = "deny"
)

// ParseDecision maps the path segment of a verification link to a Decision.
func ParseDecision(s string) (Decision, bool) {
	switch Decision(s) {
	case DecisionAllow:
		return DecisionAllow, true
	case DecisionDeny:
		return DecisionDeny, true
	default:
		return "", false
	}
}

// EntryOutcome classifies the result of presenting a probe for entry.
type EntryOutcome string

const (
	EntryAuthorized   EntryOutcome = "authorized"
	EntryUnauthorized EntryOutcome = "unauthorized"
	EntryNoFace       EntryOutcome = "no_face_detected"
)

type EntryResult struct {
	Outcome   EntryOutcome
	StudentID string // set when Outcome == EntryAuthorized
	AttemptID int64  // set when Outcome == EntryUnauthorized
}

// ExitOutcome classifies the result of presenting a probe for exit.
type ExitOutcome string

const (
	Exited      ExitOutcome = "exited"
	NotPresent  ExitOutcome = "not_present"
	ExitNoFace  ExitOutcome = "no_face_detected"
)

type ExitResult struct {
	Outcome   ExitOutcome
	StudentID string // set when Outcome == Exited
}
