package store

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrDuplicateIdentity = errors.New("student_id already enrolled")
	ErrNotFound          = errors.New("record not found")
	ErrNoOpenEntry       = errors.New("no open entry for student")
	ErrAlreadyResolved   = errors.New("attempt already resolved")
)

// TempStudentID synthesizes the identifier recorded for an approved
// unauthorized attempt.  It is derived from the attempt id and the
// attempt's original timestamp, so the same attempt always yields the
// same identifier regardless of when the operator clicks the link.
func TempStudentID(attemptID int64, attemptedAt time.Time) string {
	return fmt.Sprintf("TEMP_%d_%s", attemptID, attemptedAt.UTC().Format("20060102"))
}
