package types

// Wire types for the JSON surface.  Statuses and messages follow the
// original kiosk UI contract: "success" / "warning" / "error".

type EnrollRequest struct {
	StudentID string    `json:"student_id"`
	Name      string    `json:"name"`
	Encoding  []float64 `json:"encoding"`
}

type RenameRequest struct {
	Name string `json:"name"`
}

type PersonSummary struct {
	StudentID string `json:"student_id"`
	Name      string `json:"name"`
}

// PresentRequest carries a probe encoding and, for entry presentations,
// an optional captured still to attach to a security alert.
type PresentRequest struct {
	Encoding []float64 `json:"encoding"`
	ImageB64 string    `json:"image_b64,omitempty"`
}

type PresentResponse struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	StudentID  string `json:"student_id,omitempty"`
	AttemptID  int64  `json:"attempt_id,omitempty"`
	ServerTime string `json:"server_time"`
}

type VerifyResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	TempID  string `json:"temp_id,omitempty"`
}

type StatusResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Timestamp string `json:"timestamp"`
}
