package api

// Validation statuses reported by the backend, plus the client-only
// transient state used while a section validation is in flight.
const (
	StatusSuccess   = "success"
	StatusObjection = "objection"
	StatusPending   = "pending"
)

// Submission sources accepted by POST /sessions/{id}/forms.
const (
	SourceRaw       = "raw"
	SourceCorrected = "corrected"
)

// CreateSessionBody is the request for POST /sessions.
type CreateSessionBody struct {
	FormType string         `json:"form_type"`
	CaseRef  *string        `json:"case_ref,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// SessionResponse is returned by session create and refresh.
type SessionResponse struct {
	SessionID    string `json:"session_id"`
	SessionToken string `json:"session_token"`
	ExpiresAt    string `json:"expires_at"`
	Status       string `json:"status"`
	FormType     string `json:"form_type"`
}

// CloseResponse is returned by POST /sessions/{id}/close.
type CloseResponse struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
}

// ValidateBody is the request for POST /sessions/{id}/validate.
type ValidateBody struct {
	Payload          any      `json:"payload"`
	FieldsToValidate []string `json:"fields_to_validate,omitempty"`
}

// ValidationResult is a single backend verdict on one field path.
type ValidationResult struct {
	FieldPath     string `json:"field_path"`
	Status        string `json:"status"`
	Justification string `json:"justification"`
}

// ValidateResponse carries all per-field verdicts of one validate call.
type ValidateResponse struct {
	Version int64              `json:"version"`
	Results []ValidationResult `json:"results"`
	Summary map[string]int     `json:"summary"`
}

// SubmitBody is the request for POST /sessions/{id}/forms.
type SubmitBody struct {
	Payload any     `json:"payload"`
	Source  string  `json:"source,omitempty"`
	Comment *string `json:"comment,omitempty"`
}

// SubmitResponse acknowledges a stored form version.
type SubmitResponse struct {
	Version   int64  `json:"version"`
	CreatedAt string `json:"created_at"`
}

// VersionSummary is one row of the session history listing.
type VersionSummary struct {
	Version   int64   `json:"version"`
	Source    string  `json:"source"`
	CreatedAt string  `json:"created_at"`
	Comment   *string `json:"comment"`
}

// HistoryResponse is returned by GET /sessions/{id}/history.
type HistoryResponse struct {
	SessionID     string           `json:"session_id"`
	TotalVersions int              `json:"total_versions"`
	Versions      []VersionSummary `json:"versions"`
}

// SnapshotResponse is one stored version with its payload and verdicts.
type SnapshotResponse struct {
	Version     int64              `json:"version"`
	Source      string             `json:"source"`
	Payload     map[string]any     `json:"payload"`
	Validations []ValidationResult `json:"validations"`
	CreatedAt   string             `json:"created_at"`
}
