package models

// uniform error payload: {"error": "...", "details": ...}
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// single field validation error
type ValidationErrorDetail struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// generic failure returned by the top-level catch
type FailureResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type GenerateQuestionsResponse struct {
	Success     bool   `json:"success"`
	InterviewID string `json:"interviewId,omitempty"`
}

type InterviewsResponse struct {
	Total int         `json:"total"`
	Items []Interview `json:"items"`
}

// RequestError is an error that already knows its HTTP status and payload.
type RequestError struct {
	Status  int
	Payload ErrorResponse
}

func (e *RequestError) Error() string {
	return e.Payload.Error
}

type CallRecordsResponse struct {
	Total int          `json:"total"`
	Items []CallRecord `json:"items"`
}
