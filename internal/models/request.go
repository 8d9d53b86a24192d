package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
)

const (
	DefaultInterviewType = "mixed"
	MaxQuestionAmount    = 50
)

// Amount accepts both 5 and "5", voice workflows tend to send strings.
type Amount int

func (a *Amount) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(strings.Trim(string(b), `"`))
	if raw == "" || raw == "null" {
		*a = 0
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != math.Trunc(f) {
		return fmt.Errorf("amount must be a whole number, got %s", string(b))
	}
	*a = Amount(f)
	return nil
}

type GenerateQuestionsAction struct {
	Type      string `json:"type"`
	Role      string `json:"role"`
	Level     string `json:"level"`
	TechStack string `json:"techstack"`
	Amount    Amount `json:"amount"`
	UserID    string `json:"userid"`
}

func (*GenerateQuestionsAction) Name() ActionName { return ActionGenerateQuestions }
func (*GenerateQuestionsAction) isAction()        {}

// implements the Validator interface
func (a *GenerateQuestionsAction) Validate() error {
	a.Role = strings.TrimSpace(a.Role)
	a.Level = strings.TrimSpace(a.Level)
	a.Type = strings.TrimSpace(a.Type)
	a.UserID = strings.TrimSpace(a.UserID)

	var details []ValidationErrorDetail
	if a.Role == "" {
		details = append(details, ValidationErrorDetail{Field: "role", Reason: "required"})
	}
	if strings.TrimSpace(a.TechStack) == "" {
		details = append(details, ValidationErrorDetail{Field: "techstack", Reason: "required"})
	}
	if a.Amount <= 0 || a.Amount > MaxQuestionAmount {
		details = append(details, ValidationErrorDetail{
			Field:  "amount",
			Reason: fmt.Sprintf("must be between 1 and %d", MaxQuestionAmount),
		})
	}
	if len(details) > 0 {
		return &RequestError{
			Status:  http.StatusBadRequest,
			Payload: ErrorResponse{Error: "Invalid request payload", Details: details},
		}
	}

	if a.Type == "" {
		a.Type = DefaultInterviewType
	}
	return nil
}

// StartCallAction carries no validation: a missing credential has to win
// over any payload problem, and the provider validates the workflow itself.
type StartCallAction struct {
	WorkflowID     string         `json:"workflowId"`
	VariableValues map[string]any `json:"variableValues"`
}

// UnmarshalJSON never rejects a field. A non-string workflowId is kept as its
// JSON text and variableValues that are not an object are dropped.
func (a *StartCallAction) UnmarshalJSON(b []byte) error {
	var raw struct {
		WorkflowID     json.RawMessage `json:"workflowId"`
		VariableValues json.RawMessage `json:"variableValues"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	a.WorkflowID = lenientString(raw.WorkflowID)
	a.VariableValues = nil
	if len(raw.VariableValues) > 0 {
		var values map[string]any
		if err := json.Unmarshal(raw.VariableValues, &values); err == nil {
			a.VariableValues = values
		}
	}
	return nil
}

func lenientString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func (*StartCallAction) Name() ActionName { return ActionStartCall }
func (*StartCallAction) isAction()        {}

// UserID pulls the caller id out of the template variables, if present.
func (a *StartCallAction) UserID() string {
	for _, key := range []string{"userid", "userId"} {
		if v, ok := a.VariableValues[key].(string); ok {
			return v
		}
	}
	return ""
}
