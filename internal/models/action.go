package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

type ActionName string

const (
	ActionGenerateQuestions ActionName = "generateQuestions"
	ActionStartCall         ActionName = "startVapiCall"
)

var (
	ErrInvalidJSON   = &RequestError{Status: http.StatusBadRequest, Payload: ErrorResponse{Error: "Invalid JSON in request body"}}
	ErrInvalidAction = &RequestError{Status: http.StatusBadRequest, Payload: ErrorResponse{Error: "Invalid action specified"}}
)

// Action is the closed set of operations the router accepts. Only the types
// in this package implement it.
type Action interface {
	Name() ActionName
	isAction()
}

// DecodeAction reads the action discriminator and decodes the rest of the
// body into the matching variant. Any well-formed JSON whose action is not one
// of the known names, including a non-string or a non-object body, is an
// invalid action.
func DecodeAction(body []byte) (Action, error) {
	if !json.Valid(body) {
		return nil, ErrInvalidJSON
	}

	name := actionName(body)

	var action Action
	switch name {
	case ActionGenerateQuestions:
		action = &GenerateQuestionsAction{}
	case ActionStartCall:
		action = &StartCallAction{}
	default:
		return nil, ErrInvalidAction
	}

	if err := json.Unmarshal(body, action); err != nil {
		return nil, &RequestError{
			Status: http.StatusBadRequest,
			Payload: ErrorResponse{
				Error:   "Invalid request payload",
				Details: fmt.Sprintf("%s: %v", name, unwrapJSONError(err)),
			},
		}
	}
	return action, nil
}

// actionName returns "" when the body is not an object or action is not a string
func actionName(body []byte) ActionName {
	var envelope struct {
		Action json.RawMessage `json:"action"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	var name string
	if err := json.Unmarshal(envelope.Action, &name); err != nil {
		return ""
	}
	return ActionName(name)
}

func unwrapJSONError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Errorf("field %s must be %s", typeErr.Field, typeErr.Type)
	}
	return err
}
