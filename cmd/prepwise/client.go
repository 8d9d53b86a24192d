package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"prepwise/interview/internal/call"
	"prepwise/interview/internal/models"
)

type apiClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

var newAPIClient = func() *apiClient {
	return &apiClient{
		baseURL:    strings.TrimRight(serverURL, "/"),
		token:      apiToken,
		httpClient: &http.Client{Timeout: 90 * time.Second},
	}
}

// serverError is an error answer from the interview service
type serverError struct {
	Status  int
	Message string
	Details json.RawMessage
}

func (e *serverError) Error() string {
	if len(e.Details) > 0 {
		return fmt.Sprintf("server returned %d: %s (%s)", e.Status, e.Message, e.Details)
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

func (c *apiClient) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshalling request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("server not reachable at %s: %w", c.baseURL, err)
	}
	return resp, nil
}

func (c *apiClient) get(ctx context.Context, path string) (*http.Response, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

func (c *apiClient) post(ctx context.Context, path string, body any) (*http.Response, error) {
	return c.do(ctx, http.MethodPost, path, body)
}

func decodeJSON(resp *http.Response, v any) error {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("server returned %d (failed to read body: %w)", resp.StatusCode, err)
	}
	if resp.StatusCode >= 400 {
		return parseServerError(resp.StatusCode, body)
	}
	return json.Unmarshal(body, v)
}

// parseServerError understands both error shapes the service answers with
func parseServerError(status int, body []byte) error {
	var payload struct {
		Error   string          `json:"error"`
		Details json.RawMessage `json:"details"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Error == "" {
		return &serverError{Status: status, Message: strings.TrimSpace(string(body))}
	}
	return &serverError{Status: status, Message: payload.Error, Details: payload.Details}
}

type generateRequest struct {
	Action    models.ActionName `json:"action"`
	Type      string            `json:"type,omitempty"`
	Role      string            `json:"role"`
	Level     string            `json:"level,omitempty"`
	TechStack string            `json:"techstack"`
	Amount    int               `json:"amount"`
	UserID    string            `json:"userid,omitempty"`
}

// GenerateQuestions asks the service for a new interview and returns its id
func (c *apiClient) GenerateQuestions(ctx context.Context, req generateRequest) (string, error) {
	req.Action = models.ActionGenerateQuestions
	resp, err := c.post(ctx, "/api/vapi/generate", req)
	if err != nil {
		return "", err
	}

	var result models.GenerateQuestionsResponse
	if err := decodeJSON(resp, &result); err != nil {
		return "", err
	}
	if !result.Success {
		return "", errors.New("server did not confirm the interview")
	}
	return result.InterviewID, nil
}

// StartCall satisfies call.Starter through the action endpoint
func (c *apiClient) StartCall(ctx context.Context, workflowID string, variables map[string]any) (*call.StartedCall, error) {
	resp, err := c.post(ctx, "/api/vapi", map[string]any{
		"action":         models.ActionStartCall,
		"workflowId":     workflowID,
		"variableValues": variables,
	})
	if err != nil {
		return nil, err
	}

	var started call.StartedCall
	if err := decodeJSON(resp, &started); err != nil {
		return nil, err
	}
	return &started, nil
}

func (c *apiClient) ListInterviews(ctx context.Context, userID string, limit int) (*models.InterviewsResponse, error) {
	query := url.Values{}
	if userID != "" {
		query.Set("userId", userID)
	}
	if limit > 0 {
		query.Set("limit", fmt.Sprint(limit))
	}

	resp, err := c.get(ctx, "/api/interviews?"+query.Encode())
	if err != nil {
		return nil, err
	}

	var result models.InterviewsResponse
	if err := decodeJSON(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

var _ call.Starter = (*apiClient)(nil)
