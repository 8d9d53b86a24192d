// Package vapi talks to the voice-call provider's REST API.
package vapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

var ErrMissingPrivateKey = errors.New("vapi private key is missing")

// UpstreamError is a non-2xx answer from the provider, kept verbatim so the
// router can relay it.
type UpstreamError struct {
	StatusCode int
	Body       []byte
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("vapi returned %d: %s", e.StatusCode, strings.TrimSpace(string(e.Body)))
}

// DetailsJSON returns the body as JSON, quoting it when the provider sent
// something that is not JSON.
func (e *UpstreamError) DetailsJSON() json.RawMessage {
	if json.Valid(e.Body) {
		return json.RawMessage(e.Body)
	}
	quoted, _ := json.Marshal(string(e.Body))
	return quoted
}

type Client struct {
	baseURL    string
	privateKey string
	httpClient *http.Client
}

func NewClient(baseURL, privateKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		privateKey: privateKey,
		httpClient: httpClient,
	}
}

// Configured reports whether a server credential is present
func (c *Client) Configured() bool {
	return c != nil && c.privateKey != ""
}

type startWebCallRequest struct {
	WorkflowID     string         `json:"workflowId"`
	VariableValues map[string]any `json:"variableValues"`
}

// StartCallResult is a successful start-call answer
type StartCallResult struct {
	StatusCode int
	Body       json.RawMessage
}

// CallID extracts the provider call id from the response body
func (r *StartCallResult) CallID() string {
	var parsed struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(r.Body, &parsed); err != nil {
		return ""
	}
	return parsed.ID
}

// StartWebCall asks the provider to start a web call for a workflow. The
// provider's JSON body is kept unchanged.
func (c *Client) StartWebCall(ctx context.Context, workflowID string, variables map[string]any) (*StartCallResult, error) {
	if !c.Configured() {
		return nil, ErrMissingPrivateKey
	}

	payload, err := json.Marshal(startWebCallRequest{
		WorkflowID:     workflowID,
		VariableValues: variables,
	})
	if err != nil {
		return nil, fmt.Errorf("marshalling call request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/call/web", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.privateKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling vapi: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading vapi response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: body}
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("vapi returned a non-JSON body with status %d", resp.StatusCode)
	}
	return &StartCallResult{StatusCode: resp.StatusCode, Body: json.RawMessage(body)}, nil
}
