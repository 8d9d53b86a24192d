package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"prepwise/interview/internal/call"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   string
	Auth   string
}

type testServer struct {
	server *httptest.Server

	mu       sync.Mutex
	requests []recordedRequest
	received []string

	// frames played on the /events websocket once the call was started
	frames      []string
	callStarted chan struct{}
	startOnce   sync.Once
}

func newTestServer(t *testing.T, responses map[string]string, frames []string) *testServer {
	t.Helper()
	ts := &testServer{frames: frames, callStarted: make(chan struct{})}
	upgrader := websocket.Upgrader{}

	ts.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/events" {
			ts.serveEvents(t, &upgrader, w, r)
			return
		}

		var body bytes.Buffer
		body.ReadFrom(r.Body)

		ts.mu.Lock()
		ts.requests = append(ts.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.RequestURI(),
			Body:   body.String(),
			Auth:   r.Header.Get("Authorization"),
		})
		ts.mu.Unlock()

		key := r.Method + " " + r.URL.Path
		if resp, ok := responses[key]; ok {
			if r.URL.Path == "/api/vapi" {
				ts.startOnce.Do(func() { close(ts.callStarted) })
			}
			// "<status> <body>" overrides the default 200
			status := http.StatusOK
			if code, rest, found := strings.Cut(resp, " "); found {
				if n, err := strconv.Atoi(code); err == nil {
					status, resp = n, rest
				}
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			w.Write([]byte(resp))
			return
		}

		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"not found"}`))
	}))

	t.Cleanup(ts.server.Close)
	return ts
}

func (ts *testServer) serveEvents(t *testing.T, upgrader *websocket.Upgrader, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		t.Errorf("upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	if len(ts.frames) > 0 {
		select {
		case <-ts.callStarted:
		case <-time.After(5 * time.Second):
			return
		}
	}
	for _, f := range ts.frames {
		time.Sleep(10 * time.Millisecond)
		if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
			return
		}
	}
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		ts.mu.Lock()
		ts.received = append(ts.received, string(data))
		ts.mu.Unlock()
	}
}

func (ts *testServer) client() *apiClient {
	return &apiClient{
		baseURL:    ts.server.URL,
		token:      "test-token",
		httpClient: ts.server.Client(),
	}
}

func (ts *testServer) eventsURL() string {
	return "ws" + strings.TrimPrefix(ts.server.URL, "http") + "/events"
}

var ctx = context.Background()

func TestGenerateQuestions_Client(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"POST /api/vapi/generate": `{"success":true,"interviewId":"665f1c2e9b1e8a0012345678"}`,
	}, nil)

	id, err := ts.client().GenerateQuestions(ctx, generateRequest{
		Role:      "Backend",
		TechStack: "Go,Postgres",
		Amount:    4,
		UserID:    "u1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "665f1c2e9b1e8a0012345678" {
		t.Errorf("id = %q", id)
	}

	r := ts.requests[0]
	if r.Auth != "Bearer test-token" {
		t.Errorf("auth = %q, want Bearer test-token", r.Auth)
	}
	var body map[string]any
	if err := json.Unmarshal([]byte(r.Body), &body); err != nil {
		t.Fatalf("body parse error: %v", err)
	}
	if body["action"] != "generateQuestions" || body["techstack"] != "Go,Postgres" || body["amount"] != float64(4) || body["userid"] != "u1" {
		t.Errorf("unexpected body %v", body)
	}
}

func TestGenerateQuestions_ServerError(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"POST /api/vapi/generate": `400 {"error":"Invalid request payload","details":[{"field":"role","reason":"required"}]}`,
	}, nil)

	_, err := ts.client().GenerateQuestions(ctx, generateRequest{TechStack: "Go"})

	var srvErr *serverError
	if !errors.As(err, &srvErr) {
		t.Fatalf("expected serverError, got %v", err)
	}
	if srvErr.Status != http.StatusBadRequest || srvErr.Message != "Invalid request payload" {
		t.Errorf("unexpected server error %+v", srvErr)
	}
	if !strings.Contains(err.Error(), `"field":"role"`) {
		t.Errorf("expected details in message, got %q", err.Error())
	}
}

func TestStartCall_Client(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"POST /api/vapi": `{"id":"call_1","webCallUrl":"https://example.test/room"}`,
	}, nil)

	started, err := ts.client().StartCall(ctx, "wf_1", map[string]any{"username": "Ada"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if started.ID != "call_1" || started.WebCallURL != "https://example.test/room" {
		t.Errorf("unexpected started call %+v", started)
	}

	var body map[string]any
	json.Unmarshal([]byte(ts.requests[0].Body), &body)
	if body["action"] != "startVapiCall" || body["workflowId"] != "wf_1" {
		t.Errorf("unexpected body %v", body)
	}
}

func TestStartCall_MissingKeyError(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"POST /api/vapi": `500 {"error":"Private key is missing"}`,
	}, nil)

	_, err := ts.client().StartCall(ctx, "wf_1", nil)
	if err == nil || !strings.Contains(err.Error(), "Private key is missing") {
		t.Fatalf("expected missing key error, got %v", err)
	}
}

func TestParseServerError_PlainText(t *testing.T) {
	err := parseServerError(http.StatusBadGateway, []byte("bad gateway\n"))
	if err.Error() != "server returned 502: bad gateway" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestListInterviews_Client(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"GET /api/interviews": `{"total":1,"items":[{"id":"665f1c2e9b1e8a0012345678","role":"Backend","questions":["a","b"],"createdAt":"2025-03-01T04:00:00Z"}]}`,
	}, nil)

	result, err := ts.client().ListInterviews(ctx, "u1", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total != 1 || result.Items[0].ID.Hex() != "665f1c2e9b1e8a0012345678" || len(result.Items[0].Questions) != 2 {
		t.Errorf("unexpected result %+v", result)
	}
	if ts.requests[0].Path != "/api/interviews?limit=5&userId=u1" {
		t.Errorf("unexpected path %s", ts.requests[0].Path)
	}
}

func TestRunCall_FollowsSessionToTheEnd(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"POST /api/vapi": `{"id":"call_1","webCallUrl":"https://example.test/room"}`,
	}, []string{
		`{"type":"call-start"}`,
		`{"type":"speech-start"}`,
		`{"type":"message","message":{"type":"transcript","transcriptType":"final","role":"assistant","transcript":"Hi Ada, ready to begin?"}}`,
		`{"type":"speech-end"}`,
		`{"type":"message","message":{"type":"transcript","transcriptType":"partial","role":"user","transcript":"Ye"}}`,
		`{"type":"message","message":{"type":"transcript","transcriptType":"final","role":"user","transcript":"Yes"}}`,
		`{"type":"call-end"}`,
	})

	var out bytes.Buffer
	runCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	err := runCall(runCtx, &out, ts.client(), callOptions{
		WorkflowID: "wf_1",
		EventsURL:  ts.eventsURL(),
		UserID:     "u1",
		UserName:   "Ada",
	})
	if err != nil {
		t.Fatalf("runCall returned error: %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"[CONNECTING]",
		"Join the call at https://example.test/room",
		"[ACTIVE]",
		"assistant: Hi Ada, ready to begin?",
		"user: Yes",
		"[FINISHED]",
		"Call finished with 2 transcript lines",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "user: Ye\n") {
		t.Errorf("partial transcript printed:\n%s", got)
	}

	var body map[string]any
	json.Unmarshal([]byte(ts.requests[0].Body), &body)
	vars, _ := body["variableValues"].(map[string]any)
	if vars["username"] != "Ada" || vars["userid"] != "u1" {
		t.Errorf("unexpected variable values %v", body["variableValues"])
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()
	if len(ts.received) == 0 || !strings.Contains(ts.received[0], `"end-call"`) {
		t.Errorf("expected end-call frame, got %v", ts.received)
	}
}

func TestRunCall_StartFailure(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"POST /api/vapi": `500 {"error":"Private key is missing"}`,
	}, nil)

	var out bytes.Buffer
	runCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	err := runCall(runCtx, &out, ts.client(), callOptions{WorkflowID: "wf_1", EventsURL: ts.eventsURL()})
	if err == nil || !strings.Contains(err.Error(), "Private key is missing") {
		t.Fatalf("expected start error, got %v", err)
	}
	if !strings.Contains(out.String(), "[FINISHED]") {
		t.Errorf("expected session to finish:\n%s", out.String())
	}
}

func TestRunCall_MissingWorkflow(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	runCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	err := runCall(runCtx, &bytes.Buffer{}, ts.client(), callOptions{EventsURL: ts.eventsURL()})
	if !errors.Is(err, call.ErrMissingWorkflow) {
		t.Fatalf("expected ErrMissingWorkflow, got %v", err)
	}
	if len(ts.requests) != 0 {
		t.Errorf("expected no start request, got %d", len(ts.requests))
	}
}

func TestRunCall_CancelHangsUp(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"POST /api/vapi": `{"id":"call_1"}`,
	}, []string{`{"type":"call-start"}`})

	var out lockedWriter
	out.w = &bytes.Buffer{}
	runCtx, cancel := context.WithCancel(ctx)

	done := make(chan error, 1)
	go func() {
		done <- runCall(runCtx, &out, ts.client(), callOptions{WorkflowID: "wf_1", EventsURL: ts.eventsURL()})
	}()

	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean hang up, got %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("runCall did not return after cancel")
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()
	if len(ts.received) == 0 || !strings.Contains(ts.received[0], `"end-call"`) {
		t.Errorf("expected end-call frame, got %v", ts.received)
	}
}

func TestGenerateCommand_MissingArgs(t *testing.T) {
	defer rootCmd.SetArgs(nil)

	rootCmd.SetArgs([]string{"generate", "--role", "", "--techstack", ""})
	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected error for missing args")
	}
	if !strings.Contains(err.Error(), "required") {
		t.Errorf("error = %q, want it to mention 'required'", err.Error())
	}
}

func TestGenerateCommand_PrintsInterviewID(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"POST /api/vapi/generate": `{"success":true,"interviewId":"abc123"}`,
	}, nil)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	defer rootCmd.SetOut(nil)
	defer rootCmd.SetArgs(nil)

	rootCmd.SetArgs([]string{"generate", "--server", ts.server.URL, "--role", "SRE", "--techstack", "Go", "--amount", "2"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "Interview abc123 created") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestCallCommand_RequiresEvents(t *testing.T) {
	defer rootCmd.SetArgs(nil)

	rootCmd.SetArgs([]string{"call", "--workflow", "wf", "--events", ""})
	if err := rootCmd.Execute(); err == nil || !strings.Contains(err.Error(), "--events") {
		t.Fatalf("expected --events error, got %v", err)
	}
}
