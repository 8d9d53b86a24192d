package handlers

import (
	"context"
	"sync"
	"text/template"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"prepwise/interview/internal/events"
	"prepwise/interview/internal/models"
	"prepwise/interview/internal/vapi"
)

type mockProvider struct {
	generateContentFn func(ctx context.Context, prompt string, requestID string) (*models.GenerationResponse, error)
	getProviderNameFn func() string
}

func (m *mockProvider) GenerateContent(ctx context.Context, prompt string, requestID string) (*models.GenerationResponse, error) {
	if m.generateContentFn == nil {
		return &models.GenerationResponse{Content: `["Q1"]`}, nil
	}
	return m.generateContentFn(ctx, prompt, requestID)
}

func (m *mockProvider) GetProviderName() string {
	if m.getProviderNameFn == nil {
		return "mock"
	}
	return m.getProviderNameFn()
}

type mockPromptManager struct {
	buildPromptFn  func(mode, variant string, data interface{}) (string, error)
	getTemplatesFn func() map[string]map[string]*template.Template
}

func (m *mockPromptManager) BuildPrompt(mode, variant string, data interface{}) (string, error) {
	if m.buildPromptFn == nil {
		return "mock prompt", nil
	}
	return m.buildPromptFn(mode, variant, data)
}

func (m *mockPromptManager) GetTemplates() map[string]map[string]*template.Template {
	if m.getTemplatesFn == nil {
		return map[string]map[string]*template.Template{
			"questions": {
				"default": template.Must(template.New("test").Parse("test")),
			},
		}
	}
	return m.getTemplatesFn()
}

// mockInterviewStore keeps interviews in memory
type mockInterviewStore struct {
	mu        sync.Mutex
	created   []models.Interview
	byID      map[string]models.Interview
	createErr error
	listErr   error
	pingErr   error
}

func (m *mockInterviewStore) Create(_ context.Context, in *models.Interview) (*models.Interview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	in.ID = primitive.NewObjectID()
	m.created = append(m.created, *in)
	if m.byID == nil {
		m.byID = map[string]models.Interview{}
	}
	m.byID[in.ID.Hex()] = *in
	return in, nil
}

func (m *mockInterviewStore) GetByID(_ context.Context, id string) (*models.Interview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	in, ok := m.byID[id]
	if !ok {
		return nil, models.ErrInterviewNotFound
	}
	return &in, nil
}

func (m *mockInterviewStore) ListByUser(_ context.Context, userID string, limit int64) ([]models.Interview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []models.Interview
	for _, in := range m.created {
		if in.UserID == userID && int64(len(out)) < limit {
			out = append(out, in)
		}
	}
	return out, nil
}

func (m *mockInterviewStore) Ping(context.Context) error {
	return m.pingErr
}

type mockCallStarter struct {
	startFn func(ctx context.Context, workflowID string, variables map[string]any) (*vapi.StartCallResult, error)
	calls   int
}

func (m *mockCallStarter) StartWebCall(ctx context.Context, workflowID string, variables map[string]any) (*vapi.StartCallResult, error) {
	m.calls++
	if m.startFn == nil {
		return &vapi.StartCallResult{StatusCode: 201, Body: []byte(`{"id":"call_1"}`)}, nil
	}
	return m.startFn(ctx, workflowID, variables)
}

type mockRecorder struct {
	records []models.CallRecord
	err     error
}

func (m *mockRecorder) Create(_ context.Context, record *models.CallRecord) error {
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, *record)
	return nil
}

type mockPublisher struct {
	events []events.InterviewCreatedEvent
	err    error
}

func (m *mockPublisher) PublishInterviewCreated(_ context.Context, event events.InterviewCreatedEvent) error {
	m.events = append(m.events, event)
	return m.err
}
