package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"prepwise/interview/internal/events"
	"prepwise/interview/internal/llm"
	"prepwise/interview/internal/metrics"
	"prepwise/interview/internal/models"
	"prepwise/interview/internal/prompts"
	"prepwise/interview/internal/questions"
	"prepwise/interview/internal/utils"
	"prepwise/interview/internal/vapi"
)

const (
	maxActionBodyBytes = 1 << 20

	questionsPromptMode    = "questions"
	DefaultQuestionVariant = "default"
)

var errStoreNotConfigured = errors.New("interview store is not configured")

type InterviewStore interface {
	Create(ctx context.Context, interview *models.Interview) (*models.Interview, error)
}

type CallStarter interface {
	StartWebCall(ctx context.Context, workflowID string, variables map[string]any) (*vapi.StartCallResult, error)
}

type CallRecorder interface {
	Create(ctx context.Context, record *models.CallRecord) error
}

// ActionHandler serves the single action endpoint used by the web client and
// by the voice workflow.
type ActionHandler struct {
	provider      llm.Provider
	promptManager prompts.PromptProvider
	promptVariant string
	store         InterviewStore
	calls         CallStarter
	recorder      CallRecorder
	publisher     events.Publisher
	pickCover     questions.CoverPicker
	now           func() time.Time
	logger        *zap.Logger
}

func NewActionHandler(provider llm.Provider, promptManager prompts.PromptProvider, store InterviewStore, calls CallStarter, logger *zap.Logger) *ActionHandler {
	return &ActionHandler{
		provider:      provider,
		promptManager: promptManager,
		promptVariant: DefaultQuestionVariant,
		store:         store,
		calls:         calls,
		publisher:     events.NopPublisher{},
		pickCover:     questions.RandomCover,
		now:           time.Now,
		logger:        logger,
	}
}

// SetCallRecorder enables the call audit log
func (h *ActionHandler) SetCallRecorder(recorder CallRecorder) {
	h.recorder = recorder
}

// SetPromptVariant selects the questions prompt variant, "" keeps the default
func (h *ActionHandler) SetPromptVariant(variant string) {
	if variant == "" {
		variant = DefaultQuestionVariant
	}
	h.promptVariant = variant
}

func (h *ActionHandler) SetPublisher(publisher events.Publisher) {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	h.publisher = publisher
}

func (h *ActionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := ensureRequestID(middleware.GetReqID(r.Context()))

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxActionBodyBytes))
	if err != nil {
		h.writeError(w, models.ErrInvalidJSON, requestID)
		return
	}

	action, err := models.DecodeAction(body)
	if err != nil {
		h.writeError(w, err, requestID)
		return
	}

	if err := h.dispatch(w, r.Context(), action, requestID); err != nil {
		h.writeError(w, err, requestID)
	}
}

// dispatch is the single catch point: returned errors and panics both end up
// in writeError.
func (h *ActionHandler) dispatch(w http.ResponseWriter, ctx context.Context, action models.Action, requestID string) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%v", rec)
		}
	}()

	switch a := action.(type) {
	case *models.GenerateQuestionsAction:
		return h.generateQuestions(w, ctx, a, requestID)
	case *models.StartCallAction:
		return h.startCall(w, ctx, a, requestID)
	default:
		return fmt.Errorf("unhandled action %s", action.Name())
	}
}

type questionPromptData struct {
	Role      string
	Level     string
	TechStack string
	Type      string
	Amount    int
}

func (h *ActionHandler) generateQuestions(w http.ResponseWriter, ctx context.Context, req *models.GenerateQuestionsAction, requestID string) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if h.store == nil {
		metrics.RecordQuestionGeneration(metrics.OutcomeStoreError)
		return errStoreNotConfigured
	}

	prompt, err := h.promptManager.BuildPrompt(questionsPromptMode, h.promptVariant, questionPromptData{
		Role:      req.Role,
		Level:     req.Level,
		TechStack: req.TechStack,
		Type:      req.Type,
		Amount:    int(req.Amount),
	})
	if err != nil {
		return fmt.Errorf("failed to build prompt: %w", err)
	}

	generated, err := h.provider.GenerateContent(ctx, prompt, requestID)
	if err != nil {
		metrics.RecordQuestionGeneration(metrics.OutcomeProviderError)
		return err
	}

	questionList, err := questions.Parse(generated.Content)
	if err != nil {
		metrics.RecordQuestionGeneration(metrics.OutcomeInvalidOutput)
		h.logger.Warn("Model returned unusable questions",
			zap.String("request_id", requestID),
			zap.String("model", generated.Metadata.Model),
			zap.Error(err))
		return err
	}

	interview, err := h.store.Create(ctx, &models.Interview{
		Role:       req.Role,
		Type:       req.Type,
		Level:      req.Level,
		TechStack:  utils.SplitCommaList(req.TechStack),
		Questions:  questionList,
		UserID:     req.UserID,
		Finalized:  true,
		CoverImage: h.pickCover(),
		CreatedAt:  h.now().UTC(),
	})
	if err != nil {
		metrics.RecordQuestionGeneration(metrics.OutcomeStoreError)
		return err
	}

	interviewID := interview.ID.Hex()
	if err := h.publisher.PublishInterviewCreated(ctx, events.InterviewCreatedEvent{
		InterviewID:   interviewID,
		UserID:        interview.UserID,
		Role:          interview.Role,
		Level:         interview.Level,
		QuestionCount: len(interview.Questions),
		CreatedAt:     interview.CreatedAt,
	}); err != nil {
		h.logger.Warn("Failed to publish interview event", zap.String("interview_id", interviewID), zap.Error(err))
	}

	metrics.RecordQuestionGeneration(metrics.OutcomeSuccess)
	h.logger.Info("Interview generated",
		zap.String("request_id", requestID),
		zap.String("interview_id", interviewID),
		zap.Int("questions", len(questionList)),
		zap.Int("processing_time_ms", generated.Metadata.ProcessingTime))

	utils.JSON(w, http.StatusOK, models.GenerateQuestionsResponse{Success: true, InterviewID: interviewID})
	return nil
}

func (h *ActionHandler) startCall(w http.ResponseWriter, ctx context.Context, req *models.StartCallAction, requestID string) error {
	result, err := h.calls.StartWebCall(ctx, req.WorkflowID, req.VariableValues)

	record := &models.CallRecord{
		WorkflowID: req.WorkflowID,
		UserID:     req.UserID(),
		Outcome:    models.CallOutcomeFailed,
	}

	if err != nil {
		var upstream *vapi.UpstreamError
		switch {
		case errors.Is(err, vapi.ErrMissingPrivateKey):
			metrics.RecordCallStart(metrics.OutcomeConfigError)
			h.logger.Error("VAPI private key is missing. Check your environment variables.", zap.String("request_id", requestID))
			return err
		case errors.As(err, &upstream):
			metrics.RecordCallStart(metrics.OutcomeUpstreamError)
			record.UpstreamStatus = upstream.StatusCode
			h.logger.Error("Vapi API error",
				zap.String("request_id", requestID),
				zap.Int("status", upstream.StatusCode),
				zap.ByteString("body", upstream.Body))
		default:
			metrics.RecordCallStart(metrics.OutcomeProviderError)
		}
		h.recordCall(ctx, record, requestID)
		return err
	}

	record.Outcome = models.CallOutcomeStarted
	record.UpstreamStatus = result.StatusCode
	record.ProviderCallID = result.CallID()
	h.recordCall(ctx, record, requestID)

	metrics.RecordCallStart(metrics.OutcomeSuccess)
	h.logger.Info("Call started",
		zap.String("request_id", requestID),
		zap.String("workflow_id", req.WorkflowID),
		zap.String("call_id", record.ProviderCallID))

	utils.RawJSON(w, http.StatusOK, result.Body)
	return nil
}

func (h *ActionHandler) recordCall(ctx context.Context, record *models.CallRecord, requestID string) {
	if h.recorder == nil {
		return
	}
	if err := h.recorder.Create(ctx, record); err != nil {
		h.logger.Warn("Failed to record call attempt", zap.String("request_id", requestID), zap.Error(err))
	}
}

func (h *ActionHandler) writeError(w http.ResponseWriter, err error, requestID string) {
	var (
		reqErr   *models.RequestError
		upstream *vapi.UpstreamError
	)

	switch {
	case errors.As(err, &reqErr):
		utils.JSON(w, reqErr.Status, reqErr.Payload)
	case errors.Is(err, vapi.ErrMissingPrivateKey):
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Private key is missing"})
	case errors.As(err, &upstream):
		utils.JSON(w, upstream.StatusCode, models.ErrorResponse{
			Error:   "Failed to start call with Vapi",
			Details: upstream.DetailsJSON(),
		})
	default:
		h.logger.Error("An unexpected error occurred", zap.String("request_id", requestID), zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.FailureResponse{
			Success: false,
			Error:   err.Error(),
		})
	}
}

// generateRequestID generates a unique request ID
func generateRequestID() string {
	return uuid.New().String()
}

// ensureRequestID generates a request ID if one is not provided
func ensureRequestID(requestID string) string {
	if requestID == "" {
		return generateRequestID()
	}
	return requestID
}
