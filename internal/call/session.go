package call

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

var (
	ErrMissingWorkflow = errors.New("call workflow id is not configured")
	ErrAlreadyStarted  = errors.New("call session already started")
)

// StartedCall is the part of the provider's start answer the session keeps.
type StartedCall struct {
	ID         string `json:"id"`
	WebCallURL string `json:"webCallUrl"`
}

// Starter asks the backend to start a call for a workflow.
type Starter interface {
	StartCall(ctx context.Context, workflowID string, variables map[string]any) (*StartedCall, error)
}

type Options struct {
	WorkflowID string
	Starter    Starter
	Source     EventSource
	Logger     *zap.Logger

	// OnStatusChange sees every applied transition in order. Hooks run with
	// the session's notification lock held and must not call Start or
	// Disconnect.
	OnStatusChange func(Status)
	// OnFinished runs once, on the first entry into FINISHED.
	OnFinished func()
}

type Session struct {
	opts Options

	// notifyMu serializes transitions together with their hooks
	notifyMu sync.Mutex

	mu         sync.Mutex
	status     Status
	speaking   bool
	transcript []TranscriptMessage
	started    *StartedCall
	err        error
}

func NewSession(opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Session{opts: opts}
}

// Mount subscribes the session to its event source. The returned release
// removes exactly the listeners added by this call and is safe to call more
// than once.
func (s *Session) Mount() func() {
	handlers := map[EventName]Listener{
		EventCallStart:   func(Event) { s.transition(StatusActive) },
		EventCallEnd:     func(Event) { s.transition(StatusFinished) },
		EventMessage:     s.onMessage,
		EventSpeechStart: func(Event) { s.setSpeaking(true) },
		EventSpeechEnd:   func(Event) { s.setSpeaking(false) },
		EventError:       s.onError,
	}

	unsubscribers := make([]func(), 0, len(SessionEvents))
	for _, name := range SessionEvents {
		unsubscribers = append(unsubscribers, s.opts.Source.Subscribe(name, handlers[name]))
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			for _, unsubscribe := range unsubscribers {
				unsubscribe()
			}
		})
	}
}

// Start moves the session to CONNECTING and asks the backend to start the
// call. A failed start finishes the session.
func (s *Session) Start(ctx context.Context, variables map[string]any) error {
	if s.opts.WorkflowID == "" {
		return ErrMissingWorkflow
	}
	if !s.transition(StatusConnecting) {
		return ErrAlreadyStarted
	}

	started, err := s.opts.Starter.StartCall(ctx, s.opts.WorkflowID, variables)
	if err != nil {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		s.opts.Logger.Error("Failed to start call", zap.String("workflow_id", s.opts.WorkflowID), zap.Error(err))
		s.transition(StatusFinished)
		return err
	}

	s.mu.Lock()
	s.started = started
	s.mu.Unlock()
	return nil
}

// Disconnect finishes the session and asks the provider to stop. Requests
// already in flight are left alone.
func (s *Session) Disconnect() error {
	s.transition(StatusFinished)
	if err := s.opts.Source.Stop(); err != nil {
		s.opts.Logger.Warn("Failed to stop call", zap.Error(err))
		return err
	}
	return nil
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) Speaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speaking
}

// Transcript returns a copy of the final transcript entries so far
func (s *Session) Transcript() []TranscriptMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]TranscriptMessage(nil), s.transcript...)
}

// Call returns the provider's start answer, nil until Start succeeds
func (s *Session) Call() *StartedCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// Err returns the start failure, if any
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// transition applies to when it ranks after the current status and reports
// whether it did.
func (s *Session) transition(to Status) bool {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if to <= s.status {
		s.mu.Unlock()
		return false
	}
	s.status = to
	s.mu.Unlock()

	if s.opts.OnStatusChange != nil {
		s.opts.OnStatusChange(to)
	}
	// FINISHED is terminal, so this branch runs at most once
	if to == StatusFinished && s.opts.OnFinished != nil {
		s.opts.OnFinished()
	}
	return true
}

func (s *Session) setSpeaking(speaking bool) {
	s.mu.Lock()
	s.speaking = speaking
	s.mu.Unlock()
}

func (s *Session) onMessage(event Event) {
	if !event.Message.isFinalTranscript() {
		return
	}
	s.mu.Lock()
	s.transcript = append(s.transcript, TranscriptMessage{
		Role:    event.Message.Role,
		Content: event.Message.Transcript,
	})
	s.mu.Unlock()
}

func (s *Session) onError(event Event) {
	s.opts.Logger.Error("Call error", zap.Error(event.Err))
}
