package service

import (
	"accioncsat/internal/cache"
	"accioncsat/internal/form"
	"accioncsat/internal/model"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FormService owns form sessions: it loads a session, applies one form operation under the
// session's lock, stores the result and publishes the change.
type FormService struct {
	engine      *form.Engine
	sessions    cache.SessionCache
	tokens      *TokenService
	submitter   Submitter
	broadcaster Broadcaster
	logger      *zap.Logger

	locks   sessionLocks
	pending sync.WaitGroup
}

// NewFormService creates a new form service
func NewFormService(
	engine *form.Engine,
	sessions cache.SessionCache,
	tokens *TokenService,
	submitter Submitter,
	logger *zap.Logger,
) *FormService {
	return &FormService{
		engine:    engine,
		sessions:  sessions,
		tokens:    tokens,
		submitter: submitter,
		logger:    logger,
		locks:     sessionLocks{entries: make(map[string]*lockEntry)},
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *FormService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Schema returns the questionnaire
func (s *FormService) Schema() *model.Schema {
	return s.engine.Schema()
}

// Start creates a form session with an all-empty record and a token for it
func (s *FormService) Start(ctx context.Context) (*model.StartSessionResponse, error) {
	session := s.engine.NewSession(uuid.New().String())
	if err := s.sessions.Set(ctx, session); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	token, err := s.tokens.Generate(session.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info("form session started", zap.String("session_id", session.ID))
	return &model.StartSessionResponse{
		SessionID: session.ID,
		Token:     token,
		Session:   s.engine.View(session),
	}, nil
}

// Get returns the current view of a session
func (s *FormService) Get(ctx context.Context, sessionID string) (*model.SessionView, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.engine.View(session), nil
}

// UpdateField replaces one answer
func (s *FormService) UpdateField(ctx context.Context, sessionID, key string, answer model.Answer) (*model.SessionView, error) {
	return s.mutate(ctx, sessionID, func(session *model.FormSession) (string, error) {
		return EventStateChanged, s.engine.UpdateField(session, key, answer)
	})
}

// ToggleOption checks or unchecks one option of a multi-choice question
func (s *FormService) ToggleOption(ctx context.Context, sessionID, key, value string, checked bool) (*model.SessionView, error) {
	return s.mutate(ctx, sessionID, func(session *model.FormSession) (string, error) {
		return EventStateChanged, s.engine.ToggleOption(session, key, value, checked)
	})
}

// SelectRating applies a rating pick; low ratings open the justification prompt
func (s *FormService) SelectRating(ctx context.Context, sessionID, key, rating string) (*model.SessionView, error) {
	return s.mutate(ctx, sessionID, func(session *model.FormSession) (string, error) {
		opened, err := s.engine.SelectRating(session, key, rating)
		if err != nil || !opened {
			return EventStateChanged, err
		}
		s.logger.Debug("low rating prompt opened",
			zap.String("session_id", sessionID),
			zap.String("question_key", key),
			zap.String("rating", rating),
		)
		return EventPromptOpened, nil
	})
}

// EditLowRating reopens the prompt for a committed low rating
func (s *FormService) EditLowRating(ctx context.Context, sessionID, key string) (*model.SessionView, error) {
	return s.mutate(ctx, sessionID, func(session *model.FormSession) (string, error) {
		return EventPromptOpened, s.engine.EditLowRating(session, key)
	})
}

// SubmitJustification commits the pending low rating with its justification
func (s *FormService) SubmitJustification(ctx context.Context, sessionID, text string) (*model.SessionView, error) {
	return s.mutate(ctx, sessionID, func(session *model.FormSession) (string, error) {
		ex, err := s.engine.SubmitJustification(session, text)
		if err != nil {
			return "", err
		}
		s.logger.Debug("low rating justified",
			zap.String("session_id", sessionID),
			zap.String("question_key", ex.QuestionKey),
			zap.String("rating", ex.Rating),
		)
		return EventPromptClosed, nil
	})
}

// CancelPrompt dismisses the justification prompt
func (s *FormService) CancelPrompt(ctx context.Context, sessionID string) (*model.SessionView, error) {
	return s.mutate(ctx, sessionID, func(session *model.FormSession) (string, error) {
		return EventPromptClosed, s.engine.CancelPrompt(session)
	})
}

// Submit validates the form. An incomplete form returns the updated view together with a
// *form.IncompleteFormError. A complete one starts the simulated submission in the background.
func (s *FormService) Submit(ctx context.Context, sessionID string) (*model.SessionView, error) {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	err = s.engine.BeginSubmit(session)
	var incomplete *form.IncompleteFormError
	switch {
	case errors.As(err, &incomplete):
		if saveErr := s.sessions.Set(ctx, session); saveErr != nil {
			return nil, fmt.Errorf("store session: %w", saveErr)
		}
		view := s.engine.View(session)
		s.publish(sessionID, EventValidationFailed, map[string]interface{}{
			"missing": incomplete.Missing,
			"focus":   incomplete.Focus,
			"session": view,
		})
		s.logger.Info("submission blocked",
			zap.String("session_id", sessionID),
			zap.Strings("missing", incomplete.Missing),
		)
		return view, err
	case err != nil:
		return nil, err
	}

	if err := s.sessions.Set(ctx, session); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	view := s.engine.View(session)
	s.publish(sessionID, EventSubmitting, view)

	snapshot := s.engine.Snapshot(session)
	s.pending.Add(1)
	go s.deliver(context.WithoutCancel(ctx), snapshot)

	return view, nil
}

// End deletes a session and closes its subscribers
func (s *FormService) End(ctx context.Context, sessionID string) error {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.publish(sessionID, EventSessionEnded, map[string]string{"sessionId": sessionID})
	if s.broadcaster != nil {
		s.broadcaster.DisconnectSession(sessionID)
	}
	s.logger.Info("form session ended", zap.String("session_id", sessionID))
	return nil
}

// Wait blocks until in-flight submissions have finished
func (s *FormService) Wait() {
	s.pending.Wait()
}

func (s *FormService) deliver(ctx context.Context, snapshot form.Snapshot) {
	defer s.pending.Done()

	submitErr := s.submitter.Submit(ctx, snapshot)

	unlock := s.locks.lock(snapshot.SessionID)
	defer unlock()

	session, err := s.sessions.Get(ctx, snapshot.SessionID)
	if err != nil {
		s.logger.Warn("session gone before submission finished",
			zap.String("session_id", snapshot.SessionID),
			zap.Error(err),
		)
		return
	}

	event := EventSubmitted
	if submitErr != nil {
		session.Status = model.SessionEditing
		event = EventSubmitFailed
		s.logger.Error("submission failed", zap.String("session_id", snapshot.SessionID), zap.Error(submitErr))
	} else {
		s.engine.CompleteSubmit(session)
	}

	if err := s.sessions.Set(ctx, session); err != nil {
		s.logger.Error("store session after submission", zap.String("session_id", snapshot.SessionID), zap.Error(err))
		return
	}
	s.publish(snapshot.SessionID, event, s.engine.View(session))
}

func (s *FormService) mutate(ctx context.Context, sessionID string, apply func(*model.FormSession) (string, error)) (*model.SessionView, error) {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	event, err := apply(session)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Set(ctx, session); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	view := s.engine.View(session)
	s.publish(sessionID, event, view)
	return view, nil
}

func (s *FormService) publish(sessionID, event string, payload interface{}) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastToSession(sessionID, event, payload)
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// sessionLocks serializes operations per session id
type sessionLocks struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

func (l *sessionLocks) lock(id string) func() {
	l.mu.Lock()
	e, ok := l.entries[id]
	if !ok {
		e = &lockEntry{}
		l.entries[id] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.entries, id)
		}
		l.mu.Unlock()
	}
}
