package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"surveybuddy/internal/cache"
	"surveybuddy/internal/model"
	"surveybuddy/internal/repository"
)

// ErrSessionNotFound is returned when the session id is not live
var ErrSessionNotFound = errors.New("session not found")

// ErrExchangeInFlight is returned when a send arrives while the session's
// previous exchange is still streaming or finalizing.
var ErrExchangeInFlight = errors.New("an exchange is already in flight for this session")

// fallbackReply replaces the assistant content when the exchange fails at the
// transport level. Partial streamed text is discarded with it.
const fallbackReply = "Sorry - something went wrong while generating a reply. Please try again."

// Websocket message types pushed during an exchange.
const (
	msgChatDelta     = "chat_delta"
	msgChatContent   = "chat_content"
	msgChatDone      = "chat_done"
	msgChatError     = "chat_error"
	msgSurveyUpdated = "survey_updated"
)

// streamState tracks where a session's current exchange is in its lifecycle.
type streamState int

const (
	stateIdle streamState = iota
	stateAwaitingFirstToken
	stateStreaming
	stateFinalizing
)

func (s streamState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateAwaitingFirstToken:
		return "awaiting_first_token"
	case stateStreaming:
		return "streaming"
	case stateFinalizing:
		return "finalizing"
	}
	return "unknown"
}

// legalTransitions is the full state machine. awaiting_first_token may jump
// straight to finalizing (empty reply) or idle (transport failure before any
// token); streaming may drop to idle on a mid-stream failure.
var legalTransitions = map[streamState][]streamState{
	stateIdle:               {stateAwaitingFirstToken},
	stateAwaitingFirstToken: {stateStreaming, stateFinalizing, stateIdle},
	stateStreaming:          {stateFinalizing, stateIdle},
	stateFinalizing:         {stateIdle},
}

// chatSession is the in-memory state of one live session. history and state
// are guarded by mu; the builder has its own lock.
type chatSession struct {
	id      string
	title   string
	builder *BuilderService

	mu      sync.Mutex
	state   streamState
	history []model.ChatMessage
}

// transition moves the state machine, holding s.mu. An illegal move is a
// programming error the single-flight guard should make impossible.
func (s *chatSession) transition(to streamState) {
	for _, allowed := range legalTransitions[s.state] {
		if allowed == to {
			s.state = to
			return
		}
	}
	panic(fmt.Sprintf("illegal chat state transition %v -> %v", s.state, to))
}

// UploadedFile is one raw attachment uploaded alongside a chat message
type UploadedFile struct {
	Name string
	Data []byte
}

// ChatService orchestrates chat exchanges. It owns the live sessions, streams
// completion deltas into the in-flight assistant message, and on completion
// runs the directive extractor once over the full reply, applying the
// resulting commands to the session's survey.
type ChatService struct {
	llm         *LLMClient
	extractor   *ExtractorClient
	messageRepo repository.MessageRepo
	sessionRepo repository.SessionRepo
	settings    cache.SettingsCache
	broadcaster Broadcaster

	mu   sync.RWMutex
	live map[string]*chatSession
}

// NewChatService creates a new chat service
func NewChatService(llm *LLMClient, extractor *ExtractorClient, messageRepo repository.MessageRepo, sessionRepo repository.SessionRepo, settings cache.SettingsCache) *ChatService {
	return &ChatService{
		llm:         llm,
		extractor:   extractor,
		messageRepo: messageRepo,
		sessionRepo: sessionRepo,
		settings:    settings,
		live:        make(map[string]*chatSession),
	}
}

// SetBroadcaster sets the broadcaster for real-time push
func (s *ChatService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// CreateSession starts a new session seeded with the default survey and the
// canned onboarding conversation, persists both, and returns the session.
func (s *ChatService) CreateSession(ctx context.Context, title string) (*model.Session, error) {
	if title == "" {
		title = defaultSurveyTitle
	}
	session := &model.Session{
		ID:        uuid.NewString(),
		Title:     title,
		CreatedAt: time.Now(),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	builder := NewBuilderService()
	builder.SetStudyGoal(defaultStudyGoal)
	for _, text := range defaultQuestions {
		q := text
		builder.AddQuestion(&model.QuestionSpec{Text: &q})
	}

	sess := &chatSession{
		id:      session.ID,
		title:   title,
		builder: builder,
		state:   stateIdle,
	}
	for _, seed := range seedConversation {
		msg := model.ChatMessage{
			ID:        uuid.NewString(),
			SessionID: session.ID,
			Role:      seed.role,
			Content:   seed.content,
			CreatedAt: time.Now(),
		}
		sess.history = append(sess.history, msg)
		if err := s.messageRepo.Append(ctx, &msg); err != nil {
			return nil, fmt.Errorf("failed to seed session transcript: %w", err)
		}
	}

	s.mu.Lock()
	s.live[session.ID] = sess
	s.mu.Unlock()

	log.Printf("[Chat] Session created: %s (%q)", session.ID, title)
	return session, nil
}

// ListSessions returns all sessions, newest first
func (s *ChatService) ListSessions(ctx context.Context) ([]*model.Session, error) {
	return s.sessionRepo.List(ctx)
}

// Messages returns the persisted transcript of a session in order
func (s *ChatService) Messages(ctx context.Context, sessionID string) ([]model.ChatMessage, error) {
	if _, err := s.session(sessionID); err != nil {
		return nil, err
	}
	return s.messageRepo.ListBySession(ctx, sessionID)
}

// Builder returns the mutation choke point for a live session's survey
func (s *ChatService) Builder(sessionID string) (*BuilderService, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.builder, nil
}

// SendMessage runs one full exchange synchronously: it appends the user
// message, streams the assistant reply delta by delta, then finalizes the
// reply through the directive extractor and applies the extracted commands.
// Deltas and rendered content are pushed over the broadcaster as they arrive.
// Only one exchange per session may be in flight; a concurrent send returns
// ErrExchangeInFlight immediately.
func (s *ChatService) SendMessage(ctx context.Context, sessionID, text string, files []UploadedFile) (*model.ChatMessage, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	if sess.state != stateIdle {
		sess.mu.Unlock()
		return nil, ErrExchangeInFlight
	}
	sess.transition(stateAwaitingFirstToken)
	sess.mu.Unlock()

	userMsg := s.buildUserMessage(ctx, sessionID, text, files)

	customization, err := s.settings.GetCustomization(ctx)
	if err != nil {
		log.Printf("[Chat] Warning: failed to read customization: %v", err)
		customization = ""
	}
	survey := sess.builder.Survey()

	sess.mu.Lock()
	sess.history = append(sess.history, *userMsg)
	request := buildRequestMessages(sess.title, survey, customization, sess.history)
	assistant := model.ChatMessage{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      model.RoleAssistant,
		CreatedAt: time.Now(),
	}
	sess.history = append(sess.history, assistant)
	idx := len(sess.history) - 1
	sess.mu.Unlock()

	if err := s.messageRepo.Append(ctx, userMsg); err != nil {
		log.Printf("[Chat] Warning: failed to persist user message: %v", err)
	}
	if err := s.messageRepo.Append(ctx, &assistant); err != nil {
		log.Printf("[Chat] Warning: failed to persist assistant placeholder: %v", err)
	}

	start := time.Now()
	deltas, errc := s.llm.StreamChat(ctx, request)

	content := ""
	for delta := range deltas {
		sess.mu.Lock()
		if sess.state == stateAwaitingFirstToken {
			sess.transition(stateStreaming)
		}
		content += delta
		sess.history[idx].Content = content
		sess.mu.Unlock()

		s.broadcast(sessionID, msgChatDelta, map[string]interface{}{
			"messageId": assistant.ID,
			"delta":     delta,
		})
		s.broadcast(sessionID, msgChatContent, map[string]interface{}{
			"messageId": assistant.ID,
			"blocks":    RenderContent(content),
		})
	}

	if streamErr := <-errc; streamErr != nil {
		log.Printf("[Chat] Exchange failed for session %s: %v", sessionID, streamErr)

		sess.mu.Lock()
		sess.history[idx].Content = fallbackReply
		final := sess.history[idx]
		sess.transition(stateIdle)
		sess.mu.Unlock()

		if err := s.messageRepo.Update(ctx, &final); err != nil {
			log.Printf("[Chat] Warning: failed to persist fallback message: %v", err)
		}
		s.broadcast(sessionID, msgChatError, map[string]interface{}{
			"messageId": final.ID,
			"message":   final,
		})
		return &final, nil
	}

	sess.mu.Lock()
	sess.transition(stateFinalizing)
	raw := sess.history[idx].Content
	sess.mu.Unlock()

	clean, commands := ExtractDirectives(raw)
	applied := 0
	if len(commands) > 0 {
		applied = sess.builder.ApplyCommands(commands)
	}

	sess.mu.Lock()
	sess.history[idx].Content = clean
	final := sess.history[idx]
	sess.transition(stateIdle)
	sess.mu.Unlock()

	if err := s.messageRepo.Update(ctx, &final); err != nil {
		log.Printf("[Chat] Warning: failed to persist assistant message: %v", err)
	}

	s.broadcast(sessionID, msgChatDone, map[string]interface{}{
		"message":         final,
		"blocks":          RenderContent(final.Content),
		"commandsApplied": applied,
	})
	if applied > 0 {
		s.broadcast(sessionID, msgSurveyUpdated, map[string]interface{}{
			"survey": sess.builder.Survey(),
		})
	}

	log.Printf("[Chat] Exchange complete for session %s: %d chars, %d/%d commands applied in %v",
		sessionID, len(raw), applied, len(commands), time.Since(start))
	return &final, nil
}

// BroadcastSurvey pushes the current survey snapshot to the session's
// websocket clients. Builder REST handlers call this after a mutation.
func (s *ChatService) BroadcastSurvey(sessionID string) {
	sess, err := s.session(sessionID)
	if err != nil {
		return
	}
	s.broadcast(sessionID, msgSurveyUpdated, map[string]interface{}{
		"survey": sess.builder.Survey(),
	})
}

// buildUserMessage assembles the user message, extracting text from every
// attachment in parallel. Extraction failures never fail the message: the
// attachment carries an error badge instead and is excluded from the model
// request. The join is all-or-nothing; the message is not sent until every
// extraction has settled.
func (s *ChatService) buildUserMessage(ctx context.Context, sessionID, text string, files []UploadedFile) *model.ChatMessage {
	msg := &model.ChatMessage{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      model.RoleUser,
		Content:   text,
		CreatedAt: time.Now(),
	}
	if len(files) == 0 {
		return msg
	}

	msg.Attachments = make([]model.Attachment, len(files))
	var wg sync.WaitGroup
	for i, file := range files {
		wg.Add(1)
		go func(i int, file UploadedFile) {
			defer wg.Done()
			att := model.Attachment{ID: uuid.NewString(), Name: file.Name}
			extracted, err := s.extractor.ExtractText(ctx, file.Name, file.Data)
			if err != nil {
				log.Printf("[Chat] Attachment %q failed: %v", file.Name, err)
				att.Error = err.Error()
			} else {
				att.Text = extracted
			}
			msg.Attachments[i] = att
		}(i, file)
	}
	wg.Wait()
	return msg
}

func (s *ChatService) session(id string) (*chatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.live[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *ChatService) broadcast(sessionID, msgType string, payload interface{}) {
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToSession(sessionID, msgType, payload)
	}
}
