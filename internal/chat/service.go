package chat

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/mkleber/kaltrack/internal/actions"
	"github.com/mkleber/kaltrack/internal/chatparse"
	"github.com/mkleber/kaltrack/internal/llm"
	"github.com/mkleber/kaltrack/internal/models"
)

// Model is the conversational backend. Implemented by llm.Client.
type Model interface {
	Send(ctx context.Context, message string, history []models.ChatMessage, systemContext string) (string, error)
}

// historyLimit caps how many turns are replayed to the model.
const historyLimit = 20

// Response is what one user message produces: a natural-language reply
// plus the pending actions awaiting confirmation.
type Response struct {
	Reply        string            `json:"reply"`
	Actions      []actions.Pending `json:"actions"`
	IsComplete   bool              `json:"is_complete"`
	RecoveryNote string            `json:"recovery_note,omitempty"`
}

// Service drives the conversation: model call, payload parsing, action
// registration, history bookkeeping.
type Service struct {
	model   Model
	parser  *chatparse.Parser
	manager *actions.Manager
	loc     *time.Location
	now     func() time.Time

	mu      sync.Mutex
	history []models.ChatMessage
}

// NewService wires the conversational pipeline together. loc is the zone
// reference dates are computed in; nil means UTC.
func NewService(model Model, parser *chatparse.Parser, manager *actions.Manager, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		model:   model,
		parser:  parser,
		manager: manager,
		loc:     loc,
		now:     time.Now,
	}
}

// HandleMessage runs one user utterance through the pipeline. A model
// failure is surfaced to the user with wording specific to the failure
// class, and the rule-based fallback still produces drafts from the
// utterance itself.
func (s *Service) HandleMessage(ctx context.Context, message, selectedDate string) Response {
	ref := s.now().In(s.loc)
	systemContext := llm.BuildSystemContext(ref)

	modelText, err := s.model.Send(ctx, message, s.History(), systemContext)
	if err != nil {
		log.Printf("Model call failed, using rule-based fallback: %v", err)
		modelText = ""
	}

	result := s.parser.Parse(ctx, modelText, message, ref, selectedDate)
	if err != nil {
		reply, note := gatewayFailure(err)
		if len(result.Actions) > 0 {
			reply += " Ich habe deine Eingabe regelbasiert erfasst, bitte bestätige die Aktionen."
		}
		result.ReplyText = reply
		result.RecoveryNote = note
		result.IsComplete = false
	}

	pending := s.manager.Add(result.Actions)
	s.appendHistory(message, result.ReplyText)

	return Response{
		Reply:        result.ReplyText,
		Actions:      pending,
		IsComplete:   result.IsComplete,
		RecoveryNote: result.RecoveryNote,
	}
}

// gatewayFailure maps a model error to the user-facing reply and the
// machine-readable recovery note. Each failure class gets its own wording
// so the user can tell a timeout from an exhausted quota.
func gatewayFailure(err error) (string, string) {
	switch {
	case errors.Is(err, llm.ErrTimeout):
		return "Die Anfrage an den Assistenten hat zu lange gedauert.",
			"model timeout; rule-based fallback applied"
	case errors.Is(err, llm.ErrQuota):
		return "Das Anfragekontingent des Assistenten ist im Moment aufgebraucht, bitte versuche es später erneut.",
			"model quota exceeded; rule-based fallback applied"
	case errors.Is(err, llm.ErrConnection):
		return "Der Assistent ist gerade nicht erreichbar.",
			"model connection failed; rule-based fallback applied"
	default:
		return "Der Assistent konnte nicht antworten.",
			"model unavailable; rule-based fallback applied"
	}
}

// History returns a snapshot of the conversation so far.
func (s *Service) History() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.ChatMessage, len(s.history))
	copy(out, s.history)
	return out
}

// Reset clears the conversation and drops every tracked action.
func (s *Service) Reset() {
	s.mu.Lock()
	s.history = nil
	s.mu.Unlock()

	s.manager.Reset()
}

func (s *Service) appendHistory(userMessage, reply string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = append(s.history,
		models.ChatMessage{Role: "user", Content: userMessage},
		models.ChatMessage{Role: "model", Content: reply},
	)
	if len(s.history) > historyLimit {
		s.history = s.history[len(s.history)-historyLimit:]
	}
}
