package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"guestbook-backend/internal/models"
)

const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Turn is one message in the backend-neutral conversation.
type Turn struct {
	Role string // RoleUser or RoleModel
	Text string
}

// Completion is what a backend produced. An empty Text means the model gave no
// usable answer; BlockReason is set when it refused.
type Completion struct {
	Text        string
	BlockReason string
}

// ChatBackend sends a full conversation to a hosted model. The last turn is always from the user.
type ChatBackend interface {
	Complete(ctx context.Context, turns []Turn) (*Completion, error)
	Close() error
}

// Persona is the fixed preamble placed before every conversation.
type Persona struct {
	Prompt   string
	Greeting string
}

type ChatService struct {
	backend  ChatBackend
	persona  Persona
	timeout  time.Duration
	rateChan chan struct{} // Token bucket
}

func NewChatService(backend ChatBackend, persona Persona, timeout time.Duration, concurrentReqs int) *ChatService {
	if concurrentReqs <= 0 {
		concurrentReqs = 1
	}
	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	return &ChatService{
		backend:  backend,
		persona:  persona,
		timeout:  timeout,
		rateChan: rateChan,
	}
}

func (s *ChatService) Close() error {
	return s.backend.Close()
}

// acquireRate blocks until a rate slot is available
func (s *ChatService) acquireRate(ctx context.Context) error {
	select {
	case <-s.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *ChatService) releaseRate() {
	s.rateChan <- struct{}{}
}

// Ask relays the caller's history to the model and returns its answer. A refusal or an
// empty answer comes back as an apology string with a nil error; only request problems
// (*ChatRequestError) and transport failures (*UpstreamError) are errors.
func (s *ChatService) Ask(ctx context.Context, history []models.ChatMessage) (string, error) {
	turns, err := buildTurns(history)
	if err != nil {
		return "", err
	}

	full := make([]Turn, 0, len(turns)+2)
	full = append(full,
		Turn{Role: RoleUser, Text: s.persona.Prompt},
		Turn{Role: RoleModel, Text: s.persona.Greeting},
	)
	full = append(full, turns...)

	log.Printf("Sending %d turns to chat model", len(full))

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.acquireRate(ctx); err != nil {
		return "", &UpstreamError{Err: err}
	}
	defer s.releaseRate()

	completion, err := s.backend.Complete(ctx, full)
	if err != nil {
		log.Printf("Chat model call failed: %v", err)
		return "", &UpstreamError{Err: err}
	}

	switch {
	case completion.Text != "":
		return completion.Text, nil
	case completion.BlockReason != "":
		log.Printf("WARNING: chat model declined to answer: %s", completion.BlockReason)
		return fmt.Sprintf(apologyBlocked, completion.BlockReason), nil
	default:
		log.Println("WARNING: chat model returned empty text")
		return apologyEmpty, nil
	}
}

// buildTurns drops turns with no role or no content, maps "assistant" to the model role,
// and requires a non-empty history that ends with the user.
func buildTurns(history []models.ChatMessage) ([]Turn, error) {
	if history == nil {
		return nil, &ChatRequestError{Message: msgHistoryRequired}
	}

	turns := make([]Turn, 0, len(history))
	for _, msg := range history {
		if msg.Role == "" || msg.Content == nil {
			continue
		}
		switch msg.Role {
		case "user":
			turns = append(turns, Turn{Role: RoleUser, Text: *msg.Content})
		case "assistant", "model":
			turns = append(turns, Turn{Role: RoleModel, Text: *msg.Content})
		default:
			return nil, &ChatRequestError{Message: msgUnknownRole}
		}
	}

	if len(turns) == 0 {
		return nil, &ChatRequestError{Message: msgNoUsableTurns}
	}
	if turns[len(turns)-1].Role != RoleUser {
		return nil, &ChatRequestError{Message: msgLastTurnNotUser}
	}
	return turns, nil
}

type unconfiguredBackend struct {
	reason string
}

// Unconfigured returns a backend for a deployment without model credentials.
// Every call fails with ErrChatNotConfigured.
func Unconfigured(reason string) ChatBackend {
	return unconfiguredBackend{reason: reason}
}

func (b unconfiguredBackend) Complete(ctx context.Context, turns []Turn) (*Completion, error) {
	return nil, fmt.Errorf("%w: %s", ErrChatNotConfigured, b.reason)
}

func (b unconfiguredBackend) Close() error { return nil }
