package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"guestbook-backend/internal/models"
	"guestbook-backend/internal/repository"
)

type entryStore interface {
	Append(ctx context.Context, name, message string) (*models.Entry, error)
	ListAll(ctx context.Context) ([]models.Entry, error)
}

// Broadcaster pushes events to every connected viewer. Delivery is best effort.
type Broadcaster interface {
	Publish(ctx context.Context, eventType string, payload interface{}) error
}

// NopBroadcaster is used when realtime delivery is disabled; viewers poll instead.
type NopBroadcaster struct{}

func (NopBroadcaster) Publish(ctx context.Context, eventType string, payload interface{}) error {
	return nil
}

// Limits bounds submitted fields, in characters.
type Limits struct {
	NameMax    int
	MessageMax int
}

type GuestbookService struct {
	store        entryStore
	broadcaster  Broadcaster
	limits       Limits
	storeTimeout time.Duration
}

func NewGuestbookService(store entryStore, broadcaster Broadcaster, limits Limits, storeTimeout time.Duration) *GuestbookService {
	if broadcaster == nil {
		broadcaster = NopBroadcaster{}
	}
	return &GuestbookService{
		store:        store,
		broadcaster:  broadcaster,
		limits:       limits,
		storeTimeout: storeTimeout,
	}
}

// Submit validates and stores a new entry, then announces it to connected viewers.
func (s *GuestbookService) Submit(ctx context.Context, rawName, rawMessage string) (*models.Entry, error) {
	name := strings.TrimSpace(rawName)
	message := strings.TrimSpace(rawMessage)

	if err := s.validate(name, message); err != nil {
		return nil, err
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	entry, err := s.store.Append(storeCtx, name, message)
	if err != nil {
		log.Printf("Failed to save guestbook entry: %v", err)
		return nil, &StoreError{
			Unavailable: errors.Is(err, repository.ErrUnavailable),
			Err:         err,
		}
	}

	log.Printf("New guestbook entry from %q at %s", entry.Name, entry.Timestamp())

	if err := s.broadcaster.Publish(ctx, models.EventNewEntry, entry); err != nil {
		log.Printf("WARNING: failed to broadcast new entry: %v", err)
	}

	return entry, nil
}

// List returns every entry newest first. A store failure yields an empty list.
func (s *GuestbookService) List(ctx context.Context) []models.Entry {
	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	entries, err := s.store.ListAll(storeCtx)
	if err != nil {
		log.Printf("WARNING: failed to load guestbook entries: %v", err)
		return []models.Entry{}
	}
	if entries == nil {
		return []models.Entry{}
	}
	return entries
}

func (s *GuestbookService) validate(name, message string) error {
	fields := map[string]string{}
	if name == "" {
		fields["name"] = "required"
	}
	if message == "" {
		fields["message"] = "required"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields, Message: msgFieldsRequired}
	}

	if utf8.RuneCountInString(name) > s.limits.NameMax {
		fields["name"] = "too long"
	}
	if utf8.RuneCountInString(message) > s.limits.MessageMax {
		fields["message"] = "too long"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields, Message: msgLengthExceeded}
	}
	return nil
}
