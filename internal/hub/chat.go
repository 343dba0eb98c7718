package hub

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrEmptyMessage is returned when a chat post has no text.
var ErrEmptyMessage = errors.New("chat message text is empty")

// ChatMessage is one message in a venue chat room.
type ChatMessage struct {
	ID        string    `json:"id"`
	VenueID   string    `json:"venue_id"`
	AuthorID  string    `json:"author_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatRepository persists chat history.
type ChatRepository interface {
	Insert(ctx context.Context, msg *ChatMessage) error

	// ListByVenue returns up to limit messages for a venue, newest
	// first.
	ListByVenue(ctx context.Context, venueID string, limit int) ([]*ChatMessage, error)
}

// ChatService posts messages to venue rooms. A message is persisted
// before it is broadcast: subscribers only ever see messages that made
// it into history.
type ChatService struct {
	repo ChatRepository
	hub  *Hub
}

// NewChatService creates a chat service over the given store and hub.
func NewChatService(repo ChatRepository, hub *Hub) *ChatService {
	return &ChatService{repo: repo, hub: hub}
}

// Post stores a message and fans it out to the venue's room.
func (s *ChatService) Post(ctx context.Context, venueID, authorID, text string) (*ChatMessage, error) {
	if text == "" {
		return nil, ErrEmptyMessage
	}

	msg := &ChatMessage{
		ID:        uuid.New().String(),
		VenueID:   venueID,
		AuthorID:  authorID,
		Text:      text,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Insert(ctx, msg); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	s.hub.Publish(TopicForVenue(venueID), payload)
	return msg, nil
}

// History returns recent messages for a venue's room, newest first.
func (s *ChatService) History(ctx context.Context, venueID string, limit int) ([]*ChatMessage, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.ListByVenue(ctx, venueID, limit)
}

// InMemoryChatRepository is a mutex-guarded in-memory ChatRepository.
type InMemoryChatRepository struct {
	mu       sync.RWMutex
	messages []*ChatMessage
}

// NewInMemoryChatRepository creates an empty in-memory chat store.
func NewInMemoryChatRepository() *InMemoryChatRepository {
	return &InMemoryChatRepository{}
}

// Insert stores a message.
func (r *InMemoryChatRepository) Insert(ctx context.Context, msg *ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *msg
	r.messages = append(r.messages, &cp)
	return nil
}

// ListByVenue returns up to limit messages for a venue, newest first.
func (r *InMemoryChatRepository) ListByVenue(ctx context.Context, venueID string, limit int) ([]*ChatMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*ChatMessage
	for _, m := range r.messages {
		if m.VenueID == venueID {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
