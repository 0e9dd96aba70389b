package conversation

import (
	"fmt"
	"sync"
	"time"

	"github.com/futig/rag-chat/internal/entity"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// Conversation couples a session with its buffer. Turns on the same
// conversation run one at a time.
type Conversation struct {
	mu      sync.Mutex
	session entity.Session
	buffer  *Buffer
}

// ID never changes after construction.
func (c *Conversation) ID() string {
	return c.session.ID
}

// Do runs fn with exclusive access to the buffer.
func (c *Conversation) Do(fn func(b *Buffer) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.session.LastActivity = time.Now()
	return fn(c.buffer)
}

// Snapshot returns the session and a copy of its messages.
func (c *Conversation) Snapshot() (entity.Session, []entity.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.session, c.buffer.Messages()
}

// Store maps session ids to conversations. Entries expire after ttl of
// inactivity; every access renews the expiration.
type Store struct {
	cache        *cache.Cache
	systemPrompt string
}

func NewStore(systemPrompt string, ttl, cleanupInterval time.Duration) *Store {
	return &Store{
		cache:        cache.New(ttl, cleanupInterval),
		systemPrompt: systemPrompt,
	}
}

func (s *Store) newConversation(id string) *Conversation {
	now := time.Now()
	return &Conversation{
		session: entity.Session{
			ID:           id,
			CreatedAt:    now,
			LastActivity: now,
		},
		buffer: NewBuffer(s.systemPrompt),
	}
}

// Create starts a conversation under a fresh session id.
func (s *Store) Create() *Conversation {
	conv := s.newConversation(uuid.New().String())
	s.cache.SetDefault(conv.session.ID, conv)
	return conv
}

// GetOrCreate returns the conversation for id, starting a new one under the
// same id when it is unknown or expired. An empty id always creates.
func (s *Store) GetOrCreate(id string) (*Conversation, bool, error) {
	if id == "" {
		return s.Create(), true, nil
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, false, fmt.Errorf("%w: session_id", entity.ErrInvalidParameter)
	}

	if conv, ok := s.touch(id); ok {
		return conv, false, nil
	}

	conv := s.newConversation(id)
	if err := s.cache.Add(id, conv, cache.DefaultExpiration); err != nil {
		// Lost a race with a concurrent request for the same id.
		if existing, ok := s.touch(id); ok {
			return existing, false, nil
		}
		s.cache.SetDefault(id, conv)
	}

	return conv, true, nil
}

// Get returns the live conversation for id or entity.ErrSessionNotFound.
func (s *Store) Get(id string) (*Conversation, error) {
	conv, ok := s.touch(id)
	if !ok {
		return nil, entity.ErrSessionNotFound
	}
	return conv, nil
}

func (s *Store) Delete(id string) error {
	if _, ok := s.cache.Get(id); !ok {
		return entity.ErrSessionNotFound
	}
	s.cache.Delete(id)
	return nil
}

func (s *Store) Count() int {
	return s.cache.ItemCount()
}

func (s *Store) touch(id string) (*Conversation, bool) {
	item, ok := s.cache.Get(id)
	if !ok {
		return nil, false
	}

	conv, ok := item.(*Conversation)
	if !ok {
		return nil, false
	}

	s.cache.SetDefault(id, conv)
	return conv, true
}
