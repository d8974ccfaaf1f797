package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"perfume-bot/models"
)

// DefaultHistoryLimit caps how many past turns feed model prompts.
const DefaultHistoryLimit = 10

// SessionStore persists per-user conversation records.
type SessionStore interface {
	Get(ctx context.Context, userID string) (*models.Session, error)
	Put(ctx context.Context, session *models.Session) error
}

// MemoryStore keeps sessions in process memory. The default when no MongoDB
// is configured.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*models.Session)}
}

func (s *MemoryStore) Get(_ context.Context, userID string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[userID]
	if !ok {
		return nil, nil
	}
	copied := *session
	copied.History = append([]models.Turn(nil), session.History...)
	if session.LastProduct != nil {
		product := *session.LastProduct
		copied.LastProduct = &product
	}
	return &copied, nil
}

func (s *MemoryStore) Put(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *session
	copied.History = append([]models.Turn(nil), session.History...)
	if session.LastProduct != nil {
		product := *session.LastProduct
		copied.LastProduct = &product
	}
	s.sessions[session.UserID] = &copied
	return nil
}

// MongoStore persists sessions in a MongoDB collection so conversation
// state survives restarts.
type MongoStore struct {
	collection *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{collection: db.Collection("sessions")}
}

func (s *MongoStore) Get(ctx context.Context, userID string) (*models.Session, error) {
	var session models.Session
	err := s.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&session)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

func (s *MongoStore) Put(ctx context.Context, session *models.Session) error {
	opts := options.Replace().SetUpsert(true)
	_, err := s.collection.ReplaceOne(ctx, bson.M{"user_id": session.UserID}, session, opts)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// SessionManager owns conversation state: mode, welcome flag, last product
// and history. It also hands out per-user locks so concurrent messages from
// the same user are processed in arrival order without serializing
// unrelated users.
type SessionManager struct {
	store        SessionStore
	historyLimit int

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewSessionManager(store SessionStore) *SessionManager {
	return &SessionManager{
		store:        store,
		historyLimit: DefaultHistoryLimit,
		locks:        make(map[string]*sync.Mutex),
	}
}

// Lock acquires the turn lock for a user. The caller must Unlock when the
// turn is done.
func (m *SessionManager) Lock(userID string) {
	m.userLock(userID).Lock()
}

func (m *SessionManager) Unlock(userID string) {
	m.userLock(userID).Unlock()
}

func (m *SessionManager) userLock(userID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[userID] = l
	}
	return l
}

// Session returns the user's record, creating it in bot mode on first
// contact.
func (m *SessionManager) Session(ctx context.Context, userID string) (*models.Session, error) {
	session, err := m.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		now := time.Now()
		session = &models.Session{
			UserID:    userID,
			Mode:      models.ModeBot,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := m.store.Put(ctx, session); err != nil {
			return nil, err
		}
	}
	return session, nil
}

// Mode reports the user's current chat mode, creating the session if
// needed.
func (m *SessionManager) Mode(ctx context.Context, userID string) (models.ChatMode, error) {
	session, err := m.Session(ctx, userID)
	if err != nil {
		return "", err
	}
	return session.Mode, nil
}

// SetMode flips a user between bot and manager handling.
func (m *SessionManager) SetMode(ctx context.Context, userID string, mode models.ChatMode) error {
	return m.update(ctx, userID, func(s *models.Session) {
		s.Mode = mode
	})
}

// MarkWelcomed records that the one-time welcome message went out.
func (m *SessionManager) MarkWelcomed(ctx context.Context, userID string) error {
	return m.update(ctx, userID, func(s *models.Session) {
		s.Welcomed = true
	})
}

// SetLastProduct remembers the product a reply was about, by value.
func (m *SessionManager) SetLastProduct(ctx context.Context, userID string, product models.Product) error {
	return m.update(ctx, userID, func(s *models.Session) {
		s.LastProduct = &product
	})
}

// LastProduct returns a copy of the most recently discussed product, or nil.
func (m *SessionManager) LastProduct(ctx context.Context, userID string) (*models.Product, error) {
	session, err := m.Session(ctx, userID)
	if err != nil {
		return nil, err
	}
	if session.LastProduct == nil {
		return nil, nil
	}
	product := *session.LastProduct
	return &product, nil
}

// RecordTurn appends one exchange to the user's history.
func (m *SessionManager) RecordTurn(ctx context.Context, userID, userMsg, botMsg string) error {
	return m.update(ctx, userID, func(s *models.Session) {
		s.History = append(s.History, models.Turn{
			UserMessage: userMsg,
			BotResponse: botMsg,
			At:          time.Now(),
		})
	})
}

// History returns the most recent limit turns, oldest first. A limit of 0
// uses the default cap.
func (m *SessionManager) History(ctx context.Context, userID string, limit int) ([]models.Turn, error) {
	session, err := m.Session(ctx, userID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = m.historyLimit
	}
	history := session.History
	if len(history) > limit {
		history = history[len(history)-limit:]
	}
	return append([]models.Turn(nil), history...), nil
}

func (m *SessionManager) update(ctx context.Context, userID string, fn func(*models.Session)) error {
	session, err := m.Session(ctx, userID)
	if err != nil {
		return err
	}
	fn(session)
	session.UpdatedAt = time.Now()
	return m.store.Put(ctx, session)
}
