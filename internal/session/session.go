package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"telebot-admin/internal/platform"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrRegistrationRequired means the user authenticated but has not finished
// registration; the caller should switch to the registration flow.
var ErrRegistrationRequired = errors.New("registration required")

// ErrNoSession means there is no persisted session for the user.
var ErrNoSession = errors.New("no session")

// Identity is what the embedding context (Telegram) tells us about a user.
type Identity struct {
	TelegramID int64
	Username   string
	FirstName  string
	LastName   string
	PhotoURL   string
}

// Manager establishes identity against the platform and keeps the resulting
// user object in redis so the next contact can resume without a round trip.
type Manager struct {
	Platform *platform.Client
	Redis    *redis.Client
	Log      *zap.Logger
}

func NewManager(client *platform.Client, rdb *redis.Client, log *zap.Logger) *Manager {
	return &Manager{
		Platform: client,
		Redis:    rdb,
		Log:      log,
	}
}

func sessionKey(telegramID int64) string {
	return fmt.Sprintf("session:%d", telegramID)
}

// Authenticate upserts the user remotely and persists the session. Users who
// have not completed registration (and are not admins) get
// ErrRegistrationRequired instead of a session.
func (m *Manager) Authenticate(ctx context.Context, identity Identity) (*platform.User, error) {
	if identity.TelegramID == 0 {
		return nil, errors.New("no telegram identity supplied")
	}

	user, err := m.Platform.UpsertUser(ctx, platform.UpsertUserRequest{
		TelegramID: identity.TelegramID,
		Username:   identity.Username,
		FirstName:  identity.FirstName,
		LastName:   identity.LastName,
		PhotoURL:   identity.PhotoURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}

	if user.Role != "admin" && !user.RegistrationCompleted {
		return user, ErrRegistrationRequired
	}

	if err := m.save(ctx, user); err != nil {
		m.Log.Warn("failed to persist session", zap.Int64("user_id", user.ID), zap.Error(err))
	}
	return user, nil
}

// Resume rehydrates a saved session without re-validating against the server.
func (m *Manager) Resume(ctx context.Context, telegramID int64) (*platform.User, error) {
	raw, err := m.Redis.Get(ctx, sessionKey(telegramID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var user platform.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		// Corrupt session data is treated as absent.
		m.Redis.Del(ctx, sessionKey(telegramID))
		return nil, ErrNoSession
	}
	return &user, nil
}

// CompleteRegistration submits the registration form and opens a session.
func (m *Manager) CompleteRegistration(ctx context.Context, req platform.CompleteRegistrationRequest) (*platform.User, error) {
	user, err := m.Platform.CompleteRegistration(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to complete registration: %w", err)
	}

	if err := m.save(ctx, user); err != nil {
		m.Log.Warn("failed to persist session", zap.Int64("user_id", user.ID), zap.Error(err))
	}
	return user, nil
}

// Logout drops the persisted session.
func (m *Manager) Logout(ctx context.Context, telegramID int64) error {
	return m.Redis.Del(ctx, sessionKey(telegramID)).Err()
}

func (m *Manager) save(ctx context.Context, user *platform.User) error {
	payload, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return m.Redis.Set(ctx, sessionKey(user.TelegramID), payload, 0).Err()
}
