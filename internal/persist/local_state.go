package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/unera/backend/internal/models"
)

// Keys of the persisted client state.
const (
	CurrentUserKey = "universeCurrentUser"
	UsersKey       = "universeUsers"
)

// LocalState reads and writes the signed-in user and the user roster.
type LocalState struct {
	kv KV
}

// NewLocalState wraps kv.
func NewLocalState(kv KV) *LocalState {
	return &LocalState{kv: kv}
}

// CurrentUser loads the persisted signed-in user. It returns ErrNotFound when nobody is signed in
// and ErrCorrupt when the stored value cannot be decoded.
func (s *LocalState) CurrentUser(ctx context.Context) (models.User, error) {
	var user models.User
	if err := s.load(ctx, CurrentUserKey, &user); err != nil {
		return models.User{}, err
	}
	if user.ID == 0 {
		return models.User{}, fmt.Errorf("decode %s: %w", CurrentUserKey, ErrCorrupt)
	}
	return user, nil
}

// SaveCurrentUser persists user as the signed-in user. Credentials are never written under
// this key.
func (s *LocalState) SaveCurrentUser(ctx context.Context, user models.User) error {
	return s.save(ctx, CurrentUserKey, user.Public())
}

// ClearCurrentUser forgets the signed-in user.
func (s *LocalState) ClearCurrentUser(ctx context.Context) error {
	if err := s.kv.Delete(ctx, CurrentUserKey); err != nil {
		return fmt.Errorf("clear current user: %w", err)
	}
	return nil
}

// Users loads the persisted roster.
func (s *LocalState) Users(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.load(ctx, UsersKey, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// SaveUsers persists the roster.
func (s *LocalState) SaveUsers(ctx context.Context, users []models.User) error {
	if users == nil {
		users = []models.User{}
	}
	return s.save(ctx, UsersKey, users)
}

func (s *LocalState) load(ctx context.Context, key string, dst any) error {
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("load %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, errors.Join(ErrCorrupt, err))
	}
	return nil
}

func (s *LocalState) save(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
