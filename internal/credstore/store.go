// Package credstore persists the bearer token and role tag of the signed-in
// account.
package credstore

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/therapyassist/dashboard-go/internal/database"
	"github.com/therapyassist/dashboard-go/internal/model"
	"github.com/therapyassist/dashboard-go/internal/redis"
	"github.com/therapyassist/dashboard-go/internal/repository"
	"github.com/therapyassist/dashboard-go/internal/util"
)

const (
	TokenKey = "auth_token"
	RoleKey  = "user_type"
)

// KeyValue is the persistent string storage behind the store.
type KeyValue interface {
	Get(ctx context.Context, key string) (string, bool, error)
	SetMany(ctx context.Context, pairs map[string]string) error
	DeleteMany(ctx context.Context, keys ...string) error
}

type Store struct {
	kv     KeyValue
	cipher *util.Cipher
	closer io.Closer
}

type Option func(*Store)

// WithCipher encrypts the token value at rest.
func WithCipher(c *util.Cipher) Option {
	return func(s *Store) {
		s.cipher = c
	}
}

func withCloser(c io.Closer) Option {
	return func(s *Store) {
		s.closer = c
	}
}

func New(kv KeyValue, opts ...Option) *Store {
	s := &Store{kv: kv}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open selects a backend from storeURL: sqlite://, postgres://,
// redis:// (or rediss://) and memory://.
func Open(ctx context.Context, storeURL, encryptionKey string) (*Store, error) {
	var opts []Option
	if encryptionKey != "" {
		c, err := util.NewCipher(encryptionKey)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithCipher(c))
	}

	switch {
	case strings.HasPrefix(storeURL, "memory://"):
		return New(NewMemory(), opts...), nil

	case strings.HasPrefix(storeURL, "redis://"), strings.HasPrefix(storeURL, "rediss://"):
		client, err := redis.NewClient(storeURL)
		if err != nil {
			return nil, fmt.Errorf("open redis credential store: %w", err)
		}
		return New(client, append(opts, withCloser(client))...), nil

	default:
		db, err := database.Open(storeURL)
		if err != nil {
			return nil, fmt.Errorf("open credential store: %w", err)
		}
		repo, err := repository.NewKeyValueRepository(ctx, db)
		if err != nil {
			db.Close()
			return nil, err
		}
		return New(repo, append(opts, withCloser(db))...), nil
	}
}

// Save writes the token and role together.
func (s *Store) Save(ctx context.Context, token string, role model.Role) error {
	if token == "" {
		return fmt.Errorf("save credentials: empty token")
	}
	if !role.Valid() {
		return fmt.Errorf("save credentials: invalid role %q", role)
	}

	stored := token
	if s.cipher != nil {
		sealed, err := s.cipher.Encrypt(token)
		if err != nil {
			return fmt.Errorf("encrypt token: %w", err)
		}
		stored = sealed
	}

	if err := s.kv.SetMany(ctx, map[string]string{
		TokenKey: stored,
		RoleKey:  string(role),
	}); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}

// Token returns the stored bearer token, or ok=false when none is stored.
func (s *Store) Token(ctx context.Context) (string, bool, error) {
	stored, ok, err := s.kv.Get(ctx, TokenKey)
	if err != nil || !ok {
		return "", false, err
	}
	if s.cipher == nil {
		return stored, true, nil
	}
	token, err := s.cipher.Decrypt(stored)
	if err != nil {
		return "", false, fmt.Errorf("decrypt token: %w", err)
	}
	return token, true, nil
}

func (s *Store) Role(ctx context.Context) (model.Role, bool, error) {
	value, ok, err := s.kv.Get(ctx, RoleKey)
	if err != nil || !ok {
		return "", false, err
	}
	return model.Role(value), true, nil
}

// Credential returns nil when no token is stored.
func (s *Store) Credential(ctx context.Context) (*model.Credential, error) {
	token, ok, err := s.Token(ctx)
	if err != nil || !ok {
		return nil, err
	}
	role, _, err := s.Role(ctx)
	if err != nil {
		return nil, err
	}
	return &model.Credential{Token: token, Role: role}, nil
}

// Clear removes both keys.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.DeleteMany(ctx, TokenKey, RoleKey); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}

// IsAuthenticated reports whether a token is stored. Expiry is not checked
// locally; the backend reports it with a 401.
func (s *Store) IsAuthenticated(ctx context.Context) bool {
	_, ok, err := s.Token(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("credential store read failed")
		return false
	}
	return ok
}

func (s *Store) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
