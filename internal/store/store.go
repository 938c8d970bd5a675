package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aescanero/dago-node-render/internal/source"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrNotFound is returned for missing entries. It is the same value as
// source.ErrNotFound so callers can check either.
var ErrNotFound = source.ErrNotFound

// Kind selects the template or data context namespace
type Kind string

const (
	// KindTemplate is the template namespace
	KindTemplate Kind = "template"

	// KindContext is the data context namespace
	KindContext Kind = "context"
)

const keyPrefix = "render:"

// Store implements source.Loader on top of Redis
type Store struct {
	client *redis.Client
	logger *zap.Logger
}

var _ source.Loader = (*Store)(nil)

// New creates a new Redis store
func New(client *redis.Client, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		client: client,
		logger: logger,
	}
}

func key(kind Kind, name string) string {
	return keyPrefix + string(kind) + ":" + name
}

func validName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name is required")
	}
	if strings.ContainsAny(name, "*?[]") {
		return fmt.Errorf("name %q contains pattern characters", name)
	}
	return nil
}

// SaveTemplate saves a named template
func (s *Store) SaveTemplate(ctx context.Context, name, tmpl string) error {
	if err := validName(name); err != nil {
		return err
	}

	if err := s.client.Set(ctx, key(KindTemplate, name), tmpl, 0).Err(); err != nil {
		return fmt.Errorf("failed to save template: %w", err)
	}

	s.logger.Debug("template saved", zap.String("name", name), zap.Int("bytes", len(tmpl)))
	return nil
}

// LoadTemplate loads a named template
func (s *Store) LoadTemplate(ctx context.Context, name string) (string, error) {
	tmpl, err := s.client.Get(ctx, key(KindTemplate, name)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", fmt.Errorf("template %q: %w", name, ErrNotFound)
		}
		return "", fmt.Errorf("failed to load template: %w", err)
	}
	return tmpl, nil
}

// SaveContext saves a named data context
func (s *Store) SaveContext(ctx context.Context, name string, data map[string]interface{}) error {
	if err := validName(name); err != nil {
		return err
	}

	encoded, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal context: %w", err)
	}

	if err := s.client.Set(ctx, key(KindContext, name), encoded, 0).Err(); err != nil {
		return fmt.Errorf("failed to save context: %w", err)
	}

	s.logger.Debug("context saved", zap.String("name", name), zap.Int("bytes", len(encoded)))
	return nil
}

// LoadContext loads a named data context
func (s *Store) LoadContext(ctx context.Context, name string) (map[string]interface{}, error) {
	raw, err := s.client.Get(ctx, key(KindContext, name)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("context %q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load context: %w", err)
	}

	var data map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal context: %w", err)
	}
	if data == nil {
		data = map[string]interface{}{}
	}
	return data, nil
}

// LoadData loads a named data context (source.DataLoader)
func (s *Store) LoadData(ctx context.Context, name string) (map[string]interface{}, error) {
	return s.LoadContext(ctx, name)
}

// Delete deletes an entry
func (s *Store) Delete(ctx context.Context, kind Kind, name string) error {
	if err := s.client.Del(ctx, key(kind, name)).Err(); err != nil {
		return fmt.Errorf("failed to delete %s: %w", kind, err)
	}
	return nil
}

// Exists checks if an entry exists
func (s *Store) Exists(ctx context.Context, kind Kind, name string) (bool, error) {
	result, err := s.client.Exists(ctx, key(kind, name)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}
	return result > 0, nil
}

// SetTTL sets a time-to-live for an entry
func (s *Store) SetTTL(ctx context.Context, kind Kind, name string, ttl time.Duration) error {
	ok, err := s.client.Expire(ctx, key(kind, name), ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to set TTL: %w", err)
	}
	if !ok {
		return fmt.Errorf("%s %q: %w", kind, name, ErrNotFound)
	}
	return nil
}

// List returns the sorted names stored under kind
func (s *Store) List(ctx context.Context, kind Kind) ([]string, error) {
	prefix := key(kind, "")

	var names []string
	iter := s.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if name := strings.TrimPrefix(iter.Val(), prefix); name != "" {
			names = append(names, name)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}

	sort.Strings(names)
	return names, nil
}

// Ping checks the connection
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
