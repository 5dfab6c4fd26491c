package store

import (
	"context"
	"errors"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

type stubEnvelopeClient struct {
	values map[string]string
	setErr error
}

func newStubEnvelopeClient() *stubEnvelopeClient {
	return &stubEnvelopeClient{values: map[string]string{}}
}

func (s *stubEnvelopeClient) Get(ctx context.Context, key string) (string, error) {
	value, ok := s.values[key]
	if !ok {
		return "", goredis.Nil
	}
	return value, nil
}

func (s *stubEnvelopeClient) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.values[key] = value.(string)
	return nil
}

func (s *stubEnvelopeClient) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}

func (s *stubEnvelopeClient) CartEnvelopeKey(sessionID string) string {
	return "cv:cart:" + sessionID
}

func TestRedisStoreAbsentKeyReadsEmpty(t *testing.T) {
	t.Parallel()

	client := newStubEnvelopeClient()
	s := &RedisStore{client: client, key: client.CartEnvelopeKey("s1")}

	value, err := s.Read(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "" {
		t.Fatalf("expected empty read, got %q", value)
	}
}

func TestRedisStoreWriteReadClear(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newStubEnvelopeClient()
	s := &RedisStore{client: client, key: client.CartEnvelopeKey("s1"), ttl: time.Hour}

	if err := s.Write(ctx, "sealed-envelope"); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	value, err := s.Read(ctx)
	if err != nil || value != "sealed-envelope" {
		t.Fatalf("unexpected read %q %v", value, err)
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	value, err = s.Read(ctx)
	if err != nil || value != "" {
		t.Fatalf("expected empty after clear, got %q %v", value, err)
	}
}

func TestRedisStoreEmptyWriteClears(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newStubEnvelopeClient()
	s := &RedisStore{client: client, key: client.CartEnvelopeKey("s1")}

	if err := s.Write(ctx, "value"); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := s.Write(ctx, ""); err != nil {
		t.Fatalf("empty write failed: %v", err)
	}
	if value, _ := s.Read(ctx); value != "" {
		t.Fatalf("expected cleared envelope, got %q", value)
	}
}

func TestRedisStoreWriteSurfacesErrors(t *testing.T) {
	t.Parallel()

	client := newStubEnvelopeClient()
	client.setErr = errors.New("quota exceeded")
	s := &RedisStore{client: client, key: client.CartEnvelopeKey("s1")}

	if err := s.Write(context.Background(), "value"); err == nil {
		t.Fatal("expected write error to surface")
	}
}

func TestNewRedisStoreValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewRedisStore(nil, "s1", time.Hour); err == nil {
		t.Fatal("expected error for nil client")
	}
}
