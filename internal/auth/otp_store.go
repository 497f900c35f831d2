package auth

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrOTPNotFound is returned when no live code exists for an email.
var ErrOTPNotFound = errors.New("otp not found")

// OTPEntry is a pending login code.
type OTPEntry struct {
	Hash      string    `json:"hash"`
	ExpiresAt time.Time `json:"expires_at"`
}

// OTPStore keeps at most one pending code per email.
type OTPStore interface {
	// Save replaces any previous entry for email.
	Save(ctx context.Context, email string, entry OTPEntry) error
	// Get returns ErrOTPNotFound for missing or expired entries.
	Get(ctx context.Context, email string) (*OTPEntry, error)
	Delete(ctx context.Context, email string) error
}

// GenerateOTP returns a zero-padded six digit code.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func otpKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// MemoryOTPStore is a process-local store for single instance deployments.
type MemoryOTPStore struct {
	mu      sync.Mutex
	entries map[string]OTPEntry
	now     func() time.Time
}

// NewMemoryOTPStore returns an empty store.
func NewMemoryOTPStore() *MemoryOTPStore {
	return &MemoryOTPStore{entries: map[string]OTPEntry{}, now: time.Now}
}

func (s *MemoryOTPStore) Save(_ context.Context, email string, entry OTPEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purgeLocked()
	s.entries[otpKey(email)] = entry
	return nil
}

func (s *MemoryOTPStore) Get(_ context.Context, email string) (*OTPEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := otpKey(email)
	entry, ok := s.entries[key]
	if !ok {
		return nil, ErrOTPNotFound
	}
	if !s.now().Before(entry.ExpiresAt) {
		delete(s.entries, key)
		return nil, ErrOTPNotFound
	}
	return &entry, nil
}

func (s *MemoryOTPStore) Delete(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, otpKey(email))
	return nil
}

// purgeLocked drops expired entries so abandoned codes do not accumulate.
func (s *MemoryOTPStore) purgeLocked() {
	now := s.now()
	for k, e := range s.entries {
		if !now.Before(e.ExpiresAt) {
			delete(s.entries, k)
		}
	}
}

// RedisOTPStore shares codes between instances. Redis expiry removes stale entries.
type RedisOTPStore struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// NewRedisOTPStore returns a store keyed under "<prefix>otp:".
func NewRedisOTPStore(client *redis.Client, prefix string) *RedisOTPStore {
	return &RedisOTPStore{client: client, prefix: prefix, now: time.Now}
}

func (s *RedisOTPStore) key(email string) string {
	return s.prefix + "otp:" + otpKey(email)
}

func (s *RedisOTPStore) Save(ctx context.Context, email string, entry OTPEntry) error {
	ttl := entry.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return s.Delete(ctx, email)
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(email), data, ttl).Err()
}

func (s *RedisOTPStore) Get(ctx context.Context, email string) (*OTPEntry, error) {
	data, err := s.client.Get(ctx, s.key(email)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrOTPNotFound
	}
	if err != nil {
		return nil, err
	}
	var entry OTPEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("decode otp entry: %w", err)
	}
	if !s.now().Before(entry.ExpiresAt) {
		return nil, ErrOTPNotFound
	}
	return &entry, nil
}

func (s *RedisOTPStore) Delete(ctx context.Context, email string) error {
	return s.client.Del(ctx, s.key(email)).Err()
}
