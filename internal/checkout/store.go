package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound indicates the session expired or never existed.
var ErrSessionNotFound = errors.New("checkout: session not found")

// Store persists checkout sessions as JSON in Redis. Sessions are transient
// by design; the order-creation API is the system of record.
type Store struct {
	Client *redis.Client
	TTL    time.Duration
}

func (st *Store) ttl() time.Duration {
	if st == nil || st.TTL <= 0 {
		return 2 * time.Hour
	}
	return st.TTL
}

func sessionKey(id string) string {
	return "checkout:session:" + id
}

// Get loads a session by id.
func (st *Store) Get(ctx context.Context, id string) (Session, error) {
	if st == nil || st.Client == nil {
		return Session{}, errors.New("checkout: store not configured")
	}
	data, err := st.Client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Session{}, ErrSessionNotFound
		}
		return Session{}, err
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, err
	}
	return s, nil
}

// Save writes the session back, refreshing its TTL.
func (st *Store) Save(ctx context.Context, s Session) error {
	if st == nil || st.Client == nil {
		return errors.New("checkout: store not configured")
	}
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return st.Client.Set(ctx, sessionKey(s.ID), data, st.ttl()).Err()
}

// Delete removes the session.
func (st *Store) Delete(ctx context.Context, id string) error {
	if st == nil || st.Client == nil {
		return errors.New("checkout: store not configured")
	}
	return st.Client.Del(ctx, sessionKey(id)).Err()
}
