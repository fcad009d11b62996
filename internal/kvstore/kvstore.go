// Package kvstore is a namespaced key-value store backed by Redis. It stands
// in for the per-device preference storage the mobile client kept cart state
// and notification bookkeeping in: scalar values plus string sets, one
// namespace per concern and owner, no transactions beyond single-key writes.
package kvstore

import (
	"context"
	"errors"
	"strconv"

	"github.com/redis/go-redis/v9"
)

type Store struct {
	client *redis.Client
}

func New(client *redis.Client) *Store { return &Store{client: client} }

func key(ns, k string) string { return ns + ":" + k }

func (s *Store) GetString(ctx context.Context, ns, k string) (string, error) {
	v, err := s.client.Get(ctx, key(ns, k)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return v, err
}

func (s *Store) SetString(ctx context.Context, ns, k, v string) error {
	return s.client.Set(ctx, key(ns, k), v, 0).Err()
}

func (s *Store) GetInt(ctx context.Context, ns, k string) (int, error) {
	v, err := s.GetString(ctx, ns, k)
	if err != nil || v == "" {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		// Corrupted value reads as the zero default, same as a missing key.
		return 0, nil
	}
	return n, nil
}

func (s *Store) SetInt(ctx context.Context, ns, k string, v int) error {
	return s.SetString(ctx, ns, k, strconv.Itoa(v))
}

func (s *Store) GetInt64(ctx context.Context, ns, k string) (int64, error) {
	v, err := s.GetString(ctx, ns, k)
	if err != nil || v == "" {
		return 0, err
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, nil
	}
	return n, nil
}

func (s *Store) SetInt64(ctx context.Context, ns, k string, v int64) error {
	return s.SetString(ctx, ns, k, strconv.FormatInt(v, 10))
}

func (s *Store) GetFloat(ctx context.Context, ns, k string) (float64, error) {
	v, err := s.GetString(ctx, ns, k)
	if err != nil || v == "" {
		return 0, err
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, nil
	}
	return f, nil
}

func (s *Store) SetFloat(ctx context.Context, ns, k string, v float64) error {
	return s.SetString(ctx, ns, k, strconv.FormatFloat(v, 'f', -1, 64))
}

func (s *Store) GetBool(ctx context.Context, ns, k string) (bool, error) {
	v, err := s.GetString(ctx, ns, k)
	return v == "1", err
}

func (s *Store) SetBool(ctx context.Context, ns, k string, v bool) error {
	val := "0"
	if v {
		val = "1"
	}
	return s.SetString(ctx, ns, k, val)
}

func (s *Store) AddToSet(ctx context.Context, ns, setKey, member string) error {
	return s.client.SAdd(ctx, key(ns, setKey), member).Err()
}

func (s *Store) RemoveFromSet(ctx context.Context, ns, setKey, member string) error {
	return s.client.SRem(ctx, key(ns, setKey), member).Err()
}

func (s *Store) Members(ctx context.Context, ns, setKey string) ([]string, error) {
	v, err := s.client.SMembers(ctx, key(ns, setKey)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return v, err
}

func (s *Store) Delete(ctx context.Context, ns string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = key(ns, k)
	}
	return s.client.Del(ctx, full...).Err()
}

// ClearNamespace removes every key in the namespace.
func (s *Store) ClearNamespace(ctx context.Context, ns string) error {
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, ns+":*", 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
