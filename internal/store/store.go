// Package store defines the key-value contract the ticket repository is
// written against, together with its Redis, in-process and MySQL backends.
// Every backend gives read-your-writes visibility within a process: there is
// no caching layer between a Set and the next Get.
package store

import (
	"context"
	"errors"
)

// ErrNil is returned by Get when the key does not exist.
var ErrNil = errors.New("store: nil")

// Store is the minimal key-value surface used by the application.  Values
// are opaque byte slices; callers own their encoding.
//
// Patterns passed to Keys use Redis glob syntax: '*' matches any run of
// characters, '?' matches exactly one, and '\' escapes the next character.
type Store interface {
	// Get returns the value stored at key, or ErrNil.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set unconditionally stores value at key.
	Set(ctx context.Context, key string, value []byte) error
	// SetNX stores value only when key is absent and reports whether it did.
	SetNX(ctx context.Context, key string, value []byte) (bool, error)
	// Keys lists the keys matching pattern, in no particular order.
	Keys(ctx context.Context, pattern string) ([]string, error)
	// Del removes keys and returns how many existed.
	Del(ctx context.Context, keys ...string) (int64, error)
	// FlushAll removes every key in the store.
	FlushAll(ctx context.Context) error
	// Name identifies the backend for health reporting.
	Name() string
}

// Match reports whether key matches the Redis-style glob pattern.
func Match(pattern, key string) bool {
	p, k := 0, 0
	// star remembers the last '*' so the matcher can backtrack.
	star, mark := -1, 0
	for k < len(key) {
		switch {
		case p < len(pattern) && pattern[p] == '\\' && p+1 < len(pattern) && pattern[p+1] == key[k]:
			p += 2
			k++
		case p < len(pattern) && (pattern[p] == '?' || (pattern[p] == key[k] && pattern[p] != '*' && pattern[p] != '\\')):
			p++
			k++
		case p < len(pattern) && pattern[p] == '*':
			star, mark = p, k
			p++
		case star >= 0:
			mark++
			k = mark
			p = star + 1
		default:
			return false
		}
	}
	for p < len(pattern) && pattern[p] == '*' {
		p++
	}
	return p == len(pattern)
}
