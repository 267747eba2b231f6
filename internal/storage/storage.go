// Package storage implements the durable key/value stores that hold the
// serialized workout collection between sessions.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrUnavailable is returned when a backend cannot be reached.
var ErrUnavailable = errors.New("storage unavailable")

// Durable is a key/value store that survives restarts. Read reports ok=false
// when the key has no entry.
type Durable interface {
	Read(ctx context.Context, key string) (value []byte, ok bool, err error)
	Write(ctx context.Context, key string, value []byte) error
	Clear(ctx context.Context, key string) error
	Close() error
}

// Open returns the backend selected by the scheme of rawURL:
// memory://, redis:// or rediss://, sqlite://<path>, file:<path>,
// postgres:// or postgresql://.
func Open(ctx context.Context, rawURL string) (Durable, error) {
	if rawURL == "" {
		return NewMemoryStore(), nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing storage URL: %w", err)
	}

	switch strings.ToLower(u.Scheme) {
	case "memory":
		return NewMemoryStore(), nil
	case "redis", "rediss":
		return NewRedisStore(ctx, rawURL)
	case "postgres", "postgresql":
		return NewGormStore(PostgresDialector(rawURL))
	case "sqlite":
		return NewGormStore(SQLiteDialector(strings.TrimPrefix(rawURL, u.Scheme+"://")))
	case "file":
		return NewGormStore(SQLiteDialector(rawURL))
	default:
		return nil, fmt.Errorf("unsupported storage scheme %q", u.Scheme)
	}
}
